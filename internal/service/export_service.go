package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/xmustafa5/TimeClass-sub001/internal/model"
	"github.com/xmustafa5/TimeClass-sub001/internal/repository"
	"github.com/xmustafa5/TimeClass-sub001/internal/timetable"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoPeriods    = errors.New("尚未配置节次")
	ErrExportNoSections   = errors.New("尚未创建班级")
	ErrExportNoEntries    = errors.New("该教师暂无排课")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
//   - Excel：每个班级一个 Sheet，行为节次、列为教学日
//   - iCalendar：教师每条排课对应一个按周重复的 VEVENT
type ExportService interface {
	// ExportTimetable 导出全校课表为 Excel
	ExportTimetable(ctx context.Context) (*bytes.Buffer, string, error)
	// ExportTeacherCalendar 导出教师课表为 .ics，from 为首周起算日期
	ExportTeacherCalendar(ctx context.Context, teacherID string, from time.Time) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	loc    *time.Location
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例；loc 为学校所在时区
func NewExportService(repo *repository.Repository, loc *time.Location, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, loc: loc, logger: logger}
}

var dayNames = map[timetable.WeekDay]string{
	timetable.Sunday:    "周日",
	timetable.Monday:    "周一",
	timetable.Tuesday:   "周二",
	timetable.Wednesday: "周三",
	timetable.Thursday:  "周四",
}

// ═══════════════════════════════════════════════════════════
// ExportTimetable 导出全校课表为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "<年级>-<班级>"（按年级、班级名称排序）
//   - 行头：第 N 节 + 起止时间
//   - 列头：周日 ~ 周四
//   - 单元格：科目 换行 教师 / 教室

func (s *exportService) ExportTimetable(ctx context.Context) (*bytes.Buffer, string, error) {
	// 1. 基础数据
	periods, err := s.repo.Period.List(ctx)
	if err != nil {
		s.logger.Error("列出节次失败", zap.Error(err))
		return nil, "", err
	}
	if len(periods) == 0 {
		return nil, "", ErrExportNoPeriods
	}

	sections, err := s.repo.Section.List(ctx, "")
	if err != nil {
		s.logger.Error("列出班级失败", zap.Error(err))
		return nil, "", err
	}
	if len(sections) == 0 {
		return nil, "", ErrExportNoSections
	}
	sort.SliceStable(sections, func(i, j int) bool {
		return sheetTitle(&sections[i]) < sheetTitle(&sections[j])
	})

	// 2. 排课记录按班级分组
	entries, err := s.repo.ScheduleEntry.List(ctx, repository.EntryFilter{})
	if err != nil {
		s.logger.Error("查询排课记录失败", zap.Error(err))
		return nil, "", err
	}
	bySection := make(map[string][]model.ScheduleEntry)
	for _, e := range entries {
		bySection[e.SectionID] = append(bySection[e.SectionID], e)
	}

	// 3. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	cellStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})

	used := make(map[string]bool)
	for i, sec := range sections {
		name := uniqueSheetName(sheetTitle(&sections[i]), used)
		idx, err := f.NewSheet(name)
		if err != nil {
			s.logger.Error("创建 Sheet 失败", zap.String("sheet", name), zap.Error(err))
			return nil, "", ErrExportGenerateFail
		}
		if i == 0 {
			f.SetActiveSheet(idx)
		}
		s.writeSectionSheet(f, name, sheetTitle(&sections[i]), periods, entriesBySlot(bySection[sec.ID]), headerStyle, cellStyle)
	}
	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	// 4. 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("课表_%s.xlsx", time.Now().In(s.loc).Format("20060102"))
	return buf, filename, nil
}

func (s *exportService) writeSectionSheet(
	f *excelize.File,
	sheet, title string,
	periods []model.Period,
	slots map[timetable.Slot]*model.ScheduleEntry,
	headerStyle, cellStyle int,
) {
	lastCol := colName(1 + len(timetable.WeekDays))

	f.SetColWidth(sheet, "A", "A", 10)
	f.SetColWidth(sheet, "B", "B", 14)
	f.SetColWidth(sheet, "C", lastCol, 22)

	// 标题行
	f.SetCellValue(sheet, "A1", title+" 课表")
	f.MergeCell(sheet, "A1", cell(lastCol, 1))
	f.SetCellStyle(sheet, "A1", "A1", headerStyle)

	// 表头
	f.SetCellValue(sheet, cell("A", 2), "节次")
	f.SetCellValue(sheet, cell("B", 2), "时间")
	for i, d := range timetable.WeekDays {
		f.SetCellValue(sheet, cell(colName(2+i), 2), dayNames[d])
	}
	f.SetCellStyle(sheet, "A2", cell(lastCol, 2), headerStyle)

	// 数据行
	row := 3
	for i := range periods {
		p := &periods[i]
		f.SetCellValue(sheet, cell("A", row), fmt.Sprintf("第%d节", p.Number))
		f.SetCellValue(sheet, cell("B", row), fmt.Sprintf("%s-%s", clock(p.StartTime), clock(p.EndTime)))

		for j, d := range timetable.WeekDays {
			text := "-"
			if e, ok := slots[timetable.Slot{Day: d, PeriodID: p.ID}]; ok {
				text = entryCellText(e)
			}
			f.SetCellValue(sheet, cell(colName(2+j), row), text)
		}
		f.SetRowHeight(sheet, row, 36)
		row++
	}
	f.SetCellStyle(sheet, "A3", cell(lastCol, row-1), cellStyle)
}

// ═══════════════════════════════════════════════════════════
// ExportTeacherCalendar 导出教师课表为 iCalendar
// ═══════════════════════════════════════════════════════════

var icsByDay = map[timetable.WeekDay]string{
	timetable.Sunday:    "SU",
	timetable.Monday:    "MO",
	timetable.Tuesday:   "TU",
	timetable.Wednesday: "WE",
	timetable.Thursday:  "TH",
}

func (s *exportService) ExportTeacherCalendar(ctx context.Context, teacherID string, from time.Time) (*bytes.Buffer, string, error) {
	teacher, err := s.repo.Teacher.GetByID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrTeacherNotFound
		}
		s.logger.Error("查询教师失败", zap.String("id", teacherID), zap.Error(err))
		return nil, "", err
	}

	entries, err := s.repo.ScheduleEntry.List(ctx, repository.EntryFilter{TeacherID: teacherID})
	if err != nil {
		s.logger.Error("查询教师排课失败", zap.String("teacher_id", teacherID), zap.Error(err))
		return nil, "", err
	}
	if len(entries) == 0 {
		return nil, "", ErrExportNoEntries
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//TimeClass//Timetable//ZH")
	cal.SetXWRCalName(teacher.FullName + " 课表")
	cal.SetXWRTimezone(s.loc.String())

	now := time.Now()
	for i := range entries {
		e := &entries[i]
		if e.Period == nil {
			continue
		}
		span, err := e.Period.Span()
		if err != nil {
			s.logger.Error("已存储的节次时间非法", zap.String("period_id", e.PeriodID), zap.Error(err))
			return nil, "", ErrExportGenerateFail
		}

		day := timetable.WeekDay(e.Day)
		first := firstOccurrence(from.In(s.loc), day)
		start := first.Add(time.Duration(span.Interval.Start) * time.Minute)
		end := first.Add(time.Duration(span.Interval.End) * time.Minute)

		event := cal.AddEvent(e.ID + "@timeclass")
		event.SetDtStampTime(now)
		event.SetStartAt(start)
		event.SetEndAt(end)
		event.SetSummary(entrySummary(e))
		if e.Room != nil {
			event.SetLocation(e.Room.Name)
		}
		event.AddRrule("FREQ=WEEKLY;BYDAY=" + icsByDay[day])
	}

	buf := bytes.NewBufferString(cal.Serialize())
	filename := fmt.Sprintf("课表_%s.ics", teacher.FullName)
	return buf, filename, nil
}

// ── 辅助函数 ──

// firstOccurrence from 当天或之后第一个 day 的零点
func firstOccurrence(from time.Time, day timetable.WeekDay) time.Time {
	midnight := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	offset := (int(time.Weekday(day.Ordinal())) - int(midnight.Weekday()) + 7) % 7
	return midnight.AddDate(0, 0, offset)
}

func entrySummary(e *model.ScheduleEntry) string {
	summary := e.Subject
	if e.Grade != nil && e.Section != nil {
		summary += " · " + e.Grade.Name + " " + e.Section.Name
	}
	return summary
}

func entryCellText(e *model.ScheduleEntry) string {
	var who []string
	if e.Teacher != nil {
		who = append(who, e.Teacher.FullName)
	}
	if e.Room != nil {
		who = append(who, e.Room.Name)
	}
	if len(who) == 0 {
		return e.Subject
	}
	return e.Subject + "\n" + strings.Join(who, " / ")
}

func sheetTitle(sec *model.Section) string {
	if sec.Grade != nil {
		return sec.Grade.Name + "-" + sec.Name
	}
	return sec.Name
}

// uniqueSheetName Excel Sheet 名最长 31 字符且不能含 : \ / ? * [ ]
func uniqueSheetName(title string, used map[string]bool) string {
	name := strings.NewReplacer(":", "_", `\`, "_", "/", "_", "?", "_", "*", "_", "[", "(", "]", ")").Replace(title)
	name = truncateRunes(name, 31)
	base := name
	for n := 2; used[name]; n++ {
		suffix := fmt.Sprintf("~%d", n)
		name = truncateRunes(base, 31-utf8.RuneCountInString(suffix)) + suffix
	}
	used[name] = true
	return name
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
