package service

import (
	"context"
	"errors"
	"sort"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/xmustafa5/TimeClass-sub001/internal/dto"
	"github.com/xmustafa5/TimeClass-sub001/internal/model"
	"github.com/xmustafa5/TimeClass-sub001/internal/repository"
	"github.com/xmustafa5/TimeClass-sub001/internal/timetable"
)

// 课表归属类型
const (
	OwnerSection = "section"
	OwnerTeacher = "teacher"
	OwnerRoom    = "room"
)

// ── TimetableService 接口 ──────────────────────────────────
//
// 课表视图是排课记录按 (教学日, 节次) 展开的只读网格：
//   - 班级 / 教室课表的列为全部教学日
//   - 教师课表的列为该教师的工作日
//   - 只返回已排课的格子，空格由前端补齐
// ─────────────────────────────────────────────────────────────

// TimetableService 课表视图业务接口
type TimetableService interface {
	ForSection(ctx context.Context, sectionID string) (*dto.TimetableResponse, error)
	ForTeacher(ctx context.Context, teacherID string) (*dto.TimetableResponse, error)
	ForRoom(ctx context.Context, roomID string) (*dto.TimetableResponse, error)
}

type timetableService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTimetableService 创建 TimetableService 实例
func NewTimetableService(repo *repository.Repository, logger *zap.Logger) TimetableService {
	return &timetableService{repo: repo, logger: logger}
}

func (s *timetableService) ForSection(ctx context.Context, sectionID string) (*dto.TimetableResponse, error) {
	section, err := s.repo.Section.GetByID(ctx, sectionID)
	if err != nil {
		return nil, s.ownerErr(err, ErrSectionNotFound, sectionID)
	}

	name := section.Name
	if section.Grade != nil {
		name = section.Grade.Name + " " + section.Name
	}
	return s.build(ctx, OwnerSection, sectionID, name, timetable.WeekDays,
		repository.EntryFilter{SectionID: sectionID})
}

func (s *timetableService) ForTeacher(ctx context.Context, teacherID string) (*dto.TimetableResponse, error) {
	teacher, err := s.repo.Teacher.GetByID(ctx, teacherID)
	if err != nil {
		return nil, s.ownerErr(err, ErrTeacherNotFound, teacherID)
	}

	days := append([]timetable.WeekDay(nil), teacher.WorkDays...)
	sort.Slice(days, func(i, j int) bool { return days[i].Ordinal() < days[j].Ordinal() })

	return s.build(ctx, OwnerTeacher, teacherID, teacher.FullName, days,
		repository.EntryFilter{TeacherID: teacherID})
}

func (s *timetableService) ForRoom(ctx context.Context, roomID string) (*dto.TimetableResponse, error) {
	room, err := s.repo.Room.GetByID(ctx, roomID)
	if err != nil {
		return nil, s.ownerErr(err, ErrRoomNotFound, roomID)
	}
	return s.build(ctx, OwnerRoom, roomID, room.Name, timetable.WeekDays,
		repository.EntryFilter{RoomID: roomID})
}

// ── 内部辅助方法 ──

func (s *timetableService) build(
	ctx context.Context,
	ownerType, ownerID, ownerName string,
	days []timetable.WeekDay,
	filter repository.EntryFilter,
) (*dto.TimetableResponse, error) {
	periods, err := s.repo.Period.List(ctx)
	if err != nil {
		s.logger.Error("列出节次失败", zap.Error(err))
		return nil, err
	}
	entries, err := s.repo.ScheduleEntry.List(ctx, filter)
	if err != nil {
		s.logger.Error("查询课表失败", zap.String("owner_type", ownerType), zap.String("owner_id", ownerID), zap.Error(err))
		return nil, err
	}

	resp := &dto.TimetableResponse{
		OwnerType: ownerType,
		OwnerID:   ownerID,
		OwnerName: ownerName,
		Days:      make([]string, 0, len(days)),
		Periods:   make([]dto.PeriodResponse, 0, len(periods)),
		Cells:     make([]dto.TimetableCell, 0, len(entries)),
	}
	for _, d := range days {
		resp.Days = append(resp.Days, string(d))
	}
	for i := range periods {
		resp.Periods = append(resp.Periods, *toPeriodResponse(&periods[i]))
	}
	// 仓储已按教学日与节次编号排序
	for i := range entries {
		resp.Cells = append(resp.Cells, dto.TimetableCell{
			Day:      entries[i].Day,
			PeriodID: entries[i].PeriodID,
			Entry:    *toScheduleEntryResponse(&entries[i]),
		})
	}
	return resp, nil
}

func (s *timetableService) ownerErr(err, sentinel error, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	s.logger.Error("查询课表归属失败", zap.String("id", id), zap.Error(err))
	return err
}

// entriesBySlot 按 (day, period_id) 索引排课记录，供导出使用
func entriesBySlot(entries []model.ScheduleEntry) map[timetable.Slot]*model.ScheduleEntry {
	out := make(map[timetable.Slot]*model.ScheduleEntry, len(entries))
	for i := range entries {
		e := &entries[i]
		out[timetable.Slot{Day: timetable.WeekDay(e.Day), PeriodID: e.PeriodID}] = e
	}
	return out
}
