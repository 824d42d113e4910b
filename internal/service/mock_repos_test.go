package service

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/xmustafa5/TimeClass-sub001/internal/model"
	"github.com/xmustafa5/TimeClass-sub001/internal/repository"
	"github.com/xmustafa5/TimeClass-sub001/internal/timetable"
	pkgerrors "github.com/xmustafa5/TimeClass-sub001/pkg/errors"
)

// ── Mock TeacherRepository ──

type mockTeacherRepo struct {
	teachers map[string]*model.Teacher
}

func newMockTeacherRepo() *mockTeacherRepo {
	return &mockTeacherRepo{teachers: make(map[string]*model.Teacher)}
}

func (m *mockTeacherRepo) Create(_ context.Context, teacher *model.Teacher) error {
	m.teachers[teacher.ID] = teacher
	return nil
}

func (m *mockTeacherRepo) GetByID(_ context.Context, id string) (*model.Teacher, error) {
	if t, ok := m.teachers[id]; ok {
		c := *t
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTeacherRepo) List(_ context.Context, keyword string) ([]model.Teacher, error) {
	var result []model.Teacher
	for _, t := range m.teachers {
		if keyword == "" || strings.Contains(t.FullName, keyword) || strings.Contains(t.Subject, keyword) {
			result = append(result, *t)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].FullName < result[j].FullName })
	return result, nil
}

func (m *mockTeacherRepo) Update(_ context.Context, teacher *model.Teacher) error {
	c := *teacher
	m.teachers[teacher.ID] = &c
	return nil
}

func (m *mockTeacherRepo) Delete(_ context.Context, id string) error {
	delete(m.teachers, id)
	return nil
}

// ── Mock GradeRepository ──

type mockGradeRepo struct {
	grades   map[string]*model.Grade
	sections *mockSectionRepo
}

func newMockGradeRepo(sections *mockSectionRepo) *mockGradeRepo {
	return &mockGradeRepo{grades: make(map[string]*model.Grade), sections: sections}
}

func (m *mockGradeRepo) Create(_ context.Context, grade *model.Grade) error {
	m.grades[grade.ID] = grade
	return nil
}

func (m *mockGradeRepo) GetByID(_ context.Context, id string) (*model.Grade, error) {
	g, ok := m.grades[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *g
	c.Sections = m.sections.byGrade(id)
	return &c, nil
}

func (m *mockGradeRepo) GetByName(_ context.Context, name string) (*model.Grade, error) {
	for _, g := range m.grades {
		if g.Name == name {
			c := *g
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockGradeRepo) List(ctx context.Context) ([]model.Grade, error) {
	var result []model.Grade
	for id := range m.grades {
		g, _ := m.GetByID(ctx, id)
		result = append(result, *g)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockGradeRepo) Update(_ context.Context, grade *model.Grade) error {
	m.grades[grade.ID].Name = grade.Name
	return nil
}

func (m *mockGradeRepo) Delete(_ context.Context, id string) error {
	delete(m.grades, id)
	return nil
}

// ── Mock SectionRepository ──

type mockSectionRepo struct {
	sections map[string]*model.Section
	grades   *mockGradeRepo
}

func newMockSectionRepo() *mockSectionRepo {
	return &mockSectionRepo{sections: make(map[string]*model.Section)}
}

func (m *mockSectionRepo) byGrade(gradeID string) []model.Section {
	var result []model.Section
	for _, s := range m.sections {
		if s.GradeID == gradeID {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

func (m *mockSectionRepo) withGrade(s *model.Section) model.Section {
	c := *s
	if g, ok := m.grades.grades[s.GradeID]; ok {
		gc := *g
		c.Grade = &gc
	}
	return c
}

func (m *mockSectionRepo) Create(_ context.Context, section *model.Section) error {
	c := *section
	c.Grade = nil
	m.sections[section.ID] = &c
	return nil
}

func (m *mockSectionRepo) GetByID(_ context.Context, id string) (*model.Section, error) {
	s, ok := m.sections[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := m.withGrade(s)
	return &c, nil
}

func (m *mockSectionRepo) List(_ context.Context, gradeID string) ([]model.Section, error) {
	var result []model.Section
	for _, s := range m.sections {
		if gradeID == "" || s.GradeID == gradeID {
			result = append(result, m.withGrade(s))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockSectionRepo) Update(_ context.Context, section *model.Section) error {
	s := m.sections[section.ID]
	s.Name = section.Name
	s.GradeID = section.GradeID
	return nil
}

func (m *mockSectionRepo) Delete(_ context.Context, id string) error {
	delete(m.sections, id)
	return nil
}

func (m *mockSectionRepo) DeleteByGrade(_ context.Context, gradeID string) (int64, error) {
	var n int64
	for id, s := range m.sections {
		if s.GradeID == gradeID {
			delete(m.sections, id)
			n++
		}
	}
	return n, nil
}

// ── Mock RoomRepository ──

type mockRoomRepo struct {
	rooms map[string]*model.Room
}

func newMockRoomRepo() *mockRoomRepo {
	return &mockRoomRepo{rooms: make(map[string]*model.Room)}
}

func (m *mockRoomRepo) Create(_ context.Context, room *model.Room) error {
	m.rooms[room.ID] = room
	return nil
}

func (m *mockRoomRepo) GetByID(_ context.Context, id string) (*model.Room, error) {
	if r, ok := m.rooms[id]; ok {
		c := *r
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRoomRepo) GetByName(_ context.Context, name string) (*model.Room, error) {
	for _, r := range m.rooms {
		if r.Name == name {
			c := *r
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRoomRepo) List(_ context.Context, roomType string) ([]model.Room, error) {
	var result []model.Room
	for _, r := range m.rooms {
		if roomType == "" || r.Type == roomType {
			result = append(result, *r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockRoomRepo) Update(_ context.Context, room *model.Room) error {
	c := *room
	m.rooms[room.ID] = &c
	return nil
}

func (m *mockRoomRepo) Delete(_ context.Context, id string) error {
	delete(m.rooms, id)
	return nil
}

// ── Mock PeriodRepository ──

type mockPeriodRepo struct {
	periods map[string]*model.Period
}

func newMockPeriodRepo() *mockPeriodRepo {
	return &mockPeriodRepo{periods: make(map[string]*model.Period)}
}

func (m *mockPeriodRepo) Create(_ context.Context, period *model.Period) error {
	if period.Version == 0 {
		period.Version = 1
	}
	c := *period
	m.periods[period.ID] = &c
	return nil
}

func (m *mockPeriodRepo) GetByID(_ context.Context, id string) (*model.Period, error) {
	if p, ok := m.periods[id]; ok {
		c := *p
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPeriodRepo) List(_ context.Context) ([]model.Period, error) {
	result := make([]model.Period, 0, len(m.periods))
	for _, p := range m.periods {
		result = append(result, *p)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Number != result[j].Number {
			return result[i].Number < result[j].Number
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (m *mockPeriodRepo) Update(_ context.Context, period *model.Period) error {
	stored, ok := m.periods[period.ID]
	if !ok || stored.Version != period.Version {
		return pkgerrors.ErrOptimisticLock
	}
	period.Version++
	c := *period
	m.periods[period.ID] = &c
	return nil
}

func (m *mockPeriodRepo) Delete(_ context.Context, id string) error {
	delete(m.periods, id)
	return nil
}

// ── Mock ScheduleEntryRepository ──

type mockScheduleEntryRepo struct {
	entries map[string]*model.ScheduleEntry
	repo    *repository.Repository // 用于模拟预加载关联

	createErr error
	updateErr error
	deleteErr error
}

func newMockScheduleEntryRepo() *mockScheduleEntryRepo {
	return &mockScheduleEntryRepo{entries: make(map[string]*model.ScheduleEntry)}
}

func (m *mockScheduleEntryRepo) Create(_ context.Context, entry *model.ScheduleEntry) error {
	if m.createErr != nil {
		return m.createErr
	}
	if entry.Version == 0 {
		entry.Version = 1
	}
	c := *entry
	m.entries[entry.ID] = &c
	return nil
}

func (m *mockScheduleEntryRepo) GetByID(ctx context.Context, id string) (*model.ScheduleEntry, error) {
	e, ok := m.entries[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := m.preload(ctx, e)
	return &c, nil
}

func (m *mockScheduleEntryRepo) List(ctx context.Context, f repository.EntryFilter) ([]model.ScheduleEntry, error) {
	var result []model.ScheduleEntry
	for _, e := range m.entries {
		if matches(e, f) {
			result = append(result, m.preload(ctx, e))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		di, dj := timetable.WeekDay(result[i].Day).Ordinal(), timetable.WeekDay(result[j].Day).Ordinal()
		if di != dj {
			return di < dj
		}
		var ni, nj int
		if result[i].Period != nil {
			ni = result[i].Period.Number
		}
		if result[j].Period != nil {
			nj = result[j].Period.Number
		}
		return ni < nj
	})
	return result, nil
}

func (m *mockScheduleEntryRepo) ListAll(_ context.Context) ([]model.ScheduleEntry, error) {
	result := make([]model.ScheduleEntry, 0, len(m.entries))
	for _, e := range m.entries {
		result = append(result, *e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockScheduleEntryRepo) Update(_ context.Context, entry *model.ScheduleEntry) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	stored, ok := m.entries[entry.ID]
	if !ok || stored.Version != entry.Version {
		return pkgerrors.ErrOptimisticLock
	}
	entry.Version++
	c := *entry
	c.Teacher, c.Grade, c.Section, c.Period, c.Room = nil, nil, nil, nil, nil
	m.entries[entry.ID] = &c
	return nil
}

func (m *mockScheduleEntryRepo) Delete(_ context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.entries[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.entries, id)
	return nil
}

func (m *mockScheduleEntryRepo) DeleteWhere(_ context.Context, f repository.EntryFilter) (int64, error) {
	if f.IsEmpty() {
		return 0, repository.ErrEmptyFilter
	}
	var n int64
	for id, e := range m.entries {
		if matches(e, f) {
			delete(m.entries, id)
			n++
		}
	}
	return n, nil
}

func (m *mockScheduleEntryRepo) preload(ctx context.Context, e *model.ScheduleEntry) model.ScheduleEntry {
	c := *e
	if m.repo == nil {
		return c
	}
	c.Teacher, _ = m.repo.Teacher.GetByID(ctx, e.TeacherID)
	c.Grade, _ = m.repo.Grade.GetByID(ctx, e.GradeID)
	c.Section, _ = m.repo.Section.GetByID(ctx, e.SectionID)
	c.Period, _ = m.repo.Period.GetByID(ctx, e.PeriodID)
	c.Room, _ = m.repo.Room.GetByID(ctx, e.RoomID)
	return c
}

func matches(e *model.ScheduleEntry, f repository.EntryFilter) bool {
	return (f.Day == "" || e.Day == f.Day) &&
		(f.TeacherID == "" || e.TeacherID == f.TeacherID) &&
		(f.GradeID == "" || e.GradeID == f.GradeID) &&
		(f.SectionID == "" || e.SectionID == f.SectionID) &&
		(f.PeriodID == "" || e.PeriodID == f.PeriodID) &&
		(f.RoomID == "" || e.RoomID == f.RoomID)
}

// ── Mock TxManager ──

// mockTxManager 直接在同一组 mock 上执行 fn；err 非空时模拟事务失败
type mockTxManager struct {
	repo *repository.Repository
	err  error
}

func (m *mockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context, repos repository.TxRepositories) error) error {
	if m.err != nil {
		return m.err
	}
	return fn(ctx, repository.TxRepositories{
		Teacher:       m.repo.Teacher,
		Grade:         m.repo.Grade,
		Section:       m.repo.Section,
		Room:          m.repo.Room,
		Period:        m.repo.Period,
		ScheduleEntry: m.repo.ScheduleEntry,
	})
}

// ── Mock Locker ──

type mockLocker struct {
	calls int
	err   error
	// onAcquire 在取得锁之后、执行 fn 之前调用，模拟其他实例在此之前提交的写入
	onAcquire func()
}

func (m *mockLocker) WithLock(_ context.Context, _ string, fn func() error) error {
	m.calls++
	if m.err != nil {
		return m.err
	}
	if m.onAcquire != nil {
		m.onAcquire()
	}
	return fn()
}

// ── 聚合 ──

type mockRepos struct {
	teachers *mockTeacherRepo
	grades   *mockGradeRepo
	sections *mockSectionRepo
	rooms    *mockRoomRepo
	periods  *mockPeriodRepo
	entries  *mockScheduleEntryRepo
	tx       *mockTxManager
}

func newMockRepository() (*repository.Repository, *mockRepos) {
	sections := newMockSectionRepo()
	grades := newMockGradeRepo(sections)
	sections.grades = grades

	m := &mockRepos{
		teachers: newMockTeacherRepo(),
		grades:   grades,
		sections: sections,
		rooms:    newMockRoomRepo(),
		periods:  newMockPeriodRepo(),
		entries:  newMockScheduleEntryRepo(),
	}
	repo := &repository.Repository{
		Teacher:       m.teachers,
		Grade:         m.grades,
		Section:       m.sections,
		Room:          m.rooms,
		Period:        m.periods,
		ScheduleEntry: m.entries,
	}
	m.tx = &mockTxManager{repo: repo}
	repo.Tx = m.tx
	m.entries.repo = repo
	return repo, m
}

// ── 测试环境 ──

type testEnv struct {
	repo   *repository.Repository
	m      *mockRepos
	engine *timetable.Engine
	guard  *CommitGuard
}

func newTestEnv() *testEnv {
	repo, m := newMockRepository()
	engine := timetable.NewEngine(zap.NewNop())
	return &testEnv{
		repo:   repo,
		m:      m,
		engine: engine,
		guard:  NewCommitGuard(repo, engine, nil, zap.NewNop()),
	}
}

func (e *testEnv) teacher(id string, weekly int, days ...timetable.WeekDay) *model.Teacher {
	t := &model.Teacher{ID: id, FullName: "教师-" + id, Subject: "数学", WeeklyPeriods: weekly, WorkDays: days}
	e.m.teachers.teachers[id] = t
	return t
}

func (e *testEnv) gradeWithSections(gradeID string, sectionIDs ...string) {
	e.m.grades.grades[gradeID] = &model.Grade{ID: gradeID, Name: "年级-" + gradeID}
	for _, sid := range sectionIDs {
		e.m.sections.sections[sid] = &model.Section{ID: sid, Name: "班-" + sid, GradeID: gradeID}
	}
}

func (e *testEnv) room(id string) *model.Room {
	r := &model.Room{ID: id, Name: "教室-" + id, Capacity: 30, Type: model.RoomTypeRegular}
	e.m.rooms.rooms[id] = r
	return r
}

func (e *testEnv) period(id string, number int, start, end string) *model.Period {
	p := &model.Period{ID: id, Number: number, StartTime: start, EndTime: end}
	p.Version = 1
	e.m.periods.periods[id] = p
	return p
}

// stored 直接写入一条排课记录（绕过服务），并按需同步索引
func (e *testEnv) stored(t *model.ScheduleEntry, indexed bool) {
	t.Version = 1
	e.m.entries.entries[t.ID] = t
	if indexed {
		if err := e.engine.IndexAdd(t.SlotEntry()); err != nil {
			panic(err)
		}
	}
}
