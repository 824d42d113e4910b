package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xmustafa5/TimeClass-sub001/internal/model"
	pkgerrors "github.com/xmustafa5/TimeClass-sub001/pkg/errors"
)

// ErrEmptyFilter 批量删除必须至少指定一个条件
var ErrEmptyFilter = errors.New("批量删除排课记录必须指定过滤条件")

// EntryFilter 排课记录过滤条件，空字段不参与过滤
type EntryFilter struct {
	Day       string
	TeacherID string
	GradeID   string
	SectionID string
	PeriodID  string
	RoomID    string
}

// IsEmpty 是否未指定任何条件
func (f EntryFilter) IsEmpty() bool {
	return f == EntryFilter{}
}

func (f EntryFilter) apply(db *gorm.DB) *gorm.DB {
	if f.Day != "" {
		db = db.Where("schedule_entries.day = ?", f.Day)
	}
	if f.TeacherID != "" {
		db = db.Where("schedule_entries.teacher_id = ?", f.TeacherID)
	}
	if f.GradeID != "" {
		db = db.Where("schedule_entries.grade_id = ?", f.GradeID)
	}
	if f.SectionID != "" {
		db = db.Where("schedule_entries.section_id = ?", f.SectionID)
	}
	if f.PeriodID != "" {
		db = db.Where("schedule_entries.period_id = ?", f.PeriodID)
	}
	if f.RoomID != "" {
		db = db.Where("schedule_entries.room_id = ?", f.RoomID)
	}
	return db
}

// ScheduleEntryRepository 排课记录数据访问接口
type ScheduleEntryRepository interface {
	Create(ctx context.Context, entry *model.ScheduleEntry) error
	GetByID(ctx context.Context, id string) (*model.ScheduleEntry, error)
	List(ctx context.Context, filter EntryFilter) ([]model.ScheduleEntry, error)
	ListAll(ctx context.Context) ([]model.ScheduleEntry, error)
	Update(ctx context.Context, entry *model.ScheduleEntry) error
	Delete(ctx context.Context, id string) error
	DeleteWhere(ctx context.Context, filter EntryFilter) (int64, error)
}

type scheduleEntryRepo struct {
	db *gorm.DB
}

// NewScheduleEntryRepo 创建 ScheduleEntryRepository 实例
func NewScheduleEntryRepo(db *gorm.DB) ScheduleEntryRepository {
	return &scheduleEntryRepo{db: db}
}

func (r *scheduleEntryRepo) Create(ctx context.Context, entry *model.ScheduleEntry) error {
	return r.db.WithContext(ctx).
		Omit("Teacher", "Grade", "Section", "Period", "Room").
		Create(entry).Error
}

func (r *scheduleEntryRepo) GetByID(ctx context.Context, id string) (*model.ScheduleEntry, error) {
	var entry model.ScheduleEntry
	err := r.preloadAll(r.db.WithContext(ctx)).
		Where("id = ?", id).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// List 带关联的过滤查询，按教学日与节次排序
func (r *scheduleEntryRepo) List(ctx context.Context, filter EntryFilter) ([]model.ScheduleEntry, error) {
	var entries []model.ScheduleEntry
	err := filter.apply(r.preloadAll(r.db.WithContext(ctx))).
		Joins("JOIN periods ON periods.id = schedule_entries.period_id").
		Order(dayOrderExpr + ", periods.number ASC").
		Find(&entries).Error
	return entries, err
}

// ListAll 不带关联的全量查询，用于索引重建
func (r *scheduleEntryRepo) ListAll(ctx context.Context) ([]model.ScheduleEntry, error) {
	var entries []model.ScheduleEntry
	err := r.db.WithContext(ctx).Order("id ASC").Find(&entries).Error
	return entries, err
}

func (r *scheduleEntryRepo) Update(ctx context.Context, entry *model.ScheduleEntry) error {
	oldVersion := entry.Version
	result := r.db.WithContext(ctx).
		Model(entry).
		Where("id = ? AND version = ?", entry.ID, oldVersion).
		Updates(map[string]interface{}{
			"teacher_id": entry.TeacherID,
			"grade_id":   entry.GradeID,
			"section_id": entry.SectionID,
			"period_id":  entry.PeriodID,
			"room_id":    entry.RoomID,
			"day":        entry.Day,
			"subject":    entry.Subject,
			"version":    oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	entry.Version = oldVersion + 1
	return nil
}

func (r *scheduleEntryRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.ScheduleEntry{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteWhere 级联删除引用某实体的排课记录，返回删除条数
func (r *scheduleEntryRepo) DeleteWhere(ctx context.Context, filter EntryFilter) (int64, error) {
	if filter.IsEmpty() {
		return 0, ErrEmptyFilter
	}
	result := filter.apply(r.db.WithContext(ctx)).Delete(&model.ScheduleEntry{})
	return result.RowsAffected, result.Error
}

func (r *scheduleEntryRepo) preloadAll(db *gorm.DB) *gorm.DB {
	return db.Preload("Teacher").
		Preload("Grade").
		Preload("Section").
		Preload("Period").
		Preload("Room")
}

const dayOrderExpr = `CASE schedule_entries.day
	WHEN 'sunday' THEN 1 WHEN 'monday' THEN 2 WHEN 'tuesday' THEN 3
	WHEN 'wednesday' THEN 4 WHEN 'thursday' THEN 5 END`
