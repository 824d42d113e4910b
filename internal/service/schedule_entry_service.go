package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/xmustafa5/TimeClass-sub001/internal/dto"
	"github.com/xmustafa5/TimeClass-sub001/internal/model"
	"github.com/xmustafa5/TimeClass-sub001/internal/repository"
	"github.com/xmustafa5/TimeClass-sub001/internal/timetable"
	pkgerrors "github.com/xmustafa5/TimeClass-sub001/pkg/errors"
)

// ── 排课模块业务错误 ──

var (
	ErrScheduleEntryNotFound = errors.New("排课记录不存在")
	ErrScheduleConflict      = errors.New("排课冲突")
	ErrSectionGradeMismatch  = errors.New("班级不属于所选年级")
)

// ConflictError 排课准入被拒绝，携带引擎给出的冲突详情
type ConflictError struct {
	Type               timetable.ConflictType
	Message            string
	ConflictingEntryID string
}

func (e *ConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

func (e *ConflictError) Is(target error) bool { return target == ErrScheduleConflict }

func newConflictError(check timetable.ConflictCheck) *ConflictError {
	return &ConflictError{
		Type:               check.ConflictType,
		Message:            check.Message,
		ConflictingEntryID: check.ConflictingEntryID,
	}
}

// ScheduleEntryService 排课业务接口
//
// 写操作经 CommitGuard 与 Engine.Admit / Retire 串行化，
// 「冲突检查 → 写库 → 更新索引」不会被并发写入打断。
type ScheduleEntryService interface {
	Create(ctx context.Context, req *dto.CreateScheduleEntryRequest) (*dto.ScheduleEntryResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ScheduleEntryResponse, error)
	List(ctx context.Context, req *dto.ScheduleEntryListRequest) ([]dto.ScheduleEntryResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateScheduleEntryRequest) (*dto.ScheduleEntryResponse, error)
	Delete(ctx context.Context, id string) error
	// Check 仅做冲突检查不写入
	Check(ctx context.Context, req *dto.CheckScheduleEntryRequest) (*dto.ConflictResponse, error)
}

type scheduleEntryService struct {
	repo   *repository.Repository
	engine *timetable.Engine
	guard  *CommitGuard
	logger *zap.Logger
}

// NewScheduleEntryService 创建 ScheduleEntryService 实例
func NewScheduleEntryService(repo *repository.Repository, engine *timetable.Engine, guard *CommitGuard, logger *zap.Logger) ScheduleEntryService {
	return &scheduleEntryService{repo: repo, engine: engine, guard: guard, logger: logger}
}

// entryRefs 排课记录引用的实体
type entryRefs struct {
	teacher *model.Teacher
	grade   *model.Grade
	section *model.Section
	period  *model.Period
	room    *model.Room
}

func (r *entryRefs) attach(e *model.ScheduleEntry) {
	e.Teacher, e.Grade, e.Section, e.Period, e.Room = r.teacher, r.grade, r.section, r.period, r.room
}

// ────────────────────── Create ──────────────────────

func (s *scheduleEntryService) Create(ctx context.Context, req *dto.CreateScheduleEntryRequest) (*dto.ScheduleEntryResponse, error) {
	refs, err := s.resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	entry := newEntry(uuid.NewString(), req)

	err = s.guard.Run(ctx, func() error {
		check, err := s.engine.Admit(entry.SlotEntry(), refs.teacher.Policy(), "", func() error {
			if err := s.verifySection(ctx, req); err != nil {
				return err
			}
			return s.repo.ScheduleEntry.Create(ctx, entry)
		})
		if err != nil {
			return err
		}
		if check.HasConflict {
			return newConflictError(check)
		}
		return nil
	})
	if err != nil {
		if isInternal(err) {
			s.logger.Error("创建排课失败", zap.Error(err))
		}
		return nil, err
	}

	refs.attach(entry)
	return toScheduleEntryResponse(entry), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *scheduleEntryService) GetByID(ctx context.Context, id string) (*dto.ScheduleEntryResponse, error) {
	entry, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toScheduleEntryResponse(entry), nil
}

// ────────────────────── List ──────────────────────

func (s *scheduleEntryService) List(ctx context.Context, req *dto.ScheduleEntryListRequest) ([]dto.ScheduleEntryResponse, error) {
	entries, err := s.repo.ScheduleEntry.List(ctx, repository.EntryFilter{
		Day:       req.Day,
		TeacherID: req.TeacherID,
		GradeID:   req.GradeID,
		SectionID: req.SectionID,
		PeriodID:  req.PeriodID,
		RoomID:    req.RoomID,
	})
	if err != nil {
		s.logger.Error("列出排课失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.ScheduleEntryResponse, 0, len(entries))
	for i := range entries {
		result = append(result, *toScheduleEntryResponse(&entries[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *scheduleEntryService) Update(ctx context.Context, id string, req *dto.UpdateScheduleEntryRequest) (*dto.ScheduleEntryResponse, error) {
	existing, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Version != req.Version {
		return nil, pkgerrors.ErrOptimisticLock
	}

	refs, err := s.resolve(ctx, &req.CreateScheduleEntryRequest)
	if err != nil {
		return nil, err
	}

	entry := newEntry(id, &req.CreateScheduleEntryRequest)
	entry.VersionedModel = existing.VersionedModel

	err = s.guard.Run(ctx, func() error {
		check, err := s.engine.Admit(entry.SlotEntry(), refs.teacher.Policy(), id, func() error {
			if err := s.verifySection(ctx, &req.CreateScheduleEntryRequest); err != nil {
				return err
			}
			return s.repo.ScheduleEntry.Update(ctx, entry)
		})
		if err != nil {
			return err
		}
		if check.HasConflict {
			return newConflictError(check)
		}
		return nil
	})
	if err != nil {
		if isInternal(err) {
			s.logger.Error("更新排课失败", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}

	refs.attach(entry)
	return toScheduleEntryResponse(entry), nil
}

// ────────────────────── Delete ──────────────────────

func (s *scheduleEntryService) Delete(ctx context.Context, id string) error {
	err := s.guard.Run(ctx, func() error {
		return s.engine.Retire(id, func() error {
			err := s.repo.ScheduleEntry.Delete(ctx, id)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrScheduleEntryNotFound
			}
			return err
		})
	})
	if err != nil {
		if isInternal(err) {
			s.logger.Error("删除排课失败", zap.String("id", id), zap.Error(err))
		}
		return err
	}
	return nil
}

// ────────────────────── Check ──────────────────────

func (s *scheduleEntryService) Check(ctx context.Context, req *dto.CheckScheduleEntryRequest) (*dto.ConflictResponse, error) {
	refs, err := s.resolve(ctx, &req.CreateScheduleEntryRequest)
	if err != nil {
		return nil, err
	}

	candidate := newEntry(req.ExcludeID, &req.CreateScheduleEntryRequest).SlotEntry()
	check, err := s.engine.CheckEntry(candidate, refs.teacher.Policy(), req.ExcludeID)
	if err != nil {
		return nil, err
	}

	return &dto.ConflictResponse{
		HasConflict:        check.HasConflict,
		ConflictType:       string(check.ConflictType),
		Message:            check.Message,
		ConflictingEntryID: check.ConflictingEntryID,
	}, nil
}

// ── 内部辅助方法 ──

// resolve 校验所有引用存在，且班级隶属于所选年级
func (s *scheduleEntryService) resolve(ctx context.Context, req *dto.CreateScheduleEntryRequest) (*entryRefs, error) {
	var refs entryRefs
	var err error

	if refs.teacher, err = s.repo.Teacher.GetByID(ctx, req.TeacherID); err != nil {
		return nil, s.notFound(err, ErrTeacherNotFound, "teacher_id", req.TeacherID)
	}
	if refs.grade, err = s.repo.Grade.GetByID(ctx, req.GradeID); err != nil {
		return nil, s.notFound(err, ErrGradeNotFound, "grade_id", req.GradeID)
	}
	if refs.section, err = s.repo.Section.GetByID(ctx, req.SectionID); err != nil {
		return nil, s.notFound(err, ErrSectionNotFound, "section_id", req.SectionID)
	}
	if refs.period, err = s.repo.Period.GetByID(ctx, req.PeriodID); err != nil {
		return nil, s.notFound(err, ErrPeriodNotFound, "period_id", req.PeriodID)
	}
	if refs.room, err = s.repo.Room.GetByID(ctx, req.RoomID); err != nil {
		return nil, s.notFound(err, ErrRoomNotFound, "room_id", req.RoomID)
	}

	if refs.section.GradeID != refs.grade.ID {
		return nil, ErrSectionGradeMismatch
	}
	return &refs, nil
}

// verifySection 在提交锁内复核班级归属；班级换年级同样持有该锁
func (s *scheduleEntryService) verifySection(ctx context.Context, req *dto.CreateScheduleEntryRequest) error {
	section, err := s.repo.Section.GetByID(ctx, req.SectionID)
	if err != nil {
		return s.notFound(err, ErrSectionNotFound, "section_id", req.SectionID)
	}
	if section.GradeID != req.GradeID {
		return ErrSectionGradeMismatch
	}
	return nil
}

func (s *scheduleEntryService) notFound(err, sentinel error, field, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	s.logger.Error("查询排课引用失败", zap.String(field, id), zap.Error(err))
	return err
}

func (s *scheduleEntryService) get(ctx context.Context, id string) (*model.ScheduleEntry, error) {
	entry, err := s.repo.ScheduleEntry.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleEntryNotFound
		}
		s.logger.Error("查询排课失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return entry, nil
}

func newEntry(id string, req *dto.CreateScheduleEntryRequest) *model.ScheduleEntry {
	return &model.ScheduleEntry{
		ID:        id,
		TeacherID: req.TeacherID,
		GradeID:   req.GradeID,
		SectionID: req.SectionID,
		PeriodID:  req.PeriodID,
		RoomID:    req.RoomID,
		Day:       req.Day,
		Subject:   req.Subject,
	}
}

func toScheduleEntryResponse(e *model.ScheduleEntry) *dto.ScheduleEntryResponse {
	resp := &dto.ScheduleEntryResponse{
		ID:        e.ID,
		TeacherID: e.TeacherID,
		GradeID:   e.GradeID,
		SectionID: e.SectionID,
		PeriodID:  e.PeriodID,
		RoomID:    e.RoomID,
		Day:       e.Day,
		Subject:   e.Subject,
		Version:   e.Version,
	}
	if e.Teacher != nil {
		resp.Teacher = &dto.TeacherBrief{ID: e.Teacher.ID, FullName: e.Teacher.FullName}
	}
	if e.Grade != nil {
		resp.Grade = &dto.GradeBrief{ID: e.Grade.ID, Name: e.Grade.Name}
	}
	if e.Section != nil {
		resp.Section = &dto.SectionBrief{ID: e.Section.ID, Name: e.Section.Name}
	}
	if e.Period != nil {
		resp.Period = toPeriodResponse(e.Period)
	}
	if e.Room != nil {
		resp.Room = toRoomResponse(e.Room)
	}
	return resp
}
