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
)

// ── 教师模块业务错误 ──

var (
	ErrTeacherNotFound = errors.New("教师不存在")
)

// TeacherService 教师业务接口
type TeacherService interface {
	Create(ctx context.Context, req *dto.CreateTeacherRequest) (*dto.TeacherResponse, error)
	GetByID(ctx context.Context, id string) (*dto.TeacherResponse, error)
	List(ctx context.Context, req *dto.TeacherListRequest) ([]dto.TeacherResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateTeacherRequest) (*dto.TeacherResponse, error)
	// Delete 删除教师并级联删除其排课
	Delete(ctx context.Context, id string) error
	// Load 教师当前周课时与配额
	Load(ctx context.Context, id string) (*dto.TeacherLoadResponse, error)
}

type teacherService struct {
	repo   *repository.Repository
	engine *timetable.Engine
	guard  *CommitGuard
	logger *zap.Logger
}

// NewTeacherService 创建 TeacherService 实例
func NewTeacherService(repo *repository.Repository, engine *timetable.Engine, guard *CommitGuard, logger *zap.Logger) TeacherService {
	return &teacherService{repo: repo, engine: engine, guard: guard, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *teacherService) Create(ctx context.Context, req *dto.CreateTeacherRequest) (*dto.TeacherResponse, error) {
	teacher := &model.Teacher{
		ID:            uuid.NewString(),
		FullName:      req.FullName,
		Subject:       req.Subject,
		WeeklyPeriods: req.WeeklyPeriods,
		WorkDays:      toWeekDays(req.WorkDays),
		Notes:         req.Notes,
	}

	if err := s.repo.Teacher.Create(ctx, teacher); err != nil {
		s.logger.Error("创建教师失败", zap.Error(err))
		return nil, err
	}

	return toTeacherResponse(teacher), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *teacherService) GetByID(ctx context.Context, id string) (*dto.TeacherResponse, error) {
	teacher, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toTeacherResponse(teacher), nil
}

// ────────────────────── List ──────────────────────

func (s *teacherService) List(ctx context.Context, req *dto.TeacherListRequest) ([]dto.TeacherResponse, error) {
	teachers, err := s.repo.Teacher.List(ctx, req.Keyword)
	if err != nil {
		s.logger.Error("列出教师失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.TeacherResponse, 0, len(teachers))
	for i := range teachers {
		result = append(result, *toTeacherResponse(&teachers[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *teacherService) Update(ctx context.Context, id string, req *dto.UpdateTeacherRequest) (*dto.TeacherResponse, error) {
	teacher, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		teacher.FullName = *req.FullName
	}
	if req.Subject != nil {
		teacher.Subject = *req.Subject
	}
	if req.WeeklyPeriods != nil {
		teacher.WeeklyPeriods = *req.WeeklyPeriods
	}
	if req.WorkDays != nil {
		teacher.WorkDays = toWeekDays(req.WorkDays)
	}
	if req.Notes != nil {
		teacher.Notes = req.Notes
	}

	if err := s.repo.Teacher.Update(ctx, teacher); err != nil {
		s.logger.Error("更新教师失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	// 已有排课不会被撤销，只在超出新约束时告警
	s.warnIfOverCommitted(ctx, teacher)

	return toTeacherResponse(teacher), nil
}

func (s *teacherService) warnIfOverCommitted(ctx context.Context, teacher *model.Teacher) {
	if assigned := s.engine.LoadCountFor(teacher.ID); assigned > teacher.WeeklyPeriods {
		s.logger.Warn("教师现有课时超出新配额",
			zap.String("teacher_id", teacher.ID),
			zap.Int("assigned", assigned),
			zap.Int("quota", teacher.WeeklyPeriods))
	}

	entries, err := s.repo.ScheduleEntry.List(ctx, repository.EntryFilter{TeacherID: teacher.ID})
	if err != nil {
		s.logger.Warn("查询教师排课失败", zap.String("teacher_id", teacher.ID), zap.Error(err))
		return
	}
	for _, e := range entries {
		if !teacher.WorkDays.Contains(timetable.WeekDay(e.Day)) {
			s.logger.Warn("教师在非工作日仍有排课",
				zap.String("teacher_id", teacher.ID),
				zap.String("entry_id", e.ID),
				zap.String("day", e.Day))
		}
	}
}

// ────────────────────── Delete ──────────────────────

func (s *teacherService) Delete(ctx context.Context, id string) error {
	if _, err := s.get(ctx, id); err != nil {
		return err
	}

	err := s.guard.Cascade(ctx, func(ctx context.Context, tx repository.TxRepositories) error {
		n, err := tx.ScheduleEntry.DeleteWhere(ctx, repository.EntryFilter{TeacherID: id})
		if err != nil {
			return err
		}
		if n > 0 {
			s.logger.Info("级联删除教师排课", zap.String("teacher_id", id), zap.Int64("entries", n))
		}
		return tx.Teacher.Delete(ctx, id)
	})
	if err != nil {
		s.logger.Error("删除教师失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Load ──────────────────────

func (s *teacherService) Load(ctx context.Context, id string) (*dto.TeacherLoadResponse, error) {
	teacher, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	assigned := s.engine.LoadCountFor(id)
	// 配额下调后 remaining 可能为负
	return &dto.TeacherLoadResponse{
		TeacherID: id,
		Assigned:  assigned,
		Quota:     teacher.WeeklyPeriods,
		Remaining: teacher.WeeklyPeriods - assigned,
	}, nil
}

// ── 内部辅助方法 ──

func (s *teacherService) get(ctx context.Context, id string) (*model.Teacher, error) {
	teacher, err := s.repo.Teacher.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeacherNotFound
		}
		s.logger.Error("查询教师失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return teacher, nil
}

func toWeekDays(days []string) model.WeekDayArray {
	out := make(model.WeekDayArray, 0, len(days))
	for _, d := range days {
		out = append(out, timetable.WeekDay(d))
	}
	return out
}

func toTeacherResponse(t *model.Teacher) *dto.TeacherResponse {
	days := make([]string, len(t.WorkDays))
	for i, d := range t.WorkDays {
		days[i] = string(d)
	}
	return &dto.TeacherResponse{
		ID:            t.ID,
		FullName:      t.FullName,
		Subject:       t.Subject,
		WeeklyPeriods: t.WeeklyPeriods,
		WorkDays:      days,
		Notes:         t.Notes,
		CreatedAt:     t.CreatedAt.Format(timeLayout),
		UpdatedAt:     t.UpdatedAt.Format(timeLayout),
	}
}
