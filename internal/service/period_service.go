package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/xmustafa5/TimeClass-sub001/internal/dto"
	"github.com/xmustafa5/TimeClass-sub001/internal/model"
	"github.com/xmustafa5/TimeClass-sub001/internal/repository"
	"github.com/xmustafa5/TimeClass-sub001/internal/timetable"
	pkgerrors "github.com/xmustafa5/TimeClass-sub001/pkg/errors"
)

// ── 节次模块业务错误 ──

var (
	ErrPeriodNotFound = errors.New("节次不存在")
	ErrPeriodOverlap  = errors.New("节次时间与已有节次重叠")
)

// PeriodOverlapError 携带首个冲突节次，errors.Is(err, ErrPeriodOverlap) 成立
type PeriodOverlapError struct {
	Conflicting dto.PeriodResponse
}

func (e *PeriodOverlapError) Error() string {
	return fmt.Sprintf("%s: 第 %d 节 %s-%s", ErrPeriodOverlap.Error(),
		e.Conflicting.Number, e.Conflicting.StartTime, e.Conflicting.EndTime)
}

func (e *PeriodOverlapError) Is(target error) bool { return target == ErrPeriodOverlap }

// PeriodService 节次业务接口
//
// 节次之间时间不得重叠；创建与修改在引擎提交锁内完成「校验 → 写入」。
type PeriodService interface {
	Create(ctx context.Context, req *dto.CreatePeriodRequest) (*dto.PeriodResponse, error)
	GetByID(ctx context.Context, id string) (*dto.PeriodResponse, error)
	List(ctx context.Context) ([]dto.PeriodResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdatePeriodRequest) (*dto.PeriodResponse, error)
	Delete(ctx context.Context, id string) error
	// Check 仅校验不写入，供表单实时提示
	Check(ctx context.Context, req *dto.CheckPeriodRequest) (*dto.PeriodCheckResponse, error)
}

type periodService struct {
	repo   *repository.Repository
	engine *timetable.Engine
	guard  *CommitGuard
	logger *zap.Logger
}

// NewPeriodService 创建 PeriodService 实例
func NewPeriodService(repo *repository.Repository, engine *timetable.Engine, guard *CommitGuard, logger *zap.Logger) PeriodService {
	return &periodService{repo: repo, engine: engine, guard: guard, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *periodService) Create(ctx context.Context, req *dto.CreatePeriodRequest) (*dto.PeriodResponse, error) {
	candidate, err := timetable.ParseInterval(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	period := &model.Period{
		ID:        uuid.NewString(),
		Number:    req.Number,
		StartTime: timetable.FormatClock(candidate.Start),
		EndTime:   timetable.FormatClock(candidate.End),
	}

	err = s.guard.Run(ctx, func() error {
		return s.engine.Exclusive(func() error {
			if err := s.ensureNoOverlap(ctx, candidate, ""); err != nil {
				return err
			}
			return s.repo.Period.Create(ctx, period)
		})
	})
	if err != nil {
		if isInternal(err) {
			s.logger.Error("创建节次失败", zap.Error(err))
		}
		return nil, err
	}

	return toPeriodResponse(period), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *periodService) GetByID(ctx context.Context, id string) (*dto.PeriodResponse, error) {
	period, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toPeriodResponse(period), nil
}

// ────────────────────── List ──────────────────────

func (s *periodService) List(ctx context.Context) ([]dto.PeriodResponse, error) {
	periods, err := s.repo.Period.List(ctx)
	if err != nil {
		s.logger.Error("列出节次失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.PeriodResponse, 0, len(periods))
	for i := range periods {
		result = append(result, *toPeriodResponse(&periods[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *periodService) Update(ctx context.Context, id string, req *dto.UpdatePeriodRequest) (*dto.PeriodResponse, error) {
	var period *model.Period

	err := s.guard.Run(ctx, func() error {
		return s.engine.Exclusive(func() error {
			var err error
			period, err = s.get(ctx, id)
			if err != nil {
				return err
			}
			if period.Version != req.Version {
				return pkgerrors.ErrOptimisticLock
			}

			start, end := period.StartTime, period.EndTime
			if req.StartTime != nil {
				start = *req.StartTime
			}
			if req.EndTime != nil {
				end = *req.EndTime
			}
			candidate, err := timetable.ParseInterval(start, end)
			if err != nil {
				return err
			}
			if err := s.ensureNoOverlap(ctx, candidate, id); err != nil {
				return err
			}

			if req.Number != nil {
				period.Number = *req.Number
			}
			period.StartTime = timetable.FormatClock(candidate.Start)
			period.EndTime = timetable.FormatClock(candidate.End)
			return s.repo.Period.Update(ctx, period)
		})
	})
	if err != nil {
		if isInternal(err) {
			s.logger.Error("更新节次失败", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}

	return toPeriodResponse(period), nil
}

// ────────────────────── Delete ──────────────────────

func (s *periodService) Delete(ctx context.Context, id string) error {
	if _, err := s.get(ctx, id); err != nil {
		return err
	}

	err := s.guard.Cascade(ctx, func(ctx context.Context, tx repository.TxRepositories) error {
		if _, err := tx.ScheduleEntry.DeleteWhere(ctx, repository.EntryFilter{PeriodID: id}); err != nil {
			return err
		}
		return tx.Period.Delete(ctx, id)
	})
	if err != nil {
		s.logger.Error("删除节次失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Check ──────────────────────

func (s *periodService) Check(ctx context.Context, req *dto.CheckPeriodRequest) (*dto.PeriodCheckResponse, error) {
	candidate, err := timetable.ParseInterval(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	periods, spans, err := s.loadSpans(ctx)
	if err != nil {
		return nil, err
	}

	result := timetable.CheckPeriod(candidate, spans, req.ExcludeID)
	resp := &dto.PeriodCheckResponse{Valid: result.Valid}
	if !result.Valid {
		resp.ConflictingPeriod = toPeriodResponse(periods[result.ConflictingPeriod.ID])
	}
	return resp, nil
}

// ── 内部辅助方法 ──

func (s *periodService) ensureNoOverlap(ctx context.Context, candidate timetable.Interval, excludeID string) error {
	periods, spans, err := s.loadSpans(ctx)
	if err != nil {
		return err
	}
	result := timetable.CheckPeriod(candidate, spans, excludeID)
	if result.Valid {
		return nil
	}
	return &PeriodOverlapError{Conflicting: *toPeriodResponse(periods[result.ConflictingPeriod.ID])}
}

func (s *periodService) loadSpans(ctx context.Context) (map[string]*model.Period, []timetable.PeriodSpan, error) {
	periods, err := s.repo.Period.List(ctx)
	if err != nil {
		s.logger.Error("列出节次失败", zap.Error(err))
		return nil, nil, err
	}

	byID := make(map[string]*model.Period, len(periods))
	spans := make([]timetable.PeriodSpan, 0, len(periods))
	for i := range periods {
		span, err := periods[i].Span()
		if err != nil {
			s.logger.Error("已存储的节次时间非法", zap.String("id", periods[i].ID), zap.Error(err))
			return nil, nil, fmt.Errorf("%w: 节次 %s", timetable.ErrInternalInconsistency, periods[i].ID)
		}
		byID[periods[i].ID] = &periods[i]
		spans = append(spans, span)
	}
	return byID, spans, nil
}

func (s *periodService) get(ctx context.Context, id string) (*model.Period, error) {
	period, err := s.repo.Period.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPeriodNotFound
		}
		s.logger.Error("查询节次失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return period, nil
}

func toPeriodResponse(p *model.Period) *dto.PeriodResponse {
	return &dto.PeriodResponse{
		ID:        p.ID,
		Number:    p.Number,
		StartTime: clock(p.StartTime),
		EndTime:   clock(p.EndTime),
		Version:   p.Version,
	}
}

// clock 将数据库 TIME 值（08:00:00）规整为 08:00
func clock(raw string) string {
	m, err := timetable.ParseClock(raw)
	if err != nil {
		return raw
	}
	return timetable.FormatClock(m)
}
