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
)

// ── 年级模块业务错误 ──

var (
	ErrGradeNotFound   = errors.New("年级不存在")
	ErrGradeNameExists = errors.New("年级名称已存在")
)

// GradeService 年级业务接口
type GradeService interface {
	Create(ctx context.Context, req *dto.CreateGradeRequest) (*dto.GradeResponse, error)
	GetByID(ctx context.Context, id string) (*dto.GradeResponse, error)
	List(ctx context.Context) ([]dto.GradeResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateGradeRequest) (*dto.GradeResponse, error)
	// Delete 事务内依次删除排课、班级、年级
	Delete(ctx context.Context, id string) error
}

type gradeService struct {
	repo   *repository.Repository
	guard  *CommitGuard
	logger *zap.Logger
}

// NewGradeService 创建 GradeService 实例
func NewGradeService(repo *repository.Repository, guard *CommitGuard, logger *zap.Logger) GradeService {
	return &gradeService{repo: repo, guard: guard, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *gradeService) Create(ctx context.Context, req *dto.CreateGradeRequest) (*dto.GradeResponse, error) {
	if err := s.ensureNameFree(ctx, req.Name, ""); err != nil {
		return nil, err
	}

	grade := &model.Grade{ID: uuid.NewString(), Name: req.Name}
	if err := s.repo.Grade.Create(ctx, grade); err != nil {
		s.logger.Error("创建年级失败", zap.Error(err))
		return nil, err
	}

	return toGradeResponse(grade), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *gradeService) GetByID(ctx context.Context, id string) (*dto.GradeResponse, error) {
	grade, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toGradeResponse(grade), nil
}

// ────────────────────── List ──────────────────────

func (s *gradeService) List(ctx context.Context) ([]dto.GradeResponse, error) {
	grades, err := s.repo.Grade.List(ctx)
	if err != nil {
		s.logger.Error("列出年级失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.GradeResponse, 0, len(grades))
	for i := range grades {
		result = append(result, *toGradeResponse(&grades[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *gradeService) Update(ctx context.Context, id string, req *dto.UpdateGradeRequest) (*dto.GradeResponse, error) {
	grade, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != grade.Name {
		if err := s.ensureNameFree(ctx, req.Name, id); err != nil {
			return nil, err
		}
		grade.Name = req.Name
	}

	if err := s.repo.Grade.Update(ctx, grade); err != nil {
		s.logger.Error("更新年级失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toGradeResponse(grade), nil
}

// ────────────────────── Delete ──────────────────────

func (s *gradeService) Delete(ctx context.Context, id string) error {
	if _, err := s.get(ctx, id); err != nil {
		return err
	}

	err := s.guard.Cascade(ctx, func(ctx context.Context, tx repository.TxRepositories) error {
		entries, err := tx.ScheduleEntry.DeleteWhere(ctx, repository.EntryFilter{GradeID: id})
		if err != nil {
			return err
		}
		sections, err := tx.Section.DeleteByGrade(ctx, id)
		if err != nil {
			return err
		}
		s.logger.Info("级联删除年级",
			zap.String("grade_id", id),
			zap.Int64("sections", sections),
			zap.Int64("entries", entries))
		return tx.Grade.Delete(ctx, id)
	})
	if err != nil {
		s.logger.Error("删除年级失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

func (s *gradeService) get(ctx context.Context, id string) (*model.Grade, error) {
	grade, err := s.repo.Grade.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGradeNotFound
		}
		s.logger.Error("查询年级失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return grade, nil
}

func (s *gradeService) ensureNameFree(ctx context.Context, name, selfID string) error {
	existing, err := s.repo.Grade.GetByName(ctx, name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询年级失败", zap.Error(err))
		return err
	}
	if existing != nil && existing.ID != selfID {
		return ErrGradeNameExists
	}
	return nil
}

func toGradeResponse(g *model.Grade) *dto.GradeResponse {
	sections := make([]dto.SectionBrief, 0, len(g.Sections))
	for _, sec := range g.Sections {
		sections = append(sections, dto.SectionBrief{ID: sec.ID, Name: sec.Name})
	}
	return &dto.GradeResponse{ID: g.ID, Name: g.Name, Sections: sections}
}
