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

// ── 班级模块业务错误 ──

var (
	ErrSectionNotFound   = errors.New("班级不存在")
	ErrSectionHasEntries = errors.New("班级已有排课，不能变更所属年级")
)

// SectionService 班级业务接口
type SectionService interface {
	Create(ctx context.Context, req *dto.CreateSectionRequest) (*dto.SectionResponse, error)
	GetByID(ctx context.Context, id string) (*dto.SectionResponse, error)
	List(ctx context.Context, req *dto.SectionListRequest) ([]dto.SectionResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateSectionRequest) (*dto.SectionResponse, error)
	Delete(ctx context.Context, id string) error
}

type sectionService struct {
	repo   *repository.Repository
	guard  *CommitGuard
	logger *zap.Logger
}

// NewSectionService 创建 SectionService 实例
func NewSectionService(repo *repository.Repository, guard *CommitGuard, logger *zap.Logger) SectionService {
	return &sectionService{repo: repo, guard: guard, logger: logger}
}

func (s *sectionService) Create(ctx context.Context, req *dto.CreateSectionRequest) (*dto.SectionResponse, error) {
	grade, err := s.getGrade(ctx, req.GradeID)
	if err != nil {
		return nil, err
	}

	section := &model.Section{ID: uuid.NewString(), Name: req.Name, GradeID: grade.ID}
	if err := s.repo.Section.Create(ctx, section); err != nil {
		s.logger.Error("创建班级失败", zap.Error(err))
		return nil, err
	}
	section.Grade = grade

	return toSectionResponse(section), nil
}

func (s *sectionService) GetByID(ctx context.Context, id string) (*dto.SectionResponse, error) {
	section, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toSectionResponse(section), nil
}

func (s *sectionService) List(ctx context.Context, req *dto.SectionListRequest) ([]dto.SectionResponse, error) {
	sections, err := s.repo.Section.List(ctx, req.GradeID)
	if err != nil {
		s.logger.Error("列出班级失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.SectionResponse, 0, len(sections))
	for i := range sections {
		result = append(result, *toSectionResponse(&sections[i]))
	}
	return result, nil
}

func (s *sectionService) Update(ctx context.Context, id string, req *dto.UpdateSectionRequest) (*dto.SectionResponse, error) {
	section, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		section.Name = *req.Name
	}
	if req.GradeID == nil || *req.GradeID == section.GradeID {
		if err := s.repo.Section.Update(ctx, section); err != nil {
			s.logger.Error("更新班级失败", zap.String("id", id), zap.Error(err))
			return nil, err
		}
		return toSectionResponse(section), nil
	}

	grade, err := s.getGrade(ctx, *req.GradeID)
	if err != nil {
		return nil, err
	}

	// 排课记录冗余保存了 grade_id，检查与写入须和排课提交互斥
	err = s.guard.Serialize(ctx, func() error {
		entries, err := s.repo.ScheduleEntry.List(ctx, repository.EntryFilter{SectionID: id})
		if err != nil {
			s.logger.Error("查询班级排课失败", zap.String("id", id), zap.Error(err))
			return err
		}
		if len(entries) > 0 {
			return ErrSectionHasEntries
		}
		section.GradeID = grade.ID
		section.Grade = grade
		if err := s.repo.Section.Update(ctx, section); err != nil {
			s.logger.Error("更新班级失败", zap.String("id", id), zap.Error(err))
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toSectionResponse(section), nil
}

func (s *sectionService) Delete(ctx context.Context, id string) error {
	if _, err := s.get(ctx, id); err != nil {
		return err
	}

	err := s.guard.Cascade(ctx, func(ctx context.Context, tx repository.TxRepositories) error {
		if _, err := tx.ScheduleEntry.DeleteWhere(ctx, repository.EntryFilter{SectionID: id}); err != nil {
			return err
		}
		return tx.Section.Delete(ctx, id)
	})
	if err != nil {
		s.logger.Error("删除班级失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

func (s *sectionService) get(ctx context.Context, id string) (*model.Section, error) {
	section, err := s.repo.Section.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSectionNotFound
		}
		s.logger.Error("查询班级失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return section, nil
}

func (s *sectionService) getGrade(ctx context.Context, id string) (*model.Grade, error) {
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

func toSectionResponse(sec *model.Section) *dto.SectionResponse {
	resp := &dto.SectionResponse{ID: sec.ID, Name: sec.Name, GradeID: sec.GradeID}
	if sec.Grade != nil {
		resp.Grade = &dto.GradeBrief{ID: sec.Grade.ID, Name: sec.Grade.Name}
	}
	return resp
}
