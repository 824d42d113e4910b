package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/xmustafa5/TimeClass-sub001/internal/model"
)

// SectionRepository 班级数据访问接口
type SectionRepository interface {
	Create(ctx context.Context, section *model.Section) error
	GetByID(ctx context.Context, id string) (*model.Section, error)
	List(ctx context.Context, gradeID string) ([]model.Section, error)
	Update(ctx context.Context, section *model.Section) error
	Delete(ctx context.Context, id string) error
	DeleteByGrade(ctx context.Context, gradeID string) (int64, error)
}

type sectionRepo struct {
	db *gorm.DB
}

// NewSectionRepo 创建 SectionRepository 实例
func NewSectionRepo(db *gorm.DB) SectionRepository {
	return &sectionRepo{db: db}
}

func (r *sectionRepo) Create(ctx context.Context, section *model.Section) error {
	return r.db.WithContext(ctx).Omit("Grade").Create(section).Error
}

func (r *sectionRepo) GetByID(ctx context.Context, id string) (*model.Section, error) {
	var section model.Section
	err := r.db.WithContext(ctx).
		Preload("Grade").
		Where("id = ?", id).
		First(&section).Error
	if err != nil {
		return nil, err
	}
	return &section, nil
}

func (r *sectionRepo) List(ctx context.Context, gradeID string) ([]model.Section, error) {
	var sections []model.Section
	db := r.db.WithContext(ctx).Preload("Grade")
	if gradeID != "" {
		db = db.Where("grade_id = ?", gradeID)
	}
	err := db.Order("name ASC").Find(&sections).Error
	return sections, err
}

func (r *sectionRepo) Update(ctx context.Context, section *model.Section) error {
	return r.db.WithContext(ctx).
		Model(section).
		Updates(map[string]interface{}{
			"name":     section.Name,
			"grade_id": section.GradeID,
		}).Error
}

func (r *sectionRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Section{}).Error
}

func (r *sectionRepo) DeleteByGrade(ctx context.Context, gradeID string) (int64, error) {
	result := r.db.WithContext(ctx).Where("grade_id = ?", gradeID).Delete(&model.Section{})
	return result.RowsAffected, result.Error
}
