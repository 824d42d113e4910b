package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/xmustafa5/TimeClass-sub001/internal/model"
)

// GradeRepository 年级数据访问接口
type GradeRepository interface {
	Create(ctx context.Context, grade *model.Grade) error
	GetByID(ctx context.Context, id string) (*model.Grade, error)
	GetByName(ctx context.Context, name string) (*model.Grade, error)
	List(ctx context.Context) ([]model.Grade, error)
	Update(ctx context.Context, grade *model.Grade) error
	Delete(ctx context.Context, id string) error
}

type gradeRepo struct {
	db *gorm.DB
}

// NewGradeRepo 创建 GradeRepository 实例
func NewGradeRepo(db *gorm.DB) GradeRepository {
	return &gradeRepo{db: db}
}

func (r *gradeRepo) Create(ctx context.Context, grade *model.Grade) error {
	return r.db.WithContext(ctx).Omit("Sections").Create(grade).Error
}

func (r *gradeRepo) GetByID(ctx context.Context, id string) (*model.Grade, error) {
	var grade model.Grade
	err := r.db.WithContext(ctx).
		Preload("Sections", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Where("id = ?", id).
		First(&grade).Error
	if err != nil {
		return nil, err
	}
	return &grade, nil
}

func (r *gradeRepo) GetByName(ctx context.Context, name string) (*model.Grade, error) {
	var grade model.Grade
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&grade).Error; err != nil {
		return nil, err
	}
	return &grade, nil
}

func (r *gradeRepo) List(ctx context.Context) ([]model.Grade, error) {
	var grades []model.Grade
	err := r.db.WithContext(ctx).
		Preload("Sections", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Order("name ASC").
		Find(&grades).Error
	return grades, err
}

func (r *gradeRepo) Update(ctx context.Context, grade *model.Grade) error {
	return r.db.WithContext(ctx).
		Model(grade).
		Update("name", grade.Name).Error
}

func (r *gradeRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Grade{}).Error
}
