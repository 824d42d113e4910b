package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/xmustafa5/TimeClass-sub001/internal/model"
	pkgerrors "github.com/xmustafa5/TimeClass-sub001/pkg/errors"
)

// PeriodRepository 节次数据访问接口
type PeriodRepository interface {
	Create(ctx context.Context, period *model.Period) error
	GetByID(ctx context.Context, id string) (*model.Period, error)
	List(ctx context.Context) ([]model.Period, error)
	Update(ctx context.Context, period *model.Period) error
	Delete(ctx context.Context, id string) error
}

type periodRepo struct {
	db *gorm.DB
}

// NewPeriodRepo 创建 PeriodRepository 实例
func NewPeriodRepo(db *gorm.DB) PeriodRepository {
	return &periodRepo{db: db}
}

func (r *periodRepo) Create(ctx context.Context, period *model.Period) error {
	return r.db.WithContext(ctx).Create(period).Error
}

func (r *periodRepo) GetByID(ctx context.Context, id string) (*model.Period, error) {
	var period model.Period
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&period).Error; err != nil {
		return nil, err
	}
	return &period, nil
}

// List 按节次编号升序返回全部节次
func (r *periodRepo) List(ctx context.Context) ([]model.Period, error) {
	var periods []model.Period
	err := r.db.WithContext(ctx).Order("number ASC, id ASC").Find(&periods).Error
	return periods, err
}

func (r *periodRepo) Update(ctx context.Context, period *model.Period) error {
	oldVersion := period.Version
	result := r.db.WithContext(ctx).
		Model(period).
		Where("id = ? AND version = ?", period.ID, oldVersion).
		Updates(map[string]interface{}{
			"number":     period.Number,
			"start_time": period.StartTime,
			"end_time":   period.EndTime,
			"version":    oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	period.Version = oldVersion + 1
	return nil
}

func (r *periodRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Period{}).Error
}
