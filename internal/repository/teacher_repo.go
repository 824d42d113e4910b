package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/xmustafa5/TimeClass-sub001/internal/model"
)

// TeacherRepository 教师数据访问接口
type TeacherRepository interface {
	Create(ctx context.Context, teacher *model.Teacher) error
	GetByID(ctx context.Context, id string) (*model.Teacher, error)
	List(ctx context.Context, keyword string) ([]model.Teacher, error)
	Update(ctx context.Context, teacher *model.Teacher) error
	Delete(ctx context.Context, id string) error
}

type teacherRepo struct {
	db *gorm.DB
}

// NewTeacherRepo 创建 TeacherRepository 实例
func NewTeacherRepo(db *gorm.DB) TeacherRepository {
	return &teacherRepo{db: db}
}

func (r *teacherRepo) Create(ctx context.Context, teacher *model.Teacher) error {
	return r.db.WithContext(ctx).Create(teacher).Error
}

func (r *teacherRepo) GetByID(ctx context.Context, id string) (*model.Teacher, error) {
	var teacher model.Teacher
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&teacher).Error; err != nil {
		return nil, err
	}
	return &teacher, nil
}

func (r *teacherRepo) List(ctx context.Context, keyword string) ([]model.Teacher, error) {
	var teachers []model.Teacher
	db := r.db.WithContext(ctx)
	if keyword != "" {
		like := "%" + keyword + "%"
		db = db.Where("full_name ILIKE ? OR subject ILIKE ?", like, like)
	}
	err := db.Order("full_name ASC").Find(&teachers).Error
	return teachers, err
}

func (r *teacherRepo) Update(ctx context.Context, teacher *model.Teacher) error {
	return r.db.WithContext(ctx).
		Model(teacher).
		Updates(map[string]interface{}{
			"full_name":      teacher.FullName,
			"subject":        teacher.Subject,
			"weekly_periods": teacher.WeeklyPeriods,
			"work_days":      teacher.WorkDays,
			"notes":          teacher.Notes,
		}).Error
}

func (r *teacherRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Teacher{}).Error
}
