package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Teacher       TeacherRepository
	Grade         GradeRepository
	Section       SectionRepository
	Room          RoomRepository
	Period        PeriodRepository
	ScheduleEntry ScheduleEntryRepository
	Tx            TxManager
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Teacher:       NewTeacherRepo(db),
		Grade:         NewGradeRepo(db),
		Section:       NewSectionRepo(db),
		Room:          NewRoomRepo(db),
		Period:        NewPeriodRepo(db),
		ScheduleEntry: NewScheduleEntryRepo(db),
		Tx:            NewGormTxManager(db),
	}
}

// TxRepositories 绑定到同一事务的 Repository 集合
type TxRepositories struct {
	Teacher       TeacherRepository
	Grade         GradeRepository
	Section       SectionRepository
	Room          RoomRepository
	Period        PeriodRepository
	ScheduleEntry ScheduleEntryRepository
}

// TxManager 事务管理：fn 返回错误时回滚，否则提交
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, repos TxRepositories) error) error
}

// GormTxManager 基于 gorm.DB.Transaction 的事务管理器
type GormTxManager struct {
	db *gorm.DB
}

// NewGormTxManager 创建事务管理器
func NewGormTxManager(db *gorm.DB) *GormTxManager {
	return &GormTxManager{db: db}
}

// WithTx 在单个数据库事务中执行 fn（级联删除等）
func (m *GormTxManager) WithTx(ctx context.Context, fn func(ctx context.Context, repos TxRepositories) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, TxRepositories{
			Teacher:       NewTeacherRepo(tx),
			Grade:         NewGradeRepo(tx),
			Section:       NewSectionRepo(tx),
			Room:          NewRoomRepo(tx),
			Period:        NewPeriodRepo(tx),
			ScheduleEntry: NewScheduleEntryRepo(tx),
		})
	})
}
