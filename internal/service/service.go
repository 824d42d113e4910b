package service

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/xmustafa5/TimeClass-sub001/config"
	"github.com/xmustafa5/TimeClass-sub001/internal/repository"
	"github.com/xmustafa5/TimeClass-sub001/internal/timetable"
	pkgerrors "github.com/xmustafa5/TimeClass-sub001/pkg/errors"
	"github.com/xmustafa5/TimeClass-sub001/pkg/jwt"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth          AuthService
	Teacher       TeacherService
	Grade         GradeService
	Section       SectionService
	Room          RoomService
	Period        PeriodService
	ScheduleEntry ScheduleEntryService
	Timetable     TimetableService
	Export        ExportService
}

// NewService 创建 Service 聚合
//
// tokens 与 guard 内的 locker 均可为 nil（未启用 Redis 时）。
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	engine *timetable.Engine,
	guard *CommitGuard,
	jwtMgr *jwt.Manager,
	tokens TokenStore,
	logger *zap.Logger,
) *Service {
	loc, err := time.LoadLocation(cfg.Database.Timezone)
	if err != nil {
		logger.Warn("时区无效，日历导出使用 UTC", zap.String("timezone", cfg.Database.Timezone), zap.Error(err))
		loc = time.UTC
	}

	return &Service{
		Auth:          NewAuthService(cfg, jwtMgr, tokens, logger),
		Teacher:       NewTeacherService(repo, engine, guard, logger),
		Grade:         NewGradeService(repo, guard, logger),
		Section:       NewSectionService(repo, guard, logger),
		Room:          NewRoomService(repo, guard, logger),
		Period:        NewPeriodService(repo, engine, guard, logger),
		ScheduleEntry: NewScheduleEntryService(repo, engine, guard, logger),
		Timetable:     NewTimetableService(repo, logger),
		Export:        NewExportService(repo, loc, logger),
	}
}

const timeLayout = "2006-01-02T15:04:05Z"

// isInternal 业务预期内的错误不记 error 日志
func isInternal(err error) bool {
	switch {
	case errors.Is(err, ErrPeriodOverlap),
		errors.Is(err, ErrPeriodNotFound),
		errors.Is(err, ErrScheduleConflict),
		errors.Is(err, ErrScheduleEntryNotFound),
		errors.Is(err, ErrSectionGradeMismatch),
		errors.Is(err, ErrSectionNotFound),
		errors.Is(err, timetable.ErrInvalidInterval),
		errors.Is(err, pkgerrors.ErrOptimisticLock),
		errors.Is(err, pkgerrors.ErrLockBusy):
		return false
	}
	return true
}
