package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xmustafa5/TimeClass-sub001/internal/api/validator"
	"github.com/xmustafa5/TimeClass-sub001/internal/service"
	"github.com/xmustafa5/TimeClass-sub001/internal/timetable"
	pkgerrors "github.com/xmustafa5/TimeClass-sub001/pkg/errors"
	"github.com/xmustafa5/TimeClass-sub001/pkg/response"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth          *AuthHandler
	Teacher       *TeacherHandler
	Grade         *GradeHandler
	Section       *SectionHandler
	Room          *RoomHandler
	Period        *PeriodHandler
	ScheduleEntry *ScheduleEntryHandler
	Timetable     *TimetableHandler
	Export        *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:          NewAuthHandler(svc.Auth),
		Teacher:       NewTeacherHandler(svc.Teacher),
		Grade:         NewGradeHandler(svc.Grade),
		Section:       NewSectionHandler(svc.Section),
		Room:          NewRoomHandler(svc.Room),
		Period:        NewPeriodHandler(svc.Period),
		ScheduleEntry: NewScheduleEntryHandler(svc.ScheduleEntry),
		Timetable:     NewTimetableHandler(svc.Timetable),
		Export:        NewExportHandler(svc.Export),
	}
}

// ── 通用错误码 ──
//
//	10001 参数校验失败
//	10002 未认证
//	10003 无权限
//	10004 数据已被修改（乐观锁）
//	10005 排课写入繁忙（分布式锁）
//	10006 时间区间非法
//	10007 请求过于频繁（middleware.RateLimit）
//	10008 请求体过大（middleware.BodyLimit）

// 排课锁只在单次写入期间持有，很快释放
const lockBusyRetryAfter = "1"

// bindFailed 参数绑定失败，details 列出每个字段的原因
func bindFailed(c *gin.Context, err error) {
	response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", validator.FormatErrors(err))
}

// handleCommonError 处理跨模块共享的错误，返回是否已写入响应
func handleCommonError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 10004, "数据已被他人修改，请刷新后重试", nil)
	case errors.Is(err, pkgerrors.ErrLockBusy):
		c.Header("Retry-After", lockBusyRetryAfter)
		response.Error(c, http.StatusServiceUnavailable, 10005, "排课写入繁忙，请稍后重试")
	case errors.Is(err, timetable.ErrInvalidInterval):
		response.ErrorWithDetails(c, http.StatusBadRequest, 10006, "时间区间非法", err.Error())
	default:
		return false
	}
	return true
}
