package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/xmustafa5/TimeClass-sub001/internal/dto"
	"github.com/xmustafa5/TimeClass-sub001/internal/service"
	"github.com/xmustafa5/TimeClass-sub001/pkg/response"
)

// TimetableHandler 课表视图 Handler
type TimetableHandler struct {
	svc service.TimetableService
}

// NewTimetableHandler 创建 TimetableHandler 实例
func NewTimetableHandler(svc service.TimetableService) *TimetableHandler {
	return &TimetableHandler{svc: svc}
}

// ForSection 班级周课表
// GET /api/v1/timetable/sections/:id
func (h *TimetableHandler) ForSection(c *gin.Context) {
	h.render(c, h.svc.ForSection)
}

// ForTeacher 教师周课表（列为该教师的工作日）
// GET /api/v1/timetable/teachers/:id
func (h *TimetableHandler) ForTeacher(c *gin.Context) {
	h.render(c, h.svc.ForTeacher)
}

// ForRoom 教室周课表
// GET /api/v1/timetable/rooms/:id
func (h *TimetableHandler) ForRoom(c *gin.Context) {
	h.render(c, h.svc.ForRoom)
}

func (h *TimetableHandler) render(c *gin.Context, load func(context.Context, string) (*dto.TimetableResponse, error)) {
	resp, err := load(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, resp)
}

func handleTimetableError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSectionNotFound):
		response.NotFound(c, 13101, "班级不存在")
	case errors.Is(err, service.ErrTeacherNotFound):
		response.NotFound(c, 12001, "教师不存在")
	case errors.Is(err, service.ErrRoomNotFound):
		response.NotFound(c, 14001, "教室不存在")
	default:
		response.InternalError(c)
	}
}
