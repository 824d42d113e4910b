package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/xmustafa5/TimeClass-sub001/internal/dto"
	"github.com/xmustafa5/TimeClass-sub001/internal/service"
	"github.com/xmustafa5/TimeClass-sub001/pkg/response"
)

// ScheduleEntryHandler 排课模块 HTTP 处理器
type ScheduleEntryHandler struct {
	entrySvc service.ScheduleEntryService
}

// NewScheduleEntryHandler 创建 ScheduleEntryHandler
func NewScheduleEntryHandler(entrySvc service.ScheduleEntryService) *ScheduleEntryHandler {
	return &ScheduleEntryHandler{entrySvc: entrySvc}
}

// ListEntries 按条件查询排课
// GET /api/v1/schedule-entries?day=&teacher_id=&grade_id=&section_id=&period_id=&room_id=
func (h *ScheduleEntryHandler) ListEntries(c *gin.Context) {
	var req dto.ScheduleEntryListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	entries, err := h.entrySvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": entries})
}

// GetEntry 获取排课详情
// GET /api/v1/schedule-entries/:id
func (h *ScheduleEntryHandler) GetEntry(c *gin.Context) {
	entry, err := h.entrySvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleEntryError(c, err)
		return
	}

	response.OK(c, entry)
}

// CreateEntry 创建排课（冲突时返回 409 与冲突详情）
// POST /api/v1/schedule-entries
func (h *ScheduleEntryHandler) CreateEntry(c *gin.Context) {
	var req dto.CreateScheduleEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	entry, err := h.entrySvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleEntryError(c, err)
		return
	}

	response.Created(c, entry)
}

// UpdateEntry 整体更新排课
// PUT /api/v1/schedule-entries/:id
func (h *ScheduleEntryHandler) UpdateEntry(c *gin.Context) {
	var req dto.UpdateScheduleEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	entry, err := h.entrySvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleEntryError(c, err)
		return
	}

	response.OK(c, entry)
}

// DeleteEntry 删除排课
// DELETE /api/v1/schedule-entries/:id
func (h *ScheduleEntryHandler) DeleteEntry(c *gin.Context) {
	if err := h.entrySvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleEntryError(c, err)
		return
	}

	response.OK(c, nil)
}

// CheckEntry 排课冲突预检（不写入）
// POST /api/v1/schedule-entries/check
func (h *ScheduleEntryHandler) CheckEntry(c *gin.Context) {
	var req dto.CheckScheduleEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.entrySvc.Check(c.Request.Context(), &req)
	if err != nil {
		h.handleEntryError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *ScheduleEntryHandler) handleEntryError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}

	var conflict *service.ConflictError
	switch {
	case errors.As(err, &conflict):
		response.Conflict(c, 16002, conflict.Message, dto.ConflictResponse{
			HasConflict:        true,
			ConflictType:       string(conflict.Type),
			Message:            conflict.Message,
			ConflictingEntryID: conflict.ConflictingEntryID,
		})
	case errors.Is(err, service.ErrScheduleEntryNotFound):
		response.NotFound(c, 16001, "排课记录不存在")
	case errors.Is(err, service.ErrSectionGradeMismatch):
		response.BadRequest(c, 16003, "班级不属于所选年级")
	// 引用的实体不存在
	case errors.Is(err, service.ErrTeacherNotFound):
		response.BadRequest(c, 16004, "教师不存在")
	case errors.Is(err, service.ErrGradeNotFound):
		response.BadRequest(c, 16004, "年级不存在")
	case errors.Is(err, service.ErrSectionNotFound):
		response.BadRequest(c, 16004, "班级不存在")
	case errors.Is(err, service.ErrPeriodNotFound):
		response.BadRequest(c, 16004, "节次不存在")
	case errors.Is(err, service.ErrRoomNotFound):
		response.BadRequest(c, 16004, "教室不存在")
	default:
		response.InternalError(c)
	}
}
