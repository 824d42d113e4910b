package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/xmustafa5/TimeClass-sub001/internal/dto"
	"github.com/xmustafa5/TimeClass-sub001/internal/service"
	"github.com/xmustafa5/TimeClass-sub001/pkg/response"
)

// PeriodHandler 节次模块 HTTP 处理器
type PeriodHandler struct {
	periodSvc service.PeriodService
}

// NewPeriodHandler 创建 PeriodHandler
func NewPeriodHandler(periodSvc service.PeriodService) *PeriodHandler {
	return &PeriodHandler{periodSvc: periodSvc}
}

// ListPeriods 获取节次列表（按编号排序）
// GET /api/v1/periods
func (h *PeriodHandler) ListPeriods(c *gin.Context) {
	periods, err := h.periodSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": periods})
}

// GetPeriod 获取节次详情
// GET /api/v1/periods/:id
func (h *PeriodHandler) GetPeriod(c *gin.Context) {
	period, err := h.periodSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handlePeriodError(c, err)
		return
	}

	response.OK(c, period)
}

// CreatePeriod 创建节次
// POST /api/v1/periods
func (h *PeriodHandler) CreatePeriod(c *gin.Context) {
	var req dto.CreatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	period, err := h.periodSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handlePeriodError(c, err)
		return
	}

	response.Created(c, period)
}

// UpdatePeriod 更新节次
// PUT /api/v1/periods/:id
func (h *PeriodHandler) UpdatePeriod(c *gin.Context) {
	var req dto.UpdatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	period, err := h.periodSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handlePeriodError(c, err)
		return
	}

	response.OK(c, period)
}

// DeletePeriod 删除节次（级联删除排课）
// DELETE /api/v1/periods/:id
func (h *PeriodHandler) DeletePeriod(c *gin.Context) {
	if err := h.periodSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handlePeriodError(c, err)
		return
	}

	response.OK(c, nil)
}

// CheckPeriod 节次时间预检（不写入）
// POST /api/v1/periods/check
func (h *PeriodHandler) CheckPeriod(c *gin.Context) {
	var req dto.CheckPeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.periodSvc.Check(c.Request.Context(), &req)
	if err != nil {
		h.handlePeriodError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *PeriodHandler) handlePeriodError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}

	var overlap *service.PeriodOverlapError
	switch {
	case errors.As(err, &overlap):
		conflicting := overlap.Conflicting
		response.Conflict(c, 15002, "节次时间与已有节次重叠", dto.PeriodCheckResponse{
			Valid:             false,
			ConflictingPeriod: &conflicting,
		})
	case errors.Is(err, service.ErrPeriodNotFound):
		response.NotFound(c, 15001, "节次不存在")
	default:
		response.InternalError(c)
	}
}
