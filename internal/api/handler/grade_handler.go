package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/xmustafa5/TimeClass-sub001/internal/dto"
	"github.com/xmustafa5/TimeClass-sub001/internal/service"
	"github.com/xmustafa5/TimeClass-sub001/pkg/response"
)

// GradeHandler 年级模块 HTTP 处理器
type GradeHandler struct {
	gradeSvc service.GradeService
}

// NewGradeHandler 创建 GradeHandler
func NewGradeHandler(gradeSvc service.GradeService) *GradeHandler {
	return &GradeHandler{gradeSvc: gradeSvc}
}

// ListGrades 获取年级列表（含班级）
// GET /api/v1/grades
func (h *GradeHandler) ListGrades(c *gin.Context) {
	grades, err := h.gradeSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": grades})
}

// GetGrade 获取年级详情
// GET /api/v1/grades/:id
func (h *GradeHandler) GetGrade(c *gin.Context) {
	grade, err := h.gradeSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleGradeError(c, err)
		return
	}

	response.OK(c, grade)
}

// CreateGrade 创建年级
// POST /api/v1/grades
func (h *GradeHandler) CreateGrade(c *gin.Context) {
	var req dto.CreateGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	grade, err := h.gradeSvc.Create(c.Request.Context(), &req)
	if err != nil {
		handleGradeError(c, err)
		return
	}

	response.Created(c, grade)
}

// UpdateGrade 重命名年级
// PUT /api/v1/grades/:id
func (h *GradeHandler) UpdateGrade(c *gin.Context) {
	var req dto.UpdateGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	grade, err := h.gradeSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleGradeError(c, err)
		return
	}

	response.OK(c, grade)
}

// DeleteGrade 删除年级（级联删除班级与排课）
// DELETE /api/v1/grades/:id
func (h *GradeHandler) DeleteGrade(c *gin.Context) {
	if err := h.gradeSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleGradeError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleGradeError 年级与班级共用
func handleGradeError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrGradeNotFound):
		response.NotFound(c, 13001, "年级不存在")
	case errors.Is(err, service.ErrGradeNameExists):
		response.Conflict(c, 13002, "年级名称已存在", nil)
	case errors.Is(err, service.ErrSectionNotFound):
		response.NotFound(c, 13101, "班级不存在")
	case errors.Is(err, service.ErrSectionHasEntries):
		response.Conflict(c, 13102, "班级已有排课，不能更换年级", nil)
	default:
		response.InternalError(c)
	}
}
