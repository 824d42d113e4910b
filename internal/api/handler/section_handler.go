package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xmustafa5/TimeClass-sub001/internal/dto"
	"github.com/xmustafa5/TimeClass-sub001/internal/service"
	"github.com/xmustafa5/TimeClass-sub001/pkg/response"
)

// SectionHandler 班级模块 HTTP 处理器
type SectionHandler struct {
	sectionSvc service.SectionService
}

// NewSectionHandler 创建 SectionHandler
func NewSectionHandler(sectionSvc service.SectionService) *SectionHandler {
	return &SectionHandler{sectionSvc: sectionSvc}
}

// ListSections 获取班级列表
// GET /api/v1/sections?grade_id=
func (h *SectionHandler) ListSections(c *gin.Context) {
	var req dto.SectionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	sections, err := h.sectionSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": sections})
}

// GetSection 获取班级详情
// GET /api/v1/sections/:id
func (h *SectionHandler) GetSection(c *gin.Context) {
	section, err := h.sectionSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleGradeError(c, err)
		return
	}

	response.OK(c, section)
}

// CreateSection 创建班级
// POST /api/v1/sections
func (h *SectionHandler) CreateSection(c *gin.Context) {
	var req dto.CreateSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	section, err := h.sectionSvc.Create(c.Request.Context(), &req)
	if err != nil {
		handleGradeError(c, err)
		return
	}

	response.Created(c, section)
}

// UpdateSection 更新班级
// PUT /api/v1/sections/:id
func (h *SectionHandler) UpdateSection(c *gin.Context) {
	var req dto.UpdateSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	section, err := h.sectionSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleGradeError(c, err)
		return
	}

	response.OK(c, section)
}

// DeleteSection 删除班级（级联删除排课）
// DELETE /api/v1/sections/:id
func (h *SectionHandler) DeleteSection(c *gin.Context) {
	if err := h.sectionSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleGradeError(c, err)
		return
	}

	response.OK(c, nil)
}
