package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/xmustafa5/TimeClass-sub001/internal/dto"
	"github.com/xmustafa5/TimeClass-sub001/internal/service"
	"github.com/xmustafa5/TimeClass-sub001/pkg/response"
)

// TeacherHandler 教师模块 HTTP 处理器
type TeacherHandler struct {
	teacherSvc service.TeacherService
}

// NewTeacherHandler 创建 TeacherHandler
func NewTeacherHandler(teacherSvc service.TeacherService) *TeacherHandler {
	return &TeacherHandler{teacherSvc: teacherSvc}
}

// ListTeachers 获取教师列表
// GET /api/v1/teachers?keyword=
func (h *TeacherHandler) ListTeachers(c *gin.Context) {
	var req dto.TeacherListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	teachers, err := h.teacherSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": teachers})
}

// GetTeacher 获取教师详情
// GET /api/v1/teachers/:id
func (h *TeacherHandler) GetTeacher(c *gin.Context) {
	teacher, err := h.teacherSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleTeacherError(c, err)
		return
	}

	response.OK(c, teacher)
}

// CreateTeacher 创建教师
// POST /api/v1/teachers
func (h *TeacherHandler) CreateTeacher(c *gin.Context) {
	var req dto.CreateTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	teacher, err := h.teacherSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleTeacherError(c, err)
		return
	}

	response.Created(c, teacher)
}

// UpdateTeacher 更新教师
// PUT /api/v1/teachers/:id
func (h *TeacherHandler) UpdateTeacher(c *gin.Context) {
	var req dto.UpdateTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	teacher, err := h.teacherSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleTeacherError(c, err)
		return
	}

	response.OK(c, teacher)
}

// DeleteTeacher 删除教师（级联删除其排课）
// DELETE /api/v1/teachers/:id
func (h *TeacherHandler) DeleteTeacher(c *gin.Context) {
	if err := h.teacherSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleTeacherError(c, err)
		return
	}

	response.OK(c, nil)
}

// GetTeacherLoad 教师周课时负载
// GET /api/v1/teachers/:id/load
func (h *TeacherHandler) GetTeacherLoad(c *gin.Context) {
	load, err := h.teacherSvc.Load(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleTeacherError(c, err)
		return
	}

	response.OK(c, load)
}

func (h *TeacherHandler) handleTeacherError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrTeacherNotFound):
		response.NotFound(c, 12001, "教师不存在")
	default:
		response.InternalError(c)
	}
}
