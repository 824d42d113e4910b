package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/xmustafa5/TimeClass-sub001/internal/dto"
	"github.com/xmustafa5/TimeClass-sub001/internal/service"
	"github.com/xmustafa5/TimeClass-sub001/pkg/response"
)

// RoomHandler 教室模块 HTTP 处理器
type RoomHandler struct {
	roomSvc service.RoomService
}

// NewRoomHandler 创建 RoomHandler
func NewRoomHandler(roomSvc service.RoomService) *RoomHandler {
	return &RoomHandler{roomSvc: roomSvc}
}

// ListRooms 获取教室列表
// GET /api/v1/rooms?type=
func (h *RoomHandler) ListRooms(c *gin.Context) {
	var req dto.RoomListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	rooms, err := h.roomSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": rooms})
}

// GetRoom 获取教室详情
// GET /api/v1/rooms/:id
func (h *RoomHandler) GetRoom(c *gin.Context) {
	room, err := h.roomSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleRoomError(c, err)
		return
	}

	response.OK(c, room)
}

// CreateRoom 创建教室
// POST /api/v1/rooms
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var req dto.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	room, err := h.roomSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleRoomError(c, err)
		return
	}

	response.Created(c, room)
}

// UpdateRoom 更新教室
// PUT /api/v1/rooms/:id
func (h *RoomHandler) UpdateRoom(c *gin.Context) {
	var req dto.UpdateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	room, err := h.roomSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleRoomError(c, err)
		return
	}

	response.OK(c, room)
}

// DeleteRoom 删除教室（级联删除排课）
// DELETE /api/v1/rooms/:id
func (h *RoomHandler) DeleteRoom(c *gin.Context) {
	if err := h.roomSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleRoomError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *RoomHandler) handleRoomError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrRoomNotFound):
		response.NotFound(c, 14001, "教室不存在")
	case errors.Is(err, service.ErrRoomNameExists):
		response.Conflict(c, 14002, "教室名称已存在", nil)
	default:
		response.InternalError(c)
	}
}
