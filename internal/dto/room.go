package dto

// ── 教室模块 DTO ──

// CreateRoomRequest 创建教室请求
type CreateRoomRequest struct {
	Name     string `json:"name"     binding:"required,max=50"`
	Capacity int    `json:"capacity" binding:"required,min=1,max=1000"`
	Type     string `json:"type"     binding:"required,room_type"`
}

// UpdateRoomRequest 更新教室请求
type UpdateRoomRequest struct {
	Name     *string `json:"name"     binding:"omitempty,max=50"`
	Capacity *int    `json:"capacity" binding:"omitempty,min=1,max=1000"`
	Type     *string `json:"type"     binding:"omitempty,room_type"`
}

// RoomListRequest 教室列表查询参数
type RoomListRequest struct {
	Type string `form:"type" binding:"omitempty,room_type"`
}

// RoomResponse 教室信息响应
type RoomResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
	Type     string `json:"type"`
}
