package dto

// ── 排课模块 DTO ──

// CreateScheduleEntryRequest 创建排课请求
type CreateScheduleEntryRequest struct {
	TeacherID string `json:"teacher_id" binding:"required,uuid"`
	GradeID   string `json:"grade_id"   binding:"required,uuid"`
	SectionID string `json:"section_id" binding:"required,uuid"`
	PeriodID  string `json:"period_id"  binding:"required,uuid"`
	RoomID    string `json:"room_id"    binding:"required,uuid"`
	Day       string `json:"day"        binding:"required,weekday"`
	Subject   string `json:"subject"    binding:"required,max=100"`
}

// UpdateScheduleEntryRequest 更新排课请求（整体替换，version 用于乐观锁）
type UpdateScheduleEntryRequest struct {
	CreateScheduleEntryRequest
	Version int `json:"version" binding:"required,min=1"`
}

// CheckScheduleEntryRequest 排课冲突预检请求
type CheckScheduleEntryRequest struct {
	CreateScheduleEntryRequest
	ExcludeID string `json:"exclude_id" binding:"omitempty,uuid"`
}

// ScheduleEntryListRequest 排课列表查询参数
type ScheduleEntryListRequest struct {
	Day       string `form:"day"        binding:"omitempty,weekday"`
	TeacherID string `form:"teacher_id" binding:"omitempty,uuid"`
	GradeID   string `form:"grade_id"   binding:"omitempty,uuid"`
	SectionID string `form:"section_id" binding:"omitempty,uuid"`
	PeriodID  string `form:"period_id"  binding:"omitempty,uuid"`
	RoomID    string `form:"room_id"    binding:"omitempty,uuid"`
}

// ScheduleEntryResponse 排课信息响应
type ScheduleEntryResponse struct {
	ID        string          `json:"id"`
	TeacherID string          `json:"teacher_id"`
	GradeID   string          `json:"grade_id"`
	SectionID string          `json:"section_id"`
	PeriodID  string          `json:"period_id"`
	RoomID    string          `json:"room_id"`
	Day       string          `json:"day"`
	Subject   string          `json:"subject"`
	Version   int             `json:"version"`
	Teacher   *TeacherBrief   `json:"teacher,omitempty"`
	Grade     *GradeBrief     `json:"grade,omitempty"`
	Section   *SectionBrief   `json:"section,omitempty"`
	Period    *PeriodResponse `json:"period,omitempty"`
	Room      *RoomResponse   `json:"room,omitempty"`
}

// ConflictResponse 冲突检查结果
type ConflictResponse struct {
	HasConflict        bool   `json:"has_conflict"`
	ConflictType       string `json:"conflict_type,omitempty"`
	Message            string `json:"message,omitempty"`
	ConflictingEntryID string `json:"conflicting_entry_id,omitempty"`
}
