package dto

// ── 教师模块 DTO ──

// CreateTeacherRequest 创建教师请求
type CreateTeacherRequest struct {
	FullName      string   `json:"full_name"      binding:"required,min=2,max=100"`
	Subject       string   `json:"subject"        binding:"required,max=100"`
	WeeklyPeriods int      `json:"weekly_periods" binding:"required,min=1,max=60"`
	WorkDays      []string `json:"work_days"      binding:"required,min=1,max=5,unique,dive,weekday"`
	Notes         *string  `json:"notes"          binding:"omitempty,max=500"`
}

// UpdateTeacherRequest 更新教师请求
type UpdateTeacherRequest struct {
	FullName      *string  `json:"full_name"      binding:"omitempty,min=2,max=100"`
	Subject       *string  `json:"subject"        binding:"omitempty,max=100"`
	WeeklyPeriods *int     `json:"weekly_periods" binding:"omitempty,min=1,max=60"`
	WorkDays      []string `json:"work_days"      binding:"omitempty,min=1,max=5,unique,dive,weekday"`
	Notes         *string  `json:"notes"          binding:"omitempty,max=500"`
}

// TeacherListRequest 教师列表查询参数
type TeacherListRequest struct {
	Keyword string `form:"keyword" binding:"omitempty,max=50"`
}

// TeacherResponse 教师信息响应
type TeacherResponse struct {
	ID            string   `json:"id"`
	FullName      string   `json:"full_name"`
	Subject       string   `json:"subject"`
	WeeklyPeriods int      `json:"weekly_periods"`
	WorkDays      []string `json:"work_days"`
	Notes         *string  `json:"notes,omitempty"`
	CreatedAt     string   `json:"created_at"`
	UpdatedAt     string   `json:"updated_at"`
}

// TeacherLoadResponse 教师周课时负载
type TeacherLoadResponse struct {
	TeacherID string `json:"teacher_id"`
	Assigned  int    `json:"assigned"`
	Quota     int    `json:"quota"`
	Remaining int    `json:"remaining"`
}

// TeacherBrief 教师简要信息（嵌入排课响应）
type TeacherBrief struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
}
