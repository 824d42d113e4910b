package dto

// ── 年级 / 班级模块 DTO ──

// CreateGradeRequest 创建年级请求
type CreateGradeRequest struct {
	Name string `json:"name" binding:"required,max=50"`
}

// UpdateGradeRequest 更新年级请求
type UpdateGradeRequest struct {
	Name string `json:"name" binding:"required,max=50"`
}

// GradeResponse 年级信息响应
type GradeResponse struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Sections []SectionBrief `json:"sections"`
}

// GradeBrief 年级简要信息
type GradeBrief struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CreateSectionRequest 创建班级请求
type CreateSectionRequest struct {
	Name    string `json:"name"     binding:"required,max=50"`
	GradeID string `json:"grade_id" binding:"required,uuid"`
}

// UpdateSectionRequest 更新班级请求
type UpdateSectionRequest struct {
	Name    *string `json:"name"     binding:"omitempty,max=50"`
	GradeID *string `json:"grade_id" binding:"omitempty,uuid"`
}

// SectionListRequest 班级列表查询参数
type SectionListRequest struct {
	GradeID string `form:"grade_id" binding:"omitempty,uuid"`
}

// SectionResponse 班级信息响应
type SectionResponse struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	GradeID string      `json:"grade_id"`
	Grade   *GradeBrief `json:"grade,omitempty"`
}

// SectionBrief 班级简要信息
type SectionBrief struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
