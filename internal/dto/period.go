package dto

// ── 节次模块 DTO ──

// CreatePeriodRequest 创建节次请求
type CreatePeriodRequest struct {
	Number    int    `json:"number"     binding:"required,min=1,max=20"`
	StartTime string `json:"start_time" binding:"required,clock"` // "08:00"
	EndTime   string `json:"end_time"   binding:"required,clock"` // "08:45"
}

// UpdatePeriodRequest 更新节次请求（version 用于乐观锁）
type UpdatePeriodRequest struct {
	Number    *int    `json:"number"     binding:"omitempty,min=1,max=20"`
	StartTime *string `json:"start_time" binding:"omitempty,clock"`
	EndTime   *string `json:"end_time"   binding:"omitempty,clock"`
	Version   int     `json:"version"    binding:"required,min=1"`
}

// CheckPeriodRequest 节次时间预检请求
type CheckPeriodRequest struct {
	StartTime string `json:"start_time" binding:"required,clock"`
	EndTime   string `json:"end_time"   binding:"required,clock"`
	ExcludeID string `json:"exclude_id" binding:"omitempty,uuid"`
}

// PeriodResponse 节次信息响应
type PeriodResponse struct {
	ID        string `json:"id"`
	Number    int    `json:"number"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Version   int    `json:"version"`
}

// PeriodCheckResponse 节次时间预检结果
type PeriodCheckResponse struct {
	Valid             bool            `json:"valid"`
	ConflictingPeriod *PeriodResponse `json:"conflicting_period,omitempty"`
}
