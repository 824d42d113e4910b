package dto

// ── 课表视图 DTO ──

// TimetableResponse 某个班级 / 教师 / 教室的周课表
type TimetableResponse struct {
	OwnerType string           `json:"owner_type"` // section | teacher | room
	OwnerID   string           `json:"owner_id"`
	OwnerName string           `json:"owner_name"`
	Days      []string         `json:"days"`
	Periods   []PeriodResponse `json:"periods"`
	Cells     []TimetableCell  `json:"cells"`
}

// TimetableCell 课表格子，仅包含已排课的 (day, period)
type TimetableCell struct {
	Day      string                `json:"day"`
	PeriodID string                `json:"period_id"`
	Entry    ScheduleEntryResponse `json:"entry"`
}
