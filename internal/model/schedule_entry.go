package model

import "github.com/xmustafa5/TimeClass-sub001/internal/timetable"

// ScheduleEntry 排课记录表，对应 schedule_entries
// 把 (教师, 班级, 教室, 科目) 绑定到 (教学日, 节次)
type ScheduleEntry struct {
	ID        string `gorm:"type:uuid;primaryKey"       json:"id"`
	TeacherID string `gorm:"type:uuid;not null"         json:"teacher_id"`
	GradeID   string `gorm:"type:uuid;not null"         json:"grade_id"`
	SectionID string `gorm:"type:uuid;not null"         json:"section_id"`
	PeriodID  string `gorm:"type:uuid;not null"         json:"period_id"`
	RoomID    string `gorm:"type:uuid;not null"         json:"room_id"`
	Day       string `gorm:"type:varchar(10);not null"  json:"day"`
	Subject   string `gorm:"type:varchar(100);not null" json:"subject"`
	VersionedModel

	// 关联
	Teacher *Teacher `gorm:"foreignKey:TeacherID;references:ID" json:"teacher,omitempty"`
	Grade   *Grade   `gorm:"foreignKey:GradeID;references:ID"   json:"grade,omitempty"`
	Section *Section `gorm:"foreignKey:SectionID;references:ID" json:"section,omitempty"`
	Period  *Period  `gorm:"foreignKey:PeriodID;references:ID"  json:"period,omitempty"`
	Room    *Room    `gorm:"foreignKey:RoomID;references:ID"    json:"room,omitempty"`
}

// TableName 指定表名
func (ScheduleEntry) TableName() string { return "schedule_entries" }

// SlotEntry 转换为引擎索引使用的记录
func (e *ScheduleEntry) SlotEntry() timetable.Entry {
	return timetable.Entry{
		ID:        e.ID,
		TeacherID: e.TeacherID,
		GradeID:   e.GradeID,
		SectionID: e.SectionID,
		PeriodID:  e.PeriodID,
		RoomID:    e.RoomID,
		Day:       timetable.WeekDay(e.Day),
	}
}

// SlotEntries 批量转换，用于索引重建
func SlotEntries(entries []ScheduleEntry) []timetable.Entry {
	out := make([]timetable.Entry, len(entries))
	for i := range entries {
		out[i] = entries[i].SlotEntry()
	}
	return out
}
