package model

import "github.com/xmustafa5/TimeClass-sub001/internal/timetable"

// Teacher 教师表，对应 teachers
type Teacher struct {
	ID            string       `gorm:"type:uuid;primaryKey"       json:"id"`
	FullName      string       `gorm:"type:varchar(100);not null" json:"full_name"`
	Subject       string       `gorm:"type:varchar(100);not null" json:"subject"`
	WeeklyPeriods int          `gorm:"not null"                   json:"weekly_periods"`
	WorkDays      WeekDayArray `gorm:"type:text[];not null"       json:"work_days"`
	Notes         *string      `gorm:"type:text"                  json:"notes,omitempty"`
	SoftDeleteModel
}

// TableName 指定表名
func (Teacher) TableName() string { return "teachers" }

// Policy 冲突引擎所需的只读约束
func (t *Teacher) Policy() *timetable.TeacherPolicy {
	return &timetable.TeacherPolicy{
		ID:            t.ID,
		WeeklyPeriods: t.WeeklyPeriods,
		WorkDays:      []timetable.WeekDay(t.WorkDays),
	}
}
