package model

import "github.com/xmustafa5/TimeClass-sub001/internal/timetable"

// Period 节次表，对应 periods，任意两节的时间区间互不重叠
type Period struct {
	ID        string `gorm:"type:uuid;primaryKey" json:"id"`
	Number    int    `gorm:"not null"             json:"number"`
	StartTime string `gorm:"type:time;not null"   json:"start_time"`
	EndTime   string `gorm:"type:time;not null"   json:"end_time"`
	VersionedModel
}

// TableName 指定表名
func (Period) TableName() string { return "periods" }

// Span 转换为节次检查所用的区间
func (p *Period) Span() (timetable.PeriodSpan, error) {
	iv, err := timetable.ParseInterval(p.StartTime, p.EndTime)
	if err != nil {
		return timetable.PeriodSpan{}, err
	}
	return timetable.PeriodSpan{ID: p.ID, Number: p.Number, Interval: iv}, nil
}
