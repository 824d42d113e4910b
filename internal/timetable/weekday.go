package timetable

import "strings"

// WeekDay 教学周内的某一天（周日至周四，循环周模板，不绑定具体日期）
type WeekDay string

const (
	Sunday    WeekDay = "sunday"
	Monday    WeekDay = "monday"
	Tuesday   WeekDay = "tuesday"
	Wednesday WeekDay = "wednesday"
	Thursday  WeekDay = "thursday"
)

// WeekDays 按周内顺序排列的全部教学日
var WeekDays = []WeekDay{Sunday, Monday, Tuesday, Wednesday, Thursday}

// ParseWeekDay 解析教学日（忽略大小写与首尾空白）
func ParseWeekDay(s string) (WeekDay, bool) {
	d := WeekDay(strings.ToLower(strings.TrimSpace(s)))
	return d, d.Valid()
}

// Valid 是否属于闭合枚举
func (d WeekDay) Valid() bool {
	switch d {
	case Sunday, Monday, Tuesday, Wednesday, Thursday:
		return true
	}
	return false
}

// Ordinal 周内序号（周日=0），非法值返回 -1
func (d WeekDay) Ordinal() int {
	for i, w := range WeekDays {
		if w == d {
			return i
		}
	}
	return -1
}

func (d WeekDay) String() string { return string(d) }
