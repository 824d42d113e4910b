package timetable

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidInterval 时间格式错误或结束时间不晚于开始时间
var ErrInvalidInterval = errors.New("无效的时间区间")

const minutesPerDay = 24 * 60

// Interval 半开区间 [Start, End)，单位为当日零点起的分钟数
type Interval struct {
	Start int
	End   int
}

// Overlaps 判断两个区间是否重叠。首尾相接（a.End == b.Start）不算重叠。
func Overlaps(a, b Interval) bool {
	return a.Start < b.End && b.Start < a.End
}

// Overlaps 方法形式，便于链式调用
func (i Interval) Overlaps(other Interval) bool { return Overlaps(i, other) }

// Valid 结束时间严格晚于开始时间，且均在一天之内
func (i Interval) Valid() bool {
	return i.Start >= 0 && i.End <= minutesPerDay && i.End > i.Start
}

func (i Interval) String() string {
	return FormatClock(i.Start) + "-" + FormatClock(i.End)
}

// ParseClock 将 "HH:MM"（也接受 "HH:MM:SS"，秒被忽略）解析为分钟数
func ParseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("%w: 时间格式应为 HH:MM，实际 %q", ErrInvalidInterval, s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("%w: 小时非法 %q", ErrInvalidInterval, s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: 分钟非法 %q", ErrInvalidInterval, s)
	}
	return h*60 + m, nil
}

// FormatClock 分钟数格式化为 "HH:MM"
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ParseInterval 解析起止时间并校验 end > start
func ParseInterval(start, end string) (Interval, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Interval{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return Interval{}, err
	}
	iv := Interval{Start: s, End: e}
	if !iv.Valid() {
		return Interval{}, fmt.Errorf("%w: 结束时间 %s 必须晚于开始时间 %s", ErrInvalidInterval, end, start)
	}
	return iv, nil
}
