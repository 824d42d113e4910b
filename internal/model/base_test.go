package model

import (
	"testing"

	"github.com/xmustafa5/TimeClass-sub001/internal/timetable"
)

func TestWeekDayArray_Scan(t *testing.T) {
	var a WeekDayArray
	if err := a.Scan([]byte("{sunday,monday}")); err != nil {
		t.Fatalf("Scan 失败: %v", err)
	}
	if len(a) != 2 || a[0] != timetable.Sunday || a[1] != timetable.Monday {
		t.Errorf("期望 [sunday monday]，实际 %v", a)
	}

	if err := a.Scan("{}"); err != nil || len(a) != 0 {
		t.Errorf("空数组应解析为空切片，实际 %v, err=%v", a, err)
	}

	if err := a.Scan("{friday}"); err == nil {
		t.Error("非教学日应报错")
	}
	if err := a.Scan(42); err == nil {
		t.Error("不支持的类型应报错")
	}
}

func TestWeekDayArray_Value(t *testing.T) {
	v, err := WeekDayArray{timetable.Sunday, timetable.Thursday}.Value()
	if err != nil {
		t.Fatalf("Value 失败: %v", err)
	}
	if v != "{sunday,thursday}" {
		t.Errorf("期望 {sunday,thursday}，实际 %v", v)
	}

	v, _ = WeekDayArray(nil).Value()
	if v != nil {
		t.Errorf("nil 应序列化为 NULL，实际 %v", v)
	}
}

func TestPeriodSpan(t *testing.T) {
	p := Period{ID: "p1", Number: 1, StartTime: "08:00:00", EndTime: "08:45:00"}
	span, err := p.Span()
	if err != nil {
		t.Fatalf("Span 失败: %v", err)
	}
	if span.Interval.Start != 480 || span.Interval.End != 525 {
		t.Errorf("期望 [480,525)，实际 %s", span.Interval)
	}
}

func TestTeacherPolicy(t *testing.T) {
	tc := Teacher{ID: "t1", WeeklyPeriods: 5, WorkDays: WeekDayArray{timetable.Monday}}
	p := tc.Policy()
	if !p.WorksOn(timetable.Monday) || p.WorksOn(timetable.Sunday) {
		t.Errorf("工作日转换错误: %+v", p)
	}
}
