package timetable

import (
	"errors"
	"testing"
)

func mustInterval(t *testing.T, start, end string) Interval {
	t.Helper()
	iv, err := ParseInterval(start, end)
	if err != nil {
		t.Fatalf("ParseInterval(%s, %s) 应成功: %v", start, end, err)
	}
	return iv
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name       string
		a, b       [2]string
		wantResult bool
	}{
		{"完全重叠", [2]string{"08:00", "08:45"}, [2]string{"08:00", "08:45"}, true},
		{"部分重叠", [2]string{"08:00", "08:45"}, [2]string{"08:30", "09:00"}, true},
		{"包含", [2]string{"08:00", "10:00"}, [2]string{"08:30", "09:00"}, true},
		{"首尾相接不重叠", [2]string{"08:00", "08:45"}, [2]string{"08:45", "09:30"}, false},
		{"相离", [2]string{"08:00", "08:45"}, [2]string{"10:00", "10:45"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := mustInterval(t, tc.a[0], tc.a[1])
			b := mustInterval(t, tc.b[0], tc.b[1])
			if got := Overlaps(a, b); got != tc.wantResult {
				t.Errorf("Overlaps(%s, %s) 期望 %v，实际 %v", a, b, tc.wantResult, got)
			}
			// 对称性
			if got := Overlaps(b, a); got != tc.wantResult {
				t.Errorf("Overlaps(%s, %s) 期望 %v，实际 %v", b, a, tc.wantResult, got)
			}
		})
	}
}

func TestParseClock(t *testing.T) {
	m, err := ParseClock("08:45")
	if err != nil {
		t.Fatalf("ParseClock 应成功: %v", err)
	}
	if m != 8*60+45 {
		t.Errorf("期望 525，实际 %d", m)
	}

	// PostgreSQL time 类型返回带秒的格式
	m, err = ParseClock("13:05:00")
	if err != nil || m != 13*60+5 {
		t.Errorf("期望 785，实际 %d, err=%v", m, err)
	}

	for _, bad := range []string{"", "8", "24:00", "12:60", "ab:cd", "1:2:3:4"} {
		if _, err := ParseClock(bad); !errors.Is(err, ErrInvalidInterval) {
			t.Errorf("ParseClock(%q) 期望 ErrInvalidInterval，实际 %v", bad, err)
		}
	}
}

func TestParseInterval_EndNotAfterStart(t *testing.T) {
	if _, err := ParseInterval("09:00", "09:00"); !errors.Is(err, ErrInvalidInterval) {
		t.Errorf("起止相同应报错，实际 %v", err)
	}
	if _, err := ParseInterval("10:00", "09:00"); !errors.Is(err, ErrInvalidInterval) {
		t.Errorf("结束早于开始应报错，实际 %v", err)
	}
}

func TestFormatClock(t *testing.T) {
	if got := FormatClock(8*60 + 5); got != "08:05" {
		t.Errorf("期望 08:05，实际 %s", got)
	}
}
