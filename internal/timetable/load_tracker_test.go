package timetable

import (
	"errors"
	"testing"
)

func TestLoadTracker_IncrementDecrement(t *testing.T) {
	lt := NewLoadTracker()
	lt.Increment("t1")
	lt.Increment("t1")
	lt.Increment("t2")

	if got := lt.CountFor("t1"); got != 2 {
		t.Errorf("期望 t1=2，实际 %d", got)
	}
	if err := lt.Decrement("t1"); err != nil {
		t.Fatalf("Decrement 应成功: %v", err)
	}
	if got := lt.CountFor("t1"); got != 1 {
		t.Errorf("期望 t1=1，实际 %d", got)
	}
	if got := lt.CountFor("unknown"); got != 0 {
		t.Errorf("未知教师期望 0，实际 %d", got)
	}
}

func TestLoadTracker_NeverNegative(t *testing.T) {
	lt := NewLoadTracker()
	if err := lt.Decrement("t1"); !errors.Is(err, ErrInternalInconsistency) {
		t.Errorf("期望 ErrInternalInconsistency，实际 %v", err)
	}
	if got := lt.CountFor("t1"); got != 0 {
		t.Errorf("计数不应为负，实际 %d", got)
	}
}

func TestLoadTracker_Rebuild(t *testing.T) {
	lt := NewLoadTracker()
	lt.Increment("stale")

	lt.Rebuild([]Entry{
		entry("e1", "t1", "s1", "r1", "p1", Sunday),
		entry("e2", "t1", "s2", "r2", "p2", Sunday),
		entry("e3", "t2", "s1", "r1", "p2", Monday),
	})

	if got := lt.CountFor("t1"); got != 2 {
		t.Errorf("期望 t1=2，实际 %d", got)
	}
	if got := lt.CountFor("stale"); got != 0 {
		t.Errorf("重建后旧计数应清零，实际 %d", got)
	}
}
