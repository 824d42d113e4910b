package timetable

import "fmt"

// LoadTracker 教师周课时计数（teacherID → 已排节数）
type LoadTracker struct {
	counts map[string]int
}

// NewLoadTracker 创建空计数器
func NewLoadTracker() *LoadTracker {
	return &LoadTracker{counts: make(map[string]int)}
}

// Increment 课时 +1
func (t *LoadTracker) Increment(teacherID string) {
	t.counts[teacherID]++
}

// Decrement 课时 -1；计数为 0 时拒绝，计数永不为负
func (t *LoadTracker) Decrement(teacherID string) error {
	n := t.counts[teacherID]
	if n <= 0 {
		return fmt.Errorf("%w: 教师 %s 课时计数已为 0", ErrInternalInconsistency, teacherID)
	}
	if n == 1 {
		delete(t.counts, teacherID)
		return nil
	}
	t.counts[teacherID] = n - 1
	return nil
}

// CountFor 教师当前周课时
func (t *LoadTracker) CountFor(teacherID string) int {
	return t.counts[teacherID]
}

// Rebuild 按全量记录重新计数
func (t *LoadTracker) Rebuild(all []Entry) {
	counts := make(map[string]int, len(all))
	for _, e := range all {
		counts[e.TeacherID]++
	}
	t.counts = counts
}
