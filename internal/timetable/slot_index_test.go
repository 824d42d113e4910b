package timetable

import (
	"errors"
	"testing"
)

func entry(id, teacher, section, room, period string, day WeekDay) Entry {
	return Entry{
		ID:        id,
		TeacherID: teacher,
		GradeID:   "g-1",
		SectionID: section,
		PeriodID:  period,
		RoomID:    room,
		Day:       day,
	}
}

func TestSlotIndex_AddAndLookup(t *testing.T) {
	x := NewSlotIndex()
	if err := x.Add(entry("e1", "t1", "s1", "r1", "p1", Sunday)); err != nil {
		t.Fatalf("Add 应成功: %v", err)
	}

	if id, ok := x.TeacherAt(Sunday, "p1", "t1"); !ok || id != "e1" {
		t.Errorf("TeacherAt 期望 e1，实际 %q %v", id, ok)
	}
	if id, ok := x.RoomAt(Sunday, "p1", "r1"); !ok || id != "e1" {
		t.Errorf("RoomAt 期望 e1，实际 %q %v", id, ok)
	}
	if id, ok := x.SectionAt(Sunday, "p1", "s1"); !ok || id != "e1" {
		t.Errorf("SectionAt 期望 e1，实际 %q %v", id, ok)
	}

	// 不同日或不同节次不受影响
	if _, ok := x.TeacherAt(Monday, "p1", "t1"); ok {
		t.Error("周一不应有占用")
	}
	if _, ok := x.RoomAt(Sunday, "p2", "r1"); ok {
		t.Error("第2节不应有占用")
	}
}

func TestSlotIndex_AddCollisionIsAtomic(t *testing.T) {
	x := NewSlotIndex()
	_ = x.Add(entry("e1", "t1", "s1", "r1", "p1", Sunday))

	// 教室冲突：教师 t2 与班级 s2 均不应被写入
	err := x.Add(entry("e2", "t2", "s2", "r1", "p1", Sunday))
	if !errors.Is(err, ErrInternalInconsistency) {
		t.Fatalf("期望 ErrInternalInconsistency，实际 %v", err)
	}
	if _, ok := x.TeacherAt(Sunday, "p1", "t2"); ok {
		t.Error("失败的 Add 不应写入教师占用")
	}
	if _, ok := x.SectionAt(Sunday, "p1", "s2"); ok {
		t.Error("失败的 Add 不应写入班级占用")
	}
	if x.Len() != 1 {
		t.Errorf("期望索引 1 条，实际 %d", x.Len())
	}
}

func TestSlotIndex_DuplicateID(t *testing.T) {
	x := NewSlotIndex()
	_ = x.Add(entry("e1", "t1", "s1", "r1", "p1", Sunday))

	err := x.Add(entry("e1", "t2", "s2", "r2", "p2", Monday))
	if !errors.Is(err, ErrInternalInconsistency) {
		t.Errorf("重复 ID 期望 ErrInternalInconsistency，实际 %v", err)
	}
}

func TestSlotIndex_Remove(t *testing.T) {
	x := NewSlotIndex()
	e := entry("e1", "t1", "s1", "r1", "p1", Sunday)
	_ = x.Add(e)

	if !x.Remove(e) {
		t.Fatal("Remove 应返回 true")
	}
	if _, ok := x.TeacherAt(Sunday, "p1", "t1"); ok {
		t.Error("删除后教师占用应释放")
	}
	if _, ok := x.RoomAt(Sunday, "p1", "r1"); ok {
		t.Error("删除后教室占用应释放")
	}
	if x.Remove(e) {
		t.Error("重复删除应返回 false")
	}

	// 释放后可再次占用
	if err := x.Add(entry("e2", "t1", "s1", "r1", "p1", Sunday)); err != nil {
		t.Errorf("释放后 Add 应成功: %v", err)
	}
}

func TestSlotIndex_RemoveUsesStoredVersion(t *testing.T) {
	x := NewSlotIndex()
	_ = x.Add(entry("e1", "t1", "s1", "r1", "p1", Sunday))

	// 调用方持有的是已修改过的副本
	stale := entry("e1", "t9", "s9", "r9", "p9", Thursday)
	x.Remove(stale)

	if _, ok := x.TeacherAt(Sunday, "p1", "t1"); ok {
		t.Error("应按索引中保存的版本释放占用")
	}
}

func TestSlotIndex_RebuildIdempotent(t *testing.T) {
	all := []Entry{
		entry("e1", "t1", "s1", "r1", "p1", Sunday),
		entry("e2", "t2", "s2", "r2", "p1", Sunday),
		entry("e3", "t1", "s2", "r1", "p2", Monday),
	}

	once := NewSlotIndex()
	if err := once.Rebuild(all); err != nil {
		t.Fatalf("Rebuild 应成功: %v", err)
	}
	twice := NewSlotIndex()
	_ = twice.Rebuild(all)
	if err := twice.Rebuild(all); err != nil {
		t.Fatalf("第二次 Rebuild 应成功: %v", err)
	}

	for _, day := range WeekDays {
		for _, p := range []string{"p1", "p2"} {
			for _, res := range []string{"t1", "t2"} {
				a, aok := once.TeacherAt(day, p, res)
				b, bok := twice.TeacherAt(day, p, res)
				if a != b || aok != bok {
					t.Errorf("TeacherAt(%s,%s,%s) 不一致: %q/%v vs %q/%v", day, p, res, a, aok, b, bok)
				}
			}
			for _, res := range []string{"r1", "r2"} {
				a, _ := once.RoomAt(day, p, res)
				b, _ := twice.RoomAt(day, p, res)
				if a != b {
					t.Errorf("RoomAt(%s,%s,%s) 不一致", day, p, res)
				}
			}
			for _, res := range []string{"s1", "s2"} {
				a, _ := once.SectionAt(day, p, res)
				b, _ := twice.SectionAt(day, p, res)
				if a != b {
					t.Errorf("SectionAt(%s,%s,%s) 不一致", day, p, res)
				}
			}
		}
	}
	if once.Len() != twice.Len() {
		t.Errorf("记录数不一致: %d vs %d", once.Len(), twice.Len())
	}
}

func TestSlotIndex_RebuildCollisionKeepsPrevious(t *testing.T) {
	x := NewSlotIndex()
	_ = x.Add(entry("e1", "t1", "s1", "r1", "p1", Sunday))

	bad := []Entry{
		entry("e2", "t2", "s2", "r2", "p1", Monday),
		entry("e3", "t2", "s3", "r3", "p1", Monday), // 教师 t2 重复
	}
	if err := x.Rebuild(bad); !errors.Is(err, ErrInternalInconsistency) {
		t.Fatalf("期望 ErrInternalInconsistency，实际 %v", err)
	}
	if _, ok := x.TeacherAt(Sunday, "p1", "t1"); !ok {
		t.Error("重建失败时应保留原索引")
	}
	if _, ok := x.TeacherAt(Monday, "p1", "t2"); ok {
		t.Error("重建失败时不应写入部分数据")
	}
}
