package timetable

import (
	"errors"
	"fmt"
)

// ErrInternalInconsistency 索引状态与调用方预期不符（先校验后提交的约定被破坏）
var ErrInternalInconsistency = errors.New("排课索引内部不一致")

// Entry 引擎视角下的排课记录；subject 仅用于展示，不参与冲突判定
type Entry struct {
	ID        string
	TeacherID string
	GradeID   string
	SectionID string
	PeriodID  string
	RoomID    string
	Day       WeekDay
}

// Slot (教学日, 节次) 二元组，教师/教室/班级在同一 Slot 内至多被占用一次
type Slot struct {
	Day      WeekDay
	PeriodID string
}

func (e Entry) slot() Slot { return Slot{Day: e.Day, PeriodID: e.PeriodID} }

// occupancy slot → resourceID → entryID
type occupancy map[Slot]map[string]string

func (o occupancy) get(s Slot, resourceID string) (string, bool) {
	byRes, ok := o[s]
	if !ok {
		return "", false
	}
	id, ok := byRes[resourceID]
	return id, ok
}

func (o occupancy) put(s Slot, resourceID, entryID string) {
	byRes, ok := o[s]
	if !ok {
		byRes = make(map[string]string)
		o[s] = byRes
	}
	byRes[resourceID] = entryID
}

func (o occupancy) drop(s Slot, resourceID, entryID string) {
	byRes, ok := o[s]
	if !ok {
		return
	}
	if byRes[resourceID] == entryID {
		delete(byRes, resourceID)
	}
	if len(byRes) == 0 {
		delete(o, s)
	}
}

// SlotIndex 按 (day, period) 维护教师、教室、班级三张占用表
//
// 非并发安全，由 Engine 统一加锁。
type SlotIndex struct {
	teachers occupancy
	rooms    occupancy
	sections occupancy
	entries  map[string]Entry
}

// NewSlotIndex 创建空索引
func NewSlotIndex() *SlotIndex {
	return &SlotIndex{
		teachers: make(occupancy),
		rooms:    make(occupancy),
		sections: make(occupancy),
		entries:  make(map[string]Entry),
	}
}

// Add 写入三张占用表。任一键已被其他记录占用时整体失败，不做部分写入。
func (x *SlotIndex) Add(e Entry) error {
	if _, dup := x.entries[e.ID]; dup {
		return fmt.Errorf("%w: 排课记录 %s 已在索引中", ErrInternalInconsistency, e.ID)
	}
	s := e.slot()
	if id, ok := x.teachers.get(s, e.TeacherID); ok {
		return fmt.Errorf("%w: 教师 %s 在 %s/%s 已被记录 %s 占用", ErrInternalInconsistency, e.TeacherID, s.Day, s.PeriodID, id)
	}
	if id, ok := x.rooms.get(s, e.RoomID); ok {
		return fmt.Errorf("%w: 教室 %s 在 %s/%s 已被记录 %s 占用", ErrInternalInconsistency, e.RoomID, s.Day, s.PeriodID, id)
	}
	if id, ok := x.sections.get(s, e.SectionID); ok {
		return fmt.Errorf("%w: 班级 %s 在 %s/%s 已被记录 %s 占用", ErrInternalInconsistency, e.SectionID, s.Day, s.PeriodID, id)
	}

	x.teachers.put(s, e.TeacherID, e.ID)
	x.rooms.put(s, e.RoomID, e.ID)
	x.sections.put(s, e.SectionID, e.ID)
	x.entries[e.ID] = e
	return nil
}

// Remove 删除记录对应的三个键。按索引中保存的版本删除，调用方传入的旧字段不影响结果。
func (x *SlotIndex) Remove(e Entry) bool {
	_, ok := x.RemoveByID(e.ID)
	return ok
}

// RemoveByID 按记录 ID 删除，返回被删除的索引版本
func (x *SlotIndex) RemoveByID(id string) (Entry, bool) {
	stored, ok := x.entries[id]
	if !ok {
		return Entry{}, false
	}
	s := stored.slot()
	x.teachers.drop(s, stored.TeacherID, id)
	x.rooms.drop(s, stored.RoomID, id)
	x.sections.drop(s, stored.SectionID, id)
	delete(x.entries, id)
	return stored, true
}

// Rebuild 清空并按全量记录重建。出现冲突时保留原索引并返回错误。
func (x *SlotIndex) Rebuild(all []Entry) error {
	fresh := NewSlotIndex()
	for _, e := range all {
		if err := fresh.Add(e); err != nil {
			return err
		}
	}
	*x = *fresh
	return nil
}

// TeacherAt 查询教师在 (day, period) 的占用记录
func (x *SlotIndex) TeacherAt(day WeekDay, periodID, teacherID string) (string, bool) {
	return x.teachers.get(Slot{Day: day, PeriodID: periodID}, teacherID)
}

// RoomAt 查询教室在 (day, period) 的占用记录
func (x *SlotIndex) RoomAt(day WeekDay, periodID, roomID string) (string, bool) {
	return x.rooms.get(Slot{Day: day, PeriodID: periodID}, roomID)
}

// SectionAt 查询班级在 (day, period) 的占用记录
func (x *SlotIndex) SectionAt(day WeekDay, periodID, sectionID string) (string, bool) {
	return x.sections.get(Slot{Day: day, PeriodID: periodID}, sectionID)
}

// Get 按 ID 取索引中的记录
func (x *SlotIndex) Get(id string) (Entry, bool) {
	e, ok := x.entries[id]
	return e, ok
}

// Len 已索引记录数
func (x *SlotIndex) Len() int { return len(x.entries) }

// Entries 返回全部已索引记录（顺序不保证）
func (x *SlotIndex) Entries() []Entry {
	out := make([]Entry, 0, len(x.entries))
	for _, e := range x.entries {
		out = append(out, e)
	}
	return out
}
