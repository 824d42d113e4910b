// Package timetable 排课冲突检测与课时容量引擎
//
// 引擎只持有派生缓存（Slot 索引与周课时计数），不是数据源：
// 进程启动、批量导入或级联删除后必须调用 IndexRebuild。
// 所有检查都是同步、内存内的，不做任何 I/O。
package timetable

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

var (
	ErrUnknownTeacher = errors.New("排课记录引用的教师不存在")
	ErrMalformedEntry = errors.New("排课记录字段不完整或非法")
)

// ConflictType 冲突类型，按优先级排列
type ConflictType string

const (
	ConflictTeacher  ConflictType = "teacher"
	ConflictRoom     ConflictType = "room"
	ConflictSection  ConflictType = "section"
	ConflictWorkday  ConflictType = "workday"
	ConflictCapacity ConflictType = "capacity"
)

// ConflictCheck 排课准入检查结果；冲突是正常返回值而非错误
type ConflictCheck struct {
	HasConflict        bool
	ConflictType       ConflictType
	Message            string
	ConflictingEntryID string
}

// TeacherPolicy 冲突检查所需的教师只读约束
type TeacherPolicy struct {
	ID            string
	WeeklyPeriods int
	WorkDays      []WeekDay
}

// WorksOn 是否允许在该日排课
func (p *TeacherPolicy) WorksOn(day WeekDay) bool {
	for _, d := range p.WorkDays {
		if d == day {
			return true
		}
	}
	return false
}

// Engine 冲突引擎
//
// 锁约定：
//   - mu 保护索引与课时计数，持有时间极短
//   - commitMu 覆盖「检查 → 持久化 → 更新索引」整个单元（Admit / Retire / Exclusive），
//     同一时间只有一个写入方；不可在 Exclusive 回调中再调用 Admit / Retire
type Engine struct {
	mu       sync.RWMutex
	commitMu sync.Mutex

	index  *SlotIndex
	load   *LoadTracker
	logger *zap.Logger
}

// NewEngine 创建空引擎
func NewEngine(logger *zap.Logger) *Engine {
	return &Engine{
		index:  NewSlotIndex(),
		load:   NewLoadTracker(),
		logger: logger,
	}
}

// ────────────────────── 查询 ──────────────────────

// CheckEntry 检查候选排课是否可放入。excludeID 为正在编辑的记录自身。
//
// 优先级固定（首个命中即返回）：教师 > 教室 > 班级 > 工作日 > 周课时。
// 字段缺失或教师不存在时返回 error，而不是冲突。
func (e *Engine) CheckEntry(candidate Entry, teacher *TeacherPolicy, excludeID string) (ConflictCheck, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.checkLocked(candidate, teacher, excludeID)
}

func (e *Engine) checkLocked(c Entry, teacher *TeacherPolicy, excludeID string) (ConflictCheck, error) {
	if err := validateEntry(c); err != nil {
		return ConflictCheck{}, err
	}
	if teacher == nil || teacher.ID != c.TeacherID {
		return ConflictCheck{}, fmt.Errorf("%w: %s", ErrUnknownTeacher, c.TeacherID)
	}
	if teacher.WeeklyPeriods <= 0 {
		return ConflictCheck{}, fmt.Errorf("%w: 教师 %s 周课时配额必须为正数", ErrMalformedEntry, teacher.ID)
	}

	if id, ok := e.index.TeacherAt(c.Day, c.PeriodID, c.TeacherID); ok && id != excludeID {
		return conflict(ConflictTeacher, id, "该教师在此时段已有课程"), nil
	}
	if id, ok := e.index.RoomAt(c.Day, c.PeriodID, c.RoomID); ok && id != excludeID {
		return conflict(ConflictRoom, id, "该教室在此时段已被占用"), nil
	}
	if id, ok := e.index.SectionAt(c.Day, c.PeriodID, c.SectionID); ok && id != excludeID {
		return conflict(ConflictSection, id, "该班级在此时段已有课程"), nil
	}

	if !teacher.WorksOn(c.Day) {
		return conflict(ConflictWorkday, "", fmt.Sprintf("该教师不在 %s 工作", c.Day)), nil
	}

	count := e.load.CountFor(c.TeacherID)
	if excludeID != "" {
		if old, ok := e.index.Get(excludeID); ok && old.TeacherID == c.TeacherID {
			count--
		}
	}
	if count+1 > teacher.WeeklyPeriods {
		return conflict(ConflictCapacity, "",
			fmt.Sprintf("该教师周课时已满（%d/%d）", count, teacher.WeeklyPeriods)), nil
	}

	return ConflictCheck{}, nil
}

func conflict(t ConflictType, entryID, msg string) ConflictCheck {
	return ConflictCheck{HasConflict: true, ConflictType: t, Message: msg, ConflictingEntryID: entryID}
}

func validateEntry(c Entry) error {
	if !c.Day.Valid() {
		return fmt.Errorf("%w: 非法教学日 %q", ErrMalformedEntry, c.Day)
	}
	if c.TeacherID == "" || c.SectionID == "" || c.PeriodID == "" || c.RoomID == "" {
		return fmt.Errorf("%w: 教师、班级、节次、教室均不能为空", ErrMalformedEntry)
	}
	return nil
}

// LoadCountFor 教师当前周课时
func (e *Engine) LoadCountFor(teacherID string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.load.CountFor(teacherID)
}

// Lookup 按 ID 取已索引记录
func (e *Engine) Lookup(entryID string) (Entry, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.index.Get(entryID)
}

// Occupant 查询某资源在 (day, period) 的占用记录
func (e *Engine) Occupant(kind ConflictType, day WeekDay, periodID, resourceID string) (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	switch kind {
	case ConflictTeacher:
		return e.index.TeacherAt(day, periodID, resourceID)
	case ConflictRoom:
		return e.index.RoomAt(day, periodID, resourceID)
	case ConflictSection:
		return e.index.SectionAt(day, periodID, resourceID)
	}
	return "", false
}

// Size 已索引记录数
func (e *Engine) Size() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.index.Len()
}

// ────────────────────── 索引维护 ──────────────────────

// IndexAdd 提交成功后写入索引，并同步 +1 课时
func (e *Engine) IndexAdd(entry Entry) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.addLocked(entry)
}

func (e *Engine) addLocked(entry Entry) error {
	if entry.ID == "" {
		return fmt.Errorf("%w: 写入索引的记录必须有 ID", ErrMalformedEntry)
	}
	if err := validateEntry(entry); err != nil {
		return err
	}
	if err := e.index.Add(entry); err != nil {
		e.logger.Error("排课索引写入失败", zap.String("entry_id", entry.ID), zap.Error(err))
		return err
	}
	e.load.Increment(entry.TeacherID)
	return nil
}

// IndexRemove 删除成功后移除索引，并同步 -1 课时
func (e *Engine) IndexRemove(entry Entry) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.removeLocked(entry.ID)
}

func (e *Engine) removeLocked(entryID string) error {
	stored, ok := e.index.RemoveByID(entryID)
	if !ok {
		err := fmt.Errorf("%w: 排课记录 %s 不在索引中", ErrInternalInconsistency, entryID)
		e.logger.Error("排课索引移除失败", zap.String("entry_id", entryID), zap.Error(err))
		return err
	}
	if err := e.load.Decrement(stored.TeacherID); err != nil {
		e.logger.Error("课时计数回退失败", zap.String("teacher_id", stored.TeacherID), zap.Error(err))
		return err
	}
	return nil
}

// IndexRebuild 按全量记录重建索引与课时计数；失败时保留原状态
func (e *Engine) IndexRebuild(all []Entry) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.index.Rebuild(all); err != nil {
		e.logger.Error("排课索引重建失败", zap.Int("entries", len(all)), zap.Error(err))
		return err
	}
	e.load.Rebuild(all)
	e.logger.Info("排课索引已重建", zap.Int("entries", len(all)))
	return nil
}

// ────────────────────── 原子提交单元 ──────────────────────

// Admit 在提交锁内完成「检查 → 持久化 → 更新索引」
//
// replaces 为被替换的记录 ID（更新场景，同时作为 excludeID），新建时为空。
// 冲突时不调用 persist；persist 失败时索引保持不变。
func (e *Engine) Admit(candidate Entry, teacher *TeacherPolicy, replaces string, persist func() error) (ConflictCheck, error) {
	e.commitMu.Lock()
	defer e.commitMu.Unlock()

	check, err := e.CheckEntry(candidate, teacher, replaces)
	if err != nil || check.HasConflict {
		return check, err
	}

	if err := persist(); err != nil {
		return ConflictCheck{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	var previous Entry
	if replaces != "" {
		prev, ok := e.index.Get(replaces)
		if !ok {
			err := fmt.Errorf("%w: 被替换的排课记录 %s 不在索引中", ErrInternalInconsistency, replaces)
			e.logger.Error("排课索引替换失败", zap.String("entry_id", replaces), zap.Error(err))
			return ConflictCheck{}, err
		}
		previous = prev
		if err := e.removeLocked(replaces); err != nil {
			return ConflictCheck{}, err
		}
	}
	if err := e.addLocked(candidate); err != nil {
		if replaces != "" {
			// 回填旧版本，保持索引与调用前一致
			if rerr := e.addLocked(previous); rerr != nil {
				e.logger.Error("排课索引回填失败", zap.String("entry_id", replaces), zap.Error(rerr))
			}
		}
		return ConflictCheck{}, err
	}
	return check, nil
}

// Retire 在提交锁内完成「持久化删除 → 移除索引」
func (e *Engine) Retire(entryID string, persist func() error) error {
	e.commitMu.Lock()
	defer e.commitMu.Unlock()

	if err := persist(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.removeLocked(entryID)
}

// Exclusive 以提交锁串行执行 fn（节次变更、级联删除后的重建等）
func (e *Engine) Exclusive(fn func() error) error {
	e.commitMu.Lock()
	defer e.commitMu.Unlock()
	return fn()
}
