package timetable

import "sort"

// PeriodSpan 节次在时间轴上的投影（检查器只关心编号与时间区间）
type PeriodSpan struct {
	ID       string
	Number   int
	Interval Interval
}

// PeriodCheckResult 节次校验结果
type PeriodCheckResult struct {
	Valid             bool
	ConflictingPeriod *PeriodSpan
}

// CheckPeriod 校验候选节次是否与现有节次时间重叠
//
// 规则：
//   - 跳过 excludeID（编辑自身时传入自身 ID）
//   - 按节次编号升序比较（编号相同按 ID），返回第一个冲突节次，保证结果可复现
//   - 纯函数，不修改入参
func CheckPeriod(candidate Interval, existing []PeriodSpan, excludeID string) PeriodCheckResult {
	ordered := make([]PeriodSpan, len(existing))
	copy(ordered, existing)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Number != ordered[j].Number {
			return ordered[i].Number < ordered[j].Number
		}
		return ordered[i].ID < ordered[j].ID
	})

	for i := range ordered {
		p := ordered[i]
		if excludeID != "" && p.ID == excludeID {
			continue
		}
		if Overlaps(candidate, p.Interval) {
			return PeriodCheckResult{Valid: false, ConflictingPeriod: &p}
		}
	}
	return PeriodCheckResult{Valid: true}
}
