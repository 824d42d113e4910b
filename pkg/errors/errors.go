package errors

import "errors"

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// ErrLockBusy 排课提交锁被其他实例持有
var ErrLockBusy = errors.New("排课正在被其他操作修改，请稍后重试")
