package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/xmustafa5/TimeClass-sub001/internal/model"
	"github.com/xmustafa5/TimeClass-sub001/internal/repository"
	"github.com/xmustafa5/TimeClass-sub001/internal/timetable"
)

const commitLockName = "timetable:commit"

// Locker 跨实例互斥锁，由 pkg/redis.Locker 实现
type Locker interface {
	WithLock(ctx context.Context, name string, fn func() error) error
}

// CommitGuard 排课写入的串行化入口
//
// 单实例部署时只依赖引擎自身的提交锁；配置了 locker 时，
// 每次写入先取得 Redis 锁，并在锁内按数据库重建索引，
// 以吸收其他实例已提交的变更。
type CommitGuard struct {
	repo   *repository.Repository
	engine *timetable.Engine
	locker Locker
	logger *zap.Logger
}

// NewCommitGuard 创建写入守卫；locker 为 nil 表示单实例
func NewCommitGuard(repo *repository.Repository, engine *timetable.Engine, locker Locker, logger *zap.Logger) *CommitGuard {
	return &CommitGuard{repo: repo, engine: engine, locker: locker, logger: logger}
}

// Run 在守卫内执行 fn；fn 内部可调用 Admit / Retire / Exclusive
func (g *CommitGuard) Run(ctx context.Context, fn func() error) error {
	if g.locker == nil {
		return fn()
	}
	return g.locker.WithLock(ctx, commitLockName, func() error {
		if err := g.engine.Exclusive(func() error { return g.Rebuild(ctx) }); err != nil {
			return err
		}
		return fn()
	})
}

// Rebuild 从数据库全量重建引擎索引；调用方需已持有提交锁或处于启动阶段
func (g *CommitGuard) Rebuild(ctx context.Context) error {
	entries, err := g.repo.ScheduleEntry.ListAll(ctx)
	if err != nil {
		g.logger.Error("加载排课记录失败", zap.Error(err))
		return err
	}
	return g.engine.IndexRebuild(model.SlotEntries(entries))
}

// Reconcile 串行化地重建索引（定时任务与运维入口）
func (g *CommitGuard) Reconcile(ctx context.Context) error {
	rebuild := func() error {
		return g.engine.Exclusive(func() error { return g.Rebuild(ctx) })
	}
	if g.locker == nil {
		return rebuild()
	}
	return g.locker.WithLock(ctx, commitLockName, rebuild)
}

// Serialize 在守卫与提交锁内执行 fn，与 Admit / Retire 互斥
func (g *CommitGuard) Serialize(ctx context.Context, fn func() error) error {
	return g.Run(ctx, func() error {
		return g.engine.Exclusive(fn)
	})
}

// Cascade 在单个事务中执行级联删除，提交后重建索引
func (g *CommitGuard) Cascade(ctx context.Context, fn func(ctx context.Context, tx repository.TxRepositories) error) error {
	return g.Serialize(ctx, func() error {
		if err := g.repo.Tx.WithTx(ctx, fn); err != nil {
			return err
		}
		return g.Rebuild(ctx)
	})
}
