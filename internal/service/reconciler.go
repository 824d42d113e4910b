package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// IndexReconciler 定时从数据库重建排课索引
//
// 索引只是派生缓存；绕过服务直接改库（手工修数、导入脚本）后，
// 下一次定时任务会把索引拉回与数据库一致。
type IndexReconciler struct {
	cron    *cron.Cron
	guard   *CommitGuard
	spec    string
	timeout time.Duration
	logger  *zap.Logger
}

// NewIndexReconciler 创建定时重建任务；spec 为标准 5 段 cron 表达式，为空则不启用
func NewIndexReconciler(guard *CommitGuard, spec string, logger *zap.Logger) *IndexReconciler {
	return &IndexReconciler{
		cron:    cron.New(),
		guard:   guard,
		spec:    spec,
		timeout: 2 * time.Minute,
		logger:  logger,
	}
}

// Start 注册并启动定时任务
func (r *IndexReconciler) Start() error {
	if r.spec == "" {
		r.logger.Info("未配置索引重建周期，跳过定时任务")
		return nil
	}

	if _, err := r.cron.AddFunc(r.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		// RunOnce 已记录失败日志，下一周期会再次重建
		_ = r.RunOnce(ctx)
	}); err != nil {
		return err
	}

	r.cron.Start()
	r.logger.Info("索引定时重建已启动", zap.String("cron", r.spec))
	return nil
}

// Stop 停止调度并等待正在执行的任务结束
func (r *IndexReconciler) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	r.logger.Info("索引定时重建已停止")
}

// RunOnce 立即执行一次重建
func (r *IndexReconciler) RunOnce(ctx context.Context) error {
	start := time.Now()
	if err := r.guard.Reconcile(ctx); err != nil {
		r.logger.Error("索引定时重建失败", zap.Error(err))
		return err
	}
	r.logger.Info("索引定时重建完成", zap.Duration("elapsed", time.Since(start)))
	return nil
}
