package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/xmustafa5/TimeClass-sub001/config"
	"github.com/xmustafa5/TimeClass-sub001/internal/api/handler"
	"github.com/xmustafa5/TimeClass-sub001/internal/api/router"
	"github.com/xmustafa5/TimeClass-sub001/internal/api/validator"
	"github.com/xmustafa5/TimeClass-sub001/internal/repository"
	"github.com/xmustafa5/TimeClass-sub001/internal/service"
	"github.com/xmustafa5/TimeClass-sub001/internal/timetable"
	"github.com/xmustafa5/TimeClass-sub001/pkg/database"
	"github.com/xmustafa5/TimeClass-sub001/pkg/jwt"
	applogger "github.com/xmustafa5/TimeClass-sub001/pkg/logger"
	"github.com/xmustafa5/TimeClass-sub001/pkg/redis"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.Bool("distributed_lock", cfg.Engine.DistributedLock),
	)

	if err := validator.Register(); err != nil {
		logger.Fatal("注册校验规则失败", zap.Error(err))
	}

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	logger.Info("数据库连接成功")

	// 3.1 执行数据库迁移
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，Token 黑名单与限流将不可用", zap.Error(err))
		rdb = nil
	}

	// 接口变量只在 rdb 非 nil 时赋值，避免持有 typed nil
	var tokens service.TokenStore
	var locker service.Locker
	if rdb != nil {
		tokens = rdb
		if cfg.Engine.DistributedLock {
			locker = redis.NewLocker(rdb, cfg.Engine.LockTTL)
		}
	} else if cfg.Engine.DistributedLock {
		logger.Fatal("已启用分布式锁但 Redis 不可用")
	}

	// 5. 初始化 JWT 管理器
	jwtMgr := jwt.NewManager(&cfg.Auth)

	// 6. 冲突引擎：启动时从数据库重建索引，失败即退出
	repo := repository.NewRepository(db)
	engine := timetable.NewEngine(logger)
	guard := service.NewCommitGuard(repo, engine, locker, logger)

	rebuildCtx, cancelRebuild := context.WithTimeout(context.Background(), time.Minute)
	if err := guard.Rebuild(rebuildCtx); err != nil {
		cancelRebuild()
		logger.Fatal("排课索引重建失败", zap.Error(err))
	}
	cancelRebuild()
	logger.Info("排课索引已就绪", zap.Int("entries", engine.Size()))

	// 7. 依赖注入: Repository → Service → Handler
	svc := service.NewService(cfg, repo, engine, guard, jwtMgr, tokens, logger)
	h := handler.NewHandler(svc)

	reconciler := service.NewIndexReconciler(guard, cfg.Engine.ReconcileCron, logger)
	if err := reconciler.Start(); err != nil {
		logger.Fatal("启动索引定时重建失败", zap.Error(err))
	}

	// 8. 初始化路由
	engineHTTP := router.Setup(cfg, h, jwtMgr, rdb, logger)

	// 9. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engineHTTP,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 10. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	reconciler.Stop()

	// 关闭数据库连接
	if closeDB, _ := db.DB(); closeDB != nil {
		closeDB.Close()
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
