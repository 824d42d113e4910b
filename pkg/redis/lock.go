package redis

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	apperrors "github.com/xmustafa5/TimeClass-sub001/pkg/errors"
)

const lockPrefix = "timeclass:lock:"

// 仅当值仍为本持有者的 token 时删除，避免误删他人续上的锁
var unlockScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker 基于 SET NX PX 的跨实例互斥锁
type Locker struct {
	client *Client
	ttl    time.Duration
	retry  time.Duration
}

// NewLocker 创建分布式锁；ttl 为锁的最长持有时间
func NewLocker(client *Client, ttl time.Duration) *Locker {
	return &Locker{client: client, ttl: ttl, retry: 50 * time.Millisecond}
}

// WithLock 持锁执行 fn；在 ctx 结束前获取不到锁时返回 ErrLockBusy
func (l *Locker) WithLock(ctx context.Context, name string, fn func() error) error {
	key := lockPrefix + name
	token := uuid.NewString()

	for {
		ok, err := l.client.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return err
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return apperrors.ErrLockBusy
		case <-time.After(l.retry):
		}
	}

	defer func() {
		// 释放锁不受调用方 ctx 取消影响
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := unlockScript.Run(rctx, l.client.rdb, []string{key}, token).Err(); err != nil && !errors.Is(err, goredis.Nil) {
			l.client.logger.Warn("释放排课提交锁失败", zap.String("key", key), zap.Error(err))
		}
	}()

	return fn()
}
