package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xmustafa5/TimeClass-sub001/pkg/redis"
	"github.com/xmustafa5/TimeClass-sub001/pkg/response"
)

const rateLimitPrefix = "timeclass:rate_limit:"

// RateLimit 基于 Redis 滑动窗口的速率限制中间件
//
// scope 区分限流场景（登录、冲突预检等），已登录请求按账号计数，
// 未登录请求按客户端 IP 计数。rdb 为 nil 或 Redis 出错时放行。
func RateLimit(rdb *redis.Client, scope string, limit int, window time.Duration) gin.HandlerFunc {
	retryAfter := strconv.Itoa(int(window.Seconds()))

	return func(c *gin.Context) {
		if rdb == nil {
			c.Next()
			return
		}

		allowed, err := rdb.CheckRateLimit(c.Request.Context(), rateLimitKey(c, scope), limit, window)
		if err != nil || allowed {
			c.Next()
			return
		}

		c.Header("Retry-After", retryAfter)
		response.Error(c, http.StatusTooManyRequests, 10007, "请求过于频繁，请稍后再试")
		c.Abort()
	}
}

// rateLimitKey 限流计数键：scope + 账号或 IP
func rateLimitKey(c *gin.Context, scope string) string {
	if user := c.GetString(CtxUsername); user != "" {
		return rateLimitPrefix + scope + ":user:" + user
	}
	return rateLimitPrefix + scope + ":ip:" + c.ClientIP()
}
