package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xmustafa5/TimeClass-sub001/internal/api/middleware"
	"github.com/xmustafa5/TimeClass-sub001/pkg/jwt"
	"github.com/xmustafa5/TimeClass-sub001/pkg/response"
)

// MustGetUsername 从 Gin 上下文中安全提取用户名。
// 如果 JWT 中间件未正确注入，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUsername(c *gin.Context) (string, bool) {
	v, exists := c.Get(middleware.CtxUsername)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetClaims 从 Gin 上下文中安全提取完整的 JWT Claims。
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get(middleware.CtxClaims)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	if !ok || claims == nil {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	return claims, true
}
