package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xmustafa5/TimeClass-sub001/internal/dto"
	"github.com/xmustafa5/TimeClass-sub001/internal/service"
	"github.com/xmustafa5/TimeClass-sub001/pkg/response"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login 账号登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, result)
}

// RefreshToken 刷新 Token（旧 Refresh Token 随即作废）
// POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.authSvc.RefreshToken(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, result)
}

// Logout 注销当前 Access Token
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := MustGetClaims(c)
	if !ok {
		return
	}

	if err := h.authSvc.Logout(c.Request.Context(), claims); err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}

// Me 当前账号信息
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	username, ok := MustGetUsername(c)
	if !ok {
		return
	}

	account, err := h.authSvc.Me(c.Request.Context(), username)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, account)
}

func (h *AuthHandler) handleAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Error(c, http.StatusUnauthorized, 11001, "用户名或密码错误")
	case errors.Is(err, service.ErrInvalidRefreshToken):
		response.Error(c, http.StatusUnauthorized, 11002, "Refresh Token 无效或已过期")
	case errors.Is(err, service.ErrAccountNotFound):
		response.Error(c, http.StatusUnauthorized, 11003, "账号不存在或已停用")
	default:
		response.InternalError(c)
	}
}
