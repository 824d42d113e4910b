package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/xmustafa5/TimeClass-sub001/config"
	"github.com/xmustafa5/TimeClass-sub001/internal/dto"
	"github.com/xmustafa5/TimeClass-sub001/pkg/jwt"
)

var (
	ErrInvalidCredentials  = errors.New("用户名或密码错误")
	ErrAccountNotFound     = errors.New("账号不存在")
	ErrInvalidRefreshToken = errors.New("refresh token 无效或已过期")
)

// TokenStore Token 黑名单存储，由 pkg/redis.Client 实现
type TokenStore interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// AuthService 认证业务接口
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
	// Logout 将当前 Access Token 加入黑名单
	Logout(ctx context.Context, claims *jwt.Claims) error
	Me(ctx context.Context, username string) (*dto.AccountResponse, error)
}

type authService struct {
	accounts map[string]config.AccountConfig
	jwtMgr   *jwt.Manager
	tokens   TokenStore
	logger   *zap.Logger
}

// NewAuthService 创建 AuthService 实例；账号来自配置文件
func NewAuthService(
	cfg *config.Config,
	jwtMgr *jwt.Manager,
	tokens TokenStore,
	logger *zap.Logger,
) AuthService {
	accounts := make(map[string]config.AccountConfig, len(cfg.Auth.Accounts))
	for _, a := range cfg.Auth.Accounts {
		accounts[a.Username] = a
	}
	return &authService{
		accounts: accounts,
		jwtMgr:   jwtMgr,
		tokens:   tokens,
		logger:   logger,
	}
}

func (s *authService) Login(_ context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. 查询账号
	account, ok := s.accounts[req.Username]
	if !ok {
		return nil, ErrInvalidCredentials
	}

	// 2. 验证密码 (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// 3. 生成 Token 对
	return s.issueTokens(account)
}

func (s *authService) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseToken(req.RefreshToken)
	if err != nil || claims.TokenType != jwt.TokenTypeRefresh {
		return nil, ErrInvalidRefreshToken
	}

	if s.tokens != nil {
		revoked, err := s.tokens.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			s.logger.Warn("查询 Token 黑名单失败", zap.Error(err))
		} else if revoked {
			return nil, ErrInvalidRefreshToken
		}
	}

	// 账号可能已从配置中移除或变更角色
	account, ok := s.accounts[claims.Username]
	if !ok {
		return nil, ErrAccountNotFound
	}

	resp, err := s.issueTokens(account)
	if err != nil {
		return nil, err
	}

	// 旧 Refresh Token 作废（轮换）
	if s.tokens != nil {
		if err := s.tokens.BlacklistToken(ctx, claims.ID, claims.RemainingTTL()); err != nil {
			s.logger.Warn("旧 Refresh Token 加入黑名单失败", zap.String("jti", claims.ID), zap.Error(err))
		}
	}
	return resp, nil
}

func (s *authService) Logout(ctx context.Context, claims *jwt.Claims) error {
	if s.tokens == nil {
		return nil
	}
	if err := s.tokens.BlacklistToken(ctx, claims.ID, claims.RemainingTTL()); err != nil {
		s.logger.Error("Token 加入黑名单失败", zap.String("jti", claims.ID), zap.Error(err))
		return err
	}
	return nil
}

func (s *authService) Me(_ context.Context, username string) (*dto.AccountResponse, error) {
	account, ok := s.accounts[username]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return &dto.AccountResponse{Username: account.Username, Role: account.Role}, nil
}

func (s *authService) issueTokens(account config.AccountConfig) (*dto.TokenResponse, error) {
	accessToken, err := s.jwtMgr.GenerateAccessToken(account.Username, account.Role)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}

	refreshToken, err := s.jwtMgr.GenerateRefreshToken(account.Username, account.Role)
	if err != nil {
		s.logger.Error("生成 RefreshToken 失败", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.jwtMgr.AccessTokenTTL().Seconds()),
		Account:      dto.AccountResponse{Username: account.Username, Role: account.Role},
	}, nil
}
