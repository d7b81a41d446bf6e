package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/undarez/camper-splatchs-sub001/config"
	"github.com/undarez/camper-splatchs-sub001/internal/dto"
	"github.com/undarez/camper-splatchs-sub001/internal/model"
	"github.com/undarez/camper-splatchs-sub001/internal/policy"
	"github.com/undarez/camper-splatchs-sub001/internal/repository"
	pkgerrors "github.com/undarez/camper-splatchs-sub001/pkg/errors"
	"github.com/undarez/camper-splatchs-sub001/pkg/jwt"
)

var (
	ErrInvalidCredentials  = newBizError(pkgerrors.ErrUnauthenticated, "invalid email or password")
	ErrInvalidRefreshToken = newBizError(pkgerrors.ErrUnauthenticated, "invalid or revoked refresh token")
	ErrUserNotFound        = newBizError(pkgerrors.ErrNotFound, "user not found")
	ErrEmailTaken          = newBizError(pkgerrors.ErrConflict, "email already registered")
)

// AuthService authentication
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	// Logout revokes the token identified by jti until its natural expiry
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
	Me(ctx context.Context, actor *policy.Actor) (*dto.UserResponse, error)
}

type authService struct {
	cfg       *config.Config
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
	enc       Encrypter
	policy    *policy.Policy
	logger    *zap.Logger
}

// NewAuthService creates an AuthService; blacklist and enc may be nil
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	enc Encrypter,
	pol *policy.Policy,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:       cfg,
		repo:      repo,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		enc:       enc,
		policy:    pol,
		logger:    logger,
	}
}

// ────────────────────── Register ──────────────────────

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	_, err := s.repo.User.GetByEmail(ctx, email)
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("lookup user by email failed", zap.Error(err))
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("hash password failed", zap.Error(err))
		return nil, err
	}

	role := model.RoleUser
	if s.policy.IsAdminEmail(email) {
		role = model.RoleAdmin
	}

	user := &model.User{
		Name:          strings.TrimSpace(req.Name),
		Email:         email,
		PasswordHash:  string(hash),
		Role:          role,
		EncryptedName: s.encrypt(req.Name),
	}
	if err := s.repo.User.Create(ctx, user); err != nil {
		s.logger.Error("create user failed", zap.Error(err))
		return nil, err
	}

	s.logger.Info("user registered", zap.String("user_id", user.UserID), zap.String("role", role))
	return s.toUserResponse(user), nil
}

// ────────────────────── Login ──────────────────────

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. lookup
	user, err := s.repo.User.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("lookup user failed", zap.Error(err))
		return nil, err
	}

	// 2. password (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// 3. token pair
	return s.issueTokens(user)
}

// ────────────────────── Refresh ──────────────────────

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseToken(refreshToken)
	if err != nil || claims.TokenType != jwt.TokenTypeRefresh {
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.repo.User.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		s.logger.Error("lookup user failed", zap.String("id", claims.UserID), zap.Error(err))
		return nil, err
	}

	// rotation: revoking the presented token is the check itself, so two
	// concurrent refreshes with the same token cannot both succeed
	if s.blacklist != nil && claims.ExpiresAt != nil {
		claimed, err := s.blacklist.BlacklistToken(ctx, claims.ID, time.Until(claims.ExpiresAt.Time))
		if err != nil {
			// Redis hiccups degrade to accepting the token
			s.logger.Warn("revoke rotated refresh token failed", zap.Error(err))
		} else if !claimed {
			return nil, ErrInvalidRefreshToken
		}
	}

	return s.issueTokens(user)
}

// ────────────────────── Logout ──────────────────────

func (s *authService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.blacklist == nil || jti == "" {
		return nil
	}
	_, err := s.blacklist.BlacklistToken(ctx, jti, time.Until(expiresAt))
	return err
}

// ────────────────────── Me ──────────────────────

func (s *authService) Me(ctx context.Context, actor *policy.Actor) (*dto.UserResponse, error) {
	if actor == nil {
		return nil, ErrAuthRequired
	}
	user, err := s.repo.User.GetByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("lookup user failed", zap.String("id", actor.UserID), zap.Error(err))
		return nil, err
	}
	return s.toUserResponse(user), nil
}

// ── helpers ──

func (s *authService) issueTokens(user *model.User) (*dto.TokenResponse, error) {
	accessToken, err := s.jwtMgr.GenerateAccessToken(user.UserID, user.Email, user.Role)
	if err != nil {
		s.logger.Error("sign access token failed", zap.Error(err))
		return nil, err
	}
	refreshToken, err := s.jwtMgr.GenerateRefreshToken(user.UserID, user.Email, user.Role)
	if err != nil {
		s.logger.Error("sign refresh token failed", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.jwtMgr.AccessTokenTTL().Seconds()),
		User:         *s.toUserResponse(user),
	}, nil
}

// encrypt mirror column; fails open to "" and logs
func (s *authService) encrypt(plaintext string) string {
	if s.enc == nil {
		return ""
	}
	out, err := s.enc.Encrypt(plaintext)
	if err != nil {
		s.logger.Warn("encrypt user field failed", zap.Error(err))
		return ""
	}
	return out
}

func (s *authService) toUserResponse(user *model.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:        user.UserID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		IsAdmin:   s.policy.IsAdmin(&policy.Actor{UserID: user.UserID, Email: user.Email, Role: user.Role}),
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}
