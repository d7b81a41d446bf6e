package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/undarez/camper-splatchs-sub001/config"
	"github.com/undarez/camper-splatchs-sub001/internal/policy"
	"github.com/undarez/camper-splatchs-sub001/internal/repository"
	"github.com/undarez/camper-splatchs-sub001/pkg/crypto"
	pkgerrors "github.com/undarez/camper-splatchs-sub001/pkg/errors"
	"github.com/undarez/camper-splatchs-sub001/pkg/geocode"
	"github.com/undarez/camper-splatchs-sub001/pkg/jwt"
	"github.com/undarez/camper-splatchs-sub001/pkg/mail"
	"github.com/undarez/camper-splatchs-sub001/pkg/moderation"
	"github.com/undarez/camper-splatchs-sub001/pkg/redis"
)

// ── errors shared by every module ──

var (
	ErrAuthRequired  = newBizError(pkgerrors.ErrUnauthenticated, "authentication required")
	ErrAdminRequired = newBizError(pkgerrors.ErrForbidden, "administrator privilege required")
)

// ── collaborators ──

// Cache JSON cache; implemented by pkg/redis
type Cache interface {
	GetJSON(ctx context.Context, key string, dst interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// TokenBlacklist revoked JWT IDs; implemented by pkg/redis
type TokenBlacklist interface {
	// BlacklistToken returns false when jti was already revoked
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) (bool, error)
}

// Encrypter field encryption; implemented by pkg/crypto
type Encrypter interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// Geocoder address lookup; implemented by pkg/geocode
type Geocoder interface {
	Geocode(ctx context.Context, address, postalCode string) (*geocode.Result, error)
}

// Mailer email transport; implemented by pkg/mail
type Mailer interface {
	Send(ctx context.Context, msg mail.Message) error
}

// Service aggregate entry point of all services
type Service struct {
	Auth         AuthService
	Station      StationService
	Validation   ValidationService
	Review       ReviewService
	Notification NotificationService
	Export       ExportService
	Policy       *policy.Policy
}

// NewService wires every service. rdb and geocoder may be nil.
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	cipher *crypto.Cipher,
	mailer Mailer,
	geocoder *geocode.Client,
	logger *zap.Logger,
) *Service {
	pol := policy.New(cfg.Auth.AdminEmails)
	filter := moderation.NewFilter(cfg.Review.MaxLength, cfg.Review.ForbiddenWords)

	// keep interface values nil instead of wrapping typed nil pointers
	var (
		cache     Cache
		blacklist TokenBlacklist
		geo       Geocoder
		enc       Encrypter
	)
	if cipher != nil {
		enc = cipher
	}
	if rdb != nil {
		cache = rdb
		blacklist = rdb
	}
	if geocoder != nil {
		geo = geocoder
	}

	notifier := NewNotificationService(cfg.Server.BaseURL, mailer, cfg.Mail.Timeout, logger)

	return &Service{
		Auth:         NewAuthService(cfg, repo, jwtMgr, blacklist, enc, pol, logger),
		Station:      NewStationService(cfg, repo, pol, enc, geo, cache, notifier, logger),
		Validation:   NewValidationService(repo, pol, cache, notifier, time.Now, logger),
		Review:       NewReviewService(cfg, repo, pol, filter, enc, logger),
		Notification: notifier,
		Export:       NewExportService(repo, pol, logger),
		Policy:       pol,
	}
}

// bizError business error wrapping one pkg/errors category.
// Error() is the business message alone; errors.Is matches the category.
type bizError struct {
	category error
	msg      string
}

func newBizError(category error, msg string) error {
	return &bizError{category: category, msg: msg}
}

func (e *bizError) Error() string { return e.msg }
func (e *bizError) Unwrap() error { return e.category }
