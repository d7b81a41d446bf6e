package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/undarez/camper-splatchs-sub001/config"
	"github.com/undarez/camper-splatchs-sub001/internal/dto"
	"github.com/undarez/camper-splatchs-sub001/internal/model"
	"github.com/undarez/camper-splatchs-sub001/internal/policy"
	"github.com/undarez/camper-splatchs-sub001/internal/repository"
	pkgerrors "github.com/undarez/camper-splatchs-sub001/pkg/errors"
	"github.com/undarez/camper-splatchs-sub001/pkg/moderation"
)

const (
	minRating = 1
	maxRating = 5
)

var (
	ErrReviewEmpty         = newBizError(pkgerrors.ErrInvalid, "review content is empty")
	ErrReviewTooLong       = newBizError(pkgerrors.ErrInvalid, "review content is too long")
	ErrReviewForbiddenWord = newBizError(pkgerrors.ErrInvalid, "review content contains a forbidden word")
	ErrInvalidRating       = newBizError(pkgerrors.ErrInvalid, "rating must be between 1 and 5")
	ErrReviewEncryption    = errors.New("review encryption failed")
)

// ReviewService station reviews
type ReviewService interface {
	Submit(ctx context.Context, stationID string, req *dto.SubmitReviewRequest, actor *policy.Actor) (*dto.ReviewResponse, error)
	ListByStation(ctx context.Context, stationID string, req *dto.ReviewListRequest, actor *policy.Actor) (*dto.ReviewListResponse, error)
}

type reviewService struct {
	cfg    *config.Config
	repo   *repository.Repository
	policy *policy.Policy
	filter *moderation.Filter
	enc    Encrypter
	logger *zap.Logger
}

// NewReviewService creates a ReviewService; enc may be nil
func NewReviewService(
	cfg *config.Config,
	repo *repository.Repository,
	pol *policy.Policy,
	filter *moderation.Filter,
	enc Encrypter,
	logger *zap.Logger,
) ReviewService {
	return &reviewService{
		cfg:    cfg,
		repo:   repo,
		policy: pol,
		filter: filter,
		enc:    enc,
		logger: logger,
	}
}

// ────────────────────── Submit ──────────────────────

func (s *reviewService) Submit(ctx context.Context, stationID string, req *dto.SubmitReviewRequest, actor *policy.Actor) (*dto.ReviewResponse, error) {
	if actor == nil {
		return nil, ErrAuthRequired
	}

	// 1. content policy, nothing is read or written before it passes
	content := strings.TrimSpace(req.Content)
	if err := s.filter.Check(content); err != nil {
		switch {
		case errors.Is(err, moderation.ErrEmpty):
			return nil, ErrReviewEmpty
		case errors.Is(err, moderation.ErrTooLong):
			return nil, ErrReviewTooLong
		default:
			return nil, ErrReviewForbiddenWord
		}
	}
	if req.Rating < minRating || req.Rating > maxRating {
		return nil, ErrInvalidRating
	}

	// 2. references
	station, err := s.repo.Station.GetByID(ctx, stationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStationNotFound
		}
		s.logger.Error("lookup station failed", zap.String("id", stationID), zap.Error(err))
		return nil, err
	}
	if !s.policy.CanViewStation(actor, station) {
		return nil, ErrStationNotFound
	}

	author, err := s.repo.User.GetByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuthorNotFound
		}
		s.logger.Error("lookup author failed", zap.String("id", actor.UserID), zap.Error(err))
		return nil, err
	}

	// 3. encrypted mirror computed before the single insert
	encrypted, err := s.encrypt(content)
	if err != nil {
		return nil, err
	}

	review := &model.Review{
		StationID:        station.StationID,
		AuthorID:         author.UserID,
		Content:          content,
		EncryptedContent: encrypted,
		Rating:           req.Rating,
	}
	review.CreatedBy = &author.UserID
	review.UpdatedBy = &author.UserID

	if err := s.repo.Review.Create(ctx, review); err != nil {
		s.logger.Error("create review failed", zap.String("station_id", stationID), zap.Error(err))
		return nil, err
	}
	review.Author = author

	s.logger.Info("review submitted",
		zap.String("id", review.ReviewID),
		zap.String("station_id", stationID),
		zap.Int("rating", review.Rating),
	)
	return s.toReviewResponse(review), nil
}

// ────────────────────── ListByStation ──────────────────────

func (s *reviewService) ListByStation(ctx context.Context, stationID string, req *dto.ReviewListRequest, actor *policy.Actor) (*dto.ReviewListResponse, error) {
	station, err := s.repo.Station.GetByID(ctx, stationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStationNotFound
		}
		s.logger.Error("lookup station failed", zap.String("id", stationID), zap.Error(err))
		return nil, err
	}
	if !s.policy.CanViewStation(actor, station) {
		return nil, ErrStationNotFound
	}

	reviews, err := s.repo.Review.ListByStation(ctx, stationID, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("list reviews failed", zap.String("station_id", stationID), zap.Error(err))
		return nil, err
	}
	summary, err := s.repo.Review.Summary(ctx, stationID)
	if err != nil {
		s.logger.Error("summarize reviews failed", zap.String("station_id", stationID), zap.Error(err))
		return nil, err
	}

	items := make([]dto.ReviewResponse, 0, len(reviews))
	for i := range reviews {
		items = append(items, *s.toReviewResponse(&reviews[i]))
	}

	return &dto.ReviewListResponse{
		Reviews:       items,
		AverageRating: math.Round(summary.Average*10) / 10,
		Count:         summary.Count,
		Page:          req.GetPage(),
		PageSize:      req.GetPageSize(),
	}, nil
}

// ── helpers ──

// encrypt fails open to "" unless review.require_encryption is set
func (s *reviewService) encrypt(content string) (string, error) {
	if s.enc == nil {
		if s.cfg.Review.RequireEncryption {
			return "", ErrReviewEncryption
		}
		return "", nil
	}
	out, err := s.enc.Encrypt(content)
	if err != nil {
		if s.cfg.Review.RequireEncryption {
			s.logger.Error("encrypt review failed", zap.Error(err))
			return "", ErrReviewEncryption
		}
		s.logger.Warn("encrypt review failed, storing without ciphertext", zap.Error(err))
		return "", nil
	}
	return out, nil
}

func (s *reviewService) toReviewResponse(r *model.Review) *dto.ReviewResponse {
	content := r.Content
	// rows whose plaintext was purged are served from the ciphertext
	if content == "" && r.EncryptedContent != "" && s.enc != nil {
		plain, err := s.enc.Decrypt(r.EncryptedContent)
		if err != nil {
			s.logger.Warn("decrypt review failed", zap.String("id", r.ReviewID), zap.Error(err))
		} else {
			content = plain
		}
	}

	resp := &dto.ReviewResponse{
		ID:        r.ReviewID,
		StationID: r.StationID,
		Content:   content,
		Rating:    r.Rating,
		Encrypted: r.EncryptedContent != "",
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
	}
	if r.Author != nil {
		resp.Author = &dto.AuthorResponse{ID: r.Author.UserID, Name: r.Author.Name}
	}
	return resp
}
