package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/undarez/camper-splatchs-sub001/internal/dto"
	"github.com/undarez/camper-splatchs-sub001/internal/model"
	"github.com/undarez/camper-splatchs-sub001/internal/policy"
	"github.com/undarez/camper-splatchs-sub001/internal/repository"
	pkgerrors "github.com/undarez/camper-splatchs-sub001/pkg/errors"
)

var (
	ErrInvalidStatus     = newBizError(pkgerrors.ErrInvalid, "status must be ACTIVE or INACTIVE")
	ErrIllegalTransition = newBizError(pkgerrors.ErrInvalid, "status transition not allowed")
)

// ValidationService administrator moderation of submitted stations
type ValidationService interface {
	// Validate moves a station to ACTIVE or INACTIVE. On success the station
	// always carries a well-formed sub-record matching its type.
	Validate(ctx context.Context, id string, req *dto.ValidateStationRequest, actor *policy.Actor) (*dto.StationResponse, error)
	ListPending(ctx context.Context, req *dto.PaginationRequest, actor *policy.Actor) ([]dto.StationResponse, int64, error)
}

type validationService struct {
	repo     *repository.Repository
	policy   *policy.Policy
	cache    Cache
	notifier NotificationService
	now      func() time.Time
	logger   *zap.Logger
}

// NewValidationService creates a ValidationService; now is the clock used for validated_at
func NewValidationService(
	repo *repository.Repository,
	pol *policy.Policy,
	cache Cache,
	notifier NotificationService,
	now func() time.Time,
	logger *zap.Logger,
) ValidationService {
	if now == nil {
		now = time.Now
	}
	return &validationService{
		repo:     repo,
		policy:   pol,
		cache:    cache,
		notifier: notifier,
		now:      now,
		logger:   logger,
	}
}

// ────────────────────── Validate ──────────────────────

func (s *validationService) Validate(ctx context.Context, id string, req *dto.ValidateStationRequest, actor *policy.Actor) (*dto.StationResponse, error) {
	if actor == nil {
		return nil, ErrAuthRequired
	}
	if !s.policy.IsAdmin(actor) {
		return nil, ErrAdminRequired
	}

	target := model.StationStatus(req.Status)
	if target != model.StatusActive && target != model.StatusInactive {
		return nil, ErrInvalidStatus
	}

	now := s.now()

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("begin transaction failed", zap.Error(err))
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()

	txRepo := s.repo.WithTx(tx)

	// 1. lock-load station with its sub-records
	station, err := txRepo.Station.GetByIDForUpdate(ctx, id)
	if err != nil {
		if tx != nil {
			tx.Rollback()
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStationNotFound
		}
		s.logger.Error("lookup station failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if !station.Status.CanTransitionTo(target) {
		if tx != nil {
			tx.Rollback()
		}
		return nil, ErrIllegalTransition
	}

	// 2. sub-record present and well formed
	if err := s.ensureMaterialized(ctx, txRepo, station, actor.UserID, now); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("materialize sub-record failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	// 3. status and validation stamp
	var (
		validatedAt *time.Time
		validatedBy *string
	)
	if target == model.StatusActive {
		email := actor.Email
		validatedAt, validatedBy = &now, &email
	}
	if err := txRepo.Station.UpdateValidation(ctx, id, target, validatedAt, validatedBy, actor.UserID); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("update station status failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("commit transaction failed", zap.Error(err))
			return nil, err
		}
	}

	previous := station.Status
	station.Status = target
	station.ValidatedAt = validatedAt
	station.ValidatedBy = validatedBy

	s.logger.Info("station validated",
		zap.String("id", id),
		zap.String("from", string(previous)),
		zap.String("to", string(target)),
		zap.String("by", actor.Email),
	)

	// best effort past this point
	invalidateStationCache(ctx, s.cache, s.logger)
	author, err := s.repo.User.GetByID(ctx, station.AuthorID)
	if err != nil {
		s.logger.Warn("lookup station author failed, notice not sent", zap.String("id", id), zap.Error(err))
	} else {
		station.Author = author
		s.notifier.Send(ctx, author.Email, KindStationValidated, NotificationPayload{
			StationID:   station.StationID,
			StationName: station.Name,
			StationType: string(station.Type),
			Address:     station.Address,
			City:        station.City,
			Status:      string(target),
			AuthorEmail: author.Email,
		})
	}

	return toStationResponse(station), nil
}

// ensureMaterialized upserts the sub-record matching the station type.
// Existing rows are rewritten with their own sanitized values; anything
// that had to be repaired or created is logged so data drift stays visible.
func (s *validationService) ensureMaterialized(ctx context.Context, txRepo *repository.Repository, station *model.Station, by string, now time.Time) error {
	switch station.Type {
	case model.StationTypeWash:
		svc := station.Service
		if svc == nil {
			svc = model.DefaultService(station.StationID)
			svc.CreatedBy = &by
			s.logger.Warn("wash station had no service record, created defaults", zap.String("id", station.StationID))
		} else if svc.Sanitize() {
			s.logger.Warn("service record repaired", zap.String("id", station.StationID))
		}
		svc.UpdatedBy = &by
		svc.UpdatedAt = now
		if err := txRepo.Service.Upsert(ctx, svc); err != nil {
			return err
		}
		station.Service = svc

	case model.StationTypeParking:
		details := station.Parking
		if details == nil {
			details = model.DefaultParkingDetails(station.StationID)
			details.CreatedBy = &by
			s.logger.Warn("parking had no details record, created defaults", zap.String("id", station.StationID))
		} else if details.Sanitize() {
			s.logger.Warn("parking details repaired", zap.String("id", station.StationID))
		}
		details.UpdatedBy = &by
		details.UpdatedAt = now
		if err := txRepo.Parking.Upsert(ctx, details); err != nil {
			return err
		}
		station.Parking = details
	}
	return nil
}

// ────────────────────── ListPending ──────────────────────

func (s *validationService) ListPending(ctx context.Context, req *dto.PaginationRequest, actor *policy.Actor) ([]dto.StationResponse, int64, error) {
	if actor == nil {
		return nil, 0, ErrAuthRequired
	}
	if !s.policy.IsAdmin(actor) {
		return nil, 0, ErrAdminRequired
	}

	stations, total, err := s.repo.Station.List(ctx, repository.StationFilter{
		Status:      model.StatusPending,
		OldestFirst: true,
		Offset:      req.GetOffset(),
		Limit:       req.GetPageSize(),
	})
	if err != nil {
		s.logger.Error("list pending stations failed", zap.Error(err))
		return nil, 0, err
	}

	items := make([]dto.StationResponse, 0, len(stations))
	for i := range stations {
		items = append(items, *toStationResponse(&stations[i]))
	}
	return items, total, nil
}
