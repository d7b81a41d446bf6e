package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/undarez/camper-splatchs-sub001/config"
	"github.com/undarez/camper-splatchs-sub001/internal/dto"
	"github.com/undarez/camper-splatchs-sub001/internal/model"
	"github.com/undarez/camper-splatchs-sub001/internal/policy"
	"github.com/undarez/camper-splatchs-sub001/internal/repository"
	pkgerrors "github.com/undarez/camper-splatchs-sub001/pkg/errors"
)

// ── station errors ──

var (
	ErrStationNotFound    = newBizError(pkgerrors.ErrNotFound, "station not found")
	ErrAuthorNotFound     = newBizError(pkgerrors.ErrNotFound, "author not found")
	ErrStationForbidden   = newBizError(pkgerrors.ErrForbidden, "only the author or an administrator may do this")
	ErrInvalidStationType = newBizError(pkgerrors.ErrInvalid, "station type must be WASH_STATION or PARKING")
	ErrInvalidCoordinates = newBizError(pkgerrors.ErrInvalid, "latitude or longitude out of range")
)

// stationListCachePrefix every cached listing page lives under this prefix
const stationListCachePrefix = "stations:list:"

// StationService station store
type StationService interface {
	// Create persists a PENDING station and its type sub-record
	Create(ctx context.Context, req *dto.CreateStationRequest, actor *policy.Actor) (*dto.StationResponse, error)
	GetByID(ctx context.Context, id string, actor *policy.Actor) (*dto.StationResponse, error)
	List(ctx context.Context, req *dto.StationListRequest, actor *policy.Actor) ([]dto.StationResponse, int64, error)
	// Delete removes the station with its reviews and sub-records
	Delete(ctx context.Context, id string, actor *policy.Actor) error
}

type stationService struct {
	cfg      *config.Config
	repo     *repository.Repository
	policy   *policy.Policy
	enc      Encrypter
	geocoder Geocoder
	cache    Cache
	notifier NotificationService
	logger   *zap.Logger
}

// NewStationService creates a StationService; enc, geocoder and cache may be nil
func NewStationService(
	cfg *config.Config,
	repo *repository.Repository,
	pol *policy.Policy,
	enc Encrypter,
	geocoder Geocoder,
	cache Cache,
	notifier NotificationService,
	logger *zap.Logger,
) StationService {
	return &stationService{
		cfg:      cfg,
		repo:     repo,
		policy:   pol,
		enc:      enc,
		geocoder: geocoder,
		cache:    cache,
		notifier: notifier,
		logger:   logger,
	}
}

// ────────────────────── Create ──────────────────────

func (s *stationService) Create(ctx context.Context, req *dto.CreateStationRequest, actor *policy.Actor) (*dto.StationResponse, error) {
	if actor == nil {
		return nil, ErrAuthRequired
	}

	stationType := model.StationType(strings.ToUpper(strings.TrimSpace(req.Type)))
	if !stationType.IsValid() {
		return nil, ErrInvalidStationType
	}
	if req.Latitude < -90 || req.Latitude > 90 || req.Longitude < -180 || req.Longitude > 180 {
		return nil, ErrInvalidCoordinates
	}

	author, err := s.repo.User.GetByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuthorNotFound
		}
		s.logger.Error("lookup author failed", zap.String("id", actor.UserID), zap.Error(err))
		return nil, err
	}

	station := &model.Station{
		Name:             strings.TrimSpace(req.Name),
		Address:          strings.TrimSpace(req.Address),
		City:             strings.TrimSpace(req.City),
		PostalCode:       strings.TrimSpace(req.PostalCode),
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		Type:             stationType,
		Status:           model.StatusPending, // caller status ignored
		Images:           datatypes.JSONSlice[string](nonNil(req.Images)),
		EncryptedName:    s.encrypt(req.Name),
		EncryptedAddress: s.encrypt(req.Address),
		AuthorID:         author.UserID,
	}
	station.CreatedBy = &author.UserID
	station.UpdatedBy = &author.UserID

	if station.Latitude == 0 && station.Longitude == 0 {
		s.geocode(ctx, station)
	}

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

	if err := txRepo.Station.Create(ctx, station); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("create station failed", zap.Error(err))
		return nil, err
	}

	switch stationType {
	case model.StationTypeWash:
		station.Service = serviceFromPayload(station.StationID, req.Services)
		station.Service.CreatedBy = &author.UserID
		station.Service.UpdatedBy = &author.UserID
		err = txRepo.Service.Upsert(ctx, station.Service)
	case model.StationTypeParking:
		station.Parking = parkingFromPayload(station.StationID, req.Parking)
		station.Parking.CreatedBy = &author.UserID
		station.Parking.UpdatedBy = &author.UserID
		err = txRepo.Parking.Upsert(ctx, station.Parking)
	}
	if err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("create station sub-record failed", zap.String("id", station.StationID), zap.Error(err))
		return nil, err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("commit transaction failed", zap.Error(err))
			return nil, err
		}
	}

	station.Author = author
	s.logger.Info("station created",
		zap.String("id", station.StationID),
		zap.String("type", string(station.Type)),
		zap.String("author_id", author.UserID),
	)

	// best effort past this point
	s.invalidateListCache(ctx)
	s.notifier.Send(ctx, s.cfg.Mail.ContactAddress, KindStationCreated, NotificationPayload{
		StationID:   station.StationID,
		StationName: station.Name,
		StationType: string(station.Type),
		Address:     station.Address,
		City:        station.City,
		Status:      string(station.Status),
		AuthorEmail: author.Email,
	})

	return toStationResponse(station), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *stationService) GetByID(ctx context.Context, id string, actor *policy.Actor) (*dto.StationResponse, error) {
	station, err := s.repo.Station.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStationNotFound
		}
		s.logger.Error("lookup station failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	// unpublished stations do not exist for everyone else
	if !s.policy.CanViewStation(actor, station) {
		return nil, ErrStationNotFound
	}

	return toStationResponse(station), nil
}

// ────────────────────── List ──────────────────────

func (s *stationService) List(ctx context.Context, req *dto.StationListRequest, actor *policy.Actor) ([]dto.StationResponse, int64, error) {
	filter := repository.StationFilter{
		Type:   model.StationType(req.Type),
		City:   strings.TrimSpace(req.City),
		Status: model.StationStatus(req.Status),
		Offset: req.GetOffset(),
		Limit:  req.GetPageSize(),
	}
	if !s.policy.IsAdmin(actor) {
		filter.Status = model.StatusActive
	}

	// only the public listing is cached
	cacheKey := ""
	if s.cache != nil && filter.Status == model.StatusActive {
		cacheKey = fmt.Sprintf("%s%s:%s:%d:%d", stationListCachePrefix,
			filter.Type, strings.ToLower(filter.City), req.GetPage(), req.GetPageSize())
		var page dto.StationPage
		found, err := s.cache.GetJSON(ctx, cacheKey, &page)
		if err != nil {
			s.logger.Warn("station cache read failed", zap.String("key", cacheKey), zap.Error(err))
		} else if found {
			return page.Items, page.Total, nil
		}
	}

	stations, total, err := s.repo.Station.List(ctx, filter)
	if err != nil {
		s.logger.Error("list stations failed", zap.Error(err))
		return nil, 0, err
	}

	items := make([]dto.StationResponse, 0, len(stations))
	for i := range stations {
		items = append(items, *toStationResponse(&stations[i]))
	}

	if cacheKey != "" {
		page := dto.StationPage{Items: items, Total: total}
		if err := s.cache.SetJSON(ctx, cacheKey, page, s.cfg.Cache.StationListTTL); err != nil {
			s.logger.Warn("station cache write failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}

	return items, total, nil
}

// ────────────────────── Delete ──────────────────────

func (s *stationService) Delete(ctx context.Context, id string, actor *policy.Actor) error {
	if actor == nil {
		return ErrAuthRequired
	}

	station, err := s.repo.Station.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStationNotFound
		}
		s.logger.Error("lookup station failed", zap.String("id", id), zap.Error(err))
		return err
	}

	if !s.policy.CanManageStation(actor, station.AuthorID) {
		return ErrStationForbidden
	}

	// children first, all in one transaction
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("begin transaction failed", zap.Error(err))
		return err
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

	steps := []struct {
		name string
		run  func(context.Context, string) error
	}{
		{"reviews", txRepo.Review.DeleteByStationID},
		{"service", txRepo.Service.DeleteByStationID},
		{"parking", txRepo.Parking.DeleteByStationID},
		{"station", txRepo.Station.Delete},
	}
	for _, step := range steps {
		if err := step.run(ctx, id); err != nil {
			if tx != nil {
				tx.Rollback()
			}
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrStationNotFound
			}
			s.logger.Error("delete station failed", zap.String("id", id), zap.String("step", step.name), zap.Error(err))
			return err
		}
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("commit transaction failed", zap.Error(err))
			return err
		}
	}

	s.logger.Info("station deleted", zap.String("id", id), zap.String("by", actor.UserID))
	s.invalidateListCache(ctx)
	return nil
}

// ── helpers ──

func (s *stationService) encrypt(plaintext string) string {
	if s.enc == nil {
		return ""
	}
	out, err := s.enc.Encrypt(strings.TrimSpace(plaintext))
	if err != nil {
		s.logger.Warn("encrypt station field failed", zap.Error(err))
		return ""
	}
	return out
}

// geocode fills missing coordinates; failures leave them at zero
func (s *stationService) geocode(ctx context.Context, station *model.Station) {
	if s.geocoder == nil {
		return
	}
	res, err := s.geocoder.Geocode(ctx, station.Address+" "+station.City, station.PostalCode)
	if err != nil {
		s.logger.Warn("geocoding failed", zap.String("address", station.Address), zap.Error(err))
		return
	}
	station.Latitude = res.Lat
	station.Longitude = res.Lng
}

func (s *stationService) invalidateListCache(ctx context.Context) {
	invalidateStationCache(ctx, s.cache, s.logger)
}

func invalidateStationCache(ctx context.Context, cache Cache, logger *zap.Logger) {
	if cache == nil {
		return
	}
	if err := cache.DeleteByPrefix(ctx, stationListCachePrefix); err != nil {
		logger.Warn("station cache invalidation failed", zap.Error(err))
	}
}

// serviceFromPayload builds a sanitized Service; a nil payload yields defaults
func serviceFromPayload(stationID string, p *dto.ServicesPayload) *model.Service {
	svc := model.DefaultService(stationID)
	if p != nil {
		svc.HighPressure = model.HighPressure(p.HighPressure)
		svc.TirePressure = p.TirePressure
		svc.Vacuum = p.Vacuum
		svc.HandicapAccess = p.HandicapAccess
		svc.WasteWater = p.WasteWater
		svc.WaterPoint = p.WaterPoint
		svc.WasteWaterDisposal = p.WasteWaterDisposal
		svc.BlackWaterDisposal = p.BlackWaterDisposal
		svc.Electricity = model.Electricity(p.Electricity)
		svc.MaxVehicleLength = p.MaxVehicleLength
		svc.PaymentMethods = p.PaymentMethods
	}
	svc.Sanitize()
	return svc
}

// parkingFromPayload builds sanitized ParkingDetails; unknown amenities are dropped
func parkingFromPayload(stationID string, p *dto.ParkingPayload) *model.ParkingDetails {
	details := model.DefaultParkingDetails(stationID)
	if p != nil {
		details.IsPaid = p.IsPaid
		details.Tariff = p.Tariff
		details.StayTax = p.StayTax
		details.Electricity = model.Electricity(strings.ToUpper(strings.TrimSpace(p.Electricity)))
		details.NearbyAmenities = p.NearbyAmenities
		details.HandicapAccess = p.HandicapAccess
		details.TotalPlaces = p.TotalPlaces
		details.HasWifi = p.HasWifi
		details.HasChargingPoint = p.HasChargingPoint
		details.WaterPoint = p.WaterPoint
		details.WasteWater = p.WasteWater
	}
	if details.Electricity == "" {
		details.Electricity = model.ElectricityNone
	}
	details.Sanitize()
	return details
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func toStationResponse(st *model.Station) *dto.StationResponse {
	resp := &dto.StationResponse{
		ID:         st.StationID,
		Name:       st.Name,
		Address:    st.Address,
		City:       st.City,
		PostalCode: st.PostalCode,
		Latitude:   st.Latitude,
		Longitude:  st.Longitude,
		Type:       string(st.Type),
		Status:     string(st.Status),
		Images:     nonNil(st.Images),
		AuthorID:   st.AuthorID,
		CreatedAt:  st.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  st.UpdatedAt.Format(time.RFC3339),
	}
	if st.Author != nil {
		resp.Author = &dto.AuthorResponse{ID: st.Author.UserID, Name: st.Author.Name}
	}
	if st.ValidatedAt != nil {
		resp.ValidatedAt = st.ValidatedAt.Format(time.RFC3339)
	}
	if st.ValidatedBy != nil {
		resp.ValidatedBy = *st.ValidatedBy
	}
	if svc := st.Service; svc != nil {
		resp.Services = &dto.ServiceResponse{
			HighPressure:       string(svc.HighPressure),
			TirePressure:       svc.TirePressure,
			Vacuum:             svc.Vacuum,
			HandicapAccess:     svc.HandicapAccess,
			WasteWater:         svc.WasteWater,
			WaterPoint:         svc.WaterPoint,
			WasteWaterDisposal: svc.WasteWaterDisposal,
			BlackWaterDisposal: svc.BlackWaterDisposal,
			Electricity:        string(svc.Electricity),
			MaxVehicleLength:   svc.MaxVehicleLength,
			PaymentMethods:     nonNil(svc.PaymentMethods),
		}
	}
	if p := st.Parking; p != nil {
		resp.Parking = &dto.ParkingResponse{
			IsPaid:           p.IsPaid,
			Tariff:           p.Tariff,
			StayTax:          p.StayTax,
			Electricity:      string(p.Electricity),
			NearbyAmenities:  nonNil(p.NearbyAmenities),
			HandicapAccess:   p.HandicapAccess,
			TotalPlaces:      p.TotalPlaces,
			HasWifi:          p.HasWifi,
			HasChargingPoint: p.HasChargingPoint,
			WaterPoint:       p.WaterPoint,
			WasteWater:       p.WasteWater,
		}
	}
	return resp
}
