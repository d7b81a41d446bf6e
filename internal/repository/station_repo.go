package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/undarez/camper-splatchs-sub001/internal/model"
)

// StationFilter listing criteria; zero values mean "any"
type StationFilter struct {
	Type     model.StationType
	City     string
	Status   model.StationStatus
	AuthorID string
	// OldestFirst orders by creation ascending; the default is newest first
	OldestFirst bool
	Offset      int
	Limit       int
}

// StationRepository station data access
type StationRepository interface {
	Create(ctx context.Context, station *model.Station) error
	GetByID(ctx context.Context, id string) (*model.Station, error)
	// GetByIDForUpdate row-locks the station until the surrounding tx ends
	GetByIDForUpdate(ctx context.Context, id string) (*model.Station, error)
	List(ctx context.Context, filter StationFilter) ([]model.Station, int64, error)
	ListAll(ctx context.Context, filter StationFilter) ([]model.Station, error)
	UpdateValidation(ctx context.Context, id string, status model.StationStatus, validatedAt *time.Time, validatedBy *string, updatedBy string) error
	Delete(ctx context.Context, id string) error
}

type stationRepo struct {
	db *gorm.DB
}

// NewStationRepo creates a StationRepository
func NewStationRepo(db *gorm.DB) StationRepository {
	return &stationRepo{db: db}
}

func (r *stationRepo) Create(ctx context.Context, station *model.Station) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(station).Error
}

func (r *stationRepo) GetByID(ctx context.Context, id string) (*model.Station, error) {
	if !validID(id) {
		return nil, gorm.ErrRecordNotFound
	}
	var station model.Station
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Service").
		Preload("Parking").
		Where("station_id = ?", id).
		First(&station).Error
	if err != nil {
		return nil, err
	}
	return &station, nil
}

func (r *stationRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.Station, error) {
	if !validID(id) {
		return nil, gorm.ErrRecordNotFound
	}
	var station model.Station
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("station_id = ?", id).
		First(&station).Error
	if err != nil {
		return nil, err
	}

	// associations loaded separately, FOR UPDATE cannot apply to preloads
	var svc model.Service
	err = r.db.WithContext(ctx).Where("station_id = ?", id).First(&svc).Error
	switch {
	case err == nil:
		station.Service = &svc
	case err != gorm.ErrRecordNotFound:
		return nil, err
	}

	var parking model.ParkingDetails
	err = r.db.WithContext(ctx).Where("station_id = ?", id).First(&parking).Error
	switch {
	case err == nil:
		station.Parking = &parking
	case err != gorm.ErrRecordNotFound:
		return nil, err
	}

	return &station, nil
}

func (r *stationRepo) filtered(ctx context.Context, filter StationFilter) *gorm.DB {
	db := r.db.WithContext(ctx).Model(&model.Station{})
	if filter.Type != "" {
		db = db.Where("type = ?", filter.Type)
	}
	if filter.City != "" {
		db = db.Where("LOWER(city) = LOWER(?)", filter.City)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.AuthorID != "" {
		db = db.Where("author_id = ?", filter.AuthorID)
	}
	return db
}

func (r *stationRepo) List(ctx context.Context, filter StationFilter) ([]model.Station, int64, error) {
	var stations []model.Station
	var total int64

	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "created_at DESC"
	if filter.OldestFirst {
		order = "created_at ASC"
	}
	err := r.filtered(ctx, filter).
		Preload("Author").
		Preload("Service").
		Preload("Parking").
		Order(order).
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&stations).Error
	return stations, total, err
}

func (r *stationRepo) ListAll(ctx context.Context, filter StationFilter) ([]model.Station, error) {
	var stations []model.Station
	err := r.filtered(ctx, filter).
		Preload("Author").
		Preload("Service").
		Preload("Parking").
		Order("city ASC, name ASC").
		Find(&stations).Error
	return stations, err
}

func (r *stationRepo) UpdateValidation(ctx context.Context, id string, status model.StationStatus, validatedAt *time.Time, validatedBy *string, updatedBy string) error {
	if !validID(id) {
		return gorm.ErrRecordNotFound
	}
	result := r.db.WithContext(ctx).
		Model(&model.Station{}).
		Where("station_id = ?", id).
		Updates(map[string]interface{}{
			"status":       status,
			"validated_at": validatedAt,
			"validated_by": validatedBy,
			"updated_by":   updatedBy,
			"updated_at":   gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *stationRepo) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return gorm.ErrRecordNotFound
	}
	result := r.db.WithContext(ctx).
		Where("station_id = ?", id).
		Delete(&model.Station{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
