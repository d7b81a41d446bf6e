package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/undarez/camper-splatchs-sub001/internal/model"
)

// ParkingRepository parking sub-record access
type ParkingRepository interface {
	GetByStationID(ctx context.Context, stationID string) (*model.ParkingDetails, error)
	Upsert(ctx context.Context, details *model.ParkingDetails) error
	DeleteByStationID(ctx context.Context, stationID string) error
}

type parkingRepo struct {
	db *gorm.DB
}

// NewParkingRepo creates a ParkingRepository
func NewParkingRepo(db *gorm.DB) ParkingRepository {
	return &parkingRepo{db: db}
}

func (r *parkingRepo) GetByStationID(ctx context.Context, stationID string) (*model.ParkingDetails, error) {
	var details model.ParkingDetails
	err := r.db.WithContext(ctx).
		Where("station_id = ?", stationID).
		First(&details).Error
	if err != nil {
		return nil, err
	}
	return &details, nil
}

func (r *parkingRepo) Upsert(ctx context.Context, details *model.ParkingDetails) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "station_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"is_paid", "tariff", "stay_tax", "electricity", "nearby_amenities",
				"handicap_access", "total_places", "has_wifi", "has_charging_point",
				"water_point", "waste_water", "updated_at", "updated_by",
			}),
		}).
		Create(details).Error
}

func (r *parkingRepo) DeleteByStationID(ctx context.Context, stationID string) error {
	return r.db.WithContext(ctx).
		Where("station_id = ?", stationID).
		Delete(&model.ParkingDetails{}).Error
}
