package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/undarez/camper-splatchs-sub001/internal/model"
)

// ServiceRepository wash capability sub-record access
type ServiceRepository interface {
	GetByStationID(ctx context.Context, stationID string) (*model.Service, error)
	// Upsert inserts or overwrites the single row of the station
	Upsert(ctx context.Context, svc *model.Service) error
	DeleteByStationID(ctx context.Context, stationID string) error
}

type serviceRepo struct {
	db *gorm.DB
}

// NewServiceRepo creates a ServiceRepository
func NewServiceRepo(db *gorm.DB) ServiceRepository {
	return &serviceRepo{db: db}
}

func (r *serviceRepo) GetByStationID(ctx context.Context, stationID string) (*model.Service, error) {
	var svc model.Service
	err := r.db.WithContext(ctx).
		Where("station_id = ?", stationID).
		First(&svc).Error
	if err != nil {
		return nil, err
	}
	return &svc, nil
}

func (r *serviceRepo) Upsert(ctx context.Context, svc *model.Service) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "station_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"high_pressure", "tire_pressure", "vacuum", "handicap_access",
				"waste_water", "water_point", "waste_water_disposal", "black_water_disposal",
				"electricity", "max_vehicle_length", "payment_methods",
				"updated_at", "updated_by",
			}),
		}).
		Create(svc).Error
}

func (r *serviceRepo) DeleteByStationID(ctx context.Context, stationID string) error {
	return r.db.WithContext(ctx).
		Where("station_id = ?", stationID).
		Delete(&model.Service{}).Error
}
