package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/undarez/camper-splatchs-sub001/internal/model"
)

// RatingSummary aggregate rating of a station
type RatingSummary struct {
	Average float64
	Count   int64
}

// ReviewRepository review data access
type ReviewRepository interface {
	Create(ctx context.Context, review *model.Review) error
	ListByStation(ctx context.Context, stationID string, offset, limit int) ([]model.Review, error)
	Summary(ctx context.Context, stationID string) (RatingSummary, error)
	DeleteByStationID(ctx context.Context, stationID string) error
}

type reviewRepo struct {
	db *gorm.DB
}

// NewReviewRepo creates a ReviewRepository
func NewReviewRepo(db *gorm.DB) ReviewRepository {
	return &reviewRepo{db: db}
}

func (r *reviewRepo) Create(ctx context.Context, review *model.Review) error {
	return r.db.WithContext(ctx).Omit("Author").Create(review).Error
}

func (r *reviewRepo) ListByStation(ctx context.Context, stationID string, offset, limit int) ([]model.Review, error) {
	var reviews []model.Review
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("station_id = ?", stationID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&reviews).Error
	return reviews, err
}

func (r *reviewRepo) Summary(ctx context.Context, stationID string) (RatingSummary, error) {
	var summary RatingSummary
	err := r.db.WithContext(ctx).
		Model(&model.Review{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("station_id = ?", stationID).
		Scan(&summary).Error
	return summary, err
}

func (r *reviewRepo) DeleteByStationID(ctx context.Context, stationID string) error {
	return r.db.WithContext(ctx).
		Where("station_id = ?", stationID).
		Delete(&model.Review{}).Error
}
