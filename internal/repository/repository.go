package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository aggregate entry point of all repositories
type Repository struct {
	db *gorm.DB

	User    UserRepository
	Station StationRepository
	Service ServiceRepository
	Parking ParkingRepository
	Review  ReviewRepository
}

// NewRepository builds the aggregate
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:      db,
		User:    NewUserRepo(db),
		Station: NewStationRepo(db),
		Service: NewServiceRepo(db),
		Parking: NewParkingRepo(db),
		Review:  NewReviewRepo(db),
	}
}

// BeginTx opens a transaction. Returns nil when the aggregate has no
// database behind it (hand-assembled mocks in tests); WithTx(nil) then
// returns the same aggregate, so callers must guard Rollback/Commit.
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return tx, nil
}

// WithTx returns an aggregate whose repositories run inside tx
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}

// validID primary keys are uuid columns; anything else cannot match a row
// and would make Postgres reject the query with 22P02
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
