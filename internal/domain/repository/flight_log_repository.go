package repository

import (
	"context"

	"airtrail-sync/internal/domain/entity"
)

// FlightLogRepository defines the interface to the external flight-log
// database (Airtrail)
type FlightLogRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.FlightRecord, error)
	List(ctx context.Context) ([]*entity.FlightRecord, error)
	// Save performs an idempotent upsert keyed by the payload's id.
	Save(ctx context.Context, update *entity.FlightUpdate) error
}
