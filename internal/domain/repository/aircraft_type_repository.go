package repository

import (
	"context"

	"airtrail-sync/internal/domain/entity"
)

// AircraftTypeRepository defines the interface for aircraft type
// reference lookups
type AircraftTypeRepository interface {
	GetByName(ctx context.Context, name string) (*entity.AircraftType, error)
}
