package repository

import (
	"context"
	"time"

	"airtrail-sync/internal/domain/entity"
	"airtrail-sync/internal/domain/repository"

	"gorm.io/gorm"
)

// GormAircraftTypeRepository implements the AircraftTypeRepository interface
type GormAircraftTypeRepository struct {
	db *gorm.DB
}

// NewGormAircraftTypeRepository creates a new GORM aircraft type repository
func NewGormAircraftTypeRepository(db *gorm.DB) repository.AircraftTypeRepository {
	return &GormAircraftTypeRepository{
		db: db,
	}
}

// AircraftTypes GORM model for database mapping
type AircraftTypes struct {
	gorm.Model
	ID        uint           `gorm:"primaryKey"`
	Name      string         `gorm:"column:name;unique"`
	ICAOCode  string         `gorm:"column:icao_code"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the default table name
func (AircraftTypes) TableName() string {
	return "m_aircraft_types"
}

// GetByName finds an aircraft type by its model name
func (r *GormAircraftTypeRepository) GetByName(ctx context.Context, name string) (*entity.AircraftType, error) {
	var aircraftType AircraftTypes
	result := r.db.WithContext(ctx).Unscoped().Where("LOWER(name) = LOWER(?)", name).First(&aircraftType)

	if result.Error != nil {
		return nil, result.Error
	}

	// Convert GORM model to domain entity
	return &entity.AircraftType{
		ID:        aircraftType.ID,
		Name:      aircraftType.Name,
		ICAOCode:  aircraftType.ICAOCode,
		CreatedAt: aircraftType.CreatedAt,
		UpdatedAt: aircraftType.UpdatedAt,
		DeletedAt: aircraftType.DeletedAt,
	}, nil
}
