package entity

import (
	"time"

	"gorm.io/gorm"
)

// AircraftType maps an aircraft model name to its ICAO type designator
type AircraftType struct {
	ID        uint
	Name      string
	ICAOCode  string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt
}
