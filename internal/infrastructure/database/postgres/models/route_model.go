package models

import (
	"time"

	"github.com/google/uuid"
)

// RouteModel represents the database model for planned routes.
type RouteModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	BikeID    string    `gorm:"type:varchar(255);not null"`
	OriginLat float64   `gorm:"not null"`
	OriginLon float64   `gorm:"not null"`
	DestLat   float64   `gorm:"not null"`
	DestLon   float64   `gorm:"not null"`
	Steps     string    `gorm:"type:jsonb;not null"`
	LengthM   float64   `gorm:"not null"`
	BaseEtaS  float64   `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

func (RouteModel) TableName() string {
	return "routes"
}
