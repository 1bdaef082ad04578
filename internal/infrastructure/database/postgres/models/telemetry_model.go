package models

import "time"

// TelemetryModel represents the database model for device position fixes.
type TelemetryModel struct {
	ID        uint      `gorm:"primary_key;autoIncrement"`
	DeviceID  string    `gorm:"type:varchar(255);not null;index:idx_telemetry_device_ts"`
	Ts        time.Time `gorm:"not null;index:idx_telemetry_device_ts"`
	Lat       float64   `gorm:"not null"`
	Lon       float64   `gorm:"not null"`
	Battery   *float64
	Speed     *float64
	RideState string `gorm:"type:varchar(20);not null;default:'idle'"`
	UniqueKey string `gorm:"type:varchar(255);uniqueIndex"`
}

func (TelemetryModel) TableName() string {
	return "telemetry"
}
