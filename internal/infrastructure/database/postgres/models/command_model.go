package models

import (
	"time"

	"github.com/google/uuid"
)

// CommandModel represents the database model for device commands.
type CommandModel struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key"`
	DeviceID     string     `gorm:"type:varchar(255);not null;index:idx_commands_device_status"`
	UserID       string     `gorm:"type:varchar(255);not null"`
	Type         string     `gorm:"type:varchar(50);not null"`
	Payload      string     `gorm:"type:jsonb"`
	Status       string     `gorm:"type:varchar(20);not null;default:'created';index:idx_commands_device_status"`
	CreatedAt    time.Time  `gorm:"not null;index"`
	DeliveredAt  *time.Time `gorm:"type:timestamp"`
	AckedAt      *time.Time `gorm:"type:timestamp"`
	DeviceStatus *string    `gorm:"type:varchar(50)"`
}

func (CommandModel) TableName() string {
	return "commands"
}
