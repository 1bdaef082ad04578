package models

import "time"

// IdempotencyModel represents the database model for the idempotency ledger.
// The primary key on Key is what makes Reserve an atomic insert-if-absent.
type IdempotencyModel struct {
	Key       string    `gorm:"type:varchar(255);primary_key"`
	Resource  string    `gorm:"type:varchar(255);not null"`
	Status    string    `gorm:"type:varchar(20);not null"`
	CreatedAt time.Time `gorm:"not null"`
}

func (IdempotencyModel) TableName() string {
	return "idempotency"
}
