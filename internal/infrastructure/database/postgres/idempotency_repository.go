package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	domainIdem "bikefleet/internal/domain/idempotency"
	"bikefleet/internal/infrastructure/database/postgres/models"
)

// IdempotencyRepository implements domain idempotency.Repository on Postgres.
type IdempotencyRepository struct {
	db *DB
}

func NewIdempotencyRepository(db *DB) domainIdem.Repository {
	return &IdempotencyRepository{db: db}
}

// Reserve inserts the record, relying on the primary key to reject a second
// reservation of the same key. The collision check and the insert are one
// statement, so concurrent reservations cannot race past each other.
func (r *IdempotencyRepository) Reserve(ctx context.Context, rec *domainIdem.Record) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	dbModel := &models.IdempotencyModel{
		Key:       rec.Key,
		Resource:  rec.Resource,
		Status:    string(rec.Status),
		CreatedAt: rec.CreatedAt,
	}

	if err := r.db.conn(ctx).Create(dbModel).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate key value") {
			return domainIdem.ErrDuplicateKey
		}
		return fmt.Errorf("failed to reserve idempotency key: %w", err)
	}

	return nil
}

func (r *IdempotencyRepository) Get(ctx context.Context, key string) (*domainIdem.Record, error) {
	var dbModel models.IdempotencyModel
	err := r.db.conn(ctx).
		Where("key = ?", key).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainIdem.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get idempotency record: %w", err)
	}

	return &domainIdem.Record{
		Key:       dbModel.Key,
		Resource:  dbModel.Resource,
		Status:    domainIdem.Status(dbModel.Status),
		CreatedAt: dbModel.CreatedAt,
	}, nil
}
