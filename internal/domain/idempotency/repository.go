package idempotency

import "context"

// Repository is the durable ledger of idempotency keys.
//
// Reserve must be an atomic insert-if-absent: a concurrent reservation of the
// same key sees ErrDuplicateKey from the storage layer's uniqueness
// guarantee, never a silent overwrite. Storage failures surface as plain
// errors; the caller must not assume the reservation took effect.
type Repository interface {
	Reserve(ctx context.Context, rec *Record) error
	Get(ctx context.Context, key string) (*Record, error)
}
