package idempotency

import "errors"

var (
	ErrDuplicateKey   = errors.New("idempotency key already used")
	ErrRecordNotFound = errors.New("idempotency record not found")
)
