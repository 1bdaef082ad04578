package idempotency

import "time"

// Record ties a client-supplied key to the operation it guards. Records are
// append-only: a key is inserted at most once and never updated afterwards.
type Record struct {
	Key       string
	Resource  string
	Status    Status
	CreatedAt time.Time
}

type Status string

const (
	StatusCreated   Status = "created"
	StatusCommitted Status = "committed"
)
