package telemetry

import "context"

// Repository defines the interface for telemetry storage.
//
// LatestPositions returns at most one row per device, the one with the
// greatest timestamp (last-write-wins). When onlyIdle is set, devices whose
// latest fix is not idle are excluded.
type Repository interface {
	Insert(ctx context.Context, positions []*Position) error
	LatestPositions(ctx context.Context, onlyIdle bool, limit int) ([]*Position, error)
}
