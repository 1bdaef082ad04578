package command

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for command queue storage.
//
// PollAndMarkDelivered implements at-least-once delivery: it returns every
// command for the device still in created state (FIFO by creation time,
// optionally at-or-after since) and transitions those rows to delivered in
// the same transaction. A command already delivered is never returned again.
type Repository interface {
	Enqueue(ctx context.Context, cmd *Command) error
	PollAndMarkDelivered(ctx context.Context, deviceID string, since *time.Time) ([]*Command, error)
	// Ack transitions a delivered (or already acked) command to acked and
	// records the device-reported status. It returns ErrCommandNotFound when
	// no row was transitioned.
	Ack(ctx context.Context, id uuid.UUID, deviceStatus string) error
}
