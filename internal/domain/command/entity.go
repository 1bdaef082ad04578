package command

import (
	"time"

	"github.com/google/uuid"
)

// Command is a server-issued instruction destined for a physical device,
// delivered when the device polls its mailbox. Commands are never deleted;
// the table doubles as an audit trail.
type Command struct {
	ID          uuid.UUID
	DeviceID    string
	UserID      string
	Type        CommandType
	Payload     Payload
	Status      Status
	CreatedAt   time.Time
	DeliveredAt *time.Time
	AckedAt     *time.Time
	// DeviceStatus is the outcome the device reported with its ack.
	DeviceStatus *string
}

type CommandType string

const (
	TypeUnlock CommandType = "unlock"
)

// Status is the lifecycle state of a command.
type Status string

const (
	StatusCreated   Status = "created"
	StatusDelivered Status = "delivered"
	StatusAcked     Status = "acked"
)

// Payload is the opaque structured data carried to the device. For unlock
// commands it holds the signed token and its advisory expiry; expiry is
// enforced by the device, not by the queue.
type Payload struct {
	Type        string `json:"type"`
	UnlockToken string `json:"unlock_token,omitempty"`
	ExpiryS     int    `json:"expiry_s,omitempty"`
}
