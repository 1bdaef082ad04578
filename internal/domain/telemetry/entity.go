package telemetry

import "time"

// Position is one telemetry fix reported by a device. Rows are append-only;
// the latest fix per device wins by timestamp when the fleet snapshot is
// read.
type Position struct {
	DeviceID  string
	Ts        time.Time
	Lat       float64
	Lon       float64
	Battery   *float64
	Speed     *float64
	RideState RideState
	// UniqueKey deduplicates replayed device reports.
	UniqueKey string
}

type RideState string

const (
	RideIdle        RideState = "idle"
	RideRiding      RideState = "riding"
	RideMaintenance RideState = "maintenance"
)
