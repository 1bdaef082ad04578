package route

import (
	"time"

	"github.com/google/uuid"
)

// Route is a planned path over the road graph. It is written once when the
// route is planned and immutable afterwards; the ETA endpoint only reads it.
type Route struct {
	ID        uuid.UUID
	BikeID    string
	Origin    LatLon
	Dest      LatLon
	Steps     []Step
	LengthM   float64
	BaseEtaS  float64
	CreatedAt time.Time
}

type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Step is one node position along the planned path.
type Step struct {
	Node string  `json:"node"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}
