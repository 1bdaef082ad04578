package discovery

import (
	"context"
	"fmt"

	domainTelemetry "bikefleet/internal/domain/telemetry"
	apperrors "bikefleet/pkg/errors"
	"bikefleet/pkg/geo"
)

// snapshotLimit bounds the fleet snapshot the nearest scan walks. The scan is
// deliberately linear; fleets this size do not justify a spatial index.
const snapshotLimit = 5000

type NearestResponse struct {
	DeviceID string  `json:"device_id"`
	DistM    float64 `json:"dist_m"`
	Ts       int64   `json:"ts"`
	BikeLat  float64 `json:"bike_lat"`
	BikeLon  float64 `json:"bike_lon"`
}

// Service finds the nearest idle bike from the latest-known-position
// snapshot.
type Service struct {
	telemetry domainTelemetry.Repository
}

func NewService(telemetry domainTelemetry.Repository) *Service {
	return &Service{telemetry: telemetry}
}

// Nearest returns the closest idle device within radiusM meters of the query
// point, or a not-found error when none qualifies. Equidistant candidates
// resolve deterministically by device id.
func (s *Service) Nearest(ctx context.Context, lat, lon, radiusM float64) (*NearestResponse, error) {
	if radiusM <= 0 {
		return nil, apperrors.Validation("radius must be positive")
	}

	positions, err := s.telemetry.LatestPositions(ctx, true, snapshotLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load fleet snapshot: %w", err)
	}

	query := geo.Point{Lat: lat, Lon: lon}

	var chosen *domainTelemetry.Position
	best := 0.0
	for _, p := range positions {
		d := geo.Haversine(query, geo.Point{Lat: p.Lat, Lon: p.Lon})
		if d > radiusM {
			continue
		}
		if chosen == nil || d < best || (d == best && p.DeviceID < chosen.DeviceID) {
			chosen = p
			best = d
		}
	}

	if chosen == nil {
		return nil, apperrors.NotFound("no bike in radius")
	}

	return &NearestResponse{
		DeviceID: chosen.DeviceID,
		DistM:    best,
		Ts:       chosen.Ts.Unix(),
		BikeLat:  chosen.Lat,
		BikeLon:  chosen.Lon,
	}, nil
}
