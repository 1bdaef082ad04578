package discovery

import (
	"context"
	"errors"
	"testing"
	"time"

	domainTelemetry "bikefleet/internal/domain/telemetry"
	apperrors "bikefleet/pkg/errors"
)

type mockTelemetryRepo struct {
	latestFunc func(ctx context.Context, onlyIdle bool, limit int) ([]*domainTelemetry.Position, error)
}

func (m *mockTelemetryRepo) Insert(ctx context.Context, positions []*domainTelemetry.Position) error {
	return nil
}

func (m *mockTelemetryRepo) LatestPositions(ctx context.Context, onlyIdle bool, limit int) ([]*domainTelemetry.Position, error) {
	if m.latestFunc != nil {
		return m.latestFunc(ctx, onlyIdle, limit)
	}
	return nil, nil
}

func pos(id string, lat, lon float64) *domainTelemetry.Position {
	return &domainTelemetry.Position{
		DeviceID:  id,
		Ts:        time.Unix(1700000000, 0),
		Lat:       lat,
		Lon:       lon,
		RideState: domainTelemetry.RideIdle,
	}
}

func TestNearestPicksClosest(t *testing.T) {
	repo := &mockTelemetryRepo{
		latestFunc: func(ctx context.Context, onlyIdle bool, limit int) ([]*domainTelemetry.Position, error) {
			if !onlyIdle {
				t.Error("snapshot must be restricted to idle devices")
			}
			return []*domainTelemetry.Position{
				pos("bike-far", 0, 0.01),
				pos("bike-near", 0, 0),
			}, nil
		},
	}
	svc := NewService(repo)

	resp, err := svc.Nearest(context.Background(), 0, 0, 2000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.DeviceID != "bike-near" {
		t.Fatalf("expected bike-near, got %s", resp.DeviceID)
	}
	if resp.DistM > 1 {
		t.Fatalf("expected ~0 distance, got %f", resp.DistM)
	}
	if resp.BikeLat != 0 || resp.BikeLon != 0 {
		t.Fatalf("response must carry the bike position: %+v", resp)
	}
}

func TestNearestRespectsRadius(t *testing.T) {
	repo := &mockTelemetryRepo{
		latestFunc: func(ctx context.Context, onlyIdle bool, limit int) ([]*domainTelemetry.Position, error) {
			// ~1112m away from the query point.
			return []*domainTelemetry.Position{pos("bike-1", 0.01, 0)}, nil
		},
	}
	svc := NewService(repo)

	if _, err := svc.Nearest(context.Background(), 0, 0, 500); apperrors.KindOf(err) != apperrors.KindNotFound {
		t.Fatalf("expected not-found outside radius, got %v", err)
	}

	resp, err := svc.Nearest(context.Background(), 0, 0, 2000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.DeviceID != "bike-1" {
		t.Fatalf("expected bike-1 inside radius, got %s", resp.DeviceID)
	}
}

func TestNearestEmptyFleet(t *testing.T) {
	svc := NewService(&mockTelemetryRepo{})

	if _, err := svc.Nearest(context.Background(), 0, 0, 1000); apperrors.KindOf(err) != apperrors.KindNotFound {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestNearestDeterministicTieBreak(t *testing.T) {
	snapshot := []*domainTelemetry.Position{
		pos("bike-b", 0.001, 0),
		pos("bike-a", -0.001, 0),
	}
	repo := &mockTelemetryRepo{
		latestFunc: func(ctx context.Context, onlyIdle bool, limit int) ([]*domainTelemetry.Position, error) {
			return snapshot, nil
		},
	}
	svc := NewService(repo)

	first, err := svc.Nearest(context.Background(), 0, 0, 1000)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := svc.Nearest(context.Background(), 0, 0, 1000)
		if err != nil {
			t.Fatal(err)
		}
		if again.DeviceID != first.DeviceID {
			t.Fatalf("tie-break not deterministic: %s vs %s", again.DeviceID, first.DeviceID)
		}
	}
}

func TestNearestValidation(t *testing.T) {
	svc := NewService(&mockTelemetryRepo{})

	if _, err := svc.Nearest(context.Background(), 0, 0, 0); apperrors.KindOf(err) != apperrors.KindValidation {
		t.Fatalf("expected validation error for non-positive radius, got %v", err)
	}
}

func TestNearestStorageError(t *testing.T) {
	repo := &mockTelemetryRepo{
		latestFunc: func(ctx context.Context, onlyIdle bool, limit int) ([]*domainTelemetry.Position, error) {
			return nil, errors.New("connection reset")
		},
	}
	svc := NewService(repo)

	if _, err := svc.Nearest(context.Background(), 0, 0, 1000); apperrors.KindOf(err) != apperrors.KindInternal {
		t.Fatalf("expected internal error, got %v", err)
	}
}
