package ingestion

import (
	"context"
	"sync"
	"testing"
	"time"

	domainTelemetry "bikefleet/internal/domain/telemetry"
)

type captureRepo struct {
	mu        sync.Mutex
	positions []*domainTelemetry.Position
}

func (r *captureRepo) Insert(_ context.Context, positions []*domainTelemetry.Position) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.positions = append(r.positions, positions...)
	return nil
}

func (r *captureRepo) LatestPositions(context.Context, bool, int) ([]*domainTelemetry.Position, error) {
	return nil, nil
}

func (r *captureRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.positions)
}

func validMessage(device string, ts int64) *PositionMessage {
	return &PositionMessage{
		DeviceID: device,
		Ts:       ts,
		Lat:      1.29,
		Lon:      103.85,
	}
}

func TestProcessorFlushesOnStop(t *testing.T) {
	repo := &captureRepo{}
	p := NewProcessor(repo, 100, 10, time.Hour)
	p.Start()

	for i := 0; i < 5; i++ {
		if err := p.Enqueue(validMessage("bike-1", int64(1700000000+i))); err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}
	p.Stop()

	if repo.count() != 5 {
		t.Fatalf("expected 5 rows after stop, got %d", repo.count())
	}
}

func TestProcessorFlushesFullBatches(t *testing.T) {
	repo := &captureRepo{}
	p := NewProcessor(repo, 2, 10, time.Hour)
	p.Start()
	defer p.Stop()

	for i := 0; i < 4; i++ {
		if err := p.Enqueue(validMessage("bike-1", int64(1700000000+i))); err != nil {
			t.Fatal(err)
		}
	}

	deadline := time.Now().Add(2 * time.Second)
	for repo.count() < 4 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if repo.count() < 4 {
		t.Fatalf("expected 4 rows flushed by batch size, got %d", repo.count())
	}
}

func TestProcessorRejectsInvalidMessages(t *testing.T) {
	p := NewProcessor(&captureRepo{}, 10, 10, time.Second)

	cases := []*PositionMessage{
		nil,
		{Ts: 1700000000, Lat: 0, Lon: 0},                             // missing device
		{DeviceID: "bike-1", Lat: 0, Lon: 0},                         // missing ts
		{DeviceID: "bike-1", Ts: 1700000000, Lat: 91, Lon: 0},        // bad lat
		{DeviceID: "bike-1", Ts: 1700000000, Lat: 0, Lon: -181},      // bad lon
		{DeviceID: "bike-1", Ts: 1700000000, RideState: "teleports"}, // bad state
	}
	for i, msg := range cases {
		if err := p.Enqueue(msg); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}

func TestToPositionDefaults(t *testing.T) {
	pos := toPosition(validMessage("bike-9", 1700000000))

	if pos.RideState != domainTelemetry.RideIdle {
		t.Fatalf("expected idle default, got %s", pos.RideState)
	}
	if pos.UniqueKey != "bike-9:1700000000" {
		t.Fatalf("expected derived unique key, got %q", pos.UniqueKey)
	}
	if !pos.Ts.Equal(time.Unix(1700000000, 0)) {
		t.Fatalf("bad timestamp: %v", pos.Ts)
	}
}
