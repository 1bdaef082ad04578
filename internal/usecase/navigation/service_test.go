package navigation

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/google/uuid"

	domainRoute "bikefleet/internal/domain/route"
	"bikefleet/internal/graph"
	"bikefleet/internal/weather"
	apperrors "bikefleet/pkg/errors"
)

type memRouteRepo struct {
	mu     sync.Mutex
	routes map[uuid.UUID]*domainRoute.Route
}

func newMemRouteRepo() *memRouteRepo {
	return &memRouteRepo{routes: make(map[uuid.UUID]*domainRoute.Route)}
}

func (m *memRouteRepo) Create(_ context.Context, r *domainRoute.Route) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	m.routes[r.ID] = &cp
	return nil
}

func (m *memRouteRepo) GetByID(_ context.Context, id uuid.UUID) (*domainRoute.Route, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.routes[id]
	if !ok {
		return nil, domainRoute.ErrRouteNotFound
	}
	return r, nil
}

type stubAdjuster struct {
	report weather.Report
	err    error
}

func (s stubAdjuster) Factor(context.Context, float64, float64) (weather.Report, error) {
	return s.report, s.err
}

func testGraph() *graph.Graph {
	g := graph.New()
	g.AddNode("A", 0, 0)
	g.AddNode("B", 0, 0.01)
	g.AddNode("C", 0.01, 0.01)
	g.AddNode("D", 0.01, 0)
	g.AddNode("island", 3, 3)
	g.AddEdge("A", "B")
	g.AddEdge("B", "C")
	g.AddEdge("C", "D")
	g.AddEdge("D", "A")
	return g
}

func newTestService(repo domainRoute.Repository, adj weather.Adjuster) *Service {
	return NewService(repo, testGraph(), adj)
}

func TestCreateRouteBaseEta(t *testing.T) {
	repo := newMemRouteRepo()
	svc := newTestService(repo, stubAdjuster{report: weather.Neutral()})

	resp, err := svc.CreateRoute(context.Background(), &CreateRouteRequest{
		Origin: &domainRoute.LatLon{Lat: 0, Lon: 0},
		Dest:   &domainRoute.LatLon{Lat: 0.01, Lon: 0.01},
		BikeID: "bike-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(resp.Steps) != 3 {
		t.Fatalf("expected 3 steps around the square, got %d", len(resp.Steps))
	}
	if resp.Steps[0].Node != "A" || resp.Steps[2].Node != "C" {
		t.Fatalf("path does not run A..C: %+v", resp.Steps)
	}
	if math.Abs(resp.BaseEtaS-resp.LengthM/4.0) > 1e-9 {
		t.Fatalf("base ETA must assume 4 m/s: eta=%f length=%f", resp.BaseEtaS, resp.LengthM)
	}
}

func TestCreateRouteValidation(t *testing.T) {
	svc := newTestService(newMemRouteRepo(), stubAdjuster{})

	_, err := svc.CreateRoute(context.Background(), &CreateRouteRequest{
		Origin: &domainRoute.LatLon{Lat: 0, Lon: 0},
	})
	if apperrors.KindOf(err) != apperrors.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateRouteNoPath(t *testing.T) {
	svc := newTestService(newMemRouteRepo(), stubAdjuster{})

	_, err := svc.CreateRoute(context.Background(), &CreateRouteRequest{
		Origin: &domainRoute.LatLon{Lat: 0, Lon: 0},
		Dest:   &domainRoute.LatLon{Lat: 3, Lon: 3},
	})
	if apperrors.KindOf(err) != apperrors.KindValidation {
		t.Fatalf("expected no-path to map to a 400-class error, got %v", err)
	}
}

func TestRouteRoundTrip(t *testing.T) {
	repo := newMemRouteRepo()
	svc := newTestService(repo, stubAdjuster{report: weather.Neutral()})
	ctx := context.Background()

	created, err := svc.CreateRoute(ctx, &CreateRouteRequest{
		Origin: &domainRoute.LatLon{Lat: 0, Lon: 0},
		Dest:   &domainRoute.LatLon{Lat: 0.01, Lon: 0.01},
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := svc.GetRoute(ctx, created.RouteID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.BaseEtaS != created.BaseEtaS {
		t.Fatalf("base ETA changed on read: %f vs %f", got.BaseEtaS, created.BaseEtaS)
	}
	if len(got.Steps) != len(created.Steps) {
		t.Fatalf("step count changed: %d vs %d", len(got.Steps), len(created.Steps))
	}
	for i := range got.Steps {
		if got.Steps[i] != created.Steps[i] {
			t.Fatalf("step %d changed: %+v vs %+v", i, got.Steps[i], created.Steps[i])
		}
	}
}

func TestEtaAppliesSpeedFactor(t *testing.T) {
	repo := newMemRouteRepo()
	id := uuid.New()
	repo.routes[id] = &domainRoute.Route{
		ID:       id,
		Steps:    []domainRoute.Step{{Node: "A"}, {Node: "B"}, {Node: "C"}},
		BaseEtaS: 100,
	}
	svc := NewService(repo, testGraph(), stubAdjuster{report: weather.Report{Condition: "rain", SpeedFactor: 0.5}})

	resp, err := svc.Eta(context.Background(), id.String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.EtaS != 200 {
		t.Fatalf("expected 100/0.5 = 200, got %f", resp.EtaS)
	}
	if resp.Condition != "rain" || resp.SpeedFactor != 0.5 {
		t.Fatalf("unexpected weather echo: %+v", resp)
	}
}

func TestEtaDegradesToNeutralOnWeatherFailure(t *testing.T) {
	repo := newMemRouteRepo()
	id := uuid.New()
	repo.routes[id] = &domainRoute.Route{
		ID:       id,
		Steps:    []domainRoute.Step{{Node: "A"}},
		BaseEtaS: 100,
	}
	svc := NewService(repo, testGraph(), stubAdjuster{err: errors.New("weather down")})

	resp, err := svc.Eta(context.Background(), id.String())
	if err != nil {
		t.Fatalf("weather failure must not fail the request: %v", err)
	}
	if resp.EtaS != 100 || resp.SpeedFactor != 1.0 || resp.Condition != "clear" {
		t.Fatalf("expected neutral degradation, got %+v", resp)
	}
}

func TestEtaFloorsSpeedFactor(t *testing.T) {
	repo := newMemRouteRepo()
	id := uuid.New()
	repo.routes[id] = &domainRoute.Route{
		ID:       id,
		Steps:    []domainRoute.Step{{Node: "A"}},
		BaseEtaS: 100,
	}
	svc := NewService(repo, testGraph(), stubAdjuster{report: weather.Report{Condition: "storm", SpeedFactor: 0.01}})

	resp, err := svc.Eta(context.Background(), id.String())
	if err != nil {
		t.Fatal(err)
	}
	if resp.EtaS != 1000 {
		t.Fatalf("expected floor at 0.1 (eta 1000), got %f", resp.EtaS)
	}
}

func TestEtaUnknownRoute(t *testing.T) {
	svc := newTestService(newMemRouteRepo(), stubAdjuster{})

	if _, err := svc.Eta(context.Background(), uuid.NewString()); apperrors.KindOf(err) != apperrors.KindNotFound {
		t.Fatalf("expected not-found, got %v", err)
	}
	if _, err := svc.Eta(context.Background(), "garbage"); apperrors.KindOf(err) != apperrors.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
