package navigation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domainRoute "bikefleet/internal/domain/route"
	"bikefleet/internal/graph"
	"bikefleet/internal/logger"
	"bikefleet/internal/weather"
	apperrors "bikefleet/pkg/errors"
)

// assumedSpeedMps is the average cycling speed the base ETA assumes.
const assumedSpeedMps = 4.0

// minSpeedFactor floors the weather divisor so a degenerate factor cannot
// blow the ETA up.
const minSpeedFactor = 0.1

// Service plans routes over the road graph and computes weather-adjusted
// ETAs for them.
type Service struct {
	routes   domainRoute.Repository
	graph    *graph.Graph
	adjuster weather.Adjuster
}

func NewService(routes domainRoute.Repository, g *graph.Graph, adjuster weather.Adjuster) *Service {
	return &Service{
		routes:   routes,
		graph:    g,
		adjuster: adjuster,
	}
}

// CreateRoute snaps origin and destination to their nearest graph nodes,
// runs the shortest-path search, persists the result and returns it. A
// disconnected destination is a domain-level no-path error, not a crash.
func (s *Service) CreateRoute(ctx context.Context, req *CreateRouteRequest) (*RouteResponse, error) {
	if req.Origin == nil || req.Dest == nil {
		return nil, apperrors.Validation("missing origin/dest")
	}
	bikeID := req.BikeID
	if bikeID == "" {
		bikeID = "bike-demo"
	}

	originNode := s.graph.NearestNode(req.Origin.Lat, req.Origin.Lon)
	destNode := s.graph.NearestNode(req.Dest.Lat, req.Dest.Lon)

	path, lengthM, err := s.graph.ShortestPath(originNode, destNode)
	if errors.Is(err, graph.ErrNoPath) {
		return nil, apperrors.Validation("no path")
	}
	if err != nil {
		return nil, fmt.Errorf("shortest path failed: %w", err)
	}

	steps := make([]domainRoute.Step, 0, len(path))
	for _, nodeID := range path {
		p, _ := s.graph.Node(nodeID)
		steps = append(steps, domainRoute.Step{Node: nodeID, Lat: p.Lat, Lon: p.Lon})
	}

	rt := &domainRoute.Route{
		ID:       uuid.New(),
		BikeID:   bikeID,
		Origin:   *req.Origin,
		Dest:     *req.Dest,
		Steps:    steps,
		LengthM:  lengthM,
		BaseEtaS: lengthM / assumedSpeedMps,
	}

	if err := s.routes.Create(ctx, rt); err != nil {
		return nil, fmt.Errorf("failed to persist route: %w", err)
	}

	logger.Info("Route planned",
		zap.String("route_id", rt.ID.String()),
		zap.String("bike_id", bikeID),
		zap.Float64("length_m", lengthM),
		zap.Int("steps", len(steps)),
	)

	return toRouteResponse(rt), nil
}

// GetRoute returns a previously planned route.
func (s *Service) GetRoute(ctx context.Context, routeID string) (*RouteResponse, error) {
	rt, err := s.getRoute(ctx, routeID)
	if err != nil {
		return nil, err
	}
	return toRouteResponse(rt), nil
}

// Eta divides the stored base ETA by the weather speed factor at the route's
// midpoint. An unreachable weather source degrades to the neutral factor;
// the request never fails on weather.
func (s *Service) Eta(ctx context.Context, routeID string) (*EtaResponse, error) {
	rt, err := s.getRoute(ctx, routeID)
	if err != nil {
		return nil, err
	}

	mid := rt.Steps[len(rt.Steps)/2]
	report, err := s.adjuster.Factor(ctx, mid.Lat, mid.Lon)
	if err != nil {
		logger.Warn("Weather source degraded, using neutral factor",
			zap.String("route_id", routeID),
			zap.Error(err),
		)
		report = weather.Neutral()
	}

	return &EtaResponse{
		EtaS:        rt.BaseEtaS / max(minSpeedFactor, report.SpeedFactor),
		Condition:   report.Condition,
		SpeedFactor: report.SpeedFactor,
	}, nil
}

func (s *Service) getRoute(ctx context.Context, routeID string) (*domainRoute.Route, error) {
	id, err := uuid.Parse(routeID)
	if err != nil {
		return nil, apperrors.Validation("invalid route id")
	}

	rt, err := s.routes.GetByID(ctx, id)
	if errors.Is(err, domainRoute.ErrRouteNotFound) {
		return nil, apperrors.NotFound("route not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load route: %w", err)
	}
	return rt, nil
}

func toRouteResponse(rt *domainRoute.Route) *RouteResponse {
	return &RouteResponse{
		RouteID:  rt.ID.String(),
		LengthM:  rt.LengthM,
		BaseEtaS: rt.BaseEtaS,
		Steps:    rt.Steps,
	}
}
