package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domainRoute "bikefleet/internal/domain/route"
	"bikefleet/internal/infrastructure/database/postgres/models"
)

// RouteRepository implements domain route.Repository on Postgres.
type RouteRepository struct {
	db *DB
}

func NewRouteRepository(db *DB) domainRoute.Repository {
	return &RouteRepository{db: db}
}

func (r *RouteRepository) Create(ctx context.Context, rt *domainRoute.Route) error {
	if rt.ID == uuid.Nil {
		rt.ID = uuid.New()
	}
	if rt.CreatedAt.IsZero() {
		rt.CreatedAt = time.Now()
	}

	steps, err := json.Marshal(rt.Steps)
	if err != nil {
		return fmt.Errorf("failed to encode route steps: %w", err)
	}

	dbModel := &models.RouteModel{
		ID:        rt.ID,
		BikeID:    rt.BikeID,
		OriginLat: rt.Origin.Lat,
		OriginLon: rt.Origin.Lon,
		DestLat:   rt.Dest.Lat,
		DestLon:   rt.Dest.Lon,
		Steps:     string(steps),
		LengthM:   rt.LengthM,
		BaseEtaS:  rt.BaseEtaS,
		CreatedAt: rt.CreatedAt,
	}

	if err := r.db.conn(ctx).Create(dbModel).Error; err != nil {
		return fmt.Errorf("failed to create route: %w", err)
	}

	return nil
}

func (r *RouteRepository) GetByID(ctx context.Context, id uuid.UUID) (*domainRoute.Route, error) {
	var dbModel models.RouteModel
	err := r.db.conn(ctx).
		Where("id = ?", id).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainRoute.ErrRouteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get route: %w", err)
	}

	var steps []domainRoute.Step
	if err := json.Unmarshal([]byte(dbModel.Steps), &steps); err != nil {
		return nil, fmt.Errorf("failed to decode route steps: %w", err)
	}

	return &domainRoute.Route{
		ID:        dbModel.ID,
		BikeID:    dbModel.BikeID,
		Origin:    domainRoute.LatLon{Lat: dbModel.OriginLat, Lon: dbModel.OriginLon},
		Dest:      domainRoute.LatLon{Lat: dbModel.DestLat, Lon: dbModel.DestLon},
		Steps:     steps,
		LengthM:   dbModel.LengthM,
		BaseEtaS:  dbModel.BaseEtaS,
		CreatedAt: dbModel.CreatedAt,
	}, nil
}
