package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"

	domainTelemetry "bikefleet/internal/domain/telemetry"
	"bikefleet/internal/infrastructure/database/postgres/models"
)

// TelemetryRepository implements domain telemetry.Repository on Postgres.
type TelemetryRepository struct {
	db *DB
}

func NewTelemetryRepository(db *DB) domainTelemetry.Repository {
	return &TelemetryRepository{db: db}
}

func (r *TelemetryRepository) Insert(ctx context.Context, positions []*domainTelemetry.Position) error {
	if len(positions) == 0 {
		return nil
	}

	rows := make([]models.TelemetryModel, 0, len(positions))
	for _, p := range positions {
		rows = append(rows, models.TelemetryModel{
			DeviceID:  p.DeviceID,
			Ts:        p.Ts,
			Lat:       p.Lat,
			Lon:       p.Lon,
			Battery:   p.Battery,
			Speed:     p.Speed,
			RideState: string(p.RideState),
			UniqueKey: p.UniqueKey,
		})
	}

	// Replayed device reports carry the same unique key and are dropped.
	err := r.db.conn(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "unique_key"}},
			DoNothing: true,
		}).
		Create(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to insert telemetry: %w", err)
	}

	return nil
}

// LatestPositions resolves last-write-wins per device with a group-by max(ts)
// join. Idle filtering happens in SQL so the discovery scan only sees
// candidates.
func (r *TelemetryRepository) LatestPositions(ctx context.Context, onlyIdle bool, limit int) ([]*domainTelemetry.Position, error) {
	if limit <= 0 {
		limit = 1000
	}

	sql := `
	SELECT t.device_id, t.ts, t.lat, t.lon, t.battery, t.speed, t.ride_state, t.unique_key
	FROM telemetry t
	JOIN (SELECT device_id, MAX(ts) AS mx FROM telemetry GROUP BY device_id) m
	  ON t.device_id = m.device_id AND t.ts = m.mx
	`
	if onlyIdle {
		sql += ` WHERE t.ride_state = 'idle'`
	}
	sql += ` ORDER BY t.ts DESC LIMIT ?`

	var rows []models.TelemetryModel
	if err := r.db.conn(ctx).Raw(sql, limit).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query latest positions: %w", err)
	}

	out := make([]*domainTelemetry.Position, 0, len(rows))
	for i := range rows {
		out = append(out, &domainTelemetry.Position{
			DeviceID:  rows[i].DeviceID,
			Ts:        rows[i].Ts,
			Lat:       rows[i].Lat,
			Lon:       rows[i].Lon,
			Battery:   rows[i].Battery,
			Speed:     rows[i].Speed,
			RideState: domainTelemetry.RideState(rows[i].RideState),
			UniqueKey: rows[i].UniqueKey,
		})
	}

	return out, nil
}
