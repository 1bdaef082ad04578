package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	domainCommand "bikefleet/internal/domain/command"
	"bikefleet/internal/infrastructure/database/postgres/models"
)

// CommandRepository implements domain command.Repository on Postgres.
type CommandRepository struct {
	db *DB
}

func NewCommandRepository(db *DB) domainCommand.Repository {
	return &CommandRepository{db: db}
}

func (r *CommandRepository) Enqueue(ctx context.Context, cmd *domainCommand.Command) error {
	if cmd.ID == uuid.Nil {
		cmd.ID = uuid.New()
	}
	if cmd.CreatedAt.IsZero() {
		cmd.CreatedAt = time.Now()
	}
	cmd.Status = domainCommand.StatusCreated

	dbModel, err := toCommandModel(cmd)
	if err != nil {
		return err
	}

	if err := r.db.conn(ctx).Create(dbModel).Error; err != nil {
		return fmt.Errorf("failed to enqueue command: %w", err)
	}

	return nil
}

// PollAndMarkDelivered reads the device's created commands and flips them to
// delivered inside one transaction. Commands already delivered are never
// returned again; a crash after commit but before the device receives the
// response is the documented at-least-once gap, closed by device-side dedup
// on command id.
func (r *CommandRepository) PollAndMarkDelivered(ctx context.Context, deviceID string, since *time.Time) ([]*domainCommand.Command, error) {
	var out []*domainCommand.Command

	err := r.db.WithinTransaction(ctx, func(txCtx context.Context) error {
		q := r.db.conn(txCtx).
			Where("device_id = ? AND status = ?", deviceID, string(domainCommand.StatusCreated))
		if since != nil {
			q = q.Where("created_at >= ?", *since)
		}

		var rows []models.CommandModel
		if err := q.Order("created_at ASC").Find(&rows).Error; err != nil {
			return fmt.Errorf("failed to fetch pending commands: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}

		now := time.Now()
		ids := make([]uuid.UUID, 0, len(rows))
		for _, row := range rows {
			ids = append(ids, row.ID)
		}

		res := r.db.conn(txCtx).Model(&models.CommandModel{}).
			Where("id IN ? AND status = ?", ids, string(domainCommand.StatusCreated)).
			Updates(map[string]interface{}{
				"status":       string(domainCommand.StatusDelivered),
				"delivered_at": now,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to mark commands delivered: %w", res.Error)
		}

		for i := range rows {
			rows[i].Status = string(domainCommand.StatusDelivered)
			rows[i].DeliveredAt = &now
			cmd, err := toCommandEntity(&rows[i])
			if err != nil {
				return err
			}
			out = append(out, cmd)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *CommandRepository) Ack(ctx context.Context, id uuid.UUID, deviceStatus string) error {
	now := time.Now()

	res := r.db.conn(ctx).
		Model(&models.CommandModel{}).
		Where("id = ? AND status IN ?", id, []string{
			string(domainCommand.StatusDelivered),
			string(domainCommand.StatusAcked),
		}).
		Updates(map[string]interface{}{
			"status":        string(domainCommand.StatusAcked),
			"acked_at":      now,
			"device_status": deviceStatus,
		})

	if res.Error != nil {
		return fmt.Errorf("failed to ack command: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domainCommand.ErrCommandNotFound
	}

	return nil
}

func toCommandModel(cmd *domainCommand.Command) (*models.CommandModel, error) {
	payload, err := json.Marshal(cmd.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode command payload: %w", err)
	}

	return &models.CommandModel{
		ID:           cmd.ID,
		DeviceID:     cmd.DeviceID,
		UserID:       cmd.UserID,
		Type:         string(cmd.Type),
		Payload:      string(payload),
		Status:       string(cmd.Status),
		CreatedAt:    cmd.CreatedAt,
		DeliveredAt:  cmd.DeliveredAt,
		AckedAt:      cmd.AckedAt,
		DeviceStatus: cmd.DeviceStatus,
	}, nil
}

func toCommandEntity(m *models.CommandModel) (*domainCommand.Command, error) {
	var payload domainCommand.Payload
	if m.Payload != "" {
		if err := json.Unmarshal([]byte(m.Payload), &payload); err != nil {
			return nil, fmt.Errorf("failed to decode command payload: %w", err)
		}
	}

	return &domainCommand.Command{
		ID:           m.ID,
		DeviceID:     m.DeviceID,
		UserID:       m.UserID,
		Type:         domainCommand.CommandType(m.Type),
		Payload:      payload,
		Status:       domainCommand.Status(m.Status),
		CreatedAt:    m.CreatedAt,
		DeliveredAt:  m.DeliveredAt,
		AckedAt:      m.AckedAt,
		DeviceStatus: m.DeviceStatus,
	}, nil
}
