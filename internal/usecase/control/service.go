package control

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domainCommand "bikefleet/internal/domain/command"
	domainIdem "bikefleet/internal/domain/idempotency"
	"bikefleet/internal/logger"
	apperrors "bikefleet/pkg/errors"
)

// TxManager runs a function inside one storage transaction; repository calls
// made with the derived context commit or roll back together.
type TxManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service implements the unlock control plane: idempotent command dispatch,
// polled delivery and acknowledgement.
type Service struct {
	commands    domainCommand.Repository
	ledger      domainIdem.Repository
	tx          TxManager
	secret      string
	tokenExpiry int
	now         func() time.Time
}

func NewService(commands domainCommand.Repository, ledger domainIdem.Repository, tx TxManager, secret string, tokenExpiryS int) *Service {
	if tokenExpiryS <= 0 {
		tokenExpiryS = 60
	}
	return &Service{
		commands:    commands,
		ledger:      ledger,
		tx:          tx,
		secret:      secret,
		tokenExpiry: tokenExpiryS,
		now:         time.Now,
	}
}

// Unlock reserves the idempotency key and enqueues the unlock command in one
// transaction: either both are committed or neither is visible. A reused key
// surfaces as KindDuplicate carrying the original reservation where the
// ledger still has it.
func (s *Service) Unlock(ctx context.Context, idemKey string, req *UnlockRequest) (*UnlockResponse, error) {
	if idemKey == "" {
		return nil, apperrors.Validation("missing Idempotency-Key")
	}
	if req.BikeID == "" {
		return nil, apperrors.Validation("missing bike_id")
	}
	userID := req.UserID
	if userID == "" {
		userID = "user-demo"
	}

	ts := s.now().Unix()
	token := MakeUnlockToken(s.secret, req.BikeID, userID, ts)
	cmd := &domainCommand.Command{
		ID:       uuid.New(),
		DeviceID: req.BikeID,
		UserID:   userID,
		Type:     domainCommand.TypeUnlock,
		Payload: domainCommand.Payload{
			Type:        string(domainCommand.TypeUnlock),
			UnlockToken: token,
			ExpiryS:     s.tokenExpiry,
		},
		CreatedAt: s.now(),
	}

	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.ledger.Reserve(txCtx, &domainIdem.Record{
			Key:      idemKey,
			Resource: fmt.Sprintf("unlock:%s:%s", req.BikeID, userID),
			Status:   domainIdem.StatusCreated,
		}); err != nil {
			return err
		}
		return s.commands.Enqueue(txCtx, cmd)
	})
	if errors.Is(err, domainIdem.ErrDuplicateKey) {
		return nil, apperrors.NewAppError(apperrors.KindDuplicate, "duplicate", err)
	}
	if err != nil {
		return nil, fmt.Errorf("unlock commit failed: %w", err)
	}

	logger.Info("Unlock command issued",
		zap.String("command_id", cmd.ID.String()),
		zap.String("bike_id", req.BikeID),
		zap.String("user_id", userID),
		zap.String("event", "unlock_issued"),
	)

	return &UnlockResponse{
		CommandID:   cmd.ID.String(),
		UnlockToken: token,
		ExpiryS:     s.tokenExpiry,
	}, nil
}

// Duplicate describes an already-used idempotency key for the 409 response.
func (s *Service) Duplicate(ctx context.Context, idemKey string) *DuplicateResponse {
	resp := &DuplicateResponse{Status: "duplicate", Key: idemKey}
	if rec, err := s.ledger.Get(ctx, idemKey); err == nil {
		resp.Resource = rec.Resource
	}
	return resp
}

// Poll returns the device's pending commands and marks them delivered.
// Delivery is at-least-once: the queue never hands out a command twice, but
// a device that crashes between receipt and processing must dedup on
// command id, because delivered commands are not re-sent.
func (s *Service) Poll(ctx context.Context, deviceID string, since *time.Time) ([]PolledCommand, error) {
	if deviceID == "" {
		return nil, apperrors.Validation("missing device id")
	}

	cmds, err := s.commands.PollAndMarkDelivered(ctx, deviceID, since)
	if err != nil {
		return nil, fmt.Errorf("poll failed: %w", err)
	}

	out := make([]PolledCommand, 0, len(cmds))
	for _, cmd := range cmds {
		out = append(out, PolledCommand{
			ID:          cmd.ID.String(),
			Type:        string(cmd.Type),
			UnlockToken: cmd.Payload.UnlockToken,
			ExpiryS:     cmd.Payload.ExpiryS,
		})
	}

	if len(out) > 0 {
		logger.Debug("Commands delivered",
			zap.String("device_id", deviceID),
			zap.Int("count", len(out)),
		)
	}

	return out, nil
}

// Ack records the device's reported outcome. An unknown command id is a
// no-op, not a failure: the device keeps its retry loop simple and the
// response stays affirmative either way.
func (s *Service) Ack(ctx context.Context, commandID string, req *AckRequest) (*AckResponse, error) {
	id, err := uuid.Parse(commandID)
	if err != nil {
		return nil, apperrors.Validation("invalid command id")
	}

	status := req.Status
	if status == "" {
		status = "ok"
	}

	err = s.commands.Ack(ctx, id, status)
	if err != nil && !errors.Is(err, domainCommand.ErrCommandNotFound) {
		return nil, fmt.Errorf("ack failed: %w", err)
	}
	if errors.Is(err, domainCommand.ErrCommandNotFound) {
		logger.Debug("Ack for unknown command", zap.String("command_id", commandID))
	}

	return &AckResponse{OK: true, ID: commandID}, nil
}
