package ingestion

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	domainTelemetry "bikefleet/internal/domain/telemetry"
	"bikefleet/internal/logger"
)

// Processor drains telemetry messages off a channel and writes them to
// storage in batches. It is the only long-lived background worker in the
// service besides the HTTP server itself.
type Processor struct {
	repo domainTelemetry.Repository

	batchSize    int
	batchTimeout time.Duration
	bufferSize   int

	positionChan chan *PositionMessage

	buffer []*domainTelemetry.Position

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex

	dropped uint64
}

func NewProcessor(repo domainTelemetry.Repository, batchSize, bufferSize int, batchTimeout time.Duration) *Processor {
	if batchSize <= 0 {
		batchSize = 50
	}
	if bufferSize <= 0 {
		bufferSize = 1000
	}
	if batchTimeout <= 0 {
		batchTimeout = time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Processor{
		repo:         repo,
		batchSize:    batchSize,
		batchTimeout: batchTimeout,
		bufferSize:   bufferSize,
		positionChan: make(chan *PositionMessage, bufferSize),
		buffer:       make([]*domainTelemetry.Position, 0, batchSize),
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Start launches the drain and flush workers.
func (p *Processor) Start() {
	logger.Info("Starting telemetry processor",
		zap.Int("batch_size", p.batchSize),
		zap.Duration("batch_timeout", p.batchTimeout),
	)

	p.wg.Add(2)
	go p.drainWorker()
	go p.flushWorker()
}

// Stop shuts the workers down and flushes whatever is buffered.
func (p *Processor) Stop() {
	p.cancel()
	close(p.positionChan)
	p.wg.Wait()
	p.flush()

	logger.Info("Telemetry processor stopped")
}

// Enqueue validates and queues one position message. The queue never blocks
// the MQTT callback: when full, the message is dropped and counted.
func (p *Processor) Enqueue(msg *PositionMessage) error {
	if err := ValidatePosition(msg); err != nil {
		return err
	}

	select {
	case p.positionChan <- msg:
		return nil
	case <-p.ctx.Done():
		return p.ctx.Err()
	default:
		p.mu.Lock()
		p.dropped++
		dropped := p.dropped
		p.mu.Unlock()
		return fmt.Errorf("telemetry buffer full, dropped message from %s (total dropped %d)", msg.DeviceID, dropped)
	}
}

func (p *Processor) drainWorker() {
	defer p.wg.Done()

	for msg := range p.positionChan {
		pos := toPosition(msg)

		p.mu.Lock()
		p.buffer = append(p.buffer, pos)
		full := len(p.buffer) >= p.batchSize
		p.mu.Unlock()

		if full {
			p.flush()
		}
	}
}

func (p *Processor) flushWorker() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.batchTimeout)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.flush()
		case <-p.ctx.Done():
			return
		}
	}
}

func (p *Processor) flush() {
	p.mu.Lock()
	if len(p.buffer) == 0 {
		p.mu.Unlock()
		return
	}
	batch := p.buffer
	p.buffer = make([]*domainTelemetry.Position, 0, p.batchSize)
	p.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := p.repo.Insert(ctx, batch); err != nil {
		logger.Error("Failed to flush telemetry batch",
			zap.Int("batch", len(batch)),
			zap.Error(err),
		)
		return
	}

	logger.Debug("Telemetry batch flushed", zap.Int("batch", len(batch)))
}

func toPosition(msg *PositionMessage) *domainTelemetry.Position {
	state := domainTelemetry.RideState(msg.RideState)
	if state == "" {
		state = domainTelemetry.RideIdle
	}

	uniqueKey := msg.UniqueKey
	if uniqueKey == "" {
		uniqueKey = fmt.Sprintf("%s:%d", msg.DeviceID, msg.Ts)
	}

	return &domainTelemetry.Position{
		DeviceID:  msg.DeviceID,
		Ts:        time.Unix(msg.Ts, 0).UTC(),
		Lat:       msg.Lat,
		Lon:       msg.Lon,
		Battery:   msg.Battery,
		Speed:     msg.Speed,
		RideState: state,
		UniqueKey: uniqueKey,
	}
}
