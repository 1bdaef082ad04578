package ingestion

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"bikefleet/internal/logger"
	pkgmqtt "bikefleet/pkg/mqtt"
)

// MQTTIngestionConfig describes the topic and MQTT connection parameters.
type MQTTIngestionConfig struct {
	ClientConfig   *pkgmqtt.Config
	TelemetryTopic string
	QoS            byte
}

// MQTTIngestionClient wires MQTT telemetry messages into the processor.
type MQTTIngestionClient struct {
	cfg       *MQTTIngestionConfig
	client    *pkgmqtt.Client
	processor *Processor

	mu      sync.Mutex
	started bool
}

func NewMQTTIngestionClient(cfg *MQTTIngestionConfig, processor *Processor) (*MQTTIngestionClient, error) {
	if cfg == nil || cfg.ClientConfig == nil {
		return nil, errors.New("mqtt ingestion config is not configured")
	}
	if processor == nil {
		return nil, errors.New("processor is required")
	}

	return &MQTTIngestionClient{
		cfg:       cfg,
		client:    pkgmqtt.NewClient(cfg.ClientConfig),
		processor: processor,
	}, nil
}

// Start establishes the MQTT connection and subscribes to the telemetry
// topic.
func (c *MQTTIngestionClient) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return nil
	}

	if err := c.client.Connect(); err != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}

	if err := c.client.Subscribe(c.cfg.TelemetryTopic, c.cfg.QoS, c.handleMessage); err != nil {
		c.client.Disconnect()
		return err
	}

	c.started = true
	logger.Info("Telemetry ingestion started", zap.String("topic", c.cfg.TelemetryTopic))
	return nil
}

// Stop unsubscribes and disconnects.
func (c *MQTTIngestionClient) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started {
		return
	}

	if err := c.client.Unsubscribe(c.cfg.TelemetryTopic); err != nil {
		logger.Warn("Failed to unsubscribe from telemetry topic", zap.Error(err))
	}
	c.client.Disconnect()
	c.started = false
}

func (c *MQTTIngestionClient) handleMessage(topic string, payload []byte) {
	var msg PositionMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		logger.Warn("Malformed telemetry payload",
			zap.String("topic", topic),
			zap.Error(err),
		)
		return
	}

	if err := c.processor.Enqueue(&msg); err != nil {
		logger.Warn("Telemetry message rejected",
			zap.String("topic", topic),
			zap.String("device_id", msg.DeviceID),
			zap.Error(err),
		)
	}
}
