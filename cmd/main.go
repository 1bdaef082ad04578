package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"bikefleet/internal/config"
	"bikefleet/internal/graph"
	"bikefleet/internal/infrastructure/database/postgres"
	"bikefleet/internal/ingestion"
	"bikefleet/internal/logger"
	"bikefleet/internal/metrics"
	"bikefleet/internal/routes"
	"bikefleet/internal/weather"
	pkgmqtt "bikefleet/pkg/mqtt"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("Failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	env := cfg.Server.Environment
	if env == "" {
		env = "development"
	}
	if err := logger.Init(env); err != nil {
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting bikefleet control plane",
		zap.String("environment", env),
	)

	if cfg.Database.Host == "" || cfg.Database.DBName == "" {
		logger.Fatal("Database configuration is missing. Please set DB_HOST and DB_NAME environment variables.")
	}

	db, err := postgres.NewDB(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	roadGraph, err := graph.Load(cfg.Graph.NodesPath, cfg.Graph.EdgesPath)
	if err != nil {
		logger.Fatal("Failed to load road graph", zap.Error(err))
	}
	logger.Info("Road graph loaded", zap.Int("nodes", roadGraph.NodeCount()))

	var adjuster weather.Adjuster
	if cfg.Weather.URL != "" {
		adjuster = weather.NewClient(cfg.Weather.URL, time.Duration(cfg.Weather.TimeoutS)*time.Second)
		logger.Info("Using external weather source", zap.String("url", cfg.Weather.URL))
	} else {
		adjuster = weather.NewSimulator()
		logger.Info("Using simulated weather schedule")
	}

	// Telemetry ingestion feeds the discovery snapshot. When no broker is
	// configured the service still runs; discovery just sees a stale fleet.
	var mqttClient *ingestion.MQTTIngestionClient
	processor := ingestion.NewProcessor(postgres.NewTelemetryRepository(db), 50, 1000, time.Second)
	if cfg.MQTT.Broker != "" {
		processor.Start()
		defer processor.Stop()

		mqttClient, err = ingestion.NewMQTTIngestionClient(&ingestion.MQTTIngestionConfig{
			ClientConfig: &pkgmqtt.Config{
				Broker:         cfg.MQTT.Broker,
				ClientID:       cfg.MQTT.ClientID,
				Username:       cfg.MQTT.Username,
				Password:       cfg.MQTT.Password,
				CleanSession:   true,
				KeepAlive:      30,
				ConnectTimeout: 10,
				AutoReconnect:  true,
			},
			TelemetryTopic: cfg.MQTT.TelemetryTopic,
			QoS:            byte(cfg.MQTT.QoS),
		}, processor)
		if err != nil {
			logger.Fatal("Failed to build MQTT ingestion client", zap.Error(err))
		}
		if err := mqttClient.Start(); err != nil {
			logger.Fatal("Failed to start telemetry ingestion", zap.Error(err))
		}
		defer mqttClient.Stop()
	} else {
		logger.Warn("MQTT_BROKER not set, telemetry ingestion disabled")
	}

	m := metrics.New()
	router := routes.SetupRoutes(cfg, db, roadGraph, adjuster, m)

	host := cfg.Server.Host
	if host == "" {
		host = "0.0.0.0"
	}
	port := cfg.Server.Port
	if port == "" {
		port = "8300"
	}
	addr := net.JoinHostPort(host, port)

	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting",
			zap.String("address", addr),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown Server ...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Failed to shutdown server", zap.Error(err))
	}

	logger.Info("Server exited properly")
}
