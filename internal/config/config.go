package config

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	MQTT      MQTTConfig
	Control   ControlConfig
	Graph     GraphConfig
	Weather   WeatherConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

type ServerConfig struct {
	Port        string
	Host        string
	Environment string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// ControlConfig holds the shared secret used to sign unlock tokens and the
// advisory token lifetime carried in command payloads.
type ControlConfig struct {
	Secret       string
	TokenExpiryS int
}

type GraphConfig struct {
	NodesPath string
	EdgesPath string
}

type WeatherConfig struct {
	// URL of the external weather source. Empty selects the built-in
	// time-of-day simulator.
	URL      string
	TimeoutS int
}

type MQTTConfig struct {
	Broker         string
	ClientID       string
	Username       string
	Password       string
	TelemetryTopic string
	QoS            int
}

type RateLimitConfig struct {
	GeneralRPS   float64 // Requests per second for general endpoints
	GeneralBurst int     // Burst size for general endpoints

	// Device-facing token bucket, one per (route, client).
	DeviceCapacity  int
	DeviceRefillPPS float64
}

type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AddConfigPath(".")
	if homeDir, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(homeDir)
	}
	viper.AutomaticEnv()

	viper.SetDefault("CTRL_TOKEN_EXPIRY_S", 60)
	viper.SetDefault("WEATHER_TIMEOUT_S", 2)
	viper.SetDefault("RATE_LIMIT_GENERAL_RPS", 50.0)
	viper.SetDefault("RATE_LIMIT_GENERAL_BURST", 100)
	viper.SetDefault("RATE_LIMIT_DEVICE_CAPACITY", 20)
	viper.SetDefault("RATE_LIMIT_DEVICE_REFILL_PPS", 10.0)
	viper.SetDefault("GRAPH_NODES_PATH", "data/city_nodes.csv")
	viper.SetDefault("GRAPH_EDGES_PATH", "data/city_edges.csv")
	viper.SetDefault("MQTT_TELEMETRY_TOPIC", "fleet/+/telemetry")
	viper.SetDefault("MQTT_QOS", 1)

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		log.Printf("Warning: config file not found: %v. Falling back to environment variables only.", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port:        viper.GetString("SERVER_PORT"),
			Host:        viper.GetString("SERVER_HOST"),
			Environment: viper.GetString("ENVIRONMENT"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			DBName:   viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
		},
		MQTT: MQTTConfig{
			Broker:         viper.GetString("MQTT_BROKER"),
			ClientID:       viper.GetString("MQTT_CLIENT_ID"),
			Username:       viper.GetString("MQTT_USERNAME"),
			Password:       viper.GetString("MQTT_PASSWORD"),
			TelemetryTopic: viper.GetString("MQTT_TELEMETRY_TOPIC"),
			QoS:            viper.GetInt("MQTT_QOS"),
		},
		Control: ControlConfig{
			Secret:       viper.GetString("CTRL_SECRET"),
			TokenExpiryS: viper.GetInt("CTRL_TOKEN_EXPIRY_S"),
		},
		Graph: GraphConfig{
			NodesPath: viper.GetString("GRAPH_NODES_PATH"),
			EdgesPath: viper.GetString("GRAPH_EDGES_PATH"),
		},
		Weather: WeatherConfig{
			URL:      viper.GetString("WEATHER_URL"),
			TimeoutS: viper.GetInt("WEATHER_TIMEOUT_S"),
		},
		RateLimit: RateLimitConfig{
			GeneralRPS:      viper.GetFloat64("RATE_LIMIT_GENERAL_RPS"),
			GeneralBurst:    viper.GetInt("RATE_LIMIT_GENERAL_BURST"),
			DeviceCapacity:  viper.GetInt("RATE_LIMIT_DEVICE_CAPACITY"),
			DeviceRefillPPS: viper.GetFloat64("RATE_LIMIT_DEVICE_REFILL_PPS"),
		},
		CORS: CORSConfig{
			AllowedOrigins:   viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods:   viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders:   viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
			ExposedHeaders:   viper.GetStringSlice("CORS_EXPOSED_HEADERS"),
			AllowCredentials: viper.GetBool("CORS_ALLOW_CREDENTIALS"),
			MaxAge:           viper.GetInt("CORS_MAX_AGE"),
		},
	}

	if config.Control.Secret == "" {
		config.Control.Secret = "dev-secret"
	}

	return config, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}
