package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN returns the GORM postgres connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// ProviderConfig holds settings for the external routing, geocoding,
// traffic flow and transit collaborators.
type ProviderConfig struct {
	OSRMBaseURL      string
	NominatimBaseURL string
	TomTomBaseURL    string
	TomTomAPIKey     string
	TransitBaseURL   string
	RequestTimeout   time.Duration
	SearchViewbox    string
}

// KafkaConfig holds event publishing settings.
type KafkaConfig struct {
	Brokers []string
	Enabled bool
}

// ServiceConfig holds all configuration for the planner service.
type ServiceConfig struct {
	Port      string
	AppEnv    string
	JWTSecret string
	Database  DatabaseConfig
	Providers ProviderConfig
	Kafka     KafkaConfig
}

// Load reads configuration from environment variables with the PLANNER prefix.
func Load() (*ServiceConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("PLANNER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", ":8080")
	v.SetDefault("app_env", "development")
	v.SetDefault("jwt_secret", "")

	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", 5432)
	v.SetDefault("db_user", "postgres")
	v.SetDefault("db_password", "postgres")
	v.SetDefault("db_name", "trafficwatch")
	v.SetDefault("db_sslmode", "disable")

	v.SetDefault("osrm_base_url", "https://router.project-osrm.org")
	v.SetDefault("nominatim_base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("tomtom_base_url", "https://api.tomtom.com")
	v.SetDefault("tomtom_api_key", "")
	v.SetDefault("transit_base_url", "http://localhost:8081")
	v.SetDefault("provider_timeout_seconds", 10)
	// Rzeszow bounding box, matches the geocoding search area of the UI.
	v.SetDefault("search_viewbox", "21.9,49.9,22.1,50.1")

	v.SetDefault("kafka_brokers", "localhost:9092")
	v.SetDefault("kafka_enabled", false)

	cfg := &ServiceConfig{
		Port:      normalizePort(v.GetString("port")),
		AppEnv:    v.GetString("app_env"),
		JWTSecret: v.GetString("jwt_secret"),
		Database: DatabaseConfig{
			Host:     v.GetString("db_host"),
			Port:     v.GetInt("db_port"),
			User:     v.GetString("db_user"),
			Password: v.GetString("db_password"),
			DBName:   v.GetString("db_name"),
			SSLMode:  v.GetString("db_sslmode"),
		},
		Providers: ProviderConfig{
			OSRMBaseURL:      v.GetString("osrm_base_url"),
			NominatimBaseURL: v.GetString("nominatim_base_url"),
			TomTomBaseURL:    v.GetString("tomtom_base_url"),
			TomTomAPIKey:     v.GetString("tomtom_api_key"),
			TransitBaseURL:   v.GetString("transit_base_url"),
			RequestTimeout:   time.Duration(v.GetInt("provider_timeout_seconds")) * time.Second,
			SearchViewbox:    v.GetString("search_viewbox"),
		},
		Kafka: KafkaConfig{
			Brokers: strings.Split(v.GetString("kafka_brokers"), ","),
			Enabled: v.GetBool("kafka_enabled"),
		},
	}

	if cfg.AppEnv != "development" && cfg.JWTSecret == "" {
		return nil, fmt.Errorf("PLANNER_JWT_SECRET is required outside development")
	}

	return cfg, nil
}

func normalizePort(port string) string {
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}
