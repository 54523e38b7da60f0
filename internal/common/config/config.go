package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/transport-catalogue/internal/renderer"
	"github.com/transport-catalogue/internal/router"
)

type Config struct {
	Database   DatabaseConfig
	HTTP       HTTPConfig
	GTFSStatic GTFSStaticConfig
	Logging    LoggingConfig
	// Settings holds routing and render defaults, from SettingsFile when set.
	Settings     Settings
	SettingsFile string
}

type DatabaseConfig struct {
	Host     string `validate:"required"`
	Port     string `validate:"required,numeric"`
	User     string `validate:"required"`
	Password string
	DBName   string `validate:"required"`
	SSLMode  string `validate:"oneof=disable require verify-ca verify-full"`
}

type HTTPConfig struct {
	Addr          string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	RouteCacheTTL time.Duration
}

// GTFSStaticConfig for downloading and importing a static feed
type GTFSStaticConfig struct {
	DownloadDir string
	SourceURL   string
}

type LoggingConfig struct {
	Level           string
	FilePath        string
	AlertWebhookURL string
}

// Settings is the YAML settings file. Both sections are used when a request
// batch does not carry its own.
type Settings struct {
	Routing router.RoutingSettings  `yaml:"routing_settings"`
	Render  renderer.RenderSettings `yaml:"render_settings"`
}

var validate = validator.New()

func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "transport_catalogue"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		HTTP: HTTPConfig{
			Addr:          getEnv("HTTP_ADDR", ":8080"),
			ReadTimeout:   getDurationEnv("HTTP_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:  getDurationEnv("HTTP_WRITE_TIMEOUT", 15*time.Second),
			RouteCacheTTL: getDurationEnv("ROUTE_CACHE_TTL", 10*time.Minute),
		},
		GTFSStatic: GTFSStaticConfig{
			DownloadDir: getEnv("GTFS_DOWNLOAD_DIR", "/tmp/gtfs-static"),
			SourceURL:   getEnv("GTFS_SOURCE_URL", ""),
		},
		Logging: LoggingConfig{
			Level:           getEnv("LOG_LEVEL", "info"),
			FilePath:        getEnv("LOG_FILE", ""),
			AlertWebhookURL: getEnv("ALERT_WEBHOOK_URL", ""),
		},
		Settings:     DefaultSettings(),
		SettingsFile: getEnv("SETTINGS_FILE", ""),
	}

	if cfg.SettingsFile != "" {
		settings, err := LoadSettings(cfg.SettingsFile)
		if err != nil {
			return nil, err
		}
		cfg.Settings = *settings
	}

	return cfg, nil
}

// DefaultSettings are used when no settings file is configured.
func DefaultSettings() Settings {
	return Settings{
		Routing: router.RoutingSettings{BusWaitTime: 6, BusVelocity: 40},
		Render:  renderer.DefaultRenderSettings(),
	}
}

// LoadSettings reads a YAML settings file. Sections missing from the file
// keep their defaults.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading settings file: %w", err)
	}
	return ParseSettings(data)
}

func ParseSettings(data []byte) (*Settings, error) {
	settings := DefaultSettings()
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("parsing settings: %w", err)
	}
	if err := validate.Struct(settings); err != nil {
		return nil, fmt.Errorf("validating settings: %w", err)
	}
	if err := settings.Render.Validate(); err != nil {
		return nil, err
	}
	return &settings, nil
}

func (c *DatabaseConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("database config: field %s failed %q", verrs[0].Field(), verrs[0].Tag())
		}
		return fmt.Errorf("database config: %w", err)
	}
	return nil
}

func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
