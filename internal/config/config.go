package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"frontdesk/internal/availability"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when FRONTDESK_CONFIG is unset.
const DefaultPath = "configs/config.yaml"

type Config struct {
	Server     ServerConfig           `yaml:"server"`
	Hotel      HotelConfig            `yaml:"hotel"`
	Database   DatabaseConfig         `yaml:"database"`
	Backup     BackupConfig           `yaml:"backup"`
	Redis      RedisConfig            `yaml:"redis"`
	Google     GoogleConfig           `yaml:"google"`
	Kitchen    KitchenConfig          `yaml:"kitchen"`
	Rates      RatesConfig            `yaml:"rates"`
	Monitoring MonitoringConfig       `yaml:"monitoring"`
	Logging    LoggingConfig          `yaml:"logging"`
	Mappings   []availability.Mapping `yaml:"ota_mappings"`
}

type ServerConfig struct {
	Port         int    `yaml:"port"`
	APIKey       string `yaml:"api_key"`
	MaxRangeDays int    `yaml:"max_range_days"`
}

type HotelConfig struct {
	Name         string `yaml:"name"`
	Timezone     string `yaml:"timezone"`
	CalendarDays int    `yaml:"calendar_days"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	IntervalHours int    `yaml:"interval_hours"`
	StoragePath   string `yaml:"storage_path"`
	RetentionDays int    `yaml:"retention_days"`
}

type RedisConfig struct {
	Address         string `yaml:"address"`
	Password        string `yaml:"password"`
	DB              int    `yaml:"db"`
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
}

type GoogleConfig struct {
	Enabled         bool   `yaml:"enabled"`
	CredentialsFile string `yaml:"credentials_file"`
	SpreadsheetID   string `yaml:"spreadsheet_id"`
}

type KitchenConfig struct {
	// Channel is "discord", "telegram" or empty to disable.
	Channel        string  `yaml:"channel"`
	DiscordWebhook string  `yaml:"discord_webhook"`
	DiscordMention string  `yaml:"discord_mention"`
	TelegramToken  string  `yaml:"telegram_token"`
	TelegramChatID int64   `yaml:"telegram_chat_id"`
	RatePerSecond  float64 `yaml:"rate_per_second"`
	Burst          int     `yaml:"burst"`
	MaxRetries     int     `yaml:"max_retries"`
}

type RatesConfig struct {
	HotelCode string `yaml:"hotel_code"`
	// Endpoint empty keeps pushes as dry runs.
	Endpoint string `yaml:"endpoint"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
	HealthCheckPort   int  `yaml:"health_check_port"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Load reads .env if present, then the YAML file with ${ENV} placeholders
// expanded, and fills defaults.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	if path == "" {
		path = os.Getenv("FRONTDESK_CONFIG")
	}
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.applyDefaults()

	if err = os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.MaxRangeDays <= 0 {
		c.Server.MaxRangeDays = 366
	}
	if c.Hotel.Timezone == "" {
		c.Hotel.Timezone = "Asia/Kolkata"
	}
	if c.Hotel.CalendarDays <= 0 {
		c.Hotel.CalendarDays = 30
	}
	if c.Database.Path == "" {
		c.Database.Path = "data/frontdesk.db"
	}
	if c.Backup.IntervalHours <= 0 {
		c.Backup.IntervalHours = 24
	}
	if c.Backup.StoragePath == "" {
		c.Backup.StoragePath = "data/backups"
	}
	if c.Redis.CacheTTLSeconds <= 0 {
		c.Redis.CacheTTLSeconds = 300
	}
	if c.Kitchen.RatePerSecond <= 0 {
		c.Kitchen.RatePerSecond = 1
	}
	if c.Kitchen.Burst <= 0 {
		c.Kitchen.Burst = 5
	}
	if c.Kitchen.MaxRetries < 0 {
		c.Kitchen.MaxRetries = 0
	}
	if c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Monitoring.HealthCheckPort == 0 {
		c.Monitoring.HealthCheckPort = 8090
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate checks settings that would fail at runtime.
func (c *Config) Validate() error {
	var errs []error
	if _, err := time.LoadLocation(c.Hotel.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("hotel.timezone: %w", err))
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port: %d out of range", c.Server.Port))
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == c.Server.Port {
		errs = append(errs, errors.New("monitoring.prometheus_port must differ from server.port"))
	}
	switch c.Kitchen.Channel {
	case "":
	case "discord":
		if c.Kitchen.DiscordWebhook == "" {
			errs = append(errs, errors.New("kitchen.discord_webhook is required for the discord channel"))
		}
	case "telegram":
		if c.Kitchen.TelegramToken == "" || c.Kitchen.TelegramChatID == 0 {
			errs = append(errs, errors.New("kitchen.telegram_token and kitchen.telegram_chat_id are required for the telegram channel"))
		}
	default:
		errs = append(errs, fmt.Errorf("kitchen.channel: unknown channel %q", c.Kitchen.Channel))
	}
	if c.Google.Enabled && (c.Google.CredentialsFile == "" || c.Google.SpreadsheetID == "") {
		errs = append(errs, errors.New("google.credentials_file and google.spreadsheet_id are required when google is enabled"))
	}
	for _, m := range c.Mappings {
		if err := m.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Location resolves the hotel time zone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Hotel.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// CacheTTL is the availability cache lifetime.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Redis.CacheTTLSeconds) * time.Second
}

// OTAMappings returns the built-in channel mappings overlaid with
// configured ones.
func (c *Config) OTAMappings() []availability.Mapping {
	return availability.MergeMappings(availability.BuiltinMappings(), c.Mappings)
}
