package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Server holds all configuration for the MUD server.
type Server struct {
	// Network
	BindAddress string `yaml:"bind_address"`
	Port        int    `yaml:"port"`

	// World
	TickRate          int    `yaml:"tick_rate"`           // ticks per second
	MapsDir           string `yaml:"maps_dir"`            // room map JSON files
	WelcomeBanner     string `yaml:"welcome_banner"`      // sent after key exchange
	SyncIntervalTicks int    `yaml:"sync_interval_ticks"` // self-position sync sub-cadence
	WeatherPeriodSecs int    `yaml:"weather_period_secs"` // seconds between weather rolls

	// Transport
	StrictEncryption bool `yaml:"strict_encryption"` // drop undecryptable frames instead of cleartext fallback
	MaxFrameSize     int  `yaml:"max_frame_size"`
	SendQueueSize    int  `yaml:"send_queue_size"`

	// Logging
	LogLevel string `yaml:"log_level"`

	// Database
	Database DatabaseConfig `yaml:"database"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

const defaultBanner = "Welcome to Moonvale\n ,-,-.\n/.( +.\\\n\\ {. */\n `-`-'\n     Enjoy your stay ~"

// DefaultServer returns Server config with sensible defaults.
func DefaultServer() Server {
	return Server{
		BindAddress:       "0.0.0.0",
		Port:              42523,
		TickRate:          5,
		MapsDir:           "maps",
		WelcomeBanner:     defaultBanner,
		SyncIntervalTicks: 10,
		WeatherPeriodSecs: 300,
		StrictEncryption:  true,
		MaxFrameSize:      1 << 16,
		SendQueueSize:     256,
		LogLevel:          "info",
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "mud",
			Password: "mud",
			DBName:   "mud",
			SSLMode:  "disable",
		},
	}
}

// LoadServer loads server config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadServer(path string) (Server, error) {
	cfg := DefaultServer()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.TickRate <= 0 {
		return cfg, fmt.Errorf("config %s: tick_rate must be positive, got %d", path, cfg.TickRate)
	}

	return cfg, nil
}
