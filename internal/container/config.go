// Package container provides dependency injection and lifecycle management
// for the field report service following Clean Architecture principles.
package container

import (
	"fmt"
	"time"
)

// Config holds all configuration for the Container.
// It aggregates configurations for all subsystems.
type Config struct {
	// Database configuration
	Database DatabaseConfig

	// Lark delivery configuration
	Lark LarkConfig

	// Page rasterization configuration
	Render RenderConfig

	// Storage configuration
	Storage StorageConfig

	// Export side outputs
	Export ExportConfig

	// Export lock configuration
	Lock LockConfig

	// Server configuration
	Server ServerConfig
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// Driver is one of sqlite3, mysql or pgx
	Driver string

	// Path to SQLite database file
	Path string

	// DSN for mysql and pgx
	DSN string

	// MaxOpenConns is the maximum number of open connections
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections
	MaxIdleConns int

	// ConnMaxLifetime is the maximum connection lifetime
	ConnMaxLifetime time.Duration

	// MigrationsDir overrides the embedded migrations when set
	MigrationsDir string
}

// LarkConfig holds Lark API settings.
type LarkConfig struct {
	// Enabled turns on document delivery through Lark
	Enabled bool

	// AppID is the Lark application ID
	AppID string

	// AppSecret is the Lark application secret
	AppSecret string

	// APITimeout is the timeout for API calls
	APITimeout time.Duration
}

// RenderConfig holds page rasterization settings.
type RenderConfig struct {
	DPI         int
	MarginMM    float64
	JPEGQuality int
	// MaxPhotoPixels bounds uploaded photos; 0 uses render.DefaultMaxPhotoPixels
	MaxPhotoPixels int
}

// StorageConfig holds file storage settings.
type StorageConfig struct {
	// OutputDir is the root under which document folders are created
	OutputDir string

	// TemplatesDir holds template YAML files layered over the built-in ones
	TemplatesDir string
}

// ExportConfig toggles the optional outputs of an export.
type ExportConfig struct {
	Preview         bool
	PreviewDPI      float64
	FieldSheet      bool
	DeliveryTimeout time.Duration
}

// LockConfig holds export lock settings.
type LockConfig struct {
	// Backend is memory or redis
	Backend  string
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host to bind to
	Host string

	// Port to listen on
	Port int

	// ReadTimeout for HTTP server
	ReadTimeout time.Duration

	// WriteTimeout for HTTP server
	WriteTimeout time.Duration

	// MaxPhotoBytes caps one uploaded photo
	MaxPhotoBytes int64
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:          "sqlite3",
			Path:            "data/field-report.db",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Lark: LarkConfig{
			APITimeout: 30 * time.Second,
		},
		Render: RenderConfig{
			DPI:         150,
			MarginMM:    12,
			JPEGQuality:    92,
			MaxPhotoPixels: 50_000_000,
		},
		Storage: StorageConfig{
			OutputDir:    "generated_reports",
			TemplatesDir: "templates",
		},
		Export: ExportConfig{
			Preview:         true,
			FieldSheet:      true,
			DeliveryTimeout: 30 * time.Second,
		},
		Lock: LockConfig{
			Backend: "memory",
			TTL:     2 * time.Minute,
		},
		Server: ServerConfig{
			Host:          "0.0.0.0",
			Port:          8080,
			ReadTimeout:   30 * time.Second,
			WriteTimeout:  2 * time.Minute,
			MaxPhotoBytes: 20 << 20,
		},
	}
}

// Validate checks that required configuration values are present.
func (c *Config) Validate() error {
	if c.Lark.Enabled {
		if c.Lark.AppID == "" {
			return fmt.Errorf("lark.app_id is required")
		}
		if c.Lark.AppSecret == "" {
			return fmt.Errorf("lark.app_secret is required")
		}
	}

	if c.Storage.OutputDir == "" {
		return fmt.Errorf("storage.output_dir is required")
	}

	if c.Lock.Backend == "redis" && c.Lock.Addr == "" {
		return fmt.Errorf("lock.addr is required for the redis backend")
	}

	return nil
}
