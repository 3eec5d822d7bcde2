package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Database drivers accepted in database.driver
const (
	DriverSQLite   = "sqlite3"
	DriverMySQL    = "mysql"
	DriverPostgres = "pgx"
)

// Lock backends accepted in lock.backend
const (
	LockBackendMemory = "memory"
	LockBackendRedis  = "redis"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Lark     LarkConfig     `mapstructure:"lark"`
	Render   RenderConfig   `mapstructure:"render"`
	Export   ExportConfig   `mapstructure:"export"`
	Lock     LockConfig     `mapstructure:"lock"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host          string        `mapstructure:"host"`
	Port          int           `mapstructure:"port"`
	ReadTimeout   time.Duration `mapstructure:"read_timeout"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
	MaxPhotoBytes int64         `mapstructure:"max_photo_bytes"`
}

// DatabaseConfig holds database configuration.
// MySQL DSNs need parseTime=true so timestamps scan into time.Time.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Path            string        `mapstructure:"path"`
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
}

// LarkConfig holds Lark API configuration for document delivery
type LarkConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	AppID      string        `mapstructure:"app_id"`
	AppSecret  string        `mapstructure:"app_secret"`
	APITimeout time.Duration `mapstructure:"api_timeout"`
}

// RenderConfig holds page rasterization settings
type RenderConfig struct {
	DPI         int     `mapstructure:"dpi"`
	MarginMM    float64 `mapstructure:"margin_mm"`
	JPEGQuality int     `mapstructure:"jpeg_quality"`
	// MaxPhotoPixels caps width*height of an uploaded photo; 0 uses the renderer default
	MaxPhotoPixels int `mapstructure:"max_photo_pixels"`
}

// ExportConfig holds export output settings
type ExportConfig struct {
	OutputDir       string        `mapstructure:"output_dir"`
	TemplatesDir    string        `mapstructure:"templates_dir"`
	Preview         bool          `mapstructure:"preview"`
	PreviewDPI      float64       `mapstructure:"preview_dpi"`
	FieldSheet      bool          `mapstructure:"field_sheet"`
	DeliveryTimeout time.Duration `mapstructure:"delivery_timeout"`
}

// LockConfig holds export lock settings
type LockConfig struct {
	Backend  string        `mapstructure:"backend"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables.
// A .env file next to the working directory is applied first when present.
// An empty configPath runs on defaults and environment only.
func Load(configPath string) (*Config, error) {
	if err := loadEnvFile(".env"); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := bindEnvVars(v); err != nil {
		return nil, fmt.Errorf("failed to bind environment: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile applies a dotenv file without overriding variables already set
func loadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := gotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 2*time.Minute)
	v.SetDefault("server.max_photo_bytes", 20<<20)

	// Database defaults
	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.path", "data/field-report.db")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("database.migrations_dir", "")

	// Lark defaults
	v.SetDefault("lark.enabled", false)
	v.SetDefault("lark.api_timeout", 30*time.Second)

	// Render defaults
	v.SetDefault("render.dpi", 150)
	v.SetDefault("render.margin_mm", 12.0)
	v.SetDefault("render.jpeg_quality", 92)
	v.SetDefault("render.max_photo_pixels", 50_000_000)

	// Export defaults
	v.SetDefault("export.output_dir", "generated_reports")
	v.SetDefault("export.templates_dir", "templates")
	v.SetDefault("export.preview", true)
	v.SetDefault("export.preview_dpi", 36.0)
	v.SetDefault("export.field_sheet", true)
	v.SetDefault("export.delivery_timeout", 30*time.Second)

	// Lock defaults
	v.SetDefault("lock.backend", LockBackendMemory)
	v.SetDefault("lock.addr", "localhost:6379")
	v.SetDefault("lock.db", 0)
	v.SetDefault("lock.ttl", 2*time.Minute)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars(v *viper.Viper) error {
	// Sensitive credentials from environment
	bindings := map[string]string{
		"lark.app_id":     "LARK_APP_ID",
		"lark.app_secret": "LARK_APP_SECRET",
		"database.dsn":    "DATABASE_DSN",
		"lock.password":   "REDIS_PASSWORD",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return err
		}
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}

	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for %s", DriverSQLite)
		}
	case DriverMySQL, DriverPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for %s", c.Database.Driver)
		}
	default:
		return fmt.Errorf("unsupported database.driver: %q", c.Database.Driver)
	}

	if c.Lark.Enabled {
		if c.Lark.AppID == "" {
			return fmt.Errorf("lark.app_id is required when lark is enabled")
		}
		if c.Lark.AppSecret == "" {
			return fmt.Errorf("lark.app_secret is required when lark is enabled")
		}
	}

	if c.Render.DPI < 72 || c.Render.DPI > 600 {
		return fmt.Errorf("render.dpi must be between 72 and 600")
	}
	if c.Render.JPEGQuality < 1 || c.Render.JPEGQuality > 100 {
		return fmt.Errorf("render.jpeg_quality must be between 1 and 100")
	}
	if c.Render.MarginMM < 0 || c.Render.MarginMM > 50 {
		return fmt.Errorf("render.margin_mm must be between 0 and 50")
	}
	if c.Render.MaxPhotoPixels < 0 {
		return fmt.Errorf("render.max_photo_pixels must not be negative")
	}

	if c.Export.OutputDir == "" {
		return fmt.Errorf("export.output_dir is required")
	}

	switch c.Lock.Backend {
	case LockBackendMemory:
	case LockBackendRedis:
		if c.Lock.Addr == "" {
			return fmt.Errorf("lock.addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unsupported lock.backend: %q", c.Lock.Backend)
	}

	return nil
}
