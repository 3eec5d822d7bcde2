package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "data/field-report.db", cfg.Database.Path)
	assert.Equal(t, 150, cfg.Render.DPI)
	assert.Equal(t, 92, cfg.Render.JPEGQuality)
	assert.Equal(t, 12.0, cfg.Render.MarginMM)
	assert.Equal(t, 50_000_000, cfg.Render.MaxPhotoPixels)
	assert.Equal(t, LockBackendMemory, cfg.Lock.Backend)
	assert.Equal(t, 2*time.Minute, cfg.Lock.TTL)
	assert.True(t, cfg.Export.Preview)
	assert.False(t, cfg.Lark.Enabled)
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
  read_timeout: 10s
database:
  driver: mysql
lark:
  enabled: true
render:
  dpi: 200
lock:
  backend: redis
  addr: redis:6379
  ttl: 90s
`)
	t.Setenv("LARK_APP_ID", "cli_test")
	t.Setenv("LARK_APP_SECRET", "secret")
	t.Setenv("DATABASE_DSN", "user:pass@tcp(db:3306)/reports?parseTime=true")
	t.Setenv("REDIS_PASSWORD", "hunter2")
	t.Setenv("EXPORT_OUTPUT_DIR", "/var/reports")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, DriverMySQL, cfg.Database.Driver)
	assert.Equal(t, "user:pass@tcp(db:3306)/reports?parseTime=true", cfg.Database.DSN)
	assert.Equal(t, "cli_test", cfg.Lark.AppID)
	assert.Equal(t, "secret", cfg.Lark.AppSecret)
	assert.Equal(t, 200, cfg.Render.DPI)
	assert.Equal(t, "redis:6379", cfg.Lock.Addr)
	assert.Equal(t, "hunter2", cfg.Lock.Password)
	assert.Equal(t, 90*time.Second, cfg.Lock.TTL)
	assert.Equal(t, "/var/reports", cfg.Export.OutputDir)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidConfiguration(t *testing.T) {
	path := writeConfig(t, "lark:\n  enabled: true\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lark.app_id")
}

func validConfig() Config {
	return Config{
		Server:   ServerConfig{Port: 8080},
		Database: DatabaseConfig{Driver: DriverSQLite, Path: "data/test.db"},
		Render:   RenderConfig{DPI: 150, MarginMM: 12, JPEGQuality: 92},
		Export:   ExportConfig{OutputDir: "out"},
		Lock:     LockConfig{Backend: LockBackendMemory},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"unknown driver", func(c *Config) { c.Database.Driver = "oracle" }, "database.driver"},
		{"sqlite without path", func(c *Config) { c.Database.Path = "" }, "database.path"},
		{"pgx without dsn", func(c *Config) { c.Database.Driver = DriverPostgres }, "database.dsn"},
		{"lark without secret", func(c *Config) {
			c.Lark = LarkConfig{Enabled: true, AppID: "cli"}
		}, "lark.app_secret"},
		{"dpi too low", func(c *Config) { c.Render.DPI = 30 }, "render.dpi"},
		{"jpeg quality", func(c *Config) { c.Render.JPEGQuality = 101 }, "render.jpeg_quality"},
		{"negative margin", func(c *Config) { c.Render.MarginMM = -1 }, "render.margin_mm"},
		{"negative photo pixels", func(c *Config) { c.Render.MaxPhotoPixels = -1 }, "render.max_photo_pixels"},
		{"no output dir", func(c *Config) { c.Export.OutputDir = "" }, "export.output_dir"},
		{"redis without addr", func(c *Config) { c.Lock.Backend = LockBackendRedis }, "lock.addr"},
		{"unknown lock", func(c *Config) { c.Lock.Backend = "etcd" }, "lock.backend"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	assert.NoError(t, loadEnvFile(filepath.Join(t.TempDir(), ".env")))

	p := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(p, []byte("FIELD_REPORT_TEST_TOKEN=from-file\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("FIELD_REPORT_TEST_TOKEN") })

	require.NoError(t, loadEnvFile(p))
	assert.Equal(t, "from-file", os.Getenv("FIELD_REPORT_TEST_TOKEN"))
}

func TestToContainerConfig(t *testing.T) {
	cfg := validConfig()
	cfg.Export.TemplatesDir = "templates"
	cfg.Export.Preview = true
	cfg.Lock = LockConfig{Backend: LockBackendRedis, Addr: "redis:6379", DB: 2, TTL: time.Minute}
	cfg.Server.MaxPhotoBytes = 1024
	cfg.Render.MaxPhotoPixels = 4_000_000

	cc := cfg.ToContainerConfig()
	assert.Equal(t, "out", cc.Storage.OutputDir)
	assert.Equal(t, "templates", cc.Storage.TemplatesDir)
	assert.True(t, cc.Export.Preview)
	assert.Equal(t, 150, cc.Render.DPI)
	assert.Equal(t, 4_000_000, cc.Render.MaxPhotoPixels)
	assert.Equal(t, "redis:6379", cc.Lock.Addr)
	assert.Equal(t, 2, cc.Lock.DB)
	assert.Equal(t, int64(1024), cc.Server.MaxPhotoBytes)
	assert.Equal(t, DriverSQLite, cc.Database.Driver)
}
