package config

import (
	"github.com/garyjia/field-report/internal/container"
)

// ToContainerConfig converts the application Config to a container.Config.
// This provides a bridge between the file-based config loaded by viper
// and the container's configuration structure.
func (c *Config) ToContainerConfig() *container.Config {
	return &container.Config{
		Database: container.DatabaseConfig{
			Driver:          c.Database.Driver,
			Path:            c.Database.Path,
			DSN:             c.Database.DSN,
			MaxOpenConns:    c.Database.MaxOpenConns,
			MaxIdleConns:    c.Database.MaxIdleConns,
			ConnMaxLifetime: c.Database.ConnMaxLifetime,
			MigrationsDir:   c.Database.MigrationsDir,
		},
		Lark: container.LarkConfig{
			Enabled:    c.Lark.Enabled,
			AppID:      c.Lark.AppID,
			AppSecret:  c.Lark.AppSecret,
			APITimeout: c.Lark.APITimeout,
		},
		Render: container.RenderConfig{
			DPI:         c.Render.DPI,
			MarginMM:    c.Render.MarginMM,
			JPEGQuality:    c.Render.JPEGQuality,
			MaxPhotoPixels: c.Render.MaxPhotoPixels,
		},
		Storage: container.StorageConfig{
			OutputDir:    c.Export.OutputDir,
			TemplatesDir: c.Export.TemplatesDir,
		},
		Export: container.ExportConfig{
			Preview:         c.Export.Preview,
			PreviewDPI:      c.Export.PreviewDPI,
			FieldSheet:      c.Export.FieldSheet,
			DeliveryTimeout: c.Export.DeliveryTimeout,
		},
		Lock: container.LockConfig{
			Backend:  c.Lock.Backend,
			Addr:     c.Lock.Addr,
			Password: c.Lock.Password,
			DB:       c.Lock.DB,
			TTL:      c.Lock.TTL,
		},
		Server: container.ServerConfig{
			Host:          c.Server.Host,
			Port:          c.Server.Port,
			ReadTimeout:   c.Server.ReadTimeout,
			WriteTimeout:  c.Server.WriteTimeout,
			MaxPhotoBytes: c.Server.MaxPhotoBytes,
		},
	}
}
