package container

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/field-report/internal/application/port"
	"github.com/garyjia/field-report/internal/application/service"
	"github.com/garyjia/field-report/internal/infrastructure/catalog"
	infraLark "github.com/garyjia/field-report/internal/infrastructure/external/lark"
	"github.com/garyjia/field-report/internal/infrastructure/lock"
	"github.com/garyjia/field-report/internal/infrastructure/pdf"
	"github.com/garyjia/field-report/internal/infrastructure/persistence/memory"
	"github.com/garyjia/field-report/internal/infrastructure/persistence/repository"
	"github.com/garyjia/field-report/internal/infrastructure/persistence/sqldb"
	"github.com/garyjia/field-report/internal/infrastructure/render"
	"github.com/garyjia/field-report/internal/infrastructure/sheet"
	"github.com/garyjia/field-report/internal/infrastructure/storage"
	"github.com/garyjia/field-report/pkg/database"
)

// DatabaseBundle holds database-related components.
type DatabaseBundle struct {
	DB             *database.DB
	TransactionMgr *sqldb.DB
}

// StorageBundle holds storage-related components.
type StorageBundle struct {
	Catalog       *catalog.Catalog
	FileStorage   port.FileStorage
	FolderManager port.FolderManager
}

// LockBundle holds the export lock and its optional close hook.
type LockBundle struct {
	Lock  port.SessionLock
	Ping  func(ctx context.Context) error
	Close func() error
}

// RenderBundle holds the document production pipeline.
type RenderBundle struct {
	Renderer  *render.Renderer
	Assembler *pdf.Assembler
	Previewer *pdf.Previewer
	Sheets    *sheet.Writer
	Inspector port.PhotoInspector
}

// ProvideDatabase opens the configured database and applies pending migrations.
// Migrations come from MigrationsDir when set and from the embedded set otherwise.
func ProvideDatabase(cfg *DatabaseConfig, logger *zap.Logger) (*DatabaseBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	db, err := database.New(database.Config{
		Driver:          cfg.Driver,
		Path:            cfg.Path,
		DSN:             cfg.DSN,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, err
	}

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.MigrationsDir); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DatabaseBundle{
		DB:             db,
		TransactionMgr: sqldb.NewDB(db, logger),
	}, nil
}

// ProvideRepositories creates the repositories backing the services.
func ProvideRepositories(db *sqldb.DB, logger *zap.Logger) (*RepositoryBundle, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &RepositoryBundle{
		Document: repository.NewDocumentRepository(db, logger),
		Session:  memory.NewSessionStore(),
	}, nil
}

// ProvideStorage creates the template catalog, file storage and folder manager.
func ProvideStorage(cfg *StorageConfig, logger *zap.Logger) (*StorageBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("storage config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	templates, err := catalog.Load(cfg.TemplatesDir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	return &StorageBundle{
		Catalog:       templates,
		FileStorage:   storage.NewLocalFileStorage(cfg.OutputDir, logger),
		FolderManager: storage.NewLocalFolderManager(cfg.OutputDir, logger),
	}, nil
}

// ProvideLock creates the export lock for the configured backend.
func ProvideLock(ctx context.Context, cfg *LockConfig, logger *zap.Logger) (*LockBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("lock config is required")
	}

	switch cfg.Backend {
	case "", "memory":
		return &LockBundle{Lock: lock.NewMemoryLock(cfg.TTL)}, nil
	case "redis":
		redisLock, err := lock.NewRedisLock(ctx, lock.RedisConfig{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
			TTL:      cfg.TTL,
		}, logger)
		if err != nil {
			return nil, err
		}
		return &LockBundle{Lock: redisLock, Ping: redisLock.Ping, Close: redisLock.Close}, nil
	default:
		return nil, fmt.Errorf("unsupported lock backend: %s", cfg.Backend)
	}
}

// ProvideRenderPipeline creates the renderer, assembler and side-output writers.
func ProvideRenderPipeline(cfg *RenderConfig, exportCfg *ExportConfig, logger *zap.Logger) (*RenderBundle, error) {
	if cfg == nil || exportCfg == nil {
		return nil, fmt.Errorf("render config is required")
	}

	renderer, err := render.NewRenderer(render.Config{
		DPI:         cfg.DPI,
		MarginMM:    cfg.MarginMM,
		JPEGQuality: cfg.JPEGQuality,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	bundle := &RenderBundle{
		Renderer:  renderer,
		Assembler: pdf.NewAssembler(renderer.Format(), logger),
		Inspector: render.PhotoInspector{MaxPixels: cfg.MaxPhotoPixels},
	}
	if exportCfg.Preview {
		bundle.Previewer = pdf.NewPreviewer(exportCfg.PreviewDPI, logger)
	}
	if exportCfg.FieldSheet {
		bundle.Sheets = sheet.NewWriter(logger)
	}
	return bundle, nil
}

// ProvideDeliverySender creates the Lark delivery channel. It returns nil when
// delivery is disabled.
func ProvideDeliverySender(cfg *LarkConfig, logger *zap.Logger) (port.DeliverySender, error) {
	if cfg == nil {
		return nil, fmt.Errorf("lark config is required")
	}
	if !cfg.Enabled {
		logger.Info("Lark delivery disabled")
		return nil, nil
	}

	sdkClient := infraLark.NewSDKClient(infraLark.Config{
		AppID:     cfg.AppID,
		AppSecret: cfg.AppSecret,
		Timeout:   cfg.APITimeout,
	}, logger)
	messenger := infraLark.NewMessenger(sdkClient, logger)
	return infraLark.NewSender(messenger, logger), nil
}

// ServiceDeps holds dependencies for creating services.
type ServiceDeps struct {
	Repos     *RepositoryBundle
	TxManager port.TransactionManager
	Storage   *StorageBundle
	Lock      port.SessionLock
	Render    *RenderBundle
	Delivery  port.DeliverySender
	ExportCfg *ExportConfig
	Logger    *zap.Logger
}

// ProvideServices creates all application services.
func ProvideServices(deps *ServiceDeps) (*ServiceBundle, error) {
	if deps == nil {
		return nil, fmt.Errorf("service dependencies are required")
	}
	if deps.Repos == nil || deps.Storage == nil || deps.Render == nil || deps.ExportCfg == nil {
		return nil, fmt.Errorf("repositories, storage, render pipeline and export config are required")
	}

	logger := &zapLoggerAdapter{logger: deps.Logger}

	exportDeps := service.ExportDeps{
		Renderer:  deps.Render.Renderer,
		Assembler: deps.Render.Assembler,
		Storage:   deps.Storage.FileStorage,
		Folders:   deps.Storage.FolderManager,
		Documents: deps.Repos.Document,
		TxManager: deps.TxManager,
		Delivery:  deps.Delivery,
		Lock:      deps.Lock,
	}
	// typed nils must not reach the service's nil checks
	if deps.Render.Previewer != nil {
		exportDeps.Previewer = deps.Render.Previewer
	}
	if deps.Render.Sheets != nil {
		exportDeps.Sheets = deps.Render.Sheets
	}

	return &ServiceBundle{
		Session: service.NewSessionService(deps.Repos.Session, deps.Storage.Catalog, deps.Render.Inspector, logger),
		Export: service.NewExportService(exportDeps, service.ExportOptions{
			Preview:         deps.ExportCfg.Preview,
			FieldSheet:      deps.ExportCfg.FieldSheet,
			DeliveryTimeout: deps.ExportCfg.DeliveryTimeout,
		}, logger),
		Document: service.NewDocumentService(
			deps.Repos.Document,
			deps.Storage.FileStorage,
			deps.Storage.FolderManager,
			deps.Delivery,
			deps.TxManager,
			logger,
		),
	}, nil
}
