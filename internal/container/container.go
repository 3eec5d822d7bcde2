package container

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/garyjia/field-report/internal/application/port"
	"github.com/garyjia/field-report/internal/application/service"
	"github.com/garyjia/field-report/internal/infrastructure/persistence/sqldb"
	"github.com/garyjia/field-report/pkg/database"
)

// Container manages all application dependencies and lifecycle.
// It follows Clean Architecture principles with ordered initialization
// and reverse-order teardown.
type Container struct {
	config *Config
	logger *zap.Logger

	// Infrastructure - Data
	database     *database.DB
	db           *sqldb.DB
	repositories *RepositoryBundle

	// Infrastructure - Storage
	storage *StorageBundle

	// Infrastructure - Export lock
	lock *LockBundle

	// Infrastructure - Rendering
	render *RenderBundle

	// Infrastructure - External
	delivery port.DeliverySender

	// Application
	services *ServiceBundle

	// Lifecycle
	mu     sync.RWMutex
	ctx    context.Context
	cancel context.CancelFunc
	ready  atomic.Bool
	closed atomic.Bool
}

// RepositoryBundle groups all repositories for convenient access.
type RepositoryBundle struct {
	Document port.DocumentRepository
	Session  port.SessionRepository
}

// ServiceBundle groups all application services.
type ServiceBundle struct {
	Session  service.SessionService
	Export   service.ExportService
	Document service.DocumentService
}

// HealthStatus represents the health of all components.
type HealthStatus struct {
	Overall    bool                       `json:"overall"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents health of a single component.
type ComponentHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// NewContainer creates a new container from configuration.
// It does not initialize components - call Start() to initialize.
func NewContainer(cfg *Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Container{
		config: cfg,
		logger: logger,
	}, nil
}

// Start initializes all components.
// Components are initialized in dependency order:
// 1. Database and repositories
// 2. Template catalog and file storage
// 3. Export lock
// 4. Render pipeline
// 5. External delivery channel
// 6. Application services
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}

	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	c.ctx, c.cancel = context.WithCancel(ctx)
	c.logger.Info("Starting container initialization")

	steps := []struct {
		name string
		init func() error
	}{
		{"database", c.initDatabase},
		{"storage", c.initStorage},
		{"lock", c.initLock},
		{"render pipeline", c.initRender},
		{"delivery", c.initDelivery},
		{"services", c.initServices},
	}
	for _, step := range steps {
		if err := step.init(); err != nil {
			c.teardown()
			return fmt.Errorf("failed to initialize %s: %w", step.name, err)
		}
		c.logger.Info("Component initialized", zap.String("component", step.name))
	}

	c.ready.Store(true)
	c.logger.Info("Container started successfully")

	return nil
}

// Close gracefully shuts down all components in reverse order.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container already closed")
	}

	c.logger.Info("Closing container")
	errs := c.teardown()

	c.closed.Store(true)
	c.ready.Store(false)

	if len(errs) > 0 {
		c.logger.Error("Container closed with errors", zap.Int("error_count", len(errs)))
		return fmt.Errorf("container closed with %d errors", len(errs))
	}

	c.logger.Info("Container closed successfully")
	return nil
}

// teardown releases what Start acquired, newest first
func (c *Container) teardown() []error {
	var errs []error

	if c.cancel != nil {
		c.cancel()
	}

	// Services, delivery, render pipeline and storage hold no resources
	c.services = nil
	c.delivery = nil
	c.render = nil

	if c.lock != nil && c.lock.Close != nil {
		if err := c.lock.Close(); err != nil {
			c.logger.Error("Failed to close lock backend", zap.Error(err))
			errs = append(errs, fmt.Errorf("close lock: %w", err))
		} else {
			c.logger.Info("Lock backend closed")
		}
	}
	c.lock = nil

	if c.database != nil {
		if err := c.database.Close(); err != nil {
			c.logger.Error("Failed to close database", zap.Error(err))
			errs = append(errs, fmt.Errorf("close database: %w", err))
		} else {
			c.logger.Info("Database closed")
		}
	}
	c.database = nil
	c.db = nil

	return errs
}

// Ready returns true when all components are initialized.
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// Health returns health status of all components.
func (c *Container) Health(ctx context.Context) *HealthStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	status := &HealthStatus{
		Overall:    true,
		Components: make(map[string]ComponentHealth),
	}
	set := func(name string, err error) {
		if err != nil {
			status.Components[name] = ComponentHealth{Healthy: false, Message: err.Error()}
			status.Overall = false
			return
		}
		status.Components[name] = ComponentHealth{Healthy: true}
	}

	if c.database != nil {
		if err := c.database.PingContext(ctx); err != nil {
			set("database", fmt.Errorf("ping failed: %w", err))
		} else {
			set("database", nil)
		}
	} else {
		set("database", fmt.Errorf("not initialized"))
	}

	switch {
	case c.lock == nil:
		set("lock", fmt.Errorf("not initialized"))
	case c.lock.Ping != nil:
		set("lock", c.lock.Ping(ctx))
	default:
		set("lock", nil)
	}

	if c.services != nil {
		set("services", nil)
	} else {
		set("services", fmt.Errorf("not initialized"))
	}

	return status
}

// HealthErrors reports every component's health as an error value, nil when healthy.
func (c *Container) HealthErrors(ctx context.Context) map[string]error {
	out := make(map[string]error)
	for name, h := range c.Health(ctx).Components {
		if h.Healthy {
			out[name] = nil
			continue
		}
		out[name] = fmt.Errorf("%s", h.Message)
	}
	return out
}

func (c *Container) initDatabase() error {
	dbBundle, err := ProvideDatabase(&c.config.Database, c.logger)
	if err != nil {
		return err
	}
	c.database = dbBundle.DB
	c.db = dbBundle.TransactionMgr

	repos, err := ProvideRepositories(c.db, c.logger)
	if err != nil {
		return err
	}
	c.repositories = repos
	return nil
}

func (c *Container) initStorage() error {
	storageBundle, err := ProvideStorage(&c.config.Storage, c.logger)
	if err != nil {
		return err
	}
	c.storage = storageBundle
	return nil
}

func (c *Container) initLock() error {
	lockBundle, err := ProvideLock(c.ctx, &c.config.Lock, c.logger)
	if err != nil {
		return err
	}
	c.lock = lockBundle
	return nil
}

func (c *Container) initRender() error {
	renderBundle, err := ProvideRenderPipeline(&c.config.Render, &c.config.Export, c.logger)
	if err != nil {
		return err
	}
	c.render = renderBundle
	return nil
}

func (c *Container) initDelivery() error {
	sender, err := ProvideDeliverySender(&c.config.Lark, c.logger)
	if err != nil {
		return err
	}
	c.delivery = sender
	return nil
}

func (c *Container) initServices() error {
	services, err := ProvideServices(&ServiceDeps{
		Repos:     c.repositories,
		TxManager: c.db,
		Storage:   c.storage,
		Lock:      c.lock.Lock,
		Render:    c.render,
		Delivery:  c.delivery,
		ExportCfg: &c.config.Export,
		Logger:    c.logger,
	})
	if err != nil {
		return err
	}
	c.services = services
	return nil
}

// Getters for accessing container components

// DB returns the transaction manager.
func (c *Container) DB() port.TransactionManager {
	return c.db
}

// Repositories returns all repositories.
func (c *Container) Repositories() *RepositoryBundle {
	return c.repositories
}

// Templates returns the template catalog.
func (c *Container) Templates() port.TemplateCatalog {
	return c.storage.Catalog
}

// FileStorage returns the file storage.
func (c *Container) FileStorage() port.FileStorage {
	return c.storage.FileStorage
}

// FolderManager returns the folder manager.
func (c *Container) FolderManager() port.FolderManager {
	return c.storage.FolderManager
}

// Delivery returns the delivery channel, nil when disabled.
func (c *Container) Delivery() port.DeliverySender {
	return c.delivery
}

// Services returns all application services.
func (c *Container) Services() *ServiceBundle {
	return c.services
}

// Logger returns the container's logger.
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// ServiceLogger returns the logger adapted for the application and HTTP layers.
func (c *Container) ServiceLogger() service.Logger {
	return &zapLoggerAdapter{logger: c.logger}
}

// Config returns the container's configuration.
func (c *Container) Config() *Config {
	return c.config
}

// zapLoggerAdapter adapts zap.Logger to the service.Logger interface.
type zapLoggerAdapter struct {
	logger *zap.Logger
}

func (a *zapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Info(msg, convertToZapFields(keysAndValues...)...)
}

func (a *zapLoggerAdapter) Warn(msg string, keysAndValues ...interface{}) {
	a.logger.Warn(msg, convertToZapFields(keysAndValues...)...)
}

func (a *zapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Error(msg, convertToZapFields(keysAndValues...)...)
}

// convertToZapFields converts key-value pairs to zap fields.
func convertToZapFields(keysAndValues ...interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		if err, isErr := keysAndValues[i+1].(error); isErr {
			fields = append(fields, zap.NamedError(key, err))
			continue
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
