package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/field-report/internal/application/port"
	"github.com/garyjia/field-report/internal/application/service"
	"github.com/garyjia/field-report/internal/domain/report"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// Handlers contains all HTTP request handlers
type Handlers struct {
	templates     port.TemplateCatalog
	sessions      service.SessionService
	exports       service.ExportService
	documents     service.DocumentService
	health        HealthFunc
	maxPhotoBytes int64
	logger        Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(services Services, maxPhotoBytes int64, logger Logger) *Handlers {
	return &Handlers{
		templates:     services.Templates,
		sessions:      services.Sessions,
		exports:       services.Exports,
		documents:     services.Documents,
		health:        services.Health,
		maxPhotoBytes: maxPhotoBytes,
		logger:        logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status     string            `json:"status"`
	Timestamp  string            `json:"timestamp"`
	Version    string            `json:"version"`
	Components map[string]string `json:"components,omitempty"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   Version,
	}

	status := http.StatusOK
	if h.health != nil {
		response.Components = make(map[string]string)
		for name, err := range h.health(c.Request.Context()) {
			if err != nil {
				response.Components[name] = err.Error()
				response.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			response.Components[name] = "ok"
		}
	}

	c.JSON(status, Response{
		Success: status == http.StatusOK,
		Data:    response,
	})
}

// statusFor maps service errors onto HTTP status codes
func statusFor(err error) int {
	var (
		validationErr *report.ValidationError
		deliveryErr   *report.DeliveryError
	)
	switch {
	case errors.As(err, &validationErr),
		errors.Is(err, service.ErrPhotoLimitExceeded),
		errors.Is(err, service.ErrInvalidPhoto):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrExportInProgress):
		return http.StatusConflict
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrDocumentNotFound),
		errors.Is(err, service.ErrPhotoNotFound),
		errors.Is(err, service.ErrFileUnavailable),
		errors.Is(err, port.ErrTemplateNotFound):
		return http.StatusNotFound
	case errors.As(err, &deliveryErr):
		return http.StatusBadGateway
	case errors.Is(err, service.ErrDeliveryUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as a JSON error response. Server-side failures are logged.
func (h *Handlers) fail(c *gin.Context, err error, keysAndValues ...interface{}) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", append([]interface{}{"error", err, "path", c.Request.URL.Path}, keysAndValues...)...)
	}
	c.JSON(status, Response{
		Success: false,
		Error:   err.Error(),
	})
}

func (h *Handlers) badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{
		Success: false,
		Error:   msg,
	})
}

func ok(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{
		Success: true,
		Data:    data,
	})
}

// formatTime renders t as RFC3339 in UTC, or "" for the zero time
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
