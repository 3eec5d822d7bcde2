package port

import (
	"context"

	"github.com/garyjia/field-report/internal/domain/entity"
)

// DeliveryRequest is one document handed to the delivery side channel
type DeliveryRequest struct {
	Address     string
	DataURI     string
	DisplayName string
}

// DeliverySender dispatches a finished document to an address
type DeliverySender interface {
	Deliver(ctx context.Context, req DeliveryRequest) error
}

// TemplateCatalog provides the read-only templates
type TemplateCatalog interface {
	List(ctx context.Context) ([]*entity.Template, error)
	Get(ctx context.Context, id string) (*entity.Template, error)
}

// SessionLock guards a key against concurrent holders
type SessionLock interface {
	Acquire(ctx context.Context, key string) (func(ctx context.Context) error, error)
}

// PhotoInspector validates uploaded photo payloads
type PhotoInspector interface {
	Inspect(data []byte) (entity.PhotoInfo, error)
}
