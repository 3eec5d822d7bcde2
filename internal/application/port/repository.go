package port

import (
	"context"
	"time"

	"github.com/garyjia/field-report/internal/domain/entity"
)

// DocumentRepository defines persistence operations for generated document records
type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.DocumentRecord) error
	GetByID(ctx context.Context, id string) (*entity.DocumentRecord, error)
	List(ctx context.Context, limit, offset int) ([]*entity.DocumentRecord, error)
	ListBySession(ctx context.Context, sessionID string) ([]*entity.DocumentRecord, error)
	UpdateDelivery(ctx context.Context, id string, update DeliveryUpdate) error
	Delete(ctx context.Context, id string) error
}

// DeliveryUpdate is the outcome of one delivery attempt
type DeliveryUpdate struct {
	Status      string
	Address     string
	Error       string
	DeliveredAt *time.Time
}

// SessionRepository holds in-progress sessions
type SessionRepository interface {
	Save(ctx context.Context, session *entity.Session) error
	Get(ctx context.Context, id string) (*entity.Session, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*entity.Session, error)
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
