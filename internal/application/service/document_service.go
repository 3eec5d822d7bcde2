package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/garyjia/field-report/internal/application/port"
	"github.com/garyjia/field-report/internal/domain/entity"
	"github.com/garyjia/field-report/internal/domain/report"
	"github.com/garyjia/field-report/internal/infrastructure/pdf"
)

// DocumentAsset selects one stored file of a document
type DocumentAsset string

const (
	AssetPDF     DocumentAsset = "pdf"
	AssetPreview DocumentAsset = "preview"
	AssetSheet   DocumentAsset = "sheet"
)

// DocumentService exposes generated documents
type DocumentService interface {
	List(ctx context.Context, limit, offset int) ([]*entity.DocumentRecord, error)
	ListBySession(ctx context.Context, sessionID string) ([]*entity.DocumentRecord, error)
	Get(ctx context.Context, id string) (*entity.DocumentRecord, error)
	ReadAsset(ctx context.Context, id string, asset DocumentAsset) (*entity.DocumentRecord, []byte, error)
	// Redeliver sends a stored document again. Unlike an export, a delivery failure is returned.
	Redeliver(ctx context.Context, id, address string) (*entity.DocumentRecord, error)
	Delete(ctx context.Context, id string) error
}

type documentServiceImpl struct {
	documents port.DocumentRepository
	storage   port.FileStorage
	folders   port.FolderManager
	delivery  port.DeliverySender
	txManager port.TransactionManager
	logger    Logger
	now       func() time.Time
}

// NewDocumentService creates a new DocumentService. delivery may be nil.
func NewDocumentService(
	documents port.DocumentRepository,
	storage port.FileStorage,
	folders port.FolderManager,
	delivery port.DeliverySender,
	txManager port.TransactionManager,
	logger Logger,
) DocumentService {
	return &documentServiceImpl{
		documents: documents,
		storage:   storage,
		folders:   folders,
		delivery:  delivery,
		txManager: txManager,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *documentServiceImpl) List(ctx context.Context, limit, offset int) ([]*entity.DocumentRecord, error) {
	docs, err := s.documents.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

func (s *documentServiceImpl) ListBySession(ctx context.Context, sessionID string) ([]*entity.DocumentRecord, error) {
	docs, err := s.documents.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list session documents: %w", err)
	}
	return docs, nil
}

func (s *documentServiceImpl) Get(ctx context.Context, id string) (*entity.DocumentRecord, error) {
	doc, err := s.documents.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	if doc == nil {
		return nil, ErrDocumentNotFound
	}
	return doc, nil
}

func (s *documentServiceImpl) ReadAsset(ctx context.Context, id string, asset DocumentAsset) (*entity.DocumentRecord, []byte, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	var p string
	switch asset {
	case AssetPDF:
		p = doc.FilePath
	case AssetPreview:
		p = doc.PreviewPath
	case AssetSheet:
		p = doc.SheetPath
	default:
		return nil, nil, fmt.Errorf("unknown document asset: %s", asset)
	}
	if p == "" || !s.storage.Exists(ctx, p) {
		return doc, nil, ErrFileUnavailable
	}

	data, err := s.storage.Read(ctx, p)
	if err != nil {
		s.logger.Error("Failed to read document asset", "error", err, "document_id", id, "asset", string(asset))
		return doc, nil, fmt.Errorf("read document asset: %w", err)
	}
	return doc, data, nil
}

func (s *documentServiceImpl) Redeliver(ctx context.Context, id, address string) (*entity.DocumentRecord, error) {
	if s.delivery == nil {
		return nil, ErrDeliveryUnavailable
	}
	address = strings.TrimSpace(address)
	doc, data, err := s.ReadAsset(ctx, id, AssetPDF)
	if err != nil {
		return nil, err
	}
	if address == "" {
		address = doc.DeliveryAddress
	}
	if address == "" {
		return nil, &report.ValidationError{Field: "address", Message: "is required"}
	}

	update := port.DeliveryUpdate{Address: address}
	deliverErr := s.delivery.Deliver(ctx, port.DeliveryRequest{
		Address:     address,
		DataURI:     pdf.EncodeDataURI(data),
		DisplayName: doc.Filename,
	})
	if deliverErr != nil {
		update.Status = entity.DocumentStatusDeliveryFailed
		update.Error = deliverErr.Error()
		s.logger.Warn("Redelivery failed", "document_id", id, "address", address, "error", deliverErr)
	} else {
		deliveredAt := s.now()
		update.Status = entity.DocumentStatusDelivered
		update.DeliveredAt = &deliveredAt
		s.logger.Info("Document redelivered", "document_id", id, "address", address)
	}

	if err := s.documents.UpdateDelivery(ctx, id, update); err != nil {
		s.logger.Error("Failed to update delivery status", "error", err, "document_id", id)
		return nil, fmt.Errorf("update delivery status: %w", err)
	}

	doc.Status = update.Status
	doc.DeliveryAddress = update.Address
	doc.DeliveryError = update.Error
	doc.DeliveredAt = update.DeliveredAt

	if deliverErr != nil {
		return doc, &report.DeliveryError{Address: address, Err: deliverErr}
	}
	return doc, nil
}

// Delete removes the record first, then the stored files. A leftover folder is only logged.
func (s *documentServiceImpl) Delete(ctx context.Context, id string) error {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		return s.documents.Delete(ctx, id)
	})
	if err != nil {
		s.logger.Error("Failed to delete document", "error", err, "document_id", id)
		return fmt.Errorf("delete document: %w", err)
	}

	folder := s.folders.DocumentFolder(doc.ID, doc.GeneratedAt)
	if err := s.folders.Delete(ctx, folder); err != nil {
		s.logger.Warn("Failed to delete document folder", "error", err, "document_id", id, "folder", folder)
	}

	s.logger.Info("Document deleted", "document_id", id)
	return nil
}
