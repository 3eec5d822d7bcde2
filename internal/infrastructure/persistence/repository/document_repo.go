package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/field-report/internal/application/port"
	"github.com/garyjia/field-report/internal/domain/entity"
	"github.com/garyjia/field-report/internal/infrastructure/persistence/sqldb"
)

const documentColumns = `
	id, session_id, template_id, title, filename, file_path, preview_path, sheet_path,
	page_count, size_bytes, field_snapshot, notes, status, delivery_address,
	COALESCE(delivery_error, ''), delivered_at, generated_at, created_at`

// DocumentRepository implements port.DocumentRepository
type DocumentRepository struct {
	db     *sqldb.DB
	logger *zap.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *sqldb.DB, logger *zap.Logger) port.DocumentRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores the document row and its photo references. Both writes share one
// transaction; a caller-provided transaction in ctx is reused.
func (r *DocumentRepository) Create(ctx context.Context, doc *entity.DocumentRecord) error {
	snapshot, err := json.Marshal(doc.FieldSnapshot)
	if err != nil {
		return fmt.Errorf("failed to encode field snapshot: %w", err)
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	return r.db.WithTransaction(ctx, func(ctx context.Context) error {
		query := r.db.Rebind(`
			INSERT INTO documents (
				id, session_id, template_id, title, filename, file_path, preview_path, sheet_path,
				page_count, size_bytes, field_snapshot, notes, status, delivery_address,
				delivery_error, delivered_at, generated_at, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)

		_, err := r.db.Executor(ctx).ExecContext(ctx, query,
			doc.ID,
			doc.SessionID,
			doc.TemplateID,
			doc.Title,
			doc.Filename,
			doc.FilePath,
			doc.PreviewPath,
			doc.SheetPath,
			doc.PageCount,
			doc.SizeBytes,
			string(snapshot),
			doc.Notes,
			doc.Status,
			doc.DeliveryAddress,
			nullString(doc.DeliveryError),
			nullTime(doc.DeliveredAt),
			doc.GeneratedAt.UTC(),
			doc.CreatedAt.UTC(),
		)
		if err != nil {
			r.logger.Error("Failed to create document",
				zap.String("id", doc.ID),
				zap.Error(err))
			return fmt.Errorf("failed to create document: %w", err)
		}

		photoQuery := r.db.Rebind(`
			INSERT INTO document_photos (document_id, position, photo_id, file_name, captured_at)
			VALUES (?, ?, ?, ?, ?)
		`)
		for i, p := range doc.Photos {
			var capturedAt *time.Time
			if !p.CapturedAt.IsZero() {
				capturedAt = &p.CapturedAt
			}
			if _, err := r.db.Executor(ctx).ExecContext(ctx, photoQuery,
				doc.ID, i, p.ID, p.FileName, nullTime(capturedAt)); err != nil {
				r.logger.Error("Failed to create document photo",
					zap.String("document_id", doc.ID),
					zap.Int("position", i),
					zap.Error(err))
				return fmt.Errorf("failed to create document photo: %w", err)
			}
		}
		return nil
	})
}

// GetByID retrieves a document by its ID. A missing document is (nil, nil).
func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*entity.DocumentRecord, error) {
	query := r.db.Rebind(`SELECT ` + documentColumns + ` FROM documents WHERE id = ?`)

	doc, err := scanDocument(r.db.Executor(ctx).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get document by ID",
			zap.String("id", id),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	photos, err := r.loadPhotos(ctx, []string{doc.ID})
	if err != nil {
		return nil, err
	}
	doc.Photos = photos[doc.ID]
	return doc, nil
}

// List returns documents newest first
func (r *DocumentRepository) List(ctx context.Context, limit, offset int) ([]*entity.DocumentRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query := r.db.Rebind(`SELECT ` + documentColumns + `
		FROM documents
		ORDER BY created_at DESC, id ASC
		LIMIT ? OFFSET ?`)
	return r.queryDocuments(ctx, query, limit, offset)
}

// ListBySession returns every document generated from one session, oldest first
func (r *DocumentRepository) ListBySession(ctx context.Context, sessionID string) ([]*entity.DocumentRecord, error) {
	query := r.db.Rebind(`SELECT ` + documentColumns + `
		FROM documents
		WHERE session_id = ?
		ORDER BY created_at ASC, id ASC`)
	return r.queryDocuments(ctx, query, sessionID)
}

// UpdateDelivery records the outcome of a delivery attempt
func (r *DocumentRepository) UpdateDelivery(ctx context.Context, id string, update port.DeliveryUpdate) error {
	query := r.db.Rebind(`
		UPDATE documents
		SET status = ?, delivery_address = ?, delivery_error = ?, delivered_at = ?
		WHERE id = ?
	`)

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		update.Status,
		update.Address,
		nullString(update.Error),
		nullTime(update.DeliveredAt),
		id,
	)
	if err != nil {
		r.logger.Error("Failed to update document delivery",
			zap.String("id", id),
			zap.String("status", update.Status),
			zap.Error(err))
		return fmt.Errorf("failed to update document delivery: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return fmt.Errorf("document not found: %s", id)
	}
	return nil
}

// Delete removes a document and its photo references
func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context) error {
		exec := r.db.Executor(ctx)
		if _, err := exec.ExecContext(ctx, r.db.Rebind(`DELETE FROM document_photos WHERE document_id = ?`), id); err != nil {
			return fmt.Errorf("failed to delete document photos: %w", err)
		}
		if _, err := exec.ExecContext(ctx, r.db.Rebind(`DELETE FROM documents WHERE id = ?`), id); err != nil {
			r.logger.Error("Failed to delete document",
				zap.String("id", id),
				zap.Error(err))
			return fmt.Errorf("failed to delete document: %w", err)
		}
		return nil
	})
}

func (r *DocumentRepository) queryDocuments(ctx context.Context, query string, args ...interface{}) ([]*entity.DocumentRecord, error) {
	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list documents", zap.Error(err))
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []*entity.DocumentRecord
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}
	if len(docs) == 0 {
		return docs, nil
	}

	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	photos, err := r.loadPhotos(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		d.Photos = photos[d.ID]
	}
	return docs, nil
}

// loadPhotos returns the photo references of each document in position order
func (r *DocumentRepository) loadPhotos(ctx context.Context, ids []string) (map[string][]entity.PhotoRef, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	query := r.db.Rebind(`
		SELECT document_id, photo_id, file_name, captured_at
		FROM document_photos
		WHERE document_id IN (` + placeholders + `)
		ORDER BY document_id, position`)

	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to load document photos", zap.Error(err))
		return nil, fmt.Errorf("failed to load document photos: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]entity.PhotoRef, len(ids))
	for rows.Next() {
		var (
			documentID string
			ref        entity.PhotoRef
			capturedAt sql.NullTime
		)
		if err := rows.Scan(&documentID, &ref.ID, &ref.FileName, &capturedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document photo: %w", err)
		}
		if capturedAt.Valid {
			ref.CapturedAt = capturedAt.Time.UTC()
		}
		result[documentID] = append(result[documentID], ref)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(row rowScanner) (*entity.DocumentRecord, error) {
	var (
		doc         entity.DocumentRecord
		snapshot    string
		deliveredAt sql.NullTime
	)
	err := row.Scan(
		&doc.ID,
		&doc.SessionID,
		&doc.TemplateID,
		&doc.Title,
		&doc.Filename,
		&doc.FilePath,
		&doc.PreviewPath,
		&doc.SheetPath,
		&doc.PageCount,
		&doc.SizeBytes,
		&snapshot,
		&doc.Notes,
		&doc.Status,
		&doc.DeliveryAddress,
		&doc.DeliveryError,
		&deliveredAt,
		&doc.GeneratedAt,
		&doc.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if snapshot != "" {
		if err := json.Unmarshal([]byte(snapshot), &doc.FieldSnapshot); err != nil {
			return nil, fmt.Errorf("failed to decode field snapshot: %w", err)
		}
	}
	if deliveredAt.Valid {
		t := deliveredAt.Time.UTC()
		doc.DeliveredAt = &t
	}
	doc.GeneratedAt = doc.GeneratedAt.UTC()
	doc.CreatedAt = doc.CreatedAt.UTC()
	return &doc, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil || t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

// Verify interface compliance
var _ port.DocumentRepository = (*DocumentRepository)(nil)
