package http

import (
	"context"
	"fmt"

	"github.com/garyjia/field-report/internal/application/port"
	"github.com/garyjia/field-report/internal/application/service"
	"github.com/garyjia/field-report/internal/domain/entity"
)

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Warn(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}

type mockTemplates struct {
	templates map[string]*entity.Template
}

func (m *mockTemplates) List(ctx context.Context) ([]*entity.Template, error) {
	out := make([]*entity.Template, 0, len(m.templates))
	for _, t := range m.templates {
		out = append(out, t)
	}
	return out, nil
}

func (m *mockTemplates) Get(ctx context.Context, id string) (*entity.Template, error) {
	t, ok := m.templates[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", port.ErrTemplateNotFound, id)
	}
	return t, nil
}

type mockSessionService struct {
	createFunc        func(ctx context.Context, templateID string) (*entity.Session, error)
	getFunc           func(ctx context.Context, id string) (*entity.Session, error)
	listFunc          func(ctx context.Context) ([]*entity.Session, error)
	updateFormFunc    func(ctx context.Context, id string, update service.FormUpdate) (*entity.Session, error)
	addPhotoFunc      func(ctx context.Context, id string, upload service.PhotoUpload) (*entity.Photo, error)
	removePhotoFunc   func(ctx context.Context, id, photoID string) error
	endFunc           func(ctx context.Context, id string) error
	exportRequestFunc func(ctx context.Context, id string, deliver bool, address string) (*service.ExportRequest, error)
}

func (m *mockSessionService) Create(ctx context.Context, templateID string) (*entity.Session, error) {
	return m.createFunc(ctx, templateID)
}

func (m *mockSessionService) Get(ctx context.Context, id string) (*entity.Session, error) {
	return m.getFunc(ctx, id)
}

func (m *mockSessionService) List(ctx context.Context) ([]*entity.Session, error) {
	if m.listFunc == nil {
		return nil, nil
	}
	return m.listFunc(ctx)
}

func (m *mockSessionService) UpdateForm(ctx context.Context, id string, update service.FormUpdate) (*entity.Session, error) {
	return m.updateFormFunc(ctx, id, update)
}

func (m *mockSessionService) AddPhoto(ctx context.Context, id string, upload service.PhotoUpload) (*entity.Photo, error) {
	return m.addPhotoFunc(ctx, id, upload)
}

func (m *mockSessionService) RemovePhoto(ctx context.Context, id, photoID string) error {
	return m.removePhotoFunc(ctx, id, photoID)
}

func (m *mockSessionService) End(ctx context.Context, id string) error {
	return m.endFunc(ctx, id)
}

func (m *mockSessionService) ExportRequest(ctx context.Context, id string, deliver bool, address string) (*service.ExportRequest, error) {
	return m.exportRequestFunc(ctx, id, deliver, address)
}

type mockExportService struct {
	exportFunc func(ctx context.Context, req service.ExportRequest, progress service.ProgressFunc) (*service.ExportResult, error)
}

func (m *mockExportService) Export(ctx context.Context, req service.ExportRequest, progress service.ProgressFunc) (*service.ExportResult, error) {
	return m.exportFunc(ctx, req, progress)
}

type mockDocumentService struct {
	listFunc          func(ctx context.Context, limit, offset int) ([]*entity.DocumentRecord, error)
	listBySessionFunc func(ctx context.Context, sessionID string) ([]*entity.DocumentRecord, error)
	getFunc           func(ctx context.Context, id string) (*entity.DocumentRecord, error)
	readAssetFunc     func(ctx context.Context, id string, asset service.DocumentAsset) (*entity.DocumentRecord, []byte, error)
	redeliverFunc     func(ctx context.Context, id, address string) (*entity.DocumentRecord, error)
	deleteFunc        func(ctx context.Context, id string) error
}

func (m *mockDocumentService) List(ctx context.Context, limit, offset int) ([]*entity.DocumentRecord, error) {
	return m.listFunc(ctx, limit, offset)
}

func (m *mockDocumentService) ListBySession(ctx context.Context, sessionID string) ([]*entity.DocumentRecord, error) {
	return m.listBySessionFunc(ctx, sessionID)
}

func (m *mockDocumentService) Get(ctx context.Context, id string) (*entity.DocumentRecord, error) {
	return m.getFunc(ctx, id)
}

func (m *mockDocumentService) ReadAsset(ctx context.Context, id string, asset service.DocumentAsset) (*entity.DocumentRecord, []byte, error) {
	return m.readAssetFunc(ctx, id, asset)
}

func (m *mockDocumentService) Redeliver(ctx context.Context, id, address string) (*entity.DocumentRecord, error) {
	return m.redeliverFunc(ctx, id, address)
}

func (m *mockDocumentService) Delete(ctx context.Context, id string) error {
	return m.deleteFunc(ctx, id)
}
