package service

import (
	"context"
	"fmt"
	"os"
	"path"
	"sort"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/garyjia/field-report/internal/application/port"
	"github.com/garyjia/field-report/internal/domain/entity"
)

type mockLogger struct {
	mu       sync.Mutex
	warnings []string
}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}
func (m *mockLogger) Warn(msg string, keysAndValues ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.warnings = append(m.warnings, msg)
}

type mockTxManager struct {
	mu    sync.Mutex
	calls int
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	return fn(ctx)
}

// mockDocumentRepo keeps records in a map unless a func field overrides the call
type mockDocumentRepo struct {
	mu                 sync.Mutex
	docs               map[string]*entity.DocumentRecord
	createFunc         func(ctx context.Context, doc *entity.DocumentRecord) error
	updateDeliveryFunc func(ctx context.Context, id string, update port.DeliveryUpdate) error
	updates            []port.DeliveryUpdate
}

func newMockDocumentRepo() *mockDocumentRepo {
	return &mockDocumentRepo{docs: map[string]*entity.DocumentRecord{}}
}

func (m *mockDocumentRepo) Create(ctx context.Context, doc *entity.DocumentRecord) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, doc)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *doc
	m.docs[doc.ID] = &cp
	return nil
}

func (m *mockDocumentRepo) GetByID(ctx context.Context, id string) (*entity.DocumentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, nil
	}
	cp := *doc
	return &cp, nil
}

func (m *mockDocumentRepo) List(ctx context.Context, limit, offset int) ([]*entity.DocumentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*entity.DocumentRecord, 0, len(m.docs))
	for _, d := range m.docs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockDocumentRepo) ListBySession(ctx context.Context, sessionID string) ([]*entity.DocumentRecord, error) {
	all, _ := m.List(ctx, 0, 0)
	var out []*entity.DocumentRecord
	for _, d := range all {
		if d.SessionID == sessionID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockDocumentRepo) UpdateDelivery(ctx context.Context, id string, update port.DeliveryUpdate) error {
	if m.updateDeliveryFunc != nil {
		return m.updateDeliveryFunc(ctx, id, update)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates = append(m.updates, update)
	doc, ok := m.docs[id]
	if !ok {
		return fmt.Errorf("document not found: %s", id)
	}
	doc.Status = update.Status
	doc.DeliveryAddress = update.Address
	doc.DeliveryError = update.Error
	doc.DeliveredAt = update.DeliveredAt
	return nil
}

func (m *mockDocumentRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, id)
	return nil
}

// mockStorage is an in-memory port.FileStorage
type mockStorage struct {
	mu       sync.Mutex
	files    map[string][]byte
	saveFunc func(ctx context.Context, p string, content []byte) error
}

func newMockStorage() *mockStorage {
	return &mockStorage{files: map[string][]byte{}}
}

func (m *mockStorage) Save(ctx context.Context, p string, content []byte) error {
	if m.saveFunc != nil {
		if err := m.saveFunc(ctx, p, content); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[p] = append([]byte(nil), content...)
	return nil
}

func (m *mockStorage) Read(ctx context.Context, p string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[p]
	if !ok {
		return nil, os.ErrNotExist
	}
	return data, nil
}

func (m *mockStorage) Exists(ctx context.Context, p string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[p]
	return ok
}

func (m *mockStorage) Delete(ctx context.Context, p string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, p)
	return nil
}

func (m *mockStorage) GetFullPath(relativePath string) string {
	return "/mem/" + relativePath
}

func (m *mockStorage) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.files)
}

type mockFolders struct {
	storage *mockStorage
	deleted []string
}

func (m *mockFolders) DocumentFolder(documentID string, generatedAt time.Time) string {
	return path.Join("documents", generatedAt.UTC().Format("2006-01-02"), documentID)
}

func (m *mockFolders) Delete(ctx context.Context, folder string) error {
	m.deleted = append(m.deleted, folder)
	if m.storage != nil {
		m.storage.mu.Lock()
		for p := range m.storage.files {
			if path.Dir(p) == folder {
				delete(m.storage.files, p)
			}
		}
		m.storage.mu.Unlock()
	}
	return nil
}

// mockLock hands out each key once until released
type mockLock struct {
	mu   sync.Mutex
	held map[string]bool
}

func newMockLock() *mockLock {
	return &mockLock{held: map[string]bool{}}
}

func (m *mockLock) Acquire(ctx context.Context, key string) (func(ctx context.Context) error, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[key] {
		return nil, port.ErrLocked
	}
	m.held[key] = true
	return func(ctx context.Context) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.held, key)
		return nil
	}, nil
}

func (m *mockLock) isHeld(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.held[key]
}

// MockDeliverySender is a testify mock of port.DeliverySender
type MockDeliverySender struct {
	mock.Mock
}

func (m *MockDeliverySender) Deliver(ctx context.Context, req port.DeliveryRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

type mockPreviewer struct {
	thumbnailFunc func(data []byte) ([]byte, error)
}

func (m *mockPreviewer) Thumbnail(data []byte) ([]byte, error) {
	if m.thumbnailFunc != nil {
		return m.thumbnailFunc(data)
	}
	return []byte("jpeg-thumbnail"), nil
}

type mockTemplateCatalog struct {
	templates map[string]*entity.Template
}

func (m *mockTemplateCatalog) List(ctx context.Context) ([]*entity.Template, error) {
	out := make([]*entity.Template, 0, len(m.templates))
	for _, t := range m.templates {
		out = append(out, t)
	}
	return out, nil
}

func (m *mockTemplateCatalog) Get(ctx context.Context, id string) (*entity.Template, error) {
	t, ok := m.templates[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", port.ErrTemplateNotFound, id)
	}
	cp := *t
	return &cp, nil
}

type mockInspector struct {
	inspectFunc func(data []byte) (entity.PhotoInfo, error)
}

func (m *mockInspector) Inspect(data []byte) (entity.PhotoInfo, error) {
	if m.inspectFunc != nil {
		return m.inspectFunc(data)
	}
	return entity.PhotoInfo{Width: 4, Height: 3, ContentType: "image/jpeg"}, nil
}

// mockSessionRepo stores sessions by pointer copy
type mockSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*entity.Session
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{sessions: map[string]*entity.Session{}}
}

func (m *mockSessionRepo) Save(ctx context.Context, session *entity.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = session.Snapshot()
	return nil
}

func (m *mockSessionRepo) Get(ctx context.Context, id string) (*entity.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	return s.Snapshot(), nil
}

func (m *mockSessionRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *mockSessionRepo) List(ctx context.Context) ([]*entity.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*entity.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s.Snapshot())
	}
	return out, nil
}
