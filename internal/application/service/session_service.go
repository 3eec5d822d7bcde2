package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/garyjia/field-report/internal/application/port"
	"github.com/garyjia/field-report/internal/domain/entity"
	"github.com/garyjia/field-report/internal/domain/report"
	"github.com/garyjia/field-report/pkg/utils"
)

// PhotoUpload is one photo as received from a client
type PhotoUpload struct {
	FileName   string
	Data       []byte
	CapturedAt time.Time
}

// FormUpdate replaces the form values and notes of a session
type FormUpdate struct {
	Values entity.FormValues
	Notes  string
}

// SessionService manages in-progress documents
type SessionService interface {
	Create(ctx context.Context, templateID string) (*entity.Session, error)
	Get(ctx context.Context, id string) (*entity.Session, error)
	List(ctx context.Context) ([]*entity.Session, error)
	UpdateForm(ctx context.Context, id string, update FormUpdate) (*entity.Session, error)
	AddPhoto(ctx context.Context, id string, upload PhotoUpload) (*entity.Photo, error)
	RemovePhoto(ctx context.Context, id, photoID string) error
	End(ctx context.Context, id string) error
	// ExportRequest snapshots the session into the input of one export
	ExportRequest(ctx context.Context, id string, deliver bool, address string) (*ExportRequest, error)
}

type sessionServiceImpl struct {
	sessions  port.SessionRepository
	templates port.TemplateCatalog
	inspector port.PhotoInspector
	logger    Logger

	// serializes read-modify-write cycles on the session store
	mu    sync.Mutex
	newID func() string
	now   func() time.Time
}

// NewSessionService creates a new SessionService
func NewSessionService(
	sessions port.SessionRepository,
	templates port.TemplateCatalog,
	inspector port.PhotoInspector,
	logger Logger,
) SessionService {
	return &sessionServiceImpl{
		sessions:  sessions,
		templates: templates,
		inspector: inspector,
		logger:    logger,
		newID:     uuid.NewString,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *sessionServiceImpl) Create(ctx context.Context, templateID string) (*entity.Session, error) {
	tpl, err := s.templates.Get(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}

	now := s.now()
	session := &entity.Session{
		ID:         s.newID(),
		TemplateID: tpl.ID,
		Values:     entity.FormValues{Fields: map[string]entity.FieldValue{}},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		s.logger.Error("Failed to save session", "error", err, "template_id", tpl.ID)
		return nil, fmt.Errorf("save session: %w", err)
	}

	s.logger.Info("Session created", "session_id", session.ID, "template_id", tpl.ID)
	return session, nil
}

func (s *sessionServiceImpl) Get(ctx context.Context, id string) (*entity.Session, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *sessionServiceImpl) List(ctx context.Context) ([]*entity.Session, error) {
	sessions, err := s.sessions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// UpdateForm replaces the form values and notes. Keys that the template does not
// declare are rejected; date fields must carry a date.
func (s *sessionServiceImpl) UpdateForm(ctx context.Context, id string, update FormUpdate) (*entity.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	tpl, err := s.templates.Get(ctx, session.TemplateID)
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}

	values := update.Values.Clone()
	for key, v := range values.Fields {
		def, ok := tpl.Field(key)
		if !ok {
			return nil, &report.ValidationError{Field: key, Message: "is not a field of template " + tpl.ID}
		}
		if def.IsDate() && v.Text != "" {
			return nil, &report.ValidationError{Field: key, Message: "must be a date"}
		}
	}
	values.OrganizationName = strings.TrimSpace(values.OrganizationName)
	values.PreparerName = strings.TrimSpace(values.PreparerName)

	session.Values = values
	session.Notes = utils.StripMarkup(update.Notes)
	session.UpdatedAt = s.now()

	if err := s.sessions.Save(ctx, session); err != nil {
		s.logger.Error("Failed to save session", "error", err, "session_id", id)
		return nil, fmt.Errorf("save session: %w", err)
	}
	return session, nil
}

// AddPhoto appends a decodable photo. A session holding the template's photo limit
// rejects further photos with ErrPhotoLimitExceeded.
func (s *sessionServiceImpl) AddPhoto(ctx context.Context, id string, upload PhotoUpload) (*entity.Photo, error) {
	info, err := s.inspector.Inspect(upload.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPhoto, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	tpl, err := s.templates.Get(ctx, session.TemplateID)
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}

	if len(session.Photos) >= tpl.MaxPhotos() {
		s.logger.Warn("Photo rejected, limit reached",
			"session_id", id,
			"limit", tpl.MaxPhotos())
		return nil, fmt.Errorf("%w: template %s accepts at most %d photos", ErrPhotoLimitExceeded, tpl.ID, tpl.MaxPhotos())
	}

	capturedAt := upload.CapturedAt
	if capturedAt.IsZero() {
		capturedAt = s.now()
	}
	photo := entity.Photo{
		ID:          s.newID(),
		FileName:    upload.FileName,
		ContentType: info.ContentType,
		Data:        upload.Data,
		Width:       info.Width,
		Height:      info.Height,
		CapturedAt:  capturedAt.UTC(),
	}

	session.Photos = append(session.Photos, photo)
	session.UpdatedAt = s.now()
	if err := s.sessions.Save(ctx, session); err != nil {
		s.logger.Error("Failed to save session", "error", err, "session_id", id)
		return nil, fmt.Errorf("save session: %w", err)
	}

	s.logger.Info("Photo added",
		"session_id", id,
		"photo_id", photo.ID,
		"content_type", photo.ContentType,
		"photos", len(session.Photos))
	return &photo, nil
}

func (s *sessionServiceImpl) RemovePhoto(ctx context.Context, id, photoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	idx := -1
	for i, p := range session.Photos {
		if p.ID == photoID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrPhotoNotFound
	}

	session.Photos = append(session.Photos[:idx], session.Photos[idx+1:]...)
	session.UpdatedAt = s.now()
	if err := s.sessions.Save(ctx, session); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	s.logger.Info("Photo removed", "session_id", id, "photo_id", photoID)
	return nil
}

func (s *sessionServiceImpl) End(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.logger.Info("Session ended", "session_id", id)
	return nil
}

func (s *sessionServiceImpl) ExportRequest(ctx context.Context, id string, deliver bool, address string) (*ExportRequest, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	tpl, err := s.templates.Get(ctx, session.TemplateID)
	if errors.Is(err, port.ErrTemplateNotFound) {
		return nil, &report.ValidationError{Field: "template", Message: "no longer exists: " + session.TemplateID}
	}
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}

	snapshot := session.Snapshot()
	return &ExportRequest{
		SessionID: snapshot.ID,
		Template:  tpl,
		Values:    snapshot.Values,
		Notes:     snapshot.Notes,
		Photos:    snapshot.Photos,
		Deliver:   deliver,
		Address:   strings.TrimSpace(address),
	}, nil
}
