package http

import (
	"time"

	"github.com/garyjia/field-report/internal/application/service"
	"github.com/garyjia/field-report/internal/domain/entity"
)

// dateLayout is the wire format of date values
const dateLayout = "2006-01-02"

// CreateSessionRequest represents the body of POST /api/sessions
type CreateSessionRequest struct {
	TemplateID string `json:"template_id" binding:"required"`
}

// UpdateFormRequest represents the body of PUT /api/sessions/:id/form.
// Date and date fields use YYYY-MM-DD.
type UpdateFormRequest struct {
	OrganizationName string            `json:"organization_name"`
	PreparerName     string            `json:"preparer_name"`
	Date             string            `json:"date"`
	Fields           map[string]string `json:"fields"`
	Notes            string            `json:"notes"`
}

// ExportRequest represents the body of POST /api/sessions/:id/export
type ExportRequest struct {
	Deliver bool   `json:"deliver"`
	Address string `json:"address"`
}

// DeliverRequest represents the body of POST /api/documents/:id/deliver
type DeliverRequest struct {
	Address string `json:"address"`
}

// ListDocumentsRequest represents query parameters for listing documents
type ListDocumentsRequest struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// PhotoResponse represents an attached photo without its payload
type PhotoResponse struct {
	ID          string `json:"id"`
	FileName    string `json:"file_name,omitempty"`
	ContentType string `json:"content_type"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	CapturedAt  string `json:"captured_at"`
}

// SessionResponse represents a session in API responses
type SessionResponse struct {
	ID               string            `json:"id"`
	TemplateID       string            `json:"template_id"`
	OrganizationName string            `json:"organization_name,omitempty"`
	PreparerName     string            `json:"preparer_name,omitempty"`
	Date             string            `json:"date,omitempty"`
	Fields           map[string]string `json:"fields"`
	Notes            string            `json:"notes,omitempty"`
	Photos           []PhotoResponse   `json:"photos"`
	CreatedAt        string            `json:"created_at"`
	UpdatedAt        string            `json:"updated_at"`
}

// DocumentResponse represents a document record in API responses
type DocumentResponse struct {
	ID              string            `json:"id"`
	SessionID       string            `json:"session_id"`
	TemplateID      string            `json:"template_id"`
	Title           string            `json:"title"`
	Filename        string            `json:"filename"`
	PageCount       int               `json:"page_count"`
	SizeBytes       int64             `json:"size_bytes"`
	Fields          map[string]string `json:"fields"`
	PhotoCount      int               `json:"photo_count"`
	Status          string            `json:"status"`
	DeliveryAddress string            `json:"delivery_address,omitempty"`
	DeliveryError   string            `json:"delivery_error,omitempty"`
	DeliveredAt     *string           `json:"delivered_at,omitempty"`
	HasFile         bool              `json:"has_file"`
	HasPreview      bool              `json:"has_preview"`
	HasSheet        bool              `json:"has_sheet"`
	GeneratedAt     string            `json:"generated_at"`
}

// ExportResponse summarizes one export
type ExportResponse struct {
	DocumentID    string            `json:"document_id"`
	State         string            `json:"state"`
	Filename      string            `json:"filename"`
	PageCount     int               `json:"page_count"`
	SizeBytes     int64             `json:"size_bytes"`
	Delivered     bool              `json:"delivered"`
	DeliveryError string            `json:"delivery_error,omitempty"`
	Warnings      []string          `json:"warnings,omitempty"`
	Document      *DocumentResponse `json:"document,omitempty"`
}

func toPhotoResponse(p *entity.Photo) PhotoResponse {
	return PhotoResponse{
		ID:          p.ID,
		FileName:    p.FileName,
		ContentType: p.ContentType,
		Width:       p.Width,
		Height:      p.Height,
		CapturedAt:  formatTime(p.CapturedAt),
	}
}

func toSessionResponse(s *entity.Session) SessionResponse {
	resp := SessionResponse{
		ID:               s.ID,
		TemplateID:       s.TemplateID,
		OrganizationName: s.Values.OrganizationName,
		PreparerName:     s.Values.PreparerName,
		Fields:           make(map[string]string, len(s.Values.Fields)),
		Notes:            s.Notes,
		Photos:           make([]PhotoResponse, len(s.Photos)),
		CreatedAt:        formatTime(s.CreatedAt),
		UpdatedAt:        formatTime(s.UpdatedAt),
	}
	if !s.Values.Date.IsZero() {
		resp.Date = s.Values.Date.Format(dateLayout)
	}
	for key, v := range s.Values.Fields {
		if !v.Date.IsZero() {
			resp.Fields[key] = v.Date.Format(dateLayout)
			continue
		}
		resp.Fields[key] = v.Text
	}
	for i := range s.Photos {
		resp.Photos[i] = toPhotoResponse(&s.Photos[i])
	}
	return resp
}

func toDocumentResponse(d *entity.DocumentRecord) DocumentResponse {
	resp := DocumentResponse{
		ID:              d.ID,
		SessionID:       d.SessionID,
		TemplateID:      d.TemplateID,
		Title:           d.Title,
		Filename:        d.Filename,
		PageCount:       d.PageCount,
		SizeBytes:       d.SizeBytes,
		Fields:          d.FieldSnapshot,
		PhotoCount:      len(d.Photos),
		Status:          d.Status,
		DeliveryAddress: d.DeliveryAddress,
		DeliveryError:   d.DeliveryError,
		HasFile:         d.FilePath != "",
		HasPreview:      d.PreviewPath != "",
		HasSheet:        d.SheetPath != "",
		GeneratedAt:     formatTime(d.GeneratedAt),
	}
	if d.DeliveredAt != nil {
		deliveredAt := formatTime(*d.DeliveredAt)
		resp.DeliveredAt = &deliveredAt
	}
	return resp
}

func toDocumentResponses(docs []*entity.DocumentRecord) []DocumentResponse {
	out := make([]DocumentResponse, len(docs))
	for i, d := range docs {
		out[i] = toDocumentResponse(d)
	}
	return out
}

func toExportResponse(r *service.ExportResult) ExportResponse {
	resp := ExportResponse{
		DocumentID: r.DocumentID,
		State:      r.State.String(),
		Delivered:  r.Delivered(),
		Warnings:   r.Warnings,
	}
	if r.Artifact != nil {
		resp.Filename = r.Artifact.Filename
		resp.PageCount = r.Artifact.PageCount
		resp.SizeBytes = r.Artifact.Size()
	}
	if r.DeliveryError != nil {
		resp.DeliveryError = r.DeliveryError.Error()
	}
	if r.Record != nil {
		doc := toDocumentResponse(r.Record)
		resp.Document = &doc
	}
	return resp
}

// parseDate reads a YYYY-MM-DD value; the empty string is the zero time
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, s)
}
