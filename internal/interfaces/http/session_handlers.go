package http

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/field-report/internal/application/service"
	"github.com/garyjia/field-report/internal/domain/entity"
	"github.com/garyjia/field-report/internal/domain/report"
	"github.com/garyjia/field-report/pkg/utils"
)

// ListTemplates handles GET /api/templates
func (h *Handlers) ListTemplates(c *gin.Context) {
	templates, err := h.templates.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, templates)
}

// GetTemplate handles GET /api/templates/:id
func (h *Handlers) GetTemplate(c *gin.Context) {
	tpl, err := h.templates.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, tpl)
}

// CreateSession handles POST /api/sessions
func (h *Handlers) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "template_id is required")
		return
	}

	session, err := h.sessions.Create(c.Request.Context(), req.TemplateID)
	if err != nil {
		h.fail(c, err, "template_id", req.TemplateID)
		return
	}
	ok(c, http.StatusCreated, toSessionResponse(session))
}

// ListSessions handles GET /api/sessions
func (h *Handlers) ListSessions(c *gin.Context) {
	sessions, err := h.sessions.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	responses := make([]SessionResponse, len(sessions))
	for i, s := range sessions {
		responses[i] = toSessionResponse(s)
	}
	ok(c, http.StatusOK, responses)
}

// GetSession handles GET /api/sessions/:id
func (h *Handlers) GetSession(c *gin.Context) {
	session, err := h.sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, toSessionResponse(session))
}

// EndSession handles DELETE /api/sessions/:id
func (h *Handlers) EndSession(c *gin.Context) {
	if err := h.sessions.End(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateForm handles PUT /api/sessions/:id/form
func (h *Handlers) UpdateForm(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	var req UpdateFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid form body")
		return
	}

	session, err := h.sessions.Get(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	tpl, err := h.templates.Get(ctx, session.TemplateID)
	if err != nil {
		h.fail(c, err)
		return
	}

	values, err := formValues(tpl, req)
	if err != nil {
		h.fail(c, err)
		return
	}

	updated, err := h.sessions.UpdateForm(ctx, id, service.FormUpdate{Values: values, Notes: req.Notes})
	if err != nil {
		h.fail(c, err, "session_id", id)
		return
	}
	ok(c, http.StatusOK, toSessionResponse(updated))
}

// formValues converts the wire form into typed values using the template's field kinds.
// Keys the template does not know are passed through for the service to reject.
func formValues(tpl *entity.Template, req UpdateFormRequest) (entity.FormValues, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return entity.FormValues{}, &report.ValidationError{Field: "date", Message: "must use YYYY-MM-DD"}
	}

	values := entity.FormValues{
		OrganizationName: req.OrganizationName,
		PreparerName:     req.PreparerName,
		Date:             date,
		Fields:           make(map[string]entity.FieldValue, len(req.Fields)),
	}
	for key, raw := range req.Fields {
		def, known := tpl.Field(key)
		if !known || !def.IsDate() {
			values.Fields[key] = entity.TextValue(raw)
			continue
		}
		d, err := parseDate(raw)
		if err != nil {
			return entity.FormValues{}, &report.ValidationError{Field: key, Message: "must use YYYY-MM-DD"}
		}
		values.Fields[key] = entity.DateValue(d)
	}
	return values, nil
}

// AddPhoto handles POST /api/sessions/:id/photos.
// The multipart field "photo" carries the image; "captured_at" is optional RFC3339.
func (h *Handlers) AddPhoto(c *gin.Context) {
	id := c.Param("id")

	header, err := c.FormFile("photo")
	if err != nil {
		h.badRequest(c, "multipart field photo is required")
		return
	}
	if header.Size > h.maxPhotoBytes {
		c.JSON(http.StatusRequestEntityTooLarge, Response{
			Success: false,
			Error:   fmt.Sprintf("photo exceeds %d bytes", h.maxPhotoBytes),
		})
		return
	}

	var capturedAt time.Time
	if raw := c.PostForm("captured_at"); raw != "" {
		capturedAt, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			h.badRequest(c, "captured_at must be RFC3339")
			return
		}
	}

	f, err := header.Open()
	if err != nil {
		h.fail(c, fmt.Errorf("open upload: %w", err))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxPhotoBytes))
	if err != nil {
		h.fail(c, fmt.Errorf("read upload: %w", err))
		return
	}

	photo, err := h.sessions.AddPhoto(c.Request.Context(), id, service.PhotoUpload{
		FileName:   utils.SanitizeFileName(header.Filename),
		Data:       data,
		CapturedAt: capturedAt,
	})
	if err != nil {
		h.fail(c, err, "session_id", id)
		return
	}
	ok(c, http.StatusCreated, toPhotoResponse(photo))
}

// RemovePhoto handles DELETE /api/sessions/:id/photos/:photoID
func (h *Handlers) RemovePhoto(c *gin.Context) {
	if err := h.sessions.RemovePhoto(c.Request.Context(), c.Param("id"), c.Param("photoID")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Export handles POST /api/sessions/:id/export.
// With ?download=1 the PDF itself is returned instead of the JSON summary.
func (h *Handlers) Export(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	var req ExportRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.badRequest(c, "invalid export body")
			return
		}
	}

	exportReq, err := h.sessions.ExportRequest(ctx, id, req.Deliver, req.Address)
	if err != nil {
		h.fail(c, err, "session_id", id)
		return
	}

	result, err := h.exports.Export(ctx, *exportReq, nil)
	if err != nil {
		h.fail(c, err, "session_id", id)
		return
	}

	if c.Query("download") == "1" {
		writeFile(c, result.Artifact.Filename, "application/pdf", result.Artifact.Bytes)
		return
	}
	ok(c, http.StatusOK, toExportResponse(result))
}

// ListSessionDocuments handles GET /api/sessions/:id/documents
func (h *Handlers) ListSessionDocuments(c *gin.Context) {
	docs, err := h.documents.ListBySession(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, toDocumentResponses(docs))
}

func writeFile(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	c.Data(http.StatusOK, contentType, data)
}
