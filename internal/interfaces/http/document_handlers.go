package http

import (
	"net/http"
	"path"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/field-report/internal/application/service"
	"github.com/garyjia/field-report/internal/infrastructure/pdf"
	"github.com/garyjia/field-report/internal/infrastructure/sheet"
)

// ListDocuments handles GET /api/documents
func (h *Handlers) ListDocuments(c *gin.Context) {
	var req ListDocumentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.badRequest(c, "invalid query parameters")
		return
	}

	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 20
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	docs, err := h.documents.List(c.Request.Context(), req.Limit, req.Offset)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, toDocumentResponses(docs))
}

// GetDocument handles GET /api/documents/:id
func (h *Handlers) GetDocument(c *gin.Context) {
	doc, err := h.documents.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, toDocumentResponse(doc))
}

// DownloadDocument handles GET /api/documents/:id/file
func (h *Handlers) DownloadDocument(c *gin.Context) {
	h.serveAsset(c, service.AssetPDF, pdf.ContentType)
}

// DownloadPreview handles GET /api/documents/:id/preview
func (h *Handlers) DownloadPreview(c *gin.Context) {
	h.serveAsset(c, service.AssetPreview, pdf.PreviewContentType)
}

// DownloadSheet handles GET /api/documents/:id/sheet
func (h *Handlers) DownloadSheet(c *gin.Context) {
	h.serveAsset(c, service.AssetSheet, sheet.ContentType)
}

func (h *Handlers) serveAsset(c *gin.Context, asset service.DocumentAsset, contentType string) {
	id := c.Param("id")
	doc, data, err := h.documents.ReadAsset(c.Request.Context(), id, asset)
	if err != nil {
		h.fail(c, err, "document_id", id, "asset", string(asset))
		return
	}

	filename := doc.Filename
	switch asset {
	case service.AssetPreview:
		filename = path.Base(doc.PreviewPath)
	case service.AssetSheet:
		filename = path.Base(doc.SheetPath)
	}
	writeFile(c, filename, contentType, data)
}

// RedeliverDocument handles POST /api/documents/:id/deliver.
// An empty address reuses the one stored with the document.
func (h *Handlers) RedeliverDocument(c *gin.Context) {
	id := c.Param("id")

	var req DeliverRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.badRequest(c, "invalid delivery body")
			return
		}
	}

	doc, err := h.documents.Redeliver(c.Request.Context(), id, req.Address)
	if err != nil {
		h.fail(c, err, "document_id", id)
		return
	}
	ok(c, http.StatusOK, toDocumentResponse(doc))
}

// DeleteDocument handles DELETE /api/documents/:id
func (h *Handlers) DeleteDocument(c *gin.Context) {
	if err := h.documents.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
