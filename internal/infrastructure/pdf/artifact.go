package pdf

import (
	"encoding/base64"
	"time"

	"github.com/garyjia/field-report/internal/infrastructure/render"
)

const (
	ContentType   = "application/pdf"
	dataURIPrefix = "data:" + ContentType + ";base64,"
)

// Meta carries the document-level information written into the PDF.
type Meta struct {
	Title        string
	Author       string
	Subject      string
	Date         time.Time
	GeneratedAt  time.Time
	DocumentID   string
	Organization string
}

// Artifact is one assembled document. Bytes and DataURI are produced from the same buffer.
type Artifact struct {
	Pages       []*render.RenderedPage
	Bytes       []byte
	DataURI     string
	Filename    string
	PageCount   int
	GeneratedAt time.Time
}

// Size returns the serialized size in bytes.
func (a *Artifact) Size() int64 {
	return int64(len(a.Bytes))
}

// EncodeDataURI encodes a PDF payload as a base64 data URI.
func EncodeDataURI(data []byte) string {
	return dataURIPrefix + base64.StdEncoding.EncodeToString(data)
}
