package entity

import (
	"strings"
	"time"
)

// Photo is an uploaded piece of photographic evidence.
// Photos are never mutated after upload; order of insertion decides page placement.
type Photo struct {
	ID          string    `json:"id"`
	FileName    string    `json:"file_name,omitempty"`
	ContentType string    `json:"content_type"`
	Data        []byte    `json:"-"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	CapturedAt  time.Time `json:"captured_at"`
}

// ShortID returns the short identifier printed in photo captions
func (p *Photo) ShortID() string {
	id := strings.ReplaceAll(p.ID, "-", "")
	if len(id) > 8 {
		id = id[:8]
	}
	return strings.ToUpper(id)
}

// PhotoRef is the persisted reference to a photo inside a document record
type PhotoRef struct {
	ID         string    `json:"id"`
	FileName   string    `json:"file_name,omitempty"`
	CapturedAt time.Time `json:"captured_at"`
}
