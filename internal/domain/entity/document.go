package entity

import "time"

// Document record status constants
const (
	DocumentStatusGenerated      = "GENERATED"
	DocumentStatusDelivered      = "DELIVERED"
	DocumentStatusDeliveryFailed = "DELIVERY_FAILED"
)

// DocumentRecord describes one generated report artifact
type DocumentRecord struct {
	ID              string            `json:"id"`
	SessionID       string            `json:"session_id"`
	TemplateID      string            `json:"template_id"`
	Title           string            `json:"title"`
	Filename        string            `json:"filename"`
	FilePath        string            `json:"file_path,omitempty"`
	PreviewPath     string            `json:"preview_path,omitempty"`
	SheetPath       string            `json:"sheet_path,omitempty"`
	PageCount       int               `json:"page_count"`
	SizeBytes       int64             `json:"size_bytes"`
	FieldSnapshot   map[string]string `json:"field_snapshot"`
	Photos          []PhotoRef        `json:"photos"`
	Notes           string            `json:"notes,omitempty"`
	Status          string            `json:"status"`
	DeliveryAddress string            `json:"delivery_address,omitempty"`
	DeliveryError   string            `json:"delivery_error,omitempty"`
	DeliveredAt     *time.Time        `json:"delivered_at,omitempty"`
	GeneratedAt     time.Time         `json:"generated_at"`
	CreatedAt       time.Time         `json:"created_at"`
}

// IsDelivered returns true if the artifact reached the delivery channel
func (d *DocumentRecord) IsDelivered() bool {
	return d.Status == DocumentStatusDelivered
}
