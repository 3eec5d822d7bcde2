package report

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyDocument is returned when assembly is asked to produce a document without pages
	ErrEmptyDocument = errors.New("document has no pages")

	// ErrPageOrder is returned when rendered pages do not arrive in ascending page order
	ErrPageOrder = errors.New("pages are not in ascending page order")

	// ErrPageGeometry is returned when a page does not match the physical page format
	ErrPageGeometry = errors.New("page does not match the document page format")
)

// ValidationError reports input that blocks an export from starting
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Message)
}

// RenderError reports a page that could not be rasterized. It aborts the whole export.
type RenderError struct {
	PageIndex int
	Err       error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("failed to render page %d: %v", e.PageIndex+1, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// AssemblyError reports a failure while building the multi-page artifact
type AssemblyError struct {
	Err error
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("failed to assemble document: %v", e.Err)
}

func (e *AssemblyError) Unwrap() error {
	return e.Err
}

// DeliveryError reports a failed dispatch to the delivery channel.
// It never invalidates an artifact that was already produced.
type DeliveryError struct {
	Address string
	Err     error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("failed to deliver document to %s: %v", e.Address, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}
