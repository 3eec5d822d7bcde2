package render

import "errors"

var (
	// ErrSurfaceBusy is returned when a surface is acquired while another page holds it
	ErrSurfaceBusy = errors.New("render surface already in use")

	// ErrSurfaceGeometry is returned when the surface cannot hold a page of the configured format
	ErrSurfaceGeometry = errors.New("render surface does not match page format")

	// ErrUnknownDescriptor is returned for descriptor kinds the renderer does not lay out
	ErrUnknownDescriptor = errors.New("unknown page descriptor")
)
