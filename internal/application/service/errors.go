package service

import "errors"

var (
	// ErrExportInProgress is returned when a session already has an export running
	ErrExportInProgress = errors.New("an export for this session is already in progress")

	// ErrSessionNotFound is returned for unknown session IDs
	ErrSessionNotFound = errors.New("session not found")

	// ErrDocumentNotFound is returned for unknown document IDs
	ErrDocumentNotFound = errors.New("document not found")

	// ErrPhotoNotFound is returned when removing a photo the session does not hold
	ErrPhotoNotFound = errors.New("photo not found")

	// ErrPhotoLimitExceeded is returned when a session already holds the template's photo limit
	ErrPhotoLimitExceeded = errors.New("photo limit exceeded")

	// ErrInvalidPhoto is returned for uploads that do not decode as a supported image
	ErrInvalidPhoto = errors.New("photo is not a supported image")

	// ErrFileUnavailable is returned when a document record has no stored file
	ErrFileUnavailable = errors.New("document file is not available")

	// ErrDeliveryUnavailable is returned by redelivery when no delivery channel is configured
	ErrDeliveryUnavailable = errors.New("no delivery channel configured")
)
