package domain

import "errors"

var (
	ErrNotFound                = errors.New("resource not found")
	ErrUnauthorized            = errors.New("unauthorized")
	ErrUnsupportedFileType     = errors.New("unsupported file type")
	ErrFileTooLarge            = errors.New("file exceeds maximum allowed size")
	ErrEmptyImage              = errors.New("image is empty")
	ErrSessionNotFound         = errors.New("session not found")
	ErrExtractionNotFound      = errors.New("extraction not found")
	ErrNoCurrentRecord         = errors.New("session has no extracted record")
	ErrExtractionFailed        = errors.New("extraction has no record")
	ErrUnsupportedExportFormat = errors.New("unsupported export format")
	ErrExtractionInProgress    = errors.New("an extraction is already running for this session")
	ErrDrawingNotArchived      = errors.New("drawing was not archived")
)
