package domain

// FileType represents the allowed drawing image types for upload.
type FileType string

const (
	FileTypeJPG FileType = "jpg"
	FileTypePNG FileType = "png"
)

// AllowedContentTypes maps MIME content types back to FileType.
var AllowedContentTypes = map[string]FileType{
	"image/jpeg": FileTypeJPG,
	"image/png":  FileTypePNG,
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"jpg":  FileTypeJPG,
	"jpeg": FileTypeJPG,
	"png":  FileTypePNG,
}

// ExtractionState is the lifecycle of a single extraction request:
// requesting -> parsed | backend_failed. An idle session has no row.
type ExtractionState string

const (
	ExtractionStateRequesting    ExtractionState = "requesting"
	ExtractionStateParsed        ExtractionState = "parsed"
	ExtractionStateBackendFailed ExtractionState = "backend_failed"
)

// Terminal reports whether no further transition is possible.
func (s ExtractionState) Terminal() bool {
	return s == ExtractionStateParsed || s == ExtractionStateBackendFailed
}

// ExportFormat is a download format for an extracted record.
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatXLSX ExportFormat = "xlsx"
)
