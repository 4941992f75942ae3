package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"

	"drawsheet/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row.
var columns = []string{"Parameter", "Value"}

// Writer wraps csv.Writer for exporting extracted records as two-column CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the Parameter,Value header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteRecord writes one row per field, in record order. Values are written
// verbatim, missing sentinels included.
func (w *Writer) WriteRecord(rec domain.Record) error {
	for _, f := range rec.Fields {
		if err := w.csv.Write([]string{f.Name, f.Value}); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// Export writes a complete CSV document for rec to out, optionally prefixed
// with a BOM.
func Export(out io.Writer, rec domain.Record, withBOM bool) error {
	if withBOM {
		if _, err := out.Write(BOM); err != nil {
			return err
		}
	}
	w := NewWriter(out)
	if err := w.WriteHeader(); err != nil {
		return err
	}
	if err := w.WriteRecord(rec); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns the download name for a schema's export.
// Format: {sanitized_schema_name}_parameters.{ext}
func BuildFilename(schemaName, ext string) string {
	sanitized := SanitizeFilename(schemaName)
	if sanitized == "" {
		sanitized = "drawing"
	}
	return fmt.Sprintf("%s_parameters.%s", strings.ToLower(sanitized), ext)
}
