package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"drawsheet/internal/csvexport"
	"drawsheet/internal/domain"
	"drawsheet/internal/xlsxexport"
)

// Exporter writes records as downloadable files.
type Exporter struct {
	schemaName string
	csvBOM     bool
}

// NewExporter creates an Exporter. schemaName names the downloaded file.
func NewExporter(schemaName string, csvBOM bool) *Exporter {
	return &Exporter{schemaName: schemaName, csvBOM: csvBOM}
}

func parseExportFormat(raw string) (domain.ExportFormat, error) {
	switch domain.ExportFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case "", domain.ExportFormatCSV:
		return domain.ExportFormatCSV, nil
	case domain.ExportFormatXLSX:
		return domain.ExportFormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedExportFormat, raw)
	}
}

// Write renders the extraction's record in the format named by the "format"
// query parameter.
func (e *Exporter) Write(c *gin.Context, extraction *domain.Extraction) {
	format, err := parseExportFormat(c.Query("format"))
	if err != nil {
		HandleError(c, err)
		return
	}
	if extraction.State != domain.ExtractionStateParsed || extraction.Record == nil {
		HandleError(c, domain.ErrExtractionFailed)
		return
	}

	var (
		buf         bytes.Buffer
		contentType string
	)
	switch format {
	case domain.ExportFormatXLSX:
		contentType = xlsxexport.ContentType
		err = xlsxexport.Export(&buf, *extraction.Record, e.schemaName)
	default:
		contentType = "text/csv; charset=utf-8"
		err = csvexport.Export(&buf, *extraction.Record, e.csvBOM)
	}
	if err != nil {
		HandleError(c, fmt.Errorf("exporting %s: %w", format, err))
		return
	}

	filename := csvexport.BuildFilename(e.schemaName, string(format))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
