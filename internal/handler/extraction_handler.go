package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"drawsheet/internal/middleware"
	"drawsheet/internal/service"
)

// ExtractionHandler handles drawing upload and extraction endpoints.
type ExtractionHandler struct {
	extractionService service.ExtractionService
	exporter          *Exporter
}

// NewExtractionHandler creates a new ExtractionHandler.
func NewExtractionHandler(extractionService service.ExtractionService, exporter *Exporter) *ExtractionHandler {
	return &ExtractionHandler{extractionService: extractionService, exporter: exporter}
}

// Create handles POST /api/v1/extractions
// @Summary Extract parameters from a drawing
// @Description Upload a drawing image (JPG or PNG) and extract the schema parameters. On success the result becomes the session's current record; on a backend failure the current record is left unchanged.
// @Tags extractions
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Drawing image (JPG or PNG)"
// @Success 201 {object} Response{data=domain.Extraction} "Extraction succeeded"
// @Failure 400 {object} ErrorResponseBody "Missing file or unsupported type"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 409 {object} ErrorResponseBody "Extraction already running"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Failure 429 {object} ErrorResponseBody "Backend rate limited"
// @Failure 502 {object} ErrorResponseBody "Backend unreachable, rejected the request, or returned a bad response"
// @Security BearerAuth
// @Router /extractions [post]
func (h *ExtractionHandler) Create(c *gin.Context) {
	sessionID, err := middleware.GetSessionID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing session context")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	extraction, err := h.extractionService.Extract(c.Request.Context(), service.ExtractInput{
		SessionID:   sessionID,
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, extraction)
}

// List handles GET /api/v1/extractions
// @Summary List extractions
// @Description List every extraction attempt in the session, newest first, including failed ones
// @Tags extractions
// @Produce json
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.Extraction,meta=PagMeta} "List of extractions"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /extractions [get]
func (h *ExtractionHandler) List(c *gin.Context) {
	sessionID, err := middleware.GetSessionID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing session context")
		return
	}

	offset, limit := parsePagination(c)
	extractions, total, err := h.extractionService.List(c.Request.Context(), sessionID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, extractions, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// Get handles GET /api/v1/extractions/:id
// @Summary Get an extraction
// @Tags extractions
// @Produce json
// @Param id path string true "Extraction ID"
// @Success 200 {object} Response{data=domain.Extraction} "Extraction"
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 404 {object} ErrorResponseBody "Extraction not found"
// @Security BearerAuth
// @Router /extractions/{id} [get]
func (h *ExtractionHandler) Get(c *gin.Context) {
	sessionID, extractionID, ok := h.ids(c)
	if !ok {
		return
	}

	extraction, err := h.extractionService.Get(c.Request.Context(), sessionID, extractionID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, extraction)
}

// Export handles GET /api/v1/extractions/:id/export
// @Summary Download an extraction's record
// @Tags extractions
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Extraction ID"
// @Param format query string false "Export format (csv or xlsx)" default(csv)
// @Success 200 {file} file "Exported record"
// @Failure 404 {object} ErrorResponseBody "Extraction not found"
// @Failure 409 {object} ErrorResponseBody "Extraction failed and has no record"
// @Security BearerAuth
// @Router /extractions/{id}/export [get]
func (h *ExtractionHandler) Export(c *gin.Context) {
	sessionID, extractionID, ok := h.ids(c)
	if !ok {
		return
	}

	extraction, err := h.extractionService.Get(c.Request.Context(), sessionID, extractionID)
	if err != nil {
		HandleError(c, err)
		return
	}
	h.exporter.Write(c, extraction)
}

// Drawing handles GET /api/v1/extractions/:id/drawing
// @Summary Get a download link for the archived drawing
// @Tags extractions
// @Produce json
// @Param id path string true "Extraction ID"
// @Success 200 {object} Response{data=DrawingURLResponse} "Presigned URL"
// @Failure 404 {object} ErrorResponseBody "Extraction not found or drawing not archived"
// @Security BearerAuth
// @Router /extractions/{id}/drawing [get]
func (h *ExtractionHandler) Drawing(c *gin.Context) {
	sessionID, extractionID, ok := h.ids(c)
	if !ok {
		return
	}

	url, err := h.extractionService.DrawingURL(c.Request.Context(), sessionID, extractionID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, DrawingURLResponse{URL: url})
}

func (h *ExtractionHandler) ids(c *gin.Context) (sessionID, extractionID uuid.UUID, ok bool) {
	sessionID, err := middleware.GetSessionID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing session context")
		return uuid.Nil, uuid.Nil, false
	}
	extractionID, err = uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid extraction ID")
		return uuid.Nil, uuid.Nil, false
	}
	return sessionID, extractionID, true
}
