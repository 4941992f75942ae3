package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"drawsheet/internal/middleware"
	"drawsheet/internal/service"
)

// SessionHandler handles session lifecycle and current-record endpoints.
type SessionHandler struct {
	sessionService service.SessionService
	exporter       *Exporter
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService service.SessionService, exporter *Exporter) *SessionHandler {
	return &SessionHandler{sessionService: sessionService, exporter: exporter}
}

// Start handles POST /api/v1/sessions
// @Summary Start a session
// @Description Create a session that holds the current extracted record and return its bearer token
// @Tags sessions
// @Produce json
// @Success 201 {object} Response{data=SessionTokenResponse} "Session started"
// @Failure 500 {object} ErrorResponseBody "Internal error"
// @Router /sessions [post]
func (h *SessionHandler) Start(c *gin.Context) {
	token, err := h.sessionService.Start(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, token)
}

// Current handles GET /api/v1/session
// @Summary Get the current record
// @Description Return the session's most recent successful extraction. Failed extractions never replace it.
// @Tags sessions
// @Produce json
// @Success 200 {object} Response{data=domain.Extraction} "Current extraction"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 404 {object} ErrorResponseBody "No record extracted yet"
// @Security BearerAuth
// @Router /session [get]
func (h *SessionHandler) Current(c *gin.Context) {
	sessionID, err := middleware.GetSessionID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing session context")
		return
	}

	extraction, err := h.sessionService.Current(c.Request.Context(), sessionID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, extraction)
}

// ExportCurrent handles GET /api/v1/session/export
// @Summary Download the current record
// @Description Download the current record as a two-column Parameter,Value file
// @Tags sessions
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "Export format (csv or xlsx)" default(csv)
// @Success 200 {file} file "Exported record"
// @Failure 400 {object} ErrorResponseBody "Unsupported format"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 404 {object} ErrorResponseBody "No record extracted yet"
// @Security BearerAuth
// @Router /session/export [get]
func (h *SessionHandler) ExportCurrent(c *gin.Context) {
	sessionID, err := middleware.GetSessionID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing session context")
		return
	}

	extraction, err := h.sessionService.Current(c.Request.Context(), sessionID)
	if err != nil {
		HandleError(c, err)
		return
	}
	h.exporter.Write(c, extraction)
}
