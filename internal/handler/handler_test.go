package handler_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"drawsheet/internal/domain"
	"drawsheet/internal/handler"
	"drawsheet/internal/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func sessionContext(w *httptest.ResponseRecorder, sessionID uuid.UUID) *gin.Context {
	c, _ := gin.CreateTestContext(w)
	c.Set(middleware.ContextKeySessionID, sessionID)
	return c
}

func decode(t *testing.T, w *httptest.ResponseRecorder) handler.APIResponse {
	t.Helper()
	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func parsedExtraction(sessionID uuid.UUID) *domain.Extraction {
	now := time.Now()
	return &domain.Extraction{
		ID:        uuid.New(),
		SessionID: sessionID,
		FileName:  "cyl.png",
		State:     domain.ExtractionStateParsed,
		Record: &domain.Record{Fields: []domain.Field{
			{Name: "BORE DIAMETER", Value: "80"},
			{Name: "FLUID", Value: ""},
		}},
		MissingPolicy: "blank",
		CreatedAt:     now,
		CompletedAt:   &now,
	}
}
