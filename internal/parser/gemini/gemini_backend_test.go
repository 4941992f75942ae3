package gemini_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drawsheet/internal/config"
	"drawsheet/internal/parser"
	"drawsheet/internal/parser/gemini"
	"drawsheet/internal/port"
)

var input = port.VisionRequest{Instruction: "extract the values", MIMEType: "image/jpeg", Image: []byte("jpeg-bytes")}

func newTestBackend(serverURL string) *gemini.Backend {
	cfg := &config.ParserProviderConfig{
		Provider:    "gemini",
		APIKey:      "test-api-key",
		TimeoutSecs: 30,
	}
	return gemini.NewBackendWithEndpoint(cfg, serverURL)
}

func TestGeminiBackend_Submit_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-api-key", r.Header.Get("x-goog-api-key"))

		var reqBody map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		contents := reqBody["contents"].([]interface{})
		parts := contents[0].(map[string]interface{})["parts"].([]interface{})
		assert.Len(t, parts, 2)
		inline := parts[0].(map[string]interface{})["inline_data"].(map[string]interface{})
		assert.Equal(t, "image/jpeg", inline["mime_type"])
		assert.Equal(t, input.Base64(), inline["data"])
		assert.Equal(t, "extract the values", parts[1].(map[string]interface{})["text"])

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"modelVersion": "gemini-2.0-flash-001",
			"candidates": []map[string]interface{}{
				{
					"finishReason": "STOP",
					"content": map[string]interface{}{
						"parts": []map[string]interface{}{
							{"text": "STROKE LENGTH: 250 MM\n"},
							{"text": "FLUID: OIL"},
						},
					},
				},
			},
		})
	}))
	defer server.Close()

	out, err := newTestBackend(server.URL).Submit(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, "STROKE LENGTH: 250 MM\nFLUID: OIL", out.Text)
	assert.Equal(t, "gemini-2.0-flash-001", out.ModelUsed)
}

func TestGeminiBackend_Submit_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "15")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"status":"RESOURCE_EXHAUSTED"}}`))
	}))
	defer server.Close()

	_, err := newTestBackend(server.URL).Submit(context.Background(), input)

	var rlErr *parser.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "gemini", rlErr.Provider)
	be, ok := parser.AsBackendError(err)
	require.True(t, ok)
	assert.Equal(t, parser.BackendRejected, be.Kind)
}

func TestGeminiBackend_Submit_NoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[],"promptFeedback":{"blockReason":"SAFETY"}}`))
	}))
	defer server.Close()

	_, err := newTestBackend(server.URL).Submit(context.Background(), input)

	be, ok := parser.AsBackendError(err)
	require.True(t, ok)
	assert.Equal(t, parser.BackendBadResponse, be.Kind)
}

func TestGeminiBackend_Submit_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>gateway</html>`))
	}))
	defer server.Close()

	_, err := newTestBackend(server.URL).Submit(context.Background(), input)

	be, ok := parser.AsBackendError(err)
	require.True(t, ok)
	assert.Equal(t, parser.BackendBadResponse, be.Kind)
}

func TestGeminiBackend_Submit_MalformedEndpointIsBadResponse(t *testing.T) {
	b := newTestBackend("://no-scheme")

	_, err := b.Submit(context.Background(), input)

	require.Error(t, err)
	be, ok := parser.AsBackendError(err)
	require.True(t, ok)
	assert.Equal(t, parser.BackendBadResponse, be.Kind)
	assert.Equal(t, "gemini", be.Provider)
}
