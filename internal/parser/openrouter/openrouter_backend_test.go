package openrouter_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drawsheet/internal/config"
	"drawsheet/internal/parser"
	"drawsheet/internal/parser/openrouter"
	"drawsheet/internal/port"
)

var input = port.VisionRequest{Instruction: "extract the values", MIMEType: "image/jpeg", Image: []byte("jpeg-bytes")}

func newTestBackend(serverURL string) *openrouter.Backend {
	cfg := &config.ParserProviderConfig{
		Provider:    "openrouter",
		APIKey:      "test-api-key",
		TimeoutSecs: 5,
	}
	return openrouter.NewBackendWithEndpoint(cfg, serverURL)
}

func TestOpenRouterBackend_Submit_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-api-key", r.Header.Get("Authorization"))

		var reqBody map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.Equal(t, "qwen/qwen2.5-vl-72b-instruct:free", reqBody["model"])

		msg := reqBody["messages"].([]interface{})[0].(map[string]interface{})
		assert.Equal(t, "user", msg["role"])
		content := msg["content"].([]interface{})
		assert.Len(t, content, 2)
		assert.Equal(t, "extract the values", content[0].(map[string]interface{})["text"])
		imageURL := content[1].(map[string]interface{})["image_url"].(map[string]interface{})
		assert.Equal(t, input.DataURI(), imageURL["url"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "gen-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "qwen/qwen2.5-vl-72b-instruct:free",
			"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "BORE DIAMETER: 80 MM\nFLUID: HLP 46"}}]
		}`))
	}))
	defer server.Close()

	out, err := newTestBackend(server.URL).Submit(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, "BORE DIAMETER: 80 MM\nFLUID: HLP 46", out.Text)
	assert.Equal(t, "openrouter", out.Provider)
	assert.Equal(t, "qwen/qwen2.5-vl-72b-instruct:free", out.ModelUsed)
}

func TestOpenRouterBackend_Submit_RateLimitedNoRetry(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Retry-After", "20")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"Rate limit exceeded: free-models-per-day","code":429}}`))
	}))
	defer server.Close()

	_, err := newTestBackend(server.URL).Submit(context.Background(), input)

	var rlErr *parser.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, 20*time.Second, rlErr.RetryAfter)
	assert.Equal(t, 1, calls)
}

func TestOpenRouterBackend_Submit_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"No auth credentials found","code":401}}`))
	}))
	defer server.Close()

	_, err := newTestBackend(server.URL).Submit(context.Background(), input)

	be, ok := parser.AsBackendError(err)
	require.True(t, ok)
	assert.Equal(t, parser.BackendRejected, be.Kind)
	assert.Equal(t, http.StatusUnauthorized, be.StatusCode)
}

func TestOpenRouterBackend_Submit_ErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"error":{"message":"Provider returned error","code":502}}`))
	}))
	defer server.Close()

	_, err := newTestBackend(server.URL).Submit(context.Background(), input)

	be, ok := parser.AsBackendError(err)
	require.True(t, ok)
	assert.Equal(t, parser.BackendBadResponse, be.Kind)
	assert.Contains(t, err.Error(), "Provider returned error")
}

func TestOpenRouterBackend_Submit_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestBackend(url).Submit(context.Background(), input)

	be, ok := parser.AsBackendError(err)
	require.True(t, ok)
	assert.Equal(t, parser.BackendUnreachable, be.Kind)
}
