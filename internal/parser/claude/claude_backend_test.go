package claude_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drawsheet/internal/config"
	"drawsheet/internal/parser"
	"drawsheet/internal/parser/claude"
	"drawsheet/internal/port"
)

var input = port.VisionRequest{Instruction: "extract the values", MIMEType: "image/png", Image: []byte("png-bytes")}

func newTestBackend(serverURL string) *claude.Backend {
	cfg := &config.ParserProviderConfig{
		Provider:     "claude",
		APIKey:       "test-api-key",
		DefaultModel: "claude-sonnet-4-20250514",
		TimeoutSecs:  30,
	}
	return claude.NewBackendWithEndpoint(cfg, serverURL)
}

func TestClaudeBackend_Submit_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-api-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		var reqBody map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.Equal(t, "claude-sonnet-4-20250514", reqBody["model"])

		msg := reqBody["messages"].([]interface{})[0].(map[string]interface{})
		content := msg["content"].([]interface{})
		assert.Len(t, content, 2)

		imageBlock := content[0].(map[string]interface{})
		assert.Equal(t, "image", imageBlock["type"])
		source := imageBlock["source"].(map[string]interface{})
		assert.Equal(t, "image/png", source["media_type"])
		assert.Equal(t, input.Base64(), source["data"])

		textBlock := content[1].(map[string]interface{})
		assert.Equal(t, "extract the values", textBlock["text"])

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"model":       "claude-sonnet-4-20250514",
			"stop_reason": "end_turn",
			"content": []map[string]interface{}{
				{"type": "text", "text": "BORE DIAMETER: 63 MM"},
			},
		})
	}))
	defer server.Close()

	out, err := newTestBackend(server.URL).Submit(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, "BORE DIAMETER: 63 MM", out.Text)
	assert.Equal(t, "claude", out.Provider)
}

func TestClaudeBackend_Submit_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	}))
	defer server.Close()

	_, err := newTestBackend(server.URL).Submit(context.Background(), input)

	be, ok := parser.AsBackendError(err)
	require.True(t, ok)
	assert.Equal(t, parser.BackendRejected, be.Kind)
	assert.Equal(t, http.StatusUnauthorized, be.StatusCode)
}

func TestClaudeBackend_Submit_Truncated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"stop_reason": "max_tokens",
			"content":     []map[string]interface{}{{"type": "text", "text": "BORE DIAM"}},
		})
	}))
	defer server.Close()

	_, err := newTestBackend(server.URL).Submit(context.Background(), input)

	be, ok := parser.AsBackendError(err)
	require.True(t, ok)
	assert.Equal(t, parser.BackendBadResponse, be.Kind)
}

func TestClaudeBackend_Submit_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestBackend(url).Submit(context.Background(), input)

	be, ok := parser.AsBackendError(err)
	require.True(t, ok)
	assert.Equal(t, parser.BackendUnreachable, be.Kind)
}

func TestClaudeBackend_Submit_MalformedEndpointIsBadResponse(t *testing.T) {
	b := newTestBackend("://no-scheme")

	_, err := b.Submit(context.Background(), input)

	require.Error(t, err)
	be, ok := parser.AsBackendError(err)
	require.True(t, ok)
	assert.Equal(t, parser.BackendBadResponse, be.Kind)
	assert.Equal(t, "claude", be.Provider)
}
