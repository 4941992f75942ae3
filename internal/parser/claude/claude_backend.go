package claude

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"drawsheet/internal/config"
	"drawsheet/internal/parser"
	"drawsheet/internal/port"
)

const (
	providerName = "claude"
	apiURL       = "https://api.anthropic.com/v1/messages"
	apiVersion   = "2023-06-01"
	maxTokens    = 1024
)

func init() {
	parser.RegisterProvider(providerName, func(cfg *config.ParserProviderConfig) (port.VisionBackend, error) {
		return NewBackend(cfg), nil
	})
}

// Backend implements port.VisionBackend using the Anthropic Messages API.
type Backend struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewBackend creates a Claude-based vision backend from a provider config.
func NewBackend(cfg *config.ParserProviderConfig) *Backend {
	endpoint := apiURL
	if cfg.BaseURL != "" {
		endpoint = cfg.BaseURL
	}
	return newBackend(cfg, endpoint)
}

// NewBackendWithEndpoint creates a backend pointing at a custom API endpoint (for testing).
func NewBackendWithEndpoint(cfg *config.ParserProviderConfig, endpoint string) *Backend {
	return newBackend(cfg, endpoint)
}

func newBackend(cfg *config.ParserProviderConfig, endpoint string) *Backend {
	model := cfg.DefaultModel
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Backend{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (b *Backend) Submit(ctx context.Context, input port.VisionRequest) (*port.VisionResponse, error) {
	reqBody := map[string]interface{}{
		"model":      b.model,
		"max_tokens": maxTokens,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": buildContentBlocks(input),
			},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, parser.BadResponse(providerName, fmt.Errorf("marshaling request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, parser.BadResponse(providerName, fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", b.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, parser.Unreachable(providerName, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, parser.Unreachable(providerName, fmt.Errorf("reading response: %w", err))
	}

	if err := parser.CheckStatus(providerName, resp, respBody); err != nil {
		return nil, err
	}

	return parseResponse(respBody, b.model)
}

func buildContentBlocks(input port.VisionRequest) []map[string]interface{} {
	return []map[string]interface{}{
		{
			"type": "image",
			"source": map[string]interface{}{
				"type":       "base64",
				"media_type": input.MIMEType,
				"data":       input.Base64(),
			},
		},
		{
			"type": "text",
			"text": input.Instruction,
		},
	}
}

// apiResponse models the Anthropic Messages API response.
type apiResponse struct {
	Type    string `json:"type"`
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func parseResponse(body []byte, model string) (*port.VisionResponse, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, parser.BadResponse(providerName, fmt.Errorf("unmarshaling response: %w", err))
	}

	if resp.Error != nil {
		return nil, parser.BadResponse(providerName, fmt.Errorf("%s: %s", resp.Error.Type, resp.Error.Message))
	}

	if resp.StopReason == "max_tokens" {
		return nil, parser.BadResponse(providerName, fmt.Errorf("output truncated (stop_reason: max_tokens)"))
	}

	var parts []string
	for _, block := range resp.Content {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	if len(parts) == 0 {
		return nil, parser.BadResponse(providerName, fmt.Errorf("empty response: no text content"))
	}

	if resp.Model != "" {
		model = resp.Model
	}
	return &port.VisionResponse{
		Text:      strings.Join(parts, "\n"),
		ModelUsed: model,
		Provider:  providerName,
	}, nil
}
