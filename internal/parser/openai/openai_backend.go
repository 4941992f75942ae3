package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"drawsheet/internal/config"
	"drawsheet/internal/parser"
	"drawsheet/internal/port"
)

const (
	providerName = "openai"
	apiURL       = "https://api.openai.com/v1/chat/completions"
	maxTokens    = 1024
)

func init() {
	parser.RegisterProvider(providerName, func(cfg *config.ParserProviderConfig) (port.VisionBackend, error) {
		return NewBackend(cfg), nil
	})
}

// Backend implements port.VisionBackend using the OpenAI Chat Completions API.
type Backend struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewBackend creates an OpenAI-based vision backend.
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
		model = "gpt-4o"
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
		"model":       b.model,
		"max_tokens":  maxTokens,
		"temperature": 0,
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
	req.Header.Set("Authorization", "Bearer "+b.apiKey)

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
			"type": "text",
			"text": input.Instruction,
		},
		{
			"type": "image_url",
			"image_url": map[string]interface{}{
				"url": input.DataURI(),
			},
		},
	}
}

// apiResponse models the Chat Completions response.
type apiResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
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

	if len(resp.Choices) == 0 {
		return nil, parser.BadResponse(providerName, fmt.Errorf("empty response: no choices"))
	}

	choice := resp.Choices[0]
	if choice.FinishReason == "length" {
		return nil, parser.BadResponse(providerName, fmt.Errorf("output truncated (finish_reason: length)"))
	}
	if choice.Message.Content == "" {
		return nil, parser.BadResponse(providerName, fmt.Errorf("empty response: no message content"))
	}

	if resp.Model != "" {
		model = resp.Model
	}
	return &port.VisionResponse{
		Text:      choice.Message.Content,
		ModelUsed: model,
		Provider:  providerName,
	}, nil
}
