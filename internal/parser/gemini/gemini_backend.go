package gemini

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
	providerName = "gemini"
	apiBaseURL   = "https://generativelanguage.googleapis.com/v1beta/models"
)

func init() {
	parser.RegisterProvider(providerName, func(cfg *config.ParserProviderConfig) (port.VisionBackend, error) {
		return NewBackend(cfg), nil
	})
}

// Backend implements port.VisionBackend using Google's Gemini API.
type Backend struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewBackend creates a Gemini-based vision backend.
func NewBackend(cfg *config.ParserProviderConfig) *Backend {
	return newBackend(cfg, cfg.BaseURL)
}

// NewBackendWithEndpoint creates a backend pointing at a custom API endpoint (for testing).
func NewBackendWithEndpoint(cfg *config.ParserProviderConfig, endpoint string) *Backend {
	return newBackend(cfg, endpoint)
}

func newBackend(cfg *config.ParserProviderConfig, endpoint string) *Backend {
	model := cfg.DefaultModel
	if model == "" {
		model = "gemini-2.0-flash"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	if endpoint == "" {
		endpoint = fmt.Sprintf("%s/%s:generateContent", apiBaseURL, model)
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
		"contents": []map[string]interface{}{
			{
				"role": "user",
				"parts": []map[string]interface{}{
					{
						"inline_data": map[string]interface{}{
							"mime_type": input.MIMEType,
							"data":      input.Base64(),
						},
					},
					{
						"text": input.Instruction,
					},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"temperature": 0,
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
	req.Header.Set("x-goog-api-key", b.apiKey)

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

// apiResponse models the Gemini generateContent response.
type apiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	ModelVersion string `json:"modelVersion"`
	Error        *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func parseResponse(body []byte, model string) (*port.VisionResponse, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, parser.BadResponse(providerName, fmt.Errorf("unmarshaling response: %w", err))
	}

	if resp.Error != nil {
		return nil, parser.BadResponse(providerName, fmt.Errorf("%s: %s", resp.Error.Status, resp.Error.Message))
	}

	if len(resp.Candidates) == 0 {
		return nil, parser.BadResponse(providerName, fmt.Errorf("empty response: no candidates"))
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == "MAX_TOKENS" {
		return nil, parser.BadResponse(providerName, fmt.Errorf("output truncated (finishReason: MAX_TOKENS)"))
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if part.Text != "" {
			parts = append(parts, part.Text)
		}
	}
	if len(parts) == 0 {
		return nil, parser.BadResponse(providerName, fmt.Errorf("empty response: no text parts (finishReason: %s)", candidate.FinishReason))
	}

	if resp.ModelVersion != "" {
		model = resp.ModelVersion
	}
	return &port.VisionResponse{
		Text:      strings.Join(parts, ""),
		ModelUsed: model,
		Provider:  providerName,
	}, nil
}
