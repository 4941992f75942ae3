package openrouter

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/tidwall/gjson"

	"drawsheet/internal/config"
	"drawsheet/internal/parser"
	"drawsheet/internal/port"
)

const (
	providerName = "openrouter"
	apiBaseURL   = "https://openrouter.ai/api/v1/"
	defaultModel = "qwen/qwen2.5-vl-72b-instruct:free"
	maxTokens    = 1024
)

func init() {
	parser.RegisterProvider(providerName, func(cfg *config.ParserProviderConfig) (port.VisionBackend, error) {
		return NewBackend(cfg), nil
	})
}

// Backend implements port.VisionBackend against OpenRouter's
// OpenAI-compatible chat completions endpoint.
type Backend struct {
	client openai.Client
	model  string
}

// NewBackend creates an OpenRouter-backed vision backend.
func NewBackend(cfg *config.ParserProviderConfig) *Backend {
	base := apiBaseURL
	if cfg.BaseURL != "" {
		base = cfg.BaseURL
	}
	return newBackend(cfg, base)
}

// NewBackendWithEndpoint creates a backend pointing at a custom base URL (for testing).
func NewBackendWithEndpoint(cfg *config.ParserProviderConfig, baseURL string) *Backend {
	return newBackend(cfg, baseURL)
}

func newBackend(cfg *config.ParserProviderConfig, baseURL string) *Backend {
	model := cfg.DefaultModel
	if model == "" {
		model = defaultModel
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	// One request per extraction; retrying is the caller's decision.
	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
		option.WithMaxRetries(0),
		option.WithHeader("X-Title", "drawsheet"),
	)
	return &Backend{client: client, model: model}
}

func (b *Backend) Submit(ctx context.Context, input port.VisionRequest) (*port.VisionResponse, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(b.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(input.Instruction),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: input.DataURI(),
				}),
			}),
		},
		MaxTokens:   openai.Int(maxTokens),
		Temperature: openai.Float(0),
	}

	resp, err := b.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, mapError(err)
	}

	if len(resp.Choices) == 0 {
		if msg := gjson.Get(resp.RawJSON(), "error.message"); msg.Exists() {
			return nil, parser.BadResponse(providerName, fmt.Errorf("error envelope: %s", msg.String()))
		}
		return nil, parser.BadResponse(providerName, fmt.Errorf("empty response: no choices"))
	}

	choice := resp.Choices[0]
	if choice.FinishReason == "length" {
		return nil, parser.BadResponse(providerName, fmt.Errorf("output truncated (finish_reason: length)"))
	}
	if strings.TrimSpace(choice.Message.Content) == "" {
		return nil, parser.BadResponse(providerName, fmt.Errorf("empty response: no message content"))
	}

	model := b.model
	if resp.Model != "" {
		model = resp.Model
	}
	return &port.VisionResponse{
		Text:      choice.Message.Content,
		ModelUsed: model,
		Provider:  providerName,
	}, nil
}

func mapError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = http.StatusText(apiErr.StatusCode)
		}
		rejected := parser.Rejected(providerName, apiErr.StatusCode, []byte(msg))
		if apiErr.StatusCode == http.StatusTooManyRequests {
			retryAfter := 0
			if apiErr.Response != nil {
				retryAfter = parser.ParseRetryAfterHeader(apiErr.Response.Header.Get("Retry-After"))
			}
			return parser.NewRateLimitError(providerName, rejected, retryAfter)
		}
		return rejected
	}

	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) ||
		errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return parser.Unreachable(providerName, err)
	}
	return parser.BadResponse(providerName, err)
}
