package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/mivamind/casegrade-backend/internal/logger"
	"github.com/mivamind/casegrade-backend/internal/pkg/apperr"
)

// AIClient is the text-generation backend of the grading pipeline. The
// backend is swappable: anything that turns a prompt into raw text
// satisfies it.
type AIClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type AIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	// Temperature stays low but non-zero: repeated gradings of one
	// transcript are schema-equivalent, not byte-identical.
	Temperature float64
	// MaxTokens bounds the output; the structured result (summary, three
	// scores, up to ~6 strength/weakness items) fits comfortably.
	MaxTokens int
	Timeout   time.Duration
}

type openAIClient struct {
	log         *logger.Logger
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
}

func NewOpenAIClient(log *logger.Logger, cfg AIConfig) (AIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	temperature := cfg.Temperature
	if temperature <= 0 {
		temperature = 0.3
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1200
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &openAIClient{
		log:         log.With("service", "OpenAIClient"),
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     baseURL,
		apiKey:      cfg.APIKey,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
	}, nil
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends one prompt and returns the raw completion text. It
// never retries: retry policy for backend failures belongs to the
// caller, where the idempotency check makes a full re-run safe.
func (c *openAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	reqBody := chatCompletionRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(reqBody); err != nil {
		return "", fmt.Errorf("%w: encode request: %v", apperr.ErrBackendUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", &buf)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrBackendUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %v", apperr.ErrBackendTimeout, err)
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return "", fmt.Errorf("%w: %v", apperr.ErrBackendTimeout, err)
		}
		return "", fmt.Errorf("%w: %v", apperr.ErrBackendUnavailable, err)
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return "", fmt.Errorf("%w: read response: %v", apperr.ErrBackendUnavailable, readErr)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", fmt.Errorf("%w: http 429: %s", apperr.ErrRateLimited, string(raw))
	case resp.StatusCode == http.StatusRequestTimeout:
		return "", fmt.Errorf("%w: http 408", apperr.ErrBackendTimeout)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return "", fmt.Errorf("%w: http %d: %s", apperr.ErrBackendUnavailable, resp.StatusCode, string(raw))
	}

	var payload chatCompletionResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", apperr.ErrBackendUnavailable, err)
	}
	if len(payload.Choices) == 0 {
		return "", fmt.Errorf("%w: response had no choices", apperr.ErrBackendUnavailable)
	}
	return payload.Choices[0].Message.Content, nil
}
