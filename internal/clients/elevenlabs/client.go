// Package elevenlabs talks to the ElevenLabs conversational-AI API. It
// is the transcript source of the grading pipeline: conversations are
// fetched by id once a voice session ends. The upstream lags session
// termination by a few seconds, so the fetch carries one bounded retry.
package elevenlabs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/mivamind/casegrade-backend/internal/logger"
	"github.com/mivamind/casegrade-backend/internal/pkg/apperr"
	"github.com/mivamind/casegrade-backend/internal/pkg/retry"
	"github.com/mivamind/casegrade-backend/internal/types"
)

const defaultBaseURL = "https://api.elevenlabs.io"

type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	// RetryAttempts bounds the total fetch tries for a conversation that
	// is not yet available. The upstream usually catches up within one
	// RetryDelay window.
	RetryAttempts int
	RetryDelay    time.Duration
	// Sleep overrides the retry wait; tests inject a recorder here.
	Sleep func(ctx context.Context, d time.Duration) error
}

type Client struct {
	log        *logger.Logger
	httpClient *http.Client
	baseURL    string
	apiKey     string
	retryCfg   retry.Config
}

func New(log *logger.Logger, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("missing ELEVENLABS_API_KEY")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	attempts := cfg.RetryAttempts
	if attempts < 1 {
		attempts = 2
	}
	delay := cfg.RetryDelay
	if delay <= 0 {
		delay = 10 * time.Second
	}
	return &Client{
		log:        log.With("client", "ElevenLabs"),
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		retryCfg: retry.Config{
			MaxAttempts: attempts,
			Delay:       delay,
			Sleep:       cfg.Sleep,
		},
	}, nil
}

type conversationResponse struct {
	ConversationID string `json:"conversation_id"`
	Status         string `json:"status"`
	Transcript     []struct {
		Role    string `json:"role"`
		Message string `json:"message"`
	} `json:"transcript"`
}

// FetchTranscript returns the normalized message sequence for one
// conversation. A conversation that has not materialized yet surfaces
// apperr.ErrTranscriptNotReady once the retry budget is exhausted; any
// other failure surfaces apperr.ErrTranscriptUpstream.
func (c *Client) FetchTranscript(ctx context.Context, conversationID string) (types.Transcript, error) {
	var transcript types.Transcript
	err := retry.Do(ctx, c.retryCfg, func(ctx context.Context) error {
		var fetchErr error
		transcript, fetchErr = c.fetchOnce(ctx, conversationID)
		if errors.Is(fetchErr, apperr.ErrTranscriptNotReady) {
			c.log.Warn("Conversation not yet available, will retry",
				"conversation_id", conversationID,
				"delay", c.retryCfg.Delay.String(),
			)
		}
		return fetchErr
	}, func(err error) bool {
		return errors.Is(err, apperr.ErrTranscriptNotReady)
	})
	if err != nil {
		return nil, err
	}
	return transcript, nil
}

func (c *Client) fetchOnce(ctx context.Context, conversationID string) (types.Transcript, error) {
	endpoint := fmt.Sprintf("%s/v1/convai/conversations/%s", c.baseURL, url.PathEscape(conversationID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrTranscriptUpstream, err)
	}
	req.Header.Set("Xi-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrTranscriptUpstream, err)
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrTranscriptUpstream, readErr)
	}

	// The API 404s for a brief window after session end while the
	// conversation is still being materialized.
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: conversation %s", apperr.ErrTranscriptNotReady, conversationID)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: http %d: %s", apperr.ErrTranscriptUpstream, resp.StatusCode, string(raw))
	}

	var payload conversationResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", apperr.ErrTranscriptUpstream, err)
	}
	if len(payload.Transcript) == 0 && payload.Status != "done" && payload.Status != "failed" {
		return nil, fmt.Errorf("%w: conversation %s status %q", apperr.ErrTranscriptNotReady, conversationID, payload.Status)
	}

	transcript := make(types.Transcript, 0, len(payload.Transcript))
	for _, msg := range payload.Transcript {
		transcript = append(transcript, types.TranscriptMessage{Role: msg.Role, Message: msg.Message})
	}
	return transcript, nil
}

type signedURLResponse struct {
	SignedURL string `json:"signed_url"`
}

// GetSignedURL returns a short-lived websocket URL the voice client
// uses to open an agent session.
func (c *Client) GetSignedURL(ctx context.Context, agentID string) (string, error) {
	endpoint := fmt.Sprintf("%s/v1/convai/conversation/get-signed-url?agent_id=%s", c.baseURL, url.QueryEscape(agentID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrTranscriptUpstream, err)
	}
	req.Header.Set("Xi-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrTranscriptUpstream, err)
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrTranscriptUpstream, readErr)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: http %d: %s", apperr.ErrTranscriptUpstream, resp.StatusCode, string(raw))
	}
	var payload signedURLResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", fmt.Errorf("%w: decode: %v", apperr.ErrTranscriptUpstream, err)
	}
	if payload.SignedURL == "" {
		return "", fmt.Errorf("%w: empty signed url", apperr.ErrTranscriptUpstream)
	}
	return payload.SignedURL, nil
}
