package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mivamind/casegrade-backend/internal/logger"
	"github.com/mivamind/casegrade-backend/internal/pkg/apperr"
)

func newTestAIClient(t *testing.T, serverURL string, timeout time.Duration) AIClient {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	client, err := NewOpenAIClient(log, AIConfig{
		APIKey:  "test-key",
		BaseURL: serverURL,
		Timeout: timeout,
	})
	if err != nil {
		t.Fatalf("NewOpenAIClient: %v", err)
	}
	return client
}

func TestOpenAIClientComplete(t *testing.T) {
	var gotAuth string
	var gotReq chatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"final_score\": 55}"}}]}`))
	}))
	defer server.Close()

	client := newTestAIClient(t, server.URL, 0)
	out, err := client.Complete(context.Background(), "grade this transcript")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != `{"final_score": 55}` {
		t.Fatalf("unexpected completion: %q", out)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("authorization header: %q", gotAuth)
	}
	if len(gotReq.Messages) != 1 || gotReq.Messages[0].Content != "grade this transcript" {
		t.Fatalf("prompt not forwarded: %+v", gotReq.Messages)
	}
	if gotReq.Temperature != 0.3 {
		t.Fatalf("default temperature: want=0.3 got=%v", gotReq.Temperature)
	}
}

func TestOpenAIClientRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestAIClient(t, server.URL, 0)
	_, err := client.Complete(context.Background(), "prompt")
	if !errors.Is(err, apperr.ErrRateLimited) {
		t.Fatalf("want ErrRateLimited, got %v", err)
	}
}

func TestOpenAIClientServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestAIClient(t, server.URL, 0)
	_, err := client.Complete(context.Background(), "prompt")
	if !errors.Is(err, apperr.ErrBackendUnavailable) {
		t.Fatalf("want ErrBackendUnavailable, got %v", err)
	}
}

func TestOpenAIClientTimeout(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer server.Close()
	defer close(block)

	client := newTestAIClient(t, server.URL, 50*time.Millisecond)
	_, err := client.Complete(context.Background(), "prompt")
	if !errors.Is(err, apperr.ErrBackendTimeout) {
		t.Fatalf("want ErrBackendTimeout, got %v", err)
	}
}

func TestOpenAIClientEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	client := newTestAIClient(t, server.URL, 0)
	_, err := client.Complete(context.Background(), "prompt")
	if !errors.Is(err, apperr.ErrBackendUnavailable) {
		t.Fatalf("want ErrBackendUnavailable, got %v", err)
	}
}
