package summarizer_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"docsummarizer/internal/domain"
	"docsummarizer/internal/summarizer"
)

func TestGroqCompleterSendsDeterministicRequest(t *testing.T) {
	bodies := make(chan map[string]any, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected authorization header: %q", got)
		}

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		bodies <- body

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "llama-3.1-8b-instant",
			"choices": [{
				"index": 0,
				"message": {"role": "assistant", "content": "  short summary  "},
				"finish_reason": "stop"
			}]
		}`))
	}))
	defer srv.Close()

	c, err := summarizer.NewGroqCompleter("test-key", srv.URL)
	if err != nil {
		t.Fatalf("NewGroqCompleter returned error: %v", err)
	}

	got, err := c.Complete(context.Background(), domain.DefaultModelID, "hello")
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}

	if got != "short summary" {
		t.Fatalf("unexpected completion: %q", got)
	}

	body := <-bodies

	if body["model"] != string(domain.DefaultModelID) {
		t.Fatalf("unexpected model: %v", body["model"])
	}

	if temp, ok := body["temperature"].(float64); !ok || temp != 0 {
		t.Fatalf("expected temperature 0, got %v", body["temperature"])
	}

	if _, ok := body["max_tokens"]; ok {
		t.Fatalf("expected no max_tokens cap")
	}

	messages, ok := body["messages"].([]any)
	if !ok || len(messages) != 1 {
		t.Fatalf("expected one message, got %v", body["messages"])
	}
}

func TestGroqCompleterClassifiesErrors(t *testing.T) {
	tests := []struct {
		status    int
		transient bool
	}{
		{http.StatusTooManyRequests, true},
		{http.StatusServiceUnavailable, true},
		{http.StatusBadRequest, false},
		{http.StatusUnauthorized, false},
	}

	for _, tt := range tests {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(tt.status)
			_, _ = w.Write([]byte(`{"error": {"message": "failure", "type": "test"}}`))
		}))

		c, err := summarizer.NewGroqCompleter("test-key", srv.URL)
		if err != nil {
			srv.Close()
			t.Fatalf("NewGroqCompleter returned error: %v", err)
		}

		_, err = c.Complete(context.Background(), domain.DefaultModelID, "hello")
		srv.Close()

		if err == nil {
			t.Fatalf("status %d: expected error", tt.status)
		}

		if got := summarizer.IsTransient(err); got != tt.transient {
			t.Fatalf("status %d: expected transient=%v, got %v", tt.status, tt.transient, got)
		}

		if n := calls.Load(); n != 1 {
			t.Fatalf("status %d: expected client retries to be disabled, got %d calls", tt.status, n)
		}
	}
}

func TestGroqCompleterRejectsEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "x", "object": "chat.completion", "choices": []}`))
	}))
	defer srv.Close()

	c, err := summarizer.NewGroqCompleter("test-key", srv.URL)
	if err != nil {
		t.Fatalf("NewGroqCompleter returned error: %v", err)
	}

	if _, err := c.Complete(context.Background(), domain.DefaultModelID, "hello"); err == nil {
		t.Fatalf("expected error for empty choices")
	}
}

func TestNewGroqCompleterRequiresKey(t *testing.T) {
	if _, err := summarizer.NewGroqCompleter("  ", ""); err == nil {
		t.Fatalf("expected error for empty api key")
	}
}
