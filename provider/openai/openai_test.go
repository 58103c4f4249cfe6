package openai_provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCompleteSendsPromptAndParsesReply(t *testing.T) {
	var got request
	var path, auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"Smart plugs are trending."}}]}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", srv.URL, "gpt-4o-mini", 0.7, 256, 5*time.Second)
	out, err := c.Complete(context.Background(), "Summarize the smart plug market")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "Smart plugs are trending." {
		t.Fatalf("unexpected reply: %q", out)
	}
	if path != "/chat/completions" {
		t.Fatalf("unexpected path: %s", path)
	}
	if auth != "Bearer test-key" {
		t.Fatalf("unexpected auth header: %q", auth)
	}
	if got.Model != "gpt-4o-mini" {
		t.Fatalf("unexpected model: %s", got.Model)
	}
	if got.MaxTokens != 256 {
		t.Fatalf("unexpected max_tokens: %d", got.MaxTokens)
	}
	if len(got.Messages) != 1 || got.Messages[0].Role != "user" || got.Messages[0].Content != "Summarize the smart plug market" {
		t.Fatalf("unexpected messages: %+v", got.Messages)
	}
}

func TestCompleteErrorsOnBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient("test-key", srv.URL, "gpt-4o-mini", 0.7, 256, 5*time.Second)
	if _, err := c.Complete(context.Background(), "anything"); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}

func TestCompleteErrorsOnEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", srv.URL, "gpt-4o-mini", 0.7, 256, 5*time.Second)
	if _, err := c.Complete(context.Background(), "anything"); err == nil {
		t.Fatal("expected error for empty choices")
	}
}
