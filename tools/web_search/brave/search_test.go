package brave

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

const braveReply = `{"web":{"results":[
	{"title":"Echo Dot","url":"https://example.com/echo","description":"Top seller"},
	{"title":"Smart Plug","url":"https://example.com/plug","description":"Budget pick"},
	{"title":"Hub Mini","url":"https://example.com/hub","description":"New entry"}
]}}`

func TestSearchNormalizesResults(t *testing.T) {
	var calls int32
	var method, token, count string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		method = r.Method
		token = r.Header.Get("X-Subscription-Token")
		count = r.URL.Query().Get("count")
		_, _ = w.Write([]byte(braveReply))
	}))
	defer srv.Close()

	s := Search{ApiKey: "brave-key", Endpoint: srv.URL, MaxResults: 2, Timeout: 5 * time.Second}
	body, err := s.Search(context.Background(), "smart home market gap")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected 1 request, got %d", got)
	}
	if method != http.MethodGet {
		t.Fatalf("expected GET, got %s", method)
	}
	if token != "brave-key" {
		t.Fatalf("unexpected token header: %q", token)
	}
	if count != "2" {
		t.Fatalf("unexpected count param: %q", count)
	}

	var out struct {
		Results []map[string]string `json:"results"`
		Query   string              `json:"query"`
	}
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		t.Fatalf("body is not valid JSON: %v", err)
	}
	if out.Query != "smart home market gap" {
		t.Fatalf("unexpected query echo: %q", out.Query)
	}
	if len(out.Results) != 2 {
		t.Fatalf("expected results capped at 2, got %d", len(out.Results))
	}
	first := out.Results[0]
	if first["title"] != "Echo Dot" || first["link"] != "https://example.com/echo" || first["snippet"] != "Top seller" {
		t.Fatalf("unexpected first result: %v", first)
	}
}

func TestSearchRetriesTransientFailures(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			http.Error(w, "upstream blew up", http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(braveReply))
	}))
	defer srv.Close()

	s := Search{ApiKey: "brave-key", Endpoint: srv.URL, Timeout: 5 * time.Second}
	body, err := s.Search(context.Background(), "trending kitchen gadgets")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("expected 3 requests, got %d", got)
	}
	if !strings.Contains(body, "Echo Dot") {
		t.Fatalf("unexpected body: %q", body)
	}
}

func TestSearchExhaustionDegradesToStub(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := Search{ApiKey: "brave-key", Endpoint: srv.URL, Timeout: 5 * time.Second}
	body, err := s.Search(context.Background(), "wireless earbuds competitor analysis")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != maxAttempts {
		t.Fatalf("expected %d requests, got %d", maxAttempts, got)
	}
	if !strings.Contains(body, `"status": "enterprise_fallback"`) {
		t.Fatalf("expected stub body, got %q", body)
	}
}
