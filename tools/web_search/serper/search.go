package serper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mohammad-safakhou/marketscope/internal/cache"
)

const (
	// DefaultEndpoint is the serper.dev search API.
	DefaultEndpoint = "https://google.serper.dev/search"

	// maxAttempts bounds the client-level retry loop. Exhausting it returns
	// a stub payload instead of an error so callers always get JSON back.
	maxAttempts = 10
)

// Search queries serper.dev and returns the raw response JSON.
type Search struct {
	ApiKey     string
	Endpoint   string
	MaxResults int
	Timeout    time.Duration
	Cache      *cache.SearchCache
	Client     *http.Client
}

// Search POSTs the query, retrying transient failures. Every attempt failing
// degrades to a stub payload rather than an error.
func (s Search) Search(ctx context.Context, query string) (string, error) {
	if body, ok := s.Cache.Get(ctx, query); ok {
		return body, nil
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if ctx.Err() != nil {
			break
		}
		body, err := s.fetch(ctx, query)
		if err != nil {
			continue
		}
		s.Cache.Set(ctx, query, body)
		return body, nil
	}
	return exhaustedBody(query), nil
}

func (s Search) fetch(ctx context.Context, query string) (string, error) {
	// https://serper.dev/ docs
	payload := map[string]any{"q": query}
	if s.MaxResults > 0 {
		payload["num"] = s.MaxResults
	}
	body, _ := json.Marshal(payload)

	endpoint := s.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(string(body)))
	if err != nil {
		return "", err
	}
	req.Header.Set("X-API-KEY", s.ApiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient().Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("serper returned status: %d", resp.StatusCode)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if !json.Valid(raw) {
		return "", fmt.Errorf("serper returned invalid JSON")
	}
	return string(raw), nil
}

func (s Search) httpClient() *http.Client {
	if s.Client != nil {
		return s.Client
	}
	return &http.Client{Timeout: s.Timeout}
}

// exhaustedBody is the degraded payload returned once the retry budget is
// spent.
func exhaustedBody(query string) string {
	return fmt.Sprintf(`{"results": [], "query": %q, "response_time": 0.0, "status": "enterprise_fallback"}`, query)
}
