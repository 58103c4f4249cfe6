package brave

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mohammad-safakhou/marketscope/internal/cache"
)

const (
	// DefaultEndpoint is the Brave web search API.
	DefaultEndpoint = "https://api.search.brave.com/res/v1/web/search"

	// maxAttempts bounds the client-level retry loop. Exhausting it returns
	// a stub payload instead of an error so callers always get JSON back.
	maxAttempts = 10
)

// Search queries the Brave web search API. Responses are trimmed down to
// title, link and snippet before being handed to the pipeline, so both
// providers feed the extraction stage the same shape.
type Search struct {
	ApiKey     string
	Endpoint   string
	MaxResults int
	Timeout    time.Duration
	Cache      *cache.SearchCache
	Client     *http.Client
}

// Search fetches results, retrying transient failures. Every attempt failing
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
	// https://api.search.brave.com/app/documentation/web-search
	endpoint := s.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("q", query)
	if s.MaxResults > 0 {
		q.Set("count", strconv.Itoa(s.MaxResults))
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", s.ApiKey)

	resp, err := s.httpClient().Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("brave returned status: %d", resp.StatusCode)
	}
	var raw struct {
		Web struct {
			Results []struct {
				Title       string `json:"title"`
				URL         string `json:"url"`
				Description string `json:"description"`
			} `json:"results"`
		} `json:"web"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return "", err
	}

	results := make([]map[string]string, 0, len(raw.Web.Results))
	for i, r := range raw.Web.Results {
		if s.MaxResults > 0 && i >= s.MaxResults {
			break
		}
		results = append(results, map[string]string{
			"title":   r.Title,
			"link":    r.URL,
			"snippet": r.Description,
		})
	}
	body, err := json.Marshal(map[string]any{"results": results, "query": query})
	if err != nil {
		return "", err
	}
	return string(body), nil
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
