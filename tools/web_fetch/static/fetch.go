package static

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
	"github.com/mohammad-safakhou/marketscope/tools/web_fetch/models"
)

type Fetch struct {
	Timeout  time.Duration
	MaxChars int
	Client   *http.Client
}

// Exec downloads a page over plain HTTP and extracts its readable text.
// Transport and extraction failures degrade to a stub result instead of an
// error so one dead page never sinks a whole evidence pass.
func (f Fetch) Exec(ctx context.Context, pageURL string) (models.Result, error) {
	if strings.TrimSpace(pageURL) == "" {
		return models.Result{}, errors.New("invalid url")
	}

	ctx, cancel := context.WithTimeout(ctx, f.Timeout)
	defer cancel()
	t0 := time.Now()

	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return models.Result{URL: pageURL, Status: 599, FetchMS: int(time.Since(t0) / time.Millisecond)}, nil
	}
	req.Header.Set("User-Agent", "MarketscopeAgent/1.0 (+contact@example.com)")
	req.Header.Set("Accept", "text/html")

	resp, err := f.httpClient().Do(req)
	if err != nil {
		return models.Result{URL: pageURL, Status: 599, FetchMS: int(time.Since(t0) / time.Millisecond)}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Result{URL: pageURL, Status: resp.StatusCode, FetchMS: int(time.Since(t0) / time.Millisecond)}, nil
	}

	html, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Result{URL: pageURL, Status: resp.StatusCode, FetchMS: int(time.Since(t0) / time.Millisecond)}, nil
	}

	article, err := readability.FromReader(strings.NewReader(string(html)), mustParseURL(pageURL))
	if err != nil {
		return models.Result{URL: pageURL, Status: resp.StatusCode, FetchMS: int(time.Since(t0) / time.Millisecond)}, nil
	}
	text := article.TextContent
	if f.MaxChars > 0 && len(text) > f.MaxChars {
		text = text[:f.MaxChars]
	}

	sum := sha1.Sum(html)

	return models.Result{
		URL:      pageURL,
		Title:    strings.TrimSpace(article.Title),
		Text:     strings.TrimSpace(text),
		HTMLHash: hex.EncodeToString(sum[:]),
		Status:   resp.StatusCode,
		FetchMS:  int(time.Since(t0) / time.Millisecond),
	}, nil
}

func (f Fetch) httpClient() *http.Client {
	if f.Client != nil {
		return f.Client
	}
	return http.DefaultClient
}

func mustParseURL(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		return &url.URL{}
	}
	return u
}
