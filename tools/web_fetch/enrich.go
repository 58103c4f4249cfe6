package web_fetch

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/blevesearch/bleve"

	"github.com/mohammad-safakhou/marketscope/config"
	"github.com/mohammad-safakhou/marketscope/internal/helpers"
	"github.com/mohammad-safakhou/marketscope/internal/research"
)

const (
	maxEvidencePages = 3
	chunkChars       = 1000
	chunkOverlap     = 200
	defaultTopChunks = 3
)

// Evidence fetches the top search result pages and distills them into the
// chunks most relevant to the query.
type Evidence struct {
	Fetcher   WebFetcher
	TopChunks int
	Logger    *log.Logger
}

// chunkDoc is one indexed slice of a fetched page.
type chunkDoc struct {
	DocID      string
	URL        string
	Title      string
	Text       string
	ChunkIndex int
}

// Collect pulls the organic result pages referenced by a search response
// body and returns the best matching text chunks, joined for prompt use.
// Anything going wrong degrades to an empty string.
func (e *Evidence) Collect(ctx context.Context, query, body string) string {
	if e == nil || e.Fetcher == nil {
		return ""
	}
	links := organicLinks(body, maxEvidencePages)
	if len(links) == 0 {
		return ""
	}

	var chunks []chunkDoc
	for _, link := range links {
		res, err := e.Fetcher.Exec(ctx, link)
		if err != nil {
			continue
		}
		if strings.TrimSpace(res.Text) == "" {
			continue
		}
		hash := sha1Hex(res.Text)
		for i, part := range makeChunks(res.Text, chunkChars, chunkOverlap) {
			chunks = append(chunks, chunkDoc{
				DocID:      fmt.Sprintf("%s#%03d", hash, i),
				URL:        res.URL,
				Title:      res.Title,
				Text:       part,
				ChunkIndex: i,
			})
		}
	}
	if len(chunks) == 0 {
		return ""
	}

	top, err := rankChunks(chunks, query, e.topChunks())
	if err != nil {
		e.logf("chunk ranking failed: %v", err)
		return ""
	}
	return strings.Join(top, "\n\n")
}

func (e *Evidence) topChunks() int {
	if e.TopChunks > 0 {
		return e.TopChunks
	}
	return defaultTopChunks
}

func (e *Evidence) logf(format string, args ...interface{}) {
	if e.Logger != nil {
		e.Logger.Printf(format, args...)
	}
}

// organicLinks pulls up to max organic result URLs out of a search response
// body. URLs are canonicalized so the same page listed twice, with or
// without tracking parameters, is fetched once. Bodies without an organic
// section yield nothing.
func organicLinks(body string, max int) []string {
	var parsed struct {
		Organic []struct {
			Link string `json:"link"`
		} `json:"organic"`
	}
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		return nil
	}
	var out []string
	seen := make(map[string]struct{})
	for _, item := range parsed.Organic {
		canon, err := helpers.CanonicalURL(item.Link)
		if err != nil {
			continue
		}
		if _, dup := seen[canon]; dup {
			continue
		}
		seen[canon] = struct{}{}
		out = append(out, canon)
		if len(out) >= max {
			break
		}
	}
	return out
}

// rankChunks indexes the chunks in a throwaway in-memory index and returns
// the text of the k best matches for the query.
func rankChunks(chunks []chunkDoc, query string, k int) ([]string, error) {
	index, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, err
	}
	byID := make(map[string]chunkDoc, len(chunks))
	for _, c := range chunks {
		byID[c.DocID] = c
		if err := index.Index(c.DocID, c); err != nil {
			return nil, err
		}
	}

	q := bleve.NewQueryStringQuery(query)
	req := bleve.NewSearchRequestOptions(q, k*3, 0, false)
	res, err := index.Search(req)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, hit := range res.Hits {
		out = append(out, byID[hit.ID].Text)
		if len(out) >= k {
			break
		}
	}
	return out, nil
}

// EnrichedSearch decorates a search oracle with page evidence: the raw
// search body comes back with the most relevant page chunks appended.
type EnrichedSearch struct {
	Inner    research.SearchOracle
	Evidence *Evidence
}

func (e EnrichedSearch) Search(ctx context.Context, query string) (string, error) {
	body, err := e.Inner.Search(ctx, query)
	if err != nil {
		return body, err
	}
	extra := e.Evidence.Collect(ctx, query, body)
	if extra == "" {
		return body, nil
	}
	return body + "\n\nPage evidence:\n" + extra, nil
}

// NewEnrichedSearch wires enrichment around an oracle per config. Disabled
// fetch hands the oracle back untouched.
func NewEnrichedSearch(cfg config.FetchConfig, inner research.SearchOracle, logger *log.Logger) (research.SearchOracle, error) {
	if !cfg.Enabled {
		return inner, nil
	}
	fetcherType := StaticFetcherType
	if cfg.Rendered {
		fetcherType = ChromedpFetcherType
	}
	fetcher, err := NewWebFetcher(fetcherType, cfg.Timeout, 0)
	if err != nil {
		return nil, err
	}
	return EnrichedSearch{
		Inner:    inner,
		Evidence: &Evidence{Fetcher: fetcher, TopChunks: cfg.TopChunks, Logger: logger},
	}, nil
}

// Utility functions (can be moved to a utils package)
func sha1Hex(s string) string {
	h := sha1.Sum([]byte(s))
	return hex.EncodeToString(h[:])
}

func makeChunks(text string, approx, overlap int) []string {
	text = strings.TrimSpace(text)
	if len(text) <= approx {
		return []string{text}
	}
	var chunks []string
	for start := 0; start < len(text); {
		end := start + approx
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, text[start:end])
		if end == len(text) {
			break
		}
		start = end - overlap
		if start < 0 {
			start = 0
		}
	}
	return chunks
}
