package web_search

import (
	"errors"
	"os"
	"strings"

	"github.com/mohammad-safakhou/marketscope/config"
	"github.com/mohammad-safakhou/marketscope/internal/cache"
	"github.com/mohammad-safakhou/marketscope/internal/research"
	"github.com/mohammad-safakhou/marketscope/tools/web_search/brave"
	"github.com/mohammad-safakhou/marketscope/tools/web_search/serper"
)

type Provider string

const (
	SerperProvider Provider = "serper"
	BraveProvider  Provider = "brave"
)

var ErrUnsupportedProvider = errors.New("unsupported provider")

// NewSearchOracle builds the web search client for the configured provider.
// A missing API key is not an error: it yields the unavailable variant so
// the pipeline runs in fallback mode instead of failing at startup.
func NewSearchOracle(provider Provider, cfg config.SearchConfig, searchCache *cache.SearchCache) (research.SearchOracle, error) {
	if provider == "" {
		provider = SerperProvider
	}
	switch provider {
	case SerperProvider:
		apiKey := strings.TrimSpace(cfg.SerperAPIKey)
		if apiKey == "" {
			apiKey = os.Getenv("SERPER_API_KEY")
		}
		if apiKey == "" {
			return research.UnavailableSearch{}, nil
		}
		return serper.Search{
			ApiKey:     apiKey,
			Endpoint:   cfg.Endpoint,
			MaxResults: cfg.MaxResults,
			Timeout:    cfg.Timeout,
			Cache:      searchCache,
		}, nil
	case BraveProvider:
		apiKey := strings.TrimSpace(cfg.BraveAPIKey)
		if apiKey == "" {
			apiKey = os.Getenv("BRAVE_API_KEY")
		}
		if apiKey == "" {
			return research.UnavailableSearch{}, nil
		}
		return brave.Search{
			ApiKey:     apiKey,
			MaxResults: cfg.MaxResults,
			Timeout:    cfg.Timeout,
			Cache:      searchCache,
		}, nil
	default:
		return nil, ErrUnsupportedProvider
	}
}
