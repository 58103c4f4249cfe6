package provider

import (
	"errors"
	"os"
	"strings"

	"github.com/mohammad-safakhou/marketscope/config"
	"github.com/mohammad-safakhou/marketscope/internal/research"
	openai_provider "github.com/mohammad-safakhou/marketscope/provider/openai"
)

// Client represents different LLM providers
type Client string

const (
	OpenAI    Client = "openai"
	Anthropic Client = "anthropic"
	Gemini    Client = "gemini"
)

// NewChatOracle creates an LLM client based on the provided configuration.
// A missing API key is not an error: it yields the unavailable variant so
// the pipeline runs in fallback mode instead of failing at startup.
func NewChatOracle(client Client, cfg config.LLMConfig) (research.ChatOracle, error) {
	switch client {
	case OpenAI:
		apiKey := strings.TrimSpace(cfg.APIKey)
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		if apiKey == "" {
			return research.UnavailableChat{}, nil
		}
		return openai_provider.NewClient(
			apiKey,
			cfg.BaseURL,
			cfg.Model,
			cfg.Temperature,
			cfg.MaxTokens,
			cfg.Timeout,
		), nil
	case Anthropic:
		return nil, errors.New("anthropic client not implemented yet")
	case Gemini:
		return nil, errors.New("gemini client not implemented yet")
	default:
		return nil, errors.New("unsupported LLM provider")
	}
}
