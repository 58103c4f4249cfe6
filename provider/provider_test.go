package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mohammad-safakhou/marketscope/config"
	"github.com/mohammad-safakhou/marketscope/internal/research"
)

func TestNewChatOracleWithoutKeyFallsBack(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	oracle, err := NewChatOracle(OpenAI, config.LLMConfig{})
	if err != nil {
		t.Fatalf("NewChatOracle: %v", err)
	}
	if _, ok := oracle.(research.UnavailableChat); !ok {
		t.Fatalf("expected unavailable chat oracle, got %T", oracle)
	}
	if _, err := oracle.Complete(context.Background(), "anything"); !errors.Is(err, research.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestNewChatOracleWithKey(t *testing.T) {
	cfg := config.LLMConfig{
		APIKey:      "sk-test",
		Model:       "gpt-4o-mini",
		MaxTokens:   128,
		Temperature: 0.2,
		Timeout:     time.Second,
	}
	oracle, err := NewChatOracle(OpenAI, cfg)
	if err != nil {
		t.Fatalf("NewChatOracle: %v", err)
	}
	if _, ok := oracle.(research.UnavailableChat); ok {
		t.Fatal("expected a live client when an API key is configured")
	}
}

func TestNewChatOracleUnsupportedProvider(t *testing.T) {
	if _, err := NewChatOracle(Client("llama"), config.LLMConfig{}); err == nil {
		t.Fatal("expected error for unsupported provider")
	}
}
