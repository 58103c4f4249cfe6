package research

import (
	"context"
	"testing"

	"github.com/mohammad-safakhou/marketscope/models"
)

func TestExtractStageParsesFencedArray(t *testing.T) {
	reply := "Here is the data:\n```json\n[{\"product\": \"Smart Plug\", \"demand_score\": 7.5}]\n```"
	chat := chatFunc(func(ctx context.Context, prompt string) (string, error) {
		return reply, nil
	})
	p := NewPipeline(nil, chat, testLogger())
	state := NewState(marketGapRequest())
	state.RawSearch = SentinelSearchEmpty
	if next := p.runExtract(context.Background(), state); next != StageAnalyze {
		t.Fatalf("expected analyze next, got %s", next)
	}
	if len(state.Records) != 1 || state.Records[0]["product"] != "Smart Plug" {
		t.Fatalf("expected the parsed record, got %v", state.Records)
	}
}

func TestExtractStageTrivialRowFallsBackToGeneratedData(t *testing.T) {
	for _, reply := range []string{`[{}]`, `[{"product": "Only A Name"}]`} {
		chat := chatFunc(func(ctx context.Context, prompt string) (string, error) {
			return reply, nil
		})
		p := NewPipeline(nil, chat, testLogger())
		state := NewState(marketGapRequest())
		state.RawSearch = SentinelSearchEmpty
		p.runExtract(context.Background(), state)
		if len(state.Records) != 5 {
			t.Fatalf("reply %s: expected 5 fallback records, got %d", reply, len(state.Records))
		}
		if state.Records[0]["product"] != "Amazon Echo Dot (4th Gen)" {
			t.Fatalf("reply %s: unexpected first fallback product %v", reply, state.Records[0]["product"])
		}
	}
}

func TestExtractStageMalformedRepliesExhaustRetries(t *testing.T) {
	calls := 0
	chat := chatFunc(func(ctx context.Context, prompt string) (string, error) {
		calls++
		return "the weather is nice today", nil
	})
	p := NewPipeline(nil, chat, testLogger())
	state := NewState(marketGapRequest())
	state.RawSearch = SentinelSearchEmpty
	p.runExtract(context.Background(), state)
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
	if len(state.Records) != 5 {
		t.Fatalf("expected 5 fallback records, got %d", len(state.Records))
	}
}

func TestExtractStageUnavailableOracleSkipsRetries(t *testing.T) {
	calls := 0
	chat := chatFunc(func(ctx context.Context, prompt string) (string, error) {
		calls++
		return "", ErrUnavailable
	})
	p := NewPipeline(nil, chat, testLogger())
	state := NewState(marketGapRequest())
	state.RawSearch = SentinelSearchEmpty
	p.runExtract(context.Background(), state)
	if calls != 1 {
		t.Fatalf("expected a single attempt, got %d", calls)
	}
	if len(state.Records) != 5 {
		t.Fatalf("expected 5 fallback records, got %d", len(state.Records))
	}
}

func TestExtractStageUnsupportedKindGetsMarketGapData(t *testing.T) {
	calls := 0
	chat := chatFunc(func(ctx context.Context, prompt string) (string, error) {
		calls++
		return "[]", nil
	})
	p := NewPipeline(nil, chat, testLogger())
	req := models.DefaultRequest()
	req.Category = "electronics"
	state := NewState(req)
	state.RawSearch = SentinelSearchEmpty
	p.runExtract(context.Background(), state)
	if calls != 0 {
		t.Fatalf("expected no oracle calls for an unsupported kind, got %d", calls)
	}
	if state.Records[0]["product"] != "Apple AirPods Pro (2nd Generation)" {
		t.Fatalf("unexpected first fallback product %v", state.Records[0]["product"])
	}
	if _, ok := state.Records[0]["demand_score"]; !ok {
		t.Fatalf("expected market gap shaped records, got %v", state.Records[0])
	}
}
