package research

import (
	"testing"

	"github.com/mohammad-safakhou/marketscope/models"
)

func TestSuperviseOrdersStagesByFieldPresence(t *testing.T) {
	state := NewState(models.DefaultRequest())
	if got := Supervise(state); got != StageSearch {
		t.Fatalf("expected search on empty state, got %s", got)
	}
	state.RawSearch = SentinelSearchEmpty
	if got := Supervise(state); got != StageExtract {
		t.Fatalf("expected extract after search, got %s", got)
	}
	state.Records = []models.Record{{"product": "Widget", "demand_score": 7.0}}
	if got := Supervise(state); got != StageAnalyze {
		t.Fatalf("expected analyze after extract, got %s", got)
	}
	state.Summary = "Summary text"
	if got := Supervise(state); got != StageAnalyze {
		t.Fatalf("expected analyze to stay pending without recommendations, got %s", got)
	}
	state.Recommendations = "1. Do the thing"
	if got := Supervise(state); got != StageVisualize {
		t.Fatalf("expected visualize after analyze, got %s", got)
	}
	state.Charts = []string{EmptyChart}
	if got := Supervise(state); got != StageFinished {
		t.Fatalf("expected finished once charts exist, got %s", got)
	}
}
