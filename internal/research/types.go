// Package research implements the four-stage analysis pipeline (search,
// extract, analyze, visualize) behind a pull-based supervisor. Every stage
// has a bounded-retry-then-fallback contract: oracle failures degrade to
// deterministic placeholder data, never to an error for the caller.
package research

import (
	"context"
	"errors"

	"github.com/mohammad-safakhou/marketscope/models"
)

// ErrUnavailable marks an oracle that was never configured. Stage functions
// check for it explicitly and substitute fallback output without retrying.
var ErrUnavailable = errors.New("oracle unavailable")

// ErrIterationCeiling is returned when the supervisor loop does not reach
// Finished within the configured iteration budget.
var ErrIterationCeiling = errors.New("pipeline iteration ceiling reached")

// SearchOracle returns raw textual search output for a query.
type SearchOracle interface {
	Search(ctx context.Context, query string) (string, error)
}

// ChatOracle answers one prompt with free text.
type ChatOracle interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// UnavailableSearch stands in for a search client that is not configured.
type UnavailableSearch struct{}

func (UnavailableSearch) Search(context.Context, string) (string, error) {
	return "", ErrUnavailable
}

// UnavailableChat stands in for a chat client that is not configured.
type UnavailableChat struct{}

func (UnavailableChat) Complete(context.Context, string) (string, error) {
	return "", ErrUnavailable
}

// Stage labels one step of the pipeline.
type Stage string

const (
	StageSearch    Stage = "search"
	StageExtract   Stage = "extract"
	StageAnalyze   Stage = "analyze"
	StageVisualize Stage = "visualize"
	StageFinished  Stage = "FINISH"
)

// PipelineState is threaded through the stage loop. One run owns one
// instance exclusively; each stage fills its output field and the
// supervisor inspects field presence to pick what runs next.
type PipelineState struct {
	Request         models.AnalysisRequest
	RawSearch       string
	Records         []models.Record
	Summary         string
	Recommendations string
	Charts          []string
	Iterations      int
}

// NewState builds the empty starting state for a request.
func NewState(req models.AnalysisRequest) *PipelineState {
	return &PipelineState{Request: req}
}
