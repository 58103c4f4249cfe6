package research

import (
	"context"
	"fmt"
	"log"
)

// Pipeline executes stages against shared oracle clients. A Pipeline may be
// reused across runs; each Run owns its PipelineState exclusively.
type Pipeline struct {
	search SearchOracle
	chat   ChatOracle
	logger *log.Logger
}

// NewPipeline wires the stage functions to their oracles. Nil oracles are
// replaced with Unavailable stand-ins so stages can rely on non-nil fields.
func NewPipeline(search SearchOracle, chat ChatOracle, logger *log.Logger) *Pipeline {
	if search == nil {
		search = UnavailableSearch{}
	}
	if chat == nil {
		chat = UnavailableChat{}
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[PIPELINE] ", log.LstdFlags)
	}
	return &Pipeline{search: search, chat: chat, logger: logger}
}

// Run drives the supervisor loop until Finished. The iteration ceiling is a
// termination guarantee for the unexpected case of a stage leaving its field
// empty; in steady state a run finishes in a handful of iterations.
func (p *Pipeline) Run(ctx context.Context, state *PipelineState, maxIterations int) error {
	for state.Iterations = 0; state.Iterations < maxIterations; state.Iterations++ {
		stage := Supervise(state)
		if stage == StageFinished {
			return nil
		}
		next := p.runStage(ctx, stage, state)
		p.logger.Printf("stage %s done, next %s (iteration %d)", stage, next, state.Iterations+1)
	}
	return fmt.Errorf("%w after %d iterations", ErrIterationCeiling, state.Iterations)
}

func (p *Pipeline) runStage(ctx context.Context, stage Stage, state *PipelineState) Stage {
	switch stage {
	case StageSearch:
		return p.runSearch(ctx, state)
	case StageExtract:
		return p.runExtract(ctx, state)
	case StageAnalyze:
		return p.runAnalyze(ctx, state)
	case StageVisualize:
		return p.runVisualize(ctx, state)
	}
	return StageFinished
}
