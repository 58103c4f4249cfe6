package research

import "context"

// EmptyChart is the placeholder handle used when no chart could be built.
const EmptyChart = "{}"

// runVisualize builds the per-kind charts over the extracted records. If
// the recipe produces nothing, fallback records are materialized and chart
// construction is retried once; the placeholder chart is the last resort,
// so Charts is never left empty. Nothing runs after this stage.
func (p *Pipeline) runVisualize(ctx context.Context, state *PipelineState) Stage {
	req := state.Request
	charts := BuildCharts(state.Records, req)
	if len(charts) == 0 {
		p.logger.Printf("no charts produced for %s, building fallback charts", req.Kind)
		charts = FallbackCharts(state.Records, req)
	}
	state.Charts = charts
	return StageFinished
}
