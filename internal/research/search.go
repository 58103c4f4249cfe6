package research

import (
	"context"
	"errors"
	"fmt"
)

const (
	searchAttempts = 5
	// minSearchBytes is the floor under which a search response is treated
	// as carrying no usable content.
	minSearchBytes = 100
)

// Search sentinels. The pipeline never aborts because the search oracle
// misbehaves; it records one of these payloads and moves on to Extract.
const (
	// SentinelSearchError stands in after repeated oracle errors.
	SentinelSearchError = `{"results": [], "status": "limited_data"}`
	// SentinelSearchEmpty stands in when every response stayed under the
	// size floor.
	SentinelSearchEmpty = `{"results": [], "status": "fallback"}`
)

// runSearch asks the search oracle for market context. Every outcome,
// including total oracle failure, advances to Extract.
func (p *Pipeline) runSearch(ctx context.Context, state *PipelineState) Stage {
	req := state.Request
	query := fmt.Sprintf("%s %s %s market analysis trends 2024 %s %s",
		req.Category, req.Kind, req.Platform, req.Region, req.TimeWindow)

	for attempt := 1; attempt <= searchAttempts; attempt++ {
		body, err := p.search.Search(ctx, query)
		if err != nil {
			if errors.Is(err, ErrUnavailable) {
				state.RawSearch = unavailableSearchBody(query)
				return StageExtract
			}
			p.logger.Printf("search attempt %d failed: %v", attempt, err)
			if attempt == searchAttempts {
				state.RawSearch = SentinelSearchError
				return StageExtract
			}
			continue
		}
		if len(body) > minSearchBytes {
			state.RawSearch = body
			return StageExtract
		}
	}

	state.RawSearch = SentinelSearchEmpty
	return StageExtract
}

// unavailableSearchBody is the well-formed empty payload recorded when no
// search client is configured at all.
func unavailableSearchBody(query string) string {
	return fmt.Sprintf(`{"results": [], "query": %q, "response_time": 0.0, "status": "fallback_mode"}`, query)
}
