package research

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mohammad-safakhou/marketscope/internal/fallback"
	"github.com/mohammad-safakhou/marketscope/models"
)

const extractAttempts = 3

// runExtract turns raw search text into typed records. Anything short of a
// usable record list, including a list whose first row carries at most one
// field, is replaced by generated fallback records, so Records is never
// left empty. Advances to Analyze.
func (p *Pipeline) runExtract(ctx context.Context, state *PipelineState) Stage {
	req := state.Request
	records := p.extractRecords(ctx, state)
	if len(records) == 0 || len(records[0]) <= 1 {
		p.logger.Printf("extract produced empty or trivial records for %s, substituting fallback data", req.Kind)
		records = fallback.Records(req.Kind, req.Category, req.Platform, req.Region, req.TimeWindow)
	}
	state.Records = records
	return StageAnalyze
}

func (p *Pipeline) extractRecords(ctx context.Context, state *PipelineState) []models.Record {
	req := state.Request
	if !req.Kind.Supported() {
		p.logger.Printf("unsupported analysis kind %q, substituting market gap fallback data", req.Kind)
		return fallback.Records(models.KindMarketGap, req.Category, req.Platform, req.Region, req.TimeWindow)
	}

	prompt := extractionPrompt(req, state.RawSearch)
	for attempt := 1; attempt <= extractAttempts; attempt++ {
		out, err := p.chat.Complete(ctx, prompt)
		if err != nil {
			if errors.Is(err, ErrUnavailable) {
				break
			}
			p.logger.Printf("extraction attempt %d failed: %v", attempt, err)
			continue
		}
		records, err := parseRecords(out)
		if err != nil {
			p.logger.Printf("extraction attempt %d returned malformed records: %v", attempt, err)
			continue
		}
		if len(records) > 0 {
			return records
		}
	}
	return fallback.Records(req.Kind, req.Category, req.Platform, req.Region, req.TimeWindow)
}

func extractionPrompt(req models.AnalysisRequest, raw string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Extract a list of 5-8 entries for %s from the following search results for %s on %s in %s for %s.\n",
		kindDescription(req.Kind), req.Category, req.Platform, req.Region, req.TimeWindow)
	fmt.Fprintf(&b, "Search results: %s\n\n", raw)
	fmt.Fprintf(&b, "Output as a JSON list of objects with fields: %s.\n", strings.Join(req.Kind.Fields(), ", "))
	b.WriteString("Estimate numerical values if not explicitly stated, based on content and market trends.\n")
	b.WriteString("Ensure output is a valid JSON array.")
	return b.String()
}

func kindDescription(kind models.AnalysisKind) string {
	switch kind {
	case models.KindMarketGap:
		return "market gap analysis, identifying products with high demand but low competition"
	case models.KindTrending:
		return "trending products analysis, identifying products with high growth and interest"
	case models.KindHighSelling:
		return "high selling products analysis, identifying top sellers with sales rank, revenue, ratings"
	case models.KindCompetitor:
		return "competitor analysis, identifying key competitors with market share, strengths, weaknesses"
	}
	return "market analysis"
}

// parseRecords decodes the first JSON array found in the oracle's reply.
// Replies wrapped in prose or code fences are tolerated.
func parseRecords(out string) ([]models.Record, error) {
	var records []models.Record
	if err := json.Unmarshal([]byte(extractFirstJSONArray(out)), &records); err != nil {
		return nil, err
	}
	return records, nil
}

func extractFirstJSONArray(s string) string {
	start := -1
	depth := 0
	for i, ch := range s {
		if ch == '[' {
			if depth == 0 {
				start = i
			}
			depth++
		} else if ch == ']' {
			if depth > 0 {
				depth--
			}
			if depth == 0 && start != -1 {
				return s[start : i+1]
			}
		}
	}
	return s
}
