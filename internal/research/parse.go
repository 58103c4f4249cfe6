package research

import (
	"regexp"
	"strings"

	"github.com/mohammad-safakhou/marketscope/models"
)

var (
	categoryPattern = regexp.MustCompile(`for ['"](.*?)['"]`)
	platformPattern = regexp.MustCompile(`on ['"](.*?)['"]`)
	regionPattern   = regexp.MustCompile(`in ['"](.*?)['"]`)
	windowPattern   = regexp.MustCompile(`for ['"]([^']*?)['"]\.`)
)

// ParseRequest extracts an analysis request from a free text instruction.
// Keyword matches select the kind and quoted phrases select the scope,
// with defaults for everything left unsaid:
//
//	Perform a 'Market Gap' analysis for 'smart home devices' on 'Amazon' in 'US' for 'Last Month'.
func ParseRequest(text string) models.AnalysisRequest {
	req := models.DefaultRequest()
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "market gap"):
		req.Kind = models.KindMarketGap
	case strings.Contains(lower, "trending"):
		req.Kind = models.KindTrending
	case strings.Contains(lower, "high selling"):
		req.Kind = models.KindHighSelling
	case strings.Contains(lower, "competitor"):
		req.Kind = models.KindCompetitor
	}
	if m := categoryPattern.FindStringSubmatch(text); m != nil {
		req.Category = m[1]
	}
	if m := platformPattern.FindStringSubmatch(text); m != nil {
		req.Platform = m[1]
	}
	if m := regionPattern.FindStringSubmatch(text); m != nil {
		req.Region = m[1]
	}
	// The time window sits in a second "for" clause closed by a period,
	// which keeps it apart from the category clause.
	if m := windowPattern.FindStringSubmatch(text); m != nil {
		req.TimeWindow = m[1]
	}
	return req
}

// WantsSavedResult reports whether the instruction asks for the result of
// a previous run instead of a fresh analysis.
func WantsSavedResult(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "load") && strings.Contains(lower, "result")
}
