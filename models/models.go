package models

import "errors"

// ErrNoSavedResult is returned when no analysis result has been persisted yet
var ErrNoSavedResult = errors.New("no saved result")

// AnalysisKind identifies one of the supported report types
type AnalysisKind string

const (
	KindMarketGap   AnalysisKind = "market gap"
	KindTrending    AnalysisKind = "trending products"
	KindHighSelling AnalysisKind = "high selling products"
	KindCompetitor  AnalysisKind = "competitor analysis"
	// KindGeneral is the catch-all used when no keyword in a request
	// selects one of the four report types.
	KindGeneral AnalysisKind = "general"
)

// Supported reports whether the kind has a dedicated record schema.
func (k AnalysisKind) Supported() bool {
	switch k {
	case KindMarketGap, KindTrending, KindHighSelling, KindCompetitor:
		return true
	}
	return false
}

// Fields returns the record schema for the kind, in table-column order.
// Unsupported kinds have no fixed schema and return nil.
func (k AnalysisKind) Fields() []string {
	switch k {
	case KindMarketGap:
		return []string{"product", "demand_score", "competition", "opportunity", "market_size"}
	case KindTrending:
		return []string{"product", "trend_score", "growth", "interest_level", "search_volume"}
	case KindHighSelling:
		return []string{"product", "sales_rank", "revenue", "rating", "reviews"}
	case KindCompetitor:
		return []string{"competitor", "market_share", "strength", "weakness", "rating"}
	}
	return nil
}

// Record is one structured row of analysis output. Field names depend on
// the analysis kind that produced it.
type Record map[string]interface{}

// AnalysisRequest is the typed input to one pipeline run.
type AnalysisRequest struct {
	Kind       AnalysisKind `json:"analysis_kind"`
	Category   string       `json:"category"`
	Platform   string       `json:"platform"`
	Region     string       `json:"region"`
	TimeWindow string       `json:"time_window"`
}

// DefaultRequest returns the request used when nothing is recognised in
// the user's text. Parsing overwrites individual fields as patterns match.
func DefaultRequest() AnalysisRequest {
	return AnalysisRequest{
		Kind:       KindGeneral,
		Category:   "products",
		Platform:   "Amazon",
		Region:     "US",
		TimeWindow: "Last Month",
	}
}

// ResultEnvelope is the packaged output of one run, shown by the UI and
// persisted whole to a single JSON file.
type ResultEnvelope struct {
	Summary         string     `json:"summary"`
	Tables          [][]Record `json:"tables"`
	Charts          []string   `json:"charts"`
	Recommendations string     `json:"recommendations"`
	Status          string     `json:"status"`
	Timestamp       string     `json:"timestamp,omitempty"`
	Version         string     `json:"version,omitempty"`
}

// Normalize backfills absent collections so consumers can range freely
// over envelopes loaded from older or partial files.
func (e ResultEnvelope) Normalize() ResultEnvelope {
	if e.Tables == nil {
		e.Tables = [][]Record{}
	}
	if e.Charts == nil {
		e.Charts = []string{}
	}
	return e
}
