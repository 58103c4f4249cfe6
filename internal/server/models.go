package server

import (
	"github.com/mohammad-safakhou/marketscope/models"
)

// HTTPError is a generic error envelope returned by the server.
type HTTPError struct {
	Error string `json:"error"`
}

// AuthSignupRequest represents the signup payload.
type AuthSignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthLoginRequest represents the login payload.
type AuthLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse carries a bearer token.
type TokenResponse struct {
	Token string `json:"token"`
}

// IDResponse is a generic id response wrapper.
type IDResponse struct {
	ID string `json:"id"`
}

// MeResponse returns the current authenticated user id.
type MeResponse struct {
	UserID string `json:"user_id"`
}

// CreateWatchRequest registers a standing market query.
type CreateWatchRequest struct {
	Query        string `json:"query"`
	ScheduleCron string `json:"schedule_cron"`
}

// UpdateWatchRequest replaces a watch's query and schedule.
type UpdateWatchRequest struct {
	Query        string `json:"query"`
	ScheduleCron string `json:"schedule_cron"`
}

// WatchResponse is the watch list and detail view.
type WatchResponse struct {
	ID           string `json:"id"`
	Query        string `json:"query"`
	ScheduleCron string `json:"schedule_cron"`
	CreatedAt    string `json:"created_at"`
}

// RunAnalysisRequest triggers one analysis run from free text.
type RunAnalysisRequest struct {
	Query string `json:"query"`
}

// AnalysisRunResponse returns the run id with its finished envelope.
type AnalysisRunResponse struct {
	ID     string                `json:"id"`
	Result models.ResultEnvelope `json:"result"`
}

// AnalysisSummaryResponse is the list view of an analysis run, without the
// stored envelope.
type AnalysisSummaryResponse struct {
	ID         string  `json:"id"`
	Query      string  `json:"query"`
	Kind       string  `json:"kind"`
	Category   string  `json:"category"`
	Platform   string  `json:"platform"`
	Region     string  `json:"region"`
	TimeWindow string  `json:"time_window"`
	Status     string  `json:"status"`
	StartedAt  string  `json:"started_at"`
	FinishedAt *string `json:"finished_at,omitempty"`
	Error      *string `json:"error,omitempty"`
}

// AnalysisDetailResponse adds the stored result envelope to the summary.
type AnalysisDetailResponse struct {
	AnalysisSummaryResponse
	Result *models.ResultEnvelope `json:"result,omitempty"`
}
