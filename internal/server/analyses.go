package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mohammad-safakhou/marketscope/internal/export"
	"github.com/mohammad-safakhou/marketscope/internal/research"
	"github.com/mohammad-safakhou/marketscope/internal/runtime"
	"github.com/mohammad-safakhou/marketscope/internal/store"
	"github.com/mohammad-safakhou/marketscope/models"
)

// AnalysesHandler runs market analyses and serves their history.
type AnalysesHandler struct {
	Store *store.Store
	Orch  *research.Orchestrator
}

func (h *AnalysesHandler) Register(g *echo.Group, secret []byte) {
	g.Use(runtime.EchoAuthMiddleware(secret))
	g.POST("", h.run)
	g.GET("", h.list)
	g.GET("/latest", h.latest)
	g.GET("/latest/export", h.exportLatest)
	g.GET("/:id", h.get)
}

// run executes an analysis synchronously and returns the finished envelope.
// The orchestrator never fails; a degraded run still yields a complete result.
func (h *AnalysesHandler) run(c echo.Context) error {
	userID := c.Get("user_id").(string)
	var req RunAnalysisRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.Query) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query required")
	}

	parsed := research.ParseRequest(req.Query)
	analysisID, err := h.Store.CreateAnalysis(c.Request().Context(), store.Analysis{
		UserID:     userID,
		Query:      req.Query,
		Kind:       string(parsed.Kind),
		Category:   parsed.Category,
		Platform:   parsed.Platform,
		Region:     parsed.Region,
		TimeWindow: parsed.TimeWindow,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	t0 := time.Now()
	env := h.Orch.RunAnalysis(c.Request().Context(), req.Query)
	payload, err := json.Marshal(env)
	if err != nil {
		msg := err.Error()
		_ = h.Store.FinishAnalysis(context.Background(), analysisID, store.AnalysisStatusFailed, nil, &msg)
		observeAnalysis("api", store.AnalysisStatusFailed, time.Since(t0))
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.Store.FinishAnalysis(c.Request().Context(), analysisID, store.AnalysisStatusSucceeded, payload, nil); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	observeAnalysis("api", store.AnalysisStatusSucceeded, time.Since(t0))

	return c.JSON(http.StatusOK, AnalysisRunResponse{ID: analysisID, Result: env})
}

func (h *AnalysesHandler) list(c echo.Context) error {
	userID := c.Get("user_id").(string)
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		limit = n
	}
	items, err := h.Store.ListAnalyses(c.Request().Context(), userID, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	out := make([]AnalysisSummaryResponse, 0, len(items))
	for _, a := range items {
		out = append(out, analysisSummary(a))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AnalysesHandler) latest(c echo.Context) error {
	userID := c.Get("user_id").(string)
	a, ok, err := h.Store.GetLatestAnalysis(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "no completed analyses yet")
	}
	return c.JSON(http.StatusOK, analysisDetail(a))
}

// exportLatest serves the most recent envelope as a downloadable file. The
// CSV form carries the record tables only; JSON carries the whole envelope.
func (h *AnalysesHandler) exportLatest(c echo.Context) error {
	userID := c.Get("user_id").(string)
	a, ok, err := h.Store.GetLatestAnalysis(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "no completed analyses yet")
	}
	var env models.ResultEnvelope
	if err := json.Unmarshal(a.Envelope, &env); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "stored result is unreadable")
	}
	env = env.Normalize()

	format := c.QueryParam("format")
	if format == "" {
		format = "json"
	}
	var buf bytes.Buffer
	switch format {
	case "json":
		if err := export.EnvelopeJSON(&buf, env); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="analysis.json"`)
		return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, buf.Bytes())
	case "csv":
		if err := export.EnvelopeCSV(&buf, models.AnalysisKind(a.Kind), env); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="analysis.csv"`)
		return c.Blob(http.StatusOK, "text/csv", buf.Bytes())
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "unsupported format")
	}
}

func (h *AnalysesHandler) get(c echo.Context) error {
	userID := c.Get("user_id").(string)
	a, ok, err := h.Store.GetAnalysis(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "analysis not found")
	}
	return c.JSON(http.StatusOK, analysisDetail(a))
}

// runAndFinish drives a background analysis and records its outcome. Manual
// watch runs and scheduled runs share it so the history rows look the same.
func runAndFinish(ctx context.Context, st *store.Store, orch *research.Orchestrator, analysisID, query, trigger string) {
	t0 := time.Now()
	env := orch.RunAnalysis(ctx, query)
	payload, err := json.Marshal(env)
	if err != nil {
		msg := err.Error()
		_ = st.FinishAnalysis(ctx, analysisID, store.AnalysisStatusFailed, nil, &msg)
		observeAnalysis(trigger, store.AnalysisStatusFailed, time.Since(t0))
		return
	}
	_ = st.FinishAnalysis(ctx, analysisID, store.AnalysisStatusSucceeded, payload, nil)
	observeAnalysis(trigger, store.AnalysisStatusSucceeded, time.Since(t0))
}

func analysisSummary(a store.Analysis) AnalysisSummaryResponse {
	out := AnalysisSummaryResponse{
		ID:         a.ID,
		Query:      a.Query,
		Kind:       a.Kind,
		Category:   a.Category,
		Platform:   a.Platform,
		Region:     a.Region,
		TimeWindow: a.TimeWindow,
		Status:     a.Status,
		StartedAt:  a.StartedAt.UTC().Format(time.RFC3339),
		Error:      a.Error,
	}
	if a.FinishedAt != nil {
		s := a.FinishedAt.UTC().Format(time.RFC3339)
		out.FinishedAt = &s
	}
	return out
}

func analysisDetail(a store.Analysis) AnalysisDetailResponse {
	out := AnalysisDetailResponse{AnalysisSummaryResponse: analysisSummary(a)}
	if len(a.Envelope) > 0 {
		var env models.ResultEnvelope
		if err := json.Unmarshal(a.Envelope, &env); err == nil {
			env = env.Normalize()
			out.Result = &env
		}
	}
	return out
}
