package server

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mohammad-safakhou/marketscope/internal/research"
	"github.com/mohammad-safakhou/marketscope/internal/runtime"
	"github.com/mohammad-safakhou/marketscope/internal/store"
)

// WatchesHandler manages standing market queries that the scheduler keeps
// refreshing.
type WatchesHandler struct {
	Store *store.Store
	Orch  *research.Orchestrator
}

func (h *WatchesHandler) Register(g *echo.Group, secret []byte) {
	g.Use(runtime.EchoAuthMiddleware(secret))
	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
	g.POST("/:id/run", h.runNow)
}

func (h *WatchesHandler) create(c echo.Context) error {
	userID := c.Get("user_id").(string)
	var req CreateWatchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.Query) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query required")
	}
	if req.ScheduleCron == "" {
		req.ScheduleCron = "@daily"
	}
	if !validCron(req.ScheduleCron) {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid schedule_cron")
	}
	id, err := h.Store.CreateWatch(c.Request().Context(), userID, req.Query, req.ScheduleCron)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, IDResponse{ID: id})
}

func (h *WatchesHandler) list(c echo.Context) error {
	userID := c.Get("user_id").(string)
	items, err := h.Store.ListWatches(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	out := make([]WatchResponse, 0, len(items))
	for _, w := range items {
		out = append(out, watchResponse(w))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *WatchesHandler) get(c echo.Context) error {
	userID := c.Get("user_id").(string)
	w, ok, err := h.Store.GetWatchByID(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "watch not found")
	}
	return c.JSON(http.StatusOK, watchResponse(w))
}

func (h *WatchesHandler) update(c echo.Context) error {
	userID := c.Get("user_id").(string)
	var req UpdateWatchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.Query) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query required")
	}
	if req.ScheduleCron == "" {
		req.ScheduleCron = "@daily"
	}
	if !validCron(req.ScheduleCron) {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid schedule_cron")
	}
	err := h.Store.UpdateWatch(c.Request().Context(), c.Param("id"), userID, req.Query, req.ScheduleCron)
	if err == sql.ErrNoRows {
		return echo.NewHTTPError(http.StatusNotFound, "watch not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusOK)
}

func (h *WatchesHandler) delete(c echo.Context) error {
	userID := c.Get("user_id").(string)
	err := h.Store.DeleteWatch(c.Request().Context(), c.Param("id"), userID)
	if err == sql.ErrNoRows {
		return echo.NewHTTPError(http.StatusNotFound, "watch not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// runNow fires an off-schedule refresh for one watch. The run finishes in
// the background; the analysis id comes back immediately.
func (h *WatchesHandler) runNow(c echo.Context) error {
	userID := c.Get("user_id").(string)
	w, ok, err := h.Store.GetWatchByID(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "watch not found")
	}

	parsed := research.ParseRequest(w.Query)
	analysisID, err := h.Store.CreateAnalysis(c.Request().Context(), store.Analysis{
		WatchID:    &w.ID,
		UserID:     userID,
		Query:      w.Query,
		Kind:       string(parsed.Kind),
		Category:   parsed.Category,
		Platform:   parsed.Platform,
		Region:     parsed.Region,
		TimeWindow: parsed.TimeWindow,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	go runAndFinish(context.Background(), h.Store, h.Orch, analysisID, w.Query, "manual")
	return c.JSON(http.StatusAccepted, IDResponse{ID: analysisID})
}

func watchResponse(w store.Watch) WatchResponse {
	return WatchResponse{
		ID:           w.ID,
		Query:        w.Query,
		ScheduleCron: w.ScheduleCron,
		CreatedAt:    w.CreatedAt.UTC().Format(time.RFC3339),
	}
}
