package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/mohammad-safakhou/marketscope/internal/store"
)

func TestCreateWatchDefaultsSchedule(t *testing.T) {
	e := echo.New()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	handler := &WatchesHandler{Store: &store.Store{DB: db}}

	mock.ExpectQuery(`INSERT INTO watches \(user_id, query, schedule_cron\) VALUES \(\$1,\$2,\$3\) RETURNING id`).
		WithArgs("user-456", analysisQuery, "@daily").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("watch-1"))

	body, _ := json.Marshal(CreateWatchRequest{Query: analysisQuery})
	req := httptest.NewRequest(http.MethodPost, "/api/watches", strings.NewReader(string(body)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	ctx.Set("user_id", "user-456")

	if err := handler.create(ctx); err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201 got %d", rec.Code)
	}

	var resp IDResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID != "watch-1" {
		t.Fatalf("unexpected id %q", resp.ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCreateWatchValidation(t *testing.T) {
	cases := map[string]string{
		"missing query": `{"schedule_cron":"@daily"}`,
		"bad cron":      `{"query":"trending earbuds","schedule_cron":"whenever"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			e := echo.New()
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("sqlmock.New: %v", err)
			}
			defer db.Close()

			handler := &WatchesHandler{Store: &store.Store{DB: db}}

			req := httptest.NewRequest(http.MethodPost, "/api/watches", strings.NewReader(body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			ctx := e.NewContext(req, rec)
			ctx.Set("user_id", "user-456")

			err = handler.create(ctx)
			httpErr, ok := err.(*echo.HTTPError)
			if !ok || httpErr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 error, got %#v", err)
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("expectations: %v", err)
			}
		})
	}
}

func TestListWatches(t *testing.T) {
	e := echo.New()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	handler := &WatchesHandler{Store: &store.Store{DB: db}}

	created := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT id, user_id, query, schedule_cron, created_at FROM watches WHERE user_id=\$1 ORDER BY created_at DESC`).
		WithArgs("user-456").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "query", "schedule_cron", "created_at"}).
			AddRow("watch-2", "user-456", "competitor analysis for 'heaters'", "@hourly", created.Add(time.Hour)).
			AddRow("watch-1", "user-456", analysisQuery, "@daily", created))

	req := httptest.NewRequest(http.MethodGet, "/api/watches", nil)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	ctx.Set("user_id", "user-456")

	if err := handler.list(ctx); err != nil {
		t.Fatalf("list: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}

	var resp []WatchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("expected 2 watches, got %d", len(resp))
	}
	if resp[0].ID != "watch-2" || resp[0].ScheduleCron != "@hourly" {
		t.Fatalf("unexpected first watch %+v", resp[0])
	}
	if resp[1].CreatedAt != "2026-08-01T10:00:00Z" {
		t.Fatalf("unexpected created_at %q", resp[1].CreatedAt)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetWatchNotFound(t *testing.T) {
	e := echo.New()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	handler := &WatchesHandler{Store: &store.Store{DB: db}}

	mock.ExpectQuery(`SELECT id, user_id, query, schedule_cron, created_at FROM watches WHERE id=\$1 AND user_id=\$2`).
		WithArgs("watch-404", "user-456").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "query", "schedule_cron", "created_at"}))

	req := httptest.NewRequest(http.MethodGet, "/api/watches/watch-404", nil)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	ctx.Set("user_id", "user-456")
	ctx.SetParamNames("id")
	ctx.SetParamValues("watch-404")

	err = handler.get(ctx)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 error, got %#v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpdateWatchNotFound(t *testing.T) {
	e := echo.New()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	handler := &WatchesHandler{Store: &store.Store{DB: db}}

	mock.ExpectExec(`UPDATE watches SET query=\$3, schedule_cron=\$4 WHERE id=\$1 AND user_id=\$2`).
		WithArgs("watch-404", "user-456", "trending earbuds", "@daily").
		WillReturnResult(sqlmock.NewResult(0, 0))

	req := httptest.NewRequest(http.MethodPut, "/api/watches/watch-404", strings.NewReader(`{"query":"trending earbuds"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	ctx.Set("user_id", "user-456")
	ctx.SetParamNames("id")
	ctx.SetParamValues("watch-404")

	err = handler.update(ctx)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 error, got %#v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDeleteWatch(t *testing.T) {
	e := echo.New()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	handler := &WatchesHandler{Store: &store.Store{DB: db}}

	mock.ExpectExec(`DELETE FROM watches WHERE id=\$1 AND user_id=\$2`).
		WithArgs("watch-1", "user-456").
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := httptest.NewRequest(http.MethodDelete, "/api/watches/watch-1", nil)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	ctx.Set("user_id", "user-456")
	ctx.SetParamNames("id")
	ctx.SetParamValues("watch-1")

	if err := handler.delete(ctx); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204 got %d", rec.Code)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRunWatchNowFinishesInBackground(t *testing.T) {
	e := echo.New()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	handler := &WatchesHandler{Store: &store.Store{DB: db}, Orch: testOrchestrator(t)}

	created := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT id, user_id, query, schedule_cron, created_at FROM watches WHERE id=\$1 AND user_id=\$2`).
		WithArgs("watch-1", "user-456").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "query", "schedule_cron", "created_at"}).
			AddRow("watch-1", "user-456", analysisQuery, "@daily", created))

	mock.ExpectQuery(`INSERT INTO analyses \(watch_id, user_id, query, kind, category, platform, region, time_window, status\)`).
		WithArgs("watch-1", "user-456", analysisQuery, "trending products", "wireless earbuds", "Amazon", "US", "Last Month", "running").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("an-1"))

	mock.ExpectExec(`UPDATE analyses SET status=\$2, envelope=\$3, error=\$4, finished_at=NOW\(\) WHERE id=\$1`).
		WithArgs("an-1", "succeeded", sqlmock.AnyArg(), nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := httptest.NewRequest(http.MethodPost, "/api/watches/watch-1/run", nil)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	ctx.Set("user_id", "user-456")
	ctx.SetParamNames("id")
	ctx.SetParamValues("watch-1")

	if err := handler.runNow(ctx); err != nil {
		t.Fatalf("runNow: %v", err)
	}
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected status 202 got %d", rec.Code)
	}

	var resp IDResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID != "an-1" {
		t.Fatalf("unexpected id %q", resp.ID)
	}

	// the run completes in a goroutine; wait for the finish update
	deadline := time.Now().Add(2 * time.Second)
	for mock.ExpectationsWereMet() != nil && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
