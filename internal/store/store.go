// Package store provides the persistence layers: a Postgres store for
// users, watches and analysis history, and a file store for the most
// recent result envelope.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq"
)

type Store struct {
	DB *sql.DB
}

// Analysis statuses persisted in history rows.
const (
	AnalysisStatusRunning   = "running"
	AnalysisStatusSucceeded = "succeeded"
	AnalysisStatusFailed    = "failed"
)

// Watch is a saved market question re-run on a schedule.
type Watch struct {
	ID           string
	UserID       string
	Query        string
	ScheduleCron string
	CreatedAt    time.Time
}

// Analysis is one pipeline run recorded for history. Envelope carries the
// full result document as JSONB.
type Analysis struct {
	ID         string
	WatchID    *string
	UserID     string
	Query      string
	Kind       string
	Category   string
	Platform   string
	Region     string
	TimeWindow string
	Envelope   []byte
	Status     string
	StartedAt  time.Time
	FinishedAt *time.Time
	Error      *string
}

func New(ctx context.Context) (*Store, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		host := getenvDefault("POSTGRES_HOST", "localhost")
		port := getenvDefault("POSTGRES_PORT", "5432")
		user := os.Getenv("POSTGRES_USER")
		pass := os.Getenv("POSTGRES_PASSWORD")
		db := os.Getenv("POSTGRES_DB")
		ssl := getenvDefault("POSTGRES_SSLMODE", "disable")
		dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", user, pass, host, port, db, ssl)
	}
	return NewWithDSN(ctx, dsn)
}

// NewWithDSN constructs the Store using an explicit Postgres DSN
func NewWithDSN(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return &Store{DB: db}, nil
}

func getenvDefault(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

// User operations
func (s *Store) CreateUser(ctx context.Context, email, hash string) error {
	_, err := s.DB.ExecContext(ctx, `INSERT INTO users (email, password_hash) VALUES ($1,$2)`, email, hash)
	return err
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (id string, hash string, err error) {
	err = s.DB.QueryRowContext(ctx, `SELECT id, password_hash FROM users WHERE email=$1`, email).Scan(&id, &hash)
	return
}

// Watch operations
func (s *Store) CreateWatch(ctx context.Context, userID, query, cron string) (string, error) {
	var id string
	err := s.DB.QueryRowContext(ctx, `INSERT INTO watches (user_id, query, schedule_cron) VALUES ($1,$2,$3) RETURNING id`, userID, query, cron).Scan(&id)
	return id, err
}

func (s *Store) ListWatches(ctx context.Context, userID string) ([]Watch, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT id, user_id, query, schedule_cron, created_at FROM watches WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Watch
	for rows.Next() {
		var w Watch
		if err := rows.Scan(&w.ID, &w.UserID, &w.Query, &w.ScheduleCron, &w.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// ListAllWatches returns every watch across users, for the scheduler.
func (s *Store) ListAllWatches(ctx context.Context) ([]Watch, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT id, user_id, query, schedule_cron, created_at FROM watches ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Watch
	for rows.Next() {
		var w Watch
		if err := rows.Scan(&w.ID, &w.UserID, &w.Query, &w.ScheduleCron, &w.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (s *Store) GetWatchByID(ctx context.Context, id, userID string) (Watch, bool, error) {
	var w Watch
	err := s.DB.QueryRowContext(ctx, `SELECT id, user_id, query, schedule_cron, created_at FROM watches WHERE id=$1 AND user_id=$2`, id, userID).
		Scan(&w.ID, &w.UserID, &w.Query, &w.ScheduleCron, &w.CreatedAt)
	if err == sql.ErrNoRows {
		return Watch{}, false, nil
	}
	if err != nil {
		return Watch{}, false, err
	}
	return w, true, nil
}

func (s *Store) UpdateWatch(ctx context.Context, id, userID, query, cron string) error {
	res, err := s.DB.ExecContext(ctx, `UPDATE watches SET query=$3, schedule_cron=$4 WHERE id=$1 AND user_id=$2`, id, userID, query, cron)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Store) DeleteWatch(ctx context.Context, id, userID string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM watches WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Analysis history operations
func (s *Store) CreateAnalysis(ctx context.Context, a Analysis) (string, error) {
	if a.Status == "" {
		a.Status = AnalysisStatusRunning
	}
	var id string
	err := s.DB.QueryRowContext(ctx, `
INSERT INTO analyses (watch_id, user_id, query, kind, category, platform, region, time_window, status)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9) RETURNING id
`, a.WatchID, a.UserID, a.Query, a.Kind, a.Category, a.Platform, a.Region, a.TimeWindow, a.Status).Scan(&id)
	return id, err
}

// FinishAnalysis records the outcome and the envelope document for a run.
func (s *Store) FinishAnalysis(ctx context.Context, id, status string, envelope []byte, errMsg *string) error {
	_, err := s.DB.ExecContext(ctx, `UPDATE analyses SET status=$2, envelope=$3, error=$4, finished_at=NOW() WHERE id=$1`, id, status, envelope, errMsg)
	return err
}

func (s *Store) GetAnalysis(ctx context.Context, id, userID string) (Analysis, bool, error) {
	var a Analysis
	err := s.DB.QueryRowContext(ctx, `
SELECT id, watch_id, user_id, query, kind, category, platform, region, time_window, envelope, status, started_at, finished_at, error
FROM analyses WHERE id=$1 AND user_id=$2
`, id, userID).Scan(&a.ID, &a.WatchID, &a.UserID, &a.Query, &a.Kind, &a.Category, &a.Platform, &a.Region, &a.TimeWindow, &a.Envelope, &a.Status, &a.StartedAt, &a.FinishedAt, &a.Error)
	if err == sql.ErrNoRows {
		return Analysis{}, false, nil
	}
	if err != nil {
		return Analysis{}, false, err
	}
	return a, true, nil
}

func (s *Store) ListAnalyses(ctx context.Context, userID string, limit int) ([]Analysis, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.DB.QueryContext(ctx, `
SELECT id, watch_id, user_id, query, kind, category, platform, region, time_window, status, started_at, finished_at, error
FROM analyses WHERE user_id=$1 ORDER BY started_at DESC LIMIT $2
`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Analysis
	for rows.Next() {
		var a Analysis
		if err := rows.Scan(&a.ID, &a.WatchID, &a.UserID, &a.Query, &a.Kind, &a.Category, &a.Platform, &a.Region, &a.TimeWindow, &a.Status, &a.StartedAt, &a.FinishedAt, &a.Error); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetLatestAnalysis returns the most recent finished run for a user.
func (s *Store) GetLatestAnalysis(ctx context.Context, userID string) (Analysis, bool, error) {
	var a Analysis
	err := s.DB.QueryRowContext(ctx, `
SELECT id, watch_id, user_id, query, kind, category, platform, region, time_window, envelope, status, started_at, finished_at, error
FROM analyses WHERE user_id=$1 AND envelope IS NOT NULL ORDER BY started_at DESC LIMIT 1
`, userID).Scan(&a.ID, &a.WatchID, &a.UserID, &a.Query, &a.Kind, &a.Category, &a.Platform, &a.Region, &a.TimeWindow, &a.Envelope, &a.Status, &a.StartedAt, &a.FinishedAt, &a.Error)
	if err == sql.ErrNoRows {
		return Analysis{}, false, nil
	}
	if err != nil {
		return Analysis{}, false, err
	}
	return a, true, nil
}

// LatestAnalysisTime returns when a watch last ran, nil if never.
func (s *Store) LatestAnalysisTime(ctx context.Context, watchID string) (*time.Time, error) {
	var ts *time.Time
	err := s.DB.QueryRowContext(ctx, `SELECT MAX(COALESCE(finished_at, started_at)) FROM analyses WHERE watch_id=$1`, watchID).Scan(&ts)
	return ts, err
}
