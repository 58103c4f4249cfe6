package server

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gorhill/cronexpr"
	"github.com/redis/go-redis/v9"

	"github.com/mohammad-safakhou/marketscope/internal/research"
	"github.com/mohammad-safakhou/marketscope/internal/store"
)

// unlockScript releases a scheduler lock only if the caller still owns it,
// so a slow run cannot delete a lock another replica re-acquired after expiry.
const unlockScript = `if redis.call("get", KEYS[1]) == ARGV[1] then return redis.call("del", KEYS[1]) else return 0 end`

// Scheduler refreshes watches on their cron schedules. Replicas coordinate
// through short-lived redis locks keyed by watch id.
type Scheduler struct {
	Store  *store.Store
	Stop   chan struct{}
	Rdb    *redis.Client
	Orch   *research.Orchestrator
	Tick   time.Duration
	Logger *log.Logger
}

func (s *Scheduler) Start() {
	tick := s.Tick
	if tick <= 0 {
		tick = time.Hour
	}
	ticker := time.NewTicker(tick)
	go func() {
		for {
			select {
			case <-s.Stop:
				ticker.Stop()
				return
			case <-ticker.C:
				s.tick()
			}
		}
	}()
}

func (s *Scheduler) tick() {
	ctx := context.Background()
	watches, err := s.Store.ListAllWatches(ctx)
	if err != nil {
		s.logf("list watches: %v", err)
		return
	}
	for _, w := range watches {
		last, _ := s.Store.LatestAnalysisTime(ctx, w.ID)
		if !isDue(w.ScheduleCron, last) { continue }

		// distributed lock to avoid duplicate runs
		lockKey := "sched:lock:" + w.ID
		token := uuid.NewString()
		if s.Rdb != nil {
			ok, _ := s.Rdb.SetNX(ctx, lockKey, token, 2*time.Minute).Result()
			if !ok { continue }
		}

		parsed := research.ParseRequest(w.Query)
		analysisID, err := s.Store.CreateAnalysis(ctx, store.Analysis{
			WatchID:    &w.ID,
			UserID:     w.UserID,
			Query:      w.Query,
			Kind:       string(parsed.Kind),
			Category:   parsed.Category,
			Platform:   parsed.Platform,
			Region:     parsed.Region,
			TimeWindow: parsed.TimeWindow,
		})
		if err != nil {
			s.logf("create analysis for watch %s: %v", w.ID, err)
			s.unlock(ctx, lockKey, token)
			continue
		}

		go func(query, analysisID, lockKey, token string) {
			// jitter to avoid stampedes
			time.Sleep(time.Duration(250+int64(time.Now().UnixNano()%250)) * time.Millisecond)
			runAndFinish(ctx, s.Store, s.Orch, analysisID, query, "schedule")
			s.unlock(ctx, lockKey, token)
		}(w.Query, analysisID, lockKey, token)
	}
}

func (s *Scheduler) unlock(ctx context.Context, key, token string) {
	if s.Rdb == nil { return }
	_ = s.Rdb.Eval(ctx, unlockScript, []string{key}, token).Err()
}

func (s *Scheduler) logf(format string, args ...interface{}) {
	if s.Logger != nil {
		s.Logger.Printf(format, args...)
	}
}

// isDue determines if a watch with cronSpec should run now based on its last run.
// Supports "@daily", "@hourly", and standard 5-field cron expressions.
func isDue(cronSpec string, last *time.Time) bool {
	now := time.Now()
	switch cronSpec {
	case "@daily":
		if last == nil { return true }
		return now.Sub(*last) >= 24*time.Hour
	case "@hourly":
		if last == nil { return true }
		return now.Sub(*last) >= time.Hour
	default:
		// Try cron expression
		expr, err := cronexpr.Parse(cronSpec)
		if err != nil {
			// Fallback: treat as @daily if invalid
			if last == nil { return true }
			return now.Sub(*last) >= 24*time.Hour
		}
		if last == nil {
			// If never run, due now
			return true
		}
		next := expr.Next(*last)
		return !next.After(now)
	}
}

// validCron accepts the schedules isDue understands.
func validCron(spec string) bool {
	if spec == "@daily" || spec == "@hourly" { return true }
	_, err := cronexpr.Parse(spec)
	return err == nil
}
