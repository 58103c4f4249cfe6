package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/mohammad-safakhou/marketscope/config"
	"github.com/mohammad-safakhou/marketscope/internal/cache"
	"github.com/mohammad-safakhou/marketscope/internal/research"
	"github.com/mohammad-safakhou/marketscope/internal/runtime"
	"github.com/mohammad-safakhou/marketscope/internal/store"
	"github.com/mohammad-safakhou/marketscope/provider"
	"github.com/mohammad-safakhou/marketscope/tools/web_fetch"
	"github.com/mohammad-safakhou/marketscope/tools/web_search"
)

// Run wires the full service from config and blocks serving HTTP.
func Run(cfg *config.Config) error {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	// Unified HTTP error handler with structured JSON and logging
	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Cookie", "Authorization"},
		AllowCredentials: true,
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(200, "ok") })
	registerDocs(e)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Shared dependencies (top-level DI)
	ctx := context.Background()
	if err := cfg.Storage.Postgres.Validate(); err != nil {
		return err
	}
	dsn := cfg.Storage.Postgres.DSN()
	_ = store.Migrate("file://migrations", dsn, "up", 0)
	st, err := store.NewWithDSN(ctx, dsn)
	if err != nil {
		return err
	}

	if err := cfg.Storage.Redis.Validate(); err != nil {
		return err
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Storage.Redis.Addr(), Password: cfg.Storage.Redis.Password, DB: cfg.Storage.Redis.DB})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis connection failed (%s): %w", cfg.Storage.Redis.Addr(), err)
	}

	// Research pipeline (single orchestrator instance shared by all triggers)
	searchOracle, err := web_search.NewSearchOracle(web_search.Provider(cfg.Search.Provider), cfg.Search, cache.NewSearchCache(rdb, cfg.Search.CacheTTL))
	if err != nil {
		return err
	}
	searchOracle, err = web_fetch.NewEnrichedSearch(cfg.Fetch, searchOracle, log.New(log.Writer(), "[FETCH] ", log.LstdFlags))
	if err != nil {
		return err
	}
	chatOracle, err := provider.NewChatOracle(provider.OpenAI, cfg.LLM)
	if err != nil {
		return err
	}
	pipeline := research.NewPipeline(searchOracle, chatOracle, log.New(log.Writer(), "[PIPELINE] ", log.LstdFlags))
	sink, err := store.NewFileStore(cfg.Storage.File.DataDir)
	if err != nil {
		return err
	}
	orch := research.NewOrchestrator(pipeline, sink, cfg.Pipeline.MaxIterations, log.New(log.Writer(), "[ORCH] ", log.LstdFlags))

	// init auth and routes
	secret, err := runtime.LoadJWTSecret(cfg)
	if err != nil {
		return err
	}
	auth, err := initAuth(st, secret)
	if err != nil {
		return err
	}

	api := e.Group("/api")
	auth.Register(api.Group("/auth"))

	// protected group example
	me := api.Group("/me")
	me.Use(runtime.EchoAuthMiddleware(auth.Secret))
	me.GET("", func(c echo.Context) error {
		return c.JSON(200, MeResponse{UserID: c.Get("user_id").(string)})
	})

	wh := &WatchesHandler{Store: st, Orch: orch}
	wh.Register(api.Group("/watches"), auth.Secret)

	ah := &AnalysesHandler{Store: st, Orch: orch}
	ah.Register(api.Group("/analyses"), auth.Secret)

	if cfg.Schedule.Enabled {
		sched := &Scheduler{
			Store:  st,
			Stop:   make(chan struct{}),
			Rdb:    rdb,
			Orch:   orch,
			Tick:   cfg.Schedule.Tick,
			Logger: log.New(log.Writer(), "[SCHED] ", log.LstdFlags),
		}
		sched.Start()
	}

	addr := cfg.Server.Address
	if addr == "" {
		addr = ":10010"
	}
	log.Printf("listening on %s", addr)
	return e.Start(addr)
}
