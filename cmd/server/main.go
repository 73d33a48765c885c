package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"log/slog"
	stdhttp "net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/vncsmyrnk/classpoll/internal/adapters/handler/http"
	"github.com/vncsmyrnk/classpoll/internal/adapters/handler/ws"
	"github.com/vncsmyrnk/classpoll/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/classpoll/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/classpoll/internal/config"
	"github.com/vncsmyrnk/classpoll/internal/core/ports"
	"github.com/vncsmyrnk/classpoll/internal/core/services"
	"github.com/vncsmyrnk/classpoll/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger := logger.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var resultRepo ports.PollResultRepository
	if cfg.Postgres.Enabled() {
		db, err := sql.Open("postgres", cfg.Postgres.ConnString())
		if err != nil {
			log.Fatal(err)
		}
		defer db.Close()

		if err := db.PingContext(ctx); err != nil {
			log.Fatal(err)
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			log.Fatal(err)
		}
		resultRepo = postgres.NewPollResultRepository(db)
		logger.Info("archiving poll results in postgres", slog.String("host", cfg.Postgres.Host))
	} else {
		resultRepo = memory.NewPollResultRepository()
		logger.Warn("POSTGRES_HOST not set, poll results are kept in memory only")
	}

	hub := ws.NewHub(logger)
	clock := services.NewSystemClock()
	engine := services.NewSessionEngine(
		memory.NewPollRegistry(clock.Now, clock.Now().UnixMilli()),
		memory.NewSessionRegistry(clock.Now),
		hub,
		resultRepo,
		clock,
		logger,
		services.EngineConfig{
			PollDuration:   cfg.PollDuration,
			PersistTimeout: cfg.PersistTimeout,
			PersistRetries: cfg.PersistRetries,
		},
	)

	resultHandler := http.NewResultHandler(services.NewResultService(resultRepo))
	wsHandler := ws.NewHandler(hub, engine, logger, cfg.AllowedOrigins)
	handler := http.NewHandler(resultHandler, wsHandler, hub.Count, cfg.AllowedOrigins)
	server := &stdhttp.Server{Addr: cfg.HTTPAddr, Handler: handler}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			log.Fatal(err)
		}
	}()
	logger.Info("server listening", slog.String("addr", cfg.HTTPAddr), slog.Duration("poll_duration", cfg.PollDuration))

	<-ctx.Done()
	logger.Info("gracefully shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", slog.String("error", err.Error()))
	}
	if err := engine.Shutdown(shutdownCtx); err != nil {
		logger.Error("engine shutdown failed", slog.String("error", err.Error()))
	}
	hub.Close()
}
