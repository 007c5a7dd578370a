package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Jonas-Sn/Trabalho-Final/internal/api"
	"github.com/Jonas-Sn/Trabalho-Final/internal/config"
	"github.com/Jonas-Sn/Trabalho-Final/internal/db"
	"github.com/Jonas-Sn/Trabalho-Final/internal/directory"
	"github.com/Jonas-Sn/Trabalho-Final/internal/notify"
	redisclient "github.com/Jonas-Sn/Trabalho-Final/internal/redis"
	"github.com/Jonas-Sn/Trabalho-Final/internal/scheduling"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr)
		bootLogger.Fatal().Err(err).Msg("config load error")
	}

	logger := newLogger(cfg)
	logger.Info().
		Str("env", cfg.Env).
		Str("http_port", cfg.HTTPPort).
		Str("store", cfg.StoreBackend).
		Str("lock", cfg.LockBackend).
		Msg("api-server starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var pgPool *pgxpool.Pool
	var people directory.Store
	var repo scheduling.Repository
	var notifyStore notify.Store

	switch cfg.StoreBackend {
	case "postgres":
		pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
		pgPool, err = db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
		cancelPg()
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres connection error")
		}
		defer pgPool.Close()

		if err := db.Migrate(rootCtx, pgPool); err != nil {
			logger.Fatal().Err(err).Msg("migration error")
		}
		logger.Info().Msg("connected to Postgres")

		people = directory.NewPgStore(pgPool)
		repo = scheduling.NewPgRepository(pgPool)
		notifyStore = notify.NewPgStore(pgPool)
	case "memory":
		people = directory.NewMemoryStore()
		repo = scheduling.NewMemoryRepository()
		notifyStore = notify.NewMemoryStore()
		logger.Info().Msg("using in-memory stores")
	}

	var rdb *redis.Client
	var locker scheduling.Locker

	switch cfg.LockBackend {
	case "redis":
		rdb, err = redisclient.NewClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connection error")
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				logger.Error().Err(err).Msg("error closing redis")
			}
		}()
		logger.Info().Msg("connected to Redis")

		locker = redisclient.NewSlotLocker(rdb, cfg.LockTTL)
	case "local":
		locker = scheduling.NewLocalLocker()
		logger.Info().Msg("using in-process slot locks")
	}

	grid := scheduling.Grid{
		StartHour:   cfg.GridStartHour,
		EndHour:     cfg.GridEndHour,
		StepMinutes: cfg.GridStepMinutes,
	}

	notifications := notify.NewService(notifyStore)
	scheduler := scheduling.NewService(repo, people, notifications, locker, grid, logger)

	router := api.NewRouter(api.RouterConfig{
		Scheduler:     scheduler,
		Notifications: notifications,
		PgPool:        pgPool,
		Redis:         rdb,
		Env:           cfg.Env,
		Version:       version,
		Logger:        logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server error")
		}
	}()

	<-rootCtx.Done()
	logger.Info().Msg("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func newLogger(cfg config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	if cfg.Env == "dev" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).Level(level).With().Timestamp().Logger()
	}
	return logger
}
