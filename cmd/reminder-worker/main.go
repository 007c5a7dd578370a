package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/Jonas-Sn/Trabalho-Final/internal/config"
	"github.com/Jonas-Sn/Trabalho-Final/internal/db"
	"github.com/Jonas-Sn/Trabalho-Final/internal/directory"
	"github.com/Jonas-Sn/Trabalho-Final/internal/notify"
	"github.com/Jonas-Sn/Trabalho-Final/internal/scheduling"
)

// The reminder worker notifies patients of next-day scheduled visits. It
// runs against Postgres only; the memory backend keeps everything inside the
// api-server process.
func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("config load error")
	}
	if cfg.StoreBackend != "postgres" {
		logger.Fatal().Msg("reminder-worker requires STORE_BACKEND=postgres")
	}

	logger.Info().
		Str("env", cfg.Env).
		Dur("interval", cfg.WorkerInterval).
		Msg("reminder-worker starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connection error")
	}
	defer pgPool.Close()
	logger.Info().Msg("connected to Postgres")

	grid := scheduling.Grid{
		StartHour:   cfg.GridStartHour,
		EndHour:     cfg.GridEndHour,
		StepMinutes: cfg.GridStepMinutes,
	}

	repo := scheduling.NewPgRepository(pgPool)
	people := directory.NewPgStore(pgPool)
	notifications := notify.NewService(notify.NewPgStore(pgPool))

	// Reminders never reserve slots, so an in-process locker is enough here.
	svc := scheduling.NewService(repo, people, notifications, scheduling.NewLocalLocker(), grid, logger)

	runOnce(rootCtx, svc, logger)

	ticker := time.NewTicker(cfg.WorkerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			logger.Info().Msg("shutdown signal received, stopping reminder worker")
			return
		case <-ticker.C:
			runOnce(rootCtx, svc, logger)
		}
	}
}

func runOnce(ctx context.Context, svc *scheduling.Service, logger zerolog.Logger) {
	runCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	tomorrow := time.Now().AddDate(0, 0, 1).Format(scheduling.DateLayout)

	start := time.Now()
	sent, err := svc.SendVisitReminders(runCtx, tomorrow)
	if err != nil {
		logger.Error().Err(err).Msg("reminder run error")
		return
	}
	logger.Info().
		Int("sent", sent).
		Str("date", tomorrow).
		Dur("took", time.Since(start)).
		Msg("reminder run complete")
}
