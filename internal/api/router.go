package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Jonas-Sn/Trabalho-Final/internal/notify"
	"github.com/Jonas-Sn/Trabalho-Final/internal/scheduling"
)

type RouterConfig struct {
	Scheduler     *scheduling.Service
	Notifications *notify.Service
	PgPool        *pgxpool.Pool // nil on the memory backend
	Redis         *redis.Client // nil on the local lock backend
	Env           string
	Version       string
	Logger        zerolog.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))

	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Booking
	r.Post("/appointments/request", requestAppointmentHandler(cfg.Scheduler))
	r.Post("/appointments", scheduleAppointmentHandler(cfg.Scheduler))
	r.Get("/appointments", listAppointmentsHandler(cfg.Scheduler))

	// Lifecycle transitions
	r.Post("/appointments/{id}/approve", approveAppointmentHandler(cfg.Scheduler))
	r.Post("/appointments/{id}/cancel", cancelAppointmentHandler(cfg.Scheduler))
	r.Post("/appointments/{id}/complete", completeAppointmentHandler(cfg.Scheduler))

	// Read-side views
	r.Get("/providers/{id}/slots", availableSlotsHandler(cfg.Scheduler))
	r.Get("/providers/{id}/agenda", providerAgendaHandler(cfg.Scheduler))
	r.Get("/patients/{id}/appointments", listForPatientHandler(cfg.Scheduler))

	// Notifications
	r.Get("/people/{id}/notifications", listNotificationsHandler(cfg.Notifications))
	r.Get("/people/{id}/notifications/count", unreadCountHandler(cfg.Notifications))
	r.Post("/people/{id}/notifications/read", markAllReadHandler(cfg.Notifications))

	return r
}
