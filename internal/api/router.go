package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
)

// NewRouter builds and returns the Chi router with all routes configured.
// The health endpoint is unauthenticated; everything else requires bearer
// auth. Rate limiting is applied globally: 60 requests per minute per IP.
func NewRouter(handlers *Handlers, token string, db dbPinger, redisClient redisPinger, log *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(httprate.LimitByIP(60, time.Minute))

	r.Get("/api/v1/health", HealthHandlerFunc(db, redisClient, log))

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(token))

		r.Get("/api/v1/conditions", handlers.GetConditions)
		r.Get("/api/v1/forecast", handlers.GetForecast)
		r.Get("/api/v1/windows/best", handlers.GetBestWindow)
		r.Get("/api/v1/nights/best", handlers.GetBestNights)
		r.Get("/api/v1/targets/{name}/windows", handlers.GetTargetWindows)
		r.Post("/api/v1/locations/compare", handlers.CompareLocations)
		r.Get("/api/v1/advise", handlers.GetAdvice)

		r.Get("/api/v1/alerts", handlers.ListAlerts)
		r.Post("/api/v1/alerts", handlers.CreateAlert)
		r.Delete("/api/v1/alerts/{id}", handlers.DeleteAlert)
		r.Get("/api/v1/alerts/check", handlers.CheckAlerts)

		r.Post("/api/v1/sessions", handlers.CreateSession)
		r.Get("/api/v1/sessions", handlers.ListSessions)
		r.Get("/api/v1/sessions/{id}", handlers.GetSession)
		r.Post("/api/v1/sessions/{id}/end", handlers.EndSession)
		r.Post("/api/v1/sessions/{id}/observations", handlers.AddObservation)
	})

	return r
}

// Ensure chi.Mux implements http.Handler.
var _ http.Handler = (*chi.Mux)(nil)
