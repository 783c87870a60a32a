package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/example/booking-portal/internal/application"
)

type RouterConfig struct {
	Auth          *AuthHandler
	Professionals *ProfessionalHandler
	Dashboards    *DashboardHandler
	Admin         *AdminHandler
	Sessions      SessionValidator
	// AuthLimiter throttles POST /sessions and POST /signup when set.
	AuthLimiter *RateLimiter
	Metrics     http.Handler
	// Health backs GET /healthz; nil always reports ok.
	Health     func(ctx context.Context) error
	Logger     *slog.Logger
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	logger := defaultLogger(cfg.Logger)
	r := chi.NewRouter()
	for _, mw := range cfg.Middleware {
		if mw != nil {
			r.Use(mw)
		}
	}

	r.Get("/healthz", healthHandler(cfg.Health, logger))
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	if cfg.Auth != nil {
		r.Group(func(r chi.Router) {
			if cfg.AuthLimiter != nil {
				r.Use(cfg.AuthLimiter.Middleware())
			}
			r.Post("/sessions", cfg.Auth.Login)
			r.Post("/signup", cfg.Auth.Signup)
		})
	}

	if cfg.Sessions == nil {
		return r
	}

	r.Group(func(r chi.Router) {
		r.Use(RequireSession(cfg.Sessions, logger))

		if cfg.Auth != nil {
			r.Delete("/sessions/current", cfg.Auth.Logout)
			r.Get("/me", cfg.Auth.Me)
			r.Get("/home", cfg.Auth.Home)
		}

		r.Group(func(r chi.Router) {
			r.Use(RequireRole(logger, application.RoleUser))

			if cfg.Professionals != nil {
				r.Route("/professionals", func(r chi.Router) {
					r.Get("/", cfg.Professionals.List)
					r.Route("/{id}", func(r chi.Router) {
						r.Get("/", cfg.Professionals.Get)
						r.Get("/availability", cfg.Professionals.Availability)
						r.Post("/bookings", cfg.Professionals.Book)
					})
				})
			}
			if cfg.Dashboards != nil {
				r.Get("/dashboard", cfg.Dashboards.User)
			}
		})

		if cfg.Dashboards != nil {
			r.With(RequireRole(logger, application.RoleProfessional)).Get("/professional/dashboard", cfg.Dashboards.Professional)
		}

		r.Route("/admin", func(r chi.Router) {
			r.Use(RequireRole(logger, application.RoleAdmin))

			if cfg.Dashboards != nil {
				r.Get("/dashboard", cfg.Dashboards.Admin)
			}
			if cfg.Admin != nil {
				r.Put("/professionals/{id}/active", cfg.Admin.SetActive)
				r.Post("/professionals/{id}/toggle", cfg.Admin.Toggle)
				r.Get("/appointments.csv", cfg.Admin.ExportCSV)
				r.Get("/reconciliation", cfg.Admin.Reconciliation)
			}
		})
	})

	return r
}

func healthHandler(check func(ctx context.Context) error, logger *slog.Logger) http.HandlerFunc {
	responder := newResponder(logger)
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				responder.loggerFor(r.Context()).ErrorContext(r.Context(), "health check failed", "error", err)
				responder.writeJSON(r.Context(), w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
				return
			}
		}
		responder.writeJSON(r.Context(), w, http.StatusOK, healthResponse{Status: "ok"})
	}
}

type healthResponse struct {
	Status string `json:"status"`
}
