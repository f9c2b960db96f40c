package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"

	"hospital-booking/internal/metrics"
	"hospital-booking/internal/middleware"
)

type RouterConfig struct {
	Logger           *zap.Logger
	Metrics          *metrics.Metrics
	MetricsHandler   http.Handler
	AuthLimiter      *middleware.RateLimiter
	APIRatePerSecond int
	AllowedOrigins   []string
	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	// Only set it behind a proxy that overwrites those headers; otherwise the
	// per-IP limits key on the socket peer.
	TrustProxy bool
}

// Router mounts the booking API:
//
//	POST   /auth/register
//	POST   /auth/login
//	GET    /api/doctors
//	GET    /api/doctors/{id}
//	GET    /api/appointments          (bearer)
//	POST   /api/appointments          (bearer)
//	DELETE /api/appointments/{id}     (bearer)
func (h *Handler) Router(cfg RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	if cfg.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(log, cfg.Metrics))
	r.Use(chimw.Recoverer)
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
			ExposedHeaders: []string{middleware.RequestIDHeader},
			MaxAge:         300,
		}))
	}

	r.Get("/", h.Index)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/auth", func(r chi.Router) {
		if cfg.AuthLimiter != nil {
			r.Use(cfg.AuthLimiter.Limit)
		}
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
	})

	r.Route("/api", func(r chi.Router) {
		if cfg.APIRatePerSecond > 0 {
			r.Use(httprate.Limit(cfg.APIRatePerSecond, time.Second,
				httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
					return middleware.ClientIP(r), nil
				}),
			))
		}
		r.Get("/doctors", h.ListDoctors)
		r.Get("/doctors/{id}", h.GetDoctor)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(h.tokens))
			r.Get("/appointments", h.ListAppointments)
			r.Post("/appointments", h.CreateAppointment)
			r.Delete("/appointments/{id}", h.DeleteAppointment)
		})
	})

	return r
}
