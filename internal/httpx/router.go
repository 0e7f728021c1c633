package httpx

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/you/go-ramadan-transfers/internal/auth"
	"github.com/you/go-ramadan-transfers/internal/config"
	"github.com/you/go-ramadan-transfers/internal/logger"
	"github.com/you/go-ramadan-transfers/internal/service"
)

const apiTimeout = 30 * time.Second

// NewRouter mounts the booking API, the quote websocket and the
// operator-only cache endpoints.
func NewRouter(svc *service.PricingService, cfg *config.Config, log zerolog.Logger) http.Handler {
	log = logger.Component(log, "http")
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(loggingMiddleware(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", HealthHandler)
	r.Post("/auth/login", auth.LoginHandler(cfg, log))
	r.Get("/ws/quotes", QuotesWSHandler(svc, log))

	cat := svc.Catalog()
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(apiTimeout))

		r.Get("/vehicles", VehiclesHandler(cat))
		r.Get("/vehicles/{id}/services", VehicleServicesHandler(svc))
		r.Get("/categories", CategoriesHandler(cat))
		r.Get("/services", ServicesHandler(cat))
		r.Get("/price", PriceHandler(svc))
		r.Get("/quote", QuoteHandler(svc))
		r.Get("/tier", TierHandler(svc))
		r.Get("/surge", SurgeHandler(svc))
		r.Get("/pricing-window", PricingWindowHandler(svc))
		r.Get("/ramadan", RamadanHandler(svc))
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return auth.RequireOperator(cfg, log, next)
		})
		r.Get("/cache", CacheSummaryHandler(svc))
		r.Delete("/cache", ClearCacheHandler(svc))
	})

	return r
}

func loggingMiddleware(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration_ms", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("HTTP request")
		})
	}
}
