package api

import (
	"net/http"

	"cf_mashup/internal/api/handler"
	"cf_mashup/internal/api/middleware"
	"cf_mashup/internal/app/service"
	"cf_mashup/internal/platform/config"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(cfg config.APIConfig, mashupService *service.MashupService) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(middleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.AccessLog)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(cfg.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	r.Handle("/metrics", promhttp.Handler())

	handler.NewRootHandler().RegisterRoutes(r)

	var generateLimits []func(http.Handler) http.Handler
	if cfg.RateLimitRequests > 0 {
		generateLimits = append(generateLimits, httprate.LimitByIP(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}
	handler.NewMashupHandler(mashupService, generateLimits...).RegisterRoutes(r)

	return r
}
