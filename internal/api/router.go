package api

import (
	"course-route-service/internal/api/handlers"
	"course-route-service/internal/ports"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Deps struct {
	Places    ports.PlaceRepository
	Optimizer handlers.CourseOptimizer
	// DB backs the readiness probe and may be nil.
	DB handlers.Pinger
	// RequestTimeout bounds each /v1 request when positive.
	RequestTimeout time.Duration
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(accessLog)

	r.Get("/health", handlers.Health)
	r.Get("/ready", handlers.Ready(deps.DB))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	placeHandler := &handlers.PlaceHandler{Repo: deps.Places}
	courseHandler := &handlers.CourseHandler{Optimizer: deps.Optimizer}

	r.Route("/v1", func(r chi.Router) {
		if deps.RequestTimeout > 0 {
			r.Use(timeout(deps.RequestTimeout))
		}
		r.Get("/places", placeHandler.List)
		r.Post("/courses/optimize", courseHandler.Optimize)
	})

	return r
}
