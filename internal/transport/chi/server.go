// Package chi is the HTTP transport of the document library.
package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	healthuc "github.com/kailas-cloud/doclib/internal/usecase/health"
)

// Options are the request limits applied by handlers.
type Options struct {
	DefaultPageSize  int // 0 = whole result set
	MaxPageSize      int
	MaxActionItems   int
	DefaultContainer string
}

// Server serves the doclib HTTP API.
type Server struct {
	listing       ListingService
	actions       ActionService
	favourites    FavouriteService
	sites         SiteService
	health        HealthService
	opts          Options
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	listing ListingService,
	actions ActionService,
	favourites FavouriteService,
	sites SiteService,
	health HealthService,
	opts Options,
) *Server {
	if opts.MaxPageSize <= 0 {
		opts.MaxPageSize = 500
	}
	if opts.MaxActionItems <= 0 {
		opts.MaxActionItems = 100
	}
	if opts.DefaultContainer == "" {
		opts.DefaultContainer = "documentLibrary"
	}
	return &Server{
		listing:       listing,
		actions:       actions,
		favourites:    favourites,
		sites:         sites,
		health:        health,
		opts:          opts,
		errorHandlers: defaultErrorHandlers(),
	}
}

// Register mounts every route on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/doclist/{type}", func(r chi.Router) {
			r.Get("/site/{site}", s.ListDocuments)
			r.Get("/site/{site}/{container}", s.ListDocuments)
			r.Get("/site/{site}/{container}/*", s.ListDocuments)
			r.Get("/node/{store_type}/{store_id}/{id}", s.ListDocuments)
			r.Get("/node/{store_type}/{store_id}/{id}/*", s.ListDocuments)
		})

		r.Get("/node/{store_type}/{store_id}/{id}", s.GetNode)

		r.Route("/action/{action}", func(r chi.Router) {
			r.Post("/site/{site}/{container}", s.RunAction)
			r.Post("/site/{site}/{container}/*", s.RunAction)
			r.Post("/node/{store_type}/{store_id}/{id}", s.RunAction)
			r.Post("/node/{store_type}/{store_id}/{id}/*", s.RunAction)
		})

		r.Post("/sites", s.CreateSite)

		r.Get("/favourites", s.ListFavourites)
		r.Post("/favourites", s.AddFavourite)
		r.Delete("/favourites/{store_type}/{store_id}/{id}", s.RemoveFavourite)
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}
