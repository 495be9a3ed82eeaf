// Package api exposes the HTTP interface for the scrape service. Principal
// resolution happens upstream: the host environment authenticates callers
// and hands identity to this layer via trusted headers.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pageharvest/pageharvest/internal/auth"
	"github.com/pageharvest/pageharvest/internal/config"
	"github.com/pageharvest/pageharvest/internal/scraper"
)

// Headers carrying the externally resolved principal.
const (
	headerSubject = "X-Auth-Subject"
	headerRole    = "X-Auth-Role"
)

// Server wires HTTP handlers to the pipeline and query service.
type Server struct {
	router   chi.Router
	pipeline *scraper.Pipeline
	query    *scraper.Query
	cfg      config.Config
	logger   *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(pipeline *scraper.Pipeline, query *scraper.Query, cfg config.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		pipeline: pipeline,
		query:    query,
		cfg:      cfg,
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(metricsMiddleware)
	// The scrape handler runs the fetch inline, so the request budget must
	// exceed the fetch timeout.
	r.Use(timeoutMiddleware(cfg.FetchTimeout() + 30*time.Second))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/scrape", s.scrape)
		r.Get("/items", s.listItems)
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type scrapeRequest struct {
	URL       string            `json:"url"`
	Selectors scraper.Selectors `json:"selectors"`
}

type scrapeResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Count   int    `json:"count"`
}

func (s *Server) scrape(w http.ResponseWriter, r *http.Request) {
	principal := principalFromRequest(r)

	target := s.cfg.ScrapeTarget()
	if r.Body != nil && r.ContentLength != 0 {
		var req scrapeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		// An omitted url falls back to the configured default target.
		if req.URL != "" {
			target = scraper.Config{URL: req.URL, Selectors: req.Selectors}
		}
	}
	if err := target.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := s.pipeline.Run(r.Context(), principal, target)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scrapeResponse{
		Success: true,
		Message: summary.Message,
		Count:   summary.Count,
	})
}

func (s *Server) listItems(w http.ResponseWriter, r *http.Request) {
	principal := principalFromRequest(r)

	limit := 0
	if limStr := r.URL.Query().Get("limit"); limStr != "" {
		val, err := strconv.Atoi(limStr)
		if err != nil || val <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = val
	}

	items, err := s.query.ListItems(r.Context(), principal, limit)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	if items == nil {
		items = []scraper.StoredItem{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    items,
	})
}

func (s *Server) writeFailure(w http.ResponseWriter, err error) {
	code := scraper.CodeOf(err)
	s.logger.Error("request failed", zap.String("code", string(code)), zap.Error(err))
	writeJSON(w, statusForCode(code), map[string]any{
		"success": false,
		"code":    string(code),
		"message": scraper.MessageOf(err),
	})
}

func statusForCode(code scraper.Code) int {
	switch code {
	case scraper.CodeUnauthenticated:
		return http.StatusUnauthorized
	case scraper.CodePermissionDenied:
		return http.StatusForbidden
	case scraper.CodeFetchFailed:
		return http.StatusBadGateway
	case scraper.CodeStorage:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func principalFromRequest(r *http.Request) auth.Principal {
	return auth.Principal{
		Subject: r.Header.Get(headerSubject),
		Role:    auth.RoleFromString(r.Header.Get(headerRole)),
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "message": msg})
}
