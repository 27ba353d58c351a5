package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aretw0/plancheck/pkg/domain"
	"github.com/aretw0/plancheck/pkg/ports"
	"github.com/go-chi/chi/v5"
)

// Checker runs one solve-and-validate pass.
type Checker interface {
	Check(ctx context.Context, domainPath, problemPath string) (domain.RunReport, error)
}

// CheckRequest is the body of POST /checks. Paths are resolved on the server host.
type CheckRequest struct {
	Domain  string `json:"domain"`
	Problem string `json:"problem"`
}

// Server exposes stored run reports and process metrics, and optionally runs checks.
type Server struct {
	Store   ports.ReportStore
	Checker Checker
	Metrics http.Handler
	Version string
	Logger  *slog.Logger
}

// Option configures the handler.
type Option func(*Server)

// WithMetrics mounts h on /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.Metrics = h
	}
}

// WithChecker enables POST /checks.
func WithChecker(c Checker) Option {
	return func(s *Server) {
		s.Checker = c
	}
}

// WithVersion sets the version reported by /info.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.Version = v
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = l
	}
}

// NewHandler creates the HTTP handler over a report store.
func NewHandler(store ports.ReportStore, opts ...Option) http.Handler {
	server := &Server{
		Store:   store,
		Version: "dev",
		Logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(server)
	}

	r := chi.NewRouter()
	r.Get("/healthz", server.GetHealth)
	r.Get("/info", server.GetInfo)
	if server.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", server.Metrics)
	}
	if server.Checker != nil {
		r.Post("/checks", server.PostCheck)
	}
	r.Route("/reports", func(r chi.Router) {
		r.Get("/", server.ListReports)
		r.Get("/{id}", server.GetReport)
		r.Delete("/{id}", server.DeleteReport)
	})
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles GET /healthz.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"name": "plancheck", "version": s.Version})
}

// PostCheck handles POST /checks. It blocks until the run finishes and answers with the
// report; the HTTP status reflects transport problems only, not the plan verdict.
func (s *Server) PostCheck(w http.ResponseWriter, r *http.Request) {
	var body CheckRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		s.Logger.Warn("PostCheck: invalid request body", "err", err)
		return
	}
	if body.Domain == "" || body.Problem == "" {
		http.Error(w, "domain and problem are required", http.StatusBadRequest)
		return
	}

	report, err := s.Checker.Check(r.Context(), body.Domain, body.Problem)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		http.Error(w, "check canceled", http.StatusServiceUnavailable)
		return
	}
	if err != nil {
		s.Logger.Error("PostCheck failed", "err", err)
		http.Error(w, fmt.Sprintf("check failed: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// ListReports handles GET /reports.
func (s *Server) ListReports(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Store.List(r.Context())
	if err != nil {
		s.Logger.Error("ListReports failed", "err", err)
		http.Error(w, "failed to list reports", http.StatusInternalServerError)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, ids)
}

// GetReport handles GET /reports/{id}.
func (s *Server) GetReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	report, err := s.Store.Load(r.Context(), id)
	if errors.Is(err, domain.ErrReportNotFound) {
		http.Error(w, "report not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.Logger.Error("GetReport failed", "id", id, "err", err)
		http.Error(w, "failed to load report", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// DeleteReport handles DELETE /reports/{id}.
func (s *Server) DeleteReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Store.Delete(r.Context(), id); err != nil {
		s.Logger.Error("DeleteReport failed", "id", id, "err", err)
		http.Error(w, "failed to delete report", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
