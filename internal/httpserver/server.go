package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"langsense-bot/internal/metrics"
	"langsense-bot/internal/repo"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server wraps an http.Server with health, metrics and a small admin
// stats endpoint.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	metrics    *metrics.Metrics
	repository *repo.Repository
}

// New creates an HTTP server listening on addr.
func New(addr string, logger *slog.Logger, metricRegistry *metrics.Metrics, repository *repo.Repository) *Server {
	server := &Server{
		logger:     logger.With("component", "http"),
		metrics:    metricRegistry,
		repository: repository,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", healthHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/admin/stats", server.handleStats)

	server.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return server
}

// Start begins listening for incoming HTTP requests.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server listen: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	stats, err := s.repository.Stats(r.Context())
	if err != nil {
		s.logger.Error("stats query failed", "error", err)
		s.metrics.Errors.WithLabelValues("http").Inc()
		http.Error(w, "stats unavailable", http.StatusInternalServerError)
		return
	}
	users, err := s.repository.ListUsers(r.Context())
	if err != nil {
		s.logger.Error("user count failed", "error", err)
		http.Error(w, "stats unavailable", http.StatusInternalServerError)
		return
	}
	banned := 0
	for _, u := range users {
		if u.IsBanned {
			banned++
		}
	}

	writeJSON(w, map[string]any{
		"users":        len(users),
		"banned_users": banned,
		"transactions": map[string]int{
			"total":    stats.Total,
			"pending":  stats.Pending,
			"approved": stats.Approved,
			"rejected": stats.Rejected,
		},
	})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "failed to encode json", http.StatusInternalServerError)
	}
}
