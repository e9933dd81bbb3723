// Package httpapi exposes the answering pipeline over HTTP. It is the
// outermost boundary: domain errors are translated to status codes here
// and nowhere else.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Default configuration values.
const (
	DefaultAddr            = ":8000"
	DefaultReadTimeout     = 30 * time.Second
	DefaultShutdownTimeout = 5 * time.Second
)

// Config holds server configuration.
type Config struct {
	// Addr is the listen address (default: :8000).
	Addr string

	// Version is reported by the health endpoint.
	Version string

	// ReadTimeout bounds reading the request, headers included
	// (default: 30s).
	ReadTimeout time.Duration
}

// Server serves the answering API.
type Server struct {
	svc     driving.AnswerService
	addr    string
	version string
	readTO  time.Duration
}

// NewServer creates a server around the answering service.
func NewServer(cfg Config, svc driving.AnswerService) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}

	return &Server{
		svc:     svc,
		addr:    cfg.Addr,
		version: cfg.Version,
		readTO:  cfg.ReadTimeout,
	}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/answer", s.handleAnswer)
	mux.HandleFunc("/health", s.handleHealth)
	return corsMiddleware(loggingMiddleware(mux))
}

// Start runs the server until ctx is cancelled, then shuts down gracefully.
// Answer batches have no global deadline, so WriteTimeout stays unset.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:        s.addr,
		Handler:     s.Handler(),
		ReadTimeout: s.readTO,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("server listening on %s", s.addr)
	err := server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// handleHealth returns a liveness and version payload. No side effects.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "active",
		"version": s.version,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Info("%s %s %v", r.Method, r.URL.Path, time.Since(start))
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			return
		}
		next.ServeHTTP(w, r)
	})
}
