package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"DailyDigest/internal/domain"
)

// Runner executes one digest run end to end.
type Runner interface {
	Run(ctx context.Context, now time.Time) (domain.RunResult, error)
}

// Server exposes the on-demand trigger surface. The dashboard triggers a run
// with a browser POST, so CORS is deliberately permissive.
type Server struct {
	addr   string
	runner Runner
	logger *slog.Logger
	now    func() time.Time
}

// New wires the trigger server.
func New(addr string, runner Runner, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		addr:   addr,
		runner: runner,
		logger: logger,
		now:    time.Now,
	}
}

// Router builds the chi handler tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}))

	r.Post("/", s.handleTrigger)
	r.Get("/healthz", s.handleHealth)

	return r
}

// ListenAndServe blocks until the context is canceled or the listener fails.
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.addr,
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	s.logger.Info("trigger server listening", "addr", s.addr)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}

type triggerResponse struct {
	Success      bool   `json:"success"`
	LinkCount    int    `json:"linkCount"`
	ArticleCount int    `json:"articleCount,omitempty"`
	Filename     string `json:"filename,omitempty"`
	Summary      string `json:"summary,omitempty"`
	Error        string `json:"error,omitempty"`
}

// handleTrigger runs the whole pipeline synchronously; the caller blocks for
// the full run duration. The request body is ignored.
func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	log := s.logger.With("request_id", middleware.GetReqID(r.Context()))
	log.Info("digest run triggered")

	result, err := s.runner.Run(r.Context(), s.now())
	if err != nil {
		log.Error("digest run failed", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, triggerResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	s.writeJSON(w, http.StatusOK, triggerResponse{
		Success:      true,
		LinkCount:    result.LinkCount,
		ArticleCount: result.ArticleCount,
		Filename:     result.Filename,
		Summary:      result.Preview,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("write response failed", "error", err)
	}
}
