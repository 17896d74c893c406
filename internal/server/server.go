package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ppiankov/docucheck/internal/llm"
	"github.com/ppiankov/docucheck/internal/model"
	"github.com/ppiankov/docucheck/internal/pipeline"
)

// Server exposes check sessions as JSON over HTTP
type Server struct {
	cfg       model.ServerConfig
	pipeline  *pipeline.Pipeline
	configErr error
	gate      *submitGate
	models    []llm.ModelInfo
	log       *slog.Logger

	pipelineOpts []pipeline.Option
}

// Option customizes server construction
type Option func(*Server)

// WithLogger sets the server logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMaxTextChars overrides the prompt-time truncation bound
func WithMaxTextChars(n int) Option {
	return func(s *Server) {
		s.pipelineOpts = append(s.pipelineOpts, pipeline.WithMaxTextChars(n))
	}
}

// WithConfigError records why no judge is available. Every check attempt
// then fails with a generic 500 and the detail is logged.
func WithConfigError(err error) Option {
	return func(s *Server) {
		s.configErr = err
	}
}

// NewServer creates a server around judge. A nil judge means the LLM
// backend is not configured.
func NewServer(cfg model.ServerConfig, judge pipeline.Judge, opts ...Option) *Server {
	s := &Server{
		cfg:    cfg,
		models: llm.Models(),
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.gate = newSubmitGate(cfg.SubmitInterval)
	if judge != nil {
		s.pipeline = pipeline.NewPipeline(judge, append(s.pipelineOpts, pipeline.WithLogger(s.log))...)
	} else if s.configErr == nil {
		s.configErr = llm.ErrMissingAPIKey
	}
	return s
}

// Handler returns the routed HTTP handler
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /check", s.handleCheck)
	mux.HandleFunc("POST /api/check-document", s.handleCheck)
	mux.HandleFunc("GET /models", s.handleModels)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return s.recoverer(mux)
}

// Run serves on the configured address until ctx is done
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server.listen.start", "addr", s.cfg.Addr, "configured", s.pipeline != nil)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.log.Info("server.listen.stopped")
	return nil
}

// recoverer turns handler panics into a generic 500
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.Error("server.panic", "path", r.URL.Path, "panic", rec)
				writeFailure(w, http.StatusInternalServerError, msgInternal)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
