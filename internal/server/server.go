package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/sozercan/research-ai-mole/internal/agents"
	"github.com/sozercan/research-ai-mole/internal/config"
	"github.com/sozercan/research-ai-mole/internal/uploads"
)

// Dispatcher runs a topic against one of the configured agent choices.
// *agents.Runner is the production implementation.
type Dispatcher interface {
	Run(ctx context.Context, choice agents.Choice, input string) (*agents.Result, error)
}

var _ Dispatcher = (*agents.Runner)(nil)

type Server struct {
	cfg        config.ServerConfig
	server     *http.Server
	dispatcher Dispatcher
	store      *uploads.Store
}

func New(cfg config.Config, dispatcher Dispatcher, store *uploads.Store) *Server {
	s := &Server{
		cfg:        cfg.Server,
		dispatcher: dispatcher,
		store:      store,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.loggingMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/agents", s.handleAgents)
		r.Get("/sample.csv", s.handleSampleCSV)
		r.Post("/upload", s.handleUpload)
		r.Post("/research", s.handleResearch)
		r.Get("/health", s.handleHealth)
	})

	// Static files
	fs := http.FileServer(http.Dir("web/static"))
	r.Handle("/*", fs)

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return s
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()

		rw := &responseWriter{ResponseWriter: w}
		next.ServeHTTP(rw, r)

		slog.Info("HTTP request completed",
			"requestId", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.status,
			"duration", time.Since(start),
			"remote_addr", r.RemoteAddr,
		)
	})
}

func (s *Server) Run() error {
	serverErrors := make(chan error, 1)

	go func() {
		slog.Info("Starting server", "address", s.server.Addr)
		serverErrors <- s.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		slog.Info("Starting shutdown", "signal", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := s.server.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
	}

	return nil
}

// Custom response writer to capture status code
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if rw.status == 0 {
		rw.status = http.StatusOK
	}
	return rw.ResponseWriter.Write(b)
}
