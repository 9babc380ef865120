// Package server provides the HTTP chat API.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/Yates-Labs/mentor/internal/generation"
	"github.com/Yates-Labs/mentor/internal/orchestrator"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Asker answers one question given the conversation so far.
type Asker interface {
	Ask(ctx context.Context, question string, history []generation.ConversationTurn) (orchestrator.Answer, error)
}

// Server is the HTTP server for the mentor API. Questions are answered one
// at a time; concurrent requests wait for the pipeline.
type Server struct {
	asker       Asker
	historySize int
	addr        string
	logger      *zap.Logger

	mu     sync.Mutex
	server *http.Server
}

// NewServer creates a server answering through asker. Only the last
// historySize turns of a request's history reach the pipeline.
func NewServer(asker Asker, addr string, historySize int, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		asker:       asker,
		historySize: historySize,
		addr:        addr,
		logger:      logger,
	}
}

// Handler returns the API router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))

	r.Post("/api/chat", s.handleChat)
	r.Get("/healthz", s.handleHealth)
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", zap.String("addr", s.addr))
		errc <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("Stopping server")
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
