// Package server provides the HTTP API for the study assistant.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/avg-hounsfield/radiology-ai-assistant-sub001/internal/config"
	"github.com/avg-hounsfield/radiology-ai-assistant-sub001/internal/dedup"
	"github.com/avg-hounsfield/radiology-ai-assistant-sub001/internal/flashcards"
	"github.com/avg-hounsfield/radiology-ai-assistant-sub001/internal/ingest"
	"github.com/avg-hounsfield/radiology-ai-assistant-sub001/internal/kb"
	"github.com/avg-hounsfield/radiology-ai-assistant-sub001/internal/rag"
)

// Server is the HTTP server for the study assistant API.
type Server struct {
	pipeline     *ingest.Pipeline
	knowledge    *kb.KnowledgeBase
	orchestrator *rag.Orchestrator
	cards        *flashcards.Store
	dedup        *dedup.Engine
	config       *config.ServerConfig
	logger       *zap.Logger
	server       *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	pipeline *ingest.Pipeline,
	knowledge *kb.KnowledgeBase,
	orchestrator *rag.Orchestrator,
	cards *flashcards.Store,
	deduper *dedup.Engine,
	cfg *config.ServerConfig,
	logger *zap.Logger,
) *Server {
	return &Server{
		pipeline:     pipeline,
		knowledge:    knowledge,
		orchestrator: orchestrator,
		cards:        cards,
		dedup:        deduper,
		config:       cfg,
		logger:       logger,
	}
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))

	r.Post("/api/v1/ingest", s.handleIngest)
	r.Post("/api/v1/query", s.handleQuery)
	r.Get("/api/v1/cards/due", s.handleDueCards)
	r.Post("/api/v1/cards/{id}/review", s.handleReview)
	r.Get("/api/v1/duplicates", s.handleFindDuplicates)
	r.Post("/api/v1/duplicates/remove", s.handleRemoveDuplicates)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
