package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/avg-hounsfield/radiology-ai-assistant-sub001/internal/dedup"
	"github.com/avg-hounsfield/radiology-ai-assistant-sub001/internal/flashcards"
	"github.com/avg-hounsfield/radiology-ai-assistant-sub001/internal/models"
)

type ingestRequest struct {
	Paths []string `json:"paths"`
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Paths) == 0 {
		s.respondError(w, http.StatusBadRequest, "paths is required")
		return
	}
	s.logger.Debug("ingest request", zap.Int("files", len(req.Paths)))
	result := s.pipeline.ProcessDocuments(r.Context(), req.Paths)
	s.respondJSON(w, http.StatusOK, result)
}

type queryRequest struct {
	Question string               `json:"question"`
	TopK     int                  `json:"top_k,omitempty"`
	History  []models.HistoryTurn `json:"history,omitempty"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Question == "" {
		s.respondError(w, http.StatusBadRequest, "question is required")
		return
	}
	s.logger.Debug("query request", zap.String("question", req.Question), zap.Int("top_k", req.TopK))
	resp, err := s.orchestrator.Ask(r.Context(), req.Question, req.TopK, req.History)
	if err != nil {
		s.logger.Error("query failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDueCards(w http.ResponseWriter, r *http.Request) {
	due := s.cards.DueCards(time.Now(), r.URL.Query().Get("deck"))
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(due),
		"cards": due,
	})
}

type reviewRequest struct {
	Quality int `json:"quality"`
}

func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	card, err := s.cards.Review(id, req.Quality, time.Now())
	if err != nil {
		var verr *flashcards.ValidationError
		if errors.As(err, &verr) {
			s.respondError(w, http.StatusBadRequest, verr.Error())
			return
		}
		s.logger.Error("review failed", zap.String("card_id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, card)
}

func (s *Server) handleFindDuplicates(w http.ResponseWriter, r *http.Request) {
	groups := s.dedup.FindDuplicates(s.cards.All())
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":  len(groups),
		"groups": groups,
	})
}

type removeDuplicatesRequest struct {
	Exact       bool `json:"exact"`
	VerySimilar bool `json:"very_similar"`
	Similar     bool `json:"similar"`
}

func (s *Server) handleRemoveDuplicates(w http.ResponseWriter, r *http.Request) {
	var req removeDuplicatesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	groups := s.dedup.FindDuplicates(s.cards.All())
	result, err := s.dedup.RemoveDuplicates(s.cards, groups, dedup.RemoveOptions{
		Exact:       req.Exact,
		VerySimilar: req.VerySimilar,
		Similar:     req.Similar,
	})
	if err != nil {
		s.logger.Error("duplicate removal failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"knowledge_base": s.knowledge.Status(),
		"cards":          s.cards.Len(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response failed", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, msg string) {
	s.respondJSON(w, status, map[string]string{"error": msg})
}
