package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Yates-Labs/mentor/internal/generation"
	"github.com/Yates-Labs/mentor/internal/orchestrator"
	"go.uber.org/zap"
)

type chatRequest struct {
	Question string                        `json:"question"`
	History  []generation.ConversationTurn `json:"history"`
}

type chatResponse struct {
	Answer      string   `json:"answer"`
	Sources     []string `json:"sources"`
	Relevant    bool     `json:"relevant"`
	Intercepted bool     `json:"intercepted"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		s.respondError(w, http.StatusBadRequest, "question is required")
		return
	}

	history := orchestrator.LastTurns(req.History, s.historySize)
	s.logger.Debug("chat request", zap.Int("history", len(history)))

	s.mu.Lock()
	answer, err := s.asker.Ask(r.Context(), req.Question, history)
	s.mu.Unlock()

	if err != nil {
		switch {
		case errors.Is(err, orchestrator.ErrEmptyQuestion):
			s.respondError(w, http.StatusBadRequest, "question is required")
		case errors.Is(err, generation.ErrGenerationFailed):
			s.logger.Error("generation failed", zap.Error(err))
			s.respondError(w, http.StatusBadGateway, "the language model did not respond")
		default:
			s.logger.Error("chat failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	sources := answer.Sources
	if sources == nil {
		sources = []string{}
	}
	s.respondJSON(w, http.StatusOK, chatResponse{
		Answer:      answer.Text,
		Sources:     sources,
		Relevant:    answer.Relevant,
		Intercepted: answer.Intercepted,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
