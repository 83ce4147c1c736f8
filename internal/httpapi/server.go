// Package httpapi is the JSON HTTP surface of the assistant. Sessions are
// cookie-scoped: the first request mints a session ID and every contract
// operation happens inside that session.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/user/leasecraft/internal/retrieval"
	"github.com/user/leasecraft/internal/router"
	"github.com/user/leasecraft/internal/types"
)

const sessionCookie = "leasecraft_session"

// Conversations is the routing surface the server depends on. Implemented
// by router.Router.
type Conversations interface {
	Handle(ctx context.Context, sessionID types.SessionID, message, callerContract, source string) (*router.Result, error)
	Review(ctx context.Context, contractText string) (string, error)
	Current(ctx context.Context, sessionID types.SessionID) (string, error)
	Clear(ctx context.Context, sessionID types.SessionID) error
}

// CorpusCounter reports vector-store document counts for the health check.
type CorpusCounter interface {
	Count(ctx context.Context, cat retrieval.Category) (int, error)
}

// Server handles the HTTP API.
type Server struct {
	conv   Conversations
	corpus CorpusCounter
	logger *slog.Logger
	mux    *http.ServeMux
}

// NewServer creates a Server. corpus may be nil; the health check then skips
// document counts.
func NewServer(conv Conversations, corpus CorpusCounter, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		conv:   conv,
		corpus: corpus,
		logger: logger,
		mux:    http.NewServeMux(),
	}
	s.mux.HandleFunc("POST /api/chat", s.handleChat)
	s.mux.HandleFunc("POST /api/review", s.handleReview)
	s.mux.HandleFunc("GET /api/contract", s.handleGetContract)
	s.mux.HandleFunc("POST /api/clear-session", s.handleClearSession)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	return s
}

// ServeHTTP delegates to the internal mux, implementing http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// sessionID returns the request's session, minting a cookie when absent.
func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) types.SessionID {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return types.SessionID(c.Value)
	}

	id := types.NewSessionID()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    string(id),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// chatRequest is the JSON body for POST /api/chat. CurrentContract lets the
// frontend push its displayed contract; it overrides the stored one.
type chatRequest struct {
	Message         string `json:"message"`
	CurrentContract string `json:"current_contract"`
}

type chatResponse struct {
	Response string `json:"response"`
	Contract string `json:"contract,omitempty"`
	Action   string `json:"action"`
	Intent   string `json:"intent,omitempty"`
	ChatID   string `json:"chat_id"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	id := s.sessionID(w, r)
	result, err := s.conv.Handle(r.Context(), id, req.Message, req.CurrentContract, "http")
	if err != nil {
		s.logger.Error("chat turn failed", "session_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Response: result.Message,
		Contract: result.Contract,
		Action:   string(result.Action),
		Intent:   result.Intent,
		ChatID:   string(id),
	})
}

// reviewRequest is the JSON body for POST /api/review. An empty ContractText
// falls back to the session's stored contract.
type reviewRequest struct {
	ContractText string `json:"contract_text"`
}

func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	id := s.sessionID(w, r)
	text := strings.TrimSpace(req.ContractText)
	if text == "" {
		stored, err := s.conv.Current(r.Context(), id)
		if err != nil {
			s.logger.Error("load contract failed", "session_id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		text = stored
	}
	if text == "" {
		writeError(w, http.StatusBadRequest, "contract text is required")
		return
	}

	review, err := s.conv.Review(r.Context(), text)
	if err != nil {
		s.logger.Error("review failed", "session_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"review":  review,
		"chat_id": string(id),
	})
}

func (s *Server) handleGetContract(w http.ResponseWriter, r *http.Request) {
	id := s.sessionID(w, r)
	contract, err := s.conv.Current(r.Context(), id)
	if err != nil {
		s.logger.Error("load contract failed", "session_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"contract":        contract,
		"has_contract":    contract != "",
		"contract_length": len(contract),
	})
}

func (s *Server) handleClearSession(w http.ResponseWriter, r *http.Request) {
	id := s.sessionID(w, r)
	if err := s.conv.Clear(r.Context(), id); err != nil {
		s.logger.Error("clear session failed", "session_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	// Expire the cookie so the next request starts fresh.
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	info := map[string]any{"status": "healthy"}

	if s.corpus != nil {
		counts := map[string]any{}
		backend := "ok"
		for _, cat := range []retrieval.Category{retrieval.CategoryLease, retrieval.CategoryLaw, retrieval.CategoryMistake} {
			n, err := s.corpus.Count(r.Context(), cat)
			if err != nil {
				s.logger.Warn("corpus count failed", "category", cat, "error", err)
				backend = "error: " + err.Error()
				continue
			}
			counts[string(cat)] = n
		}
		info["vector_store"] = backend
		info["documents"] = counts
	}

	writeJSON(w, http.StatusOK, info)
}
