package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/plannerai/planner/internal/agent"
	"github.com/plannerai/planner/internal/log"
	"github.com/plannerai/planner/internal/session"
)

// MaxMessageLength bounds a single chat message.
const MaxMessageLength = 8192

// ChatRequest is the request body for POST /chat.
type ChatRequest struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// ChatResponse is the response body for POST /chat.
// Message is the orchestrator's final text, or empty when the turn ended
// without a terminal response.
type ChatResponse struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// ChatHandler handles one conversational turn per request.
type ChatHandler struct {
	orchestrator agent.Orchestrator
	sessions     *session.Manager
	logger       log.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(orc agent.Orchestrator, sessions *session.Manager, logger log.Logger) *ChatHandler {
	return &ChatHandler{orchestrator: orc, sessions: sessions, logger: logger}
}

// RegisterRoutes registers chat routes on the given mux.
func (h *ChatHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /chat", h.chat)
}

// chat runs one turn: resolve (create-if-absent) the session, delegate to the
// orchestrator, re-read the session to observe tool side effects, respond.
func (h *ChatHandler) chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body", h.logger)
		return
	}
	if msg, ok := validateChatRequest(req); !ok {
		writeError(w, http.StatusBadRequest, "validation_error", msg, h.logger)
		return
	}

	if _, err := h.sessions.GetOrCreate(req.SessionID, req.UserID); err != nil {
		h.logger.Error("failed to resolve session",
			"error", err,
			"user_id", req.UserID,
			"session_id", req.SessionID)
		writeError(w, http.StatusInternalServerError, "session_error", "failed to resolve session", h.logger)
		return
	}

	finalText, err := h.orchestrator.Invoke(r.Context(), req.UserID, req.SessionID, req.Message)
	if err != nil {
		h.logger.Error("orchestrator failed",
			"error", err,
			"user_id", req.UserID,
			"session_id", req.SessionID)
		writeError(w, http.StatusBadGateway, "orchestrator_error", "failed to process message", h.logger)
		return
	}

	// Re-read after delegation so updates applied by tools during the turn
	// (including nested sub-agent calls) are observed before responding.
	snap, err := h.sessions.Get(req.SessionID, req.UserID)
	if err != nil {
		h.logger.Error("failed to re-read session",
			"error", err,
			"session_id", req.SessionID)
	} else {
		h.logger.Debug("turn completed",
			"user_id", req.UserID,
			"session_id", req.SessionID,
			"updated_at", snap.UpdatedAt,
			"response_len", len(finalText))
	}

	writeJSON(w, http.StatusOK, ChatResponse{
		UserID:    req.UserID,
		SessionID: req.SessionID,
		Message:   finalText,
	}, h.logger)
}

// validateChatRequest checks required fields and bounds.
// Returns a client-facing message and false when invalid.
func validateChatRequest(req ChatRequest) (string, bool) {
	switch {
	case strings.TrimSpace(req.UserID) == "":
		return "user_id is required", false
	case strings.TrimSpace(req.SessionID) == "":
		return "session_id is required", false
	case strings.TrimSpace(req.Message) == "":
		return "message is required", false
	case len(req.Message) > MaxMessageLength:
		return "message too long", false
	}
	return "", true
}
