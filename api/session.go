package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/plannerai/planner/internal/log"
	"github.com/plannerai/planner/internal/session"
	"github.com/plannerai/planner/internal/state"
)

// SessionResponse is the response body for the session state endpoint.
type SessionResponse struct {
	UserID    string       `json:"user_id"`
	SessionID string       `json:"session_id"`
	State     *state.State `json:"state"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// SessionHandler exposes read-only session state, backing the frontend's
// session debug panel.
type SessionHandler struct {
	sessions *session.Manager
	logger   log.Logger
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(sessions *session.Manager, logger log.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, logger: logger}
}

// RegisterRoutes registers session routes on the given mux.
func (h *SessionHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /sessions/{user_id}/{session_id}", h.get)
}

// get returns the session's state snapshot, or 404 for a session that was
// never created. Unlike the chat path, reading never creates a session.
func (h *SessionHandler) get(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")
	sessionID := r.PathValue("session_id")

	snap, err := h.sessions.Get(sessionID, userID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "session not found", h.logger)
			return
		}
		h.logger.Error("failed to load session", "error", err, "session_id", sessionID)
		writeError(w, http.StatusInternalServerError, "session_error", "failed to load session", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, SessionResponse{
		UserID:    snap.UserID,
		SessionID: snap.SessionID,
		State:     snap.State,
		CreatedAt: snap.CreatedAt,
		UpdatedAt: snap.UpdatedAt,
	}, h.logger)
}
