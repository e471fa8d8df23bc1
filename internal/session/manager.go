package session

import (
	"encoding/json"
	"errors"

	"github.com/plannerai/planner/internal/log"
)

// DefaultAppName is the application namespace all sessions live under.
const DefaultAppName = "planner_ai"

// Manager is the session lifecycle façade used by the transport layer and the
// orchestrator. It binds a Store to one application name so callers deal only
// in (session, user) pairs.
type Manager struct {
	store  *Store
	app    string
	logger log.Logger
}

// NewManager creates a Manager over the given store. An empty appName falls
// back to DefaultAppName.
func NewManager(store *Store, appName string, logger log.Logger) *Manager {
	if appName == "" {
		appName = DefaultAppName
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Manager{store: store, app: appName, logger: logger}
}

// AppName returns the application namespace this manager is bound to.
func (m *Manager) AppName() string { return m.app }

// GetOrCreate returns the session's record, creating it with default State on
// first reference. Safe to call once per chat turn: concurrent calls for the
// same (user, session) converge on a single record because Create is
// idempotent under the store lock.
func (m *Manager) GetOrCreate(sessionID, userID string) (Snapshot, error) {
	snap, err := m.store.Get(m.app, userID, sessionID)
	if err == nil {
		return snap, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Snapshot{}, err
	}
	return m.store.Create(m.app, userID, sessionID), nil
}

// Get returns the existing session or ErrNotFound, never creating one.
func (m *Manager) Get(sessionID, userID string) (Snapshot, error) {
	return m.store.Get(m.app, userID, sessionID)
}

// ApplyUpdates folds field updates into the session's State through the
// store's merge path. This is the single write path shared by the memorize
// tool and the structured sub-agents.
func (m *Manager) ApplyUpdates(sessionID, userID string, updates map[string]json.RawMessage) error {
	return m.store.ApplyUpdates(m.app, userID, sessionID, updates)
}
