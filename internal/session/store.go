package session

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/plannerai/planner/internal/log"
	"github.com/plannerai/planner/internal/state"
)

// Snapshot is a point-in-time, caller-owned view of a session record.
// Mutating a Snapshot never affects the stored record.
type Snapshot struct {
	AppName   string                     `json:"app_name"`
	UserID    string                     `json:"user_id"`
	SessionID string                     `json:"session_id"`
	State     *state.State               `json:"state"`
	Attrs     map[string]json.RawMessage `json:"attributes,omitempty"`
	CreatedAt time.Time                  `json:"created_at"`
	UpdatedAt time.Time                  `json:"updated_at"`
}

// record is the stored representation. Its mutex serializes merges and
// snapshot reads for one session.
type record struct {
	mu        sync.RWMutex
	state     *state.State
	attrs     map[string]json.RawMessage
	createdAt time.Time
	updatedAt time.Time
}

// key identifies a session record.
type key struct {
	app     string
	user    string
	session string
}

// Store maps (app, user, session) triples to session records.
// The zero value is not usable; use NewStore.
type Store struct {
	mu      sync.RWMutex
	records map[key]*record
	policy  state.Policy
	logger  log.Logger
	clock   func() time.Time
}

// NewStore creates an empty in-memory store applying updates under the given
// merge policy.
func NewStore(policy state.Policy, logger log.Logger) *Store {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Store{
		records: make(map[key]*record),
		policy:  policy,
		logger:  logger,
		clock:   time.Now,
	}
}

// Policy returns the merge policy the store applies.
func (s *Store) Policy() state.Policy { return s.policy }

// Create returns the record for the key, creating it with a fully-defaulted
// State when absent. Creation is idempotent: an existing record is returned
// unchanged, never overwritten. Create always succeeds.
func (s *Store) Create(app, user, session string) Snapshot {
	k := key{app: app, user: user, session: session}

	s.mu.Lock()
	rec, ok := s.records[k]
	if !ok {
		now := s.clock()
		rec = &record{
			state:     state.New(user),
			createdAt: now,
			updatedAt: now,
		}
		s.records[k] = rec
		s.logger.Debug("session created", "app", app, "user_id", user, "session_id", session)
	}
	s.mu.Unlock()

	return rec.snapshot(k)
}

// Get returns a snapshot of the existing record or ErrNotFound.
// Get never creates a record as a side effect.
func (s *Store) Get(app, user, session string) (Snapshot, error) {
	k := key{app: app, user: user, session: session}

	s.mu.RLock()
	rec, ok := s.records[k]
	s.mu.RUnlock()
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	return rec.snapshot(k), nil
}

// ApplyUpdates folds updates into the session's State under the store's merge
// policy. Recognized top-level fields go through the typed merge; unknown keys
// are retained verbatim as loose session attributes. Returns ErrNotFound for
// an absent session and never leaves a partially-applied update behind.
func (s *Store) ApplyUpdates(app, user, session string, updates map[string]json.RawMessage) error {
	if len(updates) == 0 {
		return nil
	}
	k := key{app: app, user: user, session: session}

	s.mu.RLock()
	rec, ok := s.records[k]
	s.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	loose, err := state.Apply(rec.state, updates, s.policy)
	if err != nil {
		return err
	}
	for lk, lv := range loose {
		if rec.attrs == nil {
			rec.attrs = make(map[string]json.RawMessage)
		}
		rec.attrs[lk] = lv
	}
	rec.updatedAt = s.clock()

	keys := make([]string, 0, len(updates))
	for uk := range updates {
		keys = append(keys, uk)
	}
	s.logger.Debug("session updated",
		"user_id", user,
		"session_id", session,
		"keys", keys,
		"policy", s.policy.String())
	return nil
}

// Count returns the number of live sessions.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// snapshot deep-copies the record under its read lock.
func (r *record) snapshot(k key) Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var attrs map[string]json.RawMessage
	if len(r.attrs) > 0 {
		attrs = make(map[string]json.RawMessage, len(r.attrs))
		for ak, av := range r.attrs {
			attrs[ak] = append(json.RawMessage(nil), av...)
		}
	}
	return Snapshot{
		AppName:   k.app,
		UserID:    k.user,
		SessionID: k.session,
		State:     r.state.Clone(),
		Attrs:     attrs,
		CreatedAt: r.createdAt,
		UpdatedAt: r.updatedAt,
	}
}
