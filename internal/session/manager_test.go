package session

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plannerai/planner/internal/log"
	"github.com/plannerai/planner/internal/state"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	store := NewStore(state.PolicyReplace, log.NewNop())
	return NewManager(store, "", log.NewNop())
}

func TestManager_DefaultAppName(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	assert.Equal(t, DefaultAppName, m.AppName())

	custom := NewManager(NewStore(state.PolicyReplace, log.NewNop()), "other_app", log.NewNop())
	assert.Equal(t, "other_app", custom.AppName())
}

func TestManager_GetOrCreate(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)

	snap, err := m.GetOrCreate("sess-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, DefaultAppName, snap.AppName)
	assert.Equal(t, "user-1", snap.State.UserID)

	// Second call returns the same record, state intact.
	require.NoError(t, m.ApplyUpdates("sess-1", "user-1", map[string]json.RawMessage{
		"origin": json.RawMessage(`"Pune"`),
	}))

	again, err := m.GetOrCreate("sess-1", "user-1")
	require.NoError(t, err)
	require.NotNil(t, again.State.Origin)
	assert.Equal(t, "Pune", again.State.Origin.City)
}

func TestManager_GetMissing(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	_, err := m.Get("missing", "user-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManager_ApplyUpdatesMissing(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	err := m.ApplyUpdates("missing", "user-1", map[string]json.RawMessage{
		"origin": json.RawMessage(`"Pune"`),
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManager_ConcurrentGetOrCreate(t *testing.T) {
	t.Parallel()

	store := NewStore(state.PolicyReplace, log.NewNop())
	m := NewManager(store, "", log.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snap, err := m.GetOrCreate("sess-1", "user-1")
			assert.NoError(t, err)
			assert.Equal(t, "user-1", snap.State.UserID)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, store.Count())
}
