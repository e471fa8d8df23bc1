package session

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plannerai/planner/internal/log"
	"github.com/plannerai/planner/internal/state"
)

const testApp = "planner_ai"

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(state.PolicyReplace, log.NewNop())
}

func TestStore_CreateIsIdempotent(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	first := s.Create(testApp, "user-1", "sess-1")
	require.NotNil(t, first.State)
	assert.Equal(t, "user-1", first.State.UserID)
	assert.Equal(t, "sess-1", first.SessionID)
	assert.False(t, first.CreatedAt.IsZero())

	// Mutate through the store, then create again: the record survives.
	err := s.ApplyUpdates(testApp, "user-1", "sess-1", map[string]json.RawMessage{
		"budget": json.RawMessage(`{"overall_estimate":50000}`),
	})
	require.NoError(t, err)

	second := s.Create(testApp, "user-1", "sess-1")
	require.NotNil(t, second.State.Budget)
	assert.Equal(t, 50000, second.State.Budget.OverallEstimate)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.Equal(t, 1, s.Count())
}

func TestStore_GetNeverCreates(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	_, err := s.Get(testApp, "user-1", "missing")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, s.Count())
}

func TestStore_KeysAreScoped(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	s.Create(testApp, "user-1", "sess-1")

	// Same session ID under a different user or app is a different record.
	_, err := s.Get(testApp, "user-2", "sess-1")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get("other_app", "user-1", "sess-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ApplyUpdatesMissingSession(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	err := s.ApplyUpdates(testApp, "user-1", "missing", map[string]json.RawMessage{
		"budget": json.RawMessage(`{}`),
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ApplyUpdatesEmptyIsNoop(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	// No session exists, but an empty update has nothing to apply.
	require.NoError(t, s.ApplyUpdates(testApp, "user-1", "missing", nil))
}

func TestStore_LooseKeysRetainedAsAttrs(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	s.Create(testApp, "user-1", "sess-1")

	err := s.ApplyUpdates(testApp, "user-1", "sess-1", map[string]json.RawMessage{
		"favorite_color": json.RawMessage(`"blue"`),
	})
	require.NoError(t, err)

	snap, err := s.Get(testApp, "user-1", "sess-1")
	require.NoError(t, err)
	require.Contains(t, snap.Attrs, "favorite_color")
	assert.JSONEq(t, `"blue"`, string(snap.Attrs["favorite_color"]))
}

func TestStore_SnapshotIsolation(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	s.Create(testApp, "user-1", "sess-1")
	err := s.ApplyUpdates(testApp, "user-1", "sess-1", map[string]json.RawMessage{
		"user_profile": json.RawMessage(`{"name":"Asha"}`),
	})
	require.NoError(t, err)

	snap, err := s.Get(testApp, "user-1", "sess-1")
	require.NoError(t, err)

	// A caller scribbling on its snapshot must not affect the store.
	snap.State.UserProfile.Name = "MUTATED"

	again, err := s.Get(testApp, "user-1", "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "Asha", again.State.UserProfile.Name)
}

func TestStore_UpdatedAtAdvances(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	before := s.Create(testApp, "user-1", "sess-1")

	err := s.ApplyUpdates(testApp, "user-1", "sess-1", map[string]json.RawMessage{
		"origin": json.RawMessage(`"Pune"`),
	})
	require.NoError(t, err)

	after, err := s.Get(testApp, "user-1", "sess-1")
	require.NoError(t, err)
	assert.False(t, after.UpdatedAt.Before(before.UpdatedAt))
	assert.Equal(t, before.CreatedAt, after.CreatedAt)
}

func TestStore_ConcurrentCreateConvergesToOneRecord(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	const workers = 32
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snap := s.Create(testApp, "user-1", "sess-1")
			assert.Equal(t, "user-1", snap.State.UserID)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, s.Count())
}

func TestStore_ConcurrentDisjointUpdates(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	s.Create(testApp, "user-1", "sess-1")

	// Writers race on different top-level keys of the same session. Every
	// write must land; the per-record lock serializes them.
	updates := []map[string]json.RawMessage{
		{"user_profile": json.RawMessage(`{"name":"Asha"}`)},
		{"budget": json.RawMessage(`{"overall_estimate":50000}`)},
		{"origin": json.RawMessage(`"Pune"`)},
		{"specific_dates": json.RawMessage(`{"start_date":"2026-10-01","end_date":"2026-10-10"}`)},
	}

	var wg sync.WaitGroup
	for _, u := range updates {
		wg.Add(1)
		go func(u map[string]json.RawMessage) {
			defer wg.Done()
			assert.NoError(t, s.ApplyUpdates(testApp, "user-1", "sess-1", u))
		}(u)
	}
	wg.Wait()

	snap, err := s.Get(testApp, "user-1", "sess-1")
	require.NoError(t, err)
	require.NotNil(t, snap.State.UserProfile)
	require.NotNil(t, snap.State.Budget)
	require.NotNil(t, snap.State.Origin)
	require.NotNil(t, snap.State.SpecificDates)
	assert.Equal(t, "Asha", snap.State.UserProfile.Name)
	assert.Equal(t, 50000, snap.State.Budget.OverallEstimate)
}

func TestStore_ConcurrentReadersDuringWrites(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	s.Create(testApp, "user-1", "sess-1")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			u := map[string]json.RawMessage{
				"origin": json.RawMessage(fmt.Sprintf(`"city-%d"`, i)),
			}
			assert.NoError(t, s.ApplyUpdates(testApp, "user-1", "sess-1", u))
		}(i)
		go func() {
			defer wg.Done()
			snap, err := s.Get(testApp, "user-1", "sess-1")
			assert.NoError(t, err)
			assert.Equal(t, "user-1", snap.State.UserID)
		}()
	}
	wg.Wait()
}

func TestStore_FailedUpdateLeavesRecordUntouched(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	s.Create(testApp, "user-1", "sess-1")
	require.NoError(t, s.ApplyUpdates(testApp, "user-1", "sess-1", map[string]json.RawMessage{
		"budget": json.RawMessage(`{"overall_estimate":50000}`),
	}))

	err := s.ApplyUpdates(testApp, "user-1", "sess-1", map[string]json.RawMessage{
		"budget":         json.RawMessage(`{"overall_estimate":1}`),
		"specific_dates": json.RawMessage(`"garbage"`),
	})
	require.Error(t, err)

	snap, err := s.Get(testApp, "user-1", "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 50000, snap.State.Budget.OverallEstimate)
}

func TestStore_MergePolicyApplied(t *testing.T) {
	t.Parallel()

	s := NewStore(state.PolicyMerge, log.NewNop())
	assert.Equal(t, state.PolicyMerge, s.Policy())

	s.Create(testApp, "user-1", "sess-1")
	require.NoError(t, s.ApplyUpdates(testApp, "user-1", "sess-1", map[string]json.RawMessage{
		"user_profile": json.RawMessage(`{"name":"Asha","age":30}`),
	}))
	require.NoError(t, s.ApplyUpdates(testApp, "user-1", "sess-1", map[string]json.RawMessage{
		"user_profile": json.RawMessage(`{"gender":"female"}`),
	}))

	snap, err := s.Get(testApp, "user-1", "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "Asha", snap.State.UserProfile.Name)
	assert.Equal(t, 30, snap.State.UserProfile.Age)
	assert.Equal(t, state.GenderFemale, snap.State.UserProfile.Gender)
}
