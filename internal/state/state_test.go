package state

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	st := New("user-1")

	assert.Equal(t, "user-1", st.UserID)
	assert.Nil(t, st.UserProfile)
	assert.Nil(t, st.GroupDetails)
	assert.Nil(t, st.Budget)
	assert.Nil(t, st.Origin)
	assert.Nil(t, st.RoughDates)
	assert.Nil(t, st.SpecificDates)
	assert.Nil(t, st.Itinerary)

	// Lists are present-but-empty, never missing.
	require.NotNil(t, st.Destinations)
	require.NotNil(t, st.POIs)
	assert.Empty(t, st.Destinations)
	assert.Empty(t, st.POIs)
}

func TestNew_SerializesListsAsEmptyArrays(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(New("user-1"))
	require.NoError(t, err)

	// Frontends read these keys on a fresh session; they must be [] not null.
	assert.Contains(t, string(raw), `"destinations":[]`)
	assert.Contains(t, string(raw), `"pois":[]`)
}

func TestClone_DeepCopy(t *testing.T) {
	t.Parallel()

	st := New("user-1")
	st.UserProfile = &UserProfile{Name: "Asha", Allergies: []string{"peanuts"}}
	st.Destinations = []ClusterJourney{{
		ClusterType:      ClusterRoute,
		StartDestination: "Delhi",
		FinalDestination: "Leh",
		Places:           []Place{{Name: "Manali"}},
	}}

	cp := st.Clone()
	require.NotSame(t, st, cp)

	// Mutating the copy must not bleed into the original.
	cp.UserProfile.Name = "MUTATED"
	cp.UserProfile.Allergies[0] = "MUTATED"
	cp.Destinations[0].Places[0].Name = "MUTATED"

	assert.Equal(t, "Asha", st.UserProfile.Name)
	assert.Equal(t, "peanuts", st.UserProfile.Allergies[0])
	assert.Equal(t, "Manali", st.Destinations[0].Places[0].Name)
}

func TestClone_Nil(t *testing.T) {
	t.Parallel()

	var st *State
	assert.Nil(t, st.Clone())
}

func TestClone_RestoresEmptyLists(t *testing.T) {
	t.Parallel()

	st := New("user-1")
	st.Destinations = nil
	st.POIs = nil

	cp := st.Clone()
	assert.NotNil(t, cp.Destinations)
	assert.NotNil(t, cp.POIs)
}
