package session

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartbill/smartbill/internal/models"
)

func TestStore_LoginLogout(t *testing.T) {
	s := NewStore()

	assert.False(t, s.IsLoggedIn(1))

	s.Login(1, "alice")
	assert.True(t, s.IsLoggedIn(1))

	history, err := s.History(1)
	require.NoError(t, err)
	assert.Empty(t, history)

	s.Logout(1)
	assert.False(t, s.IsLoggedIn(1))

	_, err = s.History(1)
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestStore_LogoutClearsHistory(t *testing.T) {
	s := NewStore()
	s.Login(1, "alice")

	require.NoError(t, s.Record(1, models.Prediction{PredictionID: "p1"}))
	require.NoError(t, s.Record(1, models.Prediction{PredictionID: "p2"}))

	s.Logout(1)

	// Logging back in must not resurrect the old history.
	s.Login(1, "alice")
	history, err := s.History(1)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestStore_LogoutIdempotent(t *testing.T) {
	s := NewStore()

	// Logout without a session must not panic or create state.
	s.Logout(42)
	assert.False(t, s.IsLoggedIn(42))
}

func TestStore_RecordRequiresSession(t *testing.T) {
	s := NewStore()

	err := s.Record(1, models.Prediction{PredictionID: "p1"})
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestStore_HistoryCap(t *testing.T) {
	s := NewStore()
	s.Login(1, "alice")

	for i := 1; i <= HistoryCap+1; i++ {
		require.NoError(t, s.Record(1, models.Prediction{PredictionID: fmt.Sprintf("p%d", i)}))
	}

	history, err := s.History(1)
	require.NoError(t, err)
	require.Len(t, history, HistoryCap)

	// Oldest dropped first, insertion order preserved.
	assert.Equal(t, "p2", history[0].PredictionID)
	assert.Equal(t, fmt.Sprintf("p%d", HistoryCap+1), history[HistoryCap-1].PredictionID)
}

func TestStore_Last(t *testing.T) {
	s := NewStore()
	s.Login(1, "alice")

	last, err := s.Last(1)
	require.NoError(t, err)
	assert.Nil(t, last)

	require.NoError(t, s.Record(1, models.Prediction{PredictionID: "p1"}))
	require.NoError(t, s.Record(1, models.Prediction{PredictionID: "p2"}))

	last, err = s.Last(1)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "p2", last.PredictionID)

	_, err = s.Last(99)
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestStore_ReloginKeepsHistory(t *testing.T) {
	s := NewStore()
	s.Login(1, "alice")
	require.NoError(t, s.Record(1, models.Prediction{PredictionID: "p1"}))

	// Login does not touch prior history.
	s.Login(1, "alice")
	history, err := s.History(1)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}
