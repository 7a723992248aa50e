package session

import (
	"errors"
	"sync"

	"github.com/smartbill/smartbill/internal/models"
)

// HistoryCap bounds how many recent predictions a session keeps.
const HistoryCap = 5

// ErrNotLoggedIn is returned when an operation requires an active session.
var ErrNotLoggedIn = errors.New("no active session")

// Session tracks one user's authentication state and recent predictions.
// History is ordered most-recent-last and never exceeds HistoryCap.
type Session struct {
	Username string
	LoggedIn bool
	History  []models.Prediction
}

// Store holds in-process sessions keyed by user ID. State is private to
// the process: nothing here survives a restart.
type Store struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[int64]*Session),
	}
}

// Login opens a session for the user. Re-login keeps any prior history.
func (s *Store) Login(userID int64, username string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		sess = &Session{}
		s.sessions[userID] = sess
	}
	sess.Username = username
	sess.LoggedIn = true
}

// Logout closes the session and clears the username and the entire
// prediction history, regardless of prior state.
func (s *Store) Logout(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, userID)
}

// Record appends a prediction to the session's history, evicting the
// oldest entry once the cap is reached.
func (s *Store) Record(userID int64, p models.Prediction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok || !sess.LoggedIn {
		return ErrNotLoggedIn
	}

	sess.History = append(sess.History, p)
	if len(sess.History) > HistoryCap {
		sess.History = sess.History[len(sess.History)-HistoryCap:]
	}
	return nil
}

// History returns a copy of the session's prediction history,
// most-recent-last. Returns ErrNotLoggedIn when no session is active.
func (s *Store) History(userID int64) ([]models.Prediction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[userID]
	if !ok || !sess.LoggedIn {
		return nil, ErrNotLoggedIn
	}

	out := make([]models.Prediction, len(sess.History))
	copy(out, sess.History)
	return out, nil
}

// Last returns the most recent prediction for the session.
func (s *Store) Last(userID int64) (*models.Prediction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[userID]
	if !ok || !sess.LoggedIn {
		return nil, ErrNotLoggedIn
	}
	if len(sess.History) == 0 {
		return nil, nil
	}

	last := sess.History[len(sess.History)-1]
	return &last, nil
}

// IsLoggedIn reports whether the user has an active session.
func (s *Store) IsLoggedIn(userID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[userID]
	return ok && sess.LoggedIn
}
