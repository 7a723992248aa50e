package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartbill/smartbill/internal/models"
	"github.com/smartbill/smartbill/internal/session"
)

// fakeUserStore is an in-memory stand-in for the user repositories.
type fakeUserStore struct {
	users   map[string]models.UserDB
	nextID  int64
	readErr error
	saveErr error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]models.UserDB), nextID: 1}
}

func (f *fakeUserStore) GetByUsername(ctx context.Context, username string) (*models.UserDB, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	if u, ok := f.users[username]; ok {
		return &u, nil
	}
	return nil, nil
}

func (f *fakeUserStore) GetByCredentials(ctx context.Context, username, password string) (*models.UserDB, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	if u, ok := f.users[username]; ok && u.Password == password {
		return &u, nil
	}
	return nil, nil
}

func (f *fakeUserStore) Save(ctx context.Context, username, password string) (int64, error) {
	if f.saveErr != nil {
		return 0, f.saveErr
	}
	id := f.nextID
	f.nextID++
	f.users[username] = models.UserDB{ID: id, Username: username, Password: password}
	return id, nil
}

type fakeTokenGenerator struct {
	err error
}

func (f *fakeTokenGenerator) Generate(ctx context.Context, userID int64, username string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("token-%d-%s", userID, username), nil
}

func newAuthService(store *fakeUserStore) (*AuthService, *session.Store) {
	sessions := session.NewStore()
	return NewAuthService(store, store, &fakeTokenGenerator{}, sessions), sessions
}

func TestAuthService_RegisterThenLogin(t *testing.T) {
	store := newFakeUserStore()
	svc, sessions := newAuthService(store)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alice", "pw1"))

	token, err := svc.Login(ctx, "alice", "pw1")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, sessions.IsLoggedIn(1))
}

func TestAuthService_Register_EmptyInput(t *testing.T) {
	store := newFakeUserStore()
	svc, _ := newAuthService(store)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"empty username", "", "x"},
		{"whitespace username", "  ", "x"},
		{"empty password", "alice", ""},
		{"whitespace password", "alice", "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Register(ctx, tt.username, tt.password)
			assert.ErrorIs(t, err, ErrEmptyCredentials)
		})
	}

	assert.Empty(t, store.users, "failed signups must not mutate the store")
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	store := newFakeUserStore()
	svc, _ := newAuthService(store)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alice", "pw1"))

	err := svc.Register(ctx, "alice", "otherpw")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	// Original password untouched.
	assert.Equal(t, "pw1", store.users["alice"].Password)
	assert.Len(t, store.users, 1)
}

func TestAuthService_Register_TrimsUsername(t *testing.T) {
	store := newFakeUserStore()
	svc, _ := newAuthService(store)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "  alice  ", "pw1"))

	_, ok := store.users["alice"]
	assert.True(t, ok, "username should be stored trimmed")

	// A signup colliding after trimming is a duplicate.
	err := svc.Register(ctx, "alice ", "pw2")
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestAuthService_Login_TrimsUsernameOnly(t *testing.T) {
	store := newFakeUserStore()
	svc, _ := newAuthService(store)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alice", "pw1"))

	// Username is trimmed before lookup.
	token, err := svc.Login(ctx, " alice ", "pw1")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	// The password is not trimmed and must match exactly.
	_, err = svc.Login(ctx, "alice", " pw1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Password comparison is case-sensitive.
	_, err = svc.Login(ctx, "alice", "PW1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Login_UnknownUserIndistinguishable(t *testing.T) {
	store := newFakeUserStore()
	svc, _ := newAuthService(store)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alice", "pw1"))

	_, errUnknown := svc.Login(ctx, "bob", "pw1")
	_, errWrongPw := svc.Login(ctx, "alice", "nope")

	// Absent user and wrong password surface as the same error.
	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.ErrorIs(t, errWrongPw, ErrInvalidCredentials)
}

func TestAuthService_Logout(t *testing.T) {
	store := newFakeUserStore()
	svc, sessions := newAuthService(store)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alice", "pw1"))
	_, err := svc.Login(ctx, "alice", "pw1")
	require.NoError(t, err)
	require.True(t, sessions.IsLoggedIn(1))

	svc.Logout(ctx, 1)
	assert.False(t, sessions.IsLoggedIn(1))

	// Logout is safe regardless of prior state.
	svc.Logout(ctx, 1)
	assert.False(t, sessions.IsLoggedIn(1))
}

func TestAuthService_StoreErrorsPropagate(t *testing.T) {
	store := newFakeUserStore()
	svc, _ := newAuthService(store)
	ctx := context.Background()

	dbErr := errors.New("database gone")
	store.readErr = dbErr

	err := svc.Register(ctx, "alice", "pw1")
	assert.ErrorIs(t, err, dbErr)

	_, err = svc.Login(ctx, "alice", "pw1")
	assert.ErrorIs(t, err, dbErr)
}
