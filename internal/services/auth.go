package services

import (
	"context"
	"errors"
	"strings"

	"github.com/smartbill/smartbill/internal/logger"
	"github.com/smartbill/smartbill/internal/models"
)

// Error variables
var (
	ErrEmptyCredentials   = errors.New("username and password cannot be empty")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// UserReader defines read-only operations for users.
type UserReader interface {
	GetByUsername(ctx context.Context, username string) (*models.UserDB, error)
	GetByCredentials(ctx context.Context, username, password string) (*models.UserDB, error)
}

// UserWriter defines write operations for users.
type UserWriter interface {
	Save(ctx context.Context, username, password string) (int64, error)
}

// TokenGenerator defines an interface for generating session tokens.
type TokenGenerator interface {
	Generate(ctx context.Context, userID int64, username string) (string, error)
}

// SessionOpener tracks which users currently have an open session.
type SessionOpener interface {
	Login(userID int64, username string)
	Logout(userID int64)
}

// AuthService handles signup, login and logout.
type AuthService struct {
	reader   UserReader
	writer   UserWriter
	jwt      TokenGenerator
	sessions SessionOpener
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(reader UserReader, writer UserWriter, jwt TokenGenerator, sessions SessionOpener) *AuthService {
	return &AuthService{
		reader:   reader,
		writer:   writer,
		jwt:      jwt,
		sessions: sessions,
	}
}

// Register creates a new user. The username is trimmed of surrounding
// whitespace before the uniqueness check; the password is stored verbatim.
func (svc *AuthService) Register(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(password) == "" {
		return ErrEmptyCredentials
	}

	user, err := svc.reader.GetByUsername(ctx, username)
	if err != nil {
		logger.Log.Errorw("failed to check user exists", "err", err)
		return err
	}
	if user != nil {
		logger.Log.Infow("username already taken", "username", username)
		return ErrUsernameTaken
	}

	if _, err := svc.writer.Save(ctx, username, password); err != nil {
		logger.Log.Errorw("failed to save user", "err", err)
		return err
	}

	return nil
}

// Login authenticates a user, opens a session and returns a token.
// The username is trimmed; the password is compared exactly as given.
// An unknown username and a wrong password are deliberately
// indistinguishable.
func (svc *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)

	user, err := svc.reader.GetByCredentials(ctx, username, password)
	if err != nil {
		logger.Log.Errorw("failed to look up credentials", "err", err)
		return "", err
	}
	if user == nil {
		logger.Log.Infow("invalid credentials", "username", username)
		return "", ErrInvalidCredentials
	}

	token, err := svc.jwt.Generate(ctx, user.ID, user.Username)
	if err != nil {
		logger.Log.Errorw("failed to generate token", "err", err)
		return "", err
	}

	svc.sessions.Login(user.ID, user.Username)

	return token, nil
}

// Logout closes the user's session, clearing its prediction history.
func (svc *AuthService) Logout(ctx context.Context, userID int64) {
	svc.sessions.Logout(userID)
}
