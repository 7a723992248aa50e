package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/smartbill/smartbill/internal/logger"
	"github.com/smartbill/smartbill/internal/models"
)

// userSchema creates the credentials table. Idempotent, run on every start.
const userSchema = `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT UNIQUE NOT NULL,
		password TEXT NOT NULL
	)
`

// UserWriteRepository handles user write operations
type UserWriteRepository struct {
	db *sqlx.DB
}

func NewUserWriteRepository(db *sqlx.DB) *UserWriteRepository {
	return &UserWriteRepository{db: db}
}

// EnsureSchema creates the users table if it does not exist yet.
func (r *UserWriteRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, userSchema)

	logger.Log.Infow("ensure schema",
		"query", strings.Join(strings.Fields(userSchema), " "),
		"error", err,
	)

	return err
}

// Save inserts a new user and returns its generated ID.
func (r *UserWriteRepository) Save(ctx context.Context, username, password string) (int64, error) {
	const query = `
		INSERT INTO users (username, password)
		VALUES (?, ?)
	`

	res, err := r.db.ExecContext(ctx, query, username, password)
	var id int64
	if res != nil {
		id, _ = res.LastInsertId()
	}

	logger.Log.Infow("save user",
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{username},
		"result", id,
		"error", err,
	)

	return id, err
}

// UserReadRepository handles user read operations
type UserReadRepository struct {
	db *sqlx.DB
}

func NewUserReadRepository(db *sqlx.DB) *UserReadRepository {
	return &UserReadRepository{db: db}
}

// GetByUsername returns the user with the given username, or nil when the
// username is not taken.
func (r *UserReadRepository) GetByUsername(ctx context.Context, username string) (*models.UserDB, error) {
	const query = `
		SELECT id, username, password
		FROM users
		WHERE username = ?
		LIMIT 1
	`

	var user models.UserDB
	err := r.db.GetContext(ctx, &user, query, username)

	logger.Log.Infow("get user by username",
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{username},
		"error", err,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// GetByCredentials returns the user matching the exact (username, password)
// pair, or nil when no such pair exists. An absent user and a wrong
// password are indistinguishable here.
func (r *UserReadRepository) GetByCredentials(ctx context.Context, username, password string) (*models.UserDB, error) {
	const query = `
		SELECT id, username, password
		FROM users
		WHERE username = ? AND password = ?
		LIMIT 1
	`

	var user models.UserDB
	err := r.db.GetContext(ctx, &user, query, username, password)

	logger.Log.Infow("get user by credentials",
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{username},
		"error", err,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}
