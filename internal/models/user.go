package models

// UserDB represents a user record in the database
type UserDB struct {
	ID       int64  `json:"id" db:"id"`             // Primary key
	Username string `json:"username" db:"username"` // Unique username
	Password string `json:"password" db:"password"` // Password, stored verbatim (legacy contract)
}
