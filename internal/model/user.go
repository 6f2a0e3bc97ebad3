package model

// User represents an account record as stored in the `users` table.
// Users are created on registration and never modified afterwards.
type User struct {
	ID           string // users.id (uuid)
	Username     string // users.username, unique and case-sensitive
	PasswordHash string // users.password_hash (bcrypt)
	CreatedAt    int64  // users.created_at, unix milliseconds
}

// Identity is the verified caller extracted from a session token.
type Identity struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}
