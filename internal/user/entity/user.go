package entity

import "time"

// User represents an account row in the `users` table.
// PasswordHash is never serialized; handlers can return a User as-is.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// CreateInput carries registration fields. Password is plaintext and must
// only ever reach the hasher.
type CreateInput struct {
	Username string
	Email    string
	Password string
}
