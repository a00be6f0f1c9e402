package models

import (
	"time"
)

// User represents a registered account.
type User struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// PasswordReset tracks one outstanding reset code for an email address.
// A fresh request overwrites the previous entry for the same address.
type PasswordReset struct {
	Email     string
	Code      string
	ExpiresAt time.Time
	Verified  bool
}

// ChatTurn is a single message in a conversation, user or assistant side.
type ChatTurn struct {
	Role string `json:"role"` // "user" or "model"
	Text string `json:"text"`
}

// ModelInfo describes one locally installed model, parsed from the
// runner's listing output. Purely presentational.
type ModelInfo struct {
	Name          string `json:"name"`
	Family        string `json:"family"`
	ParameterSize string `json:"parameter_size"`
	Quantization  string `json:"quantization"`
}
