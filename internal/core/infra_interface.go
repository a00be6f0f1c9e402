package core

import (
	"context"

	"textgenai/internal/models"
)

// DbClient defines all persistence operations the services need.
// It abstracts Postgres so higher layers never depend on a specific DB.
type DbClient interface {
	CreateUser(ctx context.Context, user *models.User) (err error)
	GetUserByEmail(ctx context.Context, email string) (user *models.User, err error)
	UpdateUserPassword(ctx context.Context, email, passwordHash string) error

	Close() error
}

// TextGenerator is a chat backend: it turns a prompt plus prior turns
// into generated text. Implemented by the remote Gemini client.
type TextGenerator interface {
	Generate(ctx context.Context, history []models.ChatTurn, prompt string) (string, error)
	// GenerateStream sends incremental text chunks to onChunk as they
	// arrive. A ctx cancellation stops the stream cleanly; text already
	// delivered stays delivered.
	GenerateStream(ctx context.Context, history []models.ChatTurn, prompt string, onChunk func(chunk string) error) error
}

// ModelRunner is the local chat backend: it enumerates installed models
// and runs one of them against a prompt.
type ModelRunner interface {
	ListModels(ctx context.Context) ([]models.ModelInfo, error)
	Run(ctx context.Context, model, prompt string) (string, error)
}

// Mailer sends transactional email synchronously; the caller blocks
// until the relay accepts or rejects.
type Mailer interface {
	SendOTP(to, name, code string) error
	SendContact(name, replyTo, message string) error
}
