package handlers

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"textgenai/internal/core"
	"textgenai/internal/models"
)

// Shared fakes for handler tests, modeled as minimal in-memory
// implementations of the core interfaces.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeDbClient struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newFakeDbClient() *fakeDbClient {
	return &fakeDbClient{users: make(map[string]*models.User)}
}

func (f *fakeDbClient) CreateUser(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.users[user.Email]; exists {
		return core.ErrDuplicateEmail
	}
	f.users[user.Email] = user
	return nil
}

func (f *fakeDbClient) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok {
		return nil, core.ErrNotFound
	}
	return u, nil
}

func (f *fakeDbClient) UpdateUserPassword(ctx context.Context, email, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok {
		return core.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (f *fakeDbClient) Close() error { return nil }

type fakeGenerator struct {
	response string
	chunks   []string
	err      error
}

func (f *fakeGenerator) Generate(ctx context.Context, history []models.ChatTurn, prompt string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeGenerator) GenerateStream(ctx context.Context, history []models.ChatTurn, prompt string, onChunk func(string) error) error {
	for _, c := range f.chunks {
		if err := onChunk(c); err != nil {
			return err
		}
	}
	return f.err
}

type fakeRunner struct {
	installed []models.ModelInfo
	response  string
	runErr    error
	listErr   error
}

func (f *fakeRunner) ListModels(ctx context.Context) ([]models.ModelInfo, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.installed, nil
}

func (f *fakeRunner) Run(ctx context.Context, model, prompt string) (string, error) {
	for _, m := range f.installed {
		if m.Name == model {
			if f.runErr != nil {
				return "", f.runErr
			}
			return f.response, nil
		}
	}
	return "", core.ErrInvalidModel
}

type sentMail struct {
	to, name, code        string
	from, sender, message string
}

type fakeMailer struct {
	mu   sync.Mutex
	otps []sentMail
	msgs []sentMail
	err  error
}

func (f *fakeMailer) SendOTP(to, name, code string) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.otps = append(f.otps, sentMail{to: to, name: name, code: code})
	return nil
}

func (f *fakeMailer) SendContact(name, replyTo, message string) error {
	if f.err != nil {
		return fmt.Errorf("smtp: %w", f.err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, sentMail{sender: name, from: replyTo, message: message})
	return nil
}
