package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
	"time"

	"textgenai/internal/core"
	"textgenai/internal/models"
)

// OTPService keeps the outstanding password-reset codes, one per
// email. Codes expire after the configured validity window and are
// consumed on use; a fresh request overwrites any previous code.
type OTPService struct {
	mu       sync.Mutex
	pending  map[string]*models.PasswordReset
	validity time.Duration
	now      func() time.Time
}

func NewOTPService(validity time.Duration) *OTPService {
	if validity <= 0 {
		validity = 5 * time.Minute
	}
	return &OTPService{
		pending:  make(map[string]*models.PasswordReset),
		validity: validity,
		now:      time.Now,
	}
}

// Issue generates a fresh 6-digit code for the email, replacing any
// outstanding one.
func (s *OTPService) Issue(email string) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[email] = &models.PasswordReset{
		Email:     email,
		Code:      code,
		ExpiresAt: s.now().Add(s.validity),
	}
	return code, nil
}

// Verify checks a submitted code against the outstanding one. Expired
// entries are dropped; a successful match marks the entry verified so
// the reset can complete.
func (s *OTPService) Verify(email, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.pending[email]
	if !ok {
		return core.ErrOTPMismatch
	}
	if s.now().After(entry.ExpiresAt) {
		delete(s.pending, email)
		return core.ErrOTPExpired
	}
	if entry.Code != code {
		return core.ErrOTPMismatch
	}
	entry.Verified = true
	return nil
}

// Consume finishes the flow for a verified entry and removes it, so a
// code can never authorize two resets.
func (s *OTPService) Consume(email, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.pending[email]
	if !ok || entry.Code != code {
		return core.ErrOTPMismatch
	}
	if s.now().After(entry.ExpiresAt) {
		delete(s.pending, email)
		return core.ErrOTPExpired
	}
	if !entry.Verified {
		return core.ErrOTPNotVerified
	}
	delete(s.pending, email)
	return nil
}

// generateCode returns exactly 6 numeric digits from crypto/rand.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
