package core

import "errors"

var (
	// ErrDuplicateEmail is returned when a signup hits the unique
	// constraint on users.email.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("not found")

	// ErrInvalidCredentials covers both unknown-email and wrong-password
	// so login failures are indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidModel is returned when a requested model is not in the
	// runner's current enumeration.
	ErrInvalidModel = errors.New("invalid model selected")

	// ErrOTPMismatch is returned when a submitted code does not match
	// the outstanding one for that email.
	ErrOTPMismatch = errors.New("otp mismatch")

	// ErrOTPExpired is returned when the outstanding code is past its
	// validity window.
	ErrOTPExpired = errors.New("otp expired")

	// ErrOTPNotVerified is returned when a reset completion arrives
	// before the code was verified.
	ErrOTPNotVerified = errors.New("otp not verified")
)
