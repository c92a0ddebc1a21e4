package service

import "errors"

var (
	// ErrNoMembership is returned when a caller holds no membership in any
	// tenant, or the route needs tenant context that cannot be resolved.
	ErrNoMembership = errors.New("no_membership")

	// ErrSecretCorrupted is returned when a stored MFA secret is malformed
	// or fails authentication. For normal users this blocks login outright;
	// a silent fallback would let a password alone defeat MFA.
	ErrSecretCorrupted = errors.New("mfa_secret_corrupted")

	// ErrInvalidCode is returned when a submitted TOTP or backup code does
	// not verify.
	ErrInvalidCode = errors.New("invalid_code")

	ErrMFANotEnrolled    = errors.New("mfa_not_enrolled")
	ErrMFAAlreadyEnabled = errors.New("mfa_already_enabled")
)
