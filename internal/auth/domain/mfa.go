package domain

import "time"

// MFAEnrollment is handed back once when a user begins MFA setup. The secret
// and backup codes are shown to the caller exactly once; only ciphertext is
// persisted.
type MFAEnrollment struct {
	Secret      string   // base32 TOTP secret
	OTPAuthURL  string   // otpauth:// URL for authenticator apps
	QRCodePNG   []byte   // rendered QR image of the URL
	BackupCodes []string // plaintext one-time codes
}

// BackupCode is one unused one-time recovery code, stored encrypted.
type BackupCode struct {
	ID         string // ULID; preserves issuance order
	UserID     string
	Ciphertext string // vault envelope
	CreatedAt  time.Time
}
