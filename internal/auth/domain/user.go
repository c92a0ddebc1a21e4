package domain

import "time"

// MFASetupState tracks where a user is in MFA enrollment.
type MFASetupState string

const (
	MFASetupNone      MFASetupState = "none"      // no secret stored
	MFASetupPending   MFASetupState = "pending"   // secret stored, not yet confirmed
	MFASetupConfirmed MFASetupState = "confirmed" // enrollment confirmed with a valid code
)

type User struct {
	ID                 string  // externally issued uid, subject of the session token
	Email              string
	DefaultTenantID    *string // cached resolver pointer (nullable; a cache, not a grant)
	MFASetupState      MFASetupState
	MFASessionVerified bool       // current session has passed a TOTP/backup-code check
	MFASecret          *string    // vault envelope (nullable)
	MFAVerifiedAt      *time.Time // last successful verification (nullable)
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// MFAEnabled reports whether MFA enrollment has been confirmed.
func (u User) MFAEnabled() bool {
	return u.MFASetupState == MFASetupConfirmed
}
