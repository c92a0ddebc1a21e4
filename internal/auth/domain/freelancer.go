package domain

import "time"

// Freelancer is a parallel identity root for non-employee users. It owns its
// own entitlement records, addressed by freelancer id instead of tenant id,
// with the identical schema and evaluation rule.
type Freelancer struct {
	ID          string // equals the user's uid
	Email       string
	DisplayName string
	CreatedAt   time.Time
}
