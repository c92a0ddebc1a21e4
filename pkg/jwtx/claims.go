package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Actor values for the "act" claim. The identity provider stamps each session
// token with the hat the caller wears; entitlement routing between tenant and
// freelancer namespaces keys off it.
const (
	ActorMember     = "member"
	ActorFreelancer = "freelancer"
)

// DefaultSessionTTL is the lifetime for locally minted dev tokens.
// Production tokens arrive from the identity provider with their own expiry.
const DefaultSessionTTL = time.Hour

// Claims are the session-token claims this service consumes. Tokens are
// minted by the external identity provider; we only verify and read them.
type Claims struct {
	jwt.RegisteredClaims

	// Email of the authenticated user.
	Email string `json:"email,omitempty"`

	// Actor is "member" or "freelancer". Absent means member.
	Actor string `json:"act,omitempty"`

	// Name is a display name, informational only.
	Name string `json:"name,omitempty"`
}

// NewSessionClaims builds minimally-correct session claims. Used by dev
// tooling and tests; production tokens come from the identity provider.
func NewSessionClaims(
	subject, email, actor string,
	ttl time.Duration,
	issuer string,
	audience []string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings(audience),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Email: email,
		Actor: actor,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim. There
// might be a better way of doing this, but I'm being lazy and using random.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// IsFreelancer reports whether the token was minted for the freelancer hat.
func (c *Claims) IsFreelancer() bool {
	return c.Actor == ActorFreelancer
}

// IssuedAtTime returns the iat claim, or nil when the provider omitted it.
// The MFA session check treats an absent iat conservatively.
func (c *Claims) IssuedAtTime() *time.Time {
	if c.IssuedAt == nil {
		return nil
	}
	t := c.IssuedAt.Time
	return &t
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}

	if c.Issuer != expected {
		return ErrIssuer
	}

	return nil
}

// ValidateAudience checks if at least one expected audience is present.
func (c *Claims) ValidateAudience(expected []string) error {
	if len(expected) == 0 {
		return nil // nothing to enforce
	}

	for _, want := range expected {
		if slices.Contains(c.Audience, want) {
			return nil
		}
	}

	return ErrAudience
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't before nbf.
func (c *Claims) ValidateExpiry() error {
	now := time.Now().UTC()

	// Check expired (exp)
	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}

	// Check if a valid token isn't used before it is valid (nbf)
	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}

	return nil
}
