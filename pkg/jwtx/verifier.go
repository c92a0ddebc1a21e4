package jwtx

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates a JWT and gives you back the claims if it's legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

var (
	ErrUnknownKID = errors.New("jwtx: unknown kid")

	ErrIssuer      = errors.New("jwtx: issuer mismatch")
	ErrAudience    = errors.New("jwtx: audience mismatch")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
)

// KeySetVerifier validates session tokens against a KeySet. It accepts the
// algorithms the identity provider issues: EdDSA (Ed25519) and ES256.
type KeySetVerifier struct {
	keys   *KeySet
	issuer string
	aud    []string
}

// NewVerifier creates a verifier over a KeySet of provider public keys.
func NewVerifier(keys *KeySet, issuer string, aud []string) *KeySetVerifier {
	return &KeySetVerifier{keys: keys, issuer: issuer, aud: aud}
}

// Verify validates the JWT string and returns its parsed Claims.
func (v *KeySetVerifier) Verify(tokenStr string) (Claims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{
		jwt.SigningMethodEdDSA.Alg(),
		jwt.SigningMethodES256.Alg(),
	}))

	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		// Need the kid to know which key to use
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("jwtx: missing kid")
		}

		// Try to find this key in our set
		pub, err := v.keys.Get(kid)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownKID, kid)
		}

		// The key type has to line up with the token's declared algorithm.
		switch t.Method.Alg() {
		case jwt.SigningMethodEdDSA.Alg():
			if _, ok := pub.(ed25519.PublicKey); !ok {
				return nil, errors.New("jwtx: kid does not reference an Ed25519 key")
			}
		case jwt.SigningMethodES256.Alg():
			if _, ok := pub.(*ecdsa.PublicKey); !ok {
				return nil, errors.New("jwtx: kid does not reference a P-256 key")
			}
		}
		return pub, nil
	})
	if err != nil {
		return Claims{}, fmt.Errorf("jwtx: parse or verify: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Claims{}, errors.New("jwtx: invalid token claims")
	}

	// Now check all the claim requirements
	if err := claims.ValidateIssuer(v.issuer); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateAudience(v.aud); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateExpiry(); err != nil {
		return Claims{}, err
	}

	return *claims, nil
}
