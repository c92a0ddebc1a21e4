package jwtx

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"math/big"
)

// JWK represents a public key in JSON Web Key format (RFC 7517).
// We carry the OKP (Ed25519) and EC (P-256) shapes our identity provider
// publishes.
type JWK struct {
	Kty string `json:"kty"`           // key type: "OKP", "EC"
	Use string `json:"use,omitempty"` // what we use it for: "sig"
	Alg string `json:"alg,omitempty"` // algorithm: "EdDSA", "ES256"
	Kid string `json:"kid,omitempty"` // key ID

	Crv string `json:"crv,omitempty"` // curve: "Ed25519", "P-256"
	X   string `json:"x,omitempty"`   // base64url encoded public key or x-coordinate
	Y   string `json:"y,omitempty"`   // base64url encoded y-coordinate (ECDSA only)
}

// NewEd25519JWK builds a JWK for an Ed25519 public key.
// Ed25519 keys use the "OKP" (Octet Key Pair) key type.
func NewEd25519JWK(kid, use, alg string, pub ed25519.PublicKey) JWK {
	return JWK{
		Kty: "OKP",
		Use: use,
		Alg: alg,
		Kid: kid,
		Crv: "Ed25519",
		X:   base64.RawURLEncoding.EncodeToString(pub),
	}
}

// NewES256JWK builds a JWK for an ECDSA P-256 public key.
// ES256 keys use the "EC" (Elliptic Curve) key type with the P-256 curve.
func NewES256JWK(kid, use, alg string, pub *ecdsa.PublicKey) JWK {
	// P-256 curve points are 32 bytes each (256 bits)
	// Pad to 32 bytes to ensure consistent encoding
	xBytes := pub.X.Bytes()
	yBytes := pub.Y.Bytes()

	x := make([]byte, 32)
	y := make([]byte, 32)
	copy(x[32-len(xBytes):], xBytes)
	copy(y[32-len(yBytes):], yBytes)

	return JWK{
		Kty: "EC",
		Use: use,
		Alg: alg,
		Kid: kid,
		Crv: "P-256",
		X:   base64.RawURLEncoding.EncodeToString(x),
		Y:   base64.RawURLEncoding.EncodeToString(y),
	}
}

// PEM converts the JWK to PEM format, handy for wiring a freshly generated
// dev key into AUTH_JWT_PUBLIC_KEY_FILE or pasting into jwt.io.
func (j JWK) PEM() (string, error) {
	var publicKey any

	switch j.Kty {
	case "OKP":
		if j.Crv != "Ed25519" {
			return "", errors.New("jwtx: unsupported OKP curve " + j.Crv)
		}
		xb, err := base64.RawURLEncoding.DecodeString(j.X)
		if err != nil {
			return "", err
		}
		if len(xb) != ed25519.PublicKeySize {
			return "", errors.New("jwtx: invalid Ed25519 public key size")
		}
		publicKey = ed25519.PublicKey(xb)

	case "EC":
		if j.Crv != "P-256" {
			return "", errors.New("jwtx: unsupported EC curve " + j.Crv)
		}
		xb, err := base64.RawURLEncoding.DecodeString(j.X)
		if err != nil {
			return "", err
		}
		yb, err := base64.RawURLEncoding.DecodeString(j.Y)
		if err != nil {
			return "", err
		}
		x := new(big.Int).SetBytes(xb)
		y := new(big.Int).SetBytes(yb)
		publicKey = &ecdsa.PublicKey{
			Curve: elliptic.P256(),
			X:     x,
			Y:     y,
		}

	default:
		return "", errors.New("jwtx: unsupported kty " + j.Kty)
	}

	derBytes, err := x509.MarshalPKIXPublicKey(publicKey)
	if err != nil {
		return "", err
	}

	pemBlock := &pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: derBytes,
	}

	return string(pem.EncodeToMemory(pemBlock)), nil
}
