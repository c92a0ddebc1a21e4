package jwtx

// Signer is our interface for anything that can sign JWTs. The service
// itself only verifies tokens; signers exist for dev tooling and tests
// that need to mint session tokens the way the identity provider would.
type Signer interface {
	Alg() string
	KID() string
	Sign(Claims) (string, error)
	PublicJWK() JWK
	Validate() error
}

// NewSignerEdDSA creates an EdDSA signer from PEM bytes.
// Ed25519 keys must be in PKCS8 format.
func NewSignerEdDSA(kid string, pemKey []byte) (Signer, error) {
	return newEdDSASigner(kid, pemKey)
}

// NewSignerES256 creates an ES256 signer from PEM bytes.
// ECDSA P-256 keys must be in PKCS8 format.
func NewSignerES256(kid string, pemKey []byte) (Signer, error) {
	return newES256Signer(kid, pemKey)
}
