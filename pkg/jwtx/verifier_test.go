package jwtx_test

import (
	"crypto/ed25519"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/crewplane/crewplane/pkg/cryptox"
	"github.com/crewplane/crewplane/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const exampleIssuer = "https://id.example.com"

func TestVerifySessionTokenEdDSA(t *testing.T) {
	// Generate Ed25519 keypair
	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)

	kid := "test-key-eddsa"

	// Create signer
	signer, err := jwtx.NewSignerEdDSA(kid, pemKey)
	require.NoError(t, err)
	require.NotNil(t, signer)
	require.NoError(t, signer.Validate())
	require.Equal(t, "EdDSA", signer.Alg())
	require.Equal(t, kid, signer.KID())

	// Build claims using helper function
	now := time.Now().UTC()
	claims := jwtx.NewSessionClaims(
		"uid-456",                 // subject
		"crew@example.com",        // email
		jwtx.ActorMember,          // actor
		5*time.Minute,             // TTL
		exampleIssuer,             // issuer
		[]string{"crewplane"},     // audience
		now,                       // issued at time
	)

	// Sign token
	token, err := signer.Sign(claims)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// Build KeySet for verification
	keyset := jwtx.NewKeySet()
	require.NoError(t, keyset.AddSigner(signer))
	require.True(t, keyset.IsReady())

	// Create verifier and verify token
	verifier := jwtx.NewVerifier(keyset, exampleIssuer, []string{"crewplane"})

	parsedClaims, err := verifier.Verify(token)
	require.NoError(t, err)

	require.Equal(t, claims.Issuer, parsedClaims.Issuer)
	require.Equal(t, claims.Subject, parsedClaims.Subject)
	require.ElementsMatch(t, claims.Audience, parsedClaims.Audience)
	require.Equal(t, claims.Email, parsedClaims.Email)
	require.Equal(t, claims.Actor, parsedClaims.Actor)
	require.NotEmpty(t, parsedClaims.ID) // JTI should be set
}

func TestVerifySessionTokenES256(t *testing.T) {
	// Generate ECDSA P-256 keypair
	pemKey, err := cryptox.GenerateES256Key()
	require.NoError(t, err)

	// Create signer
	signer, err := jwtx.NewSignerES256("test-key-es256", pemKey)
	require.NoError(t, err)
	require.NoError(t, signer.Validate())
	require.Equal(t, "ES256", signer.Alg())

	// Sign a freelancer token
	now := time.Now().UTC()
	claims := jwtx.NewSessionClaims(
		"uid-789",
		"indie@example.com",
		jwtx.ActorFreelancer,
		5*time.Minute,
		exampleIssuer,
		[]string{"crewplane"},
		now,
	)
	token, err := signer.Sign(claims)
	require.NoError(t, err)

	// Verify with the same key in the set
	keyset := jwtx.NewKeySet()
	require.NoError(t, keyset.AddSigner(signer))

	verifier := jwtx.NewVerifier(keyset, exampleIssuer, []string{"crewplane"})

	parsedClaims, err := verifier.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "uid-789", parsedClaims.Subject)
	require.True(t, parsedClaims.IsFreelancer())
}

func TestVerifyFailsForWrongIssuer(t *testing.T) {
	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)

	signer, err := jwtx.NewSignerEdDSA("k1", pemKey)
	require.NoError(t, err)

	now := time.Now().UTC()
	claims := jwtx.NewSessionClaims(
		"uid-1", "who@example.com", jwtx.ActorMember,
		1*time.Minute, exampleIssuer, nil, now,
	)
	token, err := signer.Sign(claims)
	require.NoError(t, err)

	keyset := jwtx.NewKeySet()
	require.NoError(t, keyset.AddSigner(signer))

	// Create verifier with wrong expected issuer
	verifier := jwtx.NewVerifier(keyset, "wrong-issuer", nil)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrIssuer)
}

func TestVerifyFailsForWrongAudience(t *testing.T) {
	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)

	signer, err := jwtx.NewSignerEdDSA("k1", pemKey)
	require.NoError(t, err)

	now := time.Now().UTC()
	claims := jwtx.NewSessionClaims(
		"uid-1", "who@example.com", jwtx.ActorMember,
		1*time.Minute, exampleIssuer, []string{"roster"}, now,
	)
	token, err := signer.Sign(claims)
	require.NoError(t, err)

	keyset := jwtx.NewKeySet()
	require.NoError(t, keyset.AddSigner(signer))

	verifier := jwtx.NewVerifier(keyset, exampleIssuer, []string{"billing"})

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrAudience)
}

func TestVerifyFailsForUnknownKID(t *testing.T) {
	// Generate two Ed25519 keypairs
	pemKey1, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	signer1, err := jwtx.NewSignerEdDSA("key1", pemKey1)
	require.NoError(t, err)

	pemKey2, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	signer2, err := jwtx.NewSignerEdDSA("key2", pemKey2)
	require.NoError(t, err)

	// Token signed with key1
	now := time.Now().UTC()
	claims := jwtx.NewSessionClaims(
		"uid-1", "who@example.com", jwtx.ActorMember,
		1*time.Minute, exampleIssuer, nil, now,
	)
	token, err := signer1.Sign(claims)
	require.NoError(t, err)

	// Keyset only contains key2
	keyset := jwtx.NewKeySet()
	require.NoError(t, keyset.AddSigner(signer2))

	verifier := jwtx.NewVerifier(keyset, exampleIssuer, nil)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrUnknownKID)
}

func TestVerifyFailsForExpiredToken(t *testing.T) {
	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)

	signer, err := jwtx.NewSignerEdDSA("k1", pemKey)
	require.NoError(t, err)

	// Issued two minutes ago with a one minute TTL
	past := time.Now().UTC().Add(-2 * time.Minute)
	claims := jwtx.NewSessionClaims(
		"uid-1", "who@example.com", jwtx.ActorMember,
		1*time.Minute, exampleIssuer, nil, past,
	)
	token, err := signer.Sign(claims)
	require.NoError(t, err)

	keyset := jwtx.NewKeySet()
	require.NoError(t, keyset.AddSigner(signer))

	verifier := jwtx.NewVerifier(keyset, exampleIssuer, nil)

	// The parser rejects it before our own expiry check even runs
	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestVerifyRejectsHS256(t *testing.T) {
	// A symmetric token should never make it past the method allowlist,
	// even with a kid that exists in the set.
	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	signer, err := jwtx.NewSignerEdDSA("k1", pemKey)
	require.NoError(t, err)

	keyset := jwtx.NewKeySet()
	require.NoError(t, keyset.AddSigner(signer))

	now := time.Now().UTC()
	claims := jwtx.NewSessionClaims(
		"uid-1", "who@example.com", jwtx.ActorMember,
		1*time.Minute, exampleIssuer, nil, now,
	)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tok.Header["kid"] = "k1"
	tokenStr, err := tok.SignedString([]byte("shared-secret"))
	require.NoError(t, err)

	verifier := jwtx.NewVerifier(keyset, exampleIssuer, nil)

	_, err = verifier.Verify(tokenStr)
	require.Error(t, err)
}

func TestVerifyRejectsMissingKID(t *testing.T) {
	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	signer, err := jwtx.NewSignerEdDSA("k1", pemKey)
	require.NoError(t, err)

	keyset := jwtx.NewKeySet()
	require.NoError(t, keyset.AddSigner(signer))

	// Sign directly so no kid header is set
	block, _ := pem.Decode(pemKey)
	require.NotNil(t, block)
	priv, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	require.NoError(t, err)

	now := time.Now().UTC()
	claims := jwtx.NewSessionClaims(
		"uid-1", "who@example.com", jwtx.ActorMember,
		1*time.Minute, exampleIssuer, nil, now,
	)
	tokenStr, err := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(priv.(ed25519.PrivateKey))
	require.NoError(t, err)

	verifier := jwtx.NewVerifier(keyset, exampleIssuer, nil)

	_, err = verifier.Verify(tokenStr)
	require.ErrorContains(t, err, "missing kid")
}

func TestVerifyRejectsKeyTypeMismatch(t *testing.T) {
	// Register a P-256 key under the kid, then present an EdDSA token
	// claiming the same kid.
	esPEM, err := cryptox.GenerateES256Key()
	require.NoError(t, err)
	esSigner, err := jwtx.NewSignerES256("shared", esPEM)
	require.NoError(t, err)

	edPEM, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	edSigner, err := jwtx.NewSignerEdDSA("shared", edPEM)
	require.NoError(t, err)

	keyset := jwtx.NewKeySet()
	require.NoError(t, keyset.AddSigner(esSigner))

	now := time.Now().UTC()
	claims := jwtx.NewSessionClaims(
		"uid-1", "who@example.com", jwtx.ActorMember,
		1*time.Minute, exampleIssuer, nil, now,
	)
	token, err := edSigner.Sign(claims)
	require.NoError(t, err)

	verifier := jwtx.NewVerifier(keyset, exampleIssuer, nil)

	_, err = verifier.Verify(token)
	require.Error(t, err)
	require.ErrorContains(t, err, "Ed25519")
}

func TestVerifyGarbageToken(t *testing.T) {
	keyset := jwtx.NewKeySet()
	verifier := jwtx.NewVerifier(keyset, exampleIssuer, nil)

	_, err := verifier.Verify("not-a-jwt")
	require.Error(t, err)
}
