package jwtx_test

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"testing"

	"github.com/crewplane/crewplane/pkg/cryptox"
	"github.com/crewplane/crewplane/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestKeySetAddPublicKeyPEM(t *testing.T) {
	t.Run("ed25519", func(t *testing.T) {
		pemKey, err := cryptox.GenerateEd25519Key()
		require.NoError(t, err)
		signer, err := jwtx.NewSignerEdDSA("provider-1", pemKey)
		require.NoError(t, err)

		// Round-trip the public half the way deployments do: the signer
		// emits a PEM file, the service loads it back in.
		pubPEM, err := signer.PublicJWK().PEM()
		require.NoError(t, err)

		keyset := jwtx.NewKeySet()
		require.False(t, keyset.IsReady())
		require.NoError(t, keyset.AddPublicKeyPEM("provider-1", []byte(pubPEM)))
		require.True(t, keyset.IsReady())

		pub, err := keyset.Get("provider-1")
		require.NoError(t, err)
		_, ok := pub.(ed25519.PublicKey)
		require.True(t, ok)
	})

	t.Run("es256", func(t *testing.T) {
		pemKey, err := cryptox.GenerateES256Key()
		require.NoError(t, err)
		signer, err := jwtx.NewSignerES256("provider-2", pemKey)
		require.NoError(t, err)

		pubPEM, err := signer.PublicJWK().PEM()
		require.NoError(t, err)

		keyset := jwtx.NewKeySet()
		require.NoError(t, keyset.AddPublicKeyPEM("provider-2", []byte(pubPEM)))

		pub, err := keyset.Get("provider-2")
		require.NoError(t, err)
		_, ok := pub.(*ecdsa.PublicKey)
		require.True(t, ok)
	})

	t.Run("garbage pem", func(t *testing.T) {
		keyset := jwtx.NewKeySet()
		err := keyset.AddPublicKeyPEM("bad", []byte("definitely not a pem"))
		require.Error(t, err)
		require.False(t, keyset.IsReady())
	})

	t.Run("wrong block type", func(t *testing.T) {
		// A private key PEM must not be accepted as a verification key
		pemKey, err := cryptox.GenerateEd25519Key()
		require.NoError(t, err)

		keyset := jwtx.NewKeySet()
		err = keyset.AddPublicKeyPEM("priv", pemKey)
		require.Error(t, err)
	})
}

func TestKeySetAddJWK(t *testing.T) {
	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	signer, err := jwtx.NewSignerEdDSA("jwk-key", pemKey)
	require.NoError(t, err)

	keyset := jwtx.NewKeySet()
	require.NoError(t, keyset.AddJWK(signer.PublicJWK()))

	pub, err := keyset.Get("jwk-key")
	require.NoError(t, err)
	require.NotNil(t, pub)

	t.Run("unsupported kty", func(t *testing.T) {
		err := keyset.AddJWK(jwtx.JWK{Kty: "RSA", Kid: "legacy"})
		require.Error(t, err)
	})
}

func TestKeySetGetUnknownKID(t *testing.T) {
	keyset := jwtx.NewKeySet()
	_, err := keyset.Get("nope")
	require.ErrorIs(t, err, jwtx.ErrNoKey)
}
