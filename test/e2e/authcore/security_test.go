package authcore_test

import (
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/crewplane/crewplane/pkg/cryptox"
	"github.com/crewplane/crewplane/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

// getWithToken performs a raw GET so malformed credentials can be sent.
func getWithToken(t *testing.T, baseURL, path, token string) int {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, baseURL+path, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	return resp.StatusCode
}

func TestTokenVerification(t *testing.T) {
	baseURL := setupContainer(t, containerOptions{})

	t.Run("missing token is rejected", func(t *testing.T) {
		require.Equal(t, http.StatusUnauthorized, getWithToken(t, baseURL, "/v1/me", ""))
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		require.Equal(t, http.StatusUnauthorized, getWithToken(t, baseURL, "/v1/me", "not.a.jwt"))
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		claims := jwtx.NewSessionClaims("usr_member", "m@example.com", jwtx.ActorMember,
			time.Hour, testIssuer, nil, time.Now().Add(-2*time.Hour))
		token, err := sessionSigner.Sign(claims)
		require.NoError(t, err)

		require.Equal(t, http.StatusUnauthorized, getWithToken(t, baseURL, "/v1/me", token))
	})

	t.Run("wrong issuer is rejected", func(t *testing.T) {
		claims := jwtx.NewSessionClaims("usr_member", "m@example.com", jwtx.ActorMember,
			time.Hour, "some-other-issuer", nil, time.Now())
		token, err := sessionSigner.Sign(claims)
		require.NoError(t, err)

		require.Equal(t, http.StatusUnauthorized, getWithToken(t, baseURL, "/v1/me", token))
	})

	t.Run("token signed by an unknown key is rejected", func(t *testing.T) {
		pemKey, err := cryptox.GenerateEd25519Key()
		require.NoError(t, err)
		rogue, err := jwtx.NewSignerEdDSA(testKeyID, pemKey)
		require.NoError(t, err)

		claims := jwtx.NewSessionClaims("usr_member", "m@example.com", jwtx.ActorMember,
			time.Hour, testIssuer, nil, time.Now())
		token, err := rogue.Sign(claims)
		require.NoError(t, err)

		require.Equal(t, http.StatusUnauthorized, getWithToken(t, baseURL, "/v1/me", token))
	})

	t.Run("valid token is admitted", func(t *testing.T) {
		token := mintToken(t, "usr_member", "m@example.com", jwtx.ActorMember)
		require.Equal(t, http.StatusOK, getWithToken(t, baseURL, "/v1/me", token))
	})
}
