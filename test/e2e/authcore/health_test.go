package authcore_test

import (
	"testing"

	"github.com/crewplane/crewplane/pkg/coresdk"
	"github.com/stretchr/testify/require"
)

func TestHealthEndpoints(t *testing.T) {
	baseURL := setupContainer(t, containerOptions{})
	client := coresdk.NewSDKClient(baseURL)

	t.Run("livez reports ok", func(t *testing.T) {
		health, err := client.Livez(t.Context())
		require.NoError(t, err)
		require.Equal(t, "ok", health.Status)
		require.NotEmpty(t, health.Version)
	})

	t.Run("readyz reports dependency checks", func(t *testing.T) {
		health, err := client.Readyz(t.Context())
		require.NoError(t, err)
		require.Equal(t, "ok", health.Status)
		require.NotNil(t, health.Checks)
		require.Equal(t, "ok", health.Checks.Database)
		require.Equal(t, "ok", health.Checks.Verifier)
	})
}
