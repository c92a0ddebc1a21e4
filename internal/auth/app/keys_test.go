package app

import (
	"bytes"
	"io"
	"log/slog"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitVaultRequiresKeyInProduction(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := InitVault(Config{Env: "production"}, logger)
	require.Error(t, err)
	require.Contains(t, err.Error(), "MFA_ENCRYPTION_KEY")
}

func TestInitVaultFromEnvKey(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := Config{
		Env:              "production",
		MFAEncryptionKey: "0f1e2d3c4b5a69788796a5b4c3d2e1f00f1e2d3c4b5a69788796a5b4c3d2e1f0",
	}

	vault, err := InitVault(cfg, logger)
	require.NoError(t, err)

	envelope, err := vault.Encrypt("JBSWY3DPEHPK3PXP")
	require.NoError(t, err)
	got, err := vault.Decrypt(envelope)
	require.NoError(t, err)
	require.Equal(t, "JBSWY3DPEHPK3PXP", got)
}

func TestInitVaultDevKeyStaysOutOfLogs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	vault, err := InitVault(Config{Env: "dev"}, logger)
	require.NoError(t, err)
	require.NotNil(t, vault)

	out := buf.String()
	require.Contains(t, out, "ephemeral vault key")
	require.NotRegexp(t, regexp.MustCompile(`[0-9a-fA-F]{64}`), out,
		"key material must never be logged")
}
