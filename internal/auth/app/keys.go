package app

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/crewplane/crewplane/pkg/cryptox"
	"github.com/crewplane/crewplane/pkg/jwtx"
)

// DevKeyID is the kid used for auto-provisioned development keypairs. The
// devtoken command mints tokens under the same kid so they verify out of
// the box.
const DevKeyID = "dev-1"

// InitVault builds the AES-GCM vault that protects TOTP secrets at rest.
//
// In production the master key MUST come from MFA_ENCRYPTION_KEY; refusing
// to start beats silently encrypting under a throwaway key that nobody can
// ever decrypt again. In development a missing key falls back to an
// ephemeral random one, which means enrolled secrets do not survive a
// restart.
func InitVault(cfg Config, logger *slog.Logger) (*cryptox.Vault, error) {
	if cfg.MFAEncryptionKey != "" {
		key, err := cryptox.ParseMasterKeyHex(cfg.MFAEncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("parse MFA_ENCRYPTION_KEY: %w", err)
		}
		return cryptox.NewVault(key)
	}

	if cfg.Mode() == ModeProduction {
		return nil, fmt.Errorf("MFA_ENCRYPTION_KEY is required in production")
	}

	key, err := cryptox.GenerateMasterKey()
	if err != nil {
		return nil, fmt.Errorf("generate ephemeral vault key: %w", err)
	}

	logger.Warn("MFA_ENCRYPTION_KEY not set, using an ephemeral vault key",
		"consequence", "enrolled authenticator secrets will not survive a restart",
	)

	return cryptox.NewVault(key)
}

// InitVerifier loads the identity provider's public verification key and
// builds the session token verifier from it.
//
// The key is taken from AUTH_JWT_PUBLIC_KEY (inline PEM) or
// AUTH_JWT_PUBLIC_KEY_FILE, in that order. Production requires one of the
// two. Development auto-provisions an Ed25519 keypair under cfg.DevKeysDir
// when neither is set, reusing an existing keypair across restarts so dev
// tokens stay valid.
func InitVerifier(cfg Config, logger *slog.Logger) (*jwtx.KeySet, jwtx.Verifier, error) {
	keys := jwtx.NewKeySet()

	switch {
	case cfg.AuthPublicKeyPEM != "":
		if err := keys.AddPublicKeyPEM(DevKeyID, []byte(cfg.AuthPublicKeyPEM)); err != nil {
			return nil, nil, fmt.Errorf("load AUTH_JWT_PUBLIC_KEY: %w", err)
		}
		logger.Info("verification key loaded from environment")

	case cfg.AuthPublicKeyFile != "":
		pemBytes, err := os.ReadFile(cfg.AuthPublicKeyFile)
		if err != nil {
			return nil, nil, fmt.Errorf("read AUTH_JWT_PUBLIC_KEY_FILE: %w", err)
		}
		if err := keys.AddPublicKeyPEM(DevKeyID, pemBytes); err != nil {
			return nil, nil, fmt.Errorf("load %s: %w", cfg.AuthPublicKeyFile, err)
		}
		logger.Info("verification key loaded", "file", cfg.AuthPublicKeyFile)

	default:
		if cfg.Mode() == ModeProduction {
			return nil, nil, fmt.Errorf("AUTH_JWT_PUBLIC_KEY or AUTH_JWT_PUBLIC_KEY_FILE is required in production")
		}
		if err := provisionDevKeypair(cfg, keys, logger); err != nil {
			return nil, nil, err
		}
	}

	verifier := jwtx.NewVerifier(keys, cfg.AuthIssuer, cfg.AuthAudience)
	return keys, verifier, nil
}

// provisionDevKeypair loads or creates an Ed25519 keypair under
// cfg.DevKeysDir and registers its public half in the KeySet.
func provisionDevKeypair(cfg Config, keys *jwtx.KeySet, logger *slog.Logger) error {
	keyFile := filepath.Join(cfg.DevKeysDir, "session_ed25519.pem")

	pemKey, err := os.ReadFile(keyFile)
	if os.IsNotExist(err) {
		pemKey, err = cryptox.GenerateEd25519Key()
		if err != nil {
			return fmt.Errorf("generate dev keypair: %w", err)
		}
		if err := os.MkdirAll(cfg.DevKeysDir, 0o700); err != nil {
			return fmt.Errorf("create dev keys dir: %w", err)
		}
		if err := os.WriteFile(keyFile, pemKey, 0o600); err != nil {
			return fmt.Errorf("write dev keypair: %w", err)
		}
		logger.Warn("no verification key configured, generated a dev keypair",
			"file", keyFile,
			"hint", "mint matching tokens with the devtoken command",
		)
	} else if err != nil {
		return fmt.Errorf("read dev keypair: %w", err)
	} else {
		logger.Info("reusing dev keypair", "file", keyFile)
	}

	signer, err := jwtx.NewSignerEdDSA(DevKeyID, pemKey)
	if err != nil {
		return fmt.Errorf("parse dev keypair: %w", err)
	}
	return keys.AddSigner(signer)
}
