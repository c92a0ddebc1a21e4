package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

const (
	// MasterKeySize is the required master key length (AES-256).
	MasterKeySize = 32

	vaultNonceSize = 16 // 128-bit random nonce per call
	vaultTagSize   = 16 // GCM authentication tag
)

// vaultKeyInfo domain-separates the AEAD key derived from the master key.
const vaultKeyInfo = "crewplane/authcore mfa vault v1"

var (
	// ErrMalformedEnvelope reports an envelope that is not three hex segments
	// of the expected sizes. It is a format fault, distinct from an
	// authentication failure.
	ErrMalformedEnvelope = errors.New("cryptox: malformed vault envelope")

	// ErrDecryptFailed reports an authentication failure: the envelope was
	// tampered with or sealed under a different key.
	ErrDecryptFailed = errors.New("cryptox: vault decryption failed")
)

// Vault performs authenticated encryption of MFA secrets and backup codes.
// Construct one at startup with NewVault and inject it; there is no
// process-global key.
//
// Envelope format: hex(nonce):hex(tag):hex(ciphertext), exactly three
// colon-delimited segments.
type Vault struct {
	aead cipher.AEAD
}

// NewVault derives the AES-256-GCM key from the 32-byte master key using
// HKDF-SHA256. The derivation is deterministic, so the same master key opens
// envelopes across restarts.
func NewVault(masterKey []byte) (*Vault, error) {
	if len(masterKey) != MasterKeySize {
		return nil, fmt.Errorf("cryptox: master key must be %d bytes, got %d", MasterKeySize, len(masterKey))
	}

	key := make([]byte, MasterKeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, masterKey, nil, []byte(vaultKeyInfo)), key); err != nil {
		return nil, fmt.Errorf("cryptox: failed to derive vault key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("cryptox: failed to create cipher: %w", err)
	}

	aead, err := cipher.NewGCMWithNonceSize(block, vaultNonceSize)
	if err != nil {
		return nil, fmt.Errorf("cryptox: failed to create GCM: %w", err)
	}

	return &Vault{aead: aead}, nil
}

// Encrypt seals plaintext under a fresh random nonce and returns the
// three-segment envelope.
func (v *Vault) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, vaultNonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("cryptox: failed to generate nonce: %w", err)
	}

	// Seal appends the tag to the ciphertext; split it back out so the
	// envelope carries the tag explicitly.
	sealed := v.aead.Seal(nil, nonce, []byte(plaintext), nil)
	ct, tag := sealed[:len(sealed)-vaultTagSize], sealed[len(sealed)-vaultTagSize:]

	return hex.EncodeToString(nonce) + ":" + hex.EncodeToString(tag) + ":" + hex.EncodeToString(ct), nil
}

// Decrypt opens an envelope produced by Encrypt. Shape and hex faults return
// ErrMalformedEnvelope; a tag mismatch returns ErrDecryptFailed. The two are
// never collapsed.
func (v *Vault) Decrypt(envelope string) (string, error) {
	parts := strings.Split(envelope, ":")
	if len(parts) != 3 {
		return "", fmt.Errorf("%w: expected 3 segments, got %d", ErrMalformedEnvelope, len(parts))
	}

	nonce, err := hex.DecodeString(parts[0])
	if err != nil {
		return "", fmt.Errorf("%w: nonce segment is not hex", ErrMalformedEnvelope)
	}
	if len(nonce) != vaultNonceSize {
		return "", fmt.Errorf("%w: nonce is %d bytes, want %d", ErrMalformedEnvelope, len(nonce), vaultNonceSize)
	}

	tag, err := hex.DecodeString(parts[1])
	if err != nil {
		return "", fmt.Errorf("%w: tag segment is not hex", ErrMalformedEnvelope)
	}
	if len(tag) != vaultTagSize {
		return "", fmt.Errorf("%w: tag is %d bytes, want %d", ErrMalformedEnvelope, len(tag), vaultTagSize)
	}

	ct, err := hex.DecodeString(parts[2])
	if err != nil {
		return "", fmt.Errorf("%w: ciphertext segment is not hex", ErrMalformedEnvelope)
	}

	plaintext, err := v.aead.Open(nil, nonce, append(ct, tag...), nil)
	if err != nil {
		return "", ErrDecryptFailed
	}
	return string(plaintext), nil
}

// ParseMasterKeyHex validates an environment-provided master key: whitespace
// stripped, hex-decoded, at least 64 hex characters. The first 32 decoded
// bytes become the key.
func ParseMasterKeyHex(raw string) ([]byte, error) {
	cleaned := strings.Join(strings.Fields(raw), "")
	if len(cleaned) < MasterKeySize*2 {
		return nil, fmt.Errorf("cryptox: master key must be at least %d hex characters, got %d", MasterKeySize*2, len(cleaned))
	}

	decoded, err := hex.DecodeString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("cryptox: master key is not valid hex: %w", err)
	}

	return decoded[:MasterKeySize], nil
}

// GenerateMasterKey returns a fresh random master key. Development use only:
// everything sealed under it is unrecoverable after a restart.
func GenerateMasterKey() ([]byte, error) {
	key := make([]byte, MasterKeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("cryptox: failed to generate master key: %w", err)
	}
	return key, nil
}
