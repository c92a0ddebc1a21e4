package cryptox

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// Backup codes use Crockford's base32 alphabet: unambiguous when read aloud
// or retyped, and 32 symbols divide 256 evenly so byte sampling is unbiased.
const backupCodeAlphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

const backupCodeLength = 10 // 50 bits of entropy per code

// GenerateBackupCode returns one recovery code formatted XXXXX-XXXXX.
func GenerateBackupCode() (string, error) {
	buf := make([]byte, backupCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("cryptox: failed to generate backup code: %w", err)
	}

	chars := make([]byte, backupCodeLength)
	for i, b := range buf {
		chars[i] = backupCodeAlphabet[int(b)%len(backupCodeAlphabet)]
	}

	return string(chars[:5]) + "-" + string(chars[5:]), nil
}

// EqualBackupCode compares a submitted code against a stored one, ignoring
// case and surrounding whitespace.
func EqualBackupCode(submitted, stored string) bool {
	return strings.EqualFold(strings.TrimSpace(submitted), stored)
}
