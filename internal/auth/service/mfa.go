package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"time"

	"github.com/crewplane/crewplane/internal/auth/domain"
	"github.com/crewplane/crewplane/internal/auth/staff"
	"github.com/crewplane/crewplane/internal/auth/store"
	"github.com/crewplane/crewplane/pkg/cryptox"
	"github.com/crewplane/crewplane/pkg/idx"
	"github.com/crewplane/crewplane/pkg/slogx"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	backupCodeCount = 10 // Number of backup codes issued per enrollment
	qrImageSize     = 256

	totpPeriod = 30
	totpSkew   = 2 // accept codes up to two periods either side of now
)

// MFAService owns TOTP enrollment, per-session verification and the
// corrupted-secret recovery policy. Secrets and backup codes only ever touch
// the store as vault envelopes.
type MFAService struct {
	Store  store.Store
	Vault  *cryptox.Vault
	Staff  staff.Verifier
	Issuer string // Issuer name shown in authenticator apps (e.g., "Crewplane")
}

// GenerateSecret creates a fresh TOTP secret, its enrollment QR code and a
// set of backup codes. Nothing is persisted; pair with SaveSecret.
func (s *MFAService) GenerateSecret(ctx context.Context, uid, email string) (domain.MFAEnrollment, error) {
	user, err := s.Store.Users().GetUserByID(ctx, uid)
	if err != nil {
		return domain.MFAEnrollment{}, fmt.Errorf("failed to load user: %w", err)
	}
	if user.MFAEnabled() {
		return domain.MFAEnrollment{}, ErrMFAAlreadyEnabled
	}

	// Generate TOTP key
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.Issuer,
		AccountName: email,
		Period:      totpPeriod,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return domain.MFAEnrollment{}, fmt.Errorf("failed to generate TOTP key: %w", err)
	}

	// Render the otpauth:// URL as a scannable PNG
	img, err := key.Image(qrImageSize, qrImageSize)
	if err != nil {
		return domain.MFAEnrollment{}, fmt.Errorf("failed to render QR code: %w", err)
	}
	var qr bytes.Buffer
	if err := png.Encode(&qr, img); err != nil {
		return domain.MFAEnrollment{}, fmt.Errorf("failed to encode QR code: %w", err)
	}

	// Generate backup codes
	codes := make([]string, backupCodeCount)
	for i := range codes {
		code, err := cryptox.GenerateBackupCode()
		if err != nil {
			return domain.MFAEnrollment{}, fmt.Errorf("failed to generate backup code: %w", err)
		}
		codes[i] = code
	}

	return domain.MFAEnrollment{
		Secret:      key.Secret(),
		OTPAuthURL:  key.URL(),
		QRCodePNG:   qr.Bytes(),
		BackupCodes: codes,
	}, nil
}

// SaveSecret encrypts the secret and backup codes and persists them,
// moving the user into the pending state. Any previous enrollment material
// is replaced.
func (s *MFAService) SaveSecret(ctx context.Context, uid, secret string, backupCodes []string) error {
	envelope, err := s.Vault.Encrypt(secret)
	if err != nil {
		return fmt.Errorf("failed to encrypt MFA secret: %w", err)
	}

	// ULIDs are generated in order, so listing by id preserves the order
	// the codes were issued in.
	stored := make([]domain.BackupCode, 0, len(backupCodes))
	for _, code := range backupCodes {
		ct, err := s.Vault.Encrypt(code)
		if err != nil {
			return fmt.Errorf("failed to encrypt backup code: %w", err)
		}
		stored = append(stored, domain.BackupCode{
			ID:         idx.New().String(),
			UserID:     uid,
			Ciphertext: ct,
		})
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		return tx.Users().SaveMFAEnrollment(ctx, uid, envelope, stored)
	})
}

// ActivateMFA confirms a pending enrollment. The caller must supply a code
// generated from the freshly saved secret; on success MFA is enabled and
// the current session counts as verified.
func (s *MFAService) ActivateMFA(ctx context.Context, uid, code string) error {
	user, err := s.Store.Users().GetUserByID(ctx, uid)
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}
	if user.MFAEnabled() {
		return ErrMFAAlreadyEnabled
	}
	if user.MFASetupState != domain.MFASetupPending {
		return ErrMFANotEnrolled
	}

	secret, err := s.decryptSecret(ctx, user)
	if err != nil {
		return err
	}
	if secret == "" {
		return ErrMFANotEnrolled
	}

	if !s.VerifyCode(secret, code) {
		return ErrInvalidCode
	}

	if err := s.Store.Users().EnableMFA(ctx, uid); err != nil {
		return fmt.Errorf("failed to enable MFA: %w", err)
	}
	// The user just proved possession, so the session that finished
	// enrollment does not have to verify again.
	if err := s.Store.Users().MarkSessionVerified(ctx, uid, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to mark session verified: %w", err)
	}
	return nil
}

// VerifyCode checks a TOTP code against the secret with a tolerance of
// totpSkew periods either side of now, absorbing client clock drift.
func (s *MFAService) VerifyCode(secret, code string) bool {
	ok, err := totp.ValidateCustom(code, secret, time.Now().UTC(), totp.ValidateOpts{
		Period:    totpPeriod,
		Skew:      totpSkew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}

// VerifyBackupCode checks code against the user's stored backup codes,
// case-insensitively. A match consumes the code. Stored codes that fail to
// decrypt are skipped, never a match; one unreadable code must not lock the
// user out of the remaining ones.
func (s *MFAService) VerifyBackupCode(ctx context.Context, uid, code string) (bool, error) {
	log := slogx.FromContext(ctx)

	stored, err := s.Store.BackupCodes().ListBackupCodes(ctx, uid)
	if err != nil {
		return false, fmt.Errorf("failed to list backup codes: %w", err)
	}

	for _, c := range stored {
		plain, err := s.Vault.Decrypt(c.Ciphertext)
		if err != nil {
			log.Warn("skipping unreadable backup code", "uid", uid, "code_id", c.ID)
			continue
		}
		if !cryptox.EqualBackupCode(code, plain) {
			continue
		}

		// One-time use. If the consume fails the code would stay live, so
		// the verification fails with it.
		if err := s.Store.BackupCodes().DeleteBackupCode(ctx, c.ID); err != nil {
			return false, fmt.Errorf("failed to consume backup code: %w", err)
		}
		return true, nil
	}
	return false, nil
}

// VerifySession marks the current session verified after the user passes a
// TOTP or backup-code check. Callers pass whichever code the user typed;
// TOTP is tried first.
func (s *MFAService) VerifySession(ctx context.Context, uid, code string) error {
	user, err := s.Store.Users().GetUserByID(ctx, uid)
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}
	if !user.MFAEnabled() {
		return ErrMFANotEnrolled
	}

	secret, err := s.decryptSecret(ctx, user)
	if err != nil {
		return err
	}

	verified := secret != "" && s.VerifyCode(secret, code)
	if !verified {
		verified, err = s.VerifyBackupCode(ctx, uid, code)
		if err != nil {
			return err
		}
	}
	if !verified {
		return ErrInvalidCode
	}

	if err := s.Store.Users().MarkSessionVerified(ctx, uid, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to mark session verified: %w", err)
	}
	return nil
}

// GetSecret returns the user's decrypted TOTP secret, or "" when MFA is not
// configured.
//
// An unreadable envelope splits by account class: a normal user fails hard
// with ErrSecretCorrupted and stays blocked until support resets them —
// silently dropping MFA would let the password alone through. A verified
// staff account auto-repairs instead: MFA is reset, backup codes dropped,
// and "" is returned, so operators can never be locked out permanently.
func (s *MFAService) GetSecret(ctx context.Context, uid string) (string, error) {
	user, err := s.Store.Users().GetUserByID(ctx, uid)
	if err != nil {
		return "", fmt.Errorf("failed to load user: %w", err)
	}
	return s.decryptSecret(ctx, user)
}

// decryptSecret applies the differentiated corruption policy to an already
// loaded user record.
func (s *MFAService) decryptSecret(ctx context.Context, user domain.User) (string, error) {
	if user.MFASecret == nil || *user.MFASecret == "" {
		return "", nil
	}

	secret, err := s.Vault.Decrypt(*user.MFASecret)
	if err == nil {
		return secret, nil
	}
	if !errors.Is(err, cryptox.ErrMalformedEnvelope) && !errors.Is(err, cryptox.ErrDecryptFailed) {
		return "", fmt.Errorf("failed to decrypt MFA secret: %w", err)
	}

	log := slogx.FromContext(ctx)

	isStaff, staffErr := s.Staff.IsVerifiedPlatformStaff(ctx, user.ID)
	if staffErr != nil {
		log.Error("staff check failed while handling corrupted MFA secret",
			"uid", user.ID, "error", staffErr)
		isStaff = false
	}

	if !isStaff {
		slogx.Security(log).Error("stored MFA secret is unreadable",
			"uid", user.ID, "error", err)
		return "", fmt.Errorf("%w: %w", ErrSecretCorrupted, err)
	}

	// Staff emergency-access carve-out: reset enrollment instead of
	// blocking. Staff accounts carry alternate safeguards, and a locked-out
	// operator is the worse failure mode.
	slogx.Security(log).Warn("auto-repairing corrupted MFA secret for staff account",
		"uid", user.ID)

	repairErr := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.BackupCodes().DeleteAllBackupCodes(ctx, user.ID); err != nil {
			return fmt.Errorf("failed to delete backup codes: %w", err)
		}
		if err := tx.Users().DisableMFA(ctx, user.ID); err != nil {
			return fmt.Errorf("failed to reset MFA: %w", err)
		}
		return nil
	})
	if repairErr != nil {
		return "", fmt.Errorf("failed to auto-repair MFA state: %w", repairErr)
	}
	return "", nil
}

// CheckAndResetForNewSession decides once per authenticated request whether
// the per-session verified flag is still backed by the current credential.
// A token issued after the last verification means a fresh login, which
// must verify again. A missing issued-at is treated the same way.
func (s *MFAService) CheckAndResetForNewSession(ctx context.Context, uid string, tokenIssuedAt *time.Time) error {
	user, err := s.Store.Users().GetUserByID(ctx, uid)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load user: %w", err)
	}

	if !user.MFAEnabled() || !user.MFASessionVerified {
		return nil
	}

	stale := tokenIssuedAt == nil ||
		user.MFAVerifiedAt == nil ||
		user.MFAVerifiedAt.Before(*tokenIssuedAt)
	if !stale {
		return nil
	}

	if err := s.Store.Users().ClearSessionVerified(ctx, uid); err != nil {
		return fmt.Errorf("failed to clear session verification: %w", err)
	}
	return nil
}

// DisableMFA turns MFA off for the user after they pass one more code
// check, and drops the secret and any remaining backup codes.
func (s *MFAService) DisableMFA(ctx context.Context, uid, code string) error {
	user, err := s.Store.Users().GetUserByID(ctx, uid)
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}
	if !user.MFAEnabled() {
		return ErrMFANotEnrolled
	}

	secret, err := s.decryptSecret(ctx, user)
	if err != nil {
		return err
	}

	verified := secret != "" && s.VerifyCode(secret, code)
	if !verified {
		verified, err = s.VerifyBackupCode(ctx, uid, code)
		if err != nil {
			return err
		}
	}
	if !verified {
		return ErrInvalidCode
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.BackupCodes().DeleteAllBackupCodes(ctx, uid); err != nil {
			return fmt.Errorf("failed to delete backup codes: %w", err)
		}
		if err := tx.Users().DisableMFA(ctx, uid); err != nil {
			return fmt.Errorf("failed to disable MFA: %w", err)
		}
		return nil
	})
}

// BackupCodesRemaining reports how many unused backup codes the user holds.
func (s *MFAService) BackupCodesRemaining(ctx context.Context, uid string) (int, error) {
	return s.Store.BackupCodes().CountUserBackupCodes(ctx, uid)
}
