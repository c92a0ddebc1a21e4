package postgres

import (
	"context"
	"time"

	"github.com/crewplane/crewplane/internal/auth/domain"
	"github.com/crewplane/crewplane/internal/auth/store"
)

const userColumns = `id, email, default_tenant_id, mfa_setup_state,
	mfa_session_verified, mfa_secret, mfa_verified_at, created_at, updated_at`

type usersRepo struct {
	db dbtx
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)

	u, err := scanUser(row)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = now
	}
	if u.MFASetupState == "" {
		u.MFASetupState = domain.MFASetupNone
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, default_tenant_id, mfa_setup_state,
			mfa_session_verified, mfa_secret, mfa_verified_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		u.ID,
		u.Email,
		mapOptionalString(u.DefaultTenantID),
		string(u.MFASetupState),
		u.MFASessionVerified,
		mapOptionalString(u.MFASecret),
		mapOptionalTime(u.MFAVerifiedAt),
		u.CreatedAt,
		u.UpdatedAt,
	)
	return err
}

func (r *usersRepo) EnsureUser(ctx context.Context, u domain.User) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING`,
		u.ID, u.Email, now, now,
	)
	return err
}

func (r *usersRepo) SetDefaultTenant(ctx context.Context, userID string, tenantID *string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET default_tenant_id = $1, updated_at = $2 WHERE id = $3`,
		mapOptionalString(tenantID), time.Now().UTC(), userID,
	)
	return err
}

func (r *usersRepo) ClearDefaultTenantIf(ctx context.Context, userID, tenantID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET default_tenant_id = NULL, updated_at = $1
		WHERE id = $2 AND default_tenant_id = $3`,
		time.Now().UTC(), userID, tenantID,
	)
	return err
}

func (r *usersRepo) ClearStaleDefaultTenants(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET default_tenant_id = NULL, updated_at = $1
		WHERE default_tenant_id IS NOT NULL
		  AND NOT EXISTS (
			SELECT 1 FROM memberships m
			WHERE m.tenant_id = users.default_tenant_id AND m.uid = users.id
		  )`,
		time.Now().UTC(),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *usersRepo) SaveMFAEnrollment(
	ctx context.Context,
	userID, secretCiphertext string,
	codes []domain.BackupCode,
) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET mfa_secret = $1, mfa_setup_state = $2,
			mfa_session_verified = FALSE, mfa_verified_at = NULL, updated_at = $3
		WHERE id = $4`,
		secretCiphertext, string(domain.MFASetupPending), time.Now().UTC(), userID,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}

	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM mfa_backup_codes WHERE user_id = $1`, userID); err != nil {
		return err
	}

	for _, c := range codes {
		createdAt := c.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO mfa_backup_codes (id, user_id, ciphertext, created_at)
			VALUES ($1, $2, $3, $4)`,
			c.ID, userID, c.Ciphertext, createdAt,
		); err != nil {
			return err
		}
	}
	return nil
}

func (r *usersRepo) EnableMFA(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET mfa_setup_state = $1, updated_at = $2 WHERE id = $3`,
		string(domain.MFASetupConfirmed), time.Now().UTC(), userID,
	)
	return err
}

func (r *usersRepo) MarkSessionVerified(ctx context.Context, userID string, verifiedAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET mfa_session_verified = TRUE, mfa_verified_at = $1, updated_at = $2
		WHERE id = $3`,
		verifiedAt, time.Now().UTC(), userID,
	)
	return err
}

func (r *usersRepo) ClearSessionVerified(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET mfa_session_verified = FALSE, updated_at = $1 WHERE id = $2`,
		time.Now().UTC(), userID,
	)
	return err
}

func (r *usersRepo) DisableMFA(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET mfa_secret = NULL, mfa_setup_state = $1,
			mfa_session_verified = FALSE, mfa_verified_at = NULL, updated_at = $2
		WHERE id = $3`,
		string(domain.MFASetupNone), time.Now().UTC(), userID,
	)
	return err
}
