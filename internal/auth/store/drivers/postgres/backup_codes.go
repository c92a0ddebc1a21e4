package postgres

import (
	"context"

	"github.com/crewplane/crewplane/internal/auth/domain"
)

type backupCodesRepo struct {
	db dbtx
}

func (r *backupCodesRepo) ListBackupCodes(ctx context.Context, userID string) ([]domain.BackupCode, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, ciphertext, created_at FROM mfa_backup_codes
		WHERE user_id = $1 ORDER BY id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.BackupCode
	for rows.Next() {
		c, err := scanBackupCode(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *backupCodesRepo) DeleteBackupCode(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM mfa_backup_codes WHERE id = $1`, id)
	return err
}

func (r *backupCodesRepo) DeleteAllBackupCodes(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM mfa_backup_codes WHERE user_id = $1`, userID)
	return err
}

func (r *backupCodesRepo) CountUserBackupCodes(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM mfa_backup_codes WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
