package postgres

import (
	"context"
	"time"

	"github.com/crewplane/crewplane/internal/auth/domain"
)

const membershipColumns = `tenant_id, uid, email, role, joined_at`

type membershipsRepo struct {
	db dbtx
}

func (r *membershipsRepo) GetMembership(ctx context.Context, tenantID, uid string) (domain.Membership, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+membershipColumns+` FROM memberships
		WHERE tenant_id = $1 AND uid = $2`, tenantID, uid)

	m, err := scanMembership(row)
	if err != nil {
		return domain.Membership{}, mapNotFound(err)
	}
	return m, nil
}

func (r *membershipsRepo) ListMembershipsByUser(ctx context.Context, uid string) ([]domain.Membership, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+membershipColumns+` FROM memberships
		WHERE uid = $1 ORDER BY tenant_id ASC`, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *membershipsRepo) ListMembershipsByTenant(ctx context.Context, tenantID string) ([]domain.Membership, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+membershipColumns+` FROM memberships
		WHERE tenant_id = $1 ORDER BY joined_at ASC, uid ASC`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *membershipsRepo) CreateMembership(ctx context.Context, m domain.Membership) error {
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO memberships (tenant_id, uid, email, role, joined_at)
		VALUES ($1, $2, $3, $4, $5)`,
		m.TenantID, m.UID, m.Email, string(m.Role), m.JoinedAt,
	)
	return err
}

func (r *membershipsRepo) DeleteMembership(ctx context.Context, tenantID, uid string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM memberships WHERE tenant_id = $1 AND uid = $2`, tenantID, uid)
	return err
}
