package postgres

import (
	"context"
	"time"

	"github.com/crewplane/crewplane/internal/auth/domain"
)

type tenantsRepo struct {
	db dbtx
}

func (r *tenantsRepo) GetTenantByID(ctx context.Context, id string) (domain.Tenant, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_by, created_at FROM tenants WHERE id = $1`, id)

	t, err := scanTenant(row)
	if err != nil {
		return domain.Tenant{}, mapNotFound(err)
	}
	return t, nil
}

func (r *tenantsRepo) CreateTenant(ctx context.Context, t domain.Tenant) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tenants (id, name, created_by, created_at) VALUES ($1, $2, $3, $4)`,
		t.ID, t.Name, t.CreatedBy, t.CreatedAt,
	)
	return err
}

func (r *tenantsRepo) DeleteTenant(ctx context.Context, tenantID string) error {
	// Entitlement owners are polymorphic so no FK cascade covers them;
	// memberships cascade via the schema.
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM entitlements WHERE owner_kind = $1 AND owner_id = $2`,
		string(domain.OwnerTenant), tenantID,
	); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx, `DELETE FROM tenants WHERE id = $1`, tenantID)
	return err
}
