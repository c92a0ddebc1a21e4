package postgres

import (
	"context"
	"time"

	"github.com/crewplane/crewplane/internal/auth/domain"
)

const entitlementColumns = `id, owner_kind, owner_id, key, value, granted_at`

type entitlementsRepo struct {
	db dbtx
}

func (r *entitlementsRepo) FindByOwnerAndKey(
	ctx context.Context,
	kind domain.OwnerKind,
	ownerID, key string,
) (domain.Entitlement, error) {
	// Oldest row wins when legacy duplicates exist; ULIDs sort by creation.
	row := r.db.QueryRowContext(ctx,
		`SELECT `+entitlementColumns+` FROM entitlements
		WHERE owner_kind = $1 AND owner_id = $2 AND key = $3
		ORDER BY id ASC LIMIT 1`,
		string(kind), ownerID, key)

	e, err := scanEntitlement(row)
	if err != nil {
		return domain.Entitlement{}, mapNotFound(err)
	}
	return e, nil
}

func (r *entitlementsRepo) ListByOwner(
	ctx context.Context,
	kind domain.OwnerKind,
	ownerID string,
) ([]domain.Entitlement, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+entitlementColumns+` FROM entitlements
		WHERE owner_kind = $1 AND owner_id = $2
		ORDER BY key ASC, id ASC`,
		string(kind), ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Entitlement
	for rows.Next() {
		e, err := scanEntitlement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *entitlementsRepo) CreateEntitlement(ctx context.Context, e domain.Entitlement) error {
	if e.GrantedAt.IsZero() {
		e.GrantedAt = time.Now().UTC()
	}
	value, err := encodeValue(e.Value)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO entitlements (id, owner_kind, owner_id, key, value, granted_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, string(e.OwnerKind), e.OwnerID, e.Key, value, e.GrantedAt,
	)
	return err
}

func (r *entitlementsRepo) UpdateValue(ctx context.Context, id string, value domain.Value) error {
	encoded, err := encodeValue(value)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`UPDATE entitlements SET value = $1 WHERE id = $2`, encoded, id)
	return err
}

func (r *entitlementsRepo) DeleteEntitlement(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM entitlements WHERE id = $1`, id)
	return err
}
