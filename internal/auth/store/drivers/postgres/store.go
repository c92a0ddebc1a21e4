// Package postgres implements the auth store on PostgreSQL through the pgx
// stdlib adapter. Query code mirrors the sqlite driver; only placeholders
// and a few column types differ.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/crewplane/crewplane/internal/auth/domain"
	"github.com/crewplane/crewplane/internal/auth/store"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// dbtx is the common subset of *sql.DB and *sql.Tx the repos run on, so the
// same query code serves both the root store and transactions.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db  *sql.DB
	dsn string
}

func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	return &Store{
		db:  db,
		dsn: dsn,
	}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return newTx(tx), nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	// Ensure rollback is called if we panic or return early with error
	defer func() {
		_ = tx.Rollback() // safe to call even after commit
	}()

	// Execute the function
	if err := fn(tx); err != nil {
		return err // rollback happens in defer
	}

	// Commit on success
	return tx.Commit()
}

func (s *Store) Users() store.Users               { return &usersRepo{db: s.db} }
func (s *Store) Tenants() store.Tenants           { return &tenantsRepo{db: s.db} }
func (s *Store) Memberships() store.Memberships   { return &membershipsRepo{db: s.db} }
func (s *Store) Entitlements() store.Entitlements { return &entitlementsRepo{db: s.db} }
func (s *Store) Freelancers() store.Freelancers   { return &freelancersRepo{db: s.db} }
func (s *Store) BackupCodes() store.BackupCodes   { return &backupCodesRepo{db: s.db} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func mapNullStringPtr(ns sql.NullString) *string {
	if ns.Valid {
		val := ns.String
		return &val
	}
	return nil
}

func mapOptionalString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: *s, Valid: true}
}

func mapNullTimePtr(nt sql.NullTime) *time.Time {
	if nt.Valid {
		val := nt.Time
		return &val
	}
	return nil
}

func mapOptionalTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(rs rowScanner) (domain.User, error) {
	var (
		u          domain.User
		tenantID   sql.NullString
		setupState string
		secret     sql.NullString
		verifiedAt sql.NullTime
	)
	err := rs.Scan(
		&u.ID,
		&u.Email,
		&tenantID,
		&setupState,
		&u.MFASessionVerified,
		&secret,
		&verifiedAt,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	u.DefaultTenantID = mapNullStringPtr(tenantID)
	u.MFASetupState = domain.MFASetupState(setupState)
	u.MFASecret = mapNullStringPtr(secret)
	u.MFAVerifiedAt = mapNullTimePtr(verifiedAt)
	return u, nil
}

func scanTenant(rs rowScanner) (domain.Tenant, error) {
	var t domain.Tenant
	err := rs.Scan(&t.ID, &t.Name, &t.CreatedBy, &t.CreatedAt)
	if err != nil {
		return domain.Tenant{}, err
	}
	return t, nil
}

func scanMembership(rs rowScanner) (domain.Membership, error) {
	var m domain.Membership
	var role string
	err := rs.Scan(&m.TenantID, &m.UID, &m.Email, &role, &m.JoinedAt)
	if err != nil {
		return domain.Membership{}, err
	}
	m.Role = domain.MembershipRole(role)
	return m, nil
}

func scanEntitlement(rs rowScanner) (domain.Entitlement, error) {
	var (
		e     domain.Entitlement
		kind  string
		value string
	)
	err := rs.Scan(&e.ID, &kind, &e.OwnerID, &e.Key, &value, &e.GrantedAt)
	if err != nil {
		return domain.Entitlement{}, err
	}
	e.OwnerKind = domain.OwnerKind(kind)
	e.Value, err = decodeValue(value)
	if err != nil {
		return domain.Entitlement{}, err
	}
	return e, nil
}

func scanFreelancer(rs rowScanner) (domain.Freelancer, error) {
	var f domain.Freelancer
	err := rs.Scan(&f.ID, &f.Email, &f.DisplayName, &f.CreatedAt)
	if err != nil {
		return domain.Freelancer{}, err
	}
	return f, nil
}

func scanBackupCode(rs rowScanner) (domain.BackupCode, error) {
	var c domain.BackupCode
	err := rs.Scan(&c.ID, &c.UserID, &c.Ciphertext, &c.CreatedAt)
	if err != nil {
		return domain.BackupCode{}, err
	}
	return c, nil
}

// Entitlement values keep their JSON shape in the value column, so the
// bool/string/number distinction survives the round trip.
func encodeValue(v domain.Value) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeValue(s string) (domain.Value, error) {
	var v domain.Value
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return domain.Value{}, err
	}
	return v, nil
}
