package store

import (
	"context"
	"errors"
	"time"

	"github.com/crewplane/crewplane/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable. We can change having the sub-repos as methods later but we do it
// now so we can have more control and actively stop people from accidently
// doing transactions within transactions.
type Store interface {
	Users() Users
	Tenants() Tenants
	Memberships() Memberships
	Entitlements() Entitlements
	Freelancers() Freelancers
	BackupCodes() BackupCodes

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// Use it for multi-step operations that must be atomic (e.g., the
	// entitlement search-then-update). The caller MUST call Commit() or
	// Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// This is the recommended way to handle transactions as it automatically
	// handles commit/rollback logic.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources (optional for sqlite).
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by uid.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// CreateUser inserts a new user. The uid comes from the identity
	// provider, not from us.
	CreateUser(ctx context.Context, u domain.User) error

	// EnsureUser inserts the user if the uid is unseen, otherwise leaves the
	// existing row alone. Called on first authenticated contact.
	EnsureUser(ctx context.Context, u domain.User) error

	// SetDefaultTenant updates the cached tenant pointer. nil clears it.
	// The pointer is a cache, not a grant, so last-write-wins is fine.
	SetDefaultTenant(ctx context.Context, userID string, tenantID *string) error

	// ClearDefaultTenantIf clears the cached pointer only if it still holds
	// the given tenant id. Used when a race is detected mid-resolution.
	ClearDefaultTenantIf(ctx context.Context, userID, tenantID string) error

	// ClearStaleDefaultTenants nulls every cached pointer with no backing
	// membership row, whether the tenant is gone or only the user's
	// membership is. Housekeeping; returns rows affected.
	ClearStaleDefaultTenants(ctx context.Context) (int64, error)

	// SaveMFAEnrollment stores the encrypted TOTP secret, moves setup state
	// to pending, drops the session-verified flag and replaces the user's
	// backup codes in one aggregate write.
	SaveMFAEnrollment(ctx context.Context, userID, secretCiphertext string, codes []domain.BackupCode) error

	// EnableMFA marks setup as confirmed. The session-verified flag stays
	// down; verification is a separate step.
	EnableMFA(ctx context.Context, userID string) error

	// MarkSessionVerified raises the session-verified flag and records when.
	MarkSessionVerified(ctx context.Context, userID string, verifiedAt time.Time) error

	// ClearSessionVerified drops the session-verified flag, forcing the next
	// sensitive operation to re-verify. Leaves mfa_verified_at untouched.
	ClearSessionVerified(ctx context.Context, userID string) error

	// DisableMFA resets the whole MFA state: secret cleared, setup state
	// back to none, flags down. Backup codes are deleted separately.
	DisableMFA(ctx context.Context, userID string) error
}

type Tenants interface {
	// GetTenantByID fetches a tenant by id.
	GetTenantByID(ctx context.Context, id string) (domain.Tenant, error)

	// CreateTenant inserts a new tenant (id is ULID).
	CreateTenant(ctx context.Context, t domain.Tenant) error

	// DeleteTenant removes a tenant. Memberships and entitlements cascade
	// (per schema); cached user pointers go stale and self-heal on read.
	DeleteTenant(ctx context.Context, tenantID string) error
}

type Memberships interface {
	// GetMembership point-reads the membership for (tenantID, uid).
	// Its existence is the sole source of truth for belonging.
	GetMembership(ctx context.Context, tenantID, uid string) (domain.Membership, error)

	// ListMembershipsByUser returns every membership held by uid, ordered by
	// tenant id ascending. The resolver's fallback scan relies on that order.
	ListMembershipsByUser(ctx context.Context, uid string) ([]domain.Membership, error)

	// ListMembershipsByTenant returns a tenant's roster ordered by join time.
	ListMembershipsByTenant(ctx context.Context, tenantID string) ([]domain.Membership, error)

	// CreateMembership inserts a membership row.
	CreateMembership(ctx context.Context, m domain.Membership) error

	// DeleteMembership removes the membership for (tenantID, uid).
	DeleteMembership(ctx context.Context, tenantID, uid string) error
}

type Entitlements interface {
	// FindByOwnerAndKey returns the entitlement for (owner, key), or
	// ErrNotFound. If legacy duplicates exist the oldest row wins.
	FindByOwnerAndKey(ctx context.Context, kind domain.OwnerKind, ownerID, key string) (domain.Entitlement, error)

	// ListByOwner returns all entitlements for an owner, ordered by key.
	ListByOwner(ctx context.Context, kind domain.OwnerKind, ownerID string) ([]domain.Entitlement, error)

	// CreateEntitlement inserts a new entitlement row (id is ULID). There is
	// deliberately no unique (owner, key) index; writers must
	// search-then-update to keep one row per key.
	CreateEntitlement(ctx context.Context, e domain.Entitlement) error

	// UpdateValue replaces the stored value for an entitlement row.
	UpdateValue(ctx context.Context, id string, value domain.Value) error

	// DeleteEntitlement removes an entitlement row by id.
	DeleteEntitlement(ctx context.Context, id string) error
}

type Freelancers interface {
	// GetFreelancerByID fetches a freelancer namespace by id (the uid).
	GetFreelancerByID(ctx context.Context, id string) (domain.Freelancer, error)

	// CreateFreelancer inserts a freelancer namespace row.
	CreateFreelancer(ctx context.Context, f domain.Freelancer) error
}

type BackupCodes interface {
	// ListBackupCodes returns the user's unused codes in issue order.
	ListBackupCodes(ctx context.Context, userID string) ([]domain.BackupCode, error)

	// DeleteBackupCode removes a single code after successful use.
	DeleteBackupCode(ctx context.Context, id string) error

	// DeleteAllBackupCodes removes all backup codes for a user.
	DeleteAllBackupCodes(ctx context.Context, userID string) error

	// CountUserBackupCodes returns the number of unused codes for a user.
	CountUserBackupCodes(ctx context.Context, userID string) (int, error)
}
