package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/crewplane/crewplane/internal/auth/domain"
	"github.com/crewplane/crewplane/internal/auth/staff"
	"github.com/crewplane/crewplane/internal/auth/store"
	"github.com/crewplane/crewplane/pkg/slogx"
)

// Resolution is the working context handed to tenant-scoped request
// handling: the tenant, the caller's membership in it, and the tenant's
// effective entitlement map.
type Resolution struct {
	Tenant       domain.Tenant
	Membership   domain.Membership
	Entitlements domain.EntitlementMap
}

// ResolverService turns a bare uid into tenant context. The user's
// defaultTenantId is only a cache; every path below re-proves membership
// before trusting it.
type ResolverService struct {
	Store store.Store
	Staff staff.Verifier

	// SandboxTenantID is the reserved internal demo/test tenant. Regular
	// accounts never land there; only verified platform staff may resolve
	// into it, and only when they hold no normal membership.
	SandboxTenantID string
}

// ResolveTenantForUser resolves the active tenant for uid.
//
// The fast path validates the cached pointer with a single membership
// point-read. The fallback scans the user's memberships in tenant id order
// and applies the sandbox tie-break before repairing the cache. Both
// self-healing writes are best-effort: a failed write never aborts a read
// that already determined the correct tenant.
//
// Returns ErrNoMembership when the user belongs to no tenant the policy
// lets them use.
func (s *ResolverService) ResolveTenantForUser(ctx context.Context, uid string) (Resolution, error) {
	log := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByID(ctx, uid)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Resolution{}, ErrNoMembership
		}
		return Resolution{}, fmt.Errorf("failed to load user: %w", err)
	}

	// Validate the cached pointer with a membership point-read.
	tenantID := ""
	if user.DefaultTenantID != nil && *user.DefaultTenantID != "" {
		cachedID := *user.DefaultTenantID

		_, err := s.Store.Memberships().GetMembership(ctx, cachedID, uid)
		switch {
		case err == nil:
			tenantID = cachedID
		case errors.Is(err, store.ErrNotFound):
			// Stale cache. Clear it off the request path; the guarded
			// clear cannot clobber a concurrent repair to a new tenant.
			go func(ctx context.Context) {
				if err := s.Store.Users().ClearDefaultTenantIf(ctx, uid, cachedID); err != nil {
					log.Warn("failed to clear stale default tenant",
						"uid", uid, "tenant_id", cachedID, "error", err)
				}
			}(context.WithoutCancel(ctx))
		default:
			return Resolution{}, fmt.Errorf("failed to validate cached tenant: %w", err)
		}
	}

	// Fallback scan over the user's memberships.
	if tenantID == "" {
		tenantID, err = s.scanForTenant(ctx, uid)
		if err != nil {
			return Resolution{}, err
		}

		// Repair the cache so the next resolution takes the fast path.
		// Concurrent resolutions race here harmlessly: both compute the
		// same tenant and the write is idempotent.
		if err := s.Store.Users().SetDefaultTenant(ctx, uid, &tenantID); err != nil {
			log.Warn("failed to write back default tenant",
				"uid", uid, "tenant_id", tenantID, "error", err)
		}
	}

	// Reload both records under the resolved id. The pointer or the scan
	// result may have gone stale between the check and now.
	tenant, err := s.Store.Tenants().GetTenantByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Resolution{}, ErrNoMembership
		}
		return Resolution{}, fmt.Errorf("failed to load tenant: %w", err)
	}

	membership, err := s.Store.Memberships().GetMembership(ctx, tenantID, uid)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Membership vanished between validation and use. Drop the
			// pointer if it still names this tenant so the next call
			// rescans.
			if clearErr := s.Store.Users().ClearDefaultTenantIf(ctx, uid, tenantID); clearErr != nil {
				log.Warn("failed to clear raced default tenant",
					"uid", uid, "tenant_id", tenantID, "error", clearErr)
			}
			return Resolution{}, ErrNoMembership
		}
		return Resolution{}, fmt.Errorf("failed to load membership: %w", err)
	}

	entitlements, err := loadEntitlementMap(ctx, s.Store.Entitlements(), domain.OwnerTenant, tenantID)
	if err != nil {
		return Resolution{}, fmt.Errorf("failed to load entitlements: %w", err)
	}

	return Resolution{
		Tenant:       tenant,
		Membership:   membership,
		Entitlements: entitlements,
	}, nil
}

// scanForTenant walks the user's memberships in tenant id order and picks a
// tenant per the sandbox tie-break policy.
func (s *ResolverService) scanForTenant(ctx context.Context, uid string) (string, error) {
	log := slogx.FromContext(ctx)

	memberships, err := s.Store.Memberships().ListMembershipsByUser(ctx, uid)
	if err != nil {
		return "", fmt.Errorf("failed to scan memberships: %w", err)
	}

	var firstNormal, sandbox *domain.Membership
	for i := range memberships {
		m := &memberships[i]
		if s.SandboxTenantID != "" && m.TenantID == s.SandboxTenantID {
			sandbox = m
			continue
		}
		if firstNormal == nil {
			firstNormal = m
		}
	}

	// A normal tenant always outranks the sandbox.
	if firstNormal != nil {
		return firstNormal.TenantID, nil
	}

	if sandbox == nil {
		return "", ErrNoMembership
	}

	isStaff, err := s.Staff.IsVerifiedPlatformStaff(ctx, uid)
	if err != nil {
		// Cannot prove staff status, so sandbox access cannot be granted.
		return "", fmt.Errorf("failed to verify staff status: %w", err)
	}
	if isStaff {
		return sandbox.TenantID, nil
	}

	// A non-staff account inside the sandbox tenant means someone added a
	// regular user to an internal tenant. Deny the sandbox and degrade to
	// the first non-sandbox membership; with none found the resolution
	// fails outright.
	slogx.Security(log).Error("non-staff user holds sandbox tenant membership",
		"uid", uid, "sandbox_tenant_id", s.SandboxTenantID)

	return "", ErrNoMembership
}

// loadEntitlementMap flattens an owner's entitlement rows into a key->value
// map. Rows arrive ordered by key then id, so when legacy duplicates exist
// the oldest row wins, matching FindByOwnerAndKey.
func loadEntitlementMap(
	ctx context.Context,
	repo store.Entitlements,
	kind domain.OwnerKind,
	ownerID string,
) (domain.EntitlementMap, error) {
	ents, err := repo.ListByOwner(ctx, kind, ownerID)
	if err != nil {
		return nil, err
	}

	m := make(domain.EntitlementMap, len(ents))
	for _, e := range ents {
		if _, ok := m[e.Key]; !ok {
			m[e.Key] = e.Value
		}
	}
	return m, nil
}
