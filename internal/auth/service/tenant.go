package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/crewplane/crewplane/internal/auth/domain"
	"github.com/crewplane/crewplane/internal/auth/store"
	"github.com/crewplane/crewplane/pkg/idx"
)

var (
	ErrInvalidTenantName = errors.New("invalid_tenant_name")
	ErrInvalidRole       = errors.New("invalid_role")
	ErrAlreadyMember     = errors.New("already_member")
)

// TenantService manages tenants and their memberships.
type TenantService struct {
	Store store.Store
}

// CreateTenant creates a tenant and makes the creator its first admin in
// one transaction, so a tenant can never exist without an admin.
func (s *TenantService) CreateTenant(ctx context.Context, name, creatorUID, creatorEmail string) (domain.Tenant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Tenant{}, ErrInvalidTenantName
	}

	tenant := domain.Tenant{
		ID:        idx.New().String(),
		Name:      name,
		CreatedBy: creatorUID,
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Tenants().CreateTenant(ctx, tenant); err != nil {
			return fmt.Errorf("failed to create tenant: %w", err)
		}
		membership := domain.Membership{
			TenantID: tenant.ID,
			UID:      creatorUID,
			Email:    creatorEmail,
			Role:     domain.RoleAdmin,
		}
		if err := tx.Memberships().CreateMembership(ctx, membership); err != nil {
			return fmt.Errorf("failed to create admin membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Tenant{}, err
	}
	return tenant, nil
}

// GetTenantByID fetches a tenant by id.
func (s *TenantService) GetTenantByID(ctx context.Context, tenantID string) (domain.Tenant, error) {
	return s.Store.Tenants().GetTenantByID(ctx, tenantID)
}

// DeleteTenant removes the tenant, its memberships and its entitlements.
// Stale defaultTenantId pointers left behind are harmless: resolution
// re-proves membership, and the janitor sweeps them up.
func (s *TenantService) DeleteTenant(ctx context.Context, tenantID string) error {
	return s.Store.Tenants().DeleteTenant(ctx, tenantID)
}

// AddMember adds uid to the tenant with the given role.
func (s *TenantService) AddMember(ctx context.Context, tenantID, uid, email string, role domain.MembershipRole) (domain.Membership, error) {
	if !role.Valid() {
		return domain.Membership{}, ErrInvalidRole
	}

	if _, err := s.Store.Tenants().GetTenantByID(ctx, tenantID); err != nil {
		return domain.Membership{}, fmt.Errorf("failed to load tenant: %w", err)
	}

	_, err := s.Store.Memberships().GetMembership(ctx, tenantID, uid)
	if err == nil {
		return domain.Membership{}, ErrAlreadyMember
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.Membership{}, fmt.Errorf("failed to check membership: %w", err)
	}

	membership := domain.Membership{
		TenantID: tenantID,
		UID:      uid,
		Email:    email,
		Role:     role,
	}
	if err := s.Store.Memberships().CreateMembership(ctx, membership); err != nil {
		return domain.Membership{}, fmt.Errorf("failed to create membership: %w", err)
	}
	return membership, nil
}

// RemoveMember deletes uid's membership in the tenant. If the user's cached
// pointer still names this tenant it is cleared, so their next request
// rescans instead of tripping over the gone membership.
func (s *TenantService) RemoveMember(ctx context.Context, tenantID, uid string) error {
	if err := s.Store.Memberships().DeleteMembership(ctx, tenantID, uid); err != nil {
		return fmt.Errorf("failed to delete membership: %w", err)
	}
	if err := s.Store.Users().ClearDefaultTenantIf(ctx, uid, tenantID); err != nil {
		return fmt.Errorf("failed to clear default tenant: %w", err)
	}
	return nil
}

// ListMembers returns the tenant's memberships in join order.
func (s *TenantService) ListMembers(ctx context.Context, tenantID string) ([]domain.Membership, error) {
	return s.Store.Memberships().ListMembershipsByTenant(ctx, tenantID)
}
