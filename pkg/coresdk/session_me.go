package coresdk

import "context"

// Me returns the caller's identity and MFA state.
func (s *Session) Me(ctx context.Context) (MeResponse, error) {
	var out MeResponse
	err := s.get(ctx, "/v1/me", &out)
	return out, err
}

// TenantContext resolves the caller's active tenant: identity, role and
// effective entitlements. Returns ErrNoMembership (as an APIError) when
// the caller belongs to no tenant.
func (s *Session) TenantContext(ctx context.Context) (TenantContextResponse, error) {
	var out TenantContextResponse
	err := s.get(ctx, "/v1/me/tenant", &out)
	return out, err
}

// Entitlements returns the caller's effective entitlement map: the tenant's
// for members, the freelancer's own for freelancer sessions.
func (s *Session) Entitlements(ctx context.Context) (EntitlementsResponse, error) {
	var out EntitlementsResponse
	err := s.get(ctx, "/v1/me/entitlements", &out)
	return out, err
}

// RosterToday calls the entitlement-gated roster route. It requires the
// "module.roster" entitlement and a verified MFA session where the tenant
// mandates one.
func (s *Session) RosterToday(ctx context.Context) (RosterResponse, error) {
	var out RosterResponse
	err := s.get(ctx, "/v1/roster/today", &out)
	return out, err
}
