package coresdk

import (
	"context"
	"encoding/json"
	"net/url"
)

// Entitlement administration endpoints. Restricted to verified platform
// staff; non-staff sessions receive a staff_only rejection.

// ListTenantEntitlements returns a tenant's effective entitlement rows.
func (s *Session) ListTenantEntitlements(ctx context.Context, tenantID string) ([]EntitlementResponse, error) {
	var out []EntitlementResponse
	err := s.get(ctx, "/v1/tenants/"+url.PathEscape(tenantID)+"/entitlements", &out)
	return out, err
}

// PutTenantEntitlement sets a tenant feature flag. The server updates the
// existing row for the key when one exists rather than inserting a second.
func (s *Session) PutTenantEntitlement(ctx context.Context, tenantID, key string, value json.RawMessage) (EntitlementResponse, error) {
	var out EntitlementResponse
	path := "/v1/tenants/" + url.PathEscape(tenantID) + "/entitlements/" + url.PathEscape(key)
	err := s.put(ctx, path, EntitlementPutRequest{Value: value}, &out)
	return out, err
}

// DeleteTenantEntitlement revokes a tenant feature flag.
func (s *Session) DeleteTenantEntitlement(ctx context.Context, tenantID, key string) error {
	return s.delete(ctx, "/v1/tenants/"+url.PathEscape(tenantID)+"/entitlements/"+url.PathEscape(key))
}

// ListFreelancerEntitlements returns a freelancer's entitlement rows.
func (s *Session) ListFreelancerEntitlements(ctx context.Context, freelancerID string) ([]EntitlementResponse, error) {
	var out []EntitlementResponse
	err := s.get(ctx, "/v1/freelancers/"+url.PathEscape(freelancerID)+"/entitlements", &out)
	return out, err
}

// PutFreelancerEntitlement sets a freelancer feature flag.
func (s *Session) PutFreelancerEntitlement(ctx context.Context, freelancerID, key string, value json.RawMessage) (EntitlementResponse, error) {
	var out EntitlementResponse
	path := "/v1/freelancers/" + url.PathEscape(freelancerID) + "/entitlements/" + url.PathEscape(key)
	err := s.put(ctx, path, EntitlementPutRequest{Value: value}, &out)
	return out, err
}

// DeleteFreelancerEntitlement revokes a freelancer feature flag.
func (s *Session) DeleteFreelancerEntitlement(ctx context.Context, freelancerID, key string) error {
	return s.delete(ctx, "/v1/freelancers/"+url.PathEscape(freelancerID)+"/entitlements/"+url.PathEscape(key))
}
