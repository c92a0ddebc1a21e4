package coresdk

import "encoding/json"

// ErrorResponse is the standard error body shape.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// HealthChecks reports the status of critical dependencies.
type HealthChecks struct {
	Database string `json:"database,omitempty"`
	Verifier string `json:"verifier,omitempty"`
}

// HealthResponse is returned by the /livez and /readyz endpoints.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// MeResponse describes the caller's identity and MFA state.
type MeResponse struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Actor string `json:"actor"` // "member" or "freelancer"

	MFAEnabled         bool   `json:"mfa_enabled"`
	MFASetupState      string `json:"mfa_setup_state"` // none, pending, confirmed
	MFASessionVerified bool   `json:"mfa_session_verified"`
	BackupCodesLeft    int    `json:"backup_codes_left"`
}

// TenantContextResponse is the resolved tenant context the gate attaches
// for downstream handlers: tenant identity, the caller's role in it, and
// the effective entitlement map.
type TenantContextResponse struct {
	TenantID     string                     `json:"tenant_id"`
	TenantName   string                     `json:"tenant_name"`
	Role         string                     `json:"role,omitempty"`
	Entitlements map[string]json.RawMessage `json:"entitlements"`
}

// EntitlementsResponse is the flat key -> value entitlement map for the
// caller's active namespace (tenant or freelancer).
type EntitlementsResponse struct {
	OwnerKind    string                     `json:"owner_kind"` // "tenant" or "freelancer"
	OwnerID      string                     `json:"owner_id"`
	Entitlements map[string]json.RawMessage `json:"entitlements"`
}

// MFAEnrollResponse carries the enrollment material, shown exactly once.
type MFAEnrollResponse struct {
	Secret      string   `json:"secret"`       // base32 TOTP secret
	OTPAuthURL  string   `json:"otpauth_url"`  // for authenticator apps
	QRCodePNG   string   `json:"qr_code_png"`  // base64-encoded PNG
	BackupCodes []string `json:"backup_codes"` // plaintext one-time codes
}

// MFAActivateRequest confirms a pending enrollment with a TOTP code.
type MFAActivateRequest struct {
	Code string `json:"code"`
}

// MFAVerifyRequest is the per-session MFA challenge. Code may be a TOTP
// code or an unused backup code; TOTP is tried first.
type MFAVerifyRequest struct {
	Code string `json:"code"`
}

// MFADisableRequest turns MFA off after one more code check.
type MFADisableRequest struct {
	Code string `json:"code"`
}

// MFAStatusResponse reports the outcome of an MFA state change.
type MFAStatusResponse struct {
	Message string `json:"message"`
}

// EntitlementResponse is one effective entitlement row.
type EntitlementResponse struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	GrantedAt string          `json:"granted_at"`
}

// EntitlementPutRequest sets a feature flag value. The value must be a JSON
// bool, string or number; null, objects and arrays are rejected.
type EntitlementPutRequest struct {
	Value json.RawMessage `json:"value"`
}

// RosterResponse is the demonstration payload of the entitlement-gated
// roster route, echoing the tenant context the gate resolved.
type RosterResponse struct {
	TenantID   string   `json:"tenant_id"`
	TenantName string   `json:"tenant_name"`
	Date       string   `json:"date"`
	Shifts     []string `json:"shifts"`
}
