package coresdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/crewplane/crewplane/pkg/httpx"
)

// Error codes emitted by the authorization core. Every rejection is explicit
// and typed; a consumer can always tell "no tenant" from "tenant found but
// ineligible" from "system fault".
const (
	ErrorCodeInvalidRequest     = "invalid_request"
	ErrorCodeInvalidToken       = "invalid_token"
	ErrorCodeNoMembership       = "no_membership"
	ErrorCodeMissingEntitlement = "missing_entitlement"
	ErrorCodeMFARequired        = "mfa_required"
	ErrorCodeMFACheckFailed     = "mfa_check_failed"
	ErrorCodeMFASecretCorrupted = "mfa_secret_corrupted"
	ErrorCodeMFANotEnrolled     = "mfa_not_enrolled"
	ErrorCodeMFAAlreadyEnabled  = "mfa_already_enabled"
	ErrorCodeInvalidCode        = "invalid_code"
	ErrorCodeStaffOnly          = "staff_only"
	ErrorCodeNotFound           = "not_found"
	ErrorCodeServerError        = "server_error"
)

// APIError is the wire error shape for every rejection the service emits.
// It implements the error interface so the SDK can hand it straight back to
// callers, and WriteError so handlers produce it uniformly.
type APIError struct {
	// StatusCode is the HTTP status for this error. Not serialized; the
	// transport already carries it.
	StatusCode int `json:"-"`

	// Code is the machine-readable error code, e.g. "no_membership".
	Code string `json:"error"`

	// Description is a human-readable explanation.
	Description string `json:"error_description"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WriteError writes this APIError to an HTTP response writer.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteJSON(w, e.StatusCode, map[string]string{
		"error":             e.Code,
		"error_description": e.Description,
	})
}

var (
	// ErrInvalidRequest is returned for malformed request bodies or
	// parameters.
	ErrInvalidRequest = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request is malformed or missing required parameters",
	}

	// ErrInvalidToken is returned when the session token is missing,
	// invalid or expired.
	ErrInvalidToken = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidToken,
		Description: "the session token is missing, invalid or expired",
	}

	// ErrNoMembership is returned when the caller has no resolvable tenant.
	// A client-facing condition, not a server fault.
	ErrNoMembership = &APIError{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeNoMembership,
		Description: "the caller does not belong to any tenant",
	}

	// ErrMFARequired is returned when MFA is active but the current session
	// has not passed a verification check yet.
	ErrMFARequired = &APIError{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeMFARequired,
		Description: "multi-factor verification is required for this session",
	}

	// ErrMFACheckFailed is returned when the MFA gate hit an unexpected
	// fault. The gate fails closed; this is a rejection, never a pass.
	ErrMFACheckFailed = &APIError{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeMFACheckFailed,
		Description: "the multi-factor verification state could not be determined",
	}

	// ErrMFASecretCorrupted is returned when the stored MFA secret fails
	// format or authentication checks and the account is not eligible for
	// auto-repair. Requires a support-mediated reset.
	ErrMFASecretCorrupted = &APIError{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeMFASecretCorrupted,
		Description: "the stored multi-factor secret is unreadable; contact support",
	}

	// ErrStaffOnly is returned when a platform-staff endpoint is called by
	// a non-staff account.
	ErrStaffOnly = &APIError{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeStaffOnly,
		Description: "this endpoint is restricted to verified platform staff",
	}

	// ErrNotFound is returned when the addressed resource does not exist.
	ErrNotFound = &APIError{
		StatusCode:  http.StatusNotFound,
		Code:        ErrorCodeNotFound,
		Description: "the requested resource does not exist",
	}

	// ErrServerError is returned for unexpected internal faults.
	ErrServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "internal server error",
	}
)

// NewAPIError creates an APIError with a custom description.
func NewAPIError(statusCode int, code, description string) *APIError {
	return &APIError{
		StatusCode:  statusCode,
		Code:        code,
		Description: description,
	}
}

// MissingEntitlementError is returned when the resolved entitlement map
// lacks one or more keys a route requires. It names every missing key so
// clients see the whole gap at once instead of one 403 per key.
type MissingEntitlementError struct {
	Keys []string `json:"missing_keys"`
}

// Error implements the error interface.
func (e *MissingEntitlementError) Error() string {
	return fmt.Sprintf("missing entitlements: %v", e.Keys)
}

// WriteError writes the missing-entitlement rejection with the full key list.
func (e *MissingEntitlementError) WriteError(w http.ResponseWriter) {
	httpx.WriteJSON(w, http.StatusForbidden, map[string]any{
		"error":             ErrorCodeMissingEntitlement,
		"error_description": "the resolved tenant or freelancer lacks required entitlements",
		"missing_keys":      e.Keys,
	})
}

// parseErrorResponse turns a non-2xx HTTP response into a typed error.
// Returns nil for success responses.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	// missing_entitlement carries the key list alongside the standard shape.
	var missing struct {
		Error       string   `json:"error"`
		MissingKeys []string `json:"missing_keys"`
	}
	if err := json.Unmarshal(body, &missing); err == nil &&
		missing.Error == ErrorCodeMissingEntitlement && len(missing.MissingKeys) > 0 {
		return &MissingEntitlementError{Keys: missing.MissingKeys}
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
		}
	}

	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
