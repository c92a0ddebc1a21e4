// Package staff answers one question: is this uid verified platform staff?
//
// Staff status gates the sandbox-tenant tie-break, the corrupted-secret
// auto-repair path and the entitlement admin surface. The answer lives
// outside this service, so callers get an interface and pick a backend:
// a static allowlist for dev and small deploys, or the staff directory
// service over HTTP.
package staff

import "context"

// Verifier reports whether a uid belongs to verified platform staff.
type Verifier interface {
	IsVerifiedPlatformStaff(ctx context.Context, uid string) (bool, error)
}

// StaticVerifier is a fixed allowlist of staff uids.
type StaticVerifier struct {
	uids map[string]struct{}
}

// NewStaticVerifier builds a verifier from a list of staff uids.
func NewStaticVerifier(uids []string) *StaticVerifier {
	set := make(map[string]struct{}, len(uids))
	for _, uid := range uids {
		if uid != "" {
			set[uid] = struct{}{}
		}
	}
	return &StaticVerifier{uids: set}
}

func (v *StaticVerifier) IsVerifiedPlatformStaff(_ context.Context, uid string) (bool, error) {
	_, ok := v.uids[uid]
	return ok, nil
}
