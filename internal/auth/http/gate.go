package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/crewplane/crewplane/internal/auth/domain"
	"github.com/crewplane/crewplane/internal/auth/service"
	"github.com/crewplane/crewplane/internal/auth/staff"
	"github.com/crewplane/crewplane/internal/auth/store"
	"github.com/crewplane/crewplane/pkg/coresdk"
	"github.com/crewplane/crewplane/pkg/httpx"
	"github.com/crewplane/crewplane/pkg/jwtx"
	"github.com/crewplane/crewplane/pkg/slogx"
)

type ctxKey string

const ctxKeyTenantContext ctxKey = "tenant_context"

// TenantContext is the resolved request context the gate attaches for
// downstream handlers. For member sessions it carries the tenant; for
// freelancer sessions the owner fields address the freelancer namespace
// and the tenant fields are empty.
type TenantContext struct {
	TenantID   string
	TenantName string
	Role       domain.MembershipRole

	OwnerKind    domain.OwnerKind
	OwnerID      string
	Entitlements domain.EntitlementMap
}

// TenantContextFrom extracts the resolved context attached by RequireTenant.
func TenantContextFrom(ctx context.Context) (TenantContext, bool) {
	tc, ok := ctx.Value(ctxKeyTenantContext).(TenantContext)
	return tc, ok
}

// Gate is the per-request admission pipeline: tenant resolution, entitlement
// checks and the MFA session gate. Every rejection it emits is typed; an
// unexpected fault is always a rejection, never a silent pass.
type Gate struct {
	Resolver    *service.ResolverService
	Freelancers *service.FreelancerService
	Users       *service.UserService
	MFA         *service.MFAService
	Staff       staff.Verifier
}

// RequireTenant resolves the caller's active namespace and attaches it to
// the request context. Member sessions resolve a tenant; freelancer
// sessions resolve the freelancer's own entitlement namespace. Callers with
// nothing to resolve are rejected with no_membership.
func (g *Gate) RequireTenant() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			uid, ok := ctx.Value(httpx.CtxKeyUserID).(string)
			if !ok || uid == "" {
				coresdk.ErrInvalidToken.WriteError(w)
				return
			}

			tc, err := g.resolveContext(ctx, uid)
			if err != nil {
				if errors.Is(err, service.ErrNoMembership) {
					coresdk.ErrNoMembership.WriteError(w)
					return
				}
				log.Error("tenant resolution failed", "uid", uid, "err", err)
				coresdk.ErrServerError.WriteError(w)
				return
			}

			ctx = context.WithValue(ctx, ctxKeyTenantContext, tc)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireEntitlements rejects the request unless every listed key is
// granted in the attached entitlement map. The rejection names all missing
// keys. Must sit inside RequireTenant.
func (g *Gate) RequireEntitlements(keys ...string) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tc, ok := TenantContextFrom(r.Context())
			if !ok {
				// Route misconfiguration; fail closed rather than admit.
				coresdk.ErrServerError.WriteError(w)
				return
			}

			if missing := tc.Entitlements.MissingKeys(keys...); len(missing) > 0 {
				(&coresdk.MissingEntitlementError{Keys: missing}).WriteError(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// MFAGate enforces the per-session MFA verification state on every
// non-exempt authenticated route.
//
// The gate first reconciles the session-verified flag against the
// credential's issued-at, then branches on account class: verified staff
// are checked against their stored secret (a missing or auto-repaired
// secret passes); normal callers are checked only when their resolved
// namespace grants the MFA module and they have MFA enabled. Any
// unexpected fault rejects with mfa_check_failed.
func (g *Gate) MFAGate() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			uid, ok := ctx.Value(httpx.CtxKeyUserID).(string)
			if !ok || uid == "" {
				coresdk.ErrInvalidToken.WriteError(w)
				return
			}

			issuedAt := issuedAtFromContext(ctx)
			if err := g.MFA.CheckAndResetForNewSession(ctx, uid, issuedAt); err != nil {
				log.Error("MFA session reconciliation failed", "uid", uid, "err", err)
				coresdk.ErrMFACheckFailed.WriteError(w)
				return
			}

			verdict, err := g.mfaVerdict(ctx, uid)
			if err != nil {
				log.Error("MFA gate check failed", "uid", uid, "err", err)
				coresdk.ErrMFACheckFailed.WriteError(w)
				return
			}
			if !verdict {
				coresdk.ErrMFARequired.WriteError(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// mfaVerdict reports whether the session may proceed. An error means the
// state could not be determined and the caller must fail closed.
func (g *Gate) mfaVerdict(ctx context.Context, uid string) (bool, error) {
	// Reload after the session reconciliation so a just-cleared flag is
	// observed.
	user, err := g.Users.GetUserByID(ctx, uid)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// First contact; nothing enrolled yet.
			return true, nil
		}
		return false, err
	}

	isStaff, err := g.Staff.IsVerifiedPlatformStaff(ctx, uid)
	if err != nil {
		return false, err
	}

	if isStaff {
		if !user.MFAEnabled() {
			return true, nil
		}
		secret, err := g.MFA.GetSecret(ctx, uid)
		if err != nil {
			return false, err
		}
		// A nil secret here includes the staff auto-repair outcome: the
		// enrollment was reset, so there is nothing left to verify against.
		if secret == "" {
			return true, nil
		}
		return user.MFASessionVerified, nil
	}

	// Normal callers: MFA is mandated per namespace via the module.mfa
	// entitlement. A caller who resolves nowhere is mid-onboarding and
	// passes through.
	tc, err := g.resolveContext(ctx, uid)
	if err != nil {
		if errors.Is(err, service.ErrNoMembership) {
			return true, nil
		}
		return false, err
	}
	if !tc.Entitlements.Granted(domain.EntitlementMFA) {
		return true, nil
	}
	if !user.MFAEnabled() {
		return true, nil
	}
	return user.MFASessionVerified, nil
}

// RequireStaff restricts a route to verified platform staff. A verifier
// fault is a rejection, not a pass.
func (g *Gate) RequireStaff() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			uid, ok := ctx.Value(httpx.CtxKeyUserID).(string)
			if !ok || uid == "" {
				coresdk.ErrInvalidToken.WriteError(w)
				return
			}

			isStaff, err := g.Staff.IsVerifiedPlatformStaff(ctx, uid)
			if err != nil {
				log.Error("staff verification failed", "uid", uid, "err", err)
				coresdk.ErrServerError.WriteError(w)
				return
			}
			if !isStaff {
				coresdk.ErrStaffOnly.WriteError(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// resolveContext picks the namespace for uid based on the session's actor
// claim: freelancer sessions resolve their own entitlement namespace,
// member sessions resolve a tenant.
func (g *Gate) resolveContext(ctx context.Context, uid string) (TenantContext, error) {
	if actor, _ := ctx.Value(httpx.CtxKeyActor).(string); actor == jwtx.ActorFreelancer {
		if _, err := g.Freelancers.GetFreelancerByID(ctx, uid); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return TenantContext{}, service.ErrNoMembership
			}
			return TenantContext{}, err
		}
		ents, err := g.Freelancers.Entitlements(ctx, uid)
		if err != nil {
			return TenantContext{}, err
		}
		return TenantContext{
			OwnerKind:    domain.OwnerFreelancer,
			OwnerID:      uid,
			Entitlements: ents,
		}, nil
	}

	res, err := g.Resolver.ResolveTenantForUser(ctx, uid)
	if err != nil {
		return TenantContext{}, err
	}
	return TenantContext{
		TenantID:     res.Tenant.ID,
		TenantName:   res.Tenant.Name,
		Role:         res.Membership.Role,
		OwnerKind:    domain.OwnerTenant,
		OwnerID:      res.Tenant.ID,
		Entitlements: res.Entitlements,
	}, nil
}

// issuedAtFromContext pulls the session token's iat claim, nil when the
// provider omitted it. The MFA session check treats absence conservatively.
func issuedAtFromContext(ctx context.Context) *time.Time {
	claims, ok := ctx.Value(httpx.CtxKeyClaims).(jwtx.Claims)
	if !ok {
		return nil
	}
	return claims.IssuedAtTime()
}
