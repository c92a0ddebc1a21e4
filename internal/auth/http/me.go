package http

import (
	"encoding/json"
	"net/http"

	"github.com/crewplane/crewplane/internal/auth/domain"
	"github.com/crewplane/crewplane/internal/auth/service"
	"github.com/crewplane/crewplane/pkg/coresdk"
	"github.com/crewplane/crewplane/pkg/httpx"
	"github.com/crewplane/crewplane/pkg/jwtx"
	"github.com/crewplane/crewplane/pkg/slogx"
)

// MeHandler serves the caller-identity endpoints.
type MeHandler struct {
	UserService *service.UserService
	MFAService  *service.MFAService
}

// HandleMe handles GET /v1/me
//
//	@Summary		Caller identity
//	@Description	Returns the authenticated caller's identity and MFA state. Creates the local user record on first contact.
//	@Tags			Me
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	coresdk.MeResponse		"caller identity and MFA state"
//	@Failure		401	{object}	coresdk.ErrorResponse	"invalid or missing session token"
//	@Failure		500	{object}	coresdk.ErrorResponse	"internal server error"
//	@Router			/v1/me [get].
func (h *MeHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	uid, ok := ctx.Value(httpx.CtxKeyUserID).(string)
	if !ok || uid == "" {
		coresdk.ErrInvalidToken.WriteError(w)
		return
	}
	claims, _ := ctx.Value(httpx.CtxKeyClaims).(jwtx.Claims)

	// First authenticated contact creates the local record; the identity
	// provider owns uid and email.
	if err := h.UserService.EnsureUser(ctx, uid, claims.Email); err != nil {
		log.Error("failed to ensure user", "uid", uid, "err", err)
		coresdk.ErrServerError.WriteError(w)
		return
	}

	user, err := h.UserService.GetUserByID(ctx, uid)
	if err != nil {
		log.Error("failed to load user", "uid", uid, "err", err)
		coresdk.ErrServerError.WriteError(w)
		return
	}

	codesLeft, err := h.MFAService.BackupCodesRemaining(ctx, uid)
	if err != nil {
		log.Error("failed to count backup codes", "uid", uid, "err", err)
		coresdk.ErrServerError.WriteError(w)
		return
	}

	actor, _ := ctx.Value(httpx.CtxKeyActor).(string)
	if actor == "" {
		actor = jwtx.ActorMember
	}

	httpx.WriteJSON(w, http.StatusOK, coresdk.MeResponse{
		UID:                user.ID,
		Email:              user.Email,
		Actor:              actor,
		MFAEnabled:         user.MFAEnabled(),
		MFASetupState:      string(user.MFASetupState),
		MFASessionVerified: user.MFASessionVerified,
		BackupCodesLeft:    codesLeft,
	})
}

// HandleTenant handles GET /v1/me/tenant
//
//	@Summary		Resolved tenant context
//	@Description	Returns the tenant context the gate resolved for this request: tenant identity, membership role and effective entitlements.
//	@Tags			Me
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	coresdk.TenantContextResponse	"resolved tenant context"
//	@Failure		401	{object}	coresdk.ErrorResponse			"invalid or missing session token"
//	@Failure		403	{object}	coresdk.ErrorResponse			"no membership or MFA required"
//	@Router			/v1/me/tenant [get].
func (h *MeHandler) HandleTenant(w http.ResponseWriter, r *http.Request) {
	tc, ok := TenantContextFrom(r.Context())
	if !ok {
		coresdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, coresdk.TenantContextResponse{
		TenantID:     tc.TenantID,
		TenantName:   tc.TenantName,
		Role:         string(tc.Role),
		Entitlements: rawEntitlementMap(tc.Entitlements),
	})
}

// HandleEntitlements handles GET /v1/me/entitlements
//
//	@Summary		Effective entitlement map
//	@Description	Returns the caller's effective entitlements: the tenant's map for members, the freelancer's own map for freelancer sessions.
//	@Tags			Me
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	coresdk.EntitlementsResponse	"effective entitlement map"
//	@Failure		401	{object}	coresdk.ErrorResponse			"invalid or missing session token"
//	@Failure		403	{object}	coresdk.ErrorResponse			"no membership or MFA required"
//	@Router			/v1/me/entitlements [get].
func (h *MeHandler) HandleEntitlements(w http.ResponseWriter, r *http.Request) {
	tc, ok := TenantContextFrom(r.Context())
	if !ok {
		coresdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, coresdk.EntitlementsResponse{
		OwnerKind:    string(tc.OwnerKind),
		OwnerID:      tc.OwnerID,
		Entitlements: rawEntitlementMap(tc.Entitlements),
	})
}

// rawEntitlementMap renders a domain entitlement map as raw JSON scalars
// for the wire types.
func rawEntitlementMap(m domain.EntitlementMap) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(m))
	for k, v := range m {
		data, err := json.Marshal(v)
		if err != nil {
			continue
		}
		out[k] = data
	}
	return out
}
