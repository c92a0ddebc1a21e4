package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/crewplane/crewplane/internal/auth/domain"
	"github.com/crewplane/crewplane/internal/auth/service"
	"github.com/crewplane/crewplane/internal/auth/store"
	"github.com/crewplane/crewplane/pkg/coresdk"
	"github.com/crewplane/crewplane/pkg/httpx"
	"github.com/crewplane/crewplane/pkg/slogx"
)

// EntitlementAdminHandler serves the staff-only feature-flag administration
// surface for tenant and freelancer namespaces. Writers go through the
// search-then-update service so a key never grows a second row.
type EntitlementAdminHandler struct {
	EntitlementService *service.EntitlementService
	TenantService      *service.TenantService
	FreelancerService  *service.FreelancerService
}

// HandleList handles GET /v1/tenants/{id}/entitlements and
// GET /v1/freelancers/{id}/entitlements
//
//	@Summary		List entitlements
//	@Description	Returns the owner's effective entitlement rows, one per key, in key order.
//	@Tags			Entitlements
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string	true	"tenant or freelancer id"
//	@Success		200	{array}		coresdk.EntitlementResponse	"effective entitlement rows"
//	@Failure		403	{object}	coresdk.ErrorResponse		"not verified platform staff"
//	@Failure		404	{object}	coresdk.ErrorResponse		"owner does not exist"
//	@Router			/v1/tenants/{id}/entitlements [get].
func (h *EntitlementAdminHandler) HandleList(kind domain.OwnerKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := slogx.FromContext(ctx)

		ownerID := r.PathValue("id")
		if !h.ownerExists(w, r, kind, ownerID) {
			return
		}

		ents, err := h.EntitlementService.ListEffective(ctx, kind, ownerID)
		if err != nil {
			log.Error("failed to list entitlements", "owner_kind", kind, "owner_id", ownerID, "err", err)
			coresdk.ErrServerError.WriteError(w)
			return
		}

		out := make([]coresdk.EntitlementResponse, 0, len(ents))
		for _, e := range ents {
			out = append(out, toEntitlementResponse(e))
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

// HandlePut handles PUT /v1/tenants/{id}/entitlements/{key} and
// PUT /v1/freelancers/{id}/entitlements/{key}
//
//	@Summary		Set an entitlement
//	@Description	Sets a feature flag to a bool, string or number value. Updates the existing row for the key when one exists.
//	@Tags			Entitlements
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"tenant or freelancer id"
//	@Param			key		path		string							true	"feature key"
//	@Param			request	body		coresdk.EntitlementPutRequest	true	"flag value"
//	@Success		200		{object}	coresdk.EntitlementResponse		"the effective row"
//	@Failure		400		{object}	coresdk.ErrorResponse			"value is not a supported scalar"
//	@Failure		403		{object}	coresdk.ErrorResponse			"not verified platform staff"
//	@Failure		404		{object}	coresdk.ErrorResponse			"owner does not exist"
//	@Router			/v1/tenants/{id}/entitlements/{key} [put].
func (h *EntitlementAdminHandler) HandlePut(kind domain.OwnerKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := slogx.FromContext(ctx)

		ownerID := r.PathValue("id")
		key := r.PathValue("key")
		if !h.ownerExists(w, r, kind, ownerID) {
			return
		}

		var req coresdk.EntitlementPutRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			coresdk.ErrInvalidRequest.WriteError(w)
			return
		}

		var value domain.Value
		if err := json.Unmarshal(req.Value, &value); err != nil {
			writeServiceError(w, http.StatusBadRequest, coresdk.ErrorCodeInvalidRequest,
				"value must be a JSON bool, string or number")
			return
		}

		ent, err := h.EntitlementService.Grant(ctx, kind, ownerID, key, value)
		if err != nil {
			if errors.Is(err, service.ErrInvalidEntitlementKey) {
				writeServiceError(w, http.StatusBadRequest, coresdk.ErrorCodeInvalidRequest,
					"entitlement key must not be empty")
				return
			}
			log.Error("failed to grant entitlement", "owner_kind", kind, "owner_id", ownerID, "key", key, "err", err)
			coresdk.ErrServerError.WriteError(w)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, toEntitlementResponse(ent))
	}
}

// HandleDelete handles DELETE /v1/tenants/{id}/entitlements/{key} and
// DELETE /v1/freelancers/{id}/entitlements/{key}
//
//	@Summary		Revoke an entitlement
//	@Description	Removes every row carrying the key for the owner, including legacy duplicates.
//	@Tags			Entitlements
//	@Security		BearerAuth
//	@Param			id	path	string	true	"tenant or freelancer id"
//	@Param			key	path	string	true	"feature key"
//	@Success		204	"revoked"
//	@Failure		403	{object}	coresdk.ErrorResponse	"not verified platform staff"
//	@Failure		404	{object}	coresdk.ErrorResponse	"owner does not exist"
//	@Router			/v1/tenants/{id}/entitlements/{key} [delete].
func (h *EntitlementAdminHandler) HandleDelete(kind domain.OwnerKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := slogx.FromContext(ctx)

		ownerID := r.PathValue("id")
		key := r.PathValue("key")
		if !h.ownerExists(w, r, kind, ownerID) {
			return
		}

		if err := h.EntitlementService.Revoke(ctx, kind, ownerID, key); err != nil {
			if errors.Is(err, service.ErrInvalidEntitlementKey) {
				writeServiceError(w, http.StatusBadRequest, coresdk.ErrorCodeInvalidRequest,
					"entitlement key must not be empty")
				return
			}
			log.Error("failed to revoke entitlement", "owner_kind", kind, "owner_id", ownerID, "key", key, "err", err)
			coresdk.ErrServerError.WriteError(w)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// ownerExists verifies the addressed tenant or freelancer exists, writing
// the 404 itself when not. Grants must never create rows under ids that
// nothing else references.
func (h *EntitlementAdminHandler) ownerExists(w http.ResponseWriter, r *http.Request, kind domain.OwnerKind, ownerID string) bool {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var err error
	switch kind {
	case domain.OwnerTenant:
		_, err = h.TenantService.GetTenantByID(ctx, ownerID)
	case domain.OwnerFreelancer:
		_, err = h.FreelancerService.GetFreelancerByID(ctx, ownerID)
	}
	if err == nil {
		return true
	}
	if errors.Is(err, store.ErrNotFound) {
		coresdk.ErrNotFound.WriteError(w)
		return false
	}
	log.Error("failed to load entitlement owner", "owner_kind", kind, "owner_id", ownerID, "err", err)
	coresdk.ErrServerError.WriteError(w)
	return false
}

func toEntitlementResponse(e domain.Entitlement) coresdk.EntitlementResponse {
	value, _ := json.Marshal(e.Value)
	return coresdk.EntitlementResponse{
		Key:       e.Key,
		Value:     value,
		GrantedAt: e.GrantedAt.UTC().Format(time.RFC3339),
	}
}
