package http

import (
	"net/http"
	"time"

	"github.com/crewplane/crewplane/pkg/coresdk"
	"github.com/crewplane/crewplane/pkg/httpx"
)

// RosterHandler is the reference consumer of the gate's downstream
// contract. Roster data itself lives in the workforce service; this route
// exists so every gated product route has a worked example of reading the
// attached tenant context.
type RosterHandler struct{}

// HandleToday handles GET /v1/roster/today
//
//	@Summary		Today's roster
//	@Description	Entitlement-gated route requiring module.roster. Demonstrates consumption of the resolved tenant context.
//	@Tags			Roster
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	coresdk.RosterResponse	"roster context"
//	@Failure		401	{object}	coresdk.ErrorResponse	"invalid or missing session token"
//	@Failure		403	{object}	coresdk.ErrorResponse	"no membership, missing entitlement or MFA required"
//	@Router			/v1/roster/today [get].
func (h *RosterHandler) HandleToday(w http.ResponseWriter, r *http.Request) {
	tc, ok := TenantContextFrom(r.Context())
	if !ok {
		coresdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, coresdk.RosterResponse{
		TenantID:   tc.TenantID,
		TenantName: tc.TenantName,
		Date:       time.Now().UTC().Format("2006-01-02"),
		Shifts:     []string{},
	})
}
