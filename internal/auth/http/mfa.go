package http

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/crewplane/crewplane/internal/auth/service"
	"github.com/crewplane/crewplane/pkg/coresdk"
	"github.com/crewplane/crewplane/pkg/httpx"
	"github.com/crewplane/crewplane/pkg/jwtx"
	"github.com/crewplane/crewplane/pkg/slogx"
)

// MFAHandler serves the MFA lifecycle endpoints: enrollment, activation,
// the per-session challenge and disablement.
type MFAHandler struct {
	MFAService  *service.MFAService
	UserService *service.UserService
}

// HandleEnroll handles POST /v1/mfa/enroll
//
//	@Summary		Begin MFA enrollment
//	@Description	Generates a TOTP secret, QR code and backup codes, stores them encrypted and moves the user into the pending state. The material is shown exactly once.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	coresdk.MFAEnrollResponse	"enrollment material (shown once)"
//	@Failure		400	{object}	coresdk.ErrorResponse		"MFA already enabled"
//	@Failure		401	{object}	coresdk.ErrorResponse		"invalid or missing session token"
//	@Failure		500	{object}	coresdk.ErrorResponse		"internal server error"
//	@Router			/v1/mfa/enroll [post].
func (h *MFAHandler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	uid, ok := ctx.Value(httpx.CtxKeyUserID).(string)
	if !ok || uid == "" {
		coresdk.ErrInvalidToken.WriteError(w)
		return
	}
	claims, _ := ctx.Value(httpx.CtxKeyClaims).(jwtx.Claims)

	if err := h.UserService.EnsureUser(ctx, uid, claims.Email); err != nil {
		log.Error("failed to ensure user", "uid", uid, "err", err)
		coresdk.ErrServerError.WriteError(w)
		return
	}

	enrollment, err := h.MFAService.GenerateSecret(ctx, uid, claims.Email)
	if err != nil {
		if errors.Is(err, service.ErrMFAAlreadyEnabled) {
			writeServiceError(w, http.StatusBadRequest, coresdk.ErrorCodeMFAAlreadyEnabled,
				"MFA is already enabled for this user")
			return
		}
		log.Error("failed to generate MFA secret", "uid", uid, "err", err)
		coresdk.ErrServerError.WriteError(w)
		return
	}

	if err := h.MFAService.SaveSecret(ctx, uid, enrollment.Secret, enrollment.BackupCodes); err != nil {
		log.Error("failed to save MFA secret", "uid", uid, "err", err)
		coresdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, coresdk.MFAEnrollResponse{
		Secret:      enrollment.Secret,
		OTPAuthURL:  enrollment.OTPAuthURL,
		QRCodePNG:   base64.StdEncoding.EncodeToString(enrollment.QRCodePNG),
		BackupCodes: enrollment.BackupCodes,
	})
}

// HandleActivate handles POST /v1/mfa/activate
//
//	@Summary		Confirm MFA enrollment
//	@Description	Verifies a TOTP code against the pending secret, enables MFA and marks the current session verified.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		coresdk.MFAActivateRequest	true	"TOTP code"
//	@Success		200		{object}	coresdk.MFAStatusResponse	"MFA enabled"
//	@Failure		400		{object}	coresdk.ErrorResponse		"invalid code or state"
//	@Failure		401		{object}	coresdk.ErrorResponse		"invalid or missing session token"
//	@Failure		500		{object}	coresdk.ErrorResponse		"internal server error"
//	@Router			/v1/mfa/activate [post].
func (h *MFAHandler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	uid, ok := ctx.Value(httpx.CtxKeyUserID).(string)
	if !ok || uid == "" {
		coresdk.ErrInvalidToken.WriteError(w)
		return
	}

	var req coresdk.MFAActivateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		coresdk.ErrInvalidRequest.WriteError(w)
		return
	}

	if err := h.MFAService.ActivateMFA(ctx, uid, req.Code); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCode):
			writeServiceError(w, http.StatusBadRequest, coresdk.ErrorCodeInvalidCode,
				"the submitted code did not verify")
		case errors.Is(err, service.ErrMFAAlreadyEnabled):
			writeServiceError(w, http.StatusBadRequest, coresdk.ErrorCodeMFAAlreadyEnabled,
				"MFA is already enabled for this user")
		case errors.Is(err, service.ErrMFANotEnrolled):
			writeServiceError(w, http.StatusBadRequest, coresdk.ErrorCodeMFANotEnrolled,
				"no pending enrollment; call enroll first")
		case errors.Is(err, service.ErrSecretCorrupted):
			coresdk.ErrMFASecretCorrupted.WriteError(w)
		default:
			log.Error("failed to activate MFA", "uid", uid, "err", err)
			coresdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, coresdk.MFAStatusResponse{Message: "MFA enabled"})
}

// HandleVerify handles POST /v1/mfa/verify
//
//	@Summary		Verify the current session
//	@Description	Answers the per-session MFA challenge with a TOTP or backup code. A consumed backup code cannot be used again.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		coresdk.MFAVerifyRequest	true	"TOTP or backup code"
//	@Success		200		{object}	coresdk.MFAStatusResponse	"session verified"
//	@Failure		400		{object}	coresdk.ErrorResponse		"invalid code or MFA not enrolled"
//	@Failure		401		{object}	coresdk.ErrorResponse		"invalid or missing session token"
//	@Failure		403		{object}	coresdk.ErrorResponse		"stored secret is corrupted"
//	@Failure		500		{object}	coresdk.ErrorResponse		"internal server error"
//	@Router			/v1/mfa/verify [post].
func (h *MFAHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	uid, ok := ctx.Value(httpx.CtxKeyUserID).(string)
	if !ok || uid == "" {
		coresdk.ErrInvalidToken.WriteError(w)
		return
	}

	var req coresdk.MFAVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		coresdk.ErrInvalidRequest.WriteError(w)
		return
	}

	if err := h.MFAService.VerifySession(ctx, uid, req.Code); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCode):
			writeServiceError(w, http.StatusBadRequest, coresdk.ErrorCodeInvalidCode,
				"the submitted code did not verify")
		case errors.Is(err, service.ErrMFANotEnrolled):
			writeServiceError(w, http.StatusBadRequest, coresdk.ErrorCodeMFANotEnrolled,
				"MFA is not enabled for this user")
		case errors.Is(err, service.ErrSecretCorrupted):
			// Normal users stay blocked until support resets them; MFA
			// never silently disables itself.
			coresdk.ErrMFASecretCorrupted.WriteError(w)
		default:
			log.Error("failed to verify MFA session", "uid", uid, "err", err)
			coresdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, coresdk.MFAStatusResponse{Message: "session verified"})
}

// HandleDisable handles POST /v1/mfa/disable
//
//	@Summary		Disable MFA
//	@Description	Turns MFA off after one more code check and drops the secret and remaining backup codes.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		coresdk.MFADisableRequest	true	"TOTP or backup code"
//	@Success		200		{object}	coresdk.MFAStatusResponse	"MFA disabled"
//	@Failure		400		{object}	coresdk.ErrorResponse		"invalid code or MFA not enrolled"
//	@Failure		401		{object}	coresdk.ErrorResponse		"invalid or missing session token"
//	@Failure		403		{object}	coresdk.ErrorResponse		"MFA session not verified"
//	@Failure		500		{object}	coresdk.ErrorResponse		"internal server error"
//	@Router			/v1/mfa/disable [post].
func (h *MFAHandler) HandleDisable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	uid, ok := ctx.Value(httpx.CtxKeyUserID).(string)
	if !ok || uid == "" {
		coresdk.ErrInvalidToken.WriteError(w)
		return
	}

	var req coresdk.MFADisableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		coresdk.ErrInvalidRequest.WriteError(w)
		return
	}

	if err := h.MFAService.DisableMFA(ctx, uid, req.Code); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCode):
			writeServiceError(w, http.StatusBadRequest, coresdk.ErrorCodeInvalidCode,
				"the submitted code did not verify")
		case errors.Is(err, service.ErrMFANotEnrolled):
			writeServiceError(w, http.StatusBadRequest, coresdk.ErrorCodeMFANotEnrolled,
				"MFA is not enabled for this user")
		case errors.Is(err, service.ErrSecretCorrupted):
			coresdk.ErrMFASecretCorrupted.WriteError(w)
		default:
			log.Error("failed to disable MFA", "uid", uid, "err", err)
			coresdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, coresdk.MFAStatusResponse{Message: "MFA disabled"})
}

// writeServiceError writes a one-off typed rejection.
func writeServiceError(w http.ResponseWriter, status int, code, description string) {
	httpx.WriteJSON(w, status, map[string]string{
		"error":             code,
		"error_description": description,
	})
}
