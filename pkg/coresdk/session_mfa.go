package coresdk

import "context"

// MFAEnroll begins MFA setup. The response carries the TOTP secret, QR code
// and backup codes; none of them are retrievable again.
func (s *Session) MFAEnroll(ctx context.Context) (MFAEnrollResponse, error) {
	var out MFAEnrollResponse
	err := s.post(ctx, "/v1/mfa/enroll", nil, &out)
	return out, err
}

// MFAActivate confirms a pending enrollment with a code generated from the
// freshly issued secret. On success MFA is enabled and the current session
// counts as verified.
func (s *Session) MFAActivate(ctx context.Context, code string) error {
	return s.post(ctx, "/v1/mfa/activate", MFAActivateRequest{Code: code}, nil)
}

// MFAVerify answers the per-session challenge with a TOTP or backup code.
func (s *Session) MFAVerify(ctx context.Context, code string) error {
	return s.post(ctx, "/v1/mfa/verify", MFAVerifyRequest{Code: code}, nil)
}

// MFADisable turns MFA off after one more code check.
func (s *Session) MFADisable(ctx context.Context, code string) error {
	return s.post(ctx, "/v1/mfa/disable", MFADisableRequest{Code: code}, nil)
}
