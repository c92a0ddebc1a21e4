package staff

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPVerifier asks the staff directory service whether a uid is verified
// staff. Responses are not cached; the resolver asks at most twice per
// request and the directory sits on the same network.
type HTTPVerifier struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// NewHTTPVerifier creates a verifier against the staff directory service.
// The token is sent as a bearer credential on every request.
func NewHTTPVerifier(baseURL, token string) *HTTPVerifier {
	return &HTTPVerifier{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		Token:   token,
		HTTPClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

type verifiedResponse struct {
	Verified bool `json:"verified"`
}

// IsVerifiedPlatformStaff calls GET /v1/staff/{uid}/verified. An unknown
// uid (404) is simply not staff; anything else unexpected is an error so
// callers fail closed.
func (v *HTTPVerifier) IsVerifiedPlatformStaff(ctx context.Context, uid string) (bool, error) {
	path := v.BaseURL + "/v1/staff/" + url.PathEscape(uid) + "/verified"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		return false, fmt.Errorf("staff: create request: %w", err)
	}
	if v.Token != "" {
		req.Header.Set("Authorization", "Bearer "+v.Token)
	}

	resp, err := v.HTTPClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("staff: send request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return false, fmt.Errorf("staff: read response: %w", err)
		}
		var vr verifiedResponse
		if err := json.Unmarshal(body, &vr); err != nil {
			return false, fmt.Errorf("staff: decode response: %w", err)
		}
		return vr.Verified, nil

	case http.StatusNotFound:
		return false, nil

	default:
		return false, fmt.Errorf("staff: directory returned status %d", resp.StatusCode)
	}
}
