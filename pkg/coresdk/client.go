package coresdk

import (
	"net/http"
	"strings"
	"time"
)

// SDKClient is a client for the Crewplane authorization core. It provides
// the unauthenticated endpoints and creates authenticated Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a client for the service at baseURL.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Session wraps the client with a bearer session token for authenticated
// calls. Tokens are minted by the identity provider; the SDK never mints
// its own.
func (c *SDKClient) Session(token string) *Session {
	return &Session{client: c, token: token}
}

// Session is an authenticated view of the API for one session token.
type Session struct {
	client *SDKClient
	token  string
}

// Token returns the raw session token the Session carries.
func (s *Session) Token() string {
	return s.token
}
