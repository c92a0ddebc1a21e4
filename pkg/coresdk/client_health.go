package coresdk

import (
	"context"
	"net/http"
)

// Livez calls the liveness probe. A nil error means the process is up.
func (c *SDKClient) Livez(ctx context.Context) (HealthResponse, error) {
	var out HealthResponse
	err := c.doJSON(ctx, http.MethodGet, "/livez", "", nil, &out)
	return out, err
}

// Readyz calls the readiness probe, which also checks the store and the
// token verifier key set. A degraded service returns an APIError carrying
// the 503 status.
func (c *SDKClient) Readyz(ctx context.Context) (HealthResponse, error) {
	var out HealthResponse
	err := c.doJSON(ctx, http.MethodGet, "/readyz", "", nil, &out)
	return out, err
}
