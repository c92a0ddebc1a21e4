package coresdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// doJSON performs a request with an optional JSON body and bearer token,
// decodes a 2xx JSON response into out (when non-nil), and converts any
// other status into a typed error.
func (c *SDKClient) doJSON(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("coresdk: encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("coresdk: create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("coresdk: send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("coresdk: read response: %w", err)
	}

	if err := parseErrorResponse(resp, respBody); err != nil {
		return err
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("coresdk: decode response: %w", err)
		}
	}
	return nil
}

func (s *Session) get(ctx context.Context, path string, out any) error {
	return s.client.doJSON(ctx, http.MethodGet, path, s.token, nil, out)
}

func (s *Session) post(ctx context.Context, path string, in, out any) error {
	return s.client.doJSON(ctx, http.MethodPost, path, s.token, in, out)
}

func (s *Session) put(ctx context.Context, path string, in, out any) error {
	return s.client.doJSON(ctx, http.MethodPut, path, s.token, in, out)
}

func (s *Session) delete(ctx context.Context, path string) error {
	return s.client.doJSON(ctx, http.MethodDelete, path, s.token, nil, nil)
}
