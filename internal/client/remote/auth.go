package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/weathermood/weathermood/internal/common"
)

// Credentials is the register/login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account on the mirror.
func (c *HTTPClient) Register(ctx context.Context, email, password string) error {
	resp, err := c.postJSON(ctx, c.baseURL+"/api/register", Credentials{Email: email, Password: password})
	if err != nil {
		return err
	}
	defer drain(resp)

	return statusError(resp.StatusCode)
}

// Login exchanges credentials for an access token.
func (c *HTTPClient) Login(ctx context.Context, email, password string) (string, error) {
	resp, err := c.postJSON(ctx, c.baseURL+"/api/login", Credentials{Email: email, Password: password})
	if err != nil {
		return "", err
	}
	defer drain(resp)

	if err := statusError(resp.StatusCode); err != nil {
		return "", err
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode login response: %w", err)
	}
	return payload.AccessToken, nil
}

func (c *HTTPClient) postJSON(ctx context.Context, url string, v any) (*http.Response, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorUnavailable, err)
	}
	return resp, nil
}
