package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/weathermood/weathermood/internal/common"
)

// HTTPClient talks to the mirror server's document API:
//
//	PUT    /api/users/{uid}/collections/{collection}/records/{id}
//	GET    /api/users/{uid}/collections/{collection}/records
//	DELETE /api/users/{uid}/collections/{collection}/records/{id}
type HTTPClient struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

// NewHTTPClient returns a mirror client for baseURL. timeout bounds each
// individual request so one unresponsive record cannot starve a batch.
func NewHTTPClient(baseURL string, timeout time.Duration, tokens TokenSource) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
	}
}

func (c *HTTPClient) recordURL(userID, collection, recordID string) string {
	return fmt.Sprintf("%s/api/users/%s/collections/%s/records/%s",
		c.baseURL, url.PathEscape(userID), url.PathEscape(collection), url.PathEscape(recordID))
}

func (c *HTTPClient) collectionURL(userID, collection string) string {
	return fmt.Sprintf("%s/api/users/%s/collections/%s/records",
		c.baseURL, url.PathEscape(userID), url.PathEscape(collection))
}

func (c *HTTPClient) Upsert(ctx context.Context, userID, collection string, rec Record) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPut, c.recordURL(userID, collection, rec.ID), body)
	if err != nil {
		return err
	}
	defer drain(resp)

	return statusError(resp.StatusCode)
}

func (c *HTTPClient) List(ctx context.Context, userID, collection string) ([]Record, error) {
	resp, err := c.do(ctx, http.MethodGet, c.collectionURL(userID, collection), nil)
	if err != nil {
		return nil, err
	}
	defer drain(resp)

	if err := statusError(resp.StatusCode); err != nil {
		return nil, err
	}

	var payload struct {
		Records []Record `json:"records"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return payload.Records, nil
}

func (c *HTTPClient) Delete(ctx context.Context, userID, collection, recordID string) error {
	resp, err := c.do(ctx, http.MethodDelete, c.recordURL(userID, collection, recordID), nil)
	if err != nil {
		return err
	}
	defer drain(resp)

	return statusError(resp.StatusCode)
}

func (c *HTTPClient) do(ctx context.Context, method, url string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		// Transport failure: connection refused, DNS, timeout.
		return nil, fmt.Errorf("%w: %v", common.ErrorUnavailable, err)
	}
	return resp, nil
}

func statusError(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return common.ErrorUnauthorized
	case code == http.StatusNotFound:
		return common.ErrorNotFound
	case code == http.StatusTooManyRequests:
		return common.ErrorRateLimited
	case code >= 500:
		return fmt.Errorf("%w: status %d", common.ErrorUnavailable, code)
	default:
		return fmt.Errorf("unexpected status %d", code)
	}
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
	_ = resp.Body.Close()
}
