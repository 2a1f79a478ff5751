// Package remote holds the HTTP clients for the account and anti-abuse
// services. Non-2xx responses are decoded into RemoteError so the error
// classifier sees codes and statuses, never raw transport detail.
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
)

// DefaultTimeout bounds each remote round trip at the transport level.
// Callers still pass deadline contexts for tighter per-call limits.
const DefaultTimeout = 15 * time.Second

const maxErrorBody = 64 << 10

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: DefaultTimeout}
}

func joinURL(base, path string) string {
	return base + path
}

func postJSON(ctx context.Context, client httpDoer, endpoint string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return client.Do(req)
}

func getJSON(ctx context.Context, client httpDoer, endpoint string, query url.Values) (*http.Response, error) {
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	return client.Do(req)
}

func decodeInto(res *http.Response, out any) error {
	defer res.Body.Close()
	if err := json.NewDecoder(io.LimitReader(res.Body, maxErrorBody)).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
