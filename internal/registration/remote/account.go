package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"onboard/internal/registration/models"
	platformstrings "onboard/pkg/platform/strings"
)

// AccountClient talks to the account service: account creation and username
// availability lookups.
type AccountClient struct {
	baseURL string
	client  httpDoer
}

// AccountOption configures an AccountClient.
type AccountOption func(*AccountClient)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(client httpDoer) AccountOption {
	return func(c *AccountClient) {
		c.client = client
	}
}

// NewAccountClient creates a client for the account service at baseURL.
func NewAccountClient(baseURL string, opts ...AccountOption) *AccountClient {
	c := &AccountClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newHTTPClient(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register creates the account. Called exactly once per submission; retry
// policy belongs to the caller, which has none.
func (c *AccountClient) Register(ctx context.Context, req models.AccountCreateRequest) (models.AccountCreateResult, error) {
	res, err := postJSON(ctx, c.client, joinURL(c.baseURL, "/accounts"), req)
	if err != nil {
		return models.AccountCreateResult{}, fmt.Errorf("account create: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return models.AccountCreateResult{}, remoteError(res)
	}

	var result models.AccountCreateResult
	if err := decodeInto(res, &result); err != nil {
		return models.AccountCreateResult{}, err
	}
	return result, nil
}

// CheckAvailability asks whether a username is free. Suggestions come back
// non-nil so callers can range without guarding.
func (c *AccountClient) CheckAvailability(ctx context.Context, candidate string) (models.UsernameCheck, error) {
	query := url.Values{"username": []string{candidate}}
	res, err := getJSON(ctx, c.client, joinURL(c.baseURL, "/accounts/username-availability"), query)
	if err != nil {
		return models.UsernameCheck{}, fmt.Errorf("username availability: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return models.UsernameCheck{}, remoteError(res)
	}

	var check models.UsernameCheck
	if err := decodeInto(res, &check); err != nil {
		return models.UsernameCheck{}, err
	}
	check.Suggestions = platformstrings.DedupeAndTrim(check.Suggestions)
	return check, nil
}

// remoteError decodes the service's error envelope into a RemoteError the
// classifier understands. A body that fails to parse still yields a usable
// error carrying the HTTP status.
func remoteError(res *http.Response) error {
	defer res.Body.Close()
	remote := &models.RemoteError{StatusCode: res.StatusCode}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
	if err != nil {
		return remote
	}

	var envelope struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		remote.Message = strings.TrimSpace(string(body))
		return remote
	}

	remote.Code = envelope.Code
	remote.Message = envelope.Message
	if remote.Message == "" {
		remote.Message = envelope.Error
	}
	return remote
}
