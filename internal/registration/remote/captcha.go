package remote

import (
	"context"
	"fmt"
	"strings"
)

// CaptchaClient obtains anti-abuse tokens from the captcha service.
type CaptchaClient struct {
	baseURL string
	siteKey string
	client  httpDoer
}

// CaptchaOption configures a CaptchaClient.
type CaptchaOption func(*CaptchaClient)

// WithCaptchaHTTPClient overrides the underlying HTTP client.
func WithCaptchaHTTPClient(client httpDoer) CaptchaOption {
	return func(c *CaptchaClient) {
		c.client = client
	}
}

// WithSiteKey sets the site key sent with each token request.
func WithSiteKey(siteKey string) CaptchaOption {
	return func(c *CaptchaClient) {
		c.siteKey = siteKey
	}
}

// NewCaptchaClient creates a client for the captcha service at baseURL.
func NewCaptchaClient(baseURL string, opts ...CaptchaOption) *CaptchaClient {
	c := &CaptchaClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newHTTPClient(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Execute requests a token scoped to the given action. Errors here are
// survivable: the submission pipeline degrades to a token-less request.
func (c *CaptchaClient) Execute(ctx context.Context, action string) (string, error) {
	payload := map[string]string{"action": action}
	if c.siteKey != "" {
		payload["siteKey"] = c.siteKey
	}

	res, err := postJSON(ctx, c.client, joinURL(c.baseURL, "/captcha/token"), payload)
	if err != nil {
		return "", fmt.Errorf("captcha token: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return "", remoteError(res)
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := decodeInto(res, &body); err != nil {
		return "", err
	}
	if body.Token == "" {
		return "", fmt.Errorf("captcha token: empty token in response")
	}
	return body.Token, nil
}
