package models

import "fmt"

// Remote error codes observed from the account service.
const (
	RemoteCodeRateLimit     = "RATE_LIMIT_EXCEEDED"
	RemoteCodeCaptchaFailed = "CAPTCHA_FAILED"
	RemoteCodeValidation    = "VALIDATION_ERROR"
)

// RemoteError is a structured rejection from the account service. Code may be
// empty when the service returned a bare HTTP status.
type RemoteError struct {
	Code       string
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("account service: %s (status %d): %s", e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("account service: status %d: %s", e.StatusCode, e.Message)
}
