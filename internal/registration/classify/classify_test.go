package classify

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"

	"onboard/internal/registration/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind models.ErrorKind
		wantHint models.RedirectHint
	}{
		{
			name:     "rate limit code",
			err:      &models.RemoteError{Code: models.RemoteCodeRateLimit, StatusCode: 429},
			wantKind: models.ErrorRateLimited,
		},
		{
			name:     "captcha code",
			err:      &models.RemoteError{Code: models.RemoteCodeCaptchaFailed, StatusCode: 400},
			wantKind: models.ErrorCaptchaFailed,
		},
		{
			name:     "validation code",
			err:      &models.RemoteError{Code: models.RemoteCodeValidation, StatusCode: 400},
			wantKind: models.ErrorValidation,
		},
		{
			name:     "duplicate by free text",
			err:      &models.RemoteError{StatusCode: 400, Message: "an account with this username already exists"},
			wantKind: models.ErrorDuplicateAccount,
			wantHint: models.HintLogin,
		},
		{
			name:     "duplicate by conflict status",
			err:      &models.RemoteError{StatusCode: 409, Message: "conflict"},
			wantKind: models.ErrorDuplicateAccount,
			wantHint: models.HintLogin,
		},
		{
			name:     "unauthorized status",
			err:      &models.RemoteError{StatusCode: 401, Message: "unauthorized"},
			wantKind: models.ErrorUnauthorized,
		},
		{
			name:     "bad request without code",
			err:      &models.RemoteError{StatusCode: 400, Message: "bad payload"},
			wantKind: models.ErrorValidation,
		},
		{
			name:     "server error",
			err:      &models.RemoteError{StatusCode: 503, Message: "upstream down"},
			wantKind: models.ErrorServer,
		},
		{
			name:     "wrapped remote error still classified",
			err:      fmt.Errorf("submit: %w", &models.RemoteError{StatusCode: 500}),
			wantKind: models.ErrorServer,
		},
		{
			name:     "deadline exceeded",
			err:      context.DeadlineExceeded,
			wantKind: models.ErrorNetwork,
		},
		{
			name:     "net error",
			err:      &net.DNSError{Err: "no such host", Name: "accounts.invalid", IsTimeout: false},
			wantKind: models.ErrorNetwork,
		},
		{
			name:     "plain error is unknown",
			err:      errors.New("weird"),
			wantKind: models.ErrorUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.wantHint, got.RedirectHint)
		})
	}
}

func TestClassify_CodeBeatsDuplicateText(t *testing.T) {
	// An explicit code wins even when the message also mentions duplicates.
	err := &models.RemoteError{
		Code:       models.RemoteCodeValidation,
		StatusCode: 400,
		Message:    "username already exists",
	}
	got := Classify(err)
	assert.Equal(t, models.ErrorValidation, got.Kind)
}

func TestClassify_TimeoutWrappedInURLError(t *testing.T) {
	err := fmt.Errorf("post: %w", &net.OpError{Op: "dial", Err: &timeoutError{}})
	assert.Equal(t, models.ErrorNetwork, Classify(err).Kind)
}

type timeoutError struct{}

func (*timeoutError) Error() string   { return "i/o timeout" }
func (*timeoutError) Timeout() bool   { return true }
func (*timeoutError) Temporary() bool { return true }
