// Package classify maps heterogeneous remote error shapes onto the closed
// taxonomy consumed by the submission pipeline. Raw errors stop here.
package classify

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"onboard/internal/registration/models"
)

// Classification is the result of mapping one remote failure.
type Classification struct {
	Kind         models.ErrorKind
	RedirectHint models.RedirectHint
}

// Classify inspects err and returns its taxonomy kind. Precedence: explicit
// error codes, then duplicate-account text detection, then HTTP status, then
// transport shape. Anything unrecognised is Unknown.
func Classify(err error) Classification {
	if err == nil {
		return Classification{Kind: models.ErrorUnknown}
	}

	var remote *models.RemoteError
	if errors.As(err, &remote) {
		return classifyRemote(remote)
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return Classification{Kind: models.ErrorNetwork}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return Classification{Kind: models.ErrorNetwork}
	}

	return Classification{Kind: models.ErrorUnknown}
}

func classifyRemote(remote *models.RemoteError) Classification {
	switch remote.Code {
	case models.RemoteCodeRateLimit:
		return Classification{Kind: models.ErrorRateLimited}
	case models.RemoteCodeCaptchaFailed:
		return Classification{Kind: models.ErrorCaptchaFailed}
	case models.RemoteCodeValidation:
		return Classification{Kind: models.ErrorValidation}
	}

	// Free-text duplicate detection is the fallback for account services
	// that signal duplicates without a stable code.
	if isDuplicateMessage(remote.Message) {
		return Classification{Kind: models.ErrorDuplicateAccount, RedirectHint: models.HintLogin}
	}

	switch {
	case remote.StatusCode == http.StatusUnauthorized:
		return Classification{Kind: models.ErrorUnauthorized}
	case remote.StatusCode == http.StatusBadRequest:
		return Classification{Kind: models.ErrorValidation}
	case remote.StatusCode == http.StatusConflict:
		return Classification{Kind: models.ErrorDuplicateAccount, RedirectHint: models.HintLogin}
	case remote.StatusCode == http.StatusTooManyRequests:
		return Classification{Kind: models.ErrorRateLimited}
	case remote.StatusCode >= 500:
		return Classification{Kind: models.ErrorServer}
	}

	return Classification{Kind: models.ErrorUnknown}
}

func isDuplicateMessage(message string) bool {
	m := strings.ToLower(message)
	return strings.Contains(m, "already exists") ||
		strings.Contains(m, "already registered") ||
		strings.Contains(m, "already taken") ||
		strings.Contains(m, "duplicate")
}
