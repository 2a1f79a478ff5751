package models

// ErrorKind is the closed taxonomy every remote failure is classified into
// before crossing the orchestrator boundary. Raw transport errors never
// travel past the submission pipeline.
type ErrorKind string

const (
	ErrorRateLimited      ErrorKind = "rate_limited"
	ErrorCaptchaFailed    ErrorKind = "captcha_failed"
	ErrorValidation       ErrorKind = "validation_error"
	ErrorDuplicateAccount ErrorKind = "duplicate_account"
	ErrorUnauthorized     ErrorKind = "unauthorized"
	ErrorServer           ErrorKind = "server_error"
	ErrorNetwork          ErrorKind = "network_error"
	ErrorUnknown          ErrorKind = "unknown"
)

// RedirectHint suggests a more appropriate flow for the user alongside a
// failure. The caller decides whether to act on it; nothing auto-navigates.
type RedirectHint string

const (
	HintLogin    RedirectHint = "login"
	HintRegister RedirectHint = "register"
)

// SubmissionFailure describes a classified submission failure.
type SubmissionFailure struct {
	Kind         ErrorKind    `json:"kind"`
	Message      string       `json:"message"`
	RedirectHint RedirectHint `json:"redirectHint,omitempty"`
	// FieldErrors carries per-field validation problems when Kind is
	// validation_error and the failure was detected locally.
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
}

// SubmissionOutcome is what the submission pipeline returns. Exactly one of
// the success fields or Failure is meaningful.
type SubmissionOutcome struct {
	Success                   bool `json:"success"`
	RequiresEmailVerification bool `json:"requiresEmailVerification,omitempty"`
	// VerificationToken is a short-lived signed token handed to the
	// verification-pending view when email verification is required.
	VerificationToken string             `json:"verificationToken,omitempty"`
	Failure           *SubmissionFailure `json:"failure,omitempty"`
}
