// Package service orchestrates final registration submission: cross-step
// validation, anti-abuse token acquisition, the single account-creation call,
// and mapping of outcomes back to callers as data.
package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks AccountRegistrar,CaptchaProvider

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"onboard/internal/registration/classify"
	"onboard/internal/registration/metrics"
	"onboard/internal/registration/models"
	"onboard/internal/registration/validate"
	"onboard/pkg/platform/audit"
)

// captchaAction is the action tag submitted to the anti-abuse provider.
const captchaAction = "register"

// DefaultSubmitTimeout bounds the account-creation round trip.
const DefaultSubmitTimeout = 10 * time.Second

// AccountRegistrar is the remote account-creation service. It is invoked
// exactly once per Submit call; the pipeline never retries.
type AccountRegistrar interface {
	Register(ctx context.Context, req models.AccountCreateRequest) (models.AccountCreateResult, error)
}

// CaptchaProvider issues anti-abuse tokens. Acquisition failures degrade to
// a token-less request rather than blocking the user.
type CaptchaProvider interface {
	Execute(ctx context.Context, action string) (string, error)
}

// DraftStore is the slice of the draft store the pipeline needs: clearing
// the recoverable snapshot after a successful submission.
type DraftStore interface {
	Clear(ctx context.Context, key string)
}

// AuditPublisher receives registration lifecycle events. Fire-and-forget.
type AuditPublisher interface {
	Publish(ctx context.Context, event audit.Event)
}

// Pipeline drives a completed registration through to the account service.
type Pipeline struct {
	registrar AccountRegistrar
	captcha   CaptchaProvider
	drafts    DraftStore
	tokens    *TokenIssuer
	auditor   AuditPublisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
	timeout   time.Duration
	tracer    trace.Tracer
}

// Option configures a Pipeline.
type Option func(*Pipeline)

func WithCaptcha(captcha CaptchaProvider) Option {
	return func(p *Pipeline) {
		p.captcha = captcha
	}
}

func WithDraftStore(drafts DraftStore) Option {
	return func(p *Pipeline) {
		p.drafts = drafts
	}
}

func WithTokenIssuer(tokens *TokenIssuer) Option {
	return func(p *Pipeline) {
		p.tokens = tokens
	}
}

func WithAuditPublisher(auditor AuditPublisher) Option {
	return func(p *Pipeline) {
		p.auditor = auditor
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(p *Pipeline) {
		p.timeout = timeout
	}
}

// New creates a Pipeline around the account registrar.
func New(registrar AccountRegistrar, opts ...Option) (*Pipeline, error) {
	if registrar == nil {
		return nil, errors.New("submission pipeline requires an account registrar")
	}
	p := &Pipeline{
		registrar: registrar,
		logger:    slog.Default(),
		timeout:   DefaultSubmitTimeout,
		tracer:    otel.Tracer("onboard/registration"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Submit performs exactly one account-creation attempt. All three forms are
// re-validated at call time rather than trusted from step history. The draft
// under draftKey is cleared only on success; on failure the user's entered
// data stays recoverable.
func (p *Pipeline) Submit(
	ctx context.Context,
	draftKey string,
	details models.PersonalDetails,
	comm models.Communication,
	creds models.Credentials,
) models.SubmissionOutcome {
	ctx, span := p.tracer.Start(ctx, "registration.submit")
	defer span.End()

	if fieldErrors := collectFieldErrors(details, comm, creds); len(fieldErrors) > 0 {
		p.metrics.ObserveSubmission(string(models.ErrorValidation))
		return models.SubmissionOutcome{
			Failure: &models.SubmissionFailure{
				Kind:        models.ErrorValidation,
				Message:     failureMessage(models.ErrorValidation),
				FieldErrors: fieldErrors,
			},
		}
	}

	req := models.AccountCreateRequest{
		Username:     details.Username,
		Email:        comm.Email,
		Password:     creds.Password,
		FirstName:    details.FirstName,
		LastName:     details.LastName,
		DateOfBirth:  details.DateOfBirth,
		Gender:       details.Gender,
		Phone:        firstPhone(comm.PhoneNumbers),
		AuthProvider: "local",
	}

	if p.captcha != nil {
		token, err := p.captcha.Execute(ctx, captchaAction)
		if err != nil {
			// Availability over strictness: proceed without a token and let
			// the server side degrade gracefully.
			p.logger.Warn("captcha token acquisition failed, submitting without token", "error", err)
		} else {
			req.CaptchaToken = token
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	result, err := p.registrar.Register(callCtx, req)
	if err != nil {
		return p.failed(ctx, draftKey, req, err)
	}

	span.SetAttributes(attribute.Bool("registration.requires_verification", result.RequiresEmailVerification))
	p.metrics.ObserveSubmission("success")
	p.publishAudit(ctx, audit.Event{
		Action:   audit.EventRegistrationSubmitted,
		Subject:  req.Username,
		Email:    req.Email,
		Decision: "created",
	})
	if p.drafts != nil {
		p.drafts.Clear(ctx, draftKey)
	}

	outcome := models.SubmissionOutcome{
		Success:                   true,
		RequiresEmailVerification: result.RequiresEmailVerification,
	}
	if result.RequiresEmailVerification && p.tokens != nil {
		token, err := p.tokens.Issue(req.Email, req.Username)
		if err != nil {
			p.logger.Warn("verification token not issued", "error", err)
		} else {
			outcome.VerificationToken = token
		}
	}
	return outcome
}

func (p *Pipeline) failed(ctx context.Context, draftKey string, req models.AccountCreateRequest, err error) models.SubmissionOutcome {
	classification := classify.Classify(err)
	p.metrics.ObserveSubmission(string(classification.Kind))
	p.logger.Warn("registration submission failed",
		"kind", classification.Kind,
		"username", req.Username,
		"error", err,
	)
	p.publishAudit(ctx, audit.Event{
		Action:   audit.EventRegistrationFailed,
		Subject:  req.Username,
		Email:    req.Email,
		Decision: string(classification.Kind),
		Reason:   err.Error(),
	})

	return models.SubmissionOutcome{
		Failure: &models.SubmissionFailure{
			Kind:         classification.Kind,
			Message:      failureMessage(classification.Kind),
			RedirectHint: classification.RedirectHint,
		},
	}
}

func (p *Pipeline) publishAudit(ctx context.Context, event audit.Event) {
	if p.auditor == nil {
		return
	}
	event.Timestamp = time.Now().UTC()
	p.auditor.Publish(ctx, event)
}

func collectFieldErrors(details models.PersonalDetails, comm models.Communication, creds models.Credentials) map[string]string {
	fieldErrors := make(map[string]string)
	for field, kind := range validate.PersonalDetails(details) {
		fieldErrors[field] = kind
	}
	for field, kind := range validate.Communication(comm) {
		fieldErrors[field] = kind
	}
	for field, kind := range validate.Credentials(creds) {
		fieldErrors[field] = kind
	}
	if len(fieldErrors) == 0 {
		return nil
	}
	return fieldErrors
}

func firstPhone(phones []string) string {
	if len(phones) == 0 {
		return ""
	}
	return phones[0]
}

// failureMessage maps a kind to its caller-visible text. Unauthorized is
// deliberately folded into the validation message: during registration there
// are no credentials to be unauthorized about, so it is handled as a
// defensive fallback.
func failureMessage(kind models.ErrorKind) string {
	switch kind {
	case models.ErrorRateLimited:
		return "too many attempts, please wait a moment and try again"
	case models.ErrorCaptchaFailed:
		return "captcha verification failed, please try again"
	case models.ErrorValidation, models.ErrorUnauthorized:
		return "please review the entered details and try again"
	case models.ErrorDuplicateAccount:
		return "an account with these details already exists"
	case models.ErrorNetwork:
		return "we could not reach the registration service, please try again"
	default:
		return "registration could not be completed, please try again later"
	}
}
