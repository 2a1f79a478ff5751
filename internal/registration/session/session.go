// Package session owns the per-user registration orchestrator: one step flow
// controller, one debounced uniqueness checker, and one recoverable draft,
// glued to the submission pipeline.
package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"onboard/internal/registration/draft"
	"onboard/internal/registration/flow"
	"onboard/internal/registration/models"
	"onboard/internal/registration/service"
	"onboard/internal/registration/uniqueness"
	"onboard/internal/registration/validate"
)

// Session is one in-progress registration. All methods are safe for
// concurrent use; the session serializes access to its own fields.
type Session struct {
	id       string
	drafts   *draft.Store
	checker  *uniqueness.Checker
	pipeline *service.Pipeline

	mu           sync.Mutex
	details      models.PersonalDetails
	comm         models.Communication
	flow         *flow.Controller
	pendingCtx   context.Context
	lastActivity time.Time
	disposed     bool
}

// View is the caller-facing snapshot of a session.
type View struct {
	ID              string                    `json:"id"`
	Step            int                       `json:"step"`
	Submitted       bool                      `json:"submitted"`
	PersonalDetails models.PersonalDetails    `json:"personalDetails"`
	Communication   models.Communication      `json:"communication"`
	UsernameCheck   models.UsernameCheckState `json:"usernameCheck"`
}

func newSession(id string, drafts *draft.Store, checker *uniqueness.Checker, pipeline *service.Pipeline) *Session {
	s := &Session{
		id:           id,
		drafts:       drafts,
		checker:      checker,
		pipeline:     pipeline,
		comm:         models.Communication{PhoneNumbers: []string{""}},
		lastActivity: time.Now(),
	}
	s.flow = flow.New(s.stepValid, flow.WithOnAdvance(s.snapshotOnAdvance))
	return s
}

// ID returns the session identifier, which doubles as the draft key.
func (s *Session) ID() string {
	return s.id
}

// rehydrate restores step and field state from a recovered draft.
func (s *Session) rehydrate(d *models.RegistrationDraft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.details = d.PersonalDetails
	s.comm = d.Communication
	if len(s.comm.PhoneNumbers) == 0 {
		s.comm.PhoneNumbers = []string{""}
	}
	s.flow.Restore(d.Step)
}

// UpdateDraft applies a field-change snapshot: the session's working copy is
// replaced and the persisted draft refreshed. A changed username is handed
// to the debounced checker.
func (s *Session) UpdateDraft(ctx context.Context, details models.PersonalDetails, comm models.Communication) {
	s.mu.Lock()
	previous := s.details.Username
	s.details = details
	s.comm = comm
	if len(s.comm.PhoneNumbers) == 0 {
		s.comm.PhoneNumbers = []string{""}
	}
	s.lastActivity = time.Now()
	s.mu.Unlock()

	if !strings.EqualFold(strings.TrimSpace(previous), strings.TrimSpace(details.Username)) &&
		strings.TrimSpace(details.Username) != "" {
		s.checker.Submit(details.Username)
	}
	s.saveDraft(ctx)
}

// Advance moves the flow one step forward when the current step validates.
// Returns the (possibly unchanged) current step and whether the transition
// was accepted.
func (s *Session) Advance(ctx context.Context) (int, bool) {
	s.touch()
	s.advanceCtx(ctx)
	accepted := s.flow.Advance()
	return s.flow.Current(), accepted
}

// advanceCtx stashes a context for the snapshot hook fired by the flow
// controller during Advance.
func (s *Session) advanceCtx(ctx context.Context) {
	s.mu.Lock()
	s.pendingCtx = ctx
	s.mu.Unlock()
}

// Retreat moves one step back without touching entered data.
func (s *Session) Retreat() (int, bool) {
	s.touch()
	accepted := s.flow.Retreat()
	return s.flow.Current(), accepted
}

// SubmitUsername feeds a candidate to the debounced checker.
func (s *Session) SubmitUsername(candidate string) {
	s.touch()
	s.checker.Submit(candidate)
}

// CheckUsername performs an immediate availability check, bypassing the
// debounce window.
func (s *Session) CheckUsername(ctx context.Context, candidate string) (models.UsernameCheck, error) {
	s.touch()
	return s.checker.CheckNow(ctx, candidate)
}

// Submit drives the completed registration through the pipeline. On success
// the flow reaches its terminal state and the draft is gone.
func (s *Session) Submit(ctx context.Context, creds models.Credentials) models.SubmissionOutcome {
	s.touch()
	s.mu.Lock()
	details := s.details
	comm := s.comm
	s.mu.Unlock()

	outcome := s.pipeline.Submit(ctx, s.id, details, comm, creds)
	if outcome.Success {
		s.flow.MarkSubmitted()
	}
	return outcome
}

// State snapshots the session.
func (s *Session) State() View {
	s.mu.Lock()
	details := s.details
	comm := s.comm
	s.mu.Unlock()
	return View{
		ID:              s.id,
		Step:            s.flow.Current(),
		Submitted:       s.flow.Submitted(),
		PersonalDetails: details,
		Communication:   comm,
		UsernameCheck:   s.checker.State(),
	}
}

// LastActivity reports when the session was last used. The manager's reaper
// consults it.
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// dispose tears the session down. The checker is closed so no in-flight
// lookup can mutate state afterwards. Idempotent.
func (s *Session) dispose() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	s.mu.Unlock()
	s.checker.Close()
}

// currentCtx returns the context stashed for the in-flight Advance call,
// falling back to the background context.
func (s *Session) currentCtx() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pendingCtx != nil {
		return s.pendingCtx
	}
	return context.Background()
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// stepValid is the flow controller's validation predicate. Only the current
// step is consulted; earlier steps are never re-validated retroactively.
func (s *Session) stepValid(step int) bool {
	s.mu.Lock()
	details := s.details
	comm := s.comm
	s.mu.Unlock()

	switch step {
	case 1:
		if len(validate.PersonalDetails(details)) > 0 {
			return false
		}
		return s.usernameAvailable(details.Username)
	case 2:
		return len(validate.Communication(comm)) == 0
	default:
		return false
	}
}

// usernameAvailable consults the checker's current result for the username.
// When no result for this exact candidate is present, one immediate check is
// performed so the decision is not subject to debounce lag. Fail-closed
// throughout.
func (s *Session) usernameAvailable(username string) bool {
	if strings.TrimSpace(username) == "" {
		return false
	}
	if res, who := s.checker.Result(); res != nil && sameCandidate(who, username) {
		return res.Available
	}
	ctx := s.currentCtx()
	res, err := s.checker.CheckNow(ctx, username)
	if err != nil {
		return false
	}
	return res.Available
}

// snapshotOnAdvance refreshes the persisted draft after every accepted
// forward transition.
func (s *Session) snapshotOnAdvance(step int) {
	s.saveDraft(s.currentCtx())
}

func (s *Session) saveDraft(ctx context.Context) {
	s.mu.Lock()
	d := models.RegistrationDraft{
		Step:            s.flow.Current(),
		PersonalDetails: s.details,
		Communication:   s.comm,
	}
	s.mu.Unlock()
	s.drafts.Save(ctx, s.id, d)
}

func sameCandidate(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
