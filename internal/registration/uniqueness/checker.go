// Package uniqueness turns a rapid stream of username candidates into at
// most one in-flight availability lookup. Stale responses are discarded by
// generation, never applied out of turn.
package uniqueness

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"onboard/internal/registration/metrics"
	"onboard/internal/registration/models"
	"onboard/pkg/platform/audit"
	"onboard/pkg/platform/sentinel"
)

// DefaultWindow is the quiet period after the last candidate before a lookup
// is dispatched.
const DefaultWindow = 500 * time.Millisecond

// DefaultTimeout bounds a single lookup round trip so the pending flag can
// never hang indefinitely.
const DefaultTimeout = 5 * time.Second

// Lookup is the remote availability service. It must be safe to call
// repeatedly with the same candidate.
type Lookup interface {
	CheckAvailability(ctx context.Context, candidate string) (models.UsernameCheck, error)
}

// AuditPublisher receives lookup failure events. Fire-and-forget.
type AuditPublisher interface {
	Publish(ctx context.Context, event audit.Event)
}

// Checker debounces candidate submissions and keeps only the result of the
// most recently dispatched lookup. Safe for concurrent use.
type Checker struct {
	lookup  Lookup
	window  time.Duration
	timeout time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
	auditor AuditPublisher

	group singleflight.Group

	mu            sync.Mutex
	timer         *time.Timer
	pending       string
	hasPending    bool
	lastSubmitted string
	// lastDispatched is the normalized form of the candidate most recently
	// sent upstream; identical successors are suppressed.
	lastDispatched string
	// generation grows on every dispatch; a completion applies its result
	// only while its generation is still current.
	generation uint64
	inFlight   bool
	result     *models.UsernameCheck
	resultFor  string
	disposed   bool
}

// Option configures a Checker.
type Option func(*Checker)

func WithWindow(window time.Duration) Option {
	return func(c *Checker) {
		c.window = window
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Checker) {
		c.timeout = timeout
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Checker) {
		c.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Checker) {
		c.metrics = m
	}
}

// WithAuditPublisher wires an audit publisher for lookup failure events.
func WithAuditPublisher(auditor AuditPublisher) Option {
	return func(c *Checker) {
		c.auditor = auditor
	}
}

// New creates a Checker over the given lookup service.
func New(lookup Lookup, opts ...Option) (*Checker, error) {
	if lookup == nil {
		return nil, errors.New("uniqueness checker requires a lookup service")
	}
	c := &Checker{
		lookup:  lookup,
		window:  DefaultWindow,
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Submit queues a candidate for a debounced availability check. Each call
// resets the quiet window; only the latest candidate when the window elapses
// is ever sent upstream. Fire-and-forget.
func (c *Checker) Submit(candidate string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return
	}
	c.pending = candidate
	c.hasPending = true
	c.lastSubmitted = candidate
	if c.timer == nil {
		c.timer = time.AfterFunc(c.window, c.fire)
		return
	}
	c.timer.Reset(c.window)
}

// fire runs when the quiet window elapses with no new candidate.
func (c *Checker) fire() {
	c.mu.Lock()
	if c.disposed || !c.hasPending {
		c.mu.Unlock()
		return
	}
	candidate := c.pending
	c.hasPending = false

	norm := normalize(candidate)
	if norm == c.lastDispatched {
		c.metrics.IncUsernameChecksCoalesced()
		c.mu.Unlock()
		return
	}
	c.lastDispatched = norm
	c.generation++
	gen := c.generation
	c.inFlight = true
	c.mu.Unlock()

	go c.dispatch(gen, candidate)
}

func (c *Checker) dispatch(gen uint64, candidate string) {
	c.metrics.IncUsernameChecks()

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	res, err := c.lookup.CheckAvailability(ctx, candidate)
	if err != nil {
		// Fail closed: a failed check never reads as "available".
		c.checkFailed(candidate, err)
		res = models.UsernameCheck{Available: false, Suggestions: []string{}}
	}
	c.apply(gen, candidate, res)
}

// checkFailed records a lookup failure in the log, metrics, and audit trail.
func (c *Checker) checkFailed(candidate string, err error) {
	c.metrics.IncUsernameChecksFailed()
	c.logger.Warn("username lookup failed, treating as taken",
		"candidate", candidate, "error", err)
	if c.auditor != nil {
		c.auditor.Publish(context.Background(), audit.Event{
			Action:  audit.EventUsernameCheckFailed,
			Subject: candidate,
			Reason:  err.Error(),
		})
	}
}

// apply installs a lookup result unless it has been superseded or the
// checker was torn down in the meantime.
func (c *Checker) apply(gen uint64, candidate string, res models.UsernameCheck) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed || gen != c.generation {
		c.metrics.IncUsernameChecksStale()
		return false
	}
	c.inFlight = false
	c.result = &res
	c.resultFor = candidate
	return true
}

// CheckNow performs exactly one lookup with no debounce and returns its
// outcome directly. It supersedes any scheduled or in-flight debounced
// lookup so a late response cannot overwrite this one. Concurrent CheckNow
// calls for the same normalized candidate share one round trip.
func (c *Checker) CheckNow(ctx context.Context, candidate string) (models.UsernameCheck, error) {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return models.UsernameCheck{Available: false, Suggestions: []string{}}, sentinel.ErrDisposed
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.hasPending = false
	c.lastSubmitted = candidate
	norm := normalize(candidate)
	c.lastDispatched = norm
	c.generation++
	gen := c.generation
	c.inFlight = true
	c.mu.Unlock()

	c.metrics.IncUsernameChecks()

	lookupCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	v, err, _ := c.group.Do(norm, func() (any, error) {
		return c.lookup.CheckAvailability(lookupCtx, candidate)
	})

	res, _ := v.(models.UsernameCheck)
	if err != nil {
		c.checkFailed(candidate, err)
		res = models.UsernameCheck{Available: false, Suggestions: []string{}}
	}
	c.apply(gen, candidate, res)
	return res, err
}

// State snapshots the checker for callers. Result only ever reflects the
// most recently dispatched candidate.
func (c *Checker) State() models.UsernameCheckState {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := models.UsernameCheckState{
		Pending:   c.inFlight || c.hasPending,
		Candidate: c.lastSubmitted,
	}
	if c.result != nil {
		res := *c.result
		st.Result = &res
	}
	return st
}

// Result returns the current result and the candidate it belongs to, or nil
// when no lookup has completed yet.
func (c *Checker) Result() (*models.UsernameCheck, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result == nil {
		return nil, ""
	}
	res := *c.result
	return &res, c.resultFor
}

// Close tears the checker down. The debounce timer is stopped and any
// outstanding lookup can no longer mutate state. Idempotent.
func (c *Checker) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return
	}
	c.disposed = true
	// Invalidate whatever is still in flight.
	c.generation++
	if c.timer != nil {
		c.timer.Stop()
	}
}

// normalize applies the trim+case-fold comparison used for dedupe.
func normalize(candidate string) string {
	return strings.ToLower(strings.TrimSpace(candidate))
}
