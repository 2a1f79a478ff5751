package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"onboard/internal/registration/draft"
	"onboard/internal/registration/metrics"
	"onboard/internal/registration/service"
	"onboard/internal/registration/uniqueness"
	"onboard/pkg/platform/audit"
)

// DefaultIdleTTL is how long a session may sit untouched before the reaper
// disposes it. The draft outlives the session, so a reaped user can still
// recover their progress.
const DefaultIdleTTL = time.Hour

const reapInterval = time.Minute

// Manager holds live sessions keyed by ID and reaps idle ones.
type Manager struct {
	drafts        *draft.Store
	lookup        uniqueness.Lookup
	pipeline      *service.Pipeline
	window        time.Duration
	lookupTimeout time.Duration
	idleTTL       time.Duration
	logger        *slog.Logger
	metrics       *metrics.Metrics
	auditor       service.AuditPublisher

	mu       sync.Mutex
	sessions map[string]*Session
}

// Option configures a Manager.
type Option func(*Manager)

// WithDebounceWindow overrides the checker debounce window for sessions the
// manager creates.
func WithDebounceWindow(window time.Duration) Option {
	return func(m *Manager) {
		m.window = window
	}
}

// WithLookupTimeout overrides the per-lookup deadline.
func WithLookupTimeout(timeout time.Duration) Option {
	return func(m *Manager) {
		m.lookupTimeout = timeout
	}
}

// WithIdleTTL overrides how long idle sessions survive.
func WithIdleTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.idleTTL = ttl
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithMetrics wires registration metrics.
func WithMetrics(met *metrics.Metrics) Option {
	return func(m *Manager) {
		m.metrics = met
	}
}

// WithAuditPublisher wires an audit publisher for session lifecycle events.
func WithAuditPublisher(auditor service.AuditPublisher) Option {
	return func(m *Manager) {
		m.auditor = auditor
	}
}

// NewManager creates a session manager.
func NewManager(drafts *draft.Store, lookup uniqueness.Lookup, pipeline *service.Pipeline, opts ...Option) *Manager {
	m := &Manager{
		drafts:        drafts,
		lookup:        lookup,
		pipeline:      pipeline,
		window:        uniqueness.DefaultWindow,
		lookupTimeout: uniqueness.DefaultTimeout,
		idleTTL:       DefaultIdleTTL,
		logger:        slog.Default(),
		sessions:      make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create starts a session. When requestedID names an existing live session it
// is returned as-is; when it has a recoverable draft, a fresh session is
// re-hydrated from it. Otherwise a new session starts at step 1 under a new
// ID. The second return reports whether a draft was recovered.
func (m *Manager) Create(ctx context.Context, requestedID string) (*Session, bool, error) {
	if requestedID != "" {
		m.mu.Lock()
		if existing, ok := m.sessions[requestedID]; ok {
			m.mu.Unlock()
			return existing, false, nil
		}
		m.mu.Unlock()
	}

	id := requestedID
	if id == "" {
		id = uuid.NewString()
	}

	checker, err := uniqueness.New(m.lookup,
		uniqueness.WithWindow(m.window),
		uniqueness.WithTimeout(m.lookupTimeout),
		uniqueness.WithLogger(m.logger),
		uniqueness.WithMetrics(m.metrics),
		uniqueness.WithAuditPublisher(m.auditor),
	)
	if err != nil {
		return nil, false, err
	}

	s := newSession(id, m.drafts, checker, m.pipeline)

	recovered := false
	if requestedID != "" {
		if d := m.drafts.Load(ctx, id); d != nil {
			s.rehydrate(d)
			recovered = true
			m.publish(ctx, audit.Event{
				Action:    audit.EventDraftRecovered,
				SessionID: id,
				Reason:    "draft restored into new session",
			})
		}
	}
	if !recovered {
		m.publish(ctx, audit.Event{
			Action:    audit.EventRegistrationStarted,
			SessionID: id,
		})
	}

	m.mu.Lock()
	m.sessions[id] = s
	m.metrics.SetSessionsActive(len(m.sessions))
	m.mu.Unlock()

	m.logger.Info("registration session created", "session_id", id, "recovered", recovered)
	return s, recovered, nil
}

// Get returns a live session by ID.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Dispose tears a session down and removes it from the registry. The draft
// is left in place so the user can recover later. Reports whether a session
// was found.
func (m *Manager) Dispose(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
		m.metrics.SetSessionsActive(len(m.sessions))
	}
	m.mu.Unlock()
	if !ok {
		return false
	}

	s.dispose()
	m.publish(context.Background(), audit.Event{
		Action:    audit.EventSessionDisposed,
		SessionID: id,
	})
	m.logger.Info("registration session disposed", "session_id", id)
	return true
}

// Run sweeps idle sessions until the context is cancelled.
func (m *Manager) Run(ctx context.Context) error {
	ticker := time.NewTicker(reapInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.reap(time.Now())
		}
	}
}

// Len reports how many sessions are live.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) reap(now time.Time) {
	m.mu.Lock()
	var stale []string
	for id, s := range m.sessions {
		if now.Sub(s.LastActivity()) > m.idleTTL {
			stale = append(stale, id)
		}
	}
	m.mu.Unlock()

	for _, id := range stale {
		m.logger.Info("reaping idle registration session", "session_id", id)
		m.Dispose(id)
	}
}

func (m *Manager) publish(ctx context.Context, ev audit.Event) {
	if m.auditor == nil {
		return
	}
	m.auditor.Publish(ctx, ev)
}
