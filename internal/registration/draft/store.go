// Package draft persists, restores, and expires the recoverable snapshot of
// an in-progress registration. Snapshots never contain credentials.
package draft

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"onboard/internal/registration/metrics"
	"onboard/internal/registration/models"
	"onboard/pkg/platform/audit"
	"onboard/pkg/platform/sentinel"
)

// DefaultTTL bounds how long a saved draft stays recoverable.
const DefaultTTL = 24 * time.Hour

// KV is the durable key-value surface backing the store. Implementations
// return sentinel.ErrNotFound for absent keys.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Remove(ctx context.Context, key string) error
}

// record is the persisted shape. It is a whitelist: only these fields are
// ever serialized, so credentials cannot leak into storage by construction.
type record struct {
	Step            int                    `json:"step"`
	PersonalDetails models.PersonalDetails `json:"personalDetails"`
	Communication   models.Communication   `json:"communication"`
	SavedAt         time.Time              `json:"savedAt"`
}

// AuditPublisher receives draft lifecycle events. Fire-and-forget.
type AuditPublisher interface {
	Publish(ctx context.Context, event audit.Event)
}

// Store implements the draft lifecycle over a KV surface.
type Store struct {
	kv      KV
	ttl     time.Duration
	now     func() time.Time
	logger  *slog.Logger
	metrics *metrics.Metrics
	auditor AuditPublisher
}

// Option configures a Store.
type Option func(*Store)

func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// WithAuditPublisher wires an audit publisher for draft expiry events.
func WithAuditPublisher(auditor AuditPublisher) Option {
	return func(s *Store) {
		s.auditor = auditor
	}
}

// WithClock overrides the time source. Used by TTL tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates a Store over the given KV surface.
func New(kv KV, opts ...Option) (*Store, error) {
	if kv == nil {
		return nil, errors.New("draft store requires a kv surface")
	}
	s := &Store{
		kv:     kv,
		ttl:    DefaultTTL,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Save writes a full snapshot under key with a fresh SavedAt stamp. Writes
// are best-effort: persistence failures are logged and swallowed so they
// never interrupt the user's flow.
func (s *Store) Save(ctx context.Context, key string, d models.RegistrationDraft) {
	rec := record{
		Step:            d.Step,
		PersonalDetails: d.PersonalDetails,
		Communication:   d.Communication,
		SavedAt:         s.now().UTC(),
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		s.logger.Warn("draft snapshot not persisted", "key", key, "error", err)
		return
	}
	if err := s.kv.Set(ctx, key, string(payload), s.ttl); err != nil {
		s.logger.Warn("draft snapshot not persisted", "key", key, "error", err)
		return
	}
	s.metrics.IncDraftsSaved()
}

// Load returns the draft stored under key, or nil when nothing usable is
// there. Malformed payloads and drafts older than the TTL are cleared as a
// side effect so the next load starts clean.
func (s *Store) Load(ctx context.Context, key string) *models.RegistrationDraft {
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			s.logger.Warn("draft load failed", "key", key, "error", err)
		}
		return nil
	}

	var rec record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil || !wellFormed(rec) {
		s.metrics.IncDraftsSelfHealed()
		s.logger.Warn("clearing malformed draft", "key", key)
		s.Clear(ctx, key)
		return nil
	}

	if s.now().Sub(rec.SavedAt) > s.ttl {
		s.metrics.IncDraftsExpired()
		s.logger.Info("discarding stale draft", "key", key, "saved_at", rec.SavedAt)
		s.Clear(ctx, key)
		s.publish(ctx, audit.Event{
			Action:    audit.EventDraftExpired,
			SessionID: key,
			Reason:    "saved draft older than ttl",
		})
		return nil
	}

	return &models.RegistrationDraft{
		Step:            rec.Step,
		PersonalDetails: rec.PersonalDetails,
		Communication:   rec.Communication,
		SavedAt:         rec.SavedAt,
	}
}

// Clear removes the persisted entry unconditionally. Never returns an error;
// removal failures are logged only.
func (s *Store) Clear(ctx context.Context, key string) {
	if err := s.kv.Remove(ctx, key); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		s.logger.Warn("draft clear failed", "key", key, "error", err)
	}
}

func (s *Store) publish(ctx context.Context, ev audit.Event) {
	if s.auditor == nil {
		return
	}
	s.auditor.Publish(ctx, ev)
}

func wellFormed(rec record) bool {
	if rec.Step < 1 || rec.Step > models.StepCount {
		return false
	}
	if rec.SavedAt.IsZero() {
		return false
	}
	// Saved snapshots always carry between one and three phone slots.
	if n := len(rec.Communication.PhoneNumbers); n < 1 || n > 3 {
		return false
	}
	return true
}
