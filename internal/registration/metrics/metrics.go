package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the registration flow. All
// methods are nil-safe so components can run without metrics in tests.
type Metrics struct {
	SubmissionsTotal        *prometheus.CounterVec
	UsernameChecksTotal     prometheus.Counter
	UsernameChecksCoalesced prometheus.Counter
	UsernameChecksStale     prometheus.Counter
	UsernameChecksFailed    prometheus.Counter
	DraftsSaved             prometheus.Counter
	DraftsExpired           prometheus.Counter
	DraftsSelfHealed        prometheus.Counter
	SessionsActive          prometheus.Gauge
}

// New creates and registers all registration metrics against the default
// registerer. Call once per process.
func New() *Metrics {
	return &Metrics{
		SubmissionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "onboard_registration_submissions_total",
			Help: "Total registration submissions by outcome kind",
		}, []string{"outcome"}),
		UsernameChecksTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "onboard_username_checks_dispatched_total",
			Help: "Total username availability lookups dispatched upstream",
		}),
		UsernameChecksCoalesced: promauto.NewCounter(prometheus.CounterOpts{
			Name: "onboard_username_checks_coalesced_total",
			Help: "Username check requests suppressed by debounce or dedupe",
		}),
		UsernameChecksStale: promauto.NewCounter(prometheus.CounterOpts{
			Name: "onboard_username_checks_stale_dropped_total",
			Help: "Late lookup responses dropped because a newer lookup superseded them",
		}),
		UsernameChecksFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "onboard_username_checks_failed_total",
			Help: "Username lookups that failed in transport and degraded fail-closed",
		}),
		DraftsSaved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "onboard_drafts_saved_total",
			Help: "Total draft snapshots persisted",
		}),
		DraftsExpired: promauto.NewCounter(prometheus.CounterOpts{
			Name: "onboard_drafts_expired_total",
			Help: "Drafts discarded at load time because they aged past the TTL",
		}),
		DraftsSelfHealed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "onboard_drafts_self_healed_total",
			Help: "Malformed persisted drafts cleared during load",
		}),
		SessionsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "onboard_registration_sessions_active",
			Help: "Currently live registration sessions",
		}),
	}
}

func (m *Metrics) ObserveSubmission(outcome string) {
	if m == nil {
		return
	}
	m.SubmissionsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncUsernameChecks() {
	if m == nil {
		return
	}
	m.UsernameChecksTotal.Inc()
}

func (m *Metrics) IncUsernameChecksCoalesced() {
	if m == nil {
		return
	}
	m.UsernameChecksCoalesced.Inc()
}

func (m *Metrics) IncUsernameChecksStale() {
	if m == nil {
		return
	}
	m.UsernameChecksStale.Inc()
}

func (m *Metrics) IncUsernameChecksFailed() {
	if m == nil {
		return
	}
	m.UsernameChecksFailed.Inc()
}

func (m *Metrics) IncDraftsSaved() {
	if m == nil {
		return
	}
	m.DraftsSaved.Inc()
}

func (m *Metrics) IncDraftsExpired() {
	if m == nil {
		return
	}
	m.DraftsExpired.Inc()
}

func (m *Metrics) IncDraftsSelfHealed() {
	if m == nil {
		return
	}
	m.DraftsSelfHealed.Inc()
}

func (m *Metrics) SetSessionsActive(n int) {
	if m == nil {
		return
	}
	m.SessionsActive.Set(float64(n))
}
