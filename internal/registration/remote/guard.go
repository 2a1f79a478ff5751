package remote

import (
	"context"
	"log/slog"

	"onboard/internal/registration/models"
	"onboard/pkg/platform/circuit"
)

type availabilityLookup interface {
	CheckAvailability(ctx context.Context, candidate string) (models.UsernameCheck, error)
}

// GuardedLookup decorates an availability lookup with a circuit breaker.
// Every call still attempts the upstream; the breaker surfaces sustained
// account-service trouble as logged open/close transitions, and callers keep
// their fail-closed behavior on the errors passed through.
type GuardedLookup struct {
	inner   availabilityLookup
	breaker *circuit.Breaker
	logger  *slog.Logger
}

// NewGuardedLookup wraps the lookup. A nil logger falls back to the default.
func NewGuardedLookup(inner availabilityLookup, logger *slog.Logger) *GuardedLookup {
	if logger == nil {
		logger = slog.Default()
	}
	return &GuardedLookup{
		inner:   inner,
		breaker: circuit.New("account-availability"),
		logger:  logger,
	}
}

func (g *GuardedLookup) CheckAvailability(ctx context.Context, candidate string) (models.UsernameCheck, error) {
	check, err := g.inner.CheckAvailability(ctx, candidate)
	if err != nil {
		if _, change := g.breaker.RecordFailure(); change.Opened {
			g.logger.Warn("availability lookups degraded",
				"breaker", g.breaker.Name(),
				"error", err,
			)
		}
		return models.UsernameCheck{}, err
	}
	if _, change := g.breaker.RecordSuccess(); change.Closed {
		g.logger.Info("availability lookups recovered", "breaker", g.breaker.Name())
	}
	return check, nil
}
