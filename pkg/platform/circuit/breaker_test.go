package circuit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newAvailabilityBreaker(opts ...Option) *Breaker {
	return New("account-availability", opts...)
}

func TestBreaker_StartsClosed(t *testing.T) {
	b := newAvailabilityBreaker()
	assert.False(t, b.IsOpen())
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, "account-availability", b.Name())
}

func TestBreaker_ConsecutiveFailuresOpen(t *testing.T) {
	b := newAvailabilityBreaker(WithFailureThreshold(3))

	for i := 0; i < 2; i++ {
		useFallback, change := b.RecordFailure()
		assert.False(t, useFallback, "failure %d is below threshold", i+1)
		assert.False(t, change.Opened)
	}

	useFallback, change := b.RecordFailure()
	assert.True(t, useFallback)
	assert.True(t, change.Opened)
	assert.True(t, b.IsOpen())
}

func TestBreaker_RecoveryNeedsSuccessStreak(t *testing.T) {
	b := newAvailabilityBreaker(WithFailureThreshold(1), WithSuccessThreshold(2))

	b.RecordFailure()
	assert.True(t, b.IsOpen())

	usePrimary, change := b.RecordSuccess()
	assert.False(t, usePrimary, "one success is not yet a streak")
	assert.False(t, change.Closed)
	assert.True(t, b.IsOpen())

	usePrimary, change = b.RecordSuccess()
	assert.True(t, usePrimary)
	assert.True(t, change.Closed)
	assert.False(t, b.IsOpen())
}

func TestBreaker_SuccessInterruptsFailureStreak(t *testing.T) {
	b := newAvailabilityBreaker(WithFailureThreshold(3))

	b.RecordFailure()
	b.RecordFailure()
	b.RecordSuccess()

	// The streak restarts: two more failures stay closed.
	b.RecordFailure()
	b.RecordFailure()
	assert.False(t, b.IsOpen())

	b.RecordFailure()
	assert.True(t, b.IsOpen())
}

func TestBreaker_FailureInterruptsSuccessStreak(t *testing.T) {
	b := newAvailabilityBreaker(WithFailureThreshold(1), WithSuccessThreshold(3))

	b.RecordFailure()
	assert.True(t, b.IsOpen())

	b.RecordSuccess()
	b.RecordSuccess()
	b.RecordFailure()
	assert.True(t, b.IsOpen())

	// Three uninterrupted successes are required again.
	b.RecordSuccess()
	b.RecordSuccess()
	assert.True(t, b.IsOpen())
	b.RecordSuccess()
	assert.False(t, b.IsOpen())
}

func TestBreaker_ResetForcesClosed(t *testing.T) {
	b := newAvailabilityBreaker(WithFailureThreshold(1))

	b.RecordFailure()
	assert.True(t, b.IsOpen())

	b.Reset()
	assert.False(t, b.IsOpen())
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_OpenStaysOpenOnFurtherFailures(t *testing.T) {
	b := newAvailabilityBreaker(WithFailureThreshold(1))

	b.RecordFailure()

	// Already open: fallback signalled, but no transition reported.
	useFallback, change := b.RecordFailure()
	assert.True(t, useFallback)
	assert.False(t, change.Opened)
}
