// Package flow gates forward and backward movement between registration
// steps. The machine is strictly linear: no jumps, forward only through a
// valid current step.
package flow

import (
	"sync"

	"onboard/internal/registration/models"
)

// Validator reports whether the form for a given step is currently valid.
// Steps are numbered from 1.
type Validator func(step int) bool

// Controller is the linear step state machine. Safe for concurrent use.
type Controller struct {
	mu        sync.Mutex
	current   int
	steps     int
	validator Validator
	// onAdvance fires after an accepted forward transition with the new
	// step, letting the owner refresh its draft snapshot.
	onAdvance func(step int)
	submitted bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithOnAdvance registers a hook invoked after every accepted forward
// transition.
func WithOnAdvance(fn func(step int)) Option {
	return func(c *Controller) {
		c.onAdvance = fn
	}
}

// WithSteps overrides the number of steps. Defaults to models.StepCount.
func WithSteps(steps int) Option {
	return func(c *Controller) {
		c.steps = steps
	}
}

// New creates a controller positioned at step 1. The validator is consulted
// only for the current step on each Advance; earlier steps are not
// re-validated retroactively.
func New(validator Validator, opts ...Option) *Controller {
	c := &Controller{
		current:   1,
		steps:     models.StepCount,
		validator: validator,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Current returns the current step, in [1, steps].
func (c *Controller) Current() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// CanAdvance reports whether Advance would be accepted right now.
func (c *Controller) CanAdvance() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canAdvanceLocked()
}

func (c *Controller) canAdvanceLocked() bool {
	if c.submitted || c.current >= c.steps {
		return false
	}
	if c.validator == nil {
		return false
	}
	return c.validator(c.current)
}

// Advance moves one step forward when the current step validates. Calling it
// on an invalid step is a no-op, not an error: the caller is expected to
// have surfaced field-level problems already.
func (c *Controller) Advance() bool {
	c.mu.Lock()
	if !c.canAdvanceLocked() {
		c.mu.Unlock()
		return false
	}
	c.current++
	step := c.current
	hook := c.onAdvance
	c.mu.Unlock()

	if hook != nil {
		hook(step)
	}
	return true
}

// Retreat moves one step back. Unconditionally accepted above step 1; data
// entered in the step being left is untouched. At step 1 it is a no-op.
func (c *Controller) Retreat() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submitted || c.current <= 1 {
		return false
	}
	c.current--
	return true
}

// Restore positions the controller at a previously persisted step, clamped
// to the valid range. Used when re-hydrating from a recovered draft.
func (c *Controller) Restore(step int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if step < 1 {
		step = 1
	}
	if step > c.steps {
		step = c.steps
	}
	c.current = step
}

// MarkSubmitted moves the machine to its terminal state. No further
// transitions are accepted.
func (c *Controller) MarkSubmitted() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitted = true
}

// Submitted reports whether the terminal state was reached.
func (c *Controller) Submitted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitted
}
