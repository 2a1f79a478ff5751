package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by their primary purpose. Categories
// drive retention and routing decisions downstream.
type EventCategory string

const (
	// CategoryCompliance covers events with regulatory significance, such as
	// account creation.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to abuse monitoring.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers events useful for debugging and operational
	// visibility. These can be sampled with shorter retention.
	CategoryOperations EventCategory = "operations"
)

// Registration lifecycle actions.
const (
	EventRegistrationStarted   = "registration_started"
	EventRegistrationSubmitted = "registration_submitted"
	EventRegistrationFailed    = "registration_failed"
	EventDraftRecovered        = "draft_recovered"
	EventDraftExpired          = "draft_expired"
	EventUsernameCheckFailed   = "username_check_failed"
	EventSessionDisposed       = "session_disposed"
)

var eventCategories = map[string]EventCategory{
	EventRegistrationStarted:   CategoryOperations,
	EventRegistrationSubmitted: CategoryCompliance,
	EventRegistrationFailed:    CategorySecurity,
	EventDraftRecovered:        CategoryOperations,
	EventDraftExpired:          CategoryOperations,
	EventUsernameCheckFailed:   CategoryOperations,
	EventSessionDisposed:       CategoryOperations,
}

// CategoryFor returns the category for an action, defaulting to operations
// for unknown actions.
func CategoryFor(action string) EventCategory {
	if category, ok := eventCategories[action]; ok {
		return category
	}
	return CategoryOperations
}

// Event is emitted from domain logic to capture key registration actions.
// Keep it transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory `json:"category"`
	Timestamp time.Time     `json:"timestamp"`
	SessionID string        `json:"sessionId,omitempty"`
	Subject   string        `json:"subject,omitempty"`
	Action    string        `json:"action"`
	Decision  string        `json:"decision,omitempty"`
	Reason    string        `json:"reason,omitempty"`
	Email     string        `json:"email,omitempty"`
	RequestID string        `json:"requestId,omitempty"`
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}
