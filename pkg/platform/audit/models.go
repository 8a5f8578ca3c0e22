package audit

import (
	"context"
	"time"

	id "ppdb/pkg/domain"
)

// Category classifies audit events by their primary purpose. This enables
// different retention policies and routing downstream.
type Category string

const (
	// CategoryCompliance covers events with regulatory significance for the
	// admission period: registrations and status decisions.
	CategoryCompliance Category = "compliance"

	// CategorySecurity covers events relevant to security monitoring.
	// Examples: login failures, account lockouts.
	CategorySecurity Category = "security"

	// CategoryOperations covers events useful for debugging and operational
	// visibility. These can be sampled with shorter retention.
	CategoryOperations Category = "operations"
)

// Action names one auditable thing that happened.
type Action string

const (
	ActionApplicantRegistered Action = "applicant_registered"
	ActionStatusChanged       Action = "status_changed"

	ActionLoginSucceeded Action = "login_succeeded"
	ActionLoginFailed    Action = "login_failed"
	ActionAccountLocked  Action = "account_locked"

	ActionProfileUpdated   Action = "profile_updated"
	ActionScoresUpdated    Action = "scores_updated"
	ActionDocumentsUpdated Action = "documents_updated"
)

// actionCategories maps each action to its category and doubles as the
// registry of known actions.
var actionCategories = map[Action]Category{
	ActionApplicantRegistered: CategoryCompliance,
	ActionStatusChanged:       CategoryCompliance,

	ActionLoginSucceeded: CategorySecurity,
	ActionLoginFailed:    CategorySecurity,
	ActionAccountLocked:  CategorySecurity,

	ActionProfileUpdated:   CategoryOperations,
	ActionScoresUpdated:    CategoryOperations,
	ActionDocumentsUpdated: CategoryOperations,
}

// Category returns the category for the action, defaulting to operations for
// anything unregistered.
func (a Action) Category() Category {
	if c, ok := actionCategories[a]; ok {
		return c
	}
	return CategoryOperations
}

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Action      Action
	Timestamp   time.Time
	ApplicantID id.ApplicantID
	// Actor is the username of whoever performed the action.
	Actor string
	// FromStatus / ToStatus are set for status_changed events.
	FromStatus string
	ToStatus   string
	// Catatan carries the admin note attached to a PERBAIKAN decision.
	Catatan string
	// RequestID correlates the event with the HTTP request that caused it.
	RequestID string
	// UserAgent records the client device for security events.
	UserAgent string
}

// Store is the audit sink. The production implementation writes to the
// transactional outbox; the in-memory one backs unit tests.
type Store interface {
	Append(ctx context.Context, event Event) error
}
