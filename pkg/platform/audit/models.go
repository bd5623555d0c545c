package audit

import "time"

// Category classifies audit events by their primary purpose, enabling
// different retention policies downstream.
type Category string

const (
	// CategoryCompliance covers money-adjacent actions that must be
	// reconstructable later: payment confirmations, manual verification,
	// backfills.
	CategoryCompliance Category = "compliance"

	// CategoryOperations covers routine activity useful for debugging:
	// onboarding, team creation, forum activity.
	CategoryOperations Category = "operations"
)

// Action names what happened. Keep these stable; dashboards key on them.
type Action string

const (
	ActionUserOnboarded         Action = "user_onboarded"
	ActionTeamCreated           Action = "team_created"
	ActionTeamLocked            Action = "team_locked"
	ActionRegistrationCreated   Action = "registration_created"
	ActionPaymentConfirmed      Action = "payment_confirmed"
	ActionPaymentFailed         Action = "payment_failed"
	ActionPaymentVerified       Action = "payment_manually_verified"
	ActionPaymentRejected       Action = "payment_rejected"
	ActionRegistrationBackfill  Action = "registration_backfilled"
	ActionPaymentReportReceived Action = "payment_report_received"
)

var actionCategories = map[Action]Category{
	ActionPaymentConfirmed:      CategoryCompliance,
	ActionPaymentFailed:         CategoryCompliance,
	ActionPaymentVerified:       CategoryCompliance,
	ActionPaymentRejected:       CategoryCompliance,
	ActionRegistrationBackfill:  CategoryCompliance,
	ActionPaymentReportReceived: CategoryCompliance,
}

// CategoryOf returns the category for an action; anything unlisted is
// operational.
func CategoryOf(a Action) Category {
	if c, ok := actionCategories[a]; ok {
		return c
	}
	return CategoryOperations
}

// Event is emitted from domain logic to capture key actions. Transport
// agnostic so sinks can fan out.
type Event struct {
	Category  Category  `json:"category"`
	Action    Action    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
	// ActorID is who performed the action; for admin operations it differs
	// from SubjectID.
	ActorID string `json:"actor_id"`
	// SubjectID is the entity acted on (registration, team, profile id).
	SubjectID string            `json:"subject_id,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
	ClientIP  string            `json:"client_ip,omitempty"`
	Device    string            `json:"device,omitempty"`
	Detail    map[string]string `json:"detail,omitempty"`
}
