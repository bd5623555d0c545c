package admin

import (
	"context"

	"felicity/internal/event"
	"felicity/internal/registration"
	"felicity/internal/team"
)

// Registrations is the slice of the registration manager the verification
// desk drives.
type Registrations interface {
	ListAdmin(ctx context.Context, f registration.ListFilter) ([]*registration.Registration, error)
	PendingSubmissions(ctx context.Context) ([]*registration.PaymentSubmission, error)
	MarkVerified(ctx context.Context, registrationID, verifierID, note string) (*registration.Registration, error)
	MarkRejected(ctx context.Context, registrationID, verifierID, note string) (*registration.Registration, error)
	BackfillPaid(ctx context.Context, t *team.Team, ev *event.Event, verifierID, note string) (*registration.Registration, error)
}

// Teams resolves teams by the name an admin types at the desk.
type Teams interface {
	FindByName(ctx context.Context, name string) (*team.Team, error)
}

// Events resolves the event a backfill targets.
type Events interface {
	SingleLive(ctx context.Context) (*event.Event, error)
	Get(ctx context.Context, id string) (*event.Event, error)
}

// Service is the admin verification desk. It composes the registration,
// team and event managers; every mutation carries the verifier's identity
// for the audit trail.
type Service struct {
	regs   Registrations
	teams  Teams
	events Events
}

func NewService(regs Registrations, teams Teams, events Events) *Service {
	return &Service{regs: regs, teams: teams, events: events}
}

// ListRegistrations returns registrations for the dashboard, optionally
// narrowed by event and status. The denormalized display cache on each
// document carries the team and leader columns.
func (s *Service) ListRegistrations(ctx context.Context, eventID string, status registration.Status) ([]*registration.Registration, error) {
	return s.regs.ListAdmin(ctx, registration.ListFilter{EventID: eventID, Status: status})
}

// PendingSubmissions returns unreviewed manual payment reports.
func (s *Service) PendingSubmissions(ctx context.Context) ([]*registration.PaymentSubmission, error) {
	return s.regs.PendingSubmissions(ctx)
}

// Verify accepts a manual payment.
func (s *Service) Verify(ctx context.Context, registrationID, verifierID, note string) (*registration.Registration, error) {
	return s.regs.MarkVerified(ctx, registrationID, verifierID, note)
}

// Reject declines a manual payment.
func (s *Service) Reject(ctx context.Context, registrationID, verifierID, note string) (*registration.Registration, error) {
	return s.regs.MarkRejected(ctx, registrationID, verifierID, note)
}

// Backfill registers a team as paid outside the normal flow, addressed by
// team name. With no eventID the single live event is used; more than one
// live event makes the shorthand ambiguous and the call fails.
func (s *Service) Backfill(ctx context.Context, teamName, eventID, verifierID, note string) (*registration.Registration, error) {
	t, err := s.teams.FindByName(ctx, teamName)
	if err != nil {
		return nil, err
	}
	var ev *event.Event
	if eventID != "" {
		ev, err = s.events.Get(ctx, eventID)
	} else {
		ev, err = s.events.SingleLive(ctx)
	}
	if err != nil {
		return nil, err
	}
	return s.regs.BackfillPaid(ctx, t, ev, verifierID, note)
}
