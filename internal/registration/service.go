package registration

import (
	"context"
	"errors"
	"time"

	"felicity/internal/event"
	"felicity/internal/profile"
	"felicity/internal/team"
	dErrors "felicity/pkg/domain-errors"
	"felicity/pkg/platform/sentinel"
)

// Store is the persistence seam for registrations. The (owner_id, event_id)
// unique index backs the one-registration-per-pair invariant under
// concurrent submits.
type Store interface {
	Insert(ctx context.Context, r *Registration) error
	Update(ctx context.Context, r *Registration) error
	FindByID(ctx context.Context, id string) (*Registration, error)
	FindByOwnerAndEvent(ctx context.Context, ownerID, eventID string) (*Registration, error)
	FindByMember(ctx context.Context, profileID string) ([]*Registration, error)
	FindByEventAndMember(ctx context.Context, eventID, profileID string) ([]*Registration, error)
	List(ctx context.Context, f ListFilter) ([]*Registration, error)
}

// ListFilter narrows the admin listing. Zero values match everything.
type ListFilter struct {
	EventID string
	Status  Status
}

// SubmissionStore persists user-reported manual payments.
type SubmissionStore interface {
	Insert(ctx context.Context, s *PaymentSubmission) error
	ListPending(ctx context.Context) ([]*PaymentSubmission, error)
}

// EventCatalog is the read slice of the event store this service needs.
// Depending on the store rather than the event service keeps the
// construction order acyclic (the event service holds the forum, the forum
// holds this service).
type EventCatalog interface {
	FindByID(ctx context.Context, id string) (*event.Event, error)
}

// Service owns the registration payment lifecycle. Settling a registration
// (gateway confirm, admin verify, backfill) has two cascading effects: the
// event is appended to every roster member's paid list, and the backing team
// is locked. Neither cascade runs in a transaction with the status write;
// both are idempotent so a retry converges.
type Service struct {
	regs        Store
	submissions SubmissionStore
	events      EventCatalog
	teams       *team.Service
	profiles    profile.Store
	gateway     Gateway
}

func NewService(regs Store, submissions SubmissionStore, events EventCatalog, teams *team.Service, profiles profile.Store, gw Gateway) *Service {
	return &Service{
		regs:        regs,
		submissions: submissions,
		events:      events,
		teams:       teams,
		profiles:    profiles,
		gateway:     gw,
	}
}

// Register creates a registration for the caller's team (or for the caller
// alone, for individual events) and opens a gateway order for the event fee.
// A previous failed registration for the same pair is reset and retried
// rather than duplicated. Free events settle immediately.
func (s *Service) Register(ctx context.Context, authID, eventID string, selectedMembers []string) (*Registration, error) {
	caller, err := s.callerProfile(ctx, authID)
	if err != nil {
		return nil, err
	}
	ev, err := s.events.FindByID(ctx, eventID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "event not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to load event", err)
	}
	if !ev.IsLive {
		return nil, dErrors.New(dErrors.CodeConflict, "registrations for this event are closed")
	}
	if !ev.Deadline.IsZero() && time.Now().UTC().After(ev.Deadline) {
		return nil, dErrors.New(dErrors.CodeConflict, "registration deadline has passed")
	}

	var (
		ownerID string
		teamID  string
		roster  []string
		t       *team.Team
	)
	if ev.IsTeamEvent {
		esports := ev.Category == "esports"
		tid := caller.TeamIDFor(esports)
		if tid == "" {
			return nil, dErrors.New(dErrors.CodeValidation, "create or join a team before registering")
		}
		if t, err = s.teams.Get(ctx, tid); err != nil {
			return nil, err
		}
		if t.LeaderID != caller.ID {
			return nil, dErrors.New(dErrors.CodeForbidden, "only the team leader can register the team")
		}
		if err := validateRoster(ev, t, selectedMembers); err != nil {
			return nil, err
		}
		ownerID, teamID, roster = t.ID, t.ID, selectedMembers
	} else {
		ownerID, roster = caller.ID, []string{caller.ID}
	}

	now := time.Now().UTC()
	if existing, err := s.regs.FindByOwnerAndEvent(ctx, ownerID, eventID); err == nil {
		switch existing.Status {
		case StatusFailed, StatusRefunded:
			// Retry path: reuse the document so the unique index stays
			// satisfied and the attempt trail is preserved.
			existing.SelectedMembers = roster
			existing.Status = StatusInitiated
			existing.GatewayOrderID = ""
			existing.GatewayPaymentID = ""
			existing.Attempts = append(existing.Attempts, PaymentAttempt{At: now, Status: StatusInitiated, Note: "re-registered"})
			return s.openOrder(ctx, existing, ev, t)
		default:
			return nil, dErrors.New(dErrors.CodeConflict, "already registered for this event")
		}
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to check existing registration", err)
	}

	r := &Registration{
		OwnerID:         ownerID,
		TeamID:          teamID,
		EventID:         eventID,
		SelectedMembers: roster,
		Status:          StatusInitiated,
		AmountExpected:  ev.Fee,
		Attempts:        []PaymentAttempt{{At: now, Status: StatusInitiated}},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.recomputeDisplay(ctx, r, ev, t)
	if err := s.regs.Insert(ctx, r); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "already registered for this event")
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to create registration", err)
	}
	return s.openOrder(ctx, r, ev, t)
}

// openOrder moves an initiated registration to pending with a gateway order
// attached, or settles it straight away when the event is free.
func (s *Service) openOrder(ctx context.Context, r *Registration, ev *event.Event, t *team.Team) (*Registration, error) {
	now := time.Now().UTC()
	if ev.Fee == 0 {
		r.Status = StatusPaid
		r.Attempts = append(r.Attempts, PaymentAttempt{At: now, Status: StatusPaid, Note: "free event"})
		r.UpdatedAt = now
		s.recomputeDisplay(ctx, r, ev, t)
		if err := s.regs.Update(ctx, r); err != nil {
			return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to update registration", err)
		}
		if err := s.settleEffects(ctx, r); err != nil {
			return nil, err
		}
		return r, nil
	}

	order, err := s.gateway.CreateOrder(ctx, r.ID, r.AmountExpected)
	if err != nil {
		// Leave it initiated; the next submit hits the retry path.
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to open payment order", err)
	}
	r.Status = StatusPending
	r.GatewayOrderID = order.ID
	r.Attempts = append(r.Attempts, PaymentAttempt{At: now, GatewayOrderID: order.ID, Status: StatusPending})
	r.UpdatedAt = now
	s.recomputeDisplay(ctx, r, ev, t)
	if err := s.regs.Update(ctx, r); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to update registration", err)
	}
	return r, nil
}

// ConfirmPayment settles a registration after a successful gateway callback.
// Confirming an already settled registration is a no-op, so replayed
// callbacks converge instead of erroring.
func (s *Service) ConfirmPayment(ctx context.Context, registrationID, gatewayPaymentID string, amount int) (*Registration, error) {
	r, err := s.get(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if r.Status.Settled() {
		return r, nil
	}
	if r.Status == StatusFailed || r.Status == StatusRefunded {
		return nil, dErrors.New(dErrors.CodeConflict, "registration is no longer payable")
	}

	now := time.Now().UTC()
	r.Status = StatusPaid
	r.GatewayPaymentID = gatewayPaymentID
	r.AmountPaid = amount
	r.Attempts = append(r.Attempts, PaymentAttempt{At: now, GatewayOrderID: r.GatewayOrderID, Status: StatusPaid})
	r.UpdatedAt = now
	if err := s.regs.Update(ctx, r); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to update registration", err)
	}
	if err := s.settleEffects(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// FailPayment records a failed gateway callback.
func (s *Service) FailPayment(ctx context.Context, registrationID, note string) (*Registration, error) {
	r, err := s.get(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if r.Status.Settled() {
		return nil, dErrors.New(dErrors.CodeConflict, "registration is already paid")
	}
	now := time.Now().UTC()
	r.Status = StatusFailed
	r.Attempts = append(r.Attempts, PaymentAttempt{At: now, GatewayOrderID: r.GatewayOrderID, Status: StatusFailed, Note: note})
	r.UpdatedAt = now
	if err := s.regs.Update(ctx, r); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to update registration", err)
	}
	return r, nil
}

// SubmitPayment records a user-reported manual payment and parks the
// registration in verification_pending for admin review.
func (s *Service) SubmitPayment(ctx context.Context, authID string, in SubmissionInput) (*PaymentSubmission, error) {
	caller, err := s.callerProfile(ctx, authID)
	if err != nil {
		return nil, err
	}
	if in.TransactionID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "transaction id is required")
	}
	r, err := s.get(ctx, in.RegistrationID)
	if err != nil {
		return nil, err
	}
	if !r.Names(caller.ID) && r.OwnerID != caller.ID {
		return nil, dErrors.New(dErrors.CodeForbidden, "registration does not belong to you")
	}
	if r.Status.Settled() {
		return nil, dErrors.New(dErrors.CodeConflict, "registration is already paid")
	}

	now := time.Now().UTC()
	sub := &PaymentSubmission{
		AuthID:         authID,
		RegistrationID: r.ID,
		TransactionID:  in.TransactionID,
		ScreenshotURL:  in.ScreenshotURL,
		ClaimedAmount:  in.ClaimedAmount,
		ReviewStatus:   "pending",
		CreatedAt:      now,
	}
	if err := s.submissions.Insert(ctx, sub); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to record payment report", err)
	}

	r.Status = StatusVerificationPending
	r.Attempts = append(r.Attempts, PaymentAttempt{At: now, Status: StatusVerificationPending, Note: "manual payment reported"})
	r.UpdatedAt = now
	if err := s.regs.Update(ctx, r); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to update registration", err)
	}
	return sub, nil
}

// SubmissionInput is the user-reported manual payment form.
type SubmissionInput struct {
	RegistrationID string `json:"registrationId"`
	TransactionID  string `json:"transactionId"`
	ScreenshotURL  string `json:"screenshotUrl"`
	ClaimedAmount  int    `json:"claimedAmount"`
}

// MarkVerified is the admin decision that a manual payment is genuine.
func (s *Service) MarkVerified(ctx context.Context, registrationID, verifierID, note string) (*Registration, error) {
	r, err := s.get(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if r.Status.Settled() {
		return nil, dErrors.New(dErrors.CodeConflict, "registration is already paid")
	}
	now := time.Now().UTC()
	r.Status = StatusManualVerified
	r.Verification = &Verification{VerifierID: verifierID, At: now, Note: note}
	r.Attempts = append(r.Attempts, PaymentAttempt{At: now, Status: StatusManualVerified, Note: note})
	r.UpdatedAt = now
	if err := s.regs.Update(ctx, r); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to update registration", err)
	}
	if err := s.settleEffects(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// MarkRejected is the admin decision that a manual payment is bogus. The
// registration goes to failed and can be retried.
func (s *Service) MarkRejected(ctx context.Context, registrationID, verifierID, note string) (*Registration, error) {
	r, err := s.get(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if r.Status.Settled() {
		return nil, dErrors.New(dErrors.CodeConflict, "registration is already paid")
	}
	now := time.Now().UTC()
	r.Status = StatusFailed
	r.Verification = &Verification{VerifierID: verifierID, At: now, Note: note}
	r.Attempts = append(r.Attempts, PaymentAttempt{At: now, Status: StatusFailed, Note: note})
	r.UpdatedAt = now
	if err := s.regs.Update(ctx, r); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to update registration", err)
	}
	return r, nil
}

// BackfillPaid creates (or upgrades) a manually verified registration
// outside the normal flow. It is the escape hatch for desk payments.
func (s *Service) BackfillPaid(ctx context.Context, t *team.Team, ev *event.Event, verifierID, note string) (*Registration, error) {
	now := time.Now().UTC()
	r, err := s.regs.FindByOwnerAndEvent(ctx, t.ID, ev.ID)
	switch {
	case err == nil:
		if r.Status.Settled() {
			return nil, dErrors.New(dErrors.CodeConflict, "registration is already paid")
		}
	case errors.Is(err, sentinel.ErrNotFound):
		r = &Registration{
			OwnerID:         t.ID,
			TeamID:          t.ID,
			EventID:         ev.ID,
			SelectedMembers: append([]string(nil), t.Members...),
			AmountExpected:  ev.Fee,
			CreatedAt:       now,
		}
		s.recomputeDisplay(ctx, r, ev, t)
		if err := s.regs.Insert(ctx, r); err != nil {
			return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to create registration", err)
		}
	default:
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to load registration", err)
	}

	r.Status = StatusManualVerified
	r.Verification = &Verification{VerifierID: verifierID, At: now, Note: note}
	r.Attempts = append(r.Attempts, PaymentAttempt{At: now, Status: StatusManualVerified, Note: note})
	r.UpdatedAt = now
	if err := s.regs.Update(ctx, r); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to update registration", err)
	}
	if err := s.settleEffects(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Get returns a registration by id.
func (s *Service) Get(ctx context.Context, registrationID string) (*Registration, error) {
	return s.get(ctx, registrationID)
}

// Mine returns every registration whose roster includes the caller.
func (s *Service) Mine(ctx context.Context, authID string) ([]*Registration, error) {
	caller, err := s.callerProfile(ctx, authID)
	if err != nil {
		return nil, err
	}
	out, err := s.regs.FindByMember(ctx, caller.ID)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to list registrations", err)
	}
	return out, nil
}

// ListAdmin returns registrations for the verification dashboard.
func (s *Service) ListAdmin(ctx context.Context, f ListFilter) ([]*Registration, error) {
	out, err := s.regs.List(ctx, f)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to list registrations", err)
	}
	return out, nil
}

// PendingSubmissions returns unreviewed manual payment reports.
func (s *Service) PendingSubmissions(ctx context.Context) ([]*PaymentSubmission, error) {
	out, err := s.submissions.ListPending(ctx)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to list payment reports", err)
	}
	return out, nil
}

// HasSettled reports whether the profile is on the roster of a settled
// registration for the event. Forum access checks call this on every read;
// the answer is never cached.
func (s *Service) HasSettled(ctx context.Context, eventID, profileID string) (bool, error) {
	regs, err := s.regs.FindByEventAndMember(ctx, eventID, profileID)
	if err != nil {
		return false, dErrors.Wrap(dErrors.CodeInternal, "failed to check registrations", err)
	}
	for _, r := range regs {
		if r.Status.Settled() {
			return true, nil
		}
	}
	return false, nil
}

// settleEffects runs the cascades that follow a settled payment: paid-event
// bookkeeping on every roster member and locking the backing team. Both are
// idempotent.
func (s *Service) settleEffects(ctx context.Context, r *Registration) error {
	if err := s.profiles.AddEventRefs(ctx, r.SelectedMembers, r.EventID, true); err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "failed to record paid events", err)
	}
	if r.TeamID != "" {
		if err := s.teams.Lock(ctx, r.TeamID); err != nil {
			return err
		}
	}
	return nil
}

// recomputeDisplay refreshes the denormalized read-path fields. Lookup
// failures leave the cache partially filled rather than failing the write.
func (s *Service) recomputeDisplay(ctx context.Context, r *Registration, ev *event.Event, t *team.Team) {
	r.Display = DisplayCache{
		EventTitle:  ev.Title,
		EventSlug:   ev.Slug,
		MemberCount: len(r.SelectedMembers),
	}
	if t != nil {
		r.Display.TeamName = t.Name
		if leader, err := s.profiles.FindByID(ctx, t.LeaderID); err == nil {
			r.Display.LeaderName = leader.DisplayName()
			r.Display.LeaderEmail = leader.Email
		}
	} else if len(r.SelectedMembers) == 1 {
		if p, err := s.profiles.FindByID(ctx, r.SelectedMembers[0]); err == nil {
			r.Display.LeaderName = p.DisplayName()
			r.Display.LeaderEmail = p.Email
		}
	}
}

func validateRoster(ev *event.Event, t *team.Team, roster []string) error {
	if len(roster) < ev.MinTeamSize || len(roster) > ev.MaxTeamSize {
		return dErrors.New(dErrors.CodeValidation, "selected roster does not fit the event's team size")
	}
	seen := make(map[string]bool, len(roster))
	for _, id := range roster {
		if seen[id] {
			return dErrors.New(dErrors.CodeValidation, "roster contains duplicate members")
		}
		seen[id] = true
		if !t.HasMember(id) {
			return dErrors.New(dErrors.CodeValidation, "roster includes someone outside your team")
		}
	}
	return nil
}

func (s *Service) get(ctx context.Context, registrationID string) (*Registration, error) {
	r, err := s.regs.FindByID(ctx, registrationID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "registration not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to load registration", err)
	}
	return r, nil
}

func (s *Service) callerProfile(ctx context.Context, authID string) (*profile.Profile, error) {
	p, err := s.profiles.FindByAuthID(ctx, authID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeValidation, "complete onboarding first")
	}
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to load profile", err)
	}
	return p, nil
}
