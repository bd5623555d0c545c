package team

import (
	"context"
	"errors"
	"strings"
	"time"

	"felicity/internal/profile"
	dErrors "felicity/pkg/domain-errors"
	"felicity/pkg/platform/sentinel"
)

// Store is the persistence seam for teams.
type Store interface {
	Insert(ctx context.Context, t *Team) error
	Update(ctx context.Context, t *Team) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Team, error)
	FindByName(ctx context.Context, name string) (*Team, error)
}

// Service enforces the team-formation invariants: one team per category per
// profile, same-college membership for non-esports teams, and frozen
// membership once a team is locked. Cross-entity cascades go through the
// profile store; there is no transaction spanning the writes, the unique
// indexes are the race backstop.
type Service struct {
	teams    Store
	profiles profile.Store
}

func NewService(teams Store, profiles profile.Store) *Service {
	return &Service{teams: teams, profiles: profiles}
}

// Create makes the caller leader and sole member of a new team.
func (s *Service) Create(ctx context.Context, authID, name string, esports bool) (*Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "team name is required")
	}

	caller, err := s.callerProfile(ctx, authID)
	if err != nil {
		return nil, err
	}
	if caller.TeamIDFor(esports) != "" {
		return nil, dErrors.New(dErrors.CodeConflict, "you are already in a team of this category")
	}

	now := time.Now().UTC()
	t := &Team{
		Name:      name,
		LeaderID:  caller.ID,
		College:   caller.College,
		Members:   []string{caller.ID},
		IsEsports: esports,
		MemberCap: DefaultMemberCap,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.teams.Insert(ctx, t); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "team name is already taken")
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to create team", err)
	}
	if err := s.profiles.SetTeam(ctx, caller.ID, esports, t.ID); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to record team reference", err)
	}
	return t, nil
}

// RequestJoin appends the caller to the team's join requests. Duplicate
// submission is user error and rejected, not silently skipped.
func (s *Service) RequestJoin(ctx context.Context, authID, teamID string) error {
	caller, err := s.callerProfile(ctx, authID)
	if err != nil {
		return err
	}
	if !caller.Complete() {
		return dErrors.New(dErrors.CodeValidation, "complete your profile before joining a team")
	}

	t, err := s.get(ctx, teamID)
	if err != nil {
		return err
	}
	if caller.TeamIDFor(t.IsEsports) != "" {
		return dErrors.New(dErrors.CodeConflict, "you are already in a team of this category")
	}
	if !t.IsEsports && !strings.EqualFold(caller.College, t.College) {
		return dErrors.New(dErrors.CodeForbidden, "team is restricted to members of the leader's college")
	}
	if t.IsLocked {
		return dErrors.New(dErrors.CodeConflict, "team is locked")
	}
	if t.AtCapacity() {
		return dErrors.New(dErrors.CodeConflict, "team is full")
	}
	if t.HasJoinRequest(caller.ID) {
		return dErrors.New(dErrors.CodeConflict, "join request already pending")
	}
	if t.HasMember(caller.ID) {
		return dErrors.New(dErrors.CodeConflict, "you are already a member of this team")
	}

	t.JoinRequests = append(t.JoinRequests, caller.ID)
	t.UpdatedAt = time.Now().UTC()
	if err := s.teams.Update(ctx, t); err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "failed to record join request", err)
	}
	return nil
}

// ApproveJoin promotes a pending join request into full membership. Only the
// leader may approve.
func (s *Service) ApproveJoin(ctx context.Context, authID, teamID, requesterID string) (*Team, error) {
	caller, err := s.callerProfile(ctx, authID)
	if err != nil {
		return nil, err
	}
	t, err := s.get(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if t.LeaderID != caller.ID {
		return nil, dErrors.New(dErrors.CodeForbidden, "only the team leader can approve requests")
	}
	if t.IsLocked {
		return nil, dErrors.New(dErrors.CodeConflict, "team is locked")
	}
	if !t.HasJoinRequest(requesterID) {
		return nil, dErrors.New(dErrors.CodeNotFound, "no pending request from that user")
	}
	if t.AtCapacity() {
		return nil, dErrors.New(dErrors.CodeConflict, "team is full")
	}

	requester, err := s.profiles.FindByID(ctx, requesterID)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to load requester", err)
	}
	// The requester may have joined another team since filing the request.
	if requester.TeamIDFor(t.IsEsports) != "" {
		return nil, dErrors.New(dErrors.CodeConflict, "requester already joined another team")
	}

	t.JoinRequests = remove(t.JoinRequests, requesterID)
	t.Members = append(t.Members, requesterID)
	t.UpdatedAt = time.Now().UTC()
	if err := s.teams.Update(ctx, t); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to add member", err)
	}
	if err := s.profiles.SetTeam(ctx, requesterID, t.IsEsports, t.ID); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to record team reference", err)
	}
	return t, nil
}

// LeaveOrDisband removes the caller from their team of the given category.
// A leader leaving an unlocked team disbands it entirely: the team document
// is deleted, every member's team reference is cleared and the team is
// stripped from all pending invite lists.
func (s *Service) LeaveOrDisband(ctx context.Context, authID string, esports bool) error {
	caller, err := s.callerProfile(ctx, authID)
	if err != nil {
		return err
	}
	teamID := caller.TeamIDFor(esports)
	if teamID == "" {
		return dErrors.New(dErrors.CodeNotFound, "you have no team in this category")
	}
	t, err := s.get(ctx, teamID)
	if err != nil {
		return err
	}
	if t.IsLocked {
		return dErrors.New(dErrors.CodeConflict, "team is locked")
	}

	if t.LeaderID == caller.ID {
		// Full disband, not partial.
		if err := s.teams.Delete(ctx, t.ID); err != nil {
			return dErrors.Wrap(dErrors.CodeInternal, "failed to disband team", err)
		}
		if err := s.profiles.ClearTeamForMembers(ctx, t.Members, t.IsEsports); err != nil {
			return dErrors.Wrap(dErrors.CodeInternal, "failed to clear member references", err)
		}
		if err := s.profiles.PullInvite(ctx, t.ID); err != nil {
			return dErrors.Wrap(dErrors.CodeInternal, "failed to clear invitations", err)
		}
		return nil
	}

	t.Members = remove(t.Members, caller.ID)
	t.UpdatedAt = time.Now().UTC()
	if err := s.teams.Update(ctx, t); err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "failed to leave team", err)
	}
	if err := s.profiles.SetTeam(ctx, caller.ID, t.IsEsports, ""); err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "failed to clear team reference", err)
	}
	return nil
}

// Lock freezes the team's membership. Called by the registration flow once a
// payment reaches a paid or verifying state; locking is terminal.
func (s *Service) Lock(ctx context.Context, teamID string) error {
	t, err := s.get(ctx, teamID)
	if err != nil {
		return err
	}
	if t.IsLocked {
		return nil
	}
	t.IsLocked = true
	t.UpdatedAt = time.Now().UTC()
	if err := s.teams.Update(ctx, t); err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "failed to lock team", err)
	}
	return nil
}

// Get returns a team by id.
func (s *Service) Get(ctx context.Context, teamID string) (*Team, error) {
	return s.get(ctx, teamID)
}

// Mine returns both of the caller's teams (either may be nil).
func (s *Service) Mine(ctx context.Context, authID string) (current *Team, esports *Team, err error) {
	caller, err := s.callerProfile(ctx, authID)
	if err != nil {
		return nil, nil, err
	}
	if caller.CurrentTeamID != "" {
		if current, err = s.get(ctx, caller.CurrentTeamID); err != nil {
			return nil, nil, err
		}
	}
	if caller.EsportsTeamID != "" {
		if esports, err = s.get(ctx, caller.EsportsTeamID); err != nil {
			return nil, nil, err
		}
	}
	return current, esports, nil
}

// FindByName is used by the admin backfill path.
func (s *Service) FindByName(ctx context.Context, name string) (*Team, error) {
	t, err := s.teams.FindByName(ctx, name)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "team not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to load team", err)
	}
	return t, nil
}

func (s *Service) get(ctx context.Context, teamID string) (*Team, error) {
	t, err := s.teams.FindByID(ctx, teamID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "team not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to load team", err)
	}
	return t, nil
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

func remove(list []string, v string) []string {
	out := list[:0]
	for _, item := range list {
		if item != v {
			out = append(out, item)
		}
	}
	return out
}
