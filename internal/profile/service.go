package profile

import (
	"context"
	"errors"
	"strings"
	"time"

	dErrors "felicity/pkg/domain-errors"
	"felicity/pkg/platform/sentinel"
)

// Store is the persistence seam for profiles. The team and registration
// services share it for the cross-entity mutations the document model needs
// (team reference cascades, paid-event bookkeeping).
type Store interface {
	Insert(ctx context.Context, p *Profile) error
	Update(ctx context.Context, p *Profile) error
	FindByAuthID(ctx context.Context, authID string) (*Profile, error)
	FindByID(ctx context.Context, id string) (*Profile, error)
	FindByIDs(ctx context.Context, ids []string) ([]*Profile, error)
	FindByUsername(ctx context.Context, username string) (*Profile, error)

	// SetTeam sets (or clears, with teamID=="") the team reference of one
	// profile for a category.
	SetTeam(ctx context.Context, profileID string, esports bool, teamID string) error
	// ClearTeamForMembers clears the team reference for every listed member.
	ClearTeamForMembers(ctx context.Context, memberIDs []string, esports bool) error
	// PullInvite strips teamID from every profile's pending invites.
	PullInvite(ctx context.Context, teamID string) error
	// AddEventRefs appends the event to the registered (and optionally paid)
	// lists of the given profiles.
	AddEventRefs(ctx context.Context, profileIDs []string, eventID string, paid bool) error
}

// Service owns onboarding and profile updates.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Onboard validates the submitted form and upserts the caller's profile with
// onboarding marked complete. Username collisions are user error, reported as
// a 400 per the product contract (not a 409).
func (s *Service) Onboard(ctx context.Context, authID string, in OnboardingInput) (*Profile, error) {
	if authID == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing identity")
	}
	if err := validateOnboarding(in); err != nil {
		return nil, err
	}

	username := strings.ToLower(strings.TrimSpace(in.Username))
	if existing, err := s.store.FindByUsername(ctx, username); err == nil && existing.AuthID != authID {
		return nil, dErrors.New(dErrors.CodeValidation, "Username is already taken")
	} else if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to check username", err)
	}

	now := time.Now().UTC()
	existing, err := s.store.FindByAuthID(ctx, authID)
	switch {
	case err == nil:
		existing.Email = in.Email
		existing.FirstName = in.FirstName
		existing.LastName = in.LastName
		existing.Username = username
		existing.College = in.College
		existing.Phone = in.Phone
		existing.RollNumber = in.RollNumber
		existing.Gender = in.Gender
		existing.AvatarURL = in.AvatarURL
		existing.OnboardingCompleted = true
		existing.UpdatedAt = now
		if err := s.store.Update(ctx, existing); err != nil {
			return nil, translateWrite(err)
		}
		return existing, nil
	case errors.Is(err, sentinel.ErrNotFound):
		p := &Profile{
			AuthID:              authID,
			Email:               in.Email,
			FirstName:           in.FirstName,
			LastName:            in.LastName,
			Username:            username,
			Role:                "user",
			College:             in.College,
			Phone:               in.Phone,
			RollNumber:          in.RollNumber,
			Gender:              in.Gender,
			AvatarURL:           in.AvatarURL,
			OnboardingCompleted: true,
			CreatedAt:           now,
			UpdatedAt:           now,
		}
		if err := s.store.Insert(ctx, p); err != nil {
			return nil, translateWrite(err)
		}
		return p, nil
	default:
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to load profile", err)
	}
}

// Get returns the caller's profile.
func (s *Service) Get(ctx context.Context, authID string) (*Profile, error) {
	p, err := s.store.FindByAuthID(ctx, authID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "profile not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to load profile", err)
	}
	return p, nil
}

// Update applies the PATCHable fields to the caller's profile.
func (s *Service) Update(ctx context.Context, authID string, in UpdateInput) (*Profile, error) {
	p, err := s.Get(ctx, authID)
	if err != nil {
		return nil, err
	}
	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	apply(&p.FirstName, in.FirstName)
	apply(&p.LastName, in.LastName)
	apply(&p.College, in.College)
	apply(&p.Phone, in.Phone)
	apply(&p.RollNumber, in.RollNumber)
	apply(&p.Gender, in.Gender)
	apply(&p.AvatarURL, in.AvatarURL)
	if p.FirstName == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "first name must not be empty")
	}
	p.UpdatedAt = time.Now().UTC()
	if err := s.store.Update(ctx, p); err != nil {
		return nil, translateWrite(err)
	}
	return p, nil
}

// RoleByAuthID implements the identity role directory. Identities with no
// profile yet are plain users.
func (s *Service) RoleByAuthID(ctx context.Context, authID string) (string, error) {
	p, err := s.store.FindByAuthID(ctx, authID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return "user", nil
	}
	if err != nil {
		return "", err
	}
	return p.Role, nil
}

func validateOnboarding(in OnboardingInput) error {
	switch {
	case strings.TrimSpace(in.Email) == "":
		return dErrors.New(dErrors.CodeValidation, "email is required")
	case strings.TrimSpace(in.FirstName) == "":
		return dErrors.New(dErrors.CodeValidation, "first name is required")
	case strings.TrimSpace(in.Username) == "":
		return dErrors.New(dErrors.CodeValidation, "username is required")
	case strings.TrimSpace(in.College) == "":
		return dErrors.New(dErrors.CodeValidation, "college is required")
	case strings.TrimSpace(in.Phone) == "":
		return dErrors.New(dErrors.CodeValidation, "phone number is required")
	}
	return nil
}

// translateWrite converts store sentinels into domain errors. A conflict here
// means a unique index caught a race on auth_id or username.
func translateWrite(err error) error {
	if errors.Is(err, sentinel.ErrConflict) {
		return dErrors.New(dErrors.CodeValidation, "Username is already taken")
	}
	return dErrors.Wrap(dErrors.CodeInternal, "failed to save profile", err)
}
