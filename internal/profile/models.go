package profile

import (
	"strings"
	"time"
)

// Profile is the persistent user record, keyed by the external identity id.
// Created on onboarding submission (upsert); never hard-deleted in normal
// flow.
type Profile struct {
	ID         string `bson:"_id,omitempty" json:"id"`
	AuthID     string `bson:"auth_id" json:"-"`
	Email      string `bson:"email" json:"email"`
	FirstName  string `bson:"first_name" json:"firstName"`
	LastName   string `bson:"last_name" json:"lastName"`
	Username   string `bson:"username" json:"username"`
	Role       string `bson:"role" json:"role"`
	College    string `bson:"college" json:"college"`
	Phone      string `bson:"phone" json:"phone"`
	RollNumber string `bson:"roll_number" json:"rollNumber"`
	Gender     string `bson:"gender" json:"gender"`
	AvatarURL  string `bson:"avatar_url" json:"avatarUrl"`

	OnboardingCompleted bool `bson:"onboarding_completed" json:"onboardingCompleted"`

	// At most one team per category.
	CurrentTeamID string `bson:"current_team_id,omitempty" json:"currentTeamId,omitempty"`
	EsportsTeamID string `bson:"esports_team_id,omitempty" json:"esportsTeamId,omitempty"`

	PendingInvites   []string `bson:"pending_invites,omitempty" json:"pendingInvites,omitempty"`
	RegisteredEvents []string `bson:"registered_events,omitempty" json:"registeredEvents,omitempty"`
	PaidEvents       []string `bson:"paid_events,omitempty" json:"paidEvents,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// DisplayName is what forum posts and denormalized registration fields carry.
func (p *Profile) DisplayName() string {
	name := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if name == "" {
		return p.Username
	}
	return name
}

// Complete reports whether the contact fields required for team play are
// filled in. Team join is refused until this holds.
func (p *Profile) Complete() bool {
	return p.OnboardingCompleted &&
		p.Email != "" &&
		p.FirstName != "" &&
		p.College != "" &&
		p.Phone != ""
}

// TeamIDFor returns the team reference for a category.
func (p *Profile) TeamIDFor(esports bool) string {
	if esports {
		return p.EsportsTeamID
	}
	return p.CurrentTeamID
}

// OnboardingInput is the onboarding form payload.
type OnboardingInput struct {
	Email      string `json:"email"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Username   string `json:"username"`
	College    string `json:"college"`
	Phone      string `json:"phone"`
	RollNumber string `json:"rollNumber"`
	Gender     string `json:"gender"`
	AvatarURL  string `json:"avatarUrl"`
}

// UpdateInput carries the PATCHable profile fields. Role, username and
// auth id are deliberately absent.
type UpdateInput struct {
	FirstName  *string `json:"firstName"`
	LastName   *string `json:"lastName"`
	College    *string `json:"college"`
	Phone      *string `json:"phone"`
	RollNumber *string `json:"rollNumber"`
	Gender     *string `json:"gender"`
	AvatarURL  *string `json:"avatarUrl"`
}
