package profile_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"felicity/internal/profile"
	profilestore "felicity/internal/profile/store"
	dErrors "felicity/pkg/domain-errors"
)

func validOnboarding() profile.OnboardingInput {
	return profile.OnboardingInput{
		Email:      "asha@nitw.ac.in",
		FirstName:  "Asha",
		LastName:   "Rao",
		Username:   "AshaR",
		College:    "NIT Warangal",
		Phone:      "9876543210",
		RollNumber: "21CS042",
		Gender:     "female",
	}
}

func TestOnboardCreatesProfile(t *testing.T) {
	svc := profile.NewService(profilestore.NewMemoryStore())

	p, err := svc.Onboard(context.Background(), "auth-1", validOnboarding())
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "auth-1", p.AuthID)
	assert.Equal(t, "ashar", p.Username, "usernames are stored lowercased")
	assert.Equal(t, "user", p.Role)
	assert.True(t, p.OnboardingCompleted)
}

func TestOnboardUpsertsExistingProfile(t *testing.T) {
	svc := profile.NewService(profilestore.NewMemoryStore())

	first, err := svc.Onboard(context.Background(), "auth-1", validOnboarding())
	require.NoError(t, err)

	in := validOnboarding()
	in.College = "IIIT Hyderabad"
	second, err := svc.Onboard(context.Background(), "auth-1", in)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "re-onboarding updates the same document")
	assert.Equal(t, "IIIT Hyderabad", second.College)
	assert.Equal(t, "ashar", second.Username, "keeping one's own username is allowed")
}

func TestOnboardUsernameTaken(t *testing.T) {
	svc := profile.NewService(profilestore.NewMemoryStore())

	_, err := svc.Onboard(context.Background(), "auth-1", validOnboarding())
	require.NoError(t, err)

	in := validOnboarding()
	in.Email = "ravi@nitw.ac.in"
	in.Username = "ASHAR"
	_, err = svc.Onboard(context.Background(), "auth-2", in)
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeValidation))
	assert.Contains(t, err.Error(), "Username is already taken")
}

func TestOnboardValidation(t *testing.T) {
	svc := profile.NewService(profilestore.NewMemoryStore())

	in := validOnboarding()
	in.Phone = "  "
	_, err := svc.Onboard(context.Background(), "auth-1", in)
	assert.True(t, dErrors.Is(err, dErrors.CodeValidation))

	_, err = svc.Onboard(context.Background(), "", validOnboarding())
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
}

func TestUpdateAppliesPatchFields(t *testing.T) {
	svc := profile.NewService(profilestore.NewMemoryStore())

	_, err := svc.Onboard(context.Background(), "auth-1", validOnboarding())
	require.NoError(t, err)

	phone := " 9000000001 "
	p, err := svc.Update(context.Background(), "auth-1", profile.UpdateInput{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "9000000001", p.Phone)
	assert.Equal(t, "Asha", p.FirstName, "unset fields are untouched")

	empty := ""
	_, err = svc.Update(context.Background(), "auth-1", profile.UpdateInput{FirstName: &empty})
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeValidation))
}

func TestGetUnknownProfile(t *testing.T) {
	svc := profile.NewService(profilestore.NewMemoryStore())

	_, err := svc.Get(context.Background(), "auth-missing")
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeNotFound))
}

func TestRoleByAuthID(t *testing.T) {
	svc := profile.NewService(profilestore.NewMemoryStore())

	role, err := svc.RoleByAuthID(context.Background(), "auth-missing")
	require.NoError(t, err)
	assert.Equal(t, "user", role, "identities without a profile are plain users")

	_, err = svc.Onboard(context.Background(), "auth-1", validOnboarding())
	require.NoError(t, err)

	role, err = svc.RoleByAuthID(context.Background(), "auth-1")
	require.NoError(t, err)
	assert.Equal(t, "user", role)
}
