package team_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"felicity/internal/profile"
	profilestore "felicity/internal/profile/store"
	"felicity/internal/team"
	teamstore "felicity/internal/team/store"
	dErrors "felicity/pkg/domain-errors"
)

type fixture struct {
	svc      *team.Service
	profiles *profilestore.MemoryStore
	teams    *teamstore.MemoryStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	profiles := profilestore.NewMemoryStore()
	teams := teamstore.NewMemoryStore()
	return &fixture{
		svc:      team.NewService(teams, profiles),
		profiles: profiles,
		teams:    teams,
	}
}

func (f *fixture) addProfile(t *testing.T, authID, college string) *profile.Profile {
	t.Helper()
	p := &profile.Profile{
		AuthID:              authID,
		Email:               authID + "@fest.example",
		FirstName:           "User " + authID,
		Username:            authID,
		Role:                "user",
		College:             college,
		Phone:               "9999999999",
		OnboardingCompleted: true,
		CreatedAt:           time.Now(),
	}
	require.NoError(t, f.profiles.Insert(context.Background(), p))
	return p
}

func TestCreateTeam(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	leader := f.addProfile(t, "u1", "IIIT")

	created, err := f.svc.Create(ctx, "u1", "Alpha", false)
	require.NoError(t, err)
	assert.Equal(t, leader.ID, created.LeaderID)
	assert.Equal(t, []string{leader.ID}, created.Members)
	assert.Equal(t, "IIIT", created.College)

	// Team reference recorded on the leader's profile.
	reloaded, err := f.profiles.FindByID(ctx, leader.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, reloaded.CurrentTeamID)
}

func TestCreateTeamNameTaken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addProfile(t, "u1", "IIIT")
	f.addProfile(t, "u2", "IIIT")

	_, err := f.svc.Create(ctx, "u1", "Alpha", false)
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, "u2", "Alpha", false)
	assert.True(t, dErrors.Is(err, dErrors.CodeConflict))
}

func TestCreateSecondTeamSameCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addProfile(t, "u1", "IIIT")

	_, err := f.svc.Create(ctx, "u1", "Alpha", false)
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, "u1", "Beta", false)
	assert.True(t, dErrors.Is(err, dErrors.CodeConflict))

	// Esports is a separate category; a second team there is fine.
	_, err = f.svc.Create(ctx, "u1", "Alpha Esports", true)
	assert.NoError(t, err)
}

func TestJoinFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addProfile(t, "u1", "IIIT")
	u2 := f.addProfile(t, "u2", "IIIT")

	alpha, err := f.svc.Create(ctx, "u1", "Alpha", false)
	require.NoError(t, err)

	require.NoError(t, f.svc.RequestJoin(ctx, "u2", alpha.ID))

	// Duplicate submission is user error, not an idempotent skip.
	err = f.svc.RequestJoin(ctx, "u2", alpha.ID)
	assert.True(t, dErrors.Is(err, dErrors.CodeConflict))

	updated, err := f.svc.ApproveJoin(ctx, "u1", alpha.ID, u2.ID)
	require.NoError(t, err)
	assert.Len(t, updated.Members, 2)
	assert.Empty(t, updated.JoinRequests)

	// Both profiles now carry the team id.
	for _, authID := range []string{"u1", "u2"} {
		p, err := f.profiles.FindByAuthID(ctx, authID)
		require.NoError(t, err)
		assert.Equal(t, alpha.ID, p.CurrentTeamID, "profile %s", authID)
	}
}

func TestJoinCollegeMismatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addProfile(t, "u1", "IIIT")
	f.addProfile(t, "u3", "NIT")

	alpha, err := f.svc.Create(ctx, "u1", "Alpha", false)
	require.NoError(t, err)

	err = f.svc.RequestJoin(ctx, "u3", alpha.ID)
	assert.True(t, dErrors.Is(err, dErrors.CodeForbidden))
}

func TestJoinCollegeMismatchAllowedForEsports(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addProfile(t, "u1", "IIIT")
	f.addProfile(t, "u3", "NIT")

	squad, err := f.svc.Create(ctx, "u1", "Squad", true)
	require.NoError(t, err)

	assert.NoError(t, f.svc.RequestJoin(ctx, "u3", squad.ID))
}

func TestJoinIncompleteProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addProfile(t, "u1", "IIIT")
	incomplete := &profile.Profile{AuthID: "u4", Username: "u4", OnboardingCompleted: false}
	require.NoError(t, f.profiles.Insert(ctx, incomplete))

	alpha, err := f.svc.Create(ctx, "u1", "Alpha", false)
	require.NoError(t, err)

	err = f.svc.RequestJoin(ctx, "u4", alpha.ID)
	assert.True(t, dErrors.Is(err, dErrors.CodeValidation))
}

func TestLockedTeamRejectsMembershipChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addProfile(t, "u1", "IIIT")
	u2 := f.addProfile(t, "u2", "IIIT")
	f.addProfile(t, "u3", "IIIT")

	alpha, err := f.svc.Create(ctx, "u1", "Alpha", false)
	require.NoError(t, err)
	require.NoError(t, f.svc.RequestJoin(ctx, "u2", alpha.ID))
	_, err = f.svc.ApproveJoin(ctx, "u1", alpha.ID, u2.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.Lock(ctx, alpha.ID))
	// Lock is idempotent.
	require.NoError(t, f.svc.Lock(ctx, alpha.ID))

	err = f.svc.RequestJoin(ctx, "u3", alpha.ID)
	assert.True(t, dErrors.Is(err, dErrors.CodeConflict))

	err = f.svc.LeaveOrDisband(ctx, "u2", false)
	assert.True(t, dErrors.Is(err, dErrors.CodeConflict))

	err = f.svc.LeaveOrDisband(ctx, "u1", false)
	assert.True(t, dErrors.Is(err, dErrors.CodeConflict), "leader cannot disband a locked team")
}

func TestMemberLeaveKeepsOthers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addProfile(t, "u1", "IIIT")
	u2 := f.addProfile(t, "u2", "IIIT")

	alpha, err := f.svc.Create(ctx, "u1", "Alpha", false)
	require.NoError(t, err)
	require.NoError(t, f.svc.RequestJoin(ctx, "u2", alpha.ID))
	_, err = f.svc.ApproveJoin(ctx, "u1", alpha.ID, u2.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.LeaveOrDisband(ctx, "u2", false))

	reloaded, err := f.svc.Get(ctx, alpha.ID)
	require.NoError(t, err)
	assert.Len(t, reloaded.Members, 1, "only the leaver is removed")

	p2, err := f.profiles.FindByID(ctx, u2.ID)
	require.NoError(t, err)
	assert.Empty(t, p2.CurrentTeamID)

	p1, err := f.profiles.FindByAuthID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, alpha.ID, p1.CurrentTeamID, "leader reference untouched")
}

func TestLeaderLeaveDisbands(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u1 := f.addProfile(t, "u1", "IIIT")
	u2 := f.addProfile(t, "u2", "IIIT")
	invited := f.addProfile(t, "u5", "IIIT")

	alpha, err := f.svc.Create(ctx, "u1", "Alpha", false)
	require.NoError(t, err)
	require.NoError(t, f.svc.RequestJoin(ctx, "u2", alpha.ID))
	_, err = f.svc.ApproveJoin(ctx, "u1", alpha.ID, u2.ID)
	require.NoError(t, err)

	// Simulate a pending invitation held by a third profile.
	invited.PendingInvites = []string{alpha.ID}
	require.NoError(t, f.profiles.Update(ctx, invited))

	require.NoError(t, f.svc.LeaveOrDisband(ctx, "u1", false))

	_, err = f.svc.Get(ctx, alpha.ID)
	assert.True(t, dErrors.Is(err, dErrors.CodeNotFound), "team document deleted")

	for _, id := range []string{u1.ID, u2.ID} {
		p, err := f.profiles.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Empty(t, p.CurrentTeamID, "member %s reference cleared", id)
	}

	p5, err := f.profiles.FindByID(ctx, invited.ID)
	require.NoError(t, err)
	assert.Empty(t, p5.PendingInvites, "invitation stripped on disband")
}

func TestLeaveWithoutTeam(t *testing.T) {
	f := newFixture(t)
	f.addProfile(t, "u1", "IIIT")

	err := f.svc.LeaveOrDisband(context.Background(), "u1", false)
	assert.True(t, dErrors.Is(err, dErrors.CodeNotFound))
}
