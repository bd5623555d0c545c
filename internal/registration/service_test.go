package registration_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"felicity/internal/event"
	eventstore "felicity/internal/event/store"
	"felicity/internal/profile"
	profilestore "felicity/internal/profile/store"
	"felicity/internal/registration"
	registrationstore "felicity/internal/registration/store"
	"felicity/internal/team"
	teamstore "felicity/internal/team/store"
	dErrors "felicity/pkg/domain-errors"
)

type fixture struct {
	svc      *registration.Service
	teamSvc  *team.Service
	profiles *profilestore.MemoryStore
	teams    *teamstore.MemoryStore
	events   *eventstore.MemoryStore
	regs     *registrationstore.MemoryStore
	subs     *registrationstore.MemorySubmissionStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	profiles := profilestore.NewMemoryStore()
	teams := teamstore.NewMemoryStore()
	events := eventstore.NewMemoryStore()
	regs := registrationstore.NewMemoryStore()
	subs := registrationstore.NewMemorySubmissionStore()

	teamSvc := team.NewService(teams, profiles)
	svc := registration.NewService(regs, subs, events, teamSvc, profiles, registration.NewStubGateway())
	return &fixture{
		svc:      svc,
		teamSvc:  teamSvc,
		profiles: profiles,
		teams:    teams,
		events:   events,
		regs:     regs,
		subs:     subs,
	}
}

func (f *fixture) addProfile(t *testing.T, authID string) *profile.Profile {
	t.Helper()
	p := &profile.Profile{
		AuthID:              authID,
		Email:               authID + "@fest.example",
		FirstName:           "User " + authID,
		Username:            authID,
		Role:                "user",
		College:             "IIIT",
		Phone:               "9999999999",
		OnboardingCompleted: true,
		CreatedAt:           time.Now(),
	}
	require.NoError(t, f.profiles.Insert(context.Background(), p))
	return p
}

func (f *fixture) addEvent(t *testing.T, title string, fee, minSize, maxSize int, teamEvent bool) *event.Event {
	t.Helper()
	ev := &event.Event{
		Title:       title,
		Slug:        event.Slugify(title),
		Category:    "technical",
		Fee:         fee,
		MinTeamSize: minSize,
		MaxTeamSize: maxSize,
		IsLive:      true,
		IsTeamEvent: teamEvent,
		CreatedAt:   time.Now(),
	}
	require.NoError(t, f.events.Insert(context.Background(), ev))
	return ev
}

// makeTeam creates a team led by leader and approves every member into it.
func (f *fixture) makeTeam(t *testing.T, name string, leader *profile.Profile, members ...*profile.Profile) *team.Team {
	t.Helper()
	ctx := context.Background()
	created, err := f.teamSvc.Create(ctx, leader.AuthID, name, false)
	require.NoError(t, err)
	for _, m := range members {
		require.NoError(t, f.teamSvc.RequestJoin(ctx, m.AuthID, created.ID))
		_, err := f.teamSvc.ApproveJoin(ctx, leader.AuthID, created.ID, m.ID)
		require.NoError(t, err)
	}
	full, err := f.teamSvc.Get(ctx, created.ID)
	require.NoError(t, err)
	return full
}

func TestRegisterTeamEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	leader := f.addProfile(t, "u1")
	member := f.addProfile(t, "u2")
	tm := f.makeTeam(t, "Alpha", leader, member)
	ev := f.addEvent(t, "Robo Wars", 500, 2, 3, true)

	reg, err := f.svc.Register(ctx, "u1", ev.ID, []string{leader.ID, member.ID})
	require.NoError(t, err)
	assert.Equal(t, registration.StatusPending, reg.Status)
	assert.Equal(t, tm.ID, reg.TeamID)
	assert.NotEmpty(t, reg.GatewayOrderID)
	assert.Equal(t, 500, reg.AmountExpected)
	assert.Equal(t, "Alpha", reg.Display.TeamName)
	assert.Equal(t, "Robo Wars", reg.Display.EventTitle)
	assert.Equal(t, 2, reg.Display.MemberCount)
}

func TestRegisterDuplicatePair(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	leader := f.addProfile(t, "u1")
	member := f.addProfile(t, "u2")
	f.makeTeam(t, "Alpha", leader, member)
	ev := f.addEvent(t, "Robo Wars", 500, 2, 3, true)

	_, err := f.svc.Register(ctx, "u1", ev.ID, []string{leader.ID, member.ID})
	require.NoError(t, err)

	_, err = f.svc.Register(ctx, "u1", ev.ID, []string{leader.ID, member.ID})
	assert.True(t, dErrors.Is(err, dErrors.CodeConflict))
}

func TestRegisterRosterValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	leader := f.addProfile(t, "u1")
	member := f.addProfile(t, "u2")
	outsider := f.addProfile(t, "u3")
	f.makeTeam(t, "Alpha", leader, member)
	ev := f.addEvent(t, "Robo Wars", 500, 2, 3, true)

	// Below the minimum size.
	_, err := f.svc.Register(ctx, "u1", ev.ID, []string{leader.ID})
	assert.True(t, dErrors.Is(err, dErrors.CodeValidation))

	// Roster member outside the team.
	_, err = f.svc.Register(ctx, "u1", ev.ID, []string{leader.ID, outsider.ID})
	assert.True(t, dErrors.Is(err, dErrors.CodeValidation))

	// Duplicate roster entry.
	_, err = f.svc.Register(ctx, "u1", ev.ID, []string{leader.ID, leader.ID})
	assert.True(t, dErrors.Is(err, dErrors.CodeValidation))
}

func TestRegisterOnlyLeader(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	leader := f.addProfile(t, "u1")
	member := f.addProfile(t, "u2")
	f.makeTeam(t, "Alpha", leader, member)
	ev := f.addEvent(t, "Robo Wars", 500, 2, 3, true)

	_, err := f.svc.Register(ctx, "u2", ev.ID, []string{leader.ID, member.ID})
	assert.True(t, dErrors.Is(err, dErrors.CodeForbidden))
}

func TestRegisterIndividualEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.addProfile(t, "u1")
	b := f.addProfile(t, "u2")
	ev := f.addEvent(t, "Code Golf", 100, 1, 1, false)

	regA, err := f.svc.Register(ctx, "u1", ev.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID}, regA.SelectedMembers)
	assert.Empty(t, regA.TeamID)

	// The same person cannot register twice.
	_, err = f.svc.Register(ctx, "u1", ev.ID, nil)
	assert.True(t, dErrors.Is(err, dErrors.CodeConflict))

	// Another person can.
	regB, err := f.svc.Register(ctx, "u2", ev.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, regB.SelectedMembers)
}

func TestFreeEventSettlesImmediately(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	leader := f.addProfile(t, "u1")
	member := f.addProfile(t, "u2")
	tm := f.makeTeam(t, "Alpha", leader, member)
	ev := f.addEvent(t, "Open Quiz", 0, 2, 2, true)

	reg, err := f.svc.Register(ctx, "u1", ev.ID, []string{leader.ID, member.ID})
	require.NoError(t, err)
	assert.Equal(t, registration.StatusPaid, reg.Status)

	locked, err := f.teamSvc.Get(ctx, tm.ID)
	require.NoError(t, err)
	assert.True(t, locked.IsLocked)

	p, err := f.profiles.FindByID(ctx, member.ID)
	require.NoError(t, err)
	assert.Contains(t, p.PaidEvents, ev.ID)
}

func TestConfirmPaymentIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	leader := f.addProfile(t, "u1")
	member := f.addProfile(t, "u2")
	tm := f.makeTeam(t, "Alpha", leader, member)
	ev := f.addEvent(t, "Robo Wars", 500, 2, 3, true)

	reg, err := f.svc.Register(ctx, "u1", ev.ID, []string{leader.ID, member.ID})
	require.NoError(t, err)

	paid, err := f.svc.ConfirmPayment(ctx, reg.ID, "pay_1", 500)
	require.NoError(t, err)
	assert.Equal(t, registration.StatusPaid, paid.Status)
	assert.Equal(t, 500, paid.AmountPaid)

	locked, err := f.teamSvc.Get(ctx, tm.ID)
	require.NoError(t, err)
	assert.True(t, locked.IsLocked)

	// Replayed callback converges without error or a second attempt entry.
	attempts := len(paid.Attempts)
	again, err := f.svc.ConfirmPayment(ctx, reg.ID, "pay_1", 500)
	require.NoError(t, err)
	assert.Equal(t, registration.StatusPaid, again.Status)
	assert.Len(t, again.Attempts, attempts)
}

func TestFailedPaymentCanRetry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	leader := f.addProfile(t, "u1")
	member := f.addProfile(t, "u2")
	f.makeTeam(t, "Alpha", leader, member)
	ev := f.addEvent(t, "Robo Wars", 500, 2, 3, true)

	reg, err := f.svc.Register(ctx, "u1", ev.ID, []string{leader.ID, member.ID})
	require.NoError(t, err)

	failed, err := f.svc.FailPayment(ctx, reg.ID, "card declined")
	require.NoError(t, err)
	assert.Equal(t, registration.StatusFailed, failed.Status)

	// Confirming a failed registration is rejected.
	_, err = f.svc.ConfirmPayment(ctx, reg.ID, "pay_1", 500)
	assert.True(t, dErrors.Is(err, dErrors.CodeConflict))

	// Registering again reuses the document and reopens an order.
	retried, err := f.svc.Register(ctx, "u1", ev.ID, []string{leader.ID, member.ID})
	require.NoError(t, err)
	assert.Equal(t, reg.ID, retried.ID)
	assert.Equal(t, registration.StatusPending, retried.Status)
	assert.NotEqual(t, reg.GatewayOrderID, retried.GatewayOrderID)
}

func TestManualVerificationFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	leader := f.addProfile(t, "u1")
	member := f.addProfile(t, "u2")
	tm := f.makeTeam(t, "Alpha", leader, member)
	ev := f.addEvent(t, "Robo Wars", 500, 2, 3, true)

	reg, err := f.svc.Register(ctx, "u1", ev.ID, []string{leader.ID, member.ID})
	require.NoError(t, err)

	sub, err := f.svc.SubmitPayment(ctx, "u1", registration.SubmissionInput{
		RegistrationID: reg.ID,
		TransactionID:  "TXN123",
		ClaimedAmount:  500,
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", sub.ReviewStatus)

	parked, err := f.svc.Get(ctx, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, registration.StatusVerificationPending, parked.Status)

	verified, err := f.svc.MarkVerified(ctx, reg.ID, "admin-1", "matched bank statement")
	require.NoError(t, err)
	assert.Equal(t, registration.StatusManualVerified, verified.Status)
	require.NotNil(t, verified.Verification)
	assert.Equal(t, "admin-1", verified.Verification.VerifierID)

	locked, err := f.teamSvc.Get(ctx, tm.ID)
	require.NoError(t, err)
	assert.True(t, locked.IsLocked)

	// A verified registration is settled: no re-register, no re-decide.
	_, err = f.svc.Register(ctx, "u1", ev.ID, []string{leader.ID, member.ID})
	assert.True(t, dErrors.Is(err, dErrors.CodeConflict))
	_, err = f.svc.MarkVerified(ctx, reg.ID, "admin-2", "again")
	assert.True(t, dErrors.Is(err, dErrors.CodeConflict))
	_, err = f.svc.MarkRejected(ctx, reg.ID, "admin-2", "too late")
	assert.True(t, dErrors.Is(err, dErrors.CodeConflict))
}

func TestRejectedVerificationFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	leader := f.addProfile(t, "u1")
	member := f.addProfile(t, "u2")
	f.makeTeam(t, "Alpha", leader, member)
	ev := f.addEvent(t, "Robo Wars", 500, 2, 3, true)

	reg, err := f.svc.Register(ctx, "u1", ev.ID, []string{leader.ID, member.ID})
	require.NoError(t, err)
	_, err = f.svc.SubmitPayment(ctx, "u1", registration.SubmissionInput{RegistrationID: reg.ID, TransactionID: "TXN999"})
	require.NoError(t, err)

	rejected, err := f.svc.MarkRejected(ctx, reg.ID, "admin-1", "no matching transaction")
	require.NoError(t, err)
	assert.Equal(t, registration.StatusFailed, rejected.Status)

	// Rejection is not terminal for the pair; the team can try again.
	retried, err := f.svc.Register(ctx, "u1", ev.ID, []string{leader.ID, member.ID})
	require.NoError(t, err)
	assert.Equal(t, registration.StatusPending, retried.Status)
}

func TestHasSettled(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	leader := f.addProfile(t, "u1")
	member := f.addProfile(t, "u2")
	bystander := f.addProfile(t, "u3")
	f.makeTeam(t, "Alpha", leader, member)
	ev := f.addEvent(t, "Robo Wars", 500, 2, 3, true)

	reg, err := f.svc.Register(ctx, "u1", ev.ID, []string{leader.ID, member.ID})
	require.NoError(t, err)

	ok, err := f.svc.HasSettled(ctx, ev.ID, member.ID)
	require.NoError(t, err)
	assert.False(t, ok, "pending payment does not grant access")

	_, err = f.svc.ConfirmPayment(ctx, reg.ID, "pay_1", 500)
	require.NoError(t, err)

	ok, err = f.svc.HasSettled(ctx, ev.ID, member.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.svc.HasSettled(ctx, ev.ID, bystander.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}
