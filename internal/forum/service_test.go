package forum_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"felicity/internal/forum"
	forumstore "felicity/internal/forum/store"
	"felicity/internal/profile"
	profilestore "felicity/internal/profile/store"
	dErrors "felicity/pkg/domain-errors"
)

// settledSet fakes the registration manager's access answer.
type settledSet map[string]bool

func (s settledSet) HasSettled(_ context.Context, eventID, profileID string) (bool, error) {
	return s[eventID+"/"+profileID], nil
}

type fixture struct {
	svc      *forum.Service
	profiles *profilestore.MemoryStore
	settled  settledSet
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	profiles := profilestore.NewMemoryStore()
	store := forumstore.NewMemoryStore()
	settled := settledSet{}
	svc := forum.NewService(store, store.Posts(), store.Comments(), profiles, settled)
	return &fixture{svc: svc, profiles: profiles, settled: settled}
}

func (f *fixture) addProfile(t *testing.T, authID, role string) *profile.Profile {
	t.Helper()
	p := &profile.Profile{
		AuthID:              authID,
		Email:               authID + "@fest.example",
		FirstName:           "User " + authID,
		Username:            authID,
		Role:                role,
		College:             "IIIT",
		Phone:               "9999999999",
		OnboardingCompleted: true,
		CreatedAt:           time.Now(),
	}
	require.NoError(t, f.profiles.Insert(context.Background(), p))
	return p
}

func (f *fixture) grant(eventID string, p *profile.Profile) {
	f.settled[eventID+"/"+p.ID] = true
}

func TestEnsureChannelIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.EnsureChannel(ctx, "ev1", "Robo Wars"))
	require.NoError(t, f.svc.EnsureChannel(ctx, "ev1", "Robo Wars"))
}

func TestForumAccessMatrix(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.svc.EnsureChannel(ctx, "ev1", "Robo Wars"))

	paid := f.addProfile(t, "paid", "user")
	unpaid := f.addProfile(t, "unpaid", "user")
	f.addProfile(t, "staff", "admin")
	f.grant("ev1", paid)

	_, err := f.svc.ListPosts(ctx, "paid", "user", "ev1")
	assert.NoError(t, err, "settled member reads the channel")

	_, err = f.svc.ListPosts(ctx, "unpaid", "user", "ev1")
	assert.True(t, dErrors.Is(err, dErrors.CodeForbidden))

	_, err = f.svc.CreatePost(ctx, "unpaid", "user", "ev1", "hi")
	assert.True(t, dErrors.Is(err, dErrors.CodeForbidden))

	_, err = f.svc.ListPosts(ctx, "staff", "admin", "ev1")
	assert.NoError(t, err, "admins bypass the registration gate")

	// Access is re-evaluated per call: a refund revokes it immediately.
	delete(f.settled, "ev1/"+paid.ID)
	_, err = f.svc.ListPosts(ctx, "paid", "user", "ev1")
	assert.True(t, dErrors.Is(err, dErrors.CodeForbidden))

	_, err = f.svc.ReactToComment(ctx, unpaid.AuthID, "user", "missing", "👍")
	assert.True(t, dErrors.Is(err, dErrors.CodeNotFound))
}

func TestPostOrderingPinnedFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.svc.EnsureChannel(ctx, "ev1", "Robo Wars"))
	author := f.addProfile(t, "u1", "user")
	f.grant("ev1", author)

	first, err := f.svc.CreatePost(ctx, "u1", "user", "ev1", "first")
	require.NoError(t, err)
	_, err = f.svc.CreatePost(ctx, "u1", "user", "ev1", "second")
	require.NoError(t, err)
	third, err := f.svc.CreatePost(ctx, "u1", "user", "ev1", "third")
	require.NoError(t, err)

	_, err = f.svc.SetPinned(ctx, first.ID, true)
	require.NoError(t, err)

	posts, err := f.svc.ListPosts(ctx, "u1", "user", "ev1")
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, first.ID, posts[0].ID, "pinned post floats to the top")
	assert.Equal(t, third.ID, posts[1].ID, "then newest first")
}

func TestPinnedPostSurvivesPageCap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.svc.EnsureChannel(ctx, "ev1", "Robo Wars"))
	author := f.addProfile(t, "u1", "user")
	f.grant("ev1", author)

	pinned, err := f.svc.CreatePost(ctx, "u1", "user", "ev1", "announcement")
	require.NoError(t, err)
	_, err = f.svc.SetPinned(ctx, pinned.ID, true)
	require.NoError(t, err)

	// Push the pinned post past a full page of newer posts.
	for i := 0; i < 55; i++ {
		_, err = f.svc.CreatePost(ctx, "u1", "user", "ev1", fmt.Sprintf("post %d", i))
		require.NoError(t, err)
	}

	posts, err := f.svc.ListPosts(ctx, "u1", "user", "ev1")
	require.NoError(t, err)
	require.Len(t, posts, 50)
	assert.Equal(t, pinned.ID, posts[0].ID, "pinned post stays on the page")
	assert.True(t, posts[0].Pinned)
}

func TestReactionToggle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.svc.EnsureChannel(ctx, "ev1", "Robo Wars"))
	author := f.addProfile(t, "u1", "user")
	f.grant("ev1", author)

	p, err := f.svc.CreatePost(ctx, "u1", "user", "ev1", "hello")
	require.NoError(t, err)

	reacted, err := f.svc.ReactToPost(ctx, "u1", "user", p.ID, "🔥")
	require.NoError(t, err)
	assert.Equal(t, []string{author.ID}, reacted.Reactions["🔥"])

	// Second toggle removes it.
	reacted, err = f.svc.ReactToPost(ctx, "u1", "user", p.ID, "🔥")
	require.NoError(t, err)
	assert.Empty(t, reacted.Reactions["🔥"])

	_, err = f.svc.ReactToPost(ctx, "u1", "user", p.ID, "🙃")
	assert.True(t, dErrors.Is(err, dErrors.CodeValidation))
}

func TestCommentsAndLocking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.svc.EnsureChannel(ctx, "ev1", "Robo Wars"))
	author := f.addProfile(t, "u1", "user")
	f.grant("ev1", author)

	p, err := f.svc.CreatePost(ctx, "u1", "user", "ev1", "hello")
	require.NoError(t, err)

	c1, err := f.svc.CreateComment(ctx, "u1", "user", p.ID, "reply one")
	require.NoError(t, err)
	_, err = f.svc.CreateComment(ctx, "u1", "user", p.ID, "reply two")
	require.NoError(t, err)

	reloaded, err := f.svc.ListPosts(ctx, "u1", "user", "ev1")
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded[0].CommentCount)

	comments, err := f.svc.ListComments(ctx, "u1", "user", p.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, c1.ID, comments[0].ID, "oldest first")

	// A locked post keeps its comments readable but takes no new ones.
	_, err = f.svc.SetLocked(ctx, p.ID, true)
	require.NoError(t, err)
	_, err = f.svc.CreateComment(ctx, "u1", "user", p.ID, "too late")
	assert.True(t, dErrors.Is(err, dErrors.CodeConflict))
	_, err = f.svc.ListComments(ctx, "u1", "user", p.ID)
	assert.NoError(t, err)
}
