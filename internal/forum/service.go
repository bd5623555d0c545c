package forum

import (
	"context"
	"errors"
	"strings"
	"time"

	"felicity/internal/identity"
	"felicity/internal/profile"
	dErrors "felicity/pkg/domain-errors"
	"felicity/pkg/platform/sentinel"
)

// ChannelStore persists event discussion channels.
type ChannelStore interface {
	Insert(ctx context.Context, c *Channel) error
	FindByEventID(ctx context.Context, eventID string) (*Channel, error)
}

// PostStore persists posts.
type PostStore interface {
	Insert(ctx context.Context, p *Post) error
	Update(ctx context.Context, p *Post) error
	FindByID(ctx context.Context, id string) (*Post, error)
	ListByChannel(ctx context.Context, channelID string, limit int) ([]*Post, error)
}

// CommentStore persists comments.
type CommentStore interface {
	Insert(ctx context.Context, c *Comment) error
	Update(ctx context.Context, c *Comment) error
	FindByID(ctx context.Context, id string) (*Comment, error)
	ListByPost(ctx context.Context, postID string) ([]*Comment, error)
}

// AccessChecker answers whether a profile holds a settled registration for
// an event. Implemented by the registration manager.
type AccessChecker interface {
	HasSettled(ctx context.Context, eventID, profileID string) (bool, error)
}

// listLimit caps a channel page.
const listLimit = 50

// Service owns the per-event forums. Access is re-checked against the
// registration state on every call, never cached on the membership.
type Service struct {
	channels ChannelStore
	posts    PostStore
	comments CommentStore
	profiles profile.Store
	access   AccessChecker
}

func NewService(channels ChannelStore, posts PostStore, comments CommentStore, profiles profile.Store, access AccessChecker) *Service {
	return &Service{channels: channels, posts: posts, comments: comments, profiles: profiles, access: access}
}

// EnsureChannel provisions the channel for an event if it does not already
// exist. Safe to call repeatedly; the event service runs it on every create.
func (s *Service) EnsureChannel(ctx context.Context, eventID, title string) error {
	_, err := s.channels.FindByEventID(ctx, eventID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(dErrors.CodeInternal, "failed to check channel", err)
	}
	c := &Channel{EventID: eventID, Title: title, CreatedAt: time.Now().UTC()}
	if err := s.channels.Insert(ctx, c); err != nil && !errors.Is(err, sentinel.ErrConflict) {
		return dErrors.Wrap(dErrors.CodeInternal, "failed to create channel", err)
	}
	return nil
}

// Channel returns the discussion channel for an event, after the caller's
// access has been checked.
func (s *Service) Channel(ctx context.Context, authID, role, eventID string) (*Channel, error) {
	if _, err := s.requireAccess(ctx, authID, role, eventID); err != nil {
		return nil, err
	}
	return s.channelFor(ctx, eventID)
}

// ListPosts returns the channel page for an event: pinned posts first, then
// newest first, capped at one page.
func (s *Service) ListPosts(ctx context.Context, authID, role, eventID string) ([]*Post, error) {
	if _, err := s.requireAccess(ctx, authID, role, eventID); err != nil {
		return nil, err
	}
	ch, err := s.channelFor(ctx, eventID)
	if err != nil {
		return nil, err
	}
	// Stores order pinned-first then newest-first, before the page cap.
	posts, err := s.posts.ListByChannel(ctx, ch.ID, listLimit)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to list posts", err)
	}
	return posts, nil
}

// CreatePost publishes a message to an event's channel.
func (s *Service) CreatePost(ctx context.Context, authID, role, eventID, body string) (*Post, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "post body is required")
	}
	author, err := s.requireAccess(ctx, authID, role, eventID)
	if err != nil {
		return nil, err
	}
	ch, err := s.channelFor(ctx, eventID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := &Post{
		ChannelID:    ch.ID,
		EventID:      eventID,
		AuthorID:     author.ID,
		AuthorName:   author.DisplayName(),
		AuthorAvatar: author.AvatarURL,
		Body:         body,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.posts.Insert(ctx, p); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to create post", err)
	}
	return p, nil
}

// ListComments returns a post's comments, oldest first.
func (s *Service) ListComments(ctx context.Context, authID, role, postID string) ([]*Comment, error) {
	p, err := s.post(ctx, postID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireAccess(ctx, authID, role, p.EventID); err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to list comments", err)
	}
	return comments, nil
}

// CreateComment replies to a post. Locked posts accept no new replies.
func (s *Service) CreateComment(ctx context.Context, authID, role, postID, body string) (*Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "comment body is required")
	}
	p, err := s.post(ctx, postID)
	if err != nil {
		return nil, err
	}
	author, err := s.requireAccess(ctx, authID, role, p.EventID)
	if err != nil {
		return nil, err
	}
	if p.Locked {
		return nil, dErrors.New(dErrors.CodeConflict, "post is locked")
	}

	c := &Comment{
		PostID:       p.ID,
		AuthorID:     author.ID,
		AuthorName:   author.DisplayName(),
		AuthorAvatar: author.AvatarURL,
		Body:         body,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.comments.Insert(ctx, c); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to create comment", err)
	}
	p.CommentCount++
	p.UpdatedAt = time.Now().UTC()
	if err := s.posts.Update(ctx, p); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to update comment count", err)
	}
	return c, nil
}

// ReactToPost toggles the caller's reaction on a post.
func (s *Service) ReactToPost(ctx context.Context, authID, role, postID, emoji string) (*Post, error) {
	if !ValidReaction(emoji) {
		return nil, dErrors.New(dErrors.CodeValidation, "unsupported reaction")
	}
	p, err := s.post(ctx, postID)
	if err != nil {
		return nil, err
	}
	caller, err := s.requireAccess(ctx, authID, role, p.EventID)
	if err != nil {
		return nil, err
	}
	p.Reactions, _ = toggle(p.Reactions, emoji, caller.ID)
	p.UpdatedAt = time.Now().UTC()
	if err := s.posts.Update(ctx, p); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to update reactions", err)
	}
	return p, nil
}

// ReactToComment toggles the caller's reaction on a comment.
func (s *Service) ReactToComment(ctx context.Context, authID, role, commentID, emoji string) (*Comment, error) {
	if !ValidReaction(emoji) {
		return nil, dErrors.New(dErrors.CodeValidation, "unsupported reaction")
	}
	c, err := s.comments.FindByID(ctx, commentID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "comment not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to load comment", err)
	}
	p, err := s.post(ctx, c.PostID)
	if err != nil {
		return nil, err
	}
	caller, err := s.requireAccess(ctx, authID, role, p.EventID)
	if err != nil {
		return nil, err
	}
	c.Reactions, _ = toggle(c.Reactions, emoji, caller.ID)
	if err := s.comments.Update(ctx, c); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to update reactions", err)
	}
	return c, nil
}

// SetPinned pins or unpins a post. Mounted admin-only.
func (s *Service) SetPinned(ctx context.Context, postID string, pinned bool) (*Post, error) {
	p, err := s.post(ctx, postID)
	if err != nil {
		return nil, err
	}
	p.Pinned = pinned
	p.UpdatedAt = time.Now().UTC()
	if err := s.posts.Update(ctx, p); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to update post", err)
	}
	return p, nil
}

// SetLocked locks or unlocks a post. Mounted admin-only.
func (s *Service) SetLocked(ctx context.Context, postID string, locked bool) (*Post, error) {
	p, err := s.post(ctx, postID)
	if err != nil {
		return nil, err
	}
	p.Locked = locked
	p.UpdatedAt = time.Now().UTC()
	if err := s.posts.Update(ctx, p); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to update post", err)
	}
	return p, nil
}

// requireAccess loads the caller and checks they may read the event's
// forum: admins always, everyone else only with a settled registration
// naming them. The check runs fresh on every call so refunds and roster
// changes take effect immediately.
func (s *Service) requireAccess(ctx context.Context, authID, role, eventID string) (*profile.Profile, error) {
	p, err := s.profiles.FindByAuthID(ctx, authID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeValidation, "complete onboarding first")
	}
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to load profile", err)
	}
	if role == identity.RoleAdmin || role == identity.RoleSuperAdmin {
		return p, nil
	}
	ok, err := s.access.HasSettled(ctx, eventID, p.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, dErrors.New(dErrors.CodeForbidden, "forum access requires a paid registration for this event")
	}
	return p, nil
}

func (s *Service) channelFor(ctx context.Context, eventID string) (*Channel, error) {
	ch, err := s.channels.FindByEventID(ctx, eventID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "channel not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to load channel", err)
	}
	return ch, nil
}

func (s *Service) post(ctx context.Context, postID string) (*Post, error) {
	p, err := s.posts.FindByID(ctx, postID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "post not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to load post", err)
	}
	return p, nil
}
