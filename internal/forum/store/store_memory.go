package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"felicity/internal/forum"
	"felicity/pkg/platform/sentinel"
)

// MemoryStore is the in-memory forum persistence used by tests and local
// runs. One struct backs all three store interfaces.
type MemoryStore struct {
	mu       sync.RWMutex
	channels map[string]*forum.Channel
	posts    map[string]*forum.Post
	comments map[string]*forum.Comment
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		channels: make(map[string]*forum.Channel),
		posts:    make(map[string]*forum.Post),
		comments: make(map[string]*forum.Comment),
	}
}

func (s *MemoryStore) Insert(ctx context.Context, c *forum.Channel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.channels {
		if existing.EventID == c.EventID {
			return sentinel.ErrConflict
		}
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	cp := *c
	s.channels[c.ID] = &cp
	return nil
}

func (s *MemoryStore) FindByEventID(_ context.Context, eventID string) (*forum.Channel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.channels {
		if c.EventID == eventID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// Posts exposes the post store view.
func (s *MemoryStore) Posts() *MemoryPostStore { return &MemoryPostStore{s} }

// Comments exposes the comment store view.
func (s *MemoryStore) Comments() *MemoryCommentStore { return &MemoryCommentStore{s} }

// MemoryPostStore implements forum.PostStore over the shared maps.
type MemoryPostStore struct {
	s *MemoryStore
}

func (ps *MemoryPostStore) Insert(_ context.Context, p *forum.Post) error {
	ps.s.mu.Lock()
	defer ps.s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	ps.s.posts[p.ID] = clonePost(p)
	return nil
}

func (ps *MemoryPostStore) Update(_ context.Context, p *forum.Post) error {
	ps.s.mu.Lock()
	defer ps.s.mu.Unlock()
	if _, ok := ps.s.posts[p.ID]; !ok {
		return sentinel.ErrNotFound
	}
	ps.s.posts[p.ID] = clonePost(p)
	return nil
}

func (ps *MemoryPostStore) FindByID(_ context.Context, id string) (*forum.Post, error) {
	ps.s.mu.RLock()
	defer ps.s.mu.RUnlock()
	p, ok := ps.s.posts[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clonePost(p), nil
}

func (ps *MemoryPostStore) ListByChannel(_ context.Context, channelID string, limit int) ([]*forum.Post, error) {
	ps.s.mu.RLock()
	defer ps.s.mu.RUnlock()
	var out []*forum.Post
	for _, p := range ps.s.posts {
		if p.ChannelID == channelID {
			out = append(out, clonePost(p))
		}
	}
	// Pinned first, then newest first; the page cap applies after ordering
	// so a pinned post never falls off the page.
	sort.Slice(out, func(i, j int) bool {
		if out[i].Pinned != out[j].Pinned {
			return out[i].Pinned
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// MemoryCommentStore implements forum.CommentStore over the shared maps.
type MemoryCommentStore struct {
	s *MemoryStore
}

func (cs *MemoryCommentStore) Insert(_ context.Context, c *forum.Comment) error {
	cs.s.mu.Lock()
	defer cs.s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	cs.s.comments[c.ID] = cloneComment(c)
	return nil
}

func (cs *MemoryCommentStore) Update(_ context.Context, c *forum.Comment) error {
	cs.s.mu.Lock()
	defer cs.s.mu.Unlock()
	if _, ok := cs.s.comments[c.ID]; !ok {
		return sentinel.ErrNotFound
	}
	cs.s.comments[c.ID] = cloneComment(c)
	return nil
}

func (cs *MemoryCommentStore) FindByID(_ context.Context, id string) (*forum.Comment, error) {
	cs.s.mu.RLock()
	defer cs.s.mu.RUnlock()
	c, ok := cs.s.comments[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneComment(c), nil
}

func (cs *MemoryCommentStore) ListByPost(_ context.Context, postID string) ([]*forum.Comment, error) {
	cs.s.mu.RLock()
	defer cs.s.mu.RUnlock()
	var out []*forum.Comment
	for _, c := range cs.s.comments {
		if c.PostID == postID {
			out = append(out, cloneComment(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func clonePost(p *forum.Post) *forum.Post {
	c := *p
	c.Reactions = cloneReactions(p.Reactions)
	return &c
}

func cloneComment(cm *forum.Comment) *forum.Comment {
	c := *cm
	c.Reactions = cloneReactions(cm.Reactions)
	return &c
}

func cloneReactions(r map[string][]string) map[string][]string {
	if r == nil {
		return nil
	}
	out := make(map[string][]string, len(r))
	for k, v := range r {
		out[k] = append([]string(nil), v...)
	}
	return out
}
