package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"felicity/internal/event"
	"felicity/pkg/platform/sentinel"
)

// MemoryStore keeps the catalog in a map, mirroring the unique slug index.
type MemoryStore struct {
	mu     sync.RWMutex
	events map[string]*event.Event
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{events: make(map[string]*event.Event)}
}

func (s *MemoryStore) Insert(_ context.Context, e *event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.events {
		if existing.Slug == e.Slug {
			return sentinel.ErrConflict
		}
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	cp := *e
	s.events[e.ID] = &cp
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, id string) (*event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.events[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *MemoryStore) FindBySlug(_ context.Context, slug string) (*event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.events {
		if e.Slug == slug {
			cp := *e
			return &cp, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *MemoryStore) List(_ context.Context, category string, liveOnly bool) ([]*event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*event.Event
	for _, e := range s.events {
		if category != "" && e.Category != category {
			continue
		}
		if liveOnly && !e.IsLive {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (s *MemoryStore) FindLive(ctx context.Context) ([]*event.Event, error) {
	return s.List(ctx, "", true)
}
