package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"felicity/internal/team"
	"felicity/pkg/platform/sentinel"
)

// MemoryStore keeps teams in a map, mirroring the unique name index.
type MemoryStore struct {
	mu    sync.RWMutex
	teams map[string]*team.Team
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{teams: make(map[string]*team.Team)}
}

func (s *MemoryStore) Insert(_ context.Context, t *team.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.teams {
		if existing.Name == t.Name {
			return sentinel.ErrConflict
		}
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	cp := clone(t)
	s.teams[t.ID] = cp
	return nil
}

func (s *MemoryStore) Update(_ context.Context, t *team.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.teams[t.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.teams[t.ID] = clone(t)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.teams[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.teams, id)
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, id string) (*team.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if t, ok := s.teams[id]; ok {
		return clone(t), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *MemoryStore) FindByName(_ context.Context, name string) (*team.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.teams {
		if t.Name == name {
			return clone(t), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func clone(t *team.Team) *team.Team {
	cp := *t
	cp.Members = append([]string{}, t.Members...)
	cp.JoinRequests = append([]string{}, t.JoinRequests...)
	return &cp
}
