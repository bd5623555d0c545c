package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"felicity/internal/profile"
	"felicity/pkg/platform/sentinel"
)

// MemoryStore keeps profiles in a map. Used by unit tests and broker-less
// dev runs; it mirrors the unique-index behavior of the mongo store so
// conflict paths are testable.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]*profile.Profile // keyed by id
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[string]*profile.Profile)}
}

func (s *MemoryStore) Insert(_ context.Context, p *profile.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.profiles {
		if existing.AuthID == p.AuthID {
			return sentinel.ErrConflict
		}
		if p.Username != "" && existing.Username == p.Username {
			return sentinel.ErrConflict
		}
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	cp := *p
	s.profiles[p.ID] = &cp
	return nil
}

func (s *MemoryStore) Update(_ context.Context, p *profile.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[p.ID]; !ok {
		return sentinel.ErrNotFound
	}
	for id, existing := range s.profiles {
		if id != p.ID && p.Username != "" && existing.Username == p.Username {
			return sentinel.ErrConflict
		}
	}
	cp := *p
	s.profiles[p.ID] = &cp
	return nil
}

func (s *MemoryStore) FindByAuthID(_ context.Context, authID string) (*profile.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.profiles {
		if p.AuthID == authID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *MemoryStore) FindByID(_ context.Context, id string) (*profile.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.profiles[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *MemoryStore) FindByIDs(_ context.Context, ids []string) ([]*profile.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*profile.Profile, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.profiles[id]; ok {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *MemoryStore) FindByUsername(_ context.Context, username string) (*profile.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.profiles {
		if p.Username == username {
			cp := *p
			return &cp, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *MemoryStore) SetTeam(_ context.Context, profileID string, esports bool, teamID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[profileID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if esports {
		p.EsportsTeamID = teamID
	} else {
		p.CurrentTeamID = teamID
	}
	return nil
}

func (s *MemoryStore) ClearTeamForMembers(_ context.Context, memberIDs []string, esports bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range memberIDs {
		if p, ok := s.profiles[id]; ok {
			if esports {
				p.EsportsTeamID = ""
			} else {
				p.CurrentTeamID = ""
			}
		}
	}
	return nil
}

func (s *MemoryStore) PullInvite(_ context.Context, teamID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.profiles {
		kept := p.PendingInvites[:0]
		for _, invite := range p.PendingInvites {
			if invite != teamID {
				kept = append(kept, invite)
			}
		}
		p.PendingInvites = kept
	}
	return nil
}

func (s *MemoryStore) AddEventRefs(_ context.Context, profileIDs []string, eventID string, paid bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range profileIDs {
		p, ok := s.profiles[id]
		if !ok {
			continue
		}
		if !contains(p.RegisteredEvents, eventID) {
			p.RegisteredEvents = append(p.RegisteredEvents, eventID)
		}
		if paid && !contains(p.PaidEvents, eventID) {
			p.PaidEvents = append(p.PaidEvents, eventID)
		}
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
