package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"felicity/internal/registration"
	"felicity/pkg/platform/sentinel"
)

// MemoryStore is the in-memory Store used by tests and local runs.
type MemoryStore struct {
	mu   sync.RWMutex
	regs map[string]*registration.Registration
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{regs: make(map[string]*registration.Registration)}
}

func (s *MemoryStore) Insert(_ context.Context, r *registration.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	for _, existing := range s.regs {
		if existing.OwnerID == r.OwnerID && existing.EventID == r.EventID {
			return sentinel.ErrConflict
		}
	}
	s.regs[r.ID] = clone(r)
	return nil
}

func (s *MemoryStore) Update(_ context.Context, r *registration.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.regs[r.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.regs[r.ID] = clone(r)
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, id string) (*registration.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.regs[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(r), nil
}

func (s *MemoryStore) FindByOwnerAndEvent(_ context.Context, ownerID, eventID string) (*registration.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.regs {
		if r.OwnerID == ownerID && r.EventID == eventID {
			return clone(r), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *MemoryStore) FindByMember(_ context.Context, profileID string) ([]*registration.Registration, error) {
	return s.filter(func(r *registration.Registration) bool {
		return r.Names(profileID)
	}), nil
}

func (s *MemoryStore) FindByEventAndMember(_ context.Context, eventID, profileID string) ([]*registration.Registration, error) {
	return s.filter(func(r *registration.Registration) bool {
		return r.EventID == eventID && r.Names(profileID)
	}), nil
}

func (s *MemoryStore) List(_ context.Context, f registration.ListFilter) ([]*registration.Registration, error) {
	return s.filter(func(r *registration.Registration) bool {
		if f.EventID != "" && r.EventID != f.EventID {
			return false
		}
		if f.Status != "" && r.Status != f.Status {
			return false
		}
		return true
	}), nil
}

func (s *MemoryStore) filter(keep func(*registration.Registration) bool) []*registration.Registration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*registration.Registration
	for _, r := range s.regs {
		if keep(r) {
			out = append(out, clone(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func clone(r *registration.Registration) *registration.Registration {
	c := *r
	c.SelectedMembers = append([]string(nil), r.SelectedMembers...)
	c.Attempts = append([]registration.PaymentAttempt(nil), r.Attempts...)
	if r.Verification != nil {
		v := *r.Verification
		c.Verification = &v
	}
	return &c
}

// MemorySubmissionStore is the in-memory SubmissionStore.
type MemorySubmissionStore struct {
	mu   sync.RWMutex
	subs []*registration.PaymentSubmission
}

func NewMemorySubmissionStore() *MemorySubmissionStore {
	return &MemorySubmissionStore{}
}

func (s *MemorySubmissionStore) Insert(_ context.Context, sub *registration.PaymentSubmission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	c := *sub
	s.subs = append(s.subs, &c)
	return nil
}

func (s *MemorySubmissionStore) ListPending(_ context.Context) ([]*registration.PaymentSubmission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*registration.PaymentSubmission
	for _, sub := range s.subs {
		if sub.ReviewStatus == "pending" {
			c := *sub
			out = append(out, &c)
		}
	}
	return out, nil
}
