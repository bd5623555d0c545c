package event

import (
	"context"
	"errors"
	"strings"
	"time"

	dErrors "felicity/pkg/domain-errors"
	"felicity/pkg/platform/sentinel"
)

// Store is the persistence seam for the event catalog.
type Store interface {
	Insert(ctx context.Context, e *Event) error
	FindByID(ctx context.Context, id string) (*Event, error)
	FindBySlug(ctx context.Context, slug string) (*Event, error)
	List(ctx context.Context, category string, liveOnly bool) ([]*Event, error)
	FindLive(ctx context.Context) ([]*Event, error)
}

// ChannelProvisioner creates the discussion channel tied to an event.
// Implemented by the forum service; keeping it an interface makes the
// two-step create-event-then-ensure-channel sequence independently testable.
type ChannelProvisioner interface {
	EnsureChannel(ctx context.Context, eventID, title string) error
}

// Service owns the catalog. Event creation is an explicit application-level
// two-step: insert the event, then ensure its channel, never a persistence
// hook.
type Service struct {
	store    Store
	channels ChannelProvisioner
}

func NewService(store Store, channels ChannelProvisioner) *Service {
	return &Service{store: store, channels: channels}
}

// CreateInput is the admin create-event payload.
type CreateInput struct {
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Fee         int       `json:"fee"`
	TeamSize    string    `json:"teamSize"`
	Capacity    int       `json:"capacity"`
	Deadline    time.Time `json:"deadline"`
	IsLive      bool      `json:"isLive"`
}

// Create inserts the event and provisions its channel. A crash between the
// two writes leaves an event without a channel; EnsureChannel is idempotent
// so re-running create-time provisioning recovers it.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Event, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "title is required")
	}
	if in.Fee < 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "fee must not be negative")
	}
	min, max, err := ParseTeamSize(in.TeamSize)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid team size: "+in.TeamSize)
	}

	e := &Event{
		Title:       title,
		Slug:        Slugify(title),
		Category:    strings.TrimSpace(in.Category),
		Description: in.Description,
		Fee:         in.Fee,
		TeamSizeRaw: in.TeamSize,
		MinTeamSize: min,
		MaxTeamSize: max,
		Capacity:    in.Capacity,
		Deadline:    in.Deadline,
		IsLive:      in.IsLive,
		IsTeamEvent: max > 1,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.Insert(ctx, e); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "an event with this title already exists")
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to create event", err)
	}
	if err := s.channels.EnsureChannel(ctx, e.ID, e.Title); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "event created but channel provisioning failed", err)
	}
	return e, nil
}

// List returns catalog entries matching the optional filters.
func (s *Service) List(ctx context.Context, category string, liveOnly bool) ([]*Event, error) {
	events, err := s.store.List(ctx, category, liveOnly)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to list events", err)
	}
	return events, nil
}

// Get returns one event by id.
func (s *Service) Get(ctx context.Context, id string) (*Event, error) {
	e, err := s.store.FindByID(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "event not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to load event", err)
	}
	return e, nil
}

// SingleLive returns the one currently-live event, used by the admin
// backfill path. Zero or multiple live events is an operator error surfaced
// as a conflict.
func (s *Service) SingleLive(ctx context.Context) (*Event, error) {
	live, err := s.store.FindLive(ctx)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to list live events", err)
	}
	switch len(live) {
	case 0:
		return nil, dErrors.New(dErrors.CodeNotFound, "no live event")
	case 1:
		return live[0], nil
	default:
		return nil, dErrors.New(dErrors.CodeConflict, "multiple live events; backfill needs exactly one")
	}
}
