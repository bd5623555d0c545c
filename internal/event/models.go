package event

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Event is a fixed catalog entity. Team size arrives as a human-readable
// string from the content team; the parsed bounds are stored alongside it so
// roster validation never re-parses.
type Event struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	Title       string    `bson:"title" json:"title"`
	Slug        string    `bson:"slug" json:"slug"`
	Category    string    `bson:"category" json:"category"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	Fee         int       `bson:"fee" json:"fee"`
	TeamSizeRaw string    `bson:"team_size_raw" json:"teamSize"`
	MinTeamSize int       `bson:"min_team_size" json:"minTeamSize"`
	MaxTeamSize int       `bson:"max_team_size" json:"maxTeamSize"`
	Capacity    int       `bson:"capacity,omitempty" json:"capacity,omitempty"`
	Deadline    time.Time `bson:"deadline,omitempty" json:"deadline,omitempty"`
	IsLive      bool      `bson:"is_live" json:"isLive"`
	IsTeamEvent bool      `bson:"is_team_event" json:"isTeamEvent"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// ParseTeamSize turns strings like "4", "3-5" or "2 to 6" into bounds.
// A single number means an exact size.
func ParseTeamSize(raw string) (min, max int, err error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return 0, 0, fmt.Errorf("team size is empty")
	}

	var parts []string
	switch {
	case strings.Contains(s, "-"):
		parts = strings.SplitN(s, "-", 2)
	case strings.Contains(s, " to "):
		parts = strings.SplitN(s, " to ", 2)
	default:
		parts = []string{s}
	}

	min, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("parse team size %q: %w", raw, err)
	}
	max = min
	if len(parts) == 2 {
		max, err = strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return 0, 0, fmt.Errorf("parse team size %q: %w", raw, err)
		}
	}

	if min < 1 || max < min {
		return 0, 0, fmt.Errorf("invalid team size bounds %d-%d", min, max)
	}
	return min, max, nil
}

// Slugify produces the URL slug for an event title.
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	var b strings.Builder
	lastDash := true
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteRune('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
