package team

import "time"

// DefaultMemberCap bounds team size regardless of event rosters.
const DefaultMemberCap = 50

// Team groups profiles pursuing shared event registration. The leader is
// always present in Members. Membership is frozen once IsLocked is set; no
// transition back is provided.
type Team struct {
	ID       string `bson:"_id,omitempty" json:"id"`
	Name     string `bson:"name" json:"name"`
	LeaderID string `bson:"leader_id" json:"leaderId"`
	// College is denormalized from the leader at create time; the
	// same-college rule for non-esports teams checks against it.
	College      string   `bson:"college" json:"college"`
	Members      []string `bson:"members" json:"members"`
	JoinRequests []string `bson:"join_requests,omitempty" json:"joinRequests,omitempty"`
	IsLocked     bool     `bson:"is_locked" json:"isLocked"`
	IsEsports    bool     `bson:"is_esports" json:"isEsports"`
	MemberCap    int      `bson:"member_cap" json:"memberCap"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// HasMember reports whether the profile is a member.
func (t *Team) HasMember(profileID string) bool {
	for _, m := range t.Members {
		if m == profileID {
			return true
		}
	}
	return false
}

// HasJoinRequest reports whether the profile already has a pending request.
func (t *Team) HasJoinRequest(profileID string) bool {
	for _, r := range t.JoinRequests {
		if r == profileID {
			return true
		}
	}
	return false
}

// AtCapacity reports whether another member would exceed the cap.
func (t *Team) AtCapacity() bool {
	limit := t.MemberCap
	if limit <= 0 {
		limit = DefaultMemberCap
	}
	return len(t.Members) >= limit
}
