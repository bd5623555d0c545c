package forum

import "time"

// Reactions allowed on posts and comments. Anything else is rejected.
var allowedReactions = map[string]bool{
	"👍": true,
	"❤️": true,
	"🔥": true,
	"😂": true,
	"🎉": true,
}

// ValidReaction reports whether the emoji is one of the supported set.
func ValidReaction(emoji string) bool { return allowedReactions[emoji] }

// Channel is the discussion space tied to one event, provisioned when the
// event is created.
type Channel struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	EventID   string    `bson:"event_id" json:"eventId"`
	Title     string    `bson:"title" json:"title"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// Post is a top-level message in a channel. Author display fields are
// denormalized at write time; reactions map emoji to the profile ids that
// toggled them on.
type Post struct {
	ID           string              `bson:"_id,omitempty" json:"id"`
	ChannelID    string              `bson:"channel_id" json:"channelId"`
	EventID      string              `bson:"event_id" json:"eventId"`
	AuthorID     string              `bson:"author_id" json:"authorId"`
	AuthorName   string              `bson:"author_name" json:"authorName"`
	AuthorAvatar string              `bson:"author_avatar,omitempty" json:"authorAvatar,omitempty"`
	Body         string              `bson:"body" json:"body"`
	Pinned       bool                `bson:"pinned" json:"pinned"`
	Locked       bool                `bson:"locked" json:"locked"`
	CommentCount int                 `bson:"comment_count" json:"commentCount"`
	Reactions    map[string][]string `bson:"reactions,omitempty" json:"reactions,omitempty"`
	CreatedAt    time.Time           `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time           `bson:"updated_at" json:"updatedAt"`
}

// Comment is a reply to a post.
type Comment struct {
	ID           string              `bson:"_id,omitempty" json:"id"`
	PostID       string              `bson:"post_id" json:"postId"`
	AuthorID     string              `bson:"author_id" json:"authorId"`
	AuthorName   string              `bson:"author_name" json:"authorName"`
	AuthorAvatar string              `bson:"author_avatar,omitempty" json:"authorAvatar,omitempty"`
	Body         string              `bson:"body" json:"body"`
	Reactions    map[string][]string `bson:"reactions,omitempty" json:"reactions,omitempty"`
	CreatedAt    time.Time           `bson:"created_at" json:"createdAt"`
}

// toggle flips one user's reaction. Returns true if the reaction is now on.
func toggle(reactions map[string][]string, emoji, profileID string) (map[string][]string, bool) {
	if reactions == nil {
		reactions = make(map[string][]string)
	}
	list := reactions[emoji]
	for i, id := range list {
		if id == profileID {
			list = append(list[:i], list[i+1:]...)
			if len(list) == 0 {
				delete(reactions, emoji)
			} else {
				reactions[emoji] = list
			}
			return reactions, false
		}
	}
	reactions[emoji] = append(list, profileID)
	return reactions, true
}
