package dto

import (
	"time"

	"papertrade/internal/entity"
)

// AuthorBrief identifies a post or comment author.
type AuthorBrief struct {
	ID        uint   `json:"id"`
	NetID     string `json:"net_id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

// NewAuthorBrief maps a user to its brief form. Nil users (not preloaded)
// map to the zero value.
func NewAuthorBrief(u *entity.User) AuthorBrief {
	if u == nil {
		return AuthorBrief{}
	}
	return AuthorBrief{
		ID:        u.ID,
		NetID:     u.NetID,
		Name:      u.DisplayName(),
		AvatarURL: u.AvatarURL(),
	}
}

// PostResponse is the JSON view of a trading post.
type PostResponse struct {
	ID        uint              `json:"id"`
	Author    AuthorBrief       `json:"author"`
	Title     string            `json:"title"`
	Content   string            `json:"content"`
	Ticker    string            `json:"ticker"`
	TradeType string            `json:"trade_type"`
	Quantity  float64           `json:"quantity"`
	Price     float64           `json:"price"`
	IsPublic  bool              `json:"is_public"`
	Likes     int64             `json:"likes"`
	Dislikes  int64             `json:"dislikes"`
	CreatedAt time.Time         `json:"created_at"`
	Comments  []CommentResponse `json:"comments,omitempty"`
}

// CommentResponse is a comment with one rendered level of replies.
type CommentResponse struct {
	ID        uint              `json:"id"`
	Author    AuthorBrief       `json:"author"`
	Content   string            `json:"content"`
	CreatedAt time.Time         `json:"created_at"`
	Replies   []CommentResponse `json:"replies,omitempty"`
}

// CommentRequest adds a comment, or a reply when ParentID is set.
type CommentRequest struct {
	Content  string `json:"content"`
	ParentID *uint  `json:"parent_id,omitempty"`
}

// FeedResponse is the social feed: posts from followed users plus popular
// posts from everyone else.
type FeedResponse struct {
	FollowedPosts []PostResponse `json:"followed_posts"`
	PopularPosts  []PostResponse `json:"popular_posts"`
}

// FollowResult reports whether a follow or unfollow changed anything.
type FollowResult struct {
	Changed     bool `json:"changed"`
	IsFollowing bool `json:"is_following"`
}

// ReactionResult carries the updated counts after a like or dislike.
type ReactionResult struct {
	Likes    int64 `json:"likes"`
	Dislikes int64 `json:"dislikes"`
}

// VisibilityResult reports the post's visibility after a toggle.
type VisibilityResult struct {
	IsPublic bool `json:"is_public"`
}

// UserProfileResponse is a user's public profile with follow state.
type UserProfileResponse struct {
	User        UserResponse   `json:"user"`
	IsFollowing bool           `json:"is_following"`
	Posts       []PostResponse `json:"posts"`
}
