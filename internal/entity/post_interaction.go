package entity

import "time"

const (
	InteractionTypeLike    = "like"
	InteractionTypeDislike = "dislike"
)

// PostInteraction records a user's reaction to a post. At most one row
// exists per (user, post); toggling removes it, the opposite reaction
// replaces it.
type PostInteraction struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"not null;uniqueIndex:idx_interactions_user_post" json:"user_id"`
	PostID          uint      `gorm:"not null;uniqueIndex:idx_interactions_user_post" json:"post_id"`
	InteractionType string    `gorm:"size:10;not null" json:"interaction_type"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (PostInteraction) TableName() string {
	return "post_interactions"
}
