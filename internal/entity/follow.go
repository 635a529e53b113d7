package entity

import "time"

// Follow is a directed edge in the follower graph. The composite primary
// key rules out duplicate edges; self-follows are rejected above storage.
type Follow struct {
	FollowerID uint      `gorm:"primaryKey;autoIncrement:false" json:"follower_id"`
	FollowedID uint      `gorm:"primaryKey;autoIncrement:false" json:"followed_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Follow) TableName() string {
	return "follows"
}
