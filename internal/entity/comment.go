package entity

import "time"

// Comment belongs to a trading post. ParentID links replies to their parent
// comment; nesting depth is not bounded at the storage layer.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	UserID    uint      `gorm:"not null" json:"user_id"`
	ParentID  *uint     `gorm:"index" json:"parent_id,omitempty"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Author *User `gorm:"foreignKey:UserID" json:"author,omitempty"`
}

func (Comment) TableName() string {
	return "comments"
}
