package entity

import (
	"fmt"
	"time"
)

// User represents a platform account. Authentication is delegated to an
// external identity provider; NetID is the external subject id.
type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	NetID       string    `gorm:"size:20;uniqueIndex;not null" json:"net_id"`
	FirstName   string    `gorm:"size:50" json:"first_name"`
	LastName    string    `gorm:"size:50" json:"last_name"`
	Balance     float64   `gorm:"not null;default:1000" json:"balance"`
	AvatarID    int       `gorm:"not null;default:0" json:"avatar_id"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt time.Time `json:"last_login_at"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

// AvatarURL returns the static asset path for the user's avatar.
func (u *User) AvatarURL() string {
	if u.AvatarID == 0 {
		return "img/avatars/default.png"
	}
	return fmt.Sprintf("img/avatars/avatar%d.png", u.AvatarID)
}

// DisplayName returns the user's name, falling back to the net id.
func (u *User) DisplayName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.NetID
	}
	return u.FirstName + " " + u.LastName
}
