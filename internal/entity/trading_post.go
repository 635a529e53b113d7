package entity

import "time"

// TradingPost is a narrative a user attaches to a trade. Like and dislike
// counts are derived from PostInteraction rows.
type TradingPost struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Title     string    `gorm:"size:100;not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Ticker    string    `gorm:"size:10;not null" json:"ticker"`
	TradeType string    `gorm:"size:10;not null" json:"trade_type"`
	Quantity  float64   `gorm:"not null" json:"quantity"`
	Price     float64   `gorm:"not null" json:"price"`
	IsPublic  bool      `gorm:"not null;default:true" json:"is_public"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Author *User `gorm:"foreignKey:UserID" json:"author,omitempty"`
}

func (TradingPost) TableName() string {
	return "trading_posts"
}
