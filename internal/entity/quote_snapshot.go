package entity

import (
	"time"

	"gorm.io/datatypes"
)

// QuoteSnapshot persists the last good provider payload for a ticker. It is
// the final fallback tier when the provider and every cache layer fail.
type QuoteSnapshot struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Ticker    string         `gorm:"size:10;uniqueIndex;not null" json:"ticker"`
	Price     float64        `gorm:"not null" json:"price"`
	Data      datatypes.JSON `json:"data"`
	FetchedAt time.Time      `gorm:"not null" json:"fetched_at"`
}

func (QuoteSnapshot) TableName() string {
	return "quote_snapshots"
}
