package repository

import (
	"context"
	"time"

	"papertrade/internal/entity"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QuoteSnapshotRepository persists last-good provider payloads per ticker.
type QuoteSnapshotRepository interface {
	Upsert(ctx context.Context, ticker string, price float64, data []byte) error
	Find(ctx context.Context, ticker string) (*entity.QuoteSnapshot, error)
}

// NewQuoteSnapshotRepository creates a new GORM-based snapshot repository.
func NewQuoteSnapshotRepository(db *gorm.DB) QuoteSnapshotRepository {
	return &quoteSnapshotRepository{db: db}
}

type quoteSnapshotRepository struct {
	db *gorm.DB
}

func (r *quoteSnapshotRepository) Upsert(ctx context.Context, ticker string, price float64, data []byte) error {
	snapshot := entity.QuoteSnapshot{
		Ticker:    ticker,
		Price:     price,
		Data:      datatypes.JSON(data),
		FetchedAt: time.Now(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "ticker"}},
			DoUpdates: clause.AssignmentColumns([]string{"price", "data", "fetched_at"}),
		}).
		Create(&snapshot).Error
}

func (r *quoteSnapshotRepository) Find(ctx context.Context, ticker string) (*entity.QuoteSnapshot, error) {
	var snapshot entity.QuoteSnapshot
	err := r.db.WithContext(ctx).
		Where("ticker = ?", ticker).
		First(&snapshot).Error
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}
