package repository

import (
	"context"

	"papertrade/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerRepository defines the data operations behind settlement: balances,
// holdings, transaction records, and the posts created alongside trades.
// Mutations performed inside WithinTransaction commit or roll back as one
// unit.
type LedgerRepository interface {
	WithinTransaction(ctx context.Context, fn func(LedgerRepository) error) error

	FindUserForUpdate(ctx context.Context, userID uint) (*entity.User, error)
	UpdateBalance(ctx context.Context, userID uint, balance float64) error

	FindHolding(ctx context.Context, userID uint, ticker string) (*entity.StockHolding, error)
	FindHoldingForUpdate(ctx context.Context, userID uint, ticker string) (*entity.StockHolding, error)
	ListHoldings(ctx context.Context, userID uint) ([]entity.StockHolding, error)
	SaveHolding(ctx context.Context, holding *entity.StockHolding) error
	DeleteHolding(ctx context.Context, holdingID uint) error
	UpdateHoldingPrice(ctx context.Context, holdingID uint, price float64) error

	CreateTransaction(ctx context.Context, txn *entity.Transaction) error
	ListTransactions(ctx context.Context, userID uint, limit int) ([]entity.Transaction, error)
	CreateCashTransaction(ctx context.Context, txn *entity.CashTransaction) error
	ListCashTransactions(ctx context.Context, userID uint, limit int) ([]entity.CashTransaction, error)

	CreatePost(ctx context.Context, post *entity.TradingPost) error
}

// NewLedgerRepository creates a new GORM-based ledger repository.
func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

type ledgerRepository struct {
	db *gorm.DB
}

// WithinTransaction runs fn against a repository bound to one database
// transaction.
func (r *ledgerRepository) WithinTransaction(ctx context.Context, fn func(LedgerRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ledgerRepository{db: tx})
	})
}

// FindUserForUpdate loads a user row under a row-level lock. Only valid
// inside WithinTransaction.
func (r *ledgerRepository) FindUserForUpdate(ctx context.Context, userID uint) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&user, userID).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *ledgerRepository) UpdateBalance(ctx context.Context, userID uint, balance float64) error {
	return r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("id = ?", userID).
		Update("balance", balance).Error
}

func (r *ledgerRepository) FindHolding(ctx context.Context, userID uint, ticker string) (*entity.StockHolding, error) {
	var holding entity.StockHolding
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND ticker = ?", userID, ticker).
		First(&holding).Error
	if err != nil {
		return nil, err
	}
	return &holding, nil
}

// FindHoldingForUpdate loads a holding under a row-level lock so the
// quantity check and the decrement see the same row. Only valid inside
// WithinTransaction.
func (r *ledgerRepository) FindHoldingForUpdate(ctx context.Context, userID uint, ticker string) (*entity.StockHolding, error) {
	var holding entity.StockHolding
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND ticker = ?", userID, ticker).
		First(&holding).Error
	if err != nil {
		return nil, err
	}
	return &holding, nil
}

func (r *ledgerRepository) ListHoldings(ctx context.Context, userID uint) ([]entity.StockHolding, error) {
	var holdings []entity.StockHolding
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("ticker").
		Find(&holdings).Error
	if err != nil {
		return nil, err
	}
	return holdings, nil
}

func (r *ledgerRepository) SaveHolding(ctx context.Context, holding *entity.StockHolding) error {
	return r.db.WithContext(ctx).Save(holding).Error
}

func (r *ledgerRepository) DeleteHolding(ctx context.Context, holdingID uint) error {
	return r.db.WithContext(ctx).Delete(&entity.StockHolding{}, holdingID).Error
}

// UpdateHoldingPrice refreshes the last observed price outside settlement.
func (r *ledgerRepository) UpdateHoldingPrice(ctx context.Context, holdingID uint, price float64) error {
	return r.db.WithContext(ctx).
		Model(&entity.StockHolding{}).
		Where("id = ?", holdingID).
		Update("current_price", price).Error
}

func (r *ledgerRepository) CreateTransaction(ctx context.Context, txn *entity.Transaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *ledgerRepository) ListTransactions(ctx context.Context, userID uint, limit int) ([]entity.Transaction, error) {
	var txns []entity.Transaction
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}

func (r *ledgerRepository) CreateCashTransaction(ctx context.Context, txn *entity.CashTransaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *ledgerRepository) ListCashTransactions(ctx context.Context, userID uint, limit int) ([]entity.CashTransaction, error) {
	var txns []entity.CashTransaction
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}

func (r *ledgerRepository) CreatePost(ctx context.Context, post *entity.TradingPost) error {
	return r.db.WithContext(ctx).Create(post).Error
}
