package entity

import "time"

const (
	CashTransactionTypeDeposit  = "deposit"
	CashTransactionTypeWithdraw = "withdraw"
)

// CashTransaction is an immutable record of a deposit or withdrawal.
type CashTransaction struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"not null;index" json:"user_id"`
	TransactionType string    `gorm:"size:10;not null" json:"transaction_type"`
	Amount          float64   `gorm:"not null" json:"amount"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (CashTransaction) TableName() string {
	return "cash_transactions"
}
