package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Deposit is a completed crypto deposit into the spot wallet.
type Deposit struct {
	gorm.Model
	TxID          string          `gorm:"size:120;not null;uniqueIndex"`
	DepositMillis int64           `gorm:"not null;index"`
	Asset         string          `gorm:"size:20;not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(32,16);not null"`
}

// KeyConditions returns the natural key of the deposit for conflict lookups.
func (d Deposit) KeyConditions() map[string]any {
	return map[string]any{"tx_id": d.TxID}
}

// Withdrawal is a completed crypto withdrawal from the spot wallet.
type Withdrawal struct {
	gorm.Model
	WithdrawID  string          `gorm:"size:120;not null;uniqueIndex"`
	TxID        string          `gorm:"size:120"`
	ApplyMillis int64           `gorm:"not null;index"`
	Asset       string          `gorm:"size:20;not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(32,16);not null"`
	Fee         decimal.Decimal `gorm:"type:decimal(32,16);not null"`
}

// KeyConditions returns the natural key of the withdrawal for conflict lookups.
func (w Withdrawal) KeyConditions() map[string]any {
	return map[string]any{"withdraw_id": w.WithdrawID}
}

// Dividend is one asset dividend credited to the spot wallet.
type Dividend struct {
	gorm.Model
	DivID     int64           `gorm:"not null;uniqueIndex"`
	DivMillis int64           `gorm:"not null;index"`
	Asset     string          `gorm:"size:20;not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(32,16);not null"`
}

// KeyConditions returns the natural key of the dividend for conflict lookups.
func (d Dividend) KeyConditions() map[string]any {
	return map[string]any{"div_id": d.DivID}
}

// Dust is one small-balance conversion to BNB. The dust table is rebuilt from
// scratch on every sync, so rows carry no unique constraint.
type Dust struct {
	gorm.Model
	TranID      int64           `gorm:"not null;index"`
	DustMillis  int64           `gorm:"not null;index"`
	Asset       string          `gorm:"size:20;not null"`
	AssetAmount decimal.Decimal `gorm:"type:decimal(32,16);not null"`
	BNBAmount   decimal.Decimal `gorm:"type:decimal(32,16);not null"`
	BNBFee      decimal.Decimal `gorm:"type:decimal(32,16);not null"`
}
