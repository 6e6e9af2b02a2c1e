package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MarginLoan is a confirmed borrow against a cross or isolated margin wallet.
type MarginLoan struct {
	gorm.Model
	MarginType string          `gorm:"size:20;not null;uniqueIndex:idx_margin_loans_type_tx_id"`
	TxID       int64           `gorm:"not null;uniqueIndex:idx_margin_loans_type_tx_id"`
	Symbol     string          `gorm:"size:20;index"`
	LoanMillis int64           `gorm:"not null;index"`
	Asset      string          `gorm:"size:20;not null"`
	Principal  decimal.Decimal `gorm:"type:decimal(32,16);not null"`
}

// KeyConditions returns the natural key of the loan for conflict lookups.
func (l MarginLoan) KeyConditions() map[string]any {
	return map[string]any{
		"margin_type": l.MarginType,
		"tx_id":       l.TxID,
	}
}

// MarginRepay is a confirmed repayment of margin debt, covering both the
// principal part and the interest part settled by the repayment.
type MarginRepay struct {
	gorm.Model
	MarginType  string          `gorm:"size:20;not null;uniqueIndex:idx_margin_repays_type_tx_id"`
	TxID        int64           `gorm:"not null;uniqueIndex:idx_margin_repays_type_tx_id"`
	Symbol      string          `gorm:"size:20;index"`
	RepayMillis int64           `gorm:"not null;index"`
	Asset       string          `gorm:"size:20;not null"`
	Principal   decimal.Decimal `gorm:"type:decimal(32,16);not null"`
	Interest    decimal.Decimal `gorm:"type:decimal(32,16);not null"`
}

// KeyConditions returns the natural key of the repay for conflict lookups.
func (r MarginRepay) KeyConditions() map[string]any {
	return map[string]any{
		"margin_type": r.MarginType,
		"tx_id":       r.TxID,
	}
}

// MarginInterest is one interest accrual on borrowed margin funds. The
// exchange assigns no id to accruals, so rows carry no unique constraint and
// resume relies on the hourly cursor alone.
type MarginInterest struct {
	gorm.Model
	MarginType     string          `gorm:"size:20;not null;index"`
	Symbol         string          `gorm:"size:20;index"`
	InterestMillis int64           `gorm:"not null;index"`
	Asset          string          `gorm:"size:20;not null"`
	Interest       decimal.Decimal `gorm:"type:decimal(32,16);not null"`
	InterestType   string          `gorm:"size:30;not null"`
}
