package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LendingPurchase is a successful subscription to a lending product.
type LendingPurchase struct {
	gorm.Model
	PurchaseID     int64           `gorm:"not null;uniqueIndex"`
	LendingType    string          `gorm:"size:30;not null;index"`
	PurchaseMillis int64           `gorm:"not null;index"`
	Asset          string          `gorm:"size:20;not null"`
	Amount         decimal.Decimal `gorm:"type:decimal(32,16);not null"`
}

// KeyConditions returns the natural key of the purchase for conflict lookups.
func (p LendingPurchase) KeyConditions() map[string]any {
	return map[string]any{"purchase_id": p.PurchaseID}
}

// LendingRedemption is a paid-out redemption of a lending position. The
// exchange reports no redemption id, so rows carry no unique constraint.
type LendingRedemption struct {
	gorm.Model
	LendingType      string          `gorm:"size:30;not null;index"`
	RedemptionMillis int64           `gorm:"not null;index"`
	Asset            string          `gorm:"size:20;not null"`
	Amount           decimal.Decimal `gorm:"type:decimal(32,16);not null"`
}

// LendingInterest is one interest payout from a lending product. Payouts are
// unkeyed on the exchange side and resume relies on the hourly cursor.
type LendingInterest struct {
	gorm.Model
	LendingType    string          `gorm:"size:30;not null;index"`
	InterestMillis int64           `gorm:"not null;index"`
	Asset          string          `gorm:"size:20;not null"`
	Interest       decimal.Decimal `gorm:"type:decimal(32,16);not null"`
}
