package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Trade is one executed order fill in a spot, cross margin or isolated margin
// wallet. The exchange numbers trades per symbol, so uniqueness is scoped by
// market and pair rather than by the raw trade id alone.
type Trade struct {
	gorm.Model
	Market      string          `gorm:"size:20;not null;uniqueIndex:idx_trades_scope_trade_id"`
	Asset       string          `gorm:"size:20;not null;uniqueIndex:idx_trades_scope_trade_id"`
	RefAsset    string          `gorm:"size:20;not null;uniqueIndex:idx_trades_scope_trade_id"`
	TradeID     int64           `gorm:"not null;uniqueIndex:idx_trades_scope_trade_id"`
	TradeMillis int64           `gorm:"not null;index"`
	Quantity    decimal.Decimal `gorm:"type:decimal(32,16);not null"`
	Price       decimal.Decimal `gorm:"type:decimal(32,16);not null"`
	Fee         decimal.Decimal `gorm:"type:decimal(32,16);not null"`
	FeeAsset    string          `gorm:"size:20;not null"`
	IsBuyer     bool            `gorm:"not null"`
}

// KeyConditions returns the natural key of the trade for conflict lookups.
func (t Trade) KeyConditions() map[string]any {
	return map[string]any{
		"market":    t.Market,
		"asset":     t.Asset,
		"ref_asset": t.RefAsset,
		"trade_id":  t.TradeID,
	}
}
