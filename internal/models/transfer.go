package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transfer is a balance movement between wallets. Universal transfers carry
// the exchange route (for example MAIN_MARGIN) in TransferType; isolated
// transfers carry the isolated symbol plus a derived IN or OUT direction.
type Transfer struct {
	gorm.Model
	Kind           string          `gorm:"size:20;not null;uniqueIndex:idx_transfers_kind_tran_id"`
	TranID         int64           `gorm:"not null;uniqueIndex:idx_transfers_kind_tran_id"`
	TransferType   string          `gorm:"size:40;not null;index"`
	Symbol         string          `gorm:"size:20;index"`
	TransferMillis int64           `gorm:"not null;index"`
	Asset          string          `gorm:"size:20;not null"`
	Amount         decimal.Decimal `gorm:"type:decimal(32,16);not null"`
}

// KeyConditions returns the natural key of the transfer for conflict lookups.
func (t Transfer) KeyConditions() map[string]any {
	return map[string]any{
		"kind":    t.Kind,
		"tran_id": t.TranID,
	}
}
