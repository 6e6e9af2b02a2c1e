package store

import (
	"gorm.io/gorm"

	"github.com/wnt/binwatch/internal/models"
)

// AssetRange filters a stream by optional asset and time bounds in
// milliseconds. Zero values leave the dimension unbounded.
type AssetRange struct {
	Asset string
	Start int64
	End   int64
}

// TradeFilter scopes trade reads. Zero values leave a dimension unbounded.
type TradeFilter struct {
	Market   string
	Asset    string
	RefAsset string
	Start    int64
	End      int64
}

// TransferFilter scopes transfer reads.
type TransferFilter struct {
	Kind         string
	TransferType string
	Asset        string
	Symbol       string
	Start        int64
	End          int64
}

// MarginFilter scopes margin loan and repay reads.
type MarginFilter struct {
	MarginType string
	Asset      string
	Symbol     string
	Start      int64
	End        int64
}

// InterestFilter scopes margin interest reads.
type InterestFilter struct {
	MarginType   string
	InterestType string
	Symbol       string
	Start        int64
	End          int64
}

// LendingFilter scopes lending purchase, redemption and interest reads.
type LendingFilter struct {
	LendingType string
	Asset       string
	Start       int64
	End         int64
}

func applyRange(q *gorm.DB, column string, start, end int64) *gorm.DB {
	if start > 0 {
		q = q.Where(column+" >= ?", start)
	}
	if end > 0 {
		q = q.Where(column+" <= ?", end)
	}
	return q
}

func whereEq(q *gorm.DB, column, value string) *gorm.DB {
	if value == "" {
		return q
	}
	return q.Where(column+" = ?", value)
}

// Trades returns stored trades matching the filter, oldest first.
func (s *Store) Trades(f TradeFilter) ([]models.Trade, error) {
	var rows []models.Trade
	q := s.db.Model(&models.Trade{})
	q = whereEq(q, "market", f.Market)
	q = whereEq(q, "asset", f.Asset)
	q = whereEq(q, "ref_asset", f.RefAsset)
	q = applyRange(q, "trade_millis", f.Start, f.End)
	err := q.Order("trade_millis").Find(&rows).Error
	return rows, err
}

// Transfers returns stored transfers matching the filter, oldest first.
func (s *Store) Transfers(f TransferFilter) ([]models.Transfer, error) {
	var rows []models.Transfer
	q := s.db.Model(&models.Transfer{})
	q = whereEq(q, "kind", f.Kind)
	q = whereEq(q, "transfer_type", f.TransferType)
	q = whereEq(q, "asset", f.Asset)
	q = whereEq(q, "symbol", f.Symbol)
	q = applyRange(q, "transfer_millis", f.Start, f.End)
	err := q.Order("transfer_millis").Find(&rows).Error
	return rows, err
}

// Deposits returns stored deposits matching the filter, oldest first.
func (s *Store) Deposits(f AssetRange) ([]models.Deposit, error) {
	var rows []models.Deposit
	q := whereEq(s.db.Model(&models.Deposit{}), "asset", f.Asset)
	q = applyRange(q, "deposit_millis", f.Start, f.End)
	err := q.Order("deposit_millis").Find(&rows).Error
	return rows, err
}

// Withdrawals returns stored withdrawals matching the filter, oldest first.
func (s *Store) Withdrawals(f AssetRange) ([]models.Withdrawal, error) {
	var rows []models.Withdrawal
	q := whereEq(s.db.Model(&models.Withdrawal{}), "asset", f.Asset)
	q = applyRange(q, "apply_millis", f.Start, f.End)
	err := q.Order("apply_millis").Find(&rows).Error
	return rows, err
}

// Dividends returns stored dividends matching the filter, oldest first.
func (s *Store) Dividends(f AssetRange) ([]models.Dividend, error) {
	var rows []models.Dividend
	q := whereEq(s.db.Model(&models.Dividend{}), "asset", f.Asset)
	q = applyRange(q, "div_millis", f.Start, f.End)
	err := q.Order("div_millis").Find(&rows).Error
	return rows, err
}

// Dusts returns stored dust conversions matching the filter, oldest first.
func (s *Store) Dusts(f AssetRange) ([]models.Dust, error) {
	var rows []models.Dust
	q := whereEq(s.db.Model(&models.Dust{}), "asset", f.Asset)
	q = applyRange(q, "dust_millis", f.Start, f.End)
	err := q.Order("dust_millis").Find(&rows).Error
	return rows, err
}

// MarginLoans returns stored margin loans matching the filter, oldest first.
func (s *Store) MarginLoans(f MarginFilter) ([]models.MarginLoan, error) {
	var rows []models.MarginLoan
	q := s.db.Model(&models.MarginLoan{})
	q = whereEq(q, "margin_type", f.MarginType)
	q = whereEq(q, "asset", f.Asset)
	q = whereEq(q, "symbol", f.Symbol)
	q = applyRange(q, "loan_millis", f.Start, f.End)
	err := q.Order("loan_millis").Find(&rows).Error
	return rows, err
}

// MarginRepays returns stored margin repays matching the filter, oldest first.
func (s *Store) MarginRepays(f MarginFilter) ([]models.MarginRepay, error) {
	var rows []models.MarginRepay
	q := s.db.Model(&models.MarginRepay{})
	q = whereEq(q, "margin_type", f.MarginType)
	q = whereEq(q, "asset", f.Asset)
	q = whereEq(q, "symbol", f.Symbol)
	q = applyRange(q, "repay_millis", f.Start, f.End)
	err := q.Order("repay_millis").Find(&rows).Error
	return rows, err
}

// MarginInterests returns stored margin interests matching the filter,
// oldest first.
func (s *Store) MarginInterests(f InterestFilter) ([]models.MarginInterest, error) {
	var rows []models.MarginInterest
	q := s.db.Model(&models.MarginInterest{})
	q = whereEq(q, "margin_type", f.MarginType)
	q = whereEq(q, "interest_type", f.InterestType)
	q = whereEq(q, "symbol", f.Symbol)
	q = applyRange(q, "interest_millis", f.Start, f.End)
	err := q.Order("interest_millis").Find(&rows).Error
	return rows, err
}

// LendingPurchases returns stored lending purchases matching the filter,
// oldest first.
func (s *Store) LendingPurchases(f LendingFilter) ([]models.LendingPurchase, error) {
	var rows []models.LendingPurchase
	q := s.db.Model(&models.LendingPurchase{})
	q = whereEq(q, "lending_type", f.LendingType)
	q = whereEq(q, "asset", f.Asset)
	q = applyRange(q, "purchase_millis", f.Start, f.End)
	err := q.Order("purchase_millis").Find(&rows).Error
	return rows, err
}

// LendingRedemptions returns stored lending redemptions matching the filter,
// oldest first.
func (s *Store) LendingRedemptions(f LendingFilter) ([]models.LendingRedemption, error) {
	var rows []models.LendingRedemption
	q := s.db.Model(&models.LendingRedemption{})
	q = whereEq(q, "lending_type", f.LendingType)
	q = whereEq(q, "asset", f.Asset)
	q = applyRange(q, "redemption_millis", f.Start, f.End)
	err := q.Order("redemption_millis").Find(&rows).Error
	return rows, err
}

// LendingInterests returns stored lending interests matching the filter,
// oldest first.
func (s *Store) LendingInterests(f LendingFilter) ([]models.LendingInterest, error) {
	var rows []models.LendingInterest
	q := s.db.Model(&models.LendingInterest{})
	q = whereEq(q, "lending_type", f.LendingType)
	q = whereEq(q, "asset", f.Asset)
	q = applyRange(q, "interest_millis", f.Start, f.End)
	err := q.Order("interest_millis").Find(&rows).Error
	return rows, err
}
