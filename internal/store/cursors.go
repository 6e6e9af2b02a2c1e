package store

import (
	"database/sql"
	"time"

	"github.com/wnt/binwatch/internal/models"
)

// AccountLaunchMillis is the resume default for every time cursor: the
// exchange launched in 2017, so no account activity predates it. Cursors
// never default to the current time, which would silently skip history.
var AccountLaunchMillis = time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli()

// maxInt64 returns the maximum of a column under the given conditions, or
// def when the table is missing or holds no matching rows.
func (s *Store) maxInt64(model any, column string, conds map[string]any, def int64) int64 {
	var v sql.NullInt64
	q := s.db.Model(model)
	if len(conds) > 0 {
		q = q.Where(conds)
	}
	if err := q.Select("MAX(" + column + ")").Scan(&v).Error; err != nil || !v.Valid {
		return def
	}
	return v.Int64
}

// MaxTradeID returns the highest stored trade id for a pair in a market, or
// -1 when no trade has been stored yet.
func (s *Store) MaxTradeID(market, asset, refAsset string) int64 {
	return s.maxInt64(&models.Trade{}, "trade_id", map[string]any{
		"market":    market,
		"asset":     asset,
		"ref_asset": refAsset,
	}, -1)
}

// LastUniversalTransferMillis returns the newest stored universal transfer
// time for one route type.
func (s *Store) LastUniversalTransferMillis(transferType string) int64 {
	return s.maxInt64(&models.Transfer{}, "transfer_millis", map[string]any{
		"kind":          models.TransferUniversal,
		"transfer_type": transferType,
	}, AccountLaunchMillis)
}

// LastIsolatedTransferMillis returns the newest stored isolated margin
// transfer time for one symbol.
func (s *Store) LastIsolatedTransferMillis(symbol string) int64 {
	return s.maxInt64(&models.Transfer{}, "transfer_millis", map[string]any{
		"kind":   models.TransferIsolated,
		"symbol": symbol,
	}, AccountLaunchMillis)
}

// LastDepositMillis returns the newest stored deposit time.
func (s *Store) LastDepositMillis() int64 {
	return s.maxInt64(&models.Deposit{}, "deposit_millis", nil, AccountLaunchMillis)
}

// LastWithdrawalMillis returns the newest stored withdrawal apply time.
func (s *Store) LastWithdrawalMillis() int64 {
	return s.maxInt64(&models.Withdrawal{}, "apply_millis", nil, AccountLaunchMillis)
}

// LastDividendMillis returns the newest stored dividend time.
func (s *Store) LastDividendMillis() int64 {
	return s.maxInt64(&models.Dividend{}, "div_millis", nil, AccountLaunchMillis)
}

// LastLoanMillis returns the newest stored margin loan time for an asset,
// scoped to one isolated symbol when given.
func (s *Store) LastLoanMillis(marginType, asset, symbol string) int64 {
	conds := map[string]any{
		"margin_type": marginType,
		"asset":       asset,
	}
	if symbol != "" {
		conds["symbol"] = symbol
	}
	return s.maxInt64(&models.MarginLoan{}, "loan_millis", conds, AccountLaunchMillis)
}

// LastRepayMillis returns the newest stored margin repay time for an asset,
// scoped to one isolated symbol when given.
func (s *Store) LastRepayMillis(marginType, asset, symbol string) int64 {
	conds := map[string]any{
		"margin_type": marginType,
		"asset":       asset,
	}
	if symbol != "" {
		conds["symbol"] = symbol
	}
	return s.maxInt64(&models.MarginRepay{}, "repay_millis", conds, AccountLaunchMillis)
}

// LastMarginInterestMillis returns the newest stored margin interest time,
// scoped to one isolated symbol when given.
func (s *Store) LastMarginInterestMillis(marginType, symbol string) int64 {
	conds := map[string]any{
		"margin_type": marginType,
	}
	if symbol != "" {
		conds["symbol"] = symbol
	}
	return s.maxInt64(&models.MarginInterest{}, "interest_millis", conds, AccountLaunchMillis)
}

// LastLendingPurchaseMillis returns the newest stored purchase time for one
// lending type.
func (s *Store) LastLendingPurchaseMillis(lendingType string) int64 {
	return s.maxInt64(&models.LendingPurchase{}, "purchase_millis", map[string]any{
		"lending_type": lendingType,
	}, AccountLaunchMillis)
}

// LastLendingRedemptionMillis returns the newest stored redemption time for
// one lending type.
func (s *Store) LastLendingRedemptionMillis(lendingType string) int64 {
	return s.maxInt64(&models.LendingRedemption{}, "redemption_millis", map[string]any{
		"lending_type": lendingType,
	}, AccountLaunchMillis)
}

// LastLendingInterestMillis returns the newest stored interest time for one
// lending type.
func (s *Store) LastLendingInterestMillis(lendingType string) int64 {
	return s.maxInt64(&models.LendingInterest{}, "interest_millis", map[string]any{
		"lending_type": lendingType,
	}, AccountLaunchMillis)
}
