package models

// StreamKind identifies one synchronized activity stream. Each kind maps to
// exactly one table and one resume cursor family.
type StreamKind string

const (
	StreamTrades             StreamKind = "trades"
	StreamTransfers          StreamKind = "transfers"
	StreamMarginLoans        StreamKind = "margin_loans"
	StreamMarginRepays       StreamKind = "margin_repays"
	StreamMarginInterests    StreamKind = "margin_interests"
	StreamLendingPurchases   StreamKind = "lending_purchases"
	StreamLendingRedemptions StreamKind = "lending_redemptions"
	StreamLendingInterests   StreamKind = "lending_interests"
	StreamDeposits           StreamKind = "deposits"
	StreamWithdrawals        StreamKind = "withdrawals"
	StreamDividends          StreamKind = "dividends"
	StreamDusts              StreamKind = "dusts"
)

// Market distinguishes the trading wallet a trade was executed in.
const (
	MarketSpot           = "spot"
	MarketCrossMargin    = "cross_margin"
	MarketIsolatedMargin = "isolated_margin"
)

// Margin account flavors used to scope loans, repays and interests.
const (
	MarginCross    = "cross"
	MarginIsolated = "isolated"
)

// Transfer kinds and directions.
const (
	TransferUniversal = "universal"
	TransferIsolated  = "isolated"

	DirectionIn  = "IN"
	DirectionOut = "OUT"
)

// Lending product types as reported by the exchange.
const (
	LendingDaily           = "DAILY"
	LendingActivity        = "ACTIVITY"
	LendingCustomizedFixed = "CUSTOMIZED_FIXED"
)

// LendingTypes enumerates every lending product walked during a lending sync.
func LendingTypes() []string {
	return []string{LendingDaily, LendingActivity, LendingCustomizedFixed}
}
