package binance

import "github.com/shopspring/decimal"

// SymbolInfo is one tradable pair from the exchange info endpoint.
type SymbolInfo struct {
	Symbol     string `json:"symbol"`
	BaseAsset  string `json:"baseAsset"`
	QuoteAsset string `json:"quoteAsset"`
}

// MarginPair is one pair from the margin pair listings, which use shorter
// field names than exchange info.
type MarginPair struct {
	Symbol string `json:"symbol"`
	Base   string `json:"base"`
	Quote  string `json:"quote"`
}

// Trade is one account trade, shared by the spot and margin trade endpoints.
type Trade struct {
	Symbol          string          `json:"symbol"`
	ID              int64           `json:"id"`
	OrderID         int64           `json:"orderId"`
	Price           decimal.Decimal `json:"price"`
	Qty             decimal.Decimal `json:"qty"`
	Commission      decimal.Decimal `json:"commission"`
	CommissionAsset string          `json:"commissionAsset"`
	Time            int64           `json:"time"`
	IsBuyer         bool            `json:"isBuyer"`
	IsMaker         bool            `json:"isMaker"`
}

// UniversalTransfer is one wallet-to-wallet transfer from the universal
// transfer history.
type UniversalTransfer struct {
	TranID    int64           `json:"tranId"`
	Type      string          `json:"type"`
	Timestamp int64           `json:"timestamp"`
	Asset     string          `json:"asset"`
	Amount    decimal.Decimal `json:"amount"`
}

// IsolatedTransfer is one transfer between the spot wallet and an isolated
// margin wallet. TransFrom and TransTo name the two sides; one of them is
// ISOLATED_MARGIN for any valid record.
type IsolatedTransfer struct {
	TranID    int64           `json:"txId"`
	Asset     string          `json:"asset"`
	Symbol    string          `json:"symbol"`
	Amount    decimal.Decimal `json:"amount"`
	TransFrom string          `json:"transFrom"`
	TransTo   string          `json:"transTo"`
	Timestamp int64           `json:"timestamp"`
}

// Wallet names used by isolated transfer records.
const (
	WalletSpot           = "SPOT"
	WalletIsolatedMargin = "ISOLATED_MARGIN"
)

// MarginLoan is one borrow record from the margin loan history.
type MarginLoan struct {
	TxID           int64           `json:"txId"`
	Asset          string          `json:"asset"`
	IsolatedSymbol string          `json:"isolatedSymbol"`
	Principal      decimal.Decimal `json:"principal"`
	Timestamp      int64           `json:"timestamp"`
	Status         string          `json:"status"`
}

// MarginRepay is one repayment record from the margin repay history.
type MarginRepay struct {
	TxID           int64           `json:"txId"`
	Asset          string          `json:"asset"`
	IsolatedSymbol string          `json:"isolatedSymbol"`
	Principal      decimal.Decimal `json:"principal"`
	Interest       decimal.Decimal `json:"interest"`
	Amount         decimal.Decimal `json:"amount"`
	Timestamp      int64           `json:"timestamp"`
	Status         string          `json:"status"`
}

// MarginInterest is one interest accrual from the margin interest history.
type MarginInterest struct {
	IsolatedSymbol      string          `json:"isolatedSymbol"`
	Asset               string          `json:"asset"`
	Interest            decimal.Decimal `json:"interest"`
	InterestAccuredTime int64           `json:"interestAccuredTime"`
	Type                string          `json:"type"`
}

// Record statuses accepted by the synchronizer.
const (
	StatusConfirmed = "CONFIRMED"
	StatusSuccess   = "SUCCESS"
	StatusPaid      = "PAID"
)

// LendingPurchase is one subscription from the lending purchase history.
type LendingPurchase struct {
	PurchaseID  int64           `json:"purchaseId"`
	LendingType string          `json:"lendingType"`
	Asset       string          `json:"asset"`
	Amount      decimal.Decimal `json:"amount"`
	CreateTime  int64           `json:"createTime"`
	Status      string          `json:"status"`
}

// LendingRedemption is one payout from the lending redemption history.
type LendingRedemption struct {
	Asset      string          `json:"asset"`
	Amount     decimal.Decimal `json:"amount"`
	CreateTime int64           `json:"createTime"`
	Status     string          `json:"status"`
}

// LendingInterest is one interest payment from the lending interest history.
type LendingInterest struct {
	LendingType string          `json:"lendingType"`
	Asset       string          `json:"asset"`
	Interest    decimal.Decimal `json:"interest"`
	Time        int64           `json:"time"`
}

// Deposit is one completed deposit from the deposit history.
type Deposit struct {
	TxID       string          `json:"txId"`
	Asset      string          `json:"asset"`
	Amount     decimal.Decimal `json:"amount"`
	InsertTime int64           `json:"insertTime"`
	Status     int             `json:"status"`
}

// Withdrawal is one completed withdrawal from the withdraw history.
type Withdrawal struct {
	ID             string          `json:"id"`
	TxID           string          `json:"txId"`
	Asset          string          `json:"asset"`
	Amount         decimal.Decimal `json:"amount"`
	TransactionFee decimal.Decimal `json:"transactionFee"`
	ApplyTime      int64           `json:"applyTime"`
	Status         int             `json:"status"`
}

// Dividend is one asset dividend from the dividend history.
type Dividend struct {
	TranID  int64           `json:"tranId"`
	Asset   string          `json:"asset"`
	Amount  decimal.Decimal `json:"amount"`
	DivTime int64           `json:"divTime"`
}

// DustLog is the full dust conversion history. Conversions arrive grouped by
// operation, each holding per-asset detail lines.
type DustLog struct {
	Total int       `json:"total"`
	Rows  []DustRow `json:"rows"`
}

// DustRow is one dust conversion operation.
type DustRow struct {
	Logs []DustLogEntry `json:"logs"`
}

// DustLogEntry is one converted asset inside a dust conversion operation.
// OperateTime is a naive datetime string in UTC.
type DustLogEntry struct {
	TranID              int64           `json:"tranId"`
	OperateTime         string          `json:"operateTime"`
	FromAsset           string          `json:"fromAsset"`
	Amount              decimal.Decimal `json:"amount"`
	TransferedAmount    decimal.Decimal `json:"transferedAmount"`
	ServiceChargeAmount decimal.Decimal `json:"serviceChargeAmount"`
}
