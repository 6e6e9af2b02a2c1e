package binance

import (
	"context"
	"net/url"
	"strconv"
)

// PageQuery addresses one page of a paginated history endpoint.
type PageQuery struct {
	StartTime int64
	Page      int
	Size      int
	Archived  bool
}

func (q PageQuery) values() url.Values {
	params := url.Values{}
	params.Set("startTime", strconv.FormatInt(q.StartTime, 10))
	params.Set("current", strconv.Itoa(q.Page))
	params.Set("size", strconv.Itoa(q.Size))
	return params
}

// rowsEnvelope is the paging envelope shared by most history endpoints. A
// response without the rows key decodes to an empty slice, which callers
// read as stream exhaustion.
type rowsEnvelope[T any] struct {
	Total int `json:"total"`
	Rows  []T `json:"rows"`
}

// ExchangeSymbols lists every tradable spot pair.
func (c *Client) ExchangeSymbols(ctx context.Context) ([]SymbolInfo, error) {
	var out struct {
		Symbols []SymbolInfo `json:"symbols"`
	}
	if err := c.doGet(ctx, "/api/v3/exchangeInfo", nil, secPublic, &out); err != nil {
		return nil, err
	}
	return out.Symbols, nil
}

// MarginPairs lists every cross margin pair.
func (c *Client) MarginPairs(ctx context.Context) ([]MarginPair, error) {
	var out []MarginPair
	if err := c.doGet(ctx, "/sapi/v1/margin/allPairs", nil, secKeyed, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// IsolatedPairs lists every isolated margin pair enabled for the account.
func (c *Client) IsolatedPairs(ctx context.Context) ([]MarginPair, error) {
	var out []MarginPair
	if err := c.doGet(ctx, "/sapi/v1/margin/isolated/allPairs", nil, secSigned, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SpotTrades returns up to limit spot trades for a symbol with id >= fromID.
func (c *Client) SpotTrades(ctx context.Context, symbol string, fromID int64, limit int) ([]Trade, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("fromId", strconv.FormatInt(fromID, 10))
	params.Set("limit", strconv.Itoa(limit))

	var out []Trade
	if err := c.doGet(ctx, "/api/v3/myTrades", params, secSigned, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarginTrades returns up to limit margin trades for a symbol with
// id >= fromID, from the isolated wallet when isolated is set.
func (c *Client) MarginTrades(ctx context.Context, symbol string, isolated bool, fromID int64, limit int) ([]Trade, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	if isolated {
		params.Set("isIsolated", "TRUE")
	}
	params.Set("fromId", strconv.FormatInt(fromID, 10))
	params.Set("limit", strconv.Itoa(limit))

	var out []Trade
	if err := c.doGet(ctx, "/sapi/v1/margin/myTrades", params, secSigned, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UniversalTransfers returns one page of universal transfer history for a
// route type.
func (c *Client) UniversalTransfers(ctx context.Context, transferType string, q PageQuery) ([]UniversalTransfer, error) {
	params := q.values()
	params.Set("type", transferType)

	var out rowsEnvelope[UniversalTransfer]
	if err := c.doGet(ctx, "/sapi/v1/asset/transfer", params, secSigned, &out); err != nil {
		return nil, err
	}
	return out.Rows, nil
}

// IsolatedTransfers returns one page of transfer history for an isolated
// margin symbol.
func (c *Client) IsolatedTransfers(ctx context.Context, symbol string, q PageQuery) ([]IsolatedTransfer, error) {
	params := q.values()
	params.Set("symbol", symbol)

	var out rowsEnvelope[IsolatedTransfer]
	if err := c.doGet(ctx, "/sapi/v1/margin/isolated/transfer", params, secSigned, &out); err != nil {
		return nil, err
	}
	return out.Rows, nil
}

// MarginLoans returns one page of borrow history for an asset. An empty
// isolatedSymbol queries the cross margin wallet.
func (c *Client) MarginLoans(ctx context.Context, asset, isolatedSymbol string, q PageQuery) ([]MarginLoan, error) {
	params := q.values()
	params.Set("asset", asset)
	params.Set("archived", strconv.FormatBool(q.Archived))
	if isolatedSymbol != "" {
		params.Set("isolatedSymbol", isolatedSymbol)
	}

	var out rowsEnvelope[MarginLoan]
	if err := c.doGet(ctx, "/sapi/v1/margin/loan", params, secSigned, &out); err != nil {
		return nil, err
	}
	return out.Rows, nil
}

// MarginRepays returns one page of repay history for an asset. An empty
// isolatedSymbol queries the cross margin wallet.
func (c *Client) MarginRepays(ctx context.Context, asset, isolatedSymbol string, q PageQuery) ([]MarginRepay, error) {
	params := q.values()
	params.Set("asset", asset)
	params.Set("archived", strconv.FormatBool(q.Archived))
	if isolatedSymbol != "" {
		params.Set("isolatedSymbol", isolatedSymbol)
	}

	var out rowsEnvelope[MarginRepay]
	if err := c.doGet(ctx, "/sapi/v1/margin/repay", params, secSigned, &out); err != nil {
		return nil, err
	}
	return out.Rows, nil
}

// MarginInterests returns one page of margin interest history. An empty
// isolatedSymbol queries the cross margin wallet.
func (c *Client) MarginInterests(ctx context.Context, isolatedSymbol string, q PageQuery) ([]MarginInterest, error) {
	params := q.values()
	params.Set("archived", strconv.FormatBool(q.Archived))
	if isolatedSymbol != "" {
		params.Set("isolatedSymbol", isolatedSymbol)
	}

	var out rowsEnvelope[MarginInterest]
	if err := c.doGet(ctx, "/sapi/v1/margin/interestHistory", params, secSigned, &out); err != nil {
		return nil, err
	}
	return out.Rows, nil
}

// LendingPurchases returns one page of purchase history for a lending type.
func (c *Client) LendingPurchases(ctx context.Context, lendingType string, q PageQuery) ([]LendingPurchase, error) {
	params := q.values()
	params.Set("lendingType", lendingType)

	var out []LendingPurchase
	if err := c.doGet(ctx, "/sapi/v1/lending/union/purchaseRecord", params, secSigned, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// LendingRedemptions returns one page of redemption history for a lending
// type.
func (c *Client) LendingRedemptions(ctx context.Context, lendingType string, q PageQuery) ([]LendingRedemption, error) {
	params := q.values()
	params.Set("lendingType", lendingType)

	var out []LendingRedemption
	if err := c.doGet(ctx, "/sapi/v1/lending/union/redemptionRecord", params, secSigned, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// LendingInterests returns one page of interest history for a lending type.
func (c *Client) LendingInterests(ctx context.Context, lendingType string, q PageQuery) ([]LendingInterest, error) {
	params := q.values()
	params.Set("lendingType", lendingType)

	var out []LendingInterest
	if err := c.doGet(ctx, "/sapi/v1/lending/union/interestHistory", params, secSigned, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Deposits returns completed deposits inside [startTime, endTime].
func (c *Client) Deposits(ctx context.Context, startTime, endTime int64) ([]Deposit, error) {
	params := url.Values{}
	params.Set("startTime", strconv.FormatInt(startTime, 10))
	params.Set("endTime", strconv.FormatInt(endTime, 10))
	params.Set("status", "1")

	var out struct {
		DepositList []Deposit `json:"depositList"`
		Success     bool      `json:"success"`
	}
	if err := c.doGet(ctx, "/sapi/v1/capital/deposit/history", params, secSigned, &out); err != nil {
		return nil, err
	}
	return out.DepositList, nil
}

// Withdrawals returns completed withdrawals inside [startTime, endTime].
func (c *Client) Withdrawals(ctx context.Context, startTime, endTime int64) ([]Withdrawal, error) {
	params := url.Values{}
	params.Set("startTime", strconv.FormatInt(startTime, 10))
	params.Set("endTime", strconv.FormatInt(endTime, 10))
	params.Set("status", "6")

	var out struct {
		WithdrawList []Withdrawal `json:"withdrawList"`
		Success      bool         `json:"success"`
	}
	if err := c.doGet(ctx, "/sapi/v1/capital/withdraw/history", params, secSigned, &out); err != nil {
		return nil, err
	}
	return out.WithdrawList, nil
}

// Dividends returns up to limit asset dividends inside [startTime, endTime].
func (c *Client) Dividends(ctx context.Context, startTime, endTime int64, limit int) ([]Dividend, error) {
	params := url.Values{}
	params.Set("startTime", strconv.FormatInt(startTime, 10))
	params.Set("endTime", strconv.FormatInt(endTime, 10))
	params.Set("limit", strconv.Itoa(limit))

	var out rowsEnvelope[Dividend]
	if err := c.doGet(ctx, "/sapi/v1/asset/assetDividend", params, secSigned, &out); err != nil {
		return nil, err
	}
	return out.Rows, nil
}

// DustLog returns the full dust conversion history.
func (c *Client) DustLog(ctx context.Context) (*DustLog, error) {
	var out struct {
		Success bool    `json:"success"`
		Results DustLog `json:"results"`
	}
	if err := c.doGet(ctx, "/sapi/v1/asset/dust-log", nil, secSigned, &out); err != nil {
		return nil, err
	}
	return &out.Results, nil
}
