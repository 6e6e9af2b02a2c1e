package store

import (
	"fmt"

	"github.com/wnt/binwatch/internal/models"
)

// entry binds a stream kind to the model whose table backs it.
type entry struct {
	kind  models.StreamKind
	model any
}

// registry is the single authority on which tables exist. Migration, reset
// and purge walk this list; nothing else creates or drops tables.
var registry = []entry{
	{models.StreamTrades, &models.Trade{}},
	{models.StreamTransfers, &models.Transfer{}},
	{models.StreamMarginLoans, &models.MarginLoan{}},
	{models.StreamMarginRepays, &models.MarginRepay{}},
	{models.StreamMarginInterests, &models.MarginInterest{}},
	{models.StreamLendingPurchases, &models.LendingPurchase{}},
	{models.StreamLendingRedemptions, &models.LendingRedemption{}},
	{models.StreamLendingInterests, &models.LendingInterest{}},
	{models.StreamDeposits, &models.Deposit{}},
	{models.StreamWithdrawals, &models.Withdrawal{}},
	{models.StreamDividends, &models.Dividend{}},
	{models.StreamDusts, &models.Dust{}},
}

// Kinds lists every registered stream kind in registry order.
func Kinds() []models.StreamKind {
	kinds := make([]models.StreamKind, 0, len(registry))
	for _, e := range registry {
		kinds = append(kinds, e.kind)
	}
	return kinds
}

func lookup(kind models.StreamKind) (entry, error) {
	for _, e := range registry {
		if e.kind == kind {
			return e, nil
		}
	}
	return entry{}, fmt.Errorf("unknown stream kind %q", kind)
}
