package portfolio

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Purchase is one buy lot. Sells shrink or remove lots oldest first; a lot
// never holds zero or negative shares.
type Purchase struct {
	ID            string
	TournamentID  string
	UserID        string
	Symbol        string
	Shares        decimal.Decimal
	PurchasePrice decimal.Decimal
	TotalCost     decimal.Decimal
	PurchasedAt   time.Time
}

// Holding aggregates the open lots of one symbol.
type Holding struct {
	Symbol            string
	Shares            decimal.Decimal
	CostBasis         decimal.Decimal
	AverageCost       decimal.Decimal
	LastPurchasePrice decimal.Decimal
	LastPurchasedAt   time.Time
}

func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

const MaxSymbolLength = 20
