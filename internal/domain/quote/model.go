package quote

import (
	"context"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
)

// ErrUnavailable is returned when no usable quote could be obtained.
var ErrUnavailable = crerr.New("quote unavailable")

type Quote struct {
	Symbol string
	Price  decimal.Decimal
	AsOf   time.Time
}

type Provider interface {
	GetQuote(ctx context.Context, symbol string) (Quote, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, symbol string) (Quote, error)

func (f ProviderFunc) GetQuote(ctx context.Context, symbol string) (Quote, error) {
	return f(ctx, symbol)
}
