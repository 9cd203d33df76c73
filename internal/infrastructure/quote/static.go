package quote

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/riskibarqy/trading-tournament/internal/domain/quote"
	"github.com/riskibarqy/trading-tournament/internal/platform/clock"
)

// StaticProvider answers from a fixed price table. Unknown symbols are unavailable.
type StaticProvider struct {
	prices map[string]decimal.Decimal
	clock  clock.Clock
}

func NewStaticProvider(prices map[string]decimal.Decimal, c clock.Clock) *StaticProvider {
	normalized := make(map[string]decimal.Decimal, len(prices))
	for symbol, price := range prices {
		normalized[strings.ToUpper(strings.TrimSpace(symbol))] = price
	}
	return &StaticProvider{prices: normalized, clock: clock.OrReal(c)}
}

// ParseStaticPrices reads "AAPL=190.5,MSFT=410" into a price table.
func ParseStaticPrices(raw string) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		symbol, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(symbol) == "" {
			return nil, fmt.Errorf("invalid static price %q", pair)
		}
		price, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil || !price.IsPositive() {
			return nil, fmt.Errorf("invalid static price for %s: %q", symbol, value)
		}
		out[strings.ToUpper(strings.TrimSpace(symbol))] = price
	}
	return out, nil
}

func (p *StaticProvider) GetQuote(_ context.Context, symbol string) (quote.Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	price, ok := p.prices[symbol]
	if !ok {
		return quote.Quote{}, fmt.Errorf("%w: no static price for %s", quote.ErrUnavailable, symbol)
	}
	return quote.Quote{Symbol: symbol, Price: price, AsOf: p.clock.Now()}, nil
}
