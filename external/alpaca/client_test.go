package alpaca

import (
	"errors"
	"testing"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"github.com/riskibarqy/trading-tournament/internal/domain/quote"
)

type fakeSource struct {
	trades map[string]marketdata.Trade
	crypto map[string]marketdata.CryptoTrade
}

func (f fakeSource) GetLatestTrade(symbol string, _ marketdata.GetLatestTradeRequest) (*marketdata.Trade, error) {
	trade, ok := f.trades[symbol]
	if !ok {
		return nil, errors.New("symbol not found")
	}
	return &trade, nil
}

func (f fakeSource) GetLatestCryptoTrade(symbol string, _ marketdata.GetLatestCryptoTradeRequest) (*marketdata.CryptoTrade, error) {
	trade, ok := f.crypto[symbol]
	if !ok {
		return nil, errors.New("pair not found")
	}
	return &trade, nil
}

func TestClient_GetQuote(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 5, 4, 14, 30, 0, 0, time.UTC)
	client := newClient(fakeSource{
		trades: map[string]marketdata.Trade{"SPY": {Price: 512.34, Timestamp: at}},
		crypto: map[string]marketdata.CryptoTrade{"BTC/USD": {Price: 64000.5, Timestamp: at}},
	}, ClientConfig{})

	got, err := client.GetQuote(t.Context(), "spy")
	if err != nil {
		t.Fatalf("equity quote: %v", err)
	}
	if got.Price.String() != "512.34" || !got.AsOf.Equal(at) {
		t.Fatalf("unexpected equity quote: %+v", got)
	}

	got, err = client.GetQuote(t.Context(), "btc/usd")
	if err != nil {
		t.Fatalf("crypto quote: %v", err)
	}
	if got.Price.String() != "64000.5" {
		t.Fatalf("unexpected crypto quote: %+v", got)
	}

	if _, err := client.GetQuote(t.Context(), "MISSING"); !errors.Is(err, quote.ErrUnavailable) {
		t.Fatalf("expected quote.ErrUnavailable, got %v", err)
	}
}
