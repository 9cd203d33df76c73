package alpaca

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/shopspring/decimal"

	"github.com/riskibarqy/trading-tournament/internal/domain/quote"
	"github.com/riskibarqy/trading-tournament/internal/platform/clock"
	"github.com/riskibarqy/trading-tournament/internal/platform/logging"
	"github.com/riskibarqy/trading-tournament/internal/platform/resilience"
)

type ClientConfig struct {
	APIKey         string
	APISecret      string
	DataURL        string
	Timeout        time.Duration
	Logger         *logging.Logger
	Clock          clock.Clock
	CircuitBreaker resilience.CircuitBreakerConfig
}

// tradeSource is the subset of the market-data client used for quotes.
type tradeSource interface {
	GetLatestTrade(symbol string, req marketdata.GetLatestTradeRequest) (*marketdata.Trade, error)
	GetLatestCryptoTrade(symbol string, req marketdata.GetLatestCryptoTradeRequest) (*marketdata.CryptoTrade, error)
}

// Client prices equities and crypto pairs ("BTC/USD") from Alpaca's latest trade.
type Client struct {
	source  tradeSource
	logger  *logging.Logger
	breaker *resilience.CircuitBreaker
}

func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	opts := marketdata.ClientOpts{
		APIKey:     strings.TrimSpace(cfg.APIKey),
		APISecret:  strings.TrimSpace(cfg.APISecret),
		HTTPClient: &http.Client{Timeout: timeout},
	}
	if dataURL := strings.TrimSpace(cfg.DataURL); dataURL != "" {
		opts.BaseURL = dataURL
	}
	return newClient(marketdata.NewClient(opts), cfg)
}

func newClient(source tradeSource, cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		source:  source,
		logger:  logger,
		breaker: resilience.BreakerFromConfig(cfg.CircuitBreaker, clock.OrReal(cfg.Clock)),
	}
}

type tradeResult struct {
	price float64
	at    time.Time
	err   error
}

func (c *Client) GetQuote(ctx context.Context, symbol string) (quote.Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return quote.Quote{}, fmt.Errorf("%w: symbol is required", quote.ErrUnavailable)
	}

	q, err := resilience.Execute(ctx, c.breaker, func(ctx context.Context) (quote.Quote, error) {
		// The SDK takes no context; the HTTP client timeout bounds the call.
		done := make(chan tradeResult, 1)
		go func() {
			done <- c.latestTrade(symbol)
		}()
		select {
		case <-ctx.Done():
			return quote.Quote{}, ctx.Err()
		case res := <-done:
			if res.err != nil {
				return quote.Quote{}, res.err
			}
			if res.price <= 0 {
				return quote.Quote{}, fmt.Errorf("no price for symbol %s", symbol)
			}
			return quote.Quote{Symbol: symbol, Price: decimal.NewFromFloat(res.price), AsOf: res.at.UTC()}, nil
		}
	})
	if err != nil {
		c.logger.DebugContext(ctx, "alpaca quote failed", "symbol", symbol, "error", err)
		return quote.Quote{}, fmt.Errorf("%w: alpaca %s: %w", quote.ErrUnavailable, symbol, err)
	}
	return q, nil
}

func (c *Client) latestTrade(symbol string) tradeResult {
	if strings.Contains(symbol, "/") {
		trade, err := c.source.GetLatestCryptoTrade(symbol, marketdata.GetLatestCryptoTradeRequest{})
		if err != nil {
			return tradeResult{err: err}
		}
		if trade == nil {
			return tradeResult{err: fmt.Errorf("empty crypto trade for %s", symbol)}
		}
		return tradeResult{price: trade.Price, at: trade.Timestamp}
	}
	trade, err := c.source.GetLatestTrade(symbol, marketdata.GetLatestTradeRequest{})
	if err != nil {
		return tradeResult{err: err}
	}
	if trade == nil {
		return tradeResult{err: fmt.Errorf("empty trade for %s", symbol)}
	}
	return tradeResult{price: trade.Price, at: trade.Timestamp}
}
