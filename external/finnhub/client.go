package finnhub

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
	"github.com/valyala/fasthttp"

	"github.com/riskibarqy/trading-tournament/internal/domain/quote"
	"github.com/riskibarqy/trading-tournament/internal/platform/clock"
	"github.com/riskibarqy/trading-tournament/internal/platform/logging"
	"github.com/riskibarqy/trading-tournament/internal/platform/resilience"
)

const defaultBaseURL = "https://finnhub.io/api/v1"

var (
	errFinnhubTransient = crerr.New("finnhub transient failure")
	tokenParamRegex     = regexp.MustCompile(`token=[^&\s"']+`)
)

type ClientConfig struct {
	BaseURL        string
	Token          string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	Clock          clock.Clock
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client fetches last-trade quotes from the Finnhub REST API.
type Client struct {
	http       *fasthttp.Client
	baseURL    string
	token      string
	timeout    time.Duration
	maxRetries int
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		http: &fasthttp.Client{
			Name:                "trading-tournament",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: time.Minute,
		},
		baseURL:    baseURL,
		token:      strings.TrimSpace(cfg.Token),
		timeout:    timeout,
		maxRetries: max(cfg.MaxRetries, 0),
		logger:     logger,
		breaker:    resilience.BreakerFromConfig(cfg.CircuitBreaker, clock.OrReal(cfg.Clock)),
	}
}

type quoteEnvelope struct {
	Current       float64 `json:"c"`
	Change        float64 `json:"d"`
	PercentChange float64 `json:"dp"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Open          float64 `json:"o"`
	PreviousClose float64 `json:"pc"`
	Timestamp     int64   `json:"t"`
}

func (c *Client) GetQuote(ctx context.Context, symbol string) (quote.Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return quote.Quote{}, fmt.Errorf("%w: symbol is required", quote.ErrUnavailable)
	}

	q, err := resilience.Execute(ctx, c.breaker, func(ctx context.Context) (quote.Quote, error) {
		return c.fetchQuote(ctx, symbol)
	})
	if err != nil {
		if stderrors.Is(err, resilience.ErrCircuitOpen) {
			c.logger.WarnContext(ctx, "finnhub circuit breaker rejected request", "symbol", symbol, "state", c.breaker.State())
		}
		return quote.Quote{}, fmt.Errorf("%w: finnhub %s: %w", quote.ErrUnavailable, symbol, err)
	}
	return q, nil
}

func (c *Client) fetchQuote(ctx context.Context, symbol string) (quote.Quote, error) {
	values := url.Values{}
	values.Set("symbol", symbol)
	values.Set("token", c.token)
	fullURL := c.baseURL + "/quote?" + values.Encode()

	raw, err := c.executeRequest(ctx, fullURL)
	if err != nil {
		return quote.Quote{}, err
	}

	var env quoteEnvelope
	if err := sonic.Unmarshal(raw, &env); err != nil {
		return quote.Quote{}, fmt.Errorf("decode quote payload: %w", err)
	}
	// Finnhub answers unknown symbols with an all-zero body.
	if env.Current <= 0 {
		return quote.Quote{}, crerr.Newf("no price for symbol %s", symbol)
	}

	asOf := time.Now().UTC()
	if env.Timestamp > 0 {
		asOf = time.Unix(env.Timestamp, 0).UTC()
	}
	return quote.Quote{
		Symbol: symbol,
		Price:  decimal.NewFromFloat(env.Current),
		AsOf:   asOf,
	}, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		raw, status, err := c.do(ctx, fullURL)
		switch {
		case err != nil:
			lastErr = fmt.Errorf("%w: send request: %s", errFinnhubTransient, sanitize(err.Error(), c.token))
		case status >= 200 && status < 300:
			return raw, nil
		case isRetryableStatus(status):
			lastErr = fmt.Errorf("%w: provider status=%d", errFinnhubTransient, status)
		default:
			return nil, fmt.Errorf("provider status=%d body=%s", status, abbreviate(raw))
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * 200 * time.Millisecond
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	c.logger.WarnContext(ctx, "finnhub request failed", "url", sanitize(fullURL, c.token), "error", lastErr)
	return nil, lastErr
}

// do performs one GET bounded by the earlier of ctx's deadline and the client timeout.
func (c *Client) do(ctx context.Context, fullURL string) ([]byte, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fullURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return nil, 0, err
	}
	body := append([]byte(nil), resp.Body()...)
	return body, resp.StatusCode(), nil
}

func isRetryableStatus(status int) bool {
	return status == fasthttp.StatusRequestTimeout ||
		status == fasthttp.StatusTooManyRequests ||
		status >= fasthttp.StatusInternalServerError
}

func sanitize(value, token string) string {
	if token != "" {
		value = strings.ReplaceAll(value, token, "REDACTED")
	}
	return tokenParamRegex.ReplaceAllString(value, "token=REDACTED")
}

func abbreviate(raw []byte) string {
	text := strings.TrimSpace(string(raw))
	if len(text) > 256 {
		return text[:256] + "..."
	}
	return text
}
