package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/trading-tournament/internal/domain/portfolio"
	"github.com/riskibarqy/trading-tournament/internal/domain/quote"
	"github.com/riskibarqy/trading-tournament/internal/domain/settlement"
	"github.com/riskibarqy/trading-tournament/internal/domain/tournament"
	"github.com/riskibarqy/trading-tournament/internal/domain/uow"
	"github.com/riskibarqy/trading-tournament/internal/platform/logging"
)

type ValuatorConfig struct {
	QuoteTimeout   time.Duration
	MaxConcurrency int
}

// SymbolPrice is the mark used for one symbol. Fallback marks a price taken
// from the latest purchase because no quote arrived in time.
type SymbolPrice struct {
	Symbol   string
	Price    decimal.Decimal
	AsOf     time.Time
	Fallback bool
}

// PortfolioValuator marks tournament portfolios to market.
type PortfolioValuator struct {
	store  uow.Manager
	quotes quote.Provider
	cfg    ValuatorConfig
	logger *logging.Logger
}

func NewPortfolioValuator(store uow.Manager, quotes quote.Provider, cfg ValuatorConfig, logger *logging.Logger) *PortfolioValuator {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.QuoteTimeout <= 0 {
		cfg.QuoteTimeout = 3 * time.Second
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 8
	}
	return &PortfolioValuator{store: store, quotes: quotes, cfg: cfg, logger: logger}
}

type valuationInput struct {
	tournament   tournament.Tournament
	participants []tournament.Participant
	lots         []portfolio.Purchase
}

// Valuate returns every participant's standing ranked by total value.
func (v *PortfolioValuator) Valuate(ctx context.Context, tournamentID string) ([]settlement.Standing, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PortfolioValuator.Valuate")
	defer span.End()

	tournamentID = strings.TrimSpace(tournamentID)
	if tournamentID == "" {
		return nil, fmt.Errorf("%w: tournament id is required", ErrInvalidInput)
	}

	var in valuationInput
	err := v.store.View(ctx, func(ctx context.Context, repos uow.Repositories) error {
		loaded, err := loadValuationInput(ctx, repos, tournamentID)
		in = loaded
		return err
	})
	if err != nil {
		return nil, classify(err)
	}
	return v.rank(ctx, in), nil
}

func loadValuationInput(ctx context.Context, repos uow.Repositories, tournamentID string) (valuationInput, error) {
	t, err := repos.Tournaments.GetByID(ctx, tournamentID)
	if err != nil {
		return valuationInput{}, fmt.Errorf("get tournament: %w", err)
	}
	participants, err := repos.Participants.ListByTournament(ctx, tournamentID)
	if err != nil {
		return valuationInput{}, fmt.Errorf("list participants: %w", err)
	}
	lots, err := repos.Purchases.ListByTournament(ctx, tournamentID)
	if err != nil {
		return valuationInput{}, fmt.Errorf("list purchases: %w", err)
	}
	return valuationInput{tournament: t, participants: participants, lots: lots}, nil
}

func (v *PortfolioValuator) rank(ctx context.Context, in valuationInput) []settlement.Standing {
	ranked, _ := rankWithMarks(in, v.Price(ctx, in.tournament.ID, in.lots))
	return ranked
}

// rankWithMarks values in against marks already fetched. It reports false
// when a held symbol has no mark.
func rankWithMarks(in valuationInput, prices map[string]SymbolPrice) ([]settlement.Standing, bool) {
	byUser := make(map[string][]portfolio.Purchase, len(in.participants))
	for _, lot := range in.lots {
		byUser[lot.UserID] = append(byUser[lot.UserID], lot)
	}

	standings := make([]settlement.Standing, 0, len(in.participants))
	for _, p := range in.participants {
		holdingsValue := decimal.Zero
		degraded := false
		for _, lot := range byUser[p.UserID] {
			mark, ok := prices[lot.Symbol]
			if !ok {
				return nil, false
			}
			holdingsValue = holdingsValue.Add(lot.Shares.Mul(mark.Price))
			degraded = degraded || mark.Fallback
		}
		standings = append(standings, settlement.Standing{
			UserID:        p.UserID,
			CashBalance:   p.CashBalance,
			HoldingsValue: holdingsValue.Round(2),
			TotalValue:    p.CashBalance.Add(holdingsValue).Round(2),
			JoinedAt:      p.JoinedAt,
			Degraded:      degraded,
		})
	}
	return settlement.Rank(standings), true
}

// Price marks every symbol present in lots. Quotes are fetched concurrently,
// each bounded by the quote timeout; a failed lookup falls back to the most
// recent purchase price of the symbol within lots.
func (v *PortfolioValuator) Price(ctx context.Context, tournamentID string, lots []portfolio.Purchase) map[string]SymbolPrice {
	latest := latestPurchasePrices(lots)
	symbols := make([]string, 0, len(latest))
	for symbol := range latest {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	p := pool.NewWithResults[SymbolPrice]().WithMaxGoroutines(v.cfg.MaxConcurrency)
	for _, symbol := range symbols {
		fallback := latest[symbol]
		p.Go(func() SymbolPrice {
			return v.priceSymbol(ctx, tournamentID, fallback)
		})
	}

	out := make(map[string]SymbolPrice, len(symbols))
	for _, mark := range p.Wait() {
		out[mark.Symbol] = mark
	}
	return out
}

func (v *PortfolioValuator) priceSymbol(ctx context.Context, tournamentID string, last portfolio.Purchase) SymbolPrice {
	fallback := SymbolPrice{Symbol: last.Symbol, Price: last.PurchasePrice, AsOf: last.PurchasedAt, Fallback: true}
	if v.quotes == nil {
		return fallback
	}

	quoteCtx, cancel := context.WithTimeout(ctx, v.cfg.QuoteTimeout)
	defer cancel()

	q, err := v.quotes.GetQuote(quoteCtx, last.Symbol)
	if err == nil && !q.Price.IsPositive() {
		err = fmt.Errorf("%w: non-positive price %s", quote.ErrUnavailable, q.Price)
	}
	if err != nil {
		v.logger.WarnContext(ctx, "quote lookup failed, valuing at last purchase price",
			"tournament_id", tournamentID,
			"symbol", last.Symbol,
			"fallback_price", last.PurchasePrice.String(),
			"error", err,
		)
		return fallback
	}
	return SymbolPrice{Symbol: last.Symbol, Price: q.Price, AsOf: q.AsOf}
}

func latestPurchasePrices(lots []portfolio.Purchase) map[string]portfolio.Purchase {
	out := make(map[string]portfolio.Purchase)
	for _, lot := range lots {
		current, ok := out[lot.Symbol]
		if !ok || lot.PurchasedAt.After(current.PurchasedAt) ||
			(lot.PurchasedAt.Equal(current.PurchasedAt) && lot.ID > current.ID) {
			out[lot.Symbol] = lot
		}
	}
	return out
}

type Leaderboard struct {
	Tournament tournament.Tournament
	// Final is true once the standings come from a completed settlement.
	Final     bool
	Standings []settlement.Standing
}

// Leaderboard returns the persisted final standings of a completed tournament
// and a live valuation otherwise.
func (v *PortfolioValuator) Leaderboard(ctx context.Context, tournamentID string) (Leaderboard, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PortfolioValuator.Leaderboard")
	defer span.End()

	tournamentID = strings.TrimSpace(tournamentID)
	if tournamentID == "" {
		return Leaderboard{}, fmt.Errorf("%w: tournament id is required", ErrInvalidInput)
	}

	var (
		in    valuationInput
		final []settlement.Standing
	)
	err := v.store.View(ctx, func(ctx context.Context, repos uow.Repositories) error {
		loaded, err := loadValuationInput(ctx, repos, tournamentID)
		if err != nil {
			return err
		}
		in = loaded
		if loaded.tournament.Status != tournament.StatusCompleted {
			return nil
		}
		final, err = repos.Settlements.ListStandings(ctx, tournamentID)
		if err != nil {
			return fmt.Errorf("list final standings: %w", err)
		}
		return nil
	})
	if err != nil {
		return Leaderboard{}, classify(err)
	}
	if len(final) > 0 {
		return Leaderboard{Tournament: in.tournament, Final: true, Standings: final}, nil
	}
	return Leaderboard{Tournament: in.tournament, Standings: v.rank(ctx, in)}, nil
}
