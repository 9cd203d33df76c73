package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/riskibarqy/trading-tournament/internal/domain/portfolio"
	"github.com/riskibarqy/trading-tournament/internal/domain/quote"
	"github.com/riskibarqy/trading-tournament/internal/domain/tournament"
	"github.com/riskibarqy/trading-tournament/internal/domain/uow"
	"github.com/riskibarqy/trading-tournament/internal/platform/id"
	"github.com/riskibarqy/trading-tournament/internal/platform/logging"
)

type TradeSide string

const (
	SideBuy  TradeSide = "buy"
	SideSell TradeSide = "sell"
)

// TradeInput describes one order. A zero Price is filled from the quote provider.
type TradeInput struct {
	TournamentID string
	UserID       string
	Symbol       string
	Shares       decimal.Decimal
	Price        decimal.Decimal
}

type TradeResult struct {
	Side         TradeSide
	Symbol       string
	Shares       decimal.Decimal
	Price        decimal.Decimal
	Amount       decimal.Decimal
	CostBasis    decimal.Decimal
	RealizedPnL  decimal.Decimal
	CashBalance  decimal.Decimal
	ExecutedAt   time.Time
	PurchaseID   string
	LotsConsumed int
}

type PositionView struct {
	portfolio.Holding
	MarketPrice   decimal.Decimal
	MarketValue   decimal.Decimal
	UnrealizedPnL decimal.Decimal
	PriceIsQuote  bool
}

type PortfolioView struct {
	TournamentID  string
	UserID        string
	CashBalance   decimal.Decimal
	HoldingsValue decimal.Decimal
	TotalValue    decimal.Decimal
	Positions     []PositionView
}

// TradingService executes virtual buy and sell orders inside active tournaments.
type TradingService struct {
	store    uow.Manager
	machine  *StateMachine
	valuator *PortfolioValuator
	quotes   quote.Provider
	ids      id.Generator
	timeout  time.Duration
	logger   *logging.Logger
}

func NewTradingService(
	store uow.Manager,
	machine *StateMachine,
	valuator *PortfolioValuator,
	quotes quote.Provider,
	ids id.Generator,
	quoteTimeout time.Duration,
	logger *logging.Logger,
) *TradingService {
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	if quoteTimeout <= 0 {
		quoteTimeout = 3 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &TradingService{
		store:    store,
		machine:  machine,
		valuator: valuator,
		quotes:   quotes,
		ids:      ids,
		timeout:  quoteTimeout,
		logger:   logger,
	}
}

func (s *TradingService) Buy(ctx context.Context, input TradeInput) (TradeResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TradingService.Buy")
	defer span.End()

	input, err := s.prepare(ctx, input)
	if err != nil {
		return TradeResult{}, err
	}
	lotID, err := s.ids.NewID()
	if err != nil {
		return TradeResult{}, fmt.Errorf("generate purchase id: %w", err)
	}

	now := s.machine.Now()
	cost := input.Shares.Mul(input.Price)
	result := TradeResult{
		Side:       SideBuy,
		Symbol:     input.Symbol,
		Shares:     input.Shares,
		Price:      input.Price,
		Amount:     cost,
		CostBasis:  cost,
		ExecutedAt: now,
		PurchaseID: lotID,
	}
	err = s.store.Do(ctx, func(ctx context.Context, repos uow.Repositories) error {
		if err := s.requireTradable(ctx, repos, input.TournamentID, now); err != nil {
			return err
		}
		if err := repos.Participants.DebitCash(ctx, input.TournamentID, input.UserID, cost); err != nil {
			return fmt.Errorf("debit cash: %w", err)
		}
		if err := repos.Purchases.Append(ctx, portfolio.Purchase{
			ID:            lotID,
			TournamentID:  input.TournamentID,
			UserID:        input.UserID,
			Symbol:        input.Symbol,
			Shares:        input.Shares,
			PurchasePrice: input.Price,
			TotalCost:     cost,
			PurchasedAt:   now,
		}); err != nil {
			return fmt.Errorf("append purchase: %w", err)
		}
		p, err := repos.Participants.Get(ctx, input.TournamentID, input.UserID)
		if err != nil {
			return fmt.Errorf("reload participant: %w", err)
		}
		result.CashBalance = p.CashBalance
		return nil
	})
	if err != nil {
		return TradeResult{}, classify(err)
	}

	s.logger.DebugContext(ctx, "buy executed",
		"tournament_id", input.TournamentID,
		"user_id", input.UserID,
		"symbol", input.Symbol,
		"shares", input.Shares.String(),
		"price", input.Price.String(),
	)
	return result, nil
}

// Sell consumes the participant's oldest lots first. Selling more than is
// held fails before anything is written.
func (s *TradingService) Sell(ctx context.Context, input TradeInput) (TradeResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TradingService.Sell")
	defer span.End()

	input, err := s.prepare(ctx, input)
	if err != nil {
		return TradeResult{}, err
	}

	now := s.machine.Now()
	proceeds := input.Shares.Mul(input.Price)
	result := TradeResult{
		Side:       SideSell,
		Symbol:     input.Symbol,
		Shares:     input.Shares,
		Price:      input.Price,
		Amount:     proceeds,
		ExecutedAt: now,
	}
	err = s.store.Do(ctx, func(ctx context.Context, repos uow.Repositories) error {
		if err := s.requireTradable(ctx, repos, input.TournamentID, now); err != nil {
			return err
		}
		if _, err := repos.Participants.Get(ctx, input.TournamentID, input.UserID); err != nil {
			return fmt.Errorf("get participant: %w", err)
		}
		lots, err := repos.Purchases.ListOpen(ctx, input.TournamentID, input.UserID, input.Symbol)
		if err != nil {
			return fmt.Errorf("list lots: %w", err)
		}
		plan, err := portfolio.PlanSell(lots, input.Shares)
		if err != nil {
			return err
		}
		if err := repos.Purchases.ApplySell(ctx, plan); err != nil {
			return fmt.Errorf("apply sell: %w", err)
		}
		if err := repos.Participants.CreditCash(ctx, input.TournamentID, input.UserID, proceeds); err != nil {
			return fmt.Errorf("credit cash: %w", err)
		}
		p, err := repos.Participants.Get(ctx, input.TournamentID, input.UserID)
		if err != nil {
			return fmt.Errorf("reload participant: %w", err)
		}
		result.CostBasis = plan.CostBasis
		result.RealizedPnL = proceeds.Sub(plan.CostBasis)
		result.CashBalance = p.CashBalance
		result.LotsConsumed = len(plan.Consumptions)
		return nil
	})
	if err != nil {
		return TradeResult{}, classify(err)
	}

	s.logger.DebugContext(ctx, "sell executed",
		"tournament_id", input.TournamentID,
		"user_id", input.UserID,
		"symbol", input.Symbol,
		"shares", input.Shares.String(),
		"price", input.Price.String(),
		"lots", result.LotsConsumed,
	)
	return result, nil
}

// Portfolio returns a participant's cash and positions marked to market.
func (s *TradingService) Portfolio(ctx context.Context, tournamentID, userID string) (PortfolioView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TradingService.Portfolio")
	defer span.End()

	tournamentID = strings.TrimSpace(tournamentID)
	userID = strings.TrimSpace(userID)
	if tournamentID == "" || userID == "" {
		return PortfolioView{}, fmt.Errorf("%w: tournament id and user id are required", ErrInvalidInput)
	}

	var (
		participant tournament.Participant
		lots        []portfolio.Purchase
	)
	err := s.store.View(ctx, func(ctx context.Context, repos uow.Repositories) error {
		p, err := repos.Participants.Get(ctx, tournamentID, userID)
		if err != nil {
			return err
		}
		participant = p
		lots, err = repos.Purchases.ListByParticipant(ctx, tournamentID, userID)
		return err
	})
	if err != nil {
		return PortfolioView{}, classify(err)
	}

	marks := s.valuator.Price(ctx, tournamentID, lots)
	view := PortfolioView{
		TournamentID:  tournamentID,
		UserID:        userID,
		CashBalance:   participant.CashBalance,
		HoldingsValue: decimal.Zero,
	}
	for _, h := range portfolio.Aggregate(lots) {
		mark := marks[h.Symbol]
		value := h.Shares.Mul(mark.Price).Round(2)
		view.Positions = append(view.Positions, PositionView{
			Holding:       h,
			MarketPrice:   mark.Price,
			MarketValue:   value,
			UnrealizedPnL: value.Sub(h.CostBasis).Round(2),
			PriceIsQuote:  !mark.Fallback,
		})
		view.HoldingsValue = view.HoldingsValue.Add(value)
	}
	view.TotalValue = view.CashBalance.Add(view.HoldingsValue).Round(2)
	return view, nil
}

func (s *TradingService) prepare(ctx context.Context, input TradeInput) (TradeInput, error) {
	input.TournamentID = strings.TrimSpace(input.TournamentID)
	input.UserID = strings.TrimSpace(input.UserID)
	input.Symbol = portfolio.NormalizeSymbol(input.Symbol)
	switch {
	case input.TournamentID == "":
		return input, fmt.Errorf("%w: tournament id is required", ErrInvalidInput)
	case input.UserID == "":
		return input, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	case input.Symbol == "" || len(input.Symbol) > portfolio.MaxSymbolLength:
		return input, fmt.Errorf("%w: symbol must be 1-%d characters", ErrInvalidInput, portfolio.MaxSymbolLength)
	case !input.Shares.IsPositive():
		return input, fmt.Errorf("%w: shares must be positive", ErrInvalidInput)
	case input.Price.IsNegative():
		return input, fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	if input.Price.IsPositive() {
		return input, nil
	}
	if s.quotes == nil {
		return input, fmt.Errorf("%w: no quote provider configured", ErrQuoteUnavailable)
	}

	quoteCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	q, err := s.quotes.GetQuote(quoteCtx, input.Symbol)
	if err != nil {
		return input, fmt.Errorf("%w: %s: %v", ErrQuoteUnavailable, input.Symbol, err)
	}
	if !q.Price.IsPositive() {
		return input, fmt.Errorf("%w: %s returned price %s", ErrQuoteUnavailable, input.Symbol, q.Price)
	}
	input.Price = q.Price
	return input, nil
}

// requireTradable share-locks the tournament row so a trade cannot commit
// while settlement holds it, and rejects trades once the timeframe is over
// even if the sweep has not completed the tournament yet.
func (s *TradingService) requireTradable(ctx context.Context, repos uow.Repositories, tournamentID string, now time.Time) error {
	t, err := repos.Tournaments.GetByIDForShare(ctx, tournamentID)
	if err != nil {
		return fmt.Errorf("get tournament: %w", err)
	}
	if t.Status != tournament.StatusActive {
		return fmt.Errorf("%w: tournament %s is %s", ErrWrongState, t.ID, t.Status)
	}
	if s.machine.Expired(t, now) {
		return fmt.Errorf("%w: tournament %s has expired", ErrWrongState, t.ID)
	}
	return nil
}
