package usecase

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"

	"github.com/riskibarqy/trading-tournament/internal/domain/quote"
	"github.com/riskibarqy/trading-tournament/internal/domain/tournament"
	"github.com/riskibarqy/trading-tournament/internal/domain/uow"
	"github.com/riskibarqy/trading-tournament/internal/domain/wallet"
	"github.com/riskibarqy/trading-tournament/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/trading-tournament/internal/platform/clock"
	"github.com/riskibarqy/trading-tournament/internal/platform/id"
	"github.com/riskibarqy/trading-tournament/internal/platform/logging"
)

var testEpoch = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type seqIDs struct {
	prefix string
	n      atomic.Int64
}

func (g *seqIDs) NewID() (string, error) {
	return fmt.Sprintf("%s-%04d", g.prefix, g.n.Add(1)), nil
}

type seqCodes struct {
	n atomic.Int64
}

func (g *seqCodes) NewCode() (string, error) {
	return fmt.Sprintf("CODE%04d", g.n.Add(1)), nil
}

type recordingPublisher struct {
	events chan TournamentEvent
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{events: make(chan TournamentEvent, 64)}
}

func (p *recordingPublisher) Publish(_ context.Context, event TournamentEvent) error {
	p.events <- event
	return nil
}

func (p *recordingPublisher) drain() []TournamentEvent {
	var out []TournamentEvent
	for {
		select {
		case e := <-p.events:
			out = append(out, e)
		default:
			return out
		}
	}
}

type testEngine struct {
	store       *memory.Store
	clock       *clockwork.FakeClock
	events      *recordingPublisher
	ledger      *Ledger
	machine     *StateMachine
	valuator    *PortfolioValuator
	tournaments *TournamentService
	trading     *TradingService
	settlement  *SettlementService
	sweep       *SweepService
	wallets     *WalletService
}

func newTestEngine(t *testing.T, quotes quote.Provider) *testEngine {
	t.Helper()

	store := memory.NewStore()
	clk := clock.NewFake(testEpoch)
	events := newRecordingPublisher()
	logger := logging.NewNop()
	var ids id.Generator = &seqIDs{prefix: "id"}

	ledger := NewLedger(ids, clk)
	machine := NewStateMachine(ledger, clk, tournament.AnchorCreatedAt)
	valuator := NewPortfolioValuator(store, quotes, ValuatorConfig{QuoteTimeout: time.Second}, logger)
	settlementSvc := NewSettlementService(store, machine, NewSettlementEngine(ledger, logger), valuator, events, logger)

	return &testEngine{
		store:       store,
		clock:       clk,
		events:      events,
		ledger:      ledger,
		machine:     machine,
		valuator:    valuator,
		tournaments: NewTournamentService(store, machine, ledger, ids, &seqCodes{}, events, logger),
		trading:     NewTradingService(store, machine, valuator, quotes, ids, time.Second, logger),
		settlement:  settlementSvc,
		sweep:       NewSweepService(store, machine, settlementSvc, events, SweepConfig{Workers: 2}, logger),
		wallets:     NewWalletService(store, ledger, logger),
	}
}

func (e *testEngine) balance(t *testing.T, userID string) decimal.Decimal {
	t.Helper()
	var out wallet.Wallet
	err := e.store.View(context.Background(), func(ctx context.Context, repos uow.Repositories) error {
		w, err := repos.Wallets.Get(ctx, userID)
		out = w
		return err
	})
	if err != nil {
		t.Fatalf("get wallet %s: %v", userID, err)
	}
	return out.Balance
}

func (e *testEngine) mustTournament(t *testing.T, tournamentID string) tournament.Tournament {
	t.Helper()
	got, err := e.tournaments.Get(context.Background(), tournamentID)
	if err != nil {
		t.Fatalf("get tournament %s: %v", tournamentID, err)
	}
	return got
}

func staticQuotes(prices map[string]string) quote.Provider {
	return quote.ProviderFunc(func(_ context.Context, symbol string) (quote.Quote, error) {
		raw, ok := prices[symbol]
		if !ok {
			return quote.Quote{}, quote.ErrUnavailable
		}
		return quote.Quote{Symbol: symbol, Price: decimal.RequireFromString(raw), AsOf: testEpoch}, nil
	})
}

func dec(raw string) decimal.Decimal {
	return decimal.RequireFromString(raw)
}

func assertDecimal(t *testing.T, label string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Fatalf("%s: got %s want %s", label, got, want)
	}
}

func scheduledAt(d time.Duration) *time.Time {
	at := testEpoch.Add(d)
	return &at
}
