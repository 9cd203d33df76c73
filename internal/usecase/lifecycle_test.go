package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/riskibarqy/trading-tournament/internal/domain/achievement"
	"github.com/riskibarqy/trading-tournament/internal/domain/portfolio"
	"github.com/riskibarqy/trading-tournament/internal/domain/quote"
	"github.com/riskibarqy/trading-tournament/internal/domain/settlement"
	"github.com/riskibarqy/trading-tournament/internal/domain/tournament"
	"github.com/riskibarqy/trading-tournament/internal/domain/uow"
	"github.com/riskibarqy/trading-tournament/internal/domain/user"
	quotemock "github.com/riskibarqy/trading-tournament/internal/mocks/domain/quote"
	"github.com/riskibarqy/trading-tournament/internal/platform/logging"
)

// A lone creator's scheduled tournament is cancelled at start time and the
// buy-in goes back.
func TestSweep_CancelsUnderfilledTournamentAndRefundsCreator(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil)
	e.store.SeedWallet("creator", dec("300"))

	created, err := e.tournaments.Create(t.Context(), "creator", CreateTournamentInput{
		Name:             "Lonely",
		MaxPlayers:       5,
		StartingBalance:  dec("10000"),
		BuyInAmount:      dec("100"),
		ScheduledStartAt: scheduledAt(time.Hour),
	})
	if err != nil {
		t.Fatalf("create tournament: %v", err)
	}
	assertDecimal(t, "wallet after create", e.balance(t, "creator"), "200")

	res, err := e.sweep.RunPass(t.Context())
	if err != nil {
		t.Fatalf("early pass: %v", err)
	}
	if res.Cancelled != 0 || res.Started != 0 {
		t.Fatalf("nothing is due before the scheduled start: %+v", res)
	}

	e.clock.Advance(time.Hour)
	res, err = e.sweep.RunPass(t.Context())
	if err != nil {
		t.Fatalf("run pass: %v", err)
	}
	if res.Cancelled != 1 {
		t.Fatalf("expected one cancellation, got %+v", res)
	}

	got := e.mustTournament(t, created.ID)
	if got.Status != tournament.StatusCancelled || got.CancellationReason != tournament.ReasonInsufficientPlayers {
		t.Fatalf("unexpected status=%s reason=%q", got.Status, got.CancellationReason)
	}
	assertDecimal(t, "pot", got.CurrentPot, "0")
	assertDecimal(t, "wallet after refund", e.balance(t, "creator"), "300")

	res, err = e.sweep.RunPass(t.Context())
	if err != nil {
		t.Fatalf("repeat pass: %v", err)
	}
	if res.Cancelled != 0 {
		t.Fatalf("cancelled tournaments must stay terminal: %+v", res)
	}
	assertDecimal(t, "wallet after repeat pass", e.balance(t, "creator"), "300")
}

// Two players at 500 each; the joiner finishes ahead and takes 95%, the
// creator receives 5%.
func TestSweep_SettlesExpiredTournamentAndSplitsPot(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, staticQuotes(map[string]string{"AAPL": "150"}))
	e.store.SeedWallet("bob", dec("500"))
	e.store.SeedWallet("alice", dec("500"))

	created, err := e.tournaments.Create(t.Context(), "bob", CreateTournamentInput{
		Name:             "Weekly",
		MaxPlayers:       2,
		StartingBalance:  dec("10000"),
		Timeframe:        "1 week",
		BuyInAmount:      dec("500"),
		ScheduledStartAt: scheduledAt(time.Hour),
	})
	if err != nil {
		t.Fatalf("create tournament: %v", err)
	}
	e.clock.Advance(time.Minute)
	if _, err := e.tournaments.Join(t.Context(), created.ID, "alice"); err != nil {
		t.Fatalf("join: %v", err)
	}
	assertDecimal(t, "pot", e.mustTournament(t, created.ID).CurrentPot, "1000")

	e.clock.Advance(time.Hour)
	res, err := e.sweep.RunPass(t.Context())
	if err != nil || res.Started != 1 {
		t.Fatalf("start pass: res=%+v err=%v", res, err)
	}

	if _, err := e.trading.Buy(t.Context(), TradeInput{
		TournamentID: created.ID,
		UserID:       "alice",
		Symbol:       "aapl",
		Shares:       dec("10"),
		Price:        dec("100"),
	}); err != nil {
		t.Fatalf("buy: %v", err)
	}

	board, err := e.valuator.Leaderboard(t.Context(), created.ID)
	if err != nil {
		t.Fatalf("live leaderboard: %v", err)
	}
	if board.Final || board.Standings[0].UserID != "alice" {
		t.Fatalf("unexpected live leaderboard: %+v", board)
	}

	e.clock.Advance(7 * 24 * time.Hour)
	res, err = e.sweep.RunPass(t.Context())
	if err != nil || res.Settled != 1 {
		t.Fatalf("settle pass: res=%+v err=%v", res, err)
	}

	got := e.mustTournament(t, created.ID)
	if got.Status != tournament.StatusCompleted || got.EndedAt == nil {
		t.Fatalf("unexpected status=%s ended_at=%v", got.Status, got.EndedAt)
	}
	assertDecimal(t, "alice wallet", e.balance(t, "alice"), "950")
	assertDecimal(t, "bob wallet", e.balance(t, "bob"), "50")

	board, err = e.valuator.Leaderboard(t.Context(), created.ID)
	if err != nil {
		t.Fatalf("final leaderboard: %v", err)
	}
	if !board.Final || len(board.Standings) != 2 {
		t.Fatalf("expected persisted standings, got %+v", board)
	}
	assertDecimal(t, "alice total", board.Standings[0].TotalValue, "10500")
	assertDecimal(t, "bob total", board.Standings[1].TotalValue, "10000")

	// A repeated settlement attempt changes nothing.
	if _, err := e.settlement.Settle(t.Context(), created.ID); !errors.Is(err, ErrWrongState) {
		t.Fatalf("re-settle: expected ErrWrongState, got %v", err)
	}
	assertDecimal(t, "alice wallet after re-settle", e.balance(t, "alice"), "950")

	alice := achievementTypes(t, e, "alice")
	if !alice[achievement.TypeTournamentWinner] || len(alice) != 1 {
		t.Fatalf("unexpected alice achievements: %v", alice)
	}
	bob := achievementTypes(t, e, "bob")
	if !bob[achievement.TypeTournamentSecond] || len(bob) != 1 {
		t.Fatalf("unexpected bob achievements: %v", bob)
	}

	if _, err := e.trading.Buy(t.Context(), TradeInput{
		TournamentID: created.ID, UserID: "alice", Symbol: "AAPL", Shares: dec("1"), Price: dec("1"),
	}); !errors.Is(err, ErrWrongState) {
		t.Fatalf("trade after completion: expected ErrWrongState, got %v", err)
	}
}

// A failing quote for a held symbol does not block settlement; the symbol is
// valued at its most recent purchase price.
func TestSweep_SettlesWithLastPurchasePriceWhenQuoteFails(t *testing.T) {
	t.Parallel()

	quotes := quotemock.NewProvider(t)
	quotes.
		On("GetQuote", mock.Anything, "TSLA").
		Return(quote.Quote{}, quote.ErrUnavailable)

	e := newTestEngine(t, quotes)
	created, err := e.tournaments.Create(t.Context(), "creator", CreateTournamentInput{
		Name:            "Degraded",
		MaxPlayers:      3,
		StartingBalance: dec("10000"),
		Timeframe:       "3 days",
	})
	if err != nil {
		t.Fatalf("create tournament: %v", err)
	}
	if _, err := e.tournaments.Join(t.Context(), created.ID, "alice"); err != nil {
		t.Fatalf("join: %v", err)
	}
	for _, price := range []string{"100", "120"} {
		e.clock.Advance(time.Minute)
		if _, err := e.trading.Buy(t.Context(), TradeInput{
			TournamentID: created.ID, UserID: "alice", Symbol: "TSLA", Shares: dec("5"), Price: dec(price),
		}); err != nil {
			t.Fatalf("buy at %s: %v", price, err)
		}
	}

	e.clock.Advance(4 * 24 * time.Hour)
	res, err := e.sweep.RunPass(t.Context())
	if err != nil || res.Settled != 1 {
		t.Fatalf("settle pass: res=%+v err=%v", res, err)
	}

	board, err := e.valuator.Leaderboard(t.Context(), created.ID)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	top := board.Standings[0]
	if top.UserID != "alice" || !top.Degraded {
		t.Fatalf("unexpected top standing: %+v", top)
	}
	// cash 10000 - 500 - 600, ten shares at the last price of 120
	assertDecimal(t, "alice total", top.TotalValue, "10100")
	if got := e.mustTournament(t, created.ID); got.Status != tournament.StatusCompleted {
		t.Fatalf("tournament should complete, got %s", got.Status)
	}
}

func TestSweep_ExpiryAnchor(t *testing.T) {
	t.Parallel()

	for _, anchor := range []tournament.ExpiryAnchor{tournament.AnchorCreatedAt, tournament.AnchorStartedAt} {
		e := newTestEngine(t, nil)
		e.machine = NewStateMachine(e.ledger, e.clock, anchor)
		e.sweep = NewSweepService(e.store, e.machine, e.settlement, e.events, SweepConfig{}, logging.NewNop())

		created, err := e.tournaments.Create(t.Context(), "creator", CreateTournamentInput{
			Name:             "Anchored",
			MaxPlayers:       2,
			StartingBalance:  dec("1000"),
			Timeframe:        "2 days",
			ScheduledStartAt: scheduledAt(24 * time.Hour),
		})
		if err != nil {
			t.Fatalf("create tournament: %v", err)
		}
		if _, err := e.tournaments.Join(t.Context(), created.ID, "alice"); err != nil {
			t.Fatalf("join: %v", err)
		}
		e.clock.Advance(24 * time.Hour)
		if res, err := e.sweep.RunPass(t.Context()); err != nil || res.Started != 1 {
			t.Fatalf("%s: start pass res=%+v err=%v", anchor, res, err)
		}

		// 2 days and 1 minute after creation, 1 day and 1 minute after start.
		e.clock.Advance(24*time.Hour + time.Minute)
		res, err := e.sweep.RunPass(t.Context())
		if err != nil {
			t.Fatalf("%s: pass: %v", anchor, err)
		}
		wantSettled := 0
		if anchor == tournament.AnchorCreatedAt {
			wantSettled = 1
		}
		if res.Settled != wantSettled {
			t.Fatalf("%s: settled=%d want %d", anchor, res.Settled, wantSettled)
		}
	}
}

func TestSweep_OverlappingPassIsSkipped(t *testing.T) {
	t.Parallel()

	entered := make(chan struct{})
	release := make(chan struct{})
	blocking := quote.ProviderFunc(func(ctx context.Context, symbol string) (quote.Quote, error) {
		close(entered)
		<-release
		return quote.Quote{Symbol: symbol, Price: dec("10"), AsOf: testEpoch}, nil
	})

	e := newTestEngine(t, blocking)
	created, err := e.tournaments.Create(t.Context(), "creator", CreateTournamentInput{
		Name: "Slow", MaxPlayers: 2, StartingBalance: dec("1000"), Timeframe: "1 day",
	})
	if err != nil {
		t.Fatalf("create tournament: %v", err)
	}
	if _, err := e.trading.Buy(t.Context(), TradeInput{
		TournamentID: created.ID, UserID: "creator", Symbol: "SLOW", Shares: dec("1"), Price: dec("10"),
	}); err != nil {
		t.Fatalf("buy: %v", err)
	}
	e.clock.Advance(48 * time.Hour)

	done := make(chan SweepResult, 1)
	go func() {
		res, _ := e.sweep.RunPass(context.Background())
		done <- res
	}()
	<-entered

	skipped, err := e.sweep.ManualExpirationSweep(t.Context(), user.Principal{UserID: "ops", Role: user.RoleAdmin})
	if err != nil {
		t.Fatalf("manual sweep: %v", err)
	}
	if !skipped.Skipped {
		t.Fatalf("overlapping pass must be skipped, got %+v", skipped)
	}

	close(release)
	first := <-done
	if first.Settled != 1 {
		t.Fatalf("first pass should settle, got %+v", first)
	}
}

func TestSweep_ManualSweepRequiresAdmin(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil)
	if _, err := e.sweep.ManualExpirationSweep(t.Context(), user.Principal{UserID: "u1", Role: user.RoleMember}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("member: expected ErrForbidden, got %v", err)
	}
	if _, err := e.sweep.ManualExpirationSweep(t.Context(), user.Principal{}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("anonymous: expected ErrUnauthorized, got %v", err)
	}
	res, err := e.sweep.ManualExpirationSweep(t.Context(), user.Principal{UserID: "ops", Role: user.RoleAdmin})
	if err != nil || res.Skipped {
		t.Fatalf("admin sweep: res=%+v err=%v", res, err)
	}
}

// Re-running settlement logic for many tournaments never duplicates an
// achievement or its points, and the tenth win unlocks the legend badge once.
func TestSettlementEngine_AchievementsAreIdempotent(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil)
	engine := NewSettlementEngine(e.ledger, logging.NewNop())

	for i := 1; i <= 11; i++ {
		tr := tournament.Tournament{
			ID:              fmt.Sprintf("t-%02d", i),
			CreatorID:       "host",
			StartingBalance: dec("1000"),
			CurrentPot:      dec("10"),
		}
		ranked := []settlement.Standing{
			{Rank: 1, UserID: "champ", TotalValue: dec("1300")},
			{Rank: 2, UserID: "runner", TotalValue: dec("900")},
		}
		err := e.store.Do(t.Context(), func(ctx context.Context, repos uow.Repositories) error {
			_, err := engine.Settle(ctx, repos, tr, ranked, testEpoch)
			return err
		})
		if err != nil {
			t.Fatalf("settle %s: %v", tr.ID, err)
		}
	}

	err := e.store.Do(t.Context(), func(ctx context.Context, repos uow.Repositories) error {
		_, err := engine.Settle(ctx, repos, tournament.Tournament{ID: "t-01", CurrentPot: dec("10")}, nil, testEpoch)
		return err
	})
	if !errors.Is(err, settlement.ErrAlreadySettled) {
		t.Fatalf("expected ErrAlreadySettled, got %v", err)
	}

	var stats achievement.Stats
	_ = e.store.View(t.Context(), func(ctx context.Context, repos uow.Repositories) error {
		var err error
		stats, err = repos.Achievements.GetStats(ctx, "champ")
		return err
	})
	if stats.Wins != 11 || stats.TournamentsPlayed != 11 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	wantPoints := achievement.TierLegendary.Points() + achievement.TierCommon.Points() + achievement.TierUncommon.Points() + achievement.TierMythic.Points()
	if stats.Points != wantPoints {
		t.Fatalf("points=%d want %d", stats.Points, wantPoints)
	}

	champ := achievementTypes(t, e, "champ")
	for _, typ := range []achievement.Type{achievement.TypeTournamentWinner, achievement.TypeTournamentLegend, achievement.TypeSteadyGains, achievement.TypeBigGains} {
		if !champ[typ] {
			t.Fatalf("champ missing %s: %v", typ, champ)
		}
	}
	if len(champ) != 4 {
		t.Fatalf("unexpected champ achievements: %v", champ)
	}
	// 11 prizes of 9.50 and 11 creator shares of 0.50
	assertDecimal(t, "champ wallet", e.balance(t, "champ"), "104.5")
	assertDecimal(t, "host wallet", e.balance(t, "host"), "5.5")
}

// A free tournament moves no money but still records results and awards.
func TestSettlementEngine_EmptyPotStillAwards(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil)
	engine := NewSettlementEngine(e.ledger, logging.NewNop())

	var result SettlementResult
	err := e.store.Do(t.Context(), func(ctx context.Context, repos uow.Repositories) error {
		var err error
		result, err = engine.Settle(ctx, repos,
			tournament.Tournament{ID: "free", CreatorID: "host", StartingBalance: dec("1000"), CurrentPot: dec("0")},
			[]settlement.Standing{
				{Rank: 1, UserID: "champ", TotalValue: dec("1100")},
				{Rank: 2, UserID: "runner", TotalValue: dec("900")},
			}, testEpoch)
		return err
	})
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if result.Record.Distributed || result.Record.WinnerID != "" {
		t.Fatalf("empty pot must not distribute: %+v", result.Record)
	}
	assertDecimal(t, "champ wallet", e.balance(t, "champ"), "0")
	assertDecimal(t, "host wallet", e.balance(t, "host"), "0")

	champ := achievementTypes(t, e, "champ")
	if !champ[achievement.TypeTournamentWinner] || !champ[achievement.TypeSteadyGains] || len(champ) != 2 {
		t.Fatalf("unexpected champ achievements: %v", champ)
	}
	if runner := achievementTypes(t, e, "runner"); !runner[achievement.TypeTournamentSecond] || len(runner) != 1 {
		t.Fatalf("unexpected runner achievements: %v", runner)
	}
	if len(result.Awarded) != 3 {
		t.Fatalf("expected 3 awards, got %+v", result.Awarded)
	}

	var stats achievement.Stats
	err = e.store.View(t.Context(), func(ctx context.Context, repos uow.Repositories) error {
		var err error
		stats, err = repos.Achievements.GetStats(ctx, "champ")
		return err
	})
	if err != nil {
		t.Fatalf("get stats: %v", err)
	}
	if stats.Wins != 1 || stats.TournamentsPlayed != 1 {
		t.Fatalf("unexpected champ stats: %+v", stats)
	}
}

// A portfolio change committed after the snapshot but before the settlement
// transaction is seen by settlement: standings are recomputed from the rows
// read under the tournament lock, priced with the quotes already fetched.
func TestSettlementService_RanksPortfoliosChangedDuringQuoteFetch(t *testing.T) {
	t.Parallel()

	var (
		e        *testEngine
		tid      string
		hookOnce sync.Once
		hookErr  error
	)
	quotes := quote.ProviderFunc(func(ctx context.Context, symbol string) (quote.Quote, error) {
		hookOnce.Do(func() {
			hookErr = e.store.Do(ctx, func(ctx context.Context, repos uow.Repositories) error {
				lots, err := repos.Purchases.ListOpen(ctx, tid, "alice", "XYZ")
				if err != nil {
					return err
				}
				plan, err := portfolio.PlanSell(lots, dec("10"))
				if err != nil {
					return err
				}
				if err := repos.Purchases.ApplySell(ctx, plan); err != nil {
					return err
				}
				return repos.Participants.CreditCash(ctx, tid, "alice", dec("5000"))
			})
		})
		return quote.Quote{Symbol: symbol, Price: dec("1"), AsOf: testEpoch}, nil
	})
	e = newTestEngine(t, quotes)
	e.store.SeedWallet("alice", dec("100"))
	e.store.SeedWallet("bob", dec("100"))

	created, err := e.tournaments.Create(t.Context(), "alice", CreateTournamentInput{
		Name:            "Photo finish",
		MaxPlayers:      2,
		StartingBalance: dec("1000"),
		Timeframe:       "1 day",
		BuyInAmount:     dec("100"),
	})
	if err != nil {
		t.Fatalf("create tournament: %v", err)
	}
	tid = created.ID
	if _, err := e.tournaments.Join(t.Context(), tid, "bob"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := e.trading.Buy(t.Context(), TradeInput{
		TournamentID: tid, UserID: "alice", Symbol: "XYZ", Shares: dec("10"), Price: dec("10"),
	}); err != nil {
		t.Fatalf("buy: %v", err)
	}

	e.clock.Advance(2 * 24 * time.Hour)
	result, err := e.settlement.Settle(t.Context(), tid)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if hookErr != nil {
		t.Fatalf("concurrent sell: %v", hookErr)
	}

	if result.Record.WinnerID != "alice" {
		t.Fatalf("winner=%s want alice: %+v", result.Record.WinnerID, result.Standings)
	}
	assertDecimal(t, "alice total", result.Standings[0].TotalValue, "5900")
	assertDecimal(t, "bob total", result.Standings[1].TotalValue, "1000")
	// 95% of 200 as winner plus 5% as creator
	assertDecimal(t, "alice wallet", e.balance(t, "alice"), "200")
	assertDecimal(t, "bob wallet", e.balance(t, "bob"), "0")

	board, err := e.valuator.Leaderboard(t.Context(), tid)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if !board.Final || board.Standings[0].UserID != "alice" {
		t.Fatalf("persisted standings must match the payout: %+v", board.Standings)
	}
}

// Trades submitted while settlement fetches quotes are refused once the
// timeframe is over, so the snapshot stays authoritative.
func TestSettlementService_TradeDuringQuoteFetchIsRejected(t *testing.T) {
	t.Parallel()

	var (
		e        *testEngine
		tid      string
		hookOnce sync.Once
		sellErr  error
	)
	quotes := quote.ProviderFunc(func(ctx context.Context, symbol string) (quote.Quote, error) {
		hookOnce.Do(func() {
			_, sellErr = e.trading.Sell(ctx, TradeInput{
				TournamentID: tid, UserID: "alice", Symbol: "XYZ", Shares: dec("10"), Price: dec("500"),
			})
		})
		return quote.Quote{Symbol: symbol, Price: dec("1"), AsOf: testEpoch}, nil
	})
	e = newTestEngine(t, quotes)

	created, err := e.tournaments.Create(t.Context(), "alice", CreateTournamentInput{
		Name:            "Closing bell",
		MaxPlayers:      2,
		StartingBalance: dec("1000"),
		Timeframe:       "1 day",
	})
	if err != nil {
		t.Fatalf("create tournament: %v", err)
	}
	tid = created.ID
	if _, err := e.tournaments.Join(t.Context(), tid, "bob"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := e.trading.Buy(t.Context(), TradeInput{
		TournamentID: tid, UserID: "alice", Symbol: "XYZ", Shares: dec("10"), Price: dec("10"),
	}); err != nil {
		t.Fatalf("buy: %v", err)
	}

	e.clock.Advance(2 * 24 * time.Hour)
	result, err := e.settlement.Settle(t.Context(), tid)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if !errors.Is(sellErr, ErrWrongState) {
		t.Fatalf("sell after expiry: expected ErrWrongState, got %v", sellErr)
	}
	if result.Standings[0].UserID != "bob" {
		t.Fatalf("unexpected standings: %+v", result.Standings)
	}
	assertDecimal(t, "alice total", result.Standings[1].TotalValue, "910")
}

func TestSettlementService_RefusesUnexpiredTournament(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil)
	e.store.SeedWallet("creator", dec("50"))
	created, err := e.tournaments.Create(t.Context(), "creator", CreateTournamentInput{
		Name:            "Still running",
		MaxPlayers:      2,
		StartingBalance: dec("1000"),
		Timeframe:       "1 week",
		BuyInAmount:     dec("50"),
	})
	if err != nil {
		t.Fatalf("create tournament: %v", err)
	}

	e.clock.Advance(24 * time.Hour)
	if _, err := e.settlement.Settle(t.Context(), created.ID); !errors.Is(err, ErrWrongState) {
		t.Fatalf("early settle: expected ErrWrongState, got %v", err)
	}
	got := e.mustTournament(t, created.ID)
	if got.Status != tournament.StatusActive {
		t.Fatalf("tournament must stay active, got %s", got.Status)
	}
	assertDecimal(t, "pot", got.CurrentPot, "50")
	assertDecimal(t, "creator wallet", e.balance(t, "creator"), "0")
}

func achievementTypes(t *testing.T, e *testEngine, userID string) map[achievement.Type]bool {
	t.Helper()
	profile, err := NewAchievementService(e.store).Profile(t.Context(), userID)
	if err != nil {
		t.Fatalf("achievement profile %s: %v", userID, err)
	}
	out := make(map[achievement.Type]bool, len(profile.Achievements))
	for _, a := range profile.Achievements {
		out[a.Type] = true
	}
	return out
}
