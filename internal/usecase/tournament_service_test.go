package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/riskibarqy/trading-tournament/internal/domain/tournament"
	"github.com/riskibarqy/trading-tournament/internal/domain/wallet"
)

func TestTournamentService_CreateWithoutScheduleStartsImmediately(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil)
	got, err := e.tournaments.Create(t.Context(), "creator", CreateTournamentInput{
		Name:            "Open Week",
		MaxPlayers:      10,
		StartingBalance: dec("10000"),
		Timeframe:       "1 week",
	})
	if err != nil {
		t.Fatalf("create tournament: %v", err)
	}
	if got.Status != tournament.StatusActive || got.StartedAt == nil || !got.StartedAt.Equal(testEpoch) {
		t.Fatalf("unexpected status=%s started_at=%v", got.Status, got.StartedAt)
	}
	if got.CurrentPlayers != 1 || len(got.Code) != tournament.CodeLength {
		t.Fatalf("unexpected players=%d code=%q", got.CurrentPlayers, got.Code)
	}

	participants, err := e.tournaments.ListParticipants(t.Context(), got.ID)
	if err != nil {
		t.Fatalf("list participants: %v", err)
	}
	if len(participants) != 1 || participants[0].UserID != "creator" {
		t.Fatalf("creator should be the only participant, got %+v", participants)
	}
	assertDecimal(t, "creator cash", participants[0].CashBalance, "10000")
}

func TestTournamentService_CreateValidation(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil)
	valid := CreateTournamentInput{Name: "x", MaxPlayers: 4, StartingBalance: dec("1000"), Timeframe: "2 weeks"}

	cases := map[string]func(in *CreateTournamentInput){
		"empty name":       func(in *CreateTournamentInput) { in.Name = "  " },
		"one player":       func(in *CreateTournamentInput) { in.MaxPlayers = 1 },
		"too many players": func(in *CreateTournamentInput) { in.MaxPlayers = 101 },
		"zero balance":     func(in *CreateTournamentInput) { in.StartingBalance = dec("0") },
		"bad timeframe":    func(in *CreateTournamentInput) { in.Timeframe = "forever" },
		"negative buy-in":  func(in *CreateTournamentInput) { in.BuyInAmount = dec("-1") },
		"start in past":    func(in *CreateTournamentInput) { in.ScheduledStartAt = scheduledAt(-time.Minute) },
	}
	for name, mutate := range cases {
		in := valid
		mutate(&in)
		if _, err := e.tournaments.Create(t.Context(), "creator", in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", name, err)
		}
	}
}

func TestTournamentService_CreateWithBuyInRequiresFunds(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil)
	e.store.SeedWallet("creator", dec("50"))

	_, err := e.tournaments.Create(t.Context(), "creator", CreateTournamentInput{
		Name:            "Too rich",
		MaxPlayers:      4,
		StartingBalance: dec("1000"),
		BuyInAmount:     dec("100"),
	})
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	assertDecimal(t, "creator wallet", e.balance(t, "creator"), "50")

	list, err := e.tournaments.List(t.Context(), tournament.ListFilter{})
	if err != nil {
		t.Fatalf("list tournaments: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("failed creation must not leave a tournament, got %d", len(list))
	}
}

func TestTournamentService_JoinByCodeAndDuplicateJoin(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil)
	e.store.SeedWallet("creator", dec("100"))
	e.store.SeedWallet("alice", dec("100"))

	created, err := e.tournaments.Create(t.Context(), "creator", CreateTournamentInput{
		Name:             "Buy-in cup",
		MaxPlayers:       4,
		StartingBalance:  dec("1000"),
		BuyInAmount:      dec("25"),
		ScheduledStartAt: scheduledAt(time.Hour),
	})
	if err != nil {
		t.Fatalf("create tournament: %v", err)
	}

	if _, err := e.tournaments.JoinByCode(t.Context(), " "+created.Code+" ", "alice"); err != nil {
		t.Fatalf("join by code: %v", err)
	}
	_, err = e.tournaments.Join(t.Context(), created.ID, "alice")
	if !errors.Is(err, ErrAlreadyParticipating) {
		t.Fatalf("expected ErrAlreadyParticipating, got %v", err)
	}

	got := e.mustTournament(t, created.ID)
	if got.CurrentPlayers != 2 {
		t.Fatalf("unexpected players: %d", got.CurrentPlayers)
	}
	assertDecimal(t, "pot", got.CurrentPot, "50")
	assertDecimal(t, "alice wallet", e.balance(t, "alice"), "75")

	if _, err := e.tournaments.Join(t.Context(), "missing", "bob"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// Two joins racing for the last seat: exactly one wins.
func TestTournamentService_ConcurrentJoinForLastSeat(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil)
	created, err := e.tournaments.Create(t.Context(), "creator", CreateTournamentInput{
		Name:            "Tiny",
		MaxPlayers:      3,
		StartingBalance: dec("1000"),
	})
	if err != nil {
		t.Fatalf("create tournament: %v", err)
	}
	if _, err := e.tournaments.Join(t.Context(), created.ID, "first"); err != nil {
		t.Fatalf("first join: %v", err)
	}

	var (
		wg      sync.WaitGroup
		results = make(chan error, 2)
	)
	for _, userID := range []string{"racer-a", "racer-b"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.tournaments.Join(context.Background(), created.ID, userID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var ok, full int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrTournamentFull):
			full++
		default:
			t.Fatalf("unexpected join error: %v", err)
		}
	}
	if ok != 1 || full != 1 {
		t.Fatalf("expected one success and one TournamentFull, got ok=%d full=%d", ok, full)
	}
	if got := e.mustTournament(t, created.ID); got.CurrentPlayers != 3 {
		t.Fatalf("unexpected players: %d", got.CurrentPlayers)
	}
}

func TestTournamentService_StartEarly(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil)
	created, err := e.tournaments.Create(t.Context(), "creator", CreateTournamentInput{
		Name:             "Scheduled",
		MaxPlayers:       4,
		StartingBalance:  dec("1000"),
		ScheduledStartAt: scheduledAt(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create tournament: %v", err)
	}

	if _, err := e.tournaments.StartEarly(t.Context(), created.ID, "creator"); !errors.Is(err, ErrWrongState) {
		t.Fatalf("single player start: expected ErrWrongState, got %v", err)
	}
	if _, err := e.tournaments.Join(t.Context(), created.ID, "alice"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := e.tournaments.StartEarly(t.Context(), created.ID, "alice"); !errors.Is(err, ErrNotCreator) {
		t.Fatalf("non-creator start: expected ErrNotCreator, got %v", err)
	}

	e.clock.Advance(time.Minute)
	started, err := e.tournaments.StartEarly(t.Context(), created.ID, "creator")
	if err != nil {
		t.Fatalf("start early: %v", err)
	}
	if started.Status != tournament.StatusActive || !started.StartedAt.Equal(testEpoch.Add(time.Minute)) {
		t.Fatalf("unexpected status=%s started_at=%v", started.Status, started.StartedAt)
	}
	if _, err := e.tournaments.StartEarly(t.Context(), created.ID, "creator"); !errors.Is(err, ErrWrongState) {
		t.Fatalf("second start: expected ErrWrongState, got %v", err)
	}
	if _, err := e.tournaments.Cancel(t.Context(), created.ID, "creator"); !errors.Is(err, ErrWrongState) {
		t.Fatalf("cancel active: expected ErrWrongState, got %v", err)
	}
}

// The pot always equals the buy-ins of current participants, and money is
// neither created nor destroyed by joins, kicks and cancellation.
func TestTournamentService_PotConservation(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil)
	users := []string{"creator", "alice", "bob", "carol"}
	for _, u := range users {
		e.store.SeedWallet(u, dec("200"))
	}

	created, err := e.tournaments.Create(t.Context(), "creator", CreateTournamentInput{
		Name:             "Conservation",
		MaxPlayers:       6,
		StartingBalance:  dec("1000"),
		BuyInAmount:      dec("40"),
		ScheduledStartAt: scheduledAt(time.Hour),
	})
	if err != nil {
		t.Fatalf("create tournament: %v", err)
	}

	checkConserved := func(stage string, wantPlayers int) {
		t.Helper()
		got := e.mustTournament(t, created.ID)
		if got.CurrentPlayers != wantPlayers && !got.Status.Terminal() {
			t.Fatalf("%s: players=%d want %d", stage, got.CurrentPlayers, wantPlayers)
		}
		sum := got.CurrentPot
		for _, u := range users {
			sum = sum.Add(e.balance(t, u))
		}
		assertDecimal(t, stage+": total money", sum, "800")
		if !got.Status.Terminal() {
			assertDecimal(t, stage+": pot", got.CurrentPot, dec("40").Mul(decimal.NewFromInt(int64(wantPlayers))).String())
		}
	}

	checkConserved("after create", 1)
	for _, u := range []string{"alice", "bob", "carol"} {
		if _, err := e.tournaments.Join(t.Context(), created.ID, u); err != nil {
			t.Fatalf("join %s: %v", u, err)
		}
	}
	checkConserved("after joins", 4)

	if err := e.tournaments.Kick(t.Context(), created.ID, "bob", "alice"); !errors.Is(err, ErrNotCreator) {
		t.Fatalf("kick by non-creator: expected ErrNotCreator, got %v", err)
	}
	if err := e.tournaments.Kick(t.Context(), created.ID, "creator", "creator"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("kick creator: expected ErrInvalidInput, got %v", err)
	}
	if err := e.tournaments.Kick(t.Context(), created.ID, "bob", "creator"); err != nil {
		t.Fatalf("kick bob: %v", err)
	}
	checkConserved("after kick", 3)
	assertDecimal(t, "bob refunded", e.balance(t, "bob"), "200")

	cancelled, err := e.tournaments.Cancel(t.Context(), created.ID, "creator")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != tournament.StatusCancelled || cancelled.CancellationReason != tournament.ReasonCancelledByCreator {
		t.Fatalf("unexpected status=%s reason=%q", cancelled.Status, cancelled.CancellationReason)
	}
	assertDecimal(t, "pot after cancel", cancelled.CurrentPot, "0")
	checkConserved("after cancel", 3)
	for _, u := range users {
		assertDecimal(t, u+" wallet after cancel", e.balance(t, u), "200")
	}

	view, err := e.wallets.Get(t.Context(), "alice", 10)
	if err != nil {
		t.Fatalf("get wallet view: %v", err)
	}
	if len(view.Entries) != 2 || view.Entries[0].Reason != wallet.ReasonBuyInRefund || view.Entries[1].Reason != wallet.ReasonBuyIn {
		t.Fatalf("unexpected journal: %+v", view.Entries)
	}

	if _, err := e.tournaments.Join(t.Context(), created.ID, "bob"); !errors.Is(err, ErrWrongState) {
		t.Fatalf("join cancelled: expected ErrWrongState, got %v", err)
	}
}

func TestTournamentService_JoinAfterExpiryIsRejected(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil)
	e.store.SeedWallet("late", dec("25"))
	created, err := e.tournaments.Create(t.Context(), "creator", CreateTournamentInput{
		Name:            "Sprint",
		MaxPlayers:      4,
		StartingBalance: dec("1000"),
		Timeframe:       "30 minutes",
		BuyInAmount:     dec("0"),
	})
	if err != nil {
		t.Fatalf("create tournament: %v", err)
	}

	e.clock.Advance(31 * time.Minute)
	if _, err := e.tournaments.JoinByCode(t.Context(), created.Code, "late"); !errors.Is(err, ErrWrongState) {
		t.Fatalf("join after expiry: expected ErrWrongState, got %v", err)
	}
	got := e.mustTournament(t, created.ID)
	if got.CurrentPlayers != 1 {
		t.Fatalf("players=%d want 1", got.CurrentPlayers)
	}
	assertDecimal(t, "late wallet", e.balance(t, "late"), "25")
}
