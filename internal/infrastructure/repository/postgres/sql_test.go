package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/riskibarqy/trading-tournament/internal/domain/settlement"
	"github.com/riskibarqy/trading-tournament/internal/domain/uow"
	"github.com/riskibarqy/trading-tournament/internal/domain/wallet"
)

func TestIsUniqueViolation(t *testing.T) {
	t.Run("matches wrapped 23505 on named constraint", func(t *testing.T) {
		err := fmt.Errorf("insert: %w", &pq.Error{Code: "23505", Constraint: constraintTournamentCode})
		if !isUniqueViolation(err, constraintTournamentCode) {
			t.Fatalf("expected unique violation on %s", constraintTournamentCode)
		}
		if !isUniqueViolation(err, "") {
			t.Fatalf("expected unique violation for any constraint")
		}
	})

	t.Run("ignores other constraint", func(t *testing.T) {
		err := &pq.Error{Code: "23505", Constraint: "tournaments_pkey"}
		if isUniqueViolation(err, constraintTournamentCode) {
			t.Fatalf("expected false for primary key violation")
		}
	})

	t.Run("ignores other codes", func(t *testing.T) {
		if isUniqueViolation(&pq.Error{Code: "23503"}, "") {
			t.Fatalf("expected false for foreign key violation")
		}
		if isUniqueViolation(errors.New("boom"), "") {
			t.Fatalf("expected false for plain error")
		}
	})
}

func TestPersistenceKeepsDriverError(t *testing.T) {
	err := persistence("insert tournament", sql.ErrConnDone)
	if !errors.Is(err, uow.ErrPersistence) {
		t.Fatalf("expected ErrPersistence in chain, got %v", err)
	}
	if !errors.Is(err, sql.ErrConnDone) {
		t.Fatalf("expected driver error in chain, got %v", err)
	}
	if !isNotFound(fmt.Errorf("get: %w", sql.ErrNoRows)) {
		t.Fatalf("expected wrapped sql.ErrNoRows to be not found")
	}
}

func TestEntryModelNullableTournament(t *testing.T) {
	at := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	deposit := entryModelFrom(wallet.Entry{
		ID: "e1", UserID: "alice", Direction: wallet.DirectionCredit,
		Amount: decimal.NewFromInt(50), Reason: wallet.ReasonDeposit, CreatedAt: at,
	})
	if deposit.TournamentID != nil {
		t.Fatalf("expected NULL tournament id for deposit, got %q", *deposit.TournamentID)
	}

	buyIn := entryModelFrom(wallet.Entry{
		ID: "e2", UserID: "alice", Direction: wallet.DirectionDebit,
		Amount: decimal.NewFromInt(10), Reason: wallet.ReasonBuyIn, TournamentID: "t-1", CreatedAt: at,
	})
	if got := buyIn.toDomain(); got.TournamentID != "t-1" || got.Direction != wallet.DirectionDebit {
		t.Fatalf("unexpected entry: %+v", got)
	}
}

func TestSettlementModelWithoutWinner(t *testing.T) {
	rec := settlement.Record{TournamentID: "t-1", CreatorID: "alice", Pot: decimal.Zero, Participants: 2}
	row := settlementModelFrom(rec)
	if row.WinnerID != nil {
		t.Fatalf("expected NULL winner id")
	}
	if got := row.toDomain(); got.WinnerID != "" || got.CreatorID != "alice" || got.Distributed {
		t.Fatalf("unexpected record: %+v", got)
	}
}
