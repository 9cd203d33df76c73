package settlement

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestSplitPot_ScenarioPot(t *testing.T) {
	t.Parallel()

	split := SplitPot(decimal.NewFromInt(1000))
	if !split.WinnerAmount.Equal(decimal.RequireFromString("950.00")) {
		t.Fatalf("unexpected winner amount %s", split.WinnerAmount)
	}
	if !split.CreatorAmount.Equal(decimal.RequireFromString("50.00")) {
		t.Fatalf("unexpected creator amount %s", split.CreatorAmount)
	}
}

func TestSplitPot_WithinOneCent(t *testing.T) {
	t.Parallel()

	cent := decimal.RequireFromString("0.01")
	for cents := int64(1); cents <= 5000; cents++ {
		pot := decimal.New(cents, -2)
		split := SplitPot(pot)
		diff := split.WinnerAmount.Add(split.CreatorAmount).Sub(pot).Abs()
		if diff.GreaterThan(cent) {
			t.Fatalf("pot %s split into %s + %s, off by %s", pot, split.WinnerAmount, split.CreatorAmount, diff)
		}
		if split.WinnerAmount.Exponent() < -2 || split.CreatorAmount.Exponent() < -2 {
			t.Fatalf("amounts must be rounded to cents: %s %s", split.WinnerAmount, split.CreatorAmount)
		}
	}
}

func TestRank_TieBreaksOnJoinTime(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	ranked := Rank([]Standing{
		{UserID: "late", TotalValue: decimal.NewFromInt(12000), JoinedAt: base.Add(time.Hour)},
		{UserID: "low", TotalValue: decimal.NewFromInt(9000), JoinedAt: base},
		{UserID: "early", TotalValue: decimal.RequireFromString("12000.00"), JoinedAt: base},
	})

	want := []string{"early", "late", "low"}
	for i, s := range ranked {
		if s.UserID != want[i] || s.Rank != i+1 {
			t.Fatalf("position %d: got %s rank %d, want %s rank %d", i, s.UserID, s.Rank, want[i], i+1)
		}
	}
}
