package usecase

import (
	"errors"
	"testing"

	"github.com/riskibarqy/trading-tournament/internal/domain/user"
	"github.com/riskibarqy/trading-tournament/internal/domain/wallet"
)

func TestWalletService_DepositIsAdminOnly(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil)
	admin := user.Principal{UserID: "ops", Role: user.RoleAdmin}

	if _, err := e.wallets.Deposit(t.Context(), user.Principal{UserID: "alice"}, "alice", dec("10")); !errors.Is(err, ErrForbidden) {
		t.Fatalf("member deposit: expected ErrForbidden, got %v", err)
	}
	if _, err := e.wallets.Deposit(t.Context(), admin, "alice", dec("0")); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("zero deposit: expected ErrInvalidInput, got %v", err)
	}

	w, err := e.wallets.Deposit(t.Context(), admin, "alice", dec("12.345"))
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	assertDecimal(t, "balance", w.Balance, "12.35")

	view, err := e.wallets.Get(t.Context(), "alice", 0)
	if err != nil {
		t.Fatalf("get wallet: %v", err)
	}
	if len(view.Entries) != 1 || view.Entries[0].Reason != wallet.ReasonDeposit || view.Entries[0].Direction != wallet.DirectionCredit {
		t.Fatalf("unexpected entries: %+v", view.Entries)
	}
}

func TestWalletService_UnknownUserHasZeroBalance(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil)
	view, err := e.wallets.Get(t.Context(), "nobody", 10)
	if err != nil {
		t.Fatalf("get wallet: %v", err)
	}
	if !view.Wallet.Balance.IsZero() || len(view.Entries) != 0 {
		t.Fatalf("unexpected wallet: %+v", view)
	}
}
