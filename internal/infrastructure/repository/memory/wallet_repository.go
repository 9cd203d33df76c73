package memory

import (
	"context"

	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/trading-tournament/internal/domain/wallet"
)

type walletRepository struct {
	s *state
}

func (r walletRepository) Get(_ context.Context, userID string) (wallet.Wallet, error) {
	w, ok := r.s.wallets[userID]
	if !ok {
		return wallet.Wallet{UserID: userID}, nil
	}
	return w, nil
}

func (r walletRepository) Debit(_ context.Context, e wallet.Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	w := r.s.wallets[e.UserID]
	if w.Balance.LessThan(e.Amount) {
		return crerr.Wrapf(wallet.ErrInsufficientFunds, "balance %s, need %s", w.Balance, e.Amount)
	}
	e.Direction = wallet.DirectionDebit
	r.apply(w, e)
	return nil
}

func (r walletRepository) Credit(_ context.Context, e wallet.Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	e.Direction = wallet.DirectionCredit
	r.apply(r.s.wallets[e.UserID], e)
	return nil
}

func (r walletRepository) apply(w wallet.Wallet, e wallet.Entry) {
	if e.ID == "" {
		e.ID = r.s.nextID("entry")
	}
	w.UserID = e.UserID
	w.Balance = w.Balance.Add(e.Signed())
	w.UpdatedAt = e.CreatedAt
	r.s.wallets[e.UserID] = w
	r.s.entries = append(r.s.entries, e)
}

func (r walletRepository) ListEntries(_ context.Context, userID string, limit int) ([]wallet.Entry, error) {
	out := make([]wallet.Entry, 0)
	for i := len(r.s.entries) - 1; i >= 0; i-- {
		if r.s.entries[i].UserID != userID {
			continue
		}
		out = append(out, r.s.entries[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
