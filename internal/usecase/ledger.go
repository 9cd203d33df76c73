package usecase

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/riskibarqy/trading-tournament/internal/domain/tournament"
	"github.com/riskibarqy/trading-tournament/internal/domain/uow"
	"github.com/riskibarqy/trading-tournament/internal/domain/wallet"
	"github.com/riskibarqy/trading-tournament/internal/platform/clock"
	"github.com/riskibarqy/trading-tournament/internal/platform/id"
)

// Ledger moves real money. It never opens its own transaction: callers pass
// the repositories of the unit of work the movement belongs to.
type Ledger struct {
	ids   id.Generator
	clock clock.Clock
}

func NewLedger(ids id.Generator, clk clock.Clock) *Ledger {
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	return &Ledger{ids: ids, clock: clock.OrReal(clk)}
}

// Debit subtracts amount from the user's wallet in one conditional update.
func (l *Ledger) Debit(ctx context.Context, repos uow.Repositories, userID string, amount decimal.Decimal, reason wallet.Reason, tournamentID string) error {
	entry, err := l.entry(userID, amount, reason, tournamentID)
	if err != nil {
		return err
	}
	if err := repos.Wallets.Debit(ctx, entry); err != nil {
		return fmt.Errorf("debit %s from user %s: %w", amount, userID, err)
	}
	return nil
}

func (l *Ledger) Credit(ctx context.Context, repos uow.Repositories, userID string, amount decimal.Decimal, reason wallet.Reason, tournamentID string) error {
	entry, err := l.entry(userID, amount, reason, tournamentID)
	if err != nil {
		return err
	}
	if err := repos.Wallets.Credit(ctx, entry); err != nil {
		return fmt.Errorf("credit %s to user %s: %w", amount, userID, err)
	}
	return nil
}

// AccumulatePot adds amount to the tournament pot. Negative amounts release escrow.
func (l *Ledger) AccumulatePot(ctx context.Context, repos uow.Repositories, tournamentID string, amount decimal.Decimal) error {
	if amount.IsZero() {
		return nil
	}
	if err := repos.Tournaments.AdjustPot(ctx, tournamentID, amount); err != nil {
		return fmt.Errorf("adjust pot of tournament %s by %s: %w", tournamentID, amount, err)
	}
	return nil
}

// RefundCreatorBuyIn returns the creator's escrowed buy-in and takes it out of the pot.
func (l *Ledger) RefundCreatorBuyIn(ctx context.Context, repos uow.Repositories, t tournament.Tournament) error {
	return l.RefundBuyIn(ctx, repos, t, t.CreatorID)
}

// RefundBuyIn returns one participant's escrowed buy-in.
func (l *Ledger) RefundBuyIn(ctx context.Context, repos uow.Repositories, t tournament.Tournament, userID string) error {
	if !t.HasBuyIn() {
		return nil
	}
	if err := l.AccumulatePot(ctx, repos, t.ID, t.BuyInAmount.Neg()); err != nil {
		return err
	}
	return l.Credit(ctx, repos, userID, t.BuyInAmount, wallet.ReasonBuyInRefund, t.ID)
}

// EscrowBuyIn debits the user and adds the buy-in to the pot.
func (l *Ledger) EscrowBuyIn(ctx context.Context, repos uow.Repositories, t tournament.Tournament, userID string) error {
	if !t.HasBuyIn() {
		return nil
	}
	if err := l.Debit(ctx, repos, userID, t.BuyInAmount, wallet.ReasonBuyIn, t.ID); err != nil {
		return err
	}
	return l.AccumulatePot(ctx, repos, t.ID, t.BuyInAmount)
}

func (l *Ledger) entry(userID string, amount decimal.Decimal, reason wallet.Reason, tournamentID string) (wallet.Entry, error) {
	if !amount.IsPositive() {
		return wallet.Entry{}, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	entryID, err := l.ids.NewID()
	if err != nil {
		return wallet.Entry{}, fmt.Errorf("generate ledger entry id: %w", err)
	}
	return wallet.Entry{
		ID:           entryID,
		UserID:       userID,
		Amount:       amount,
		Reason:       reason,
		TournamentID: tournamentID,
		CreatedAt:    l.clock.Now().UTC(),
	}, nil
}
