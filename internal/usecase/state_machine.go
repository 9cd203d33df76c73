package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/trading-tournament/internal/domain/tournament"
	"github.com/riskibarqy/trading-tournament/internal/domain/uow"
	"github.com/riskibarqy/trading-tournament/internal/platform/clock"
)

// StateMachine applies lifecycle transitions inside a caller's unit of work.
// Each transition is a conditional update on the current status; losing a
// race surfaces as ErrConcurrencyConflict.
type StateMachine struct {
	ledger *Ledger
	clock  clock.Clock
	anchor tournament.ExpiryAnchor
}

func NewStateMachine(ledger *Ledger, clk clock.Clock, anchor tournament.ExpiryAnchor) *StateMachine {
	if !anchor.Valid() {
		anchor = tournament.AnchorCreatedAt
	}
	return &StateMachine{ledger: ledger, clock: clock.OrReal(clk), anchor: anchor}
}

func (m *StateMachine) Now() time.Time {
	return m.clock.Now().UTC()
}

func (m *StateMachine) Anchor() tournament.ExpiryAnchor {
	return m.anchor
}

func (m *StateMachine) Expired(t tournament.Tournament, now time.Time) bool {
	return tournament.IsExpired(t, now, m.anchor)
}

func (m *StateMachine) Activate(ctx context.Context, repos uow.Repositories, t tournament.Tournament, at time.Time) error {
	if !tournament.CanTransition(t.Status, tournament.StatusActive) {
		return fmt.Errorf("%w: tournament %s is %s", ErrWrongState, t.ID, t.Status)
	}
	if err := repos.Tournaments.Activate(ctx, t.ID, at); err != nil {
		return fmt.Errorf("activate tournament %s: %w", t.ID, err)
	}
	return nil
}

// CancelForInsufficientPlayers refunds the creator, the only possible payer
// below the start floor, and then flips the status.
func (m *StateMachine) CancelForInsufficientPlayers(ctx context.Context, repos uow.Repositories, t tournament.Tournament, at time.Time) error {
	if !tournament.CanTransition(t.Status, tournament.StatusCancelled) {
		return fmt.Errorf("%w: tournament %s is %s", ErrWrongState, t.ID, t.Status)
	}
	if err := m.ledger.RefundCreatorBuyIn(ctx, repos, t); err != nil {
		return err
	}
	if err := repos.Tournaments.Cancel(ctx, t.ID, tournament.ReasonInsufficientPlayers, at); err != nil {
		return fmt.Errorf("cancel tournament %s: %w", t.ID, err)
	}
	return nil
}

// CancelByCreator refunds every participant's buy-in and then flips the status.
func (m *StateMachine) CancelByCreator(ctx context.Context, repos uow.Repositories, t tournament.Tournament, at time.Time) error {
	if !tournament.CanTransition(t.Status, tournament.StatusCancelled) {
		return fmt.Errorf("%w: tournament %s is %s", ErrWrongState, t.ID, t.Status)
	}
	participants, err := repos.Participants.ListByTournament(ctx, t.ID)
	if err != nil {
		return fmt.Errorf("list participants: %w", err)
	}
	for _, p := range participants {
		if err := m.ledger.RefundBuyIn(ctx, repos, t, p.UserID); err != nil {
			return err
		}
	}
	if err := repos.Tournaments.Cancel(ctx, t.ID, tournament.ReasonCancelledByCreator, at); err != nil {
		return fmt.Errorf("cancel tournament %s: %w", t.ID, err)
	}
	return nil
}

func (m *StateMachine) Complete(ctx context.Context, repos uow.Repositories, t tournament.Tournament, at time.Time) error {
	if !tournament.CanTransition(t.Status, tournament.StatusCompleted) {
		return fmt.Errorf("%w: tournament %s is %s", ErrWrongState, t.ID, t.Status)
	}
	if err := repos.Tournaments.Complete(ctx, t.ID, at); err != nil {
		return fmt.Errorf("complete tournament %s: %w", t.ID, err)
	}
	return nil
}
