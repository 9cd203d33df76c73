package tournament

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Repository persists tournaments. Every mutating method is a conditional
// update keyed on the state it depends on and returns ErrConcurrencyConflict
// when that precondition no longer holds.
type Repository interface {
	Create(ctx context.Context, t Tournament) error
	GetByID(ctx context.Context, id string) (Tournament, error)
	GetByCode(ctx context.Context, code string) (Tournament, error)
	// GetByIDForUpdate reads the tournament and holds an exclusive row lock
	// until the unit of work ends. Settlement uses it so no join, kick or
	// trade can commit between its read and its status change.
	GetByIDForUpdate(ctx context.Context, id string) (Tournament, error)
	// GetByIDForShare reads the tournament under a shared row lock. Trades
	// take it so they serialize against settlement but not against each other.
	GetByIDForShare(ctx context.Context, id string) (Tournament, error)
	List(ctx context.Context, filter ListFilter) ([]Tournament, error)
	// ListDueForStart returns waiting tournaments whose scheduled start is at or before now.
	ListDueForStart(ctx context.Context, now time.Time) ([]Tournament, error)
	ListActive(ctx context.Context) ([]Tournament, error)

	Activate(ctx context.Context, id string, startedAt time.Time) error
	Cancel(ctx context.Context, id, reason string, endedAt time.Time) error
	Complete(ctx context.Context, id string, endedAt time.Time) error

	// ReserveSeat increments current_players while the tournament is joinable and
	// not full. It returns ErrTournamentFull or ErrWrongState accordingly.
	ReserveSeat(ctx context.Context, id string) error
	// ReleaseSeat decrements current_players of a waiting tournament.
	ReleaseSeat(ctx context.Context, id string) error
	// AdjustPot adds delta to current_pot of a non-terminal tournament, never
	// letting the pot go negative.
	AdjustPot(ctx context.Context, id string, delta decimal.Decimal) error
}

type ParticipantRepository interface {
	Add(ctx context.Context, p Participant) error
	Get(ctx context.Context, tournamentID, userID string) (Participant, error)
	ListByTournament(ctx context.Context, tournamentID string) ([]Participant, error)
	ListByUser(ctx context.Context, userID string) ([]Participant, error)
	Remove(ctx context.Context, tournamentID, userID string) error
	// DebitCash subtracts amount only if the balance covers it (ErrInsufficientCash otherwise).
	DebitCash(ctx context.Context, tournamentID, userID string, amount decimal.Decimal) error
	CreditCash(ctx context.Context, tournamentID, userID string, amount decimal.Decimal) error
}
