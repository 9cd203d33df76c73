package tournament

import crerr "github.com/cockroachdb/errors"

var (
	ErrNotFound             = crerr.New("tournament not found")
	ErrParticipantNotFound  = crerr.New("participant not found")
	ErrAlreadyParticipating = crerr.New("user already participates in tournament")
	ErrTournamentFull       = crerr.New("tournament is full")
	ErrWrongState           = crerr.New("operation not allowed in current tournament state")
	ErrNotCreator           = crerr.New("only the tournament creator may do this")
	ErrDuplicateCode        = crerr.New("tournament code already in use")
	ErrInsufficientCash     = crerr.New("insufficient virtual cash")

	// ErrConcurrencyConflict means a conditional update found its precondition
	// already consumed by another caller.
	ErrConcurrencyConflict = crerr.New("concurrency conflict")
)
