package usecase

import (
	"errors"
	"fmt"

	"github.com/riskibarqy/trading-tournament/internal/domain/portfolio"
	"github.com/riskibarqy/trading-tournament/internal/domain/quote"
	"github.com/riskibarqy/trading-tournament/internal/domain/settlement"
	"github.com/riskibarqy/trading-tournament/internal/domain/tournament"
	"github.com/riskibarqy/trading-tournament/internal/domain/uow"
	"github.com/riskibarqy/trading-tournament/internal/domain/wallet"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrForbidden             = errors.New("forbidden")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

// Engine outcomes surfaced to callers. They alias the domain sentinels so
// errors.Is works on either name.
var (
	ErrInsufficientFunds    = wallet.ErrInsufficientFunds
	ErrInsufficientShares   = portfolio.ErrInsufficientShares
	ErrAlreadyParticipating = tournament.ErrAlreadyParticipating
	ErrTournamentFull       = tournament.ErrTournamentFull
	ErrWrongState           = tournament.ErrWrongState
	ErrNotCreator           = tournament.ErrNotCreator
	ErrConcurrencyConflict  = tournament.ErrConcurrencyConflict
	ErrQuoteUnavailable     = quote.ErrUnavailable
	ErrPersistence          = uow.ErrPersistence
)

// classify attaches the usecase kind to errors coming out of the domain and
// storage layers that have no direct alias above.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, tournament.ErrNotFound),
		errors.Is(err, tournament.ErrParticipantNotFound),
		errors.Is(err, settlement.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, tournament.ErrInsufficientCash):
		return fmt.Errorf("%w: %w", ErrInsufficientFunds, err)
	case errors.Is(err, portfolio.ErrInvalidShares),
		errors.Is(err, portfolio.ErrInvalidPrice),
		errors.Is(err, wallet.ErrInvalidAmount):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	default:
		return err
	}
}
