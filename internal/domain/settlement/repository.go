package settlement

import "context"

type Repository interface {
	// Create fails with ErrAlreadySettled when a record for the tournament exists.
	Create(ctx context.Context, r Record) error
	Get(ctx context.Context, tournamentID string) (Record, error)
	SaveStandings(ctx context.Context, tournamentID string, standings []Standing) error
	ListStandings(ctx context.Context, tournamentID string) ([]Standing, error)
}
