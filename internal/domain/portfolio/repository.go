package portfolio

import "context"

type Repository interface {
	Append(ctx context.Context, p Purchase) error
	// ListOpen returns the participant's lots for symbol in FIFO order.
	ListOpen(ctx context.Context, tournamentID, userID, symbol string) ([]Purchase, error)
	ListByParticipant(ctx context.Context, tournamentID, userID string) ([]Purchase, error)
	ListByTournament(ctx context.Context, tournamentID string) ([]Purchase, error)
	// ApplySell writes every consumption of plan, each conditioned on the lot
	// still holding PreviousShares.
	ApplySell(ctx context.Context, plan SellPlan) error
	DeleteByParticipant(ctx context.Context, tournamentID, userID string) error
}
