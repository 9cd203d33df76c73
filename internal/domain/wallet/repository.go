package wallet

import "context"

type Repository interface {
	Get(ctx context.Context, userID string) (Wallet, error)
	// Debit subtracts e.Amount in one conditional update, failing with
	// ErrInsufficientFunds when the balance does not cover it.
	Debit(ctx context.Context, e Entry) error
	Credit(ctx context.Context, e Entry) error
	ListEntries(ctx context.Context, userID string, limit int) ([]Entry, error)
}
