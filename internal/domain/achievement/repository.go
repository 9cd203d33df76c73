package achievement

import (
	"context"
	"time"
)

type Repository interface {
	// Award inserts a unless the user already holds that type. The boolean
	// reports whether a new row was written.
	Award(ctx context.Context, a Achievement) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]Achievement, error)
	// RecordResult bumps tournaments played, and wins when won, returning the new totals.
	RecordResult(ctx context.Context, userID string, won bool, at time.Time) (Stats, error)
	AddPoints(ctx context.Context, userID string, points int, at time.Time) error
	GetStats(ctx context.Context, userID string) (Stats, error)
}
