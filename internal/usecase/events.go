package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/riskibarqy/trading-tournament/internal/platform/logging"
)

type EventType string

const (
	EventTournamentCreated   EventType = "tournament.created"
	EventTournamentStarted   EventType = "tournament.started"
	EventTournamentCancelled EventType = "tournament.cancelled"
	EventTournamentCompleted EventType = "tournament.completed"
	EventParticipantJoined   EventType = "tournament.participant_joined"
	EventParticipantKicked   EventType = "tournament.participant_kicked"
)

// TournamentEvent is published after the transaction that caused it commits.
type TournamentEvent struct {
	Type         EventType       `json:"type"`
	TournamentID string          `json:"tournament_id"`
	UserID       string          `json:"user_id,omitempty"`
	Status       string          `json:"status"`
	Pot          decimal.Decimal `json:"pot"`
	Reason       string          `json:"reason,omitempty"`
	OccurredAt   time.Time       `json:"occurred_at"`
}

type EventPublisher interface {
	Publish(ctx context.Context, event TournamentEvent) error
}

type noopEventPublisher struct{}

func (noopEventPublisher) Publish(_ context.Context, _ TournamentEvent) error {
	return nil
}

func NewNoopEventPublisher() EventPublisher {
	return noopEventPublisher{}
}

// publish delivers event and only logs failures; the state change it
// describes has already committed.
func publish(ctx context.Context, events EventPublisher, logger *logging.Logger, event TournamentEvent) {
	if err := events.Publish(ctx, event); err != nil {
		logger.WarnContext(ctx, "publish tournament event failed",
			"event", string(event.Type),
			"tournament_id", event.TournamentID,
			"error", err,
		)
	}
}
