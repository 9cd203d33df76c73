package tournament

import "time"

// ExpiryAnchor selects which timestamp a tournament's timeframe counts from.
type ExpiryAnchor string

const (
	AnchorCreatedAt ExpiryAnchor = "created"
	AnchorStartedAt ExpiryAnchor = "started"
)

func (a ExpiryAnchor) Valid() bool {
	return a == AnchorCreatedAt || a == AnchorStartedAt
}

var edges = map[Status][]Status{
	StatusWaiting: {StatusActive, StatusCancelled},
	StatusActive:  {StatusCompleted},
}

// CanTransition reports whether from -> to is an edge of the lifecycle graph.
func CanTransition(from, to Status) bool {
	for _, next := range edges[from] {
		if next == to {
			return true
		}
	}
	return false
}

// WaitingDecision is the outcome of evaluating a waiting tournament.
type WaitingDecision int

const (
	Hold WaitingDecision = iota
	Activate
	CancelInsufficientPlayers
)

func (d WaitingDecision) String() string {
	switch d {
	case Activate:
		return "activate"
	case CancelInsufficientPlayers:
		return "cancel"
	default:
		return "hold"
	}
}

// DecideWaiting applies the start rule: once the scheduled time has passed
// the tournament starts with at least MinPlayersToStart players and is
// cancelled otherwise.
func DecideWaiting(t Tournament, now time.Time) WaitingDecision {
	if t.Status != StatusWaiting {
		return Hold
	}
	if t.ScheduledStartAt != nil && now.Before(*t.ScheduledStartAt) {
		return Hold
	}
	if t.CurrentPlayers >= MinPlayersToStart {
		return Activate
	}
	if t.ScheduledStartAt != nil {
		return CancelInsufficientPlayers
	}
	return Hold
}

// ExpiresAt returns the instant after which an active tournament completes.
func ExpiresAt(t Tournament, anchor ExpiryAnchor) time.Time {
	from := t.CreatedAt
	if anchor == AnchorStartedAt && t.StartedAt != nil {
		from = *t.StartedAt
	}
	return from.Add(ParseDuration(t.Timeframe))
}

func IsExpired(t Tournament, now time.Time, anchor ExpiryAnchor) bool {
	return t.Status == StatusActive && now.After(ExpiresAt(t, anchor))
}
