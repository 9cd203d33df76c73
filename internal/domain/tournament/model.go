package tournament

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusWaiting, StatusActive, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transition can leave s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

const (
	CodeLength        = 8
	MinPlayersToStart = 2
	MaxPlayersLimit   = 100
)

const (
	ReasonInsufficientPlayers = "insufficient_players"
	ReasonCancelledByCreator  = "cancelled_by_creator"
)

type Tournament struct {
	ID                 string
	Name               string
	Code               string
	CreatorID          string
	MaxPlayers         int
	CurrentPlayers     int
	StartingBalance    decimal.Decimal
	Timeframe          string
	Status             Status
	BuyInAmount        decimal.Decimal
	CurrentPot         decimal.Decimal
	ScheduledStartAt   *time.Time
	CreatedAt          time.Time
	StartedAt          *time.Time
	EndedAt            *time.Time
	CancellationReason string
}

func (t Tournament) HasBuyIn() bool {
	return t.BuyInAmount.IsPositive()
}

// Joinable reports whether new participants may still enter.
func (t Tournament) Joinable() bool {
	return t.Status == StatusWaiting || t.Status == StatusActive
}

func (t Tournament) Full() bool {
	return t.CurrentPlayers >= t.MaxPlayers
}

func (t Tournament) IsCreator(userID string) bool {
	return t.CreatorID == userID
}

type Participant struct {
	TournamentID string
	UserID       string
	CashBalance  decimal.Decimal
	JoinedAt     time.Time
}

type ListFilter struct {
	Status    Status
	CreatorID string
	Limit     int
}
