package settlement

import (
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
)

var (
	ErrAlreadySettled = crerr.New("tournament already settled")
	ErrNotFound       = crerr.New("settlement not found")
)

// Standing is one participant's mark-to-market result.
type Standing struct {
	Rank          int
	UserID        string
	CashBalance   decimal.Decimal
	HoldingsValue decimal.Decimal
	TotalValue    decimal.Decimal
	JoinedAt      time.Time
	// Degraded is set when at least one symbol was valued at its last purchase price.
	Degraded bool
}

// Record is written once per tournament in the same transaction that
// completes it; its primary key is the tournament id.
type Record struct {
	TournamentID  string
	WinnerID      string
	CreatorID     string
	Pot           decimal.Decimal
	WinnerAmount  decimal.Decimal
	CreatorAmount decimal.Decimal
	Distributed   bool
	Participants  int
	SettledAt     time.Time
}
