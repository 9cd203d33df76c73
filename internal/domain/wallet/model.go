package wallet

import (
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
)

var (
	ErrInsufficientFunds = crerr.New("insufficient funds")
	ErrInvalidAmount     = crerr.New("amount must be positive")
)

// Wallet is a user's real-money balance. A user without a row has a zero balance.
type Wallet struct {
	UserID    string
	Balance   decimal.Decimal
	UpdatedAt time.Time
}

type Direction string

const (
	DirectionDebit  Direction = "debit"
	DirectionCredit Direction = "credit"
)

type Reason string

const (
	ReasonBuyIn        Reason = "buy_in"
	ReasonBuyInRefund  Reason = "buy_in_refund"
	ReasonPrize        Reason = "prize"
	ReasonCreatorShare Reason = "creator_share"
	ReasonDeposit      Reason = "deposit"
)

// Entry is one journal line. Every balance change writes exactly one entry.
type Entry struct {
	ID           string
	UserID       string
	Direction    Direction
	Amount       decimal.Decimal
	Reason       Reason
	TournamentID string
	CreatedAt    time.Time
}

func (e Entry) Validate() error {
	if e.UserID == "" {
		return crerr.New("wallet entry requires user id")
	}
	if !e.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

// Signed returns the amount as applied to the balance.
func (e Entry) Signed() decimal.Decimal {
	if e.Direction == DirectionDebit {
		return e.Amount.Neg()
	}
	return e.Amount
}
