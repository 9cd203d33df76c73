// Package uow defines the persistence port shared by the ledger, the state
// machine and settlement. Each component mutates state only through the
// repositories handed to it inside Manager.Do, so their effects commit or roll
// back together.
package uow

import (
	"context"

	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/trading-tournament/internal/domain/achievement"
	"github.com/riskibarqy/trading-tournament/internal/domain/portfolio"
	"github.com/riskibarqy/trading-tournament/internal/domain/settlement"
	"github.com/riskibarqy/trading-tournament/internal/domain/tournament"
	"github.com/riskibarqy/trading-tournament/internal/domain/wallet"
)

// ErrPersistence marks storage failures that are not domain outcomes.
var ErrPersistence = crerr.New("persistence failure")

type Repositories struct {
	Tournaments  tournament.Repository
	Participants tournament.ParticipantRepository
	Wallets      wallet.Repository
	Purchases    portfolio.Repository
	Achievements achievement.Repository
	Settlements  settlement.Repository
}

type Manager interface {
	// Do runs fn in one transaction; any error returned by fn rolls it back.
	Do(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
	// View runs fn against a read-only snapshot.
	View(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
