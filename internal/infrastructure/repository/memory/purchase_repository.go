package memory

import (
	"context"

	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/trading-tournament/internal/domain/portfolio"
	"github.com/riskibarqy/trading-tournament/internal/domain/tournament"
)

type purchaseRepository struct {
	s *state
}

func (r purchaseRepository) Append(_ context.Context, p portfolio.Purchase) error {
	if p.ID == "" {
		p.ID = r.s.nextID("lot")
	}
	if _, exists := r.s.purchases[p.ID]; exists {
		return crerr.Newf("purchase %s already exists", p.ID)
	}
	r.s.purchases[p.ID] = p
	return nil
}

func (r purchaseRepository) ListOpen(_ context.Context, tournamentID, userID, symbol string) ([]portfolio.Purchase, error) {
	return r.filter(func(p portfolio.Purchase) bool {
		return p.TournamentID == tournamentID && p.UserID == userID && p.Symbol == symbol
	}), nil
}

func (r purchaseRepository) ListByParticipant(_ context.Context, tournamentID, userID string) ([]portfolio.Purchase, error) {
	return r.filter(func(p portfolio.Purchase) bool {
		return p.TournamentID == tournamentID && p.UserID == userID
	}), nil
}

func (r purchaseRepository) ListByTournament(_ context.Context, tournamentID string) ([]portfolio.Purchase, error) {
	return r.filter(func(p portfolio.Purchase) bool {
		return p.TournamentID == tournamentID
	}), nil
}

func (r purchaseRepository) ApplySell(_ context.Context, plan portfolio.SellPlan) error {
	for _, c := range plan.Consumptions {
		lot, ok := r.s.purchases[c.PurchaseID]
		if !ok || !lot.Shares.Equal(c.PreviousShares) {
			return crerr.Wrapf(tournament.ErrConcurrencyConflict, "lot %s changed during sell", c.PurchaseID)
		}
		if c.Exhausted() {
			delete(r.s.purchases, c.PurchaseID)
			continue
		}
		lot.Shares = c.RemainingShares
		lot.TotalCost = c.RemainingCost
		r.s.purchases[c.PurchaseID] = lot
	}
	return nil
}

func (r purchaseRepository) DeleteByParticipant(_ context.Context, tournamentID, userID string) error {
	for id, p := range r.s.purchases {
		if p.TournamentID == tournamentID && p.UserID == userID {
			delete(r.s.purchases, id)
		}
	}
	return nil
}

func (r purchaseRepository) filter(keep func(portfolio.Purchase) bool) []portfolio.Purchase {
	out := make([]portfolio.Purchase, 0)
	for _, p := range r.s.purchases {
		if keep(p) {
			out = append(out, p)
		}
	}
	portfolio.SortFIFO(out)
	return out
}
