package postgres

import (
	"context"
	"fmt"

	crerr "github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/riskibarqy/trading-tournament/internal/domain/portfolio"
	"github.com/riskibarqy/trading-tournament/internal/domain/tournament"
	qb "github.com/riskibarqy/trading-tournament/internal/platform/querybuilder"
)

var purchaseColumns = []string{
	"id", "tournament_id", "user_id", "symbol", "shares", "purchase_price", "total_cost", "purchased_at",
}

type PurchaseRepository struct {
	q queryer
}

func (r *PurchaseRepository) Append(ctx context.Context, p portfolio.Purchase) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	query, args, err := qb.InsertModel(tablePurchases, purchaseTableModel{
		ID:            p.ID,
		TournamentID:  p.TournamentID,
		UserID:        p.UserID,
		Symbol:        p.Symbol,
		Shares:        p.Shares,
		PurchasePrice: p.PurchasePrice,
		TotalCost:     p.TotalCost,
		PurchasedAt:   p.PurchasedAt,
	}, "")
	if err != nil {
		return fmt.Errorf("build insert purchase query: %w", err)
	}
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return persistence("insert purchase", err)
	}
	return nil
}

func (r *PurchaseRepository) ListOpen(ctx context.Context, tournamentID, userID, symbol string) ([]portfolio.Purchase, error) {
	// Row locks keep a concurrent sell from planning against the same lots.
	b := qb.Select(purchaseColumns...).From(tablePurchases).
		Where(qb.Eq("tournament_id", tournamentID), qb.Eq("user_id", userID), qb.Eq("symbol", symbol)).
		OrderBy("purchased_at", "id").
		ForUpdate()
	return r.list(ctx, "list open purchases", b)
}

func (r *PurchaseRepository) ListByParticipant(ctx context.Context, tournamentID, userID string) ([]portfolio.Purchase, error) {
	b := qb.Select(purchaseColumns...).From(tablePurchases).
		Where(qb.Eq("tournament_id", tournamentID), qb.Eq("user_id", userID)).
		OrderBy("purchased_at", "id")
	return r.list(ctx, "list participant purchases", b)
}

func (r *PurchaseRepository) ListByTournament(ctx context.Context, tournamentID string) ([]portfolio.Purchase, error) {
	b := qb.Select(purchaseColumns...).From(tablePurchases).
		Where(qb.Eq("tournament_id", tournamentID)).
		OrderBy("purchased_at", "id")
	return r.list(ctx, "list tournament purchases", b)
}

func (r *PurchaseRepository) list(ctx context.Context, op string, b *qb.SelectBuilder) ([]portfolio.Purchase, error) {
	query, args, err := b.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", op, err)
	}
	var rows []purchaseTableModel
	if err := r.q.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, persistence(op, err)
	}
	out := make([]portfolio.Purchase, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *PurchaseRepository) ApplySell(ctx context.Context, plan portfolio.SellPlan) error {
	for _, c := range plan.Consumptions {
		var (
			query string
			args  []any
			err   error
		)
		if c.Exhausted() {
			query, args, err = qb.DeleteFrom(tablePurchases).
				Where(qb.Eq("id", c.PurchaseID), qb.Eq("shares", c.PreviousShares)).
				ToSQL()
		} else {
			query, args, err = qb.Update(tablePurchases).
				Set("shares", c.RemainingShares).
				Set("total_cost", c.RemainingCost).
				Where(qb.Eq("id", c.PurchaseID), qb.Eq("shares", c.PreviousShares)).
				ToSQL()
		}
		if err != nil {
			return fmt.Errorf("build apply sell query: %w", err)
		}
		n, err := execAffected(ctx, r.q, "apply sell", query, args...)
		if err != nil {
			return err
		}
		if n == 0 {
			return crerr.Wrapf(tournament.ErrConcurrencyConflict, "lot %s changed during sell", c.PurchaseID)
		}
	}
	return nil
}

func (r *PurchaseRepository) DeleteByParticipant(ctx context.Context, tournamentID, userID string) error {
	query, args, err := qb.DeleteFrom(tablePurchases).
		Where(qb.Eq("tournament_id", tournamentID), qb.Eq("user_id", userID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete participant purchases query: %w", err)
	}
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return persistence("delete participant purchases", err)
	}
	return nil
}
