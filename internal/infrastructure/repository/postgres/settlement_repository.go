package postgres

import (
	"context"
	"fmt"

	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/trading-tournament/internal/domain/settlement"
	qb "github.com/riskibarqy/trading-tournament/internal/platform/querybuilder"
)

type SettlementRepository struct {
	q queryer
}

func (r *SettlementRepository) Create(ctx context.Context, rec settlement.Record) error {
	query, args, err := qb.InsertModel(tableSettlements, settlementModelFrom(rec), "")
	if err != nil {
		return fmt.Errorf("build insert settlement query: %w", err)
	}
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err, "") {
			return crerr.Wrapf(settlement.ErrAlreadySettled, "tournament=%s", rec.TournamentID)
		}
		return persistence("insert settlement", err)
	}
	return nil
}

func (r *SettlementRepository) Get(ctx context.Context, tournamentID string) (settlement.Record, error) {
	query, args, err := qb.Select(
		"tournament_id", "winner_id", "creator_id", "pot", "winner_amount",
		"creator_amount", "distributed", "participants", "settled_at",
	).From(tableSettlements).Where(qb.Eq("tournament_id", tournamentID)).ToSQL()
	if err != nil {
		return settlement.Record{}, fmt.Errorf("build get settlement query: %w", err)
	}
	var row settlementTableModel
	if err := r.q.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return settlement.Record{}, crerr.Wrapf(settlement.ErrNotFound, "tournament=%s", tournamentID)
		}
		return settlement.Record{}, persistence("get settlement", err)
	}
	return row.toDomain(), nil
}

func (r *SettlementRepository) SaveStandings(ctx context.Context, tournamentID string, standings []settlement.Standing) error {
	if len(standings) == 0 {
		return nil
	}
	b := qb.InsertInto(tableResults).Columns(
		"tournament_id", "user_id", "rank", "cash_balance", "holdings_value", "total_value", "joined_at", "degraded",
	)
	for _, s := range standings {
		b.Values(tournamentID, s.UserID, s.Rank, s.CashBalance, s.HoldingsValue, s.TotalValue, s.JoinedAt, s.Degraded)
	}
	query, args, err := b.ToSQL()
	if err != nil {
		return fmt.Errorf("build insert standings query: %w", err)
	}
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return persistence("insert standings", err)
	}
	return nil
}

func (r *SettlementRepository) ListStandings(ctx context.Context, tournamentID string) ([]settlement.Standing, error) {
	query, args, err := qb.Select(
		"tournament_id", "user_id", "rank", "cash_balance", "holdings_value", "total_value", "joined_at", "degraded",
	).From(tableResults).Where(qb.Eq("tournament_id", tournamentID)).OrderBy("rank").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list standings query: %w", err)
	}
	var rows []resultTableModel
	if err := r.q.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, persistence("list standings", err)
	}
	out := make([]settlement.Standing, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
