package postgres

import (
	"context"
	"fmt"

	crerr "github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"

	"github.com/riskibarqy/trading-tournament/internal/domain/tournament"
	qb "github.com/riskibarqy/trading-tournament/internal/platform/querybuilder"
)

var participantColumns = []string{"tournament_id", "user_id", "cash_balance", "joined_at"}

type ParticipantRepository struct {
	q queryer
}

func (r *ParticipantRepository) Add(ctx context.Context, p tournament.Participant) error {
	query, args, err := qb.InsertModel(tableParticipants, participantTableModel{
		TournamentID: p.TournamentID,
		UserID:       p.UserID,
		CashBalance:  p.CashBalance,
		JoinedAt:     p.JoinedAt,
	}, "")
	if err != nil {
		return fmt.Errorf("build insert participant query: %w", err)
	}
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err, "") {
			return tournament.ErrAlreadyParticipating
		}
		return persistence("insert participant", err)
	}
	return nil
}

func (r *ParticipantRepository) Get(ctx context.Context, tournamentID, userID string) (tournament.Participant, error) {
	query, args, err := qb.Select(participantColumns...).From(tableParticipants).
		Where(qb.Eq("tournament_id", tournamentID), qb.Eq("user_id", userID)).
		ToSQL()
	if err != nil {
		return tournament.Participant{}, fmt.Errorf("build get participant query: %w", err)
	}
	var row participantTableModel
	if err := r.q.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return tournament.Participant{}, crerr.Wrapf(tournament.ErrParticipantNotFound, "tournament=%s user=%s", tournamentID, userID)
		}
		return tournament.Participant{}, persistence("get participant", err)
	}
	return row.toDomain(), nil
}

func (r *ParticipantRepository) ListByTournament(ctx context.Context, tournamentID string) ([]tournament.Participant, error) {
	return r.list(ctx, "list participants by tournament", qb.Eq("tournament_id", tournamentID))
}

func (r *ParticipantRepository) ListByUser(ctx context.Context, userID string) ([]tournament.Participant, error) {
	return r.list(ctx, "list participants by user", qb.Eq("user_id", userID))
}

func (r *ParticipantRepository) list(ctx context.Context, op string, cond qb.Condition) ([]tournament.Participant, error) {
	query, args, err := qb.Select(participantColumns...).From(tableParticipants).
		Where(cond).
		OrderBy("joined_at", "user_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", op, err)
	}
	var rows []participantTableModel
	if err := r.q.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, persistence(op, err)
	}
	out := make([]tournament.Participant, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *ParticipantRepository) Remove(ctx context.Context, tournamentID, userID string) error {
	query, args, err := qb.DeleteFrom(tableParticipants).
		Where(qb.Eq("tournament_id", tournamentID), qb.Eq("user_id", userID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete participant query: %w", err)
	}
	n, err := execAffected(ctx, r.q, "delete participant", query, args...)
	if err != nil {
		return err
	}
	if n == 0 {
		return crerr.Wrapf(tournament.ErrParticipantNotFound, "tournament=%s user=%s", tournamentID, userID)
	}
	return nil
}

func (r *ParticipantRepository) DebitCash(ctx context.Context, tournamentID, userID string, amount decimal.Decimal) error {
	query, args, err := qb.Update(tableParticipants).
		SetExpr("cash_balance", "cash_balance - ?", amount).
		Where(
			qb.Eq("tournament_id", tournamentID),
			qb.Eq("user_id", userID),
			qb.Expr("cash_balance >= ?", amount),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build debit cash query: %w", err)
	}
	n, err := execAffected(ctx, r.q, "debit participant cash", query, args...)
	if err != nil {
		return err
	}
	if n == 0 {
		p, err := r.Get(ctx, tournamentID, userID)
		if err != nil {
			return err
		}
		return crerr.Wrapf(tournament.ErrInsufficientCash, "balance %s, need %s", p.CashBalance, amount)
	}
	return nil
}

func (r *ParticipantRepository) CreditCash(ctx context.Context, tournamentID, userID string, amount decimal.Decimal) error {
	query, args, err := qb.Update(tableParticipants).
		SetExpr("cash_balance", "cash_balance + ?", amount).
		Where(qb.Eq("tournament_id", tournamentID), qb.Eq("user_id", userID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build credit cash query: %w", err)
	}
	n, err := execAffected(ctx, r.q, "credit participant cash", query, args...)
	if err != nil {
		return err
	}
	if n == 0 {
		return crerr.Wrapf(tournament.ErrParticipantNotFound, "tournament=%s user=%s", tournamentID, userID)
	}
	return nil
}
