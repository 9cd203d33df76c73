package postgres

import (
	"context"
	"fmt"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"

	"github.com/riskibarqy/trading-tournament/internal/domain/tournament"
	qb "github.com/riskibarqy/trading-tournament/internal/platform/querybuilder"
)

var tournamentColumns = []string{
	"id", "name", "code", "creator_id", "max_players", "current_players",
	"starting_balance", "timeframe", "status", "buy_in_amount", "current_pot",
	"scheduled_start_at", "created_at", "started_at", "ended_at", "cancellation_reason",
}

type TournamentRepository struct {
	q queryer
}

func (r *TournamentRepository) Create(ctx context.Context, t tournament.Tournament) error {
	query, args, err := qb.InsertModel(tableTournaments, tournamentModelFrom(t), "")
	if err != nil {
		return fmt.Errorf("build insert tournament query: %w", err)
	}
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err, constraintTournamentCode) {
			return crerr.Wrapf(tournament.ErrDuplicateCode, "code=%s", t.Code)
		}
		return persistence("insert tournament", err)
	}
	return nil
}

func (r *TournamentRepository) GetByID(ctx context.Context, id string) (tournament.Tournament, error) {
	return r.getOne(ctx, "get tournament by id", qb.Select(tournamentColumns...).From(tableTournaments).Where(qb.Eq("id", id)))
}

func (r *TournamentRepository) GetByIDForUpdate(ctx context.Context, id string) (tournament.Tournament, error) {
	return r.getOne(ctx, "lock tournament for update", qb.Select(tournamentColumns...).From(tableTournaments).Where(qb.Eq("id", id)).ForUpdate())
}

func (r *TournamentRepository) GetByIDForShare(ctx context.Context, id string) (tournament.Tournament, error) {
	return r.getOne(ctx, "lock tournament for share", qb.Select(tournamentColumns...).From(tableTournaments).Where(qb.Eq("id", id)).ForShare())
}

func (r *TournamentRepository) GetByCode(ctx context.Context, code string) (tournament.Tournament, error) {
	return r.getOne(ctx, "get tournament by code", qb.Select(tournamentColumns...).From(tableTournaments).Where(qb.Eq("code", code)))
}

func (r *TournamentRepository) getOne(ctx context.Context, op string, b *qb.SelectBuilder) (tournament.Tournament, error) {
	query, args, err := b.ToSQL()
	if err != nil {
		return tournament.Tournament{}, fmt.Errorf("build %s query: %w", op, err)
	}

	var row tournamentTableModel
	if err := r.q.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return tournament.Tournament{}, crerr.Wrapf(tournament.ErrNotFound, "%s", op)
		}
		return tournament.Tournament{}, persistence(op, err)
	}
	return row.toDomain(), nil
}

func (r *TournamentRepository) List(ctx context.Context, filter tournament.ListFilter) ([]tournament.Tournament, error) {
	b := qb.Select(tournamentColumns...).From(tableTournaments).OrderBy("created_at DESC", "id DESC")
	if filter.Status != "" {
		b.Where(qb.Eq("status", string(filter.Status)))
	}
	if filter.CreatorID != "" {
		b.Where(qb.Eq("creator_id", filter.CreatorID))
	}
	if filter.Limit > 0 {
		b.Limit(filter.Limit)
	}
	return r.selectMany(ctx, "list tournaments", b)
}

func (r *TournamentRepository) ListDueForStart(ctx context.Context, now time.Time) ([]tournament.Tournament, error) {
	b := qb.Select(tournamentColumns...).From(tableTournaments).
		Where(
			qb.Eq("status", string(tournament.StatusWaiting)),
			qb.Expr("(scheduled_start_at IS NULL OR scheduled_start_at <= ?)", now),
		).
		OrderBy("created_at", "id")
	return r.selectMany(ctx, "list tournaments due for start", b)
}

func (r *TournamentRepository) ListActive(ctx context.Context) ([]tournament.Tournament, error) {
	b := qb.Select(tournamentColumns...).From(tableTournaments).
		Where(qb.Eq("status", string(tournament.StatusActive))).
		OrderBy("created_at", "id")
	return r.selectMany(ctx, "list active tournaments", b)
}

func (r *TournamentRepository) selectMany(ctx context.Context, op string, b *qb.SelectBuilder) ([]tournament.Tournament, error) {
	query, args, err := b.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", op, err)
	}
	var rows []tournamentTableModel
	if err := r.q.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, persistence(op, err)
	}
	out := make([]tournament.Tournament, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *TournamentRepository) Activate(ctx context.Context, id string, startedAt time.Time) error {
	b := qb.Update(tableTournaments).
		Set("status", string(tournament.StatusActive)).
		Set("started_at", startedAt)
	return r.transition(ctx, id, tournament.StatusWaiting, b)
}

func (r *TournamentRepository) Cancel(ctx context.Context, id, reason string, endedAt time.Time) error {
	b := qb.Update(tableTournaments).
		Set("status", string(tournament.StatusCancelled)).
		Set("ended_at", endedAt).
		Set("cancellation_reason", reason)
	return r.transition(ctx, id, tournament.StatusWaiting, b)
}

func (r *TournamentRepository) Complete(ctx context.Context, id string, endedAt time.Time) error {
	b := qb.Update(tableTournaments).
		Set("status", string(tournament.StatusCompleted)).
		Set("ended_at", endedAt)
	return r.transition(ctx, id, tournament.StatusActive, b)
}

// transition applies b only while the row is still in status from.
func (r *TournamentRepository) transition(ctx context.Context, id string, from tournament.Status, b *qb.UpdateBuilder) error {
	query, args, err := b.Where(qb.Eq("id", id), qb.Eq("status", string(from))).ToSQL()
	if err != nil {
		return fmt.Errorf("build tournament transition query: %w", err)
	}
	n, err := execAffected(ctx, r.q, "update tournament status", query, args...)
	if err != nil {
		return err
	}
	if n == 0 {
		return r.explainMiss(ctx, id, func(t tournament.Tournament) error {
			return crerr.Wrapf(tournament.ErrConcurrencyConflict, "tournament %s is %s, expected %s", id, t.Status, from)
		})
	}
	return nil
}

func (r *TournamentRepository) ReserveSeat(ctx context.Context, id string) error {
	query, args, err := qb.Update(tableTournaments).
		SetExpr("current_players", "current_players + 1").
		Where(
			qb.Eq("id", id),
			qb.In("status", []string{string(tournament.StatusWaiting), string(tournament.StatusActive)}),
			qb.Expr("current_players < max_players"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build reserve seat query: %w", err)
	}
	n, err := execAffected(ctx, r.q, "reserve seat", query, args...)
	if err != nil {
		return err
	}
	if n == 0 {
		return r.explainMiss(ctx, id, func(t tournament.Tournament) error {
			if !t.Joinable() {
				return crerr.Wrapf(tournament.ErrWrongState, "tournament %s is %s", id, t.Status)
			}
			return crerr.Wrapf(tournament.ErrTournamentFull, "tournament %s has %d/%d players", id, t.CurrentPlayers, t.MaxPlayers)
		})
	}
	return nil
}

func (r *TournamentRepository) ReleaseSeat(ctx context.Context, id string) error {
	query, args, err := qb.Update(tableTournaments).
		SetExpr("current_players", "current_players - 1").
		Where(
			qb.Eq("id", id),
			qb.Eq("status", string(tournament.StatusWaiting)),
			qb.Expr("current_players > 1"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build release seat query: %w", err)
	}
	n, err := execAffected(ctx, r.q, "release seat", query, args...)
	if err != nil {
		return err
	}
	if n == 0 {
		return r.explainMiss(ctx, id, func(tournament.Tournament) error {
			return crerr.Wrapf(tournament.ErrConcurrencyConflict, "cannot release seat of tournament %s", id)
		})
	}
	return nil
}

func (r *TournamentRepository) AdjustPot(ctx context.Context, id string, delta decimal.Decimal) error {
	query, args, err := qb.Update(tableTournaments).
		SetExpr("current_pot", "current_pot + ?", delta).
		Where(
			qb.Eq("id", id),
			qb.In("status", []string{string(tournament.StatusWaiting), string(tournament.StatusActive)}),
			qb.Expr("current_pot + ? >= 0", delta),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build adjust pot query: %w", err)
	}
	n, err := execAffected(ctx, r.q, "adjust pot", query, args...)
	if err != nil {
		return err
	}
	if n == 0 {
		return r.explainMiss(ctx, id, func(tournament.Tournament) error {
			return crerr.Wrapf(tournament.ErrConcurrencyConflict, "cannot adjust pot of tournament %s by %s", id, delta)
		})
	}
	return nil
}

// explainMiss turns a zero-row conditional update into ErrNotFound or the
// error built by conflict from the current row.
func (r *TournamentRepository) explainMiss(ctx context.Context, id string, conflict func(tournament.Tournament) error) error {
	t, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return conflict(t)
}
