package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/riskibarqy/trading-tournament/internal/domain/uow"
)

const uniqueViolation = pq.ErrorCode("23505")

// queryer is satisfied by both *sqlx.DB and *sqlx.Tx.
type queryer interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// isUniqueViolation reports a 23505 error, optionally restricted to one constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

// persistence marks err as a storage failure while keeping the driver error in the chain.
func persistence(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", uow.ErrPersistence, op, err)
}

func execAffected(ctx context.Context, q queryer, op, query string, args ...any) (int64, error) {
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, persistence(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, persistence(op+" rows affected", err)
	}
	return n, nil
}
