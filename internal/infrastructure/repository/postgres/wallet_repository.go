package postgres

import (
	"context"
	"fmt"

	crerr "github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/riskibarqy/trading-tournament/internal/domain/wallet"
	qb "github.com/riskibarqy/trading-tournament/internal/platform/querybuilder"
)

type WalletRepository struct {
	q queryer
}

func (r *WalletRepository) Get(ctx context.Context, userID string) (wallet.Wallet, error) {
	query, args, err := qb.Select("user_id", "balance", "updated_at").From(tableWallets).
		Where(qb.Eq("user_id", userID)).
		ToSQL()
	if err != nil {
		return wallet.Wallet{}, fmt.Errorf("build get wallet query: %w", err)
	}
	var row walletTableModel
	if err := r.q.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return wallet.Wallet{UserID: userID}, nil
		}
		return wallet.Wallet{}, persistence("get wallet", err)
	}
	return wallet.Wallet{UserID: row.UserID, Balance: row.Balance, UpdatedAt: row.UpdatedAt.UTC()}, nil
}

func (r *WalletRepository) Debit(ctx context.Context, e wallet.Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	query, args, err := qb.Update(tableWallets).
		SetExpr("balance", "balance - ?", e.Amount).
		Set("updated_at", e.CreatedAt).
		Where(qb.Eq("user_id", e.UserID), qb.Expr("balance >= ?", e.Amount)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build debit wallet query: %w", err)
	}
	n, err := execAffected(ctx, r.q, "debit wallet", query, args...)
	if err != nil {
		return err
	}
	if n == 0 {
		w, err := r.Get(ctx, e.UserID)
		if err != nil {
			return err
		}
		return crerr.Wrapf(wallet.ErrInsufficientFunds, "balance %s, need %s", w.Balance, e.Amount)
	}
	e.Direction = wallet.DirectionDebit
	return r.journal(ctx, e)
}

func (r *WalletRepository) Credit(ctx context.Context, e wallet.Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	query, args, err := qb.InsertInto(tableWallets).
		Columns("user_id", "balance", "updated_at").
		Values(e.UserID, e.Amount, e.CreatedAt).
		Suffix("ON CONFLICT (user_id) DO UPDATE SET balance = wallets.balance + EXCLUDED.balance, updated_at = EXCLUDED.updated_at").
		ToSQL()
	if err != nil {
		return fmt.Errorf("build credit wallet query: %w", err)
	}
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return persistence("credit wallet", err)
	}
	e.Direction = wallet.DirectionCredit
	return r.journal(ctx, e)
}

func (r *WalletRepository) journal(ctx context.Context, e wallet.Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	query, args, err := qb.InsertModel(tableEntries, entryModelFrom(e), "")
	if err != nil {
		return fmt.Errorf("build insert wallet entry query: %w", err)
	}
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return persistence("insert wallet entry", err)
	}
	return nil
}

func (r *WalletRepository) ListEntries(ctx context.Context, userID string, limit int) ([]wallet.Entry, error) {
	b := qb.Select("id", "user_id", "direction", "amount", "reason", "tournament_id", "created_at").
		From(tableEntries).
		Where(qb.Eq("user_id", userID)).
		OrderBy("created_at DESC", "seq DESC")
	if limit > 0 {
		b.Limit(limit)
	}
	query, args, err := b.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list wallet entries query: %w", err)
	}
	var rows []entryTableModel
	if err := r.q.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, persistence("list wallet entries", err)
	}
	out := make([]wallet.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
