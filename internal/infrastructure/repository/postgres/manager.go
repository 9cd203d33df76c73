package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/trading-tournament/internal/domain/uow"
)

// Manager implements uow.Manager with one database transaction per call.
type Manager struct {
	db *sqlx.DB
}

func NewManager(db *sqlx.DB) *Manager {
	return &Manager{db: db}
}

func (m *Manager) Do(ctx context.Context, fn func(ctx context.Context, repos uow.Repositories) error) error {
	return m.run(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted}, fn)
}

func (m *Manager) View(ctx context.Context, fn func(ctx context.Context, repos uow.Repositories) error) error {
	return m.run(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}, fn)
}

func (m *Manager) run(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context, repos uow.Repositories) error) error {
	tx, err := m.db.BeginTxx(ctx, opts)
	if err != nil {
		return persistence("begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(ctx, repositories(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return persistence("commit transaction", err)
	}
	return nil
}

func repositories(q queryer) uow.Repositories {
	return uow.Repositories{
		Tournaments:  &TournamentRepository{q: q},
		Participants: &ParticipantRepository{q: q},
		Wallets:      &WalletRepository{q: q},
		Purchases:    &PurchaseRepository{q: q},
		Achievements: &AchievementRepository{q: q},
		Settlements:  &SettlementRepository{q: q},
	}
}
