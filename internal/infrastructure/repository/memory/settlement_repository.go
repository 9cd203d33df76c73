package memory

import (
	"context"

	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/trading-tournament/internal/domain/settlement"
)

type settlementRepository struct {
	s *state
}

func (r settlementRepository) Create(_ context.Context, rec settlement.Record) error {
	if _, exists := r.s.settlements[rec.TournamentID]; exists {
		return crerr.Wrapf(settlement.ErrAlreadySettled, "tournament=%s", rec.TournamentID)
	}
	r.s.settlements[rec.TournamentID] = rec
	return nil
}

func (r settlementRepository) Get(_ context.Context, tournamentID string) (settlement.Record, error) {
	rec, ok := r.s.settlements[tournamentID]
	if !ok {
		return settlement.Record{}, crerr.Wrapf(settlement.ErrNotFound, "tournament=%s", tournamentID)
	}
	return rec, nil
}

func (r settlementRepository) SaveStandings(_ context.Context, tournamentID string, standings []settlement.Standing) error {
	r.s.standings[tournamentID] = append([]settlement.Standing(nil), standings...)
	return nil
}

func (r settlementRepository) ListStandings(_ context.Context, tournamentID string) ([]settlement.Standing, error) {
	return append([]settlement.Standing(nil), r.s.standings[tournamentID]...), nil
}
