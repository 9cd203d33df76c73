package memory

import (
	"context"
	"sort"

	crerr "github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"

	"github.com/riskibarqy/trading-tournament/internal/domain/tournament"
)

type participantRepository struct {
	s *state
}

func (r participantRepository) Add(_ context.Context, p tournament.Participant) error {
	members, ok := r.s.participants[p.TournamentID]
	if !ok {
		members = make(map[string]tournament.Participant)
		r.s.participants[p.TournamentID] = members
	}
	if _, exists := members[p.UserID]; exists {
		return tournament.ErrAlreadyParticipating
	}
	members[p.UserID] = p
	return nil
}

func (r participantRepository) Get(_ context.Context, tournamentID, userID string) (tournament.Participant, error) {
	p, ok := r.s.participants[tournamentID][userID]
	if !ok {
		return tournament.Participant{}, crerr.Wrapf(tournament.ErrParticipantNotFound, "tournament=%s user=%s", tournamentID, userID)
	}
	return p, nil
}

func (r participantRepository) ListByTournament(_ context.Context, tournamentID string) ([]tournament.Participant, error) {
	members := r.s.participants[tournamentID]
	out := make([]tournament.Participant, 0, len(members))
	for _, p := range members {
		out = append(out, p)
	}
	sortByJoined(out)
	return out, nil
}

func (r participantRepository) ListByUser(_ context.Context, userID string) ([]tournament.Participant, error) {
	out := make([]tournament.Participant, 0)
	for _, members := range r.s.participants {
		if p, ok := members[userID]; ok {
			out = append(out, p)
		}
	}
	sortByJoined(out)
	return out, nil
}

func (r participantRepository) Remove(_ context.Context, tournamentID, userID string) error {
	members := r.s.participants[tournamentID]
	if _, ok := members[userID]; !ok {
		return crerr.Wrapf(tournament.ErrParticipantNotFound, "tournament=%s user=%s", tournamentID, userID)
	}
	delete(members, userID)
	return nil
}

func (r participantRepository) DebitCash(_ context.Context, tournamentID, userID string, amount decimal.Decimal) error {
	p, ok := r.s.participants[tournamentID][userID]
	if !ok {
		return crerr.Wrapf(tournament.ErrParticipantNotFound, "tournament=%s user=%s", tournamentID, userID)
	}
	if p.CashBalance.LessThan(amount) {
		return crerr.Wrapf(tournament.ErrInsufficientCash, "balance %s, need %s", p.CashBalance, amount)
	}
	p.CashBalance = p.CashBalance.Sub(amount)
	r.s.participants[tournamentID][userID] = p
	return nil
}

func (r participantRepository) CreditCash(_ context.Context, tournamentID, userID string, amount decimal.Decimal) error {
	p, ok := r.s.participants[tournamentID][userID]
	if !ok {
		return crerr.Wrapf(tournament.ErrParticipantNotFound, "tournament=%s user=%s", tournamentID, userID)
	}
	p.CashBalance = p.CashBalance.Add(amount)
	r.s.participants[tournamentID][userID] = p
	return nil
}

func sortByJoined(items []tournament.Participant) {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].JoinedAt.Equal(items[j].JoinedAt) {
			return items[i].JoinedAt.Before(items[j].JoinedAt)
		}
		return items[i].UserID < items[j].UserID
	})
}
