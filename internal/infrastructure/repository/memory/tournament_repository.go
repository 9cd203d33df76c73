package memory

import (
	"context"
	"sort"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"

	"github.com/riskibarqy/trading-tournament/internal/domain/tournament"
)

type tournamentRepository struct {
	s *state
}

func (r tournamentRepository) Create(_ context.Context, t tournament.Tournament) error {
	if _, exists := r.s.tournaments[t.ID]; exists {
		return crerr.Newf("tournament %s already exists", t.ID)
	}
	if _, taken := r.s.codes[t.Code]; taken {
		return tournament.ErrDuplicateCode
	}
	r.s.tournaments[t.ID] = t
	r.s.codes[t.Code] = t.ID
	return nil
}

func (r tournamentRepository) GetByID(_ context.Context, id string) (tournament.Tournament, error) {
	t, ok := r.s.tournaments[id]
	if !ok {
		return tournament.Tournament{}, crerr.Wrapf(tournament.ErrNotFound, "id=%s", id)
	}
	return t, nil
}

// GetByIDForUpdate and GetByIDForShare need no extra locking here: every unit
// of work already holds the store mutex.
func (r tournamentRepository) GetByIDForUpdate(ctx context.Context, id string) (tournament.Tournament, error) {
	return r.GetByID(ctx, id)
}

func (r tournamentRepository) GetByIDForShare(ctx context.Context, id string) (tournament.Tournament, error) {
	return r.GetByID(ctx, id)
}

func (r tournamentRepository) GetByCode(ctx context.Context, code string) (tournament.Tournament, error) {
	id, ok := r.s.codes[code]
	if !ok {
		return tournament.Tournament{}, crerr.Wrapf(tournament.ErrNotFound, "code=%s", code)
	}
	return r.GetByID(ctx, id)
}

func (r tournamentRepository) List(_ context.Context, filter tournament.ListFilter) ([]tournament.Tournament, error) {
	out := make([]tournament.Tournament, 0)
	for _, t := range r.s.tournaments {
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.CreatorID != "" && t.CreatorID != filter.CreatorID {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r tournamentRepository) ListDueForStart(_ context.Context, now time.Time) ([]tournament.Tournament, error) {
	out := make([]tournament.Tournament, 0)
	for _, t := range r.s.tournaments {
		if t.Status != tournament.StatusWaiting {
			continue
		}
		if t.ScheduledStartAt != nil && t.ScheduledStartAt.After(now) {
			continue
		}
		out = append(out, t)
	}
	sortByCreated(out)
	return out, nil
}

func (r tournamentRepository) ListActive(_ context.Context) ([]tournament.Tournament, error) {
	out := make([]tournament.Tournament, 0)
	for _, t := range r.s.tournaments {
		if t.Status == tournament.StatusActive {
			out = append(out, t)
		}
	}
	sortByCreated(out)
	return out, nil
}

func (r tournamentRepository) Activate(_ context.Context, id string, startedAt time.Time) error {
	return r.transition(id, tournament.StatusWaiting, tournament.StatusActive, func(t *tournament.Tournament) {
		t.StartedAt = &startedAt
	})
}

func (r tournamentRepository) Cancel(_ context.Context, id, reason string, endedAt time.Time) error {
	return r.transition(id, tournament.StatusWaiting, tournament.StatusCancelled, func(t *tournament.Tournament) {
		t.EndedAt = &endedAt
		t.CancellationReason = reason
	})
}

func (r tournamentRepository) Complete(_ context.Context, id string, endedAt time.Time) error {
	return r.transition(id, tournament.StatusActive, tournament.StatusCompleted, func(t *tournament.Tournament) {
		t.EndedAt = &endedAt
	})
}

func (r tournamentRepository) transition(id string, from, to tournament.Status, apply func(*tournament.Tournament)) error {
	t, ok := r.s.tournaments[id]
	if !ok {
		return crerr.Wrapf(tournament.ErrNotFound, "id=%s", id)
	}
	if t.Status != from {
		return crerr.Wrapf(tournament.ErrConcurrencyConflict, "tournament %s is %s, expected %s", id, t.Status, from)
	}
	t.Status = to
	apply(&t)
	r.s.tournaments[id] = t
	return nil
}

func (r tournamentRepository) ReserveSeat(_ context.Context, id string) error {
	t, ok := r.s.tournaments[id]
	if !ok {
		return crerr.Wrapf(tournament.ErrNotFound, "id=%s", id)
	}
	if !t.Joinable() {
		return crerr.Wrapf(tournament.ErrWrongState, "tournament %s is %s", id, t.Status)
	}
	if t.Full() {
		return crerr.Wrapf(tournament.ErrTournamentFull, "tournament %s has %d/%d players", id, t.CurrentPlayers, t.MaxPlayers)
	}
	t.CurrentPlayers++
	r.s.tournaments[id] = t
	return nil
}

func (r tournamentRepository) ReleaseSeat(_ context.Context, id string) error {
	t, ok := r.s.tournaments[id]
	if !ok {
		return crerr.Wrapf(tournament.ErrNotFound, "id=%s", id)
	}
	if t.Status != tournament.StatusWaiting || t.CurrentPlayers <= 1 {
		return crerr.Wrapf(tournament.ErrConcurrencyConflict, "cannot release seat of tournament %s", id)
	}
	t.CurrentPlayers--
	r.s.tournaments[id] = t
	return nil
}

func (r tournamentRepository) AdjustPot(_ context.Context, id string, delta decimal.Decimal) error {
	t, ok := r.s.tournaments[id]
	if !ok {
		return crerr.Wrapf(tournament.ErrNotFound, "id=%s", id)
	}
	next := t.CurrentPot.Add(delta)
	if t.Status.Terminal() || next.IsNegative() {
		return crerr.Wrapf(tournament.ErrConcurrencyConflict, "cannot adjust pot of tournament %s by %s", id, delta)
	}
	t.CurrentPot = next
	r.s.tournaments[id] = t
	return nil
}

func sortByCreated(items []tournament.Tournament) {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].ID < items[j].ID
	})
}
