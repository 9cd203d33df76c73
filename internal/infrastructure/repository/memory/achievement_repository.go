package memory

import (
	"context"
	"sort"
	"time"

	"github.com/riskibarqy/trading-tournament/internal/domain/achievement"
)

type achievementRepository struct {
	s *state
}

func (r achievementRepository) Award(_ context.Context, a achievement.Achievement) (bool, error) {
	held, ok := r.s.achievements[a.UserID]
	if !ok {
		held = make(map[achievement.Type]achievement.Achievement)
		r.s.achievements[a.UserID] = held
	}
	if _, exists := held[a.Type]; exists {
		return false, nil
	}
	held[a.Type] = a
	return true, nil
}

func (r achievementRepository) ListByUser(_ context.Context, userID string) ([]achievement.Achievement, error) {
	held := r.s.achievements[userID]
	out := make([]achievement.Achievement, 0, len(held))
	for _, a := range held {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AwardedAt.Equal(out[j].AwardedAt) {
			return out[i].AwardedAt.Before(out[j].AwardedAt)
		}
		return out[i].Type < out[j].Type
	})
	return out, nil
}

func (r achievementRepository) RecordResult(_ context.Context, userID string, won bool, at time.Time) (achievement.Stats, error) {
	st := r.s.stats[userID]
	st.UserID = userID
	st.TournamentsPlayed++
	if won {
		st.Wins++
	}
	st.UpdatedAt = at
	r.s.stats[userID] = st
	return st, nil
}

func (r achievementRepository) AddPoints(_ context.Context, userID string, points int, at time.Time) error {
	st := r.s.stats[userID]
	st.UserID = userID
	st.Points += points
	st.UpdatedAt = at
	r.s.stats[userID] = st
	return nil
}

func (r achievementRepository) GetStats(_ context.Context, userID string) (achievement.Stats, error) {
	st, ok := r.s.stats[userID]
	if !ok {
		return achievement.Stats{UserID: userID}, nil
	}
	return st, nil
}
