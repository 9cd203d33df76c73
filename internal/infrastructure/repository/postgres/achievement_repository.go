package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/trading-tournament/internal/domain/achievement"
	qb "github.com/riskibarqy/trading-tournament/internal/platform/querybuilder"
)

type AchievementRepository struct {
	q queryer
}

func (r *AchievementRepository) Award(ctx context.Context, a achievement.Achievement) (bool, error) {
	query, args, err := qb.InsertModel(tableAchievements, achievementTableModel{
		UserID:       a.UserID,
		Type:         string(a.Type),
		Tier:         string(a.Tier),
		TournamentID: a.TournamentID,
		Points:       a.Points,
		AwardedAt:    a.AwardedAt,
	}, "ON CONFLICT (user_id, type) DO NOTHING")
	if err != nil {
		return false, fmt.Errorf("build award achievement query: %w", err)
	}
	n, err := execAffected(ctx, r.q, "award achievement", query, args...)
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *AchievementRepository) ListByUser(ctx context.Context, userID string) ([]achievement.Achievement, error) {
	query, args, err := qb.Select("user_id", "type", "tier", "tournament_id", "points", "awarded_at").
		From(tableAchievements).
		Where(qb.Eq("user_id", userID)).
		OrderBy("awarded_at", "type").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list achievements query: %w", err)
	}
	var rows []achievementTableModel
	if err := r.q.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, persistence("list achievements", err)
	}
	out := make([]achievement.Achievement, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *AchievementRepository) RecordResult(ctx context.Context, userID string, won bool, at time.Time) (achievement.Stats, error) {
	wins := 0
	if won {
		wins = 1
	}
	query, args, err := qb.InsertInto(tableStats).
		Columns("user_id", "tournaments_played", "wins", "points", "updated_at").
		Values(userID, 1, wins, 0, at).
		Suffix(`ON CONFLICT (user_id) DO UPDATE SET
			tournaments_played = user_tournament_stats.tournaments_played + 1,
			wins = user_tournament_stats.wins + EXCLUDED.wins,
			updated_at = EXCLUDED.updated_at
		RETURNING user_id, tournaments_played, wins, points, updated_at`).
		ToSQL()
	if err != nil {
		return achievement.Stats{}, fmt.Errorf("build record result query: %w", err)
	}
	var row statsTableModel
	if err := r.q.GetContext(ctx, &row, query, args...); err != nil {
		return achievement.Stats{}, persistence("record tournament result", err)
	}
	return row.toDomain(), nil
}

func (r *AchievementRepository) AddPoints(ctx context.Context, userID string, points int, at time.Time) error {
	query, args, err := qb.InsertInto(tableStats).
		Columns("user_id", "tournaments_played", "wins", "points", "updated_at").
		Values(userID, 0, 0, points, at).
		Suffix(`ON CONFLICT (user_id) DO UPDATE SET
			points = user_tournament_stats.points + EXCLUDED.points,
			updated_at = EXCLUDED.updated_at`).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build add points query: %w", err)
	}
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return persistence("add achievement points", err)
	}
	return nil
}

func (r *AchievementRepository) GetStats(ctx context.Context, userID string) (achievement.Stats, error) {
	query, args, err := qb.Select("user_id", "tournaments_played", "wins", "points", "updated_at").
		From(tableStats).
		Where(qb.Eq("user_id", userID)).
		ToSQL()
	if err != nil {
		return achievement.Stats{}, fmt.Errorf("build get stats query: %w", err)
	}
	var row statsTableModel
	if err := r.q.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return achievement.Stats{UserID: userID}, nil
		}
		return achievement.Stats{}, persistence("get stats", err)
	}
	return row.toDomain(), nil
}
