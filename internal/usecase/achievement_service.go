package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/trading-tournament/internal/domain/achievement"
	"github.com/riskibarqy/trading-tournament/internal/domain/uow"
)

type AchievementProfile struct {
	Stats        achievement.Stats
	Achievements []achievement.Achievement
}

type AchievementService struct {
	store uow.Manager
}

func NewAchievementService(store uow.Manager) *AchievementService {
	return &AchievementService{store: store}
}

func (s *AchievementService) Catalog() []achievement.Definition {
	return achievement.Catalog()
}

func (s *AchievementService) Profile(ctx context.Context, userID string) (AchievementProfile, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AchievementService.Profile")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return AchievementProfile{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	var out AchievementProfile
	err := s.store.View(ctx, func(ctx context.Context, repos uow.Repositories) error {
		stats, err := repos.Achievements.GetStats(ctx, userID)
		if err != nil {
			return fmt.Errorf("get stats: %w", err)
		}
		items, err := repos.Achievements.ListByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("list achievements: %w", err)
		}
		out = AchievementProfile{Stats: stats, Achievements: items}
		return nil
	})
	if err != nil {
		return AchievementProfile{}, classify(err)
	}
	return out, nil
}
