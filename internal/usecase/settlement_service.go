package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/trading-tournament/internal/domain/achievement"
	"github.com/riskibarqy/trading-tournament/internal/domain/settlement"
	"github.com/riskibarqy/trading-tournament/internal/domain/tournament"
	"github.com/riskibarqy/trading-tournament/internal/domain/uow"
	"github.com/riskibarqy/trading-tournament/internal/domain/wallet"
	"github.com/riskibarqy/trading-tournament/internal/platform/logging"
)

// SettlementEngine distributes a completed tournament's pot and awards
// achievements. It runs inside the caller's unit of work.
type SettlementEngine struct {
	ledger *Ledger
	logger *logging.Logger
}

func NewSettlementEngine(ledger *Ledger, logger *logging.Logger) *SettlementEngine {
	if logger == nil {
		logger = logging.Default()
	}
	return &SettlementEngine{ledger: ledger, logger: logger}
}

type SettlementResult struct {
	Record    settlement.Record
	Standings []settlement.Standing
	Awarded   []achievement.Achievement
}

// Settle writes the settlement record, pays out a positive pot and awards
// achievements for ranked whether or not money moved. A second call for the
// same tournament fails with settlement.ErrAlreadySettled before anything
// else is written.
func (e *SettlementEngine) Settle(ctx context.Context, repos uow.Repositories, t tournament.Tournament, ranked []settlement.Standing, at time.Time) (SettlementResult, error) {
	record := settlement.Record{
		TournamentID: t.ID,
		CreatorID:    t.CreatorID,
		Pot:          t.CurrentPot,
		Participants: len(ranked),
		SettledAt:    at,
	}
	distribute := t.CurrentPot.IsPositive() && len(ranked) > 0
	if distribute {
		split := settlement.SplitPot(t.CurrentPot)
		record.WinnerID = ranked[0].UserID
		record.WinnerAmount = split.WinnerAmount
		record.CreatorAmount = split.CreatorAmount
		record.Distributed = true
	}
	if err := repos.Settlements.Create(ctx, record); err != nil {
		return SettlementResult{}, fmt.Errorf("create settlement record: %w", err)
	}
	if err := repos.Settlements.SaveStandings(ctx, t.ID, ranked); err != nil {
		return SettlementResult{}, fmt.Errorf("save standings: %w", err)
	}

	result := SettlementResult{Record: record, Standings: ranked}
	if distribute {
		if record.WinnerAmount.IsPositive() {
			if err := e.ledger.Credit(ctx, repos, record.WinnerID, record.WinnerAmount, wallet.ReasonPrize, t.ID); err != nil {
				return SettlementResult{}, err
			}
		}
		if record.CreatorAmount.IsPositive() {
			if err := e.ledger.Credit(ctx, repos, record.CreatorID, record.CreatorAmount, wallet.ReasonCreatorShare, t.ID); err != nil {
				return SettlementResult{}, err
			}
		}
	} else {
		e.logger.InfoContext(ctx, "no payout: empty pot or no participants",
			"tournament_id", t.ID,
			"pot", t.CurrentPot.String(),
			"participants", len(ranked),
		)
	}

	awarded, err := e.award(ctx, repos, t, ranked, at)
	if err != nil {
		return SettlementResult{}, err
	}
	result.Awarded = awarded
	return result, nil
}

func (e *SettlementEngine) award(ctx context.Context, repos uow.Repositories, t tournament.Tournament, ranked []settlement.Standing, at time.Time) ([]achievement.Achievement, error) {
	awarded := make([]achievement.Achievement, 0)
	for _, standing := range ranked {
		won := standing.Rank == 1
		stats, err := repos.Achievements.RecordResult(ctx, standing.UserID, won, at)
		if err != nil {
			return nil, fmt.Errorf("record result for user %s: %w", standing.UserID, err)
		}

		types := make([]achievement.Type, 0, 6)
		if typ, ok := achievement.ForRank(standing.Rank); ok {
			types = append(types, typ)
		}
		types = append(types, achievement.ForPerformance(standing.TotalValue, t.StartingBalance)...)
		if won && achievement.Crosses(stats.Wins) {
			types = append(types, achievement.TypeTournamentLegend)
		}

		for _, typ := range types {
			a, ok := achievement.New(standing.UserID, typ, t.ID)
			if !ok {
				continue
			}
			a.AwardedAt = at
			inserted, err := repos.Achievements.Award(ctx, a)
			if err != nil {
				return nil, fmt.Errorf("award %s to user %s: %w", typ, standing.UserID, err)
			}
			if !inserted {
				continue
			}
			if err := repos.Achievements.AddPoints(ctx, standing.UserID, a.Points, at); err != nil {
				return nil, fmt.Errorf("add points to user %s: %w", standing.UserID, err)
			}
			awarded = append(awarded, a)
		}
	}
	return awarded, nil
}

// SettlementService completes one expired tournament. Quotes are fetched
// outside the transaction; the unit of work then locks the tournament row,
// re-ranks the current portfolios against those quotes, flips the status,
// pays out and awards. On failure the tournament stays active.
type SettlementService struct {
	store    uow.Manager
	machine  *StateMachine
	engine   *SettlementEngine
	valuator *PortfolioValuator
	events   EventPublisher
	logger   *logging.Logger
}

func NewSettlementService(
	store uow.Manager,
	machine *StateMachine,
	engine *SettlementEngine,
	valuator *PortfolioValuator,
	events EventPublisher,
	logger *logging.Logger,
) *SettlementService {
	if events == nil {
		events = NewNoopEventPublisher()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SettlementService{
		store:    store,
		machine:  machine,
		engine:   engine,
		valuator: valuator,
		events:   events,
		logger:   logger,
	}
}

func (s *SettlementService) Settle(ctx context.Context, tournamentID string) (SettlementResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SettlementService.Settle")
	defer span.End()

	tournamentID = strings.TrimSpace(tournamentID)
	if tournamentID == "" {
		return SettlementResult{}, fmt.Errorf("%w: tournament id is required", ErrInvalidInput)
	}

	var in valuationInput
	err := s.store.View(ctx, func(ctx context.Context, repos uow.Repositories) error {
		loaded, err := loadValuationInput(ctx, repos, tournamentID)
		in = loaded
		return err
	})
	if err != nil {
		return SettlementResult{}, classify(err)
	}
	if err := s.requireExpired(in.tournament); err != nil {
		return SettlementResult{}, err
	}

	marks := s.valuator.Price(ctx, tournamentID, in.lots)
	now := s.machine.Now()

	var result SettlementResult
	err = s.store.Do(ctx, func(ctx context.Context, repos uow.Repositories) error {
		current, err := repos.Tournaments.GetByIDForUpdate(ctx, tournamentID)
		if err != nil {
			return fmt.Errorf("lock tournament: %w", err)
		}
		if err := s.requireExpired(current); err != nil {
			return err
		}
		fresh, err := loadValuationInput(ctx, repos, tournamentID)
		if err != nil {
			return err
		}
		fresh.tournament = current
		if current.CurrentPlayers != len(fresh.participants) {
			return fmt.Errorf("%w: tournament %s counts %d players but has %d participants",
				ErrConcurrencyConflict, tournamentID, current.CurrentPlayers, len(fresh.participants))
		}
		ranked, ok := rankWithMarks(fresh, marks)
		if !ok {
			return fmt.Errorf("%w: tournament %s holds a symbol bought after quotes were fetched", ErrConcurrencyConflict, tournamentID)
		}
		if err := s.machine.Complete(ctx, repos, current, now); err != nil {
			return err
		}
		settled, err := s.engine.Settle(ctx, repos, current, ranked, now)
		if err != nil {
			return err
		}
		result = settled
		return nil
	})
	if err != nil {
		if errors.Is(err, settlement.ErrAlreadySettled) {
			return SettlementResult{}, fmt.Errorf("%w: %w", ErrConcurrencyConflict, err)
		}
		return SettlementResult{}, classify(err)
	}

	s.logger.InfoContext(ctx, "tournament settled",
		"tournament_id", tournamentID,
		"pot", result.Record.Pot.String(),
		"winner_id", result.Record.WinnerID,
		"distributed", result.Record.Distributed,
		"achievements", len(result.Awarded),
	)
	publish(ctx, s.events, s.logger, TournamentEvent{
		Type:         EventTournamentCompleted,
		TournamentID: tournamentID,
		UserID:       result.Record.WinnerID,
		Status:       string(tournament.StatusCompleted),
		Pot:          result.Record.Pot,
		OccurredAt:   now,
	})
	return result, nil
}

func (s *SettlementService) requireExpired(t tournament.Tournament) error {
	if t.Status != tournament.StatusActive {
		return fmt.Errorf("%w: tournament %s is %s", ErrWrongState, t.ID, t.Status)
	}
	if !s.machine.Expired(t, s.machine.Now()) {
		return fmt.Errorf("%w: tournament %s has not expired", ErrWrongState, t.ID)
	}
	return nil
}
