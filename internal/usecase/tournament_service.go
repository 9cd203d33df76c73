package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/riskibarqy/trading-tournament/internal/domain/tournament"
	"github.com/riskibarqy/trading-tournament/internal/domain/uow"
	"github.com/riskibarqy/trading-tournament/internal/domain/wallet"
	"github.com/riskibarqy/trading-tournament/internal/platform/id"
	"github.com/riskibarqy/trading-tournament/internal/platform/logging"
)

const (
	maxNameLength       = 100
	codeAttempts        = 5
	defaultListLimit    = 50
	maxListLimit        = 200
	defaultTimeframeStr = "4 weeks"
)

type CreateTournamentInput struct {
	Name             string
	MaxPlayers       int
	StartingBalance  decimal.Decimal
	Timeframe        string
	BuyInAmount      decimal.Decimal
	ScheduledStartAt *time.Time
}

type TournamentService struct {
	store   uow.Manager
	machine *StateMachine
	ledger  *Ledger
	ids     id.Generator
	codes   id.CodeGenerator
	events  EventPublisher
	logger  *logging.Logger
}

func NewTournamentService(
	store uow.Manager,
	machine *StateMachine,
	ledger *Ledger,
	ids id.Generator,
	codes id.CodeGenerator,
	events EventPublisher,
	logger *logging.Logger,
) *TournamentService {
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	if codes == nil {
		codes = id.NewRandomCodeGenerator(tournament.CodeLength)
	}
	if events == nil {
		events = NewNoopEventPublisher()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &TournamentService{
		store:   store,
		machine: machine,
		ledger:  ledger,
		ids:     ids,
		codes:   codes,
		events:  events,
		logger:  logger,
	}
}

// Create opens a tournament with the creator as its first participant. The
// creator's buy-in debit, the pot, the tournament row and the participant row
// commit together. Without a scheduled start the tournament is active at once.
func (s *TournamentService) Create(ctx context.Context, creatorID string, input CreateTournamentInput) (tournament.Tournament, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.Create")
	defer span.End()

	creatorID = strings.TrimSpace(creatorID)
	if creatorID == "" {
		return tournament.Tournament{}, fmt.Errorf("%w: creator id is required", ErrInvalidInput)
	}
	now := s.machine.Now()
	input, err := normalizeCreateInput(input, now)
	if err != nil {
		return tournament.Tournament{}, err
	}

	tournamentID, err := s.ids.NewID()
	if err != nil {
		return tournament.Tournament{}, fmt.Errorf("generate tournament id: %w", err)
	}

	t := tournament.Tournament{
		ID:               tournamentID,
		Name:             input.Name,
		CreatorID:        creatorID,
		MaxPlayers:       input.MaxPlayers,
		CurrentPlayers:   1,
		StartingBalance:  input.StartingBalance,
		Timeframe:        input.Timeframe,
		Status:           tournament.StatusWaiting,
		BuyInAmount:      input.BuyInAmount,
		CurrentPot:       input.BuyInAmount,
		ScheduledStartAt: input.ScheduledStartAt,
		CreatedAt:        now,
	}
	if t.ScheduledStartAt == nil {
		t.Status = tournament.StatusActive
		startedAt := now
		t.StartedAt = &startedAt
	}

	for attempt := 1; ; attempt++ {
		code, err := s.codes.NewCode()
		if err != nil {
			return tournament.Tournament{}, fmt.Errorf("generate tournament code: %w", err)
		}
		t.Code = code

		err = s.store.Do(ctx, func(ctx context.Context, repos uow.Repositories) error {
			if t.HasBuyIn() {
				if err := s.ledger.Debit(ctx, repos, creatorID, t.BuyInAmount, wallet.ReasonBuyIn, t.ID); err != nil {
					return err
				}
			}
			if err := repos.Tournaments.Create(ctx, t); err != nil {
				return fmt.Errorf("create tournament: %w", err)
			}
			if err := repos.Participants.Add(ctx, tournament.Participant{
				TournamentID: t.ID,
				UserID:       creatorID,
				CashBalance:  t.StartingBalance,
				JoinedAt:     now,
			}); err != nil {
				return fmt.Errorf("add creator as participant: %w", err)
			}
			return nil
		})
		if err == nil {
			break
		}
		if errors.Is(err, tournament.ErrDuplicateCode) && attempt < codeAttempts {
			s.logger.DebugContext(ctx, "tournament code collision, retrying", "attempt", attempt)
			continue
		}
		return tournament.Tournament{}, classify(err)
	}

	s.logger.InfoContext(ctx, "tournament created",
		"tournament_id", t.ID,
		"creator_id", creatorID,
		"status", string(t.Status),
		"buy_in", t.BuyInAmount.String(),
	)
	publish(ctx, s.events, s.logger, TournamentEvent{
		Type:         EventTournamentCreated,
		TournamentID: t.ID,
		UserID:       creatorID,
		Status:       string(t.Status),
		Pot:          t.CurrentPot,
		OccurredAt:   now,
	})
	return t, nil
}

func normalizeCreateInput(input CreateTournamentInput, now time.Time) (CreateTournamentInput, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return input, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if len(input.Name) > maxNameLength {
		return input, fmt.Errorf("%w: name must be at most %d characters", ErrInvalidInput, maxNameLength)
	}
	if input.MaxPlayers < tournament.MinPlayersToStart || input.MaxPlayers > tournament.MaxPlayersLimit {
		return input, fmt.Errorf("%w: max players must be between %d and %d", ErrInvalidInput, tournament.MinPlayersToStart, tournament.MaxPlayersLimit)
	}
	if !input.StartingBalance.IsPositive() {
		return input, fmt.Errorf("%w: starting balance must be positive", ErrInvalidInput)
	}
	input.StartingBalance = input.StartingBalance.Round(2)

	input.Timeframe = strings.TrimSpace(input.Timeframe)
	if input.Timeframe == "" {
		input.Timeframe = defaultTimeframeStr
	}
	if !tournament.ValidTimeframe(input.Timeframe) {
		return input, fmt.Errorf("%w: timeframe %q is not a duration such as \"2 weeks\"", ErrInvalidInput, input.Timeframe)
	}

	if input.BuyInAmount.IsNegative() {
		return input, fmt.Errorf("%w: buy-in must not be negative", ErrInvalidInput)
	}
	input.BuyInAmount = input.BuyInAmount.Round(2)

	if input.ScheduledStartAt != nil {
		at := input.ScheduledStartAt.UTC()
		if !at.After(now) {
			return input, fmt.Errorf("%w: scheduled start must be in the future", ErrInvalidInput)
		}
		input.ScheduledStartAt = &at
	}
	return input, nil
}

// Join adds userID to a waiting or active tournament, escrowing the buy-in.
func (s *TournamentService) Join(ctx context.Context, tournamentID, userID string) (tournament.Participant, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.Join")
	defer span.End()

	tournamentID = strings.TrimSpace(tournamentID)
	if tournamentID == "" {
		return tournament.Participant{}, fmt.Errorf("%w: tournament id is required", ErrInvalidInput)
	}
	return s.join(ctx, userID, func(ctx context.Context, repos uow.Repositories) (tournament.Tournament, error) {
		return repos.Tournaments.GetByID(ctx, tournamentID)
	})
}

// JoinByCode is Join addressed by the tournament's share code.
func (s *TournamentService) JoinByCode(ctx context.Context, code, userID string) (tournament.Participant, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.JoinByCode")
	defer span.End()

	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return tournament.Participant{}, fmt.Errorf("%w: tournament code is required", ErrInvalidInput)
	}
	return s.join(ctx, userID, func(ctx context.Context, repos uow.Repositories) (tournament.Tournament, error) {
		return repos.Tournaments.GetByCode(ctx, code)
	})
}

type tournamentLoader func(ctx context.Context, repos uow.Repositories) (tournament.Tournament, error)

func (s *TournamentService) join(ctx context.Context, userID string, load tournamentLoader) (tournament.Participant, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return tournament.Participant{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	now := s.machine.Now()
	var (
		joined  tournament.Participant
		current tournament.Tournament
	)
	err := s.store.Do(ctx, func(ctx context.Context, repos uow.Repositories) error {
		t, err := load(ctx, repos)
		if err != nil {
			return fmt.Errorf("get tournament: %w", err)
		}
		if _, err := repos.Participants.Get(ctx, t.ID, userID); err == nil {
			return fmt.Errorf("%w: user %s in tournament %s", ErrAlreadyParticipating, userID, t.ID)
		} else if !errors.Is(err, tournament.ErrParticipantNotFound) {
			return fmt.Errorf("get participant: %w", err)
		}
		if !t.Joinable() {
			return fmt.Errorf("%w: tournament %s is %s", ErrWrongState, t.ID, t.Status)
		}
		if s.machine.Expired(t, now) {
			return fmt.Errorf("%w: tournament %s has expired", ErrWrongState, t.ID)
		}
		if err := repos.Tournaments.ReserveSeat(ctx, t.ID); err != nil {
			return err
		}
		if err := s.ledger.EscrowBuyIn(ctx, repos, t, userID); err != nil {
			return err
		}
		joined = tournament.Participant{
			TournamentID: t.ID,
			UserID:       userID,
			CashBalance:  t.StartingBalance,
			JoinedAt:     now,
		}
		if err := repos.Participants.Add(ctx, joined); err != nil {
			return fmt.Errorf("add participant: %w", err)
		}
		current, err = repos.Tournaments.GetByID(ctx, t.ID)
		if err != nil {
			return fmt.Errorf("reload tournament: %w", err)
		}
		return nil
	})
	if err != nil {
		return tournament.Participant{}, classify(err)
	}

	s.logger.InfoContext(ctx, "participant joined",
		"tournament_id", current.ID,
		"user_id", userID,
		"players", current.CurrentPlayers,
		"pot", current.CurrentPot.String(),
	)
	publish(ctx, s.events, s.logger, TournamentEvent{
		Type:         EventParticipantJoined,
		TournamentID: current.ID,
		UserID:       userID,
		Status:       string(current.Status),
		Pot:          current.CurrentPot,
		OccurredAt:   now,
	})
	return joined, nil
}

// StartEarly lets the creator activate a waiting tournament that already has
// enough players.
func (s *TournamentService) StartEarly(ctx context.Context, tournamentID, requesterID string) (tournament.Tournament, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.StartEarly")
	defer span.End()

	now := s.machine.Now()
	t, err := s.mutateAsCreator(ctx, tournamentID, requesterID, func(ctx context.Context, repos uow.Repositories, t tournament.Tournament) error {
		if t.Status != tournament.StatusWaiting {
			return fmt.Errorf("%w: tournament %s is %s", ErrWrongState, t.ID, t.Status)
		}
		if t.CurrentPlayers < tournament.MinPlayersToStart {
			return fmt.Errorf("%w: tournament %s needs at least %d players", ErrWrongState, t.ID, tournament.MinPlayersToStart)
		}
		return s.machine.Activate(ctx, repos, t, now)
	})
	if err != nil {
		return tournament.Tournament{}, err
	}

	s.logger.InfoContext(ctx, "tournament started early", "tournament_id", t.ID, "players", t.CurrentPlayers)
	publish(ctx, s.events, s.logger, TournamentEvent{
		Type:         EventTournamentStarted,
		TournamentID: t.ID,
		UserID:       requesterID,
		Status:       string(t.Status),
		Pot:          t.CurrentPot,
		OccurredAt:   now,
	})
	return t, nil
}

// Cancel lets the creator call off a waiting tournament; every buy-in is refunded.
func (s *TournamentService) Cancel(ctx context.Context, tournamentID, requesterID string) (tournament.Tournament, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.Cancel")
	defer span.End()

	now := s.machine.Now()
	t, err := s.mutateAsCreator(ctx, tournamentID, requesterID, func(ctx context.Context, repos uow.Repositories, t tournament.Tournament) error {
		if t.Status != tournament.StatusWaiting {
			return fmt.Errorf("%w: tournament %s is %s", ErrWrongState, t.ID, t.Status)
		}
		return s.machine.CancelByCreator(ctx, repos, t, now)
	})
	if err != nil {
		return tournament.Tournament{}, err
	}

	s.logger.InfoContext(ctx, "tournament cancelled by creator", "tournament_id", t.ID)
	publish(ctx, s.events, s.logger, TournamentEvent{
		Type:         EventTournamentCancelled,
		TournamentID: t.ID,
		UserID:       requesterID,
		Status:       string(t.Status),
		Pot:          t.CurrentPot,
		Reason:       t.CancellationReason,
		OccurredAt:   now,
	})
	return t, nil
}

// Kick removes a participant from a waiting tournament, refunding their
// buy-in and discarding their trades.
func (s *TournamentService) Kick(ctx context.Context, tournamentID, participantID, requesterID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.Kick")
	defer span.End()

	participantID = strings.TrimSpace(participantID)
	if participantID == "" {
		return fmt.Errorf("%w: participant id is required", ErrInvalidInput)
	}

	now := s.machine.Now()
	t, err := s.mutateAsCreator(ctx, tournamentID, requesterID, func(ctx context.Context, repos uow.Repositories, t tournament.Tournament) error {
		if t.Status != tournament.StatusWaiting {
			return fmt.Errorf("%w: tournament %s is %s", ErrWrongState, t.ID, t.Status)
		}
		if t.IsCreator(participantID) {
			return fmt.Errorf("%w: the creator cannot be kicked", ErrInvalidInput)
		}
		if _, err := repos.Participants.Get(ctx, t.ID, participantID); err != nil {
			return fmt.Errorf("get participant: %w", err)
		}
		if err := s.ledger.RefundBuyIn(ctx, repos, t, participantID); err != nil {
			return err
		}
		if err := repos.Tournaments.ReleaseSeat(ctx, t.ID); err != nil {
			return fmt.Errorf("release seat: %w", err)
		}
		if err := repos.Purchases.DeleteByParticipant(ctx, t.ID, participantID); err != nil {
			return fmt.Errorf("delete purchases: %w", err)
		}
		if err := repos.Participants.Remove(ctx, t.ID, participantID); err != nil {
			return fmt.Errorf("remove participant: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "participant kicked", "tournament_id", t.ID, "user_id", participantID, "by", requesterID)
	publish(ctx, s.events, s.logger, TournamentEvent{
		Type:         EventParticipantKicked,
		TournamentID: t.ID,
		UserID:       participantID,
		Status:       string(t.Status),
		Pot:          t.CurrentPot,
		OccurredAt:   now,
	})
	return nil
}

type creatorMutation func(ctx context.Context, repos uow.Repositories, t tournament.Tournament) error

// mutateAsCreator loads the tournament inside a unit of work, checks that
// requesterID created it, runs fn and returns the tournament as committed.
func (s *TournamentService) mutateAsCreator(ctx context.Context, tournamentID, requesterID string, fn creatorMutation) (tournament.Tournament, error) {
	tournamentID = strings.TrimSpace(tournamentID)
	requesterID = strings.TrimSpace(requesterID)
	if tournamentID == "" {
		return tournament.Tournament{}, fmt.Errorf("%w: tournament id is required", ErrInvalidInput)
	}
	if requesterID == "" {
		return tournament.Tournament{}, fmt.Errorf("%w: requester id is required", ErrInvalidInput)
	}

	var out tournament.Tournament
	err := s.store.Do(ctx, func(ctx context.Context, repos uow.Repositories) error {
		t, err := repos.Tournaments.GetByID(ctx, tournamentID)
		if err != nil {
			return fmt.Errorf("get tournament: %w", err)
		}
		if !t.IsCreator(requesterID) {
			return fmt.Errorf("%w: user %s did not create tournament %s", ErrNotCreator, requesterID, t.ID)
		}
		if err := fn(ctx, repos, t); err != nil {
			return err
		}
		out, err = repos.Tournaments.GetByID(ctx, tournamentID)
		if err != nil {
			return fmt.Errorf("reload tournament: %w", err)
		}
		return nil
	})
	if err != nil {
		return tournament.Tournament{}, classify(err)
	}
	return out, nil
}

func (s *TournamentService) Get(ctx context.Context, tournamentID string) (tournament.Tournament, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.Get")
	defer span.End()

	tournamentID = strings.TrimSpace(tournamentID)
	if tournamentID == "" {
		return tournament.Tournament{}, fmt.Errorf("%w: tournament id is required", ErrInvalidInput)
	}
	var out tournament.Tournament
	err := s.store.View(ctx, func(ctx context.Context, repos uow.Repositories) error {
		t, err := repos.Tournaments.GetByID(ctx, tournamentID)
		out = t
		return err
	})
	if err != nil {
		return tournament.Tournament{}, classify(err)
	}
	return out, nil
}

func (s *TournamentService) GetByCode(ctx context.Context, code string) (tournament.Tournament, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.GetByCode")
	defer span.End()

	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return tournament.Tournament{}, fmt.Errorf("%w: tournament code is required", ErrInvalidInput)
	}
	var out tournament.Tournament
	err := s.store.View(ctx, func(ctx context.Context, repos uow.Repositories) error {
		t, err := repos.Tournaments.GetByCode(ctx, code)
		out = t
		return err
	})
	if err != nil {
		return tournament.Tournament{}, classify(err)
	}
	return out, nil
}

func (s *TournamentService) List(ctx context.Context, filter tournament.ListFilter) ([]tournament.Tournament, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.List")
	defer span.End()

	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, filter.Status)
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	var out []tournament.Tournament
	err := s.store.View(ctx, func(ctx context.Context, repos uow.Repositories) error {
		items, err := repos.Tournaments.List(ctx, filter)
		out = items
		return err
	})
	if err != nil {
		return nil, classify(err)
	}
	return out, nil
}

func (s *TournamentService) ListParticipants(ctx context.Context, tournamentID string) ([]tournament.Participant, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.ListParticipants")
	defer span.End()

	tournamentID = strings.TrimSpace(tournamentID)
	if tournamentID == "" {
		return nil, fmt.Errorf("%w: tournament id is required", ErrInvalidInput)
	}
	var out []tournament.Participant
	err := s.store.View(ctx, func(ctx context.Context, repos uow.Repositories) error {
		if _, err := repos.Tournaments.GetByID(ctx, tournamentID); err != nil {
			return err
		}
		items, err := repos.Participants.ListByTournament(ctx, tournamentID)
		out = items
		return err
	})
	if err != nil {
		return nil, classify(err)
	}
	return out, nil
}
