package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/riskibarqy/trading-tournament/internal/domain/tournament"
	"github.com/riskibarqy/trading-tournament/internal/domain/uow"
	"github.com/riskibarqy/trading-tournament/internal/domain/user"
	"github.com/riskibarqy/trading-tournament/internal/platform/logging"
)

const (
	sweepPhaseStart  = "start"
	sweepPhaseSettle = "settle"
)

type SweepConfig struct {
	Workers int
	// TournamentTimeout bounds the work done for one tournament in a pass.
	TournamentTimeout time.Duration
}

type SweepResult struct {
	Skipped    bool           `json:"skipped"`
	Started    int            `json:"started"`
	Cancelled  int            `json:"cancelled"`
	Held       int            `json:"held"`
	Settled    int            `json:"settled"`
	Conflicts  int            `json:"conflicts"`
	Failed     int            `json:"failed"`
	DurationMs int64          `json:"duration_ms"`
	RanAt      time.Time      `json:"ran_at"`
	Errors     []SweepFailure `json:"errors,omitempty"`
}

type SweepFailure struct {
	TournamentID string `json:"tournament_id"`
	Phase        string `json:"phase"`
	Message      string `json:"message"`
}

// SweepService runs the periodic lifecycle pass: due waiting tournaments are
// started or cancelled, then expired active tournaments are settled. Passes
// never overlap; a pass requested while another runs is reported as skipped.
type SweepService struct {
	store       uow.Manager
	machine     *StateMachine
	settlements *SettlementService
	events      EventPublisher
	cfg         SweepConfig
	logger      *logging.Logger
	running     atomic.Bool
}

func NewSweepService(
	store uow.Manager,
	machine *StateMachine,
	settlements *SettlementService,
	events EventPublisher,
	cfg SweepConfig,
	logger *logging.Logger,
) *SweepService {
	if events == nil {
		events = NewNoopEventPublisher()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.TournamentTimeout <= 0 {
		cfg.TournamentTimeout = time.Minute
	}
	return &SweepService{
		store:       store,
		machine:     machine,
		settlements: settlements,
		events:      events,
		cfg:         cfg,
		logger:      logger,
	}
}

// ManualExpirationSweep runs a pass on behalf of an operator. Admin only.
func (s *SweepService) ManualExpirationSweep(ctx context.Context, caller user.Principal) (SweepResult, error) {
	if err := requireAdmin(caller); err != nil {
		return SweepResult{}, err
	}
	s.logger.InfoContext(ctx, "manual expiration sweep requested", "user_id", caller.UserID)
	return s.RunPass(ctx)
}

// RunPass performs one lifecycle pass. Per-tournament failures are logged and
// counted; only failing to list candidates aborts a phase.
func (s *SweepService) RunPass(ctx context.Context) (SweepResult, error) {
	now := s.machine.Now()
	result := SweepResult{RanAt: now}
	if !s.running.CompareAndSwap(false, true) {
		s.logger.InfoContext(ctx, "sweep pass already running, skipping")
		result.Skipped = true
		return result, nil
	}
	defer s.running.Store(false)

	ctx, span := startUsecaseSpan(ctx, "usecase.SweepService.RunPass")
	defer span.End()

	started := time.Now()
	tally := newSweepTally()
	var errs []error

	due, err := s.listDue(ctx, now)
	if err != nil {
		errs = append(errs, fmt.Errorf("list tournaments due for start: %w", err))
	} else if err := s.fanOut(ctx, due, func(ctx context.Context, t tournament.Tournament) {
		s.evaluateWaiting(ctx, t, now, tally)
	}); err != nil {
		errs = append(errs, err)
	}

	expired, err := s.listExpired(ctx, now)
	if err != nil {
		errs = append(errs, fmt.Errorf("list expired tournaments: %w", err))
	} else if err := s.fanOut(ctx, expired, func(ctx context.Context, t tournament.Tournament) {
		s.settleExpired(ctx, t, tally)
	}); err != nil {
		errs = append(errs, err)
	}

	tally.fill(&result)
	result.DurationMs = time.Since(started).Milliseconds()
	s.logger.InfoContext(ctx, "sweep pass finished",
		"started", result.Started,
		"cancelled", result.Cancelled,
		"held", result.Held,
		"settled", result.Settled,
		"conflicts", result.Conflicts,
		"failed", result.Failed,
		"duration_ms", result.DurationMs,
	)
	if len(errs) > 0 {
		return result, classify(errors.Join(errs...))
	}
	return result, nil
}

func (s *SweepService) listDue(ctx context.Context, now time.Time) ([]tournament.Tournament, error) {
	var out []tournament.Tournament
	err := s.store.View(ctx, func(ctx context.Context, repos uow.Repositories) error {
		items, err := repos.Tournaments.ListDueForStart(ctx, now)
		out = items
		return err
	})
	return out, err
}

func (s *SweepService) listExpired(ctx context.Context, now time.Time) ([]tournament.Tournament, error) {
	var active []tournament.Tournament
	err := s.store.View(ctx, func(ctx context.Context, repos uow.Repositories) error {
		items, err := repos.Tournaments.ListActive(ctx)
		active = items
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]tournament.Tournament, 0, len(active))
	for _, t := range active {
		if s.machine.Expired(t, now) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *SweepService) fanOut(ctx context.Context, items []tournament.Tournament, fn func(ctx context.Context, t tournament.Tournament)) error {
	if len(items) == 0 {
		return nil
	}
	workers := s.cfg.Workers
	if workers > len(items) {
		workers = len(items)
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for _, t := range items {
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			taskCtx, cancel := context.WithTimeout(ctx, s.cfg.TournamentTimeout)
			defer cancel()
			fn(taskCtx, t)
		}); err != nil {
			wg.Done()
			wg.Wait()
			return fmt.Errorf("submit tournament %s to worker pool: %w", t.ID, err)
		}
	}
	wg.Wait()
	return nil
}

func (s *SweepService) evaluateWaiting(ctx context.Context, candidate tournament.Tournament, now time.Time, tally *sweepTally) {
	var (
		decision tournament.WaitingDecision
		current  tournament.Tournament
	)
	err := s.store.Do(ctx, func(ctx context.Context, repos uow.Repositories) error {
		t, err := repos.Tournaments.GetByID(ctx, candidate.ID)
		if err != nil {
			return fmt.Errorf("get tournament: %w", err)
		}
		decision = tournament.DecideWaiting(t, now)
		switch decision {
		case tournament.Activate:
			err = s.machine.Activate(ctx, repos, t, now)
		case tournament.CancelInsufficientPlayers:
			err = s.machine.CancelForInsufficientPlayers(ctx, repos, t, now)
		default:
			return nil
		}
		if err != nil {
			return err
		}
		current, err = repos.Tournaments.GetByID(ctx, t.ID)
		return err
	})
	if err != nil {
		s.recordFailure(ctx, tally, candidate.ID, sweepPhaseStart, err)
		return
	}

	event := TournamentEvent{
		TournamentID: current.ID,
		Status:       string(current.Status),
		Pot:          current.CurrentPot,
		Reason:       current.CancellationReason,
		OccurredAt:   now,
	}
	switch decision {
	case tournament.Activate:
		tally.started.Add(1)
		event.Type = EventTournamentStarted
		s.logger.InfoContext(ctx, "tournament started", "tournament_id", current.ID, "players", current.CurrentPlayers)
	case tournament.CancelInsufficientPlayers:
		tally.cancelled.Add(1)
		event.Type = EventTournamentCancelled
		s.logger.InfoContext(ctx, "tournament cancelled for insufficient players",
			"tournament_id", current.ID,
			"players", candidate.CurrentPlayers,
			"refunded", candidate.BuyInAmount.String(),
		)
	default:
		tally.held.Add(1)
		return
	}
	publish(ctx, s.events, s.logger, event)
}

func (s *SweepService) settleExpired(ctx context.Context, t tournament.Tournament, tally *sweepTally) {
	if _, err := s.settlements.Settle(ctx, t.ID); err != nil {
		s.recordFailure(ctx, tally, t.ID, sweepPhaseSettle, err)
		return
	}
	tally.settled.Add(1)
}

// recordFailure treats lost races as no-ops; everything else is logged with
// the tournament identity and left for the next pass.
func (s *SweepService) recordFailure(ctx context.Context, tally *sweepTally, tournamentID, phase string, err error) {
	if errors.Is(err, ErrConcurrencyConflict) || errors.Is(err, ErrWrongState) {
		tally.conflicts.Add(1)
		s.logger.DebugContext(ctx, "sweep lost race, skipping",
			"tournament_id", tournamentID,
			"phase", phase,
			"error", err,
		)
		return
	}
	tally.fail(tournamentID, phase, err)
	s.logger.ErrorContext(ctx, "sweep failed for tournament",
		"tournament_id", tournamentID,
		"phase", phase,
		"error", err,
	)
}

type sweepTally struct {
	started   atomic.Int32
	cancelled atomic.Int32
	held      atomic.Int32
	settled   atomic.Int32
	conflicts atomic.Int32

	mu       sync.Mutex
	failures []SweepFailure
}

func newSweepTally() *sweepTally {
	return &sweepTally{}
}

func (t *sweepTally) fail(tournamentID, phase string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failures = append(t.failures, SweepFailure{TournamentID: tournamentID, Phase: phase, Message: err.Error()})
}

func (t *sweepTally) fill(result *SweepResult) {
	t.mu.Lock()
	defer t.mu.Unlock()
	result.Started = int(t.started.Load())
	result.Cancelled = int(t.cancelled.Load())
	result.Held = int(t.held.Load())
	result.Settled = int(t.settled.Load())
	result.Conflicts = int(t.conflicts.Load())
	result.Failed = len(t.failures)
	result.Errors = append([]SweepFailure(nil), t.failures...)
}
