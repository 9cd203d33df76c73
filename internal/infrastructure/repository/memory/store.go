package memory

import (
	"context"
	"maps"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/riskibarqy/trading-tournament/internal/domain/achievement"
	"github.com/riskibarqy/trading-tournament/internal/domain/portfolio"
	"github.com/riskibarqy/trading-tournament/internal/domain/settlement"
	"github.com/riskibarqy/trading-tournament/internal/domain/tournament"
	"github.com/riskibarqy/trading-tournament/internal/domain/uow"
	"github.com/riskibarqy/trading-tournament/internal/domain/wallet"
)

// Store is an in-process implementation of uow.Manager. Transactions are
// serialized by a single mutex and run against a copy of the state that only
// replaces the live state when fn succeeds.
type Store struct {
	mu    sync.Mutex
	state *state
}

func NewStore() *Store {
	return &Store{state: newState()}
}

func (s *Store) Do(ctx context.Context, fn func(ctx context.Context, repos uow.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	if err := fn(ctx, work.repositories()); err != nil {
		return err
	}
	s.state = work
	return nil
}

func (s *Store) View(ctx context.Context, fn func(ctx context.Context, repos uow.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	snapshot := s.state.clone()
	s.mu.Unlock()
	return fn(ctx, snapshot.repositories())
}

// SeedWallet sets a user's balance directly. Intended for local runs and tests.
func (s *Store) SeedWallet(userID string, balance decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.wallets[userID] = wallet.Wallet{UserID: userID, Balance: balance, UpdatedAt: time.Now().UTC()}
}

type state struct {
	tournaments  map[string]tournament.Tournament
	codes        map[string]string
	participants map[string]map[string]tournament.Participant
	wallets      map[string]wallet.Wallet
	entries      []wallet.Entry
	purchases    map[string]portfolio.Purchase
	achievements map[string]map[achievement.Type]achievement.Achievement
	stats        map[string]achievement.Stats
	settlements  map[string]settlement.Record
	standings    map[string][]settlement.Standing
	seq          int64
}

func newState() *state {
	return &state{
		tournaments:  make(map[string]tournament.Tournament),
		codes:        make(map[string]string),
		participants: make(map[string]map[string]tournament.Participant),
		wallets:      make(map[string]wallet.Wallet),
		purchases:    make(map[string]portfolio.Purchase),
		achievements: make(map[string]map[achievement.Type]achievement.Achievement),
		stats:        make(map[string]achievement.Stats),
		settlements:  make(map[string]settlement.Record),
		standings:    make(map[string][]settlement.Standing),
	}
}

func (s *state) clone() *state {
	out := &state{
		tournaments:  maps.Clone(s.tournaments),
		codes:        maps.Clone(s.codes),
		participants: make(map[string]map[string]tournament.Participant, len(s.participants)),
		wallets:      maps.Clone(s.wallets),
		entries:      append([]wallet.Entry(nil), s.entries...),
		purchases:    maps.Clone(s.purchases),
		achievements: make(map[string]map[achievement.Type]achievement.Achievement, len(s.achievements)),
		stats:        maps.Clone(s.stats),
		settlements:  maps.Clone(s.settlements),
		standings:    make(map[string][]settlement.Standing, len(s.standings)),
		seq:          s.seq,
	}
	for k, v := range s.participants {
		out.participants[k] = maps.Clone(v)
	}
	for k, v := range s.achievements {
		out.achievements[k] = maps.Clone(v)
	}
	for k, v := range s.standings {
		out.standings[k] = append([]settlement.Standing(nil), v...)
	}
	return out
}

func (s *state) nextID(prefix string) string {
	s.seq++
	return prefix + "-" + strconv.FormatInt(s.seq, 10)
}

func (s *state) repositories() uow.Repositories {
	return uow.Repositories{
		Tournaments:  tournamentRepository{s: s},
		Participants: participantRepository{s: s},
		Wallets:      walletRepository{s: s},
		Purchases:    purchaseRepository{s: s},
		Achievements: achievementRepository{s: s},
		Settlements:  settlementRepository{s: s},
	}
}
