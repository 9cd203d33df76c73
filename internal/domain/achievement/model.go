package achievement

import (
	"time"

	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeTournamentWinner Type = "tournament_winner"
	TypeTournamentSecond Type = "tournament_second"
	TypeTournamentThird  Type = "tournament_third"
	TypeTournamentTop5   Type = "tournament_top5"
	TypeTournamentLegend Type = "tournament_legend"
	TypeSteadyGains      Type = "steady_gains"
	TypeBigGains         Type = "big_gains"
	TypeMarketMaster     Type = "market_master"
	TypeDoubleUp         Type = "double_up"
)

type Tier string

const (
	TierCommon    Tier = "common"
	TierUncommon  Tier = "uncommon"
	TierRare      Tier = "rare"
	TierEpic      Tier = "epic"
	TierLegendary Tier = "legendary"
	TierMythic    Tier = "mythic"
)

// Points is the reward credited to a user's stats the first time an
// achievement of the tier is earned.
func (t Tier) Points() int {
	switch t {
	case TierCommon:
		return 10
	case TierUncommon:
		return 25
	case TierRare:
		return 50
	case TierEpic:
		return 100
	case TierLegendary:
		return 250
	case TierMythic:
		return 1000
	default:
		return 0
	}
}

type Definition struct {
	Type        Type
	Tier        Tier
	Name        string
	Description string
}

// Achievement is held at most once per (UserID, Type).
type Achievement struct {
	UserID       string
	Type         Type
	Tier         Tier
	TournamentID string
	Points       int
	AwardedAt    time.Time
}

// Stats is the running per-user tournament record.
type Stats struct {
	UserID            string
	TournamentsPlayed int
	Wins              int
	Points            int
	UpdatedAt         time.Time
}

type performanceThreshold struct {
	multiple decimal.Decimal
	typ      Type
}
