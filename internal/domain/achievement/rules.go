package achievement

import (
	"github.com/shopspring/decimal"
)

// LegendWins is the number of tournament wins that earns TypeTournamentLegend.
const LegendWins = 10

var catalog = map[Type]Definition{
	TypeTournamentWinner: {Type: TypeTournamentWinner, Tier: TierLegendary, Name: "Champion", Description: "Finish first in a tournament"},
	TypeTournamentSecond: {Type: TypeTournamentSecond, Tier: TierEpic, Name: "Runner-up", Description: "Finish second in a tournament"},
	TypeTournamentThird:  {Type: TypeTournamentThird, Tier: TierRare, Name: "Podium", Description: "Finish third in a tournament"},
	TypeTournamentTop5:   {Type: TypeTournamentTop5, Tier: TierUncommon, Name: "Top Five", Description: "Finish fourth or fifth in a tournament"},
	TypeTournamentLegend: {Type: TypeTournamentLegend, Tier: TierMythic, Name: "Legend", Description: "Win ten tournaments"},
	TypeSteadyGains:      {Type: TypeSteadyGains, Tier: TierCommon, Name: "Steady Gains", Description: "Finish with at least 10% profit"},
	TypeBigGains:         {Type: TypeBigGains, Tier: TierUncommon, Name: "Big Gains", Description: "Finish with at least 25% profit"},
	TypeMarketMaster:     {Type: TypeMarketMaster, Tier: TierRare, Name: "Market Master", Description: "Finish with at least 50% profit"},
	TypeDoubleUp:         {Type: TypeDoubleUp, Tier: TierEpic, Name: "Double Up", Description: "Double the starting balance"},
}

var performanceThresholds = []performanceThreshold{
	{multiple: decimal.RequireFromString("1.10"), typ: TypeSteadyGains},
	{multiple: decimal.RequireFromString("1.25"), typ: TypeBigGains},
	{multiple: decimal.RequireFromString("1.50"), typ: TypeMarketMaster},
	{multiple: decimal.RequireFromString("2.00"), typ: TypeDoubleUp},
}

func Lookup(t Type) (Definition, bool) {
	def, ok := catalog[t]
	return def, ok
}

func Catalog() []Definition {
	order := []Type{
		TypeTournamentWinner, TypeTournamentSecond, TypeTournamentThird, TypeTournamentTop5,
		TypeTournamentLegend, TypeSteadyGains, TypeBigGains, TypeMarketMaster, TypeDoubleUp,
	}
	out := make([]Definition, 0, len(order))
	for _, t := range order {
		out = append(out, catalog[t])
	}
	return out
}

// ForRank maps a 1-based final rank to its placement achievement.
func ForRank(rank int) (Type, bool) {
	switch {
	case rank == 1:
		return TypeTournamentWinner, true
	case rank == 2:
		return TypeTournamentSecond, true
	case rank == 3:
		return TypeTournamentThird, true
	case rank == 4 || rank == 5:
		return TypeTournamentTop5, true
	default:
		return "", false
	}
}

// ForPerformance returns every performance badge whose threshold totalValue
// reaches relative to startingBalance, lowest first.
func ForPerformance(totalValue, startingBalance decimal.Decimal) []Type {
	if !startingBalance.IsPositive() {
		return nil
	}
	var out []Type
	for _, th := range performanceThresholds {
		if totalValue.GreaterThanOrEqual(startingBalance.Mul(th.multiple)) {
			out = append(out, th.typ)
		}
	}
	return out
}

// Crosses reports whether reaching wins earns the legend achievement.
func Crosses(wins int) bool {
	return wins >= LegendWins
}

// New builds an award for userID from the catalog entry of t.
func New(userID string, t Type, tournamentID string) (Achievement, bool) {
	def, ok := Lookup(t)
	if !ok {
		return Achievement{}, false
	}
	return Achievement{
		UserID:       userID,
		Type:         t,
		Tier:         def.Tier,
		TournamentID: tournamentID,
		Points:       def.Tier.Points(),
	}, true
}
