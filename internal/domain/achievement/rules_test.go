package achievement

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
)

func TestForRank(t *testing.T) {
	t.Parallel()

	cases := map[int]Type{1: TypeTournamentWinner, 2: TypeTournamentSecond, 3: TypeTournamentThird, 4: TypeTournamentTop5, 5: TypeTournamentTop5}
	for rank, want := range cases {
		got, ok := ForRank(rank)
		if !ok || got != want {
			t.Fatalf("ForRank(%d) = %q %v, want %q", rank, got, ok, want)
		}
	}
	for _, rank := range []int{0, 6, 42} {
		if _, ok := ForRank(rank); ok {
			t.Fatalf("rank %d should not earn a placement achievement", rank)
		}
	}
}

func TestTiers(t *testing.T) {
	t.Parallel()

	want := map[Type]Tier{
		TypeTournamentWinner: TierLegendary,
		TypeTournamentSecond: TierEpic,
		TypeTournamentThird:  TierRare,
		TypeTournamentTop5:   TierUncommon,
		TypeTournamentLegend: TierMythic,
	}
	for typ, tier := range want {
		def, ok := Lookup(typ)
		if !ok || def.Tier != tier {
			t.Fatalf("%s: got tier %q, want %q", typ, def.Tier, tier)
		}
	}
}

func TestForPerformance(t *testing.T) {
	t.Parallel()

	start := decimal.NewFromInt(10000)
	cases := []struct {
		total string
		want  []Type
	}{
		{total: "9500", want: nil},
		{total: "10999.99", want: nil},
		{total: "11000", want: []Type{TypeSteadyGains}},
		{total: "15000", want: []Type{TypeSteadyGains, TypeBigGains, TypeMarketMaster}},
		{total: "20000", want: []Type{TypeSteadyGains, TypeBigGains, TypeMarketMaster, TypeDoubleUp}},
	}
	for _, tc := range cases {
		got := ForPerformance(decimal.RequireFromString(tc.total), start)
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("ForPerformance(%s) = %v, want %v", tc.total, got, tc.want)
		}
	}
	if got := ForPerformance(decimal.NewFromInt(5), decimal.Zero); got != nil {
		t.Fatalf("zero starting balance must not award badges, got %v", got)
	}
}

func TestCrosses(t *testing.T) {
	t.Parallel()

	if Crosses(9) || !Crosses(10) || !Crosses(11) {
		t.Fatalf("legend threshold must be ten wins")
	}
}
