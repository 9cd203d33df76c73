package settlement

import (
	"sort"

	"github.com/shopspring/decimal"
)

var (
	WinnerShare  = decimal.RequireFromString("0.95")
	CreatorShare = decimal.RequireFromString("0.05")
)

type Split struct {
	Pot           decimal.Decimal
	WinnerAmount  decimal.Decimal
	CreatorAmount decimal.Decimal
}

// SplitPot rounds each share to the cent independently, so the two amounts
// may differ from the pot by at most one cent.
func SplitPot(pot decimal.Decimal) Split {
	return Split{
		Pot:           pot,
		WinnerAmount:  pot.Mul(WinnerShare).Round(2),
		CreatorAmount: pot.Mul(CreatorShare).Round(2),
	}
}

// Rank orders standings by total value descending; ties go to the earlier
// joiner, then to the lower user id. Ranks are 1-based.
func Rank(standings []Standing) []Standing {
	out := append([]Standing(nil), standings...)
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].TotalValue.Cmp(out[j].TotalValue); c != 0 {
			return c > 0
		}
		if !out[i].JoinedAt.Equal(out[j].JoinedAt) {
			return out[i].JoinedAt.Before(out[j].JoinedAt)
		}
		return out[i].UserID < out[j].UserID
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}
