package portfolio

import (
	"sort"

	crerr "github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
)

// Consumption describes what a sell does to one lot. PreviousShares is the
// lot size the plan was computed against so stores can apply it conditionally.
type Consumption struct {
	PurchaseID      string
	PreviousShares  decimal.Decimal
	RemainingShares decimal.Decimal
	RemainingCost   decimal.Decimal
}

func (c Consumption) Exhausted() bool {
	return !c.RemainingShares.IsPositive()
}

type SellPlan struct {
	Symbol       string
	SharesSold   decimal.Decimal
	CostBasis    decimal.Decimal
	Consumptions []Consumption
}

// SortFIFO orders lots oldest first, falling back to ID for equal timestamps.
func SortFIFO(lots []Purchase) {
	sort.SliceStable(lots, func(i, j int) bool {
		if !lots[i].PurchasedAt.Equal(lots[j].PurchasedAt) {
			return lots[i].PurchasedAt.Before(lots[j].PurchasedAt)
		}
		return lots[i].ID < lots[j].ID
	})
}

// PlanSell consumes shares from lots in FIFO order. It fails without producing
// a plan when the lots do not cover the requested amount.
func PlanSell(lots []Purchase, shares decimal.Decimal) (SellPlan, error) {
	if !shares.IsPositive() {
		return SellPlan{}, ErrInvalidShares
	}

	ordered := append([]Purchase(nil), lots...)
	SortFIFO(ordered)

	held := decimal.Zero
	for _, lot := range ordered {
		held = held.Add(lot.Shares)
	}
	if held.LessThan(shares) {
		return SellPlan{}, crerr.Wrapf(ErrInsufficientShares, "hold %s, want to sell %s", held, shares)
	}

	plan := SellPlan{SharesSold: shares, CostBasis: decimal.Zero}
	remaining := shares
	for _, lot := range ordered {
		if !remaining.IsPositive() {
			break
		}
		plan.Symbol = lot.Symbol
		take := decimal.Min(lot.Shares, remaining)
		left := lot.Shares.Sub(take)
		plan.CostBasis = plan.CostBasis.Add(take.Mul(lot.PurchasePrice))
		plan.Consumptions = append(plan.Consumptions, Consumption{
			PurchaseID:      lot.ID,
			PreviousShares:  lot.Shares,
			RemainingShares: left,
			RemainingCost:   left.Mul(lot.PurchasePrice),
		})
		remaining = remaining.Sub(take)
	}
	return plan, nil
}

// Aggregate folds open lots into per-symbol holdings sorted by symbol.
func Aggregate(lots []Purchase) []Holding {
	bySymbol := make(map[string]*Holding)
	order := make([]string, 0)
	for _, lot := range lots {
		h, ok := bySymbol[lot.Symbol]
		if !ok {
			h = &Holding{Symbol: lot.Symbol, Shares: decimal.Zero, CostBasis: decimal.Zero}
			bySymbol[lot.Symbol] = h
			order = append(order, lot.Symbol)
		}
		h.Shares = h.Shares.Add(lot.Shares)
		h.CostBasis = h.CostBasis.Add(lot.Shares.Mul(lot.PurchasePrice))
		if !lot.PurchasedAt.Before(h.LastPurchasedAt) {
			h.LastPurchasedAt = lot.PurchasedAt
			h.LastPurchasePrice = lot.PurchasePrice
		}
	}

	sort.Strings(order)
	out := make([]Holding, 0, len(order))
	for _, symbol := range order {
		h := bySymbol[symbol]
		if !h.Shares.IsPositive() {
			continue
		}
		h.AverageCost = h.CostBasis.Div(h.Shares).Round(4)
		out = append(out, *h)
	}
	return out
}
