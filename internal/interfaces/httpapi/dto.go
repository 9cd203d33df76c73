package httpapi

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/riskibarqy/trading-tournament/internal/domain/achievement"
	"github.com/riskibarqy/trading-tournament/internal/domain/settlement"
	"github.com/riskibarqy/trading-tournament/internal/domain/tournament"
	"github.com/riskibarqy/trading-tournament/internal/domain/wallet"
	"github.com/riskibarqy/trading-tournament/internal/usecase"
)

type createTournamentRequest struct {
	Name             string          `json:"name" validate:"required,max=100"`
	MaxPlayers       int             `json:"max_players" validate:"required,min=2,max=100"`
	StartingBalance  decimal.Decimal `json:"starting_balance"`
	Timeframe        string          `json:"timeframe" validate:"omitempty,max=32"`
	BuyInAmount      decimal.Decimal `json:"buy_in_amount"`
	ScheduledStartAt *time.Time      `json:"scheduled_start_at"`
}

type joinByCodeRequest struct {
	Code string `json:"code" validate:"required,len=8,alphanum"`
}

type tradeRequest struct {
	Symbol string          `json:"symbol" validate:"required,max=20"`
	Shares decimal.Decimal `json:"shares"`
	// Price is optional; zero means trade at the current quote.
	Price decimal.Decimal `json:"price"`
}

type depositRequest struct {
	UserID string          `json:"user_id" validate:"required,max=128"`
	Amount decimal.Decimal `json:"amount"`
}

type tournamentDTO struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	Code               string     `json:"code"`
	CreatorID          string     `json:"creator_id"`
	MaxPlayers         int        `json:"max_players"`
	CurrentPlayers     int        `json:"current_players"`
	StartingBalance    string     `json:"starting_balance"`
	Timeframe          string     `json:"timeframe"`
	Status             string     `json:"status"`
	BuyInAmount        string     `json:"buy_in_amount"`
	CurrentPot         string     `json:"current_pot"`
	ScheduledStartAt   *time.Time `json:"scheduled_start_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	StartedAt          *time.Time `json:"started_at,omitempty"`
	EndedAt            *time.Time `json:"ended_at,omitempty"`
	ExpiresAt          *time.Time `json:"expires_at,omitempty"`
	CancellationReason string     `json:"cancellation_reason,omitempty"`
}

func tournamentToDTO(t tournament.Tournament, anchor tournament.ExpiryAnchor) tournamentDTO {
	out := tournamentDTO{
		ID:                 t.ID,
		Name:               t.Name,
		Code:               t.Code,
		CreatorID:          t.CreatorID,
		MaxPlayers:         t.MaxPlayers,
		CurrentPlayers:     t.CurrentPlayers,
		StartingBalance:    money(t.StartingBalance),
		Timeframe:          t.Timeframe,
		Status:             string(t.Status),
		BuyInAmount:        money(t.BuyInAmount),
		CurrentPot:         money(t.CurrentPot),
		ScheduledStartAt:   t.ScheduledStartAt,
		CreatedAt:          t.CreatedAt,
		StartedAt:          t.StartedAt,
		EndedAt:            t.EndedAt,
		CancellationReason: t.CancellationReason,
	}
	if t.Status == tournament.StatusActive {
		expires := tournament.ExpiresAt(t, anchor)
		out.ExpiresAt = &expires
	}
	return out
}

type participantDTO struct {
	UserID      string    `json:"user_id"`
	CashBalance string    `json:"cash_balance"`
	JoinedAt    time.Time `json:"joined_at"`
}

func participantToDTO(p tournament.Participant) participantDTO {
	return participantDTO{UserID: p.UserID, CashBalance: money(p.CashBalance), JoinedAt: p.JoinedAt}
}

type standingDTO struct {
	Rank          int       `json:"rank"`
	UserID        string    `json:"user_id"`
	CashBalance   string    `json:"cash_balance"`
	HoldingsValue string    `json:"holdings_value"`
	TotalValue    string    `json:"total_value"`
	JoinedAt      time.Time `json:"joined_at"`
	Degraded      bool      `json:"degraded"`
}

type leaderboardDTO struct {
	Tournament tournamentDTO `json:"tournament"`
	Final      bool          `json:"final"`
	Standings  []standingDTO `json:"standings"`
}

func standingsToDTO(items []settlement.Standing) []standingDTO {
	out := make([]standingDTO, 0, len(items))
	for _, s := range items {
		out = append(out, standingDTO{
			Rank:          s.Rank,
			UserID:        s.UserID,
			CashBalance:   money(s.CashBalance),
			HoldingsValue: money(s.HoldingsValue),
			TotalValue:    money(s.TotalValue),
			JoinedAt:      s.JoinedAt,
			Degraded:      s.Degraded,
		})
	}
	return out
}

type tradeDTO struct {
	Side         string    `json:"side"`
	Symbol       string    `json:"symbol"`
	Shares       string    `json:"shares"`
	Price        string    `json:"price"`
	Amount       string    `json:"amount"`
	CostBasis    string    `json:"cost_basis,omitempty"`
	RealizedPnL  string    `json:"realized_pnl,omitempty"`
	CashBalance  string    `json:"cash_balance"`
	ExecutedAt   time.Time `json:"executed_at"`
	PurchaseID   string    `json:"purchase_id,omitempty"`
	LotsConsumed int       `json:"lots_consumed,omitempty"`
}

func tradeToDTO(t usecase.TradeResult) tradeDTO {
	out := tradeDTO{
		Side:         string(t.Side),
		Symbol:       t.Symbol,
		Shares:       t.Shares.String(),
		Price:        t.Price.String(),
		Amount:       money(t.Amount),
		CashBalance:  money(t.CashBalance),
		ExecutedAt:   t.ExecutedAt,
		PurchaseID:   t.PurchaseID,
		LotsConsumed: t.LotsConsumed,
	}
	if t.Side == usecase.SideSell {
		out.CostBasis = money(t.CostBasis)
		out.RealizedPnL = money(t.RealizedPnL)
	}
	return out
}

type positionDTO struct {
	Symbol        string `json:"symbol"`
	Shares        string `json:"shares"`
	AverageCost   string `json:"average_cost"`
	CostBasis     string `json:"cost_basis"`
	MarketPrice   string `json:"market_price"`
	MarketValue   string `json:"market_value"`
	UnrealizedPnL string `json:"unrealized_pnl"`
	PriceIsQuote  bool   `json:"price_is_quote"`
}

type portfolioDTO struct {
	TournamentID  string        `json:"tournament_id"`
	UserID        string        `json:"user_id"`
	CashBalance   string        `json:"cash_balance"`
	HoldingsValue string        `json:"holdings_value"`
	TotalValue    string        `json:"total_value"`
	Positions     []positionDTO `json:"positions"`
}

func portfolioToDTO(p usecase.PortfolioView) portfolioDTO {
	positions := make([]positionDTO, 0, len(p.Positions))
	for _, pos := range p.Positions {
		positions = append(positions, positionDTO{
			Symbol:        pos.Symbol,
			Shares:        pos.Shares.String(),
			AverageCost:   pos.AverageCost.StringFixed(4),
			CostBasis:     money(pos.CostBasis),
			MarketPrice:   pos.MarketPrice.String(),
			MarketValue:   money(pos.MarketValue),
			UnrealizedPnL: money(pos.UnrealizedPnL),
			PriceIsQuote:  pos.PriceIsQuote,
		})
	}
	return portfolioDTO{
		TournamentID:  p.TournamentID,
		UserID:        p.UserID,
		CashBalance:   money(p.CashBalance),
		HoldingsValue: money(p.HoldingsValue),
		TotalValue:    money(p.TotalValue),
		Positions:     positions,
	}
}

type walletEntryDTO struct {
	ID           string    `json:"id"`
	Direction    string    `json:"direction"`
	Amount       string    `json:"amount"`
	Reason       string    `json:"reason"`
	TournamentID string    `json:"tournament_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type walletDTO struct {
	UserID  string           `json:"user_id"`
	Balance string           `json:"balance"`
	Entries []walletEntryDTO `json:"entries,omitempty"`
}

func walletToDTO(w wallet.Wallet, entries []wallet.Entry) walletDTO {
	items := make([]walletEntryDTO, 0, len(entries))
	for _, e := range entries {
		items = append(items, walletEntryDTO{
			ID:           e.ID,
			Direction:    string(e.Direction),
			Amount:       money(e.Amount),
			Reason:       string(e.Reason),
			TournamentID: e.TournamentID,
			CreatedAt:    e.CreatedAt,
		})
	}
	return walletDTO{UserID: w.UserID, Balance: money(w.Balance), Entries: items}
}

type achievementDTO struct {
	Type         string    `json:"type"`
	Tier         string    `json:"tier"`
	Name         string    `json:"name,omitempty"`
	TournamentID string    `json:"tournament_id"`
	Points       int       `json:"points"`
	AwardedAt    time.Time `json:"awarded_at"`
}

type achievementProfileDTO struct {
	UserID            string           `json:"user_id"`
	TournamentsPlayed int              `json:"tournaments_played"`
	Wins              int              `json:"wins"`
	Points            int              `json:"points"`
	Achievements      []achievementDTO `json:"achievements"`
}

func achievementProfileToDTO(userID string, p usecase.AchievementProfile) achievementProfileDTO {
	items := make([]achievementDTO, 0, len(p.Achievements))
	for _, a := range p.Achievements {
		item := achievementDTO{
			Type:         string(a.Type),
			Tier:         string(a.Tier),
			TournamentID: a.TournamentID,
			Points:       a.Points,
			AwardedAt:    a.AwardedAt,
		}
		if def, ok := achievement.Lookup(a.Type); ok {
			item.Name = def.Name
		}
		items = append(items, item)
	}
	return achievementProfileDTO{
		UserID:            userID,
		TournamentsPlayed: p.Stats.TournamentsPlayed,
		Wins:              p.Stats.Wins,
		Points:            p.Stats.Points,
		Achievements:      items,
	}
}

type achievementDefinitionDTO struct {
	Type        string `json:"type"`
	Tier        string `json:"tier"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Points      int    `json:"points"`
}

func money(v decimal.Decimal) string {
	return v.StringFixed(2)
}
