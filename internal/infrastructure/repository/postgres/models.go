package postgres

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/riskibarqy/trading-tournament/internal/domain/achievement"
	"github.com/riskibarqy/trading-tournament/internal/domain/portfolio"
	"github.com/riskibarqy/trading-tournament/internal/domain/settlement"
	"github.com/riskibarqy/trading-tournament/internal/domain/tournament"
	"github.com/riskibarqy/trading-tournament/internal/domain/wallet"
)

const (
	tableTournaments  = "tournaments"
	tableParticipants = "tournament_participants"
	tableWallets      = "wallets"
	tableEntries      = "wallet_entries"
	tablePurchases    = "tournament_purchases"
	tableAchievements = "user_achievements"
	tableStats        = "user_tournament_stats"
	tableSettlements  = "tournament_settlements"
	tableResults      = "tournament_results"

	constraintTournamentCode = "tournaments_code_key"
)

type tournamentTableModel struct {
	ID                 string          `db:"id"`
	Name               string          `db:"name"`
	Code               string          `db:"code"`
	CreatorID          string          `db:"creator_id"`
	MaxPlayers         int             `db:"max_players"`
	CurrentPlayers     int             `db:"current_players"`
	StartingBalance    decimal.Decimal `db:"starting_balance"`
	Timeframe          string          `db:"timeframe"`
	Status             string          `db:"status"`
	BuyInAmount        decimal.Decimal `db:"buy_in_amount"`
	CurrentPot         decimal.Decimal `db:"current_pot"`
	ScheduledStartAt   *time.Time      `db:"scheduled_start_at"`
	CreatedAt          time.Time       `db:"created_at"`
	StartedAt          *time.Time      `db:"started_at"`
	EndedAt            *time.Time      `db:"ended_at"`
	CancellationReason string          `db:"cancellation_reason"`
}

func tournamentModelFrom(t tournament.Tournament) tournamentTableModel {
	return tournamentTableModel{
		ID:                 t.ID,
		Name:               t.Name,
		Code:               t.Code,
		CreatorID:          t.CreatorID,
		MaxPlayers:         t.MaxPlayers,
		CurrentPlayers:     t.CurrentPlayers,
		StartingBalance:    t.StartingBalance,
		Timeframe:          t.Timeframe,
		Status:             string(t.Status),
		BuyInAmount:        t.BuyInAmount,
		CurrentPot:         t.CurrentPot,
		ScheduledStartAt:   t.ScheduledStartAt,
		CreatedAt:          t.CreatedAt,
		StartedAt:          t.StartedAt,
		EndedAt:            t.EndedAt,
		CancellationReason: t.CancellationReason,
	}
}

func (m tournamentTableModel) toDomain() tournament.Tournament {
	return tournament.Tournament{
		ID:                 m.ID,
		Name:               m.Name,
		Code:               m.Code,
		CreatorID:          m.CreatorID,
		MaxPlayers:         m.MaxPlayers,
		CurrentPlayers:     m.CurrentPlayers,
		StartingBalance:    m.StartingBalance,
		Timeframe:          m.Timeframe,
		Status:             tournament.Status(m.Status),
		BuyInAmount:        m.BuyInAmount,
		CurrentPot:         m.CurrentPot,
		ScheduledStartAt:   utcPtr(m.ScheduledStartAt),
		CreatedAt:          m.CreatedAt.UTC(),
		StartedAt:          utcPtr(m.StartedAt),
		EndedAt:            utcPtr(m.EndedAt),
		CancellationReason: m.CancellationReason,
	}
}

type participantTableModel struct {
	TournamentID string          `db:"tournament_id"`
	UserID       string          `db:"user_id"`
	CashBalance  decimal.Decimal `db:"cash_balance"`
	JoinedAt     time.Time       `db:"joined_at"`
}

func (m participantTableModel) toDomain() tournament.Participant {
	return tournament.Participant{
		TournamentID: m.TournamentID,
		UserID:       m.UserID,
		CashBalance:  m.CashBalance,
		JoinedAt:     m.JoinedAt.UTC(),
	}
}

type walletTableModel struct {
	UserID    string          `db:"user_id"`
	Balance   decimal.Decimal `db:"balance"`
	UpdatedAt time.Time       `db:"updated_at"`
}

type entryTableModel struct {
	ID           string          `db:"id"`
	UserID       string          `db:"user_id"`
	Direction    string          `db:"direction"`
	Amount       decimal.Decimal `db:"amount"`
	Reason       string          `db:"reason"`
	TournamentID *string         `db:"tournament_id"`
	CreatedAt    time.Time       `db:"created_at"`
}

func entryModelFrom(e wallet.Entry) entryTableModel {
	return entryTableModel{
		ID:           e.ID,
		UserID:       e.UserID,
		Direction:    string(e.Direction),
		Amount:       e.Amount,
		Reason:       string(e.Reason),
		TournamentID: nullableString(e.TournamentID),
		CreatedAt:    e.CreatedAt,
	}
}

func (m entryTableModel) toDomain() wallet.Entry {
	e := wallet.Entry{
		ID:        m.ID,
		UserID:    m.UserID,
		Direction: wallet.Direction(m.Direction),
		Amount:    m.Amount,
		Reason:    wallet.Reason(m.Reason),
		CreatedAt: m.CreatedAt.UTC(),
	}
	if m.TournamentID != nil {
		e.TournamentID = *m.TournamentID
	}
	return e
}

type purchaseTableModel struct {
	ID            string          `db:"id"`
	TournamentID  string          `db:"tournament_id"`
	UserID        string          `db:"user_id"`
	Symbol        string          `db:"symbol"`
	Shares        decimal.Decimal `db:"shares"`
	PurchasePrice decimal.Decimal `db:"purchase_price"`
	TotalCost     decimal.Decimal `db:"total_cost"`
	PurchasedAt   time.Time       `db:"purchased_at"`
}

func (m purchaseTableModel) toDomain() portfolio.Purchase {
	return portfolio.Purchase{
		ID:            m.ID,
		TournamentID:  m.TournamentID,
		UserID:        m.UserID,
		Symbol:        m.Symbol,
		Shares:        m.Shares,
		PurchasePrice: m.PurchasePrice,
		TotalCost:     m.TotalCost,
		PurchasedAt:   m.PurchasedAt.UTC(),
	}
}

type achievementTableModel struct {
	UserID       string    `db:"user_id"`
	Type         string    `db:"type"`
	Tier         string    `db:"tier"`
	TournamentID string    `db:"tournament_id"`
	Points       int       `db:"points"`
	AwardedAt    time.Time `db:"awarded_at"`
}

func (m achievementTableModel) toDomain() achievement.Achievement {
	return achievement.Achievement{
		UserID:       m.UserID,
		Type:         achievement.Type(m.Type),
		Tier:         achievement.Tier(m.Tier),
		TournamentID: m.TournamentID,
		Points:       m.Points,
		AwardedAt:    m.AwardedAt.UTC(),
	}
}

type statsTableModel struct {
	UserID            string    `db:"user_id"`
	TournamentsPlayed int       `db:"tournaments_played"`
	Wins              int       `db:"wins"`
	Points            int       `db:"points"`
	UpdatedAt         time.Time `db:"updated_at"`
}

func (m statsTableModel) toDomain() achievement.Stats {
	return achievement.Stats{
		UserID:            m.UserID,
		TournamentsPlayed: m.TournamentsPlayed,
		Wins:              m.Wins,
		Points:            m.Points,
		UpdatedAt:         m.UpdatedAt.UTC(),
	}
}

type settlementTableModel struct {
	TournamentID  string          `db:"tournament_id"`
	WinnerID      *string         `db:"winner_id"`
	CreatorID     string          `db:"creator_id"`
	Pot           decimal.Decimal `db:"pot"`
	WinnerAmount  decimal.Decimal `db:"winner_amount"`
	CreatorAmount decimal.Decimal `db:"creator_amount"`
	Distributed   bool            `db:"distributed"`
	Participants  int             `db:"participants"`
	SettledAt     time.Time       `db:"settled_at"`
}

func settlementModelFrom(r settlement.Record) settlementTableModel {
	return settlementTableModel{
		TournamentID:  r.TournamentID,
		WinnerID:      nullableString(r.WinnerID),
		CreatorID:     r.CreatorID,
		Pot:           r.Pot,
		WinnerAmount:  r.WinnerAmount,
		CreatorAmount: r.CreatorAmount,
		Distributed:   r.Distributed,
		Participants:  r.Participants,
		SettledAt:     r.SettledAt,
	}
}

func (m settlementTableModel) toDomain() settlement.Record {
	r := settlement.Record{
		TournamentID:  m.TournamentID,
		CreatorID:     m.CreatorID,
		Pot:           m.Pot,
		WinnerAmount:  m.WinnerAmount,
		CreatorAmount: m.CreatorAmount,
		Distributed:   m.Distributed,
		Participants:  m.Participants,
		SettledAt:     m.SettledAt.UTC(),
	}
	if m.WinnerID != nil {
		r.WinnerID = *m.WinnerID
	}
	return r
}

type resultTableModel struct {
	TournamentID  string          `db:"tournament_id"`
	UserID        string          `db:"user_id"`
	Rank          int             `db:"rank"`
	CashBalance   decimal.Decimal `db:"cash_balance"`
	HoldingsValue decimal.Decimal `db:"holdings_value"`
	TotalValue    decimal.Decimal `db:"total_value"`
	JoinedAt      time.Time       `db:"joined_at"`
	Degraded      bool            `db:"degraded"`
}

func (m resultTableModel) toDomain() settlement.Standing {
	return settlement.Standing{
		Rank:          m.Rank,
		UserID:        m.UserID,
		CashBalance:   m.CashBalance,
		HoldingsValue: m.HoldingsValue,
		TotalValue:    m.TotalValue,
		JoinedAt:      m.JoinedAt.UTC(),
		Degraded:      m.Degraded,
	}
}

func nullableString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
