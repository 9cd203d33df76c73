package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/trading-tournament/internal/usecase"
)

func (h *Handler) Buy(w http.ResponseWriter, r *http.Request) {
	h.trade(w, r, usecase.SideBuy)
}

func (h *Handler) Sell(w http.ResponseWriter, r *http.Request) {
	h.trade(w, r, usecase.SideSell)
}

func (h *Handler) trade(w http.ResponseWriter, r *http.Request, side usecase.TradeSide) {
	spanName := "httpapi.Handler.Buy"
	if side == usecase.SideSell {
		spanName = "httpapi.Handler.Sell"
	}
	ctx, span := startSpan(r.Context(), spanName)
	defer span.End()

	principal, err := principalFromContext(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	tournamentID := strings.TrimSpace(r.PathValue("tournamentID"))

	var req tradeRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	input := usecase.TradeInput{
		TournamentID: tournamentID,
		UserID:       principal.UserID,
		Symbol:       req.Symbol,
		Shares:       req.Shares,
		Price:        req.Price,
	}
	var result usecase.TradeResult
	if side == usecase.SideSell {
		result, err = h.trading.Sell(ctx, input)
	} else {
		result, err = h.trading.Buy(ctx, input)
	}
	if err != nil {
		h.logger.WarnContext(ctx, "trade failed",
			"side", side,
			"tournament_id", tournamentID,
			"user_id", principal.UserID,
			"symbol", req.Symbol,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, tradeToDTO(result))
}

func (h *Handler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPortfolio")
	defer span.End()

	principal, err := principalFromContext(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	tournamentID := strings.TrimSpace(r.PathValue("tournamentID"))

	view, err := h.trading.Portfolio(ctx, tournamentID, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "get portfolio failed", "tournament_id", tournamentID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, portfolioToDTO(view))
}
