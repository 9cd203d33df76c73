package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/riskibarqy/trading-tournament/internal/domain/tournament"
	"github.com/riskibarqy/trading-tournament/internal/usecase"
)

func (h *Handler) CreateTournament(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateTournament")
	defer span.End()

	principal, err := principalFromContext(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req createTournamentRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.tournaments.Create(ctx, principal.UserID, usecase.CreateTournamentInput{
		Name:             req.Name,
		MaxPlayers:       req.MaxPlayers,
		StartingBalance:  req.StartingBalance,
		Timeframe:        req.Timeframe,
		BuyInAmount:      req.BuyInAmount,
		ScheduledStartAt: req.ScheduledStartAt,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create tournament failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, tournamentToDTO(item, h.anchor))
}

func (h *Handler) ListTournaments(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTournaments")
	defer span.End()

	query := r.URL.Query()
	filter := tournament.ListFilter{
		Status:    tournament.Status(strings.ToLower(strings.TrimSpace(query.Get("status")))),
		CreatorID: strings.TrimSpace(query.Get("creator_id")),
	}
	if raw := strings.TrimSpace(query.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(ctx, w, invalidQuery("limit must be a non-negative integer"))
			return
		}
		filter.Limit = limit
	}

	items, err := h.tournaments.List(ctx, filter)
	if err != nil {
		h.logger.WarnContext(ctx, "list tournaments failed", "status", filter.Status, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]tournamentDTO, 0, len(items))
	for _, item := range items {
		out = append(out, tournamentToDTO(item, h.anchor))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) GetTournament(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTournament")
	defer span.End()

	tournamentID := strings.TrimSpace(r.PathValue("tournamentID"))
	item, err := h.tournaments.Get(ctx, tournamentID)
	if err != nil {
		h.logger.WarnContext(ctx, "get tournament failed", "tournament_id", tournamentID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, tournamentToDTO(item, h.anchor))
}

func (h *Handler) GetTournamentByCode(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTournamentByCode")
	defer span.End()

	code := strings.TrimSpace(r.PathValue("code"))
	item, err := h.tournaments.GetByCode(ctx, code)
	if err != nil {
		h.logger.WarnContext(ctx, "get tournament by code failed", "code", code, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, tournamentToDTO(item, h.anchor))
}

func (h *Handler) JoinTournament(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.JoinTournament")
	defer span.End()

	principal, err := principalFromContext(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	tournamentID := strings.TrimSpace(r.PathValue("tournamentID"))

	participant, err := h.tournaments.Join(ctx, tournamentID, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "join tournament failed", "tournament_id", tournamentID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, participantToDTO(participant))
}

func (h *Handler) JoinTournamentByCode(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.JoinTournamentByCode")
	defer span.End()

	principal, err := principalFromContext(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req joinByCodeRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	participant, err := h.tournaments.JoinByCode(ctx, req.Code, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "join tournament by code failed", "code", req.Code, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, participantToDTO(participant))
}

func (h *Handler) StartTournamentEarly(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StartTournamentEarly")
	defer span.End()

	principal, err := principalFromContext(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	tournamentID := strings.TrimSpace(r.PathValue("tournamentID"))

	item, err := h.tournaments.StartEarly(ctx, tournamentID, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "start tournament early failed", "tournament_id", tournamentID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, tournamentToDTO(item, h.anchor))
}

func (h *Handler) CancelTournament(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CancelTournament")
	defer span.End()

	principal, err := principalFromContext(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	tournamentID := strings.TrimSpace(r.PathValue("tournamentID"))

	item, err := h.tournaments.Cancel(ctx, tournamentID, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "cancel tournament failed", "tournament_id", tournamentID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, tournamentToDTO(item, h.anchor))
}

func (h *Handler) ListParticipants(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListParticipants")
	defer span.End()

	tournamentID := strings.TrimSpace(r.PathValue("tournamentID"))
	items, err := h.tournaments.ListParticipants(ctx, tournamentID)
	if err != nil {
		h.logger.WarnContext(ctx, "list participants failed", "tournament_id", tournamentID, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]participantDTO, 0, len(items))
	for _, item := range items {
		out = append(out, participantToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) KickParticipant(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.KickParticipant")
	defer span.End()

	principal, err := principalFromContext(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	tournamentID := strings.TrimSpace(r.PathValue("tournamentID"))
	participantID := strings.TrimSpace(r.PathValue("userID"))

	if err := h.tournaments.Kick(ctx, tournamentID, participantID, principal.UserID); err != nil {
		h.logger.WarnContext(ctx, "kick participant failed",
			"tournament_id", tournamentID,
			"participant_id", participantID,
			"user_id", principal.UserID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"tournament_id": tournamentID, "user_id": participantID})
}

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeaderboard")
	defer span.End()

	tournamentID := strings.TrimSpace(r.PathValue("tournamentID"))
	board, err := h.valuator.Leaderboard(ctx, tournamentID)
	if err != nil {
		h.logger.WarnContext(ctx, "get leaderboard failed", "tournament_id", tournamentID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leaderboardDTO{
		Tournament: tournamentToDTO(board.Tournament, h.anchor),
		Final:      board.Final,
		Standings:  standingsToDTO(board.Standings),
	})
}
