package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/riskibarqy/trading-tournament/internal/usecase"
)

const defaultWalletEntryLimit = 50

func (h *Handler) GetMyWallet(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMyWallet")
	defer span.End()

	principal, err := principalFromContext(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	limit := defaultWalletEntryLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(ctx, w, invalidQuery("limit must be a non-negative integer"))
			return
		}
	}

	view, err := h.wallets.Get(ctx, principal.UserID, limit)
	if err != nil {
		h.logger.WarnContext(ctx, "get wallet failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, walletToDTO(view.Wallet, view.Entries))
}

func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Deposit")
	defer span.End()

	principal, err := principalFromContext(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req depositRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	balance, err := h.wallets.Deposit(ctx, principal, req.UserID, req.Amount)
	if err != nil {
		h.logger.WarnContext(ctx, "deposit failed", "user_id", req.UserID, "caller", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, walletToDTO(balance, nil))
}

func (h *Handler) GetMyAchievements(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMyAchievements")
	defer span.End()

	principal, err := principalFromContext(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	profile, err := h.achievements.Profile(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "get achievements failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, achievementProfileToDTO(principal.UserID, profile))
}

func (h *Handler) AchievementCatalog(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AchievementCatalog")
	defer span.End()

	defs := h.achievements.Catalog()
	out := make([]achievementDefinitionDTO, 0, len(defs))
	for _, def := range defs {
		out = append(out, achievementDefinitionDTO{
			Type:        string(def.Type),
			Tier:        string(def.Tier),
			Name:        def.Name,
			Description: def.Description,
			Points:      def.Tier.Points(),
		})
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) RunExpirationSweep(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunExpirationSweep")
	defer span.End()

	principal, err := principalFromContext(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.sweeps.ManualExpirationSweep(ctx, principal)
	if err != nil {
		h.logger.WarnContext(ctx, "manual sweep failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func invalidQuery(msg string) error {
	return fmt.Errorf("%w: %s", usecase.ErrInvalidInput, msg)
}
