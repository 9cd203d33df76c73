package httpapi

import (
	"context"
	"fmt"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/riskibarqy/trading-tournament/internal/domain/tournament"
	"github.com/riskibarqy/trading-tournament/internal/platform/logging"
	"github.com/riskibarqy/trading-tournament/internal/usecase"
)

const maxRequestBodyBytes = 1 << 20

type Services struct {
	Tournaments  *usecase.TournamentService
	Trading      *usecase.TradingService
	Valuator     *usecase.PortfolioValuator
	Wallets      *usecase.WalletService
	Achievements *usecase.AchievementService
	Sweeps       *usecase.SweepService
}

type Handler struct {
	tournaments  *usecase.TournamentService
	trading      *usecase.TradingService
	valuator     *usecase.PortfolioValuator
	wallets      *usecase.WalletService
	achievements *usecase.AchievementService
	sweeps       *usecase.SweepService
	anchor       tournament.ExpiryAnchor
	logger       *logging.Logger
	validator    *validator.Validate
}

func NewHandler(svc Services, anchor tournament.ExpiryAnchor, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if !anchor.Valid() {
		anchor = tournament.AnchorCreatedAt
	}

	return &Handler{
		tournaments:  svc.Tournaments,
		trading:      svc.Trading,
		valuator:     svc.Valuator,
		wallets:      svc.Wallets,
		achievements: svc.Achievements,
		sweeps:       svc.Sweeps,
		anchor:       anchor,
		logger:       logger,
		validator:    validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeSuccess(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

// decodeRequest reads a JSON body into dst and validates it.
func (h *Handler) decodeRequest(ctx context.Context, r *http.Request, dst any) error {
	decoder := sonic.ConfigDefault.NewDecoder(http.MaxBytesReader(nil, r.Body, maxRequestBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return h.validateRequest(ctx, dst)
}
