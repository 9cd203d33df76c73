package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/riskibarqy/trading-tournament/internal/domain/uow"
	"github.com/riskibarqy/trading-tournament/internal/domain/user"
	"github.com/riskibarqy/trading-tournament/internal/domain/wallet"
	"github.com/riskibarqy/trading-tournament/internal/platform/logging"
)

const defaultEntryLimit = 50

type WalletView struct {
	Wallet  wallet.Wallet
	Entries []wallet.Entry
}

type WalletService struct {
	store  uow.Manager
	ledger *Ledger
	logger *logging.Logger
}

func NewWalletService(store uow.Manager, ledger *Ledger, logger *logging.Logger) *WalletService {
	if logger == nil {
		logger = logging.Default()
	}
	return &WalletService{store: store, ledger: ledger, logger: logger}
}

func (s *WalletService) Get(ctx context.Context, userID string, limit int) (WalletView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WalletService.Get")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return WalletView{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if limit <= 0 || limit > 500 {
		limit = defaultEntryLimit
	}

	var out WalletView
	err := s.store.View(ctx, func(ctx context.Context, repos uow.Repositories) error {
		w, err := repos.Wallets.Get(ctx, userID)
		if err != nil {
			return fmt.Errorf("get wallet: %w", err)
		}
		entries, err := repos.Wallets.ListEntries(ctx, userID, limit)
		if err != nil {
			return fmt.Errorf("list wallet entries: %w", err)
		}
		out = WalletView{Wallet: w, Entries: entries}
		return nil
	})
	if err != nil {
		return WalletView{}, classify(err)
	}
	return out, nil
}

// Deposit funds a user's wallet. Admin only.
func (s *WalletService) Deposit(ctx context.Context, caller user.Principal, userID string, amount decimal.Decimal) (wallet.Wallet, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WalletService.Deposit")
	defer span.End()

	if err := requireAdmin(caller); err != nil {
		return wallet.Wallet{}, err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return wallet.Wallet{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if !amount.IsPositive() {
		return wallet.Wallet{}, fmt.Errorf("%w: deposit amount must be positive", ErrInvalidInput)
	}

	var out wallet.Wallet
	err := s.store.Do(ctx, func(ctx context.Context, repos uow.Repositories) error {
		if err := s.ledger.Credit(ctx, repos, userID, amount.Round(2), wallet.ReasonDeposit, ""); err != nil {
			return err
		}
		w, err := repos.Wallets.Get(ctx, userID)
		if err != nil {
			return fmt.Errorf("get wallet: %w", err)
		}
		out = w
		return nil
	})
	if err != nil {
		return wallet.Wallet{}, classify(err)
	}
	s.logger.InfoContext(ctx, "wallet deposit", "user_id", userID, "amount", amount.StringFixed(2), "by", caller.UserID)
	return out, nil
}
