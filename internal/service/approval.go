package service

import (
	"context"
	"fmt"
	"github.com/rajankumarrkr/tradeIndia/internal/domain"
	"github.com/rajankumarrkr/tradeIndia/internal/events"
	"github.com/rajankumarrkr/tradeIndia/internal/storage"
	"github.com/rajankumarrkr/tradeIndia/pkg/logger"
	"github.com/shopspring/decimal"
	"strings"
	"time"
)

// ApprovalService resolves pending recharges and withdrawals. Only a pending
// entry can be resolved, which makes every call safe to retry.
type ApprovalService struct {
	store   storage.Store
	wallets *WalletStore
	now     func() time.Time
}

func NewApprovalService(store storage.Store, wallets *WalletStore) *ApprovalService {
	return &ApprovalService{
		store:   store,
		wallets: wallets,
		now:     time.Now,
	}
}

func (s *ApprovalService) WithClock(now func() time.Time) *ApprovalService {
	s.now = now
	return s
}

// ApproveRecharge credits the deposit and marks the entry success.
func (s *ApprovalService) ApproveRecharge(ctx context.Context, txID int64) (*domain.Transaction, error) {
	return s.resolve(ctx, txID, domain.TypeRecharge, domain.StatusSuccess, func(w *domain.Wallet, t *domain.Transaction) error {
		return w.Credit(t.Amount, domain.TypeRecharge)
	})
}

// RejectRecharge marks the entry rejected. The funds were never held.
func (s *ApprovalService) RejectRecharge(ctx context.Context, txID int64) (*domain.Transaction, error) {
	return s.resolve(ctx, txID, domain.TypeRecharge, domain.StatusRejected, nil)
}

// ApproveWithdrawal marks the entry success. The funds left the balance at creation.
func (s *ApprovalService) ApproveWithdrawal(ctx context.Context, txID int64) (*domain.Transaction, error) {
	return s.resolve(ctx, txID, domain.TypeWithdraw, domain.StatusSuccess, nil)
}

// RejectWithdrawal refunds the held amount and marks the entry rejected.
func (s *ApprovalService) RejectWithdrawal(ctx context.Context, txID int64) (*domain.Transaction, error) {
	return s.resolve(ctx, txID, domain.TypeWithdraw, domain.StatusRejected, func(w *domain.Wallet, t *domain.Transaction) error {
		return w.Credit(t.Amount, domain.TypeWithdraw)
	})
}

func (s *ApprovalService) resolve(
	ctx context.Context,
	txID int64,
	kind domain.TransactionType,
	to domain.TransactionStatus,
	apply func(w *domain.Wallet, t *domain.Transaction) error,
) (*domain.Transaction, error) {
	if txID <= 0 {
		return nil, fmt.Errorf("%w: transaction id", domain.ErrInvalidReference)
	}

	current, err := s.store.Transaction(ctx, txID)
	if err != nil {
		return nil, err
	}
	if current.Type != kind {
		return nil, fmt.Errorf("%w: transaction %d is a %s, not a %s", domain.ErrInvalidReference, txID, current.Type, kind)
	}

	var resolved domain.Transaction
	err = s.wallets.WithUser(ctx, current.UserID, func(ctx context.Context, tx storage.Tx, w *domain.Wallet) error {
		locked, err := tx.TransactionForUpdate(ctx, txID)
		if err != nil {
			return err
		}

		if err = locked.Resolve(to, s.now()); err != nil {
			return err
		}

		if apply != nil {
			if err = apply(w, locked); err != nil {
				return err
			}
		}

		if err = tx.SaveTransactionStatus(ctx, locked); err != nil {
			return err
		}

		resolved = *locked
		return nil
	})
	if err != nil {
		logger.Log.Warn("error resolving transaction",
			logger.Int64("transaction_id", txID),
			logger.String("to", string(to)),
			logger.Error(err))
		return nil, err
	}

	logger.Log.Info("transaction resolved",
		logger.Int64("transaction_id", txID),
		logger.Int64("user_id", resolved.UserID),
		logger.String("type", string(kind)),
		logger.String("status", string(to)))
	s.wallets.Emit(ctx, events.TransactionResolved, resolved)

	return &resolved, nil
}

// AddAmount credits an existing user unconditionally as admin income.
func (s *ApprovalService) AddAmount(ctx context.Context, userID int64, amount decimal.Decimal, note string) (*domain.Transaction, error) {
	if err := domain.ValidateMoney(amount); err != nil {
		return nil, err
	}
	if _, err := s.store.UserByID(ctx, userID); err != nil {
		return nil, err
	}

	entry, err := s.wallets.Credit(ctx, userID, amount, domain.TypeAdminAdd, domain.Meta{Note: strings.TrimSpace(note)})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("admin credit added", logger.Int64("user_id", userID), logger.Decimal("amount", amount))
	return entry, nil
}

func (s *ApprovalService) PendingTransactions(ctx context.Context, kind domain.TransactionType) ([]domain.Transaction, error) {
	if kind != "" && !kind.NeedsApproval() {
		return nil, fmt.Errorf("%w: %q entries are never pending", domain.ErrInvalidReference, kind)
	}
	return s.store.PendingTransactions(ctx, kind)
}
