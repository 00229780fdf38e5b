package service

import (
	"context"
	"errors"
	"fmt"
	"github.com/rajankumarrkr/tradeIndia/internal/domain"
	"github.com/rajankumarrkr/tradeIndia/internal/events"
	"github.com/rajankumarrkr/tradeIndia/internal/storage"
	"github.com/rajankumarrkr/tradeIndia/pkg/logger"
	"github.com/shopspring/decimal"
	"strings"
	"time"
)

var hundred = decimal.NewFromInt(100)

type PaymentService struct {
	store      storage.Store
	wallets    *WalletStore
	minimum    decimal.Decimal
	gstPercent decimal.Decimal
	now        func() time.Time
}

func NewPaymentService(store storage.Store, wallets *WalletStore, minimum, gstPercent decimal.Decimal) *PaymentService {
	return &PaymentService{
		store:      store,
		wallets:    wallets,
		minimum:    minimum,
		gstPercent: gstPercent,
		now:        time.Now,
	}
}

func (s *PaymentService) WithClock(now func() time.Time) *PaymentService {
	s.now = now
	return s
}

// CreateRecharge records a manually attested deposit. Nothing is credited
// until an admin approves it.
func (s *PaymentService) CreateRecharge(ctx context.Context, req domain.RechargeRequest) (*domain.Transaction, error) {
	if err := req.Validate(s.minimum); err != nil {
		return nil, err
	}
	if err := activeUser(ctx, s.store, req.UserID); err != nil {
		return nil, err
	}

	entry := domain.NewTransaction(req.UserID, domain.TypeRecharge, req.Amount, domain.Meta{
		UTR:        strings.TrimSpace(req.UTR),
		UPIID:      strings.TrimSpace(req.UPIID),
		Screenshot: req.Screenshot,
	}, s.now())

	err := s.store.InTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		return tx.InsertTransaction(ctx, &entry)
	})
	if err != nil {
		return nil, fmt.Errorf("error creating recharge: %w", err)
	}

	logger.Log.Info("recharge requested",
		logger.Int64("user_id", req.UserID),
		logger.Int64("transaction_id", entry.ID),
		logger.Decimal("amount", req.Amount))
	s.wallets.Emit(ctx, events.TransactionCreated, entry)

	return &entry, nil
}

// CreateWithdrawal holds the amount right away and records a pending entry
// carrying a snapshot of the destination bank account.
func (s *PaymentService) CreateWithdrawal(ctx context.Context, req domain.WithdrawalRequest) (*domain.Transaction, error) {
	if err := req.Validate(s.minimum); err != nil {
		return nil, err
	}
	if err := activeUser(ctx, s.store, req.UserID); err != nil {
		return nil, err
	}

	account, err := s.store.BankAccount(ctx, req.BankAccountID, req.UserID)
	if err != nil {
		return nil, err
	}

	details := account.Snapshot()
	gst := req.Amount.Mul(s.gstPercent).Div(hundred).Round(2)

	entry, err := s.wallets.Debit(ctx, req.UserID, req.Amount, domain.TypeWithdraw, domain.Meta{
		BankAccountID: account.ID,
		BankDetails:   &details,
		GST:           &gst,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientFunds) {
			logger.Log.Warn("withdrawal rejected, insufficient funds", logger.Int64("user_id", req.UserID))
		}
		return nil, err
	}

	logger.Log.Info("withdrawal requested",
		logger.Int64("user_id", req.UserID),
		logger.Int64("transaction_id", entry.ID),
		logger.Decimal("amount", req.Amount))

	return entry, nil
}

func (s *PaymentService) Wallet(ctx context.Context, userID int64) (*domain.Wallet, error) {
	return s.wallets.Wallet(ctx, userID)
}

// History lists the user's ledger newest first, optionally for one kind only.
func (s *PaymentService) History(ctx context.Context, userID int64, kind domain.TransactionType) ([]domain.Transaction, error) {
	if kind != "" && !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown transaction type %q", domain.ErrInvalidReference, kind)
	}
	return s.store.Transactions(ctx, userID, kind)
}

func (s *PaymentService) AddBankAccount(ctx context.Context, b domain.BankAccount) (*domain.BankAccount, error) {
	b.AccountHolder = strings.TrimSpace(b.AccountHolder)
	b.BankName = strings.TrimSpace(b.BankName)
	b.AccountNumber = strings.TrimSpace(b.AccountNumber)
	b.IFSC = strings.ToUpper(strings.TrimSpace(b.IFSC))
	b.Branch = strings.TrimSpace(b.Branch)

	var errs []error
	if b.UserID <= 0 {
		errs = append(errs, fmt.Errorf("%w: user id", domain.ErrInvalidReference))
	}
	if b.AccountHolder == "" {
		errs = append(errs, fmt.Errorf("%w: account holder is required", domain.ErrInvalidReference))
	}
	if b.BankName == "" {
		errs = append(errs, fmt.Errorf("%w: bank name is required", domain.ErrInvalidReference))
	}
	if b.AccountNumber == "" {
		errs = append(errs, fmt.Errorf("%w: account number is required", domain.ErrInvalidReference))
	}
	if b.IFSC == "" {
		errs = append(errs, fmt.Errorf("%w: ifsc is required", domain.ErrInvalidReference))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	if err := s.store.CreateBankAccount(ctx, &b); err != nil {
		return nil, err
	}

	return &b, nil
}

func (s *PaymentService) BankAccounts(ctx context.Context, userID int64) ([]domain.BankAccount, error) {
	return s.store.BankAccounts(ctx, userID)
}

func activeUser(ctx context.Context, users storage.UserStore, userID int64) error {
	u, err := users.UserByID(ctx, userID)
	if err != nil {
		return err
	}
	if u.IsBlocked {
		logger.Log.Warn("blocked user attempted a wallet operation", logger.Int64("user_id", userID))
		return domain.ErrUserBlocked
	}
	return nil
}
