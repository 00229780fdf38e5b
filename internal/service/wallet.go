package service

import (
	"context"
	"github.com/rajankumarrkr/tradeIndia/internal/domain"
	"github.com/rajankumarrkr/tradeIndia/internal/events"
	"github.com/rajankumarrkr/tradeIndia/internal/storage"
	"github.com/rajankumarrkr/tradeIndia/pkg/keylock"
	"github.com/shopspring/decimal"
	"time"
)

// WalletStore is the only writer of wallets. Every mutation of one user's
// wallet runs under that user's lock and inside a single storage unit, so the
// balance and the ledger entry justifying it commit together.
type WalletStore struct {
	store     storage.Store
	locks     *keylock.KeyLock
	publisher events.Publisher
	now       func() time.Time
}

func NewWalletStore(store storage.Store, publisher events.Publisher) *WalletStore {
	if publisher == nil {
		publisher = events.Nop{}
	}

	return &WalletStore{
		store:     store,
		locks:     keylock.New(),
		publisher: publisher,
		now:       time.Now,
	}
}

func (s *WalletStore) WithClock(now func() time.Time) *WalletStore {
	s.now = now
	return s
}

// WithUser runs fn with the user's wallet locked. The wallet is saved with
// the rest of the unit when fn returns nil; nothing is written otherwise.
func (s *WalletStore) WithUser(ctx context.Context, userID int64, fn func(ctx context.Context, tx storage.Tx, w *domain.Wallet) error) error {
	if userID <= 0 {
		return domain.ErrInvalidReference
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	return s.store.InTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		w, err := tx.WalletForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		if err = fn(ctx, tx, w); err != nil {
			return err
		}

		return tx.SaveWallet(ctx, w)
	})
}

func (s *WalletStore) Ensure(ctx context.Context, userID int64) (*domain.Wallet, error) {
	var wallet domain.Wallet
	err := s.WithUser(ctx, userID, func(_ context.Context, _ storage.Tx, w *domain.Wallet) error {
		wallet = *w
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &wallet, nil
}

func (s *WalletStore) Wallet(ctx context.Context, userID int64) (*domain.Wallet, error) {
	return s.store.Wallet(ctx, userID)
}

// Credit adds amount to the wallet and records the success entry for it.
func (s *WalletStore) Credit(ctx context.Context, userID int64, amount decimal.Decimal, kind domain.TransactionType, meta domain.Meta) (*domain.Transaction, error) {
	var entry domain.Transaction
	err := s.WithUser(ctx, userID, func(ctx context.Context, tx storage.Tx, w *domain.Wallet) error {
		if err := w.Credit(amount, kind); err != nil {
			return err
		}

		entry = domain.NewTransaction(userID, kind, amount, meta, s.now())
		return tx.InsertTransaction(ctx, &entry)
	})
	if err != nil {
		return nil, err
	}

	s.Emit(ctx, events.TransactionCreated, entry)
	return &entry, nil
}

// Debit removes amount from the wallet and records the entry for it. A
// withdraw entry starts pending: the funds are held until an admin resolves it.
func (s *WalletStore) Debit(ctx context.Context, userID int64, amount decimal.Decimal, kind domain.TransactionType, meta domain.Meta) (*domain.Transaction, error) {
	var entry domain.Transaction
	err := s.WithUser(ctx, userID, func(ctx context.Context, tx storage.Tx, w *domain.Wallet) error {
		if err := w.Debit(amount); err != nil {
			return err
		}

		entry = domain.NewTransaction(userID, kind, amount, meta, s.now())
		return tx.InsertTransaction(ctx, &entry)
	})
	if err != nil {
		return nil, err
	}

	s.Emit(ctx, events.TransactionCreated, entry)
	return &entry, nil
}

func (s *WalletStore) Emit(ctx context.Context, kind events.Kind, entries ...domain.Transaction) {
	for _, e := range entries {
		events.Emit(ctx, s.publisher, events.FromTransaction(kind, e))
	}
}
