package service

import (
	"context"
	"errors"
	"github.com/rajankumarrkr/tradeIndia/internal/domain"
	"github.com/rajankumarrkr/tradeIndia/internal/lock"
	"github.com/rajankumarrkr/tradeIndia/internal/storage"
	"github.com/rajankumarrkr/tradeIndia/internal/storage/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"sync"
	"testing"
	"time"
)

var (
	errBoom = errors.New("boom")
	minimum = decimal.NewFromInt(300)
	gstRate = decimal.NewFromInt(15)
	testDay = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	rates   = []decimal.Decimal{decimal.RequireFromString("0.10"), decimal.RequireFromString("0.05")}
	fromInt = decimal.NewFromInt
	noMeta  = domain.Meta{}
	bgCtx   = context.Background()
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fixture struct {
	mem         *memory.Store
	store       storage.Store
	clock       *clock
	wallets     *WalletStore
	payments    *PaymentService
	approvals   *ApprovalService
	investments *InvestmentService
	distributor *Distributor
	engine      *AccrualEngine
	locker      *lock.LocalLocker
}

type fixtureOption func(store storage.Store) storage.Store

func newFixture(t *testing.T, wrap ...fixtureOption) *fixture {
	t.Helper()

	c := &clock{t: testDay}
	mem := memory.New().WithClock(c.Now)

	var store storage.Store = mem
	for _, w := range wrap {
		store = w(store)
	}

	wallets := NewWalletStore(store, nil).WithClock(c.Now)
	distributor := NewDistributor(wallets, store, rates)
	locker := lock.NewLocalLocker()

	return &fixture{
		mem:         mem,
		store:       store,
		clock:       c,
		wallets:     wallets,
		payments:    NewPaymentService(store, wallets, minimum, gstRate).WithClock(c.Now),
		approvals:   NewApprovalService(store, wallets).WithClock(c.Now),
		investments: NewInvestmentService(store, wallets).WithClock(c.Now),
		distributor: distributor,
		engine:      NewAccrualEngine(store, wallets, distributor, locker, nil, time.UTC).WithClock(c.Now),
		locker:      locker,
	}
}

func (f *fixture) user(t *testing.T, login string, referredBy *domain.User) *domain.User {
	t.Helper()

	u := &domain.User{Login: login, Password: "x", ReferralCode: "ref-" + login}
	if referredBy != nil {
		u.ReferredBy = &referredBy.ID
	}
	require.NoError(t, f.mem.CreateUser(bgCtx, u))
	return u
}

func (f *fixture) fund(t *testing.T, userID int64, amount int64) {
	t.Helper()

	_, err := f.wallets.Credit(bgCtx, userID, fromInt(amount), domain.TypeAdminAdd, noMeta)
	require.NoError(t, err)
}

func (f *fixture) balance(t *testing.T, userID int64) decimal.Decimal {
	t.Helper()

	w, err := f.store.Wallet(bgCtx, userID)
	require.NoError(t, err)
	return w.Balance
}

func (f *fixture) plan(days int, daily int64) domain.Plan {
	return f.mem.AddPlan(domain.Plan{
		Name:         "Test",
		InvestAmount: fromInt(500),
		DailyIncome:  fromInt(daily),
		DurationDays: days,
		IsActive:     true,
	})
}

func (f *fixture) bank(t *testing.T, userID int64) *domain.BankAccount {
	t.Helper()

	b, err := f.payments.AddBankAccount(bgCtx, domain.BankAccount{
		UserID:        userID,
		AccountHolder: "Ravi Kumar",
		BankName:      "SBI",
		AccountNumber: "00001234567890",
		IFSC:          "sbin0000001",
	})
	require.NoError(t, err)
	return b
}

// failOnInsert makes every ledger insert for userID fail inside its unit.
func failOnInsert(userID int64) fixtureOption {
	return func(store storage.Store) storage.Store {
		return &failingStore{Store: store, failUser: userID}
	}
}

type failingStore struct {
	storage.Store
	failUser int64
}

func (s *failingStore) InTx(ctx context.Context, fn func(ctx context.Context, tx storage.Tx) error) error {
	return s.Store.InTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		return fn(ctx, &failingTx{Tx: tx, failUser: s.failUser})
	})
}

type failingTx struct {
	storage.Tx
	failUser int64
}

func (t *failingTx) InsertTransaction(ctx context.Context, tr *domain.Transaction) error {
	if tr.UserID == t.failUser {
		return errBoom
	}
	return t.Tx.InsertTransaction(ctx, tr)
}
