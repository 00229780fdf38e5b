// Package storage declares the persistence contracts shared by the PostgreSQL
// and in-memory stores.
//
// Every balance-affecting write happens inside Store.InTx: the wallet row, the
// ledger entry and the investment progress it justifies either all commit or
// none of them do.
package storage

import (
	"context"
	"github.com/rajankumarrkr/tradeIndia/internal/domain"
)

// Tx is a unit of work. Methods ending in ForUpdate lock the row until the unit ends.
type Tx interface {
	// WalletForUpdate returns the user's wallet, creating an empty one first if needed.
	WalletForUpdate(ctx context.Context, userID int64) (*domain.Wallet, error)
	SaveWallet(ctx context.Context, w *domain.Wallet) error

	// InsertTransaction assigns ID and, when unset, CreatedAt.
	InsertTransaction(ctx context.Context, t *domain.Transaction) error
	TransactionForUpdate(ctx context.Context, id int64) (*domain.Transaction, error)
	SaveTransactionStatus(ctx context.Context, t *domain.Transaction) error

	InsertInvestment(ctx context.Context, inv *domain.Investment) error
	InvestmentForUpdate(ctx context.Context, id int64) (*domain.Investment, error)
	SaveInvestment(ctx context.Context, inv *domain.Investment) error
}

type Store interface {
	// InTx runs fn in a unit of work, committing when fn returns nil.
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	Wallet(ctx context.Context, userID int64) (*domain.Wallet, error)
	Transaction(ctx context.Context, id int64) (*domain.Transaction, error)
	// Transactions returns the user's history newest first. An empty kind means all kinds.
	Transactions(ctx context.Context, userID int64, kind domain.TransactionType) ([]domain.Transaction, error)
	// PendingTransactions returns pending entries oldest first. An empty kind means all kinds.
	PendingTransactions(ctx context.Context, kind domain.TransactionType) ([]domain.Transaction, error)

	ActiveInvestments(ctx context.Context) ([]domain.Investment, error)
	Investments(ctx context.Context, userID int64) ([]domain.Investment, error)

	Plans(ctx context.Context) ([]domain.Plan, error)
	Plan(ctx context.Context, id int64) (*domain.Plan, error)

	UserStore
	BankAccountStore
	ReferralGraph
}

type UserStore interface {
	CreateUser(ctx context.Context, u *domain.User) error
	UserByID(ctx context.Context, id int64) (*domain.User, error)
	UserByLogin(ctx context.Context, login string) (*domain.User, error)
	UserByReferralCode(ctx context.Context, code string) (*domain.User, error)
	Users(ctx context.Context) ([]domain.User, error)
	SetUserBlocked(ctx context.Context, id int64, blocked bool) error
}

type BankAccountStore interface {
	CreateBankAccount(ctx context.Context, b *domain.BankAccount) error
	BankAccount(ctx context.Context, id, userID int64) (*domain.BankAccount, error)
	BankAccounts(ctx context.Context, userID int64) ([]domain.BankAccount, error)
}

// ReferralGraph resolves the upline of a user. The graph is read-only here:
// referredBy is set once at user creation.
type ReferralGraph interface {
	// Upline returns at most depth ancestors, nearest first. Index 0 is level 1.
	Upline(ctx context.Context, userID int64, depth int) ([]int64, error)
}
