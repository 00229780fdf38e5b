package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rajankumarrkr/tradeIndia/internal/domain"
	"github.com/rajankumarrkr/tradeIndia/internal/storage"
	"github.com/rajankumarrkr/tradeIndia/pkg/logger"
)

const (
	transactionRollbackError = "error rolling back transaction"

	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

type Postgres struct {
	DB *sql.DB
}

var _ storage.Store = (*Postgres)(nil)

func New(db *sql.DB) *Postgres {
	return &Postgres{DB: db}
}

func (p *Postgres) Close() error {
	return p.DB.Close()
}

func (p *Postgres) InTx(ctx context.Context, fn func(ctx context.Context, tx storage.Tx) error) error {
	tx, err := p.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}

	if err = fn(ctx, &pgTx{tx: tx}); err != nil {
		rollback(tx)
		return err
	}

	if err = tx.Commit(); err != nil {
		rollback(tx)
		return fmt.Errorf("error committing transaction: %w", err)
	}

	return nil
}

func (p *Postgres) CreateUser(ctx context.Context, u *domain.User) error {
	err := p.DB.QueryRowContext(ctx,
		`INSERT INTO users (login, password, referral_code, referred_by, is_admin)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id, registered_at`,
		u.Login, u.Password, u.ReferralCode, u.ReferredBy, u.IsAdmin,
	).Scan(&u.ID, &u.RegisteredAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case uniqueViolation:
				logger.Log.Warn("user already exists", logger.String("login", u.Login))
				return domain.ErrUserExists
			case foreignKeyViolation:
				return fmt.Errorf("%w: referrer does not exist", domain.ErrInvalidReference)
			}
		}
		return fmt.Errorf("error creating user: %w", err)
	}

	return nil
}

const userColumns = "id, login, password, referral_code, referred_by, is_blocked, is_admin, registered_at"

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	var (
		u          domain.User
		referredBy sql.NullInt64
	)
	err := row.Scan(&u.ID, &u.Login, &u.Password, &u.ReferralCode, &referredBy, &u.IsBlocked, &u.IsAdmin, &u.RegisteredAt)
	if err != nil {
		return nil, err
	}
	if referredBy.Valid {
		id := referredBy.Int64
		u.ReferredBy = &id
	}
	return &u, nil
}

func (p *Postgres) userBy(ctx context.Context, column string, value any) (*domain.User, error) {
	row := p.DB.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE "+column+" = $1", value)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("error fetching user: %w", err)
	}

	return u, nil
}

func (p *Postgres) UserByID(ctx context.Context, id int64) (*domain.User, error) {
	return p.userBy(ctx, "id", id)
}

func (p *Postgres) UserByLogin(ctx context.Context, login string) (*domain.User, error) {
	return p.userBy(ctx, "login", login)
}

func (p *Postgres) UserByReferralCode(ctx context.Context, code string) (*domain.User, error) {
	return p.userBy(ctx, "referral_code", code)
}

func (p *Postgres) Users(ctx context.Context) ([]domain.User, error) {
	rows, err := p.DB.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("error fetching users: %w", err)
	}
	defer closeRows(rows)

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning user: %w", err)
		}
		users = append(users, *u)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over users: %w", err)
	}

	return users, nil
}

func (p *Postgres) SetUserBlocked(ctx context.Context, id int64, blocked bool) error {
	result, err := p.DB.ExecContext(ctx, "UPDATE users SET is_blocked = $1 WHERE id = $2", blocked, id)
	if err != nil {
		return fmt.Errorf("error updating user block flag: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking rows affected for user update: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrUserNotFound
	}

	return nil
}

// Upline walks referred_by links from the user's direct referrer outwards.
func (p *Postgres) Upline(ctx context.Context, userID int64, depth int) ([]int64, error) {
	if depth <= 0 {
		return nil, nil
	}

	rows, err := p.DB.QueryContext(ctx, `
		WITH RECURSIVE upline (id, referred_by, level) AS (
			SELECT u.id, u.referred_by, 1
			FROM users u
			WHERE u.id = (SELECT referred_by FROM users WHERE id = $1)
			UNION ALL
			SELECT u.id, u.referred_by, up.level + 1
			FROM users u
			JOIN upline up ON u.id = up.referred_by
			WHERE up.level < $2
		)
		SELECT id FROM upline ORDER BY level`, userID, depth)
	if err != nil {
		return nil, fmt.Errorf("error fetching upline: %w", err)
	}
	defer closeRows(rows)

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning upline: %w", err)
		}
		ids = append(ids, id)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over upline: %w", err)
	}

	return ids, nil
}

func (p *Postgres) CreateBankAccount(ctx context.Context, b *domain.BankAccount) error {
	err := p.DB.QueryRowContext(ctx,
		`INSERT INTO bank_accounts (user_id, account_holder, bank_name, account_number, ifsc, branch)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`,
		b.UserID, b.AccountHolder, b.BankName, b.AccountNumber, b.IFSC, b.Branch,
	).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating bank account: %w", err)
	}

	return nil
}

const bankAccountColumns = "id, user_id, account_holder, bank_name, account_number, ifsc, branch, created_at"

func (p *Postgres) BankAccount(ctx context.Context, id, userID int64) (*domain.BankAccount, error) {
	var b domain.BankAccount
	err := p.DB.QueryRowContext(ctx,
		"SELECT "+bankAccountColumns+" FROM bank_accounts WHERE id = $1 AND user_id = $2", id, userID,
	).Scan(&b.ID, &b.UserID, &b.AccountHolder, &b.BankName, &b.AccountNumber, &b.IFSC, &b.Branch, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBankAccountNotFound
		}
		return nil, fmt.Errorf("error fetching bank account: %w", err)
	}

	return &b, nil
}

func (p *Postgres) BankAccounts(ctx context.Context, userID int64) ([]domain.BankAccount, error) {
	rows, err := p.DB.QueryContext(ctx,
		"SELECT "+bankAccountColumns+" FROM bank_accounts WHERE user_id = $1 ORDER BY id", userID)
	if err != nil {
		return nil, fmt.Errorf("error fetching bank accounts: %w", err)
	}
	defer closeRows(rows)

	var accounts []domain.BankAccount
	for rows.Next() {
		var b domain.BankAccount
		err := rows.Scan(&b.ID, &b.UserID, &b.AccountHolder, &b.BankName, &b.AccountNumber, &b.IFSC, &b.Branch, &b.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning bank account: %w", err)
		}
		accounts = append(accounts, b)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over bank accounts: %w", err)
	}

	return accounts, nil
}

func rollback(tx *sql.Tx) {
	err := tx.Rollback()
	if err != nil && !errors.Is(err, sql.ErrTxDone) {
		logger.Log.Error(transactionRollbackError, logger.Error(err))
	}
}

func closeRows(rows *sql.Rows) {
	err := rows.Close()
	if err != nil {
		logger.Log.Error("error closing rows", logger.Error(err))
	}
}
