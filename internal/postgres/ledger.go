package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"github.com/rajankumarrkr/tradeIndia/internal/domain"
	"time"
)

const (
	walletColumns      = "user_id, balance, total_recharge, total_income, updated_at"
	transactionColumns = "id, user_id, type, amount, status, meta, created_at, resolved_at"
	investmentColumns  = "id, user_id, plan_id, plan_name, invest_amount, daily_income, duration_days, days_completed, is_active, last_credited_date, created_at"
	planColumns        = "id, name, invest_amount, daily_income, duration_days, is_active"
)

type scanner interface {
	Scan(dest ...any) error
}

type pgTx struct {
	tx *sql.Tx
}

func (t *pgTx) WalletForUpdate(ctx context.Context, userID int64) (*domain.Wallet, error) {
	_, err := t.tx.ExecContext(ctx, "INSERT INTO wallets (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING", userID)
	if err != nil {
		return nil, fmt.Errorf("error ensuring wallet: %w", err)
	}

	w, err := scanWallet(t.tx.QueryRowContext(ctx, "SELECT "+walletColumns+" FROM wallets WHERE user_id = $1 FOR UPDATE", userID))
	if err != nil {
		return nil, fmt.Errorf("error locking wallet: %w", err)
	}

	return w, nil
}

func (t *pgTx) SaveWallet(ctx context.Context, w *domain.Wallet) error {
	err := t.tx.QueryRowContext(ctx,
		`UPDATE wallets SET balance = $1, total_recharge = $2, total_income = $3, updated_at = now()
		 WHERE user_id = $4 RETURNING updated_at`,
		w.Balance, w.TotalRecharge, w.TotalIncome, w.UserID,
	).Scan(&w.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error updating wallet: %w", err)
	}

	return nil
}

func (t *pgTx) InsertTransaction(ctx context.Context, tr *domain.Transaction) error {
	if tr.CreatedAt.IsZero() {
		tr.CreatedAt = time.Now()
	}

	err := t.tx.QueryRowContext(ctx,
		`INSERT INTO transactions (user_id, type, amount, status, meta, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		tr.UserID, string(tr.Type), tr.Amount, string(tr.Status), tr.Meta, tr.CreatedAt,
	).Scan(&tr.ID)
	if err != nil {
		return fmt.Errorf("error inserting transaction: %w", err)
	}

	return nil
}

func (t *pgTx) TransactionForUpdate(ctx context.Context, id int64) (*domain.Transaction, error) {
	tr, err := scanTransaction(t.tx.QueryRowContext(ctx, "SELECT "+transactionColumns+" FROM transactions WHERE id = $1 FOR UPDATE", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("error locking transaction: %w", err)
	}

	return tr, nil
}

func (t *pgTx) SaveTransactionStatus(ctx context.Context, tr *domain.Transaction) error {
	_, err := t.tx.ExecContext(ctx,
		"UPDATE transactions SET status = $1, resolved_at = $2 WHERE id = $3",
		string(tr.Status), tr.ResolvedAt, tr.ID)
	if err != nil {
		return fmt.Errorf("error updating transaction status: %w", err)
	}

	return nil
}

func (t *pgTx) InsertInvestment(ctx context.Context, inv *domain.Investment) error {
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now()
	}

	err := t.tx.QueryRowContext(ctx,
		`INSERT INTO investments (user_id, plan_id, plan_name, invest_amount, daily_income, duration_days, days_completed, is_active, last_credited_date, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`,
		inv.UserID, inv.PlanID, inv.PlanName, inv.InvestAmount, inv.DailyIncome, inv.DurationDays,
		inv.DaysCompleted, inv.IsActive, nullDate(inv.LastCreditedDate), inv.CreatedAt,
	).Scan(&inv.ID)
	if err != nil {
		return fmt.Errorf("error inserting investment: %w", err)
	}

	return nil
}

func (t *pgTx) InvestmentForUpdate(ctx context.Context, id int64) (*domain.Investment, error) {
	inv, err := scanInvestment(t.tx.QueryRowContext(ctx, "SELECT "+investmentColumns+" FROM investments WHERE id = $1 FOR UPDATE", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInvestmentNotFound
		}
		return nil, fmt.Errorf("error locking investment: %w", err)
	}

	return inv, nil
}

func (t *pgTx) SaveInvestment(ctx context.Context, inv *domain.Investment) error {
	_, err := t.tx.ExecContext(ctx,
		"UPDATE investments SET days_completed = $1, is_active = $2, last_credited_date = $3 WHERE id = $4",
		inv.DaysCompleted, inv.IsActive, nullDate(inv.LastCreditedDate), inv.ID)
	if err != nil {
		return fmt.Errorf("error updating investment: %w", err)
	}

	return nil
}

func (p *Postgres) Wallet(ctx context.Context, userID int64) (*domain.Wallet, error) {
	w, err := scanWallet(p.DB.QueryRowContext(ctx, "SELECT "+walletColumns+" FROM wallets WHERE user_id = $1", userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &domain.Wallet{UserID: userID}, nil
		}
		return nil, fmt.Errorf("error fetching wallet: %w", err)
	}

	return w, nil
}

func (p *Postgres) Transaction(ctx context.Context, id int64) (*domain.Transaction, error) {
	tr, err := scanTransaction(p.DB.QueryRowContext(ctx, "SELECT "+transactionColumns+" FROM transactions WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("error fetching transaction: %w", err)
	}

	return tr, nil
}

func (p *Postgres) Transactions(ctx context.Context, userID int64, kind domain.TransactionType) ([]domain.Transaction, error) {
	return p.queryTransactions(ctx,
		"SELECT "+transactionColumns+` FROM transactions
		 WHERE user_id = $1 AND ($2 = '' OR type = $2)
		 ORDER BY created_at DESC, id DESC`,
		userID, string(kind))
}

func (p *Postgres) PendingTransactions(ctx context.Context, kind domain.TransactionType) ([]domain.Transaction, error) {
	return p.queryTransactions(ctx,
		"SELECT "+transactionColumns+` FROM transactions
		 WHERE status = 'pending' AND ($1 = '' OR type = $1)
		 ORDER BY id`,
		string(kind))
}

func (p *Postgres) queryTransactions(ctx context.Context, query string, args ...any) ([]domain.Transaction, error) {
	rows, err := p.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error fetching transactions: %w", err)
	}
	defer closeRows(rows)

	var transactions []domain.Transaction
	for rows.Next() {
		tr, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning transaction: %w", err)
		}
		transactions = append(transactions, *tr)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over transactions: %w", err)
	}

	return transactions, nil
}

func (p *Postgres) ActiveInvestments(ctx context.Context) ([]domain.Investment, error) {
	return p.queryInvestments(ctx, "SELECT "+investmentColumns+" FROM investments WHERE is_active ORDER BY id")
}

func (p *Postgres) Investments(ctx context.Context, userID int64) ([]domain.Investment, error) {
	return p.queryInvestments(ctx, "SELECT "+investmentColumns+" FROM investments WHERE user_id = $1 ORDER BY id DESC", userID)
}

func (p *Postgres) queryInvestments(ctx context.Context, query string, args ...any) ([]domain.Investment, error) {
	rows, err := p.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error fetching investments: %w", err)
	}
	defer closeRows(rows)

	var investments []domain.Investment
	for rows.Next() {
		inv, err := scanInvestment(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning investment: %w", err)
		}
		investments = append(investments, *inv)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over investments: %w", err)
	}

	return investments, nil
}

func (p *Postgres) Plans(ctx context.Context) ([]domain.Plan, error) {
	rows, err := p.DB.QueryContext(ctx, "SELECT "+planColumns+" FROM plans WHERE is_active ORDER BY invest_amount")
	if err != nil {
		return nil, fmt.Errorf("error fetching plans: %w", err)
	}
	defer closeRows(rows)

	var plans []domain.Plan
	for rows.Next() {
		var pl domain.Plan
		if err := rows.Scan(&pl.ID, &pl.Name, &pl.InvestAmount, &pl.DailyIncome, &pl.DurationDays, &pl.IsActive); err != nil {
			return nil, fmt.Errorf("error scanning plan: %w", err)
		}
		plans = append(plans, pl)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over plans: %w", err)
	}

	return plans, nil
}

func (p *Postgres) Plan(ctx context.Context, id int64) (*domain.Plan, error) {
	var pl domain.Plan
	err := p.DB.QueryRowContext(ctx, "SELECT "+planColumns+" FROM plans WHERE id = $1", id).
		Scan(&pl.ID, &pl.Name, &pl.InvestAmount, &pl.DailyIncome, &pl.DurationDays, &pl.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPlanNotFound
		}
		return nil, fmt.Errorf("error fetching plan: %w", err)
	}

	return &pl, nil
}

func scanWallet(row scanner) (*domain.Wallet, error) {
	var w domain.Wallet
	if err := row.Scan(&w.UserID, &w.Balance, &w.TotalRecharge, &w.TotalIncome, &w.UpdatedAt); err != nil {
		return nil, err
	}
	return &w, nil
}

func scanTransaction(row scanner) (*domain.Transaction, error) {
	var (
		tr         domain.Transaction
		kind       string
		status     string
		resolvedAt sql.NullTime
	)
	if err := row.Scan(&tr.ID, &tr.UserID, &kind, &tr.Amount, &status, &tr.Meta, &tr.CreatedAt, &resolvedAt); err != nil {
		return nil, err
	}
	tr.Type = domain.TransactionType(kind)
	tr.Status = domain.TransactionStatus(status)
	if resolvedAt.Valid {
		at := resolvedAt.Time
		tr.ResolvedAt = &at
	}
	return &tr, nil
}

func scanInvestment(row scanner) (*domain.Investment, error) {
	var (
		inv          domain.Investment
		lastCredited sql.NullTime
	)
	err := row.Scan(&inv.ID, &inv.UserID, &inv.PlanID, &inv.PlanName, &inv.InvestAmount, &inv.DailyIncome,
		&inv.DurationDays, &inv.DaysCompleted, &inv.IsActive, &lastCredited, &inv.CreatedAt)
	if err != nil {
		return nil, err
	}
	if lastCredited.Valid {
		// DATE columns come back as midnight UTC; the calendar day is what matters.
		inv.LastCreditedDate = domain.DateOf(lastCredited.Time, time.UTC)
	}
	return &inv, nil
}

func nullDate(d domain.Date) sql.NullTime {
	if d.IsZero() {
		return sql.NullTime{}
	}
	t, err := time.Parse("2006-01-02", string(d))
	if err != nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
