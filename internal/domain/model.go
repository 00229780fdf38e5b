package domain

import (
	"github.com/shopspring/decimal"
	"time"
)

type User struct {
	ID           int64
	Login        string
	Password     string
	ReferralCode string
	ReferredBy   *int64
	IsBlocked    bool
	IsAdmin      bool
	RegisteredAt time.Time
}

type Wallet struct {
	UserID        int64
	Balance       decimal.Decimal
	TotalRecharge decimal.Decimal
	TotalIncome   decimal.Decimal
	UpdatedAt     time.Time
}

// Credit adds amount to the spendable balance and to the lifetime total
// matching kind. A withdraw kind is a refund and only restores the balance.
func (w *Wallet) Credit(amount decimal.Decimal, kind TransactionType) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	w.Balance = w.Balance.Add(amount)
	switch {
	case kind == TypeRecharge:
		w.TotalRecharge = w.TotalRecharge.Add(amount)
	case kind.IsIncome():
		w.TotalIncome = w.TotalIncome.Add(amount)
	}

	return nil
}

// Debit removes amount from the balance. The wallet is left untouched on error.
func (w *Wallet) Debit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if w.Balance.LessThan(amount) {
		return ErrInsufficientFunds
	}

	w.Balance = w.Balance.Sub(amount)
	return nil
}

type Plan struct {
	ID           int64
	Name         string
	InvestAmount decimal.Decimal
	DailyIncome  decimal.Decimal
	DurationDays int
	IsActive     bool
}

type Investment struct {
	ID               int64
	UserID           int64
	PlanID           int64
	PlanName         string
	InvestAmount     decimal.Decimal
	DailyIncome      decimal.Decimal
	DurationDays     int
	DaysCompleted    int
	IsActive         bool
	LastCreditedDate Date
	CreatedAt        time.Time
}

// NewInvestment snapshots the plan terms so later plan edits don't change the holding.
func NewInvestment(userID int64, plan Plan, now time.Time) Investment {
	return Investment{
		UserID:       userID,
		PlanID:       plan.ID,
		PlanName:     plan.Name,
		InvestAmount: plan.InvestAmount,
		DailyIncome:  plan.DailyIncome,
		DurationDays: plan.DurationDays,
		IsActive:     plan.DurationDays > 0,
		CreatedAt:    now,
	}
}

func (i Investment) DueOn(day Date) bool {
	return i.IsActive && i.DaysCompleted < i.DurationDays && i.LastCreditedDate != day
}

// Accrue records one credited day. It deactivates the investment on its last day.
func (i *Investment) Accrue(day Date) error {
	if !i.IsActive || i.DaysCompleted >= i.DurationDays {
		return ErrInactiveInvestment
	}
	if i.LastCreditedDate == day {
		return ErrAlreadyAccrued
	}

	i.DaysCompleted++
	i.LastCreditedDate = day
	if i.DaysCompleted == i.DurationDays {
		i.IsActive = false
	}

	return nil
}

func (i Investment) Earned() decimal.Decimal {
	return i.DailyIncome.Mul(decimal.NewFromInt(int64(i.DaysCompleted)))
}

func (i Investment) TotalReturn() decimal.Decimal {
	return i.DailyIncome.Mul(decimal.NewFromInt(int64(i.DurationDays)))
}

type BankAccount struct {
	ID            int64
	UserID        int64
	AccountHolder string
	BankName      string
	AccountNumber string
	IFSC          string
	Branch        string
	CreatedAt     time.Time
}

func (b BankAccount) Snapshot() BankDetails {
	branch := b.Branch
	if branch == "" {
		branch = "N/A"
	}

	return BankDetails{
		AccountHolder: b.AccountHolder,
		BankName:      b.BankName,
		AccountNumber: b.AccountNumber,
		IFSC:          b.IFSC,
		Branch:        branch,
	}
}

type AccrualReport struct {
	Date        Date
	Credited    int
	Skipped     int
	Failed      int
	Commissions int
	StartedAt   time.Time
	FinishedAt  time.Time
}
