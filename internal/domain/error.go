package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUserExists           = errors.New("user already exists")
	ErrIncorrectCredentials = errors.New("incorrect credentials")
	ErrUserBlocked          = errors.New("user is blocked")

	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrInvalidReference    = errors.New("invalid reference")
	ErrAlreadyResolved     = errors.New("transaction already resolved")
	ErrInvalidTransition   = errors.New("invalid transaction status transition")
	ErrNotFound            = errors.New("not found")
	ErrInactiveInvestment  = errors.New("investment is not active")
	ErrAlreadyAccrued      = errors.New("investment already credited for this day")
	ErrPartialBatchFailure = errors.New("accrual run finished with failures")
	ErrRunInProgress       = errors.New("accrual run already in progress")
)

var (
	ErrUserNotFound        = fmt.Errorf("user %w", ErrNotFound)
	ErrTransactionNotFound = fmt.Errorf("transaction %w", ErrNotFound)
	ErrPlanNotFound        = fmt.Errorf("plan %w", ErrNotFound)
	ErrInvestmentNotFound  = fmt.Errorf("investment %w", ErrNotFound)
	ErrBankAccountNotFound = fmt.Errorf("bank account %w", ErrNotFound)
)
