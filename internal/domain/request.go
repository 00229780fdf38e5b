package domain

import (
	"errors"
	"fmt"
	"github.com/shopspring/decimal"
	"strings"
)

type RechargeRequest struct {
	UserID     int64
	Amount     decimal.Decimal
	UTR        string
	UPIID      string
	Screenshot string
}

func (r RechargeRequest) Validate(minimum decimal.Decimal) error {
	var errs []error
	if r.UserID <= 0 {
		errs = append(errs, fmt.Errorf("%w: user id", ErrInvalidReference))
	}
	if strings.TrimSpace(r.UTR) == "" {
		errs = append(errs, fmt.Errorf("%w: utr is required", ErrInvalidReference))
	}
	if strings.TrimSpace(r.UPIID) == "" {
		errs = append(errs, fmt.Errorf("%w: upi id is required", ErrInvalidReference))
	}
	if err := validateAmount(r.Amount, minimum); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

type WithdrawalRequest struct {
	UserID        int64
	Amount        decimal.Decimal
	BankAccountID int64
}

func (r WithdrawalRequest) Validate(minimum decimal.Decimal) error {
	var errs []error
	if r.UserID <= 0 {
		errs = append(errs, fmt.Errorf("%w: user id", ErrInvalidReference))
	}
	if r.BankAccountID <= 0 {
		errs = append(errs, fmt.Errorf("%w: bank account id", ErrInvalidReference))
	}
	if err := validateAmount(r.Amount, minimum); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// MoneyPlaces is the scale of every stored amount.
const MoneyPlaces = 2

// ValidateMoney accepts positive amounts with at most MoneyPlaces decimals.
func ValidateMoney(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidAmount)
	}
	if !amount.Equal(amount.Truncate(MoneyPlaces)) {
		return fmt.Errorf("%w: amount %s has more than %d decimal places", ErrInvalidAmount, amount.String(), MoneyPlaces)
	}
	return nil
}

func validateAmount(amount, minimum decimal.Decimal) error {
	if err := ValidateMoney(amount); err != nil {
		return err
	}
	if amount.LessThan(minimum) {
		return fmt.Errorf("%w: minimum amount is %s", ErrInvalidAmount, minimum.String())
	}
	return nil
}
