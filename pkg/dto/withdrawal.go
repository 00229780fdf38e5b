package dto

import (
	"errors"
	"fmt"
	"github.com/rajankumarrkr/tradeIndia/internal/domain"
	"github.com/shopspring/decimal"
	"strings"
)

/**
{
  "amount": "1000",
  "bankAccountId": 3
}
*/

type Withdrawal struct {
	Amount        decimal.Decimal `json:"amount"`
	BankAccountID int64           `json:"bankAccountId"`
}

func (w Withdrawal) IsValid() error {
	var amountErr, accountErr error

	amountErr = domain.ValidateMoney(w.Amount)

	if w.BankAccountID <= 0 {
		accountErr = fmt.Errorf("bankAccountId is required")
	}

	return errors.Join(amountErr, accountErr)
}

type WithdrawalResponse struct {
	Transaction Transaction     `json:"transaction"`
	Balance     decimal.Decimal `json:"balance"`
}

/**
{
  "amount": "500",
  "utr": "412345678901",
  "upiId": "ravi@okbank",
  "screenshot": "https://files.example/recharge/412345678901.png"
}
*/

type Recharge struct {
	Amount     decimal.Decimal `json:"amount"`
	UTR        string          `json:"utr"`
	UPIID      string          `json:"upiId"`
	Screenshot string          `json:"screenshot"`
}

func (r Recharge) IsValid() error {
	var errs []error

	if err := domain.ValidateMoney(r.Amount); err != nil {
		errs = append(errs, err)
	}
	if strings.TrimSpace(r.UTR) == "" {
		errs = append(errs, fmt.Errorf("utr is required"))
	}
	if strings.TrimSpace(r.UPIID) == "" {
		errs = append(errs, fmt.Errorf("upiId is required"))
	}
	if strings.TrimSpace(r.Screenshot) == "" {
		errs = append(errs, fmt.Errorf("screenshot is required"))
	}

	return errors.Join(errs...)
}

/**
{
  "id": 3,
  "accountHolder": "Ravi Kumar",
  "bankName": "State Bank of India",
  "accountNumber": "00001234567890",
  "ifsc": "SBIN0000001",
  "branch": "Connaught Place"
}
*/

type BankAccount struct {
	ID            int64  `json:"id,omitempty"`
	AccountHolder string `json:"accountHolder"`
	BankName      string `json:"bankName"`
	AccountNumber string `json:"accountNumber"`
	IFSC          string `json:"ifsc"`
	Branch        string `json:"branch,omitempty"`
	CreatedAt     string `json:"createdAt,omitempty"`
}

func NewBankAccount(b domain.BankAccount) BankAccount {
	return BankAccount{
		ID:            b.ID,
		AccountHolder: b.AccountHolder,
		BankName:      b.BankName,
		AccountNumber: b.AccountNumber,
		IFSC:          b.IFSC,
		Branch:        b.Branch,
		CreatedAt:     formatTime(b.CreatedAt),
	}
}
