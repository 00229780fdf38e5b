package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/shopspring/decimal"
	"time"
)

type TransactionType string

const (
	TypeRecharge   TransactionType = "recharge"
	TypeWithdraw   TransactionType = "withdraw"
	TypeROI        TransactionType = "roi"
	TypeTeamIncome TransactionType = "team_income"
	TypeAdminAdd   TransactionType = "admin_add"
	TypeInvest     TransactionType = "invest"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TypeRecharge, TypeWithdraw, TypeROI, TypeTeamIncome, TypeAdminAdd, TypeInvest:
		return true
	}
	return false
}

// IsIncome reports whether credits of this kind count towards Wallet.TotalIncome.
func (t TransactionType) IsIncome() bool {
	return t == TypeROI || t == TypeTeamIncome || t == TypeAdminAdd
}

// NeedsApproval reports whether entries of this kind are created pending.
func (t TransactionType) NeedsApproval() bool {
	return t == TypeRecharge || t == TypeWithdraw
}

type TransactionStatus string

const (
	StatusPending  TransactionStatus = "pending"
	StatusSuccess  TransactionStatus = "success"
	StatusRejected TransactionStatus = "rejected"
)

type Transaction struct {
	ID         int64
	UserID     int64
	Type       TransactionType
	Amount     decimal.Decimal
	Status     TransactionStatus
	Meta       Meta
	CreatedAt  time.Time
	ResolvedAt *time.Time
}

// NewTransaction builds an unsaved ledger entry. Kinds that need approval start
// pending, everything else comes from a trusted internal process and starts success.
func NewTransaction(userID int64, kind TransactionType, amount decimal.Decimal, meta Meta, now time.Time) Transaction {
	status := StatusSuccess
	if kind.NeedsApproval() {
		status = StatusPending
	}

	return Transaction{
		UserID:    userID,
		Type:      kind,
		Amount:    amount,
		Status:    status,
		Meta:      meta,
		CreatedAt: now,
	}
}

// Resolve moves a pending entry to success or rejected. Any other transition fails.
func (t *Transaction) Resolve(to TransactionStatus, at time.Time) error {
	if to != StatusSuccess && to != StatusRejected {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.Status, to)
	}
	if t.Status != StatusPending {
		return fmt.Errorf("%w: transaction %d is %s", ErrAlreadyResolved, t.ID, t.Status)
	}

	t.Status = to
	t.ResolvedAt = &at
	return nil
}

// Meta carries the type specific details of a ledger entry.
type Meta struct {
	UTR           string           `json:"utr,omitempty"`
	UPIID         string           `json:"upiId,omitempty"`
	Screenshot    string           `json:"screenshot,omitempty"`
	BankAccountID int64            `json:"bankAccountId,omitempty"`
	BankDetails   *BankDetails     `json:"bankDetails,omitempty"`
	GST           *decimal.Decimal `json:"gst,omitempty"`
	InvestmentID  int64            `json:"investmentId,omitempty"`
	PlanID        int64            `json:"planId,omitempty"`
	Level         int              `json:"level,omitempty"`
	SourceUser    int64            `json:"sourceUser,omitempty"`
	Note          string           `json:"note,omitempty"`
}

type BankDetails struct {
	AccountHolder string `json:"accountHolder"`
	BankName      string `json:"bankName"`
	AccountNumber string `json:"accountNumber"`
	IFSC          string `json:"ifsc"`
	Branch        string `json:"branch"`
}

func (m Meta) Value() (driver.Value, error) {
	return json.Marshal(m)
}

func (m *Meta) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*m = Meta{}
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	}
	return errors.New("unsupported meta column type")
}
