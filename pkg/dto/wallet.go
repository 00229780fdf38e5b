package dto

import (
	"github.com/rajankumarrkr/tradeIndia/internal/domain"
	"github.com/shopspring/decimal"
	"time"
)

/**
  {
      "balance": "1250.5",
      "totalRecharge": "2000",
      "totalIncome": "250.5",
      "updatedAt": "2026-03-14T00:00:02+05:30"
  }
*/

type Wallet struct {
	Balance       decimal.Decimal `json:"balance"`
	TotalRecharge decimal.Decimal `json:"totalRecharge"`
	TotalIncome   decimal.Decimal `json:"totalIncome"`
	UpdatedAt     string          `json:"updatedAt,omitempty"`
}

func NewWallet(w domain.Wallet) Wallet {
	return Wallet{
		Balance:       w.Balance,
		TotalRecharge: w.TotalRecharge,
		TotalIncome:   w.TotalIncome,
		UpdatedAt:     formatTime(w.UpdatedAt),
	}
}

/**
  {
      "id": 42,
      "userId": 7,
      "type": "withdraw",
      "amount": "1000",
      "status": "pending",
      "meta": {"bankAccountId": 3, "gst": "150", "bankDetails": {...}},
      "createdAt": "2026-03-14T10:15:00+05:30"
  }
*/

type Transaction struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"userId"`
	Type       string          `json:"type"`
	Amount     decimal.Decimal `json:"amount"`
	Status     string          `json:"status"`
	Meta       domain.Meta     `json:"meta"`
	CreatedAt  string          `json:"createdAt"`
	ResolvedAt string          `json:"resolvedAt,omitempty"`
}

func NewTransaction(t domain.Transaction) Transaction {
	out := Transaction{
		ID:        t.ID,
		UserID:    t.UserID,
		Type:      string(t.Type),
		Amount:    t.Amount,
		Status:    string(t.Status),
		Meta:      t.Meta,
		CreatedAt: formatTime(t.CreatedAt),
	}
	if t.ResolvedAt != nil {
		out.ResolvedAt = formatTime(*t.ResolvedAt)
	}
	return out
}

func NewTransactions(ts []domain.Transaction) []Transaction {
	out := make([]Transaction, len(ts))
	for i, t := range ts {
		out[i] = NewTransaction(t)
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
