package dto

import (
	"errors"
	"fmt"
	"github.com/rajankumarrkr/tradeIndia/internal/domain"
	"github.com/shopspring/decimal"
)

type User struct {
	ID           int64  `json:"id"`
	Login        string `json:"login"`
	ReferralCode string `json:"referralCode"`
	ReferredBy   *int64 `json:"referredBy,omitempty"`
	IsBlocked    bool   `json:"isBlocked"`
	IsAdmin      bool   `json:"isAdmin"`
	RegisteredAt string `json:"registeredAt"`
}

func NewUser(u domain.User) User {
	return User{
		ID:           u.ID,
		Login:        u.Login,
		ReferralCode: u.ReferralCode,
		ReferredBy:   u.ReferredBy,
		IsBlocked:    u.IsBlocked,
		IsAdmin:      u.IsAdmin,
		RegisteredAt: formatTime(u.RegisteredAt),
	}
}

type Block struct {
	Blocked bool `json:"blocked"`
}

/**
  {
      "userId": 7,
      "amount": "250",
      "note": "festival bonus"
  }
*/

type AddAmount struct {
	UserID int64           `json:"userId"`
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note,omitempty"`
}

func (a AddAmount) IsValid() error {
	var userErr, amountErr error

	if a.UserID <= 0 {
		userErr = fmt.Errorf("userId is required")
	}

	amountErr = domain.ValidateMoney(a.Amount)

	return errors.Join(userErr, amountErr)
}

type Settings struct {
	UPIID     string `json:"upiId"`
	QRCodeURL string `json:"qrCodeUrl"`
}
