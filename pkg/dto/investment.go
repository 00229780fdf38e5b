package dto

import (
	"errors"
	"github.com/rajankumarrkr/tradeIndia/internal/domain"
	"github.com/shopspring/decimal"
)

/**
  {
      "id": 1,
      "name": "Starter",
      "investAmount": "500",
      "dailyIncome": "25",
      "durationDays": 99,
      "totalReturn": "2475"
  }
*/

type Plan struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	InvestAmount decimal.Decimal `json:"investAmount"`
	DailyIncome  decimal.Decimal `json:"dailyIncome"`
	DurationDays int             `json:"durationDays"`
	TotalReturn  decimal.Decimal `json:"totalReturn"`
}

func NewPlan(p domain.Plan) Plan {
	return Plan{
		ID:           p.ID,
		Name:         p.Name,
		InvestAmount: p.InvestAmount,
		DailyIncome:  p.DailyIncome,
		DurationDays: p.DurationDays,
		TotalReturn:  p.DailyIncome.Mul(decimal.NewFromInt(int64(p.DurationDays))),
	}
}

type Purchase struct {
	PlanID int64 `json:"planId"`
}

func (p Purchase) IsValid() error {
	if p.PlanID <= 0 {
		return errors.New("planId is required")
	}
	return nil
}

/**
  {
      "id": 12,
      "planId": 1,
      "planName": "Starter",
      "investAmount": "500",
      "dailyIncome": "25",
      "durationDays": 99,
      "daysCompleted": 4,
      "earned": "100",
      "isActive": true,
      "lastCreditedDate": "2026-03-14",
      "createdAt": "2026-03-10T18:22:41+05:30"
  }
*/

type Investment struct {
	ID               int64           `json:"id"`
	PlanID           int64           `json:"planId"`
	PlanName         string          `json:"planName"`
	InvestAmount     decimal.Decimal `json:"investAmount"`
	DailyIncome      decimal.Decimal `json:"dailyIncome"`
	DurationDays     int             `json:"durationDays"`
	DaysCompleted    int             `json:"daysCompleted"`
	Earned           decimal.Decimal `json:"earned"`
	IsActive         bool            `json:"isActive"`
	LastCreditedDate string          `json:"lastCreditedDate,omitempty"`
	CreatedAt        string          `json:"createdAt"`
}

func NewInvestment(i domain.Investment) Investment {
	return Investment{
		ID:               i.ID,
		PlanID:           i.PlanID,
		PlanName:         i.PlanName,
		InvestAmount:     i.InvestAmount,
		DailyIncome:      i.DailyIncome,
		DurationDays:     i.DurationDays,
		DaysCompleted:    i.DaysCompleted,
		Earned:           i.Earned(),
		IsActive:         i.IsActive,
		LastCreditedDate: i.LastCreditedDate.String(),
		CreatedAt:        formatTime(i.CreatedAt),
	}
}
