package investmenthandler

import (
	"context"
	"encoding/json"
	"github.com/rajankumarrkr/tradeIndia/internal/domain"
	"github.com/rajankumarrkr/tradeIndia/pkg/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type stubInvestments struct {
	plans       []domain.Plan
	investments []domain.Investment
	purchaseErr error
	gotUser     int64
	gotPlan     int64
}

func (s *stubInvestments) Plans(context.Context) ([]domain.Plan, error) {
	return s.plans, nil
}

func (s *stubInvestments) Purchase(_ context.Context, userID, planID int64) (*domain.Investment, error) {
	if s.purchaseErr != nil {
		return nil, s.purchaseErr
	}
	s.gotUser, s.gotPlan = userID, planID
	return &domain.Investment{ID: 5, UserID: userID, PlanID: planID, DurationDays: 99, IsActive: true}, nil
}

func (s *stubInvestments) Investments(context.Context, int64) ([]domain.Investment, error) {
	return s.investments, nil
}

func TestPlans(t *testing.T) {
	svc := &stubInvestments{plans: []domain.Plan{{
		ID: 1, Name: "Starter", InvestAmount: decimal.NewFromInt(500), DailyIncome: decimal.NewFromInt(25), DurationDays: 99, IsActive: true,
	}}}

	rec := httptest.NewRecorder()
	New(svc).Plans(rec, httptest.NewRequest(http.MethodGet, "/api/plans", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got []dto.Plan
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.True(t, got[0].TotalReturn.Equal(decimal.NewFromInt(2475)))
}

func TestPurchase(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  error
		want int
	}{
		{"created", `{"planId":1}`, nil, http.StatusCreated},
		{"missing plan", `{}`, nil, http.StatusBadRequest},
		{"malformed", `planId=1`, nil, http.StatusBadRequest},
		{"unknown plan", `{"planId":42}`, domain.ErrPlanNotFound, http.StatusNotFound},
		{"insufficient funds", `{"planId":1}`, domain.ErrInsufficientFunds, http.StatusPaymentRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubInvestments{purchaseErr: tt.err}
			r := httptest.NewRequest(http.MethodPost, "/api/user/investments", strings.NewReader(tt.body))
			r.Header.Set("User-ID", "7")

			rec := httptest.NewRecorder()
			New(svc).Purchase(rec, r)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusCreated {
				assert.Equal(t, int64(7), svc.gotUser)
				assert.Equal(t, int64(1), svc.gotPlan)
			}
		})
	}
}

func TestInvestments(t *testing.T) {
	svc := &stubInvestments{}
	h := New(svc)

	r := httptest.NewRequest(http.MethodGet, "/api/user/investments", nil)
	r.Header.Set("User-ID", "7")

	rec := httptest.NewRecorder()
	h.Investments(rec, r)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	svc.investments = []domain.Investment{{ID: 5, DailyIncome: decimal.NewFromInt(25), DaysCompleted: 4, DurationDays: 99, IsActive: true, LastCreditedDate: "2026-03-14"}}
	rec = httptest.NewRecorder()
	h.Investments(rec, r)
	require.Equal(t, http.StatusOK, rec.Code)

	var got []dto.Investment
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.True(t, got[0].Earned.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, "2026-03-14", got[0].LastCreditedDate)
}
