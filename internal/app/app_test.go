package app

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/rajankumarrkr/tradeIndia/internal/config"
	"github.com/rajankumarrkr/tradeIndia/pkg/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testConfig() *config.Config {
	return &config.Config{
		PrivateKey:           "test-key",
		AuthDisabledURLs:     []string{"/login", "/register", "/settings"},
		AdminLogins:          []string{"boss"},
		MinimumAmount:        "300",
		WithdrawalGSTPercent: "15",
		ReferralRates:        []string{"10", "5"},
		AccrualSchedule:      "0 0 * * *",
		Timezone:             "UTC",
		PaymentUPIID:         "pay@okbank",
		AllowedOrigins:       []string{"*"},
	}
}

type client struct {
	t      *testing.T
	server *httptest.Server
}

func (c client) do(method, path, token, body string) *http.Response {
	c.t.Helper()

	req, err := http.NewRequest(method, c.server.URL+path, strings.NewReader(body))
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.server.Client().Do(req)
	require.NoError(c.t, err)
	c.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (c client) register(login, referralCode string) string {
	c.t.Helper()

	resp := c.do(http.MethodPost, "/api/user/register", "",
		fmt.Sprintf(`{"login":%q,"password":"pw","referralCode":%q}`, login, referralCode))
	require.Equal(c.t, http.StatusOK, resp.StatusCode)
	return strings.TrimPrefix(resp.Header.Get("Authorization"), "Bearer ")
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()

	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestEndToEnd_RechargeInvestAccrue(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, testConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(ctx) })

	server := httptest.NewServer(a.Router())
	t.Cleanup(server.Close)
	c := client{t: t, server: server}

	admin := c.register("boss", "")
	users := decode[[]dto.User](t, c.do(http.MethodGet, "/api/admin/users", admin, ""))
	require.Len(t, users, 1)
	bossCode := users[0].ReferralCode

	ravi := c.register("ravi", bossCode)

	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, "/api/user/wallet", "", "").StatusCode)
	assert.Equal(t, http.StatusForbidden, c.do(http.MethodGet, "/api/admin/users", ravi, "").StatusCode)

	settings := decode[dto.Settings](t, c.do(http.MethodGet, "/api/settings", "", ""))
	assert.Equal(t, "pay@okbank", settings.UPIID)

	resp := c.do(http.MethodPost, "/api/user/recharge", ravi,
		`{"amount":"500","utr":"412345678901","upiId":"ravi@okbank","screenshot":"s.png"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	recharge := decode[dto.Transaction](t, resp)
	assert.Equal(t, "pending", recharge.Status)

	approve := fmt.Sprintf("/api/admin/recharges/%d/approve", recharge.ID)
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, approve, admin, "").StatusCode)
	assert.Equal(t, http.StatusConflict, c.do(http.MethodPost, approve, admin, "").StatusCode)

	plans := decode[[]dto.Plan](t, c.do(http.MethodGet, "/api/plans", ravi, ""))
	require.NotEmpty(t, plans)
	starter := plans[0]
	require.True(t, starter.InvestAmount.Equal(decimal.NewFromInt(500)))

	resp = c.do(http.MethodPost, "/api/user/investments", ravi, fmt.Sprintf(`{"planId":%d}`, starter.ID))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	report := decode[dto.AccrualReport](t, c.do(http.MethodPost, "/api/admin/accrual/run", admin, ""))
	assert.Equal(t, 1, report.Credited)
	assert.Equal(t, 1, report.Commissions)

	again := decode[dto.AccrualReport](t, c.do(http.MethodPost, "/api/admin/accrual/run", admin, ""))
	assert.Equal(t, 0, again.Credited)
	assert.Equal(t, 1, again.Skipped)

	wallet := decode[dto.Wallet](t, c.do(http.MethodGet, "/api/user/wallet", ravi, ""))
	assert.True(t, wallet.Balance.Equal(starter.DailyIncome))

	bossWallet := decode[dto.Wallet](t, c.do(http.MethodGet, "/api/user/wallet", admin, ""))
	assert.True(t, bossWallet.Balance.Equal(starter.DailyIncome.Mul(decimal.RequireFromString("0.1")).Round(2)))

	last := decode[dto.AccrualReport](t, c.do(http.MethodGet, "/api/admin/accrual/last", admin, ""))
	assert.Equal(t, again.Date, last.Date)
}

func TestNew_RejectsBadRates(t *testing.T) {
	cfg := testConfig()
	cfg.ReferralRates = []string{"10", "abc"}

	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}
