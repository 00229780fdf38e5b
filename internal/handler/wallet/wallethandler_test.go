package wallethandler

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
	"time"
)

type stubPayments struct {
	wallet      domain.Wallet
	history     []domain.Transaction
	gotKind     domain.TransactionType
	recharge    domain.RechargeRequest
	withdrawal  domain.WithdrawalRequest
	account     domain.BankAccount
	err         error
	withdrawErr error
}

func (s *stubPayments) Wallet(_ context.Context, userID int64) (*domain.Wallet, error) {
	if s.err != nil {
		return nil, s.err
	}
	w := s.wallet
	w.UserID = userID
	return &w, nil
}

func (s *stubPayments) History(_ context.Context, _ int64, kind domain.TransactionType) ([]domain.Transaction, error) {
	s.gotKind = kind
	return s.history, s.err
}

func (s *stubPayments) CreateRecharge(_ context.Context, req domain.RechargeRequest) (*domain.Transaction, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.recharge = req
	t := domain.NewTransaction(req.UserID, domain.TypeRecharge, req.Amount, domain.Meta{UTR: req.UTR}, time.Now())
	t.ID = 11
	return &t, nil
}

func (s *stubPayments) CreateWithdrawal(_ context.Context, req domain.WithdrawalRequest) (*domain.Transaction, error) {
	if s.withdrawErr != nil {
		return nil, s.withdrawErr
	}
	s.withdrawal = req
	t := domain.NewTransaction(req.UserID, domain.TypeWithdraw, req.Amount, domain.Meta{BankAccountID: req.BankAccountID}, time.Now())
	t.ID = 12
	return &t, nil
}

func (s *stubPayments) AddBankAccount(_ context.Context, b domain.BankAccount) (*domain.BankAccount, error) {
	if s.err != nil {
		return nil, s.err
	}
	b.ID = 3
	s.account = b
	return &b, nil
}

func (s *stubPayments) BankAccounts(context.Context, int64) ([]domain.BankAccount, error) {
	return []domain.BankAccount{s.account}, s.err
}

func request(method, target, body string) *http.Request {
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	r.Header.Set("User-ID", "7")
	return r
}

func TestWallet(t *testing.T) {
	svc := &stubPayments{wallet: domain.Wallet{Balance: decimal.RequireFromString("1250.5")}}
	h := New(svc)

	rec := httptest.NewRecorder()
	h.Wallet(rec, request(http.MethodGet, "/api/user/wallet", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	var got dto.Wallet
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.True(t, got.Balance.Equal(decimal.RequireFromString("1250.5")))
}

func TestWallet_MissingUserHeader(t *testing.T) {
	h := New(&stubPayments{})

	rec := httptest.NewRecorder()
	h.Wallet(rec, httptest.NewRequest(http.MethodGet, "/api/user/wallet", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestTransactions_PassesTypeFilter(t *testing.T) {
	svc := &stubPayments{history: []domain.Transaction{{ID: 1, Type: domain.TypeROI, Status: domain.StatusSuccess}}}
	h := New(svc)

	rec := httptest.NewRecorder()
	h.Transactions(rec, request(http.MethodGet, "/api/user/transactions?type=roi", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.TypeROI, svc.gotKind)

	var got []dto.Transaction
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, "roi", got[0].Type)
}

func TestRecharge(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  error
		want int
	}{
		{"created", `{"amount":"500","utr":"412345678901","upiId":"ravi@okbank","screenshot":"s.png"}`, nil, http.StatusCreated},
		{"malformed", `{"amount":`, nil, http.StatusBadRequest},
		{"missing utr", `{"amount":"500","upiId":"ravi@okbank","screenshot":"s.png"}`, nil, http.StatusBadRequest},
		{"below minimum", `{"amount":"100","utr":"1","upiId":"u","screenshot":"s"}`, domain.ErrInvalidAmount, http.StatusBadRequest},
		{"blocked", `{"amount":"500","utr":"1","upiId":"u","screenshot":"s"}`, domain.ErrUserBlocked, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubPayments{err: tt.err}
			rec := httptest.NewRecorder()
			New(svc).Recharge(rec, request(http.MethodPost, "/api/user/recharge", tt.body))

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusCreated {
				assert.Equal(t, int64(7), svc.recharge.UserID)
				assert.Equal(t, "412345678901", svc.recharge.UTR)
			}
		})
	}
}

func TestWithdraw(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  error
		want int
	}{
		{"created", `{"amount":"1000","bankAccountId":3}`, nil, http.StatusCreated},
		{"no bank account", `{"amount":"1000"}`, nil, http.StatusBadRequest},
		{"insufficient funds", `{"amount":"1000","bankAccountId":3}`, domain.ErrInsufficientFunds, http.StatusPaymentRequired},
		{"foreign bank account", `{"amount":"1000","bankAccountId":9}`, domain.ErrBankAccountNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubPayments{withdrawErr: tt.err, wallet: domain.Wallet{Balance: decimal.NewFromInt(500)}}
			rec := httptest.NewRecorder()
			New(svc).Withdraw(rec, request(http.MethodPost, "/api/user/withdraw", tt.body))

			require.Equal(t, tt.want, rec.Code)
			if tt.want != http.StatusCreated {
				return
			}

			var got dto.WithdrawalResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, "pending", got.Transaction.Status)
			assert.True(t, got.Balance.Equal(decimal.NewFromInt(500)))
			assert.Equal(t, int64(3), svc.withdrawal.BankAccountID)
		})
	}
}

func TestBankAccounts(t *testing.T) {
	svc := &stubPayments{}
	h := New(svc)

	rec := httptest.NewRecorder()
	h.AddBankAccount(rec, request(http.MethodPost, "/api/user/bank-accounts",
		`{"accountHolder":"Ravi Kumar","bankName":"SBI","accountNumber":"00001234567890","ifsc":"SBIN0000001"}`))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, int64(7), svc.account.UserID)

	rec = httptest.NewRecorder()
	h.BankAccounts(rec, request(http.MethodGet, "/api/user/bank-accounts", ""))
	require.Equal(t, http.StatusOK, rec.Code)

	var got []dto.BankAccount
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, "SBIN0000001", got[0].IFSC)
}
