package respond

import (
	"errors"
	"fmt"
	"github.com/rajankumarrkr/tradeIndia/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: minimum", domain.ErrInvalidAmount), http.StatusBadRequest},
		{domain.ErrInvalidReference, http.StatusBadRequest},
		{domain.ErrIncorrectCredentials, http.StatusUnauthorized},
		{domain.ErrInsufficientFunds, http.StatusPaymentRequired},
		{domain.ErrUserBlocked, http.StatusForbidden},
		{domain.ErrBankAccountNotFound, http.StatusNotFound},
		{domain.ErrAlreadyResolved, http.StatusConflict},
		{domain.ErrRunInProgress, http.StatusConflict},
		{domain.ErrUserExists, http.StatusConflict},
		{errors.New("db is down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusOf(tt.err), tt.err.Error())
	}
}

func TestError_HidesInternalDetails(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/user/wallet", nil)

	rec := httptest.NewRecorder()
	Error(rec, r, errors.New("pq: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")

	rec = httptest.NewRecorder()
	Error(rec, r, domain.ErrInsufficientFunds)
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.Contains(t, rec.Body.String(), "insufficient funds")
}

func TestUserID(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := UserID(r)
	assert.Error(t, err)

	r.Header.Set(UserIDHeader, "42")
	id, err := UserID(r)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}
