package service

import (
	"github.com/rajankumarrkr/tradeIndia/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestCreateRecharge_MinimumIsInclusive(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "ravi", nil)

	req := domain.RechargeRequest{UserID: u.ID, Amount: fromInt(299), UTR: "412345678901", UPIID: "ravi@okbank", Screenshot: "s.png"}
	_, err := f.payments.CreateRecharge(bgCtx, req)
	require.ErrorIs(t, err, domain.ErrInvalidAmount)

	req.Amount = fromInt(300)
	entry, err := f.payments.CreateRecharge(bgCtx, req)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, entry.Status)
	assert.Equal(t, "412345678901", entry.Meta.UTR)
	assert.Equal(t, "ravi@okbank", entry.Meta.UPIID)
	assert.Equal(t, "s.png", entry.Meta.Screenshot)

	assert.True(t, f.balance(t, u.ID).IsZero(), "a pending recharge credits nothing")
}

func TestCreateRecharge_Rejections(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "ravi", nil)

	_, err := f.payments.CreateRecharge(bgCtx, domain.RechargeRequest{UserID: u.ID, Amount: fromInt(500)})
	assert.ErrorIs(t, err, domain.ErrInvalidReference)

	_, err = f.payments.CreateRecharge(bgCtx, domain.RechargeRequest{UserID: 99, Amount: fromInt(500), UTR: "1", UPIID: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, f.mem.SetUserBlocked(bgCtx, u.ID, true))
	_, err = f.payments.CreateRecharge(bgCtx, domain.RechargeRequest{UserID: u.ID, Amount: fromInt(500), UTR: "1", UPIID: "x"})
	assert.ErrorIs(t, err, domain.ErrUserBlocked)
}

func TestCreateWithdrawal_HoldsFundsWithSnapshot(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "ravi", nil)
	b := f.bank(t, u.ID)
	f.fund(t, u.ID, 2000)

	entry, err := f.payments.CreateWithdrawal(bgCtx, domain.WithdrawalRequest{UserID: u.ID, Amount: fromInt(1000), BankAccountID: b.ID})
	require.NoError(t, err)

	assert.Equal(t, domain.TypeWithdraw, entry.Type)
	assert.Equal(t, domain.StatusPending, entry.Status)
	assert.True(t, f.balance(t, u.ID).Equal(fromInt(1000)))

	require.NotNil(t, entry.Meta.BankDetails)
	assert.Equal(t, "Ravi Kumar", entry.Meta.BankDetails.AccountHolder)
	assert.Equal(t, "SBIN0000001", entry.Meta.BankDetails.IFSC)
	assert.Equal(t, "N/A", entry.Meta.BankDetails.Branch)
	require.NotNil(t, entry.Meta.GST)
	assert.True(t, entry.Meta.GST.Equal(fromInt(150)))
}

func TestCreateWithdrawal_MinimumAndFunds(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "ravi", nil)
	b := f.bank(t, u.ID)
	f.fund(t, u.ID, 500)

	_, err := f.payments.CreateWithdrawal(bgCtx, domain.WithdrawalRequest{UserID: u.ID, Amount: fromInt(299), BankAccountID: b.ID})
	require.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = f.payments.CreateWithdrawal(bgCtx, domain.WithdrawalRequest{UserID: u.ID, Amount: fromInt(501), BankAccountID: b.ID})
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.True(t, f.balance(t, u.ID).Equal(fromInt(500)))

	_, err = f.payments.CreateWithdrawal(bgCtx, domain.WithdrawalRequest{UserID: u.ID, Amount: fromInt(300), BankAccountID: b.ID})
	require.NoError(t, err)
	assert.True(t, f.balance(t, u.ID).Equal(fromInt(200)))
}

func TestCreateWithdrawal_ForeignBankAccount(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "ravi", nil)
	other := f.user(t, "anita", nil)
	b := f.bank(t, other.ID)
	f.fund(t, u.ID, 500)

	_, err := f.payments.CreateWithdrawal(bgCtx, domain.WithdrawalRequest{UserID: u.ID, Amount: fromInt(300), BankAccountID: b.ID})
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.True(t, f.balance(t, u.ID).Equal(fromInt(500)))
}

func TestHistory_NewestFirstWithFilter(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "ravi", nil)

	f.fund(t, u.ID, 100)
	f.clock.Advance(1)
	_, err := f.wallets.Credit(bgCtx, u.ID, fromInt(5), domain.TypeROI, noMeta)
	require.NoError(t, err)
	f.clock.Advance(1)
	_, err = f.wallets.Credit(bgCtx, u.ID, fromInt(6), domain.TypeROI, noMeta)
	require.NoError(t, err)

	all, err := f.payments.History(bgCtx, u.ID, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].Amount.Equal(fromInt(6)))
	assert.Equal(t, domain.TypeAdminAdd, all[2].Type)

	roi, err := f.payments.History(bgCtx, u.ID, domain.TypeROI)
	require.NoError(t, err)
	assert.Len(t, roi, 2)

	_, err = f.payments.History(bgCtx, u.ID, "bonus")
	assert.ErrorIs(t, err, domain.ErrInvalidReference)
}

func TestAddBankAccount_Validation(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "ravi", nil)

	_, err := f.payments.AddBankAccount(bgCtx, domain.BankAccount{UserID: u.ID, AccountHolder: "Ravi"})
	assert.ErrorIs(t, err, domain.ErrInvalidReference)

	b := f.bank(t, u.ID)
	accounts, err := f.payments.BankAccounts(bgCtx, u.ID)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, b.ID, accounts[0].ID)
}

func TestCreateWithdrawal_SubCentAmountLeavesNoTrace(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "ravi", nil)
	b := f.bank(t, u.ID)
	f.fund(t, u.ID, 400)

	_, err := f.payments.CreateWithdrawal(bgCtx, domain.WithdrawalRequest{
		UserID: u.ID, Amount: decimal.RequireFromString("300.005"), BankAccountID: b.ID,
	})
	require.ErrorIs(t, err, domain.ErrInvalidAmount)
	assert.True(t, f.balance(t, u.ID).Equal(fromInt(400)))

	withdrawals, err := f.store.Transactions(bgCtx, u.ID, domain.TypeWithdraw)
	require.NoError(t, err)
	assert.Empty(t, withdrawals)

	entry, err := f.payments.CreateWithdrawal(bgCtx, domain.WithdrawalRequest{
		UserID: u.ID, Amount: decimal.RequireFromString("300.01"), BankAccountID: b.ID,
	})
	require.NoError(t, err)
	_, err = f.approvals.RejectWithdrawal(bgCtx, entry.ID)
	require.NoError(t, err)
	assert.True(t, f.balance(t, u.ID).Equal(fromInt(400)))
}
