package wallethandler

import (
	"context"
	"fmt"
	"github.com/rajankumarrkr/tradeIndia/internal/domain"
	"github.com/rajankumarrkr/tradeIndia/internal/handler/respond"
	"github.com/rajankumarrkr/tradeIndia/pkg/dto"
	"github.com/rajankumarrkr/tradeIndia/pkg/logger"
	"net/http"
)

type paymentService interface {
	Wallet(ctx context.Context, userID int64) (*domain.Wallet, error)
	History(ctx context.Context, userID int64, kind domain.TransactionType) ([]domain.Transaction, error)
	CreateRecharge(ctx context.Context, req domain.RechargeRequest) (*domain.Transaction, error)
	CreateWithdrawal(ctx context.Context, req domain.WithdrawalRequest) (*domain.Transaction, error)
	AddBankAccount(ctx context.Context, b domain.BankAccount) (*domain.BankAccount, error)
	BankAccounts(ctx context.Context, userID int64) ([]domain.BankAccount, error)
}

type WalletHandler struct {
	paymentService paymentService
}

func New(svc paymentService) *WalletHandler {
	return &WalletHandler{
		paymentService: svc,
	}
}

func (h WalletHandler) Wallet(w http.ResponseWriter, r *http.Request) {
	userID, err := respond.UserID(r)
	if err != nil {
		respond.Internal(w, r, err)
		return
	}

	wallet, err := h.paymentService.Wallet(r.Context(), userID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, dto.NewWallet(*wallet))
}

func (h WalletHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	userID, err := respond.UserID(r)
	if err != nil {
		respond.Internal(w, r, err)
		return
	}

	kind := domain.TransactionType(r.URL.Query().Get("type"))
	history, err := h.paymentService.History(r.Context(), userID, kind)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, dto.NewTransactions(history))
}

func (h WalletHandler) Recharge(w http.ResponseWriter, r *http.Request) {
	userID, err := respond.UserID(r)
	if err != nil {
		respond.Internal(w, r, err)
		return
	}

	var req dto.Recharge
	if err := respond.Decode(r, &req); err != nil {
		respond.BadRequest(w, r, fmt.Errorf("error while decoding a recharge request: %w", err))
		return
	}
	if err := req.IsValid(); err != nil {
		respond.BadRequest(w, r, err)
		return
	}

	entry, err := h.paymentService.CreateRecharge(r.Context(), domain.RechargeRequest{
		UserID:     userID,
		Amount:     req.Amount,
		UTR:        req.UTR,
		UPIID:      req.UPIID,
		Screenshot: req.Screenshot,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	logger.Log.Info("recharge requested", logger.Int64("user_id", userID), logger.Int64("transaction_id", entry.ID))
	respond.JSON(w, http.StatusCreated, dto.NewTransaction(*entry))
}

func (h WalletHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	userID, err := respond.UserID(r)
	if err != nil {
		respond.Internal(w, r, err)
		return
	}

	var req dto.Withdrawal
	if err := respond.Decode(r, &req); err != nil {
		respond.BadRequest(w, r, fmt.Errorf("error while decoding a withdrawal request: %w", err))
		return
	}
	if err := req.IsValid(); err != nil {
		respond.BadRequest(w, r, err)
		return
	}

	entry, err := h.paymentService.CreateWithdrawal(r.Context(), domain.WithdrawalRequest{
		UserID:        userID,
		Amount:        req.Amount,
		BankAccountID: req.BankAccountID,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := dto.WithdrawalResponse{Transaction: dto.NewTransaction(*entry)}
	if wallet, err := h.paymentService.Wallet(r.Context(), userID); err == nil {
		resp.Balance = wallet.Balance
	} else {
		logger.Log.Warn("error while fetching balance after withdrawal", logger.Int64("user_id", userID), logger.Error(err))
	}

	logger.Log.Info("withdrawal requested", logger.Int64("user_id", userID), logger.Int64("transaction_id", entry.ID))
	respond.JSON(w, http.StatusCreated, resp)
}

func (h WalletHandler) AddBankAccount(w http.ResponseWriter, r *http.Request) {
	userID, err := respond.UserID(r)
	if err != nil {
		respond.Internal(w, r, err)
		return
	}

	var req dto.BankAccount
	if err := respond.Decode(r, &req); err != nil {
		respond.BadRequest(w, r, fmt.Errorf("error while decoding a bank account: %w", err))
		return
	}

	account, err := h.paymentService.AddBankAccount(r.Context(), domain.BankAccount{
		UserID:        userID,
		AccountHolder: req.AccountHolder,
		BankName:      req.BankName,
		AccountNumber: req.AccountNumber,
		IFSC:          req.IFSC,
		Branch:        req.Branch,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, dto.NewBankAccount(*account))
}

func (h WalletHandler) BankAccounts(w http.ResponseWriter, r *http.Request) {
	userID, err := respond.UserID(r)
	if err != nil {
		respond.Internal(w, r, err)
		return
	}

	accounts, err := h.paymentService.BankAccounts(r.Context(), userID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	dtos := make([]dto.BankAccount, len(accounts))
	for i, a := range accounts {
		dtos[i] = dto.NewBankAccount(a)
	}

	respond.JSON(w, http.StatusOK, dtos)
}
