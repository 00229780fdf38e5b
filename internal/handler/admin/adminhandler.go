package adminhandler

import (
	"context"
	"errors"
	"fmt"
	"github.com/go-chi/chi/v5"
	"github.com/rajankumarrkr/tradeIndia/internal/domain"
	"github.com/rajankumarrkr/tradeIndia/internal/handler/respond"
	"github.com/rajankumarrkr/tradeIndia/pkg/dto"
	"github.com/rajankumarrkr/tradeIndia/pkg/logger"
	"github.com/shopspring/decimal"
	"net/http"
	"strconv"
)

type approvalService interface {
	ApproveRecharge(ctx context.Context, txID int64) (*domain.Transaction, error)
	RejectRecharge(ctx context.Context, txID int64) (*domain.Transaction, error)
	ApproveWithdrawal(ctx context.Context, txID int64) (*domain.Transaction, error)
	RejectWithdrawal(ctx context.Context, txID int64) (*domain.Transaction, error)
	AddAmount(ctx context.Context, userID int64, amount decimal.Decimal, note string) (*domain.Transaction, error)
	PendingTransactions(ctx context.Context, kind domain.TransactionType) ([]domain.Transaction, error)
}

type userService interface {
	Users(ctx context.Context) ([]domain.User, error)
	SetBlocked(ctx context.Context, id int64, blocked bool) error
}

type accrualRunner interface {
	RunNow(ctx context.Context) (domain.AccrualReport, error)
	LastReport() (*domain.AccrualReport, error)
}

type AdminHandler struct {
	approvals approvalService
	users     userService
	accrual   accrualRunner
	settings  dto.Settings
}

func New(approvals approvalService, users userService, accrual accrualRunner, settings dto.Settings) *AdminHandler {
	return &AdminHandler{
		approvals: approvals,
		users:     users,
		accrual:   accrual,
		settings:  settings,
	}
}

func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.Users(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	dtos := make([]dto.User, len(users))
	for i, u := range users {
		dtos[i] = dto.NewUser(u)
	}

	respond.JSON(w, http.StatusOK, dtos)
}

func (h *AdminHandler) Block(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		respond.BadRequest(w, r, err)
		return
	}

	var req dto.Block
	if err := respond.Decode(r, &req); err != nil {
		respond.BadRequest(w, r, fmt.Errorf("error while decoding a block request: %w", err))
		return
	}

	if err := h.users.SetBlocked(r.Context(), userID, req.Blocked); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *AdminHandler) PendingTransactions(w http.ResponseWriter, r *http.Request) {
	kind := domain.TransactionType(r.URL.Query().Get("type"))
	pending, err := h.approvals.PendingTransactions(r.Context(), kind)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, dto.NewTransactions(pending))
}

func (h *AdminHandler) ApproveRecharge(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, "recharge approved", h.approvals.ApproveRecharge)
}

func (h *AdminHandler) RejectRecharge(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, "recharge rejected", h.approvals.RejectRecharge)
}

func (h *AdminHandler) ApproveWithdrawal(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, "withdrawal approved", h.approvals.ApproveWithdrawal)
}

func (h *AdminHandler) RejectWithdrawal(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, "withdrawal rejected", h.approvals.RejectWithdrawal)
}

func (h *AdminHandler) resolve(
	w http.ResponseWriter,
	r *http.Request,
	msg string,
	action func(ctx context.Context, txID int64) (*domain.Transaction, error),
) {
	txID, err := pathID(r, "txID")
	if err != nil {
		respond.BadRequest(w, r, err)
		return
	}

	entry, err := action(r.Context(), txID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	logger.Log.Info(msg,
		logger.Int64("transaction_id", entry.ID),
		logger.Int64("user_id", entry.UserID),
		logger.String("admin_id", r.Header.Get(respond.UserIDHeader)))
	respond.JSON(w, http.StatusOK, dto.NewTransaction(*entry))
}

func (h *AdminHandler) AddAmount(w http.ResponseWriter, r *http.Request) {
	var req dto.AddAmount
	if err := respond.Decode(r, &req); err != nil {
		respond.BadRequest(w, r, fmt.Errorf("error while decoding an add amount request: %w", err))
		return
	}
	if err := req.IsValid(); err != nil {
		respond.BadRequest(w, r, err)
		return
	}

	entry, err := h.approvals.AddAmount(r.Context(), req.UserID, req.Amount, req.Note)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, dto.NewTransaction(*entry))
}

// RunAccrual triggers a pass immediately. A pass with failed investments
// still returns its report, as 207.
func (h *AdminHandler) RunAccrual(w http.ResponseWriter, r *http.Request) {
	report, err := h.accrual.RunNow(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrPartialBatchFailure) {
			resp := dto.NewAccrualReport(report)
			resp.Error = err.Error()
			logger.Log.Warn("manual accrual run finished with failures", logger.Int("failed", report.Failed))
			respond.JSON(w, http.StatusMultiStatus, resp)
			return
		}

		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, dto.NewAccrualReport(report))
}

func (h *AdminHandler) LastAccrual(w http.ResponseWriter, r *http.Request) {
	report, err := h.accrual.LastReport()
	if report == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	resp := dto.NewAccrualReport(*report)
	if err != nil {
		resp.Error = err.Error()
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *AdminHandler) Settings(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, h.settings)
}

func pathID(r *http.Request, key string) (int64, error) {
	raw := chi.URLParam(r, key)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s %q", domain.ErrInvalidReference, key, raw)
	}
	return id, nil
}
