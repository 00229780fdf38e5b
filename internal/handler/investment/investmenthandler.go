package investmenthandler

import (
	"context"
	"fmt"
	"github.com/rajankumarrkr/tradeIndia/internal/domain"
	"github.com/rajankumarrkr/tradeIndia/internal/handler/respond"
	"github.com/rajankumarrkr/tradeIndia/pkg/dto"
	"github.com/rajankumarrkr/tradeIndia/pkg/logger"
	"net/http"
)

type InvestmentService interface {
	Plans(ctx context.Context) ([]domain.Plan, error)
	Purchase(ctx context.Context, userID, planID int64) (*domain.Investment, error)
	Investments(ctx context.Context, userID int64) ([]domain.Investment, error)
}

type InvestmentHandler struct {
	svc InvestmentService
}

func New(svc InvestmentService) *InvestmentHandler {
	return &InvestmentHandler{
		svc: svc,
	}
}

func (h *InvestmentHandler) Plans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.svc.Plans(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	dtos := make([]dto.Plan, len(plans))
	for i, p := range plans {
		dtos[i] = dto.NewPlan(p)
	}

	respond.JSON(w, http.StatusOK, dtos)
}

func (h *InvestmentHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	userID, err := respond.UserID(r)
	if err != nil {
		respond.Internal(w, r, err)
		return
	}

	var req dto.Purchase
	if err := respond.Decode(r, &req); err != nil {
		respond.BadRequest(w, r, fmt.Errorf("error while decoding a purchase request: %w", err))
		return
	}
	if err := req.IsValid(); err != nil {
		respond.BadRequest(w, r, err)
		return
	}

	inv, err := h.svc.Purchase(r.Context(), userID, req.PlanID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	logger.Log.Info("plan purchased",
		logger.Int64("user_id", userID),
		logger.Int64("plan_id", req.PlanID),
		logger.Int64("investment_id", inv.ID))
	respond.JSON(w, http.StatusCreated, dto.NewInvestment(*inv))
}

func (h *InvestmentHandler) Investments(w http.ResponseWriter, r *http.Request) {
	userID, err := respond.UserID(r)
	if err != nil {
		respond.Internal(w, r, err)
		return
	}

	investments, err := h.svc.Investments(r.Context(), userID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if len(investments) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	dtos := make([]dto.Investment, len(investments))
	for i, inv := range investments {
		dtos[i] = dto.NewInvestment(inv)
	}

	respond.JSON(w, http.StatusOK, dtos)
}
