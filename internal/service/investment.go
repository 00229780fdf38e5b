package service

import (
	"context"
	"github.com/rajankumarrkr/tradeIndia/internal/domain"
	"github.com/rajankumarrkr/tradeIndia/internal/events"
	"github.com/rajankumarrkr/tradeIndia/internal/storage"
	"github.com/rajankumarrkr/tradeIndia/pkg/logger"
	"time"
)

type InvestmentService struct {
	store   storage.Store
	wallets *WalletStore
	now     func() time.Time
}

func NewInvestmentService(store storage.Store, wallets *WalletStore) *InvestmentService {
	return &InvestmentService{
		store:   store,
		wallets: wallets,
		now:     time.Now,
	}
}

func (s *InvestmentService) WithClock(now func() time.Time) *InvestmentService {
	s.now = now
	return s
}

func (s *InvestmentService) Plans(ctx context.Context) ([]domain.Plan, error) {
	return s.store.Plans(ctx)
}

// Purchase debits the plan price and opens the investment in the same unit.
func (s *InvestmentService) Purchase(ctx context.Context, userID, planID int64) (*domain.Investment, error) {
	if err := activeUser(ctx, s.store, userID); err != nil {
		return nil, err
	}

	plan, err := s.store.Plan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if !plan.IsActive {
		return nil, domain.ErrPlanNotFound
	}

	var (
		inv   domain.Investment
		entry domain.Transaction
	)
	err = s.wallets.WithUser(ctx, userID, func(ctx context.Context, tx storage.Tx, w *domain.Wallet) error {
		if err := w.Debit(plan.InvestAmount); err != nil {
			return err
		}

		now := s.now()
		inv = domain.NewInvestment(userID, *plan, now)
		if err := tx.InsertInvestment(ctx, &inv); err != nil {
			return err
		}

		entry = domain.NewTransaction(userID, domain.TypeInvest, plan.InvestAmount, domain.Meta{
			PlanID:       plan.ID,
			InvestmentID: inv.ID,
		}, now)
		return tx.InsertTransaction(ctx, &entry)
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("plan purchased",
		logger.Int64("user_id", userID),
		logger.Int64("plan_id", plan.ID),
		logger.Int64("investment_id", inv.ID))
	s.wallets.Emit(ctx, events.TransactionCreated, entry)

	return &inv, nil
}

func (s *InvestmentService) Investments(ctx context.Context, userID int64) ([]domain.Investment, error) {
	return s.store.Investments(ctx, userID)
}
