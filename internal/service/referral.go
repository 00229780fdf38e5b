package service

import (
	"context"
	"errors"
	"fmt"
	"github.com/rajankumarrkr/tradeIndia/internal/domain"
	"github.com/rajankumarrkr/tradeIndia/internal/storage"
	"github.com/rajankumarrkr/tradeIndia/pkg/logger"
	"github.com/shopspring/decimal"
)

type Commission struct {
	Level         int
	UserID        int64
	Amount        decimal.Decimal
	TransactionID int64
}

// Distributor pays team income up the referral chain. rates[0] is the
// direct referrer's share, the chain is walked no further than len(rates).
type Distributor struct {
	wallets *WalletStore
	graph   storage.ReferralGraph
	rates   []decimal.Decimal
}

func NewDistributor(wallets *WalletStore, graph storage.ReferralGraph, rates []decimal.Decimal) *Distributor {
	return &Distributor{
		wallets: wallets,
		graph:   graph,
		rates:   rates,
	}
}

func (d *Distributor) MaxDepth() int {
	return len(d.rates)
}

// Distribute credits each ancestor of origin its share of base. Every level is
// its own unit: a failed level is reported but never undoes the others.
func (d *Distributor) Distribute(ctx context.Context, origin int64, base decimal.Decimal, investmentID int64) ([]Commission, error) {
	if len(d.rates) == 0 || !base.IsPositive() {
		return nil, nil
	}

	upline, err := d.graph.Upline(ctx, origin, len(d.rates))
	if err != nil {
		return nil, fmt.Errorf("error resolving upline of user %d: %w", origin, err)
	}

	var (
		paid []Commission
		errs []error
	)
	for i, ancestor := range upline {
		if i >= len(d.rates) {
			break
		}

		level := i + 1
		amount := base.Mul(d.rates[i]).Round(2)
		if !amount.IsPositive() {
			continue
		}

		entry, err := d.wallets.Credit(ctx, ancestor, amount, domain.TypeTeamIncome, domain.Meta{
			Level:        level,
			SourceUser:   origin,
			InvestmentID: investmentID,
		})
		if err != nil {
			logger.Log.Error("error crediting referral commission",
				logger.Int64("user_id", ancestor),
				logger.Int64("source_user", origin),
				logger.Int("level", level),
				logger.Error(err))
			errs = append(errs, fmt.Errorf("level %d: %w", level, err))
			continue
		}

		paid = append(paid, Commission{
			Level:         level,
			UserID:        ancestor,
			Amount:        amount,
			TransactionID: entry.ID,
		})
	}

	return paid, errors.Join(errs...)
}
