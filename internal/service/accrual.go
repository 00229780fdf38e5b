package service

import (
	"context"
	"errors"
	"fmt"
	"github.com/rajankumarrkr/tradeIndia/internal/domain"
	"github.com/rajankumarrkr/tradeIndia/internal/events"
	"github.com/rajankumarrkr/tradeIndia/internal/lock"
	"github.com/rajankumarrkr/tradeIndia/internal/storage"
	"github.com/rajankumarrkr/tradeIndia/pkg/logger"
	"sync"
	"time"
)

const (
	runLockKey  = "accrual:run"
	workerCount = 5
)

type RunLocker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

type outcome int

const (
	outcomeCredited outcome = iota
	outcomeSkipped
	outcomeFailed
)

type accrualResult struct {
	outcome     outcome
	commissions int
}

// AccrualEngine credits the daily income of every active investment. The
// investment's last credited day is the idempotency key, so the engine can be
// run any number of times a day from any number of triggers.
type AccrualEngine struct {
	store       storage.Store
	wallets     *WalletStore
	distributor *Distributor
	locker      RunLocker
	publisher   events.Publisher
	loc         *time.Location
	now         func() time.Time
	workers     int
}

func NewAccrualEngine(store storage.Store, wallets *WalletStore, distributor *Distributor, locker RunLocker, publisher events.Publisher, loc *time.Location) *AccrualEngine {
	if locker == nil {
		locker = lock.NewLocalLocker()
	}
	if publisher == nil {
		publisher = events.Nop{}
	}
	if loc == nil {
		loc = time.Local
	}

	return &AccrualEngine{
		store:       store,
		wallets:     wallets,
		distributor: distributor,
		locker:      locker,
		publisher:   publisher,
		loc:         loc,
		now:         time.Now,
		workers:     workerCount,
	}
}

func (e *AccrualEngine) WithClock(now func() time.Time) *AccrualEngine {
	e.now = now
	return e
}

func (e *AccrualEngine) WithWorkers(n int) *AccrualEngine {
	if n > 0 {
		e.workers = n
	}
	return e
}

// Run performs one accrual pass for the current calendar day. Failed
// investments are counted and reported through ErrPartialBatchFailure.
func (e *AccrualEngine) Run(ctx context.Context) (domain.AccrualReport, error) {
	var report domain.AccrualReport

	err := e.locker.WithLock(ctx, runLockKey, func(ctx context.Context) error {
		var err error
		report, err = e.run(ctx)
		return err
	})
	if errors.Is(err, lock.ErrNotAcquired) {
		logger.Log.Warn("accrual run skipped, another run holds the lock")
		return report, domain.ErrRunInProgress
	}

	return report, err
}

func (e *AccrualEngine) run(ctx context.Context) (domain.AccrualReport, error) {
	started := e.now()
	today := domain.DateOf(started, e.loc)
	report := domain.AccrualReport{Date: today, StartedAt: started}

	investments, err := e.store.ActiveInvestments(ctx)
	if err != nil {
		return report, fmt.Errorf("error fetching active investments: %w", err)
	}

	logger.Log.Info("accrual run started", logger.String("date", today.String()), logger.Int("investments", len(investments)))

	jobs := make(chan domain.Investment)
	results := make(chan accrualResult)

	var wg sync.WaitGroup
	for i := 0; i < e.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for inv := range jobs {
				results <- e.accrue(ctx, inv, today)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, inv := range investments {
			select {
			case <-ctx.Done():
				return
			case jobs <- inv:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for r := range results {
		switch r.outcome {
		case outcomeCredited:
			report.Credited++
		case outcomeSkipped:
			report.Skipped++
		case outcomeFailed:
			report.Failed++
		}
		report.Commissions += r.commissions
	}

	report.FinishedAt = e.now()
	logger.Log.Info("accrual run finished",
		logger.String("date", today.String()),
		logger.Int("credited", report.Credited),
		logger.Int("skipped", report.Skipped),
		logger.Int("failed", report.Failed),
		logger.Int("commissions", report.Commissions),
		logger.Duration("took", report.FinishedAt.Sub(report.StartedAt)))
	events.Emit(ctx, e.publisher, events.FromReport(report))

	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("accrual run interrupted: %w", err)
	}
	if report.Failed > 0 {
		return report, fmt.Errorf("%w: %d of %d investments failed", domain.ErrPartialBatchFailure, report.Failed, len(investments))
	}

	return report, nil
}

// accrue credits one investment for day. The wallet credit, the roi entry and
// the investment progress commit as one unit; commissions follow separately.
func (e *AccrualEngine) accrue(ctx context.Context, inv domain.Investment, day domain.Date) accrualResult {
	if !inv.DueOn(day) {
		return accrualResult{outcome: outcomeSkipped}
	}

	var entry domain.Transaction
	err := e.wallets.WithUser(ctx, inv.UserID, func(ctx context.Context, tx storage.Tx, w *domain.Wallet) error {
		locked, err := tx.InvestmentForUpdate(ctx, inv.ID)
		if err != nil {
			return err
		}

		if err = locked.Accrue(day); err != nil {
			return err
		}
		if err = w.Credit(locked.DailyIncome, domain.TypeROI); err != nil {
			return err
		}

		entry = domain.NewTransaction(locked.UserID, domain.TypeROI, locked.DailyIncome, domain.Meta{
			InvestmentID: locked.ID,
			PlanID:       locked.PlanID,
		}, e.now())
		if err = tx.InsertTransaction(ctx, &entry); err != nil {
			return err
		}

		return tx.SaveInvestment(ctx, locked)
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyAccrued) || errors.Is(err, domain.ErrInactiveInvestment) {
			return accrualResult{outcome: outcomeSkipped}
		}

		logger.Log.Error("error crediting investment",
			logger.Int64("investment_id", inv.ID),
			logger.Int64("user_id", inv.UserID),
			logger.Error(err))
		return accrualResult{outcome: outcomeFailed}
	}

	e.wallets.Emit(ctx, events.TransactionCreated, entry)
	if e.distributor == nil {
		return accrualResult{outcome: outcomeCredited}
	}

	commissions, err := e.distributor.Distribute(ctx, inv.UserID, entry.Amount, inv.ID)
	if err != nil {
		logger.Log.Warn("referral distribution incomplete",
			logger.Int64("investment_id", inv.ID),
			logger.Int64("user_id", inv.UserID),
			logger.Error(err))
	}

	return accrualResult{outcome: outcomeCredited, commissions: len(commissions)}
}
