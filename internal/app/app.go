package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rajankumarrkr/tradeIndia/internal/config"
	"github.com/rajankumarrkr/tradeIndia/internal/domain"
	"github.com/rajankumarrkr/tradeIndia/internal/events"
	"github.com/rajankumarrkr/tradeIndia/internal/graph"
	"github.com/rajankumarrkr/tradeIndia/internal/lock"
	"github.com/rajankumarrkr/tradeIndia/internal/postgres"
	"github.com/rajankumarrkr/tradeIndia/internal/scheduler"
	"github.com/rajankumarrkr/tradeIndia/internal/service"
	"github.com/rajankumarrkr/tradeIndia/internal/storage"
	"github.com/rajankumarrkr/tradeIndia/internal/storage/memory"
	"github.com/rajankumarrkr/tradeIndia/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

type App struct {
	Config *config.Config
	DB     *sql.DB
	Redis  redis.UniversalClient
	Graph  graph.Client

	Store       storage.Store
	Users       *service.UserService
	Payments    *service.PaymentService
	Approvals   *service.ApprovalService
	Investments *service.InvestmentService
	Engine      *service.AccrualEngine
	Scheduler   *scheduler.Scheduler
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	if err := a.initStore(); err != nil {
		return nil, err
	}

	var (
		publisher events.Publisher  = events.Nop{}
		locker    service.RunLocker = lock.NewLocalLocker()
	)
	if cfg.RedisAddr != "" {
		a.Redis = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := a.Redis.Ping(ctx).Err(); err != nil {
			_ = a.Close(ctx)
			return nil, fmt.Errorf("error pinging redis: %w", err)
		}
		publisher = events.NewRedisPublisher(a.Redis)
		locker = lock.NewRedisLocker(a.Redis)
		logger.Log.Info("redis connected", logger.String("address", cfg.RedisAddr))
	}

	var (
		upline storage.ReferralGraph = a.Store
		linker service.ReferralLinker
	)
	if cfg.GraphURI != "" {
		mirror, err := a.initGraph(ctx)
		if err != nil {
			_ = a.Close(ctx)
			return nil, err
		}
		upline, linker = mirror, mirror
	}

	rates, err := cfg.Rates()
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}

	wallets := service.NewWalletStore(a.Store, publisher)
	distributor := service.NewDistributor(wallets, upline, rates)

	a.Users = service.NewUserService(a.Store, cfg.PrivateKey, cfg.AdminLogins)
	if linker != nil {
		a.Users.WithLinker(linker)
	}
	a.Payments = service.NewPaymentService(a.Store, wallets, cfg.Minimum(), cfg.GSTPercent())
	a.Approvals = service.NewApprovalService(a.Store, wallets)
	a.Investments = service.NewInvestmentService(a.Store, wallets)
	a.Engine = service.NewAccrualEngine(a.Store, wallets, distributor, locker, publisher, loc)

	a.Scheduler, err = scheduler.New(cfg.AccrualSchedule, loc, a.Engine)
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}

	return a, nil
}

func (a *App) initStore() error {
	if a.Config.DatabaseURL == "" {
		logger.Log.Warn("no database configured, using the in-memory store")
		a.Store = seeded(memory.New())
		return nil
	}

	db, err := initDB(a.Config.DatabaseURL)
	if err != nil {
		return err
	}
	if err = postgres.Migrate(db); err != nil {
		_ = db.Close()
		return err
	}

	a.DB = db
	a.Store = postgres.New(db)
	return nil
}

// initGraph connects the referral mirror and loads every existing link into it.
func (a *App) initGraph(ctx context.Context) (*graph.Mirror, error) {
	client, err := graph.NewNeo4jClient(ctx, graph.Options{
		URI:      a.Config.GraphURI,
		Database: a.Config.GraphDatabase,
		Username: a.Config.GraphUsername,
		Password: a.Config.GraphPassword,
	})
	if err != nil {
		return nil, fmt.Errorf("error connecting to graph database: %w", err)
	}
	a.Graph = client

	mirror := graph.NewMirror(client, a.Store)
	users, err := a.Store.Users(ctx)
	if err != nil {
		return nil, err
	}
	if err = mirror.Sync(ctx, users); err != nil {
		logger.Log.Warn("error syncing referral graph, uplines fall back to the store", logger.Error(err))
	}

	return mirror, nil
}

func initDB(url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err = db.Ping(); err != nil {
		err := db.Close()
		if err != nil {
			return nil, fmt.Errorf("error closing database after ping failure: %w", err)
		}
		return nil, fmt.Errorf("error pinging database: %w", err)
	}

	return db, nil
}

// seeded fills an empty in-memory catalog with the same plans the migrations seed.
func seeded(s *memory.Store) *memory.Store {
	for _, p := range []struct {
		name          string
		invest, daily int64
	}{
		{"Starter", 500, 25},
		{"Silver", 2000, 110},
		{"Gold", 5000, 300},
	} {
		s.AddPlan(domain.Plan{
			Name:         p.name,
			InvestAmount: decimal.NewFromInt(p.invest),
			DailyIncome:  decimal.NewFromInt(p.daily),
			DurationDays: 99,
			IsActive:     true,
		})
	}
	return s
}

func (a *App) Close(ctx context.Context) error {
	var errs []error

	if a.Graph != nil {
		if err := a.Graph.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("error closing graph client: %w", err))
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing redis client: %w", err))
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing database connection: %w", err))
		}
	}

	return errors.Join(errs...)
}
