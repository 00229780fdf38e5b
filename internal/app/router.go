package app

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rajankumarrkr/tradeIndia/internal/handler/admin"
	"github.com/rajankumarrkr/tradeIndia/internal/handler/investment"
	"github.com/rajankumarrkr/tradeIndia/internal/handler/middleware"
	"github.com/rajankumarrkr/tradeIndia/internal/handler/user"
	"github.com/rajankumarrkr/tradeIndia/internal/handler/wallet"
	"github.com/rajankumarrkr/tradeIndia/pkg/dto"
)

func (a *App) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Compress(5, "application/json"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   a.Config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Authorization"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.WithAuth(a.Config.PrivateKey, a.Config.AuthDisabledURLs))

	userHandler := userhandler.New(a.Users)
	walletHandler := wallethandler.New(a.Payments)
	investmentHandler := investmenthandler.New(a.Investments)
	adminHandler := adminhandler.New(a.Approvals, a.Users, a.Scheduler, dto.Settings{
		UPIID:     a.Config.PaymentUPIID,
		QRCodeURL: a.Config.PaymentQRURL,
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/settings", adminHandler.Settings)
		r.Get("/plans", investmentHandler.Plans)

		r.Route("/user", func(r chi.Router) {
			r.Post("/register", userHandler.Register)
			r.Post("/login", userHandler.Login)

			r.Get("/wallet", walletHandler.Wallet)
			r.Get("/transactions", walletHandler.Transactions)
			r.Post("/recharge", walletHandler.Recharge)
			r.Post("/withdraw", walletHandler.Withdraw)
			r.Get("/bank-accounts", walletHandler.BankAccounts)
			r.Post("/bank-accounts", walletHandler.AddBankAccount)
			r.Get("/investments", investmentHandler.Investments)
			r.Post("/investments", investmentHandler.Purchase)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin)

			r.Get("/users", adminHandler.Users)
			r.Post("/users/{userID}/block", adminHandler.Block)
			r.Get("/pending-transactions", adminHandler.PendingTransactions)
			r.Post("/recharges/{txID}/approve", adminHandler.ApproveRecharge)
			r.Post("/recharges/{txID}/reject", adminHandler.RejectRecharge)
			r.Post("/withdrawals/{txID}/approve", adminHandler.ApproveWithdrawal)
			r.Post("/withdrawals/{txID}/reject", adminHandler.RejectWithdrawal)
			r.Post("/add-amount", adminHandler.AddAmount)
			r.Post("/accrual/run", adminHandler.RunAccrual)
			r.Get("/accrual/last", adminHandler.LastAccrual)
		})
	})

	return r
}
