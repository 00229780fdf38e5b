package main

import (
	"context"
	"errors"
	"github.com/joho/godotenv"
	"github.com/rajankumarrkr/tradeIndia/internal/app"
	"github.com/rajankumarrkr/tradeIndia/internal/config"
	"github.com/rajankumarrkr/tradeIndia/pkg/logger"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("error reading .env file: %v", err)
	}

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	if err = logger.Initialize(cfg.LogLevel); err != nil {
		log.Fatalf("error starting logger: %v", err)
	}
	defer func() { _ = logger.Log.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	a, err := app.New(ctx, cfg)
	if err != nil {
		logger.Log.Fatal("error creating app", logger.Error(err))
	}

	a.Scheduler.Start()

	ongoingCtx, cancelOngoingRequests := context.WithCancel(context.Background())
	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: a.Router(),
		BaseContext: func(_ net.Listener) context.Context {
			return ongoingCtx
		},
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Log.Info("starting server", logger.String("address", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("server error", logger.Error(err))
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Log.Info("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	logger.Log.Info("stopping server")
	if err = server.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("error shutting down server", logger.Error(err))
	}
	cancelOngoingRequests()
	logger.Log.Info("server stopped")

	logger.Log.Info("waiting for the accrual scheduler")
	if err = a.Scheduler.Stop(shutdownCtx); err != nil {
		logger.Log.Error("accrual run still in progress at shutdown", logger.Error(err))
	}

	if err = a.Close(shutdownCtx); err != nil {
		logger.Log.Error("error closing connections", logger.Error(err))
	}

	logger.Log.Info("shutdown complete")
}
