package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"healthpay-platform/internal/audit"
	"healthpay-platform/internal/auth"
	"healthpay-platform/internal/cache"
	"healthpay-platform/internal/commission"
	"healthpay-platform/internal/config"
	"healthpay-platform/internal/httpapi"
	"healthpay-platform/internal/invoice"
	"healthpay-platform/internal/ledger"
	"healthpay-platform/internal/notify"
	"healthpay-platform/internal/wallet"
	"healthpay-platform/internal/withdrawal"
	"healthpay-platform/pkg/logger"
	"healthpay-platform/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.New("production").Error("config load failed", "err", err)
		return err
	}

	log := logger.New(cfg.App.Env)
	log.Info("starting api", "env", cfg.App.Env, "addr", cfg.HTTPAddr())

	db, err := utils.OpenPostgres(ctx, cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres connect failed", "err", err)
		return err
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(ctx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis connect failed", "err", err)
		return err
	}
	defer rdb.Close()

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		return err
	}

	// Event fan-out: local broadcaster bridged over Redis pub/sub so every
	// API instance sees every event.
	local := notify.NewBroadcaster(cfg.Ledger.EventBuffer)
	broker := notify.NewRedisBroadcaster(rdb, local, log)
	go func() {
		if err := broker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("event bridge stopped", "err", err)
		}
	}()

	serializer := ledger.NewProviderSerializer(rdb, cfg.Ledger.ProviderLockTTL)

	paymentStore := ledger.NewPostgresStore(db)
	withdrawalStore := withdrawal.NewPostgresStore(db)
	invoiceStore := invoice.NewPostgresStore(db)

	ledgerSvc := ledger.NewService(paymentStore, broker)
	walletCalc := wallet.NewCalculator(paymentStore, withdrawalStore)
	withdrawalSvc := withdrawal.NewService(withdrawalStore, walletCalc, serializer, broker)
	invoiceSvc := invoice.NewService(invoiceStore, paymentStore, serializer, broker, cfg.Ledger.InvoiceNumberPrefix)
	commissionSvc := commission.NewService(commission.NewPostgresRepo(db), cfg.Ledger.DefaultCommissionPercent)
	auditSvc := audit.NewService(audit.NewPostgresRepo(db), log)

	walletCache := cache.NewWalletCache(rdb, cfg.Ledger.WalletCacheTTL, log)
	go walletCache.Run(ctx, broker)

	users, err := bootstrapDirectory()
	if err != nil {
		log.Error("user directory init failed", "err", err)
		return err
	}

	handlers := &httpapi.Handlers{
		Auth:         authManager,
		Users:        users,
		Ledger:       ledgerSvc,
		Wallet:       walletCalc,
		WalletCache:  walletCache,
		Withdrawals:  withdrawalSvc,
		Invoices:     invoiceSvc,
		Commission:   commissionSvc,
		Audit:        auditSvc,
		Events:       broker,
		SSEHeartbeat: cfg.Ledger.SSEHeartbeat,
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := newRouter(log, authManager, handlers)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// No WriteTimeout: SSE connections are long-lived by design.
		IdleTimeout: 120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		log.Error("server failed", "err", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", "err", err)
		return err
	}
	log.Info("stopped")
	return nil
}
