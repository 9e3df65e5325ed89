package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/api-sage/ledger-loan-service/src/internal/adapter/http/controller"
	"github.com/api-sage/ledger-loan-service/src/internal/adapter/http/middleware"
	"github.com/api-sage/ledger-loan-service/src/internal/adapter/http/router"
	"github.com/api-sage/ledger-loan-service/src/internal/config"
	"github.com/api-sage/ledger-loan-service/src/internal/logger"
	"github.com/api-sage/ledger-loan-service/src/internal/usecase/services"
	"golang.org/x/sync/errgroup"
)

const startupTimeout = 30 * time.Second

func envFile() string {
	if path := os.Getenv("ENV_FILE"); path != "" {
		return path
	}
	return ".env"
}

func main() {
	if err := run(); err != nil {
		logger.Error("server exited with error", err, nil)
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

func run() error {
	if err := config.LoadEnvFile(envFile()); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.Init(cfg.LogLevel, cfg.LogFormat); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startupCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	store, err := openStore(startupCtx, cfg)
	if err != nil {
		return err
	}
	defer store.close()

	locker, err := openLocker(startupCtx, cfg)
	if err != nil {
		return err
	}
	defer locker.close()

	pricingService := services.NewPricingService()
	userService := services.NewUserService(store.users)
	accountService := services.NewAccountService(store.accounts, store.transactions, store.transactor, locker.locker)
	loanService := services.NewLoanService(store.loans, locker.locker, pricingService)

	if cfg.BootstrapAdmin.Enabled() {
		if _, _, err := userService.SeedAdmin(startupCtx, cfg.BootstrapAdmin.ID, cfg.BootstrapAdmin.Email, cfg.BootstrapAdmin.Password); err != nil {
			return fmt.Errorf("seed bootstrap admin: %w", err)
		}
	} else {
		logger.Warn("bootstrap admin not configured", logger.Fields{"hint": "set BOOTSTRAP_ADMIN_EMAIL and BOOTSTRAP_ADMIN_PASSWORD"})
	}

	checks := map[string]controller.HealthCheck{}
	for name, check := range store.checks {
		checks[name] = check
	}
	for name, check := range locker.checks {
		checks[name] = check
	}

	mux := router.New(
		middleware.BasicAuth(userService),
		controller.NewHealthController(checks),
		controller.NewAccountController(accountService),
		controller.NewLoanController(loanService),
		controller.NewPricingController(pricingService),
		controller.NewUserController(userService),
	)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("http server listening", logger.Fields{
			"addr":         cfg.HTTPAddr,
			"storeBackend": cfg.StoreBackend,
			"lockBackend":  cfg.LockBackend,
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("http server shutting down", logger.Fields{"timeout": cfg.ShutdownTimeout.String()})

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return group.Wait()
}
