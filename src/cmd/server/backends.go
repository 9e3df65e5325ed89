package main

import (
	"context"
	"fmt"

	"github.com/api-sage/ledger-loan-service/src/internal/adapter/http/controller"
	"github.com/api-sage/ledger-loan-service/src/internal/adapter/lock"
	"github.com/api-sage/ledger-loan-service/src/internal/adapter/repository/memory"
	mongorepo "github.com/api-sage/ledger-loan-service/src/internal/adapter/repository/mongo"
	"github.com/api-sage/ledger-loan-service/src/internal/adapter/repository/postgres"
	"github.com/api-sage/ledger-loan-service/src/internal/config"
	"github.com/api-sage/ledger-loan-service/src/internal/domain"
	"github.com/api-sage/ledger-loan-service/src/internal/logger"
	"github.com/redis/go-redis/v9"
)

type storeBackend struct {
	accounts     domain.AccountRepository
	transactions domain.TransactionRepository
	loans        domain.LoanRepository
	users        domain.UserRepository
	transactor   domain.Transactor
	checks       map[string]controller.HealthCheck
	close        func()
}

type lockBackend struct {
	locker domain.Locker
	checks map[string]controller.HealthCheck
	close  func()
}

func openStore(ctx context.Context, cfg config.Config) (storeBackend, error) {
	switch cfg.StoreBackend {
	case config.StorePostgres:
		db, err := postgres.Open(ctx, cfg.DatabaseDSN)
		if err != nil {
			return storeBackend{}, fmt.Errorf("open postgres: %w", err)
		}
		if err := postgres.RunMigrations(ctx, db, cfg.MigrationsDir); err != nil {
			_ = db.Close()
			return storeBackend{}, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("store backend ready", logger.Fields{"backend": cfg.StoreBackend})
		return storeBackend{
			accounts:     postgres.NewAccountRepository(db),
			transactions: postgres.NewTransactionRepository(db),
			loans:        postgres.NewLoanRepository(db),
			users:        postgres.NewUserRepository(db),
			transactor:   postgres.NewTransactor(db),
			checks:       map[string]controller.HealthCheck{"postgres": db.PingContext},
			close: func() {
				if err := db.Close(); err != nil {
					logger.Error("close postgres failed", err, nil)
				}
			},
		}, nil

	case config.StoreMongo:
		client, db, err := mongorepo.Open(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return storeBackend{}, fmt.Errorf("open mongo: %w", err)
		}
		disconnect := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logger.Error("disconnect mongo failed", err, nil)
			}
		}
		if err := mongorepo.EnsureIndexes(ctx, db); err != nil {
			disconnect()
			return storeBackend{}, fmt.Errorf("ensure mongo indexes: %w", err)
		}
		logger.Info("store backend ready", logger.Fields{"backend": cfg.StoreBackend, "database": cfg.MongoDatabase})
		return storeBackend{
			accounts:     mongorepo.NewAccountRepository(db),
			transactions: mongorepo.NewTransactionRepository(db),
			loans:        mongorepo.NewLoanRepository(db),
			users:        mongorepo.NewUserRepository(db),
			transactor:   mongorepo.NewTransactor(client),
			checks: map[string]controller.HealthCheck{"mongo": func(ctx context.Context) error {
				return client.Ping(ctx, nil)
			}},
			close: disconnect,
		}, nil

	default:
		store := memory.NewStore()
		logger.Warn("using in-memory store; data is lost on restart", logger.Fields{"backend": cfg.StoreBackend})
		return storeBackend{
			accounts:     memory.NewAccountRepository(store),
			transactions: memory.NewTransactionRepository(store),
			loans:        memory.NewLoanRepository(store),
			users:        memory.NewUserRepository(store),
			transactor:   memory.NewTransactor(store),
			close:        func() {},
		}, nil
	}
}

func openLocker(ctx context.Context, cfg config.Config) (lockBackend, error) {
	if cfg.LockBackend != config.LockRedis {
		return lockBackend{locker: lock.NewMemoryLocker(), close: func() {}}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return lockBackend{}, fmt.Errorf("ping redis: %w", err)
	}

	locker, err := lock.NewRedisLocker(client, lock.DefaultRedisOptions())
	if err != nil {
		_ = client.Close()
		return lockBackend{}, fmt.Errorf("create redis locker: %w", err)
	}
	logger.Info("lock backend ready", logger.Fields{"backend": cfg.LockBackend, "addr": cfg.RedisAddr})

	return lockBackend{
		locker: locker,
		checks: map[string]controller.HealthCheck{"redis": func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}},
		close: func() {
			if err := client.Close(); err != nil {
				logger.Error("close redis client failed", err, nil)
			}
		},
	}, nil
}
