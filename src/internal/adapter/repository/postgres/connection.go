package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/api-sage/ledger-loan-service/src/internal/logger"
	_ "github.com/lib/pq"
)

// ApplicationName tags every ledger connection in pg_stat_activity.
const ApplicationName = "ledger-loan-service"

// Pool bounds the connections held for the ledger and loan repositories.
type Pool struct {
	MaxOpen     int
	MaxIdle     int
	MaxIdleTime time.Duration
	MaxLifetime time.Duration
}

// DefaultPool keeps enough connections for concurrent transfers, each of which
// holds one connection for the duration of its transaction.
func DefaultPool() Pool {
	return Pool{
		MaxOpen:     30,
		MaxIdle:     20,
		MaxIdleTime: 5 * time.Minute,
		MaxLifetime: 15 * time.Minute,
	}
}

func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	return OpenWithPool(ctx, dsn, DefaultPool())
}

func OpenWithPool(ctx context.Context, dsn string, pool Pool) (*sql.DB, error) {
	db, err := sql.Open("postgres", withApplicationName(dsn))
	if err != nil {
		return nil, fmt.Errorf("open ledger store: %w", err)
	}

	db.SetMaxOpenConns(pool.MaxOpen)
	db.SetMaxIdleConns(min(pool.MaxIdle, pool.MaxOpen))
	db.SetConnMaxIdleTime(pool.MaxIdleTime)
	db.SetConnMaxLifetime(pool.MaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping ledger store: %w", err)
	}

	logger.Info("postgres ledger store connected", logger.Fields{
		"applicationName": ApplicationName,
		"maxOpenConns":    pool.MaxOpen,
		"maxIdleConns":    min(pool.MaxIdle, pool.MaxOpen),
	})
	return db, nil
}

// withApplicationName adds application_name to a URL or key/value DSN unless
// the caller already chose one.
func withApplicationName(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return dsn
		}
		q := u.Query()
		if q.Get("application_name") == "" {
			q.Set("application_name", ApplicationName)
			u.RawQuery = q.Encode()
		}
		return u.String()
	}
	if strings.Contains(dsn, "application_name=") {
		return dsn
	}
	return strings.TrimSpace(dsn + " application_name=" + ApplicationName)
}
