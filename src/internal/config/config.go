package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultConnectionString = "Host=localhost;Port=5432;Database=ledger_loan_db;Username=postgres;Password=postgres;Timeout=30;CommandTimeout=30"
const defaultHTTPAddr = ":8080"
const defaultMongoURI = "mongodb://localhost:27017"
const defaultMongoDatabase = "banking"
const defaultRedisAddr = "localhost:6379"
const defaultShutdownTimeout = 10 * time.Second

type StoreBackend string

const (
	StoreMemory   StoreBackend = "memory"
	StorePostgres StoreBackend = "postgres"
	StoreMongo    StoreBackend = "mongo"
)

type LockBackend string

const (
	LockMemory LockBackend = "memory"
	LockRedis  LockBackend = "redis"
)

type BootstrapAdmin struct {
	ID       string
	Email    string
	Password string
}

func (b BootstrapAdmin) Enabled() bool {
	return b.Email != "" && b.Password != ""
}

type Config struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration
	StoreBackend    StoreBackend
	DatabaseDSN     string
	MigrationsDir   string
	MongoURI        string
	MongoDatabase   string
	LockBackend     LockBackend
	RedisAddr       string
	RedisPassword   string
	LogLevel        string
	LogFormat       string
	BootstrapAdmin  BootstrapAdmin
}

// LoadEnvFile copies variables from a dotenv file into the process environment.
// Variables already set win, and a missing file is not an error.
func LoadEnvFile(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func Load() (Config, error) {
	store := StoreBackend(strings.ToLower(valueOrDefault("STORE_BACKEND", string(StoreMemory))))
	switch store {
	case StoreMemory, StorePostgres, StoreMongo:
	default:
		return Config{}, fmt.Errorf("STORE_BACKEND must be one of memory, postgres, mongo: got %q", store)
	}

	lock := LockBackend(strings.ToLower(valueOrDefault("LOCK_BACKEND", string(LockMemory))))
	switch lock {
	case LockMemory, LockRedis:
	default:
		return Config{}, fmt.Errorf("LOCK_BACKEND must be one of memory, redis: got %q", lock)
	}

	shutdownTimeout := defaultShutdownTimeout
	if raw := strings.TrimSpace(os.Getenv("SHUTDOWN_TIMEOUT")); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err)
		}
		shutdownTimeout = parsed
	}

	return Config{
		HTTPAddr:        valueOrDefault("HTTP_ADDR", defaultHTTPAddr),
		ShutdownTimeout: shutdownTimeout,
		StoreBackend:    store,
		DatabaseDSN:     normalizeConnectionString(valueOrDefault("DATABASE_DSN", defaultConnectionString)),
		MigrationsDir:   valueOrDefault("MIGRATIONS_DIR", filepath.Join("src", "migrations")),
		MongoURI:        valueOrDefault("MONGO_URI", defaultMongoURI),
		MongoDatabase:   valueOrDefault("MONGO_DATABASE", defaultMongoDatabase),
		LockBackend:     lock,
		RedisAddr:       valueOrDefault("REDIS_ADDR", defaultRedisAddr),
		RedisPassword:   strings.TrimSpace(os.Getenv("REDIS_PASSWORD")),
		LogLevel:        valueOrDefault("LOG_LEVEL", "info"),
		LogFormat:       valueOrDefault("LOG_FORMAT", "json"),
		BootstrapAdmin: BootstrapAdmin{
			ID:       strings.TrimSpace(os.Getenv("BOOTSTRAP_ADMIN_ID")),
			Email:    strings.ToLower(strings.TrimSpace(os.Getenv("BOOTSTRAP_ADMIN_EMAIL"))),
			Password: os.Getenv("BOOTSTRAP_ADMIN_PASSWORD"),
		},
	}, nil
}

func valueOrDefault(key string, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func normalizeConnectionString(raw string) string {
	if strings.HasPrefix(raw, "postgres://") || strings.HasPrefix(raw, "postgresql://") {
		return raw
	}

	parts := strings.Split(raw, ";")
	out := make([]string, 0, len(parts))
	hasSSLMode := false

	for _, part := range parts {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}

		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(kv[0]))
		val := strings.TrimSpace(kv[1])

		switch key {
		case "host":
			out = append(out, "host="+val)
		case "port":
			out = append(out, "port="+val)
		case "database":
			out = append(out, "dbname="+val)
		case "username":
			out = append(out, "user="+val)
		case "password":
			out = append(out, "password="+val)
		case "timeout", "connect timeout":
			out = append(out, "connect_timeout="+val)
		case "commandtimeout", "command timeout":
			out = append(out, "statement_timeout="+val+"s")
		case "sslmode":
			hasSSLMode = true
			out = append(out, "sslmode="+val)
		default:
			out = append(out, key+"="+val)
		}
	}

	if len(out) == 0 {
		return raw
	}

	if !hasSSLMode {
		out = append(out, "sslmode=disable")
	}

	return strings.Join(out, " ")
}
