package postgres

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/api-sage/ledger-loan-service/src/internal/logger"
)

const migrationsTable = "ledger_schema_migrations"

type migration struct {
	version  string
	checksum string
	body     string
}

// RunMigrations applies the ledger and loan schema files in migrationsDir in
// file name order, one transaction per file. A file whose content changed after
// it was applied stops the run before anything new is executed.
func RunMigrations(ctx context.Context, db *sql.DB, migrationsDir string) error {
	if err := ensureMigrationsTable(ctx, db); err != nil {
		return err
	}

	available, err := loadMigrations(migrationsDir)
	if err != nil {
		return err
	}
	applied, err := appliedChecksums(ctx, db)
	if err != nil {
		return err
	}
	pending, err := planMigrations(available, applied)
	if err != nil {
		return err
	}

	logger.Info("ledger schema migrations planned", logger.Fields{
		"table":   migrationsTable,
		"applied": len(applied),
		"pending": len(pending),
	})

	for _, m := range pending {
		if err := applyMigration(ctx, db, m); err != nil {
			return err
		}
		logger.Info("ledger schema migration applied", logger.Fields{
			"table":    migrationsTable,
			"version":  m.version,
			"checksum": m.checksum[:12],
		})
	}
	return nil
}

func applyMigration(ctx context.Context, db *sql.DB, m migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %q: %w", m.version, err)
	}
	if _, err := tx.ExecContext(ctx, m.body); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("execute migration %q: %w", m.version, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO `+migrationsTable+`(version, checksum) VALUES ($1, $2)`, m.version, m.checksum); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("record migration %q: %w", m.version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %q: %w", m.version, err)
	}
	return nil
}

func ensureMigrationsTable(ctx context.Context, db *sql.DB) error {
	ddl := `
CREATE TABLE IF NOT EXISTS ` + migrationsTable + ` (
	version TEXT PRIMARY KEY,
	checksum TEXT NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure %s table: %w", migrationsTable, err)
	}
	return nil
}

func appliedChecksums(ctx context.Context, db *sql.DB) (map[string]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT version, checksum FROM `+migrationsTable)
	if err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]string)
	for rows.Next() {
		var version, checksum string
		if err := rows.Scan(&version, &checksum); err != nil {
			return nil, fmt.Errorf("scan applied migration: %w", err)
		}
		applied[version] = checksum
	}
	return applied, rows.Err()
}

// planMigrations returns the migrations not yet applied, in order.
func planMigrations(available []migration, applied map[string]string) ([]migration, error) {
	pending := make([]migration, 0, len(available))
	for _, m := range available {
		checksum, ok := applied[m.version]
		if !ok {
			pending = append(pending, m)
			continue
		}
		if checksum != m.checksum {
			return nil, fmt.Errorf("migration %q changed after it was applied", m.version)
		}
	}
	return pending, nil
}

func loadMigrations(migrationsDir string) ([]migration, error) {
	files, err := migrationFiles(migrationsDir)
	if err != nil {
		return nil, err
	}

	out := make([]migration, 0, len(files))
	for _, file := range files {
		body, err := os.ReadFile(filepath.Join(migrationsDir, file))
		if err != nil {
			return nil, fmt.Errorf("read migration %q: %w", file, err)
		}
		sum := sha256.Sum256(body)
		out = append(out, migration{version: file, checksum: hex.EncodeToString(sum[:]), body: string(body)})
	}
	return out, nil
}

func migrationFiles(migrationsDir string) ([]string, error) {
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("read migrations directory %q: %w", migrationsDir, err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(strings.ToLower(entry.Name()), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}
