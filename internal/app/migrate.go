package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/filmorate/backend/internal/config"
	"github.com/filmorate/backend/internal/db"
	"github.com/filmorate/backend/internal/db/sqlitemigrations"
)

const (
	migrationMaxRetries  = 3
	migrationBaseBackoff = 100 * time.Millisecond
	migrationMaxBackoff  = 3 * time.Second
)

var retryablePgErrorCodes = map[string]struct{}{
	"40001": {}, // serialization_failure
	"40P01": {}, // deadlock_detected
	"55P03": {}, // lock_not_available
}

// runMigrations applies ("up") or lists ("status") schema migrations for the
// configured store.
func runMigrations(ctx context.Context, cfg config.Config, command string, out io.Writer) error {
	switch command {
	case "up", "", "status":
	case "down":
		return errors.New("down migrations are not supported")
	default:
		return fmt.Errorf("unknown migrate command %q", command)
	}

	switch cfg.Store {
	case config.StorePostgres:
		return migratePostgres(ctx, cfg, command, out)
	case config.StoreSQLite:
		return migrateSQLite(ctx, cfg, command, out)
	default:
		fmt.Fprintf(out, "store %q has no schema to migrate\n", cfg.Store)
		return nil
	}
}

func resolveDir(dir string) (string, error) {
	if filepath.IsAbs(dir) {
		return dir, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("determine working directory: %w", err)
	}
	return filepath.Join(wd, dir), nil
}

func listSQLFiles(entries []fs.DirEntry) []string {
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".sql" {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names
}

func printStatus(out io.Writer, migrations []string, applied map[string]struct{}) {
	for _, name := range migrations {
		if _, ok := applied[name]; ok {
			fmt.Fprintf(out, "[x] %s\n", name)
		} else {
			fmt.Fprintf(out, "[ ] %s\n", name)
		}
	}
}

func migratePostgres(ctx context.Context, cfg config.Config, command string, out io.Writer) error {
	migrationDir, err := resolveDir(cfg.MigrationDir)
	if err != nil {
		return err
	}
	entries, err := os.ReadDir(migrationDir)
	if err != nil {
		return fmt.Errorf("read migrations directory: %w", err)
	}
	migrations := listSQLFiles(entries)

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
                version TEXT PRIMARY KEY,
                applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`); err != nil {
		return fmt.Errorf("ensure schema_migrations table: %w", err)
	}

	applied, err := appliedPostgresMigrations(ctx, conn)
	if err != nil {
		return err
	}

	if command == "status" {
		printStatus(out, migrations, applied)
		return nil
	}

	if len(migrations) == 0 {
		fmt.Fprintln(out, "no migrations to apply")
		return nil
	}
	for _, name := range migrations {
		if _, ok := applied[name]; ok {
			continue
		}
		contents, err := os.ReadFile(filepath.Join(migrationDir, name))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if err := applyMigrationWithRetry(ctx, conn, name, string(contents), out); err != nil {
			return err
		}
		fmt.Fprintf(out, "applied migration %s\n", name)
	}
	return nil
}

func appliedPostgresMigrations(ctx context.Context, conn *pgxpool.Conn) (map[string]struct{}, error) {
	rows, err := conn.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("fetch applied migrations: %w", err)
	}
	versions, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan applied migrations: %w", err)
	}
	applied := make(map[string]struct{}, len(versions))
	for _, v := range versions {
		applied[v] = struct{}{}
	}
	return applied, nil
}

// migrateSQLite relies on the embedded migration set; opening the database
// already applies whatever is pending.
func migrateSQLite(ctx context.Context, cfg config.Config, command string, out io.Writer) error {
	conn, err := db.OpenSQLite(ctx, cfg.SQLitePath)
	if err != nil {
		return err
	}
	defer conn.Close()

	entries, err := fs.ReadDir(sqlitemigrations.FS, ".")
	if err != nil {
		return fmt.Errorf("read embedded migrations: %w", err)
	}
	migrations := listSQLFiles(entries)

	if command != "status" {
		fmt.Fprintf(out, "sqlite schema at %s is up to date (%d migrations)\n", cfg.SQLitePath, len(migrations))
		return nil
	}

	rows, err := conn.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return fmt.Errorf("fetch applied migrations: %w", err)
	}
	defer rows.Close()
	applied := make(map[string]struct{})
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return fmt.Errorf("scan applied migration: %w", err)
		}
		applied[version] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate applied migrations: %w", err)
	}

	printStatus(out, migrations, applied)
	return nil
}

func applyMigrationWithRetry(ctx context.Context, conn *pgxpool.Conn, name, contents string, out io.Writer) error {
	var attempt int
	for attempt = 0; attempt < migrationMaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * migrationBaseBackoff
			if backoff > migrationMaxBackoff {
				backoff = migrationMaxBackoff
			}
			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		err := pgx.BeginTxFunc(ctx, conn, pgx.TxOptions{IsoLevel: pgx.Serializable}, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, contents); err != nil {
				return fmt.Errorf("apply migration %s: %w", name, err)
			}
			if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, name); err != nil {
				return fmt.Errorf("record migration %s: %w", name, err)
			}
			return nil
		})
		if err == nil {
			return nil
		}
		if shouldRetryMigration(err) && attempt < migrationMaxRetries-1 {
			fmt.Fprintf(out, "transient error on migration %s (attempt %d/%d): %v\n", name, attempt+1, migrationMaxRetries, err)
			continue
		}
		return err
	}

	return fmt.Errorf("apply migration %s: exceeded max retries (%d)", name, attempt)
}

func shouldRetryMigration(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, pgx.ErrTxClosed) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		_, ok := retryablePgErrorCodes[pgErr.Code]
		return ok
	}
	return false
}

// runSeed executes seeds/<name>_seed.sql (or <name> when it already ends in
// .sql) against the configured SQL store.
func runSeed(ctx context.Context, cfg config.Config, name string, out io.Writer) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("expected seed name (e.g. demo)")
	}
	seedDir, err := resolveDir(cfg.SeedDir)
	if err != nil {
		return err
	}
	seedName := name
	if !strings.HasSuffix(seedName, ".sql") {
		seedName = fmt.Sprintf("%s_seed.sql", seedName)
	}
	contents, err := os.ReadFile(filepath.Join(seedDir, seedName))
	if err != nil {
		return fmt.Errorf("read seed %s: %w", seedName, err)
	}

	switch cfg.Store {
	case config.StorePostgres:
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		if _, err := pool.Exec(ctx, string(contents)); err != nil {
			return fmt.Errorf("apply seed %s: %w", seedName, err)
		}
	case config.StoreSQLite:
		conn, err := db.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return err
		}
		defer conn.Close()
		if _, err := conn.ExecContext(ctx, string(contents)); err != nil {
			return fmt.Errorf("apply seed %s: %w", seedName, err)
		}
	default:
		return fmt.Errorf("store %q does not accept SQL seeds", cfg.Store)
	}

	fmt.Fprintf(out, "applied seed %s\n", seedName)
	return nil
}
