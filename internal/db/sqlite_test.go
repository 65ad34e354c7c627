package db

import (
	"context"
	"path/filepath"
	"testing"
)

func TestOpenSQLiteRecordsMigrationFileNames(t *testing.T) {
	ctx := context.Background()
	conn, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "filmorate.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer conn.Close()

	var count int
	if err := conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, "0001_init.sql").Scan(&count); err != nil {
		t.Fatalf("query schema_migrations: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 0001_init.sql to be recorded, got %d rows", count)
	}

	if err := MigrateSQLite(ctx, conn); err != nil {
		t.Fatalf("second migrate should be a no-op: %v", err)
	}
}

func TestOpenSQLitePragmasApplyToEveryConnection(t *testing.T) {
	ctx := context.Background()
	conn, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "filmorate.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer conn.Close()

	// Drop the pooled connection so the next query runs on a fresh one.
	conn.SetMaxIdleConns(0)
	conn.SetMaxIdleConns(1)

	var foreignKeys, busyTimeout int
	if err := conn.QueryRowContext(ctx, `PRAGMA foreign_keys`).Scan(&foreignKeys); err != nil {
		t.Fatalf("read foreign_keys: %v", err)
	}
	if foreignKeys != 1 {
		t.Fatalf("expected foreign keys on, got %d", foreignKeys)
	}
	if err := conn.QueryRowContext(ctx, `PRAGMA busy_timeout`).Scan(&busyTimeout); err != nil {
		t.Fatalf("read busy_timeout: %v", err)
	}
	if busyTimeout != 5000 {
		t.Fatalf("expected busy timeout 5000, got %d", busyTimeout)
	}

	var journal string
	if err := conn.QueryRowContext(ctx, `PRAGMA journal_mode`).Scan(&journal); err != nil {
		t.Fatalf("read journal_mode: %v", err)
	}
	if journal != "wal" {
		t.Fatalf("expected wal journal, got %q", journal)
	}
}

func TestSQLiteDSN(t *testing.T) {
	dsn := sqliteDSN("/tmp/films.db")
	want := "file:/tmp/films.db?_pragma=foreign_keys%281%29&_pragma=busy_timeout%285000%29&_pragma=journal_mode%28WAL%29"
	if dsn != want {
		t.Fatalf("unexpected dsn\n got: %s\nwant: %s", dsn, want)
	}
}
