package app

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/filmorate/backend/internal/config"
	"github.com/filmorate/backend/internal/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func memoryConfig() config.Config {
	return config.Config{
		Store:             config.StoreMemory,
		ReferenceCacheTTL: time.Minute,
		PopularDefault:    10,
		RateLimit:         config.RateLimitConfig{Requests: 10, Window: time.Second, Burst: 5, TTL: time.Minute},
		Export:            config.ExportConfig{TopN: 5, Workers: 1, QueueSize: 2},
	}
}

func TestBuildDependencies(t *testing.T) {
	cfg := memoryConfig()
	ctx := context.Background()

	b, err := openBackend(ctx, cfg, discardLogger())
	if err != nil {
		t.Fatalf("open backend: %v", err)
	}
	defer b.close()

	deps := buildDependencies(b, buildServices(b, cfg), cfg)

	if deps.Users == nil || deps.Films == nil || deps.Reference == nil {
		t.Fatal("expected catalog services to be configured")
	}
	if deps.Friends == nil {
		t.Fatal("expected friendship engine to be configured")
	}
	if deps.Likes == nil || deps.Ranking == nil {
		t.Fatal("expected like ledger and ranking to be configured")
	}
	if deps.RateLimiter == nil {
		t.Fatal("expected rate limiter when requests > 0")
	}
	if deps.Metrics == nil {
		t.Fatal("expected metrics handler")
	}
	if deps.PopularDefault != 10 {
		t.Fatalf("unexpected popular default %d", deps.PopularDefault)
	}

	genres, err := deps.Reference.ListGenres(ctx)
	if err != nil {
		t.Fatalf("list genres: %v", err)
	}
	if len(genres) != len(models.DefaultGenres) {
		t.Fatalf("memory backend should be seeded, got %d genres", len(genres))
	}

	cfg.RateLimit.Requests = 0
	if deps := buildDependencies(b, buildServices(b, cfg), cfg); deps.RateLimiter != nil {
		t.Fatal("rate limiter should be disabled when requests is zero")
	}
}

func TestOpenBackendSQLite(t *testing.T) {
	cfg := memoryConfig()
	cfg.Store = config.StoreSQLite
	cfg.SQLitePath = filepath.Join(t.TempDir(), "filmorate.db")

	b, err := openBackend(context.Background(), cfg, discardLogger())
	if err != nil {
		t.Fatalf("open backend: %v", err)
	}
	defer b.close()

	if b.health == nil {
		t.Fatal("sqlite backend should expose a health check")
	}
	if err := b.health.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestOpenBackendUnknownStore(t *testing.T) {
	cfg := memoryConfig()
	cfg.Store = "etcd"
	if _, err := openBackend(context.Background(), cfg, discardLogger()); err == nil {
		t.Fatal("expected error for unknown store")
	}
}

func TestBuildPublisherWithoutDestination(t *testing.T) {
	cfg := memoryConfig()
	publisher, shutdown, err := buildPublisher(context.Background(), cfg, nil, discardLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if publisher != nil {
		t.Fatal("expected no publisher without storage")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("noop shutdown: %v", err)
	}
}

func TestBuildPublisherWithBucket(t *testing.T) {
	cfg := memoryConfig()
	cfg.ObjectStore = config.ObjectStoreConfig{Bucket: "snapshots", Endpoint: "http://localhost:9000", Region: "us-east-1"}
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	publisher, shutdown, err := buildPublisher(context.Background(), cfg, nil, discardLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if publisher == nil {
		t.Fatal("expected publisher backed by the bucket")
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestExportCommandWritesSnapshot(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	t.Setenv("FILMORATE_STORE", config.StoreMemory)
	t.Setenv("FILMORATE_EXPORT_DIR", dir)

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"export", "--count", "3"})
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("export: %v", err)
	}

	if !strings.HasPrefix(out.String(), "published ") {
		t.Fatalf("unexpected output %q", out.String())
	}
	if _, err := os.Stat(filepath.Join(dir, "popular", "latest.json")); err != nil {
		t.Fatalf("expected latest snapshot: %v", err)
	}
}

func TestMigrateMemoryStoreIsNoop(t *testing.T) {
	var out bytes.Buffer
	if err := runMigrations(context.Background(), memoryConfig(), "up", &out); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := runMigrations(context.Background(), memoryConfig(), "down", &out); err == nil {
		t.Fatal("expected down migrations to be rejected")
	}
}

func TestMigrateSQLiteStatus(t *testing.T) {
	cfg := memoryConfig()
	cfg.Store = config.StoreSQLite
	cfg.SQLitePath = filepath.Join(t.TempDir(), "filmorate.db")

	var out bytes.Buffer
	if err := runMigrations(context.Background(), cfg, "up", &out); err != nil {
		t.Fatalf("migrate up: %v", err)
	}
	out.Reset()
	if err := runMigrations(context.Background(), cfg, "status", &out); err != nil {
		t.Fatalf("migrate status: %v", err)
	}
	for _, name := range []string{"0001_init.sql", "0002_reference_data.sql"} {
		if !strings.Contains(out.String(), "[x] "+name) {
			t.Fatalf("expected %s to be applied, got %q", name, out.String())
		}
	}
	if strings.Contains(out.String(), "[ ]") {
		t.Fatalf("no migration should be pending, got %q", out.String())
	}
}

func TestSeedSQLite(t *testing.T) {
	cfg := memoryConfig()
	cfg.Store = config.StoreSQLite
	cfg.SQLitePath = filepath.Join(t.TempDir(), "filmorate.db")
	cfg.SeedDir = filepath.Join("..", "..", "seeds")

	var out bytes.Buffer
	if err := runSeed(context.Background(), cfg, "demo", &out); err != nil {
		t.Fatalf("seed: %v", err)
	}

	b, err := openBackend(context.Background(), cfg, discardLogger())
	if err != nil {
		t.Fatalf("open backend: %v", err)
	}
	defer b.close()
	users, err := b.users.List(context.Background())
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("expected 3 seeded users, got %d", len(users))
	}

	cfg.Store = config.StoreMemory
	if err := runSeed(context.Background(), cfg, "demo", &out); err == nil {
		t.Fatal("memory store should reject SQL seeds")
	}
}
