package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/filmorate/backend/internal/catalog"
	"github.com/filmorate/backend/internal/config"
	"github.com/filmorate/backend/internal/export"
	"github.com/filmorate/backend/internal/friends"
	"github.com/filmorate/backend/internal/handlers"
	"github.com/filmorate/backend/internal/likes"
	"github.com/filmorate/backend/internal/metrics"
	"github.com/filmorate/backend/internal/middleware"
	"github.com/filmorate/backend/internal/ranking"
	"github.com/filmorate/backend/internal/storage"
	"github.com/filmorate/backend/internal/validation"
)

// services holds the domain components built over a backend.
type services struct {
	catalog *catalog.Service
	friends *friends.Engine
	likes   *likes.Ledger
	ranking *ranking.Engine
}

func buildServices(b *backend, cfg config.Config) services {
	engine := friends.NewEngine(b.users, b.friendships)
	ledger := likes.NewLedger(b.films, b.users, b.likes)
	svc := catalog.NewService(catalog.Stores{
		Users:   b.users,
		Films:   b.films,
		Genres:  b.genres,
		Ratings: b.ratings,
	}, validation.New(time.Now), engine, ledger, cfg.ReferenceCacheTTL)

	return services{
		catalog: svc,
		friends: engine,
		likes:   ledger,
		ranking: ranking.NewEngine(b.films, ledger),
	}
}

// buildDependencies wires together concrete implementations used by the HTTP handlers.
func buildDependencies(b *backend, svc services, cfg config.Config) handlers.Dependencies {
	deps := handlers.Dependencies{
		Users:          svc.catalog,
		Friends:        svc.friends,
		Films:          svc.catalog,
		Likes:          svc.likes,
		Ranking:        svc.ranking,
		Reference:      svc.catalog,
		Health:         b.health,
		Metrics:        metrics.Handler(),
		PopularDefault: cfg.PopularDefault,
	}
	if cfg.RateLimit.Requests > 0 {
		deps.RateLimiter = middleware.NewIPRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window, cfg.RateLimit.Burst, cfg.RateLimit.TTL)
	}
	return deps
}

// buildSnapshotStorage picks the bucket when one is configured and falls back
// to a local directory. It returns nil when neither is set.
func buildSnapshotStorage(ctx context.Context, cfg config.Config) (export.Storage, error) {
	switch {
	case cfg.ObjectStore.Enabled():
		s3, err := storage.NewS3Storage(ctx, cfg.ObjectStore)
		if err != nil {
			return nil, fmt.Errorf("configure snapshot bucket: %w", err)
		}
		return s3, nil
	case cfg.Export.Dir != "":
		dir, err := storage.NewDirStorage(cfg.Export.Dir)
		if err != nil {
			return nil, fmt.Errorf("configure snapshot directory: %w", err)
		}
		return dir, nil
	default:
		return nil, nil
	}
}

// buildPublisher returns a running snapshot publisher, or nil when snapshot
// storage is not configured. The returned cleanup drains queued work.
func buildPublisher(ctx context.Context, cfg config.Config, ranker export.Ranker, logger *slog.Logger) (*export.Publisher, func(context.Context) error, error) {
	store, err := buildSnapshotStorage(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if store == nil {
		return nil, func(context.Context) error { return nil }, nil
	}

	publisher := export.NewPublisher(ranker, store, export.Config{
		QueueSize: cfg.Export.QueueSize,
		Workers:   cfg.Export.Workers,
		TopN:      cfg.Export.TopN,
	}, logger)
	return publisher, publisher.Shutdown, nil
}
