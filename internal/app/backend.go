package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/filmorate/backend/internal/config"
	"github.com/filmorate/backend/internal/db"
	"github.com/filmorate/backend/internal/handlers"
	"github.com/filmorate/backend/internal/repositories"
)

// backend bundles the repositories of one storage engine.
type backend struct {
	users       repositories.UserRepository
	films       repositories.FilmRepository
	genres      repositories.GenreRepository
	ratings     repositories.RatingRepository
	likes       repositories.LikeRepository
	friendships repositories.FriendshipRepository

	health handlers.HealthChecker
	close  func()
}

type sqlPinger struct{ db *sql.DB }

func (p sqlPinger) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }

// openBackend connects the store named by cfg.Store. The memory store is
// seeded with the default genres and ratings since it has no migrations.
func openBackend(ctx context.Context, cfg config.Config, logger *slog.Logger) (*backend, error) {
	switch cfg.Store {
	case config.StoreMemory:
		store := repositories.NewMemoryStore()
		if err := store.SeedReferenceData(ctx); err != nil {
			return nil, fmt.Errorf("seed reference data: %w", err)
		}
		logger.Info("using in-memory store")
		return &backend{
			users:       store.Users(),
			films:       store.Films(),
			genres:      store.Genres(),
			ratings:     store.Ratings(),
			likes:       store.Likes(),
			friendships: store.Friendships(),
			close:       func() {},
		}, nil

	case config.StoreSQLite:
		conn, err := db.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.Info("using sqlite store", "path", cfg.SQLitePath)
		return &backend{
			users:       repositories.NewSQLiteUserRepository(conn),
			films:       repositories.NewSQLiteFilmRepository(conn),
			genres:      repositories.NewSQLiteGenreRepository(conn),
			ratings:     repositories.NewSQLiteRatingRepository(conn),
			likes:       repositories.NewSQLiteLikeRepository(conn),
			friendships: repositories.NewSQLiteFriendshipRepository(conn),
			health:      sqlPinger{db: conn},
			close:       func() { _ = conn.Close() },
		}, nil

	case config.StorePostgres:
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		logger.Info("using postgres store")
		return &backend{
			users:       repositories.NewPostgresUserRepository(pool),
			films:       repositories.NewPostgresFilmRepository(pool),
			genres:      repositories.NewPostgresGenreRepository(pool),
			ratings:     repositories.NewPostgresRatingRepository(pool),
			likes:       repositories.NewPostgresLikeRepository(pool),
			friendships: repositories.NewPostgresFriendshipRepository(pool),
			health:      pool,
			close:       pool.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}
