// Package ranking orders films by popularity.
package ranking

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/filmorate/backend/internal/logging"
	"github.com/filmorate/backend/internal/metrics"
	"github.com/filmorate/backend/internal/models"
)

// FilmLister returns every film in the catalog.
type FilmLister interface {
	List(ctx context.Context) ([]models.Film, error)
}

// LikeIndex returns the users who like a film.
type LikeIndex interface {
	LikerIDs(ctx context.Context, filmID int64) ([]int64, error)
}

// Engine computes the popular films list. It keeps no state between calls.
type Engine struct {
	films FilmLister
	likes LikeIndex
}

func NewEngine(films FilmLister, likes LikeIndex) *Engine {
	return &Engine{films: films, likes: likes}
}

// TopFilms returns at most n films ordered by like count, most liked first.
// Films with equal counts keep ascending id order. n must be positive.
func (e *Engine) TopFilms(ctx context.Context, n int) ([]models.Film, error) {
	if n <= 0 {
		return nil, fmt.Errorf("count must be positive, got %d: %w", n, models.ErrInvalidArgument)
	}

	ctx, span := logging.StartSpan(ctx, "ranking.top", slog.Int("count", n))
	start := time.Now()
	defer func() { metrics.RankingDuration.Observe(time.Since(start).Seconds()) }()

	films, err := e.films.List(ctx)
	if err != nil {
		err = fmt.Errorf("list films: %w", err)
		span.End(err)
		return nil, err
	}

	for i := range films {
		ids, err := e.likes.LikerIDs(ctx, films[i].ID)
		if err != nil {
			span.End(err)
			return nil, err
		}
		films[i].Likes = ids
	}

	sort.Slice(films, func(i, j int) bool {
		if len(films[i].Likes) != len(films[j].Likes) {
			return len(films[i].Likes) > len(films[j].Likes)
		}
		return films[i].ID < films[j].ID
	})

	if n < len(films) {
		films = films[:n]
	}
	span.End(nil)
	return films, nil
}
