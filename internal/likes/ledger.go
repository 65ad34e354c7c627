// Package likes records which users like which films.
package likes

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/filmorate/backend/internal/logging"
	"github.com/filmorate/backend/internal/metrics"
	"github.com/filmorate/backend/internal/models"
	"github.com/filmorate/backend/internal/repositories"
)

// FilmLookup resolves films by identifier.
type FilmLookup interface {
	Get(ctx context.Context, id int64) (models.Film, error)
}

// UserLookup resolves users by identifier.
type UserLookup interface {
	Get(ctx context.Context, id int64) (models.User, error)
}

// Ledger owns the set of (film, user) like facts.
type Ledger struct {
	films FilmLookup
	users UserLookup
	likes repositories.LikeRepository
}

// NewLedger wires a Ledger over the given stores.
func NewLedger(films FilmLookup, users UserLookup, likes repositories.LikeRepository) *Ledger {
	return &Ledger{films: films, users: users, likes: likes}
}

// AddLike records that userID likes filmID. A second like by the same user
// fails with models.ErrDuplicate.
func (l *Ledger) AddLike(ctx context.Context, filmID, userID int64) (models.Film, error) {
	ctx, span := logging.StartSpan(ctx, "likes.add", slog.Int64("film_id", filmID), slog.Int64("user_id", userID))

	film, err := l.resolve(ctx, filmID, userID)
	if err == nil {
		err = l.likes.Add(ctx, filmID, userID)
	}
	metrics.LikeOperations.WithLabelValues("add", metrics.Result(err)).Inc()
	if err != nil {
		span.End(err)
		return models.Film{}, err
	}

	film, err = l.Decorate(ctx, film)
	span.End(err)
	return film, err
}

// RemoveLike withdraws userID's like of filmID. It fails with
// models.ErrNotFound when the like does not exist.
func (l *Ledger) RemoveLike(ctx context.Context, filmID, userID int64) (models.Film, error) {
	ctx, span := logging.StartSpan(ctx, "likes.remove", slog.Int64("film_id", filmID), slog.Int64("user_id", userID))

	film, err := l.resolve(ctx, filmID, userID)
	if err == nil {
		err = l.likes.Remove(ctx, filmID, userID)
	}
	metrics.LikeOperations.WithLabelValues("remove", metrics.Result(err)).Inc()
	if err != nil {
		span.End(err)
		return models.Film{}, err
	}

	film, err = l.Decorate(ctx, film)
	span.End(err)
	return film, err
}

// CountLikes returns how many users like filmID; zero for a film never liked.
func (l *Ledger) CountLikes(ctx context.Context, filmID int64) (int, error) {
	if _, err := l.films.Get(ctx, filmID); err != nil {
		return 0, err
	}
	ids, err := l.LikerIDs(ctx, filmID)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// LikerIDs returns the users who like filmID, ascending.
func (l *Ledger) LikerIDs(ctx context.Context, filmID int64) ([]int64, error) {
	ids, err := l.likes.ListUserIDs(ctx, filmID)
	if err != nil {
		return nil, fmt.Errorf("list likes of film %d: %w", filmID, err)
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}

// Decorate fills film.Likes from the ledger.
func (l *Ledger) Decorate(ctx context.Context, film models.Film) (models.Film, error) {
	ids, err := l.LikerIDs(ctx, film.ID)
	if err != nil {
		return models.Film{}, err
	}
	film.Likes = ids
	return film, nil
}

func (l *Ledger) resolve(ctx context.Context, filmID, userID int64) (models.Film, error) {
	film, err := l.films.Get(ctx, filmID)
	if err != nil {
		return models.Film{}, err
	}
	if _, err := l.users.Get(ctx, userID); err != nil {
		return models.Film{}, err
	}
	return film, nil
}
