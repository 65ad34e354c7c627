package handlers

import (
	"context"

	"github.com/filmorate/backend/internal/models"
)

// UserService captures user CRUD.
type UserService interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id int64) (models.User, error)
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	UpdateUser(ctx context.Context, user models.User) (models.User, error)
}

// FriendService applies friendship transitions and answers friend queries.
type FriendService interface {
	RequestFriendship(ctx context.Context, requesterID, targetID int64) (models.User, error)
	DissolveFriendship(ctx context.Context, userID, otherID int64) (models.User, error)
	FriendsOf(ctx context.Context, userID int64) ([]models.User, error)
	CommonFriends(ctx context.Context, userID, otherID int64) ([]models.User, error)
}

// FilmService captures film CRUD.
type FilmService interface {
	ListFilms(ctx context.Context) ([]models.Film, error)
	GetFilm(ctx context.Context, id int64) (models.Film, error)
	CreateFilm(ctx context.Context, film models.Film) (models.Film, error)
	UpdateFilm(ctx context.Context, film models.Film) (models.Film, error)
}

// LikeService records likes.
type LikeService interface {
	AddLike(ctx context.Context, filmID, userID int64) (models.Film, error)
	RemoveLike(ctx context.Context, filmID, userID int64) (models.Film, error)
}

// Ranker returns the most liked films.
type Ranker interface {
	TopFilms(ctx context.Context, n int) ([]models.Film, error)
}

// ReferenceService exposes genres and MPA ratings.
type ReferenceService interface {
	ListGenres(ctx context.Context) ([]models.Genre, error)
	GetGenre(ctx context.Context, id int64) (models.Genre, error)
	CreateGenre(ctx context.Context, genre models.Genre) (models.Genre, error)
	ListRatings(ctx context.Context) ([]models.Rating, error)
	GetRating(ctx context.Context, id int64) (models.Rating, error)
	CreateRating(ctx context.Context, rating models.Rating) (models.Rating, error)
}

// HealthChecker reports whether a backing store is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}
