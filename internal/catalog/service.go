// Package catalog manages users, films and the genre and rating reference data
// films point at.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/filmorate/backend/internal/logging"
	"github.com/filmorate/backend/internal/models"
	"github.com/filmorate/backend/internal/reference"
	"github.com/filmorate/backend/internal/repositories"
	"github.com/filmorate/backend/internal/validation"
)

// UserDecorator fills derived fields on a user read from storage.
type UserDecorator interface {
	Decorate(ctx context.Context, user models.User) (models.User, error)
}

// FilmDecorator fills derived fields on a film read from storage.
type FilmDecorator interface {
	Decorate(ctx context.Context, film models.Film) (models.Film, error)
}

// Stores groups the repositories the catalog reads and writes.
type Stores struct {
	Users   repositories.UserRepository
	Films   repositories.FilmRepository
	Genres  repositories.GenreRepository
	Ratings repositories.RatingRepository
}

// Service is the entry point for entity CRUD.
type Service struct {
	stores  Stores
	gate    *validation.Gate
	friends UserDecorator
	likes   FilmDecorator

	genres  *reference.Cache[models.Genre]
	ratings *reference.Cache[models.Rating]
}

// NewService wires a Service. Reference lookups are cached for cacheTTL.
func NewService(stores Stores, gate *validation.Gate, friends UserDecorator, likes FilmDecorator, cacheTTL time.Duration) *Service {
	if gate == nil {
		gate = validation.New(nil)
	}
	return &Service{
		stores:  stores,
		gate:    gate,
		friends: friends,
		likes:   likes,
		genres:  reference.NewCache[models.Genre](stores.Genres.Get, cacheTTL),
		ratings: reference.NewCache[models.Rating](stores.Ratings.Get, cacheTTL),
	}
}

func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.stores.Users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	for i := range users {
		if users[i], err = s.decorateUser(ctx, users[i]); err != nil {
			return nil, err
		}
	}
	return users, nil
}

func (s *Service) GetUser(ctx context.Context, id int64) (models.User, error) {
	user, err := s.stores.Users.Get(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	return s.decorateUser(ctx, user)
}

// CreateUser validates and stores a new user. Any client supplied id is ignored.
func (s *Service) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	user.ID = 0
	if err := s.gate.User(&user); err != nil {
		return models.User{}, err
	}
	created, err := s.stores.Users.Create(ctx, user)
	if err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	logging.FromContext(ctx).Info("user created", slog.Int64("user_id", created.ID))
	return s.decorateUser(ctx, created)
}

// UpdateUser overwrites every field of an existing user.
func (s *Service) UpdateUser(ctx context.Context, user models.User) (models.User, error) {
	if user.ID <= 0 {
		return models.User{}, &models.ValidationError{Field: "id", Reason: "must be positive"}
	}
	if err := s.gate.User(&user); err != nil {
		return models.User{}, err
	}
	updated, err := s.stores.Users.Update(ctx, user)
	if err != nil {
		return models.User{}, fmt.Errorf("update user: %w", err)
	}
	return s.decorateUser(ctx, updated)
}

func (s *Service) ListFilms(ctx context.Context) ([]models.Film, error) {
	films, err := s.stores.Films.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list films: %w", err)
	}
	for i := range films {
		if films[i], err = s.decorateFilm(ctx, films[i]); err != nil {
			return nil, err
		}
	}
	return films, nil
}

func (s *Service) GetFilm(ctx context.Context, id int64) (models.Film, error) {
	film, err := s.stores.Films.Get(ctx, id)
	if err != nil {
		return models.Film{}, err
	}
	return s.decorateFilm(ctx, film)
}

// CreateFilm validates the film, checks its rating and genres exist and stores it.
func (s *Service) CreateFilm(ctx context.Context, film models.Film) (models.Film, error) {
	film.ID = 0
	if err := s.prepareFilm(ctx, &film); err != nil {
		return models.Film{}, err
	}
	created, err := s.stores.Films.Create(ctx, film)
	if err != nil {
		return models.Film{}, fmt.Errorf("create film: %w", err)
	}
	logging.FromContext(ctx).Info("film created", slog.Int64("film_id", created.ID))
	return s.decorateFilm(ctx, created)
}

// UpdateFilm overwrites an existing film including its genre set.
func (s *Service) UpdateFilm(ctx context.Context, film models.Film) (models.Film, error) {
	if film.ID <= 0 {
		return models.Film{}, &models.ValidationError{Field: "id", Reason: "must be positive"}
	}
	if err := s.prepareFilm(ctx, &film); err != nil {
		return models.Film{}, err
	}
	updated, err := s.stores.Films.Update(ctx, film)
	if err != nil {
		return models.Film{}, fmt.Errorf("update film: %w", err)
	}
	return s.decorateFilm(ctx, updated)
}

func (s *Service) ListGenres(ctx context.Context) ([]models.Genre, error) {
	return s.stores.Genres.List(ctx)
}

func (s *Service) GetGenre(ctx context.Context, id int64) (models.Genre, error) {
	return s.genres.Get(ctx, id)
}

func (s *Service) CreateGenre(ctx context.Context, genre models.Genre) (models.Genre, error) {
	if err := s.gate.ReferenceName("name", genre.Name); err != nil {
		return models.Genre{}, err
	}
	genre.ID = 0
	created, err := s.stores.Genres.Create(ctx, genre)
	if err != nil {
		return models.Genre{}, fmt.Errorf("create genre: %w", err)
	}
	return created, nil
}

func (s *Service) ListRatings(ctx context.Context) ([]models.Rating, error) {
	return s.stores.Ratings.List(ctx)
}

func (s *Service) GetRating(ctx context.Context, id int64) (models.Rating, error) {
	return s.ratings.Get(ctx, id)
}

func (s *Service) CreateRating(ctx context.Context, rating models.Rating) (models.Rating, error) {
	if err := s.gate.ReferenceName("name", rating.Name); err != nil {
		return models.Rating{}, err
	}
	rating.ID = 0
	created, err := s.stores.Ratings.Create(ctx, rating)
	if err != nil {
		return models.Rating{}, fmt.Errorf("create rating: %w", err)
	}
	return created, nil
}

// prepareFilm validates fields, resolves references and collapses duplicate genres.
func (s *Service) prepareFilm(ctx context.Context, film *models.Film) error {
	if err := s.gate.Film(*film); err != nil {
		return err
	}

	if film.MPA != nil {
		rating, err := s.ratings.Get(ctx, film.MPA.ID)
		if err != nil {
			return fmt.Errorf("film rating: %w", err)
		}
		film.MPA = &rating
	}

	seen := make(map[int64]struct{}, len(film.Genres))
	genres := make([]models.Genre, 0, len(film.Genres))
	for _, g := range film.Genres {
		if _, dup := seen[g.ID]; dup {
			continue
		}
		seen[g.ID] = struct{}{}
		genre, err := s.genres.Get(ctx, g.ID)
		if err != nil {
			return fmt.Errorf("film genre: %w", err)
		}
		genres = append(genres, genre)
	}
	sort.Slice(genres, func(i, j int) bool { return genres[i].ID < genres[j].ID })
	film.Genres = genres
	film.Likes = nil
	return nil
}

func (s *Service) decorateUser(ctx context.Context, user models.User) (models.User, error) {
	if s.friends == nil {
		return user, nil
	}
	return s.friends.Decorate(ctx, user)
}

func (s *Service) decorateFilm(ctx context.Context, film models.Film) (models.Film, error) {
	if s.likes == nil {
		return film, nil
	}
	return s.likes.Decorate(ctx, film)
}
