package repositories

import (
	"context"

	"github.com/filmorate/backend/internal/models"
)

// GenreRepository defines data access for genre reference data.
type GenreRepository interface {
	Create(ctx context.Context, genre models.Genre) (models.Genre, error)
	Get(ctx context.Context, id int64) (models.Genre, error)
	List(ctx context.Context) ([]models.Genre, error)
}

// RatingRepository defines data access for MPA ratings.
type RatingRepository interface {
	Create(ctx context.Context, rating models.Rating) (models.Rating, error)
	Get(ctx context.Context, id int64) (models.Rating, error)
	List(ctx context.Context) ([]models.Rating, error)
}
