package repositories

import (
	"context"

	"github.com/filmorate/backend/internal/models"
)

// FilmRepository defines the data access contract for films. Returned films
// carry resolved genre and rating names; Likes is left empty.
type FilmRepository interface {
	Create(ctx context.Context, film models.Film) (models.Film, error)
	Get(ctx context.Context, id int64) (models.Film, error)
	Update(ctx context.Context, film models.Film) (models.Film, error)
	List(ctx context.Context) ([]models.Film, error)
}
