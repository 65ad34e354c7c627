package repositories

import "github.com/filmorate/backend/internal/models"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = models.ErrNotFound
	// ErrConflict indicates the attempted write would violate a uniqueness constraint.
	ErrConflict = models.ErrDuplicate
)
