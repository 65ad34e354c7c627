package repositories

import "context"

// LikeRepository stores unique (film, user) like facts.
type LikeRepository interface {
	// Add records a like. It returns ErrConflict when the like already exists.
	Add(ctx context.Context, filmID, userID int64) error
	// Remove deletes a like. It returns ErrNotFound when there was none.
	Remove(ctx context.Context, filmID, userID int64) error
	// ListUserIDs returns the users who liked the film, ordered by identifier.
	ListUserIDs(ctx context.Context, filmID int64) ([]int64, error)
}
