package repositories

import (
	"context"

	"github.com/filmorate/backend/internal/models"
)

// FriendshipRepository stores at most one directed edge per unordered pair of users.
type FriendshipRepository interface {
	// WithinPair runs fn with exclusive access to the relation between a and b.
	// Writes made through edges are committed only when fn returns nil.
	WithinPair(ctx context.Context, a, b int64, fn func(ctx context.Context, edges FriendshipEdges) error) error
	// ListSent returns edges whose sender is userID.
	ListSent(ctx context.Context, userID int64) ([]models.Friendship, error)
	// ListReceived returns edges whose receiver is userID.
	ListReceived(ctx context.Context, userID int64) ([]models.Friendship, error)
}

// FriendshipEdges mutates edges for the pair locked by WithinPair.
type FriendshipEdges interface {
	// Find returns the edge sent by senderID to receiverID, or ErrNotFound.
	Find(ctx context.Context, senderID, receiverID int64) (models.Friendship, error)
	// Create stores a new edge; ErrConflict when the pair already has one.
	Create(ctx context.Context, edge models.Friendship) error
	UpdateStatus(ctx context.Context, senderID, receiverID int64, status models.FriendshipStatus) error
	Delete(ctx context.Context, senderID, receiverID int64) error
}
