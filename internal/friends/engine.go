// Package friends implements the friendship lifecycle between users.
//
// A pair of users holds at most one directed edge. The sender of a pending
// edge is visible in the receiver's friend list straight away; the receiver
// shows up in the sender's list only once the edge is confirmed by a
// reciprocal request.
package friends

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/filmorate/backend/internal/logging"
	"github.com/filmorate/backend/internal/metrics"
	"github.com/filmorate/backend/internal/models"
	"github.com/filmorate/backend/internal/repositories"
)

// Transition names recorded for each friendship mutation.
const (
	TransitionRequested = "requested"
	TransitionConfirmed = "confirmed"
	TransitionDemoted   = "demoted"
	TransitionRemoved   = "removed"
	TransitionNoop      = "noop"
)

// UserLookup resolves users by identifier.
type UserLookup interface {
	Get(ctx context.Context, id int64) (models.User, error)
}

// Engine applies friendship transitions and answers friend queries.
type Engine struct {
	users       UserLookup
	friendships repositories.FriendshipRepository
}

// NewEngine wires an Engine over the given stores.
func NewEngine(users UserLookup, friendships repositories.FriendshipRepository) *Engine {
	return &Engine{users: users, friendships: friendships}
}

// RequestFriendship records that requesterID wants to befriend targetID and
// returns the requester with a refreshed friend list.
//
// A pending edge from target to requester is confirmed. With no edge between
// the two a pending requester->target edge is created. Anything else is a no-op.
func (e *Engine) RequestFriendship(ctx context.Context, requesterID, targetID int64) (models.User, error) {
	ctx, span := logging.StartSpan(ctx, "friends.request",
		slog.Int64("requester_id", requesterID), slog.Int64("target_id", targetID))

	requester, err := e.resolvePair(ctx, requesterID, targetID)
	if err != nil {
		span.End(err)
		return models.User{}, err
	}

	transition := TransitionNoop
	err = e.friendships.WithinPair(ctx, requesterID, targetID, func(ctx context.Context, edges repositories.FriendshipEdges) error {
		reverse, err := edges.Find(ctx, targetID, requesterID)
		switch {
		case err == nil:
			if reverse.Status == models.FriendshipConfirmed {
				return nil
			}
			transition = TransitionConfirmed
			return edges.UpdateStatus(ctx, targetID, requesterID, models.FriendshipConfirmed)
		case !errors.Is(err, repositories.ErrNotFound):
			return err
		}

		if _, err := edges.Find(ctx, requesterID, targetID); err == nil {
			return nil
		} else if !errors.Is(err, repositories.ErrNotFound) {
			return err
		}

		transition = TransitionRequested
		return edges.Create(ctx, models.Friendship{
			SenderID:   requesterID,
			ReceiverID: targetID,
			Status:     models.FriendshipPending,
		})
	})
	if err != nil {
		err = fmt.Errorf("request friendship %d->%d: %w", requesterID, targetID, err)
		span.End(err)
		return models.User{}, err
	}
	metrics.FriendshipTransitions.WithLabelValues(transition).Inc()
	span.Logger().Info("friendship requested", slog.String("transition", transition))

	requester, err = e.Decorate(ctx, requester)
	span.End(err)
	return requester, err
}

// DissolveFriendship walks the pair's edge one step back: a confirmed edge
// returns to pending in its original direction, a pending edge is deleted.
// Either party may dissolve. ErrNotFound is returned when the pair has no edge.
func (e *Engine) DissolveFriendship(ctx context.Context, userID, otherID int64) (models.User, error) {
	ctx, span := logging.StartSpan(ctx, "friends.dissolve",
		slog.Int64("user_id", userID), slog.Int64("other_id", otherID))

	user, err := e.resolvePair(ctx, userID, otherID)
	if err != nil {
		span.End(err)
		return models.User{}, err
	}

	var transition string
	err = e.friendships.WithinPair(ctx, userID, otherID, func(ctx context.Context, edges repositories.FriendshipEdges) error {
		edge, err := findEither(ctx, edges, userID, otherID)
		if err != nil {
			return err
		}
		if edge.Status == models.FriendshipConfirmed {
			transition = TransitionDemoted
			return edges.UpdateStatus(ctx, edge.SenderID, edge.ReceiverID, models.FriendshipPending)
		}
		transition = TransitionRemoved
		return edges.Delete(ctx, edge.SenderID, edge.ReceiverID)
	})
	if err != nil {
		err = fmt.Errorf("dissolve friendship %d-%d: %w", userID, otherID, err)
		span.End(err)
		return models.User{}, err
	}
	metrics.FriendshipTransitions.WithLabelValues(transition).Inc()
	span.Logger().Info("friendship dissolved", slog.String("transition", transition))

	user, err = e.Decorate(ctx, user)
	span.End(err)
	return user, err
}

// FriendIDs returns the identifiers in userID's friend list, ascending.
func (e *Engine) FriendIDs(ctx context.Context, userID int64) ([]int64, error) {
	received, err := e.friendships.ListReceived(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list received friendships: %w", err)
	}
	sent, err := e.friendships.ListSent(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list sent friendships: %w", err)
	}

	set := make(map[int64]struct{}, len(received)+len(sent))
	for _, edge := range received {
		set[edge.SenderID] = struct{}{}
	}
	for _, edge := range sent {
		if edge.Status == models.FriendshipConfirmed {
			set[edge.ReceiverID] = struct{}{}
		}
	}

	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// FriendsOf returns the users in userID's friend list ordered by identifier.
func (e *Engine) FriendsOf(ctx context.Context, userID int64) ([]models.User, error) {
	if _, err := e.users.Get(ctx, userID); err != nil {
		return nil, err
	}
	ids, err := e.FriendIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return e.loadUsers(ctx, ids)
}

// CommonFriends returns users present in both friend lists. The result does
// not depend on argument order.
func (e *Engine) CommonFriends(ctx context.Context, userID, otherID int64) ([]models.User, error) {
	if _, err := e.resolvePair(ctx, userID, otherID); err != nil {
		return nil, err
	}

	mine, err := e.FriendIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	theirs, err := e.FriendIDs(ctx, otherID)
	if err != nil {
		return nil, err
	}

	// Both slices are sorted, so a merge walk yields an ordered intersection.
	common := make([]int64, 0)
	for i, j := 0, 0; i < len(mine) && j < len(theirs); {
		switch {
		case mine[i] == theirs[j]:
			common = append(common, mine[i])
			i++
			j++
		case mine[i] < theirs[j]:
			i++
		default:
			j++
		}
	}
	return e.loadUsers(ctx, common)
}

// Decorate fills user.Friends from the current edges.
func (e *Engine) Decorate(ctx context.Context, user models.User) (models.User, error) {
	ids, err := e.FriendIDs(ctx, user.ID)
	if err != nil {
		return models.User{}, err
	}
	user.Friends = ids
	return user, nil
}

// resolvePair returns the first user after checking both exist and differ.
func (e *Engine) resolvePair(ctx context.Context, userID, otherID int64) (models.User, error) {
	if userID == otherID {
		return models.User{}, fmt.Errorf("user %d cannot relate to itself: %w", userID, models.ErrInvalidArgument)
	}
	user, err := e.users.Get(ctx, userID)
	if err != nil {
		return models.User{}, err
	}
	if _, err := e.users.Get(ctx, otherID); err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (e *Engine) loadUsers(ctx context.Context, ids []int64) ([]models.User, error) {
	users := make([]models.User, 0, len(ids))
	for _, id := range ids {
		user, err := e.users.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load friend %d: %w", id, err)
		}
		if user, err = e.Decorate(ctx, user); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func findEither(ctx context.Context, edges repositories.FriendshipEdges, a, b int64) (models.Friendship, error) {
	edge, err := edges.Find(ctx, a, b)
	if err == nil || !errors.Is(err, repositories.ErrNotFound) {
		return edge, err
	}
	edge, err = edges.Find(ctx, b, a)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.Friendship{}, fmt.Errorf("no friendship between %d and %d: %w", a, b, repositories.ErrNotFound)
	}
	return edge, err
}
