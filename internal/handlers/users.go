package handlers

import (
	"net/http"

	"github.com/filmorate/backend/internal/logging"
	"github.com/filmorate/backend/internal/models"
)

// UserHandler serves /users and the friendship routes beneath it.
type UserHandler struct {
	Users   UserService
	Friends FriendService
}

// List handles GET /users.
func (h UserHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	users, err := h.Users.ListUsers(ctx)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, users)
}

// Get handles GET /users/{id}.
func (h UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r, "id")
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	user, err := h.Users.GetUser(ctx, id)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, user)
}

// Create handles POST /users.
func (h UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var user models.User
	if err := decodeJSON(r, &user); err != nil {
		respondError(ctx, w, err)
		return
	}
	created, err := h.Users.CreateUser(ctx, user)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	logging.FromContext(ctx).Info("user created", "userId", created.ID)
	respondJSON(ctx, w, http.StatusCreated, created)
}

// Update handles PUT /users.
func (h UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var user models.User
	if err := decodeJSON(r, &user); err != nil {
		respondError(ctx, w, err)
		return
	}
	updated, err := h.Users.UpdateUser(ctx, user)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, updated)
}

// AddFriend handles PUT /users/{id}/friends/{friendId}.
func (h UserHandler) AddFriend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ids, err := pathIDs(r, "id", "friendId")
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	user, err := h.Friends.RequestFriendship(ctx, ids[0], ids[1])
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, user)
}

// RemoveFriend handles DELETE /users/{id}/friends/{friendId}.
func (h UserHandler) RemoveFriend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ids, err := pathIDs(r, "id", "friendId")
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	user, err := h.Friends.DissolveFriendship(ctx, ids[0], ids[1])
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, user)
}

// ListFriends handles GET /users/{id}/friends.
func (h UserHandler) ListFriends(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r, "id")
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	friends, err := h.Friends.FriendsOf(ctx, id)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, friends)
}

// CommonFriends handles GET /users/{id}/friends/common/{otherId}.
func (h UserHandler) CommonFriends(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ids, err := pathIDs(r, "id", "otherId")
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	common, err := h.Friends.CommonFriends(ctx, ids[0], ids[1])
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, common)
}
