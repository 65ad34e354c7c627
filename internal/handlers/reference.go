package handlers

import (
	"net/http"

	"github.com/filmorate/backend/internal/models"
)

// ReferenceHandler serves the genre and MPA rating dictionaries.
type ReferenceHandler struct {
	Catalog ReferenceService
}

// ListGenres handles GET /genres.
func (h ReferenceHandler) ListGenres(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	genres, err := h.Catalog.ListGenres(ctx)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, genres)
}

// GetGenre handles GET /genres/{id}.
func (h ReferenceHandler) GetGenre(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r, "id")
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	genre, err := h.Catalog.GetGenre(ctx, id)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, genre)
}

// CreateGenre handles POST /genres.
func (h ReferenceHandler) CreateGenre(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var genre models.Genre
	if err := decodeJSON(r, &genre); err != nil {
		respondError(ctx, w, err)
		return
	}
	created, err := h.Catalog.CreateGenre(ctx, genre)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusCreated, created)
}

// ListRatings handles GET /mpa.
func (h ReferenceHandler) ListRatings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ratings, err := h.Catalog.ListRatings(ctx)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, ratings)
}

// GetRating handles GET /mpa/{id}.
func (h ReferenceHandler) GetRating(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r, "id")
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	rating, err := h.Catalog.GetRating(ctx, id)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, rating)
}

// CreateRating handles POST /mpa.
func (h ReferenceHandler) CreateRating(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var rating models.Rating
	if err := decodeJSON(r, &rating); err != nil {
		respondError(ctx, w, err)
		return
	}
	created, err := h.Catalog.CreateRating(ctx, rating)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusCreated, created)
}
