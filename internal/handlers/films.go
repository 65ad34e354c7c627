package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/filmorate/backend/internal/logging"
	"github.com/filmorate/backend/internal/models"
)

const defaultPopularCount = 10

// FilmHandler serves /films, likes and the popularity ranking.
type FilmHandler struct {
	Films   FilmService
	Likes   LikeService
	Ranking Ranker
	// PopularDefault is used when ?count is absent.
	PopularDefault int
}

// List handles GET /films.
func (h FilmHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	films, err := h.Films.ListFilms(ctx)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, films)
}

// Get handles GET /films/{id}.
func (h FilmHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r, "id")
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	film, err := h.Films.GetFilm(ctx, id)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, film)
}

// Create handles POST /films.
func (h FilmHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var film models.Film
	if err := decodeJSON(r, &film); err != nil {
		respondError(ctx, w, err)
		return
	}
	created, err := h.Films.CreateFilm(ctx, film)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	logging.FromContext(ctx).Info("film created", "filmId", created.ID)
	respondJSON(ctx, w, http.StatusCreated, created)
}

// Update handles PUT /films.
func (h FilmHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var film models.Film
	if err := decodeJSON(r, &film); err != nil {
		respondError(ctx, w, err)
		return
	}
	updated, err := h.Films.UpdateFilm(ctx, film)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, updated)
}

// AddLike handles PUT /films/{id}/like/{userId}.
func (h FilmHandler) AddLike(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ids, err := pathIDs(r, "id", "userId")
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	film, err := h.Likes.AddLike(ctx, ids[0], ids[1])
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, film)
}

// RemoveLike handles DELETE /films/{id}/like/{userId}.
func (h FilmHandler) RemoveLike(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ids, err := pathIDs(r, "id", "userId")
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	film, err := h.Likes.RemoveLike(ctx, ids[0], ids[1])
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, film)
}

// Popular handles GET /films/popular?count=N.
func (h FilmHandler) Popular(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	count := h.PopularDefault
	if count <= 0 {
		count = defaultPopularCount
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("count")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(ctx, w, &models.ValidationError{Field: "count", Reason: "must be an integer"})
			return
		}
		count = n
	}

	films, err := h.Ranking.TopFilms(ctx, count)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, films)
}
