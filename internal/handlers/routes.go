package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/filmorate/backend/internal/middleware"
)

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Users     UserService
	Friends   FriendService
	Films     FilmService
	Likes     LikeService
	Ranking   Ranker
	Reference ReferenceService

	Health      HealthChecker
	RateLimiter middleware.RateLimiter
	Metrics     http.Handler

	PopularDefault int
}

// RegisterRoutes wires HTTP handlers into the provided router.
func RegisterRoutes(r chi.Router, deps Dependencies) {
	health := HealthHandler{Store: deps.Health}
	users := UserHandler{Users: deps.Users, Friends: deps.Friends}
	films := FilmHandler{Films: deps.Films, Likes: deps.Likes, Ranking: deps.Ranking, PopularDefault: deps.PopularDefault}
	reference := ReferenceHandler{Catalog: deps.Reference}

	r.Get("/healthz", health.Handle)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(deps.RateLimiter, "api"))

		r.Route("/users", func(r chi.Router) {
			r.Get("/", users.List)
			r.Post("/", users.Create)
			r.Put("/", users.Update)
			r.Get("/{id}", users.Get)
			r.Get("/{id}/friends", users.ListFriends)
			r.Put("/{id}/friends/{friendId}", users.AddFriend)
			r.Delete("/{id}/friends/{friendId}", users.RemoveFriend)
			r.Get("/{id}/friends/common/{otherId}", users.CommonFriends)
		})

		r.Route("/films", func(r chi.Router) {
			r.Get("/", films.List)
			r.Post("/", films.Create)
			r.Put("/", films.Update)
			r.Get("/popular", films.Popular)
			r.Get("/{id}", films.Get)
			r.Put("/{id}/like/{userId}", films.AddLike)
			r.Delete("/{id}/like/{userId}", films.RemoveLike)
		})

		r.Route("/genres", func(r chi.Router) {
			r.Get("/", reference.ListGenres)
			r.Post("/", reference.CreateGenre)
			r.Get("/{id}", reference.GetGenre)
		})

		r.Route("/mpa", func(r chi.Router) {
			r.Get("/", reference.ListRatings)
			r.Post("/", reference.CreateRating)
			r.Get("/{id}", reference.GetRating)
		})
	})
}
