package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filmorate/backend/internal/friends"
	"github.com/filmorate/backend/internal/likes"
	"github.com/filmorate/backend/internal/models"
	"github.com/filmorate/backend/internal/repositories"
	"github.com/filmorate/backend/internal/validation"
)

func newTestService(t *testing.T) (*Service, *friends.Engine, *likes.Ledger) {
	t.Helper()
	store := repositories.NewMemoryStore()
	require.NoError(t, store.SeedReferenceData(context.Background()))

	engine := friends.NewEngine(store.Users(), store.Friendships())
	ledger := likes.NewLedger(store.Films(), store.Users(), store.Likes())
	gate := validation.New(func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) })

	svc := NewService(Stores{
		Users:   store.Users(),
		Films:   store.Films(),
		Genres:  store.Genres(),
		Ratings: store.Ratings(),
	}, gate, engine, ledger, time.Minute)
	return svc, engine, ledger
}

func TestCreateUser_DefaultsNameAndAssignsID(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, models.User{ID: 77, Email: "neo@matrix.io", Login: "neo"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, "neo", user.Name)
	assert.Empty(t, user.Friends)

	_, err = svc.CreateUser(ctx, models.User{Email: "bad", Login: "neo"})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestUpdateUser(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, models.User{Email: "a@b.c", Login: "alpha"})
	require.NoError(t, err)

	user.Name = "Alpha"
	updated, err := svc.UpdateUser(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, "Alpha", updated.Name)

	_, err = svc.UpdateUser(ctx, models.User{ID: 500, Email: "a@b.c", Login: "ghost"})
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = svc.UpdateUser(ctx, models.User{Email: "a@b.c", Login: "ghost"})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestGetUser_IncludesFriends(t *testing.T) {
	svc, engine, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.CreateUser(ctx, models.User{Email: "a@b.c", Login: "a"})
	require.NoError(t, err)
	b, err := svc.CreateUser(ctx, models.User{Email: "b@b.c", Login: "b"})
	require.NoError(t, err)

	_, err = engine.RequestFriendship(ctx, a.ID, b.ID)
	require.NoError(t, err)

	got, err := svc.GetUser(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{a.ID}, got.Friends)

	all, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Empty(t, all[0].Friends)
	assert.Equal(t, []int64{a.ID}, all[1].Friends)
}

func validFilm() models.Film {
	return models.Film{
		Name:        "Solaris",
		Description: "ocean",
		ReleaseDate: models.NewDate(1972, time.March, 20),
		Duration:    167,
	}
}

func TestCreateFilm_ResolvesReferences(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	film := validFilm()
	film.MPA = &models.Rating{ID: 3}
	film.Genres = []models.Genre{{ID: 2}, {ID: 1}, {ID: 2}}

	created, err := svc.CreateFilm(ctx, film)
	require.NoError(t, err)
	require.NotNil(t, created.MPA)
	assert.Equal(t, "PG-13", created.MPA.Name)
	require.Len(t, created.Genres, 2)
	assert.Equal(t, models.Genre{ID: 1, Name: "Комедия"}, created.Genres[0])
	assert.Equal(t, models.Genre{ID: 2, Name: "Драма"}, created.Genres[1])
	assert.Empty(t, created.Likes)
}

func TestCreateFilm_Rejections(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	film := validFilm()
	film.MPA = &models.Rating{ID: 99}
	_, err := svc.CreateFilm(ctx, film)
	assert.ErrorIs(t, err, models.ErrNotFound)

	film = validFilm()
	film.Genres = []models.Genre{{ID: 42}}
	_, err = svc.CreateFilm(ctx, film)
	assert.ErrorIs(t, err, models.ErrNotFound)

	film = validFilm()
	film.ReleaseDate = models.NewDate(1800, time.January, 1)
	_, err = svc.CreateFilm(ctx, film)
	assert.ErrorIs(t, err, models.ErrValidation)

	films, err := svc.ListFilms(ctx)
	require.NoError(t, err)
	assert.Empty(t, films)
}

func TestUpdateFilm_IncludesLikes(t *testing.T) {
	svc, _, ledger := newTestService(t)
	ctx := context.Background()

	film, err := svc.CreateFilm(ctx, validFilm())
	require.NoError(t, err)
	user, err := svc.CreateUser(ctx, models.User{Email: "fan@b.c", Login: "fan"})
	require.NoError(t, err)
	_, err = ledger.AddLike(ctx, film.ID, user.ID)
	require.NoError(t, err)

	film.Duration = 170
	updated, err := svc.UpdateFilm(ctx, film)
	require.NoError(t, err)
	assert.Equal(t, 170, updated.Duration)
	assert.Equal(t, []int64{user.ID}, updated.Likes)

	_, err = svc.UpdateFilm(ctx, models.Film{ID: 1000, Name: "x", ReleaseDate: models.NewDate(2000, 1, 1), Duration: 1})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestReferenceData(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	genres, err := svc.ListGenres(ctx)
	require.NoError(t, err)
	assert.Len(t, genres, len(models.DefaultGenres))

	rating, err := svc.GetRating(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "G", rating.Name)

	_, err = svc.GetGenre(ctx, 100)
	assert.ErrorIs(t, err, models.ErrNotFound)

	created, err := svc.CreateGenre(ctx, models.Genre{Name: "Нуар"})
	require.NoError(t, err)
	got, err := svc.GetGenre(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Нуар", got.Name)

	_, err = svc.CreateGenre(ctx, models.Genre{Name: "Нуар"})
	assert.ErrorIs(t, err, models.ErrDuplicate)
	_, err = svc.CreateRating(ctx, models.Rating{Name: " "})
	assert.ErrorIs(t, err, models.ErrValidation)
}
