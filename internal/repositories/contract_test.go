package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/filmorate/backend/internal/models"
)

// backend bundles one implementation of every repository so the same
// behavioural checks run against memory, SQLite and PostgreSQL.
type backend struct {
	users       UserRepository
	films       FilmRepository
	genres      GenreRepository
	ratings     RatingRepository
	likes       LikeRepository
	friendships FriendshipRepository
}

func runContract(t *testing.T, newBackend func(t *testing.T) backend) {
	t.Run("users", func(t *testing.T) { testUserContract(t, newBackend(t)) })
	t.Run("films", func(t *testing.T) { testFilmContract(t, newBackend(t)) })
	t.Run("likes", func(t *testing.T) { testLikeContract(t, newBackend(t)) })
	t.Run("friendships", func(t *testing.T) { testFriendshipContract(t, newBackend(t)) })
}

func createTestUser(t *testing.T, repo UserRepository, login string) models.User {
	t.Helper()
	user, err := repo.Create(context.Background(), models.User{
		Email:    login + "@example.com",
		Login:    login,
		Name:     login,
		Birthday: models.NewDate(1990, time.March, 4),
	})
	if err != nil {
		t.Fatalf("create test user: %v", err)
	}
	return user
}

func createTestFilm(t *testing.T, repo FilmRepository, name string) models.Film {
	t.Helper()
	film, err := repo.Create(context.Background(), models.Film{
		Name:        name,
		Description: "test film",
		ReleaseDate: models.NewDate(2001, time.May, 1),
		Duration:    100,
	})
	if err != nil {
		t.Fatalf("create test film: %v", err)
	}
	return film
}

func testUserContract(t *testing.T, b backend) {
	ctx := context.Background()

	first := createTestUser(t, b.users, "first")
	second := createTestUser(t, b.users, "second")
	if first.ID == 0 || second.ID <= first.ID {
		t.Fatalf("expected increasing ids, got %d then %d", first.ID, second.ID)
	}

	got, err := b.users.Get(ctx, first.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.Login != "first" || got.Email != "first@example.com" {
		t.Fatalf("unexpected user: %+v", got)
	}
	if !got.Birthday.Equal(models.NewDate(1990, time.March, 4).Time) {
		t.Fatalf("unexpected birthday %s", got.Birthday)
	}

	got.Name = "Renamed"
	got.Birthday = models.Date{}
	if _, err := b.users.Update(ctx, got); err != nil {
		t.Fatalf("update user: %v", err)
	}
	reloaded, err := b.users.Get(ctx, first.ID)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if reloaded.Name != "Renamed" || !reloaded.Birthday.IsZero() {
		t.Fatalf("update not persisted: %+v", reloaded)
	}

	if _, err := b.users.Get(ctx, 999999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := b.users.Update(ctx, models.User{ID: 999999, Email: "x@y", Login: "x", Name: "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update, got %v", err)
	}

	all, err := b.users.List(ctx)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(all) != 2 || all[0].ID != first.ID || all[1].ID != second.ID {
		t.Fatalf("unexpected user list: %+v", all)
	}
}

func testFilmContract(t *testing.T, b backend) {
	ctx := context.Background()

	genres, err := b.genres.List(ctx)
	if err != nil {
		t.Fatalf("list genres: %v", err)
	}
	ratings, err := b.ratings.List(ctx)
	if err != nil {
		t.Fatalf("list ratings: %v", err)
	}
	if len(genres) < 2 || len(ratings) < 1 {
		t.Fatalf("expected seeded reference data, got %d genres and %d ratings", len(genres), len(ratings))
	}

	film, err := b.films.Create(ctx, models.Film{
		Name:        "Arrival",
		Description: "linguistics",
		ReleaseDate: models.NewDate(2016, time.November, 11),
		Duration:    116,
		MPA:         &models.Rating{ID: ratings[0].ID},
		Genres:      []models.Genre{{ID: genres[1].ID}, {ID: genres[0].ID}, {ID: genres[1].ID}},
	})
	if err != nil {
		t.Fatalf("create film: %v", err)
	}
	if film.MPA == nil || film.MPA.Name != ratings[0].Name {
		t.Fatalf("expected resolved rating, got %+v", film.MPA)
	}
	if len(film.Genres) != 2 || film.Genres[0].ID != genres[0].ID || film.Genres[0].Name != genres[0].Name {
		t.Fatalf("expected two ordered genres, got %+v", film.Genres)
	}

	film.Genres = nil
	film.MPA = nil
	film.Duration = 120
	updated, err := b.films.Update(ctx, film)
	if err != nil {
		t.Fatalf("update film: %v", err)
	}
	if updated.MPA != nil || len(updated.Genres) != 0 || updated.Duration != 120 {
		t.Fatalf("update not applied: %+v", updated)
	}

	if _, err := b.films.Create(ctx, models.Film{
		Name:        "Broken",
		ReleaseDate: models.NewDate(2000, time.January, 1),
		Duration:    1,
		Genres:      []models.Genre{{ID: 424242}},
	}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown genre, got %v", err)
	}

	if _, err := b.genres.Create(ctx, models.Genre{Name: genres[0].Name}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate genre, got %v", err)
	}

	list, err := b.films.List(ctx)
	if err != nil {
		t.Fatalf("list films: %v", err)
	}
	if len(list) != 1 || list[0].ID != film.ID {
		t.Fatalf("unexpected film list: %+v", list)
	}
}

func testLikeContract(t *testing.T, b backend) {
	ctx := context.Background()

	film := createTestFilm(t, b.films, "Liked")
	alice := createTestUser(t, b.users, "alice")
	bob := createTestUser(t, b.users, "bob")

	if err := b.likes.Add(ctx, film.ID, bob.ID); err != nil {
		t.Fatalf("add like: %v", err)
	}
	if err := b.likes.Add(ctx, film.ID, alice.ID); err != nil {
		t.Fatalf("add like: %v", err)
	}
	if err := b.likes.Add(ctx, film.ID, alice.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate like, got %v", err)
	}

	ids, err := b.likes.ListUserIDs(ctx, film.ID)
	if err != nil {
		t.Fatalf("list likes: %v", err)
	}
	if len(ids) != 2 || ids[0] != alice.ID || ids[1] != bob.ID {
		t.Fatalf("unexpected likers: %v", ids)
	}

	if err := b.likes.Remove(ctx, film.ID, alice.ID); err != nil {
		t.Fatalf("remove like: %v", err)
	}
	if err := b.likes.Remove(ctx, film.ID, alice.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound removing missing like, got %v", err)
	}
}

func testFriendshipContract(t *testing.T, b backend) {
	ctx := context.Background()

	a := createTestUser(t, b.users, "a")
	c := createTestUser(t, b.users, "c")

	err := b.friendships.WithinPair(ctx, a.ID, c.ID, func(ctx context.Context, edges FriendshipEdges) error {
		if _, err := edges.Find(ctx, a.ID, c.ID); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected no edge yet, got %v", err)
		}
		return edges.Create(ctx, models.Friendship{SenderID: a.ID, ReceiverID: c.ID, Status: models.FriendshipPending})
	})
	if err != nil {
		t.Fatalf("create edge: %v", err)
	}

	err = b.friendships.WithinPair(ctx, c.ID, a.ID, func(ctx context.Context, edges FriendshipEdges) error {
		return edges.Create(ctx, models.Friendship{SenderID: c.ID, ReceiverID: a.ID, Status: models.FriendshipPending})
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for reverse edge, got %v", err)
	}

	sent, err := b.friendships.ListSent(ctx, a.ID)
	if err != nil {
		t.Fatalf("list sent: %v", err)
	}
	if len(sent) != 1 || sent[0].ReceiverID != c.ID || sent[0].Status != models.FriendshipPending {
		t.Fatalf("unexpected sent edges: %+v", sent)
	}

	rollback := errors.New("rollback")
	err = b.friendships.WithinPair(ctx, a.ID, c.ID, func(ctx context.Context, edges FriendshipEdges) error {
		if err := edges.UpdateStatus(ctx, a.ID, c.ID, models.FriendshipConfirmed); err != nil {
			return err
		}
		return rollback
	})
	if !errors.Is(err, rollback) {
		t.Fatalf("expected rollback error, got %v", err)
	}
	received, err := b.friendships.ListReceived(ctx, c.ID)
	if err != nil {
		t.Fatalf("list received: %v", err)
	}
	if len(received) != 1 || received[0].Status != models.FriendshipPending {
		t.Fatalf("failed transition must not persist: %+v", received)
	}

	err = b.friendships.WithinPair(ctx, a.ID, c.ID, func(ctx context.Context, edges FriendshipEdges) error {
		return edges.Delete(ctx, a.ID, c.ID)
	})
	if err != nil {
		t.Fatalf("delete edge: %v", err)
	}
	received, err = b.friendships.ListReceived(ctx, c.ID)
	if err != nil {
		t.Fatalf("list received: %v", err)
	}
	if len(received) != 0 {
		t.Fatalf("expected no edges after delete, got %+v", received)
	}
}
