package likes

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filmorate/backend/internal/models"
	"github.com/filmorate/backend/internal/repositories"
)

type fixture struct {
	ledger *Ledger
	film   models.Film
	users  []models.User
}

func newFixture(t *testing.T, userCount int) fixture {
	t.Helper()
	ctx := context.Background()
	store := repositories.NewMemoryStore()

	film, err := store.Films().Create(ctx, models.Film{
		Name:        "Stalker",
		ReleaseDate: models.NewDate(1979, time.May, 25),
		Duration:    161,
	})
	require.NoError(t, err)

	users := make([]models.User, 0, userCount)
	for i := 0; i < userCount; i++ {
		u, err := store.Users().Create(ctx, models.User{Email: "u@example.com", Login: "u", Name: "u"})
		require.NoError(t, err)
		users = append(users, u)
	}

	return fixture{
		ledger: NewLedger(store.Films(), store.Users(), store.Likes()),
		film:   film,
		users:  users,
	}
}

func TestAddLike_CountsOnceAndRejectsDuplicate(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	userID := f.users[0].ID

	film, err := f.ledger.AddLike(ctx, f.film.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, []int64{userID}, film.Likes)

	_, err = f.ledger.AddLike(ctx, f.film.ID, userID)
	assert.ErrorIs(t, err, models.ErrDuplicate)

	count, err := f.ledger.CountLikes(ctx, f.film.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRemoveLike(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()

	_, err := f.ledger.RemoveLike(ctx, f.film.ID, f.users[0].ID)
	assert.ErrorIs(t, err, models.ErrNotFound, "removing a like that was never added")

	_, err = f.ledger.AddLike(ctx, f.film.ID, f.users[0].ID)
	require.NoError(t, err)
	_, err = f.ledger.AddLike(ctx, f.film.ID, f.users[1].ID)
	require.NoError(t, err)

	film, err := f.ledger.RemoveLike(ctx, f.film.ID, f.users[0].ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{f.users[1].ID}, film.Likes)
}

func TestLedger_UnknownEntities(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	_, err := f.ledger.AddLike(ctx, 999, f.users[0].ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = f.ledger.AddLike(ctx, f.film.ID, 999)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = f.ledger.RemoveLike(ctx, f.film.ID, 999)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = f.ledger.CountLikes(ctx, 999)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCountLikes_NeverLiked(t *testing.T) {
	f := newFixture(t, 0)
	count, err := f.ledger.CountLikes(context.Background(), f.film.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestAddLike_ConcurrentDuplicatesStoreOneFact(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		successes  int
		duplicates int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.ledger.AddLike(ctx, f.film.ID, f.users[0].ID)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else if assert.ErrorIs(t, err, models.ErrDuplicate) {
				duplicates++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, 9, duplicates)
}
