package ranking

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filmorate/backend/internal/models"
)

type stubFilms struct {
	films []models.Film
	err   error
}

func (s stubFilms) List(context.Context) ([]models.Film, error) {
	out := make([]models.Film, len(s.films))
	copy(out, s.films)
	return out, s.err
}

type stubLikes map[int64]int

func (s stubLikes) LikerIDs(_ context.Context, filmID int64) ([]int64, error) {
	ids := make([]int64, 0, s[filmID])
	for i := 0; i < s[filmID]; i++ {
		ids = append(ids, int64(100+i))
	}
	return ids, nil
}

func catalog(ids ...int64) stubFilms {
	films := make([]models.Film, 0, len(ids))
	for _, id := range ids {
		films = append(films, models.Film{ID: id, Name: "film"})
	}
	return stubFilms{films: films}
}

func ids(films []models.Film) []int64 {
	out := make([]int64, 0, len(films))
	for _, f := range films {
		out = append(out, f.ID)
	}
	return out
}

func TestTopFilms_OrdersByLikesThenID(t *testing.T) {
	e := NewEngine(catalog(1, 2, 3, 4), stubLikes{1: 5, 2: 3, 3: 3, 4: 0})

	top, err := e.TopFilms(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids(top))
	assert.Len(t, top[0].Likes, 5)

	all, err := e.TopFilms(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, 4}, ids(all))
}

func TestTopFilms_TieBreakIsIndependentOfListOrder(t *testing.T) {
	e := NewEngine(catalog(9, 3, 5), stubLikes{9: 1, 3: 1, 5: 1})

	top, err := e.TopFilms(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 5, 9}, ids(top))
}

func TestTopFilms_InvalidCount(t *testing.T) {
	e := NewEngine(catalog(1), stubLikes{})
	for _, n := range []int{0, -1} {
		_, err := e.TopFilms(context.Background(), n)
		assert.ErrorIs(t, err, models.ErrInvalidArgument)
	}
}

func TestTopFilms_EmptyCatalog(t *testing.T) {
	e := NewEngine(catalog(), stubLikes{})
	top, err := e.TopFilms(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, top)
}

func TestTopFilms_ListFailure(t *testing.T) {
	boom := errors.New("boom")
	e := NewEngine(stubFilms{err: boom}, stubLikes{})
	_, err := e.TopFilms(context.Background(), 1)
	assert.ErrorIs(t, err, boom)
}
