package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/filmorate/backend/internal/models"
)

type pairKey struct {
	low, high int64
}

func newPairKey(a, b int64) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{low: a, high: b}
}

type likeKey struct {
	filmID, userID int64
}

type storedFilm struct {
	film     models.Film
	ratingID int64
	genreIDs []int64
}

// MemoryStore keeps every entity in process memory. It backs local runs and
// tests; all repositories built from one store share its lock.
type MemoryStore struct {
	mu sync.RWMutex

	lastUserID   int64
	lastFilmID   int64
	lastGenreID  int64
	lastRatingID int64

	users   map[int64]models.User
	films   map[int64]storedFilm
	genres  map[int64]models.Genre
	ratings map[int64]models.Rating

	likes       map[likeKey]struct{}
	likesByFilm map[int64]map[int64]struct{}

	edges      map[pairKey]models.Friendship
	bySender   map[int64]map[pairKey]struct{}
	byReceiver map[int64]map[pairKey]struct{}
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:       make(map[int64]models.User),
		films:       make(map[int64]storedFilm),
		genres:      make(map[int64]models.Genre),
		ratings:     make(map[int64]models.Rating),
		likes:       make(map[likeKey]struct{}),
		likesByFilm: make(map[int64]map[int64]struct{}),
		edges:       make(map[pairKey]models.Friendship),
		bySender:    make(map[int64]map[pairKey]struct{}),
		byReceiver:  make(map[int64]map[pairKey]struct{}),
	}
}

// SeedReferenceData loads the default genres and MPA ratings, skipping names
// that already exist.
func (s *MemoryStore) SeedReferenceData(ctx context.Context) error {
	for _, name := range models.DefaultGenres {
		if _, err := s.Genres().Create(ctx, models.Genre{Name: name}); err != nil && !errors.Is(err, ErrConflict) {
			return fmt.Errorf("seed genre %q: %w", name, err)
		}
	}
	for _, name := range models.DefaultRatings {
		if _, err := s.Ratings().Create(ctx, models.Rating{Name: name}); err != nil && !errors.Is(err, ErrConflict) {
			return fmt.Errorf("seed rating %q: %w", name, err)
		}
	}
	return nil
}

func (s *MemoryStore) Users() *MemoryUserRepository             { return &MemoryUserRepository{s: s} }
func (s *MemoryStore) Films() *MemoryFilmRepository             { return &MemoryFilmRepository{s: s} }
func (s *MemoryStore) Genres() *MemoryGenreRepository           { return &MemoryGenreRepository{s: s} }
func (s *MemoryStore) Ratings() *MemoryRatingRepository         { return &MemoryRatingRepository{s: s} }
func (s *MemoryStore) Likes() *MemoryLikeRepository             { return &MemoryLikeRepository{s: s} }
func (s *MemoryStore) Friendships() *MemoryFriendshipRepository { return &MemoryFriendshipRepository{s: s} }

// MemoryUserRepository is the in-memory UserRepository.
type MemoryUserRepository struct {
	s *MemoryStore
}

func (r *MemoryUserRepository) Create(ctx context.Context, user models.User) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.lastUserID++
	user.ID = r.s.lastUserID
	user.Friends = nil
	r.s.users[user.ID] = user
	return user, nil
}

func (r *MemoryUserRepository) Get(ctx context.Context, id int64) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	user, ok := r.s.users[id]
	if !ok {
		return models.User{}, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return user, nil
}

func (r *MemoryUserRepository) Update(ctx context.Context, user models.User) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[user.ID]; !ok {
		return models.User{}, fmt.Errorf("user %d: %w", user.ID, ErrNotFound)
	}
	user.Friends = nil
	r.s.users[user.ID] = user
	return user, nil
}

func (r *MemoryUserRepository) List(ctx context.Context) ([]models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	users := make([]models.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// MemoryFilmRepository is the in-memory FilmRepository.
type MemoryFilmRepository struct {
	s *MemoryStore
}

func (r *MemoryFilmRepository) Create(ctx context.Context, film models.Film) (models.Film, error) {
	if err := ctx.Err(); err != nil {
		return models.Film{}, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, err := r.s.prepareFilm(film)
	if err != nil {
		return models.Film{}, err
	}
	r.s.lastFilmID++
	stored.film.ID = r.s.lastFilmID
	r.s.films[stored.film.ID] = stored
	return r.s.resolveFilm(stored), nil
}

func (r *MemoryFilmRepository) Get(ctx context.Context, id int64) (models.Film, error) {
	if err := ctx.Err(); err != nil {
		return models.Film{}, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	stored, ok := r.s.films[id]
	if !ok {
		return models.Film{}, fmt.Errorf("film %d: %w", id, ErrNotFound)
	}
	return r.s.resolveFilm(stored), nil
}

func (r *MemoryFilmRepository) Update(ctx context.Context, film models.Film) (models.Film, error) {
	if err := ctx.Err(); err != nil {
		return models.Film{}, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.films[film.ID]; !ok {
		return models.Film{}, fmt.Errorf("film %d: %w", film.ID, ErrNotFound)
	}
	stored, err := r.s.prepareFilm(film)
	if err != nil {
		return models.Film{}, err
	}
	r.s.films[film.ID] = stored
	return r.s.resolveFilm(stored), nil
}

func (r *MemoryFilmRepository) List(ctx context.Context) ([]models.Film, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	films := make([]models.Film, 0, len(r.s.films))
	for _, stored := range r.s.films {
		films = append(films, r.s.resolveFilm(stored))
	}
	sort.Slice(films, func(i, j int) bool { return films[i].ID < films[j].ID })
	return films, nil
}

// prepareFilm checks references the way foreign keys would. Callers hold mu.
func (s *MemoryStore) prepareFilm(film models.Film) (storedFilm, error) {
	stored := storedFilm{film: film}
	stored.film.Likes = nil
	stored.film.MPA = nil
	stored.film.Genres = nil

	if film.MPA != nil {
		if _, ok := s.ratings[film.MPA.ID]; !ok {
			return storedFilm{}, fmt.Errorf("rating %d: %w", film.MPA.ID, ErrNotFound)
		}
		stored.ratingID = film.MPA.ID
	}

	seen := make(map[int64]struct{}, len(film.Genres))
	for _, g := range film.Genres {
		if _, ok := s.genres[g.ID]; !ok {
			return storedFilm{}, fmt.Errorf("genre %d: %w", g.ID, ErrNotFound)
		}
		if _, dup := seen[g.ID]; dup {
			continue
		}
		seen[g.ID] = struct{}{}
		stored.genreIDs = append(stored.genreIDs, g.ID)
	}
	sort.Slice(stored.genreIDs, func(i, j int) bool { return stored.genreIDs[i] < stored.genreIDs[j] })
	return stored, nil
}

func (s *MemoryStore) resolveFilm(stored storedFilm) models.Film {
	film := stored.film
	if stored.ratingID != 0 {
		rating := s.ratings[stored.ratingID]
		film.MPA = &rating
	}
	film.Genres = make([]models.Genre, 0, len(stored.genreIDs))
	for _, id := range stored.genreIDs {
		film.Genres = append(film.Genres, s.genres[id])
	}
	return film
}

// MemoryGenreRepository is the in-memory GenreRepository.
type MemoryGenreRepository struct {
	s *MemoryStore
}

func (r *MemoryGenreRepository) Create(ctx context.Context, genre models.Genre) (models.Genre, error) {
	if err := ctx.Err(); err != nil {
		return models.Genre{}, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.genres {
		if strings.EqualFold(existing.Name, genre.Name) {
			return models.Genre{}, fmt.Errorf("genre %q: %w", genre.Name, ErrConflict)
		}
	}
	r.s.lastGenreID++
	genre.ID = r.s.lastGenreID
	r.s.genres[genre.ID] = genre
	return genre, nil
}

func (r *MemoryGenreRepository) Get(ctx context.Context, id int64) (models.Genre, error) {
	if err := ctx.Err(); err != nil {
		return models.Genre{}, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	genre, ok := r.s.genres[id]
	if !ok {
		return models.Genre{}, fmt.Errorf("genre %d: %w", id, ErrNotFound)
	}
	return genre, nil
}

func (r *MemoryGenreRepository) List(ctx context.Context) ([]models.Genre, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	genres := make([]models.Genre, 0, len(r.s.genres))
	for _, g := range r.s.genres {
		genres = append(genres, g)
	}
	sort.Slice(genres, func(i, j int) bool { return genres[i].ID < genres[j].ID })
	return genres, nil
}

// MemoryRatingRepository is the in-memory RatingRepository.
type MemoryRatingRepository struct {
	s *MemoryStore
}

func (r *MemoryRatingRepository) Create(ctx context.Context, rating models.Rating) (models.Rating, error) {
	if err := ctx.Err(); err != nil {
		return models.Rating{}, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.ratings {
		if strings.EqualFold(existing.Name, rating.Name) {
			return models.Rating{}, fmt.Errorf("rating %q: %w", rating.Name, ErrConflict)
		}
	}
	r.s.lastRatingID++
	rating.ID = r.s.lastRatingID
	r.s.ratings[rating.ID] = rating
	return rating, nil
}

func (r *MemoryRatingRepository) Get(ctx context.Context, id int64) (models.Rating, error) {
	if err := ctx.Err(); err != nil {
		return models.Rating{}, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rating, ok := r.s.ratings[id]
	if !ok {
		return models.Rating{}, fmt.Errorf("rating %d: %w", id, ErrNotFound)
	}
	return rating, nil
}

func (r *MemoryRatingRepository) List(ctx context.Context) ([]models.Rating, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ratings := make([]models.Rating, 0, len(r.s.ratings))
	for _, rt := range r.s.ratings {
		ratings = append(ratings, rt)
	}
	sort.Slice(ratings, func(i, j int) bool { return ratings[i].ID < ratings[j].ID })
	return ratings, nil
}

// MemoryLikeRepository is the in-memory LikeRepository.
type MemoryLikeRepository struct {
	s *MemoryStore
}

func (r *MemoryLikeRepository) Add(ctx context.Context, filmID, userID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.films[filmID]; !ok {
		return fmt.Errorf("film %d: %w", filmID, ErrNotFound)
	}
	if _, ok := r.s.users[userID]; !ok {
		return fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}
	key := likeKey{filmID: filmID, userID: userID}
	if _, ok := r.s.likes[key]; ok {
		return fmt.Errorf("like film %d by user %d: %w", filmID, userID, ErrConflict)
	}
	r.s.likes[key] = struct{}{}
	set, ok := r.s.likesByFilm[filmID]
	if !ok {
		set = make(map[int64]struct{})
		r.s.likesByFilm[filmID] = set
	}
	set[userID] = struct{}{}
	return nil
}

func (r *MemoryLikeRepository) Remove(ctx context.Context, filmID, userID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := likeKey{filmID: filmID, userID: userID}
	if _, ok := r.s.likes[key]; !ok {
		return fmt.Errorf("like film %d by user %d: %w", filmID, userID, ErrNotFound)
	}
	delete(r.s.likes, key)
	delete(r.s.likesByFilm[filmID], userID)
	return nil
}

func (r *MemoryLikeRepository) ListUserIDs(ctx context.Context, filmID int64) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	set := r.s.likesByFilm[filmID]
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// MemoryFriendshipRepository is the in-memory FriendshipRepository.
type MemoryFriendshipRepository struct {
	s *MemoryStore
}

// WithinPair holds the store write lock while fn runs. Edge writes are staged
// and applied only when fn succeeds.
func (r *MemoryFriendshipRepository) WithinPair(ctx context.Context, a, b int64, fn func(ctx context.Context, edges FriendshipEdges) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := newPairKey(a, b)
	current, exists := r.s.edges[key]
	tx := &memoryEdges{key: key, edge: current, exists: exists}

	if err := fn(ctx, tx); err != nil {
		return err
	}

	if exists {
		r.s.unindexEdge(key, current)
	}
	if tx.exists {
		r.s.edges[key] = tx.edge
		r.s.indexEdge(key, tx.edge)
	} else {
		delete(r.s.edges, key)
	}
	return nil
}

func (r *MemoryFriendshipRepository) ListSent(ctx context.Context, userID int64) ([]models.Friendship, error) {
	return r.list(ctx, userID, true)
}

func (r *MemoryFriendshipRepository) ListReceived(ctx context.Context, userID int64) ([]models.Friendship, error) {
	return r.list(ctx, userID, false)
}

func (r *MemoryFriendshipRepository) list(ctx context.Context, userID int64, sent bool) ([]models.Friendship, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	index := r.s.byReceiver
	if sent {
		index = r.s.bySender
	}
	edges := make([]models.Friendship, 0, len(index[userID]))
	for key := range index[userID] {
		edges = append(edges, r.s.edges[key])
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].SenderID != edges[j].SenderID {
			return edges[i].SenderID < edges[j].SenderID
		}
		return edges[i].ReceiverID < edges[j].ReceiverID
	})
	return edges, nil
}

func (s *MemoryStore) indexEdge(key pairKey, edge models.Friendship) {
	if s.bySender[edge.SenderID] == nil {
		s.bySender[edge.SenderID] = make(map[pairKey]struct{})
	}
	if s.byReceiver[edge.ReceiverID] == nil {
		s.byReceiver[edge.ReceiverID] = make(map[pairKey]struct{})
	}
	s.bySender[edge.SenderID][key] = struct{}{}
	s.byReceiver[edge.ReceiverID][key] = struct{}{}
}

func (s *MemoryStore) unindexEdge(key pairKey, edge models.Friendship) {
	delete(s.bySender[edge.SenderID], key)
	delete(s.byReceiver[edge.ReceiverID], key)
}

// memoryEdges stages the single edge a pair may hold.
type memoryEdges struct {
	key    pairKey
	edge   models.Friendship
	exists bool
}

func (e *memoryEdges) matches(senderID, receiverID int64) bool {
	return e.exists && e.edge.SenderID == senderID && e.edge.ReceiverID == receiverID
}

func (e *memoryEdges) checkPair(senderID, receiverID int64) error {
	if newPairKey(senderID, receiverID) != e.key {
		return fmt.Errorf("edge %d->%d outside locked pair: %w", senderID, receiverID, models.ErrInvalidArgument)
	}
	return nil
}

func (e *memoryEdges) Find(_ context.Context, senderID, receiverID int64) (models.Friendship, error) {
	if err := e.checkPair(senderID, receiverID); err != nil {
		return models.Friendship{}, err
	}
	if !e.matches(senderID, receiverID) {
		return models.Friendship{}, fmt.Errorf("friendship %d->%d: %w", senderID, receiverID, ErrNotFound)
	}
	return e.edge, nil
}

func (e *memoryEdges) Create(_ context.Context, edge models.Friendship) error {
	if err := e.checkPair(edge.SenderID, edge.ReceiverID); err != nil {
		return err
	}
	if e.exists {
		return fmt.Errorf("friendship %d->%d: %w", edge.SenderID, edge.ReceiverID, ErrConflict)
	}
	e.edge = edge
	e.exists = true
	return nil
}

func (e *memoryEdges) UpdateStatus(_ context.Context, senderID, receiverID int64, status models.FriendshipStatus) error {
	if err := e.checkPair(senderID, receiverID); err != nil {
		return err
	}
	if !e.matches(senderID, receiverID) {
		return fmt.Errorf("friendship %d->%d: %w", senderID, receiverID, ErrNotFound)
	}
	e.edge.Status = status
	return nil
}

func (e *memoryEdges) Delete(_ context.Context, senderID, receiverID int64) error {
	if err := e.checkPair(senderID, receiverID); err != nil {
		return err
	}
	if !e.matches(senderID, receiverID) {
		return fmt.Errorf("friendship %d->%d: %w", senderID, receiverID, ErrNotFound)
	}
	e.edge = models.Friendship{}
	e.exists = false
	return nil
}

var (
	_ UserRepository       = (*MemoryUserRepository)(nil)
	_ FilmRepository       = (*MemoryFilmRepository)(nil)
	_ GenreRepository      = (*MemoryGenreRepository)(nil)
	_ RatingRepository     = (*MemoryRatingRepository)(nil)
	_ LikeRepository       = (*MemoryLikeRepository)(nil)
	_ FriendshipRepository = (*MemoryFriendshipRepository)(nil)
)
