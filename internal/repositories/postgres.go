package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/filmorate/backend/internal/db"
	"github.com/filmorate/backend/internal/models"
)

// pgQuerier is satisfied by both pooled connections and transactions.
type pgQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// pgError translates constraint violations into repository errors.
func pgError(err error, op string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%s: %w", op, ErrConflict)
		case "23503":
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func nullableDate(d models.Date) any {
	if d.IsZero() {
		return nil
	}
	return d.Time
}

// PostgresUserRepository provides PostgreSQL-backed persistence for users.
type PostgresUserRepository struct {
	pool db.Pool
}

// NewPostgresUserRepository constructs a user repository backed by PostgreSQL.
func NewPostgresUserRepository(pool db.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// Create persists a new user record.
func (r *PostgresUserRepository) Create(ctx context.Context, user models.User) (models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	err = conn.QueryRow(ctx, `
        INSERT INTO users (email, login, name, birthday)
        VALUES ($1, $2, $3, $4)
        RETURNING id
    `, user.Email, user.Login, user.Name, nullableDate(user.Birthday)).Scan(&user.ID)
	if err != nil {
		return models.User{}, pgError(err, "insert user")
	}

	user.Friends = nil
	return user, nil
}

// Get fetches a user by identifier.
func (r *PostgresUserRepository) Get(ctx context.Context, id int64) (models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, email, login, name, birthday
        FROM users
        WHERE id = $1
    `, id)

	user, err := scanPostgresUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, fmt.Errorf("user %d: %w", id, ErrNotFound)
		}
		return models.User{}, fmt.Errorf("select user: %w", err)
	}
	return user, nil
}

// Update overwrites an existing user record.
func (r *PostgresUserRepository) Update(ctx context.Context, user models.User) (models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE users
        SET email = $2, login = $3, name = $4, birthday = $5, updated_at = NOW()
        WHERE id = $1
    `, user.ID, user.Email, user.Login, user.Name, nullableDate(user.Birthday))
	if err != nil {
		return models.User{}, pgError(err, "update user")
	}

	if tag.RowsAffected() == 0 {
		return models.User{}, fmt.Errorf("user %d: %w", user.ID, ErrNotFound)
	}

	user.Friends = nil
	return user, nil
}

// List returns every user ordered by identifier.
func (r *PostgresUserRepository) List(ctx context.Context) ([]models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT id, email, login, name, birthday
        FROM users
        ORDER BY id
    `)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanPostgresUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

func scanPostgresUser(row pgx.Row) (models.User, error) {
	var (
		user     models.User
		birthday sql.NullTime
	)
	if err := row.Scan(&user.ID, &user.Email, &user.Login, &user.Name, &birthday); err != nil {
		return models.User{}, err
	}
	if birthday.Valid {
		user.Birthday = models.Date{Time: birthday.Time.UTC()}
	}
	return user, nil
}

// PostgresFilmRepository provides PostgreSQL-backed persistence for films.
type PostgresFilmRepository struct {
	pool db.Pool
}

// NewPostgresFilmRepository constructs a film repository backed by PostgreSQL.
func NewPostgresFilmRepository(pool db.Pool) *PostgresFilmRepository {
	return &PostgresFilmRepository{pool: pool}
}

// Create persists a film together with its genre links.
func (r *PostgresFilmRepository) Create(ctx context.Context, film models.Film) (models.Film, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Film{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var id int64
	err = pgx.BeginFunc(ctx, conn, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `
            INSERT INTO films (name, description, release_date, duration, mpa_id)
            VALUES ($1, $2, $3, $4, $5)
            RETURNING id
        `, film.Name, film.Description, film.ReleaseDate.Time, film.Duration, ratingID(film)).Scan(&id); err != nil {
			return pgError(err, "insert film")
		}
		return replaceFilmGenres(ctx, tx, id, film.Genres)
	})
	if err != nil {
		return models.Film{}, err
	}

	return getPostgresFilm(ctx, conn, id)
}

// Get fetches a film with resolved rating and genres.
func (r *PostgresFilmRepository) Get(ctx context.Context, id int64) (models.Film, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Film{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	return getPostgresFilm(ctx, conn, id)
}

// Update overwrites a film and its genre links.
func (r *PostgresFilmRepository) Update(ctx context.Context, film models.Film) (models.Film, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Film{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	err = pgx.BeginFunc(ctx, conn, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
            UPDATE films
            SET name = $2, description = $3, release_date = $4, duration = $5, mpa_id = $6, updated_at = NOW()
            WHERE id = $1
        `, film.ID, film.Name, film.Description, film.ReleaseDate.Time, film.Duration, ratingID(film))
		if err != nil {
			return pgError(err, "update film")
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("film %d: %w", film.ID, ErrNotFound)
		}
		return replaceFilmGenres(ctx, tx, film.ID, film.Genres)
	})
	if err != nil {
		return models.Film{}, err
	}

	return getPostgresFilm(ctx, conn, film.ID)
}

// List returns all films ordered by identifier, loading genres in one query.
func (r *PostgresFilmRepository) List(ctx context.Context) ([]models.Film, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT f.id, f.name, f.description, f.release_date, f.duration, f.mpa_id, m.name
        FROM films f
        LEFT JOIN mpa_ratings m ON m.id = f.mpa_id
        ORDER BY f.id
    `)
	if err != nil {
		return nil, fmt.Errorf("query films: %w", err)
	}

	films := []models.Film{}
	index := make(map[int64]int)
	for rows.Next() {
		film, err := scanPostgresFilm(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan film: %w", err)
		}
		index[film.ID] = len(films)
		films = append(films, film)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate films: %w", err)
	}

	genreRows, err := conn.Query(ctx, `
        SELECT fg.film_id, g.id, g.name
        FROM film_genres fg
        JOIN genres g ON g.id = fg.genre_id
        ORDER BY fg.film_id, g.id
    `)
	if err != nil {
		return nil, fmt.Errorf("query film genres: %w", err)
	}
	defer genreRows.Close()

	for genreRows.Next() {
		var (
			filmID int64
			genre  models.Genre
		)
		if err := genreRows.Scan(&filmID, &genre.ID, &genre.Name); err != nil {
			return nil, fmt.Errorf("scan film genre: %w", err)
		}
		if i, ok := index[filmID]; ok {
			films[i].Genres = append(films[i].Genres, genre)
		}
	}
	if err := genreRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate film genres: %w", err)
	}

	return films, nil
}

func ratingID(film models.Film) any {
	if film.MPA == nil {
		return nil
	}
	return film.MPA.ID
}

func replaceFilmGenres(ctx context.Context, q pgQuerier, filmID int64, genres []models.Genre) error {
	if _, err := q.Exec(ctx, `DELETE FROM film_genres WHERE film_id = $1`, filmID); err != nil {
		return fmt.Errorf("clear film genres: %w", err)
	}
	for _, g := range genres {
		if _, err := q.Exec(ctx, `
            INSERT INTO film_genres (film_id, genre_id)
            VALUES ($1, $2)
            ON CONFLICT DO NOTHING
        `, filmID, g.ID); err != nil {
			return pgError(err, fmt.Sprintf("link genre %d", g.ID))
		}
	}
	return nil
}

func getPostgresFilm(ctx context.Context, q pgQuerier, id int64) (models.Film, error) {
	row := q.QueryRow(ctx, `
        SELECT f.id, f.name, f.description, f.release_date, f.duration, f.mpa_id, m.name
        FROM films f
        LEFT JOIN mpa_ratings m ON m.id = f.mpa_id
        WHERE f.id = $1
    `, id)

	film, err := scanPostgresFilm(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Film{}, fmt.Errorf("film %d: %w", id, ErrNotFound)
		}
		return models.Film{}, fmt.Errorf("select film: %w", err)
	}

	rows, err := q.Query(ctx, `
        SELECT g.id, g.name
        FROM film_genres fg
        JOIN genres g ON g.id = fg.genre_id
        WHERE fg.film_id = $1
        ORDER BY g.id
    `, id)
	if err != nil {
		return models.Film{}, fmt.Errorf("query film genres: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var genre models.Genre
		if err := rows.Scan(&genre.ID, &genre.Name); err != nil {
			return models.Film{}, fmt.Errorf("scan film genre: %w", err)
		}
		film.Genres = append(film.Genres, genre)
	}
	if err := rows.Err(); err != nil {
		return models.Film{}, fmt.Errorf("iterate film genres: %w", err)
	}

	return film, nil
}

func scanPostgresFilm(row pgx.Row) (models.Film, error) {
	var (
		film        models.Film
		releaseDate sql.NullTime
		mpaID       *int64
		mpaName     *string
	)
	if err := row.Scan(&film.ID, &film.Name, &film.Description, &releaseDate, &film.Duration, &mpaID, &mpaName); err != nil {
		return models.Film{}, err
	}
	if releaseDate.Valid {
		film.ReleaseDate = models.Date{Time: releaseDate.Time.UTC()}
	}
	if mpaID != nil {
		film.MPA = &models.Rating{ID: *mpaID}
		if mpaName != nil {
			film.MPA.Name = *mpaName
		}
	}
	film.Genres = []models.Genre{}
	return film, nil
}

// PostgresGenreRepository provides PostgreSQL-backed persistence for genres.
type PostgresGenreRepository struct {
	pool db.Pool
}

// NewPostgresGenreRepository constructs a genre repository backed by PostgreSQL.
func NewPostgresGenreRepository(pool db.Pool) *PostgresGenreRepository {
	return &PostgresGenreRepository{pool: pool}
}

func (r *PostgresGenreRepository) Create(ctx context.Context, genre models.Genre) (models.Genre, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Genre{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if err := conn.QueryRow(ctx, `INSERT INTO genres (name) VALUES ($1) RETURNING id`, genre.Name).Scan(&genre.ID); err != nil {
		return models.Genre{}, pgError(err, "insert genre")
	}
	return genre, nil
}

func (r *PostgresGenreRepository) Get(ctx context.Context, id int64) (models.Genre, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Genre{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var genre models.Genre
	if err := conn.QueryRow(ctx, `SELECT id, name FROM genres WHERE id = $1`, id).Scan(&genre.ID, &genre.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Genre{}, fmt.Errorf("genre %d: %w", id, ErrNotFound)
		}
		return models.Genre{}, fmt.Errorf("select genre: %w", err)
	}
	return genre, nil
}

func (r *PostgresGenreRepository) List(ctx context.Context) ([]models.Genre, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `SELECT id, name FROM genres ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query genres: %w", err)
	}
	defer rows.Close()

	genres := []models.Genre{}
	for rows.Next() {
		var genre models.Genre
		if err := rows.Scan(&genre.ID, &genre.Name); err != nil {
			return nil, fmt.Errorf("scan genre: %w", err)
		}
		genres = append(genres, genre)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate genres: %w", err)
	}
	return genres, nil
}

// PostgresRatingRepository provides PostgreSQL-backed persistence for MPA ratings.
type PostgresRatingRepository struct {
	pool db.Pool
}

// NewPostgresRatingRepository constructs a rating repository backed by PostgreSQL.
func NewPostgresRatingRepository(pool db.Pool) *PostgresRatingRepository {
	return &PostgresRatingRepository{pool: pool}
}

func (r *PostgresRatingRepository) Create(ctx context.Context, rating models.Rating) (models.Rating, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Rating{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if err := conn.QueryRow(ctx, `INSERT INTO mpa_ratings (name) VALUES ($1) RETURNING id`, rating.Name).Scan(&rating.ID); err != nil {
		return models.Rating{}, pgError(err, "insert rating")
	}
	return rating, nil
}

func (r *PostgresRatingRepository) Get(ctx context.Context, id int64) (models.Rating, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Rating{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var rating models.Rating
	if err := conn.QueryRow(ctx, `SELECT id, name FROM mpa_ratings WHERE id = $1`, id).Scan(&rating.ID, &rating.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Rating{}, fmt.Errorf("rating %d: %w", id, ErrNotFound)
		}
		return models.Rating{}, fmt.Errorf("select rating: %w", err)
	}
	return rating, nil
}

func (r *PostgresRatingRepository) List(ctx context.Context) ([]models.Rating, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `SELECT id, name FROM mpa_ratings ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query ratings: %w", err)
	}
	defer rows.Close()

	ratings := []models.Rating{}
	for rows.Next() {
		var rating models.Rating
		if err := rows.Scan(&rating.ID, &rating.Name); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		ratings = append(ratings, rating)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ratings: %w", err)
	}
	return ratings, nil
}

// PostgresLikeRepository provides PostgreSQL-backed persistence for likes.
type PostgresLikeRepository struct {
	pool db.Pool
}

// NewPostgresLikeRepository constructs a like repository backed by PostgreSQL.
func NewPostgresLikeRepository(pool db.Pool) *PostgresLikeRepository {
	return &PostgresLikeRepository{pool: pool}
}

// Add inserts a like; the (film_id, user_id) primary key rejects duplicates.
func (r *PostgresLikeRepository) Add(ctx context.Context, filmID, userID int64) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `
        INSERT INTO film_likes (film_id, user_id)
        VALUES ($1, $2)
    `, filmID, userID); err != nil {
		return pgError(err, fmt.Sprintf("like film %d by user %d", filmID, userID))
	}
	return nil
}

func (r *PostgresLikeRepository) Remove(ctx context.Context, filmID, userID int64) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM film_likes WHERE film_id = $1 AND user_id = $2`, filmID, userID)
	if err != nil {
		return fmt.Errorf("delete like: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("like film %d by user %d: %w", filmID, userID, ErrNotFound)
	}
	return nil
}

func (r *PostgresLikeRepository) ListUserIDs(ctx context.Context, filmID int64) ([]int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `SELECT user_id FROM film_likes WHERE film_id = $1 ORDER BY user_id`, filmID)
	if err != nil {
		return nil, fmt.Errorf("query likes: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("collect likes: %w", err)
	}
	return ids, nil
}

// PostgresFriendshipRepository provides PostgreSQL-backed persistence for friendship edges.
type PostgresFriendshipRepository struct {
	pool db.Pool
}

// NewPostgresFriendshipRepository constructs a friendship repository backed by PostgreSQL.
func NewPostgresFriendshipRepository(pool db.Pool) *PostgresFriendshipRepository {
	return &PostgresFriendshipRepository{pool: pool}
}

// WithinPair locks both user rows in id order before running fn inside one transaction.
func (r *PostgresFriendshipRepository) WithinPair(ctx context.Context, a, b int64, fn func(ctx context.Context, edges FriendshipEdges) error) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	return pgx.BeginFunc(ctx, conn, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
            SELECT id FROM users
            WHERE id IN ($1, $2)
            ORDER BY id
            FOR UPDATE
        `, a, b)
		if err != nil {
			return fmt.Errorf("lock users: %w", err)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("lock users: %w", err)
		}
		return fn(ctx, &postgresEdges{tx: tx})
	})
}

func (r *PostgresFriendshipRepository) ListSent(ctx context.Context, userID int64) ([]models.Friendship, error) {
	return r.list(ctx, `
        SELECT sender_id, receiver_id, status
        FROM friendships
        WHERE sender_id = $1
        ORDER BY receiver_id
    `, userID)
}

func (r *PostgresFriendshipRepository) ListReceived(ctx context.Context, userID int64) ([]models.Friendship, error) {
	return r.list(ctx, `
        SELECT sender_id, receiver_id, status
        FROM friendships
        WHERE receiver_id = $1
        ORDER BY sender_id
    `, userID)
}

func (r *PostgresFriendshipRepository) list(ctx context.Context, query string, userID int64) ([]models.Friendship, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query friendships: %w", err)
	}
	defer rows.Close()

	edges := []models.Friendship{}
	for rows.Next() {
		var edge models.Friendship
		if err := rows.Scan(&edge.SenderID, &edge.ReceiverID, &edge.Status); err != nil {
			return nil, fmt.Errorf("scan friendship: %w", err)
		}
		edges = append(edges, edge)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate friendships: %w", err)
	}
	return edges, nil
}

type postgresEdges struct {
	tx pgx.Tx
}

func (e *postgresEdges) Find(ctx context.Context, senderID, receiverID int64) (models.Friendship, error) {
	var edge models.Friendship
	err := e.tx.QueryRow(ctx, `
        SELECT sender_id, receiver_id, status
        FROM friendships
        WHERE sender_id = $1 AND receiver_id = $2
    `, senderID, receiverID).Scan(&edge.SenderID, &edge.ReceiverID, &edge.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Friendship{}, fmt.Errorf("friendship %d->%d: %w", senderID, receiverID, ErrNotFound)
		}
		return models.Friendship{}, fmt.Errorf("select friendship: %w", err)
	}
	return edge, nil
}

func (e *postgresEdges) Create(ctx context.Context, edge models.Friendship) error {
	low, high := edge.SenderID, edge.ReceiverID
	if low > high {
		low, high = high, low
	}
	if _, err := e.tx.Exec(ctx, `
        INSERT INTO friendships (user_low, user_high, sender_id, receiver_id, status)
        VALUES ($1, $2, $3, $4, $5)
    `, low, high, edge.SenderID, edge.ReceiverID, string(edge.Status)); err != nil {
		return pgError(err, fmt.Sprintf("insert friendship %d->%d", edge.SenderID, edge.ReceiverID))
	}
	return nil
}

func (e *postgresEdges) UpdateStatus(ctx context.Context, senderID, receiverID int64, status models.FriendshipStatus) error {
	tag, err := e.tx.Exec(ctx, `
        UPDATE friendships
        SET status = $3, updated_at = NOW()
        WHERE sender_id = $1 AND receiver_id = $2
    `, senderID, receiverID, string(status))
	if err != nil {
		return fmt.Errorf("update friendship: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("friendship %d->%d: %w", senderID, receiverID, ErrNotFound)
	}
	return nil
}

func (e *postgresEdges) Delete(ctx context.Context, senderID, receiverID int64) error {
	tag, err := e.tx.Exec(ctx, `DELETE FROM friendships WHERE sender_id = $1 AND receiver_id = $2`, senderID, receiverID)
	if err != nil {
		return fmt.Errorf("delete friendship: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("friendship %d->%d: %w", senderID, receiverID, ErrNotFound)
	}
	return nil
}

var _ UserRepository = (*PostgresUserRepository)(nil)
var _ FilmRepository = (*PostgresFilmRepository)(nil)
var _ GenreRepository = (*PostgresGenreRepository)(nil)
var _ RatingRepository = (*PostgresRatingRepository)(nil)
var _ LikeRepository = (*PostgresLikeRepository)(nil)
var _ FriendshipRepository = (*PostgresFriendshipRepository)(nil)
