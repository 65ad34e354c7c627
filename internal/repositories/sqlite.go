package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/filmorate/backend/internal/models"
)

// sqliteQuerier is satisfied by *sql.DB and *sql.Tx.
type sqliteQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func sqliteError(err error, op string) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return fmt.Errorf("%s: %w", op, ErrConflict)
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func sqliteDate(d models.Date) any {
	if d.IsZero() {
		return nil
	}
	return d.Format(models.DateLayout)
}

func parseSQLiteDate(value sql.NullString) (models.Date, error) {
	if !value.Valid || value.String == "" {
		return models.Date{}, nil
	}
	return models.ParseDate(value.String)
}

// SQLiteUserRepository stores users in an embedded SQLite database.
type SQLiteUserRepository struct {
	db *sql.DB
}

// NewSQLiteUserRepository constructs a user repository over an open SQLite handle.
func NewSQLiteUserRepository(db *sql.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{db: db}
}

func (r *SQLiteUserRepository) Create(ctx context.Context, user models.User) (models.User, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO users (email, login, name, birthday) VALUES (?, ?, ?, ?)`,
		user.Email, user.Login, user.Name, sqliteDate(user.Birthday),
	)
	if err != nil {
		return models.User{}, sqliteError(err, "insert user")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return models.User{}, fmt.Errorf("get last insert id: %w", err)
	}

	user.ID = id
	user.Friends = nil
	return user, nil
}

func (r *SQLiteUserRepository) Get(ctx context.Context, id int64) (models.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, email, login, name, birthday FROM users WHERE id = ?`, id)
	user, err := scanSQLiteUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, fmt.Errorf("user %d: %w", id, ErrNotFound)
		}
		return models.User{}, fmt.Errorf("query user by id: %w", err)
	}
	return user, nil
}

func (r *SQLiteUserRepository) Update(ctx context.Context, user models.User) (models.User, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET email = ?, login = ?, name = ?, birthday = ? WHERE id = ?`,
		user.Email, user.Login, user.Name, sqliteDate(user.Birthday), user.ID,
	)
	if err != nil {
		return models.User{}, sqliteError(err, "update user")
	}
	if n, err := result.RowsAffected(); err != nil {
		return models.User{}, fmt.Errorf("rows affected: %w", err)
	} else if n == 0 {
		return models.User{}, fmt.Errorf("user %d: %w", user.ID, ErrNotFound)
	}

	user.Friends = nil
	return user, nil
}

func (r *SQLiteUserRepository) List(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, email, login, name, birthday FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanSQLiteUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

type sqliteScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteUser(row sqliteScanner) (models.User, error) {
	var (
		user     models.User
		birthday sql.NullString
	)
	if err := row.Scan(&user.ID, &user.Email, &user.Login, &user.Name, &birthday); err != nil {
		return models.User{}, err
	}
	date, err := parseSQLiteDate(birthday)
	if err != nil {
		return models.User{}, err
	}
	user.Birthday = date
	return user, nil
}

// SQLiteFilmRepository stores films in an embedded SQLite database.
type SQLiteFilmRepository struct {
	db *sql.DB
}

// NewSQLiteFilmRepository constructs a film repository over an open SQLite handle.
func NewSQLiteFilmRepository(db *sql.DB) *SQLiteFilmRepository {
	return &SQLiteFilmRepository{db: db}
}

func (r *SQLiteFilmRepository) Create(ctx context.Context, film models.Film) (models.Film, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Film{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO films (name, description, release_date, duration, mpa_id) VALUES (?, ?, ?, ?, ?)`,
		film.Name, film.Description, sqliteDate(film.ReleaseDate), film.Duration, ratingID(film),
	)
	if err != nil {
		return models.Film{}, sqliteError(err, "insert film")
	}
	id, err := result.LastInsertId()
	if err != nil {
		return models.Film{}, fmt.Errorf("get last insert id: %w", err)
	}
	if err := replaceSQLiteFilmGenres(ctx, tx, id, film.Genres); err != nil {
		return models.Film{}, err
	}

	created, err := getSQLiteFilm(ctx, tx, id)
	if err != nil {
		return models.Film{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Film{}, fmt.Errorf("commit film: %w", err)
	}
	return created, nil
}

func (r *SQLiteFilmRepository) Get(ctx context.Context, id int64) (models.Film, error) {
	return getSQLiteFilm(ctx, r.db, id)
}

func (r *SQLiteFilmRepository) Update(ctx context.Context, film models.Film) (models.Film, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Film{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE films SET name = ?, description = ?, release_date = ?, duration = ?, mpa_id = ? WHERE id = ?`,
		film.Name, film.Description, sqliteDate(film.ReleaseDate), film.Duration, ratingID(film), film.ID,
	)
	if err != nil {
		return models.Film{}, sqliteError(err, "update film")
	}
	if n, err := result.RowsAffected(); err != nil {
		return models.Film{}, fmt.Errorf("rows affected: %w", err)
	} else if n == 0 {
		return models.Film{}, fmt.Errorf("film %d: %w", film.ID, ErrNotFound)
	}
	if err := replaceSQLiteFilmGenres(ctx, tx, film.ID, film.Genres); err != nil {
		return models.Film{}, err
	}

	updated, err := getSQLiteFilm(ctx, tx, film.ID)
	if err != nil {
		return models.Film{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Film{}, fmt.Errorf("commit film: %w", err)
	}
	return updated, nil
}

func (r *SQLiteFilmRepository) List(ctx context.Context) ([]models.Film, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT f.id, f.name, f.description, f.release_date, f.duration, f.mpa_id, m.name
		FROM films f
		LEFT JOIN mpa_ratings m ON m.id = f.mpa_id
		ORDER BY f.id`)
	if err != nil {
		return nil, fmt.Errorf("query films: %w", err)
	}

	films := []models.Film{}
	index := make(map[int64]int)
	for rows.Next() {
		film, err := scanSQLiteFilm(rows)
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

	genreRows, err := r.db.QueryContext(ctx, `
		SELECT fg.film_id, g.id, g.name
		FROM film_genres fg
		JOIN genres g ON g.id = fg.genre_id
		ORDER BY fg.film_id, g.id`)
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
	return films, genreRows.Err()
}

func replaceSQLiteFilmGenres(ctx context.Context, q sqliteQuerier, filmID int64, genres []models.Genre) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM film_genres WHERE film_id = ?`, filmID); err != nil {
		return fmt.Errorf("clear film genres: %w", err)
	}
	for _, g := range genres {
		if _, err := q.ExecContext(ctx,
			`INSERT OR IGNORE INTO film_genres (film_id, genre_id) VALUES (?, ?)`, filmID, g.ID,
		); err != nil {
			return sqliteError(err, fmt.Sprintf("link genre %d", g.ID))
		}
	}
	return nil
}

func getSQLiteFilm(ctx context.Context, q sqliteQuerier, id int64) (models.Film, error) {
	row := q.QueryRowContext(ctx, `
		SELECT f.id, f.name, f.description, f.release_date, f.duration, f.mpa_id, m.name
		FROM films f
		LEFT JOIN mpa_ratings m ON m.id = f.mpa_id
		WHERE f.id = ?`, id)
	film, err := scanSQLiteFilm(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Film{}, fmt.Errorf("film %d: %w", id, ErrNotFound)
		}
		return models.Film{}, fmt.Errorf("query film by id: %w", err)
	}

	rows, err := q.QueryContext(ctx, `
		SELECT g.id, g.name
		FROM film_genres fg
		JOIN genres g ON g.id = fg.genre_id
		WHERE fg.film_id = ?
		ORDER BY g.id`, id)
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
	return film, rows.Err()
}

func scanSQLiteFilm(row sqliteScanner) (models.Film, error) {
	var (
		film        models.Film
		releaseDate sql.NullString
		mpaID       sql.NullInt64
		mpaName     sql.NullString
	)
	if err := row.Scan(&film.ID, &film.Name, &film.Description, &releaseDate, &film.Duration, &mpaID, &mpaName); err != nil {
		return models.Film{}, err
	}
	date, err := parseSQLiteDate(releaseDate)
	if err != nil {
		return models.Film{}, err
	}
	film.ReleaseDate = date
	if mpaID.Valid {
		film.MPA = &models.Rating{ID: mpaID.Int64, Name: mpaName.String}
	}
	film.Genres = []models.Genre{}
	return film, nil
}

// SQLiteGenreRepository stores genres in an embedded SQLite database.
type SQLiteGenreRepository struct {
	db *sql.DB
}

func NewSQLiteGenreRepository(db *sql.DB) *SQLiteGenreRepository {
	return &SQLiteGenreRepository{db: db}
}

func (r *SQLiteGenreRepository) Create(ctx context.Context, genre models.Genre) (models.Genre, error) {
	result, err := r.db.ExecContext(ctx, `INSERT INTO genres (name) VALUES (?)`, genre.Name)
	if err != nil {
		return models.Genre{}, sqliteError(err, "insert genre")
	}
	if genre.ID, err = result.LastInsertId(); err != nil {
		return models.Genre{}, fmt.Errorf("get last insert id: %w", err)
	}
	return genre, nil
}

func (r *SQLiteGenreRepository) Get(ctx context.Context, id int64) (models.Genre, error) {
	var genre models.Genre
	err := r.db.QueryRowContext(ctx, `SELECT id, name FROM genres WHERE id = ?`, id).Scan(&genre.ID, &genre.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Genre{}, fmt.Errorf("genre %d: %w", id, ErrNotFound)
		}
		return models.Genre{}, fmt.Errorf("query genre: %w", err)
	}
	return genre, nil
}

func (r *SQLiteGenreRepository) List(ctx context.Context) ([]models.Genre, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM genres ORDER BY id`)
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
	return genres, rows.Err()
}

// SQLiteRatingRepository stores MPA ratings in an embedded SQLite database.
type SQLiteRatingRepository struct {
	db *sql.DB
}

func NewSQLiteRatingRepository(db *sql.DB) *SQLiteRatingRepository {
	return &SQLiteRatingRepository{db: db}
}

func (r *SQLiteRatingRepository) Create(ctx context.Context, rating models.Rating) (models.Rating, error) {
	result, err := r.db.ExecContext(ctx, `INSERT INTO mpa_ratings (name) VALUES (?)`, rating.Name)
	if err != nil {
		return models.Rating{}, sqliteError(err, "insert rating")
	}
	if rating.ID, err = result.LastInsertId(); err != nil {
		return models.Rating{}, fmt.Errorf("get last insert id: %w", err)
	}
	return rating, nil
}

func (r *SQLiteRatingRepository) Get(ctx context.Context, id int64) (models.Rating, error) {
	var rating models.Rating
	err := r.db.QueryRowContext(ctx, `SELECT id, name FROM mpa_ratings WHERE id = ?`, id).Scan(&rating.ID, &rating.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Rating{}, fmt.Errorf("rating %d: %w", id, ErrNotFound)
		}
		return models.Rating{}, fmt.Errorf("query rating: %w", err)
	}
	return rating, nil
}

func (r *SQLiteRatingRepository) List(ctx context.Context) ([]models.Rating, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM mpa_ratings ORDER BY id`)
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
	return ratings, rows.Err()
}

// SQLiteLikeRepository stores likes in an embedded SQLite database.
type SQLiteLikeRepository struct {
	db *sql.DB
}

func NewSQLiteLikeRepository(db *sql.DB) *SQLiteLikeRepository {
	return &SQLiteLikeRepository{db: db}
}

func (r *SQLiteLikeRepository) Add(ctx context.Context, filmID, userID int64) error {
	if _, err := r.db.ExecContext(ctx, `INSERT INTO film_likes (film_id, user_id) VALUES (?, ?)`, filmID, userID); err != nil {
		return sqliteError(err, fmt.Sprintf("like film %d by user %d", filmID, userID))
	}
	return nil
}

func (r *SQLiteLikeRepository) Remove(ctx context.Context, filmID, userID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM film_likes WHERE film_id = ? AND user_id = ?`, filmID, userID)
	if err != nil {
		return fmt.Errorf("delete like: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("rows affected: %w", err)
	} else if n == 0 {
		return fmt.Errorf("like film %d by user %d: %w", filmID, userID, ErrNotFound)
	}
	return nil
}

func (r *SQLiteLikeRepository) ListUserIDs(ctx context.Context, filmID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT user_id FROM film_likes WHERE film_id = ? ORDER BY user_id`, filmID)
	if err != nil {
		return nil, fmt.Errorf("query likes: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan like: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SQLiteFriendshipRepository stores friendship edges in an embedded SQLite database.
type SQLiteFriendshipRepository struct {
	db *sql.DB
}

func NewSQLiteFriendshipRepository(db *sql.DB) *SQLiteFriendshipRepository {
	return &SQLiteFriendshipRepository{db: db}
}

// WithinPair runs fn in a transaction. The handle holds a single connection, so
// concurrent transitions queue behind each other.
func (r *SQLiteFriendshipRepository) WithinPair(ctx context.Context, a, b int64, fn func(ctx context.Context, edges FriendshipEdges) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(ctx, &sqliteEdges{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit friendship: %w", err)
	}
	return nil
}

func (r *SQLiteFriendshipRepository) ListSent(ctx context.Context, userID int64) ([]models.Friendship, error) {
	return r.list(ctx, `SELECT sender_id, receiver_id, status FROM friendships WHERE sender_id = ? ORDER BY receiver_id`, userID)
}

func (r *SQLiteFriendshipRepository) ListReceived(ctx context.Context, userID int64) ([]models.Friendship, error) {
	return r.list(ctx, `SELECT sender_id, receiver_id, status FROM friendships WHERE receiver_id = ? ORDER BY sender_id`, userID)
}

func (r *SQLiteFriendshipRepository) list(ctx context.Context, query string, userID int64) ([]models.Friendship, error) {
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query friendships: %w", err)
	}
	defer rows.Close()

	edges := []models.Friendship{}
	for rows.Next() {
		var (
			edge   models.Friendship
			status string
		)
		if err := rows.Scan(&edge.SenderID, &edge.ReceiverID, &status); err != nil {
			return nil, fmt.Errorf("scan friendship: %w", err)
		}
		edge.Status = models.FriendshipStatus(status)
		edges = append(edges, edge)
	}
	return edges, rows.Err()
}

type sqliteEdges struct {
	tx *sql.Tx
}

func (e *sqliteEdges) Find(ctx context.Context, senderID, receiverID int64) (models.Friendship, error) {
	var (
		edge   models.Friendship
		status string
	)
	err := e.tx.QueryRowContext(ctx,
		`SELECT sender_id, receiver_id, status FROM friendships WHERE sender_id = ? AND receiver_id = ?`,
		senderID, receiverID,
	).Scan(&edge.SenderID, &edge.ReceiverID, &status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Friendship{}, fmt.Errorf("friendship %d->%d: %w", senderID, receiverID, ErrNotFound)
		}
		return models.Friendship{}, fmt.Errorf("query friendship: %w", err)
	}
	edge.Status = models.FriendshipStatus(status)
	return edge, nil
}

func (e *sqliteEdges) Create(ctx context.Context, edge models.Friendship) error {
	low, high := edge.SenderID, edge.ReceiverID
	if low > high {
		low, high = high, low
	}
	if _, err := e.tx.ExecContext(ctx,
		`INSERT INTO friendships (user_low, user_high, sender_id, receiver_id, status) VALUES (?, ?, ?, ?, ?)`,
		low, high, edge.SenderID, edge.ReceiverID, string(edge.Status),
	); err != nil {
		return sqliteError(err, fmt.Sprintf("insert friendship %d->%d", edge.SenderID, edge.ReceiverID))
	}
	return nil
}

func (e *sqliteEdges) UpdateStatus(ctx context.Context, senderID, receiverID int64, status models.FriendshipStatus) error {
	result, err := e.tx.ExecContext(ctx,
		`UPDATE friendships SET status = ? WHERE sender_id = ? AND receiver_id = ?`,
		string(status), senderID, receiverID,
	)
	if err != nil {
		return fmt.Errorf("update friendship: %w", err)
	}
	return requireSQLiteRow(result, senderID, receiverID)
}

func (e *sqliteEdges) Delete(ctx context.Context, senderID, receiverID int64) error {
	result, err := e.tx.ExecContext(ctx,
		`DELETE FROM friendships WHERE sender_id = ? AND receiver_id = ?`, senderID, receiverID,
	)
	if err != nil {
		return fmt.Errorf("delete friendship: %w", err)
	}
	return requireSQLiteRow(result, senderID, receiverID)
}

func requireSQLiteRow(result sql.Result, senderID, receiverID int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("friendship %d->%d: %w", senderID, receiverID, ErrNotFound)
	}
	return nil
}

var (
	_ UserRepository       = (*SQLiteUserRepository)(nil)
	_ FilmRepository       = (*SQLiteFilmRepository)(nil)
	_ GenreRepository      = (*SQLiteGenreRepository)(nil)
	_ RatingRepository     = (*SQLiteRatingRepository)(nil)
	_ LikeRepository       = (*SQLiteLikeRepository)(nil)
	_ FriendshipRepository = (*SQLiteFriendshipRepository)(nil)
)
