package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/tiered-catalog/internal/model"
)

const movieColumns = `id, name, year, genre, detail, cast, rating, tier, image, video, num_reviews, reviews, created_at, updated_at`

// MovieRepo is the MySQL catalog store. Cast, tier and reviews live in JSON
// columns so a movie and its reviews are read and written as one row.
type MovieRepo struct {
	db *sql.DB
}

func NewMovieRepo(db *sql.DB) *MovieRepo {
	return &MovieRepo{db: db}
}

// ListByTiers returns movies whose tier array overlaps tiers.
func (r *MovieRepo) ListByTiers(ctx context.Context, tiers []string, order Order, limit int) ([]model.Movie, error) {
	arg, err := json.Marshal(tiers)
	if err != nil {
		return nil, err
	}
	q := "SELECT " + movieColumns + " FROM movies WHERE JSON_OVERLAPS(tier, CAST(? AS JSON))"
	switch order {
	case OrderNewest:
		q += " ORDER BY created_at DESC"
	case OrderTopRated:
		q += " ORDER BY rating DESC"
	}
	args := []any{string(arg)}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	return r.query(ctx, q, args...)
}

// SampleByTiers picks n random rows among those visible to tiers.
func (r *MovieRepo) SampleByTiers(ctx context.Context, tiers []string, n int) ([]model.Movie, error) {
	arg, err := json.Marshal(tiers)
	if err != nil {
		return nil, err
	}
	return r.query(ctx,
		"SELECT "+movieColumns+" FROM movies WHERE JSON_OVERLAPS(tier, CAST(? AS JSON)) ORDER BY RAND() LIMIT ?",
		string(arg), n)
}

func (r *MovieRepo) ListAll(ctx context.Context) ([]model.Movie, error) {
	return r.query(ctx, "SELECT "+movieColumns+" FROM movies ORDER BY created_at DESC")
}

func (r *MovieRepo) GetByID(ctx context.Context, id string) (*model.Movie, error) {
	m, err := scanMovie(r.db.QueryRowContext(ctx, "SELECT "+movieColumns+" FROM movies WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMovieNotFound
	}
	return m, err
}

// Create inserts m with a new UUID and fresh timestamps.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) error {
	now := time.Now().UTC()
	m.ID = uuid.NewString()
	m.CreatedAt, m.UpdatedAt = now, now
	m.NumReviews = len(m.Reviews)
	cast, tier, reviews, err := encodeMovieJSON(m)
	if err != nil {
		return err
	}
	const q = `INSERT INTO movies (` + movieColumns + `) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`
	_, err = r.db.ExecContext(ctx, q,
		m.ID, m.Name, m.Year, m.Genre, m.Detail, cast, m.Rating, tier, m.Image, m.Video,
		m.NumReviews, reviews, m.CreatedAt, m.UpdatedAt)
	return err
}

// Replace overwrites every mutable column of the row. Last writer wins.
func (r *MovieRepo) Replace(ctx context.Context, m *model.Movie) error {
	m.UpdatedAt = time.Now().UTC()
	m.NumReviews = len(m.Reviews)
	cast, tier, reviews, err := encodeMovieJSON(m)
	if err != nil {
		return err
	}
	const q = `UPDATE movies SET name=?, year=?, genre=?, detail=?, cast=?, rating=?, tier=?,
	           image=?, video=?, num_reviews=?, reviews=?, updated_at=? WHERE id=?`
	res, err := r.db.ExecContext(ctx, q,
		m.Name, m.Year, m.Genre, m.Detail, cast, m.Rating, tier,
		m.Image, m.Video, m.NumReviews, reviews, m.UpdatedAt, m.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMovieNotFound
	}
	return nil
}

// Delete removes the row; embedded reviews go with it.
func (r *MovieRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM movies WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMovieNotFound
	}
	return nil
}

func (r *MovieRepo) query(ctx context.Context, q string, args ...any) ([]model.Movie, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Movie{}
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanMovie(row rowScanner) (*model.Movie, error) {
	var (
		m                   model.Movie
		cast, tier, reviews []byte
	)
	if err := row.Scan(&m.ID, &m.Name, &m.Year, &m.Genre, &m.Detail, &cast, &m.Rating, &tier,
		&m.Image, &m.Video, &m.NumReviews, &reviews, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(cast, &m.Cast); err != nil {
		return nil, fmt.Errorf("decode cast: %w", err)
	}
	if err := json.Unmarshal(tier, &m.Tier); err != nil {
		return nil, fmt.Errorf("decode tier: %w", err)
	}
	if err := json.Unmarshal(reviews, &m.Reviews); err != nil {
		return nil, fmt.Errorf("decode reviews: %w", err)
	}
	if m.Reviews == nil {
		m.Reviews = []model.Review{}
	}
	return &m, nil
}

func encodeMovieJSON(m *model.Movie) (cast, tier, reviews []byte, err error) {
	if cast, err = json.Marshal(nonNil(m.Cast)); err != nil {
		return
	}
	if tier, err = json.Marshal(nonNil(m.Tier)); err != nil {
		return
	}
	rv := m.Reviews
	if rv == nil {
		rv = []model.Review{}
	}
	reviews, err = json.Marshal(rv)
	return
}
