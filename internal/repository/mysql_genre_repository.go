package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/tiered-catalog/internal/model"
)

// GenreRepo encapsulates the queries on the `genres` table.
type GenreRepo struct {
	db *sql.DB
}

func NewGenreRepo(db *sql.DB) *GenreRepo {
	return &GenreRepo{db: db}
}

// Create inserts a genre. A duplicate name yields ErrGenreExists.
func (r *GenreRepo) Create(ctx context.Context, g *model.Genre) error {
	g.ID = uuid.NewString()
	g.Name = strings.TrimSpace(g.Name)
	g.CreatedAt = time.Now().UTC()
	if _, err := r.db.ExecContext(ctx, "INSERT INTO genres (id, name, created_at) VALUES (?, ?, ?)",
		g.ID, g.Name, g.CreatedAt); err != nil {
		if isDuplicate(err) {
			return ErrGenreExists
		}
		return err
	}
	return nil
}

func (r *GenreRepo) GetByID(ctx context.Context, id string) (*model.Genre, error) {
	var g model.Genre
	err := r.db.QueryRowContext(ctx, "SELECT id, name, created_at FROM genres WHERE id = ?", id).
		Scan(&g.ID, &g.Name, &g.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGenreNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// List returns all genres ordered by name.
func (r *GenreRepo) List(ctx context.Context) ([]model.Genre, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, created_at FROM genres ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Genre{}
	for rows.Next() {
		var g model.Genre
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Rename updates the genre name. It returns ErrGenreNotFound when no row
// matches.
func (r *GenreRepo) Rename(ctx context.Context, id, name string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE genres SET name = ? WHERE id = ?", strings.TrimSpace(name), id)
	if err != nil {
		if isDuplicate(err) {
			return ErrGenreExists
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (r *GenreRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM genres WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrGenreNotFound
	}
	return nil
}
