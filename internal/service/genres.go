package service

import (
	"context"
	"strings"

	"github.com/iliyamo/tiered-catalog/internal/model"
)

// Genres manages the genre list movies refer to.
type Genres struct {
	genres GenreStore
	movies MovieStore
}

// NewGenres wires the genre service. movies is consulted before a delete
// and may be nil.
func NewGenres(genres GenreStore, movies MovieStore) *Genres {
	return &Genres{genres: genres, movies: movies}
}

func (s *Genres) Create(ctx context.Context, r Requester, name string) (*model.Genre, error) {
	if err := requireAdmin(r); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name is required")
	}
	g := &model.Genre{Name: name}
	if err := s.genres.Create(ctx, g); err != nil {
		return nil, storeErr(err)
	}
	return g, nil
}

func (s *Genres) Get(ctx context.Context, id string) (*model.Genre, error) {
	g, err := s.genres.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	return g, nil
}

func (s *Genres) List(ctx context.Context) ([]model.Genre, error) {
	gs, err := s.genres.List(ctx)
	if err != nil {
		return nil, err
	}
	if gs == nil {
		gs = []model.Genre{}
	}
	return gs, nil
}

func (s *Genres) Rename(ctx context.Context, r Requester, id, name string) (*model.Genre, error) {
	if err := requireAdmin(r); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name is required")
	}
	if err := s.genres.Rename(ctx, id, name); err != nil {
		return nil, storeErr(err)
	}
	return s.Get(ctx, id)
}

// Delete removes a genre no movie refers to.
func (s *Genres) Delete(ctx context.Context, r Requester, id string) error {
	if err := requireAdmin(r); err != nil {
		return err
	}
	if s.movies != nil {
		movies, err := s.movies.ListAll(ctx)
		if err != nil {
			return err
		}
		for _, m := range movies {
			if m.Genre == id {
				return ErrGenreInUse
			}
		}
	}
	return storeErr(s.genres.Delete(ctx, id))
}
