package repository

import (
	"context"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/tiered-catalog/internal/model"
	"github.com/iliyamo/tiered-catalog/internal/tier"
)

// MemoryStore keeps users, movies and genres in process memory. It backs
// STORE_DRIVER=memory for local runs and the service and handler tests.
// Values are copied on the way in and out so callers never share state
// with the store.
type MemoryStore struct {
	mu     sync.RWMutex
	users  map[string]model.User
	movies map[string]model.Movie
	genres map[string]model.Genre
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:  map[string]model.User{},
		movies: map[string]model.Movie{},
		genres: map[string]model.Genre{},
	}
}

// Movies, Users and Genres expose the store through the same method sets
// as the Mongo and MySQL repositories.
func (s *MemoryStore) Movies() *MemoryMovieRepo { return &MemoryMovieRepo{s} }
func (s *MemoryStore) Users() *MemoryUserRepo   { return &MemoryUserRepo{s} }
func (s *MemoryStore) Genres() *MemoryGenreRepo { return &MemoryGenreRepo{s} }

type MemoryMovieRepo struct{ s *MemoryStore }

func cloneMovie(m model.Movie) model.Movie {
	m.Cast = append([]string{}, m.Cast...)
	m.Tier = append([]string{}, m.Tier...)
	m.Reviews = append([]model.Review{}, m.Reviews...)
	return m
}

func (r *MemoryMovieRepo) visible(tiers []string) []model.Movie {
	out := []model.Movie{}
	for _, m := range r.s.movies {
		if tier.Intersects(m.Tier, tiers) {
			out = append(out, cloneMovie(m))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r *MemoryMovieRepo) ListByTiers(_ context.Context, tiers []string, order Order, limit int) ([]model.Movie, error) {
	r.s.mu.RLock()
	out := r.visible(tiers)
	r.s.mu.RUnlock()

	switch order {
	case OrderNewest:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	case OrderTopRated:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Rating > out[j].Rating })
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryMovieRepo) SampleByTiers(_ context.Context, tiers []string, n int) ([]model.Movie, error) {
	r.s.mu.RLock()
	all := r.visible(tiers)
	r.s.mu.RUnlock()

	rand.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	if len(all) > n {
		all = all[:n]
	}
	return all, nil
}

func (r *MemoryMovieRepo) ListAll(_ context.Context) ([]model.Movie, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]model.Movie, 0, len(r.s.movies))
	for _, m := range r.s.movies {
		out = append(out, cloneMovie(m))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryMovieRepo) GetByID(_ context.Context, id string) (*model.Movie, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.movies[id]
	if !ok {
		return nil, ErrMovieNotFound
	}
	out := cloneMovie(m)
	return &out, nil
}

func (r *MemoryMovieRepo) Create(_ context.Context, m *model.Movie) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m.ID = uuid.NewString()
	now := time.Now().UTC()
	// seeded fixtures may carry their own creation time
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
	m.NumReviews = len(m.Reviews)
	r.s.movies[m.ID] = cloneMovie(*m)
	return nil
}

func (r *MemoryMovieRepo) Replace(_ context.Context, m *model.Movie) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.movies[m.ID]; !ok {
		return ErrMovieNotFound
	}
	m.UpdatedAt = time.Now().UTC()
	m.NumReviews = len(m.Reviews)
	r.s.movies[m.ID] = cloneMovie(*m)
	return nil
}

func (r *MemoryMovieRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.movies[id]; !ok {
		return ErrMovieNotFound
	}
	delete(r.s.movies, id)
	return nil
}

type MemoryUserRepo struct{ s *MemoryStore }

func (r *MemoryUserRepo) emailTaken(email, except string) bool {
	for id, u := range r.s.users {
		if u.Email == email && id != except {
			return true
		}
	}
	return false
}

func (r *MemoryUserRepo) Create(_ context.Context, u *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u.Email = normalizeEmail(u.Email)
	if r.emailTaken(u.Email, "") {
		return ErrEmailExists
	}
	u.ID = uuid.NewString()
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	r.s.users[u.ID] = *u
	return nil
}

func (r *MemoryUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	email = normalizeEmail(email)
	for _, u := range r.s.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *MemoryUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

func (r *MemoryUserRepo) Update(_ context.Context, u *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[u.ID]; !ok {
		return ErrUserNotFound
	}
	u.Email = normalizeEmail(u.Email)
	if r.emailTaken(u.Email, u.ID) {
		return ErrEmailExists
	}
	u.UpdatedAt = time.Now().UTC()
	r.s.users[u.ID] = *u
	return nil
}

func (r *MemoryUserRepo) List(_ context.Context) ([]model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]model.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type MemoryGenreRepo struct{ s *MemoryStore }

func (r *MemoryGenreRepo) nameTaken(name, except string) bool {
	for id, g := range r.s.genres {
		if strings.EqualFold(g.Name, name) && id != except {
			return true
		}
	}
	return false
}

func (r *MemoryGenreRepo) Create(_ context.Context, g *model.Genre) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.nameTaken(g.Name, "") {
		return ErrGenreExists
	}
	g.ID = uuid.NewString()
	g.CreatedAt = time.Now().UTC()
	r.s.genres[g.ID] = *g
	return nil
}

func (r *MemoryGenreRepo) GetByID(_ context.Context, id string) (*model.Genre, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	g, ok := r.s.genres[id]
	if !ok {
		return nil, ErrGenreNotFound
	}
	return &g, nil
}

func (r *MemoryGenreRepo) List(_ context.Context) ([]model.Genre, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]model.Genre, 0, len(r.s.genres))
	for _, g := range r.s.genres {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemoryGenreRepo) Rename(_ context.Context, id, name string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	g, ok := r.s.genres[id]
	if !ok {
		return ErrGenreNotFound
	}
	if r.nameTaken(name, id) {
		return ErrGenreExists
	}
	g.Name = name
	r.s.genres[id] = g
	return nil
}

func (r *MemoryGenreRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.genres[id]; !ok {
		return ErrGenreNotFound
	}
	delete(r.s.genres, id)
	return nil
}
