package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/tiered-catalog/internal/model"
)

func TestMemoryMovieRepoOrdering(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryStore().Movies()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, fx := range []struct {
		name   string
		rating float64
		tiers  []string
	}{
		{"A", 7, []string{"silver"}},
		{"B", 9, []string{"gold"}},
		{"C", 5, []string{"platinum"}},
		{"D", 8, []string{"silver", "platinum"}},
	} {
		m := &model.Movie{Name: fx.name, Rating: fx.rating, Tier: fx.tiers, CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		require.NoError(t, repo.Create(ctx, m))
	}

	newest, err := repo.ListByTiers(ctx, []string{"gold", "silver"}, OrderNewest, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"D", "B", "A"}, names(newest))

	top, err := repo.ListByTiers(ctx, []string{"silver"}, OrderTopRated, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"D"}, names(top))

	sample, err := repo.SampleByTiers(ctx, []string{"platinum", "gold", "silver"}, 3)
	require.NoError(t, err)
	assert.Len(t, sample, 3)
	seen := map[string]bool{}
	for _, m := range sample {
		assert.False(t, seen[m.ID], "sampled with replacement")
		seen[m.ID] = true
	}
}

func TestMemoryMovieRepoCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryStore().Movies()
	m := &model.Movie{Name: "A", Tier: []string{"silver"}}
	require.NoError(t, repo.Create(ctx, m))

	got, err := repo.GetByID(ctx, m.ID)
	require.NoError(t, err)
	got.Tier[0] = "gold"
	got.Name = "changed"

	again, err := repo.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", again.Name)
	assert.Equal(t, []string{"silver"}, again.Tier)

	assert.ErrorIs(t, repo.Replace(ctx, &model.Movie{ID: "missing"}), ErrMovieNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "missing"), ErrMovieNotFound)
}

func TestMemoryUserRepoUniqueEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryStore().Users()
	require.NoError(t, repo.Create(ctx, &model.User{Email: "A@x.io"}))
	assert.ErrorIs(t, repo.Create(ctx, &model.User{Email: " a@x.io "}), ErrEmailExists)

	b := &model.User{Email: "b@x.io"}
	require.NoError(t, repo.Create(ctx, b))
	b.Email = "a@x.io"
	assert.ErrorIs(t, repo.Update(ctx, b), ErrEmailExists)

	u, err := repo.GetByEmail(ctx, "A@X.IO")
	require.NoError(t, err)
	assert.Equal(t, "a@x.io", u.Email)
}

func TestMemoryGenreRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryStore().Genres()
	g := &model.Genre{Name: "Drama"}
	require.NoError(t, repo.Create(ctx, g))
	assert.ErrorIs(t, repo.Create(ctx, &model.Genre{Name: "drama"}), ErrGenreExists)
	require.NoError(t, repo.Rename(ctx, g.ID, "Thriller"))
	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Thriller", all[0].Name)
	require.NoError(t, repo.Delete(ctx, g.ID))
	assert.ErrorIs(t, repo.Delete(ctx, g.ID), ErrGenreNotFound)
}

func names(ms []model.Movie) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Name
	}
	return out
}
