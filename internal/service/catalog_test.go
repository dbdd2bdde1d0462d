package service

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/tiered-catalog/internal/media"
	"github.com/iliyamo/tiered-catalog/internal/model"
	"github.com/iliyamo/tiered-catalog/internal/queue"
	"github.com/iliyamo/tiered-catalog/internal/repository"
	"github.com/iliyamo/tiered-catalog/internal/tier"
)

var (
	admin   = Requester{ID: "admin-1", Username: "root", Tier: tier.Platinum, IsAdmin: true}
	silverU = Requester{ID: "u-silver", Username: "sam", Tier: tier.Silver}
	goldU   = Requester{ID: "u-gold", Username: "gina", Tier: tier.Gold}
	platU   = Requester{ID: "u-plat", Username: "pat", Tier: tier.Platinum}
	bogusU  = Requester{ID: "u-bogus", Username: "bo", Tier: tier.Tier("bronze")}
	anon    = Requester{}
)

type catalogFixture struct {
	svc    *Catalog
	genres GenreStore
	movies *countingMovies
	up     *fakeUploader
	events *recordingPublisher
}

func newCatalogFixture() *catalogFixture {
	store := repository.NewMemoryStore()
	f := &catalogFixture{
		genres: store.Genres(),
		movies: &countingMovies{MovieStore: store.Movies()},
		up:     &fakeUploader{},
		events: &recordingPublisher{},
	}
	f.svc = NewCatalog(f.movies, f.genres, f.up, f.events, nil)
	f.svc.now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }
	return f
}

func (f *catalogFixture) seed(t *testing.T, name string, tiers ...string) *model.Movie {
	t.Helper()
	m, err := f.svc.Create(context.Background(), admin,
		MovieInput{Name: name, Year: 2000, Tier: joinTiers(tiers), Rating: 5},
		[]byte(name+".jpg"), []byte(name+".mp4"))
	require.NoError(t, err)
	return m
}

func joinTiers(ts []string) string {
	out := ""
	for i, t := range ts {
		if i > 0 {
			out += ","
		}
		out += t
	}
	return out
}

func movieIDs(ms []model.Movie) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.ID
	}
	sort.Strings(out)
	return out
}

func TestListAccessibleMatchesTierIntersection(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	all := []*model.Movie{
		f.seed(t, "s", "silver"),
		f.seed(t, "g", "gold"),
		f.seed(t, "p", "platinum"),
		f.seed(t, "ps", "platinum", "silver"),
		f.seed(t, "gp", "gold", "platinum"),
	}

	for _, r := range []Requester{silverU, goldU, platU} {
		acc, err := tier.Accessible(r.Tier)
		require.NoError(t, err)
		var want []string
		for _, m := range all {
			if tier.Intersects(m.Tier, acc) {
				want = append(want, m.ID)
			}
		}
		sort.Strings(want)

		got, err := f.svc.ListAccessible(ctx, r)
		require.NoError(t, err)
		assert.Equal(t, want, movieIDs(got), "tier %s", r.Tier)
	}
}

func TestListOperationsRejectInvalidTierWithoutStoreAccess(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	ops := map[string]func(context.Context, Requester) ([]model.Movie, error){
		"all":    f.svc.ListAccessible,
		"newest": f.svc.ListNewest,
		"top":    f.svc.ListTopRated,
		"random": f.svc.ListRandom,
	}
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			_, err := op(ctx, bogusU)
			assert.ErrorIs(t, err, ErrInvalidTier)
			_, err = op(ctx, Requester{ID: "x"})
			assert.ErrorIs(t, err, ErrInvalidTier)
			_, err = op(ctx, anon)
			assert.ErrorIs(t, err, ErrUnauthenticated)
		})
	}
	assert.Zero(t, f.movies.calls.Load())
}

func TestListNewestTopAndRandomAreCapped(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	for i := 0; i < 12; i++ {
		_, err := f.svc.Create(ctx, admin,
			MovieInput{Name: "m", Year: 2000 + i, Tier: "silver", Rating: float64(i % 10)},
			[]byte("i"), []byte("v"))
		require.NoError(t, err)
	}

	newest, err := f.svc.ListNewest(ctx, silverU)
	require.NoError(t, err)
	assert.Len(t, newest, ListLimit)

	top, err := f.svc.ListTopRated(ctx, silverU)
	require.NoError(t, err)
	require.Len(t, top, ListLimit)
	for i := 1; i < len(top); i++ {
		assert.GreaterOrEqual(t, top[i-1].Rating, top[i].Rating)
	}

	random, err := f.svc.ListRandom(ctx, silverU)
	require.NoError(t, err)
	assert.Len(t, random, ListLimit)
}

func TestCreateRequiresBothAssets(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	in := MovieInput{Name: "Solo", Year: 2018, Tier: "gold"}

	_, err := f.svc.Create(ctx, admin, in, []byte("img"), nil)
	assert.ErrorIs(t, err, ErrMissingAsset)
	_, err = f.svc.Create(ctx, admin, in, nil, []byte("vid"))
	assert.ErrorIs(t, err, ErrMissingAsset)

	all, err := f.movies.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Empty(t, f.up.calls)
}

func TestCreateInceptionScenario(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()

	m, err := f.svc.Create(ctx, admin, MovieInput{
		Name: "Inception", Year: 2010, Tier: "gold, silver", Cast: "Leo, Joseph", Rating: 8.8,
	}, []byte("inception.jpg"), []byte("inception.mp4"))
	require.NoError(t, err)

	assert.Equal(t, []string{"Leo", "Joseph"}, m.Cast)
	assert.Equal(t, []string{"gold", "silver"}, m.Tier)
	assert.Equal(t, 0, m.NumReviews)
	assert.Equal(t, "https://cdn.test/image/inception.jpg", m.Image)
	assert.Equal(t, "https://cdn.test/video/inception.mp4", m.Video)
	assert.ElementsMatch(t, []string{"image", "video"}, []string{string(f.up.calls[0]), string(f.up.calls[1])})

	stored, err := f.svc.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.Cast, stored.Cast)
	assert.Equal(t, m.Tier, stored.Tier)

	silverList, err := f.svc.ListAccessible(ctx, silverU)
	require.NoError(t, err)
	assert.Contains(t, movieIDs(silverList), m.ID)

	goldList, err := f.svc.ListAccessible(ctx, goldU)
	require.NoError(t, err)
	assert.Contains(t, movieIDs(goldList), m.ID)

	assert.Equal(t, []string{queue.MovieCreated}, f.events.types())
}

func TestCreateGoldOnlyHiddenFromSilver(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	m := f.seed(t, "Tenet", "gold")

	silverList, err := f.svc.ListAccessible(ctx, silverU)
	require.NoError(t, err)
	assert.NotContains(t, movieIDs(silverList), m.ID)

	goldList, err := f.svc.ListAccessible(ctx, goldU)
	require.NoError(t, err)
	assert.Contains(t, movieIDs(goldList), m.ID)
}

func TestCreateRejections(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	img, vid := []byte("i"), []byte("v")
	good := MovieInput{Name: "A", Year: 2001, Tier: "silver"}

	_, err := f.svc.Create(ctx, silverU, good, img, vid)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.svc.Create(ctx, anon, good, img, vid)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	bad := good
	bad.Tier = "silver, bronze"
	_, err = f.svc.Create(ctx, admin, bad, img, vid)
	assert.ErrorIs(t, err, ErrInvalidTier)

	bad = good
	bad.Tier = " , "
	_, err = f.svc.Create(ctx, admin, bad, img, vid)
	assert.ErrorIs(t, err, ErrInvalidTier)

	bad = good
	bad.Name = "  "
	_, err = f.svc.Create(ctx, admin, bad, img, vid)
	assert.ErrorIs(t, err, ErrValidation)

	bad = good
	bad.Year = 0
	_, err = f.svc.Create(ctx, admin, bad, img, vid)
	assert.ErrorIs(t, err, ErrValidation)

	assert.Empty(t, f.up.calls)
}

func TestCreateUploadFailurePersistsNothing(t *testing.T) {
	f := newCatalogFixture()
	f.up.fail = map[media.Kind]bool{media.Video: true}
	ctx := context.Background()

	_, err := f.svc.Create(ctx, admin, MovieInput{Name: "A", Year: 2001, Tier: "silver"}, []byte("i"), []byte("v"))
	assert.ErrorIs(t, err, ErrUpstreamUpload)

	all, err := f.movies.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Empty(t, f.events.types())
}

func TestUpdateChangesOnlySuppliedFields(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	crime := &model.Genre{Name: "Crime"}
	require.NoError(t, f.genres.Create(ctx, crime))
	orig, err := f.svc.Create(ctx, admin, MovieInput{
		Name: "Heat", Year: 1995, Genre: crime.ID, Detail: "LA crime", Cast: "Al, Bob", Tier: "gold", Rating: 8.3,
	}, []byte("heat.jpg"), []byte("heat.mp4"))
	require.NoError(t, err)

	name := "Heat (Remastered)"
	cast := " Al ,Robert,  Val "
	got, err := f.svc.Update(ctx, admin, orig.ID, MovieUpdate{Name: &name, Cast: &cast}, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, name, got.Name)
	assert.Equal(t, []string{"Al", "Robert", "Val"}, got.Cast)
	assert.Equal(t, orig.Year, got.Year)
	assert.Equal(t, orig.Genre, got.Genre)
	assert.Equal(t, orig.Detail, got.Detail)
	assert.Equal(t, orig.Tier, got.Tier)
	assert.Equal(t, orig.Rating, got.Rating)
	assert.Equal(t, orig.Image, got.Image)
	assert.Equal(t, orig.Video, got.Video)
	assert.Len(t, f.up.calls, 2, "no upload for a metadata-only edit")

	stored, err := f.svc.Get(ctx, orig.ID)
	require.NoError(t, err)
	assert.Equal(t, got.Name, stored.Name)
	assert.Equal(t, orig.Year, stored.Year)
}

func TestUpdateReplacesSuppliedAssetOnly(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	orig := f.seed(t, "Up", "silver")

	got, err := f.svc.Update(ctx, admin, orig.ID, MovieUpdate{}, []byte("new.jpg"), nil)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/image/new.jpg", got.Image)
	assert.Equal(t, orig.Video, got.Video)
}

func TestUpdateFailuresLeaveEntryUntouched(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	orig := f.seed(t, "Up", "silver")

	f.up.fail = map[media.Kind]bool{media.Video: true}
	name := "Changed"
	_, err := f.svc.Update(ctx, admin, orig.ID, MovieUpdate{Name: &name}, []byte("a.jpg"), []byte("a.mp4"))
	assert.ErrorIs(t, err, ErrUpstreamUpload)

	badTier := "gold, copper"
	_, err = f.svc.Update(ctx, admin, orig.ID, MovieUpdate{Tier: &badTier}, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidTier)

	stored, err := f.svc.Get(ctx, orig.ID)
	require.NoError(t, err)
	assert.Equal(t, orig.Name, stored.Name)
	assert.Equal(t, orig.Image, stored.Image)
	assert.Equal(t, orig.Tier, stored.Tier)

	_, err = f.svc.Update(ctx, admin, "missing", MovieUpdate{Name: &name}, nil, nil)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.Update(ctx, goldU, orig.ID, MovieUpdate{Name: &name}, nil, nil)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestDeleteThenGetIsNotFound(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	m := f.seed(t, "Gone", "silver")

	require.NoError(t, f.svc.Delete(ctx, admin, m.ID))
	_, err := f.svc.Get(ctx, m.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.svc.Delete(ctx, admin, m.ID), ErrNotFound)
	assert.ErrorIs(t, f.svc.Delete(ctx, silverU, m.ID), ErrForbidden)
	assert.Equal(t, []string{queue.MovieCreated, queue.MovieDeleted}, f.events.types())
}

func TestGetIgnoresTier(t *testing.T) {
	f := newCatalogFixture()
	m := f.seed(t, "Vault", "platinum")
	got, err := f.svc.Get(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Vault", got.Name)
}

func TestReviewScenario(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	m := f.seed(t, "M", "silver")

	require.NoError(t, f.svc.AddReview(ctx, silverU, m.ID, "Great film"))
	got, err := f.svc.Get(ctx, m.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.NumReviews)
	require.Len(t, got.Reviews, 1)
	rev := got.Reviews[0]
	assert.Equal(t, silverU.ID, rev.User)
	assert.Equal(t, silverU.Username, rev.Name)
	assert.Equal(t, "Great film", rev.Comment)
	assert.NotEmpty(t, rev.ID)
	assert.Equal(t, f.svc.now(), rev.CreatedAt)

	err = f.svc.AddReview(ctx, silverU, m.ID, "Still great")
	assert.ErrorIs(t, err, ErrDuplicateReview)
	got, err = f.svc.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.NumReviews)

	require.NoError(t, f.svc.DeleteReview(ctx, admin, m.ID, rev.ID))
	got, err = f.svc.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.NumReviews)
	assert.Empty(t, got.Reviews)

	assert.Equal(t, []string{queue.MovieCreated, queue.ReviewAdded, queue.ReviewDeleted}, f.events.types())
}

func TestAddReviewErrors(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	m := f.seed(t, "M", "silver")

	assert.ErrorIs(t, f.svc.AddReview(ctx, silverU, "missing", "hi"), ErrNotFound)
	assert.ErrorIs(t, f.svc.AddReview(ctx, silverU, m.ID, "   "), ErrValidation)
	assert.ErrorIs(t, f.svc.AddReview(ctx, anon, m.ID, "hi"), ErrUnauthenticated)

	require.NoError(t, f.svc.AddReview(ctx, goldU, m.ID, "one"))
	require.NoError(t, f.svc.AddReview(ctx, platU, m.ID, "two"))
	got, err := f.svc.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.NumReviews)
}

func TestDeleteReviewMissingLeavesSequence(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	m := f.seed(t, "M", "silver")
	require.NoError(t, f.svc.AddReview(ctx, goldU, m.ID, "one"))

	err := f.svc.DeleteReview(ctx, admin, m.ID, "no-such-review")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.EqualError(t, err, "comment not found")
	assert.ErrorIs(t, f.svc.DeleteReview(ctx, admin, "missing", "x"), ErrNotFound)
	assert.ErrorIs(t, f.svc.DeleteReview(ctx, goldU, m.ID, "x"), ErrForbidden)

	got, err := f.svc.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.NumReviews)
	assert.Len(t, got.Reviews, 1)
}

func TestListReviewsFlattens(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	a := f.seed(t, "A", "silver")
	b := f.seed(t, "B", "gold")
	require.NoError(t, f.svc.AddReview(ctx, goldU, a.ID, "on a"))
	require.NoError(t, f.svc.AddReview(ctx, goldU, b.ID, "on b"))
	require.NoError(t, f.svc.AddReview(ctx, platU, b.ID, "also b"))

	entries, err := f.svc.ListReviews(ctx, admin)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	byMovie := map[string]int{}
	for _, e := range entries {
		byMovie[e.MovieName]++
	}
	assert.Equal(t, map[string]int{"A": 1, "B": 2}, byMovie)

	_, err = f.svc.ListReviews(ctx, goldU)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestPublishFailureIsNotReturned(t *testing.T) {
	f := newCatalogFixture()
	f.events.err = assert.AnError
	m := f.seed(t, "M", "silver")
	assert.NotEmpty(t, m.ID)
}

func TestGenreReferenceMustExist(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, admin, MovieInput{Name: "Heat", Year: 1995, Genre: "no-such-genre", Tier: "gold"},
		[]byte("heat.jpg"), []byte("heat.mp4"))
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, f.up.calls, "nothing uploaded for an unknown genre")

	m := f.seed(t, "Heat", "gold")
	bogus := "no-such-genre"
	_, err = f.svc.Update(ctx, admin, m.ID, MovieUpdate{Genre: &bogus}, nil, nil)
	assert.ErrorIs(t, err, ErrValidation)

	got, err := f.svc.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Genre)
}
