package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/tiered-catalog/internal/media"
	"github.com/iliyamo/tiered-catalog/internal/metrics"
	"github.com/iliyamo/tiered-catalog/internal/model"
	"github.com/iliyamo/tiered-catalog/internal/queue"
	"github.com/iliyamo/tiered-catalog/internal/repository"
	"github.com/iliyamo/tiered-catalog/internal/tier"
)

// ListLimit caps the newest, top-rated and random listings.
const ListLimit = 10

// Catalog implements the movie operations and the embedded review
// sub-resource.
type Catalog struct {
	movies   MovieStore
	genres   GenreStore
	uploader media.Uploader
	events   EventPublisher
	log      *zap.Logger

	now   func() time.Time
	newID func() string
}

// NewCatalog wires the catalog service. events may be nil when publishing
// is disabled; genres may be nil to accept any genre reference.
func NewCatalog(movies MovieStore, genres GenreStore, up media.Uploader, events EventPublisher, log *zap.Logger) *Catalog {
	if events == nil {
		events = queue.Discard{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Catalog{
		movies:   movies,
		genres:   genres,
		uploader: up,
		events:   events,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

// MovieInput carries the create form. Cast and Tier are comma separated.
type MovieInput struct {
	Name   string
	Year   int
	Genre  string
	Detail string
	Cast   string
	Tier   string
	Rating float64
}

// MovieUpdate carries an edit form. A nil field keeps its stored value.
type MovieUpdate struct {
	Name   *string
	Year   *int
	Genre  *string
	Detail *string
	Cast   *string
	Tier   *string
	Rating *float64
}

// ReviewEntry is a review flattened together with the movie it belongs to.
type ReviewEntry struct {
	MovieID   string `json:"movieId"`
	MovieName string `json:"movieName"`
	model.Review
}

func accessibleTiers(r Requester) ([]string, error) {
	if err := requireUser(r); err != nil {
		return nil, err
	}
	return tier.Accessible(r.Tier)
}

// ListAccessible returns every movie whose tier tags intersect the tiers
// visible to r.
func (s *Catalog) ListAccessible(ctx context.Context, r Requester) ([]model.Movie, error) {
	tiers, err := accessibleTiers(r)
	if err != nil {
		return nil, err
	}
	return s.movies.ListByTiers(ctx, tiers, repository.OrderNone, 0)
}

// ListNewest returns the ListLimit most recently created accessible movies.
func (s *Catalog) ListNewest(ctx context.Context, r Requester) ([]model.Movie, error) {
	tiers, err := accessibleTiers(r)
	if err != nil {
		return nil, err
	}
	return s.movies.ListByTiers(ctx, tiers, repository.OrderNewest, ListLimit)
}

// ListTopRated returns the ListLimit highest rated accessible movies.
func (s *Catalog) ListTopRated(ctx context.Context, r Requester) ([]model.Movie, error) {
	tiers, err := accessibleTiers(r)
	if err != nil {
		return nil, err
	}
	return s.movies.ListByTiers(ctx, tiers, repository.OrderTopRated, ListLimit)
}

// ListRandom returns up to ListLimit accessible movies sampled without
// replacement.
func (s *Catalog) ListRandom(ctx context.Context, r Requester) ([]model.Movie, error) {
	tiers, err := accessibleTiers(r)
	if err != nil {
		return nil, err
	}
	return s.movies.SampleByTiers(ctx, tiers, ListLimit)
}

// Get returns a single movie. No tier check is applied: detail pages are
// reachable by id regardless of the viewer's tier.
func (s *Catalog) Get(ctx context.Context, id string) (*model.Movie, error) {
	m, err := s.movies.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	return m, nil
}

// Create uploads both assets concurrently and persists the movie only
// after both uploads succeed.
func (s *Catalog) Create(ctx context.Context, r Requester, in MovieInput, image, video []byte) (*model.Movie, error) {
	if err := requireAdmin(r); err != nil {
		return nil, err
	}
	if len(image) == 0 || len(video) == 0 {
		return nil, ErrMissingAsset
	}
	m := &model.Movie{
		Name:    strings.TrimSpace(in.Name),
		Year:    in.Year,
		Genre:   strings.TrimSpace(in.Genre),
		Detail:  in.Detail,
		Cast:    tier.SplitList(in.Cast),
		Rating:  in.Rating,
		Reviews: []model.Review{},
	}
	tags, err := tier.ParseTags(tier.SplitList(in.Tier))
	if err != nil {
		return nil, err
	}
	m.Tier = tags
	if err := validateMovie(m); err != nil {
		return nil, err
	}
	if err := s.checkGenre(ctx, m.Genre); err != nil {
		return nil, err
	}

	pair, err := s.upload(ctx, image, video)
	if err != nil {
		return nil, err
	}
	m.Image = pair.Image.URL
	m.Video = pair.Video.URL

	if err := s.movies.Create(ctx, m); err != nil {
		s.log.Error("persist movie failed; uploaded assets are orphaned",
			zap.String("image", m.Image), zap.String("video", m.Video), zap.Error(err))
		return nil, fmt.Errorf("create movie: %w", err)
	}
	s.publish(ctx, queue.MovieCreated, m, "", r.ID)
	return m, nil
}

// Update applies the supplied fields and any new assets. Nothing is
// written unless every supplied upload succeeded.
func (s *Catalog) Update(ctx context.Context, r Requester, id string, up MovieUpdate, image, video []byte) (*model.Movie, error) {
	if err := requireAdmin(r); err != nil {
		return nil, err
	}
	m, err := s.movies.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}

	if up.Name != nil {
		m.Name = strings.TrimSpace(*up.Name)
	}
	if up.Year != nil {
		m.Year = *up.Year
	}
	if up.Genre != nil {
		m.Genre = strings.TrimSpace(*up.Genre)
		if err := s.checkGenre(ctx, m.Genre); err != nil {
			return nil, err
		}
	}
	if up.Detail != nil {
		m.Detail = *up.Detail
	}
	if up.Cast != nil {
		m.Cast = tier.SplitList(*up.Cast)
	}
	if up.Tier != nil {
		tags, err := tier.ParseTags(tier.SplitList(*up.Tier))
		if err != nil {
			return nil, err
		}
		m.Tier = tags
	}
	if up.Rating != nil {
		m.Rating = *up.Rating
	}
	if err := validateMovie(m); err != nil {
		return nil, err
	}

	if len(image) == 0 {
		image = nil
	}
	if len(video) == 0 {
		video = nil
	}
	if image != nil || video != nil {
		pair, err := s.upload(ctx, image, video)
		if err != nil {
			return nil, err
		}
		if pair.Image != nil {
			m.Image = pair.Image.URL
		}
		if pair.Video != nil {
			m.Video = pair.Video.URL
		}
	}

	if err := s.movies.Replace(ctx, m); err != nil {
		return nil, storeErr(err)
	}
	s.publish(ctx, queue.MovieUpdated, m, "", r.ID)
	return m, nil
}

// checkGenre verifies that a non-empty genre id names a stored genre.
func (s *Catalog) checkGenre(ctx context.Context, id string) error {
	if id == "" || s.genres == nil {
		return nil
	}
	if _, err := s.genres.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrGenreNotFound) {
			return invalid("unknown genre %q", id)
		}
		return err
	}
	return nil
}

// Delete removes a movie together with its reviews.
func (s *Catalog) Delete(ctx context.Context, r Requester, id string) error {
	if err := requireAdmin(r); err != nil {
		return err
	}
	if err := s.movies.Delete(ctx, id); err != nil {
		return storeErr(err)
	}
	s.publish(ctx, queue.MovieDeleted, &model.Movie{ID: id}, "", r.ID)
	return nil
}

// AddReview appends r's review to the movie. A user may review a movie
// once; a failed add leaves the review list unchanged.
func (s *Catalog) AddReview(ctx context.Context, r Requester, movieID, comment string) error {
	if err := requireUser(r); err != nil {
		return err
	}
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return invalid("comment is required")
	}
	m, err := s.movies.GetByID(ctx, movieID)
	if err != nil {
		return storeErr(err)
	}
	if m.ReviewedBy(r.ID) {
		return ErrDuplicateReview
	}
	rev := model.Review{
		ID:        s.newID(),
		User:      r.ID,
		Name:      r.Username,
		Comment:   comment,
		CreatedAt: s.now(),
	}
	m.Reviews = append(m.Reviews, rev)
	m.NumReviews = len(m.Reviews)
	if err := s.movies.Replace(ctx, m); err != nil {
		return storeErr(err)
	}
	s.publish(ctx, queue.ReviewAdded, m, rev.ID, r.ID)
	return nil
}

// DeleteReview removes one review from a movie.
func (s *Catalog) DeleteReview(ctx context.Context, r Requester, movieID, reviewID string) error {
	if err := requireAdmin(r); err != nil {
		return err
	}
	m, err := s.movies.GetByID(ctx, movieID)
	if err != nil {
		return storeErr(err)
	}
	i := m.ReviewIndex(reviewID)
	if i < 0 {
		return errReviewNotFound
	}
	m.Reviews = append(m.Reviews[:i:i], m.Reviews[i+1:]...)
	m.NumReviews = len(m.Reviews)
	if err := s.movies.Replace(ctx, m); err != nil {
		return storeErr(err)
	}
	s.publish(ctx, queue.ReviewDeleted, m, reviewID, r.ID)
	return nil
}

// ListReviews returns every review across the catalog for moderation.
func (s *Catalog) ListReviews(ctx context.Context, r Requester) ([]ReviewEntry, error) {
	if err := requireAdmin(r); err != nil {
		return nil, err
	}
	movies, err := s.movies.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := []ReviewEntry{}
	for _, m := range movies {
		for _, rev := range m.Reviews {
			out = append(out, ReviewEntry{MovieID: m.ID, MovieName: m.Name, Review: rev})
		}
	}
	return out, nil
}

func (s *Catalog) upload(ctx context.Context, image, video []byte) (media.Pair, error) {
	pair, err := media.UploadPair(ctx, s.uploader, image, video, s.log)
	if err != nil {
		s.log.Warn("asset upload failed", zap.Bool("timeout", media.IsTimeout(err)), zap.Error(err))
		return media.Pair{}, fmt.Errorf("%w: %w", ErrUpstreamUpload, err)
	}
	return pair, nil
}

func (s *Catalog) publish(ctx context.Context, typ string, m *model.Movie, reviewID, actor string) {
	ev := queue.CatalogEvent{
		Type:       typ,
		MovieID:    m.ID,
		MovieName:  m.Name,
		ReviewID:   reviewID,
		ActorID:    actor,
		NumReviews: m.NumReviews,
		OccurredAt: s.now(),
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		metrics.CatalogEvents.WithLabelValues(typ, "error").Inc()
		s.log.Warn("publish catalog event failed", zap.String("type", typ), zap.String("movie_id", m.ID), zap.Error(err))
		return
	}
	metrics.CatalogEvents.WithLabelValues(typ, "ok").Inc()
}

func validateMovie(m *model.Movie) error {
	switch {
	case m.Name == "":
		return invalid("name is required")
	case m.Year <= 0:
		return invalid("year must be a positive integer")
	case m.Rating < 0 || m.Rating > 10:
		return invalid("rating must be between 0 and 10")
	}
	return nil
}

func storeErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrMovieNotFound):
		return errMovieNotFound
	case errors.Is(err, repository.ErrUserNotFound):
		return errUserNotFound
	case errors.Is(err, repository.ErrGenreNotFound):
		return errGenreNotFound
	case errors.Is(err, repository.ErrEmailExists):
		return ErrEmailExists
	case errors.Is(err, repository.ErrGenreExists):
		return ErrGenreExists
	}
	return err
}
