package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/iliyamo/tiered-catalog/internal/model"
)

type reviewDoc struct {
	ID        string             `bson:"_id"`
	User      primitive.ObjectID `bson:"user"`
	Name      string             `bson:"name"`
	Comment   string             `bson:"comment"`
	CreatedAt time.Time          `bson:"created_at"`
}

type movieDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Name       string             `bson:"name"`
	Year       int                `bson:"year"`
	Genre      string             `bson:"genre"`
	Detail     string             `bson:"detail"`
	Cast       []string           `bson:"cast"`
	Rating     float64            `bson:"rating"`
	Tier       []string           `bson:"tier"`
	Image      string             `bson:"image"`
	Video      string             `bson:"video"`
	NumReviews int                `bson:"num_reviews"`
	Reviews    []reviewDoc        `bson:"reviews"`
	CreatedAt  time.Time          `bson:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at"`
}

func (d movieDoc) toModel() model.Movie {
	m := model.Movie{
		ID:         d.ID.Hex(),
		Name:       d.Name,
		Year:       d.Year,
		Genre:      d.Genre,
		Detail:     d.Detail,
		Cast:       nonNil(d.Cast),
		Rating:     d.Rating,
		Tier:       nonNil(d.Tier),
		Image:      d.Image,
		Video:      d.Video,
		NumReviews: d.NumReviews,
		Reviews:    make([]model.Review, 0, len(d.Reviews)),
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
	for _, r := range d.Reviews {
		m.Reviews = append(m.Reviews, model.Review{
			ID:        r.ID,
			User:      r.User.Hex(),
			Name:      r.Name,
			Comment:   r.Comment,
			CreatedAt: r.CreatedAt,
		})
	}
	return m
}

func movieDocFrom(m *model.Movie) (movieDoc, error) {
	d := movieDoc{
		Name:       m.Name,
		Year:       m.Year,
		Genre:      m.Genre,
		Detail:     m.Detail,
		Cast:       nonNil(m.Cast),
		Rating:     m.Rating,
		Tier:       nonNil(m.Tier),
		Image:      m.Image,
		Video:      m.Video,
		NumReviews: len(m.Reviews),
		Reviews:    make([]reviewDoc, 0, len(m.Reviews)),
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
	if m.ID != "" {
		oid, err := primitive.ObjectIDFromHex(m.ID)
		if err != nil {
			return movieDoc{}, ErrMovieNotFound
		}
		d.ID = oid
	}
	for _, r := range m.Reviews {
		uid, err := primitive.ObjectIDFromHex(r.User)
		if err != nil {
			return movieDoc{}, ErrUserNotFound
		}
		d.Reviews = append(d.Reviews, reviewDoc{
			ID:        r.ID,
			User:      uid,
			Name:      r.Name,
			Comment:   r.Comment,
			CreatedAt: r.CreatedAt,
		})
	}
	return d, nil
}

// MongoMovieRepo stores movies with their reviews embedded in a single
// document of the `movies` collection.
type MongoMovieRepo struct {
	coll *mongo.Collection
}

func NewMongoMovieRepo(db *mongo.Database) *MongoMovieRepo {
	return &MongoMovieRepo{coll: db.Collection("movies")}
}

func tierFilter(tiers []string) bson.M {
	return bson.M{"tier": bson.M{"$in": tiers}}
}

// ListByTiers returns movies whose tier list intersects tiers. A positive
// limit truncates the result after sorting.
func (r *MongoMovieRepo) ListByTiers(ctx context.Context, tiers []string, order Order, limit int) ([]model.Movie, error) {
	opts := options.Find()
	switch order {
	case OrderNewest:
		opts.SetSort(bson.D{{Key: "created_at", Value: -1}})
	case OrderTopRated:
		opts.SetSort(bson.D{{Key: "rating", Value: -1}})
	}
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := r.coll.Find(ctx, tierFilter(tiers), opts)
	if err != nil {
		return nil, err
	}
	return decodeMovies(ctx, cur)
}

// SampleByTiers picks up to n random movies among those visible to tiers.
func (r *MongoMovieRepo) SampleByTiers(ctx context.Context, tiers []string, n int) ([]model.Movie, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: tierFilter(tiers)}},
		{{Key: "$sample", Value: bson.M{"size": n}}},
	}
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	return decodeMovies(ctx, cur)
}

// ListAll returns every movie regardless of tier.
func (r *MongoMovieRepo) ListAll(ctx context.Context) ([]model.Movie, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	return decodeMovies(ctx, cur)
}

func (r *MongoMovieRepo) GetByID(ctx context.Context, id string) (*model.Movie, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrMovieNotFound
	}
	var d movieDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}
	m := d.toModel()
	return &m, nil
}

// Create inserts m and fills in its ID and timestamps.
func (r *MongoMovieRepo) Create(ctx context.Context, m *model.Movie) error {
	now := time.Now().UTC()
	m.ID = ""
	m.CreatedAt, m.UpdatedAt = now, now
	d, err := movieDocFrom(m)
	if err != nil {
		return err
	}
	d.ID = primitive.NewObjectID()
	if _, err := r.coll.InsertOne(ctx, d); err != nil {
		return err
	}
	m.ID = d.ID.Hex()
	m.NumReviews = d.NumReviews
	return nil
}

// Replace overwrites the stored document with m. There is no version check;
// the last writer wins.
func (r *MongoMovieRepo) Replace(ctx context.Context, m *model.Movie) error {
	m.UpdatedAt = time.Now().UTC()
	d, err := movieDocFrom(m)
	if err != nil {
		return err
	}
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": d.ID}, d)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrMovieNotFound
	}
	m.NumReviews = d.NumReviews
	return nil
}

// Delete removes the movie document and with it every embedded review.
func (r *MongoMovieRepo) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrMovieNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrMovieNotFound
	}
	return nil
}

func decodeMovies(ctx context.Context, cur *mongo.Cursor) ([]model.Movie, error) {
	var docs []movieDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]model.Movie, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toModel())
	}
	return out, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
