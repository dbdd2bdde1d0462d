package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/iliyamo/tiered-catalog/internal/model"
)

type genreDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (d genreDoc) toModel() model.Genre {
	return model.Genre{ID: d.ID.Hex(), Name: d.Name, CreatedAt: d.CreatedAt}
}

// MongoGenreRepo stores genres in the `genres` collection.
type MongoGenreRepo struct {
	coll *mongo.Collection
}

func NewMongoGenreRepo(db *mongo.Database) *MongoGenreRepo {
	return &MongoGenreRepo{coll: db.Collection("genres")}
}

func (r *MongoGenreRepo) Create(ctx context.Context, g *model.Genre) error {
	g.Name = strings.TrimSpace(g.Name)
	g.CreatedAt = time.Now().UTC()
	d := genreDoc{ID: primitive.NewObjectID(), Name: g.Name, CreatedAt: g.CreatedAt}
	if _, err := r.coll.InsertOne(ctx, d); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrGenreExists
		}
		return err
	}
	g.ID = d.ID.Hex()
	return nil
}

func (r *MongoGenreRepo) GetByID(ctx context.Context, id string) (*model.Genre, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrGenreNotFound
	}
	var d genreDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrGenreNotFound
		}
		return nil, err
	}
	g := d.toModel()
	return &g, nil
}

func (r *MongoGenreRepo) List(ctx context.Context) ([]model.Genre, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []genreDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]model.Genre, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toModel())
	}
	return out, nil
}

func (r *MongoGenreRepo) Rename(ctx context.Context, id, name string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrGenreNotFound
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"name": strings.TrimSpace(name)}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrGenreExists
		}
		return err
	}
	if res.MatchedCount == 0 {
		return ErrGenreNotFound
	}
	return nil
}

func (r *MongoGenreRepo) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrGenreNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrGenreNotFound
	}
	return nil
}
