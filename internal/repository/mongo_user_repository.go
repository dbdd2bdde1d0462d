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

type userDoc struct {
	ID                         primitive.ObjectID `bson:"_id,omitempty"`
	Username                   string             `bson:"username"`
	Email                      string             `bson:"email"`
	PasswordHash               string             `bson:"password"`
	Tier                       string             `bson:"tier"`
	IsAdmin                    bool               `bson:"is_admin"`
	Verified                   bool               `bson:"verified"`
	VerificationToken          string             `bson:"verification_token,omitempty"`
	VerificationTokenExpiresAt *time.Time         `bson:"verification_token_expires_at,omitempty"`
	ResetPasswordToken         string             `bson:"reset_password_token,omitempty"`
	ResetPasswordExpiresAt     *time.Time         `bson:"reset_password_expires_at,omitempty"`
	CreatedAt                  time.Time          `bson:"created_at"`
	UpdatedAt                  time.Time          `bson:"updated_at"`
}

func (d userDoc) toModel() model.User {
	return model.User{
		ID:                         d.ID.Hex(),
		Username:                   d.Username,
		Email:                      d.Email,
		PasswordHash:               d.PasswordHash,
		Tier:                       d.Tier,
		IsAdmin:                    d.IsAdmin,
		Verified:                   d.Verified,
		VerificationToken:          d.VerificationToken,
		VerificationTokenExpiresAt: d.VerificationTokenExpiresAt,
		ResetPasswordToken:         d.ResetPasswordToken,
		ResetPasswordExpiresAt:     d.ResetPasswordExpiresAt,
		CreatedAt:                  d.CreatedAt,
		UpdatedAt:                  d.UpdatedAt,
	}
}

func userDocFrom(u *model.User) userDoc {
	return userDoc{
		Username:                   u.Username,
		Email:                      u.Email,
		PasswordHash:               u.PasswordHash,
		Tier:                       u.Tier,
		IsAdmin:                    u.IsAdmin,
		Verified:                   u.Verified,
		VerificationToken:          u.VerificationToken,
		VerificationTokenExpiresAt: u.VerificationTokenExpiresAt,
		ResetPasswordToken:         u.ResetPasswordToken,
		ResetPasswordExpiresAt:     u.ResetPasswordExpiresAt,
		CreatedAt:                  u.CreatedAt,
		UpdatedAt:                  u.UpdatedAt,
	}
}

// MongoUserRepo is the credential store backed by the `users` collection.
// Email uniqueness relies on the unique index created at startup.
type MongoUserRepo struct {
	coll *mongo.Collection
}

func NewMongoUserRepo(db *mongo.Database) *MongoUserRepo {
	return &MongoUserRepo{coll: db.Collection("users")}
}

// Create inserts u with a normalised email and fills in ID and timestamps.
func (r *MongoUserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = normalizeEmail(u.Email)
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	d := userDocFrom(u)
	d.ID = primitive.NewObjectID()
	if _, err := r.coll.InsertOne(ctx, d); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrEmailExists
		}
		return err
	}
	u.ID = d.ID.Hex()
	return nil
}

func (r *MongoUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": normalizeEmail(email)})
}

func (r *MongoUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *MongoUserRepo) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	var d userDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	u := d.toModel()
	return &u, nil
}

// Update replaces the stored user with u.
func (r *MongoUserRepo) Update(ctx context.Context, u *model.User) error {
	oid, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		return ErrUserNotFound
	}
	u.Email = normalizeEmail(u.Email)
	u.UpdatedAt = time.Now().UTC()
	d := userDocFrom(u)
	d.ID = oid
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": oid}, d)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrEmailExists
		}
		return err
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

// List returns all users ordered by creation time.
func (r *MongoUserRepo) List(ctx context.Context) ([]model.User, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]model.User, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toModel())
	}
	return out, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
