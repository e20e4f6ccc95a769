package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yashrajoria/shopswift/services/auth-service/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("username or email already taken")
)

type UserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{collection: db.Collection("users")}
}

func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	return err
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	_, err := r.collection.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByLogin matches either the email or the username; empty values are ignored.
func (r *UserRepository) FindByLogin(ctx context.Context, email, username string) (*models.User, error) {
	or := bson.A{}
	if email != "" {
		or = append(or, bson.M{"email": email})
	}
	if username != "" {
		or = append(or, bson.M{"username": username})
	}
	if len(or) == 0 {
		return nil, ErrNotFound
	}
	return r.findOne(ctx, bson.M{"$or": or})
}

func (r *UserRepository) AddAddress(ctx context.Context, userID string, addr models.Address) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{
			"$push": bson.M{"addresses": addr},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
	)
	return matched(res, err)
}

// UpdateAddress replaces the fields of the address with addr.ID in place.
func (r *UserRepository) UpdateAddress(ctx context.Context, userID string, addr models.Address) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": userID, "addresses._id": addr.ID},
		bson.M{"$set": bson.M{
			"addresses.$.street":  addr.Street,
			"addresses.$.city":    addr.City,
			"addresses.$.state":   addr.State,
			"addresses.$.pincode": addr.Pincode,
			"addresses.$.country": addr.Country,
			"updated_at":          time.Now().UTC(),
		}},
	)
	return matched(res, err)
}

func (r *UserRepository) RemoveAddress(ctx context.Context, userID, addressID string) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": userID, "addresses._id": addressID},
		bson.M{
			"$pull": bson.M{"addresses": bson.M{"_id": addressID}},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
	)
	return matched(res, err)
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func matched(res *mongo.UpdateResult, err error) error {
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
