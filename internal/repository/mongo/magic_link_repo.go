package mongo

import (
	"context"
	"errors"
	"time"

	"stepladder/practice-app/internal/domain"
	"stepladder/practice-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const magicLinkCollectionName = "client_magic_links"

// mongoMagicLinkRepository implements repository.MagicLinkRepository
type mongoMagicLinkRepository struct {
	collection *mongo.Collection
}

// NewMongoMagicLinkRepository creates a new magic link repository backed by MongoDB.
func NewMongoMagicLinkRepository(db *mongo.Database) repository.MagicLinkRepository {
	return &mongoMagicLinkRepository{
		collection: db.Collection(magicLinkCollectionName),
	}
}

func (r *mongoMagicLinkRepository) Create(ctx context.Context, link *domain.MagicLink) (primitive.ObjectID, error) {
	if link.ClientID == primitive.NilObjectID || link.Token == "" {
		return primitive.NilObjectID, errors.New("magic link requires clientId and token")
	}

	link.ID = primitive.NewObjectID()
	link.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, link)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted magic link ID")
	}
	return insertedID, nil
}

func (r *mongoMagicLinkRepository) GetActiveByToken(ctx context.Context, token string) (*domain.MagicLink, error) {
	var link domain.MagicLink
	filter := bson.M{"token": token, "isActive": true}
	err := r.collection.FindOne(ctx, filter).Decode(&link)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &link, nil
}

func (r *mongoMagicLinkRepository) DeactivateForClient(ctx context.Context, clientID primitive.ObjectID) error {
	filter := bson.M{"clientId": clientID, "isActive": true}
	update := bson.M{"$set": bson.M{"isActive": false}}
	_, err := r.collection.UpdateMany(ctx, filter, update)
	return err
}

func (r *mongoMagicLinkRepository) TouchLastUsed(ctx context.Context, token string) error {
	filter := bson.M{"token": token}
	update := bson.M{"$set": bson.M{"lastUsedAt": time.Now().UTC()}}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureMagicLinkIndexes creates necessary indexes for the client_magic_links collection.
func EnsureMagicLinkIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "isActive", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
