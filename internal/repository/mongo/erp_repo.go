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

const (
	hierarchyItemCollectionName = "erp_hierarchy_items"
	exposureRunCollectionName   = "erp_exposure_runs"
)

type mongoHierarchyItemRepository struct {
	collection *mongo.Collection
}

// NewMongoHierarchyItemRepository creates a new hierarchy item repository backed by MongoDB.
func NewMongoHierarchyItemRepository(db *mongo.Database) repository.HierarchyItemRepository {
	return &mongoHierarchyItemRepository{
		collection: db.Collection(hierarchyItemCollectionName),
	}
}

func (r *mongoHierarchyItemRepository) CreateMany(ctx context.Context, items []*domain.HierarchyItem) error {
	if len(items) == 0 {
		return nil
	}

	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(items))
	for _, item := range items {
		if item.ClientID == primitive.NilObjectID {
			return errors.New("hierarchy item requires clientId")
		}
		item.ID = primitive.NewObjectID()
		item.CreatedAt = now
		item.UpdatedAt = now
		docs = append(docs, item)
	}

	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

func (r *mongoHierarchyItemRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.HierarchyItem, error) {
	var item domain.HierarchyItem
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *mongoHierarchyItemRepository) GetByClientID(ctx context.Context, clientID primitive.ObjectID) ([]domain.HierarchyItem, error) {
	var items []domain.HierarchyItem
	filter := bson.M{"clientId": clientID}
	findOptions := options.Find().SetSort(bson.D{{Key: "orderIndex", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *mongoHierarchyItemRepository) Update(ctx context.Context, id primitive.ObjectID, update repository.HierarchyItemUpdate) (*domain.HierarchyItem, error) {
	item, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if update.Label != nil {
		item.Label = *update.Label
		set["label"] = item.Label
	}
	if update.Description != nil {
		item.Description = *update.Description
		set["description"] = item.Description
	}
	if update.Category != nil {
		item.Category = *update.Category
		set["category"] = item.Category
	}
	if update.BaselineSUDS != nil {
		item.BaselineSUDS = *update.BaselineSUDS
		set["baselineSuds"] = item.BaselineSUDS
	}
	if update.OrderIndex != nil {
		item.OrderIndex = *update.OrderIndex
		set["orderIndex"] = item.OrderIndex
	}
	if update.IsActive != nil {
		item.IsActive = *update.IsActive
		set["isActive"] = item.IsActive
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return nil, err
	}
	if result.MatchedCount == 0 {
		return nil, repository.ErrNotFound
	}
	item.UpdatedAt = set["updatedAt"].(time.Time)
	return item, nil
}

type mongoExposureRunRepository struct {
	collection *mongo.Collection
}

// NewMongoExposureRunRepository creates a new exposure run repository backed by MongoDB.
func NewMongoExposureRunRepository(db *mongo.Database) repository.ExposureRunRepository {
	return &mongoExposureRunRepository{
		collection: db.Collection(exposureRunCollectionName),
	}
}

func (r *mongoExposureRunRepository) Create(ctx context.Context, run *domain.ExposureRun) (primitive.ObjectID, error) {
	if run.ClientID == primitive.NilObjectID || run.HierarchyItemID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("exposure run requires clientId and hierarchyItemId")
	}

	run.ID = primitive.NewObjectID()
	if run.OccurredAt.IsZero() {
		run.OccurredAt = time.Now().UTC()
	}

	result, err := r.collection.InsertOne(ctx, run)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted exposure run ID")
	}
	return insertedID, nil
}

func (r *mongoExposureRunRepository) GetByClientIDSince(ctx context.Context, clientID primitive.ObjectID, since time.Time) ([]domain.ExposureRun, error) {
	filter := bson.M{
		"clientId":   clientID,
		"occurredAt": bson.M{"$gte": since},
	}
	return r.find(ctx, filter)
}

func (r *mongoExposureRunRepository) GetByHierarchyItemID(ctx context.Context, itemID primitive.ObjectID) ([]domain.ExposureRun, error) {
	return r.find(ctx, bson.M{"hierarchyItemId": itemID})
}

func (r *mongoExposureRunRepository) find(ctx context.Context, filter bson.M) ([]domain.ExposureRun, error) {
	var runs []domain.ExposureRun
	findOptions := options.Find().SetSort(bson.D{{Key: "occurredAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &runs); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// EnsureHierarchyItemIndexes creates necessary indexes for the erp_hierarchy_items collection.
func EnsureHierarchyItemIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Ladder listing is sorted by orderIndex ascending.
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "orderIndex", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "therapistId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}

// EnsureExposureRunIndexes creates necessary indexes for the erp_exposure_runs collection.
func EnsureExposureRunIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Run listing is filtered by cutoff and sorted descending.
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "occurredAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "hierarchyItemId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
