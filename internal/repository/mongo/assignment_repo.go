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

const assignmentCollectionName = "worksheet_assignments"

// mongoAssignmentRepository implements repository.AssignmentRepository.
//
// Lifecycle mutations are read-modify-write without a version field:
// concurrent writers to the same assignment are last-write-wins on the whole
// record, which is accepted for this domain (one client device per
// assignment at a time).
type mongoAssignmentRepository struct {
	collection *mongo.Collection
}

// NewMongoAssignmentRepository creates a new assignment repository backed by MongoDB.
func NewMongoAssignmentRepository(db *mongo.Database) repository.AssignmentRepository {
	return &mongoAssignmentRepository{
		collection: db.Collection(assignmentCollectionName),
	}
}

func (r *mongoAssignmentRepository) Create(ctx context.Context, assignment *domain.WorksheetAssignment) (primitive.ObjectID, error) {
	if assignment.ClientID == primitive.NilObjectID || assignment.WorksheetID == "" {
		return primitive.NilObjectID, errors.New("assignment requires clientId and worksheetId")
	}

	assignment.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	assignment.AssignedAt = now
	assignment.LastUpdatedAt = now
	if assignment.Status == "" {
		assignment.Status = domain.StatusAssigned
	}

	result, err := r.collection.InsertOne(ctx, assignment)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted assignment ID")
	}
	return insertedID, nil
}

func (r *mongoAssignmentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorksheetAssignment, error) {
	var assignment domain.WorksheetAssignment
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&assignment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &assignment, nil
}

func (r *mongoAssignmentRepository) GetByClientID(ctx context.Context, clientID primitive.ObjectID) ([]domain.WorksheetAssignment, error) {
	var assignments []domain.WorksheetAssignment
	filter := bson.M{"clientId": clientID}
	findOptions := options.Find().SetSort(bson.D{{Key: "assignedAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &assignments); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *mongoAssignmentRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.AssignmentStatus) (*domain.WorksheetAssignment, error) {
	assignment, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := assignment.ApplyStatus(status, time.Now().UTC()); err != nil {
		return nil, err
	}

	update := bson.M{"$set": bson.M{
		"status":        assignment.Status,
		"lastUpdatedAt": assignment.LastUpdatedAt,
		"completedAt":   assignment.CompletedAt,
	}}
	if err := r.apply(ctx, id, update); err != nil {
		return nil, err
	}
	return assignment, nil
}

func (r *mongoAssignmentRepository) SaveResponse(ctx context.Context, id primitive.ObjectID, response domain.WorksheetResponse) (*domain.WorksheetAssignment, error) {
	assignment, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	assignment.ApplyResponse(response, time.Now().UTC())

	update := bson.M{"$set": bson.M{
		"status":        assignment.Status,
		"lastUpdatedAt": assignment.LastUpdatedAt,
		"response":      assignment.Response,
	}}
	if err := r.apply(ctx, id, update); err != nil {
		return nil, err
	}
	return assignment, nil
}

func (r *mongoAssignmentRepository) apply(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureAssignmentIndexes creates necessary indexes for the worksheet_assignments collection.
func EnsureAssignmentIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Client listing is sorted by assignedAt descending.
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "assignedAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "therapistId", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
