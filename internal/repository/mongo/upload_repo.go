package mongo

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const videoUploadCollectionName = "video_uploads"

// mongoVideoUploadRepository implements repository.VideoUploadRepository
type mongoVideoUploadRepository struct {
	collection *mongo.Collection
}

// NewMongoVideoUploadRepository creates a new upload session repository backed by MongoDB.
func NewMongoVideoUploadRepository(db *mongo.Database) repository.VideoUploadRepository {
	return &mongoVideoUploadRepository{
		collection: db.Collection(videoUploadCollectionName),
	}
}

func (r *mongoVideoUploadRepository) Create(ctx context.Context, upload *domain.VideoUpload) (primitive.ObjectID, error) {
	if upload.ClientID == primitive.NilObjectID || upload.LogID == primitive.NilObjectID ||
		upload.ObjectKey == "" || upload.ProviderUploadID == "" {
		return primitive.NilObjectID, errors.New("upload requires clientId, logId, objectKey and providerUploadId")
	}

	upload.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	upload.CreatedAt = now
	upload.UpdatedAt = now
	if upload.Status == "" {
		upload.Status = domain.UploadPending
	}

	return insertedID(r.collection.InsertOne(ctx, upload))
}

func (r *mongoVideoUploadRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.VideoUpload, error) {
	var upload domain.VideoUpload
	if err := findOne(ctx, r.collection, bson.M{"_id": id}, &upload); err != nil {
		return nil, err
	}
	return &upload, nil
}

// Transition filters on the current status so concurrent transitions of the
// same session cannot both succeed.
func (r *mongoVideoUploadRepository) Transition(ctx context.Context, id primitive.ObjectID, from, to domain.UploadStatus) error {
	update := bson.M{"$set": bson.M{"status": to, "updatedAt": time.Now().UTC()}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id, "status": from}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount > 0 {
		return nil
	}

	// Nothing matched: tell a missing session from one that moved on.
	if err := findOne(ctx, r.collection, bson.M{"_id": id}, &domain.VideoUpload{}); err != nil {
		return err
	}
	return repository.ErrConflict
}

func (r *mongoVideoUploadRepository) ListPendingByLogs(ctx context.Context, logIDs []primitive.ObjectID) ([]domain.VideoUpload, error) {
	uploads := []domain.VideoUpload{}
	if len(logIDs) == 0 {
		return uploads, nil
	}
	filter := bson.M{"logId": bson.M{"$in": logIDs}, "status": domain.UploadPending}
	if err := findAll(ctx, r.collection, filter, &uploads); err != nil {
		return nil, err
	}
	return uploads, nil
}

// EnsureVideoUploadIndexes creates necessary indexes for the video_uploads collection.
func EnsureVideoUploadIndexes(ctx context.Context, collection *mongo.Collection) error {
	return createIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "logId", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "objectKey", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			// Stale pending sessions are found by status and age.
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: 1}},
			Options: options.Index(),
		},
	})
}
