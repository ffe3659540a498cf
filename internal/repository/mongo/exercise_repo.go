// internal/repository/mongo/exercise_repo.go
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

const (
	exerciseCollectionName = "exercises"
	warmupCollectionName   = "warmups"
)

// mongoExerciseRepository implements repository.ExerciseRepository
type mongoExerciseRepository struct {
	collection *mongo.Collection
}

func NewMongoExerciseRepository(db *mongo.Database) repository.ExerciseRepository {
	return &mongoExerciseRepository{
		collection: db.Collection(exerciseCollectionName),
	}
}

func (r *mongoExerciseRepository) Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	if exercise.Name == "" {
		return primitive.NilObjectID, errors.New("exercise name is required")
	}
	exercise.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	exercise.CreatedAt = now
	exercise.UpdatedAt = now

	return insertedID(r.collection.InsertOne(ctx, exercise))
}

func (r *mongoExerciseRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	var exercise domain.Exercise
	if err := findOne(ctx, r.collection, bson.M{"_id": id}, &exercise); err != nil {
		return nil, err
	}
	return &exercise, nil
}

func (r *mongoExerciseRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Exercise, error) {
	exercises := []domain.Exercise{}
	if len(ids) == 0 {
		return exercises, nil
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	if err := findAll(ctx, r.collection, bson.M{"_id": bson.M{"$in": ids}}, &exercises, findOptions); err != nil {
		return nil, err
	}
	return exercises, nil
}

func (r *mongoExerciseRepository) List(ctx context.Context) ([]domain.Exercise, error) {
	exercises := []domain.Exercise{}
	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	if err := findAll(ctx, r.collection, bson.M{}, &exercises, findOptions); err != nil {
		return nil, err
	}
	return exercises, nil
}

func (r *mongoExerciseRepository) Update(ctx context.Context, exercise *domain.Exercise) error {
	if exercise.ID == primitive.NilObjectID {
		return errors.New("exercise ID is required for update")
	}
	exercise.UpdatedAt = time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"name":        exercise.Name,
			"description": exercise.Description,
			"videoUrl":    exercise.VideoURL,
			"muscleGroup": exercise.MuscleGroup,
			"equipment":   exercise.Equipment,
			"updatedAt":   exercise.UpdatedAt,
		},
	}
	return updateOne(ctx, r.collection, bson.M{"_id": exercise.ID}, update)
}

func (r *mongoExerciseRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteOne(ctx, r.collection, bson.M{"_id": id})
}

// EnsureExerciseIndexes creates necessary indexes for the exercises collection.
func EnsureExerciseIndexes(ctx context.Context, collection *mongo.Collection) error {
	return createIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "muscleGroup", Value: 1}},
			Options: options.Index(),
		},
	})
}

// mongoWarmupRepository implements repository.WarmupRepository
type mongoWarmupRepository struct {
	collection *mongo.Collection
}

func NewMongoWarmupRepository(db *mongo.Database) repository.WarmupRepository {
	return &mongoWarmupRepository{
		collection: db.Collection(warmupCollectionName),
	}
}

func (r *mongoWarmupRepository) Create(ctx context.Context, warmup *domain.Warmup) (primitive.ObjectID, error) {
	if warmup.Name == "" || warmup.Type == "" {
		return primitive.NilObjectID, errors.New("warmup name and type are required")
	}
	warmup.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	warmup.CreatedAt = now
	warmup.UpdatedAt = now

	return insertedID(r.collection.InsertOne(ctx, warmup))
}

func (r *mongoWarmupRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Warmup, error) {
	var warmup domain.Warmup
	if err := findOne(ctx, r.collection, bson.M{"_id": id}, &warmup); err != nil {
		return nil, err
	}
	return &warmup, nil
}

func (r *mongoWarmupRepository) List(ctx context.Context) ([]domain.Warmup, error) {
	warmups := []domain.Warmup{}
	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	if err := findAll(ctx, r.collection, bson.M{}, &warmups, findOptions); err != nil {
		return nil, err
	}
	return warmups, nil
}

func (r *mongoWarmupRepository) Update(ctx context.Context, warmup *domain.Warmup) error {
	warmup.UpdatedAt = time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"name":       warmup.Name,
			"seriesReps": warmup.SeriesReps,
			"notes":      warmup.Notes,
			"videoUrl":   warmup.VideoURL,
			"type":       warmup.Type,
			"updatedAt":  warmup.UpdatedAt,
		},
	}
	return updateOne(ctx, r.collection, bson.M{"_id": warmup.ID}, update)
}

func (r *mongoWarmupRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteOne(ctx, r.collection, bson.M{"_id": id})
}

func EnsureWarmupIndexes(ctx context.Context, collection *mongo.Collection) error {
	return createIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "type", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index(),
		},
	})
}
