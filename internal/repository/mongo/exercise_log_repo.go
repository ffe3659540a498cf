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

const exerciseLogCollectionName = "exercise_logs"

// mongoExerciseLogRepository implements repository.ExerciseLogRepository
type mongoExerciseLogRepository struct {
	collection *mongo.Collection
}

func NewMongoExerciseLogRepository(db *mongo.Database) repository.ExerciseLogRepository {
	return &mongoExerciseLogRepository{
		collection: db.Collection(exerciseLogCollectionName),
	}
}

// Create inserts a log, stamping CompletedAt with the current time.
func (r *mongoExerciseLogRepository) Create(ctx context.Context, log *domain.ExerciseLog) (primitive.ObjectID, error) {
	if log.ClientID == primitive.NilObjectID || log.WorkoutExerciseID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("exercise log requires clientId and workoutExerciseId")
	}
	log.ID = primitive.NewObjectID()
	log.CompletedAt = time.Now().UTC()
	if log.Status == "" {
		log.Status = domain.LogCompleted
	}

	return insertedID(r.collection.InsertOne(ctx, log))
}

func (r *mongoExerciseLogRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ExerciseLog, error) {
	var log domain.ExerciseLog
	if err := findOne(ctx, r.collection, bson.M{"_id": id}, &log); err != nil {
		return nil, err
	}
	return &log, nil
}

func logQuery(filter repository.LogFilter) bson.M {
	query := bson.M{}
	if filter.ClientID != primitive.NilObjectID {
		query["clientId"] = filter.ClientID
	}
	if filter.TrainerID != primitive.NilObjectID {
		query["trainerId"] = filter.TrainerID
	}
	if filter.PlanIDs != nil {
		query["planId"] = bson.M{"$in": filter.PlanIDs}
	}
	if filter.WorkoutID != primitive.NilObjectID {
		query["workoutId"] = filter.WorkoutID
	}
	if filter.WorkoutExerciseID != primitive.NilObjectID {
		query["workoutExerciseId"] = filter.WorkoutExerciseID
	}
	if filter.ExerciseID != primitive.NilObjectID {
		query["exerciseId"] = filter.ExerciseID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	completedAt := bson.M{}
	if filter.From != nil {
		completedAt["$gte"] = *filter.From
	}
	if filter.To != nil {
		completedAt["$lte"] = *filter.To
	}
	if len(completedAt) > 0 {
		query["completedAt"] = completedAt
	}
	return query
}

func (r *mongoExerciseLogRepository) List(ctx context.Context, filter repository.LogFilter) ([]domain.ExerciseLog, error) {
	logs := []domain.ExerciseLog{}
	findOptions := options.Find().SetSort(bson.D{{Key: "completedAt", Value: -1}})
	if filter.Limit > 0 {
		findOptions.SetLimit(filter.Limit)
	}
	if err := findAll(ctx, r.collection, logQuery(filter), &logs, findOptions); err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *mongoExerciseLogRepository) Count(ctx context.Context, filter repository.LogFilter) (int64, error) {
	return r.collection.CountDocuments(ctx, logQuery(filter))
}

func (r *mongoExerciseLogRepository) Best(ctx context.Context, clientID, exerciseID primitive.ObjectID) (*domain.ExerciseLog, error) {
	var log domain.ExerciseLog
	findOptions := options.FindOne().SetSort(bson.D{{Key: "weightKg", Value: -1}, {Key: "repsCompleted", Value: -1}})
	err := r.collection.FindOne(ctx, bson.M{"clientId": clientID, "exerciseId": exerciseID}, findOptions).Decode(&log)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &log, nil
}

func (r *mongoExerciseLogRepository) SetVideo(ctx context.Context, id primitive.ObjectID, video domain.VideoRef) error {
	return updateOne(ctx, r.collection, bson.M{"_id": id}, bson.M{"$set": bson.M{"video": video}})
}

func (r *mongoExerciseLogRepository) SetExerciseByWorkoutExercise(ctx context.Context, workoutExerciseID, exerciseID primitive.ObjectID) error {
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"workoutExerciseId": workoutExerciseID},
		bson.M{"$set": bson.M{"exerciseId": exerciseID}},
	)
	return err
}

func (r *mongoExerciseLogRepository) DeleteByWorkoutExercise(ctx context.Context, workoutExerciseID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"workoutExerciseId": workoutExerciseID})
	return err
}

func (r *mongoExerciseLogRepository) DeleteByWorkout(ctx context.Context, workoutID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"workoutId": workoutID})
	return err
}

func (r *mongoExerciseLogRepository) DeleteByPlan(ctx context.Context, planID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"planId": planID})
	return err
}

// EnsureExerciseLogIndexes creates necessary indexes for the exercise_logs collection.
func EnsureExerciseLogIndexes(ctx context.Context, collection *mongo.Collection) error {
	return createIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "completedAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "planId", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "workoutExerciseId", Value: 1}},
			Options: options.Index(),
		},
		{
			// Best-log lookups.
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "exerciseId", Value: 1}, {Key: "weightKg", Value: -1}, {Key: "repsCompleted", Value: -1}},
			Options: options.Index(),
		},
	})
}
