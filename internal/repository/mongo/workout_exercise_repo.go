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

const workoutExerciseCollectionName = "workout_exercises"

// mongoWorkoutExerciseRepository implements repository.WorkoutExerciseRepository
type mongoWorkoutExerciseRepository struct {
	collection *mongo.Collection
}

func NewMongoWorkoutExerciseRepository(db *mongo.Database) repository.WorkoutExerciseRepository {
	return &mongoWorkoutExerciseRepository{
		collection: db.Collection(workoutExerciseCollectionName),
	}
}

// Create inserts a new workout exercise, filling in the default rest period
// and order when they are unset.
func (r *mongoWorkoutExerciseRepository) Create(ctx context.Context, we *domain.WorkoutExercise) (primitive.ObjectID, error) {
	if we.WorkoutID == primitive.NilObjectID || we.ExerciseID == primitive.NilObjectID || we.PlanID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("workout exercise requires workoutId, planId and exerciseId")
	}

	we.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	we.CreatedAt = now
	we.UpdatedAt = now
	if we.RestPeriodSeconds == 0 {
		we.RestPeriodSeconds = domain.DefaultRestPeriodSeconds
	}
	if we.Order == 0 {
		we.Order = domain.DefaultExerciseOrder
	}

	return insertedID(r.collection.InsertOne(ctx, we))
}

func (r *mongoWorkoutExerciseRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutExercise, error) {
	var we domain.WorkoutExercise
	if err := findOne(ctx, r.collection, bson.M{"_id": id}, &we); err != nil {
		return nil, err
	}
	return &we, nil
}

func (r *mongoWorkoutExerciseRepository) ListByWorkouts(ctx context.Context, workoutIDs []primitive.ObjectID) ([]domain.WorkoutExercise, error) {
	return r.list(ctx, bson.M{"workoutId": bson.M{"$in": workoutIDs}}, len(workoutIDs))
}

func (r *mongoWorkoutExerciseRepository) ListByPlans(ctx context.Context, planIDs []primitive.ObjectID) ([]domain.WorkoutExercise, error) {
	return r.list(ctx, bson.M{"planId": bson.M{"$in": planIDs}}, len(planIDs))
}

func (r *mongoWorkoutExerciseRepository) list(ctx context.Context, filter bson.M, n int) ([]domain.WorkoutExercise, error) {
	exercises := []domain.WorkoutExercise{}
	if n == 0 {
		return exercises, nil
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "workoutId", Value: 1}, {Key: "order", Value: 1}})
	if err := findAll(ctx, r.collection, filter, &exercises, findOptions); err != nil {
		return nil, err
	}
	return exercises, nil
}

func (r *mongoWorkoutExerciseRepository) CountByPlans(ctx context.Context, planIDs []primitive.ObjectID) (int64, error) {
	if len(planIDs) == 0 {
		return 0, nil
	}
	return r.collection.CountDocuments(ctx, bson.M{"planId": bson.M{"$in": planIDs}})
}

// ExistsForExercise reports whether any workout still prescribes exerciseID.
func (r *mongoWorkoutExerciseRepository) ExistsForExercise(ctx context.Context, exerciseID primitive.ObjectID) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"exerciseId": exerciseID}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *mongoWorkoutExerciseRepository) Update(ctx context.Context, we *domain.WorkoutExercise) error {
	if we.ID == primitive.NilObjectID {
		return errors.New("workout exercise ID is required for update")
	}
	we.UpdatedAt = time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"exerciseId":        we.ExerciseID,
			"sets":              we.Sets,
			"repsTarget":        we.RepsTarget,
			"rirTarget":         we.RIRTarget,
			"rpeTarget":         we.RPETarget,
			"restPeriodSeconds": we.RestPeriodSeconds,
			"notes":             we.Notes,
			"order":             we.Order,
			"updatedAt":         we.UpdatedAt,
		},
	}
	return updateOne(ctx, r.collection, bson.M{"_id": we.ID}, update)
}

func (r *mongoWorkoutExerciseRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteOne(ctx, r.collection, bson.M{"_id": id})
}

func (r *mongoWorkoutExerciseRepository) DeleteByWorkout(ctx context.Context, workoutID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"workoutId": workoutID})
	return err
}

func (r *mongoWorkoutExerciseRepository) DeleteByPlan(ctx context.Context, planID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"planId": planID})
	return err
}

// EnsureWorkoutExerciseIndexes creates necessary indexes for the workout_exercises collection.
func EnsureWorkoutExerciseIndexes(ctx context.Context, collection *mongo.Collection) error {
	return createIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "workoutId", Value: 1}, {Key: "order", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "planId", Value: 1}},
			Options: options.Index(),
		},
		{
			// Backs the catalog's delete protection.
			Keys:    bson.D{{Key: "exerciseId", Value: 1}},
			Options: options.Index(),
		},
	})
}
