// internal/repository/mongo/workout_repo.go
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

const workoutCollectionName = "workouts"

// mongoWorkoutRepository implements repository.WorkoutRepository
type mongoWorkoutRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutRepository creates a new Workout repository.
func NewMongoWorkoutRepository(db *mongo.Database) repository.WorkoutRepository {
	return &mongoWorkoutRepository{
		collection: db.Collection(workoutCollectionName),
	}
}

// Create inserts a new workout. The calendar date is expected to be derived
// by the service before insertion.
func (r *mongoWorkoutRepository) Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	if workout.PlanID == primitive.NilObjectID || workout.TrainerID == primitive.NilObjectID || workout.ClientID == primitive.NilObjectID || workout.Title == "" {
		return primitive.NilObjectID, errors.New("workout requires planId, trainerId, clientId, and title")
	}
	workout.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	workout.CreatedAt = now
	workout.UpdatedAt = now

	return insertedID(r.collection.InsertOne(ctx, workout))
}

// GetByID retrieves a single workout by its ID.
func (r *mongoWorkoutRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	var workout domain.Workout
	if err := findOne(ctx, r.collection, bson.M{"_id": id}, &workout); err != nil {
		return nil, err
	}
	return &workout, nil
}

// ListByPlan retrieves all workouts of a plan ordered by week then day.
func (r *mongoWorkoutRepository) ListByPlan(ctx context.Context, planID primitive.ObjectID) ([]domain.Workout, error) {
	workouts := []domain.Workout{}
	findOptions := options.Find().SetSort(bson.D{{Key: "weekNumber", Value: 1}, {Key: "dayOfWeek", Value: 1}})
	if err := findAll(ctx, r.collection, bson.M{"planId": planID}, &workouts, findOptions); err != nil {
		return nil, err
	}
	return workouts, nil
}

// List retrieves workouts of several plans, optionally bounded by date.
func (r *mongoWorkoutRepository) List(ctx context.Context, filter repository.WorkoutFilter) ([]domain.Workout, error) {
	workouts := []domain.Workout{}
	if len(filter.PlanIDs) == 0 {
		return workouts, nil
	}

	query := bson.M{"planId": bson.M{"$in": filter.PlanIDs}}
	dateRange := bson.M{}
	if filter.From != nil {
		dateRange["$gte"] = *filter.From
	}
	if filter.To != nil {
		dateRange["$lte"] = *filter.To
	}
	if len(dateRange) > 0 {
		query["date"] = dateRange
	}

	findOptions := options.Find().SetSort(bson.D{
		{Key: "date", Value: 1},
		{Key: "weekNumber", Value: 1},
		{Key: "dayOfWeek", Value: 1},
	})
	if filter.Limit > 0 {
		findOptions.SetLimit(filter.Limit)
	}
	if err := findAll(ctx, r.collection, query, &workouts, findOptions); err != nil {
		return nil, err
	}
	return workouts, nil
}

func (r *mongoWorkoutRepository) Update(ctx context.Context, workout *domain.Workout) error {
	if workout.ID == primitive.NilObjectID {
		return errors.New("workout ID is required for update")
	}
	// PlanID, TrainerID and ClientID never move; only the schedule and title do.
	workout.UpdatedAt = time.Now().UTC()
	updateDoc := bson.M{
		"$set": bson.M{
			"weekNumber": workout.WeekNumber,
			"dayOfWeek":  workout.DayOfWeek,
			"title":      workout.Title,
			"date":       workout.Date,
			"updatedAt":  workout.UpdatedAt,
		},
	}
	return updateOne(ctx, r.collection, bson.M{"_id": workout.ID}, updateDoc)
}

func (r *mongoWorkoutRepository) Delete(ctx context.Context, workoutID primitive.ObjectID) error {
	return deleteOne(ctx, r.collection, bson.M{"_id": workoutID})
}

func (r *mongoWorkoutRepository) DeleteByPlan(ctx context.Context, planID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"planId": planID})
	return err
}

// EnsureWorkoutIndexes creates necessary indexes. Call during startup.
func EnsureWorkoutIndexes(ctx context.Context, collection *mongo.Collection) error {
	return createIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "planId", Value: 1}, {Key: "weekNumber", Value: 1}, {Key: "dayOfWeek", Value: 1}},
			Options: options.Index(),
		},
		{
			// Dashboards look up upcoming sessions by date.
			Keys:    bson.D{{Key: "planId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index(),
		},
	})
}
