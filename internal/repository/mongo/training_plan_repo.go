// internal/repository/mongo/training_plan_repo.go
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

const trainingPlanCollectionName = "training_plans"

// mongoTrainingPlanRepository implements repository.TrainingPlanRepository
type mongoTrainingPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoTrainingPlanRepository creates a new TrainingPlan repository.
func NewMongoTrainingPlanRepository(db *mongo.Database) repository.TrainingPlanRepository {
	return &mongoTrainingPlanRepository{
		collection: db.Collection(trainingPlanCollectionName),
	}
}

// Create inserts a new training plan.
func (r *mongoTrainingPlanRepository) Create(ctx context.Context, plan *domain.TrainingPlan) (primitive.ObjectID, error) {
	if plan.ClientID == primitive.NilObjectID || plan.TrainerID == primitive.NilObjectID || plan.Name == "" {
		return primitive.NilObjectID, errors.New("plan requires clientId, trainerId, and name")
	}
	plan.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now
	if plan.Status == "" {
		plan.Status = domain.PlanActive
	}

	return insertedID(r.collection.InsertOne(ctx, plan))
}

// GetByID retrieves a single training plan by its ID.
func (r *mongoTrainingPlanRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TrainingPlan, error) {
	var plan domain.TrainingPlan
	if err := findOne(ctx, r.collection, bson.M{"_id": id}, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// List retrieves plans matching the filter, newest first.
func (r *mongoTrainingPlanRepository) List(ctx context.Context, filter repository.PlanFilter) ([]domain.TrainingPlan, error) {
	query := bson.M{}
	if filter.TrainerID != primitive.NilObjectID {
		query["trainerId"] = filter.TrainerID
	}
	if filter.ClientID != primitive.NilObjectID {
		query["clientId"] = filter.ClientID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}

	plans := []domain.TrainingPlan{}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if err := findAll(ctx, r.collection, query, &plans, findOptions); err != nil {
		return nil, err
	}
	return plans, nil
}

// Update changes the editable fields of a plan. TrainerID and ClientID are
// fixed once the plan exists.
func (r *mongoTrainingPlanRepository) Update(ctx context.Context, plan *domain.TrainingPlan) error {
	if plan.ID == primitive.NilObjectID {
		return errors.New("training plan ID is required for update")
	}
	plan.UpdatedAt = time.Now().UTC()
	updateDoc := bson.M{
		"$set": bson.M{
			"name":      plan.Name,
			"startDate": plan.StartDate,
			"endDate":   plan.EndDate,
			"status":    plan.Status,
			"notes":     plan.Notes,
			"updatedAt": plan.UpdatedAt,
		},
	}
	return updateOne(ctx, r.collection, bson.M{"_id": plan.ID}, updateDoc)
}

func (r *mongoTrainingPlanRepository) Delete(ctx context.Context, planID primitive.ObjectID) error {
	return deleteOne(ctx, r.collection, bson.M{"_id": planID})
}

// EnsureTrainingPlanIndexes creates necessary indexes. Call during startup.
func EnsureTrainingPlanIndexes(ctx context.Context, collection *mongo.Collection) error {
	return createIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "trainerId", Value: 1}, {Key: "clientId", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index(),
		},
		{
			// The weekly report scans active plans.
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index(),
		},
	})
}
