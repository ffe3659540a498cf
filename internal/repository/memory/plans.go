package memory

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/repository"
	"context"
	"errors"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type trainingPlanRepository struct {
	table[domain.TrainingPlan]
}

func NewTrainingPlanRepository() repository.TrainingPlanRepository {
	return &trainingPlanRepository{table: newTable[domain.TrainingPlan]()}
}

func (r *trainingPlanRepository) Create(_ context.Context, plan *domain.TrainingPlan) (primitive.ObjectID, error) {
	if plan.ClientID == primitive.NilObjectID || plan.TrainerID == primitive.NilObjectID || plan.Name == "" {
		return primitive.NilObjectID, errors.New("plan requires clientId, trainerId, and name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	plan.ID = primitive.NewObjectID()
	plan.CreatedAt = now()
	plan.UpdatedAt = plan.CreatedAt
	if plan.Status == "" {
		plan.Status = domain.PlanActive
	}
	r.rows[plan.ID] = *plan
	return plan.ID, nil
}

func (r *trainingPlanRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.TrainingPlan, error) {
	plan, err := r.get(id)
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *trainingPlanRepository) List(_ context.Context, filter repository.PlanFilter) ([]domain.TrainingPlan, error) {
	plans := r.filter(func(p domain.TrainingPlan) bool {
		return (filter.TrainerID == primitive.NilObjectID || p.TrainerID == filter.TrainerID) &&
			(filter.ClientID == primitive.NilObjectID || p.ClientID == filter.ClientID) &&
			(filter.Status == "" || p.Status == filter.Status)
	})
	// ObjectIDs grow monotonically, so they break CreatedAt ties in insertion order.
	sort.Slice(plans, func(i, j int) bool {
		if !plans[i].CreatedAt.Equal(plans[j].CreatedAt) {
			return plans[i].CreatedAt.After(plans[j].CreatedAt)
		}
		return plans[i].ID.Hex() > plans[j].ID.Hex()
	})
	return plans, nil
}

func (r *trainingPlanRepository) Update(_ context.Context, plan *domain.TrainingPlan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.rows[plan.ID]
	if !ok {
		return repository.ErrNotFound
	}
	existing.Name = plan.Name
	existing.StartDate = plan.StartDate
	existing.EndDate = plan.EndDate
	existing.Status = plan.Status
	existing.Notes = plan.Notes
	existing.UpdatedAt = now()
	plan.UpdatedAt = existing.UpdatedAt
	r.rows[plan.ID] = existing
	return nil
}

func (r *trainingPlanRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	return r.delete(id)
}
