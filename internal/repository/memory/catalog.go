package memory

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/repository"
	"context"
	"errors"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type exerciseRepository struct {
	table[domain.Exercise]
}

func NewExerciseRepository() repository.ExerciseRepository {
	return &exerciseRepository{table: newTable[domain.Exercise]()}
}

func (r *exerciseRepository) nameTaken(name string, except primitive.ObjectID) bool {
	for id, existing := range r.rows {
		if id != except && existing.Name == name {
			return true
		}
	}
	return false
}

func (r *exerciseRepository) Create(_ context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	if exercise.Name == "" {
		return primitive.NilObjectID, errors.New("exercise name is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.nameTaken(exercise.Name, primitive.NilObjectID) {
		return primitive.NilObjectID, repository.ErrDuplicate
	}
	exercise.ID = primitive.NewObjectID()
	exercise.CreatedAt = now()
	exercise.UpdatedAt = exercise.CreatedAt
	r.rows[exercise.ID] = *exercise
	return exercise.ID, nil
}

func (r *exerciseRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	exercise, err := r.get(id)
	if err != nil {
		return nil, err
	}
	return &exercise, nil
}

func sortExercises(exercises []domain.Exercise) []domain.Exercise {
	sort.Slice(exercises, func(i, j int) bool { return exercises[i].Name < exercises[j].Name })
	return exercises
}

func (r *exerciseRepository) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]domain.Exercise, error) {
	return sortExercises(r.filter(func(e domain.Exercise) bool { return containsID(ids, e.ID) })), nil
}

func (r *exerciseRepository) List(_ context.Context) ([]domain.Exercise, error) {
	return sortExercises(r.filter(func(domain.Exercise) bool { return true })), nil
}

func (r *exerciseRepository) Update(_ context.Context, exercise *domain.Exercise) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.rows[exercise.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if r.nameTaken(exercise.Name, exercise.ID) {
		return repository.ErrDuplicate
	}
	exercise.CreatedAt = existing.CreatedAt
	exercise.CreatedBy = existing.CreatedBy
	exercise.UpdatedAt = now()
	r.rows[exercise.ID] = *exercise
	return nil
}

func (r *exerciseRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	return r.delete(id)
}

type warmupRepository struct {
	table[domain.Warmup]
}

func NewWarmupRepository() repository.WarmupRepository {
	return &warmupRepository{table: newTable[domain.Warmup]()}
}

func (r *warmupRepository) Create(_ context.Context, warmup *domain.Warmup) (primitive.ObjectID, error) {
	if warmup.Name == "" || warmup.Type == "" {
		return primitive.NilObjectID, errors.New("warmup name and type are required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	warmup.ID = primitive.NewObjectID()
	warmup.CreatedAt = now()
	warmup.UpdatedAt = warmup.CreatedAt
	r.rows[warmup.ID] = *warmup
	return warmup.ID, nil
}

func (r *warmupRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Warmup, error) {
	warmup, err := r.get(id)
	if err != nil {
		return nil, err
	}
	return &warmup, nil
}

func (r *warmupRepository) List(_ context.Context) ([]domain.Warmup, error) {
	warmups := r.filter(func(domain.Warmup) bool { return true })
	sort.Slice(warmups, func(i, j int) bool { return warmups[i].Name < warmups[j].Name })
	return warmups, nil
}

func (r *warmupRepository) Update(_ context.Context, warmup *domain.Warmup) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.rows[warmup.ID]
	if !ok {
		return repository.ErrNotFound
	}
	warmup.CreatedAt = existing.CreatedAt
	warmup.UpdatedAt = now()
	r.rows[warmup.ID] = *warmup
	return nil
}

func (r *warmupRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	return r.delete(id)
}
