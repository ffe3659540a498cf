package memory

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/repository"
	"context"
	"errors"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type workoutRepository struct {
	table[domain.Workout]
}

func NewWorkoutRepository() repository.WorkoutRepository {
	return &workoutRepository{table: newTable[domain.Workout]()}
}

func (r *workoutRepository) Create(_ context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	if workout.PlanID == primitive.NilObjectID || workout.TrainerID == primitive.NilObjectID || workout.ClientID == primitive.NilObjectID || workout.Title == "" {
		return primitive.NilObjectID, errors.New("workout requires planId, trainerId, clientId, and title")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	workout.ID = primitive.NewObjectID()
	workout.CreatedAt = now()
	workout.UpdatedAt = workout.CreatedAt
	r.rows[workout.ID] = *workout
	return workout.ID, nil
}

func (r *workoutRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	workout, err := r.get(id)
	if err != nil {
		return nil, err
	}
	return &workout, nil
}

func bySchedule(a, b domain.Workout) bool {
	if a.WeekNumber != b.WeekNumber {
		return a.WeekNumber < b.WeekNumber
	}
	return a.DayOfWeek < b.DayOfWeek
}

func (r *workoutRepository) ListByPlan(_ context.Context, planID primitive.ObjectID) ([]domain.Workout, error) {
	workouts := r.filter(func(w domain.Workout) bool { return w.PlanID == planID })
	sort.Slice(workouts, func(i, j int) bool { return bySchedule(workouts[i], workouts[j]) })
	return workouts, nil
}

func (r *workoutRepository) List(_ context.Context, filter repository.WorkoutFilter) ([]domain.Workout, error) {
	if len(filter.PlanIDs) == 0 {
		return []domain.Workout{}, nil
	}
	workouts := r.filter(func(w domain.Workout) bool {
		return containsID(filter.PlanIDs, w.PlanID) && inRange(w.Date, filter.From, filter.To)
	})
	sort.Slice(workouts, func(i, j int) bool {
		if !workouts[i].Date.Equal(workouts[j].Date) {
			return workouts[i].Date.Before(workouts[j].Date)
		}
		return bySchedule(workouts[i], workouts[j])
	})
	return limit(workouts, filter.Limit), nil
}

func (r *workoutRepository) Update(_ context.Context, workout *domain.Workout) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.rows[workout.ID]
	if !ok {
		return repository.ErrNotFound
	}
	existing.WeekNumber = workout.WeekNumber
	existing.DayOfWeek = workout.DayOfWeek
	existing.Title = workout.Title
	existing.Date = workout.Date
	existing.UpdatedAt = now()
	workout.UpdatedAt = existing.UpdatedAt
	r.rows[workout.ID] = existing
	return nil
}

func (r *workoutRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	return r.delete(id)
}

func (r *workoutRepository) DeleteByPlan(_ context.Context, planID primitive.ObjectID) error {
	r.deleteWhere(func(w domain.Workout) bool { return w.PlanID == planID })
	return nil
}

type workoutExerciseRepository struct {
	table[domain.WorkoutExercise]
}

func NewWorkoutExerciseRepository() repository.WorkoutExerciseRepository {
	return &workoutExerciseRepository{table: newTable[domain.WorkoutExercise]()}
}

func (r *workoutExerciseRepository) Create(_ context.Context, we *domain.WorkoutExercise) (primitive.ObjectID, error) {
	if we.WorkoutID == primitive.NilObjectID || we.ExerciseID == primitive.NilObjectID || we.PlanID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("workout exercise requires workoutId, planId and exerciseId")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	we.ID = primitive.NewObjectID()
	we.CreatedAt = now()
	we.UpdatedAt = we.CreatedAt
	if we.RestPeriodSeconds == 0 {
		we.RestPeriodSeconds = domain.DefaultRestPeriodSeconds
	}
	if we.Order == 0 {
		we.Order = domain.DefaultExerciseOrder
	}
	r.rows[we.ID] = *we
	return we.ID, nil
}

func (r *workoutExerciseRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.WorkoutExercise, error) {
	we, err := r.get(id)
	if err != nil {
		return nil, err
	}
	return &we, nil
}

func sortWorkoutExercises(exercises []domain.WorkoutExercise) []domain.WorkoutExercise {
	sort.Slice(exercises, func(i, j int) bool {
		a, b := exercises[i], exercises[j]
		if a.WorkoutID != b.WorkoutID {
			return a.WorkoutID.Hex() < b.WorkoutID.Hex()
		}
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		return a.ID.Hex() < b.ID.Hex()
	})
	return exercises
}

func (r *workoutExerciseRepository) ListByWorkouts(_ context.Context, workoutIDs []primitive.ObjectID) ([]domain.WorkoutExercise, error) {
	return sortWorkoutExercises(r.filter(func(we domain.WorkoutExercise) bool {
		return containsID(workoutIDs, we.WorkoutID)
	})), nil
}

func (r *workoutExerciseRepository) ListByPlans(_ context.Context, planIDs []primitive.ObjectID) ([]domain.WorkoutExercise, error) {
	return sortWorkoutExercises(r.filter(func(we domain.WorkoutExercise) bool {
		return containsID(planIDs, we.PlanID)
	})), nil
}

func (r *workoutExerciseRepository) CountByPlans(ctx context.Context, planIDs []primitive.ObjectID) (int64, error) {
	exercises, err := r.ListByPlans(ctx, planIDs)
	return int64(len(exercises)), err
}

func (r *workoutExerciseRepository) ExistsForExercise(_ context.Context, exerciseID primitive.ObjectID) (bool, error) {
	return len(r.filter(func(we domain.WorkoutExercise) bool { return we.ExerciseID == exerciseID })) > 0, nil
}

func (r *workoutExerciseRepository) Update(_ context.Context, we *domain.WorkoutExercise) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.rows[we.ID]
	if !ok {
		return repository.ErrNotFound
	}
	existing.ExerciseID = we.ExerciseID
	existing.Sets = we.Sets
	existing.RepsTarget = we.RepsTarget
	existing.RIRTarget = we.RIRTarget
	existing.RPETarget = we.RPETarget
	existing.RestPeriodSeconds = we.RestPeriodSeconds
	existing.Notes = we.Notes
	existing.Order = we.Order
	existing.UpdatedAt = now()
	we.UpdatedAt = existing.UpdatedAt
	r.rows[we.ID] = existing
	return nil
}

func (r *workoutExerciseRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	return r.delete(id)
}

func (r *workoutExerciseRepository) DeleteByWorkout(_ context.Context, workoutID primitive.ObjectID) error {
	r.deleteWhere(func(we domain.WorkoutExercise) bool { return we.WorkoutID == workoutID })
	return nil
}

func (r *workoutExerciseRepository) DeleteByPlan(_ context.Context, planID primitive.ObjectID) error {
	r.deleteWhere(func(we domain.WorkoutExercise) bool { return we.PlanID == planID })
	return nil
}
