package service

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/progress"
	"alcyxob/fitcoach/internal/repository"
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanDetail is a plan with its schedule and progress.
type PlanDetail struct {
	Plan              domain.TrainingPlan `json:"plan"`
	Workouts          []domain.Workout    `json:"workouts"`
	Progress          progress.Summary    `json:"progress"`
	CompletedWorkouts int                 `json:"completedWorkouts"`
}

// WorkoutExerciseView is a prescribed exercise with its catalog entry and
// whether the client has completed it.
type WorkoutExerciseView struct {
	domain.WorkoutExercise
	Exercise  *domain.Exercise `json:"exercise,omitempty"`
	Completed bool             `json:"completed"`
}

type WorkoutDetail struct {
	Workout   domain.Workout        `json:"workout"`
	Exercises []WorkoutExerciseView `json:"exercises"`
	Complete  bool                  `json:"complete"`
}

func completedLogs(ctx context.Context, store *repository.Store, planIDs []primitive.ObjectID) ([]domain.ExerciseLog, error) {
	return store.Logs.List(ctx, repository.LogFilter{PlanIDs: planIDs, Status: domain.LogCompleted})
}

func buildPlanDetail(ctx context.Context, store *repository.Store, plan *domain.TrainingPlan) (*PlanDetail, error) {
	planIDs := []primitive.ObjectID{plan.ID}
	workouts, err := store.Workouts.ListByPlan(ctx, plan.ID)
	if err != nil {
		return nil, err
	}
	exercises, err := store.WorkoutExercises.ListByPlans(ctx, planIDs)
	if err != nil {
		return nil, err
	}
	logs, err := completedLogs(ctx, store, planIDs)
	if err != nil {
		return nil, err
	}

	completed := 0
	for _, done := range progress.CompletedWorkouts(exercises, logs) {
		if done {
			completed++
		}
	}
	return &PlanDetail{
		Plan:              *plan,
		Workouts:          workouts,
		Progress:          progress.Plan(exercises, logs),
		CompletedWorkouts: completed,
	}, nil
}

func buildWorkoutDetail(ctx context.Context, store *repository.Store, workout *domain.Workout) (*WorkoutDetail, error) {
	exercises, err := store.WorkoutExercises.ListByWorkouts(ctx, []primitive.ObjectID{workout.ID})
	if err != nil {
		return nil, err
	}
	catalog, err := store.Exercises.GetByIDs(ctx, idsOf(exercises, func(we domain.WorkoutExercise) primitive.ObjectID { return we.ExerciseID }))
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]domain.Exercise, len(catalog))
	for _, e := range catalog {
		byID[e.ID] = e
	}
	logs, err := completedLogs(ctx, store, []primitive.ObjectID{workout.PlanID})
	if err != nil {
		return nil, err
	}
	done := progress.CompletedSet(logs)

	detail := &WorkoutDetail{
		Workout:   *workout,
		Exercises: make([]WorkoutExerciseView, 0, len(exercises)),
		Complete:  progress.CompletedWorkouts(exercises, logs)[workout.ID],
	}
	for _, we := range exercises {
		view := WorkoutExerciseView{WorkoutExercise: we}
		if e, ok := byID[we.ExerciseID]; ok {
			view.Exercise = &e
		}
		_, view.Completed = done[we.ID]
		detail.Exercises = append(detail.Exercises, view)
	}
	return detail, nil
}
