package repository

import (
	"alcyxob/fitcoach/internal/domain"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound  = RepositoryError("not found")
	ErrDuplicate = RepositoryError("duplicate key")
	// ErrConflict is returned by conditional writes whose precondition no
	// longer holds.
	ErrConflict = RepositoryError("conflicting update")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	// ListClientsByProfessional returns clients whose assigned professional is professionalID, by username.
	ListClientsByProfessional(ctx context.Context, professionalID primitive.ObjectID) ([]domain.User, error)
	UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error
}

// ExerciseRepository stores the exercise catalog.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Exercise, error)
	List(ctx context.Context) ([]domain.Exercise, error) // sorted by name
	Update(ctx context.Context, exercise *domain.Exercise) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// WarmupRepository stores the warmup catalog.
type WarmupRepository interface {
	Create(ctx context.Context, warmup *domain.Warmup) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Warmup, error)
	List(ctx context.Context) ([]domain.Warmup, error) // sorted by name
	Update(ctx context.Context, warmup *domain.Warmup) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// PlanFilter narrows plan listings. Zero values are ignored.
type PlanFilter struct {
	TrainerID primitive.ObjectID
	ClientID  primitive.ObjectID
	Status    domain.PlanStatus
}

// TrainingPlanRepository defines the interface for interacting with training plan data.
type TrainingPlanRepository interface {
	Create(ctx context.Context, plan *domain.TrainingPlan) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TrainingPlan, error)
	List(ctx context.Context, filter PlanFilter) ([]domain.TrainingPlan, error) // newest first
	Update(ctx context.Context, plan *domain.TrainingPlan) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// WorkoutFilter narrows workout listings. From/To bound the calendar date, inclusive.
type WorkoutFilter struct {
	PlanIDs []primitive.ObjectID
	From    *time.Time
	To      *time.Time
	Limit   int64
}

// WorkoutRepository defines the interface for interacting with workout data.
type WorkoutRepository interface {
	Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error)
	// ListByPlan returns the plan's workouts ordered by week then day.
	ListByPlan(ctx context.Context, planID primitive.ObjectID) ([]domain.Workout, error)
	// List returns workouts matching filter ordered by date, week, day.
	List(ctx context.Context, filter WorkoutFilter) ([]domain.Workout, error)
	Update(ctx context.Context, workout *domain.Workout) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByPlan(ctx context.Context, planID primitive.ObjectID) error
}

// WorkoutExerciseRepository stores the prescribed exercises of workouts.
type WorkoutExerciseRepository interface {
	Create(ctx context.Context, we *domain.WorkoutExercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutExercise, error)
	// ListByWorkouts returns exercises of the given workouts ordered by workout then order.
	ListByWorkouts(ctx context.Context, workoutIDs []primitive.ObjectID) ([]domain.WorkoutExercise, error)
	ListByPlans(ctx context.Context, planIDs []primitive.ObjectID) ([]domain.WorkoutExercise, error)
	CountByPlans(ctx context.Context, planIDs []primitive.ObjectID) (int64, error)
	ExistsForExercise(ctx context.Context, exerciseID primitive.ObjectID) (bool, error)
	Update(ctx context.Context, we *domain.WorkoutExercise) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByWorkout(ctx context.Context, workoutID primitive.ObjectID) error
	DeleteByPlan(ctx context.Context, planID primitive.ObjectID) error
}

// LogFilter narrows exercise log listings. Zero values are ignored; From/To
// bound CompletedAt, inclusive.
type LogFilter struct {
	ClientID          primitive.ObjectID
	TrainerID         primitive.ObjectID
	PlanIDs           []primitive.ObjectID
	WorkoutID         primitive.ObjectID
	WorkoutExerciseID primitive.ObjectID
	ExerciseID        primitive.ObjectID
	Status            domain.LogStatus
	From              *time.Time
	To                *time.Time
	Limit             int64
}

// ExerciseLogRepository stores what clients actually did.
type ExerciseLogRepository interface {
	Create(ctx context.Context, log *domain.ExerciseLog) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ExerciseLog, error)
	// List returns logs matching filter, newest first.
	List(ctx context.Context, filter LogFilter) ([]domain.ExerciseLog, error)
	Count(ctx context.Context, filter LogFilter) (int64, error)
	// Best returns the client's log for exerciseID with the highest weight, then reps.
	Best(ctx context.Context, clientID, exerciseID primitive.ObjectID) (*domain.ExerciseLog, error)
	SetVideo(ctx context.Context, id primitive.ObjectID, video domain.VideoRef) error
	// SetExerciseByWorkoutExercise re-points the logs of a workout exercise at
	// the catalog exercise it now prescribes.
	SetExerciseByWorkoutExercise(ctx context.Context, workoutExerciseID, exerciseID primitive.ObjectID) error
	DeleteByWorkoutExercise(ctx context.Context, workoutExerciseID primitive.ObjectID) error
	DeleteByWorkout(ctx context.Context, workoutID primitive.ObjectID) error
	DeleteByPlan(ctx context.Context, planID primitive.ObjectID) error
}

// VideoUploadRepository tracks multipart video upload sessions.
type VideoUploadRepository interface {
	Create(ctx context.Context, upload *domain.VideoUpload) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.VideoUpload, error)
	// Transition moves an upload from one status to another. It returns
	// ErrConflict when the upload exists but is no longer in status from.
	Transition(ctx context.Context, id primitive.ObjectID, from, to domain.UploadStatus) error
	// ListPendingByLogs returns the pending sessions of the given logs.
	ListPendingByLogs(ctx context.Context, logIDs []primitive.ObjectID) ([]domain.VideoUpload, error)
}

// Store bundles every repository the services need.
type Store struct {
	Users            UserRepository
	Exercises        ExerciseRepository
	Warmups          WarmupRepository
	Plans            TrainingPlanRepository
	Workouts         WorkoutRepository
	WorkoutExercises WorkoutExerciseRepository
	Logs             ExerciseLogRepository
	Uploads          VideoUploadRepository
}
