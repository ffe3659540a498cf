package service

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/metrics"
	"alcyxob/fitcoach/internal/notify"
	"alcyxob/fitcoach/internal/repository"
	"alcyxob/fitcoach/internal/repository/memory"
	"alcyxob/fitcoach/internal/storage"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func intPtr(v int) *int { return &v }

// env wires every service over one in-memory store.
type env struct {
	store    *repository.Store
	mail     *notify.RecordingSender
	files    *storage.MemoryStorage
	metrics  *metrics.Manager
	auth     AuthService
	trainers TrainerService
	clients  ClientService
	catalog  CatalogService
	videos   VideoService

	trainer domain.User
	client  domain.User
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		store:   memory.NewStore(),
		mail:    &notify.RecordingSender{},
		files:   storage.NewMemoryStorage(),
		metrics: metrics.NewTestManager(),
	}
	e.auth = NewAuthService(e.store.Users, "test-secret", time.Hour)
	e.trainers = NewTrainerService(e.store, e.files)
	e.clients = NewClientService(e.store, notify.NewNotifier(e.mail, e.metrics), e.metrics)
	e.catalog = NewCatalogService(e.store, nil)
	e.videos = NewVideoService(e.store, e.files, 10*time.Minute, e.metrics)

	e.trainer = e.register(t, domain.RoleTrainer, "secret-pass")
	created, _, err := e.trainers.CreateClient(context.Background(), e.trainer.ID, NewClientInput{
		Username:  gofakeit.Username(),
		Email:     gofakeit.Email(),
		FirstName: gofakeit.FirstName(),
		LastName:  gofakeit.LastName(),
	})
	require.NoError(t, err)
	e.client = *created
	return e
}

func (e *env) register(t *testing.T, role domain.Role, password string) domain.User {
	t.Helper()
	user, err := e.auth.Register(context.Background(), RegisterInput{
		Username: gofakeit.Username() + gofakeit.DigitN(4),
		Email:    strings.ToLower(gofakeit.DigitN(4) + gofakeit.Email()),
		Password: password,
		Role:     role,
	})
	require.NoError(t, err)
	return *user
}

func (e *env) exercise(t *testing.T, name string) domain.Exercise {
	t.Helper()
	ex, err := e.catalog.CreateExercise(context.Background(), e.trainer.ID, ExerciseInput{Name: name, MuscleGroup: "Legs"})
	require.NoError(t, err)
	return *ex
}

// schedule creates an active plan for the client starting at start, with one
// workout holding one prescribed exercise per catalog entry.
func (e *env) schedule(t *testing.T, start time.Time, exercises ...domain.Exercise) (*domain.TrainingPlan, *domain.Workout, []domain.WorkoutExercise) {
	t.Helper()
	ctx := context.Background()
	plan, err := e.trainers.CreatePlan(ctx, e.trainer.ID, PlanInput{
		ClientID:  e.client.ID,
		Name:      "Phase " + gofakeit.Word(),
		StartDate: start,
		EndDate:   start.AddDate(0, 1, 0),
	})
	require.NoError(t, err)
	workout, err := e.trainers.AddWorkout(ctx, e.trainer.ID, plan.ID, WorkoutInput{WeekNumber: 1, DayOfWeek: 1, Title: "Lower body"})
	require.NoError(t, err)

	var wes []domain.WorkoutExercise
	for i, ex := range exercises {
		we, err := e.trainers.AddWorkoutExercise(ctx, e.trainer.ID, workout.ID, WorkoutExerciseInput{
			ExerciseID: ex.ID,
			Sets:       3,
			RepsTarget: "8-10",
			Order:      i + 1,
		})
		require.NoError(t, err)
		wes = append(wes, *we)
	}
	return plan, workout, wes
}

func (e *env) logDone(t *testing.T, weID primitive.ObjectID, weight float64, reps int) *domain.ExerciseLog {
	t.Helper()
	entry, err := e.clients.LogExercise(context.Background(), e.client.ID, weID, LogInput{WeightKg: weight, RepsCompleted: reps})
	require.NoError(t, err)
	return entry
}
