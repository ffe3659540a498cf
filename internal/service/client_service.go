package service

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/metrics"
	"alcyxob/fitcoach/internal/notify"
	"alcyxob/fitcoach/internal/progress"
	"alcyxob/fitcoach/internal/repository"
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrLogNotFound = errors.New("exercise log not found")
	ErrForbidden   = errors.New("access denied")
)

const upcomingSessionsLimit = 5

type ClientDashboard struct {
	Plans              []domain.TrainingPlan `json:"plans"`
	ActivePlans        int                   `json:"activePlans"`
	WeeklySessions     int                   `json:"weeklySessions"`
	CompletedExercises int64                 `json:"completedExercises"`
	NextSession        *domain.Workout       `json:"nextSession,omitempty"`
	UpcomingSessions   []domain.Workout      `json:"upcomingSessions"`
	TotalWorkouts      int                   `json:"totalWorkouts"`
	TotalExercises     int                   `json:"totalExercises"`
	Consistency        float64               `json:"consistency"`
	Warmups            domain.WarmupsByType  `json:"warmups"`
}

type LogInput struct {
	WeightKg      float64
	RepsCompleted int
	RIRActual     *int
	RPEActual     *int
	Notes         string
	Status        domain.LogStatus
}

func (in LogInput) validate() (LogInput, error) {
	if in.Status == "" {
		in.Status = domain.LogCompleted
	}
	switch {
	case in.WeightKg < 0:
		return in, invalid("weight must not be negative")
	case in.RepsCompleted < 0:
		return in, invalid("reps must not be negative")
	case in.RIRActual != nil && *in.RIRActual < 0:
		return in, invalid("RIR must not be negative")
	case in.RPEActual != nil && (*in.RPEActual < 1 || *in.RPEActual > 10):
		return in, invalid("RPE must be between 1 and 10")
	case !in.Status.Valid():
		return in, invalid("unknown status %q", in.Status)
	}
	return in, nil
}

type ClientService interface {
	Dashboard(ctx context.Context, clientID primitive.ObjectID, now time.Time) (*ClientDashboard, error)
	ListPlans(ctx context.Context, clientID primitive.ObjectID) ([]domain.TrainingPlan, error)
	ViewPlan(ctx context.Context, clientID, planID primitive.ObjectID) (*PlanDetail, error)
	ViewWorkout(ctx context.Context, clientID, workoutID primitive.ObjectID) (*WorkoutDetail, error)
	// LogExercise records a log and emails the trainer. Email failures are
	// logged and do not fail the call.
	LogExercise(ctx context.Context, clientID, workoutExerciseID primitive.ObjectID, in LogInput) (*domain.ExerciseLog, error)
	// BestLog returns nil when the client never logged the exercise.
	BestLog(ctx context.Context, clientID, workoutExerciseID primitive.ObjectID) (*domain.ExerciseLog, error)
	Statistics(ctx context.Context, clientID primitive.ObjectID) ([]domain.ExerciseLog, error)
	// ViewLog allows the owning client and the plan's trainer.
	ViewLog(ctx context.Context, viewerID, logID primitive.ObjectID) (*domain.ExerciseLog, error)
}

type clientService struct {
	store    *repository.Store
	notifier *notify.Notifier
	metrics  *metrics.Manager
}

func NewClientService(store *repository.Store, notifier *notify.Notifier, metricsManager *metrics.Manager) ClientService {
	return &clientService{store: store, notifier: notifier, metrics: metricsManager}
}

func (s *clientService) Dashboard(ctx context.Context, clientID primitive.ObjectID, now time.Time) (*ClientDashboard, error) {
	plans, err := s.store.Plans.List(ctx, repository.PlanFilter{ClientID: clientID})
	if err != nil {
		return nil, err
	}
	planIDs := idsOf(plans, func(p domain.TrainingPlan) primitive.ObjectID { return p.ID })

	workouts, err := s.store.Workouts.List(ctx, repository.WorkoutFilter{PlanIDs: planIDs})
	if err != nil {
		return nil, err
	}
	exercises, err := s.store.WorkoutExercises.ListByPlans(ctx, planIDs)
	if err != nil {
		return nil, err
	}
	completed, err := completedLogs(ctx, s.store, planIDs)
	if err != nil {
		return nil, err
	}
	completedCount, err := s.store.Logs.Count(ctx, repository.LogFilter{ClientID: clientID, Status: domain.LogCompleted})
	if err != nil {
		return nil, err
	}
	warmups, err := s.store.Warmups.List(ctx)
	if err != nil {
		return nil, err
	}

	today := domain.Day(now)
	weekAhead := today.AddDate(0, 0, 7)
	dashboard := &ClientDashboard{
		Plans:              plans,
		CompletedExercises: completedCount,
		UpcomingSessions:   []domain.Workout{},
		TotalWorkouts:      len(workouts),
		TotalExercises:     len(exercises),
		Consistency:        progress.Consistency(workouts, exercises, completed),
		Warmups:            domain.GroupWarmups(warmups),
	}
	for i := range plans {
		if plans[i].IsActive() {
			dashboard.ActivePlans++
		}
	}
	// workouts are ordered by date
	for _, w := range workouts {
		if w.Date.Before(today) {
			continue
		}
		if !w.Date.After(weekAhead) {
			dashboard.WeeklySessions++
		}
		if len(dashboard.UpcomingSessions) < upcomingSessionsLimit {
			dashboard.UpcomingSessions = append(dashboard.UpcomingSessions, w)
		}
	}
	if len(dashboard.UpcomingSessions) > 0 {
		next := dashboard.UpcomingSessions[0]
		dashboard.NextSession = &next
	}
	return dashboard, nil
}

func (s *clientService) ListPlans(ctx context.Context, clientID primitive.ObjectID) ([]domain.TrainingPlan, error) {
	return s.store.Plans.List(ctx, repository.PlanFilter{ClientID: clientID})
}

func (s *clientService) ViewPlan(ctx context.Context, clientID, planID primitive.ObjectID) (*PlanDetail, error) {
	plan, err := s.store.Plans.GetByID(ctx, planID)
	if err != nil {
		return nil, notFound(err, ErrPlanNotFound)
	}
	if plan.ClientID != clientID {
		return nil, ErrPlanNotFound
	}
	return buildPlanDetail(ctx, s.store, plan)
}

func (s *clientService) ViewWorkout(ctx context.Context, clientID, workoutID primitive.ObjectID) (*WorkoutDetail, error) {
	workout, err := s.store.Workouts.GetByID(ctx, workoutID)
	if err != nil {
		return nil, notFound(err, ErrWorkoutNotFound)
	}
	if workout.ClientID != clientID {
		return nil, ErrWorkoutNotFound
	}
	return buildWorkoutDetail(ctx, s.store, workout)
}

// ownWorkoutExercise checks that the workout exercise is prescribed to the client.
func (s *clientService) ownWorkoutExercise(ctx context.Context, clientID, id primitive.ObjectID) (*domain.WorkoutExercise, error) {
	we, err := s.store.WorkoutExercises.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrWorkoutExerciseNotFound)
	}
	if we.ClientID != clientID {
		return nil, ErrWorkoutExerciseNotFound
	}
	return we, nil
}

func (s *clientService) LogExercise(ctx context.Context, clientID, workoutExerciseID primitive.ObjectID, in LogInput) (*domain.ExerciseLog, error) {
	in, err := in.validate()
	if err != nil {
		return nil, err
	}
	we, err := s.ownWorkoutExercise(ctx, clientID, workoutExerciseID)
	if err != nil {
		return nil, err
	}

	entry := &domain.ExerciseLog{
		ClientID:          clientID,
		WorkoutExerciseID: we.ID,
		WorkoutID:         we.WorkoutID,
		PlanID:            we.PlanID,
		TrainerID:         we.TrainerID,
		ExerciseID:        we.ExerciseID,
		WeightKg:          in.WeightKg,
		RepsCompleted:     in.RepsCompleted,
		RIRActual:         in.RIRActual,
		RPEActual:         in.RPEActual,
		Notes:             in.Notes,
		Status:            in.Status,
	}
	if _, err := s.store.Logs.Create(ctx, entry); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.CounterLogsRecorded.Inc()
	}

	if err := s.notifyTrainer(ctx, *entry); err != nil {
		log.Errorf("notify trainer about log %s: %s", entry.ID.Hex(), err)
	}
	return entry, nil
}

func (s *clientService) notifyTrainer(ctx context.Context, entry domain.ExerciseLog) error {
	if s.notifier == nil {
		return nil
	}
	trainer, err := s.store.Users.GetByID(ctx, entry.TrainerID)
	if err != nil {
		return err
	}
	client, err := s.store.Users.GetByID(ctx, entry.ClientID)
	if err != nil {
		return err
	}
	exercise, err := s.store.Exercises.GetByID(ctx, entry.ExerciseID)
	if err != nil {
		return err
	}
	return s.notifier.LogRecorded(ctx, trainer.Email, client.Username, exercise.Name, entry)
}

// BestLog looks across all of the client's plans for the same catalog exercise.
func (s *clientService) BestLog(ctx context.Context, clientID, workoutExerciseID primitive.ObjectID) (*domain.ExerciseLog, error) {
	we, err := s.ownWorkoutExercise(ctx, clientID, workoutExerciseID)
	if err != nil {
		return nil, err
	}
	best, err := s.store.Logs.Best(ctx, clientID, we.ExerciseID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return best, err
}

func (s *clientService) Statistics(ctx context.Context, clientID primitive.ObjectID) ([]domain.ExerciseLog, error) {
	return s.store.Logs.List(ctx, repository.LogFilter{ClientID: clientID})
}

func (s *clientService) ViewLog(ctx context.Context, viewerID, logID primitive.ObjectID) (*domain.ExerciseLog, error) {
	return viewableLog(ctx, s.store, viewerID, logID)
}

func viewableLog(ctx context.Context, store *repository.Store, viewerID, logID primitive.ObjectID) (*domain.ExerciseLog, error) {
	entry, err := store.Logs.GetByID(ctx, logID)
	if err != nil {
		return nil, notFound(err, ErrLogNotFound)
	}
	if entry.ClientID != viewerID && entry.TrainerID != viewerID {
		return nil, ErrForbidden
	}
	return entry, nil
}
