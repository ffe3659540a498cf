package report

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/metrics"
	"alcyxob/fitcoach/internal/notify"
	"alcyxob/fitcoach/internal/progress"
	"alcyxob/fitcoach/internal/repository"
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/multierr"
)

// WeeklyReporter emails every active plan's trainer a spreadsheet of the
// client's previous week.
type WeeklyReporter struct {
	store    *repository.Store
	notifier *notify.Notifier
	metrics  *metrics.Manager
}

func NewWeeklyReporter(store *repository.Store, notifier *notify.Notifier, metricsManager *metrics.Manager) *WeeklyReporter {
	return &WeeklyReporter{store: store, notifier: notifier, metrics: metricsManager}
}

// Run reports on the week before the one containing now. Plans without
// workouts in that week are skipped. A failing plan does not stop the
// others; their errors are combined. It returns the number of reports sent.
func (r *WeeklyReporter) Run(ctx context.Context, now time.Time) (int, error) {
	start, end := progress.ReportWeek(now)

	plans, err := r.store.Plans.List(ctx, repository.PlanFilter{Status: domain.PlanActive})
	if err != nil {
		return 0, fmt.Errorf("list active plans: %w", err)
	}

	sent := 0
	var errs error
	for _, plan := range plans {
		if err := ctx.Err(); err != nil {
			return sent, multierr.Append(errs, err)
		}
		ok, err := r.reportPlan(ctx, plan, start, end)
		if err != nil {
			log.Errorf("weekly report for plan %s: %s", plan.ID.Hex(), err)
			errs = multierr.Append(errs, fmt.Errorf("plan %s: %w", plan.ID.Hex(), err))
			continue
		}
		if ok {
			sent++
			log.Infof("weekly report sent for plan %q", plan.Name)
		}
	}
	return sent, errs
}

func (r *WeeklyReporter) reportPlan(ctx context.Context, plan domain.TrainingPlan, start, end time.Time) (bool, error) {
	planIDs := []primitive.ObjectID{plan.ID}
	workouts, err := r.store.Workouts.List(ctx, repository.WorkoutFilter{PlanIDs: planIDs, From: &start, To: &end})
	if err != nil {
		return false, err
	}
	if len(workouts) == 0 {
		return false, nil
	}

	workoutIDs := make([]primitive.ObjectID, len(workouts))
	for i, w := range workouts {
		workoutIDs[i] = w.ID
	}
	workoutExercises, err := r.store.WorkoutExercises.ListByWorkouts(ctx, workoutIDs)
	if err != nil {
		return false, err
	}
	completed, err := r.store.Logs.List(ctx, repository.LogFilter{PlanIDs: planIDs, Status: domain.LogCompleted})
	if err != nil {
		return false, err
	}
	consistency := progress.Consistency(workouts, workoutExercises, completed)

	rows, err := r.rows(ctx, planIDs, workoutExercises, start, end, consistency)
	if err != nil {
		return false, err
	}
	workbook, err := BuildWeeklyWorkbook(plan.Name, rows)
	if err != nil {
		return false, err
	}

	trainer, err := r.store.Users.GetByID(ctx, plan.TrainerID)
	if err != nil {
		return false, fmt.Errorf("trainer: %w", err)
	}
	client, err := r.store.Users.GetByID(ctx, plan.ClientID)
	if err != nil {
		return false, fmt.Errorf("client: %w", err)
	}

	err = r.notifier.WeeklyReport(ctx, notify.WeeklyReport{
		TrainerEmail:   trainer.Email,
		PlanName:       plan.Name,
		ClientUsername: client.Username,
		Start:          start,
		End:            end,
		Consistency:    consistency,
		Workbook:       workbook,
	})
	if err != nil {
		return false, err
	}
	if r.metrics != nil {
		r.metrics.CounterReportsSent.Inc()
	}
	return true, nil
}

// rows averages the plan's logs in [start, end] for the exercises prescribed
// in the window's workouts.
func (r *WeeklyReporter) rows(ctx context.Context, planIDs []primitive.ObjectID, workoutExercises []domain.WorkoutExercise, start, end time.Time, consistency float64) ([]Row, error) {
	prescribed := make(map[primitive.ObjectID]struct{})
	exerciseIDs := make([]primitive.ObjectID, 0, len(workoutExercises))
	for _, we := range workoutExercises {
		if _, ok := prescribed[we.ExerciseID]; !ok {
			prescribed[we.ExerciseID] = struct{}{}
			exerciseIDs = append(exerciseIDs, we.ExerciseID)
		}
	}
	if len(exerciseIDs) == 0 {
		return nil, nil
	}

	exercises, err := r.store.Exercises.GetByIDs(ctx, exerciseIDs)
	if err != nil {
		return nil, err
	}
	names := make(map[primitive.ObjectID]string, len(exercises))
	for _, e := range exercises {
		names[e.ID] = e.Name
	}

	logs, err := r.store.Logs.List(ctx, repository.LogFilter{PlanIDs: planIDs, From: &start, To: &end})
	if err != nil {
		return nil, err
	}
	samples := make([]sample, 0, len(logs))
	for _, l := range logs {
		name, ok := names[l.ExerciseID]
		if !ok {
			continue
		}
		samples = append(samples, sample{exercise: name, weight: l.WeightKg, reps: l.RepsCompleted, rir: l.RIRActual, rpe: l.RPEActual})
	}
	return aggregateRows(samples, consistency), nil
}
