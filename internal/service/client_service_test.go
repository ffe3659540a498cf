package service

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/repository/memory"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestLogExerciseNotifiesTrainer(t *testing.T) {
	e := newEnv(t)
	squat := e.exercise(t, "Back Squat")
	_, _, wes := e.schedule(t, monday, squat)

	entry, err := e.clients.LogExercise(context.Background(), e.client.ID, wes[0].ID, LogInput{
		WeightKg:      102.5,
		RepsCompleted: 5,
		RIRActual:     intPtr(2),
		Notes:         "felt strong",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.LogCompleted, entry.Status)
	assert.Equal(t, wes[0].PlanID, entry.PlanID)
	assert.Equal(t, e.trainer.ID, entry.TrainerID)
	assert.Equal(t, squat.ID, entry.ExerciseID)
	assert.False(t, entry.CompletedAt.IsZero())
	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.CounterLogsRecorded))

	sent := e.mail.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, []string{e.trainer.Email}, sent[0].To)
	assert.Equal(t, "Training report from "+e.client.Username, sent[0].Subject)
	assert.Contains(t, sent[0].Body, "Back Squat")
	assert.Contains(t, sent[0].Body, "102.5")
	assert.Contains(t, sent[0].Body, "felt strong")
}

func TestLogExerciseSurvivesMailFailure(t *testing.T) {
	e := newEnv(t)
	_, _, wes := e.schedule(t, monday, e.exercise(t, "Row"))
	e.mail.Err = errors.New("smtp down")

	entry, err := e.clients.LogExercise(context.Background(), e.client.ID, wes[0].ID, LogInput{WeightKg: 50, RepsCompleted: 10, Status: domain.LogHalf})
	require.NoError(t, err)
	assert.Equal(t, domain.LogHalf, entry.Status)
	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.CounterEmails.WithLabelValues("log_recorded", "failed")))
}

func TestLogExerciseValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, _, wes := e.schedule(t, monday, e.exercise(t, "Row"))

	for _, in := range []LogInput{
		{WeightKg: -1},
		{RepsCompleted: -1},
		{RIRActual: intPtr(-1)},
		{RPEActual: intPtr(0)},
		{Status: "skipped"},
	} {
		_, err := e.clients.LogExercise(ctx, e.client.ID, wes[0].ID, in)
		assert.ErrorIs(t, err, ErrInvalidInput, "%+v", in)
	}

	stranger := e.register(t, domain.RoleClient, "secret-pass")
	_, err := e.clients.LogExercise(ctx, stranger.ID, wes[0].ID, LogInput{WeightKg: 10})
	assert.ErrorIs(t, err, ErrWorkoutExerciseNotFound)
	assert.Empty(t, e.mail.Sent())
}

func TestPlanProgress(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	squat, bench := e.exercise(t, "Squat"), e.exercise(t, "Bench")
	plan, workout, wes := e.schedule(t, monday, squat, bench)

	detail, err := e.clients.ViewPlan(ctx, e.client.ID, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, detail.Progress.CompletedExercises)
	assert.Equal(t, 0.0, detail.Progress.Percent)

	// Logging the same exercise twice counts it once.
	e.logDone(t, wes[0].ID, 100, 5)
	e.logDone(t, wes[0].ID, 105, 5)
	_, err = e.clients.LogExercise(ctx, e.client.ID, wes[1].ID, LogInput{WeightKg: 60, RepsCompleted: 4, Status: domain.LogHalf})
	require.NoError(t, err)

	detail, err = e.clients.ViewPlan(ctx, e.client.ID, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, detail.Progress.TotalExercises)
	assert.Equal(t, 1, detail.Progress.CompletedExercises)
	assert.Equal(t, 50.0, detail.Progress.Percent)
	assert.Equal(t, 0, detail.CompletedWorkouts)

	e.logDone(t, wes[1].ID, 60, 8)
	view, err := e.clients.ViewWorkout(ctx, e.client.ID, workout.ID)
	require.NoError(t, err)
	assert.True(t, view.Complete)
	for _, ex := range view.Exercises {
		assert.True(t, ex.Completed)
	}

	stranger := e.register(t, domain.RoleClient, "secret-pass")
	_, err = e.clients.ViewPlan(ctx, stranger.ID, plan.ID)
	assert.ErrorIs(t, err, ErrPlanNotFound)
	_, err = e.clients.ViewWorkout(ctx, stranger.ID, workout.ID)
	assert.ErrorIs(t, err, ErrWorkoutNotFound)
}

func TestBestLog(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	squat := e.exercise(t, "Squat")
	_, _, first := e.schedule(t, monday, squat)
	_, _, second := e.schedule(t, monday.AddDate(0, 1, 0), squat)

	best, err := e.clients.BestLog(ctx, e.client.ID, second[0].ID)
	require.NoError(t, err)
	assert.Nil(t, best)

	e.logDone(t, first[0].ID, 100, 5)
	top := e.logDone(t, first[0].ID, 110, 3)
	e.logDone(t, second[0].ID, 110, 2)

	best, err = e.clients.BestLog(ctx, e.client.ID, second[0].ID)
	require.NoError(t, err)
	require.NotNil(t, best)
	assert.Equal(t, top.ID, best.ID)
}

func TestClientDashboard(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	squat := e.exercise(t, "Squat")
	plan, _, wes := e.schedule(t, monday, squat)
	for week := 2; week <= 8; week++ {
		_, err := e.trainers.AddWorkout(ctx, e.trainer.ID, plan.ID, WorkoutInput{WeekNumber: week, DayOfWeek: 3, Title: "Session"})
		require.NoError(t, err)
	}
	e.logDone(t, wes[0].ID, 100, 5)

	// Tuesday of week 2: the week 2 session is tomorrow.
	dashboard, err := e.clients.Dashboard(ctx, e.client.ID, monday.AddDate(0, 0, 8).Add(10*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, dashboard.ActivePlans)
	assert.Equal(t, 8, dashboard.TotalWorkouts)
	assert.Equal(t, 1, dashboard.TotalExercises)
	assert.EqualValues(t, 1, dashboard.CompletedExercises)
	assert.Equal(t, 1, dashboard.WeeklySessions)
	require.NotNil(t, dashboard.NextSession)
	assert.Equal(t, monday.AddDate(0, 0, 9), dashboard.NextSession.Date)
	assert.Len(t, dashboard.UpcomingSessions, upcomingSessionsLimit)
	assert.Equal(t, 12.5, dashboard.Consistency)
}

func TestStatisticsAndViewLog(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, _, wes := e.schedule(t, monday, e.exercise(t, "Squat"))

	old := memory.Put(e.store.Logs, domain.ExerciseLog{
		ClientID:          e.client.ID,
		WorkoutExerciseID: wes[0].ID,
		PlanID:            wes[0].PlanID,
		TrainerID:         e.trainer.ID,
		ExerciseID:        wes[0].ExerciseID,
		CompletedAt:       monday.Add(-24 * time.Hour),
		WeightKg:          80,
	})
	recent := e.logDone(t, wes[0].ID, 90, 5)

	logs, err := e.clients.Statistics(ctx, e.client.ID)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, recent.ID, logs[0].ID)
	assert.Equal(t, old, logs[1].ID)

	_, err = e.clients.ViewLog(ctx, e.client.ID, recent.ID)
	assert.NoError(t, err)
	_, err = e.clients.ViewLog(ctx, e.trainer.ID, recent.ID)
	assert.NoError(t, err)
	stranger := e.register(t, domain.RoleTrainer, "secret-pass")
	_, err = e.clients.ViewLog(ctx, stranger.ID, recent.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = e.clients.ViewLog(ctx, e.client.ID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrLogNotFound)
}
