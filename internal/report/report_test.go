package report

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/metrics"
	"alcyxob/fitcoach/internal/notify"
	"alcyxob/fitcoach/internal/repository"
	"alcyxob/fitcoach/internal/repository/memory"
	"bytes"
	"context"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func intPtr(v int) *int { return &v }

func TestSheetTitle(t *testing.T) {
	assert.Equal(t, "Weekly Report - Phase 1", SheetTitle("Phase 1"))
	assert.Equal(t, "Weekly Report - AB", SheetTitle("A/B"))

	long := SheetTitle("Phase 1: Hypertrophy and strength block")
	assert.LessOrEqual(t, utf8.RuneCountInString(long), 31)
	assert.Equal(t, "Weekly Report - Phase 1 Hypertr", long)

	accented := SheetTitle("Fuerza máxima ñandú ñandú ñandú")
	assert.Equal(t, 31, utf8.RuneCountInString(accented))
	assert.True(t, utf8.ValidString(accented))
}

func TestAggregateRows(t *testing.T) {
	rows := aggregateRows([]sample{
		{exercise: "Squat", weight: 100, reps: 5, rir: intPtr(2)},
		{exercise: "Bench", weight: 60, reps: 8, rpe: intPtr(8)},
		{exercise: "Squat", weight: 110, reps: 3},
	}, 50)

	require.Len(t, rows, 2)
	assert.Equal(t, "Bench", rows[0].Exercise)
	assert.Nil(t, rows[0].AvgRIR)
	require.NotNil(t, rows[0].AvgRPE)
	assert.Equal(t, 8.0, *rows[0].AvgRPE)

	squat := rows[1]
	assert.Equal(t, 105.0, squat.AvgWeight)
	assert.Equal(t, 4.0, squat.AvgReps)
	require.NotNil(t, squat.AvgRIR)
	assert.Equal(t, 2.0, *squat.AvgRIR)
	assert.Nil(t, squat.AvgRPE)
	assert.Equal(t, 50.0, squat.Consistency)
}

func readSheet(t *testing.T, data []byte) (string, [][]string) {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	sheets := f.GetSheetList()
	require.Len(t, sheets, 1)
	rows, err := f.GetRows(sheets[0])
	require.NoError(t, err)
	return sheets[0], rows
}

func TestBuildWeeklyWorkbook(t *testing.T) {
	rir := 1.5
	data, err := BuildWeeklyWorkbook("Strength", []Row{
		{Exercise: "Deadlift", AvgWeight: 140, AvgReps: 5, AvgRIR: &rir, Consistency: 75},
	})
	require.NoError(t, err)

	sheet, rows := readSheet(t, data)
	assert.Equal(t, "Weekly Report - Strength", sheet)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Exercise", "Avg Weight (kg)", "Avg Reps", "Avg RIR", "Avg RPE", "Consistency (%)"}, rows[0])
	assert.Equal(t, "Deadlift", rows[1][0])
	assert.Equal(t, "140", rows[1][1])
	assert.Equal(t, "1.5", rows[1][3])
	assert.Equal(t, "", rows[1][4])
	assert.Equal(t, "75", rows[1][5])
}

type fixture struct {
	store   *repository.Store
	trainer domain.User
	client  domain.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{store: memory.NewStore()}

	f.trainer = domain.User{Username: "coach", Email: "coach@example.com", PasswordHash: "x", Role: domain.RoleTrainer}
	_, err := f.store.Users.Create(ctx, &f.trainer)
	require.NoError(t, err)
	f.client = domain.User{Username: "jdoe", Email: "jdoe@example.com", PasswordHash: "x", Role: domain.RoleClient, AssignedProfessionalID: &f.trainer.ID}
	_, err = f.store.Users.Create(ctx, &f.client)
	require.NoError(t, err)
	return f
}

func (f *fixture) plan(t *testing.T, name string, trainerID primitive.ObjectID, start time.Time, status domain.PlanStatus) domain.TrainingPlan {
	t.Helper()
	p := domain.TrainingPlan{TrainerID: trainerID, ClientID: f.client.ID, Name: name, StartDate: start, EndDate: start.AddDate(0, 1, 0), Status: status}
	_, err := f.store.Plans.Create(context.Background(), &p)
	require.NoError(t, err)
	return p
}

func (f *fixture) workout(t *testing.T, p domain.TrainingPlan, week, day int) domain.Workout {
	t.Helper()
	w := domain.Workout{PlanID: p.ID, TrainerID: p.TrainerID, ClientID: p.ClientID, WeekNumber: week, DayOfWeek: day, Title: "session", Date: domain.WorkoutDate(p.StartDate, week, day)}
	_, err := f.store.Workouts.Create(context.Background(), &w)
	require.NoError(t, err)
	return w
}

func (f *fixture) prescribe(t *testing.T, w domain.Workout, e domain.Exercise) domain.WorkoutExercise {
	t.Helper()
	we := domain.WorkoutExercise{WorkoutID: w.ID, PlanID: w.PlanID, TrainerID: w.TrainerID, ClientID: w.ClientID, ExerciseID: e.ID, Sets: 3, RepsTarget: "5"}
	_, err := f.store.WorkoutExercises.Create(context.Background(), &we)
	require.NoError(t, err)
	return we
}

func (f *fixture) exercise(t *testing.T, name string) domain.Exercise {
	t.Helper()
	e := domain.Exercise{Name: name}
	_, err := f.store.Exercises.Create(context.Background(), &e)
	require.NoError(t, err)
	return e
}

func (f *fixture) log(we domain.WorkoutExercise, at time.Time, weight float64, reps int, rir, rpe *int, status domain.LogStatus) {
	memory.Put(f.store.Logs, domain.ExerciseLog{
		ClientID: we.ClientID, WorkoutExerciseID: we.ID, WorkoutID: we.WorkoutID, PlanID: we.PlanID,
		TrainerID: we.TrainerID, ExerciseID: we.ExerciseID, CompletedAt: at,
		WeightKg: weight, RepsCompleted: reps, RIRActual: rir, RPEActual: rpe, Status: status,
	})
}

func TestWeeklyReporter_Run(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2024, 5, 15, 8, 0, 0, 0, time.UTC) // window: 6..12 May
	start := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)

	squat, bench := f.exercise(t, "Squat"), f.exercise(t, "Bench")

	plan := f.plan(t, "Hypertrophy", f.trainer.ID, start, domain.PlanActive)
	monday, wednesday := f.workout(t, plan, 1, 1), f.workout(t, plan, 1, 3)
	f.workout(t, plan, 2, 1) // next week, outside the window
	mSquat, mBench := f.prescribe(t, monday, squat), f.prescribe(t, monday, bench)
	wSquat := f.prescribe(t, wednesday, squat)
	f.log(mSquat, start.Add(18*time.Hour), 100, 5, intPtr(2), nil, domain.LogCompleted)
	f.log(mBench, start.Add(18*time.Hour), 60, 8, nil, intPtr(8), domain.LogCompleted)
	f.log(wSquat, start.AddDate(0, 0, 2).Add(18*time.Hour), 110, 3, nil, nil, domain.LogHalf)
	f.log(wSquat, start.AddDate(0, 0, 8), 200, 1, nil, nil, domain.LogHalf) // logged after the window

	// Another plan's logs for the same exercise stay out of this report.
	other := f.plan(t, "Other", f.trainer.ID, start, domain.PlanActive)
	otherWorkout := f.workout(t, other, 2, 1)
	f.log(f.prescribe(t, otherWorkout, squat), start.Add(20*time.Hour), 500, 1, nil, nil, domain.LogCompleted)

	completedPlan := f.plan(t, "Done", f.trainer.ID, start, domain.PlanCompleted)
	f.workout(t, completedPlan, 1, 1)

	sender := &notify.RecordingSender{}
	m := metrics.NewTestManager()
	reporter := NewWeeklyReporter(f.store, notify.NewNotifier(sender, m), m)

	sent, err := reporter.Run(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterReportsSent))

	msgs := sender.Sent()
	require.Len(t, msgs, 1)
	msg := msgs[0]
	assert.Equal(t, []string{"coach@example.com"}, msg.To)
	assert.Equal(t, "Weekly report: Hypertrophy for jdoe", msg.Subject)
	assert.Contains(t, msg.Body, "Consistency: 50.00%")
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "weekly_report_2024-05-06.xlsx", msg.Attachments[0].Name)

	_, rows := readSheet(t, msg.Attachments[0].Data)
	require.Len(t, rows, 3)
	assert.Equal(t, "Bench", rows[1][0])
	assert.Equal(t, "Squat", rows[2][0])
	assert.Equal(t, "105", rows[2][1])
	assert.Equal(t, "4", rows[2][2])
	assert.Equal(t, "2", rows[2][3])
	assert.Equal(t, "50", rows[2][5])
}

func TestWeeklyReporter_Run_ContinuesPastFailingPlan(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2024, 5, 15, 8, 0, 0, 0, time.UTC)
	start := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)

	orphan := f.plan(t, "Orphan", primitive.NewObjectID(), start, domain.PlanActive)
	f.workout(t, orphan, 1, 1)
	good := f.plan(t, "Good", f.trainer.ID, start, domain.PlanActive)
	f.workout(t, good, 1, 2)

	sender := &notify.RecordingSender{}
	reporter := NewWeeklyReporter(f.store, notify.NewNotifier(sender, nil), nil)

	sent, err := reporter.Run(context.Background(), now)
	require.Error(t, err)
	assert.Contains(t, err.Error(), orphan.ID.Hex())
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Equal(t, 1, sent)
	assert.Len(t, sender.Sent(), 1)
}

type countingRunner struct {
	runs atomic.Int32
}

func (r *countingRunner) Run(context.Context, time.Time) (int, error) {
	r.runs.Add(1)
	return 0, nil
}

func TestScheduler(t *testing.T) {
	_, err := NewScheduler("not a schedule", &countingRunner{})
	assert.Error(t, err)

	runner := &countingRunner{}
	s, err := NewScheduler("* * * * * *", runner)
	require.NoError(t, err)
	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool { return runner.runs.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
}
