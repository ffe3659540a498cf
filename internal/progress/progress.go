// Package progress computes plan progress, workout completion and
// consistency figures from plain domain values.
package progress

import (
	"alcyxob/fitcoach/internal/domain"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Percent returns done/total as a percentage rounded to two decimals, or 0
// when total is 0.
func Percent(done, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(done)/float64(total)*100*100) / 100
}

// CompletedSet returns the IDs of workout-exercises that have at least one
// log with status completed.
func CompletedSet(logs []domain.ExerciseLog) map[primitive.ObjectID]struct{} {
	done := make(map[primitive.ObjectID]struct{}, len(logs))
	for _, l := range logs {
		if l.Status == domain.LogCompleted {
			done[l.WorkoutExerciseID] = struct{}{}
		}
	}
	return done
}

// Summary is the progress of a set of workout-exercises.
type Summary struct {
	TotalExercises     int     `json:"totalExercises"`
	CompletedExercises int     `json:"completedExercises"`
	Percent            float64 `json:"progress"`
}

// Plan summarizes how many of exercises have been completed at least once.
// Repeated logs for the same workout-exercise count once.
func Plan(exercises []domain.WorkoutExercise, logs []domain.ExerciseLog) Summary {
	done := CompletedSet(logs)
	completed := 0
	for _, we := range exercises {
		if _, ok := done[we.ID]; ok {
			completed++
		}
	}
	return Summary{
		TotalExercises:     len(exercises),
		CompletedExercises: completed,
		Percent:            Percent(completed, len(exercises)),
	}
}

// CompletedWorkouts returns the IDs of workouts that have at least one
// workout-exercise and whose every workout-exercise has a completed log.
func CompletedWorkouts(exercises []domain.WorkoutExercise, logs []domain.ExerciseLog) map[primitive.ObjectID]bool {
	done := CompletedSet(logs)
	complete := make(map[primitive.ObjectID]bool)
	for _, we := range exercises {
		_, ok := done[we.ID]
		prev, seen := complete[we.WorkoutID]
		complete[we.WorkoutID] = ok && (!seen || prev)
	}
	return complete
}

// Consistency is the percentage of workouts that are complete.
func Consistency(workouts []domain.Workout, exercises []domain.WorkoutExercise, logs []domain.ExerciseLog) float64 {
	complete := CompletedWorkouts(exercises, logs)
	n := 0
	for _, w := range workouts {
		if complete[w.ID] {
			n++
		}
	}
	return Percent(n, len(workouts))
}

// ReportWeek returns the Monday..Sunday week before the one containing
// today. end is the last instant of Sunday.
func ReportWeek(today time.Time) (start, end time.Time) {
	day := domain.Day(today)
	weekday := (int(day.Weekday()) + 6) % 7 // Monday = 0
	start = day.AddDate(0, 0, -(weekday + 7))
	end = start.AddDate(0, 0, 7).Add(-time.Nanosecond)
	return start, end
}
