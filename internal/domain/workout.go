package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Workout is a single session of a TrainingPlan, placed on the calendar by
// its week number and day of week.
type Workout struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PlanID     primitive.ObjectID `bson:"planId" json:"planId"`
	TrainerID  primitive.ObjectID `bson:"trainerId" json:"trainerId"` // Denormalized for easier query/auth
	ClientID   primitive.ObjectID `bson:"clientId" json:"clientId"`   // Denormalized
	WeekNumber int                `bson:"weekNumber" json:"weekNumber"`
	DayOfWeek  int                `bson:"dayOfWeek" json:"dayOfWeek"` // 1 (Mon) - 7 (Sun)
	Title      string             `bson:"title" json:"title"`
	Date       time.Time          `bson:"date" json:"date"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// WorkoutDate places week/day on the calendar relative to the plan start:
// start + (week-1)*7 + (day-1) days.
func WorkoutDate(planStart time.Time, weekNumber, dayOfWeek int) time.Time {
	return Day(planStart).AddDate(0, 0, (weekNumber-1)*7+(dayOfWeek-1))
}

// Day truncates t to midnight UTC.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WorkoutExercise is one prescribed exercise within a workout.
type WorkoutExercise struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WorkoutID         primitive.ObjectID `bson:"workoutId" json:"workoutId"`
	PlanID            primitive.ObjectID `bson:"planId" json:"planId"`       // Denormalized for cascades and reports
	TrainerID         primitive.ObjectID `bson:"trainerId" json:"trainerId"` // Denormalized
	ClientID          primitive.ObjectID `bson:"clientId" json:"clientId"`   // Denormalized
	ExerciseID        primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	Sets              int                `bson:"sets" json:"sets"`
	RepsTarget        string             `bson:"repsTarget" json:"repsTarget"` // e.g., "8-10"
	RIRTarget         *int               `bson:"rirTarget,omitempty" json:"rirTarget,omitempty"`
	RPETarget         *int               `bson:"rpeTarget,omitempty" json:"rpeTarget,omitempty"`
	RestPeriodSeconds int                `bson:"restPeriodSeconds" json:"restPeriodSeconds"`
	Notes             string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Order             int                `bson:"order" json:"order"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

const (
	DefaultRestPeriodSeconds = 60
	DefaultExerciseOrder     = 1
)
