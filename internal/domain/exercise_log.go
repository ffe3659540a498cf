package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type LogStatus string

const (
	LogCompleted    LogStatus = "completed"
	LogHalf         LogStatus = "half"
	LogNotCompleted LogStatus = "not_completed"
)

func (s LogStatus) Valid() bool {
	switch s {
	case LogCompleted, LogHalf, LogNotCompleted:
		return true
	}
	return false
}

// Label is the human readable status used in notifications.
func (s LogStatus) Label() string {
	switch s {
	case LogCompleted:
		return "Completed"
	case LogHalf:
		return "Half done"
	case LogNotCompleted:
		return "Not completed"
	}
	return string(s)
}

// ExerciseLog records what a client actually did for one WorkoutExercise.
type ExerciseLog struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClientID          primitive.ObjectID `bson:"clientId" json:"clientId"`
	WorkoutExerciseID primitive.ObjectID `bson:"workoutExerciseId" json:"workoutExerciseId"`
	WorkoutID         primitive.ObjectID `bson:"workoutId" json:"workoutId"`   // Denormalized
	PlanID            primitive.ObjectID `bson:"planId" json:"planId"`         // Denormalized
	TrainerID         primitive.ObjectID `bson:"trainerId" json:"trainerId"`   // Denormalized
	ExerciseID        primitive.ObjectID `bson:"exerciseId" json:"exerciseId"` // Denormalized for best-log lookups
	CompletedAt       time.Time          `bson:"completedAt" json:"completedAt"`
	WeightKg          float64            `bson:"weightKg" json:"weightKg"`
	RepsCompleted     int                `bson:"repsCompleted" json:"repsCompleted"`
	RIRActual         *int               `bson:"rirActual,omitempty" json:"rirActual,omitempty"`
	RPEActual         *int               `bson:"rpeActual,omitempty" json:"rpeActual,omitempty"`
	Notes             string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Status            LogStatus          `bson:"status" json:"status"`
	Video             *VideoRef          `bson:"video,omitempty" json:"video,omitempty"`
}

// VideoRef points at a video stored in the object store. The key itself is
// never exposed; clients get presigned URLs instead.
type VideoRef struct {
	ObjectKey   string    `bson:"objectKey" json:"-"`
	FileName    string    `bson:"fileName" json:"fileName"`
	ContentType string    `bson:"contentType" json:"contentType"`
	Size        int64     `bson:"size" json:"size"`
	UploadedAt  time.Time `bson:"uploadedAt" json:"uploadedAt"`
}
