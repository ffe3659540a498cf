// internal/domain/training_plan.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PlanStatus string

const (
	PlanActive    PlanStatus = "active"
	PlanCompleted PlanStatus = "completed"
)

func (s PlanStatus) Valid() bool {
	return s == PlanActive || s == PlanCompleted
}

// TrainingPlan is a dated program a trainer prescribes to one client.
type TrainingPlan struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrainerID primitive.ObjectID `bson:"trainerId" json:"trainerId"`
	ClientID  primitive.ObjectID `bson:"clientId" json:"clientId"`
	Name      string             `bson:"name" json:"name"` // e.g., "Phase 1: Hypertrophy"
	StartDate time.Time          `bson:"startDate" json:"startDate"`
	EndDate   time.Time          `bson:"endDate" json:"endDate"`
	Status    PlanStatus         `bson:"status" json:"status"`
	Notes     string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (p *TrainingPlan) IsActive() bool {
	return p.Status == PlanActive
}
