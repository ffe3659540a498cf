// internal/domain/exercise.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Exercise is an entry of the shared exercise catalog.
type Exercise struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"` // Unique across the catalog
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	VideoURL    string             `bson:"videoUrl,omitempty" json:"videoUrl,omitempty"`
	MuscleGroup string             `bson:"muscleGroup,omitempty" json:"muscleGroup,omitempty"` // e.g., "Chest", "Legs", "Back"
	Equipment   string             `bson:"equipment,omitempty" json:"equipment,omitempty"`
	CreatedBy   primitive.ObjectID `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// WarmupType splits warmups into upper and lower body routines.
type WarmupType string

const (
	WarmupUpperBody WarmupType = "upper"
	WarmupLowerBody WarmupType = "lower"
)

func (t WarmupType) Valid() bool {
	return t == WarmupUpperBody || t == WarmupLowerBody
}

// Warmup is a short routine shown on both dashboards.
type Warmup struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name       string             `bson:"name" json:"name"`
	SeriesReps string             `bson:"seriesReps" json:"seriesReps"` // e.g., "2x15"
	Notes      string             `bson:"notes,omitempty" json:"notes,omitempty"`
	VideoURL   string             `bson:"videoUrl,omitempty" json:"videoUrl,omitempty"`
	Type       WarmupType         `bson:"type" json:"type"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// WarmupsByType groups warmups for dashboard rendering.
type WarmupsByType struct {
	UpperBody []Warmup `json:"upperBody"`
	LowerBody []Warmup `json:"lowerBody"`
}

// GroupWarmups splits warmups by type, keeping the input order.
func GroupWarmups(warmups []Warmup) WarmupsByType {
	grouped := WarmupsByType{UpperBody: []Warmup{}, LowerBody: []Warmup{}}
	for _, w := range warmups {
		switch w.Type {
		case WarmupUpperBody:
			grouped.UpperBody = append(grouped.UpperBody, w)
		case WarmupLowerBody:
			grouped.LowerBody = append(grouped.LowerBody, w)
		}
	}
	return grouped
}
