// Package memory implements the repository interfaces on top of plain maps.
// It backs the "memory" database driver used for local development and for
// service and handler tests.
package memory

import (
	"alcyxob/fitcoach/internal/repository"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NewStore returns a fresh, empty in-memory store.
func NewStore() *repository.Store {
	return &repository.Store{
		Users:            NewUserRepository(),
		Exercises:        NewExerciseRepository(),
		Warmups:          NewWarmupRepository(),
		Plans:            NewTrainingPlanRepository(),
		Workouts:         NewWorkoutRepository(),
		WorkoutExercises: NewWorkoutExerciseRepository(),
		Logs:             NewExerciseLogRepository(),
		Uploads:          NewVideoUploadRepository(),
	}
}

// table is a mutex guarded map of documents keyed by ID.
type table[T any] struct {
	mu   sync.RWMutex
	rows map[primitive.ObjectID]T
}

func newTable[T any]() table[T] {
	return table[T]{rows: make(map[primitive.ObjectID]T)}
}

func (t *table[T]) get(id primitive.ObjectID) (T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	row, ok := t.rows[id]
	if !ok {
		var zero T
		return zero, repository.ErrNotFound
	}
	return row, nil
}

func (t *table[T]) filter(keep func(T) bool) []T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]T, 0, len(t.rows))
	for _, row := range t.rows {
		if keep(row) {
			out = append(out, row)
		}
	}
	return out
}

func (t *table[T]) deleteWhere(match func(T) bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, row := range t.rows {
		if match(row) {
			delete(t.rows, id)
		}
	}
}

func (t *table[T]) delete(id primitive.ObjectID) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(t.rows, id)
	return nil
}

func now() time.Time {
	return time.Now().UTC()
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func inRange(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && t.After(*to) {
		return false
	}
	return true
}

func limit[T any](rows []T, n int64) []T {
	if n > 0 && int64(len(rows)) > n {
		return rows[:n]
	}
	return rows
}
