package memory

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/repository"
	"context"
	"errors"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type exerciseLogRepository struct {
	table[domain.ExerciseLog]
}

func NewExerciseLogRepository() repository.ExerciseLogRepository {
	return &exerciseLogRepository{table: newTable[domain.ExerciseLog]()}
}

func (r *exerciseLogRepository) Create(_ context.Context, log *domain.ExerciseLog) (primitive.ObjectID, error) {
	if log.ClientID == primitive.NilObjectID || log.WorkoutExerciseID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("exercise log requires clientId and workoutExerciseId")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	log.ID = primitive.NewObjectID()
	log.CompletedAt = now()
	if log.Status == "" {
		log.Status = domain.LogCompleted
	}
	r.rows[log.ID] = *log
	return log.ID, nil
}

// Put stores a log as given, keeping its CompletedAt. Tests use it to seed
// history in the past.
func Put(repo repository.ExerciseLogRepository, log domain.ExerciseLog) primitive.ObjectID {
	r := repo.(*exerciseLogRepository)
	r.mu.Lock()
	defer r.mu.Unlock()
	if log.ID == primitive.NilObjectID {
		log.ID = primitive.NewObjectID()
	}
	if log.Status == "" {
		log.Status = domain.LogCompleted
	}
	r.rows[log.ID] = log
	return log.ID
}

func (r *exerciseLogRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.ExerciseLog, error) {
	log, err := r.get(id)
	if err != nil {
		return nil, err
	}
	return &log, nil
}

func logMatches(filter repository.LogFilter) func(domain.ExerciseLog) bool {
	return func(l domain.ExerciseLog) bool {
		switch {
		case filter.ClientID != primitive.NilObjectID && l.ClientID != filter.ClientID,
			filter.TrainerID != primitive.NilObjectID && l.TrainerID != filter.TrainerID,
			filter.PlanIDs != nil && !containsID(filter.PlanIDs, l.PlanID),
			filter.WorkoutID != primitive.NilObjectID && l.WorkoutID != filter.WorkoutID,
			filter.WorkoutExerciseID != primitive.NilObjectID && l.WorkoutExerciseID != filter.WorkoutExerciseID,
			filter.ExerciseID != primitive.NilObjectID && l.ExerciseID != filter.ExerciseID,
			filter.Status != "" && l.Status != filter.Status:
			return false
		}
		return inRange(l.CompletedAt, filter.From, filter.To)
	}
}

func (r *exerciseLogRepository) List(_ context.Context, filter repository.LogFilter) ([]domain.ExerciseLog, error) {
	logs := r.filter(logMatches(filter))
	sort.Slice(logs, func(i, j int) bool {
		if !logs[i].CompletedAt.Equal(logs[j].CompletedAt) {
			return logs[i].CompletedAt.After(logs[j].CompletedAt)
		}
		return logs[i].ID.Hex() > logs[j].ID.Hex()
	})
	return limit(logs, filter.Limit), nil
}

func (r *exerciseLogRepository) Count(_ context.Context, filter repository.LogFilter) (int64, error) {
	return int64(len(r.filter(logMatches(filter)))), nil
}

func (r *exerciseLogRepository) Best(_ context.Context, clientID, exerciseID primitive.ObjectID) (*domain.ExerciseLog, error) {
	logs := r.filter(func(l domain.ExerciseLog) bool { return l.ClientID == clientID && l.ExerciseID == exerciseID })
	if len(logs) == 0 {
		return nil, repository.ErrNotFound
	}
	best := logs[0]
	for _, l := range logs[1:] {
		if l.WeightKg > best.WeightKg || (l.WeightKg == best.WeightKg && l.RepsCompleted > best.RepsCompleted) {
			best = l
		}
	}
	return &best, nil
}

func (r *exerciseLogRepository) SetVideo(_ context.Context, id primitive.ObjectID, video domain.VideoRef) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	log, ok := r.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	log.Video = &video
	r.rows[id] = log
	return nil
}

func (r *exerciseLogRepository) SetExerciseByWorkoutExercise(_ context.Context, workoutExerciseID, exerciseID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, log := range r.rows {
		if log.WorkoutExerciseID == workoutExerciseID {
			log.ExerciseID = exerciseID
			r.rows[id] = log
		}
	}
	return nil
}

func (r *exerciseLogRepository) DeleteByWorkoutExercise(_ context.Context, workoutExerciseID primitive.ObjectID) error {
	r.deleteWhere(func(l domain.ExerciseLog) bool { return l.WorkoutExerciseID == workoutExerciseID })
	return nil
}

func (r *exerciseLogRepository) DeleteByWorkout(_ context.Context, workoutID primitive.ObjectID) error {
	r.deleteWhere(func(l domain.ExerciseLog) bool { return l.WorkoutID == workoutID })
	return nil
}

func (r *exerciseLogRepository) DeleteByPlan(_ context.Context, planID primitive.ObjectID) error {
	r.deleteWhere(func(l domain.ExerciseLog) bool { return l.PlanID == planID })
	return nil
}
