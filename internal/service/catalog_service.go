package service

import (
	"alcyxob/fitcoach/internal/cache"
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/repository"
	"context"
	"errors"
	"strings"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrExerciseNotFound = errors.New("exercise not found")
	ErrExerciseExists   = errors.New("an exercise with this name already exists")
	ErrExerciseInUse    = errors.New("exercise is used by a workout and cannot be deleted")
	ErrWarmupNotFound   = errors.New("warmup not found")
)

const exerciseListCacheKey = "catalog:exercises"

type ExerciseInput struct {
	Name        string
	Description string
	VideoURL    string
	MuscleGroup string
	Equipment   string
}

func (in ExerciseInput) validate() (ExerciseInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return in, invalid("exercise name is required")
	}
	return in, nil
}

// CatalogService manages the shared exercise and warmup catalogs.
type CatalogService interface {
	CreateExercise(ctx context.Context, trainerID primitive.ObjectID, in ExerciseInput) (*domain.Exercise, error)
	GetExercise(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, error)
	ListExercises(ctx context.Context) ([]domain.Exercise, error)
	UpdateExercise(ctx context.Context, exerciseID primitive.ObjectID, in ExerciseInput) (*domain.Exercise, error)
	DeleteExercise(ctx context.Context, exerciseID primitive.ObjectID) error

	// SaveWarmup creates the warmup when it has no ID and updates it otherwise.
	SaveWarmup(ctx context.Context, warmup domain.Warmup) (*domain.Warmup, error)
	ListWarmups(ctx context.Context) (domain.WarmupsByType, error)
	DeleteWarmup(ctx context.Context, warmupID primitive.ObjectID) error
}

type catalogService struct {
	exerciseRepo        repository.ExerciseRepository
	warmupRepo          repository.WarmupRepository
	workoutExerciseRepo repository.WorkoutExerciseRepository
	cache               *cache.JSONCache
}

// NewCatalogService creates the catalog service. listCache may be nil.
func NewCatalogService(store *repository.Store, listCache *cache.JSONCache) CatalogService {
	return &catalogService{
		exerciseRepo:        store.Exercises,
		warmupRepo:          store.Warmups,
		workoutExerciseRepo: store.WorkoutExercises,
		cache:               listCache,
	}
}

func (s *catalogService) invalidate() {
	if s.cache != nil {
		s.cache.Delete(exerciseListCacheKey)
	}
}

func (s *catalogService) CreateExercise(ctx context.Context, trainerID primitive.ObjectID, in ExerciseInput) (*domain.Exercise, error) {
	in, err := in.validate()
	if err != nil {
		return nil, err
	}

	exercise := &domain.Exercise{
		Name:        in.Name,
		Description: in.Description,
		VideoURL:    in.VideoURL,
		MuscleGroup: in.MuscleGroup,
		Equipment:   in.Equipment,
		CreatedBy:   trainerID,
	}
	if _, err := s.exerciseRepo.Create(ctx, exercise); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrExerciseExists
		}
		return nil, err
	}
	s.invalidate()
	return exercise, nil
}

func (s *catalogService) GetExercise(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		return nil, notFound(err, ErrExerciseNotFound)
	}
	return exercise, nil
}

// ListExercises returns the catalog sorted by name, served from the cache
// when possible.
func (s *catalogService) ListExercises(ctx context.Context) ([]domain.Exercise, error) {
	var exercises []domain.Exercise
	if s.cache != nil && s.cache.Get(exerciseListCacheKey, &exercises) {
		return exercises, nil
	}

	exercises, err := s.exerciseRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(exerciseListCacheKey, exercises)
	}
	return exercises, nil
}

func (s *catalogService) UpdateExercise(ctx context.Context, exerciseID primitive.ObjectID, in ExerciseInput) (*domain.Exercise, error) {
	in, err := in.validate()
	if err != nil {
		return nil, err
	}
	exercise, err := s.GetExercise(ctx, exerciseID)
	if err != nil {
		return nil, err
	}

	exercise.Name = in.Name
	exercise.Description = in.Description
	exercise.VideoURL = in.VideoURL
	exercise.MuscleGroup = in.MuscleGroup
	exercise.Equipment = in.Equipment
	if err := s.exerciseRepo.Update(ctx, exercise); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrExerciseExists
		}
		return nil, notFound(err, ErrExerciseNotFound)
	}
	s.invalidate()
	return exercise, nil
}

// DeleteExercise refuses to remove exercises that workouts still prescribe.
func (s *catalogService) DeleteExercise(ctx context.Context, exerciseID primitive.ObjectID) error {
	inUse, err := s.workoutExerciseRepo.ExistsForExercise(ctx, exerciseID)
	if err != nil {
		return err
	}
	if inUse {
		return ErrExerciseInUse
	}
	if err := s.exerciseRepo.Delete(ctx, exerciseID); err != nil {
		return notFound(err, ErrExerciseNotFound)
	}
	s.invalidate()
	log.Debugf("deleted exercise %s", exerciseID.Hex())
	return nil
}

func (s *catalogService) SaveWarmup(ctx context.Context, warmup domain.Warmup) (*domain.Warmup, error) {
	warmup.Name = strings.TrimSpace(warmup.Name)
	if warmup.Name == "" {
		return nil, invalid("warmup name is required")
	}
	if !warmup.Type.Valid() {
		return nil, invalid("warmup type must be %q or %q", domain.WarmupUpperBody, domain.WarmupLowerBody)
	}

	if warmup.ID == primitive.NilObjectID {
		if _, err := s.warmupRepo.Create(ctx, &warmup); err != nil {
			return nil, err
		}
		return &warmup, nil
	}
	if err := s.warmupRepo.Update(ctx, &warmup); err != nil {
		return nil, notFound(err, ErrWarmupNotFound)
	}
	return s.warmupRepo.GetByID(ctx, warmup.ID)
}

func (s *catalogService) ListWarmups(ctx context.Context) (domain.WarmupsByType, error) {
	warmups, err := s.warmupRepo.List(ctx)
	if err != nil {
		return domain.WarmupsByType{}, err
	}
	return domain.GroupWarmups(warmups), nil
}

func (s *catalogService) DeleteWarmup(ctx context.Context, warmupID primitive.ObjectID) error {
	return notFound(s.warmupRepo.Delete(ctx, warmupID), ErrWarmupNotFound)
}
