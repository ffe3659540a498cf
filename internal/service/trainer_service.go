package service

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/repository"
	"alcyxob/fitcoach/internal/storage"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrClientNotFound          = errors.New("client not found")
	ErrPlanNotFound            = errors.New("training plan not found")
	ErrWorkoutNotFound         = errors.New("workout not found")
	ErrWorkoutExerciseNotFound = errors.New("workout exercise not found")
)

type NewClientInput struct {
	Username  string
	Email     string
	RUT       string
	FirstName string
	LastName  string
}

// ClientSummary is one row of a professional's client list.
type ClientSummary struct {
	Client      domain.User `json:"client"`
	ActivePlans int         `json:"activePlans"`
	LastSession *time.Time  `json:"lastSession,omitempty"`
}

type TrainerDashboard struct {
	Plans          []domain.TrainingPlan `json:"plans"`
	ActivePlans    int                   `json:"activePlans"`
	Clients        int                   `json:"clients"`
	WeeklySessions int                   `json:"weeklySessions"`
	TotalExercises int64                 `json:"totalExercises"`
	Warmups        domain.WarmupsByType  `json:"warmups"`
}

type PlanInput struct {
	ClientID  primitive.ObjectID
	Name      string
	StartDate time.Time
	EndDate   time.Time
	Notes     string
}

type PlanUpdate struct {
	Name      string
	StartDate time.Time
	EndDate   time.Time
	Status    domain.PlanStatus
	Notes     string
}

type WorkoutInput struct {
	WeekNumber int
	DayOfWeek  int
	Title      string
}

type WorkoutExerciseInput struct {
	ExerciseID        primitive.ObjectID
	Sets              int
	RepsTarget        string
	RIRTarget         *int
	RPETarget         *int
	RestPeriodSeconds int
	Notes             string
	Order             int
}

type TrainerService interface {
	// Client management. CreateClient returns the generated temporary password.
	CreateClient(ctx context.Context, professionalID primitive.ObjectID, in NewClientInput) (*domain.User, string, error)
	ListClients(ctx context.Context, trainerID primitive.ObjectID) ([]ClientSummary, error)
	ListClientLogs(ctx context.Context, trainerID, clientID primitive.ObjectID) ([]domain.ExerciseLog, error)
	Dashboard(ctx context.Context, trainerID primitive.ObjectID, now time.Time) (*TrainerDashboard, error)

	// Plans
	CreatePlan(ctx context.Context, professionalID primitive.ObjectID, in PlanInput) (*domain.TrainingPlan, error)
	ListPlans(ctx context.Context, trainerID primitive.ObjectID) ([]domain.TrainingPlan, error)
	GetPlanDetail(ctx context.Context, trainerID, planID primitive.ObjectID) (*PlanDetail, error)
	UpdatePlan(ctx context.Context, trainerID, planID primitive.ObjectID, in PlanUpdate) (*domain.TrainingPlan, error)
	DeletePlan(ctx context.Context, trainerID, planID primitive.ObjectID) error

	// Workouts
	AddWorkout(ctx context.Context, trainerID, planID primitive.ObjectID, in WorkoutInput) (*domain.Workout, error)
	GetWorkoutDetail(ctx context.Context, trainerID, workoutID primitive.ObjectID) (*WorkoutDetail, error)
	UpdateWorkout(ctx context.Context, trainerID, workoutID primitive.ObjectID, in WorkoutInput) (*domain.Workout, error)
	DeleteWorkout(ctx context.Context, trainerID, workoutID primitive.ObjectID) error

	// Workout exercises
	AddWorkoutExercise(ctx context.Context, trainerID, workoutID primitive.ObjectID, in WorkoutExerciseInput) (*domain.WorkoutExercise, error)
	UpdateWorkoutExercise(ctx context.Context, trainerID, workoutExerciseID primitive.ObjectID, in WorkoutExerciseInput) (*domain.WorkoutExercise, error)
	DeleteWorkoutExercise(ctx context.Context, trainerID, workoutExerciseID primitive.ObjectID) error
}

// trainerService implements the TrainerService interface.
type trainerService struct {
	store *repository.Store
	files storage.FileStorage
}

// NewTrainerService creates the trainer service. files receives the video
// clean up of deleted logs.
func NewTrainerService(store *repository.Store, files storage.FileStorage) TrainerService {
	return &trainerService{store: store, files: files}
}

// === Client Management ===

// CreateClient registers a client assigned to the professional with a random
// temporary password. The password is returned once and never stored in clear.
func (s *trainerService) CreateClient(ctx context.Context, professionalID primitive.ObjectID, in NewClientInput) (*domain.User, string, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Username == "" || in.Email == "" {
		return nil, "", invalid("username and email are required")
	}

	tempPassword, err := GenerateTempPassword()
	if err != nil {
		return nil, "", fmt.Errorf("generate temporary password: %w", err)
	}

	client := &domain.User{
		Username:               in.Username,
		Email:                  in.Email,
		RUT:                    strings.TrimSpace(in.RUT),
		FirstName:              in.FirstName,
		LastName:               in.LastName,
		Role:                   domain.RoleClient,
		AssignedProfessionalID: &professionalID,
	}
	if err := createUser(ctx, s.store.Users, client, tempPassword); err != nil {
		return nil, "", err
	}
	log.Infof("professional %s created client %s", professionalID.Hex(), client.Username)
	return client, tempPassword, nil
}

// managedClient loads clientID and checks it belongs to professionalID.
func (s *trainerService) managedClient(ctx context.Context, professionalID, clientID primitive.ObjectID) (*domain.User, error) {
	client, err := s.store.Users.GetByID(ctx, clientID)
	if err != nil {
		return nil, notFound(err, ErrClientNotFound)
	}
	if !client.ManagedBy(professionalID) {
		return nil, ErrClientNotFound
	}
	return client, nil
}

func (s *trainerService) ListClients(ctx context.Context, trainerID primitive.ObjectID) ([]ClientSummary, error) {
	clients, err := s.store.Users.ListClientsByProfessional(ctx, trainerID)
	if err != nil {
		return nil, err
	}

	summaries := make([]ClientSummary, 0, len(clients))
	for _, c := range clients {
		active, err := s.store.Plans.List(ctx, repository.PlanFilter{TrainerID: trainerID, ClientID: c.ID, Status: domain.PlanActive})
		if err != nil {
			return nil, err
		}
		last, err := s.store.Logs.List(ctx, repository.LogFilter{ClientID: c.ID, TrainerID: trainerID, Limit: 1})
		if err != nil {
			return nil, err
		}

		summary := ClientSummary{Client: c, ActivePlans: len(active)}
		if len(last) > 0 {
			summary.LastSession = &last[0].CompletedAt
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (s *trainerService) ListClientLogs(ctx context.Context, trainerID, clientID primitive.ObjectID) ([]domain.ExerciseLog, error) {
	if _, err := s.managedClient(ctx, trainerID, clientID); err != nil {
		return nil, err
	}
	return s.store.Logs.List(ctx, repository.LogFilter{ClientID: clientID, TrainerID: trainerID})
}

// Dashboard counts sessions scheduled between today and a week from today.
func (s *trainerService) Dashboard(ctx context.Context, trainerID primitive.ObjectID, now time.Time) (*TrainerDashboard, error) {
	plans, err := s.store.Plans.List(ctx, repository.PlanFilter{TrainerID: trainerID})
	if err != nil {
		return nil, err
	}
	clients, err := s.store.Users.ListClientsByProfessional(ctx, trainerID)
	if err != nil {
		return nil, err
	}

	planIDs := idsOf(plans, func(p domain.TrainingPlan) primitive.ObjectID { return p.ID })
	today := domain.Day(now)
	weekAhead := today.AddDate(0, 0, 7)
	weekly, err := s.store.Workouts.List(ctx, repository.WorkoutFilter{PlanIDs: planIDs, From: &today, To: &weekAhead})
	if err != nil {
		return nil, err
	}
	totalExercises, err := s.store.WorkoutExercises.CountByPlans(ctx, planIDs)
	if err != nil {
		return nil, err
	}
	warmups, err := s.store.Warmups.List(ctx)
	if err != nil {
		return nil, err
	}

	dashboard := &TrainerDashboard{
		Plans:          plans,
		Clients:        len(clients),
		WeeklySessions: len(weekly),
		TotalExercises: totalExercises,
		Warmups:        domain.GroupWarmups(warmups),
	}
	for i := range plans {
		if plans[i].IsActive() {
			dashboard.ActivePlans++
		}
	}
	return dashboard, nil
}

// === Plans ===

func validatePlanDates(start, end time.Time) (time.Time, time.Time, error) {
	if start.IsZero() || end.IsZero() {
		return start, end, invalid("start and end dates are required")
	}
	start, end = domain.Day(start), domain.Day(end)
	if end.Before(start) {
		return start, end, invalid("end date must not be before start date")
	}
	return start, end, nil
}

func (s *trainerService) CreatePlan(ctx context.Context, professionalID primitive.ObjectID, in PlanInput) (*domain.TrainingPlan, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("plan name is required")
	}
	start, end, err := validatePlanDates(in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}
	if _, err := s.managedClient(ctx, professionalID, in.ClientID); err != nil {
		return nil, err
	}

	plan := &domain.TrainingPlan{
		TrainerID: professionalID,
		ClientID:  in.ClientID,
		Name:      name,
		StartDate: start,
		EndDate:   end,
		Status:    domain.PlanActive,
		Notes:     in.Notes,
	}
	if _, err := s.store.Plans.Create(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *trainerService) ListPlans(ctx context.Context, trainerID primitive.ObjectID) ([]domain.TrainingPlan, error) {
	return s.store.Plans.List(ctx, repository.PlanFilter{TrainerID: trainerID})
}

// ownedPlan returns ErrPlanNotFound for plans of other trainers.
func (s *trainerService) ownedPlan(ctx context.Context, trainerID, planID primitive.ObjectID) (*domain.TrainingPlan, error) {
	plan, err := s.store.Plans.GetByID(ctx, planID)
	if err != nil {
		return nil, notFound(err, ErrPlanNotFound)
	}
	if plan.TrainerID != trainerID {
		return nil, ErrPlanNotFound
	}
	return plan, nil
}

func (s *trainerService) GetPlanDetail(ctx context.Context, trainerID, planID primitive.ObjectID) (*PlanDetail, error) {
	plan, err := s.ownedPlan(ctx, trainerID, planID)
	if err != nil {
		return nil, err
	}
	return buildPlanDetail(ctx, s.store, plan)
}

// UpdatePlan re-derives the dates of every workout when the start date moves.
func (s *trainerService) UpdatePlan(ctx context.Context, trainerID, planID primitive.ObjectID, in PlanUpdate) (*domain.TrainingPlan, error) {
	plan, err := s.ownedPlan(ctx, trainerID, planID)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("plan name is required")
	}
	start, end, err := validatePlanDates(in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}
	if in.Status == "" {
		in.Status = plan.Status
	}
	if !in.Status.Valid() {
		return nil, invalid("unknown plan status %q", in.Status)
	}

	startMoved := !start.Equal(plan.StartDate)
	plan.Name = name
	plan.StartDate = start
	plan.EndDate = end
	plan.Status = in.Status
	plan.Notes = in.Notes
	if err := s.store.Plans.Update(ctx, plan); err != nil {
		return nil, notFound(err, ErrPlanNotFound)
	}

	if startMoved {
		workouts, err := s.store.Workouts.ListByPlan(ctx, plan.ID)
		if err != nil {
			return nil, err
		}
		for i := range workouts {
			workouts[i].Date = domain.WorkoutDate(plan.StartDate, workouts[i].WeekNumber, workouts[i].DayOfWeek)
			if err := s.store.Workouts.Update(ctx, &workouts[i]); err != nil {
				return nil, fmt.Errorf("reschedule workout %s: %w", workouts[i].ID.Hex(), err)
			}
		}
	}
	return plan, nil
}

// purgeLogMedia removes the stored videos of the logs matching filter and
// aborts their pending multipart uploads. Storage failures are logged; the
// logs are about to be deleted either way.
func (s *trainerService) purgeLogMedia(ctx context.Context, filter repository.LogFilter) error {
	logs, err := s.store.Logs.List(ctx, filter)
	if err != nil {
		return err
	}
	if len(logs) == 0 {
		return nil
	}

	for _, l := range logs {
		if l.Video == nil {
			continue
		}
		if err := s.files.DeleteObject(ctx, l.Video.ObjectKey); err != nil {
			log.Warnf("delete video %s of log %s: %s", l.Video.ObjectKey, l.ID.Hex(), err)
		}
	}

	uploads, err := s.store.Uploads.ListPendingByLogs(ctx, idsOf(logs, func(l domain.ExerciseLog) primitive.ObjectID { return l.ID }))
	if err != nil {
		return err
	}
	for _, u := range uploads {
		if err := s.store.Uploads.Transition(ctx, u.ID, domain.UploadPending, domain.UploadAborted); err != nil {
			// completed or aborted meanwhile by the client
			log.Debugf("skip upload %s: %s", u.ID.Hex(), err)
			continue
		}
		if err := s.files.AbortMultipartUpload(ctx, u.ObjectKey, u.ProviderUploadID); err != nil {
			log.Warnf("abort multipart upload %s: %s", u.ObjectKey, err)
		}
	}
	return nil
}

// DeletePlan removes the plan with its workouts, workout exercises and logs,
// including the logs' videos.
func (s *trainerService) DeletePlan(ctx context.Context, trainerID, planID primitive.ObjectID) error {
	if _, err := s.ownedPlan(ctx, trainerID, planID); err != nil {
		return err
	}
	if err := s.purgeLogMedia(ctx, repository.LogFilter{PlanIDs: []primitive.ObjectID{planID}}); err != nil {
		return err
	}
	if err := s.store.Logs.DeleteByPlan(ctx, planID); err != nil {
		return err
	}
	if err := s.store.WorkoutExercises.DeleteByPlan(ctx, planID); err != nil {
		return err
	}
	if err := s.store.Workouts.DeleteByPlan(ctx, planID); err != nil {
		return err
	}
	return notFound(s.store.Plans.Delete(ctx, planID), ErrPlanNotFound)
}

// === Workouts ===

func (in WorkoutInput) validate() (WorkoutInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	switch {
	case in.Title == "":
		return in, invalid("workout title is required")
	case in.WeekNumber < 1:
		return in, invalid("week number must be at least 1")
	case in.DayOfWeek < 1 || in.DayOfWeek > 7:
		return in, invalid("day of week must be between 1 (Monday) and 7 (Sunday)")
	}
	return in, nil
}

func (s *trainerService) AddWorkout(ctx context.Context, trainerID, planID primitive.ObjectID, in WorkoutInput) (*domain.Workout, error) {
	in, err := in.validate()
	if err != nil {
		return nil, err
	}
	plan, err := s.ownedPlan(ctx, trainerID, planID)
	if err != nil {
		return nil, err
	}

	workout := &domain.Workout{
		PlanID:     plan.ID,
		TrainerID:  plan.TrainerID,
		ClientID:   plan.ClientID,
		WeekNumber: in.WeekNumber,
		DayOfWeek:  in.DayOfWeek,
		Title:      in.Title,
		Date:       domain.WorkoutDate(plan.StartDate, in.WeekNumber, in.DayOfWeek),
	}
	if _, err := s.store.Workouts.Create(ctx, workout); err != nil {
		return nil, err
	}
	return workout, nil
}

func (s *trainerService) ownedWorkout(ctx context.Context, trainerID, workoutID primitive.ObjectID) (*domain.Workout, error) {
	workout, err := s.store.Workouts.GetByID(ctx, workoutID)
	if err != nil {
		return nil, notFound(err, ErrWorkoutNotFound)
	}
	if workout.TrainerID != trainerID {
		return nil, ErrWorkoutNotFound
	}
	return workout, nil
}

func (s *trainerService) GetWorkoutDetail(ctx context.Context, trainerID, workoutID primitive.ObjectID) (*WorkoutDetail, error) {
	workout, err := s.ownedWorkout(ctx, trainerID, workoutID)
	if err != nil {
		return nil, err
	}
	return buildWorkoutDetail(ctx, s.store, workout)
}

func (s *trainerService) UpdateWorkout(ctx context.Context, trainerID, workoutID primitive.ObjectID, in WorkoutInput) (*domain.Workout, error) {
	in, err := in.validate()
	if err != nil {
		return nil, err
	}
	workout, err := s.ownedWorkout(ctx, trainerID, workoutID)
	if err != nil {
		return nil, err
	}
	plan, err := s.store.Plans.GetByID(ctx, workout.PlanID)
	if err != nil {
		return nil, notFound(err, ErrPlanNotFound)
	}

	workout.WeekNumber = in.WeekNumber
	workout.DayOfWeek = in.DayOfWeek
	workout.Title = in.Title
	workout.Date = domain.WorkoutDate(plan.StartDate, in.WeekNumber, in.DayOfWeek)
	if err := s.store.Workouts.Update(ctx, workout); err != nil {
		return nil, notFound(err, ErrWorkoutNotFound)
	}
	return workout, nil
}

func (s *trainerService) DeleteWorkout(ctx context.Context, trainerID, workoutID primitive.ObjectID) error {
	if _, err := s.ownedWorkout(ctx, trainerID, workoutID); err != nil {
		return err
	}
	if err := s.purgeLogMedia(ctx, repository.LogFilter{WorkoutID: workoutID}); err != nil {
		return err
	}
	if err := s.store.Logs.DeleteByWorkout(ctx, workoutID); err != nil {
		return err
	}
	if err := s.store.WorkoutExercises.DeleteByWorkout(ctx, workoutID); err != nil {
		return err
	}
	return notFound(s.store.Workouts.Delete(ctx, workoutID), ErrWorkoutNotFound)
}

// === Workout exercises ===

func (in WorkoutExerciseInput) validate() (WorkoutExerciseInput, error) {
	in.RepsTarget = strings.TrimSpace(in.RepsTarget)
	switch {
	case in.ExerciseID == primitive.NilObjectID:
		return in, invalid("exercise is required")
	case in.Sets < 1:
		return in, invalid("sets must be at least 1")
	case in.RepsTarget == "":
		return in, invalid("reps target is required")
	case in.RIRTarget != nil && *in.RIRTarget < 0:
		return in, invalid("RIR target must not be negative")
	case in.RPETarget != nil && (*in.RPETarget < 1 || *in.RPETarget > 10):
		return in, invalid("RPE target must be between 1 and 10")
	case in.RestPeriodSeconds < 0:
		return in, invalid("rest period must not be negative")
	case in.Order < 0:
		return in, invalid("order must not be negative")
	}
	if in.RestPeriodSeconds == 0 {
		in.RestPeriodSeconds = domain.DefaultRestPeriodSeconds
	}
	if in.Order == 0 {
		in.Order = domain.DefaultExerciseOrder
	}
	return in, nil
}

func (s *trainerService) checkExercise(ctx context.Context, exerciseID primitive.ObjectID) error {
	_, err := s.store.Exercises.GetByID(ctx, exerciseID)
	return notFound(err, ErrExerciseNotFound)
}

func (s *trainerService) AddWorkoutExercise(ctx context.Context, trainerID, workoutID primitive.ObjectID, in WorkoutExerciseInput) (*domain.WorkoutExercise, error) {
	in, err := in.validate()
	if err != nil {
		return nil, err
	}
	workout, err := s.ownedWorkout(ctx, trainerID, workoutID)
	if err != nil {
		return nil, err
	}
	if err := s.checkExercise(ctx, in.ExerciseID); err != nil {
		return nil, err
	}

	we := &domain.WorkoutExercise{
		WorkoutID:         workout.ID,
		PlanID:            workout.PlanID,
		TrainerID:         workout.TrainerID,
		ClientID:          workout.ClientID,
		ExerciseID:        in.ExerciseID,
		Sets:              in.Sets,
		RepsTarget:        in.RepsTarget,
		RIRTarget:         in.RIRTarget,
		RPETarget:         in.RPETarget,
		RestPeriodSeconds: in.RestPeriodSeconds,
		Notes:             in.Notes,
		Order:             in.Order,
	}
	if _, err := s.store.WorkoutExercises.Create(ctx, we); err != nil {
		return nil, err
	}
	return we, nil
}

func (s *trainerService) ownedWorkoutExercise(ctx context.Context, trainerID, id primitive.ObjectID) (*domain.WorkoutExercise, error) {
	we, err := s.store.WorkoutExercises.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrWorkoutExerciseNotFound)
	}
	if we.TrainerID != trainerID {
		return nil, ErrWorkoutExerciseNotFound
	}
	return we, nil
}

func (s *trainerService) UpdateWorkoutExercise(ctx context.Context, trainerID, workoutExerciseID primitive.ObjectID, in WorkoutExerciseInput) (*domain.WorkoutExercise, error) {
	in, err := in.validate()
	if err != nil {
		return nil, err
	}
	we, err := s.ownedWorkoutExercise(ctx, trainerID, workoutExerciseID)
	if err != nil {
		return nil, err
	}
	swapped := in.ExerciseID != we.ExerciseID
	if swapped {
		if err := s.checkExercise(ctx, in.ExerciseID); err != nil {
			return nil, err
		}
	}

	we.ExerciseID = in.ExerciseID
	we.Sets = in.Sets
	we.RepsTarget = in.RepsTarget
	we.RIRTarget = in.RIRTarget
	we.RPETarget = in.RPETarget
	we.RestPeriodSeconds = in.RestPeriodSeconds
	we.Notes = in.Notes
	we.Order = in.Order
	if err := s.store.WorkoutExercises.Update(ctx, we); err != nil {
		return nil, notFound(err, ErrWorkoutExerciseNotFound)
	}
	// Logs carry the exercise for best-log lookups and reports.
	if swapped {
		if err := s.store.Logs.SetExerciseByWorkoutExercise(ctx, we.ID, we.ExerciseID); err != nil {
			return nil, fmt.Errorf("re-point logs of workout exercise %s: %w", we.ID.Hex(), err)
		}
	}
	return we, nil
}

func (s *trainerService) DeleteWorkoutExercise(ctx context.Context, trainerID, workoutExerciseID primitive.ObjectID) error {
	if _, err := s.ownedWorkoutExercise(ctx, trainerID, workoutExerciseID); err != nil {
		return err
	}
	if err := s.purgeLogMedia(ctx, repository.LogFilter{WorkoutExerciseID: workoutExerciseID}); err != nil {
		return err
	}
	if err := s.store.Logs.DeleteByWorkoutExercise(ctx, workoutExerciseID); err != nil {
		return err
	}
	return notFound(s.store.WorkoutExercises.Delete(ctx, workoutExerciseID), ErrWorkoutExerciseNotFound)
}
