// internal/api/trainer_handler.go
package api

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/progress"
	"alcyxob/fitcoach/internal/service"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TrainerHandler struct {
	trainerService service.TrainerService
}

func NewTrainerHandler(trainerService service.TrainerService) *TrainerHandler {
	return &TrainerHandler{trainerService: trainerService}
}

// Date is a calendar day in JSON. It accepts "2006-01-02" as well as RFC 3339
// timestamps.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		if t, err = time.Parse(time.RFC3339, s); err != nil {
			return err
		}
	}
	d.Time = t
	return nil
}

// --- DTOs for Client Management ---

type CreateClientRequest struct {
	Username  string `json:"username" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	RUT       string `json:"rut"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// CreateClientResponse carries the temporary password. It is shown only once.
type CreateClientResponse struct {
	Client            UserResponse `json:"client"`
	TemporaryPassword string       `json:"temporaryPassword"`
}

type ClientSummaryResponse struct {
	Client      UserResponse `json:"client"`
	ActivePlans int          `json:"activePlans"`
	LastSession *time.Time   `json:"lastSession,omitempty"`
}

type TrainerDashboardResponse struct {
	Plans          []TrainingPlanResponse `json:"plans"`
	ActivePlans    int                    `json:"activePlans"`
	Clients        int                    `json:"clients"`
	WeeklySessions int                    `json:"weeklySessions"`
	TotalExercises int64                  `json:"totalExercises"`
	Warmups        domain.WarmupsByType   `json:"warmups"`
}

// --- Handler Methods for Client Management ---

// CreateClient godoc
// @Summary Create a client managed by the authenticated professional
// @Description Creates the client account with a random temporary password, returned once.
// @Tags Trainer
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param client body CreateClientRequest true "Client details"
// @Success 201 {object} CreateClientResponse
// @Failure 409 {object} gin.H "Username, email or rut already taken"
// @Router /trainer/clients [post]
func (h *TrainerHandler) CreateClient(c *gin.Context) {
	professionalID, ok := currentUser(c)
	if !ok {
		return
	}
	var req CreateClientRequest
	if !bindJSON(c, &req) {
		return
	}

	client, password, err := h.trainerService.CreateClient(c.Request.Context(), professionalID, service.NewClientInput{
		Username:  req.Username,
		Email:     req.Email,
		RUT:       req.RUT,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		respondError(c, err, "create client")
		return
	}
	c.JSON(http.StatusCreated, CreateClientResponse{Client: MapUserToResponse(client), TemporaryPassword: password})
}

// GetManagedClients godoc
// @Summary Get the trainer's managed clients
// @Tags Trainer
// @Produce json
// @Security BearerAuth
// @Success 200 {array} ClientSummaryResponse "List of managed clients"
// @Router /trainer/clients [get]
func (h *TrainerHandler) GetManagedClients(c *gin.Context) {
	trainerID, ok := currentUser(c)
	if !ok {
		return
	}

	summaries, err := h.trainerService.ListClients(c.Request.Context(), trainerID)
	if err != nil {
		respondError(c, err, "retrieve managed clients")
		return
	}

	resp := make([]ClientSummaryResponse, len(summaries))
	for i, s := range summaries {
		resp[i] = ClientSummaryResponse{Client: MapUserToResponse(&s.Client), ActivePlans: s.ActivePlans, LastSession: s.LastSession}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TrainerHandler) GetClientLogs(c *gin.Context) {
	trainerID, ok := currentUser(c)
	if !ok {
		return
	}
	clientID, ok := pathID(c, "clientId")
	if !ok {
		return
	}

	logs, err := h.trainerService.ListClientLogs(c.Request.Context(), trainerID, clientID)
	if err != nil {
		respondError(c, err, "retrieve client logs")
		return
	}
	c.JSON(http.StatusOK, MapExerciseLogsToResponse(logs))
}

func (h *TrainerHandler) Dashboard(c *gin.Context) {
	trainerID, ok := currentUser(c)
	if !ok {
		return
	}

	d, err := h.trainerService.Dashboard(c.Request.Context(), trainerID, time.Now())
	if err != nil {
		respondError(c, err, "load dashboard")
		return
	}
	c.JSON(http.StatusOK, TrainerDashboardResponse{
		Plans:          MapTrainingPlansToResponse(d.Plans),
		ActivePlans:    d.ActivePlans,
		Clients:        d.Clients,
		WeeklySessions: d.WeeklySessions,
		TotalExercises: d.TotalExercises,
		Warmups:        d.Warmups,
	})
}

// --- DTOs for Training Plan Management ---

type CreateTrainingPlanRequest struct {
	Name      string `json:"name" binding:"required"`
	StartDate Date   `json:"startDate"`
	EndDate   Date   `json:"endDate"`
	Notes     string `json:"notes"`
}

type UpdateTrainingPlanRequest struct {
	Name      string            `json:"name" binding:"required"`
	StartDate Date              `json:"startDate"`
	EndDate   Date              `json:"endDate"`
	Status    domain.PlanStatus `json:"status" binding:"omitempty,oneof=active completed"`
	Notes     string            `json:"notes"`
}

type TrainingPlanResponse struct {
	ID        string            `json:"id"`
	TrainerID string            `json:"trainerId"`
	ClientID  string            `json:"clientId"`
	Name      string            `json:"name"`
	StartDate time.Time         `json:"startDate"`
	EndDate   time.Time         `json:"endDate"`
	Status    domain.PlanStatus `json:"status"`
	Notes     string            `json:"notes,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

type PlanDetailResponse struct {
	Plan              TrainingPlanResponse `json:"plan"`
	Workouts          []WorkoutResponse    `json:"workouts"`
	Progress          progress.Summary     `json:"progress"`
	CompletedWorkouts int                  `json:"completedWorkouts"`
}

// MapTrainingPlanToResponse converts domain.TrainingPlan to DTO
func MapTrainingPlanToResponse(p *domain.TrainingPlan) TrainingPlanResponse {
	if p == nil {
		return TrainingPlanResponse{}
	}
	return TrainingPlanResponse{
		ID:        p.ID.Hex(),
		TrainerID: p.TrainerID.Hex(),
		ClientID:  p.ClientID.Hex(),
		Name:      p.Name,
		StartDate: p.StartDate,
		EndDate:   p.EndDate,
		Status:    p.Status,
		Notes:     p.Notes,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// MapTrainingPlansToResponse converts a slice of domain.TrainingPlan
func MapTrainingPlansToResponse(plans []domain.TrainingPlan) []TrainingPlanResponse {
	responses := make([]TrainingPlanResponse, len(plans))
	for i := range plans {
		responses[i] = MapTrainingPlanToResponse(&plans[i])
	}
	return responses
}

func MapPlanDetailToResponse(d *service.PlanDetail) PlanDetailResponse {
	return PlanDetailResponse{
		Plan:              MapTrainingPlanToResponse(&d.Plan),
		Workouts:          MapWorkoutsToResponse(d.Workouts),
		Progress:          d.Progress,
		CompletedWorkouts: d.CompletedWorkouts,
	}
}

// --- Handler Methods for Training Plan Management ---

// CreateTrainingPlan godoc
// @Summary Create a training plan for a managed client
// @Tags Trainer
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client's ObjectID Hex"
// @Param plan body CreateTrainingPlanRequest true "Plan details"
// @Success 201 {object} TrainingPlanResponse
// @Failure 404 {object} gin.H "Client not found or not managed by this trainer"
// @Router /trainer/clients/{clientId}/plans [post]
func (h *TrainerHandler) CreateTrainingPlan(c *gin.Context) {
	trainerID, ok := currentUser(c)
	if !ok {
		return
	}
	clientID, ok := pathID(c, "clientId")
	if !ok {
		return
	}
	var req CreateTrainingPlanRequest
	if !bindJSON(c, &req) {
		return
	}

	plan, err := h.trainerService.CreatePlan(c.Request.Context(), trainerID, service.PlanInput{
		ClientID:  clientID,
		Name:      req.Name,
		StartDate: req.StartDate.Time,
		EndDate:   req.EndDate.Time,
		Notes:     req.Notes,
	})
	if err != nil {
		respondError(c, err, "create training plan")
		return
	}
	c.JSON(http.StatusCreated, MapTrainingPlanToResponse(plan))
}

func (h *TrainerHandler) GetTrainingPlans(c *gin.Context) {
	trainerID, ok := currentUser(c)
	if !ok {
		return
	}
	plans, err := h.trainerService.ListPlans(c.Request.Context(), trainerID)
	if err != nil {
		respondError(c, err, "retrieve training plans")
		return
	}
	c.JSON(http.StatusOK, MapTrainingPlansToResponse(plans))
}

func (h *TrainerHandler) GetTrainingPlan(c *gin.Context) {
	trainerID, ok := currentUser(c)
	if !ok {
		return
	}
	planID, ok := pathID(c, "planId")
	if !ok {
		return
	}
	detail, err := h.trainerService.GetPlanDetail(c.Request.Context(), trainerID, planID)
	if err != nil {
		respondError(c, err, "retrieve training plan")
		return
	}
	c.JSON(http.StatusOK, MapPlanDetailToResponse(detail))
}

// UpdateTrainingPlan replaces the editable fields. Workouts move with the start date.
func (h *TrainerHandler) UpdateTrainingPlan(c *gin.Context) {
	trainerID, ok := currentUser(c)
	if !ok {
		return
	}
	planID, ok := pathID(c, "planId")
	if !ok {
		return
	}
	var req UpdateTrainingPlanRequest
	if !bindJSON(c, &req) {
		return
	}

	plan, err := h.trainerService.UpdatePlan(c.Request.Context(), trainerID, planID, service.PlanUpdate{
		Name:      req.Name,
		StartDate: req.StartDate.Time,
		EndDate:   req.EndDate.Time,
		Status:    req.Status,
		Notes:     req.Notes,
	})
	if err != nil {
		respondError(c, err, "update training plan")
		return
	}
	c.JSON(http.StatusOK, MapTrainingPlanToResponse(plan))
}

func (h *TrainerHandler) DeleteTrainingPlan(c *gin.Context) {
	trainerID, ok := currentUser(c)
	if !ok {
		return
	}
	planID, ok := pathID(c, "planId")
	if !ok {
		return
	}
	if err := h.trainerService.DeletePlan(c.Request.Context(), trainerID, planID); err != nil {
		respondError(c, err, "delete training plan")
		return
	}
	c.Status(http.StatusNoContent)
}

// --- DTOs for Workout Management ---

type WorkoutRequest struct {
	Title      string `json:"title" binding:"required"`
	WeekNumber int    `json:"weekNumber" binding:"required,min=1"`
	DayOfWeek  int    `json:"dayOfWeek" binding:"required,min=1,max=7"` // 1 = Monday
}

type WorkoutResponse struct {
	ID         string    `json:"id"`
	PlanID     string    `json:"planId"`
	TrainerID  string    `json:"trainerId"`
	ClientID   string    `json:"clientId"`
	WeekNumber int       `json:"weekNumber"`
	DayOfWeek  int       `json:"dayOfWeek"`
	Title      string    `json:"title"`
	Date       time.Time `json:"date"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type WorkoutDetailResponse struct {
	Workout   WorkoutResponse           `json:"workout"`
	Exercises []WorkoutExerciseResponse `json:"exercises"`
	Complete  bool                      `json:"complete"`
}

func MapWorkoutToResponse(w *domain.Workout) WorkoutResponse {
	if w == nil {
		return WorkoutResponse{}
	}
	return WorkoutResponse{
		ID:         w.ID.Hex(),
		PlanID:     w.PlanID.Hex(),
		TrainerID:  w.TrainerID.Hex(),
		ClientID:   w.ClientID.Hex(),
		WeekNumber: w.WeekNumber,
		DayOfWeek:  w.DayOfWeek,
		Title:      w.Title,
		Date:       w.Date,
		CreatedAt:  w.CreatedAt,
		UpdatedAt:  w.UpdatedAt,
	}
}

func MapWorkoutsToResponse(workouts []domain.Workout) []WorkoutResponse {
	responses := make([]WorkoutResponse, len(workouts))
	for i := range workouts {
		responses[i] = MapWorkoutToResponse(&workouts[i])
	}
	return responses
}

func MapWorkoutDetailToResponse(d *service.WorkoutDetail) WorkoutDetailResponse {
	resp := WorkoutDetailResponse{
		Workout:   MapWorkoutToResponse(&d.Workout),
		Exercises: make([]WorkoutExerciseResponse, len(d.Exercises)),
		Complete:  d.Complete,
	}
	for i, view := range d.Exercises {
		resp.Exercises[i] = MapWorkoutExerciseToResponse(&view.WorkoutExercise)
		if view.Exercise != nil {
			ex := MapExerciseToResponse(view.Exercise)
			resp.Exercises[i].Exercise = &ex
		}
		resp.Exercises[i].Completed = view.Completed
	}
	return resp
}

// --- Handler Methods for Workout Management ---

// CreateWorkout godoc
// @Summary Add a workout to a training plan
// @Description The workout date is derived from the plan start, week number and day of week.
// @Tags Trainer
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param planId path string true "Training Plan's ObjectID Hex"
// @Param workout body WorkoutRequest true "Workout details"
// @Success 201 {object} WorkoutResponse
// @Router /trainer/plans/{planId}/workouts [post]
func (h *TrainerHandler) CreateWorkout(c *gin.Context) {
	trainerID, ok := currentUser(c)
	if !ok {
		return
	}
	planID, ok := pathID(c, "planId")
	if !ok {
		return
	}
	var req WorkoutRequest
	if !bindJSON(c, &req) {
		return
	}

	workout, err := h.trainerService.AddWorkout(c.Request.Context(), trainerID, planID, service.WorkoutInput{
		WeekNumber: req.WeekNumber,
		DayOfWeek:  req.DayOfWeek,
		Title:      req.Title,
	})
	if err != nil {
		respondError(c, err, "create workout")
		return
	}
	c.JSON(http.StatusCreated, MapWorkoutToResponse(workout))
}

func (h *TrainerHandler) GetWorkout(c *gin.Context) {
	trainerID, ok := currentUser(c)
	if !ok {
		return
	}
	workoutID, ok := pathID(c, "workoutId")
	if !ok {
		return
	}
	detail, err := h.trainerService.GetWorkoutDetail(c.Request.Context(), trainerID, workoutID)
	if err != nil {
		respondError(c, err, "retrieve workout")
		return
	}
	c.JSON(http.StatusOK, MapWorkoutDetailToResponse(detail))
}

func (h *TrainerHandler) UpdateWorkout(c *gin.Context) {
	trainerID, ok := currentUser(c)
	if !ok {
		return
	}
	workoutID, ok := pathID(c, "workoutId")
	if !ok {
		return
	}
	var req WorkoutRequest
	if !bindJSON(c, &req) {
		return
	}

	workout, err := h.trainerService.UpdateWorkout(c.Request.Context(), trainerID, workoutID, service.WorkoutInput{
		WeekNumber: req.WeekNumber,
		DayOfWeek:  req.DayOfWeek,
		Title:      req.Title,
	})
	if err != nil {
		respondError(c, err, "update workout")
		return
	}
	c.JSON(http.StatusOK, MapWorkoutToResponse(workout))
}

func (h *TrainerHandler) DeleteWorkout(c *gin.Context) {
	trainerID, ok := currentUser(c)
	if !ok {
		return
	}
	workoutID, ok := pathID(c, "workoutId")
	if !ok {
		return
	}
	if err := h.trainerService.DeleteWorkout(c.Request.Context(), trainerID, workoutID); err != nil {
		respondError(c, err, "delete workout")
		return
	}
	c.Status(http.StatusNoContent)
}

// --- DTOs for Workout Exercises ---

type WorkoutExerciseRequest struct {
	ExerciseID        string `json:"exerciseId" binding:"required"`
	Sets              int    `json:"sets" binding:"required,min=1"`
	RepsTarget        string `json:"repsTarget" binding:"required"` // e.g., "8-10"
	RIRTarget         *int   `json:"rirTarget" binding:"omitempty,min=0"`
	RPETarget         *int   `json:"rpeTarget" binding:"omitempty,min=1,max=10"`
	RestPeriodSeconds int    `json:"restPeriodSeconds" binding:"omitempty,min=0"`
	Notes             string `json:"notes"`
	Order             int    `json:"order" binding:"omitempty,min=0"`
}

type WorkoutExerciseResponse struct {
	ID                string            `json:"id"`
	WorkoutID         string            `json:"workoutId"`
	PlanID            string            `json:"planId"`
	ExerciseID        string            `json:"exerciseId"`
	Exercise          *ExerciseResponse `json:"exercise,omitempty"`
	Sets              int               `json:"sets"`
	RepsTarget        string            `json:"repsTarget"`
	RIRTarget         *int              `json:"rirTarget,omitempty"`
	RPETarget         *int              `json:"rpeTarget,omitempty"`
	RestPeriodSeconds int               `json:"restPeriodSeconds"`
	Notes             string            `json:"notes,omitempty"`
	Order             int               `json:"order"`
	Completed         bool              `json:"completed"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

func MapWorkoutExerciseToResponse(we *domain.WorkoutExercise) WorkoutExerciseResponse {
	if we == nil {
		return WorkoutExerciseResponse{}
	}
	return WorkoutExerciseResponse{
		ID:                we.ID.Hex(),
		WorkoutID:         we.WorkoutID.Hex(),
		PlanID:            we.PlanID.Hex(),
		ExerciseID:        we.ExerciseID.Hex(),
		Sets:              we.Sets,
		RepsTarget:        we.RepsTarget,
		RIRTarget:         we.RIRTarget,
		RPETarget:         we.RPETarget,
		RestPeriodSeconds: we.RestPeriodSeconds,
		Notes:             we.Notes,
		Order:             we.Order,
		CreatedAt:         we.CreatedAt,
		UpdatedAt:         we.UpdatedAt,
	}
}

func (req WorkoutExerciseRequest) input(c *gin.Context) (service.WorkoutExerciseInput, bool) {
	exerciseID, err := primitive.ObjectIDFromHex(req.ExerciseID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exerciseId format.")
		return service.WorkoutExerciseInput{}, false
	}
	return service.WorkoutExerciseInput{
		ExerciseID:        exerciseID,
		Sets:              req.Sets,
		RepsTarget:        req.RepsTarget,
		RIRTarget:         req.RIRTarget,
		RPETarget:         req.RPETarget,
		RestPeriodSeconds: req.RestPeriodSeconds,
		Notes:             req.Notes,
		Order:             req.Order,
	}, true
}

// AddWorkoutExercise godoc
// @Summary Prescribe a catalog exercise in a workout
// @Description Rest defaults to 60 seconds and order to 1.
// @Tags Trainer
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param workoutId path string true "Workout's ObjectID Hex"
// @Param exercise body WorkoutExerciseRequest true "Prescription"
// @Success 201 {object} WorkoutExerciseResponse
// @Router /trainer/workouts/{workoutId}/exercises [post]
func (h *TrainerHandler) AddWorkoutExercise(c *gin.Context) {
	trainerID, ok := currentUser(c)
	if !ok {
		return
	}
	workoutID, ok := pathID(c, "workoutId")
	if !ok {
		return
	}
	var req WorkoutExerciseRequest
	if !bindJSON(c, &req) {
		return
	}
	in, ok := req.input(c)
	if !ok {
		return
	}

	we, err := h.trainerService.AddWorkoutExercise(c.Request.Context(), trainerID, workoutID, in)
	if err != nil {
		respondError(c, err, "add exercise to workout")
		return
	}
	c.JSON(http.StatusCreated, MapWorkoutExerciseToResponse(we))
}

func (h *TrainerHandler) UpdateWorkoutExercise(c *gin.Context) {
	trainerID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "workoutExerciseId")
	if !ok {
		return
	}
	var req WorkoutExerciseRequest
	if !bindJSON(c, &req) {
		return
	}
	in, ok := req.input(c)
	if !ok {
		return
	}

	we, err := h.trainerService.UpdateWorkoutExercise(c.Request.Context(), trainerID, id, in)
	if err != nil {
		respondError(c, err, "update workout exercise")
		return
	}
	c.JSON(http.StatusOK, MapWorkoutExerciseToResponse(we))
}

func (h *TrainerHandler) DeleteWorkoutExercise(c *gin.Context) {
	trainerID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "workoutExerciseId")
	if !ok {
		return
	}
	if err := h.trainerService.DeleteWorkoutExercise(c.Request.Context(), trainerID, id); err != nil {
		respondError(c, err, "delete workout exercise")
		return
	}
	c.Status(http.StatusNoContent)
}
