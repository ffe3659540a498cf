// internal/api/client_handler.go
package api

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type ClientHandler struct {
	clientService service.ClientService
}

func NewClientHandler(clientService service.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// --- DTOs ---

type LogExerciseRequest struct {
	WeightKg      float64          `json:"weightKg" binding:"min=0"`
	RepsCompleted int              `json:"repsCompleted" binding:"min=0"`
	RIRActual     *int             `json:"rirActual" binding:"omitempty,min=0"`
	RPEActual     *int             `json:"rpeActual" binding:"omitempty,min=1,max=10"`
	Notes         string           `json:"notes"`
	Status        domain.LogStatus `json:"status" binding:"omitempty,oneof=completed half not_completed"`
}

type VideoResponse struct {
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

type ExerciseLogResponse struct {
	ID                string           `json:"id"`
	ClientID          string           `json:"clientId"`
	WorkoutExerciseID string           `json:"workoutExerciseId"`
	WorkoutID         string           `json:"workoutId"`
	PlanID            string           `json:"planId"`
	ExerciseID        string           `json:"exerciseId"`
	CompletedAt       time.Time        `json:"completedAt"`
	WeightKg          float64          `json:"weightKg"`
	RepsCompleted     int              `json:"repsCompleted"`
	RIRActual         *int             `json:"rirActual,omitempty"`
	RPEActual         *int             `json:"rpeActual,omitempty"`
	Notes             string           `json:"notes,omitempty"`
	Status            domain.LogStatus `json:"status"`
	Video             *VideoResponse   `json:"video,omitempty"`
}

func MapExerciseLogToResponse(l *domain.ExerciseLog) ExerciseLogResponse {
	if l == nil {
		return ExerciseLogResponse{}
	}
	resp := ExerciseLogResponse{
		ID:                l.ID.Hex(),
		ClientID:          l.ClientID.Hex(),
		WorkoutExerciseID: l.WorkoutExerciseID.Hex(),
		WorkoutID:         l.WorkoutID.Hex(),
		PlanID:            l.PlanID.Hex(),
		ExerciseID:        l.ExerciseID.Hex(),
		CompletedAt:       l.CompletedAt,
		WeightKg:          l.WeightKg,
		RepsCompleted:     l.RepsCompleted,
		RIRActual:         l.RIRActual,
		RPEActual:         l.RPEActual,
		Notes:             l.Notes,
		Status:            l.Status,
	}
	if v := l.Video; v != nil {
		resp.Video = &VideoResponse{FileName: v.FileName, ContentType: v.ContentType, Size: v.Size, UploadedAt: v.UploadedAt}
	}
	return resp
}

func MapExerciseLogsToResponse(logs []domain.ExerciseLog) []ExerciseLogResponse {
	responses := make([]ExerciseLogResponse, len(logs))
	for i := range logs {
		responses[i] = MapExerciseLogToResponse(&logs[i])
	}
	return responses
}

type ClientDashboardResponse struct {
	Plans              []TrainingPlanResponse `json:"plans"`
	ActivePlans        int                    `json:"activePlans"`
	WeeklySessions     int                    `json:"weeklySessions"`
	CompletedExercises int64                  `json:"completedExercises"`
	NextSession        *WorkoutResponse       `json:"nextSession,omitempty"`
	UpcomingSessions   []WorkoutResponse      `json:"upcomingSessions"`
	TotalWorkouts      int                    `json:"totalWorkouts"`
	TotalExercises     int                    `json:"totalExercises"`
	Consistency        float64                `json:"consistency"`
	Warmups            domain.WarmupsByType   `json:"warmups"`
}

// --- Handler Methods for Client ---

// Dashboard godoc
// @Summary The authenticated client's dashboard
// @Description Plans, upcoming sessions for the next week, totals and consistency.
// @Tags Client
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ClientDashboardResponse
// @Router /client/dashboard [get]
func (h *ClientHandler) Dashboard(c *gin.Context) {
	clientID, ok := currentUser(c)
	if !ok {
		return
	}

	d, err := h.clientService.Dashboard(c.Request.Context(), clientID, time.Now())
	if err != nil {
		respondError(c, err, "load dashboard")
		return
	}
	resp := ClientDashboardResponse{
		Plans:              MapTrainingPlansToResponse(d.Plans),
		ActivePlans:        d.ActivePlans,
		WeeklySessions:     d.WeeklySessions,
		CompletedExercises: d.CompletedExercises,
		UpcomingSessions:   MapWorkoutsToResponse(d.UpcomingSessions),
		TotalWorkouts:      d.TotalWorkouts,
		TotalExercises:     d.TotalExercises,
		Consistency:        d.Consistency,
		Warmups:            d.Warmups,
	}
	if d.NextSession != nil {
		next := MapWorkoutToResponse(d.NextSession)
		resp.NextSession = &next
	}
	c.JSON(http.StatusOK, resp)
}

// GetMyTrainingPlans godoc
// @Summary Get my training plans
// @Tags Client
// @Produce json
// @Security BearerAuth
// @Success 200 {array} TrainingPlanResponse "List of training plans"
// @Router /client/plans [get]
func (h *ClientHandler) GetMyTrainingPlans(c *gin.Context) {
	clientID, ok := currentUser(c)
	if !ok {
		return
	}

	plans, err := h.clientService.ListPlans(c.Request.Context(), clientID)
	if err != nil {
		respondError(c, err, "retrieve training plans")
		return
	}
	c.JSON(http.StatusOK, MapTrainingPlansToResponse(plans))
}

func (h *ClientHandler) GetMyTrainingPlan(c *gin.Context) {
	clientID, ok := currentUser(c)
	if !ok {
		return
	}
	planID, ok := pathID(c, "planId")
	if !ok {
		return
	}

	detail, err := h.clientService.ViewPlan(c.Request.Context(), clientID, planID)
	if err != nil {
		respondError(c, err, "retrieve training plan")
		return
	}
	c.JSON(http.StatusOK, MapPlanDetailToResponse(detail))
}

func (h *ClientHandler) GetMyWorkout(c *gin.Context) {
	clientID, ok := currentUser(c)
	if !ok {
		return
	}
	workoutID, ok := pathID(c, "workoutId")
	if !ok {
		return
	}

	detail, err := h.clientService.ViewWorkout(c.Request.Context(), clientID, workoutID)
	if err != nil {
		respondError(c, err, "retrieve workout")
		return
	}
	c.JSON(http.StatusOK, MapWorkoutDetailToResponse(detail))
}

// LogExercise godoc
// @Summary Log a prescribed exercise
// @Description Saves the log and emails the trainer a summary. Email failures do not fail the request.
// @Tags Client
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param workoutExerciseId path string true "Workout exercise's ObjectID Hex"
// @Param log body LogExerciseRequest true "What was done"
// @Success 201 {object} ExerciseLogResponse
// @Failure 404 {object} gin.H "Workout exercise not found in the client's plans"
// @Router /client/workout-exercises/{workoutExerciseId}/logs [post]
func (h *ClientHandler) LogExercise(c *gin.Context) {
	clientID, ok := currentUser(c)
	if !ok {
		return
	}
	workoutExerciseID, ok := pathID(c, "workoutExerciseId")
	if !ok {
		return
	}
	var req LogExerciseRequest
	if !bindJSON(c, &req) {
		return
	}

	entry, err := h.clientService.LogExercise(c.Request.Context(), clientID, workoutExerciseID, service.LogInput{
		WeightKg:      req.WeightKg,
		RepsCompleted: req.RepsCompleted,
		RIRActual:     req.RIRActual,
		RPEActual:     req.RPEActual,
		Notes:         req.Notes,
		Status:        req.Status,
	})
	if err != nil {
		respondError(c, err, "log exercise")
		return
	}
	c.JSON(http.StatusCreated, MapExerciseLogToResponse(entry))
}

// GetBestLog answers 204 when the client never logged the exercise.
func (h *ClientHandler) GetBestLog(c *gin.Context) {
	clientID, ok := currentUser(c)
	if !ok {
		return
	}
	workoutExerciseID, ok := pathID(c, "workoutExerciseId")
	if !ok {
		return
	}

	best, err := h.clientService.BestLog(c.Request.Context(), clientID, workoutExerciseID)
	if err != nil {
		respondError(c, err, "retrieve best log")
		return
	}
	if best == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, MapExerciseLogToResponse(best))
}

func (h *ClientHandler) Statistics(c *gin.Context) {
	clientID, ok := currentUser(c)
	if !ok {
		return
	}
	logs, err := h.clientService.Statistics(c.Request.Context(), clientID)
	if err != nil {
		respondError(c, err, "retrieve statistics")
		return
	}
	c.JSON(http.StatusOK, MapExerciseLogsToResponse(logs))
}

// GetLog is shared by clients and trainers; the service checks ownership.
func (h *ClientHandler) GetLog(c *gin.Context) {
	viewerID, ok := currentUser(c)
	if !ok {
		return
	}
	logID, ok := pathID(c, "logId")
	if !ok {
		return
	}
	entry, err := h.clientService.ViewLog(c.Request.Context(), viewerID, logID)
	if err != nil {
		respondError(c, err, "retrieve log")
		return
	}
	c.JSON(http.StatusOK, MapExerciseLogToResponse(entry))
}
