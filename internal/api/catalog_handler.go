package api

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// CatalogHandler serves the shared exercise and warmup catalogs.
type CatalogHandler struct {
	catalogService service.CatalogService
}

func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// --- DTOs for API (Data Transfer Objects) ---

type ExerciseRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	MuscleGroup string `json:"muscleGroup"`                       // e.g., "Chest", "Legs"
	Equipment   string `json:"equipment"`                         // e.g., "Barbell"
	VideoURL    string `json:"videoUrl" binding:"omitempty,url"` // Optional, validated as URL if provided
}

type ExerciseResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	MuscleGroup string    `json:"muscleGroup,omitempty"`
	Equipment   string    `json:"equipment,omitempty"`
	VideoURL    string    `json:"videoUrl,omitempty"`
	CreatedBy   string    `json:"createdBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// MapExerciseToResponse converts a domain.Exercise to ExerciseResponse DTO.
func MapExerciseToResponse(ex *domain.Exercise) ExerciseResponse {
	if ex == nil {
		return ExerciseResponse{}
	}
	resp := ExerciseResponse{
		ID:          ex.ID.Hex(),
		Name:        ex.Name,
		Description: ex.Description,
		MuscleGroup: ex.MuscleGroup,
		Equipment:   ex.Equipment,
		VideoURL:    ex.VideoURL,
		CreatedAt:   ex.CreatedAt,
		UpdatedAt:   ex.UpdatedAt,
	}
	if !ex.CreatedBy.IsZero() {
		resp.CreatedBy = ex.CreatedBy.Hex()
	}
	return resp
}

// MapExercisesToResponse converts a slice of domain.Exercise to a slice of ExerciseResponse DTO.
func MapExercisesToResponse(exercises []domain.Exercise) []ExerciseResponse {
	responses := make([]ExerciseResponse, len(exercises))
	for i := range exercises {
		responses[i] = MapExerciseToResponse(&exercises[i])
	}
	return responses
}

func (req ExerciseRequest) input() service.ExerciseInput {
	return service.ExerciseInput{
		Name:        req.Name,
		Description: req.Description,
		VideoURL:    req.VideoURL,
		MuscleGroup: req.MuscleGroup,
		Equipment:   req.Equipment,
	}
}

type WarmupRequest struct {
	Name       string            `json:"name" binding:"required"`
	SeriesReps string            `json:"seriesReps"` // e.g., "2x15"
	Notes      string            `json:"notes"`
	VideoURL   string            `json:"videoUrl" binding:"omitempty,url"`
	Type       domain.WarmupType `json:"type" binding:"required,oneof=upper lower"`
}

// --- Handler Methods ---

// CreateExercise godoc
// @Summary Add an exercise to the shared catalog
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exercise body ExerciseRequest true "Exercise details"
// @Success 201 {object} ExerciseResponse
// @Failure 409 {object} gin.H "An exercise with this name already exists"
// @Router /exercises [post]
func (h *CatalogHandler) CreateExercise(c *gin.Context) {
	trainerID, ok := currentUser(c)
	if !ok {
		return
	}
	var req ExerciseRequest
	if !bindJSON(c, &req) {
		return
	}

	exercise, err := h.catalogService.CreateExercise(c.Request.Context(), trainerID, req.input())
	if err != nil {
		respondError(c, err, "create exercise")
		return
	}
	c.JSON(http.StatusCreated, MapExerciseToResponse(exercise))
}

// ListExercises godoc
// @Summary List the exercise catalog sorted by name
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Success 200 {array} ExerciseResponse
// @Router /exercises [get]
func (h *CatalogHandler) ListExercises(c *gin.Context) {
	exercises, err := h.catalogService.ListExercises(c.Request.Context())
	if err != nil {
		respondError(c, err, "retrieve exercises")
		return
	}
	c.JSON(http.StatusOK, MapExercisesToResponse(exercises))
}

func (h *CatalogHandler) GetExercise(c *gin.Context) {
	exerciseID, ok := pathID(c, "exerciseId")
	if !ok {
		return
	}
	exercise, err := h.catalogService.GetExercise(c.Request.Context(), exerciseID)
	if err != nil {
		respondError(c, err, "retrieve exercise")
		return
	}
	c.JSON(http.StatusOK, MapExerciseToResponse(exercise))
}

func (h *CatalogHandler) UpdateExercise(c *gin.Context) {
	exerciseID, ok := pathID(c, "exerciseId")
	if !ok {
		return
	}
	var req ExerciseRequest
	if !bindJSON(c, &req) {
		return
	}

	exercise, err := h.catalogService.UpdateExercise(c.Request.Context(), exerciseID, req.input())
	if err != nil {
		respondError(c, err, "update exercise")
		return
	}
	c.JSON(http.StatusOK, MapExerciseToResponse(exercise))
}

// DeleteExercise answers 409 while any workout still prescribes the exercise.
func (h *CatalogHandler) DeleteExercise(c *gin.Context) {
	exerciseID, ok := pathID(c, "exerciseId")
	if !ok {
		return
	}
	if err := h.catalogService.DeleteExercise(c.Request.Context(), exerciseID); err != nil {
		respondError(c, err, "delete exercise")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CatalogHandler) ListWarmups(c *gin.Context) {
	warmups, err := h.catalogService.ListWarmups(c.Request.Context())
	if err != nil {
		respondError(c, err, "retrieve warmups")
		return
	}
	c.JSON(http.StatusOK, warmups)
}

func (h *CatalogHandler) CreateWarmup(c *gin.Context) {
	h.saveWarmup(c, http.StatusCreated, domain.Warmup{})
}

func (h *CatalogHandler) UpdateWarmup(c *gin.Context) {
	warmupID, ok := pathID(c, "warmupId")
	if !ok {
		return
	}
	h.saveWarmup(c, http.StatusOK, domain.Warmup{ID: warmupID})
}

func (h *CatalogHandler) saveWarmup(c *gin.Context, status int, warmup domain.Warmup) {
	var req WarmupRequest
	if !bindJSON(c, &req) {
		return
	}
	warmup.Name = req.Name
	warmup.SeriesReps = req.SeriesReps
	warmup.Notes = req.Notes
	warmup.VideoURL = req.VideoURL
	warmup.Type = req.Type

	saved, err := h.catalogService.SaveWarmup(c.Request.Context(), warmup)
	if err != nil {
		respondError(c, err, "save warmup")
		return
	}
	c.JSON(status, saved)
}

func (h *CatalogHandler) DeleteWarmup(c *gin.Context) {
	warmupID, ok := pathID(c, "warmupId")
	if !ok {
		return
	}
	if err := h.catalogService.DeleteWarmup(c.Request.Context(), warmupID); err != nil {
		respondError(c, err, "delete warmup")
		return
	}
	c.Status(http.StatusNoContent)
}
