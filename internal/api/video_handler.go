package api

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/service"
	"alcyxob/fitcoach/internal/storage"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// VideoHandler hands out presigned URLs for log videos. Video bytes never go
// through the API.
type VideoHandler struct {
	videoService service.VideoService
}

func NewVideoHandler(videoService service.VideoService) *VideoHandler {
	return &VideoHandler{videoService: videoService}
}

// --- DTOs ---

type UploadURLRequest struct {
	ContentType string `json:"contentType" binding:"required"` // must be video/*
	FileName    string `json:"fileName"`
}

type ConfirmUploadRequest struct {
	ObjectKey   string `json:"objectKey" binding:"required"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType" binding:"required"`
	Size        int64  `json:"size" binding:"min=0"`
}

type PartURLRequest struct {
	PartNumber int32 `json:"partNumber" binding:"required,min=1,max=10000"`
}

type CompleteMultipartRequest struct {
	Parts []storage.CompletedPart `json:"parts" binding:"required,min=1,dive"`
	Size  int64                   `json:"size" binding:"min=0"`
}

type MultipartUploadResponse struct {
	ID          string              `json:"id"`
	LogID       string              `json:"logId"`
	ObjectKey   string              `json:"objectKey"`
	ContentType string              `json:"contentType"`
	FileName    string              `json:"fileName,omitempty"`
	Status      domain.UploadStatus `json:"status"`
	CreatedAt   time.Time           `json:"createdAt"`
}

func MapUploadToResponse(u *domain.VideoUpload) MultipartUploadResponse {
	if u == nil {
		return MultipartUploadResponse{}
	}
	return MultipartUploadResponse{
		ID:          u.ID.Hex(),
		LogID:       u.LogID.Hex(),
		ObjectKey:   u.ObjectKey,
		ContentType: u.ContentType,
		FileName:    u.FileName,
		Status:      u.Status,
		CreatedAt:   u.CreatedAt,
	}
}

// --- Handler Methods ---

// RequestUploadURL godoc
// @Summary Get a presigned URL to PUT a video for one of my logs
// @Tags Videos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param logId path string true "Exercise log's ObjectID Hex"
// @Param request body UploadURLRequest true "Video content type and file name"
// @Success 200 {object} service.UploadURL
// @Failure 400 {object} gin.H "Content type is not a video"
// @Router /client/logs/{logId}/video/upload-url [post]
func (h *VideoHandler) RequestUploadURL(c *gin.Context) {
	clientID, ok := currentUser(c)
	if !ok {
		return
	}
	logID, ok := pathID(c, "logId")
	if !ok {
		return
	}
	var req UploadURLRequest
	if !bindJSON(c, &req) {
		return
	}

	upload, err := h.videoService.RequestUploadURL(c.Request.Context(), clientID, logID, req.ContentType, req.FileName)
	if err != nil {
		respondError(c, err, "generate upload URL")
		return
	}
	c.JSON(http.StatusOK, upload)
}

// ConfirmUpload attaches an object uploaded with RequestUploadURL to the log.
func (h *VideoHandler) ConfirmUpload(c *gin.Context) {
	clientID, ok := currentUser(c)
	if !ok {
		return
	}
	logID, ok := pathID(c, "logId")
	if !ok {
		return
	}
	var req ConfirmUploadRequest
	if !bindJSON(c, &req) {
		return
	}

	entry, err := h.videoService.ConfirmUpload(c.Request.Context(), clientID, logID, service.ConfirmUploadInput{
		ObjectKey:   req.ObjectKey,
		FileName:    req.FileName,
		ContentType: req.ContentType,
		Size:        req.Size,
	})
	if err != nil {
		respondError(c, err, "confirm upload")
		return
	}
	c.JSON(http.StatusOK, MapExerciseLogToResponse(entry))
}

func (h *VideoHandler) StartMultipart(c *gin.Context) {
	clientID, ok := currentUser(c)
	if !ok {
		return
	}
	logID, ok := pathID(c, "logId")
	if !ok {
		return
	}
	var req UploadURLRequest
	if !bindJSON(c, &req) {
		return
	}

	upload, err := h.videoService.StartMultipart(c.Request.Context(), clientID, logID, req.ContentType, req.FileName)
	if err != nil {
		respondError(c, err, "start multipart upload")
		return
	}
	c.JSON(http.StatusCreated, MapUploadToResponse(upload))
}

func (h *VideoHandler) PresignPart(c *gin.Context) {
	clientID, ok := currentUser(c)
	if !ok {
		return
	}
	uploadID, ok := pathID(c, "uploadId")
	if !ok {
		return
	}
	var req PartURLRequest
	if !bindJSON(c, &req) {
		return
	}

	part, err := h.videoService.PresignPart(c.Request.Context(), clientID, uploadID, req.PartNumber)
	if err != nil {
		respondError(c, err, "generate part URL")
		return
	}
	c.JSON(http.StatusOK, part)
}

func (h *VideoHandler) CompleteMultipart(c *gin.Context) {
	clientID, ok := currentUser(c)
	if !ok {
		return
	}
	uploadID, ok := pathID(c, "uploadId")
	if !ok {
		return
	}
	var req CompleteMultipartRequest
	if !bindJSON(c, &req) {
		return
	}

	entry, err := h.videoService.CompleteMultipart(c.Request.Context(), clientID, uploadID, req.Parts, req.Size)
	if err != nil {
		respondError(c, err, "complete multipart upload")
		return
	}
	c.JSON(http.StatusOK, MapExerciseLogToResponse(entry))
}

func (h *VideoHandler) AbortMultipart(c *gin.Context) {
	clientID, ok := currentUser(c)
	if !ok {
		return
	}
	uploadID, ok := pathID(c, "uploadId")
	if !ok {
		return
	}
	if err := h.videoService.AbortMultipart(c.Request.Context(), clientID, uploadID); err != nil {
		respondError(c, err, "abort multipart upload")
		return
	}
	c.Status(http.StatusNoContent)
}

// VideoURL returns a presigned GET URL for the owning client or the plan's trainer.
func (h *VideoHandler) VideoURL(c *gin.Context) {
	viewerID, ok := currentUser(c)
	if !ok {
		return
	}
	logID, ok := pathID(c, "logId")
	if !ok {
		return
	}
	url, err := h.videoService.VideoURL(c.Request.Context(), viewerID, logID)
	if err != nil {
		respondError(c, err, "generate video URL")
		return
	}
	c.JSON(http.StatusOK, url)
}
