package service

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/metrics"
	"alcyxob/fitcoach/internal/repository"
	"alcyxob/fitcoach/internal/storage"
	"context"
	"errors"
	"fmt"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrInvalidContentType = errors.New("content type must be a video")
	ErrInvalidObjectKey   = errors.New("object key does not belong to this log")
	ErrUploadNotFound     = errors.New("upload not found")
	ErrUploadNotPending   = errors.New("upload is no longer pending")
	ErrNoVideo            = errors.New("log has no video")
)

const defaultVideoExt = "mp4"

type UploadURL struct {
	URL       string    `json:"uploadUrl"`
	ObjectKey string    `json:"objectKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type ConfirmUploadInput struct {
	ObjectKey   string
	FileName    string
	ContentType string
	Size        int64
}

type VideoService interface {
	// RequestUploadURL presigns a single PUT for a log's video.
	RequestUploadURL(ctx context.Context, clientID, logID primitive.ObjectID, contentType, fileName string) (*UploadURL, error)
	// ConfirmUpload attaches an uploaded object to the log.
	ConfirmUpload(ctx context.Context, clientID, logID primitive.ObjectID, in ConfirmUploadInput) (*domain.ExerciseLog, error)

	StartMultipart(ctx context.Context, clientID, logID primitive.ObjectID, contentType, fileName string) (*domain.VideoUpload, error)
	PresignPart(ctx context.Context, clientID, uploadID primitive.ObjectID, partNumber int32) (*UploadURL, error)
	CompleteMultipart(ctx context.Context, clientID, uploadID primitive.ObjectID, parts []storage.CompletedPart, size int64) (*domain.ExerciseLog, error)
	AbortMultipart(ctx context.Context, clientID, uploadID primitive.ObjectID) error

	// VideoURL presigns a GET for the owning client or the plan's trainer.
	VideoURL(ctx context.Context, viewerID, logID primitive.ObjectID) (*UploadURL, error)
}

type videoService struct {
	store   *repository.Store
	files   storage.FileStorage
	expiry  time.Duration
	metrics *metrics.Manager
}

func NewVideoService(store *repository.Store, files storage.FileStorage, urlExpiry time.Duration, metricsManager *metrics.Manager) VideoService {
	if urlExpiry <= 0 {
		urlExpiry = storage.DefaultPresignedURLExpiry
	}
	return &videoService{store: store, files: files, expiry: urlExpiry, metrics: metricsManager}
}

func validateVideoType(contentType string) (string, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "video/") {
		return "", ErrInvalidContentType
	}
	return mediaType, nil
}

func keyPrefix(clientID, logID primitive.ObjectID) string {
	return fmt.Sprintf("logs/videos/%s/%s/", clientID.Hex(), logID.Hex())
}

// objectKey builds logs/videos/<client>/<log>/<uuid>.<ext>. The extension
// comes from the file name, then the content type.
func objectKey(clientID, logID primitive.ObjectID, contentType, fileName string) string {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(fileName)), ".")
	if ext == "" {
		ext = strings.TrimPrefix(contentType, "video/")
	}
	if ext == "" || strings.ContainsAny(ext, "/+;. ") {
		ext = defaultVideoExt
	}
	return keyPrefix(clientID, logID) + uuid.NewString() + "." + ext
}

// ownLog returns the log when it belongs to the client.
func (s *videoService) ownLog(ctx context.Context, clientID, logID primitive.ObjectID) (*domain.ExerciseLog, error) {
	entry, err := s.store.Logs.GetByID(ctx, logID)
	if err != nil {
		return nil, notFound(err, ErrLogNotFound)
	}
	if entry.ClientID != clientID {
		return nil, ErrLogNotFound
	}
	return entry, nil
}

func (s *videoService) RequestUploadURL(ctx context.Context, clientID, logID primitive.ObjectID, contentType, fileName string) (*UploadURL, error) {
	contentType, err := validateVideoType(contentType)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownLog(ctx, clientID, logID); err != nil {
		return nil, err
	}

	key := objectKey(clientID, logID, contentType, fileName)
	url, err := s.files.GeneratePresignedUploadURL(ctx, key, contentType, s.expiry)
	if err != nil {
		return nil, err
	}
	return &UploadURL{URL: url, ObjectKey: key, ExpiresAt: time.Now().UTC().Add(s.expiry)}, nil
}

func (s *videoService) ConfirmUpload(ctx context.Context, clientID, logID primitive.ObjectID, in ConfirmUploadInput) (*domain.ExerciseLog, error) {
	contentType, err := validateVideoType(in.ContentType)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(in.ObjectKey, keyPrefix(clientID, logID)) || strings.Contains(in.ObjectKey, "..") {
		return nil, ErrInvalidObjectKey
	}
	if in.Size < 0 {
		return nil, invalid("size must not be negative")
	}
	entry, err := s.ownLog(ctx, clientID, logID)
	if err != nil {
		return nil, err
	}

	return s.attach(ctx, entry, domain.VideoRef{
		ObjectKey:   in.ObjectKey,
		FileName:    path.Base(in.FileName),
		ContentType: contentType,
		Size:        in.Size,
	})
}

// attach stores the reference and removes the video it replaces.
func (s *videoService) attach(ctx context.Context, entry *domain.ExerciseLog, video domain.VideoRef) (*domain.ExerciseLog, error) {
	video.UploadedAt = time.Now().UTC()
	if err := s.store.Logs.SetVideo(ctx, entry.ID, video); err != nil {
		return nil, notFound(err, ErrLogNotFound)
	}
	if s.metrics != nil {
		s.metrics.CounterVideosAttached.Inc()
	}

	if previous := entry.Video; previous != nil && previous.ObjectKey != video.ObjectKey {
		if err := s.files.DeleteObject(ctx, previous.ObjectKey); err != nil {
			log.Warnf("delete replaced video %s: %s", previous.ObjectKey, err)
		}
	}
	entry.Video = &video
	return entry, nil
}

func (s *videoService) StartMultipart(ctx context.Context, clientID, logID primitive.ObjectID, contentType, fileName string) (*domain.VideoUpload, error) {
	contentType, err := validateVideoType(contentType)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownLog(ctx, clientID, logID); err != nil {
		return nil, err
	}

	key := objectKey(clientID, logID, contentType, fileName)
	providerID, err := s.files.CreateMultipartUpload(ctx, key, contentType)
	if err != nil {
		return nil, err
	}

	upload := &domain.VideoUpload{
		ClientID:         clientID,
		LogID:            logID,
		ObjectKey:        key,
		ProviderUploadID: providerID,
		ContentType:      contentType,
		FileName:         path.Base(fileName),
		Status:           domain.UploadPending,
	}
	if _, err := s.store.Uploads.Create(ctx, upload); err != nil {
		if abortErr := s.files.AbortMultipartUpload(ctx, key, providerID); abortErr != nil {
			log.Warnf("abort orphaned multipart upload %s: %s", key, abortErr)
		}
		return nil, err
	}
	return upload, nil
}

// pendingUpload loads a client's upload session and checks it can still change.
func (s *videoService) pendingUpload(ctx context.Context, clientID, uploadID primitive.ObjectID) (*domain.VideoUpload, error) {
	upload, err := s.store.Uploads.GetByID(ctx, uploadID)
	if err != nil {
		return nil, notFound(err, ErrUploadNotFound)
	}
	if upload.ClientID != clientID {
		return nil, ErrUploadNotFound
	}
	if upload.Status != domain.UploadPending {
		return nil, ErrUploadNotPending
	}
	return upload, nil
}

func (s *videoService) PresignPart(ctx context.Context, clientID, uploadID primitive.ObjectID, partNumber int32) (*UploadURL, error) {
	if err := storage.ValidatePartNumber(partNumber); err != nil {
		return nil, invalid("part number must be between %d and %d", storage.MinPartNumber, storage.MaxPartNumber)
	}
	upload, err := s.pendingUpload(ctx, clientID, uploadID)
	if err != nil {
		return nil, err
	}
	url, err := s.files.GeneratePresignedPartURL(ctx, upload.ObjectKey, upload.ProviderUploadID, partNumber, s.expiry)
	if err != nil {
		return nil, err
	}
	return &UploadURL{URL: url, ObjectKey: upload.ObjectKey, ExpiresAt: time.Now().UTC().Add(s.expiry)}, nil
}

// transition moves a session between statuses, reporting sessions that were
// changed concurrently as no longer pending.
func (s *videoService) transition(ctx context.Context, upload *domain.VideoUpload, from, to domain.UploadStatus) error {
	err := s.store.Uploads.Transition(ctx, upload.ID, from, to)
	switch {
	case errors.Is(err, repository.ErrConflict):
		return ErrUploadNotPending
	case err != nil:
		return notFound(err, ErrUploadNotFound)
	}
	upload.Status = to
	return nil
}

// release puts a claimed session back to pending after the provider call
// failed, so the client can retry.
func (s *videoService) release(ctx context.Context, upload *domain.VideoUpload, from domain.UploadStatus) {
	if err := s.transition(ctx, upload, from, domain.UploadPending); err != nil {
		log.Warnf("release upload %s: %s", upload.ID.Hex(), err)
	}
}

// CompleteMultipart claims the session before completing it with the
// provider. A concurrent complete or abort gets ErrUploadNotPending.
func (s *videoService) CompleteMultipart(ctx context.Context, clientID, uploadID primitive.ObjectID, parts []storage.CompletedPart, size int64) (*domain.ExerciseLog, error) {
	if len(parts) == 0 {
		return nil, invalid("at least one part is required")
	}
	upload, err := s.pendingUpload(ctx, clientID, uploadID)
	if err != nil {
		return nil, err
	}
	entry, err := s.ownLog(ctx, clientID, upload.LogID)
	if err != nil {
		return nil, err
	}

	if err := s.transition(ctx, upload, domain.UploadPending, domain.UploadCompleted); err != nil {
		return nil, err
	}
	if err := s.files.CompleteMultipartUpload(ctx, upload.ObjectKey, upload.ProviderUploadID, parts); err != nil {
		s.release(ctx, upload, domain.UploadCompleted)
		if errors.Is(err, storage.ErrInvalidPart) {
			return nil, invalid("parts must have distinct numbers in range and non-empty etags")
		}
		return nil, err
	}

	return s.attach(ctx, entry, domain.VideoRef{
		ObjectKey:   upload.ObjectKey,
		FileName:    upload.FileName,
		ContentType: upload.ContentType,
		Size:        size,
	})
}

func (s *videoService) AbortMultipart(ctx context.Context, clientID, uploadID primitive.ObjectID) error {
	upload, err := s.pendingUpload(ctx, clientID, uploadID)
	if err != nil {
		return err
	}
	if err := s.transition(ctx, upload, domain.UploadPending, domain.UploadAborted); err != nil {
		return err
	}
	if err := s.files.AbortMultipartUpload(ctx, upload.ObjectKey, upload.ProviderUploadID); err != nil {
		s.release(ctx, upload, domain.UploadAborted)
		return err
	}
	return nil
}

func (s *videoService) VideoURL(ctx context.Context, viewerID, logID primitive.ObjectID) (*UploadURL, error) {
	entry, err := viewableLog(ctx, s.store, viewerID, logID)
	if err != nil {
		return nil, err
	}
	if entry.Video == nil {
		return nil, ErrNoVideo
	}
	url, err := s.files.GeneratePresignedDownloadURL(ctx, entry.Video.ObjectKey, s.expiry)
	if err != nil {
		return nil, err
	}
	return &UploadURL{URL: url, ObjectKey: entry.Video.ObjectKey, ExpiresAt: time.Now().UTC().Add(s.expiry)}, nil
}
