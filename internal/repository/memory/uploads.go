package memory

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/repository"
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type videoUploadRepository struct {
	table[domain.VideoUpload]
}

func NewVideoUploadRepository() repository.VideoUploadRepository {
	return &videoUploadRepository{table: newTable[domain.VideoUpload]()}
}

func (r *videoUploadRepository) Create(_ context.Context, upload *domain.VideoUpload) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	upload.ID = primitive.NewObjectID()
	upload.CreatedAt = now()
	upload.UpdatedAt = upload.CreatedAt
	if upload.Status == "" {
		upload.Status = domain.UploadPending
	}
	r.rows[upload.ID] = *upload
	return upload.ID, nil
}

func (r *videoUploadRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.VideoUpload, error) {
	upload, err := r.get(id)
	if err != nil {
		return nil, err
	}
	return &upload, nil
}

func (r *videoUploadRepository) Transition(_ context.Context, id primitive.ObjectID, from, to domain.UploadStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	upload, ok := r.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	if upload.Status != from {
		return repository.ErrConflict
	}
	upload.Status = to
	upload.UpdatedAt = now()
	r.rows[id] = upload
	return nil
}

func (r *videoUploadRepository) ListPendingByLogs(_ context.Context, logIDs []primitive.ObjectID) ([]domain.VideoUpload, error) {
	return r.filter(func(u domain.VideoUpload) bool {
		return u.Status == domain.UploadPending && containsID(logIDs, u.LogID)
	}), nil
}
