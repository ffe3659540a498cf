package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UploadStatus string

const (
	UploadPending   UploadStatus = "pending"
	UploadCompleted UploadStatus = "completed"
	UploadAborted   UploadStatus = "aborted"
)

// VideoUpload tracks a multipart upload of a log video. The file itself goes
// straight from the client to S3.
type VideoUpload struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClientID         primitive.ObjectID `bson:"clientId" json:"clientId"`
	LogID            primitive.ObjectID `bson:"logId" json:"logId"`
	ObjectKey        string             `bson:"objectKey" json:"objectKey"`
	ProviderUploadID string             `bson:"providerUploadId" json:"-"`
	ContentType      string             `bson:"contentType" json:"contentType"`
	FileName         string             `bson:"fileName" json:"fileName"`
	Status           UploadStatus       `bson:"status" json:"status"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}
