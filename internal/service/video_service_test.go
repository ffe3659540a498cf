package service

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/repository"
	"alcyxob/fitcoach/internal/storage"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (e *env) loggedSet(t *testing.T) *domain.ExerciseLog {
	t.Helper()
	_, _, wes := e.schedule(t, monday, e.exercise(t, "Deadlift"))
	return e.logDone(t, wes[0].ID, 140, 3)
}

func TestSingleUpload(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	entry := e.loggedSet(t)

	upload, err := e.videos.RequestUploadURL(ctx, e.client.ID, entry.ID, "video/mp4", "set1.MOV")
	require.NoError(t, err)
	prefix := "logs/videos/" + e.client.ID.Hex() + "/" + entry.ID.Hex() + "/"
	assert.True(t, strings.HasPrefix(upload.ObjectKey, prefix), upload.ObjectKey)
	assert.True(t, strings.HasSuffix(upload.ObjectKey, ".mov"), upload.ObjectKey)
	assert.Contains(t, upload.URL, "op=put")

	updated, err := e.videos.ConfirmUpload(ctx, e.client.ID, entry.ID, ConfirmUploadInput{ObjectKey: upload.ObjectKey, FileName: "set1.MOV", ContentType: "video/mp4", Size: 2048})
	require.NoError(t, err)
	require.NotNil(t, updated.Video)
	assert.Equal(t, upload.ObjectKey, updated.Video.ObjectKey)
	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.CounterVideosAttached))

	// Both the client and the trainer may watch it.
	for _, viewer := range []primitive.ObjectID{e.client.ID, e.trainer.ID} {
		url, err := e.videos.VideoURL(ctx, viewer, entry.ID)
		require.NoError(t, err)
		assert.Contains(t, url.URL, upload.ObjectKey)
		assert.Contains(t, url.URL, "op=get")
	}
	stranger := e.register(t, domain.RoleClient, "secret-pass")
	_, err = e.videos.VideoURL(ctx, stranger.ID, entry.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	// A second video replaces the first one and deletes it from storage.
	second, err := e.videos.RequestUploadURL(ctx, e.client.ID, entry.ID, "video/webm", "")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(second.ObjectKey, ".webm"))
	_, err = e.videos.ConfirmUpload(ctx, e.client.ID, entry.ID, ConfirmUploadInput{ObjectKey: second.ObjectKey, ContentType: "video/webm"})
	require.NoError(t, err)
	assert.Equal(t, []string{upload.ObjectKey}, e.files.Deleted)
}

func TestUploadRejects(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	entry := e.loggedSet(t)

	_, err := e.videos.RequestUploadURL(ctx, e.client.ID, entry.ID, "image/png", "x.png")
	assert.ErrorIs(t, err, ErrInvalidContentType)
	_, err = e.videos.RequestUploadURL(ctx, e.client.ID, entry.ID, "", "x.mp4")
	assert.ErrorIs(t, err, ErrInvalidContentType)
	_, err = e.videos.RequestUploadURL(ctx, e.trainer.ID, entry.ID, "video/mp4", "x.mp4")
	assert.ErrorIs(t, err, ErrLogNotFound)
	_, err = e.videos.RequestUploadURL(ctx, e.client.ID, primitive.NewObjectID(), "video/mp4", "x.mp4")
	assert.ErrorIs(t, err, ErrLogNotFound)

	otherLog := "logs/videos/" + e.client.ID.Hex() + "/" + primitive.NewObjectID().Hex() + "/a.mp4"
	_, err = e.videos.ConfirmUpload(ctx, e.client.ID, entry.ID, ConfirmUploadInput{ObjectKey: otherLog, ContentType: "video/mp4"})
	assert.ErrorIs(t, err, ErrInvalidObjectKey)
	traversal := "logs/videos/" + e.client.ID.Hex() + "/" + entry.ID.Hex() + "/../../x.mp4"
	_, err = e.videos.ConfirmUpload(ctx, e.client.ID, entry.ID, ConfirmUploadInput{ObjectKey: traversal, ContentType: "video/mp4"})
	assert.ErrorIs(t, err, ErrInvalidObjectKey)

	_, err = e.videos.VideoURL(ctx, e.client.ID, entry.ID)
	assert.ErrorIs(t, err, ErrNoVideo)

	e.files.Err = errors.New("s3 unavailable")
	_, err = e.videos.RequestUploadURL(ctx, e.client.ID, entry.ID, "video/mp4", "x.mp4")
	assert.EqualError(t, err, "s3 unavailable")
}

func TestMultipartUpload(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	entry := e.loggedSet(t)

	upload, err := e.videos.StartMultipart(ctx, e.client.ID, entry.ID, "video/quicktime", "long.mov")
	require.NoError(t, err)
	assert.Equal(t, domain.UploadPending, upload.Status)
	assert.Contains(t, e.files.Uploads, upload.ProviderUploadID)

	part, err := e.videos.PresignPart(ctx, e.client.ID, upload.ID, 2)
	require.NoError(t, err)
	assert.Contains(t, part.URL, "partNumber=2")
	_, err = e.videos.PresignPart(ctx, e.client.ID, upload.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = e.videos.PresignPart(ctx, e.client.ID, upload.ID, storage.MaxPartNumber+1)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = e.videos.PresignPart(ctx, e.trainer.ID, upload.ID, 1)
	assert.ErrorIs(t, err, ErrUploadNotFound)

	_, err = e.videos.CompleteMultipart(ctx, e.client.ID, upload.ID, []storage.CompletedPart{{PartNumber: 1, ETag: "a"}, {PartNumber: 1, ETag: "b"}}, 10)
	assert.ErrorIs(t, err, ErrInvalidInput)

	updated, err := e.videos.CompleteMultipart(ctx, e.client.ID, upload.ID, []storage.CompletedPart{{PartNumber: 2, ETag: "b"}, {PartNumber: 1, ETag: "a"}}, 10<<20)
	require.NoError(t, err)
	require.NotNil(t, updated.Video)
	assert.Equal(t, upload.ObjectKey, updated.Video.ObjectKey)
	assert.EqualValues(t, 10<<20, updated.Video.Size)
	assert.Equal(t, []storage.CompletedPart{{PartNumber: 1, ETag: "a"}, {PartNumber: 2, ETag: "b"}}, e.files.Objects[upload.ObjectKey])

	stored, err := e.store.Uploads.GetByID(ctx, upload.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.UploadCompleted, stored.Status)

	assert.ErrorIs(t, e.videos.AbortMultipart(ctx, e.client.ID, upload.ID), ErrUploadNotPending)
	_, err = e.videos.PresignPart(ctx, e.client.ID, upload.ID, 3)
	assert.ErrorIs(t, err, ErrUploadNotPending)
}

func TestAbortMultipart(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	entry := e.loggedSet(t)

	upload, err := e.videos.StartMultipart(ctx, e.client.ID, entry.ID, "video/mp4", "a.mp4")
	require.NoError(t, err)
	require.NoError(t, e.videos.AbortMultipart(ctx, e.client.ID, upload.ID))
	assert.NotContains(t, e.files.Uploads, upload.ProviderUploadID)

	stored, err := e.store.Uploads.GetByID(ctx, upload.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.UploadAborted, stored.Status)

	_, err = e.videos.CompleteMultipart(ctx, e.client.ID, upload.ID, []storage.CompletedPart{{PartNumber: 1, ETag: "a"}}, 1)
	assert.ErrorIs(t, err, ErrUploadNotPending)
	assert.ErrorIs(t, e.videos.AbortMultipart(ctx, e.client.ID, primitive.NewObjectID()), ErrUploadNotFound)
}

func TestCompleteAndAbortRace(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	entry := e.loggedSet(t)

	for i := 0; i < 20; i++ {
		upload, err := e.videos.StartMultipart(ctx, e.client.ID, entry.ID, "video/mp4", "race.mp4")
		require.NoError(t, err)

		var wg sync.WaitGroup
		var completeErr, abortErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, completeErr = e.videos.CompleteMultipart(ctx, e.client.ID, upload.ID, []storage.CompletedPart{{PartNumber: 1, ETag: "a"}}, 1)
		}()
		go func() {
			defer wg.Done()
			abortErr = e.videos.AbortMultipart(ctx, e.client.ID, upload.ID)
		}()
		wg.Wait()

		stored, err := e.store.Uploads.GetByID(ctx, upload.ID)
		require.NoError(t, err)
		current, err := e.store.Logs.GetByID(ctx, entry.ID)
		require.NoError(t, err)

		if completeErr == nil {
			assert.ErrorIs(t, abortErr, ErrUploadNotPending)
			assert.Equal(t, domain.UploadCompleted, stored.Status)
			require.NotNil(t, current.Video)
			assert.Equal(t, upload.ObjectKey, current.Video.ObjectKey)
		} else {
			assert.ErrorIs(t, completeErr, ErrUploadNotPending)
			require.NoError(t, abortErr)
			assert.Equal(t, domain.UploadAborted, stored.Status)
			if current.Video != nil {
				assert.NotEqual(t, upload.ObjectKey, current.Video.ObjectKey)
			}
		}
	}
}

func TestCompleteRetriesAfterStorageFailure(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	entry := e.loggedSet(t)

	upload, err := e.videos.StartMultipart(ctx, e.client.ID, entry.ID, "video/mp4", "retry.mp4")
	require.NoError(t, err)
	parts := []storage.CompletedPart{{PartNumber: 1, ETag: "a"}}

	e.files.Err = errors.New("s3 unavailable")
	_, err = e.videos.CompleteMultipart(ctx, e.client.ID, upload.ID, parts, 1)
	assert.EqualError(t, err, "s3 unavailable")
	stored, err := e.store.Uploads.GetByID(ctx, upload.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.UploadPending, stored.Status)

	e.files.Err = nil
	updated, err := e.videos.CompleteMultipart(ctx, e.client.ID, upload.ID, parts, 1)
	require.NoError(t, err)
	require.NotNil(t, updated.Video)

	assert.ErrorIs(t, e.store.Uploads.Transition(ctx, upload.ID, domain.UploadPending, domain.UploadAborted), repository.ErrConflict)
}
