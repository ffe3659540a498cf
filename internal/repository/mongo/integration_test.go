//go:build integration

package mongo

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/repository"
	"context"
	"os"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Run with: MONGODB_TEST_URI=mongodb://localhost:27017 go test -tags integration ./internal/repository/mongo/
func testDatabase(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set")
	}
	client, err := ConnectDB(uri)
	require.NoError(t, err)

	db := client.Database("fitcoach_test_" + primitive.NewObjectID().Hex())
	EnsureIndexes(context.Background(), db)
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = DisconnectDB(client)
	})
	return db
}

func newUser(rut string) *domain.User {
	return &domain.User{
		Username:     gofakeit.Username() + gofakeit.DigitN(6),
		Email:        gofakeit.DigitN(6) + gofakeit.Email(),
		PasswordHash: "hash",
		Role:         domain.RoleClient,
		RUT:          rut,
	}
}

func TestUserRUTIndexIsSparse(t *testing.T) {
	repo := NewMongoUserRepository(testDatabase(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, newUser(""))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newUser(""))
	require.NoError(t, err, "users without a RUT must not collide")

	_, err = repo.Create(ctx, newUser("12.345.678-9"))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newUser("12.345.678-9"))
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestExerciseLogs(t *testing.T) {
	repo := NewMongoExerciseLogRepository(testDatabase(t))
	ctx := context.Background()
	client, exercise, swapped := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	we := primitive.NewObjectID()

	var ids []primitive.ObjectID
	for _, set := range []struct {
		weight float64
		reps   int
	}{{100, 5}, {110, 3}, {110, 4}, {90, 10}} {
		id, err := repo.Create(ctx, &domain.ExerciseLog{
			ClientID:          client,
			WorkoutExerciseID: we,
			ExerciseID:        exercise,
			WeightKg:          set.weight,
			RepsCompleted:     set.reps,
		})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	best, err := repo.Best(ctx, client, exercise)
	require.NoError(t, err)
	assert.Equal(t, ids[2], best.ID, "highest weight, then most reps")

	logs, err := repo.List(ctx, repository.LogFilter{ClientID: client, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, logs, 2)

	require.NoError(t, repo.SetExerciseByWorkoutExercise(ctx, we, swapped))
	_, err = repo.Best(ctx, client, exercise)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	count, err := repo.Count(ctx, repository.LogFilter{ExerciseID: swapped})
	require.NoError(t, err)
	assert.EqualValues(t, 4, count)
}

func TestVideoUploadTransition(t *testing.T) {
	repo := NewMongoVideoUploadRepository(testDatabase(t))
	ctx := context.Background()
	logID := primitive.NewObjectID()

	upload := &domain.VideoUpload{
		ClientID:         primitive.NewObjectID(),
		LogID:            logID,
		ObjectKey:        "logs/videos/" + primitive.NewObjectID().Hex() + ".mp4",
		ProviderUploadID: "provider-1",
	}
	_, err := repo.Create(ctx, upload)
	require.NoError(t, err)

	pending, err := repo.ListPendingByLogs(ctx, []primitive.ObjectID{logID})
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	require.NoError(t, repo.Transition(ctx, upload.ID, domain.UploadPending, domain.UploadCompleted))
	assert.ErrorIs(t, repo.Transition(ctx, upload.ID, domain.UploadPending, domain.UploadAborted), repository.ErrConflict)
	assert.ErrorIs(t, repo.Transition(ctx, primitive.NewObjectID(), domain.UploadPending, domain.UploadAborted), repository.ErrNotFound)

	pending, err = repo.ListPendingByLogs(ctx, []primitive.ObjectID{logID})
	require.NoError(t, err)
	assert.Empty(t, pending)
}
