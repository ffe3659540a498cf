package mongo

import (
	"alcyxob/fitcoach/internal/repository"
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

// ConnectDB establishes a connection to MongoDB using the provided URI.
// It returns the mongo.Client which can be used to access databases and collections.
func ConnectDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	// The initial connection can succeed while the server is unresponsive.
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	if err = client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}

	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// NewStore wires every MongoDB repository against db.
func NewStore(db *mongo.Database) *repository.Store {
	return &repository.Store{
		Users:            NewMongoUserRepository(db),
		Exercises:        NewMongoExerciseRepository(db),
		Warmups:          NewMongoWarmupRepository(db),
		Plans:            NewMongoTrainingPlanRepository(db),
		Workouts:         NewMongoWorkoutRepository(db),
		WorkoutExercises: NewMongoWorkoutExerciseRepository(db),
		Logs:             NewMongoExerciseLogRepository(db),
		Uploads:          NewMongoVideoUploadRepository(db),
	}
}

// EnsureIndexes creates the indexes of every collection. Failures are logged,
// not fatal: the app still works without them, only slower and without the
// uniqueness guarantees.
func EnsureIndexes(ctx context.Context, db *mongo.Database) {
	ensure := map[string]func(context.Context, *mongo.Collection) error{
		userCollectionName:            EnsureUserIndexes,
		exerciseCollectionName:        EnsureExerciseIndexes,
		warmupCollectionName:          EnsureWarmupIndexes,
		trainingPlanCollectionName:    EnsureTrainingPlanIndexes,
		workoutCollectionName:         EnsureWorkoutIndexes,
		workoutExerciseCollectionName: EnsureWorkoutExerciseIndexes,
		exerciseLogCollectionName:     EnsureExerciseLogIndexes,
		videoUploadCollectionName:     EnsureVideoUploadIndexes,
	}
	for name, fn := range ensure {
		if err := fn(ctx, db.Collection(name)); err != nil {
			log.Warnf("failed to create indexes for collection %s: %s", name, err)
		}
	}
}

func createIndexes(ctx context.Context, collection *mongo.Collection, indexes []mongo.IndexModel) error {
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// insertedID converts InsertOne's result into an ObjectID, mapping duplicate
// key violations onto repository.ErrDuplicate.
func insertedID(result *mongo.InsertOneResult, err error) (primitive.ObjectID, error) {
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}
	id, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return id, nil
}

// findOne decodes the single document matching filter into out.
func findOne(ctx context.Context, collection *mongo.Collection, filter interface{}, out interface{}) error {
	err := collection.FindOne(ctx, filter).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repository.ErrNotFound
	}
	return err
}

// findAll runs a query and decodes every document into out, which must be a
// pointer to a slice.
func findAll(ctx context.Context, collection *mongo.Collection, filter interface{}, out interface{}, opts ...*options.FindOptions) error {
	cursor, err := collection.Find(ctx, filter, opts...)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, out); err != nil {
		return err
	}
	return cursor.Err()
}

func updateOne(ctx context.Context, collection *mongo.Collection, filter, update interface{}) error {
	result, err := collection.UpdateOne(ctx, filter, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func deleteOne(ctx context.Context, collection *mongo.Collection, filter interface{}) error {
	result, err := collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
