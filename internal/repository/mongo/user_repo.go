package mongo

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const userCollectionName = "users"

// mongoUserRepository implements the repository.UserRepository interface using MongoDB.
type mongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new instance of mongoUserRepository.
func NewMongoUserRepository(db *mongo.Database) repository.UserRepository {
	return &mongoUserRepository{
		collection: db.Collection(userCollectionName),
	}
}

// Create inserts a new user. Username, email and RUT collisions surface as
// repository.ErrDuplicate through the unique indexes.
func (r *mongoUserRepository) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	if user.Username == "" || user.Email == "" || user.PasswordHash == "" || user.Role == "" {
		return primitive.NilObjectID, errors.New("user username, email, password hash, and role are required")
	}

	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	return insertedID(r.collection.InsertOne(ctx, user))
}

func (r *mongoUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	var user domain.User
	if err := findOne(ctx, r.collection, bson.M{"_id": id}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *mongoUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	if err := findOne(ctx, r.collection, bson.M{"email": email}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *mongoUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	if err := findOne(ctx, r.collection, bson.M{"username": username}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListClientsByProfessional retrieves all clients assigned to a professional.
func (r *mongoUserRepository) ListClientsByProfessional(ctx context.Context, professionalID primitive.ObjectID) ([]domain.User, error) {
	clients := []domain.User{}
	filter := bson.M{"role": domain.RoleClient, "assignedProfessionalId": professionalID}
	findOptions := options.Find().SetSort(bson.D{{Key: "username", Value: 1}})
	if err := findAll(ctx, r.collection, filter, &clients, findOptions); err != nil {
		return nil, err
	}
	return clients, nil
}

func (r *mongoUserRepository) UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	update := bson.M{"$set": bson.M{"passwordHash": passwordHash, "updatedAt": time.Now().UTC()}}
	return updateOne(ctx, r.collection, bson.M{"_id": id}, update)
}

// EnsureUserIndexes creates necessary indexes for the users collection.
func EnsureUserIndexes(ctx context.Context, collection *mongo.Collection) error {
	return createIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			// Sparse: professionals usually have no RUT on file.
			Keys:    bson.D{{Key: "rut", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "assignedProfessionalId", Value: 1}, {Key: "role", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	})
}
