package memory

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/repository"
	"context"
	"errors"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type userRepository struct {
	table[domain.User]
}

func NewUserRepository() repository.UserRepository {
	return &userRepository{table: newTable[domain.User]()}
}

func (r *userRepository) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	if user.Username == "" || user.Email == "" || user.PasswordHash == "" || user.Role == "" {
		return primitive.NilObjectID, errors.New("user username, email, password hash, and role are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.rows {
		if existing.Email == user.Email || existing.Username == user.Username ||
			(user.RUT != "" && existing.RUT == user.RUT) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}

	user.ID = primitive.NewObjectID()
	user.CreatedAt = now()
	user.UpdatedAt = user.CreatedAt
	r.rows[user.ID] = *user
	return user.ID, nil
}

func (r *userRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	user, err := r.get(id)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) findOne(match func(domain.User) bool) (*domain.User, error) {
	found := r.filter(match)
	if len(found) == 0 {
		return nil, repository.ErrNotFound
	}
	return &found[0], nil
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.findOne(func(u domain.User) bool { return u.Email == email })
}

func (r *userRepository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	return r.findOne(func(u domain.User) bool { return u.Username == username })
}

func (r *userRepository) ListClientsByProfessional(_ context.Context, professionalID primitive.ObjectID) ([]domain.User, error) {
	clients := r.filter(func(u domain.User) bool { return u.ManagedBy(professionalID) })
	sort.Slice(clients, func(i, j int) bool { return clients[i].Username < clients[j].Username })
	return clients, nil
}

func (r *userRepository) UpdatePassword(_ context.Context, id primitive.ObjectID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.PasswordHash = passwordHash
	user.UpdatedAt = now()
	r.rows[id] = user
	return nil
}
