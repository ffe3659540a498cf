package service

import (
	"alcyxob/fitcoach/internal/repository"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrInvalidInput is wrapped by every validation failure so handlers can map
// them to 400 with the wrapped message.
var ErrInvalidInput = errors.New("invalid input")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// notFound maps repository.ErrNotFound to the service level sentinel.
func notFound(err, sentinel error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return sentinel
	}
	return err
}

func idsOf[T any](items []T, id func(T) primitive.ObjectID) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, len(items))
	for i, item := range items {
		ids[i] = id(item)
	}
	return ids
}
