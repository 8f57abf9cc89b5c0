package repository

import (
	"context"
	"errors"

	"invoice-dashboard/internal/domain"
)

// ErrNotFound is returned by lookups that match no record.
var ErrNotFound = errors.New("not found")

// UserRepository defines persistence operations for User entities.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) (string, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
}
