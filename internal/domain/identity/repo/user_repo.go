package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/halcyonworks/identity/internal/domain/identity/model"
)

// UserRepo is the opaque user store. Implementations return
// errors.ErrNotFound for missing records and errors.ErrAlreadyExists
// when an email collides with an existing one.
type UserRepo interface {
	CreateUser(ctx context.Context, user model.User) (uuid.UUID, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUser(ctx context.Context, user model.User) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
}
