package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/halcyonworks/identity/internal/adapters/transport/http/dto"
	"github.com/halcyonworks/identity/internal/domain/identity/model"
)

// Service is the boundary contract the routing layer consumes. All
// domain failures come back as sentinel errors from the errors package;
// HTTP status mapping happens in the transport layer only.
type Service interface {
	Register(ctx context.Context, in dto.RegisterDTO) (model.User, error)
	Login(ctx context.Context, in dto.LoginDTO) (model.TokenPair, error)
	Logout(ctx context.Context, user model.User) error
	RefreshAccessToken(ctx context.Context, refreshToken string) (string, time.Duration, error)
	ChangePassword(ctx context.Context, user model.User, in dto.ChangePasswordDTO) (model.User, error)

	ListUsers(ctx context.Context) ([]model.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (model.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, in dto.UpdateUserDTO) (model.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
}
