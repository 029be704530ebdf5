package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/halcyonworks/identity/internal/adapters/transport/http/dto"
	"github.com/halcyonworks/identity/internal/app/identity/session"
	customErrors "github.com/halcyonworks/identity/internal/domain/identity/errors"
	"github.com/halcyonworks/identity/internal/domain/identity/model"
	"github.com/halcyonworks/identity/internal/domain/identity/repo"
)

var argonParams = &argon2id.Params{
	Memory:      64 * 1024, // 64 MiB
	Iterations:  2,
	Parallelism: 4,
	SaltLength:  16,
	KeyLength:   32,
}

type identityService struct {
	users    repo.UserRepo
	sessions session.Manager
	pepper   string
	v        *validator.Validate
}

func New(
	ur repo.UserRepo,
	sm session.Manager,
	pepper string,
	v *validator.Validate,
) Service {
	return &identityService{users: ur, sessions: sm, pepper: pepper, v: v}
}

func (s *identityService) Register(ctx context.Context, in dto.RegisterDTO) (model.User, error) {
	if err := s.v.Struct(in); err != nil {
		return model.User{}, customErrors.NewInvalidArgument(err.Error())
	}

	passwordHash, err := argon2id.CreateHash(in.Password+s.pepper, argonParams)
	if err != nil {
		return model.User{}, customErrors.WrapInternal(err, "Register")
	}

	now := time.Now()
	user := model.User{
		ID:           uuid.New(),
		Name:         in.Name,
		Email:        strings.ToLower(in.Email),
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err = s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, customErrors.ErrAlreadyExists) {
			return model.User{}, customErrors.ErrAlreadyExists
		}
		return model.User{}, customErrors.WrapInternal(err, "Register")
	}

	return user, nil
}

func (s *identityService) Login(ctx context.Context, in dto.LoginDTO) (model.TokenPair, error) {
	if err := s.v.Struct(in); err != nil {
		return model.TokenPair{}, customErrors.NewInvalidArgument(err.Error())
	}

	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(in.Email))
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		return model.TokenPair{}, customErrors.ErrInvalidCredentials
	case err != nil:
		return model.TokenPair{}, customErrors.WrapInternal(err, "Login")
	}

	ok, err := argon2id.ComparePasswordAndHash(in.Password+s.pepper, user.PasswordHash)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "Login")
	}
	if !ok {
		return model.TokenPair{}, customErrors.ErrInvalidCredentials
	}

	return s.sessions.Issue(ctx, user)
}

func (s *identityService) Logout(ctx context.Context, user model.User) error {
	return s.sessions.Revoke(ctx, user.ID)
}

func (s *identityService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, time.Duration, error) {
	return s.sessions.Refresh(ctx, refreshToken)
}

// ChangePassword re-verifies the old password even though the caller is
// already authenticated. Live sessions and outstanding tokens survive a
// password change.
func (s *identityService) ChangePassword(ctx context.Context, user model.User, in dto.ChangePasswordDTO) (model.User, error) {
	if err := s.v.Struct(in); err != nil {
		return model.User{}, customErrors.NewInvalidArgument(err.Error())
	}

	ok, err := argon2id.ComparePasswordAndHash(in.OldPassword+s.pepper, user.PasswordHash)
	if err != nil {
		return model.User{}, customErrors.WrapInternal(err, "ChangePassword")
	}
	if !ok {
		return model.User{}, customErrors.ErrInvalidCredentials
	}

	newHash, err := argon2id.CreateHash(in.Password+s.pepper, argonParams)
	if err != nil {
		return model.User{}, customErrors.WrapInternal(err, "ChangePassword")
	}

	user.PasswordHash = newHash
	user.UpdatedAt = time.Now()
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return model.User{}, customErrors.WrapInternal(err, "ChangePassword")
	}

	return user, nil
}

func (s *identityService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, customErrors.WrapInternal(err, "ListUsers")
	}
	return users, nil
}

func (s *identityService) GetUser(ctx context.Context, id uuid.UUID) (model.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		return model.User{}, customErrors.ErrNotFound
	case err != nil:
		return model.User{}, customErrors.WrapInternal(err, "GetUser")
	}
	return user, nil
}

func (s *identityService) UpdateUser(ctx context.Context, id uuid.UUID, in dto.UpdateUserDTO) (model.User, error) {
	if err := s.v.Struct(in); err != nil {
		return model.User{}, customErrors.NewInvalidArgument(err.Error())
	}

	user, err := s.users.GetUserByID(ctx, id)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		return model.User{}, customErrors.ErrNotFound
	case err != nil:
		return model.User{}, customErrors.WrapInternal(err, "UpdateUser")
	}

	if in.Name != "" {
		user.Name = in.Name
	}
	if in.Email != "" {
		user.Email = strings.ToLower(in.Email)
	}
	user.UpdatedAt = time.Now()

	if err := s.users.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, customErrors.ErrAlreadyExists) {
			return model.User{}, customErrors.ErrAlreadyExists
		}
		return model.User{}, customErrors.WrapInternal(err, "UpdateUser")
	}

	return user, nil
}

func (s *identityService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	err := s.users.DeleteUser(ctx, id)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		return customErrors.ErrNotFound
	case err != nil:
		return customErrors.WrapInternal(err, "DeleteUser")
	}
	return nil
}
