package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/halcyonworks/identity/internal/domain/identity/model"
)

type RegisterDTO struct {
	Name         string `json:"name"         validate:"required,min=1"`
	Email        string `json:"email"        validate:"required,email"`
	Password     string `json:"password"     validate:"required,min=8,max=25"`
	PasswordConf string `json:"passwordConf" validate:"required,eqfield=Password"`
}

type LoginDTO struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type ChangePasswordDTO struct {
	OldPassword  string `json:"oldPassword"  validate:"required,min=8,max=25"`
	Password     string `json:"password"     validate:"required,min=8,max=25,nefield=OldPassword"`
	PasswordConf string `json:"passwordConf" validate:"required,eqfield=Password"`
}

type UpdateUserDTO struct {
	Name  string `json:"name"  validate:"omitempty,min=1"`
	Email string `json:"email" validate:"omitempty,email"`
}

// UserResponse is the only shape a user record leaves the service in.
// The password hash has no field here on purpose.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewUserResponse(u model.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func NewUserResponses(users []model.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserResponse(u))
	}
	return out
}
