package service_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/halcyonworks/identity/internal/adapters/transport/http/dto"
	"github.com/halcyonworks/identity/internal/app/identity/jwt"
	"github.com/halcyonworks/identity/internal/app/identity/session"
	appsvc "github.com/halcyonworks/identity/internal/app/identity/service"
	customErrors "github.com/halcyonworks/identity/internal/domain/identity/errors"
	"github.com/halcyonworks/identity/internal/domain/identity/model"
	"github.com/stretchr/testify/require"
)

/* ──────────────────────────────── stubs ──────────────────────────────── */

type userRepoStub struct{ users map[uuid.UUID]model.User }

func (u *userRepoStub) CreateUser(_ context.Context, m model.User) (uuid.UUID, error) {
	for _, v := range u.users {
		if v.Email == m.Email {
			return uuid.Nil, customErrors.ErrAlreadyExists
		}
	}
	u.users[m.ID] = m
	return m.ID, nil
}
func (u *userRepoStub) GetUserByID(_ context.Context, id uuid.UUID) (model.User, error) {
	v, ok := u.users[id]
	if !ok {
		return model.User{}, customErrors.ErrNotFound
	}
	return v, nil
}
func (u *userRepoStub) GetUserByEmail(_ context.Context, email string) (model.User, error) {
	for _, v := range u.users {
		if v.Email == email {
			return v, nil
		}
	}
	return model.User{}, customErrors.ErrNotFound
}
func (u *userRepoStub) ListUsers(_ context.Context) ([]model.User, error) {
	out := make([]model.User, 0, len(u.users))
	for _, v := range u.users {
		out = append(out, v)
	}
	return out, nil
}
func (u *userRepoStub) UpdateUser(_ context.Context, m model.User) error {
	u.users[m.ID] = m
	return nil
}
func (u *userRepoStub) DeleteUser(_ context.Context, id uuid.UUID) error {
	if _, ok := u.users[id]; !ok {
		return customErrors.ErrNotFound
	}
	delete(u.users, id)
	return nil
}

type sessionRepoStub struct{ values map[uuid.UUID]string }

func (s *sessionRepoStub) Set(_ context.Context, id uuid.UUID, snapshot string, _ time.Duration) error {
	s.values[id] = snapshot
	return nil
}
func (s *sessionRepoStub) Get(_ context.Context, id uuid.UUID) (string, error) {
	v, ok := s.values[id]
	if !ok {
		return "", customErrors.ErrNotFound
	}
	return v, nil
}
func (s *sessionRepoStub) Delete(_ context.Context, id uuid.UUID) error {
	delete(s.values, id)
	return nil
}

/* ───────────────────────────── helpers ───────────────────────────── */

func newSvc(t *testing.T) (appsvc.Service, session.Manager, *userRepoStub) {
	t.Helper()
	accessKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	refreshKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	util := jwt.NewFromKeys(
		accessKey, &accessKey.PublicKey,
		refreshKey, &refreshKey.PublicKey,
		time.Minute, time.Hour,
	)

	ur := &userRepoStub{users: make(map[uuid.UUID]model.User)}
	sr := &sessionRepoStub{values: make(map[uuid.UUID]string)}
	mgr := session.NewManager(ur, sr, util, 30*time.Minute)
	return appsvc.New(ur, mgr, "pepper", validator.New()), mgr, ur
}

func registerDTO() dto.RegisterDTO {
	return dto.RegisterDTO{
		Name:         "A",
		Email:        "a@x.com",
		Password:     "longpass1",
		PasswordConf: "longpass1",
	}
}

/* ─────────────────────────────── tests ─────────────────────────────── */

func TestService_RegisterLoginVerify(t *testing.T) {
	svc, mgr, _ := newSvc(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, registerDTO())
	require.NoError(t, err)
	require.NotEqual(t, "longpass1", user.PasswordHash)

	pair, err := svc.Login(ctx, dto.LoginDTO{Email: "A@X.COM", Password: "longpass1"})
	require.NoError(t, err)

	got, err := mgr.Verify(ctx, pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)
}

func TestService_RegisterLowercasesEmail(t *testing.T) {
	svc, _, ur := newSvc(t)

	in := registerDTO()
	in.Email = "MiXeD@X.com"
	user, err := svc.Register(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, "mixed@x.com", user.Email)
	require.Equal(t, "mixed@x.com", ur.users[user.ID].Email)
}

func TestService_RegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newSvc(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerDTO())
	require.NoError(t, err)

	_, err = svc.Register(ctx, registerDTO())
	require.ErrorIs(t, err, customErrors.ErrAlreadyExists)
}

func TestService_RegisterValidation(t *testing.T) {
	svc, _, _ := newSvc(t)

	in := registerDTO()
	in.PasswordConf = "different1"
	_, err := svc.Register(context.Background(), in)
	require.True(t, customErrors.IsInvalidArgument(err))

	in = registerDTO()
	in.Password, in.PasswordConf = "short", "short"
	_, err = svc.Register(context.Background(), in)
	require.True(t, customErrors.IsInvalidArgument(err))
}

func TestService_LoginWrongPassword(t *testing.T) {
	svc, _, _ := newSvc(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerDTO())
	require.NoError(t, err)

	_, err = svc.Login(ctx, dto.LoginDTO{Email: "a@x.com", Password: "wrongpass1"})
	require.ErrorIs(t, err, customErrors.ErrInvalidCredentials)
}

func TestService_LoginUnknownEmail(t *testing.T) {
	svc, _, _ := newSvc(t)

	_, err := svc.Login(context.Background(), dto.LoginDTO{Email: "nobody@x.com", Password: "longpass1"})
	require.ErrorIs(t, err, customErrors.ErrInvalidCredentials)
}

func TestService_LogoutKillsSession(t *testing.T) {
	svc, mgr, _ := newSvc(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, registerDTO())
	require.NoError(t, err)
	pair, err := svc.Login(ctx, dto.LoginDTO{Email: "a@x.com", Password: "longpass1"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, user))

	_, err = mgr.Verify(ctx, pair.AccessToken)
	require.ErrorIs(t, err, customErrors.ErrSessionExpired)
}

func TestService_ChangePasswordWrongOld(t *testing.T) {
	svc, _, ur := newSvc(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, registerDTO())
	require.NoError(t, err)
	hashBefore := ur.users[user.ID].PasswordHash

	_, err = svc.ChangePassword(ctx, user, dto.ChangePasswordDTO{
		OldPassword:  "wrongpass1",
		Password:     "newlongpass1",
		PasswordConf: "newlongpass1",
	})
	require.ErrorIs(t, err, customErrors.ErrInvalidCredentials)
	require.Equal(t, hashBefore, ur.users[user.ID].PasswordHash)
}

func TestService_ChangePasswordRoundTrip(t *testing.T) {
	svc, _, _ := newSvc(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, registerDTO())
	require.NoError(t, err)

	updated, err := svc.ChangePassword(ctx, user, dto.ChangePasswordDTO{
		OldPassword:  "longpass1",
		Password:     "newlongpass1",
		PasswordConf: "newlongpass1",
	})
	require.NoError(t, err)
	require.NotEqual(t, user.PasswordHash, updated.PasswordHash)

	_, err = svc.Login(ctx, dto.LoginDTO{Email: "a@x.com", Password: "newlongpass1"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, dto.LoginDTO{Email: "a@x.com", Password: "longpass1"})
	require.ErrorIs(t, err, customErrors.ErrInvalidCredentials)
}

func TestService_ChangePasswordKeepsSessionAlive(t *testing.T) {
	svc, mgr, _ := newSvc(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, registerDTO())
	require.NoError(t, err)
	pair, err := svc.Login(ctx, dto.LoginDTO{Email: "a@x.com", Password: "longpass1"})
	require.NoError(t, err)

	_, err = svc.ChangePassword(ctx, user, dto.ChangePasswordDTO{
		OldPassword:  "longpass1",
		Password:     "newlongpass1",
		PasswordConf: "newlongpass1",
	})
	require.NoError(t, err)

	// outstanding tokens and the session record survive a password change
	_, err = mgr.Verify(ctx, pair.AccessToken)
	require.NoError(t, err)
}

func TestService_ChangePasswordSameAsOld(t *testing.T) {
	svc, _, _ := newSvc(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, registerDTO())
	require.NoError(t, err)

	_, err = svc.ChangePassword(ctx, user, dto.ChangePasswordDTO{
		OldPassword:  "longpass1",
		Password:     "longpass1",
		PasswordConf: "longpass1",
	})
	require.True(t, customErrors.IsInvalidArgument(err))
}

func TestService_UserCRUD(t *testing.T) {
	svc, _, _ := newSvc(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, registerDTO())
	require.NoError(t, err)

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)

	got, err := svc.GetUser(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, user.Email, got.Email)

	updated, err := svc.UpdateUser(ctx, user.ID, dto.UpdateUserDTO{Name: "B"})
	require.NoError(t, err)
	require.Equal(t, "B", updated.Name)
	require.Equal(t, user.Email, updated.Email)

	require.NoError(t, svc.DeleteUser(ctx, user.ID))
	_, err = svc.GetUser(ctx, user.ID)
	require.ErrorIs(t, err, customErrors.ErrNotFound)
	require.ErrorIs(t, svc.DeleteUser(ctx, user.ID), customErrors.ErrNotFound)
}

func TestService_RefreshDelegates(t *testing.T) {
	svc, _, _ := newSvc(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerDTO())
	require.NoError(t, err)
	pair, err := svc.Login(ctx, dto.LoginDTO{Email: "a@x.com", Password: "longpass1"})
	require.NoError(t, err)

	at, ttl, err := svc.RefreshAccessToken(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, at)
	require.Greater(t, ttl, time.Duration(0))

	_, _, err = svc.RefreshAccessToken(ctx, "bogus")
	require.ErrorIs(t, err, customErrors.ErrRefreshFailed)
}
