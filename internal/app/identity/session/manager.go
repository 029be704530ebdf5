package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/halcyonworks/identity/internal/app/identity/jwt"
	customErrors "github.com/halcyonworks/identity/internal/domain/identity/errors"
	"github.com/halcyonworks/identity/internal/domain/identity/model"
	"github.com/halcyonworks/identity/internal/domain/identity/repo"
)

// Manager owns the session lifecycle: a session record in the cache is
// the sole authority for whether a user's tokens are honored. Tokens
// themselves are stateless; revocation happens by deleting the record.
type Manager interface {
	Issue(ctx context.Context, user model.User) (model.TokenPair, error)
	Verify(ctx context.Context, accessToken string) (model.User, error)
	Refresh(ctx context.Context, refreshToken string) (string, time.Duration, error)
	Revoke(ctx context.Context, userID uuid.UUID) error
}

type manager struct {
	users      repo.UserRepo
	sessions   repo.SessionRepo
	jwtUtil    jwt.JWTUtil
	sessionTTL time.Duration
}

func NewManager(
	ur repo.UserRepo,
	sr repo.SessionRepo,
	jm jwt.JWTUtil,
	sessionTTL time.Duration,
) Manager {
	return &manager{users: ur, sessions: sr, jwtUtil: jm, sessionTTL: sessionTTL}
}

// Issue writes the session record and mints both tokens. The record
// value is the full serialized user, password hash included, so the
// cache holds an exact mirror of the row at login time.
func (m *manager) Issue(ctx context.Context, user model.User) (model.TokenPair, error) {
	snapshot, err := json.Marshal(user)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "marshal session snapshot")
	}

	if err := m.sessions.Set(ctx, user.ID, string(snapshot), m.sessionTTL); err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "store session")
	}

	at, atExp, err := m.jwtUtil.GenerateAccessToken(user.ID)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "GenerateAccessToken")
	}
	rt, rtExp, err := m.jwtUtil.GenerateRefreshToken(user.ID)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "GenerateRefreshToken")
	}

	now := time.Now()
	return model.TokenPair{
		AccessToken:  at,
		RefreshToken: rt,
		AccessTTL:    atExp.Sub(now),
		RefreshTTL:   rtExp.Sub(now),
		UserID:       user.ID,
	}, nil
}

// Verify gates every authenticated operation. The checks run in order
// and stop at the first failure: credential present, token verifies,
// session record alive, user record alive. On success the user is
// re-fetched from the store, never taken from the cached snapshot.
func (m *manager) Verify(ctx context.Context, accessToken string) (model.User, error) {
	if accessToken == "" {
		return model.User{}, customErrors.ErrMissingCredential
	}

	claims, err := m.jwtUtil.ValidateAccessToken(accessToken)
	if err != nil {
		return model.User{}, customErrors.ErrInvalidToken
	}

	uid, err := uuid.Parse(claims.Subject)
	if err != nil {
		return model.User{}, customErrors.ErrInvalidToken
	}

	snapshot, err := m.sessions.Get(ctx, uid)
	switch {
	case customErrors.IsNotFound(err):
		return model.User{}, customErrors.ErrSessionExpired
	case err != nil:
		return model.User{}, customErrors.WrapInternal(err, "Verify")
	}

	var cached model.User
	if err := json.Unmarshal([]byte(snapshot), &cached); err != nil {
		return model.User{}, customErrors.ErrSessionExpired
	}

	user, err := m.users.GetUserByID(ctx, cached.ID)
	switch {
	case customErrors.IsNotFound(err):
		return model.User{}, customErrors.ErrSessionExpired
	case err != nil:
		return model.User{}, customErrors.WrapInternal(err, "Verify")
	}

	return user, nil
}

// Refresh mints a new access token for the refresh token's subject.
// Every failure collapses to ErrRefreshFailed so a caller cannot tell
// which of the four checks rejected it. The refresh token is not
// rotated and the session record keeps its original TTL: refreshing
// never stretches a session past its login clock.
func (m *manager) Refresh(ctx context.Context, refreshToken string) (string, time.Duration, error) {
	if refreshToken == "" {
		return "", 0, customErrors.ErrRefreshFailed
	}

	claims, err := m.jwtUtil.ValidateRefreshToken(refreshToken)
	if err != nil {
		return "", 0, customErrors.ErrRefreshFailed
	}

	uid, err := uuid.Parse(claims.Subject)
	if err != nil {
		return "", 0, customErrors.ErrRefreshFailed
	}

	snapshot, err := m.sessions.Get(ctx, uid)
	switch {
	case customErrors.IsNotFound(err):
		return "", 0, customErrors.ErrRefreshFailed
	case err != nil:
		return "", 0, customErrors.WrapInternal(err, "Refresh")
	}

	var cached model.User
	if err := json.Unmarshal([]byte(snapshot), &cached); err != nil {
		return "", 0, customErrors.ErrRefreshFailed
	}

	user, err := m.users.GetUserByID(ctx, cached.ID)
	switch {
	case customErrors.IsNotFound(err):
		return "", 0, customErrors.ErrRefreshFailed
	case err != nil:
		return "", 0, customErrors.WrapInternal(err, "Refresh")
	}

	at, atExp, err := m.jwtUtil.GenerateAccessToken(user.ID)
	if err != nil {
		return "", 0, customErrors.WrapInternal(err, "GenerateAccessToken")
	}

	return at, time.Until(atExp), nil
}

// Revoke deletes the session record. Deleting an absent key is fine,
// so a double logout is a no-op.
func (m *manager) Revoke(ctx context.Context, userID uuid.UUID) error {
	if err := m.sessions.Delete(ctx, userID); err != nil {
		return customErrors.WrapInternal(err, "Revoke")
	}
	return nil
}
