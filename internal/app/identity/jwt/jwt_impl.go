package jwt

import (
	"crypto/rsa"
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	customErrors "github.com/halcyonworks/identity/internal/domain/identity/errors"
	"github.com/halcyonworks/identity/internal/infra/config"
)

type keyPair struct {
	private *rsa.PrivateKey
	public  *rsa.PublicKey
}

type jwtUtilImpl struct {
	access     keyPair
	refresh    keyPair
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewJWTUtil(cfg *config.Config) (*jwtUtilImpl, error) {
	access, err := loadKeyPair(cfg.AccessTokenPrivateKeyPath, cfg.AccessTokenPublicKeyPath)
	if err != nil {
		return nil, err
	}
	refresh, err := loadKeyPair(cfg.RefreshTokenPrivateKeyPath, cfg.RefreshTokenPublicKeyPath)
	if err != nil {
		return nil, err
	}

	return &jwtUtilImpl{
		access:     access,
		refresh:    refresh,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
	}, nil
}

// NewFromKeys builds the util from already-parsed keys. Used by tests
// and by callers that keep key material outside the filesystem.
func NewFromKeys(
	accessPriv *rsa.PrivateKey, accessPub *rsa.PublicKey,
	refreshPriv *rsa.PrivateKey, refreshPub *rsa.PublicKey,
	accessTTL, refreshTTL time.Duration,
) *jwtUtilImpl {
	return &jwtUtilImpl{
		access:     keyPair{private: accessPriv, public: accessPub},
		refresh:    keyPair{private: refreshPriv, public: refreshPub},
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func loadKeyPair(privPath, pubPath string) (keyPair, error) {
	privPem, err := os.ReadFile(privPath)
	if err != nil {
		return keyPair{}, customErrors.WrapInternal(err, "read private key")
	}
	privKey, err := jwt.ParseRSAPrivateKeyFromPEM(privPem)
	if err != nil {
		return keyPair{}, customErrors.WrapInternal(err, "parse private key")
	}

	pubPem, err := os.ReadFile(pubPath)
	if err != nil {
		return keyPair{}, customErrors.WrapInternal(err, "read public key")
	}
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubPem)
	if err != nil {
		return keyPair{}, customErrors.WrapInternal(err, "parse public key")
	}

	return keyPair{private: privKey, public: pubKey}, nil
}


func (j *jwtUtilImpl) GenerateAccessToken(userID uuid.UUID) (string, time.Time, error) {
	return sign(j.access.private, userID, j.accessTTL)
}

func (j *jwtUtilImpl) GenerateRefreshToken(userID uuid.UUID) (string, time.Time, error) {
	return sign(j.refresh.private, userID, j.refreshTTL)
}

func sign(key *rsa.PrivateKey, userID uuid.UUID, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		return "", time.Time{}, customErrors.WrapInternal(err, "sign token")
	}

	return signed, claims.ExpiresAt.Time, nil
}

func (j *jwtUtilImpl) ValidateAccessToken(raw string) (AccessClaims, error) {
	token, err := jwt.ParseWithClaims(raw, &AccessClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodRS256.Alg() {
			return nil, customErrors.ErrInvalidToken
		}
		return j.access.public, nil
	})

	if err != nil || !token.Valid {
		return AccessClaims{}, customErrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*AccessClaims)
	if !ok {
		return AccessClaims{}, customErrors.WrapInternal(
			errors.New("claims not AccessClaims"), "ValidateAccessToken",
		)
	}

	return *claims, nil
}

func (j *jwtUtilImpl) ValidateRefreshToken(raw string) (RefreshClaims, error) {
	token, err := jwt.ParseWithClaims(raw, &RefreshClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodRS256.Alg() {
			return nil, customErrors.ErrInvalidToken
		}
		return j.refresh.public, nil
	})

	if err != nil || !token.Valid {
		return RefreshClaims{}, customErrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*RefreshClaims)
	if !ok {
		return RefreshClaims{}, customErrors.WrapInternal(
			errors.New("claims not RefreshClaims"), "ValidateRefreshToken",
		)
	}

	return *claims, nil
}
