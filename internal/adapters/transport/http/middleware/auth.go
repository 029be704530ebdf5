package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/halcyonworks/identity/internal/app/identity/session"
	customErrors "github.com/halcyonworks/identity/internal/domain/identity/errors"
	"github.com/halcyonworks/identity/internal/domain/identity/model"
)

// ContextUserKey is where DeserializeUser parks the resolved user.
const ContextUserKey = "currentUser"

// DeserializeUser resolves the access token from the Authorization
// header or the access_token cookie and runs the full session gate.
// It aborts with 401 on any failure; the message distinguishes a
// missing credential, a bad token and a dead session.
func DeserializeUser(mgr session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var accessToken string
		if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
			accessToken = strings.TrimPrefix(h, "Bearer ")
		} else if v, err := c.Cookie("access_token"); err == nil {
			accessToken = v
		}

		user, err := mgr.Verify(c.Request.Context(), accessToken)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"status":  "fail",
				"message": verifyMessage(err),
			})
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// RequireUser is the second, stackable check: it only asserts that the
// gate before it actually produced a user.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := UserFromContext(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"status":  "fail",
				"message": "session has expired or user doesn't exist",
			})
			return
		}
		c.Next()
	}
}

func UserFromContext(c *gin.Context) (model.User, bool) {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return model.User{}, false
	}
	user, ok := v.(model.User)
	return user, ok
}

func verifyMessage(err error) string {
	switch {
	case customErrors.IsMissingCredential(err):
		return "you are not logged in"
	case customErrors.IsInvalidToken(err):
		return "invalid token or user doesn't exist"
	case customErrors.IsSessionExpired(err):
		return "invalid token or session has expired"
	default:
		return "unauthenticated"
	}
}
