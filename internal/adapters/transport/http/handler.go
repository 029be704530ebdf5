package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/halcyonworks/identity/internal/adapters/transport/http/dto"
	"github.com/halcyonworks/identity/internal/adapters/transport/http/middleware"
	"github.com/halcyonworks/identity/internal/app/identity/service"
	"github.com/halcyonworks/identity/internal/app/identity/session"
	customErrors "github.com/halcyonworks/identity/internal/domain/identity/errors"
	"github.com/halcyonworks/identity/internal/domain/identity/model"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Handler struct {
	svc          service.Service
	redisCli     *redis.Client
	v            *validator.Validate
	log          *zap.Logger
	cookieDomain string
	cookieSecure bool
}

func NewHandler(
	svc service.Service,
	redisCli *redis.Client,
	v *validator.Validate,
	log *zap.Logger,
	cookieDomain string,
	cookieSecure bool,
) *Handler {
	return &Handler{
		svc:          svc,
		redisCli:     redisCli,
		v:            v,
		log:          log,
		cookieDomain: cookieDomain,
		cookieSecure: cookieSecure,
	}
}

// RegisterRoutes wires the auth and user route groups. Every /users
// route and the authenticated auth routes stack the two checks:
// DeserializeUser resolves the session, RequireUser asserts it did.
func RegisterRoutes(r *gin.Engine, h *Handler, mgr session.Manager) {
	deserialize := middleware.DeserializeUser(mgr)
	require := middleware.RequireUser()

	api := r.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", h.Register)
	auth.POST("/login", h.Login)
	auth.GET("/refresh", h.RefreshAccessToken)
	auth.GET("/logout", deserialize, require, h.Logout)
	auth.PUT("/password", deserialize, require, h.ChangePassword)

	users := api.Group("/users", deserialize, require)
	users.GET("", h.FindAllUsers)
	users.GET("/:id", h.GetUser)
	users.POST("", h.Register)
	users.PUT("/:id", h.UpdateUser)
	users.DELETE("/:id", h.DeleteUser)

	api.GET("/healthchecker", h.HealthCheck)
}

func (h *Handler) Register(c *gin.Context) {
	var body dto.RegisterDTO
	if !h.bindAndValidate(c, &body) {
		return
	}

	user, err := h.svc.Register(c.Request.Context(), body)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status": "success",
		"data":   gin.H{"user": dto.NewUserResponse(user)},
	})
}

func (h *Handler) Login(c *gin.Context) {
	var body dto.LoginDTO
	if !h.bindAndValidate(c, &body) {
		return
	}

	pair, err := h.svc.Login(c.Request.Context(), body)
	if err != nil {
		h.handleError(c, err)
		return
	}

	h.setAuthCookies(c, pair)

	c.JSON(http.StatusOK, gin.H{
		"status":      "success",
		"accessToken": pair.AccessToken,
	})
}

func (h *Handler) Logout(c *gin.Context) {
	user, _ := middleware.UserFromContext(c)

	if err := h.svc.Logout(c.Request.Context(), user); err != nil {
		h.handleError(c, err)
		return
	}

	h.clearAuthCookies(c)
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *Handler) RefreshAccessToken(c *gin.Context) {
	refreshToken, err := c.Cookie("refresh_token")
	if err != nil {
		refreshToken = ""
	}

	accessToken, ttl, err := h.svc.RefreshAccessToken(c.Request.Context(), refreshToken)
	if err != nil {
		h.handleError(c, err)
		return
	}

	maxAge := int(ttl.Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("access_token", accessToken, maxAge, "/", h.cookieDomain, h.cookieSecure, true)
	c.SetCookie("logged_in", "true", maxAge, "/", h.cookieDomain, h.cookieSecure, false)

	c.JSON(http.StatusOK, gin.H{
		"status":      "success",
		"accessToken": accessToken,
	})
}

func (h *Handler) ChangePassword(c *gin.Context) {
	var body dto.ChangePasswordDTO
	if !h.bindAndValidate(c, &body) {
		return
	}

	user, _ := middleware.UserFromContext(c)

	updated, err := h.svc.ChangePassword(c.Request.Context(), user, body)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   gin.H{"user": dto.NewUserResponse(updated)},
	})
}

func (h *Handler) FindAllUsers(c *gin.Context) {
	users, err := h.svc.ListUsers(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   gin.H{"users": dto.NewUserResponses(users)},
	})
}

func (h *Handler) GetUser(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	user, err := h.svc.GetUser(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   gin.H{"user": dto.NewUserResponse(user)},
	})
}

func (h *Handler) UpdateUser(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var body dto.UpdateUserDTO
	if !h.bindAndValidate(c, &body) {
		return
	}

	user, err := h.svc.UpdateUser(c.Request.Context(), id, body)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   gin.H{"user": dto.NewUserResponse(user)},
	})
}

func (h *Handler) DeleteUser(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.svc.DeleteUser(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) HealthCheck(c *gin.Context) {
	if err := h.redisCli.Ping(c.Request.Context()).Err(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "error",
			"message": "cache unavailable",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

/* ───────────────────────────── helpers ───────────────────────────── */

func (h *Handler) setAuthCookies(c *gin.Context, pair model.TokenPair) {
	accessAge := int(pair.AccessTTL.Seconds())
	refreshAge := int(pair.RefreshTTL.Seconds())

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("access_token", pair.AccessToken, accessAge, "/", h.cookieDomain, h.cookieSecure, true)
	c.SetCookie("refresh_token", pair.RefreshToken, refreshAge, "/", h.cookieDomain, h.cookieSecure, true)
	// readable marker so front-ends can detect the session without
	// touching the secure cookies
	c.SetCookie("logged_in", "true", accessAge, "/", h.cookieDomain, h.cookieSecure, false)
}

func (h *Handler) clearAuthCookies(c *gin.Context) {
	c.SetCookie("access_token", "", -1, "/", h.cookieDomain, h.cookieSecure, true)
	c.SetCookie("refresh_token", "", -1, "/", h.cookieDomain, h.cookieSecure, true)
	c.SetCookie("logged_in", "", -1, "/", h.cookieDomain, h.cookieSecure, false)
}

func (h *Handler) bindAndValidate(c *gin.Context, body any) bool {
	if err := c.ShouldBindJSON(body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "fail",
			"message": "malformed request body",
		})
		return false
	}

	if err := h.v.Struct(body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "fail",
			"message": "validation failed",
			"errors":  fieldErrors(err),
		})
		return false
	}

	return true
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "fail",
			"message": "invalid user id",
		})
		return uuid.Nil, false
	}
	return id, true
}

func fieldErrors(err error) map[string]string {
	out := make(map[string]string)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["body"] = err.Error()
		return out
	}
	for _, fe := range verrs {
		out[fe.Field()] = fieldMessage(fe)
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return "invalid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "eqfield":
		return "passwords do not match"
	case "nefield":
		return "new password is the same as the previous one"
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case customErrors.IsInvalidArgument(err):
		c.JSON(http.StatusBadRequest, gin.H{"status": "fail", "message": err.Error()})
	case customErrors.IsInvalidCredentials(err):
		c.JSON(http.StatusUnauthorized, gin.H{"status": "fail", "message": "invalid email or password"})
	case customErrors.IsRefreshFailed(err):
		// one message for every cause on purpose
		c.JSON(http.StatusForbidden, gin.H{"status": "fail", "message": "could not refresh access token"})
	case customErrors.IsMissingCredential(err),
		customErrors.IsInvalidToken(err),
		customErrors.IsSessionExpired(err),
		customErrors.IsUnauthenticated(err):
		c.JSON(http.StatusUnauthorized, gin.H{"status": "fail", "message": "unauthenticated"})
	case customErrors.IsAlreadyExists(err):
		c.JSON(http.StatusConflict, gin.H{"status": "fail", "message": "user with that email already exists"})
	case customErrors.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"status": "fail", "message": "user not found"})
	default:
		h.log.Error("unexpected error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "internal server error"})
	}
}
