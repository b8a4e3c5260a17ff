package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ErlanBelekov/shiptrack/internal/domain"
	"github.com/ErlanBelekov/shiptrack/internal/metrics"
	"github.com/ErlanBelekov/shiptrack/internal/usecase"
)

// authUsecaser is the subset of AuthUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type authUsecaser interface {
	Register(ctx context.Context, input usecase.RegisterInput) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
}

type AuthHandler struct {
	authUsecase authUsecaser
	logger      *slog.Logger
}

func NewAuthHandler(authUsecase authUsecaser, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		logger:      logger.With("component", "auth_handler"),
	}
}

type registerRequest struct {
	Name     string `json:"name"     binding:"required,max=255"`
	Address  string `json:"address"  binding:"required,max=512"`
	Email    string `json:"email"    binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=72"`
	Role     string `json:"role"     binding:"omitempty,oneof=user admin"`
}

type loginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// POST /auth/register
// 202 {"token"} on success; 401 when the email is taken.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}

	token, err := h.authUsecase.Register(c.Request.Context(), usecase.RegisterInput{
		Name:     req.Name,
		Address:  req.Address,
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.Role(req.Role),
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateUser) {
			metrics.AuthAttemptsTotal.WithLabelValues("register", "duplicate").Inc()
			c.JSON(http.StatusUnauthorized, gin.H{"error": errUserExists})
			return
		}
		metrics.AuthAttemptsTotal.WithLabelValues("register", "error").Inc()
		h.logger.ErrorContext(c.Request.Context(), "register", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	metrics.AuthAttemptsTotal.WithLabelValues("register", "success").Inc()
	c.JSON(http.StatusAccepted, tokenResponse{Token: token})
}

// POST /auth/login
// 200 {"token"}; 401 unknown email; 403 wrong password.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	token, err := h.authUsecase.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			metrics.AuthAttemptsTotal.WithLabelValues("login", "unknown_user").Inc()
			c.JSON(http.StatusUnauthorized, gin.H{"error": errUserNotFound})
		case errors.Is(err, domain.ErrInvalidCredentials):
			metrics.AuthAttemptsTotal.WithLabelValues("login", "bad_credentials").Inc()
			c.JSON(http.StatusForbidden, gin.H{"error": errInvalidCredentials})
		default:
			metrics.AuthAttemptsTotal.WithLabelValues("login", "error").Inc()
			h.logger.ErrorContext(c.Request.Context(), "login", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	metrics.AuthAttemptsTotal.WithLabelValues("login", "success").Inc()
	c.JSON(http.StatusOK, tokenResponse{Token: token})
}

// GET /auth/is-verify
// Reached only through the Auth middleware, so a valid token is implied.
func (h *AuthHandler) IsVerify(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"result": true})
}
