package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"fleetreport/internal/auth"
	apperrors "fleetreport/internal/errors"
	"fleetreport/internal/model"
	"fleetreport/internal/service"
)

// AuthHandler handles authentication and user management endpoints.
type AuthHandler struct {
	authService service.AuthService
	limiter     *auth.LoginLimiter
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService, limiter *auth.LoginLimiter) *AuthHandler {
	return &AuthHandler{authService: authService, limiter: limiter}
}

// LoginRequest carries login credentials, JSON or form encoded.
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// TokenResponse is the issued-token payload.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// RegisterRequest carries a new user to provision.
type RegisterRequest struct {
	Username string  `json:"username" validate:"required,min=3,max=50"`
	Password string  `json:"password" validate:"required,min=6"`
	Role     string  `json:"role" validate:"required,oneof=admin user"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
}

// UserResponse is the wire representation of a stored user.
type UserResponse struct {
	ID        uint       `json:"id"`
	Username  string     `json:"username"`
	Email     *string    `json:"email,omitempty"`
	Role      string     `json:"role"`
	AccountID *string    `json:"account_id,omitempty"`
	LastLogin *time.Time `json:"last_login,omitempty"`
	IsLocked  bool       `json:"is_locked"`
}

func toUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		AccountID: u.AccountID,
		LastLogin: u.LastLogin,
		IsLocked:  u.IsLocked,
	}
}

// Login godoc
// @Summary Authenticate and issue an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Router /auth/token [post]
func (h *AuthHandler) Login(c echo.Context) error {
	if h.limiter != nil && !h.limiter.Allow(c.Request().Context(), c.RealIP()) {
		return httpError(apperrors.ErrRateLimited)
	}

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, _, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

// Me godoc
// @Summary Get the authenticated user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	claims, err := requestClaims(c)
	if err != nil {
		return httpError(err)
	}
	user, err := h.authService.GetByUsername(c.Request().Context(), claims.Username())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// Register godoc
// @Summary Register a new user (admin only)
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body RegisterRequest true "User to create"
// @Success 201 {object} UserResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.authService.RegisterUser(c.Request().Context(), req.Username, req.Password, req.Role, req.Email)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, toUserResponse(user))
}

// ListUsers godoc
// @Summary List users (admin only)
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Param offset query int false "Offset"
// @Param limit query int false "Limit"
// @Success 200 {array} UserResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /auth/users [get]
func (h *AuthHandler) ListUsers(c echo.Context) error {
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		return httpError(err)
	}
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		return httpError(err)
	}

	users, err := h.authService.ListUsers(c.Request().Context(), offset, limit)
	if err != nil {
		return httpError(err)
	}

	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	return c.JSON(http.StatusOK, out)
}
