package auth

import (
	"errors"
	"net/http"

	"engracedsmile/internal/shared/middleware"
	"engracedsmile/internal/shared/utils/response"
	"engracedsmile/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type Controller struct {
	service   Service
	validator *validator.Validate
}

func NewController(service Service) *Controller {
	return &Controller{
		service:   service,
		validator: validator.New(),
	}
}

// authError writes the status for the auth sentinels and reports whether it
// handled err
func authError(ctx *gin.Context, err error) bool {
	switch {
	case errors.Is(err, ErrUserAlreadyExists):
		response.Error(ctx, http.StatusConflict, "User with this email already exists", nil)
	case errors.Is(err, ErrInvalidCredentials):
		response.Error(ctx, http.StatusUnauthorized, "Invalid email or password", nil)
	case errors.Is(err, ErrInvalidToken):
		response.Error(ctx, http.StatusUnauthorized, "Invalid or expired token", nil)
	case errors.Is(err, ErrUserNotFound):
		response.Error(ctx, http.StatusNotFound, "User not found", nil)
	default:
		return false
	}
	return true
}

func (c *Controller) Register(ctx *gin.Context) {
	var req RegisterRequest
	if !c.bind(ctx, &req) {
		return
	}

	resp, err := c.service.Register(ctx.Request.Context(), &req)
	if err != nil {
		if !authError(ctx, err) {
			response.RespondError(ctx, err, "Failed to register user")
		}
		return
	}

	response.Success(ctx, http.StatusCreated, "User registered successfully", resp)
}

func (c *Controller) Login(ctx *gin.Context) {
	var req LoginRequest
	if !c.bind(ctx, &req) {
		return
	}

	resp, err := c.service.Login(ctx.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			logger.GetDefault().LogAuthFailure(ctx.Request.Context(), "invalid credentials", ctx.ClientIP())
		}
		if !authError(ctx, err) {
			response.RespondError(ctx, err, "Failed to login")
		}
		return
	}
	logger.GetDefault().LogAuthSuccess(ctx.Request.Context(), resp.User.ID, "password")

	response.Success(ctx, http.StatusOK, "Login successful", resp)
}

func (c *Controller) RefreshToken(ctx *gin.Context) {
	var req RefreshTokenRequest
	if !c.bind(ctx, &req) {
		return
	}

	tokenPair, err := c.service.RefreshToken(ctx.Request.Context(), req.RefreshToken)
	if err != nil {
		// a deleted account looks the same as a bad token to the caller
		if errors.Is(err, ErrUserNotFound) {
			err = ErrInvalidToken
		}
		if !authError(ctx, err) {
			response.RespondError(ctx, err, "Failed to refresh token")
		}
		return
	}

	response.Success(ctx, http.StatusOK, "Token refreshed successfully", tokenPair)
}

func (c *Controller) ChangePassword(ctx *gin.Context) {
	userID, ok := c.currentUser(ctx)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if !c.bind(ctx, &req) {
		return
	}

	if err := c.service.ChangePassword(ctx.Request.Context(), userID, &req); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Error(ctx, http.StatusUnauthorized, "Current password is incorrect", nil)
			return
		}
		if !authError(ctx, err) {
			response.RespondError(ctx, err, "Failed to change password")
		}
		return
	}

	response.Success(ctx, http.StatusOK, "Password changed successfully", nil)
}

func (c *Controller) GetMe(ctx *gin.Context) {
	userID, ok := c.currentUser(ctx)
	if !ok {
		return
	}

	profile, err := c.service.GetProfile(ctx.Request.Context(), userID)
	if err != nil {
		if !authError(ctx, err) {
			response.RespondError(ctx, err, "Failed to load profile")
		}
		return
	}

	response.Success(ctx, http.StatusOK, "User data retrieved successfully", profile)
}

func (c *Controller) UpdateMe(ctx *gin.Context) {
	userID, ok := c.currentUser(ctx)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if !c.bind(ctx, &req) {
		return
	}

	profile, err := c.service.UpdateProfile(ctx.Request.Context(), userID, &req)
	if err != nil {
		if !authError(ctx, err) {
			response.RespondError(ctx, err, "Failed to update profile")
		}
		return
	}

	response.Success(ctx, http.StatusOK, "Profile updated successfully", profile)
}

func (c *Controller) currentUser(ctx *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.CurrentUserID(ctx)
	if !ok {
		response.Error(ctx, http.StatusUnauthorized, "Authentication required", nil)
	}
	return id, ok
}

func (c *Controller) bind(ctx *gin.Context, req interface{}) bool {
	if err := ctx.ShouldBindJSON(req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid request body", err.Error())
		return false
	}
	if err := c.validator.Struct(req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Validation failed", err.Error())
		return false
	}
	return true
}
