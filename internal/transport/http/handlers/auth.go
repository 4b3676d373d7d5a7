package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/udaykiran8062/schoolManagement/internal/core/domain"
	"github.com/udaykiran8062/schoolManagement/internal/transport/http/middleware"
	"github.com/udaykiran8062/schoolManagement/internal/usecase"
)

// AuthHandler exposes registration, login, logout, and token refresh.
type AuthHandler struct {
	auth         *usecase.AuthService
	registration *usecase.RegistrationService
	cookies      middleware.CookiePolicy
	logger       *zap.Logger
}

func NewAuthHandler(auth *usecase.AuthService, registration *usecase.RegistrationService, cookies middleware.CookiePolicy, lg *zap.Logger) *AuthHandler {
	return &AuthHandler{
		auth:         auth,
		registration: registration,
		cookies:      cookies,
		logger:       lg,
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, registerResponse{Status: false, Message: "invalid request body"})
		return
	}

	user, err := h.registration.Register(c.Request.Context(), usecase.RegisterInput{
		Username: req.Username,
		FullName: req.FullName,
		Mobile:   req.Mobile,
		Email:    req.Email,
		Password: req.Password,
		UserType: domain.UserType(req.UserType),
		Role:     req.Role,
	})
	if err != nil {
		var validation *usecase.ValidationError
		switch {
		case errors.Is(err, usecase.ErrDuplicateUser):
			c.JSON(http.StatusBadRequest, registerResponse{Status: false, Message: "user already exists"})
		case errors.As(err, &validation):
			c.JSON(http.StatusBadRequest, registerResponse{Status: false, Message: validation.Error()})
		default:
			h.logger.Error("registration failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, registerResponse{Status: false, Message: "registration failed"})
		}
		return
	}

	c.JSON(http.StatusCreated, registerResponse{
		Status:  true,
		Message: "User registered successfully",
		Data:    user,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, loginErrorResponse{Status: http.StatusBadRequest, Success: false, Message: "username and password are required"})
		return
	}

	input := usecase.LoginInput{
		Identifier: req.Username,
		Password:   req.Password,
		UserID:     req.ID,
		IP:         c.ClientIP(),
		Device:     c.Request.UserAgent(),
	}
	if req.UserType != nil {
		ut := domain.UserType(*req.UserType)
		input.UserType = &ut
	}

	result, err := h.auth.Login(c.Request.Context(), input)
	if err != nil {
		var ambiguous *usecase.AmbiguousLoginError
		switch {
		case errors.As(err, &ambiguous):
			c.JSON(http.StatusOK, ambiguousLoginResponse{
				Status:  true,
				IsLogin: false,
				User:    ambiguous.Candidates,
			})
		case errors.Is(err, usecase.ErrUserNotFound):
			c.JSON(http.StatusBadRequest, loginErrorResponse{Status: http.StatusBadRequest, Success: false, Message: "user not found"})
		case errors.Is(err, usecase.ErrInvalidCredentials):
			c.JSON(http.StatusBadRequest, loginErrorResponse{Status: http.StatusBadRequest, Success: false, Message: "invalid username or password"})
		case errors.Is(err, usecase.ErrInactiveUser):
			c.JSON(http.StatusBadRequest, loginErrorResponse{Status: http.StatusBadRequest, Success: false, Message: "account is inactive"})
		default:
			h.logger.Error("login failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, loginErrorResponse{Status: http.StatusInternalServerError, Success: false, Message: "login failed"})
		}
		return
	}

	h.cookies.SetAccessToken(c, result.AccessToken)
	h.cookies.SetRefreshToken(c, result.RefreshToken)

	c.JSON(http.StatusOK, loginResponse{
		IsLogin:      true,
		Status:       http.StatusCreated,
		Success:      true,
		Message:      "Login successful",
		User:         result.User,
		Token:        result.AccessToken,
		RefreshToken: result.RefreshToken,
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	refreshToken, err := c.Cookie(middleware.RefreshTokenCookie)
	if err != nil || refreshToken == "" {
		c.JSON(http.StatusBadRequest, gateErrorResponse{Status: false, Message: "no active session"})
		return
	}

	if err := h.auth.Logout(c.Request.Context(), refreshToken); err != nil {
		h.logger.Error("logout failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gateErrorResponse{Status: false, Message: "logout failed"})
		return
	}

	h.cookies.Clear(c)
	c.JSON(http.StatusOK, messageResponse{Message: "Logout successful"})
}

// Refresh exchanges the refresh cookie for a fresh access token. The
// refresh token itself never rotates here.
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken, err := c.Cookie(middleware.RefreshTokenCookie)
	if err != nil || refreshToken == "" {
		h.cookies.Clear(c)
		c.JSON(http.StatusUnauthorized, gateErrorResponse{Status: false, Message: "no refresh token provided"})
		return
	}

	rotated, err := h.auth.Rotate(c.Request.Context(), refreshToken)
	if err != nil {
		h.cookies.Clear(c)
		c.JSON(http.StatusUnauthorized, gateErrorResponse{Status: false, Message: "session expired, please log in again"})
		return
	}

	h.cookies.SetAccessToken(c, rotated.AccessToken)
	c.JSON(http.StatusOK, messageResponse{Message: "Token refreshed"})
}

// Test is an unauthenticated liveness echo for client smoke checks.
func (h *AuthHandler) Test(c *gin.Context) {
	c.JSON(http.StatusOK, messageResponse{Message: "Success"})
}
