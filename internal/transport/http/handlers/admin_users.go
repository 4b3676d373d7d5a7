package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/udaykiran8062/schoolManagement/internal/core/domain"
	"github.com/udaykiran8062/schoolManagement/internal/core/port"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// AdminUsersHandler serves the identity-field listing behind the gate.
type AdminUsersHandler struct {
	users  port.UserRepository
	logger *zap.Logger
}

func NewAdminUsersHandler(users port.UserRepository, lg *zap.Logger) *AdminUsersHandler {
	return &AdminUsersHandler{users: users, logger: lg}
}

func (h *AdminUsersHandler) List(c *gin.Context) {
	filter := port.UserFilter{Limit: defaultListLimit}

	if raw := c.Query("userType"); raw != "" {
		value, err := strconv.ParseInt(raw, 10, 16)
		if err != nil || !domain.UserType(value).Valid() {
			c.JSON(http.StatusBadRequest, gateErrorResponse{Status: false, Message: "invalid userType filter"})
			return
		}
		ut := domain.UserType(value)
		filter.UserType = &ut
	}

	if raw := c.Query("status"); raw != "" {
		value, err := strconv.ParseInt(raw, 10, 16)
		if err != nil || (value != 0 && value != 1) {
			c.JSON(http.StatusBadRequest, gateErrorResponse{Status: false, Message: "invalid status filter"})
			return
		}
		status := domain.UserStatus(value)
		filter.Status = &status
	}

	if raw := c.Query("limit"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value <= 0 {
			c.JSON(http.StatusBadRequest, gateErrorResponse{Status: false, Message: "invalid limit"})
			return
		}
		if value > maxListLimit {
			value = maxListLimit
		}
		filter.Limit = value
	}

	if raw := c.Query("offset"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value < 0 {
			c.JSON(http.StatusBadRequest, gateErrorResponse{Status: false, Message: "invalid offset"})
			return
		}
		filter.Offset = value
	}

	users, err := h.users.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("list users failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gateErrorResponse{Status: false, Message: "failed to list users"})
		return
	}

	sanitized := make([]domain.User, 0, len(users))
	for _, u := range users {
		sanitized = append(sanitized, u.Sanitized())
	}

	c.JSON(http.StatusOK, gin.H{
		"status": true,
		"count":  len(sanitized),
		"data":   sanitized,
	})
}
