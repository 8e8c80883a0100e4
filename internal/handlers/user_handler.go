package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "expensedesk/internal/errors"
	"expensedesk/internal/models"
	"expensedesk/internal/services"
)

// UserHandler handles admin user-management requests.
type UserHandler struct {
	userService services.UserServicer
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService services.UserServicer) *UserHandler {
	return &UserHandler{userService: userService}
}

// UserSummary is the compact shape the dashboard's employee dropdown needs.
type UserSummary struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Email string          `json:"email"`
	Role  models.UserRole `json:"role"`
}

// ListUsers returns all users
// @Summary     List users
// @Description List all users for the admin dashboard
// @Tags        users
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} UserSummary "Users"
// @Failure     403 {object} ErrorResponse "Admin role required"
// @Router      /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers()
	if err != nil {
		respondWithError(c, err)
		return
	}

	out := make([]UserSummary, len(users))
	for i := range users {
		out[i] = UserSummary{
			ID:    users[i].ID,
			Name:  users[i].DisplayName(),
			Email: users[i].Email,
			Role:  users[i].Role,
		}
	}
	c.JSON(http.StatusOK, out)
}

// UpdateRoleRequest represents the role-change payload.
type UpdateRoleRequest struct {
	Role models.UserRole `json:"role" binding:"required,user_role"`
}

// UpdateRole changes a user's role
// @Summary     Change a user's role
// @Description Promote or demote a user. Admins cannot change their own role.
// @Tags        users
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "User ID"
// @Param       request body UpdateRoleRequest true "New role"
// @Success     200 {object} UserResponse "Updated user"
// @Failure     403 {object} ErrorResponse "Own role change"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /users/{id}/role [put]
func (h *UserHandler) UpdateRole(c *gin.Context) {
	actorID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	user, err := h.userService.UpdateRole(actorID, c.Param("id"), req.Role)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}
