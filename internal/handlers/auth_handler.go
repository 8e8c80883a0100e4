package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"expensedesk/internal/config"
	apperrors "expensedesk/internal/errors"
	"expensedesk/internal/middleware"
	"expensedesk/internal/models"
	"expensedesk/internal/services"
)

// AuthHandler handles authentication requests.
type AuthHandler struct {
	userService services.UserServicer
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(userService services.UserServicer) *AuthHandler {
	return &AuthHandler{userService: userService}
}

// LoginRequest represents the login payload.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SignupRequest represents the registration payload.
type SignupRequest struct {
	Username  string `json:"username" binding:"required,min=3,max=50"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name" binding:"max=100"`
	LastName  string `json:"last_name" binding:"max=100"`
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID        string          `json:"id"`
	Username  string          `json:"username"`
	Email     string          `json:"email"`
	FirstName string          `json:"first_name,omitempty"`
	LastName  string          `json:"last_name,omitempty"`
	Name      string          `json:"name"`
	Avatar    string          `json:"avatar,omitempty"`
	Role      models.UserRole `json:"role"`
}

// AuthResponse is the login/signup envelope: the bearer token plus the
// authenticated user.
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Name:      u.DisplayName(),
		Avatar:    u.Avatar,
		Role:      u.Role,
	}
}

// Login authenticates a user and issues a token
// @Summary     Log in
// @Description Authenticate with username and password and receive a bearer token
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body LoginRequest true "Credentials"
// @Success     200 {object} AuthResponse "Token and user"
// @Failure     401 {object} ErrorResponse "Invalid credentials"
// @Router      /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	user, err := h.userService.AttemptLogin(req.Username, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	token, err := middleware.GenerateToken(user)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	c.JSON(http.StatusOK, AuthResponse{Token: token, User: toUserResponse(user)})
}

// Signup registers a new user and issues a token
// @Summary     Sign up
// @Description Register a new account and receive a bearer token
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body SignupRequest true "Registration details"
// @Success     201 {object} AuthResponse "Token and user"
// @Failure     409 {object} ErrorResponse "Username or email taken"
// @Router      /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	user, err := h.userService.CreateUser(req.Username, req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		respondWithError(c, err)
		return
	}

	token, err := middleware.GenerateToken(user)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{Token: token, User: toUserResponse(user)})
}

// Me returns the authenticated user
// @Summary     Current user
// @Description Return the user the bearer token belongs to
// @Tags        auth
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} UserResponse "User"
// @Failure     401 {object} ErrorResponse "Missing or invalid token"
// @Router      /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

// UpdateProfile updates the authenticated user's profile
// @Summary     Update profile
// @Description Update profile fields and optionally upload a new avatar image
// @Tags        auth
// @Accept      mpfd
// @Produce     json
// @Security    BearerAuth
// @Param       first_name formData string false "First name"
// @Param       last_name formData string false "Last name"
// @Param       username formData string false "Username"
// @Param       email formData string false "Email"
// @Param       avatar formData file false "Avatar image"
// @Success     200 {object} UserResponse "Updated user"
// @Failure     409 {object} ErrorResponse "Username or email taken"
// @Router      /auth/ [put]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var update services.ProfileUpdate
	if v, ok := c.GetPostForm("first_name"); ok {
		update.FirstName = &v
	}
	if v, ok := c.GetPostForm("last_name"); ok {
		update.LastName = &v
	}
	if v, ok := c.GetPostForm("username"); ok {
		update.Username = &v
	}
	if v, ok := c.GetPostForm("email"); ok {
		update.Email = &v
	}

	if file, err := c.FormFile("avatar"); err == nil {
		ext := strings.ToLower(filepath.Ext(file.Filename))
		if ext != ".png" && ext != ".jpg" && ext != ".jpeg" && ext != ".webp" {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "unsupported avatar format"))
			return
		}
		name := fmt.Sprintf("%s%s", uuid.New().String(), ext)
		dst := filepath.Join(config.Get().UploadDir, name)
		if err := c.SaveUploadedFile(file, dst); err != nil {
			respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
			return
		}
		avatarURL := "/uploads/" + name
		update.Avatar = &avatarURL
	}

	user, err := h.userService.UpdateProfile(userID, update)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}
