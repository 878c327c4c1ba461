package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/resto-bi/backend/internal/infrastructure/auth"
	"github.com/resto-bi/backend/internal/interfaces/http/dto"
	"github.com/resto-bi/backend/internal/interfaces/http/middleware"
)

// AuthHandler issues bearer tokens against the static user table and
// resolves the current user from validated claims.
type AuthHandler struct {
	BaseHandler
	users      auth.UserStore
	jwtService *auth.JWTService
}

func NewAuthHandler(users auth.UserStore, jwtService *auth.JWTService) *AuthHandler {
	return &AuthHandler{users: users, jwtService: jwtService}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresAt   int64  `json:"expires_at"`
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	Role        string `json:"role"`
}

// Login authenticates a username/password pair and returns a bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, []dto.ValidationDetail{
			{Field: "body", Message: "username and password are required"},
		})
		return
	}

	user, ok := h.users.Authenticate(req.Username, req.Password)
	if !ok {
		h.Unauthorized(c, "Invalid username or password")
		return
	}

	token, err := h.jwtService.GenerateToken(*user)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, loginResponse{
		AccessToken: token.Token,
		TokenType:   token.TokenType,
		ExpiresAt:   token.ExpiresAt.Unix(),
		UserID:      user.ID,
		Username:    user.Username,
		Role:        user.Role,
	})
}

// Me returns the profile of the authenticated user.
func (h *AuthHandler) Me(c *gin.Context) {
	userID := middleware.GetJWTUserID(c)
	if userID == "" {
		h.Unauthorized(c, "Authentication required")
		return
	}
	user, found := h.users.FindByID(userID)
	if !found {
		h.NotFound(c, "User not found")
		return
	}
	h.Success(c, user)
}
