package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mdd-forum/internal/domain"
)

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type loginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

type updateProfileRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password" binding:"omitempty,min=8"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.issueToken(c, user, nil)
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.issueToken(c, user, nil)
}

func (h *Handler) me(c *gin.Context) {
	user, err := h.users.Profile(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, profileToResponse(*user))
}

// updateMe applies a partial profile update and answers with a refreshed token.
func (h *Handler) updateMe(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), currentUserID(c), domain.UserUpdate{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.issueToken(c, user, profileToResponse(*user))
}

func (h *Handler) issueToken(c *gin.Context, user *domain.User, profile *UserProfile) {
	token, err := h.tokens.Issue(user)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, AuthResponse{Token: token, User: profile})
}
