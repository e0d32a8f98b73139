package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/mivamind/casegrade-backend/internal/pkg/apperr"
	"github.com/mivamind/casegrade-backend/internal/services"
	"github.com/mivamind/casegrade-backend/internal/types"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type registerRequest struct {
	Email      string `json:"email" binding:"required"`
	Password   string `json:"password" binding:"required"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	Title      string `json:"title"`
	Department string `json:"department"`
}

func (ah *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, fmt.Errorf("%w: %v", apperr.ErrInvalidArgument, err))
		return
	}
	user := &types.User{
		Email:      req.Email,
		Name:       req.Name,
		Role:       req.Role,
		Title:      req.Title,
		Department: req.Department,
	}
	created, err := ah.authService.RegisterUser(c.Request.Context(), user, req.Password)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"user": created})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (ah *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, fmt.Errorf("%w: %v", apperr.ErrInvalidArgument, err))
		return
	}
	token, user, err := ah.authService.LoginUser(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"token": token, "user": user})
}
