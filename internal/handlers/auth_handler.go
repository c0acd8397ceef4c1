package handlers

import (
	"carpool/internal/middleware"
	"carpool/internal/services"
	"carpool/internal/utils"
	"carpool/internal/validators"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Signup registers a new rider or driver account
func (h *AuthHandler) Signup(c *gin.Context) {
	var request services.RegisterRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if errs := validators.ValidateSignup(&request); errs != nil {
		utils.ValidationErrorResponse(c, errs)
		return
	}

	user, err := h.authService.Register(c.Request.Context(), &request)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "User registered successfully", user)
}

// Login exchanges credentials for an access token
func (h *AuthHandler) Login(c *gin.Context) {
	var request validators.LoginRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if errs := validators.ValidateLogin(&request); errs != nil {
		utils.ValidationErrorResponse(c, errs)
		return
	}

	token, user, err := h.authService.Login(c.Request.Context(), request.Username, request.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	// The token also travels as a cookie for browser clients.
	c.SetCookie("token", token, int(utils.JWTAccessTokenTTL.Seconds()), "/", "", false, true)

	utils.SuccessResponse(c, "Login successful", gin.H{
		"token": token,
		"user":  user,
	})
}

// ChangePassword sets a new password for the authenticated user
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var request validators.ChangePasswordRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if errs := validators.ValidateChangePassword(&request); errs != nil {
		utils.ValidationErrorResponse(c, errs)
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), user.ID, request.Password); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Password changed successfully", nil)
}
