package middleware

import (
	"errors"
	"net/http"
	"strings"

	"carpool/internal/models"
	"carpool/internal/repositories/interfaces"
	"carpool/internal/utils"

	"github.com/gin-gonic/gin"
)

const userContextKey = "current_user"

// AuthRequired validates the bearer token and loads the full user
// document behind it, so downstream handlers see current role,
// ride-status and vehicle state rather than stale token claims.
func AuthRequired(jwtSecret string, userRepo interfaces.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, utils.CodeAuthFailure, "You are not logged in !")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			utils.ErrorResponse(c, http.StatusUnauthorized, utils.CodeAuthFailure, "Bearer token required")
			c.Abort()
			return
		}

		_, userID, err := utils.ValidateToken(tokenString, jwtSecret)
		if err != nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, utils.CodeAuthFailure, "Invalid token")
			c.Abort()
			return
		}

		user, err := userRepo.GetByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				utils.ErrorResponse(c, http.StatusUnauthorized, utils.CodeAuthFailure, "Unauthorized, the user for this token does not exist")
			} else {
				utils.InternalServerErrorResponse(c)
			}
			c.Abort()
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// CurrentUser returns the authenticated user set by AuthRequired.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(userContextKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}

func DriverRequired() gin.HandlerFunc {
	return roleRequired(models.RoleDriver, "Only DRIVER user are allowed to access this endpoint")
}

func RiderRequired() gin.HandlerFunc {
	return roleRequired(models.RoleRider, "Only RIDER user are allowed to access this endpoint")
}

func AdminRequired() gin.HandlerFunc {
	return roleRequired(models.RoleAdmin, "Only ADMIN user are allowed to access this endpoint")
}

func roleRequired(role models.UserRole, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok || user.Role != role {
			utils.ErrorResponse(c, http.StatusForbidden, utils.CodeAuthFailure, message)
			c.Abort()
			return
		}
		c.Next()
	}
}
