package routes

import (
	"carpool/internal/handlers"
	"carpool/internal/middleware"
	"carpool/internal/repositories/interfaces"

	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes sets up routes for signup, login and password changes
func SetupAuthRoutes(r *gin.Engine, authHandler *handlers.AuthHandler, jwtSecret string, userRepo interfaces.UserRepository) {
	users := r.Group("/user")
	{
		users.POST("/signup", authHandler.Signup)
		users.POST("/login", authHandler.Login)
	}

	protected := r.Group("/user")
	protected.Use(middleware.AuthRequired(jwtSecret, userRepo))
	{
		protected.POST("/changePassword", authHandler.ChangePassword)
	}
}
