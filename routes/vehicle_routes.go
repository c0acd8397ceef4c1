package routes

import (
	"carpool/internal/handlers"
	"carpool/internal/middleware"
	"carpool/internal/repositories/interfaces"

	"github.com/gin-gonic/gin"
)

// SetupVehicleRoutes sets up the driver-only vehicle routes
func SetupVehicleRoutes(r *gin.Engine, vehicleHandler *handlers.VehicleHandler, jwtSecret string, userRepo interfaces.UserRepository) {
	vehicles := r.Group("/vehicle")
	vehicles.Use(middleware.AuthRequired(jwtSecret, userRepo), middleware.DriverRequired())
	{
		vehicles.POST("/register", vehicleHandler.Register)
		vehicles.PUT("/update/:id", vehicleHandler.Update)
	}
}
