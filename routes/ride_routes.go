package routes

import (
	"carpool/internal/handlers"
	"carpool/internal/middleware"
	"carpool/internal/repositories/interfaces"

	"github.com/gin-gonic/gin"
)

// SetupRideRoutes sets up the ride lifecycle routes. Drivers own the
// lifecycle transitions; riders only request seats.
func SetupRideRoutes(r *gin.Engine, rideHandler *handlers.RideHandler, jwtSecret string, userRepo interfaces.UserRepository) {
	rides := r.Group("/ride")
	rides.Use(middleware.AuthRequired(jwtSecret, userRepo))
	{
		rides.GET("/details/:ride_id", rideHandler.Details)
	}

	driverRides := r.Group("/ride")
	driverRides.Use(middleware.AuthRequired(jwtSecret, userRepo), middleware.DriverRequired())
	{
		driverRides.POST("/create", rideHandler.Create)
		driverRides.POST("/start/:ride_id", rideHandler.Start)
		driverRides.POST("/finish/:ride_id", rideHandler.Finish)
		driverRides.POST("/cancel/:ride_id", rideHandler.Cancel)
		driverRides.POST("/acceptRideRequest/:ride_id/:passenger_id", rideHandler.AcceptRideRequest)
	}

	riderRides := r.Group("/ride")
	riderRides.Use(middleware.AuthRequired(jwtSecret, userRepo), middleware.RiderRequired())
	{
		riderRides.POST("/requestRide/:ride_id", rideHandler.RequestRide)
	}
}
