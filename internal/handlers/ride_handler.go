package handlers

import (
	"carpool/internal/middleware"
	"carpool/internal/models"
	"carpool/internal/services"
	"carpool/internal/utils"
	"carpool/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RideHandler struct {
	rideService services.RideService
}

func NewRideHandler(rideService services.RideService) *RideHandler {
	return &RideHandler{
		rideService: rideService,
	}
}

func rideIDParam(c *gin.Context) (primitive.ObjectID, bool) {
	rideID, err := primitive.ObjectIDFromHex(c.Param("ride_id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid ride ID")
		return primitive.NilObjectID, false
	}
	return rideID, true
}

func currentUser(c *gin.Context) (*models.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return nil, false
	}
	return user, true
}

// Create publishes a new active ride for the authenticated driver
func (h *RideHandler) Create(c *gin.Context) {
	driver, ok := currentUser(c)
	if !ok {
		return
	}

	var request services.RideCreateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if errs := validators.ValidateRideCreate(&request); errs != nil {
		utils.ValidationErrorResponse(c, errs)
		return
	}

	ride, err := h.rideService.Create(c.Request.Context(), driver, &request)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Ride created successfully", ride)
}

// Start transitions the ride from ACTIVE to IN_PROGRESS
func (h *RideHandler) Start(c *gin.Context) {
	driver, ok := currentUser(c)
	if !ok {
		return
	}
	rideID, ok := rideIDParam(c)
	if !ok {
		return
	}

	ride, err := h.rideService.Start(c.Request.Context(), rideID, driver.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Ride started successfully", ride)
}

// Finish transitions the ride from IN_PROGRESS to RIDE_FINISHED
func (h *RideHandler) Finish(c *gin.Context) {
	driver, ok := currentUser(c)
	if !ok {
		return
	}
	rideID, ok := rideIDParam(c)
	if !ok {
		return
	}

	ride, err := h.rideService.Finish(c.Request.Context(), rideID, driver.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Ride finished successfully", ride)
}

// Cancel withdraws an ACTIVE ride before it starts
func (h *RideHandler) Cancel(c *gin.Context) {
	driver, ok := currentUser(c)
	if !ok {
		return
	}
	rideID, ok := rideIDParam(c)
	if !ok {
		return
	}

	ride, err := h.rideService.Cancel(c.Request.Context(), rideID, driver.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Ride cancelled successfully", ride)
}

// RequestRide puts the authenticated rider on the ride's pending list
func (h *RideHandler) RequestRide(c *gin.Context) {
	rider, ok := currentUser(c)
	if !ok {
		return
	}
	rideID, ok := rideIDParam(c)
	if !ok {
		return
	}

	ride, err := h.rideService.RequestSeat(c.Request.Context(), rideID, rider)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Ride requested successfully", ride)
}

// AcceptRideRequest moves a pending passenger to the approved list
func (h *RideHandler) AcceptRideRequest(c *gin.Context) {
	driver, ok := currentUser(c)
	if !ok {
		return
	}
	rideID, ok := rideIDParam(c)
	if !ok {
		return
	}

	passengerID, err := primitive.ObjectIDFromHex(c.Param("passenger_id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid passenger ID")
		return
	}

	ride, err := h.rideService.AcceptRequest(c.Request.Context(), rideID, driver.ID, passengerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Ride request accepted successfully", ride)
}

// Details returns a ride to its driver or an approved passenger
func (h *RideHandler) Details(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	rideID, ok := rideIDParam(c)
	if !ok {
		return
	}

	ride, err := h.rideService.GetDetails(c.Request.Context(), rideID, user.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Ride details fetched successfully", ride)
}
