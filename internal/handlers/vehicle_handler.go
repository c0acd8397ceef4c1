package handlers

import (
	"carpool/internal/middleware"
	"carpool/internal/services"
	"carpool/internal/utils"
	"carpool/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type VehicleHandler struct {
	vehicleService services.VehicleService
}

func NewVehicleHandler(vehicleService services.VehicleService) *VehicleHandler {
	return &VehicleHandler{
		vehicleService: vehicleService,
	}
}

// Register registers the driver's vehicle
func (h *VehicleHandler) Register(c *gin.Context) {
	driver, ok := middleware.CurrentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var request services.VehicleRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if errs := validators.ValidateVehicle(&request); errs != nil {
		utils.ValidationErrorResponse(c, errs)
		return
	}

	vehicle, err := h.vehicleService.Register(c.Request.Context(), driver, &request)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Vehicle registered successfully", vehicle)
}

// Update replaces the details of a vehicle owned by the driver
func (h *VehicleHandler) Update(c *gin.Context) {
	driver, ok := middleware.CurrentUser(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	vehicleID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid vehicle ID")
		return
	}

	var request services.VehicleRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if errs := validators.ValidateVehicle(&request); errs != nil {
		utils.ValidationErrorResponse(c, errs)
		return
	}

	vehicle, err := h.vehicleService.Update(c.Request.Context(), driver, vehicleID, &request)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Vehicle updated successfully", vehicle)
}
