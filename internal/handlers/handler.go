package handlers

import (
	"errors"
	"net/http"

	"carpool/internal/services"
	"carpool/internal/utils"

	"github.com/gin-gonic/gin"
)

// notFoundCodes and forbiddenCodes pick the HTTP status for a
// precondition failure; everything else maps to 400.
var notFoundCodes = map[string]bool{
	services.CodeRideNotFound:     true,
	services.CodePassengerMissing: true,
	"VEHICLE_NOT_FOUND":           true,
}

var forbiddenCodes = map[string]bool{
	services.CodeNotRideDriver:   true,
	services.CodeNotVehicleOwner: true,
	"NOT_RIDE_MEMBER":            true,
}

func respondServiceError(c *gin.Context, err error) {
	if pe, ok := services.AsPreconditionError(err); ok {
		status := http.StatusBadRequest
		switch {
		case notFoundCodes[pe.Code]:
			status = http.StatusNotFound
		case forbiddenCodes[pe.Code]:
			status = http.StatusForbidden
		}
		utils.ErrorResponse(c, status, pe.Code, pe.Message)
		return
	}
	if errors.Is(err, services.ErrInvalidCredentials) {
		utils.ErrorResponse(c, http.StatusUnauthorized, utils.CodeAuthFailure, "Invalid username or password")
		return
	}
	if errors.Is(err, services.ErrUserNotFound) {
		utils.ErrorResponse(c, http.StatusNotFound, utils.CodeNotFound, "User not found")
		return
	}
	utils.InternalServerErrorResponse(c)
}
