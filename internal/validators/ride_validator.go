package validators

import (
	"time"

	"carpool/internal/models"
	"carpool/internal/services"
	"carpool/internal/utils"
)

func validateLocation(prefix string, loc *models.Location, errors map[string]string) {
	if loc.Latitude < -90 || loc.Latitude > 90 {
		errors[prefix+".latitude"] = "Latitude should be between -90 and 90"
	}
	if loc.Longitude < -180 || loc.Longitude > 180 {
		errors[prefix+".longitude"] = "Longitude should be between -180 and 180"
	}
	if loc.Address == "" {
		errors[prefix+".address"] = "Address is required"
	}
}

func ValidateRideCreate(req *services.RideCreateRequest) map[string]string {
	errors := make(map[string]string)

	validateLocation("pickup_location", &req.PickupLocation, errors)
	validateLocation("dropoff_location", &req.DropoffLocation, errors)

	if req.DepartureTime.IsZero() {
		errors["departure_time"] = "Departure Time is required"
	} else if req.DepartureTime.Before(time.Now()) {
		errors["departure_time"] = "Departure Time should be in the future"
	}
	if req.RideFare < 0 {
		errors["ride_fare"] = "Ride Fare cannot be negative"
	}
	if req.AvailableSeats < 0 || req.AvailableSeats > utils.MaxVehicleCapacity {
		errors["available_seats"] = "Available Seats should be between 1 and 10"
	}

	if len(errors) == 0 {
		return nil
	}
	return errors
}
