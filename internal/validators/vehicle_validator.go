package validators

import (
	"carpool/internal/services"
	"carpool/internal/utils"
)

func ValidateVehicle(req *services.VehicleRequest) map[string]string {
	errors := make(map[string]string)

	if len(req.VehicleNumber) < 6 || len(req.VehicleNumber) > 15 {
		errors["vehicle_number"] = "Vehicle Number size should be 6 to 15 characters"
	}
	if len(req.VehicleType) < 3 || len(req.VehicleType) > 20 {
		errors["vehicle_type"] = "Vehicle Type size should be 3 to 20 characters"
	}
	if len(req.Model) < 3 || len(req.Model) > 20 {
		errors["model"] = "Model size should be 3 to 20 characters"
	}
	if len(req.Color) < 3 || len(req.Color) > 20 {
		errors["color"] = "Color size should be 3 to 20 characters"
	}
	if req.Capacity < utils.MinVehicleCapacity || req.Capacity > utils.MaxVehicleCapacity {
		errors["capacity"] = "Capacity should be between 1 and 10"
	}

	if len(errors) == 0 {
		return nil
	}
	return errors
}
