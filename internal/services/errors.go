package services

import "errors"

// PreconditionError reports a lifecycle operation rejected because one
// of its preconditions does not hold. The code is machine-readable and
// stable; the message is what callers show to users.
type PreconditionError struct {
	Code    string
	Message string
}

func (e *PreconditionError) Error() string {
	return e.Message
}

func NewPreconditionError(code, message string) *PreconditionError {
	return &PreconditionError{Code: code, Message: message}
}

// AsPreconditionError unwraps err into a PreconditionError, if it is one.
func AsPreconditionError(err error) (*PreconditionError, bool) {
	var pe *PreconditionError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// Precondition codes used across the lifecycle operations.
const (
	CodeRideNotFound     = "RIDE_NOT_FOUND"
	CodeRideNotActive    = "RIDE_NOT_ACTIVE"
	CodeRideNotStarted   = "RIDE_NOT_IN_PROGRESS"
	CodeRideFull         = "RIDE_FULL"
	CodeNotRideDriver    = "NOT_RIDE_DRIVER"
	CodeDriverIsRider    = "DRIVER_CANNOT_REQUEST"
	CodeWomenOnly        = "WOMEN_ONLY_RIDE"
	CodeAlreadyRequested = "ALREADY_REQUESTED"
	CodeDriverBusy       = "DRIVER_ALREADY_RIDING"
	CodeNoVehicle        = "NO_REGISTERED_VEHICLE"
	CodePassengerMissing = "PASSENGER_NOT_PENDING"
	CodeVehicleExists    = "VEHICLE_ALREADY_REGISTERED"
	CodeNotVehicleOwner  = "NOT_VEHICLE_OWNER"
)

var (
	ErrRideNotFound    = NewPreconditionError(CodeRideNotFound, "Ride not found")
	ErrVehicleNotFound = NewPreconditionError("VEHICLE_NOT_FOUND", "Vehicle not found")
	ErrUserNotFound    = errors.New("user not found")

	// ErrInvalidCredentials covers both unknown username and wrong
	// password so the two cases are indistinguishable to callers.
	ErrInvalidCredentials = errors.New("invalid username or password")
)
